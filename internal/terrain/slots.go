package terrain

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"terrastream/internal/mesh"
)

// ErrPoolExhausted is returned by Allocate when every slot is bound. The
// caller retries on a later tick once slots free up; it is never fatal.
var ErrPoolExhausted = errors.New("terrain: slot pool exhausted")

// Backend receives slot lifecycle events. The OpenGL implementation uploads
// buffers into per-slot GPU objects; headless tools and tests use stubs.
type Backend interface {
	// Upload binds geometry and a world transform to a slot. Slot indices are
	// dense in [0, capacity) and may be reused after Release.
	Upload(slot int, g *mesh.Geometry, transform mgl32.Mat4)
	// SetVisible toggles whether a bound slot is drawn.
	SetVisible(slot int, visible bool)
	// Release drops the slot's binding; its index becomes reusable.
	Release(slot int)
}

type slotEntry struct {
	chunk   Coord
	bound   bool
	visible bool
}

// SlotAllocator is a fixed-capacity pool of GPU-resident mesh slots. Slots
// are created lazily up to capacity; released indices are recycled LIFO
// before the pool grows further. Not safe for concurrent use: the controller
// goroutine owns it.
type SlotAllocator struct {
	backend  Backend
	capacity int
	slots    []slotEntry
	free     []int // LIFO free-list of reclaimable indices
}

// NewSlotAllocator creates a pool with the given capacity.
func NewSlotAllocator(capacity int, backend Backend) *SlotAllocator {
	if capacity < 1 {
		capacity = 1
	}
	return &SlotAllocator{backend: backend, capacity: capacity}
}

// Allocate binds geometry for a chunk and returns the slot index, reusing a
// freed slot when one exists. Returns ErrPoolExhausted when all capacity
// slots are bound; existing bindings are never disturbed.
func (a *SlotAllocator) Allocate(coord Coord, g *mesh.Geometry, transform mgl32.Mat4) (int, error) {
	var idx int
	switch {
	case len(a.free) > 0:
		idx = a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
	case len(a.slots) < a.capacity:
		idx = len(a.slots)
		a.slots = append(a.slots, slotEntry{})
	default:
		return -1, ErrPoolExhausted
	}
	a.slots[idx] = slotEntry{chunk: coord, bound: true, visible: true}
	a.backend.Upload(idx, g, transform)
	a.backend.SetVisible(idx, true)
	return idx, nil
}

// Release unbinds a slot and pushes its index onto the free-list.
func (a *SlotAllocator) Release(idx int) {
	if idx < 0 || idx >= len(a.slots) || !a.slots[idx].bound {
		return
	}
	a.backend.Release(idx)
	a.slots[idx] = slotEntry{}
	a.free = append(a.free, idx)
}

// SetVisible toggles a bound slot's visibility without changing its binding.
func (a *SlotAllocator) SetVisible(idx int, visible bool) {
	if idx < 0 || idx >= len(a.slots) || !a.slots[idx].bound {
		return
	}
	if a.slots[idx].visible == visible {
		return
	}
	a.slots[idx].visible = visible
	a.backend.SetVisible(idx, visible)
}

// Used returns the number of bound slots.
func (a *SlotAllocator) Used() int {
	return len(a.slots) - len(a.free)
}

// Capacity returns the fixed pool capacity.
func (a *SlotAllocator) Capacity() int {
	return a.capacity
}
