package terrain

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// boundChunk builds a Ready chunk at coord with a slot allocated from slots.
func boundChunk(t *testing.T, slots *SlotAllocator, coord Coord) *Chunk {
	t.Helper()
	ch := NewChunk(coord, 100)
	ch.geometry = testGeometry(4)
	ch.minHeight = ch.geometry.MinHeight
	ch.maxHeight = ch.geometry.MaxHeight
	ch.state = StateReady
	idx, err := slots.Allocate(coord, ch.geometry, ch.Transform())
	if err != nil {
		t.Fatalf("Allocate(%v) = %v", coord, err)
	}
	ch.slot = idx
	ch.visible = true
	return ch
}

func testCamera() (mgl32.Vec3, mgl32.Mat4) {
	viewer := mgl32.Vec3{0, 20, 0}
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1.5, 0.1, 1000)
	view := mgl32.LookAtV(viewer, mgl32.Vec3{0, 0, -100}, mgl32.Vec3{0, 1, 0})
	return viewer, proj.Mul4(view)
}

func TestCullFrontVisibleBehindHidden(t *testing.T) {
	backend := newRecordingBackend()
	slots := NewSlotAllocator(8, backend)
	front := boundChunk(t, slots, Coord{X: 0, Z: -3})
	behind := boundChunk(t, slots, Coord{X: 0, Z: 3})
	chunks := map[Coord]*Chunk{front.Coord: front, behind.Coord: behind}

	viewer, clip := testCamera()
	visible, hidden := NewCuller(800, 0).Cull(chunks, slots, viewer, clip)

	if visible != 1 || hidden != 1 {
		t.Fatalf("Cull = (%d visible, %d hidden), want (1, 1)", visible, hidden)
	}
	if !front.Visible() {
		t.Error("chunk in front of the camera was hidden")
	}
	if behind.Visible() {
		t.Error("chunk behind the camera stayed visible")
	}
	if backend.visible[behind.Slot()] {
		t.Error("backend not told to hide the chunk behind the camera")
	}
}

func TestCullBeyondViewDistance(t *testing.T) {
	backend := newRecordingBackend()
	slots := NewSlotAllocator(8, backend)
	far := boundChunk(t, slots, Coord{X: 0, Z: -3}) // planar distance 300
	chunks := map[Coord]*Chunk{far.Coord: far}

	viewer, clip := testCamera()
	far.visible = false
	NewCuller(250, 0).Cull(chunks, slots, viewer, clip)

	if far.Visible() {
		t.Error("chunk beyond the view distance stayed visible")
	}
}

// TestCullDeadbandHysteresis checks the flicker guard: a chunk sitting just
// past the view distance stays shown while already visible, but a hidden
// chunk at the same spot is not brought in.
func TestCullDeadbandHysteresis(t *testing.T) {
	backend := newRecordingBackend()
	slots := NewSlotAllocator(8, backend)
	ch := boundChunk(t, slots, Coord{X: 0, Z: -3}) // planar distance 300
	chunks := map[Coord]*Chunk{ch.Coord: ch}
	viewer, clip := testCamera()
	culler := NewCuller(250, 100)

	ch.visible = true
	culler.Cull(chunks, slots, viewer, clip)
	if !ch.Visible() {
		t.Error("visible chunk inside the deadband was hidden")
	}

	ch.visible = false
	slots.SetVisible(ch.slot, false)
	culler.Cull(chunks, slots, viewer, clip)
	if ch.Visible() {
		t.Error("hidden chunk past the view distance was shown")
	}
}

func TestCullSkipsUnboundChunks(t *testing.T) {
	backend := newRecordingBackend()
	slots := NewSlotAllocator(8, backend)
	ch := NewChunk(Coord{X: 0, Z: -3}, 100)
	ch.state = StateReady
	chunks := map[Coord]*Chunk{ch.Coord: ch}

	viewer, clip := testCamera()
	visible, hidden := NewCuller(800, 0).Cull(chunks, slots, viewer, clip)
	if visible != 0 || hidden != 0 {
		t.Errorf("slotless chunk was counted: (%d visible, %d hidden)", visible, hidden)
	}
}

func TestAABBIntersectsFrustum(t *testing.T) {
	clip := mgl32.Ident4()

	inside := aabbIntersectsFrustum(mgl32.Vec3{-0.5, -0.5, -0.5}, mgl32.Vec3{0.5, 0.5, 0.5}, clip)
	if !inside {
		t.Error("box around the origin reported outside an identity frustum")
	}

	straddling := aabbIntersectsFrustum(mgl32.Vec3{-10, -10, -10}, mgl32.Vec3{10, 10, 10}, clip)
	if !straddling {
		t.Error("box enclosing the frustum reported outside")
	}

	left := aabbIntersectsFrustum(mgl32.Vec3{-3, -0.5, -0.5}, mgl32.Vec3{-2, 0.5, 0.5}, clip)
	if left {
		t.Error("box fully past the left plane reported visible")
	}
}
