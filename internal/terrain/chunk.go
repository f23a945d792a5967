package terrain

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"terrastream/internal/mesh"
)

// Coord identifies a chunk on the terrain grid.
type Coord struct {
	X, Z int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// State is the lifecycle state of a chunk.
type State uint8

const (
	StateEmpty State = iota
	StatePending
	StateReady
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateDisposed:
		return "disposed"
	}
	return "unknown"
}

// Chunk is one terrain tile: identity, lifecycle state, generated geometry
// and the bounding volume used for culling. Chunks are owned by the System
// and mutated only on its controller goroutine.
type Chunk struct {
	Coord     Coord
	WorldSize float64

	state            State
	segments         int    // LOD of stored geometry, -1 when none
	pendingRequestID uint64 // 0 when no request outstanding
	pendingSegments  int

	geometry  *mesh.Geometry
	minHeight float64
	maxHeight float64

	slot    int // index into the slot pool, -1 when unbound
	visible bool

	attempts int
	failed   bool
}

// NewChunk creates an empty chunk for the given coordinate.
func NewChunk(coord Coord, worldSize float64) *Chunk {
	return &Chunk{
		Coord:     coord,
		WorldSize: worldSize,
		segments:  -1,
		slot:      -1,
	}
}

// State returns the chunk's lifecycle state.
func (c *Chunk) State() State {
	return c.state
}

// Segments returns the LOD of the stored geometry, or -1 when none.
func (c *Chunk) Segments() int {
	return c.segments
}

// Geometry returns the stored geometry, nil unless the chunk is Ready.
func (c *Chunk) Geometry() *mesh.Geometry {
	return c.geometry
}

// Slot returns the bound slot index, or -1 when unbound.
func (c *Chunk) Slot() int {
	return c.slot
}

// Visible reports the last visibility decision applied to the chunk's slot.
func (c *Chunk) Visible() bool {
	return c.visible
}

// HeightBounds returns the sampled min and max height of the stored geometry.
func (c *Chunk) HeightBounds() (float64, float64) {
	return c.minHeight, c.maxHeight
}

// Failed reports whether generation exceeded the retry cap; failed chunks are
// skipped and rendered as absent.
func (c *Chunk) Failed() bool {
	return c.failed
}

// CenterXZ returns the chunk's center in world space. Tiles are centered on
// multiples of WorldSize, so chunk (0,0) sits at the origin.
func (c *Chunk) CenterXZ() (float64, float64) {
	return float64(c.Coord.X) * c.WorldSize, float64(c.Coord.Z) * c.WorldSize
}

// Transform returns the chunk's world transform: a translation by its center.
func (c *Chunk) Transform() mgl32.Mat4 {
	cx, cz := c.CenterXZ()
	return mgl32.Translate3D(float32(cx), 0, float32(cz))
}

// AABB returns the world-space bounding box, tightened vertically by the
// sampled height bounds.
func (c *Chunk) AABB() (mgl32.Vec3, mgl32.Vec3) {
	cx, cz := c.CenterXZ()
	half := c.WorldSize / 2
	bbMin := mgl32.Vec3{float32(cx - half), float32(c.minHeight), float32(cz - half)}
	bbMax := mgl32.Vec3{float32(cx + half), float32(c.maxHeight), float32(cz + half)}
	return bbMin, bbMax
}
