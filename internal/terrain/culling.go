package terrain

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Culler decides per tick which chunks are shown, combining a squared planar
// distance test with a clip-space frustum test over each chunk's bounding
// box. Chunks without a bound slot are skipped.
type Culler struct {
	maxViewDistance float64
	// deadband widens the distance limit for chunks that are already visible,
	// suppressing flicker right at the boundary. Zero disables it.
	deadband float64
}

// NewCuller creates a culler with the given view distance and deadband.
func NewCuller(maxViewDistance, deadband float64) *Culler {
	return &Culler{maxViewDistance: maxViewDistance, deadband: deadband}
}

// Cull applies visibility to every bound chunk. clip is projection * view for
// the current camera; viewer is the camera world position. Returns how many
// chunks ended up visible and hidden.
func (c *Culler) Cull(chunks map[Coord]*Chunk, slots *SlotAllocator, viewer mgl32.Vec3, clip mgl32.Mat4) (visible, hidden int) {
	for _, ch := range chunks {
		if ch.slot < 0 || ch.state != StateReady {
			continue
		}
		vis := c.chunkVisible(ch, viewer, clip)
		if vis != ch.visible {
			ch.visible = vis
			slots.SetVisible(ch.slot, vis)
		}
		if vis {
			visible++
		} else {
			hidden++
		}
	}
	return visible, hidden
}

func (c *Culler) chunkVisible(ch *Chunk, viewer mgl32.Vec3, clip mgl32.Mat4) bool {
	cx, cz := ch.CenterXZ()
	dx := float64(viewer.X()) - cx
	dz := float64(viewer.Z()) - cz
	limit := c.maxViewDistance
	if ch.visible {
		limit += c.deadband
	}
	if dx*dx+dz*dz > limit*limit {
		return false
	}
	bbMin, bbMax := ch.AABB()
	return aabbIntersectsFrustum(bbMin, bbMax, clip)
}

// aabbIntersectsFrustum tests a box against the camera frustum with
// clip-space half-space tests: the box is culled only when all eight corners
// sit outside the same frustum plane. Conservative for boxes larger than the
// frustum, which is fine for culling.
func aabbIntersectsFrustum(bbMin, bbMax mgl32.Vec3, clip mgl32.Mat4) bool {
	var corners [8]mgl32.Vec4
	i := 0
	for _, x := range [2]float32{bbMin.X(), bbMax.X()} {
		for _, y := range [2]float32{bbMin.Y(), bbMax.Y()} {
			for _, z := range [2]float32{bbMin.Z(), bbMax.Z()} {
				corners[i] = clip.Mul4x1(mgl32.Vec4{x, y, z, 1})
				i++
			}
		}
	}

	// Signed distances past each plane; positive means outside.
	planes := [6]func(v mgl32.Vec4) float32{
		func(v mgl32.Vec4) float32 { return v.X() - v.W() },  // right
		func(v mgl32.Vec4) float32 { return -v.X() - v.W() }, // left
		func(v mgl32.Vec4) float32 { return v.Y() - v.W() },  // top
		func(v mgl32.Vec4) float32 { return -v.Y() - v.W() }, // bottom
		func(v mgl32.Vec4) float32 { return v.Z() - v.W() },  // far
		func(v mgl32.Vec4) float32 { return -v.Z() - v.W() }, // near
	}
	for _, dist := range planes {
		allOutside := true
		for _, v := range corners {
			if dist(v) <= 0 {
				allOutside = false
				break
			}
		}
		if allOutside {
			return false
		}
	}
	return true
}
