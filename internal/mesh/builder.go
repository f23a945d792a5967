package mesh

import (
	"math"

	"terrastream/internal/noise"
)

// Geometry holds the generated buffers for one chunk. After a worker hands a
// Geometry to the controller the worker never touches it again, so the
// receiver owns the slices outright.
type Geometry struct {
	Positions []float32 // x,y,z per vertex, chunk-local, centered at origin
	Normals   []float32 // unit length, Y-up
	UVs       []float32 // normalized grid coordinates in [0,1]
	Indices   []uint32
	MinHeight float64
	MaxHeight float64
}

// VertexCount returns the number of vertices in the geometry.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// Params controls the heightfield the builder samples.
type Params struct {
	Octaves     int
	Persistence float64
	Scale       float64
	HeightScale float64
}

// DefaultParams returns rolling-hills terrain settings.
func DefaultParams() Params {
	return Params{
		Octaves:     4,
		Persistence: 0.5,
		Scale:       1.0 / 256.0,
		HeightScale: 24,
	}
}

// Builder samples a noise field over a regular grid to produce chunk geometry.
// A Builder is not safe for concurrent use; each generation worker owns one.
type Builder struct {
	field  *noise.Field
	params Params
}

// NewBuilder creates a builder over the given field.
func NewBuilder(field *noise.Field, params Params) *Builder {
	return &Builder{field: field, params: params}
}

// Build generates a (segments+1)x(segments+1) vertex grid for the chunk
// centered at (centerX, centerZ), spanning worldSize on both local axes.
// segments must be >= 1; callers validate before dispatch.
func (b *Builder) Build(centerX, centerZ, worldSize float64, segments int) *Geometry {
	verts := segments + 1
	step := worldSize / float64(segments)
	half := worldSize / 2

	// Sample all heights first; normals need the four axis neighbors.
	heights := make([]float64, verts*verts)
	minH := math.Inf(1)
	maxH := math.Inf(-1)
	for row := 0; row < verts; row++ {
		z := centerZ - half + float64(row)*step
		for col := 0; col < verts; col++ {
			x := centerX - half + float64(col)*step
			h := b.field.Fractal2D(x, z, b.params.Octaves, b.params.Persistence, b.params.Scale) * b.params.HeightScale
			heights[row*verts+col] = h
			if h < minH {
				minH = h
			}
			if h > maxH {
				maxH = h
			}
		}
	}

	g := &Geometry{
		Positions: make([]float32, 0, verts*verts*3),
		Normals:   make([]float32, 0, verts*verts*3),
		UVs:       make([]float32, 0, verts*verts*2),
		Indices:   make([]uint32, 0, segments*segments*6),
		MinHeight: minH,
		MaxHeight: maxH,
	}

	for row := 0; row < verts; row++ {
		for col := 0; col < verts; col++ {
			g.Positions = append(g.Positions,
				float32(-half+float64(col)*step),
				float32(heights[row*verts+col]),
				float32(-half+float64(row)*step),
			)
			nx, ny, nz := gridNormal(heights, verts, row, col, step)
			g.Normals = append(g.Normals, nx, ny, nz)
			g.UVs = append(g.UVs,
				float32(col)/float32(segments),
				float32(row)/float32(segments),
			)
		}
	}

	// Two triangles per cell, fixed diagonal. With rows along +Z and columns
	// along +X this winding is CCW seen from above, so front faces point up
	// under the Y-up right-handed convention.
	for row := 0; row < segments; row++ {
		for col := 0; col < segments; col++ {
			a := uint32(row*verts + col)
			bIdx := a + 1
			c := a + uint32(verts)
			d := c + 1
			g.Indices = append(g.Indices, a, c, bIdx, bIdx, c, d)
		}
	}
	return g
}

// gridNormal estimates the surface normal at a grid vertex by central finite
// differences. Indices are clamped at the grid border instead of wrapping,
// which biases edge normals toward the interior; that approximation is part
// of the output contract.
func gridNormal(heights []float64, verts, row, col int, step float64) (float32, float32, float32) {
	left := heights[row*verts+max(col-1, 0)]
	right := heights[row*verts+min(col+1, verts-1)]
	down := heights[max(row-1, 0)*verts+col]
	up := heights[min(row+1, verts-1)*verts+col]

	dx := (left - right) / (2 * step)
	dz := (down - up) / (2 * step)
	inv := 1 / math.Sqrt(dx*dx+1+dz*dz)
	return float32(dx * inv), float32(inv), float32(dz * inv)
}
