package mesh

import (
	"math"
	"testing"

	"terrastream/internal/noise"
)

func testBuilder(seed int64) *Builder {
	return NewBuilder(noise.New(seed), DefaultParams())
}

// TestBuildCounts verifies vertex and index buffer sizes for a range of LODs.
func TestBuildCounts(t *testing.T) {
	b := testBuilder(42)
	for _, segments := range []int{1, 2, 3, 16, 64} {
		g := b.Build(0, 0, 100, segments)
		wantVerts := (segments + 1) * (segments + 1)
		if got := g.VertexCount(); got != wantVerts {
			t.Errorf("segments=%d: vertex count %d, want %d", segments, got, wantVerts)
		}
		if got, want := len(g.Normals), wantVerts*3; got != want {
			t.Errorf("segments=%d: normal floats %d, want %d", segments, got, want)
		}
		if got, want := len(g.UVs), wantVerts*2; got != want {
			t.Errorf("segments=%d: uv floats %d, want %d", segments, got, want)
		}
		if got, want := len(g.Indices), segments*segments*6; got != want {
			t.Errorf("segments=%d: index count %d, want %d", segments, got, want)
		}
		for i, idx := range g.Indices {
			if int(idx) >= wantVerts {
				t.Fatalf("segments=%d: index[%d] = %d out of range (%d vertices)", segments, i, idx, wantVerts)
			}
		}
	}
}

// TestBuildNormalsUnitLength verifies every normal is unit length within 1e-4.
func TestBuildNormalsUnitLength(t *testing.T) {
	g := testBuilder(12345).Build(50, -75, 100, 32)
	for i := 0; i+2 < len(g.Normals); i += 3 {
		nx := float64(g.Normals[i])
		ny := float64(g.Normals[i+1])
		nz := float64(g.Normals[i+2])
		length := math.Sqrt(nx*nx + ny*ny + nz*nz)
		if math.Abs(length-1) > 1e-4 {
			t.Fatalf("normal %d has length %f, want 1 within 1e-4", i/3, length)
		}
		if ny <= 0 {
			t.Fatalf("normal %d points downward (ny=%f)", i/3, ny)
		}
	}
}

// TestBuildHeightBounds verifies the tracked bounds enclose every sampled Y.
func TestBuildHeightBounds(t *testing.T) {
	g := testBuilder(7).Build(10, 20, 100, 16)
	if g.MinHeight > g.MaxHeight {
		t.Fatalf("minHeight %f > maxHeight %f", g.MinHeight, g.MaxHeight)
	}
	for i := 1; i < len(g.Positions); i += 3 {
		y := float64(g.Positions[i])
		// positions are float32-truncated; allow rounding slack
		if y < g.MinHeight-1e-4 || y > g.MaxHeight+1e-4 {
			t.Fatalf("vertex y %f outside height bounds [%f, %f]", y, g.MinHeight, g.MaxHeight)
		}
	}
}

// TestBuildGridSpan verifies the grid is centered at the origin in chunk-local
// space and spans [-worldSize/2, worldSize/2] on X and Z.
func TestBuildGridSpan(t *testing.T) {
	const worldSize = 128.0
	g := testBuilder(1).Build(500, -500, worldSize, 8)
	half := float32(worldSize / 2)

	first := g.Positions[0:3]
	if first[0] != -half || first[2] != -half {
		t.Errorf("first vertex at (%f, %f), want (%f, %f)", first[0], first[2], -half, -half)
	}
	last := g.Positions[len(g.Positions)-3:]
	if last[0] != half || last[2] != half {
		t.Errorf("last vertex at (%f, %f), want (%f, %f)", last[0], last[2], half, half)
	}
}

// TestBuildUVCorners verifies UVs are normalized grid indices.
func TestBuildUVCorners(t *testing.T) {
	segments := 4
	g := testBuilder(1).Build(0, 0, 100, segments)
	verts := segments + 1

	check := func(vertex int, wantU, wantV float32) {
		u, v := g.UVs[vertex*2], g.UVs[vertex*2+1]
		if u != wantU || v != wantV {
			t.Errorf("vertex %d uv (%f, %f), want (%f, %f)", vertex, u, v, wantU, wantV)
		}
	}
	check(0, 0, 0)
	check(verts-1, 1, 0)
	check(verts*(verts-1), 0, 1)
	check(verts*verts-1, 1, 1)
	check(verts+1, 0.25, 0.25)
}

// TestBuildWindingUpward verifies triangle winding produces upward-facing
// front faces: (b-a) x (c-a) must have a positive Y for every triangle when
// heights are projected flat.
func TestBuildWindingUpward(t *testing.T) {
	g := testBuilder(9).Build(0, 0, 100, 8)
	for i := 0; i+2 < len(g.Indices); i += 3 {
		ax, az := g.Positions[g.Indices[i]*3], g.Positions[g.Indices[i]*3+2]
		bx, bz := g.Positions[g.Indices[i+1]*3], g.Positions[g.Indices[i+1]*3+2]
		cx, cz := g.Positions[g.Indices[i+2]*3], g.Positions[g.Indices[i+2]*3+2]
		// Y component of the cross product with heights flattened out.
		crossY := float64(bz-az)*float64(cx-ax) - float64(bx-ax)*float64(cz-az)
		if crossY <= 0 {
			t.Fatalf("triangle %d winds downward (crossY=%f)", i/3, crossY)
		}
	}
}

// TestBuildDeterministic checks reproducible height bounds: seed 12345,
// chunk (0,0), size 100, segments 64 must generate bit-identical output from
// two independently constructed builders.
func TestBuildDeterministic(t *testing.T) {
	g1 := testBuilder(12345).Build(0, 0, 100, 64)
	g2 := testBuilder(12345).Build(0, 0, 100, 64)

	if g1.MinHeight != g2.MinHeight || g1.MaxHeight != g2.MaxHeight {
		t.Fatalf("height bounds differ: [%v, %v] vs [%v, %v]",
			g1.MinHeight, g1.MaxHeight, g2.MinHeight, g2.MaxHeight)
	}
	for i := range g1.Positions {
		if g1.Positions[i] != g2.Positions[i] {
			t.Fatalf("positions diverge at %d: %v vs %v", i, g1.Positions[i], g2.Positions[i])
		}
	}
	for i := range g1.Normals {
		if g1.Normals[i] != g2.Normals[i] {
			t.Fatalf("normals diverge at %d: %v vs %v", i, g1.Normals[i], g2.Normals[i])
		}
	}
	for i := range g1.Indices {
		if g1.Indices[i] != g2.Indices[i] {
			t.Fatalf("indices diverge at %d: %v vs %v", i, g1.Indices[i], g2.Indices[i])
		}
	}
}
