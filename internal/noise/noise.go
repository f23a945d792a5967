package noise

import (
	"math"
)

// Deterministic 2D gradient noise over a seeded permutation table.
// Construction never touches math/rand so that two Fields built from the
// same seed are observably identical; every generation worker owns its own
// instance and all of them must agree bit-for-bit.

// Field is an immutable, seeded gradient noise generator.
type Field struct {
	seed int64
	// perm is a bijection of [0,255]; table is perm doubled to 512 entries so
	// corner hashing below never needs an explicit wrap.
	perm  [256]int
	table [512]int
}

// New builds a Field from seed. The permutation table is the identity
// sequence shuffled by Fisher-Yates, with swap indices drawn from a 32-bit
// linear-congruential generator seeded by the given value.
func New(seed int64) *Field {
	f := &Field{seed: seed}
	for i := range f.perm {
		f.perm[i] = i
	}
	m := uint32(seed)
	for i := 255; i > 0; i-- {
		m = m*1664525 + 1013904223
		j := int(float64(m) / float64(1<<32) * float64(i+1))
		if j > i {
			j = i
		}
		f.perm[i], f.perm[j] = f.perm[j], f.perm[i]
	}
	for i := range f.table {
		f.table[i] = f.perm[i&255]
	}
	return f
}

// Seed returns the seed the field was built from.
func (f *Field) Seed() int64 {
	return f.seed
}

// Permutation returns a copy of the 256-entry permutation table.
func (f *Field) Permutation() [256]int {
	return f.perm
}

// fade is the quintic smoothing curve 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// grad2 selects a gradient direction from the low 4 bits of a corner hash and
// returns its dot product with (x, y).
func grad2(hash int, x, y float64) float64 {
	h := hash & 15
	u, v := x, y
	if h >= 8 {
		u, v = y, x
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}

// Sample2D returns gradient noise at (x, y), nominally in [-1, 1].
func (f *Field) Sample2D(x, y float64) float64 {
	xi := int(math.Floor(x)) & 255
	yi := int(math.Floor(y)) & 255
	xf := x - math.Floor(x)
	yf := y - math.Floor(y)

	u := fade(xf)
	v := fade(yf)

	// Hash the four corners of the unit cell through the doubled table.
	aa := f.table[f.table[xi]+yi]
	ab := f.table[f.table[xi]+yi+1]
	ba := f.table[f.table[xi+1]+yi]
	bb := f.table[f.table[xi+1]+yi+1]

	x1 := lerp(grad2(aa, xf, yf), grad2(ba, xf-1, yf), u)
	x2 := lerp(grad2(ab, xf, yf-1), grad2(bb, xf-1, yf-1), u)
	return lerp(x1, x2, v)
}

// Fractal2D sums octaves calls to Sample2D at geometrically doubling
// frequency (starting at scale) and geometrically decaying amplitude, then
// divides by the accumulated amplitude so the output magnitude does not
// depend on the octave count. octaves must be >= 1.
func (f *Field) Fractal2D(x, y float64, octaves int, persistence, scale float64) float64 {
	if octaves < 1 {
		panic("noise: Fractal2D requires octaves >= 1")
	}
	amplitude := 1.0
	frequency := scale
	total := 0.0
	maxValue := 0.0
	for i := 0; i < octaves; i++ {
		total += f.Sample2D(x*frequency, y*frequency) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxValue
}
