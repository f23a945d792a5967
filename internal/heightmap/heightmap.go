// Package heightmap renders the terrain height field to grayscale images,
// for previewing noise parameters without starting a viewer.
package heightmap

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"terrastream/internal/mesh"
	"terrastream/internal/noise"
)

// Render samples the fractal height field over a square world region centered
// at (centerX, centerZ) with the given edge length, one sample per pixel.
// Normalized noise in [-1, 1] maps linearly onto the 16-bit gray range.
func Render(field *noise.Field, params mesh.Params, centerX, centerZ, worldSize float64, pixels int) *image.Gray16 {
	if pixels < 1 {
		pixels = 1
	}
	img := image.NewGray16(image.Rect(0, 0, pixels, pixels))
	half := worldSize / 2
	step := worldSize / float64(pixels)
	for py := 0; py < pixels; py++ {
		z := centerZ - half + (float64(py)+0.5)*step
		for px := 0; px < pixels; px++ {
			x := centerX - half + (float64(px)+0.5)*step
			v := field.Fractal2D(x, z, params.Octaves, params.Persistence, params.Scale)
			// clamp: octave sums can exceed [-1, 1] slightly at ridges
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			img.SetGray16(px, py, gray16(v))
		}
	}
	return img
}

func gray16(v float64) color.Gray16 {
	return color.Gray16{Y: uint16((v + 1) / 2 * 65535)}
}

// Upscale resizes the rendered map with bilinear filtering.
func Upscale(src *image.Gray16, width, height int) *image.Gray16 {
	dst := image.NewGray16(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// WritePNG encodes the image to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("could not encode %s: %w", path, err)
	}
	return f.Close()
}
