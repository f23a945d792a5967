// Command heightmap renders the configured height field to a grayscale PNG,
// so noise parameters can be tuned without opening a window.
package main

import (
	"flag"
	"log/slog"
	"os"

	"terrastream/internal/config"
	"terrastream/internal/heightmap"
	"terrastream/internal/mesh"
	"terrastream/internal/noise"
)

func main() {
	configPath := flag.String("config", "terrain.toml", "path to the TOML config, created if missing")
	out := flag.String("out", "heightmap.png", "output PNG path")
	size := flag.Float64("size", 4096, "edge length of the sampled region in world units")
	centerX := flag.Float64("x", 0, "world x coordinate of the region center")
	centerZ := flag.Float64("z", 0, "world z coordinate of the region center")
	samples := flag.Int("samples", 512, "samples per edge")
	upscale := flag.Int("upscale", 0, "optional output edge length in pixels, bilinear")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}
	seed := cfg.EffectiveSeed()
	params := mesh.Params{
		Octaves:     cfg.Noise.Octaves,
		Persistence: cfg.Noise.Persistence,
		Scale:       cfg.Noise.Scale,
		HeightScale: cfg.Noise.HeightScale,
	}

	img := heightmap.Render(noise.New(seed), params, *centerX, *centerZ, *size, *samples)
	if *upscale > *samples {
		img = heightmap.Upscale(img, *upscale, *upscale)
	}

	if err := heightmap.WritePNG(*out, img); err != nil {
		log.Error("write failed", "err", err)
		os.Exit(1)
	}
	log.Info("heightmap written", "path", *out, "world", cfg.World.Name, "seed", seed, "samples", *samples)
}
