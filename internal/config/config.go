package config

import (
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/pelletier/go-toml"
)

// Config is the on-disk configuration of the terrain engine. Load creates the
// file with defaults when it is missing; out-of-range values are clamped
// rather than rejected so a hand-edited file cannot wedge startup.
type Config struct {
	World   World   `toml:"world"`
	Noise   Noise   `toml:"noise"`
	LOD     LOD     `toml:"lod"`
	Budget  Budget  `toml:"budget"`
	Culling Culling `toml:"culling"`
	Viewer  Viewer  `toml:"viewer"`
}

// World describes the streamed region.
type World struct {
	// Name seeds the terrain when Seed is 0.
	Name string `toml:"name"`
	// Seed overrides name-derived seeding when non-zero.
	Seed int64 `toml:"seed"`
	// ChunkSize is the edge length of one chunk in world units.
	ChunkSize float64 `toml:"chunk_size"`
	// LoadRadius is the request radius around the viewer, in chunks.
	LoadRadius int `toml:"load_radius"`
	// EvictRadius is the dispose radius, in chunks. Kept >= LoadRadius.
	EvictRadius int `toml:"evict_radius"`
}

// Noise holds the fractal heightfield parameters.
type Noise struct {
	Octaves     int     `toml:"octaves"`
	Persistence float64 `toml:"persistence"`
	Scale       float64 `toml:"scale"`
	HeightScale float64 `toml:"height_scale"`
}

// LOD selects grid resolution by chunk distance.
type LOD struct {
	NearDistance int `toml:"near_distance"`
	NearSegments int `toml:"near_segments"`
	MidDistance  int `toml:"mid_distance"`
	MidSegments  int `toml:"mid_segments"`
	FarSegments  int `toml:"far_segments"`
}

// Budget bounds workers, GPU slots and retries.
type Budget struct {
	// Slots is the fixed GPU slot pool capacity.
	Slots int `toml:"slots"`
	// Workers is the generation worker count; 0 means one per CPU.
	Workers int `toml:"workers"`
	// MaxAttempts is the retry cap before a chunk is marked failed.
	MaxAttempts int `toml:"max_attempts"`
}

// Culling configures the per-tick visibility pass.
type Culling struct {
	MaxViewDistance float64 `toml:"max_view_distance"`
	// Deadband adds hysteresis to the distance test. 0 disables it and
	// accepts flicker right at the boundary.
	Deadband float64 `toml:"deadband"`
	// Interval runs the culler every Nth tick.
	Interval int `toml:"interval"`
}

// Viewer configures the windowed client.
type Viewer struct {
	Width    int `toml:"width"`
	Height   int `toml:"height"`
	FPSLimit int `toml:"fps_limit"`
}

// Default returns the configuration written on first run.
func Default() Config {
	return Config{
		World: World{
			Name:        "highlands",
			ChunkSize:   100,
			LoadRadius:  8,
			EvictRadius: 12,
		},
		Noise: Noise{
			Octaves:     4,
			Persistence: 0.5,
			Scale:       1.0 / 256.0,
			HeightScale: 24,
		},
		LOD: LOD{
			NearDistance: 2,
			NearSegments: 64,
			MidDistance:  5,
			MidSegments:  32,
			FarSegments:  16,
		},
		Budget: Budget{
			Slots:       256,
			MaxAttempts: 3,
		},
		Culling: Culling{
			MaxViewDistance: 800,
			Interval:        1,
		},
		Viewer: Viewer{
			Width:    900,
			Height:   600,
			FPSLimit: 120,
		},
	}
}

// Load reads the config at path, creating it with defaults when absent.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := cfg.Save(path); err != nil {
			return cfg, fmt.Errorf("config: write defaults: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.clamp()
	return cfg, nil
}

// Save writes the config to path as TOML.
func (c Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// EffectiveSeed returns the explicit seed, or one derived deterministically
// from the world name when the seed is 0.
func (c Config) EffectiveSeed() int64 {
	if c.World.Seed != 0 {
		return c.World.Seed
	}
	return int64(xxhash.Sum64String(c.World.Name))
}

func (c *Config) clamp() {
	clampInt(&c.World.LoadRadius, 1, 64)
	clampInt(&c.World.EvictRadius, c.World.LoadRadius, 128)
	clampFloat(&c.World.ChunkSize, 1, 1<<16)

	clampInt(&c.Noise.Octaves, 1, 16)
	clampFloat(&c.Noise.Persistence, 0.01, 1)
	clampFloat(&c.Noise.Scale, 1e-6, 1)
	clampFloat(&c.Noise.HeightScale, 0, 1<<14)

	clampInt(&c.LOD.NearSegments, 1, 256)
	clampInt(&c.LOD.MidSegments, 1, 256)
	clampInt(&c.LOD.FarSegments, 1, 256)
	clampInt(&c.LOD.NearDistance, 0, c.World.LoadRadius)
	clampInt(&c.LOD.MidDistance, c.LOD.NearDistance, c.World.LoadRadius)

	clampInt(&c.Budget.Slots, 1, 1<<14)
	clampInt(&c.Budget.Workers, 0, 256)
	clampInt(&c.Budget.MaxAttempts, 1, 16)

	clampFloat(&c.Culling.MaxViewDistance, c.World.ChunkSize, 1<<20)
	clampFloat(&c.Culling.Deadband, 0, c.Culling.MaxViewDistance)
	clampInt(&c.Culling.Interval, 1, 60)

	clampInt(&c.Viewer.Width, 320, 7680)
	clampInt(&c.Viewer.Height, 240, 4320)
	clampInt(&c.Viewer.FPSLimit, 0, 1000)
}

func clampInt(v *int, lo, hi int) {
	if *v < lo {
		*v = lo
	}
	if *v > hi {
		*v = hi
	}
}

func clampFloat(v *float64, lo, hi float64) {
	if *v < lo {
		*v = lo
	}
	if *v > hi {
		*v = hi
	}
}
