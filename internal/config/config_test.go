package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadCreatesDefaults verifies a missing file is created and the defaults
// come back unchanged.
func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("first load returned %+v, want defaults", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file was not created: %v", err)
	}
}

// TestLoadRoundTrip verifies Save/Load preserves a modified config.
func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.toml")

	want := Default()
	want.World.Name = "archipelago"
	want.World.Seed = 987654
	want.Noise.Octaves = 6
	want.Budget.Slots = 64
	if err := want.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

// TestLoadClampsValues verifies hostile values are clamped, not rejected.
func TestLoadClampsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.toml")

	bad := Default()
	bad.Noise.Octaves = 0
	bad.World.LoadRadius = -5
	bad.World.EvictRadius = 0
	bad.Budget.Slots = -1
	bad.Culling.Interval = 0
	if err := bad.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Noise.Octaves < 1 {
		t.Errorf("octaves not clamped: %d", cfg.Noise.Octaves)
	}
	if cfg.World.LoadRadius < 1 {
		t.Errorf("load radius not clamped: %d", cfg.World.LoadRadius)
	}
	if cfg.World.EvictRadius < cfg.World.LoadRadius {
		t.Errorf("evict radius %d below load radius %d", cfg.World.EvictRadius, cfg.World.LoadRadius)
	}
	if cfg.Budget.Slots < 1 {
		t.Errorf("slots not clamped: %d", cfg.Budget.Slots)
	}
	if cfg.Culling.Interval < 1 {
		t.Errorf("cull interval not clamped: %d", cfg.Culling.Interval)
	}
}

// TestEffectiveSeed verifies name-derived seeding is stable and that an
// explicit seed wins.
func TestEffectiveSeed(t *testing.T) {
	a := Default()
	a.World.Name = "highlands"
	b := Default()
	b.World.Name = "highlands"
	if a.EffectiveSeed() != b.EffectiveSeed() {
		t.Error("same world name produced different seeds")
	}

	c := Default()
	c.World.Name = "lowlands"
	if a.EffectiveSeed() == c.EffectiveSeed() {
		t.Error("different world names produced the same seed")
	}

	d := a
	d.World.Seed = 42
	if d.EffectiveSeed() != 42 {
		t.Errorf("explicit seed ignored: got %d", d.EffectiveSeed())
	}
}
