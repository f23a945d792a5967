package main

import (
	"flag"
	"log/slog"
	"math"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"

	"terrastream/internal/config"
	"terrastream/internal/graphics"
	"terrastream/internal/mesh"
	"terrastream/internal/terrain"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "terrain.toml", "path to the TOML config, created if missing")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}
	seed := cfg.EffectiveSeed()
	log.Info("starting viewer", "world", cfg.World.Name, "seed", seed)

	if err := glfw.Init(); err != nil {
		log.Error("glfw init failed", "err", err)
		os.Exit(1)
	}
	defer glfw.Terminate()

	window, err := setupWindow(cfg.Viewer.Width, cfg.Viewer.Height)
	if err != nil {
		log.Error("window creation failed", "err", err)
		os.Exit(1)
	}

	r, err := graphics.NewRenderer(cfg.Viewer.Width, cfg.Viewer.Height,
		float32(cfg.Noise.HeightScale), float32(cfg.Culling.MaxViewDistance))
	if err != nil {
		log.Error("renderer init failed", "err", err)
		os.Exit(1)
	}
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		r.Resize(width, height)
	})

	params := mesh.Params{
		Octaves:     cfg.Noise.Octaves,
		Persistence: cfg.Noise.Persistence,
		Scale:       cfg.Noise.Scale,
		HeightScale: cfg.Noise.HeightScale,
	}
	workers := cfg.Budget.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	sched := terrain.NewScheduler(seed, workers, params, log)
	slots := terrain.NewSlotAllocator(cfg.Budget.Slots, r.MeshPool())
	sys := terrain.NewSystem(sched, slots, terrain.Options{
		WorldSize:       cfg.World.ChunkSize,
		LoadRadius:      cfg.World.LoadRadius,
		EvictRadius:     cfg.World.EvictRadius,
		MaxViewDistance: cfg.Culling.MaxViewDistance,
		CullDeadband:    cfg.Culling.Deadband,
		CullInterval:    cfg.Culling.Interval,
		MaxAttempts:     cfg.Budget.MaxAttempts,
		LODBands: []terrain.LODBand{
			{MaxChunkDistance: cfg.LOD.NearDistance, Segments: cfg.LOD.NearSegments},
			{MaxChunkDistance: cfg.LOD.MidDistance, Segments: cfg.LOD.MidSegments},
			{MaxChunkDistance: math.MaxInt, Segments: cfg.LOD.FarSegments},
		},
	}, log)

	closer.Bind(func() {
		sched.Close()
		r.Destroy()
		log.Info("viewer shut down")
	})

	setupInputHandlers(window, r.Camera())

	NewLoop(window, r, sys, cfg.Viewer.FPSLimit, log).Run()
	closer.Close()
}
