package main

import (
	"log/slog"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"terrastream/internal/graphics"
	"terrastream/internal/profiling"
	"terrastream/internal/terrain"
)

// slow ticks log a profiling breakdown at warn level
const slowTick = 50 * time.Millisecond

// Loop drives the viewer: input, terrain streaming, rendering, frame pacing.
type Loop struct {
	window   *glfw.Window
	renderer *graphics.Renderer
	system   *terrain.System
	limiter  *FPSLimiter
	log      *slog.Logger

	frames       int
	lastTime     time.Time
	lastStatTime time.Time
}

func NewLoop(window *glfw.Window, r *graphics.Renderer, sys *terrain.System, fpsLimit int, log *slog.Logger) *Loop {
	return &Loop{
		window:       window,
		renderer:     r,
		system:       sys,
		limiter:      NewFPSLimiter(fpsLimit),
		log:          log,
		lastTime:     time.Now(),
		lastStatTime: time.Now(),
	}
}

// Run blocks until the window is closed.
func (l *Loop) Run() {
	for !l.window.ShouldClose() {
		l.tick()
	}
}

func (l *Loop) tick() {
	profiling.ResetTick()
	now := time.Now()
	dt := now.Sub(l.lastTime).Seconds()
	l.lastTime = now

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	cam := l.renderer.Camera()
	applyMovement(l.window, cam, dt)

	l.system.Update(cam.Position, cam.GetViewMatrix(), cam.GetProjectionMatrix())

	var drawn int
	func() { defer profiling.Track("render.Frame")(); drawn = l.renderer.Render() }()
	func() { defer profiling.Track("glfw.SwapBuffers")(); l.window.SwapBuffers() }()

	if elapsed := time.Since(now); elapsed > slowTick {
		l.log.Warn("slow tick", "elapsed", elapsed, "top", profiling.TopN(5))
	}

	l.frames++
	if since := now.Sub(l.lastStatTime); since >= 5*time.Second {
		st := l.system.Stats()
		l.log.Info("viewer stats",
			"fps", float64(l.frames)/since.Seconds(),
			"drawn", drawn,
			"chunks", st.Chunks,
			"ready", st.Ready,
			"pending", st.Pending,
			"visible", st.Visible,
			"slots", st.SlotsUsed,
			"queued", st.Queued,
			"failed", st.Failed,
		)
		l.frames = 0
		l.lastStatTime = now
	}

	l.limiter.Wait()
}
