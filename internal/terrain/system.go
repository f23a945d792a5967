package terrain

import (
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"terrastream/internal/profiling"
)

// LODBand maps a chunk distance (in chunks, inclusive) to a grid resolution.
type LODBand struct {
	MaxChunkDistance int
	Segments         int
}

// Options configures a System.
type Options struct {
	WorldSize       float64 // edge length of one chunk in world units
	LoadRadius      int     // chunks requested around the viewer
	EvictRadius     int     // chunks disposed beyond this radius
	MaxViewDistance float64 // world units, planar
	CullDeadband    float64 // extra distance kept visible once shown
	CullInterval    int     // run the culler every Nth tick
	MaxAttempts     int     // generation retries before a chunk is marked failed
	LODBands        []LODBand
}

// DefaultOptions returns a balanced configuration for a viewer.
func DefaultOptions() Options {
	return Options{
		WorldSize:       100,
		LoadRadius:      8,
		EvictRadius:     12,
		MaxViewDistance: 800,
		CullInterval:    1,
		MaxAttempts:     3,
		LODBands: []LODBand{
			{MaxChunkDistance: 2, Segments: 64},
			{MaxChunkDistance: 5, Segments: 32},
			{MaxChunkDistance: math.MaxInt, Segments: 16},
		},
	}
}

// Stats is a per-tick snapshot for logging and HUD-style reporting.
type Stats struct {
	Chunks    int
	Pending   int
	Ready     int
	Failed    int
	Visible   int
	SlotsUsed int
	Queued    int
}

// System owns the chunk registry and drives LOD selection, generation
// requests, slot allocation and culling. All methods must be called from a
// single controller goroutine; workers never touch the registry or the pool.
type System struct {
	log   *slog.Logger
	opts  Options
	sched *Scheduler
	slots *SlotAllocator
	cull  *Culler

	chunks map[Coord]*Chunk
	tick   uint64
}

// NewSystem wires a scheduler and a slot pool into a terrain system.
func NewSystem(sched *Scheduler, slots *SlotAllocator, opts Options, log *slog.Logger) *System {
	if opts.EvictRadius < opts.LoadRadius {
		opts.EvictRadius = opts.LoadRadius
	}
	if opts.CullInterval < 1 {
		opts.CullInterval = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &System{
		log:    log,
		opts:   opts,
		sched:  sched,
		slots:  slots,
		cull:   NewCuller(opts.MaxViewDistance, opts.CullDeadband),
		chunks: make(map[Coord]*Chunk),
	}
}

// Update runs one controller tick: reconcile finished generation results,
// refresh the desired chunk set around the viewer, evict far chunks, retry
// slot binding, and cull. Never blocks on a worker.
func (s *System) Update(viewer mgl32.Vec3, view, proj mgl32.Mat4) {
	defer profiling.Track("terrain.Update")()
	s.tick++

	s.applyResults()
	s.refreshDesired(viewer)
	s.evictFar(viewer)
	s.bindSlotless()

	if s.tick%uint64(s.opts.CullInterval) == 0 {
		defer profiling.Track("terrain.Cull")()
		s.cull.Cull(s.chunks, s.slots, viewer, proj.Mul4(view))
	}
}

// Chunk returns the chunk at coord, if tracked.
func (s *System) Chunk(coord Coord) (*Chunk, bool) {
	ch, ok := s.chunks[coord]
	return ch, ok
}

// Stats counts chunk states for reporting.
func (s *System) Stats() Stats {
	st := Stats{
		Chunks:    len(s.chunks),
		SlotsUsed: s.slots.Used(),
		Queued:    s.sched.QueueLen(),
	}
	for _, ch := range s.chunks {
		switch {
		case ch.failed:
			st.Failed++
		case ch.state == StateReady:
			st.Ready++
		case ch.state == StatePending:
			st.Pending++
		}
		if ch.visible && ch.slot >= 0 {
			st.Visible++
		}
	}
	return st
}

// applyResults drains finished generation work and reconciles it with chunk
// state. A result is applied only when its id still matches the chunk's
// pending request; anything else is stale and dropped without side effects.
func (s *System) applyResults() {
	for _, res := range s.sched.Poll(0) {
		ch, ok := s.chunks[res.Coord]
		if !ok || ch.state == StateDisposed || ch.pendingRequestID != res.ID {
			continue
		}
		ch.pendingRequestID = 0

		if res.Err != nil {
			ch.attempts++
			if ch.attempts >= s.opts.MaxAttempts {
				ch.failed = true
				s.log.Warn("chunk generation failed permanently",
					"chunk", ch.Coord, "attempts", ch.attempts, "err", res.Err)
			} else {
				s.log.Debug("chunk generation failed, will retry",
					"chunk", ch.Coord, "attempt", ch.attempts, "err", res.Err)
			}
			if ch.geometry == nil {
				// eligible for a fresh request on the next refresh
				ch.state = StateEmpty
			}
			continue
		}

		ch.attempts = 0
		if ch.slot >= 0 {
			// geometry replaced at a new LOD: rebind below
			s.slots.Release(ch.slot)
			ch.slot = -1
		}
		ch.geometry = res.Geometry
		ch.segments = res.Segments
		ch.minHeight = res.Geometry.MinHeight
		ch.maxHeight = res.Geometry.MaxHeight
		ch.state = StateReady
		s.bindSlot(ch)
	}
}

// refreshDesired walks the load radius around the viewer's chunk and makes
// sure every coordinate has a chunk at the wanted LOD, requesting generation
// where it does not. Priority is the chunk distance, so near terrain wins.
func (s *System) refreshDesired(viewer mgl32.Vec3) {
	center := s.viewerChunk(viewer)
	r := s.opts.LoadRadius
	for dx := -r; dx <= r; dx++ {
		for dz := -r; dz <= r; dz++ {
			if dx*dx+dz*dz > r*r {
				continue
			}
			dist := int(math.Round(math.Sqrt(float64(dx*dx + dz*dz))))
			coord := Coord{X: center.X + dx, Z: center.Z + dz}
			s.ensureChunk(coord, s.lodFor(dist), dist)
		}
	}
}

func (s *System) viewerChunk(viewer mgl32.Vec3) Coord {
	return Coord{
		X: int(math.Round(float64(viewer.X()) / s.opts.WorldSize)),
		Z: int(math.Round(float64(viewer.Z()) / s.opts.WorldSize)),
	}
}

func (s *System) lodFor(chunkDistance int) int {
	for _, band := range s.opts.LODBands {
		if chunkDistance <= band.MaxChunkDistance {
			return band.Segments
		}
	}
	return s.opts.LODBands[len(s.opts.LODBands)-1].Segments
}

// ensureChunk creates the chunk if needed and issues a generation request
// when the stored or in-flight LOD does not match the wanted one.
func (s *System) ensureChunk(coord Coord, segments, priority int) {
	ch, ok := s.chunks[coord]
	if !ok {
		ch = NewChunk(coord, s.opts.WorldSize)
		s.chunks[coord] = ch
	}
	if ch.failed || ch.state == StateDisposed {
		return
	}
	if ch.pendingRequestID != 0 {
		if ch.pendingSegments == segments {
			return
		}
	} else if ch.segments == segments {
		return
	}
	s.request(ch, segments, priority)
}

// request issues a new generation request for the chunk. An older pending
// request is logically invalidated first: it is cancelled if still queued,
// and in any case its result will no longer match the chunk's id.
func (s *System) request(ch *Chunk, segments, priority int) {
	if ch.pendingRequestID != 0 {
		s.sched.Cancel(ch.pendingRequestID)
		ch.pendingRequestID = 0
	}
	cx, cz := ch.CenterXZ()
	id, err := s.sched.Enqueue(ch.Coord, cx, cz, ch.WorldSize, segments, priority)
	if err != nil {
		ch.attempts++
		if ch.attempts >= s.opts.MaxAttempts {
			ch.failed = true
		}
		s.log.Warn("generation request rejected", "chunk", ch.Coord, "err", err)
		return
	}
	ch.pendingRequestID = id
	ch.pendingSegments = segments
	if ch.state == StateEmpty {
		ch.state = StatePending
	}
	// Ready chunks keep showing their old geometry until the new result lands.
}

// evictFar disposes chunks beyond the evict radius and forgets them.
func (s *System) evictFar(viewer mgl32.Vec3) {
	center := s.viewerChunk(viewer)
	er := s.opts.EvictRadius
	for coord, ch := range s.chunks {
		dx := coord.X - center.X
		dz := coord.Z - center.Z
		if dx*dx+dz*dz <= er*er {
			continue
		}
		s.disposeChunk(ch)
		delete(s.chunks, coord)
	}
}

// disposeChunk releases the chunk's slot and geometry and marks it terminal.
// A result still in flight for it is dropped later by id mismatch.
func (s *System) disposeChunk(ch *Chunk) {
	if ch.slot >= 0 {
		s.slots.Release(ch.slot)
		ch.slot = -1
	}
	if ch.pendingRequestID != 0 {
		s.sched.Cancel(ch.pendingRequestID)
		ch.pendingRequestID = 0
	}
	ch.geometry = nil
	ch.segments = -1
	ch.visible = false
	ch.state = StateDisposed
}

// bindSlotless retries slot allocation for Ready chunks that missed out when
// the pool was exhausted.
func (s *System) bindSlotless() {
	for _, ch := range s.chunks {
		if ch.state == StateReady && ch.slot < 0 && ch.geometry != nil {
			s.bindSlot(ch)
		}
	}
}

func (s *System) bindSlot(ch *Chunk) {
	if ch.slot >= 0 || ch.geometry == nil {
		return
	}
	idx, err := s.slots.Allocate(ch.Coord, ch.geometry, ch.Transform())
	if err != nil {
		// pool exhausted: the chunk stays Ready but unrendered and is
		// retried on later ticks as slots free up
		return
	}
	ch.slot = idx
	ch.visible = true
}
