package terrain

import (
	"container/heap"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"terrastream/internal/mesh"
	"terrastream/internal/noise"
)

// ErrSchedulerClosed is returned by Enqueue after Close.
var ErrSchedulerClosed = errors.New("terrain: scheduler closed")

// Request asks a worker to generate geometry for one chunk at one LOD.
// Smaller Priority values dispatch first; ties break on lower ID, so equal
// priority requests run in issue order.
type Request struct {
	ID        uint64
	Coord     Coord
	CenterX   float64
	CenterZ   float64
	WorldSize float64
	Segments  int
	Priority  int
}

// Result carries generated buffers back to the controller. The geometry is
// transferred, not shared: the worker never touches it after delivery.
type Result struct {
	ID       uint64
	Coord    Coord
	Segments int
	Geometry *mesh.Geometry
	Err      error
}

// Scheduler dispatches generation requests to a fixed pool of workers. Each
// worker owns an independent noise field built from the shared seed at
// startup, so no mutable state is shared while a build runs and output is
// identical regardless of which worker serves a request.
type Scheduler struct {
	log    *slog.Logger
	params mesh.Params

	mu     sync.Mutex
	cond   *sync.Cond
	queue  requestQueue
	queued map[uint64]struct{} // ids still in the queue, removable by Cancel
	nextID uint64
	closed bool

	tasks   chan Request // unbuffered: at most one in-flight request per worker
	results chan Result
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler starts workers goroutines plus a dispatcher. Close releases
// them.
func NewScheduler(seed int64, workers int, params mesh.Params, log *slog.Logger) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	s := &Scheduler{
		log:     log,
		params:  params,
		queued:  make(map[uint64]struct{}),
		tasks:   make(chan Request),
		results: make(chan Result, 256),
		done:    make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker(seed)
	}
	s.wg.Add(1)
	go s.dispatch()
	return s
}

// Enqueue validates and queues a generation request, returning its id.
// Requests with a non-positive LOD or non-finite geometry are rejected here
// and never reach a worker.
func (s *Scheduler) Enqueue(coord Coord, centerX, centerZ, worldSize float64, segments, priority int) (uint64, error) {
	if segments < 1 {
		return 0, fmt.Errorf("terrain: invalid request for chunk %v: segments %d < 1", coord, segments)
	}
	if !isFinite(centerX) || !isFinite(centerZ) {
		return 0, fmt.Errorf("terrain: invalid request for chunk %v: non-finite center (%v, %v)", coord, centerX, centerZ)
	}
	if !isFinite(worldSize) || worldSize <= 0 {
		return 0, fmt.Errorf("terrain: invalid request for chunk %v: bad world size %v", coord, worldSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSchedulerClosed
	}
	s.nextID++
	req := Request{
		ID:        s.nextID,
		Coord:     coord,
		CenterX:   centerX,
		CenterZ:   centerZ,
		WorldSize: worldSize,
		Segments:  segments,
		Priority:  priority,
	}
	heap.Push(&s.queue, req)
	s.queued[req.ID] = struct{}{}
	s.cond.Signal()
	return req.ID, nil
}

// Cancel drops a request that is still queued and reports whether it did.
// In-flight requests cannot be interrupted; their eventual results are
// discarded by the controller's id check instead.
func (s *Scheduler) Cancel(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.queued[id]; !ok {
		return false
	}
	// Removed lazily: the dispatcher skips popped requests whose id is gone.
	delete(s.queued, id)
	return true
}

// Poll drains completed results without blocking. max <= 0 drains everything
// currently available.
func (s *Scheduler) Poll(max int) []Result {
	var out []Result
	for max <= 0 || len(out) < max {
		select {
		case res := <-s.results:
			out = append(out, res)
		default:
			return out
		}
	}
	return out
}

// Results exposes the result channel for callers that want to block.
func (s *Scheduler) Results() <-chan Result {
	return s.results
}

// QueueLen returns the number of requests waiting for a worker.
func (s *Scheduler) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queued)
}

// Close stops the dispatcher and workers. Idempotent. Requests still queued
// are dropped; a request in flight finishes but its result may be lost.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.cond.Broadcast()
	s.mu.Unlock()
	s.wg.Wait()
}

// dispatch pops the best queued request and hands it to a free worker. The
// unbuffered task channel provides backpressure: dispatch blocks until a
// worker is idle.
func (s *Scheduler) dispatch() {
	defer s.wg.Done()
	defer close(s.tasks)
	for {
		s.mu.Lock()
		for s.queue.Len() == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		req := heap.Pop(&s.queue).(Request)
		if _, ok := s.queued[req.ID]; !ok {
			// cancelled while queued
			s.mu.Unlock()
			continue
		}
		delete(s.queued, req.ID)
		s.mu.Unlock()

		select {
		case s.tasks <- req:
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) worker(seed int64) {
	defer s.wg.Done()
	builder := mesh.NewBuilder(noise.New(seed), s.params)
	for req := range s.tasks {
		res := buildResult(builder, req)
		select {
		case s.results <- res:
		case <-s.done:
			return
		}
	}
}

// buildResult runs one generation job, converting a panic in the builder into
// an error result rather than killing the worker.
func buildResult(b *mesh.Builder, req Request) (res Result) {
	res = Result{ID: req.ID, Coord: req.Coord, Segments: req.Segments}
	defer func() {
		if r := recover(); r != nil {
			res.Geometry = nil
			res.Err = fmt.Errorf("terrain: generation for chunk %v panicked: %v", req.Coord, r)
		}
	}()
	res.Geometry = b.Build(req.CenterX, req.CenterZ, req.WorldSize, req.Segments)
	return res
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// requestQueue is a min-heap over (Priority, ID).
type requestQueue []Request

func (q requestQueue) Len() int { return len(q) }

func (q requestQueue) Less(i, j int) bool {
	if q[i].Priority != q[j].Priority {
		return q[i].Priority < q[j].Priority
	}
	return q[i].ID < q[j].ID
}

func (q requestQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *requestQueue) Push(x any) {
	*q = append(*q, x.(Request))
}

func (q *requestQueue) Pop() any {
	old := *q
	n := len(old)
	req := old[n-1]
	*q = old[:n-1]
	return req
}
