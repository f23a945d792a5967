package profiling

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Lightweight per-tick CPU profiler for controller-loop insights.

var (
	mu         sync.Mutex
	tickTotals = make(map[string]time.Duration)
)

// Track returns a stop function that records the elapsed time under the given
// name. Usage: defer profiling.Track("terrain.Update")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		tickTotals[name] += d
		mu.Unlock()
	}
}

// ResetTick clears the current totals. Call at the start of each tick.
func ResetTick() {
	mu.Lock()
	clear(tickTotals)
	mu.Unlock()
}

// Snapshot returns a copy of the current totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(tickTotals))
	for k, v := range tickTotals {
		out[k] = v
	}
	return out
}

// SumWithPrefix totals all entries whose name starts with prefix.
func SumWithPrefix(prefix string) time.Duration {
	mu.Lock()
	defer mu.Unlock()
	var total time.Duration
	for k, v := range tickTotals {
		if strings.HasPrefix(k, prefix) {
			total += v
		}
	}
	return total
}

// TopN formats the n largest entries of the current tick, largest first.
// Example: "terrain.Update:4.2ms, terrain.Cull:0.3ms"
func TopN(n int) string {
	snap := Snapshot()
	type entry struct {
		name string
		dur  time.Duration
	}
	list := make([]entry, 0, len(snap))
	for k, v := range snap {
		list = append(list, entry{k, v})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].dur > list[j].dur })
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for _, e := range list[:n] {
		parts = append(parts, fmt.Sprintf("%s:%.1fms", e.name, float64(e.dur.Microseconds())/1000))
	}
	return strings.Join(parts, ", ")
}
