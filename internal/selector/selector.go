// Package selector implements the adaptive Backend Selector (§4.7): a
// registry of managed generators, each carrying EWMA-tracked latency,
// success rate and availability, combined into a composite score that
// picks the best backend on every call.
package selector

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/siryoos/caro/internal/generator"
)

const (
	latencyWeight     = 0.3
	availabilityWeight = 0.4
	successWeight     = 0.3
	priorityWeight    = 0.1

	latencyEWMAWeight     = 0.1
	successEWMAWeight     = 0.1
	availabilityEWMAWeight = 0.2

	minAvailabilityToSelect = 0.1

	defaultHealthRefreshInterval = 30 * time.Second
)

// Metrics is the mutable per-backend record the selector owns. All
// fields are updated under the Selector's lock; callers never touch
// this directly.
type Metrics struct {
	LatencyMs        float64
	SuccessRate      float64
	Availability     float64
	TotalRequests    int
	FailedRequests   int
	LastUsed         time.Time
	LastHealthProbe  time.Time
}

type managedBackend struct {
	name      string
	priority  int
	generator generator.Generator
	metrics   Metrics
}

// Selector holds an ordered set of managed backends and routes requests
// to the highest-scoring one currently eligible. The list and its
// metrics are protected by a single writer-preferring lock: select()
// takes a read lock after its mutation pass (health refresh), record()
// takes a write lock (§5).
type Selector struct {
	mu                  sync.RWMutex
	backends            []*managedBackend
	healthRefreshEvery  time.Duration
}

// New returns an empty Selector with the default 30s health-refresh
// interval.
func New() *Selector {
	return &Selector{healthRefreshEvery: defaultHealthRefreshInterval}
}

// WithHealthRefreshInterval overrides the default probe interval, for
// tests or tighter operational tuning.
func (s *Selector) WithHealthRefreshInterval(d time.Duration) *Selector {
	s.healthRefreshEvery = d
	return s
}

// Add registers a backend, keeping the internal slice sorted by
// ascending priority (lower priority number is preferred on ties).
func (s *Selector) Add(g generator.Generator, name string, priority int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.backends = append(s.backends, &managedBackend{
		name:      name,
		priority:  priority,
		generator: g,
	})
	sort.SliceStable(s.backends, func(i, j int) bool {
		return s.backends[i].priority < s.backends[j].priority
	})
}

// Select refreshes any stale health probes, then returns the generator
// with the highest composite score among backends whose availability
// is at least minAvailabilityToSelect. Returns nil if no backend
// qualifies.
func (s *Selector) Select(ctx context.Context) generator.Generator {
	s.refreshStaleHealth(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *managedBackend
	var bestScore float64
	for _, b := range s.backends {
		if b.metrics.Availability < minAvailabilityToSelect {
			continue
		}
		score := compositeScore(b.metrics, b.priority)
		if best == nil || score > bestScore {
			best = b
			bestScore = score
		}
	}
	if best == nil {
		return nil
	}
	return best.generator
}

// SelectPreferred returns the named backend when it is registered and
// currently meets the minimum availability threshold (§3: "optional
// backend preference, by string id"); otherwise it falls back to the
// ordinary composite-score Select. An empty name always falls back.
func (s *Selector) SelectPreferred(ctx context.Context, name string) generator.Generator {
	if name == "" {
		return s.Select(ctx)
	}

	s.refreshStaleHealth(ctx)

	s.mu.RLock()
	b := s.find(name)
	s.mu.RUnlock()

	if b != nil && b.metrics.Availability >= minAvailabilityToSelect {
		return b.generator
	}
	return s.Select(ctx)
}

// Record applies an EWMA update to the named backend's latency and
// success-rate metrics, increments its counters, and stamps last-used.
// A name with no matching backend is a no-op.
func (s *Selector) Record(name string, d time.Duration, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.find(name)
	if b == nil {
		return
	}

	ms := float64(d.Milliseconds())
	b.metrics.LatencyMs = ewma(b.metrics.LatencyMs, ms, latencyEWMAWeight)

	sample := 0.0
	if success {
		sample = 1.0
	} else {
		b.metrics.FailedRequests++
	}
	b.metrics.SuccessRate = ewma(b.metrics.SuccessRate, sample, successEWMAWeight)

	b.metrics.TotalRequests++
	b.metrics.LastUsed = time.Now()
}

// Snapshot returns a read-only copy of every backend's current metrics,
// keyed by name, for diagnostics/metrics reporting.
func (s *Selector) Snapshot() map[string]Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Metrics, len(s.backends))
	for _, b := range s.backends {
		out[b.name] = b.metrics
	}
	return out
}

func (s *Selector) find(name string) *managedBackend {
	for _, b := range s.backends {
		if b.name == name {
			return b
		}
	}
	return nil
}

// refreshStaleHealth probes every backend whose last probe is older
// than the refresh interval (or has never been probed) and blends the
// boolean result into its availability score. This is the selector's
// one mutation pass that happens outside of record(); it still takes
// the write lock for the duration of each update.
func (s *Selector) refreshStaleHealth(ctx context.Context) {
	now := time.Now()

	s.mu.RLock()
	var stale []*managedBackend
	for _, b := range s.backends {
		if now.Sub(b.metrics.LastHealthProbe) >= s.healthRefreshEvery {
			stale = append(stale, b)
		}
	}
	s.mu.RUnlock()

	if len(stale) == 0 {
		return
	}

	for _, b := range stale {
		available := b.generator.IsAvailable(ctx)
		sample := 0.0
		if available {
			sample = 1.0
		}

		s.mu.Lock()
		b.metrics.Availability = ewma(b.metrics.Availability, sample, availabilityEWMAWeight)
		b.metrics.LastHealthProbe = now
		s.mu.Unlock()
	}
}

func ewma(old, sample, weight float64) float64 {
	return old*(1-weight) + sample*weight
}

func compositeScore(m Metrics, priority int) float64 {
	latencyTerm := 1 / (1 + m.LatencyMs/1000)
	priorityTerm := 1 - float64(priority)/255
	return latencyWeight*latencyTerm +
		availabilityWeight*m.Availability +
		successWeight*m.SuccessRate +
		priorityWeight*priorityTerm
}
