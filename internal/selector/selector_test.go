package selector

import (
	"context"
	"testing"
	"time"

	"github.com/siryoos/caro/internal/generator"
)

type fakeGenerator struct {
	name      string
	available bool
}

func (f *fakeGenerator) Generate(ctx context.Context, req generator.Request) (*generator.Command, error) {
	return &generator.Command{Command: "echo " + f.name, BackendUsed: f.name}, nil
}
func (f *fakeGenerator) IsAvailable(ctx context.Context) bool { return f.available }
func (f *fakeGenerator) Info() generator.Info                 { return generator.Info{Kind: f.name} }

func TestSelectReturnsNilWhenEmpty(t *testing.T) {
	s := New()
	if g := s.Select(context.Background()); g != nil {
		t.Errorf("expected nil on empty selector, got %v", g)
	}
}

func TestSelectPriorityBias(t *testing.T) {
	s := New().WithHealthRefreshInterval(time.Hour)
	s.Add(&fakeGenerator{name: "a", available: true}, "a", 10)
	s.Add(&fakeGenerator{name: "b", available: true}, "b", 20)

	// Force both to identical, healthy metrics so only priority differs.
	s.backends[0].metrics = Metrics{Availability: 0.9, SuccessRate: 0.9, LatencyMs: 100, LastHealthProbe: time.Now()}
	s.backends[1].metrics = Metrics{Availability: 0.9, SuccessRate: 0.9, LatencyMs: 100, LastHealthProbe: time.Now()}

	g := s.Select(context.Background())
	info := g.Info()
	if info.Kind != "a" {
		t.Errorf("expected lower-priority-number backend 'a' selected, got %q", info.Kind)
	}
}

func TestSelectAdaptationAfterFailures(t *testing.T) {
	s := New().WithHealthRefreshInterval(time.Hour)
	s.Add(&fakeGenerator{name: "a", available: true}, "a", 10)
	s.Add(&fakeGenerator{name: "b", available: true}, "b", 10)
	s.backends[0].metrics.LastHealthProbe = time.Now()
	s.backends[1].metrics.LastHealthProbe = time.Now()
	s.backends[0].metrics.Availability = 1.0
	s.backends[1].metrics.Availability = 1.0

	for i := 0; i < 20; i++ {
		s.Record("a", 10*time.Millisecond, false)
	}
	for i := 0; i < 20; i++ {
		s.Record("b", 10*time.Millisecond, true)
	}

	g := s.Select(context.Background())
	if g.Info().Kind != "b" {
		t.Errorf("expected backend 'b' to win after 'a' accumulated failures, got %q", g.Info().Kind)
	}
}

func TestRecordUpdatesCounters(t *testing.T) {
	s := New()
	s.Add(&fakeGenerator{name: "a", available: true}, "a", 10)

	s.Record("a", 100*time.Millisecond, true)
	s.Record("a", 200*time.Millisecond, false)

	snap := s.Snapshot()["a"]
	if snap.TotalRequests != 2 {
		t.Errorf("total requests = %d, want 2", snap.TotalRequests)
	}
	if snap.FailedRequests != 1 {
		t.Errorf("failed requests = %d, want 1", snap.FailedRequests)
	}
	if snap.LastUsed.IsZero() {
		t.Error("expected last-used timestamp to be set")
	}
}

func TestRecordUnknownNameIsNoop(t *testing.T) {
	s := New()
	s.Record("does-not-exist", time.Second, true) // must not panic
}

func TestHealthRefreshBlendsAvailability(t *testing.T) {
	s := New().WithHealthRefreshInterval(0)
	s.Add(&fakeGenerator{name: "a", available: true}, "a", 10)

	g := s.Select(context.Background())
	if g == nil {
		t.Fatal("expected newly-probed, available backend to be selectable")
	}
	snap := s.Snapshot()["a"]
	if snap.Availability <= 0 {
		t.Errorf("expected availability to rise above 0 after a positive probe, got %v", snap.Availability)
	}
}

func TestUnavailableBackendNeverSelected(t *testing.T) {
	s := New().WithHealthRefreshInterval(0)
	s.Add(&fakeGenerator{name: "down", available: false}, "down", 10)

	g := s.Select(context.Background())
	if g != nil {
		t.Errorf("expected nil when the only backend is unavailable, got %v", g)
	}
}

func TestSelectPreferredHonorsHealthyNamedBackend(t *testing.T) {
	s := New().WithHealthRefreshInterval(time.Hour)
	s.Add(&fakeGenerator{name: "a", available: true}, "a", 10)
	s.Add(&fakeGenerator{name: "b", available: true}, "b", 20)
	s.backends[0].metrics = Metrics{Availability: 0.9, SuccessRate: 0.9, LatencyMs: 100, LastHealthProbe: time.Now()}
	s.backends[1].metrics = Metrics{Availability: 0.9, SuccessRate: 0.9, LatencyMs: 100, LastHealthProbe: time.Now()}

	g := s.SelectPreferred(context.Background(), "b")
	if g.Info().Kind != "b" {
		t.Errorf("expected preferred backend 'b' despite lower priority, got %q", g.Info().Kind)
	}
}

func TestSelectPreferredFallsBackWhenNamedBackendUnavailable(t *testing.T) {
	s := New().WithHealthRefreshInterval(time.Hour)
	s.Add(&fakeGenerator{name: "a", available: true}, "a", 10)
	s.backends[0].metrics = Metrics{Availability: 0.9, SuccessRate: 0.9, LatencyMs: 100, LastHealthProbe: time.Now()}

	g := s.SelectPreferred(context.Background(), "does-not-exist")
	if g.Info().Kind != "a" {
		t.Errorf("expected fallback to composite scoring, got %q", g.Info().Kind)
	}
}

func TestSelectPreferredEmptyNameFallsBack(t *testing.T) {
	s := New().WithHealthRefreshInterval(time.Hour)
	s.Add(&fakeGenerator{name: "a", available: true}, "a", 10)
	s.backends[0].metrics = Metrics{Availability: 0.9, SuccessRate: 0.9, LatencyMs: 100, LastHealthProbe: time.Now()}

	g := s.SelectPreferred(context.Background(), "")
	if g.Info().Kind != "a" {
		t.Errorf("expected composite selection with empty preference, got %q", g.Info().Kind)
	}
}

func TestAddSortsByPriority(t *testing.T) {
	s := New()
	s.Add(&fakeGenerator{name: "low-pref", available: true}, "low-pref", 200)
	s.Add(&fakeGenerator{name: "high-pref", available: true}, "high-pref", 5)

	if s.backends[0].name != "high-pref" {
		t.Errorf("expected high-pref backend first after sort, got %q", s.backends[0].name)
	}
}
