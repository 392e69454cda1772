package metrics

import "testing"

func TestSnapshotRates(t *testing.T) {
	m := New()
	m.RecordRequest()
	m.RecordRequest()
	m.RecordMatch("static-matcher")
	m.RecordMatch("ollama")
	m.RecordMatch("static-matcher")
	m.RecordSafety(true)
	m.RecordSafety(true)
	m.RecordSafety(false)
	m.RecordAgentRefinement()

	snap := m.Snapshot()
	if snap.Requests != 2 {
		t.Errorf("got %d requests, want 2", snap.Requests)
	}
	if snap.MatchesByBackend["static-matcher"] != 2 {
		t.Errorf("got %d static-matcher matches, want 2", snap.MatchesByBackend["static-matcher"])
	}
	if got, want := snap.SafetyAllowRate, 2.0/3.0; got != want {
		t.Errorf("got allow rate %v, want %v", got, want)
	}
	if snap.SafetyBlocked != 1 {
		t.Errorf("got %d blocked, want 1", snap.SafetyBlocked)
	}
	if snap.AgentRefinements != 1 {
		t.Errorf("got %d refinements, want 1", snap.AgentRefinements)
	}
}

func TestSafetyAllowRateZeroWhenNoSamples(t *testing.T) {
	m := New()
	if rate := m.Snapshot().SafetyAllowRate; rate != 0 {
		t.Errorf("got %v, want 0", rate)
	}
}
