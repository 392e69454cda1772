// Package metrics tracks per-session, CLI-facing counters: how many
// requests were handled, which component answered them, how often the
// Safety Validator blocked something, and how often the Agent Loop
// needed a second iteration. This is distinct from the Backend
// Selector's own EWMA latency/success metrics (internal/selector), which
// are per-backend and feed routing decisions rather than a human report.
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// SessionMetrics accumulates counters for one caro process lifetime. Not
// safe for concurrent use without external synchronization; the CLI is
// single-threaded at the orchestration layer (§5), so none is needed
// there.
type SessionMetrics struct {
	Requests        int            `json:"requests"`
	MatchesByBackend map[string]int `json:"matches_by_backend"`
	SafetyAllowed   int            `json:"safety_allowed"`
	SafetyBlocked   int            `json:"safety_blocked"`
	AgentRefinements int           `json:"agent_refinements"`
	Failures        int            `json:"failures"`
	SessionStartedAt time.Time     `json:"session_started_at"`
}

// Snapshot is the immutable, JSON-friendly view returned by Snapshot().
type Snapshot struct {
	Requests         int            `json:"requests"`
	MatchesByBackend map[string]int `json:"matches_by_backend"`
	SafetyAllowRate  float64        `json:"safety_allow_rate"`
	SafetyBlocked    int            `json:"safety_blocked"`
	AgentRefinements int            `json:"agent_refinements"`
	Failures         int            `json:"failures"`
	SessionSeconds   int            `json:"session_seconds"`
}

func New() *SessionMetrics {
	return &SessionMetrics{
		MatchesByBackend: make(map[string]int),
		SessionStartedAt: time.Now(),
	}
}

func (m *SessionMetrics) RecordRequest() { m.Requests++ }

func (m *SessionMetrics) RecordMatch(backend string) {
	m.MatchesByBackend[backend]++
}

func (m *SessionMetrics) RecordSafety(allowed bool) {
	if allowed {
		m.SafetyAllowed++
	} else {
		m.SafetyBlocked++
	}
}

func (m *SessionMetrics) RecordAgentRefinement() { m.AgentRefinements++ }

func (m *SessionMetrics) RecordFailure() { m.Failures++ }

func (m *SessionMetrics) safetyAllowRate() float64 {
	total := m.SafetyAllowed + m.SafetyBlocked
	if total == 0 {
		return 0
	}
	return float64(m.SafetyAllowed) / float64(total)
}

func (m *SessionMetrics) Snapshot() Snapshot {
	return Snapshot{
		Requests:         m.Requests,
		MatchesByBackend: m.MatchesByBackend,
		SafetyAllowRate:  m.safetyAllowRate(),
		SafetyBlocked:    m.SafetyBlocked,
		AgentRefinements: m.AgentRefinements,
		Failures:         m.Failures,
		SessionSeconds:   int(time.Since(m.SessionStartedAt).Seconds()),
	}
}

func (m *SessionMetrics) DumpJSON(w io.Writer) {
	data, err := json.MarshalIndent(m.Snapshot(), "", "  ")
	if err != nil {
		fmt.Fprintf(w, "error marshaling metrics: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%s\n", data)
}

func (m *SessionMetrics) Dump() { m.DumpJSON(os.Stdout) }

// Table renders a short human-readable summary for CLI display.
func (m *SessionMetrics) Table() string {
	snap := m.Snapshot()
	rows := []string{
		"┌────────────────────────────┬───────────┐",
		fmt.Sprintf("│ %-26s │ %9d │", "Requests", snap.Requests),
		fmt.Sprintf("│ %-26s │ %8.1f%% │", "Safety Allow Rate", snap.SafetyAllowRate*100),
		fmt.Sprintf("│ %-26s │ %9d │", "Safety Blocked", snap.SafetyBlocked),
		fmt.Sprintf("│ %-26s │ %9d │", "Agent Refinements", snap.AgentRefinements),
		fmt.Sprintf("│ %-26s │ %9d │", "Failures", snap.Failures),
		"└────────────────────────────┴───────────┘",
	}
	var byBackend []string
	for backend, n := range snap.MatchesByBackend {
		byBackend = append(byBackend, fmt.Sprintf("%s=%d", backend, n))
	}
	if len(byBackend) > 0 {
		rows = append(rows, "Matches: "+strings.Join(byBackend, " "))
	}
	return strings.Join(rows, "\n")
}
