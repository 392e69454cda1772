package matcher

import (
	"context"
	"strings"
	"time"

	"github.com/siryoos/caro/internal/generator"
	"github.com/siryoos/caro/internal/safety"
)

// Matcher is the static, first-match-wins Generator (§4.6). It owns an
// immutable pattern library and a Safety Validator; once constructed it
// has no mutable state and is safe for concurrent use.
type Matcher struct {
	entries   []entry
	validator *safety.Validator
}

// New builds a Matcher backed by the built-in pattern library, validating
// every candidate command against policy before returning it.
func New(policy safety.Policy) *Matcher {
	return &Matcher{
		entries:   buildPatterns(),
		validator: safety.New(policy),
	}
}

// Match returns ok=false (with a nil command and nil error) when no
// entry in the library matches; callers fall through to the Backend
// Selector per the data-flow diagram.
func (m *Matcher) Match(req generator.Request) (*generator.Command, bool, error) {
	start := time.Now()
	lowered := strings.ToLower(req.Input)

	for _, e := range m.entries {
		if !e.matches(lowered) {
			continue
		}

		cmdText := e.command(isBSDProfile(req))

		result := m.validator.Validate(cmdText)
		if !result.Allowed {
			return nil, true, generator.Unsafe(result.Risk, result.Warnings)
		}

		return &generator.Command{
			Command:         cmdText,
			Explanation:     e.description,
			Risk:            result.Risk,
			EstimatedImpact: impactNote(result.Risk),
			BackendUsed:     "static-matcher",
			GenerationTime:  time.Since(start),
			Confidence:      1.0,
		}, true, nil
	}

	return nil, false, nil
}

// isBSDProfile reports whether the request's shell context implies BSD
// coreutils; the matcher has no direct platform.Profile dependency, so
// callers that know the host profile set req.Context to "bsd" to select
// the BSD command variant (the pipeline wires this from platform.Detect).
func isBSDProfile(req generator.Request) bool {
	return strings.Contains(req.Context, "bsd")
}

func impactNote(risk generator.RiskLevel) string {
	switch {
	case risk >= generator.High:
		return "destructive or broad-reaching; review before running"
	case risk >= generator.Low:
		return "modifies local state; review recommended"
	default:
		return "read-only or low-impact"
	}
}

// matches implements §4.6 step 2: a present regex is tried alone; absent
// a regex, all required keywords must appear and at least one optional
// keyword must appear, unless the entry carries no optional keywords at
// all (a fixed-phrase entry), in which case the required set alone gates
// the match.
func (e entry) matches(lowered string) bool {
	if e.regex != nil {
		return e.regex.MatchString(lowered)
	}

	for _, kw := range e.required {
		if !strings.Contains(lowered, kw) {
			return false
		}
	}

	if len(e.optional) == 0 {
		return true
	}

	for _, kw := range e.optional {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Generate implements generator.Generator so the Matcher can sit directly
// in the Backend Selector's registry alongside remote/embedded backends.
func (m *Matcher) Generate(_ context.Context, req generator.Request) (*generator.Command, error) {
	cmd, ok, err := m.Match(req)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, generator.GenerationFailed("no static pattern matched the request")
	}
	return cmd, nil
}

// IsAvailable is always true: the static matcher has no external
// dependency and no failure mode short of a programming error.
func (m *Matcher) IsAvailable(_ context.Context) bool { return true }

func (m *Matcher) Info() generator.Info {
	return generator.Info{
		Kind:              "static-matcher",
		SupportsStreaming: false,
		TypicalLatencyMs:  1,
	}
}
