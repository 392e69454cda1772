// Package pipeline wires the generation stages together (§2): the
// static matcher tried first, falling through to the backend selector
// and an optional agent loop, every non-matcher result gated by the
// safety validator before it reaches the caller.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/siryoos/caro/internal/agent"
	"github.com/siryoos/caro/internal/generator"
	"github.com/siryoos/caro/internal/matcher"
	"github.com/siryoos/caro/internal/metrics"
	"github.com/siryoos/caro/internal/platform"
	"github.com/siryoos/caro/internal/safety"
	"github.com/siryoos/caro/internal/selector"
)

// Pipeline is the assembled generation path: static matcher, backend
// selector, optional agent loop, and the safety validator that gates
// every selector-sourced result (the matcher validates internally).
type Pipeline struct {
	Matcher   *matcher.Matcher
	Selector  *selector.Selector
	Validator *safety.Validator
	Profile   platform.Profile
	Metrics   *metrics.SessionMetrics

	// AgentEnabled wraps the selected backend in an agent.Loop for
	// refinement; bypassed when callers need bounded single-call
	// latency (§4.8: "optional... interactive callers enable it").
	AgentEnabled  bool
	AgentLinter   agent.Linter
	AgentDeadline time.Duration
}

// New builds a Pipeline from its constituent stages. validator gates
// selector-sourced results; the matcher carries its own validator
// instance since it can return Unsafe before ever reaching here.
func New(m *matcher.Matcher, sel *selector.Selector, validator *safety.Validator, profile platform.Profile) *Pipeline {
	return &Pipeline{
		Matcher:   m,
		Selector:  sel,
		Validator: validator,
		Profile:   profile,
		Metrics:   metrics.New(),
	}
}

// Generate runs one request through the full pipeline (§2 data flow).
func (p *Pipeline) Generate(ctx context.Context, req generator.Request) (*generator.Command, error) {
	if p.Metrics != nil {
		p.Metrics.RecordRequest()
	}

	if err := validateInput(req); err != nil {
		return nil, err
	}
	req.Context = annotatePlatform(req.Context, p.Profile)

	if cmd, ok, err := p.Matcher.Match(req); ok || err != nil {
		if p.Metrics != nil {
			if err != nil {
				p.Metrics.RecordSafety(false)
				p.Metrics.RecordFailure()
			} else {
				p.Metrics.RecordSafety(true)
				p.Metrics.RecordMatch(cmd.BackendUsed)
			}
		}
		return cmd, err
	}

	backend := p.Selector.SelectPreferred(ctx, req.Backend)
	if backend == nil {
		if p.Metrics != nil {
			p.Metrics.RecordFailure()
		}
		return nil, generator.BackendUnavailable("selector", "no backend currently meets the minimum availability threshold")
	}

	start := time.Now()
	var cmd *generator.Command
	var err error
	if p.AgentEnabled {
		loop := agent.New(backend, p.Profile)
		loop.Linter = p.AgentLinter
		if p.AgentDeadline > 0 {
			loop.Deadline = p.AgentDeadline
		}
		var refined bool
		cmd, refined, err = loop.Run(ctx, req)
		if refined && p.Metrics != nil {
			p.Metrics.RecordAgentRefinement()
		}
	} else {
		cmd, err = backend.Generate(ctx, req)
	}
	elapsed := time.Since(start)

	name := backendName(backend, cmd)
	success := err == nil
	p.Selector.Record(name, elapsed, success)

	if err != nil {
		if p.Metrics != nil {
			p.Metrics.RecordFailure()
		}
		return nil, err
	}

	result := p.Validator.Validate(cmd.Command)
	cmd.Risk = result.Risk
	cmd.EstimatedImpact = impactNote(result.Risk)

	if p.Metrics != nil {
		p.Metrics.RecordMatch(cmd.BackendUsed)
		p.Metrics.RecordSafety(result.Allowed)
	}

	if !result.Allowed {
		return nil, generator.Unsafe(result.Risk, result.Warnings)
	}

	return cmd, nil
}

func backendName(g generator.Generator, cmd *generator.Command) string {
	if cmd != nil && cmd.BackendUsed != "" {
		return cmd.BackendUsed
	}
	return g.Info().Kind
}

func validateInput(req generator.Request) error {
	if strings.TrimSpace(req.Input) == "" {
		return generator.InvalidRequest("request input is empty")
	}
	if len(req.Input) > generator.MaxInputBytes {
		return generator.InvalidRequest("request input is too long")
	}
	return nil
}

// annotatePlatform appends a "bsd" marker to the request context when
// the pipeline's platform profile is BSD, so the static matcher (which
// has no direct platform dependency) selects the right command variant.
func annotatePlatform(existing string, profile platform.Profile) string {
	marker := "gnu-linux"
	if profile.Family == platform.Bsd {
		marker = "bsd"
	}
	if existing == "" {
		return marker
	}
	return existing + " " + marker
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
