// Package agent implements the Agent Loop (§4.8): a two-iteration
// refinement driver that wraps a chosen generator, runs an optional
// shellcheck pass on the candidate, and — when warranted — asks the
// generator to fix it with linter feedback and command metadata in
// hand.
package agent

import (
	"context"
	"time"

	"github.com/siryoos/caro/internal/generator"
	"github.com/siryoos/caro/internal/platform"
)

const defaultDeadline = 15 * time.Second

// Loop wraps a generator.Generator to produce a refined command.
type Loop struct {
	Backend  generator.Generator
	Profile  platform.Profile
	Linter   Linter
	Deadline time.Duration
}

// New returns a Loop with the default 15s deadline.
func New(backend generator.Generator, profile platform.Profile) *Loop {
	return &Loop{Backend: backend, Profile: profile, Deadline: defaultDeadline}
}

// Run drives iteration 1, an optional linter pass, and — if the
// deadline budget and linter findings warrant it — iteration 2. The
// returned bool reports whether iteration 2 actually ran and produced
// the returned command, so callers can track refinement-rate metrics.
func (l *Loop) Run(ctx context.Context, req generator.Request) (*generator.Command, bool, error) {
	deadline := l.Deadline
	if deadline <= 0 {
		deadline = defaultDeadline
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	start := time.Now()

	initialPrompt := buildInitialPrompt(l.Profile)
	iterReq := req
	iterReq.Context = joinContext(req.Context, initialPrompt)

	initial, err := l.Backend.Generate(ctx, iterReq)
	if err != nil {
		return nil, false, err
	}

	lint := l.runLinter(ctx, initial.Command)

	elapsed := time.Since(start)
	if elapsed > deadline/2 {
		return initial, false, nil
	}
	if !lint.NeedsRegeneration() {
		return initial, false, nil
	}

	names := extractCommandNames(initial.Command)
	cmdInfo := introspectCommands(ctx, names)

	refinePrompt := buildRefinementPrompt(initialPrompt, initial.Command, lint, cmdInfo)
	refineReq := req
	refineReq.Context = joinContext(req.Context, refinePrompt)

	refined, err := l.Backend.Generate(ctx, refineReq)
	if err != nil {
		// Iteration 2 failing is not fatal: the caller still gets the
		// iteration-1 candidate, which the pipeline validates.
		return initial, false, nil
	}

	// refined.Command has already passed through the backend's own
	// {cmd, confidence, changes} extraction (generators parse whatever
	// "cmd"-keyed JSON their response contains, iteration-2's wrapper
	// included); there is nothing left to re-parse here.
	return refined, true, nil
}

func (l *Loop) runLinter(ctx context.Context, command string) LintResult {
	if !l.Linter.Available() {
		return LintResult{}
	}
	dialect, ok := shellcheckDialect(l.Profile.Shell)
	if !ok {
		return LintResult{}
	}
	result, err := l.Linter.Analyze(ctx, command, dialect)
	if err != nil {
		return LintResult{}
	}
	return result
}

// shellcheckDialect maps a resolved platform shell to one of the four
// dialects shellcheck -s accepts ("bash", "sh", "dash", "ksh"). zsh has
// no distinct dialect; bash is the closest superset and what shellcheck
// itself falls back to. Fish, PowerShell and cmd have no POSIX-family
// grammar shellcheck understands, so the second return is false and the
// caller skips linting rather than flagging valid syntax as broken.
func shellcheckDialect(shell platform.Shell) (string, bool) {
	switch shell {
	case platform.Bash, platform.Zsh, platform.UnknownSh:
		return "bash", true
	default:
		return "", false
	}
}

func joinContext(existing, addition string) string {
	if existing == "" {
		return addition
	}
	return existing + "\n\n" + addition
}
