package pipeline

import (
	"context"
	"testing"

	"github.com/siryoos/caro/internal/generator"
	"github.com/siryoos/caro/internal/matcher"
	"github.com/siryoos/caro/internal/platform"
	"github.com/siryoos/caro/internal/safety"
	"github.com/siryoos/caro/internal/selector"
)

// fakeBackend returns a fixed command (or error) regardless of input,
// standing in for a remote/embedded generator in tests that only care
// about pipeline wiring, not generation quality.
type fakeBackend struct {
	name     string
	commands []string
	calls    int
	err      error
}

func (f *fakeBackend) Generate(_ context.Context, req generator.Request) (*generator.Command, error) {
	if f.err != nil {
		return nil, f.err
	}
	idx := f.calls
	if idx >= len(f.commands) {
		idx = len(f.commands) - 1
	}
	f.calls++
	return &generator.Command{Command: f.commands[idx], BackendUsed: f.name, Confidence: 0.9}, nil
}
func (f *fakeBackend) IsAvailable(_ context.Context) bool { return true }
func (f *fakeBackend) Info() generator.Info               { return generator.Info{Kind: f.name} }

func newPipeline(profile platform.Profile, policy safety.Policy) *Pipeline {
	m := matcher.New(policy)
	sel := selector.New()
	v := safety.New(policy)
	return New(m, sel, v, profile)
}

func TestGenerateListFilesModifiedTodayMatchesStatically(t *testing.T) {
	p := newPipeline(platform.Profile{Family: platform.GnuLinux, Shell: platform.Bash}, safety.ModeratePolicy)

	cmd, err := p.Generate(context.Background(), generator.Request{Input: "list all files modified today", Shell: platform.Bash})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Command != `find . -type f -mtime 0` {
		t.Errorf("got %q", cmd.Command)
	}
	if cmd.BackendUsed != "static-matcher" {
		t.Errorf("expected static-matcher, got %q", cmd.BackendUsed)
	}
	if cmd.Risk != generator.Safe {
		t.Errorf("expected Safe risk, got %v", cmd.Risk)
	}
}

func TestGenerateDiskUsageUsesBSDVariant(t *testing.T) {
	p := newPipeline(platform.Profile{Family: platform.Bsd, Shell: platform.Zsh}, safety.ModeratePolicy)

	cmd, err := p.Generate(context.Background(), generator.Request{
		Input: "show me disk usage by directory, sorted",
		Shell: platform.Zsh,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Command != `du -h -d 1 | sort -hr` {
		t.Errorf("got %q, want BSD du variant", cmd.Command)
	}
}

func TestGenerateFindsPDFsOverSizeInDownloads(t *testing.T) {
	p := newPipeline(platform.Profile{Family: platform.GnuLinux, Shell: platform.Bash}, safety.ModeratePolicy)

	cmd, err := p.Generate(context.Background(), generator.Request{
		Input: "find all pdf files over 10mb in my downloads folder",
		Shell: platform.Bash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Command != `find ~/Downloads -name "*.pdf" -size +10M -ls` {
		t.Errorf("got %q", cmd.Command)
	}
}

// TestGenerateFallsThroughToSelectorOnNoMatch exercises the no-match path:
// the matcher declines, the selector picks the only registered backend,
// and the safety validator allows the resulting Safe command through.
func TestGenerateFallsThroughToSelectorOnNoMatch(t *testing.T) {
	p := newPipeline(platform.Profile{Family: platform.GnuLinux, Shell: platform.Bash}, safety.ModeratePolicy)
	backend := &fakeBackend{name: "remote-backend", commands: []string{"echo hello"}}
	p.Selector.Add(backend, "remote-backend", 10)

	cmd, err := p.Generate(context.Background(), generator.Request{
		Input: "say hello to me in the terminal please",
		Shell: platform.Bash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Command != "echo hello" {
		t.Errorf("got %q", cmd.Command)
	}
	if cmd.BackendUsed != "remote-backend" {
		t.Errorf("expected remote-backend, got %q", cmd.BackendUsed)
	}
}

// TestGenerateDeniesCriticalCommandFromBackend covers a generator that
// proposes a destructive command with no static pattern to catch it
// first: the safety validator must still deny it downstream.
func TestGenerateDeniesCriticalCommandFromBackend(t *testing.T) {
	p := newPipeline(platform.Profile{Family: platform.GnuLinux, Shell: platform.Bash}, safety.ModeratePolicy)
	backend := &fakeBackend{name: "remote-backend", commands: []string{"rm -rf /"}}
	p.Selector.Add(backend, "remote-backend", 10)

	_, err := p.Generate(context.Background(), generator.Request{
		Input: "delete the entire system for me",
		Shell: platform.Bash,
	})
	if err == nil {
		t.Fatal("expected an error for a critical-risk command")
	}
	gerr, ok := err.(*generator.Error)
	if !ok {
		t.Fatalf("expected *generator.Error, got %T", err)
	}
	if gerr.Kind != generator.KindUnsafe {
		t.Errorf("expected KindUnsafe, got %v", gerr.Kind)
	}
	if gerr.Risk != generator.Critical {
		t.Errorf("expected Critical risk, got %v", gerr.Risk)
	}
}

func TestGenerateRejectsEmptyInput(t *testing.T) {
	p := newPipeline(platform.Profile{Family: platform.GnuLinux, Shell: platform.Bash}, safety.ModeratePolicy)

	_, err := p.Generate(context.Background(), generator.Request{Input: "   ", Shell: platform.Bash})
	if err == nil {
		t.Fatal("expected an error for empty input")
	}
}

func TestGenerateReturnsBackendUnavailableWhenSelectorEmpty(t *testing.T) {
	p := newPipeline(platform.Profile{Family: platform.GnuLinux, Shell: platform.Bash}, safety.ModeratePolicy)

	_, err := p.Generate(context.Background(), generator.Request{
		Input: "do something nobody has a static pattern for",
		Shell: platform.Bash,
	})
	if err == nil {
		t.Fatal("expected an error when no backend is registered")
	}
	gerr, ok := err.(*generator.Error)
	if !ok || gerr.Kind != generator.KindBackendUnavailable {
		t.Fatalf("expected KindBackendUnavailable, got %v", err)
	}
}

func TestGenerateTracksMetrics(t *testing.T) {
	p := newPipeline(platform.Profile{Family: platform.GnuLinux, Shell: platform.Bash}, safety.ModeratePolicy)

	if _, err := p.Generate(context.Background(), generator.Request{Input: "list all files modified today", Shell: platform.Bash}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := p.Metrics.Snapshot()
	if snap.Requests != 1 {
		t.Errorf("expected 1 request recorded, got %d", snap.Requests)
	}
}

func TestGenerateWithAgentLoopKeepsIterationOneCandidateWithoutLinter(t *testing.T) {
	p := newPipeline(platform.Profile{Family: platform.GnuLinux, Shell: platform.Bash}, safety.ModeratePolicy)
	// An unquoted expansion (SC2086) would be refinement-worthy, and the
	// stub holds a quoted second command, but with no linter the loop
	// never asks for it.
	backend := &fakeBackend{name: "embedded", commands: []string{`echo $1`, `echo "$1"`}}
	p.Selector.Add(backend, "embedded", 10)
	p.AgentEnabled = true
	// No shellcheck binary in this environment: the loop degrades to a
	// single iteration-1 call with no refinement, which is still a
	// valid wiring check (loop.Run is reached and returns cleanly).
	p.AgentLinter.BinaryPath = "/no/such/shellcheck-binary"

	cmd, err := p.Generate(context.Background(), generator.Request{
		Input: "print the first argument back to me",
		Shell: platform.Bash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Command != `echo $1` {
		t.Errorf("expected the iteration-1 candidate when shellcheck is unavailable, got %q", cmd.Command)
	}
	if backend.calls != 1 {
		t.Errorf("expected exactly one generate call, got %d", backend.calls)
	}
}
