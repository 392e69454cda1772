package matcher

import (
	"testing"

	"github.com/siryoos/caro/internal/generator"
	"github.com/siryoos/caro/internal/safety"
)

func TestMatchFindsKnownPhrase(t *testing.T) {
	m := New(safety.ModeratePolicy)
	cmd, ok, err := m.Match(generator.Request{Input: "show me git status"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a match for a known phrase")
	}
	if cmd.Command != "git status" {
		t.Errorf("got command %q, want %q", cmd.Command, "git status")
	}
	if cmd.Confidence != 1.0 {
		t.Errorf("got confidence %v, want 1.0", cmd.Confidence)
	}
	if cmd.BackendUsed != "static-matcher" {
		t.Errorf("got backend %q, want static-matcher", cmd.BackendUsed)
	}
}

func TestMatchNoMatch(t *testing.T) {
	m := New(safety.ModeratePolicy)
	_, ok, err := m.Match(generator.Request{Input: "compose a haiku about clouds"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected no match for an unrelated phrase")
	}
}

func TestMatchSelectsBSDVariant(t *testing.T) {
	m := New(safety.Permissive)
	cmd, ok, err := m.Match(generator.Request{
		Input:   "show disk usage by directory sorted",
		Context: "bsd",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	if cmd.Command != "du -h -d 1 | sort -hr" {
		t.Errorf("got command %q, want the BSD variant", cmd.Command)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	m := New(safety.ModeratePolicy)
	req := generator.Request{Input: "find large files over 100MB"}
	first, _, _ := m.Match(req)
	second, _, _ := m.Match(req)
	if first.Command != second.Command {
		t.Errorf("non-deterministic match: %q vs %q", first.Command, second.Command)
	}
}
