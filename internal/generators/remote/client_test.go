package remote

import (
	"errors"
	"net/http"
	"testing"

	"github.com/siryoos/caro/internal/generator"
)

func TestExtractCommandStrictJSON(t *testing.T) {
	cmd, err := extractCommand(`{"cmd": "ls -la"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd != "ls -la" {
		t.Errorf("got %q, want %q", cmd, "ls -la")
	}
}

func TestExtractCommandSurroundingProse(t *testing.T) {
	cmd, err := extractCommand("Sure, here you go:\n{\"cmd\": \"df -h\"}\nLet me know if you need more.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd != "df -h" {
		t.Errorf("got %q, want %q", cmd, "df -h")
	}
}

func TestExtractCommandRegexRescue(t *testing.T) {
	cmd, err := extractCommand(`the answer is "cmd": "echo \"hi\"" end of message, not valid json overall {`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd != `echo "hi"` {
		t.Errorf("got %q, want %q", cmd, `echo "hi"`)
	}
}

func TestExtractCommandFailsCleanly(t *testing.T) {
	_, err := extractCommand("no json anywhere in this string")
	if err == nil {
		t.Fatal("expected an error")
	}
	var genErr *generator.Error
	if !errors.As(err, &genErr) || genErr.Kind != generator.KindParseError {
		t.Errorf("expected a ParseError, got %v", err)
	}
}

func TestClassifyStatus(t *testing.T) {
	cases := map[int]generator.Kind{
		http.StatusUnauthorized:     generator.KindBackendUnavailable,
		http.StatusForbidden:        generator.KindBackendUnavailable,
		http.StatusNotFound:         generator.KindConfigError,
		http.StatusTooManyRequests:  generator.KindGenerationFailed,
		http.StatusServiceUnavailable: generator.KindBackendUnavailable,
		http.StatusInternalServerError: generator.KindBackendUnavailable,
	}
	for status, wantKind := range cases {
		err := classifyStatus("ollama", status, "body")
		var genErr *generator.Error
		if !errors.As(err, &genErr) {
			t.Fatalf("status %d: expected *generator.Error, got %T", status, err)
		}
		if genErr.Kind != wantKind {
			t.Errorf("status %d: got kind %s, want %s", status, genErr.Kind, wantKind)
		}
	}
}
