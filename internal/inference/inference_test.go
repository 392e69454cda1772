package inference

import (
	"runtime"
	"testing"
)

func TestConfigNormalizeClamps(t *testing.T) {
	c := Config{Temperature: 9, TopP: -1, MaxTokens: 1 << 20}
	got := c.Normalize()
	if got.Temperature != 2 {
		t.Errorf("temperature = %v, want 2", got.Temperature)
	}
	if got.TopP != 0 {
		t.Errorf("top_p = %v, want 0", got.TopP)
	}
	if got.MaxTokens != hardMaxTokens {
		t.Errorf("max_tokens = %v, want %v", got.MaxTokens, hardMaxTokens)
	}
}

func TestConfigNormalizeZeroMaxTokensUsesDefault(t *testing.T) {
	c := Config{MaxTokens: 0}
	got := c.Normalize()
	if got.MaxTokens != defaultMaxTokens {
		t.Errorf("max_tokens = %v, want default %v", got.MaxTokens, defaultMaxTokens)
	}
}

func TestLoadSameModelIsNoop(t *testing.T) {
	e := newEngine(cpuRunner{})
	e.modelPath = "/tmp/already-loaded.gguf"
	e.loaded = true

	if err := e.Load("/tmp/already-loaded.gguf"); err != nil {
		t.Fatalf("re-loading the same path should be a no-op, got error: %v", err)
	}
}

func TestInferBeforeLoadFails(t *testing.T) {
	e := newEngine(cpuRunner{})
	_, err := e.Infer(nil, "list files", DefaultConfig())
	if err == nil {
		t.Fatal("expected an error calling Infer before Load")
	}
}

func TestExtractCmdFieldStrictJSON(t *testing.T) {
	got, err := extractCmdField(`{"cmd": "ls -la"}`)
	if err != nil {
		t.Fatal(err)
	}
	if got != "ls -la" {
		t.Errorf("got %q, want %q", got, "ls -la")
	}
}

func TestExtractCmdFieldWithSurroundingProse(t *testing.T) {
	got, err := extractCmdField("Sure thing! {\"cmd\": \"du -sh .\"} Hope that helps.")
	if err != nil {
		t.Fatal(err)
	}
	if got != "du -sh ." {
		t.Errorf("got %q, want %q", got, "du -sh .")
	}
}

func TestExtractCmdFieldFallsBackToFirstLine(t *testing.T) {
	got, err := extractCmdField("ls -la\nthis lists files in the current directory")
	if err != nil {
		t.Fatal(err)
	}
	if got != "ls -la" {
		t.Errorf("got %q, want %q", got, "ls -la")
	}
}

func TestCPUArgsIncludeModelAndPrompt(t *testing.T) {
	args := cpuRunner{}.buildArgs("/models/x.gguf", "list files", DefaultConfig())
	found := map[string]bool{"/models/x.gguf": false, "list files": false}
	for _, a := range args {
		if _, ok := found[a]; ok {
			found[a] = true
		}
	}
	for v, ok := range found {
		if !ok {
			t.Errorf("expected args to contain %q", v)
		}
	}
}

func TestGPUUnavailableOnNonAppleSilicon(t *testing.T) {
	// NewGPU returns exactly one of (engine, error), and on any host other
	// than darwin/arm64 it is the error.
	e, err := NewGPU()
	if (e == nil) == (err == nil) {
		t.Errorf("NewGPU must return exactly one of (engine, error), got engine=%v err=%v", e, err)
	}
	if (runtime.GOOS != "darwin" || runtime.GOARCH != "arm64") && err == nil {
		t.Errorf("NewGPU on %s/%s: expected an error, got engine=%v", runtime.GOOS, runtime.GOARCH, e)
	}
}
