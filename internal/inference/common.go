package inference

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/siryoos/caro/internal/generator"
)

// runner knows how to turn a prompt and Config into an invocation of a
// specific embedded binary. cpu.go and gpu.go each provide one.
type runner interface {
	binaryName() string
	buildArgs(modelPath, prompt string, cfg Config) []string
}

const inferTimeout = 20 * time.Second

// Engine is the shared Load/Infer/Unload contract (§4.4, §5 concurrency
// model). State is guarded by mu, but the lock is never held across the
// blocking subprocess call: Infer copies out what it needs, releases
// the lock, then runs, so one slow inference does not stall Load/Unload
// calls made from other goroutines.
type Engine struct {
	mu sync.Mutex

	r         runner
	modelPath string
	loaded    bool
}

func newEngine(r runner) *Engine {
	return &Engine{r: r}
}

// Load records the model path for subsequent Infer calls. Loading the
// same path twice is a fast no-op; loading a different path while
// already loaded replaces it (the embedded binary has no persistent
// process to tear down between calls, so there is nothing to unload).
func (e *Engine) Load(modelPath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded && e.modelPath == modelPath {
		return nil
	}
	if _, err := exec.LookPath(e.r.binaryName()); err != nil {
		return generator.BackendUnavailable(e.r.binaryName(), fmt.Sprintf("embedded binary not found on PATH: %v", err))
	}

	e.modelPath = modelPath
	e.loaded = true
	return nil
}

// Unload clears the loaded-model marker. Safe to call when nothing is
// loaded.
func (e *Engine) Unload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loaded = false
	e.modelPath = ""
}

// Infer runs one prompt through the embedded binary and returns the
// generated text, trimmed of surrounding whitespace.
func (e *Engine) Infer(ctx context.Context, prompt string, cfg Config) (string, error) {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return "", generator.Internal("inference engine used before Load", "")
	}
	modelPath := e.modelPath
	binary := e.r.binaryName()
	args := e.r.buildArgs(modelPath, prompt, cfg.Normalize())
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, inferTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", generator.Timeout(int(inferTimeout.Seconds()), "static")
		}
		return "", generator.GenerationFailed(fmt.Sprintf("%s exited with error: %v: %s", binary, err, strings.TrimSpace(stderr.String())))
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", generator.ParseError("empty output", text, binary)
	}
	return text, nil
}
