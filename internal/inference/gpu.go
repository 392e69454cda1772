package inference

import (
	"runtime"
	"strconv"

	"github.com/siryoos/caro/internal/generator"
)

// gpuRunner drives the Metal-accelerated llama.cpp build, Apple Silicon
// only (§4.4). On any other arch/OS, NewGPU returns an error rather
// than silently falling back to CPU.
type gpuRunner struct{}

// NewGPU returns an Engine backed by the Metal llama.cpp binary, or an
// error if the current host is not Apple Silicon.
func NewGPU() (*Engine, error) {
	if runtime.GOOS != "darwin" || runtime.GOARCH != "arm64" {
		return nil, generator.ConfigError("GPU inference variant requires Apple Silicon (darwin/arm64)")
	}
	return newEngine(gpuRunner{}), nil
}

func (gpuRunner) binaryName() string { return "llama-cli-metal" }

func (gpuRunner) buildArgs(modelPath, prompt string, cfg Config) []string {
	args := []string{
		"--model", modelPath,
		"--prompt", prompt,
		"--temp", strconv.FormatFloat(cfg.Temperature, 'f', 2, 64),
		"--top-p", strconv.FormatFloat(cfg.TopP, 'f', 2, 64),
		"--n-predict", strconv.Itoa(cfg.MaxTokens),
		"--n-gpu-layers", "999", // offload everything that fits; llama.cpp clamps internally
		"--no-display-prompt",
		"--simple-io",
	}
	for _, s := range cfg.Stop {
		args = append(args, "--reverse-prompt", s)
	}
	return args
}
