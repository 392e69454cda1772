package inference

import "strconv"

// cpuRunner drives a plain llama.cpp `main`/`llama-cli` build. It is the
// default variant on every platform (§4.4).
type cpuRunner struct{}

// NewCPU returns an Engine backed by the CPU llama.cpp binary.
func NewCPU() *Engine {
	return newEngine(cpuRunner{})
}

func (cpuRunner) binaryName() string { return "llama-cli" }

func (cpuRunner) buildArgs(modelPath, prompt string, cfg Config) []string {
	args := []string{
		"--model", modelPath,
		"--prompt", prompt,
		"--temp", strconv.FormatFloat(cfg.Temperature, 'f', 2, 64),
		"--top-p", strconv.FormatFloat(cfg.TopP, 'f', 2, 64),
		"--n-predict", strconv.Itoa(cfg.MaxTokens),
		"--no-display-prompt",
		"--simple-io",
	}
	for _, s := range cfg.Stop {
		args = append(args, "--reverse-prompt", s)
	}
	return args
}
