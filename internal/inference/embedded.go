package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/siryoos/caro/internal/generator"
	"github.com/siryoos/caro/internal/models"
)

const systemPromptTemplate = `You translate natural-language requests into a single POSIX shell command.
Target shell: %s.
Respond with a JSON object of the exact shape {"cmd": "<shell command>"} and nothing else.

Request: %s
`

// Embedded adapts an Engine (CPU or GPU) plus a model Loader into a
// generator.Generator, so the rest of the pipeline treats the local
// model exactly like a remote backend (§4.4).
type Embedded struct {
	Engine *Engine
	Loader *models.Loader
	Config Config

	loadedOnce bool
}

func NewEmbedded(engine *Engine, loader *models.Loader) *Embedded {
	return &Embedded{Engine: engine, Loader: loader, Config: DefaultConfig()}
}

func (e *Embedded) ensureLoaded() error {
	path, found := e.Loader.Resolve()
	if !found {
		return generator.BackendUnavailable("embedded", fmt.Sprintf("model %s is not cached at %s", e.Loader.Selected().ID, path))
	}
	if _, err := models.Verify(path, e.Loader.Selected()); err != nil {
		return err
	}
	if err := e.Engine.Load(path); err != nil {
		return err
	}
	e.loadedOnce = true
	return nil
}

func (e *Embedded) Generate(ctx context.Context, req generator.Request) (*generator.Command, error) {
	start := time.Now()
	if err := e.ensureLoaded(); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(systemPromptTemplate, req.Shell, req.Input)
	raw, err := e.Engine.Infer(ctx, prompt, e.Config)
	if err != nil {
		return nil, err
	}

	cmd, err := extractCmdField(raw)
	if err != nil {
		return nil, err
	}

	return &generator.Command{
		Command:        cmd,
		BackendUsed:    "embedded",
		GenerationTime: time.Since(start),
		Confidence:     0.85,
	}, nil
}

func (e *Embedded) IsAvailable(ctx context.Context) bool {
	if e.loadedOnce {
		return true
	}
	_, found := e.Loader.Resolve()
	return found
}

var reCmdField = regexp.MustCompile(`"cmd"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// extractCmdField pulls the cmd field out of the embedded binary's raw
// text, which may be strict JSON, JSON wrapped in commentary, or (if the
// model ignored instructions) plain prose with no JSON at all — the
// last case falls back to treating the first line of the trimmed text
// as the command, since a small local model is more likely to just answer
// directly than to wrap it.
func extractCmdField(text string) (string, error) {
	text = strings.TrimSpace(text)

	var parsed struct {
		Cmd string `json:"cmd"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err == nil && parsed.Cmd != "" {
		return parsed.Cmd, nil
	}

	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err == nil && parsed.Cmd != "" {
				return parsed.Cmd, nil
			}
		}
	}

	if m := reCmdField.FindStringSubmatch(text); m != nil {
		return m[1], nil
	}

	if line := strings.SplitN(text, "\n", 2)[0]; line != "" {
		return line, nil
	}

	return "", generator.ParseError("no cmd field found", text, "embedded")
}

func (e *Embedded) Info() generator.Info {
	d := e.Loader.Selected()
	return generator.Info{
		Kind:             "embedded",
		ModelName:        d.DisplayName,
		MaxTokens:        e.Config.MaxTokens,
		TypicalLatencyMs: 4000,
		MemoryMB:         d.ExpectedMiB,
	}
}
