package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/siryoos/caro/internal/generator"
)

const systemPromptTemplate = `You translate natural-language requests into a single POSIX shell command.
Target shell: %s.
Respond with a JSON object of the exact shape {"cmd": "<shell command>"} and nothing else.`

// Ollama talks to a local Ollama server's /api/generate endpoint,
// non-streaming (§4.5).
type Ollama struct {
	Endpoint string // default http://localhost:11434
	Model    string
	Fallback generator.Generator
}

type ollamaRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	System  string                 `json:"system"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (o *Ollama) endpoint() string {
	if o.Endpoint != "" {
		return o.Endpoint
	}
	return "http://localhost:11434"
}

func (o *Ollama) model() string {
	if o.Model != "" {
		return o.Model
	}
	return "deepseek-r1:8b"
}

func (o *Ollama) Generate(ctx context.Context, req generator.Request) (*generator.Command, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	temperature, maxTokens := samplingParams()
	payload := ollamaRequest{
		Model:   o.model(),
		Prompt:  req.Input,
		System:  fmt.Sprintf(systemPromptTemplate, req.Shell),
		Stream:  false,
		Options: map[string]interface{}{"temperature": temperature, "num_predict": maxTokens},
	}

	body, err := doJSON(ctx, "ollama", o.endpoint()+"/api/generate", nil, payload)
	if err != nil {
		return fallbackOrError(ctx, "ollama", o.Fallback, req, err)
	}

	var parsed ollamaResponse
	if err := unmarshalOrParseErr(body, &parsed); err != nil {
		return fallbackOrError(ctx, "ollama", o.Fallback, req, err)
	}

	cmd, err := extractCommand(parsed.Response)
	if err != nil {
		return fallbackOrError(ctx, "ollama", o.Fallback, req, err)
	}

	return &generator.Command{
		Command:        strings.TrimSpace(cmd),
		BackendUsed:    "ollama",
		GenerationTime: time.Since(start),
		Confidence:     0.85,
	}, nil
}

func (o *Ollama) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint()+"/api/tags", nil)
	if err != nil {
		return false
	}
	res, err := httpClient.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return res.StatusCode == http.StatusOK
}

func (o *Ollama) Info() generator.Info {
	return generator.Info{Kind: "ollama", ModelName: o.model(), TypicalLatencyMs: 1500, MemoryMB: 0}
}
