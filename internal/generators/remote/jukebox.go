package remote

import (
	"context"
	"net/http"
	"time"

	"github.com/siryoos/caro/internal/generator"
)

// jukeboxTimeout is longer than defaultTimeout to accommodate Jukebox's
// model-swap latency when a request targets a model it does not
// currently have loaded (§4.5).
const jukeboxTimeout = 60 * time.Second

// Jukebox talks to a multi-model server that swaps models on demand; the
// wire shape is its own (model selection by name in the request body,
// single "text" response field rather than a choices array).
type Jukebox struct {
	Endpoint string
	Model    string
	Fallback generator.Generator
}

type jukeboxRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	System      string  `json:"system"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

type jukeboxResponse struct {
	Text string `json:"text"`
}

func (j *Jukebox) Generate(ctx context.Context, req generator.Request) (*generator.Command, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, jukeboxTimeout)
	defer cancel()

	temperature, maxTokens := samplingParams()
	payload := jukeboxRequest{
		Model:       j.Model,
		Prompt:      req.Input,
		System:      "translate the request into a single POSIX shell command; respond only with {\"cmd\": \"...\"}",
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	body, err := doJSON(ctx, "jukebox", j.Endpoint+"/generate", nil, payload)
	if err != nil {
		return fallbackOrError(ctx, "jukebox", j.Fallback, req, err)
	}

	var parsed jukeboxResponse
	if err := unmarshalOrParseErr(body, &parsed); err != nil {
		return fallbackOrError(ctx, "jukebox", j.Fallback, req, err)
	}

	cmd, err := extractCommand(parsed.Text)
	if err != nil {
		return fallbackOrError(ctx, "jukebox", j.Fallback, req, err)
	}

	return &generator.Command{
		Command:        cmd,
		BackendUsed:    "jukebox",
		GenerationTime: time.Since(start),
		Confidence:     0.85,
	}, nil
}

func (j *Jukebox) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.Endpoint+"/health", nil)
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

func (j *Jukebox) Info() generator.Info {
	return generator.Info{Kind: "jukebox", ModelName: j.Model, TypicalLatencyMs: 4000}
}
