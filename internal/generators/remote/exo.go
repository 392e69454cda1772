package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/siryoos/caro/internal/generator"
)

// Exo talks to a distributed Exo cluster's OpenAI-compatible front end;
// the wire shape matches vLLM's, so Exo reuses chatCompletionRequest and
// chatCompletionResponse.
type Exo struct {
	Endpoint string
	Model    string
	Fallback generator.Generator
}

func (e *Exo) Generate(ctx context.Context, req generator.Request) (*generator.Command, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	temperature, maxTokens := samplingParams()
	payload := chatCompletionRequest{
		Model: e.Model,
		Messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(systemPromptTemplate, req.Shell)},
			{Role: "user", Content: req.Input},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	body, err := doJSON(ctx, "exo", e.Endpoint+"/v1/chat/completions", nil, payload)
	if err != nil {
		return fallbackOrError(ctx, "exo", e.Fallback, req, err)
	}

	var parsed chatCompletionResponse
	if err := unmarshalOrParseErr(body, &parsed); err != nil {
		return fallbackOrError(ctx, "exo", e.Fallback, req, err)
	}
	if len(parsed.Choices) == 0 {
		return fallbackOrError(ctx, "exo", e.Fallback, req,
			generator.ParseError("response contained no choices", string(body), e.Model))
	}

	cmd, err := extractCommand(parsed.Choices[0].Message.Content)
	if err != nil {
		return fallbackOrError(ctx, "exo", e.Fallback, req, err)
	}

	return &generator.Command{
		Command:        cmd,
		BackendUsed:    "exo",
		GenerationTime: time.Since(start),
		Confidence:     0.85,
	}, nil
}

func (e *Exo) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.Endpoint+"/v1/models", nil)
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

func (e *Exo) Info() generator.Info {
	return generator.Info{Kind: "exo", ModelName: e.Model, TypicalLatencyMs: 3000}
}
