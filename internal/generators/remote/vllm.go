package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/siryoos/caro/internal/generator"
)

// VLLM talks to an OpenAI-compatible /v1/chat/completions endpoint.
type VLLM struct {
	Endpoint string
	Model    string
	APIKey   string
	Fallback generator.Generator
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (v *VLLM) Generate(ctx context.Context, req generator.Request) (*generator.Command, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	temperature, maxTokens := samplingParams()
	payload := chatCompletionRequest{
		Model: v.Model,
		Messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(systemPromptTemplate, req.Shell)},
			{Role: "user", Content: req.Input},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	headers := map[string]string{}
	if v.APIKey != "" {
		headers["Authorization"] = "Bearer " + v.APIKey
	}

	body, err := doJSON(ctx, "vllm", v.Endpoint+"/v1/chat/completions", headers, payload)
	if err != nil {
		return fallbackOrError(ctx, "vllm", v.Fallback, req, err)
	}

	var parsed chatCompletionResponse
	if err := unmarshalOrParseErr(body, &parsed); err != nil {
		return fallbackOrError(ctx, "vllm", v.Fallback, req, err)
	}
	if len(parsed.Choices) == 0 {
		return fallbackOrError(ctx, "vllm", v.Fallback, req,
			generator.ParseError("response contained no choices", string(body), v.Model))
	}

	cmd, err := extractCommand(parsed.Choices[0].Message.Content)
	if err != nil {
		return fallbackOrError(ctx, "vllm", v.Fallback, req, err)
	}

	return &generator.Command{
		Command:        cmd,
		BackendUsed:    "vllm",
		GenerationTime: time.Since(start),
		Confidence:     0.85,
	}, nil
}

func (v *VLLM) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.Endpoint+"/v1/models", nil)
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

func (v *VLLM) Info() generator.Info {
	return generator.Info{Kind: "vllm", ModelName: v.Model, TypicalLatencyMs: 2000}
}
