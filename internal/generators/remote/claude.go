package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/siryoos/caro/internal/generator"
)

// Claude talks to Anthropic's Messages API directly. The pack carries no
// call-site for the official SDK, and the pinned header/field-path
// contract here is small enough to keep hand-rolled: a system prompt
// field separate from the messages array, and two fixed headers.
type Claude struct {
	Endpoint   string // default https://api.anthropic.com/v1/messages
	Model      string // e.g. claude-3-5-haiku-latest
	APIKey     string
	APIVersion string // default 2023-06-01
	Fallback   generator.Generator
}

type claudeRequest struct {
	Model       string          `json:"model"`
	System      string          `json:"system"`
	Messages    []claudeMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *Claude) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return "https://api.anthropic.com/v1/messages"
}

func (c *Claude) apiVersion() string {
	if c.APIVersion != "" {
		return c.APIVersion
	}
	return "2023-06-01"
}

func (c *Claude) Generate(ctx context.Context, req generator.Request) (*generator.Command, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	temperature, maxTokens := samplingParams()
	payload := claudeRequest{
		Model:       c.Model,
		System:      fmt.Sprintf(systemPromptTemplate, req.Shell),
		Messages:    []claudeMessage{{Role: "user", Content: req.Input}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	headers := map[string]string{
		"x-api-key":         c.APIKey,
		"anthropic-version": c.apiVersion(),
	}

	body, err := doJSON(ctx, "claude", c.endpoint(), headers, payload)
	if err != nil {
		return fallbackOrError(ctx, "claude", c.Fallback, req, err)
	}

	var parsed claudeResponse
	if err := unmarshalOrParseErr(body, &parsed); err != nil {
		return fallbackOrError(ctx, "claude", c.Fallback, req, err)
	}
	if len(parsed.Content) == 0 {
		return fallbackOrError(ctx, "claude", c.Fallback, req,
			generator.ParseError("response contained no content blocks", string(body), c.Model))
	}

	cmd, err := extractCommand(parsed.Content[0].Text)
	if err != nil {
		return fallbackOrError(ctx, "claude", c.Fallback, req, err)
	}

	return &generator.Command{
		Command:        cmd,
		BackendUsed:    "claude",
		GenerationTime: time.Since(start),
		Confidence:     0.95,
	}, nil
}

func (c *Claude) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.anthropic.com", nil)
	if err != nil {
		return false
	}
	res, err := httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return true
}

func (c *Claude) Info() generator.Info {
	return generator.Info{Kind: "claude", ModelName: c.Model, TypicalLatencyMs: 1200}
}
