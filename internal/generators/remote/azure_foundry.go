package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/siryoos/caro/internal/generator"
)

// AzureFoundry talks to an Azure AI Foundry chat-completions deployment:
// API-version query parameter plus an api-key header rather than bearer
// auth (§4.5).
type AzureFoundry struct {
	Endpoint       string // e.g. https://<resource>.openai.azure.com/openai/deployments/<deployment>
	APIVersion     string // default 2024-06-01
	APIKey         string
	Fallback       generator.Generator
}

func (a *AzureFoundry) apiVersion() string {
	if a.APIVersion != "" {
		return a.APIVersion
	}
	return "2024-06-01"
}

func (a *AzureFoundry) Generate(ctx context.Context, req generator.Request) (*generator.Command, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	temperature, maxTokens := samplingParams()
	payload := chatCompletionRequest{
		Messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(systemPromptTemplate, req.Shell)},
			{Role: "user", Content: req.Input},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	url := fmt.Sprintf("%s/chat/completions?api-version=%s", a.Endpoint, a.apiVersion())
	headers := map[string]string{"api-key": a.APIKey}

	body, err := doJSON(ctx, "azure_foundry", url, headers, payload)
	if err != nil {
		return fallbackOrError(ctx, "azure_foundry", a.Fallback, req, err)
	}

	var parsed chatCompletionResponse
	if err := unmarshalOrParseErr(body, &parsed); err != nil {
		return fallbackOrError(ctx, "azure_foundry", a.Fallback, req, err)
	}
	if len(parsed.Choices) == 0 {
		return fallbackOrError(ctx, "azure_foundry", a.Fallback, req,
			generator.ParseError("response contained no choices", string(body), ""))
	}

	cmd, err := extractCommand(parsed.Choices[0].Message.Content)
	if err != nil {
		return fallbackOrError(ctx, "azure_foundry", a.Fallback, req, err)
	}

	return &generator.Command{
		Command:        cmd,
		BackendUsed:    "azure_foundry",
		GenerationTime: time.Since(start),
		Confidence:     0.95,
	}, nil
}

func (a *AzureFoundry) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	url := fmt.Sprintf("%s/models?api-version=%s", a.Endpoint, a.apiVersion())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("api-key", a.APIKey)
	res, err := httpClient.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return res.StatusCode == http.StatusOK
}

func (a *AzureFoundry) Info() generator.Info {
	return generator.Info{Kind: "azure_foundry", TypicalLatencyMs: 1500}
}
