// Package remote implements the thin HTTP-JSON Generator variants of §4.5:
// each POSTs a chat-completions-like payload, extracts the assistant text,
// and parses a {"cmd": "..."} field out of it. The status-code-to-error
// classification and the fallback-delegation shape are shared by every
// variant; only the payload/response schema differs.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/siryoos/caro/internal/config"
	"github.com/siryoos/caro/internal/generator"
)

// defaultTimeout is the transport deadline every variant uses except
// Jukebox, which needs longer to accommodate a model swap (§4.5).
const defaultTimeout = 30 * time.Second

// fallbackTemperature and fallbackMaxTokens are used when no config has
// been installed via config.SetActive (e.g. in tests or before main has
// run config.Load).
const (
	fallbackTemperature = 0.1
	fallbackMaxTokens   = 100
)

// samplingParams resolves the sampling tunables every remote variant
// sends, preferring the process-wide active configuration's model
// settings over the built-in fallback so a single config.yaml edit
// reaches every backend without threading a Config through each call.
func samplingParams() (temperature float64, maxTokens int) {
	temperature, maxTokens = fallbackTemperature, fallbackMaxTokens
	cfg := config.Active()
	if cfg == nil {
		return temperature, maxTokens
	}
	if cfg.Model.Temperature != 0 {
		temperature = cfg.Model.Temperature
	}
	if cfg.Model.MaxTokens != 0 {
		maxTokens = cfg.Model.MaxTokens
	}
	return temperature, maxTokens
}

// httpClient is shared across variants; each request still carries its
// own context deadline so a single slow backend cannot starve another.
var httpClient = &http.Client{}

// doJSON POSTs payload as JSON to url with the given headers, classifies
// non-2xx responses per §4.5, and returns the raw response body on
// success.
func doJSON(ctx context.Context, backend, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, generator.Internal(fmt.Sprintf("failed to marshal request: %v", err), "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, generator.Internal(fmt.Sprintf("failed to build request: %v", err), "")
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(backend, err)
	}
	defer res.Body.Close()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, generator.NetworkError(fmt.Sprintf("%s: failed to read response body: %v", backend, err))
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return respBody, nil
	}
	return nil, classifyStatus(backend, res.StatusCode, string(respBody))
}

// classifyStatus maps an HTTP status to the error taxonomy per §4.5.
func classifyStatus(backend string, status int, body string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return generator.Authentication(backend)
	case status == http.StatusNotFound:
		return generator.ConfigError(fmt.Sprintf("%s: model or endpoint not found: %s", backend, truncate(body)))
	case status == http.StatusTooManyRequests:
		return generator.GenerationFailed(fmt.Sprintf("%s: rate-limited (429): %s", backend, truncate(body)))
	case status == http.StatusServiceUnavailable:
		return generator.Busy(backend)
	default:
		return generator.BackendUnavailable(backend, fmt.Sprintf("unexpected status %d: %s", status, truncate(body)))
	}
}

// classifyTransportError distinguishes a timeout from a plain connect
// failure: a context deadline or a net.Error timeout surfaces as Timeout,
// anything else as BackendUnavailable(unreachable).
func classifyTransportError(backend string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return generator.Timeout(int(defaultTimeout.Seconds()), "embedded")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return generator.Timeout(int(defaultTimeout.Seconds()), "embedded")
	}
	return generator.BackendUnavailable(backend, fmt.Sprintf("unreachable: %v", err))
}

// unmarshalOrParseErr unmarshals body into v, surfacing a ParseError
// (with the truncated raw body attached) on failure.
func unmarshalOrParseErr(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return generator.ParseError(err.Error(), string(body), "")
	}
	return nil
}

func truncate(s string) string {
	const limit = 200
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

var reJSONCmdField = regexp.MustCompile(`(?s)"cmd"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// extractCommand pulls the "cmd" field out of an assistant message. It
// tries a strict JSON object parse first, then a parse of the outermost
// {...} substring, then a regex rescue for responses with surrounding
// prose.
func extractCommand(text string) (string, error) {
	text = strings.TrimSpace(text)

	var payload struct {
		Cmd string `json:"cmd"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err == nil && payload.Cmd != "" {
		return payload.Cmd, nil
	}

	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err == nil && payload.Cmd != "" {
				return payload.Cmd, nil
			}
		}
	}

	if m := reJSONCmdField.FindStringSubmatch(text); m != nil {
		unescaped := strings.ReplaceAll(m[1], `\"`, `"`)
		return unescaped, nil
	}

	return "", generator.ParseError("no cmd field found in response", text, "")
}

// fallbackOrError delegates to fb when non-nil, unless err is terminal:
// an authentication failure or a config error (missing model/endpoint)
// never falls back (§7: "never fall back automatically"), tagging the
// result's BackendUsed as "<primary>→fallback" otherwise.
func fallbackOrError(ctx context.Context, primary string, fb generator.Generator, req generator.Request, err error) (*generator.Command, error) {
	var genErr *generator.Error
	if errors.As(err, &genErr) {
		if genErr.Kind == generator.KindBackendUnavailable && strings.Contains(genErr.Message, "authentication failed") {
			return nil, err
		}
		if genErr.Kind == generator.KindConfigError {
			return nil, err
		}
	}
	if fb == nil {
		return nil, err
	}
	cmd, fbErr := fb.Generate(ctx, req)
	if fbErr != nil {
		return nil, err
	}
	cmd.BackendUsed = primary + "→fallback"
	return cmd, nil
}
