package generator

import (
	"fmt"
	"strings"
)

// Kind enumerates error *kinds*, not types — every generator failure is one
// of these, carried in the Kind field of a single Error struct so callers
// can switch on it without a type-assertion ladder.
type Kind int

const (
	KindBackendUnavailable Kind = iota
	KindTimeout
	KindInvalidRequest
	KindGenerationFailed
	KindParseError
	KindConfigError
	KindNetworkError
	KindUnsafe
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindBackendUnavailable:
		return "backend_unavailable"
	case KindTimeout:
		return "timeout"
	case KindInvalidRequest:
		return "invalid_request"
	case KindGenerationFailed:
		return "generation_failed"
	case KindParseError:
		return "parse_error"
	case KindConfigError:
		return "config_error"
	case KindNetworkError:
		return "network_error"
	case KindUnsafe:
		return "unsafe"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the single error value every generator returns. Every message
// carries a human-readable remediation paragraph the caller may display
// verbatim, ending with "Suggestion: ...".
type Error struct {
	Kind        Kind
	Message     string
	Remediation string

	// Populated depending on Kind.
	Backend             string        // BackendUnavailable
	SuggestedBackend    string        // Timeout
	SuggestedTimeoutSec int           // Timeout
	ReceivedContent     string        // ParseError, truncated to 200 bytes
	Risk                RiskLevel     // Unsafe
	Warnings            []string      // Unsafe
	Version             string        // Internal

	Wrapped error
}

func (e *Error) Error() string {
	if e.Remediation == "" {
		return e.Message
	}
	return fmt.Sprintf("%s\n\nSuggestion: %s", e.Message, e.Remediation)
}

func (e *Error) Unwrap() error { return e.Wrapped }

const truncatedContentLimit = 200

func truncate(content string, limit int) string {
	if len(content) <= limit {
		return content
	}
	return content[:limit] + "..."
}

// BackendUnavailable builds an Error with a backend-specific remediation,
// mirroring the original implementation's per-backend suggestion table.
func BackendUnavailable(backend, reason string) *Error {
	suggestion := "Try preferring a different backend: --backend <id> (`embedded`, or a name under `remotes:` in the config file)"
	switch backend {
	case "ollama":
		suggestion = "Ensure Ollama is running:\n  ollama serve\n\nOr use a different backend:\n  --backend embedded"
	case "vllm":
		suggestion = "Ensure the vLLM server is running.\nOr use a different backend:\n  --backend embedded"
	case "embedded":
		suggestion = "The embedded model may not be cached.\nDownload it first:\n  caro model download <id>"
	}
	return &Error{
		Kind:        KindBackendUnavailable,
		Backend:     backend,
		Message:     fmt.Sprintf("backend '%s' is not available: %s", backend, reason),
		Remediation: suggestion,
	}
}

// Authentication is the specific BackendUnavailable(authentication) shape
// called out in §4.1/§7: never fall back on this one.
func Authentication(backend string) *Error {
	return &Error{
		Kind:        KindBackendUnavailable,
		Backend:     backend,
		Message:     fmt.Sprintf("backend '%s' rejected the request: authentication failed", backend),
		Remediation: fmt.Sprintf("Check the API key/token configured for %s and retry; this error is terminal and will not fall back automatically.", backend),
	}
}

// Busy is the BackendUnavailable(busy) shape for HTTP 503.
func Busy(backend string) *Error {
	return BackendUnavailable(backend, "the service reported it is busy (503)")
}

func Timeout(timeoutSec int, suggestedBackend string) *Error {
	return &Error{
		Kind:                KindTimeout,
		SuggestedBackend:    suggestedBackend,
		SuggestedTimeoutSec: timeoutSec * 2,
		Message:             fmt.Sprintf("request timed out after %ds", timeoutSec),
		Remediation: fmt.Sprintf(
			"The backend may be overloaded or unresponsive.\nTry:\n  - Using a different backend: --backend %s\n  - Allowing a longer timeout (%ds)\n  - Simplifying your request",
			suggestedBackend, timeoutSec*2),
	}
}

func InvalidRequest(message string) *Error {
	suggestion := "Check that your request is valid and try again."
	switch {
	case strings.Contains(message, "empty"):
		suggestion = "Provide a description of the command you want to generate."
	case strings.Contains(message, "too long"):
		suggestion = "Shorten your request to focus on the essential requirement."
	}
	return &Error{Kind: KindInvalidRequest, Message: message, Remediation: suggestion}
}

func GenerationFailed(details string) *Error {
	suggestion := "The model failed to generate a response.\nTry:\n  - Simplifying your request\n  - Using a different backend or model"
	switch {
	case strings.Contains(details, "rate-limited") || strings.Contains(details, "429"):
		suggestion = "The backend is rate-limiting requests.\nTry:\n  - Waiting before retrying\n  - Using a different backend"
	}
	return &Error{Kind: KindGenerationFailed, Message: details, Remediation: suggestion}
}

func ParseError(reason, receivedContent, suggestedModel string) *Error {
	truncated := truncate(receivedContent, truncatedContentLimit)
	return &Error{
		Kind:            KindParseError,
		Message:         fmt.Sprintf("response parsing failed: %s", reason),
		ReceivedContent: truncated,
		Remediation: fmt.Sprintf(
			"This may be a bug in the backend or model.\nReceived: %s\nTry:\n  - Using a different model than %s\n  - Reporting this issue with the full error details",
			truncated, suggestedModel),
	}
}

func ConfigError(message string) *Error {
	suggestion := "Check your configuration for errors."
	if strings.Contains(message, "not found") {
		suggestion = "Check that the configured path, endpoint and model name exist."
	}
	return &Error{Kind: KindConfigError, Message: message, Remediation: suggestion}
}

func NetworkError(message string) *Error {
	return &Error{
		Kind:        KindNetworkError,
		Message:     message,
		Remediation: "Check your network connection and any HTTPS_PROXY/HTTP_PROXY settings, then retry.",
	}
}

func Unsafe(risk RiskLevel, warnings []string) *Error {
	return &Error{
		Kind:     KindUnsafe,
		Risk:     risk,
		Warnings: warnings,
		Message:  fmt.Sprintf("command rejected by the safety validator (risk: %s)", risk),
		Remediation: "Rewrite the request to avoid the flagged pattern, or rerun with a more permissive " +
			"safety level if you understand and accept the risk. Do not retry the same input against the same backend.",
	}
}

func Internal(message, version string) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: message,
		Version: version,
		Remediation: fmt.Sprintf(
			"This is likely a bug. Please report it with these details:\n  Error: %s\n  Version: caro %s", message, version),
	}
}
