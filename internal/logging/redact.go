package logging

import (
	"fmt"
	"regexp"
	"strings"
)

// Patterns ported from the teacher's redact.go and generalized off
// Kubernetes secretKeyRef specifics: JWTs, bearer tokens, key=value /
// key: value secrets, long base64 blobs. The shell-command domain swaps
// the Kubernetes-manifest-specific secretKeyRef pattern for a generic
// "export SECRET=..." / "--password ..." shape, plus two shell-adjacent
// shapes the teacher never needed: AWS-style access keys (a command
// like `aws configure set` or an exported env var can carry one
// verbatim) and PEM private-key headers (a command that cats or greps
// an id_rsa/cert file).
var (
	reJWT             = regexp.MustCompile(`[A-Za-z0-9_-]{20,}\.[A-Za-z0-9_-]{20,}\.[A-Za-z0-9_-]{20,}`)
	reBearerToken     = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._\-]{20,}`)
	reKeyValueSecrets = regexp.MustCompile(`(?i)(password|token|secret|apikey|api_key|passphrase)\s*[:=]\s*(?:"([^"]+)"|'([^']+)'|(\S+))`)
	reCLISecretFlag   = regexp.MustCompile(`(?i)(--password|--token|--api-key|-p)\s+(\S+)`)
	reBase64Blob      = regexp.MustCompile(`(?m)(?:^|\s)([A-Za-z0-9+/]{40,}={0,2})(?:$|\s)`)
	reAWSAccessKey    = regexp.MustCompile(`\b((?:AKIA|ASIA|AIDA|AROA)[A-Z0-9]{16})\b`)
	rePrivateKeyBlock = regexp.MustCompile(`(?s)-----BEGIN [A-Z ]*PRIVATE KEY-----.*?-----END [A-Z ]*PRIVATE KEY-----`)
)

// Redact replaces every recognized secret shape in input with a stable
// placeholder. Unlike the teacher's RedactSensitive, caro's Redact does
// not keep a reverse map: log lines are write-only, there is nothing to
// restore a redaction for.
func Redact(input string) string {
	counter := 0
	replace := func(string) string {
		counter++
		return fmt.Sprintf("__REDACTED_%d__", counter)
	}

	out := reJWT.ReplaceAllStringFunc(input, replace)
	out = reBearerToken.ReplaceAllStringFunc(out, replace)
	out = reKeyValueSecrets.ReplaceAllStringFunc(out, func(match string) string {
		parts := reKeyValueSecrets.FindStringSubmatch(match)
		placeholder := replace(match)
		if strings.Contains(match, ":") {
			return fmt.Sprintf("%s: %s", parts[1], placeholder)
		}
		return fmt.Sprintf("%s=%s", parts[1], placeholder)
	})
	out = reCLISecretFlag.ReplaceAllStringFunc(out, func(match string) string {
		parts := reCLISecretFlag.FindStringSubmatch(match)
		return fmt.Sprintf("%s %s", parts[1], replace(match))
	})
	out = reBase64Blob.ReplaceAllStringFunc(out, func(match string) string {
		trimmed := strings.TrimSpace(match)
		return strings.Replace(match, trimmed, replace(trimmed), 1)
	})
	out = reAWSAccessKey.ReplaceAllStringFunc(out, replace)
	out = rePrivateKeyBlock.ReplaceAllStringFunc(out, replace)

	return out
}
