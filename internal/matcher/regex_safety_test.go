package matcher

import (
	"strings"
	"testing"
	"time"
)

// TestRegexBacktrackingProtection feeds every entry's regex a long
// adversarial string with its keywords at both ends and asserts each
// match attempt completes well under 100ms (§4.6 regex discipline). Go's
// RE2 engine is linear-time by construction, so this mainly guards
// against a future port to a backtracking engine reintroducing the risk
// the bounded-quantifier discipline exists to avoid.
func TestRegexBacktrackingProtection(t *testing.T) {
	const padding = 2000

	for i, e := range buildPatterns() {
		if e.regex == nil {
			continue
		}
		keywords := append(append([]string{}, e.required...), e.optional...)
		if len(keywords) == 0 {
			continue
		}
		first, last := keywords[0], keywords[len(keywords)-1]

		adversarial := first + " " + strings.Repeat("a ", padding) + last

		start := time.Now()
		e.regex.MatchString(adversarial)
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Errorf("entry %d (%q): regex took %s against adversarial input, want <100ms", i, e.description, elapsed)
		}
	}
}
