package safety

import (
	"regexp"
	"strings"
)

var (
	reWhitespace    = regexp.MustCompile(`\s+`)
	reBacktickSub   = regexp.MustCompile("`[^`]*`")
	reDollarParen   = regexp.MustCompile(`\$\([^)]*\)`)
	reEmptyVarRef   = regexp.MustCompile(`\$\{?\w+\}?`)
)

// substSentinel replaces each whole command substitution (delimiters
// included) and each variable reference, so "rm -rf $(…)" or "rm -rf $X"
// still shows the rm -rf shape to the rules. normalize lowercases after
// masking, so rules see it as "__subst__".
const substSentinel = "__SUBST__"

// normalize prepares command text for rule matching only; the caller's
// original string is never mutated or returned to the user. It collapses
// whitespace, masks one level of command substitution, and lowercases.
func normalize(cmd string) string {
	s := reBacktickSub.ReplaceAllString(cmd, substSentinel)
	s = reDollarParen.ReplaceAllString(s, substSentinel)
	s = reEmptyVarRef.ReplaceAllString(s, substSentinel)
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}
