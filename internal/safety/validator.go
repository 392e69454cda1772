// Package safety implements the rule-based command Safety Validator (§4.2):
// given candidate command text, classify its risk and decide whether a
// policy allows it. The validator is pure — no I/O, no shared mutable
// state — so a Result is reproducible for identical input.
package safety

import (
	"fmt"

	"github.com/siryoos/caro/internal/generator"
)

// Policy is the caller's risk tolerance; it is an alias of the shared
// SafetyLevel enum used throughout the pipeline.
type Policy = generator.SafetyLevel

const (
	Strict     = generator.StrictPolicy
	ModeratePolicy = generator.ModeratePolicy
	Permissive = generator.PermissivePolicy
)

// Result is the outcome of one validation call (§3 Safety Result).
type Result struct {
	Risk            Risk
	Allowed         bool
	Warnings        []string
	MatchedPatterns []string
	Explanation     string
}

// Validator applies a fixed rule library under a configurable Policy.
// It holds no per-call state; a single instance may be shared by every
// caller and generator in the process.
type Validator struct {
	policy Policy
}

// New builds a Validator for the given policy. The zero Policy value is
// Strict (iota 0), matching generator.StrictPolicy.
func New(policy Policy) *Validator {
	return &Validator{policy: policy}
}

// Validate classifies cmd and applies v's policy threshold (§4.2).
// Idempotent: identical cmd always yields an identical Result.
func (v *Validator) Validate(cmd string) Result {
	norm := normalize(cmd)

	risk := Safe
	var matched, warnings []string

	for _, r := range allRules {
		if r.re.MatchString(norm) {
			matched = append(matched, r.name)
			if r.risk > risk {
				risk = r.risk
			}
		}
	}

	threshold := v.threshold()
	hardBlocked := risk == Critical

	allowed := !hardBlocked && risk < threshold

	switch {
	case hardBlocked:
		warnings = append(warnings, "command matches a critical blocker and is never allowed")
	case !allowed:
		warnings = append(warnings, fmt.Sprintf("command risk %s meets or exceeds the %s policy threshold", risk, v.policy))
	case risk > Safe:
		warnings = append(warnings, fmt.Sprintf("command carries %s risk; allowed under %s policy", risk, v.policy))
	}

	return Result{
		Risk:            risk,
		Allowed:         allowed,
		Warnings:        warnings,
		MatchedPatterns: matched,
		Explanation:     explain(risk, allowed, matched),
	}
}

// threshold returns the lowest Risk this policy denies (a command is
// allowed only when its Risk is strictly below threshold, Critical
// excepted since it is always denied regardless of policy).
func (v *Validator) threshold() Risk {
	switch v.policy {
	case Strict:
		return Low // deny anything >= Low
	case Permissive:
		return Critical // deny only Critical (handled separately as hardBlocked)
	default:
		return High // Moderate (default): deny >= High
	}
}

func explain(risk Risk, allowed bool, matched []string) string {
	if len(matched) == 0 {
		return "no unsafe pattern matched"
	}
	verdict := "allowed"
	if !allowed {
		verdict = "denied"
	}
	return fmt.Sprintf("%s at risk level %s (matched: %v)", verdict, risk, matched)
}
