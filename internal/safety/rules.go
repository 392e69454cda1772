package safety

import (
	"regexp"

	"github.com/siryoos/caro/internal/generator"
)

// Risk is an alias for the shared ordered risk enum (§3 Risk Level):
// the validator and the generator contract speak the same scale.
type Risk = generator.RiskLevel

const (
	Safe     = generator.Safe
	Low      = generator.Low
	Moderate = generator.Moderate
	High     = generator.High
	Critical = generator.Critical
)

// rule is one pattern in the safety library. A rule fires when its regex
// matches the normalized command text; normalization happens once in
// normalize.go before any rule sees the string.
type rule struct {
	name string
	re   *regexp.Regexp
	risk Risk
}

// Critical blockers: always deny regardless of policy, per §4.2.
var criticalRules = []rule{
	{
		name: "rm-rf-root",
		re:   regexp.MustCompile(`rm\s+(-[a-z]*r[a-z]*f[a-z]*|-[a-z]*f[a-z]*r[a-z]*)\s+/(\s|\*|$)`),
		risk: Critical,
	},
	{
		name: "rm-rf-root-glob",
		re:   regexp.MustCompile(`rm\s+(-[a-z]*r[a-z]*f[a-z]*|-[a-z]*f[a-z]*r[a-z]*)\s+/\*`),
		risk: Critical,
	},
	{
		name: "rm-rf-empty-var",
		re:   regexp.MustCompile(`rm\s+-[a-z]*r[a-z]*f[a-z]*\s+__subst__`),
		risk: Critical,
	},
	{
		name: "block-device-write",
		re:   regexp.MustCompile(`\bdd\s+.*\bof=/dev/(sd|hd|nvme|disk|rdisk)\w*`),
		risk: Critical,
	},
	{
		name: "mkfs",
		re:   regexp.MustCompile(`\bmkfs(\.\w+)?\s+/dev/`),
		risk: Critical,
	},
	{
		name: "fork-bomb",
		re:   regexp.MustCompile(`:\(\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;\s*:`),
		risk: Critical,
	},
	{
		name: "pipe-remote-to-shell",
		re:   regexp.MustCompile(`(curl|wget)\s+[^|]*\|\s*(sudo\s+)?(sh|bash|zsh)\b`),
		risk: Critical,
	},
	{
		name: "priv-escalation-destructive",
		re:   regexp.MustCompile(`sudo\s+rm\s+-[a-z]*r[a-z]*f[a-z]*\s`),
		risk: Critical,
	},
}

// High-risk: denied under Strict and Moderate, warned under Permissive.
var highRules = []rule{
	{
		name: "rm-rf-unqualified",
		re:   regexp.MustCompile(`rm\s+(-[a-z]*r[a-z]*f[a-z]*|-[a-z]*f[a-z]*r[a-z]*)\s+\S`),
		risk: High,
	},
	{
		name: "chmod-chown-system-path",
		re:   regexp.MustCompile(`(chmod|chown)\s+-r\s+\S+\s+(/etc|/usr|/var|/system)(/|\s|$)`),
		risk: High,
	},
	{
		name: "killall-pkill-9",
		re:   regexp.MustCompile(`\b(killall|pkill)\s+(-9\s+)?\S`),
		risk: High,
	},
}

// Moderate/Low: writes outside cwd, sudo on non-destructive commands,
// network commands carrying implicit credentials.
var moderateRules = []rule{
	{
		name: "write-outside-cwd",
		re:   regexp.MustCompile(`>\s*/(etc|usr|var|system|library)/`),
		risk: Moderate,
	},
	{
		name: "sudo-nondestructive",
		re:   regexp.MustCompile(`^\s*sudo\s+`),
		risk: Low,
	},
	{
		name: "network-with-credentials",
		re:   regexp.MustCompile(`(curl|wget)\s+[^|]*-u\s+\S+:\S+`),
		risk: Moderate,
	},
}

var allRules = func() []rule {
	all := make([]rule, 0, len(criticalRules)+len(highRules)+len(moderateRules))
	all = append(all, criticalRules...)
	all = append(all, highRules...)
	all = append(all, moderateRules...)
	return all
}()
