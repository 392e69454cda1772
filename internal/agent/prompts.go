package agent

import (
	"fmt"
	"strings"

	"github.com/siryoos/caro/internal/platform"
)

// osNotes returns do-and-don't guidance for the target platform family
// (§4.8: macOS forbids --sort, prefers lsof, requires BSD sed; Linux
// allows GNU flags, prefers ss).
func osNotes(family platform.Family) string {
	switch family {
	case platform.Bsd:
		return strings.Join([]string{
			"- Do not use GNU-only flags such as --sort or --max-depth; pipe to sort instead.",
			"- Prefer lsof -iTCP -sTCP:LISTEN over ss for listing listening ports.",
			"- sed is BSD sed: in-place editing needs an explicit empty backup suffix, e.g. sed -i '' ...",
			"- Prefer relative paths (. or ~/) unless an absolute path was explicitly requested.",
		}, "\n")
	case platform.GnuLinux:
		return strings.Join([]string{
			"- GNU coreutils flags are available (--sort, --max-depth, etc.).",
			"- Prefer ss over netstat for listing listening ports.",
			"- sed -i without an argument performs in-place editing.",
		}, "\n")
	default:
		return "- Stick to POSIX-compliant syntax; no GNU or BSD extensions."
	}
}

const jsonContract = `Respond with a JSON object of the exact shape {"cmd": "<shell command>"} and nothing else.`

// buildInitialPrompt is the iteration-1 system prompt: target platform,
// shell, platform notes, and the JSON response contract.
func buildInitialPrompt(profile platform.Profile) string {
	return fmt.Sprintf(
		"You translate natural-language requests into a single POSIX shell command.\n"+
			"Target OS family: %s. Target shell: %s.\n\n"+
			"Platform notes:\n%s\n\n%s",
		profile.Family, profile.Shell, osNotes(profile.Family), jsonContract)
}

// buildRefinementPrompt is the iteration-2 prompt: the original prompt,
// the initial candidate, linter feedback (flagged MUST FIX when
// error-severity), per-command metadata, and the refined JSON contract.
func buildRefinementPrompt(initialPrompt, candidate string, lint LintResult, cmdInfo map[string]CommandInfo) string {
	var b strings.Builder
	b.WriteString("COMMAND REFINEMENT ITERATION\n\n")
	b.WriteString("ORIGINAL REQUEST:\n")
	b.WriteString(initialPrompt)
	b.WriteString("\n\nINITIAL CANDIDATE:\n")
	b.WriteString(candidate)
	b.WriteString("\n")

	if len(lint.Issues) > 0 {
		if lint.NeedsRegeneration() {
			b.WriteString("\nLINTER FEEDBACK (MUST FIX where noted):\n")
		} else {
			b.WriteString("\nLINTER FEEDBACK (optional improvements):\n")
		}
		b.WriteString(lint.PromptFeedback())
	}

	if len(cmdInfo) > 0 {
		b.WriteString("\nCOMMAND METADATA FOR THIS PLATFORM:\n")
		for name, info := range cmdInfo {
			b.WriteString(fmt.Sprintf("command: %s\nversion: %s\nhelp (first lines):\n%s\n---\n", name, info.Version, info.HelpText))
		}
	}

	b.WriteString("\nReturn JSON of the exact shape {\"cmd\": \"...\", \"confidence\": 0.0-1.0, \"changes\": \"what was fixed, or empty if unchanged\"}.\n")
	b.WriteString("If the initial command is already correct, return it unchanged with confidence > 0.9.")
	return b.String()
}
