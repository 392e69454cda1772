package agent

import "strings"

// extractCommandNames pulls top-level command names out of a shell
// command line, splitting on pipe/semicolon/&&/||, skipping shell
// keywords and redirects, so that only the first word of each segment
// is kept (ported from the extract_commands idiom: pipelines and
// chains are flattened to their leading verbs).
func extractCommandNames(cmd string) []string {
	replacer := strings.NewReplacer("&&", "|", "||", "|", ";", "|", "&", "|")
	normalized := replacer.Replace(cmd)

	var names []string
	for _, part := range strings.Split(normalized, "|") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if isShellKeyword(name) {
			continue
		}
		names = append(names, name)
	}
	return names
}

func isShellKeyword(word string) bool {
	switch word {
	case "if", "then", "else", "elif", "fi", "while", "do", "done", "for", "case", "esac",
		">", "<", ">>", "<<":
		return true
	default:
		return false
	}
}
