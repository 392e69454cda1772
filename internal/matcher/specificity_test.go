package matcher

import "testing"

// TestSpecificityOrdering enforces the library-wide ordering invariant
// from §4.6: for any pair (i < j) whose required-keyword sets intersect,
// entry i must have at least as many required keywords as entry j. A
// violation means a more general rule would shadow a more specific one
// under first-match-wins and is a library bug, never a runtime condition.
func TestSpecificityOrdering(t *testing.T) {
	entries := buildPatterns()

	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if !shareKeyword(entries[i].required, entries[j].required) {
				continue
			}
			if len(entries[i].required) < len(entries[j].required) {
				t.Errorf("ordering violation: entry %d (%q, %d required) precedes entry %d (%q, %d required) but has fewer required keywords",
					i, entries[i].description, len(entries[i].required),
					j, entries[j].description, len(entries[j].required))
			}
		}
	}
}

func shareKeyword(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, kw := range a {
		set[kw] = true
	}
	for _, kw := range b {
		if set[kw] {
			return true
		}
	}
	return false
}
