package matcher

import (
	"strings"
	"testing"
)

// gnuOnlyFeatures are flags/commands that do not exist on BSD/macOS
// coreutils and must never appear in a bsdCommand (§4.6 BSD portability
// discipline).
var gnuOnlyFeatures = []string{
	"--sort", "--max-depth", "--printf", "journalctl", "systemctl", "apt", "yum",
}

func TestBSDCommandsAvoidGNUOnlyFeatures(t *testing.T) {
	for i, e := range buildPatterns() {
		if e.bsdCommand == "" {
			continue
		}
		for _, feature := range gnuOnlyFeatures {
			if strings.Contains(e.bsdCommand, feature) {
				t.Errorf("entry %d (%q): bsdCommand %q uses GNU-only feature %q",
					i, e.description, e.bsdCommand, feature)
			}
		}
	}
}
