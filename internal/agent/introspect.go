package agent

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

const (
	introspectTimeout = 2 * time.Second
	introspectLineCap = 20
)

// CommandInfo is per-command metadata gathered for the refinement
// prompt (§4.8): the first line of --version and the first 20 lines of
// --help, both best-effort.
type CommandInfo struct {
	Name     string
	Version  string
	HelpText string
}

// introspectCommands collects CommandInfo for every name, skipping any
// that are not on PATH or that hang past introspectTimeout. Missing
// commands are simply absent from the returned map rather than
// reported as an error: an agent-loop prompt with partial metadata is
// still useful.
func introspectCommands(ctx context.Context, names []string) map[string]CommandInfo {
	out := make(map[string]CommandInfo, len(names))
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			continue
		}
		out[name] = CommandInfo{
			Name:     name,
			Version:  firstLine(runFlag(ctx, name, "--version")),
			HelpText: firstNLines(runFlag(ctx, name, "--help"), introspectLineCap),
		}
	}
	return out
}

func runFlag(ctx context.Context, name, flag string) string {
	ctx, cancel := context.WithTimeout(ctx, introspectTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, flag)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	_ = cmd.Run() // many tools exit non-zero on --help; output is what matters
	return out.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}

func firstNLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
