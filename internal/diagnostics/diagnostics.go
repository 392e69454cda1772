// Package diagnostics collects a four-section environment report
// (§4.9): System, Network, Cache, and Backends. It is read-only and
// safe to run from any subcommand that wants a quick health check.
package diagnostics

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/siryoos/caro/internal/models"
	"github.com/siryoos/caro/internal/platform"
)

// SystemInfo is the OS/shell section.
type SystemInfo struct {
	Family       platform.Family
	Arch         string
	Shell        platform.Shell
	ShellVersion string
}

// NetworkInfo is the reachability section.
type NetworkInfo struct {
	ModelRepoHost      string
	ModelRepoReachable bool
	ProxyEnv           map[string]string
}

// CacheInfo is the local model cache section.
type CacheInfo struct {
	Dir         string
	Exists      bool
	ModelFile   string
	ModelExists bool
	ModelBytes  int64
}

// BackendsInfo is the generator-availability section.
type BackendsInfo struct {
	EmbeddedHasModel bool
	OllamaResponds   bool
}

// Report is the full structured diagnostics record (§4.9), suitable
// for both human-readable rendering and machine consumption.
type Report struct {
	System   SystemInfo
	Network  NetworkInfo
	Cache    CacheInfo
	Backends BackendsInfo
}

const modelRepoHost = "huggingface.co:443"

// modelRepoHostname is modelRepoHost without its port, used for display.
var modelRepoHostname = strings.SplitN(modelRepoHost, ":", 2)[0]

// proxyEnvVars are reported verbatim (never redacted): an operator
// diagnosing connectivity needs to see exactly what's set, and proxy
// URLs rarely carry secrets the way auth headers do.
var proxyEnvVars = []string{"HTTP_PROXY", "HTTPS_PROXY", "NO_PROXY", "http_proxy", "https_proxy", "no_proxy"}

// Collect builds a full Report. profile and loader are supplied by the
// caller (already detected/constructed once at startup) rather than
// re-probed here.
func Collect(ctx context.Context, profile platform.Profile, loader *models.Loader, ollamaEndpoint string) Report {
	return Report{
		System:   collectSystem(profile),
		Network:  collectNetwork(ctx),
		Cache:    collectCache(loader),
		Backends: collectBackends(ctx, loader, ollamaEndpoint),
	}
}

func collectSystem(profile platform.Profile) SystemInfo {
	return SystemInfo{
		Family:       profile.Family,
		Arch:         profile.Arch,
		Shell:        profile.Shell,
		ShellVersion: shellVersion(profile.Shell),
	}
}

func shellVersion(sh platform.Shell) string {
	if sh == platform.UnknownSh {
		return "unknown"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, string(sh), "--version")
	out, err := cmd.Output()
	if err != nil {
		return "unavailable"
	}
	if i := strings.IndexByte(string(out), '\n'); i >= 0 {
		return strings.TrimSpace(string(out[:i]))
	}
	return strings.TrimSpace(string(out))
}

func collectNetwork(ctx context.Context) NetworkInfo {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", modelRepoHost)
	reachable := err == nil
	if conn != nil {
		conn.Close()
	}

	proxy := make(map[string]string, len(proxyEnvVars))
	for _, name := range proxyEnvVars {
		if v := os.Getenv(name); v != "" {
			proxy[name] = v
		}
	}

	return NetworkInfo{
		ModelRepoHost:      modelRepoHostname,
		ModelRepoReachable: reachable,
		ProxyEnv:           proxy,
	}
}

func collectCache(loader *models.Loader) CacheInfo {
	if loader == nil {
		return CacheInfo{}
	}
	path, found := loader.Resolve()
	info := CacheInfo{
		Dir:       filepath.Dir(path),
		ModelFile: filepath.Base(path),
	}
	if _, err := os.Stat(info.Dir); err == nil {
		info.Exists = true
	}
	if found {
		info.ModelExists = true
		if st, err := os.Stat(path); err == nil {
			info.ModelBytes = st.Size()
		}
	}
	return info
}

func collectBackends(ctx context.Context, loader *models.Loader, ollamaEndpoint string) BackendsInfo {
	var hasModel bool
	if loader != nil {
		_, hasModel = loader.Resolve()
	}

	return BackendsInfo{
		EmbeddedHasModel: hasModel,
		OllamaResponds:   pingOllama(ctx, ollamaEndpoint),
	}
}

func pingOllama(ctx context.Context, endpoint string) bool {
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if !strings.Contains(host, ":") {
		host += ":11434"
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", host)
	if conn != nil {
		conn.Close()
	}
	return err == nil
}

// Human renders the report the way a CLI operator reads it.
func (r Report) Human() string {
	var b strings.Builder
	fmt.Fprintf(&b, "System\n  family: %s\n  arch: %s\n  shell: %s (%s)\n\n",
		r.System.Family, r.System.Arch, r.System.Shell, r.System.ShellVersion)

	fmt.Fprintf(&b, "Network\n  %s reachable: %t\n", r.Network.ModelRepoHost, r.Network.ModelRepoReachable)
	if len(r.Network.ProxyEnv) == 0 {
		b.WriteString("  proxy env: (none set)\n\n")
	} else {
		b.WriteString("  proxy env:\n")
		for k, v := range r.Network.ProxyEnv {
			fmt.Fprintf(&b, "    %s=%s\n", k, v)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Cache\n  dir: %s (exists: %t)\n  model: %s (present: %t, %d bytes)\n\n",
		r.Cache.Dir, r.Cache.Exists, r.Cache.ModelFile, r.Cache.ModelExists, r.Cache.ModelBytes)

	fmt.Fprintf(&b, "Backends\n  embedded model cached: %t\n  ollama responds: %t\n",
		r.Backends.EmbeddedHasModel, r.Backends.OllamaResponds)

	return b.String()
}
