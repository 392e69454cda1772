package diagnostics

import (
	"os"
	"strings"
	"testing"

	"github.com/siryoos/caro/internal/models"
	"github.com/siryoos/caro/internal/platform"
)

func TestCollectCacheReportsMissingModel(t *testing.T) {
	dir := t.TempDir()
	loader := models.WithCacheDir(dir, models.Default())

	info := collectCache(loader)
	if info.ModelExists {
		t.Error("expected ModelExists to be false for an empty cache dir")
	}
	if info.Dir != dir {
		t.Errorf("dir = %q, want %q", info.Dir, dir)
	}
}

func TestCollectCacheReportsPresentModel(t *testing.T) {
	dir := t.TempDir()
	d := models.Default()
	if err := os.WriteFile(dir+"/"+d.Filename, []byte("GGUF-fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	loader := models.WithCacheDir(dir, d)

	info := collectCache(loader)
	if !info.ModelExists {
		t.Error("expected ModelExists to be true once the file is present")
	}
	if info.ModelBytes == 0 {
		t.Error("expected a non-zero model size")
	}
}

func TestHumanReportIncludesAllSections(t *testing.T) {
	r := Report{
		System:  SystemInfo{Family: platform.GnuLinux, Arch: "amd64", Shell: platform.Bash, ShellVersion: "5.1"},
		Network: NetworkInfo{ModelRepoHost: "huggingface.co", ModelRepoReachable: true},
		Cache:   CacheInfo{Dir: "/tmp/caro", Exists: true},
		Backends: BackendsInfo{EmbeddedHasModel: false, OllamaResponds: true},
	}

	out := r.Human()
	for _, want := range []string{"System", "Network", "Cache", "Backends", "huggingface.co"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected human report to mention %q, got:\n%s", want, out)
		}
	}
}

func TestHumanReportNotesNoProxyWhenUnset(t *testing.T) {
	r := Report{}
	out := r.Human()
	if !strings.Contains(out, "(none set)") {
		t.Error("expected an explicit note when no proxy env vars are set")
	}
}
