package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SafetyPolicy != "moderate" {
		t.Errorf("got safety policy %q, want moderate", cfg.SafetyPolicy)
	}
}

func TestLoadAppliesDefaultsToZeroFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("safety_policy: strict\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SafetyPolicy != "strict" {
		t.Errorf("got safety policy %q, want strict", cfg.SafetyPolicy)
	}
	if cfg.Model.DefaultID != DefaultConfig().Model.DefaultID {
		t.Errorf("expected unset model id to fall back to default")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("saftey_policy: strict\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}

func TestSaveThenLoadRoundtrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.SafetyPolicy = "permissive"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.SafetyPolicy != "permissive" {
		t.Errorf("got %q, want permissive", loaded.SafetyPolicy)
	}
}
