// Package config loads and defaults caro's on-disk configuration,
// following the teacher's merge-then-apply-defaults pattern: unmarshal
// into a struct with YAML tags, then fill zero-valued fields from
// DefaultConfig rather than relying on yaml.v3 default tags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RemoteBackend holds the connection details for one HTTP remote
// generator, keyed by name in Config.Remotes.
type RemoteBackend struct {
	Endpoint   string `yaml:"endpoint"`
	Model      string `yaml:"model"`
	APIKeyEnv  string `yaml:"api_key_env,omitempty"`
	APIVersion string `yaml:"api_version,omitempty"`
	Priority   int    `yaml:"priority"`
}

// APIKey resolves this backend's API key from its configured environment
// variable; the YAML file never carries a raw secret.
func (r RemoteBackend) APIKey() string {
	if r.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(r.APIKeyEnv)
}

// ModelSettings holds model sampling settings. The remote generators read
// Temperature and MaxTokens from the active config; the embedded engine
// uses inference.DefaultConfig and does not read them, and DefaultID and
// TopP are not read by any generator.
type ModelSettings struct {
	DefaultID   string  `yaml:"default_id"`
	Temperature float64 `yaml:"temperature"`
	TopP        float64 `yaml:"top_p"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// AgentSettings configures the optional Agent Loop (§4.8).
type AgentSettings struct {
	Enabled       bool `yaml:"enabled"`
	DeadlineSec   int  `yaml:"deadline_sec"`
	LinterEnabled bool `yaml:"linter_enabled"`
}

type legacyPreferences struct {
	SafetyLevel string `yaml:"safety_level"`
}

// Config is the top-level on-disk configuration.
type Config struct {
	SafetyPolicy   string                   `yaml:"safety_policy"`
	DefaultBackend string                   `yaml:"default_backend"`
	Model          ModelSettings            `yaml:"model"`
	Agent          AgentSettings            `yaml:"agent"`
	Remotes        map[string]RemoteBackend `yaml:"remotes"`
	CacheDir       string                   `yaml:"cache_dir,omitempty"`

	LegacyPreferences *legacyPreferences `yaml:"preferences,omitempty"`
}

// DefaultConfig returns caro's baked-in defaults.
func DefaultConfig() *Config {
	return &Config{
		SafetyPolicy:   "moderate",
		DefaultBackend: "static",
		Model: ModelSettings{
			DefaultID:   "caro-7b-cpu",
			Temperature: 0.1,
			TopP:        0.9,
			MaxTokens:   256,
		},
		Agent: AgentSettings{
			Enabled:       false,
			DeadlineSec:   15,
			LinterEnabled: true,
		},
		Remotes: map[string]RemoteBackend{},
	}
}

func (cfg *Config) applyDefaults() {
	defaults := DefaultConfig()

	if strings.TrimSpace(cfg.SafetyPolicy) == "" {
		if cfg.LegacyPreferences != nil && cfg.LegacyPreferences.SafetyLevel != "" {
			cfg.SafetyPolicy = cfg.LegacyPreferences.SafetyLevel
		} else {
			cfg.SafetyPolicy = defaults.SafetyPolicy
		}
	}
	if strings.TrimSpace(cfg.DefaultBackend) == "" {
		cfg.DefaultBackend = defaults.DefaultBackend
	}
	if cfg.Model.DefaultID == "" {
		cfg.Model.DefaultID = defaults.Model.DefaultID
	}
	if cfg.Model.Temperature == 0 {
		cfg.Model.Temperature = defaults.Model.Temperature
	}
	if cfg.Model.TopP == 0 {
		cfg.Model.TopP = defaults.Model.TopP
	}
	if cfg.Model.MaxTokens == 0 {
		cfg.Model.MaxTokens = defaults.Model.MaxTokens
	}
	if cfg.Agent.DeadlineSec == 0 {
		cfg.Agent.DeadlineSec = defaults.Agent.DeadlineSec
	}
	if cfg.Remotes == nil {
		cfg.Remotes = map[string]RemoteBackend{}
	}
}

// DefaultPath returns the conventional config file location, honoring
// $CARO_CONFIG when set.
func DefaultPath() string {
	if v := strings.TrimSpace(os.Getenv("CARO_CONFIG")); v != "" {
		return v
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "caro", "config.yaml")
}

// Load reads and parses the YAML file at path, applying defaults to any
// zero-valued field. A missing file is not an error: Load returns
// DefaultConfig() unchanged. Unknown fields in the document are rejected
// so a typo in the YAML surfaces immediately instead of silently no-op'ing.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("opening config %s: %w", path, err)
	}
	defer f.Close()

	cfg := &Config{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories as needed.
func Save(cfg *Config, path string) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	cfg.LegacyPreferences = nil

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	enc := yaml.NewEncoder(file)
	defer enc.Close()
	return enc.Encode(cfg)
}

var activeConfig *Config

// SetActive installs cfg as the process-wide active configuration,
// mirroring the teacher's SetActiveConfig/ActiveConfig pair so remote
// generators can read tunables (temperature, max tokens) without
// threading a Config through every call.
func SetActive(cfg *Config) { activeConfig = cfg }

func Active() *Config { return activeConfig }
