// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete raddesk configuration.
type Config struct {
	Version string `toml:"version"`

	Gateway GatewayConfig `toml:"gateway"`
	Auth    AuthConfig    `toml:"auth"`
	Chat    ChatConfig    `toml:"chat"`
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
}

// GatewayConfig points at the radiology backend.
type GatewayConfig struct {
	// BaseURL is the backend root, e.g. http://localhost:8000.
	BaseURL string `toml:"base_url"`
	// TimeoutSecs bounds every API request.
	TimeoutSecs int `toml:"timeout_secs"`
}

// AuthConfig controls the development sign-in gate.
type AuthConfig struct {
	// DevPassphraseEnabled turns on the shared development passphrase.
	DevPassphraseEnabled bool `toml:"dev_passphrase_enabled"`
	// DevPassphrase is the accepted passphrase when enabled.
	DevPassphrase string `toml:"dev_passphrase"`
}

// ChatConfig tunes the chat workspace.
type ChatConfig struct {
	// SimulatedMode runs agent pipelines offline with canned results
	// instead of calling the backend.
	SimulatedMode bool `toml:"simulated_mode"`
	// StreamTickMs is the typewriter reveal cadence in milliseconds.
	StreamTickMs int `toml:"stream_tick_ms"`
}

// StorageConfig locates local state.
type StorageConfig struct {
	// Dir is the raddesk state directory (conversations, session,
	// patient cache). Empty means ~/.raddesk.
	Dir string `toml:"dir"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme selects the color theme: "clinical" or "dark".
	Theme string `toml:"theme"`
	// GlamourStyle is the markdown rendering style for report text.
	GlamourStyle string `toml:"glamour_style"`
}

// =============================================================================
// DEFAULTS & PATHS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Gateway: GatewayConfig{
			BaseURL:     "http://localhost:8000",
			TimeoutSecs: 30,
		},
		Auth: AuthConfig{
			DevPassphraseEnabled: true,
			DevPassphrase:        "password123",
		},
		Chat: ChatConfig{
			SimulatedMode: true,
			StreamTickMs:  15,
		},
		UI: UIConfig{
			Theme:        "clinical",
			GlamourStyle: "dark",
		},
	}
}

// ConfigDir returns ~/.raddesk, creating nothing.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".raddesk"), nil
}

// ConfigPath returns the TOML config file location.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates ~/.raddesk with owner-only permissions.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// StateDir resolves the storage directory, defaulting to the config
// directory when unset.
func (c *Config) StateDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	return ConfigDir()
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file if present, layers environment overrides,
// and validates. A missing file yields defaults, not an error.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes path into cfg on top of its current values.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// LoadFromPath loads a specific file with defaults underneath.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to the default config path.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// ApplyEnvOverrides layers RADDESK_* environment variables on top of
// the loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RADDESK_GATEWAY_URL"); v != "" {
		c.Gateway.BaseURL = v
	}
	if v := os.Getenv("RADDESK_GATEWAY_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Gateway.TimeoutSecs = n
		}
	}
	if v := os.Getenv("RADDESK_SIMULATED"); v != "" {
		c.Chat.SimulatedMode = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("RADDESK_STATE_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("RADDESK_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError reports one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks field ranges and clamps nothing; bad values are
// reported, not silently rewritten.
func (c *Config) Validate() error {
	if c.Gateway.BaseURL == "" {
		return ValidationError{Field: "gateway.base_url", Message: "must not be empty"}
	}
	if !strings.HasPrefix(c.Gateway.BaseURL, "http://") && !strings.HasPrefix(c.Gateway.BaseURL, "https://") {
		return ValidationError{Field: "gateway.base_url", Message: "must be an http or https URL"}
	}
	if c.Gateway.TimeoutSecs <= 0 {
		return ValidationError{Field: "gateway.timeout_secs", Message: "must be positive"}
	}
	if c.Chat.StreamTickMs <= 0 {
		return ValidationError{Field: "chat.stream_tick_ms", Message: "must be positive"}
	}
	if c.Auth.DevPassphraseEnabled && c.Auth.DevPassphrase == "" {
		return ValidationError{Field: "auth.dev_passphrase", Message: "must be set when dev passphrase auth is enabled"}
	}
	switch c.UI.Theme {
	case "", "clinical", "dark":
	default:
		return ValidationError{Field: "ui.theme", Message: fmt.Sprintf("unknown theme %q", c.UI.Theme)}
	}
	return nil
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalMu  sync.RWMutex
	globalCfg *Config
)

// Global returns the process-wide config, loading it on first use.
// Load errors fall back to defaults.
func Global() *Config {
	globalMu.RLock()
	if globalCfg != nil {
		defer globalMu.RUnlock()
		return globalCfg
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalCfg == nil {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
		}
		globalCfg = cfg
	}
	return globalCfg
}

// SetGlobal replaces the process-wide config.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = cfg
}

// ResetGlobalForTesting clears the cached global config.
func ResetGlobalForTesting() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = nil
}
