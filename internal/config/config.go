// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for diffreview.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/diffreview/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete diffreview configuration.
type Config struct {
	Repository RepositoryConfig `toml:"repository" json:"repository"`
	Review     ReviewConfig     `toml:"review" json:"review"`
	UI         UIConfig         `toml:"ui" json:"ui"`
	Watch      WatchConfig      `toml:"watch" json:"watch"`
	Log        LogConfig        `toml:"log" json:"log"`
}

// RepositoryConfig controls how git is invoked.
type RepositoryConfig struct {
	// Dir is the working directory git runs in. Any directory inside the
	// repository works; the root is discovered from it.
	Dir string `toml:"dir" json:"dir"`
	// GitBinary is the git executable (name on PATH or absolute path)
	GitBinary string `toml:"git_binary" json:"git_binary"`
	// TimeoutSecs bounds every git call
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// ReviewConfig controls navigation behavior.
type ReviewConfig struct {
	// ContextLines is the lead-in kept above a change, chunk or match when
	// jumping to it
	ContextLines int `toml:"context_lines" json:"context_lines"`
	// CommitLimit is the number of commits listed in Commit mode
	CommitLimit int `toml:"commit_limit" json:"commit_limit"`
	// InitialMode is the mode shown at startup: "dirty", "commit" or "branch"
	InitialMode string `toml:"initial_mode" json:"initial_mode"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is a chroma style name (e.g. "monokai", "dracula", "github")
	Theme string `toml:"theme" json:"theme"`
	// LineNumbers shows content line numbers in the diff panel
	LineNumbers bool `toml:"line_numbers" json:"line_numbers"`
	// ViewportHeight is the initial diff height before the terminal reports
	// its size
	ViewportHeight int `toml:"viewport_height" json:"viewport_height"`
}

// WatchConfig controls the working-tree watcher.
type WatchConfig struct {
	// Enabled refreshes Dirty mode automatically when files change
	Enabled bool `toml:"enabled" json:"enabled"`
	// DebounceMs is the quiet period before a refresh
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms"`
}

// LogConfig controls the log file. The terminal belongs to the UI, so logs
// never go to stderr while it runs.
type LogConfig struct {
	// Path of the log file (empty = ~/.diffreview/diffreview.log)
	Path string `toml:"path" json:"path"`
	// Debug also logs every git command line
	Debug bool `toml:"debug" json:"debug"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Repository: RepositoryConfig{
			Dir:         ".",
			GitBinary:   "git",
			TimeoutSecs: 30,
		},
		Review: ReviewConfig{
			ContextLines: 5,
			CommitLimit:  200,
			InitialMode:  "dirty",
		},
		UI: UIConfig{
			Theme:          "monokai",
			LineNumbers:    true,
			ViewportHeight: 30,
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: 250,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the diffreview configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".diffreview"), nil
}

// ConfigPath returns the path to the default config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the log file path for cfg.
func (c *Config) LogPath() (string, error) {
	if c.Log.Path != "" {
		return c.Log.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "diffreview.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads ~/.diffreview/config.toml if it exists, otherwise the defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values; unknown keys are reported but not fatal.
func LoadTOML(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	for _, key := range meta.Undecoded() {
		fmt.Fprintf(os.Stderr, "Warning: unknown config key %q in %s\n", key.String(), path)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to the default config path.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path atomically.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# diffreview configuration file")
	fmt.Fprintln(&buf, "# Generated by diffreview - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// validModes are the accepted review.initial_mode values.
var validModes = map[string]bool{
	"dirty":  true,
	"commit": true,
	"branch": true,
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if strings.TrimSpace(c.Repository.GitBinary) == "" {
		errs = append(errs, ValidationError{Field: "repository.git_binary", Message: "must not be empty"})
	}
	if c.Repository.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "repository.timeout_secs",
			Message: fmt.Sprintf("must not be negative, got %d", c.Repository.TimeoutSecs),
		})
	}

	if c.Review.ContextLines < 1 || c.Review.ContextLines > 100 {
		errs = append(errs, ValidationError{
			Field:   "review.context_lines",
			Message: fmt.Sprintf("must be between 1 and 100, got %d", c.Review.ContextLines),
		})
	}
	if c.Review.CommitLimit < 1 {
		errs = append(errs, ValidationError{
			Field:   "review.commit_limit",
			Message: fmt.Sprintf("must be at least 1, got %d", c.Review.CommitLimit),
		})
	}
	if !validModes[c.Review.InitialMode] {
		errs = append(errs, ValidationError{
			Field:   "review.initial_mode",
			Message: fmt.Sprintf("must be one of dirty, commit, branch; got %q", c.Review.InitialMode),
		})
	}

	if c.UI.ViewportHeight < 1 {
		errs = append(errs, ValidationError{
			Field:   "ui.viewport_height",
			Message: fmt.Sprintf("must be at least 1, got %d", c.UI.ViewportHeight),
		})
	}
	if c.Watch.DebounceMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "watch.debounce_ms",
			Message: fmt.Sprintf("must not be negative, got %d", c.Watch.DebounceMs),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty values that have no meaningful zero.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Repository.Dir == "" {
		c.Repository.Dir = defaults.Repository.Dir
	}
	if c.Repository.GitBinary == "" {
		c.Repository.GitBinary = defaults.Repository.GitBinary
	}
	if c.Repository.TimeoutSecs == 0 {
		c.Repository.TimeoutSecs = defaults.Repository.TimeoutSecs
	}
	if c.Review.ContextLines == 0 {
		c.Review.ContextLines = defaults.Review.ContextLines
	}
	if c.Review.CommitLimit == 0 {
		c.Review.CommitLimit = defaults.Review.CommitLimit
	}
	if c.Review.InitialMode == "" {
		c.Review.InitialMode = defaults.Review.InitialMode
	}
	c.Review.InitialMode = strings.ToLower(c.Review.InitialMode)
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.ViewportHeight == 0 {
		c.UI.ViewportHeight = defaults.UI.ViewportHeight
	}
	if c.Watch.DebounceMs == 0 {
		c.Watch.DebounceMs = defaults.Watch.DebounceMs
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - DIFFREVIEW_DIR: overrides repository.dir
//   - DIFFREVIEW_GIT: overrides repository.git_binary
//   - DIFFREVIEW_THEME: overrides ui.theme
//   - DIFFREVIEW_CONTEXT_LINES: overrides review.context_lines
//   - DIFFREVIEW_WATCH: set to "0" or "false" to disable the watcher
func (c *Config) ApplyEnvOverrides() {
	if dir := os.Getenv("DIFFREVIEW_DIR"); dir != "" {
		c.Repository.Dir = dir
	}
	if bin := os.Getenv("DIFFREVIEW_GIT"); bin != "" {
		c.Repository.GitBinary = bin
	}
	if theme := os.Getenv("DIFFREVIEW_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if lines := os.Getenv("DIFFREVIEW_CONTEXT_LINES"); lines != "" {
		if n, err := strconv.Atoi(lines); err == nil {
			c.Review.ContextLines = n
		} else {
			fmt.Fprintf(os.Stderr, "Warning: ignoring DIFFREVIEW_CONTEXT_LINES=%q: %v\n", lines, err)
		}
	}
	if watch := os.Getenv("DIFFREVIEW_WATCH"); watch != "" {
		c.Watch.Enabled = watch == "1" || strings.ToLower(watch) == "true"
	}
}

// =============================================================================
// GET HELPER (DOT NOTATION)
// =============================================================================

// Get returns a configuration value by its TOML key (e.g. "review.context_lines").
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "repository.dir":
		return c.Repository.Dir, nil
	case "repository.git_binary":
		return c.Repository.GitBinary, nil
	case "repository.timeout_secs":
		return strconv.Itoa(c.Repository.TimeoutSecs), nil
	case "review.context_lines":
		return strconv.Itoa(c.Review.ContextLines), nil
	case "review.commit_limit":
		return strconv.Itoa(c.Review.CommitLimit), nil
	case "review.initial_mode":
		return c.Review.InitialMode, nil
	case "ui.theme":
		return c.UI.Theme, nil
	case "ui.line_numbers":
		return strconv.FormatBool(c.UI.LineNumbers), nil
	case "ui.viewport_height":
		return strconv.Itoa(c.UI.ViewportHeight), nil
	case "watch.enabled":
		return strconv.FormatBool(c.Watch.Enabled), nil
	case "watch.debounce_ms":
		return strconv.Itoa(c.Watch.DebounceMs), nil
	case "log.path":
		return c.Log.Path, nil
	case "log.debug":
		return strconv.FormatBool(c.Log.Debug), nil
	case "":
		return "", errors.New("empty key")
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
