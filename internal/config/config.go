// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for sage-tui.
//
// Configuration lives in TOML at ~/.sage/config.toml with sensible
// defaults and environment variable overrides. The persistence mode in
// particular is static per deployment: the engine is handed exactly one
// strategy at startup and never mixes the two.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/morganforge/sage-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Persistence modes. Selection is static per deployment; local and
// server history are never reconciled against each other.
const (
	ModeLocal  = "local"
	ModeServer = "server"
)

// Config represents the complete sage-tui configuration.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Persistence PersistenceConfig `toml:"persistence"`
	Speech      SpeechConfig      `toml:"speech"`
	Upload      UploadConfig      `toml:"upload"`
	UI          UIConfig          `toml:"ui"`
}

// ServerConfig points the client at the assistant service.
type ServerConfig struct {
	// BaseURL is the assistant service URL
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs"`
	// Email is the login identity for server mode (password is always prompted)
	Email string `toml:"email"`
}

// PersistenceConfig selects and parameterizes the history strategy.
type PersistenceConfig struct {
	// Mode is "local" (client-side cache) or "server" (authoritative history)
	Mode string `toml:"mode"`
	// Path is the local history database (local mode only)
	Path string `toml:"path"`
	// MaxMessages bounds the local snapshot (last N messages)
	MaxMessages int `toml:"max_messages"`
}

// SpeechConfig controls spoken output.
type SpeechConfig struct {
	// AutoSpeak speaks every finished assistant reply aloud
	AutoSpeak bool `toml:"auto_speak"`
	// Rate is words per minute for synthesis
	Rate int `toml:"rate"`
	// Voice is the engine voice/locale identifier (engine-specific)
	Voice string `toml:"voice"`
}

// UploadConfig controls the file pipeline.
type UploadConfig struct {
	// OutboxDir is watched for dropped files when Watch is true
	OutboxDir string `toml:"outbox_dir"`
	// Watch enables the drop-folder watcher
	Watch bool `toml:"watch"`
}

// UIConfig controls presentation.
type UIConfig struct {
	// Markdown renders assistant replies through glamour
	Markdown bool `toml:"markdown"`
	// Theme is "dark", "light" or "auto"
	Theme string `toml:"theme"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	home := baseDir()
	return &Config{
		Server: ServerConfig{
			BaseURL:     "http://127.0.0.1:5000",
			TimeoutSecs: 90,
		},
		Persistence: PersistenceConfig{
			Mode:        ModeLocal,
			Path:        filepath.Join(home, "history.db"),
			MaxMessages: 200,
		},
		Speech: SpeechConfig{
			AutoSpeak: false,
			Rate:      175,
			Voice:     "",
		},
		Upload: UploadConfig{
			OutboxDir: filepath.Join(home, "outbox"),
			Watch:     false,
		},
		UI: UIConfig{
			Markdown: true,
			Theme:    "auto",
		},
	}
}

// baseDir returns the sage data directory (~/.sage).
func baseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sage"
	}
	return filepath.Join(home, ".sage")
}

// BaseDir returns the sage data directory, creating it if needed.
func BaseDir() (string, error) {
	dir := baseDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(baseDir(), "config.toml")
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads configuration from path, falling back to defaults when the
// file is absent. Environment variable SAGE_SERVER_URL overrides the
// service URL either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if env := os.Getenv("SAGE_SERVER_URL"); env != "" {
		cfg.Server.BaseURL = env
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path atomically.
func (c *Config) Save(path string) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, []byte(sb.String()), 0600)
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration and normalizes defaulted fields.
func (c *Config) Validate() error {
	if _, err := url.Parse(c.Server.BaseURL); err != nil || c.Server.BaseURL == "" {
		return errors.New("server.base_url must be a valid URL")
	}
	if c.Server.TimeoutSecs <= 0 {
		c.Server.TimeoutSecs = 90
	}

	switch c.Persistence.Mode {
	case ModeLocal, ModeServer:
	case "":
		c.Persistence.Mode = ModeLocal
	default:
		return fmt.Errorf("persistence.mode must be %q or %q, got %q", ModeLocal, ModeServer, c.Persistence.Mode)
	}
	if c.Persistence.MaxMessages <= 0 {
		c.Persistence.MaxMessages = 200
	}
	if c.Persistence.Path == "" {
		c.Persistence.Path = filepath.Join(baseDir(), "history.db")
	}

	if c.Speech.Rate < 80 || c.Speech.Rate > 450 {
		c.Speech.Rate = 175
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	case "":
		c.UI.Theme = "auto"
	default:
		return fmt.Errorf("ui.theme must be dark, light or auto, got %q", c.UI.Theme)
	}

	if c.Upload.OutboxDir == "" {
		c.Upload.OutboxDir = filepath.Join(baseDir(), "outbox")
	}

	return nil
}
