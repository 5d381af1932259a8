// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err, "Load with missing file should use defaults")

	assert.Equal(t, "http://127.0.0.1:5000", cfg.Server.BaseURL)
	assert.Equal(t, ModeLocal, cfg.Persistence.Mode)
	assert.Equal(t, 200, cfg.Persistence.MaxMessages)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
base_url = "https://assistant.example.com"
timeout_secs = 30

[persistence]
mode = "server"

[speech]
auto_speak = true
rate = 200
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://assistant.example.com", cfg.Server.BaseURL)
	assert.Equal(t, ModeServer, cfg.Persistence.Mode)
	assert.True(t, cfg.Speech.AutoSpeak)
	assert.Equal(t, 200, cfg.Speech.Rate)
	// Unset sections keep their defaults.
	assert.True(t, cfg.UI.Markdown)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SAGE_SERVER_URL", "http://10.0.0.2:8080")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:8080", cfg.Server.BaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"bad mode", func(c *Config) { c.Persistence.Mode = "both" }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"empty url", func(c *Config) { c.Server.BaseURL = "" }, true},
		{"rate clamped", func(c *Config) { c.Speech.Rate = 9000 }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Speech.Rate = 9000
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 175, cfg.Speech.Rate, "out-of-range rate should reset to default")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Server.BaseURL = "http://example.org:9999"
	cfg.UI.Theme = "dark"

	require.NoError(t, cfg.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Server.BaseURL, loaded.Server.BaseURL)
	assert.Equal(t, "dark", loaded.UI.Theme)
}
