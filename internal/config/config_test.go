package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cardtable.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.UseColor())
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server {
  url = "https://cards.example.com"
  token = "abc"
  reconnect_attempts = 4
}

player {
  user_id = "u-1"
  name = "alice"
}

table {
  id = "t-9"
}

ui {
  color = false
  auto_fold_on_timeout = "on"
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://cards.example.com", cfg.Server.URL)
	assert.Equal(t, "abc", cfg.Server.Token)
	assert.Equal(t, 4, cfg.Server.ReconnectAttempts)
	assert.Equal(t, 2*time.Second, cfg.ReconnectDelay(), "zero values take defaults")
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "t-9", cfg.Table.ID)
	assert.Equal(t, 3*time.Second, cfg.ClosedRedirectDelay())
	assert.Equal(t, "alice", cfg.DisplayName())
	assert.False(t, cfg.UseColor())
	assert.Equal(t, AutoFoldOn, cfg.UI.AutoFoldOnTimeout)
	assert.Equal(t, "info", cfg.UI.LogLevel)
}

func TestLoadInvalidHCL(t *testing.T) {
	_, err := Load(writeConfig(t, `server {`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file")

	_, err = Load(writeConfig(t, `server { bogus = 1 }`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode HCL")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Player.UserID = "u-1"
		cfg.Table.ID = "t-1"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no url", func(c *Config) { c.Server.URL = "" }, "server URL is required"},
		{"bad url", func(c *Config) { c.Server.URL = "not a url" }, "invalid server URL"},
		{"no user", func(c *Config) { c.Player.UserID = "" }, "user_id is required"},
		{"no table", func(c *Config) { c.Table.ID = "" }, "table id is required"},
		{"negative attempts", func(c *Config) { c.Server.ReconnectAttempts = -1 }, "reconnect attempts"},
		{"zero poll", func(c *Config) { c.Server.PollInterval = 0 }, "poll interval"},
		{"bad level", func(c *Config) { c.UI.LogLevel = "loud" }, "invalid log level"},
		{"bad auto fold", func(c *Config) { c.UI.AutoFoldOnTimeout = "maybe" }, "invalid auto_fold_on_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDisplayNameFallsBackToUserID(t *testing.T) {
	cfg := Default()
	cfg.Player.UserID = "u-7"
	assert.Equal(t, "u-7", cfg.DisplayName())
}
