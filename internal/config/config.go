// Package config loads the client's HCL configuration file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// AutoFold modes
const (
	// AutoFoldServer follows the auto_fold_on_timeout flag in each snapshot
	AutoFoldServer = "server"
	AutoFoldOn     = "on"
	AutoFoldOff    = "off"
)

// Config represents the complete client configuration
type Config struct {
	Server ServerSettings
	Player PlayerSettings
	Table  TableSettings
	UI     UISettings
}

// ServerSettings contains server connection settings. Durations are seconds.
type ServerSettings struct {
	URL               string `hcl:"url,optional"`
	Token             string `hcl:"token,optional"`
	RequestTimeout    int    `hcl:"request_timeout,optional"`
	ReconnectAttempts int    `hcl:"reconnect_attempts,optional"`
	ReconnectDelay    int    `hcl:"reconnect_delay,optional"`
	PollInterval      int    `hcl:"poll_interval,optional"`
}

// PlayerSettings identifies the local player
type PlayerSettings struct {
	UserID string `hcl:"user_id,optional"`
	Name   string `hcl:"name,optional"`
}

// TableSettings selects the table to join
type TableSettings struct {
	ID                  string `hcl:"id,optional"`
	ClosedRedirectDelay int    `hcl:"closed_redirect_delay,optional"`
}

// UISettings contains user interface settings
type UISettings struct {
	LogLevel          string `hcl:"log_level,optional"`
	LogFile           string `hcl:"log_file,optional"`
	Color             *bool  `hcl:"color,optional"`
	AutoFoldOnTimeout string `hcl:"auto_fold_on_timeout,optional"`
}

// file mirrors Config with every block optional
type file struct {
	Server *ServerSettings `hcl:"server,block"`
	Player *PlayerSettings `hcl:"player,block"`
	Table  *TableSettings  `hcl:"table,block"`
	UI     *UISettings     `hcl:"ui,block"`
}

// Default returns the default configuration
func Default() *Config {
	color := true
	return &Config{
		Server: ServerSettings{
			URL:               "http://localhost:8080",
			RequestTimeout:    10,
			ReconnectAttempts: 0,
			ReconnectDelay:    2,
			PollInterval:      5,
		},
		Table: TableSettings{
			ClosedRedirectDelay: 3,
		},
		UI: UISettings{
			LogLevel:          "info",
			LogFile:           "cardtable.log",
			Color:             &color,
			AutoFoldOnTimeout: AutoFoldServer,
		},
	}
}

// Load loads configuration from an HCL file. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	diags = gohcl.DecodeBody(f.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config := Default()
	if raw.Server != nil {
		config.Server = *raw.Server
	}
	if raw.Player != nil {
		config.Player = *raw.Player
	}
	if raw.Table != nil {
		config.Table = *raw.Table
	}
	if raw.UI != nil {
		config.UI = *raw.UI
	}
	config.applyDefaults()
	return config, nil
}

// applyDefaults fills zero values from Default
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Server.URL == "" {
		c.Server.URL = defaults.Server.URL
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = defaults.Server.RequestTimeout
	}
	if c.Server.ReconnectDelay == 0 {
		c.Server.ReconnectDelay = defaults.Server.ReconnectDelay
	}
	if c.Server.PollInterval == 0 {
		c.Server.PollInterval = defaults.Server.PollInterval
	}

	if c.Table.ClosedRedirectDelay == 0 {
		c.Table.ClosedRedirectDelay = defaults.Table.ClosedRedirectDelay
	}

	if c.UI.LogLevel == "" {
		c.UI.LogLevel = defaults.UI.LogLevel
	}
	if c.UI.LogFile == "" {
		c.UI.LogFile = defaults.UI.LogFile
	}
	if c.UI.Color == nil {
		c.UI.Color = defaults.UI.Color
	}
	if c.UI.AutoFoldOnTimeout == "" {
		c.UI.AutoFoldOnTimeout = defaults.UI.AutoFoldOnTimeout
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server URL is required")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid server URL: %s", c.Server.URL)
	}

	if c.Player.UserID == "" {
		return fmt.Errorf("player user_id is required")
	}

	if c.Table.ID == "" {
		return fmt.Errorf("table id is required")
	}

	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	if c.Server.ReconnectAttempts < 0 {
		return fmt.Errorf("reconnect attempts cannot be negative")
	}

	if c.Server.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect delay must be positive")
	}

	if c.Server.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	if c.Table.ClosedRedirectDelay < 0 {
		return fmt.Errorf("closed redirect delay cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.UI.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.UI.LogLevel)
	}

	switch c.UI.AutoFoldOnTimeout {
	case AutoFoldServer, AutoFoldOn, AutoFoldOff:
	default:
		return fmt.Errorf("invalid auto_fold_on_timeout: %s (want server, on or off)", c.UI.AutoFoldOnTimeout)
	}

	return nil
}

// UseColor reports whether styled output is enabled
func (c *Config) UseColor() bool {
	return c.UI.Color == nil || *c.UI.Color
}

// DisplayName returns the player name, falling back to the user id
func (c *Config) DisplayName() string {
	if c.Player.Name != "" {
		return c.Player.Name
	}
	return c.Player.UserID
}

// RequestTimeout returns the request timeout as a duration
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeout) * time.Second
}

// ReconnectDelay returns the reconnect delay as a duration
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Server.ReconnectDelay) * time.Second
}

// PollInterval returns the state poll interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Server.PollInterval) * time.Second
}

// ClosedRedirectDelay returns how long to wait before leaving a closed table
func (c *Config) ClosedRedirectDelay() time.Duration {
	return time.Duration(c.Table.ClosedRedirectDelay) * time.Second
}
