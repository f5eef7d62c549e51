package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lox/cardtable/internal/config"
	"github.com/lox/cardtable/internal/transport"
)

// Globals holds flags shared by every command. Flags override the config file.
type Globals struct {
	Config   string `short:"c" default:"cardtable.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" env:"CARDTABLE_SERVER" help:"Server URL (overrides config)"`
	User     string `short:"u" env:"CARDTABLE_USER" help:"User id (overrides config)"`
	Token    string `env:"CARDTABLE_TOKEN" help:"Bearer token (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	LogFile  string `help:"Log file path (overrides config)"`
}

// load reads the config file, applies flag overrides and validates the result
func (g *Globals) load(tableID string) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if g.Server != "" {
		cfg.Server.URL = g.Server
	}
	if g.User != "" {
		cfg.Player.UserID = g.User
	}
	if g.Token != "" {
		cfg.Server.Token = g.Token
	}
	if g.LogLevel != "" {
		cfg.UI.LogLevel = g.LogLevel
	}
	if g.LogFile != "" {
		cfg.UI.LogFile = g.LogFile
	}
	if tableID != "" {
		cfg.Table.ID = tableID
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the root logger at the configured level
func newLogger(cfg *config.Config, w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "cardtable",
	})
	level, err := log.ParseLevel(cfg.UI.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// openLogFile truncates the log file; the TUI owns the terminal
func openLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func newAdapter(cfg *config.Config, logger *log.Logger) *transport.Adapter {
	return transport.New(transport.Options{
		ServerURL:         cfg.Server.URL,
		TableID:           cfg.Table.ID,
		UserID:            cfg.Player.UserID,
		Token:             cfg.Server.Token,
		ReconnectDelay:    cfg.ReconnectDelay(),
		ReconnectAttempts: cfg.Server.ReconnectAttempts,
		PollInterval:      cfg.PollInterval(),
		RequestTimeout:    cfg.RequestTimeout(),
	}, logger)
}

// VersionCmd prints the version
type VersionCmd struct{}

func (cmd *VersionCmd) Run() error {
	fmt.Printf("cardtable %s\n", version)
	return nil
}
