package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/cardtable/internal/table"
	"github.com/lox/cardtable/internal/tui"
	"golang.org/x/sync/errgroup"
)

// PlayCmd joins a table and runs the interactive client
type PlayCmd struct {
	Table string `arg:"" optional:"" env:"CARDTABLE_TABLE" help:"Table ID to join (overrides config)"`
}

func (cmd *PlayCmd) Run(g *Globals) error {
	cfg, err := g.load(cmd.Table)
	if err != nil {
		return err
	}

	logFile, err := openLogFile(cfg.UI.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger := newLogger(cfg, logFile)
	tui.SetColor(cfg.UseColor())

	adapter := newAdapter(cfg, logger)
	tbl := table.New(adapter, table.Options{
		UserID:              cfg.Player.UserID,
		AutoFold:            cfg.UI.AutoFoldOnTimeout,
		ClosedRedirectDelay: cfg.ClosedRedirectDelay(),
	}, logger)

	model := tui.NewTUIModel(tbl, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	tbl.OnFrame(func(f table.Frame) {
		program.Send(tui.FrameMsg{Frame: f})
	})

	logger.Info("Joining table", "server", cfg.Server.URL, "table", cfg.Table.ID, "user", cfg.Player.UserID)

	ctx, cancel := signalContext(logger)
	defer cancel()
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return adapter.Run(gctx)
	})
	group.Go(func() error {
		err := tbl.Run(gctx)
		program.Send(tui.QuitMsg{})
		return err
	})
	group.Go(func() error {
		_, err := program.Run()
		cancel()
		return err
	})

	err = group.Wait()
	switch {
	case errors.Is(err, table.ErrTableClosed):
		fmt.Println("The table was closed by the server.")
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	case err != nil:
		logger.Error("Session ended", "error", err)
		return err
	}
	return nil
}
