package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/lox/cardtable/internal/card"
	"github.com/lox/cardtable/internal/protocol"
	"github.com/lox/cardtable/internal/showdown"
	"github.com/pterm/pterm"
)

// HistoryCmd prints one page of past hands for a table
type HistoryCmd struct {
	Table   string `arg:"" optional:"" env:"CARDTABLE_TABLE" help:"Table ID (overrides config)"`
	Page    int    `default:"1" help:"Page to show"`
	PerPage int    `default:"20" help:"Hands per page"`
	Verbose bool   `short:"V" help:"Print the full showdown narration for each hand"`
}

func (cmd *HistoryCmd) Run(g *Globals) error {
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

	if !cfg.UseColor() {
		pterm.DisableColor()
	}

	adapter := newAdapter(cfg, logger)
	sigCtx, stop := signalContext(logger)
	defer stop()
	ctx, cancel := context.WithTimeout(sigCtx, cfg.RequestTimeout())
	defer cancel()

	page, err := adapter.FetchHandHistory(ctx, cmd.Page, cmd.PerPage)
	if err != nil {
		return fmt.Errorf("failed to fetch hand history: %w", err)
	}

	pterm.DefaultSection.Printfln("Table %s", cfg.Table.ID)
	if len(page.Hands) == 0 {
		pterm.Info.Println("No hands played yet")
		return nil
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(historyTable(page)).Render(); err != nil {
		return err
	}
	if cmd.Verbose {
		for i := range page.Hands {
			hand := &page.Hands[i]
			pterm.DefaultBox.
				WithTitle(fmt.Sprintf("Hand #%d", hand.HandNumber)).
				Println(strings.Join(showdown.Narrate(hand, nil), "\n"))
		}
	}
	pterm.Info.Printfln("Page %d, %d of %d hands", pageNumber(page, cmd.Page), len(page.Hands), page.Total)
	return nil
}

// historyTable lays out one row per hand: number, winners, pot total, best hand
func historyTable(page *protocol.HandHistoryPage) pterm.TableData {
	data := pterm.TableData{{"Hand", "Winners", "Pot", "Winning hand"}}
	for _, h := range page.Hands {
		name := func(id string) string {
			if n := h.Usernames[id]; n != "" {
				return n
			}
			return id
		}

		var winners []string
		seen := map[string]bool{}
		total := 0
		for _, pot := range h.Pots {
			total += pot.Amount
			for _, id := range pot.Winners {
				if !seen[id] {
					seen[id] = true
					winners = append(winners, name(id))
				}
			}
		}

		best := ""
		if len(h.WinningHands) > 0 {
			w := h.WinningHands[0]
			best = w.Description
			if best == "" && len(w.Cards) > 0 {
				best = card.Join(w.Cards)
			}
			if len(winners) == 0 {
				winners = append(winners, name(w.PlayerID))
			}
		}

		data = append(data, []string{
			fmt.Sprintf("#%d", h.HandNumber),
			strings.Join(winners, ", "),
			fmt.Sprintf("$%d", total),
			best,
		})
	}
	return data
}

func pageNumber(page *protocol.HandHistoryPage, requested int) int {
	if page.Page > 0 {
		return page.Page
	}
	return requested
}
