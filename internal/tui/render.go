package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/cardtable/internal/actions"
	"github.com/lox/cardtable/internal/board"
	"github.com/lox/cardtable/internal/card"
	"github.com/lox/cardtable/internal/protocol"
	"github.com/lox/cardtable/internal/table"
	"github.com/lox/cardtable/internal/timer"
)

// renderCard formats a single card with suit color, or the winning highlight
func renderCard(c card.Card, winning bool) string {
	switch {
	case winning:
		return WinningCardStyle.Render(c.String())
	case c.IsRed():
		return RedCardStyle.Render(c.String())
	default:
		return BlackCardStyle.Render(c.String())
	}
}

// formatCards formats cards with colors
func formatCards(cards []card.Card, winning map[card.Card]bool) string {
	if len(cards) == 0 {
		return ""
	}
	formatted := make([]string, 0, len(cards))
	for _, c := range cards {
		formatted = append(formatted, renderCard(c, winning[c]))
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// formatEntries renders a player's card list, face-down cards included
func formatEntries(entries []card.Entry, winning map[card.Card]bool) string {
	if len(entries) == 0 {
		return ""
	}
	var parts []string
	for _, e := range entries {
		switch e.Kind {
		case card.EntryCard:
			parts = append(parts, renderCard(e.Card, winning[e.Card]))
		case card.EntryFaceDown:
			parts = append(parts, PlaceholderStyle.Render("##"))
		case card.EntrySubset:
			parts = append(parts, InfoStyle.Render(e.Subset+":")+formatCards(e.Cards, winning))
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func renderSlot(s board.Slot) string {
	switch s.Kind {
	case board.SlotCard:
		return renderCard(s.Card, s.Winning)
	case board.SlotGap:
		return "  "
	default:
		return PlaceholderStyle.Render("--")
	}
}

// renderBoard draws the community area from a board plan
func renderBoard(p board.Plan) string {
	if p.Hidden {
		return ""
	}
	lines := make([]string, 0, len(p.Rows))
	for _, row := range p.Rows {
		groups := make([]string, 0, len(row.Groups))
		for _, g := range row.Groups {
			slots := make([]string, 0, len(g.Slots))
			for _, s := range g.Slots {
				slots = append(slots, renderSlot(s))
			}
			groups = append(groups, strings.Join(slots, " "))
		}
		line := strings.Join(groups, InfoStyle.Render(" | "))
		if row.Name != "" && len(p.Rows) > 1 {
			line = InfoStyle.Render(row.Name) + strings.Repeat(" ", max(8-lipgloss.Width(row.Name), 1)) + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderHeader shows the table, hand and pot line
func renderHeader(f table.Frame) string {
	if f.View == nil || f.View.Snapshot == nil {
		return HeaderStyle.Render(" Waiting for table state... ")
	}
	snap := f.View.Snapshot
	parts := []string{}
	if snap.TableID != "" {
		parts = append(parts, "Table "+snap.TableID)
	}
	if snap.HandNumber > 0 {
		parts = append(parts, fmt.Sprintf("Hand #%d", snap.HandNumber))
	}
	if snap.Phase != "" {
		parts = append(parts, strings.ToUpper(string(snap.Phase)))
	}
	pot := fmt.Sprintf("Pot: $%d", snap.Pot)
	for i, sp := range snap.SidePots {
		pot += fmt.Sprintf("  Side %d: $%d", i+1, sp.Amount)
	}
	parts = append(parts, pot)
	return HeaderStyle.Render(" " + strings.Join(parts, " | ") + " ")
}

// renderSeats creates the sidebar content
func renderSeats(f table.Frame) string {
	var content strings.Builder

	if f.View == nil || len(f.View.Seats) == 0 {
		for _, s := range f.Seats {
			content.WriteString(seatLine(s.Seat, s.Username, s.Ready, s.Leaving))
			content.WriteString("\n")
		}
		return content.String()
	}

	actor := f.View.CurrentActor()
	snap := f.View.Snapshot
	for _, p := range f.View.OrderedPlayers() {
		marker := "  "
		if p.UserID == actor {
			marker = ActorStyle.Render(">") + " "
		}
		name := p.Username
		if name == "" {
			name = p.UserID
		}
		if p.UserID == f.View.UserID {
			name += " (you)"
		}
		line := fmt.Sprintf("%s%d. %s $%d", marker, p.Seat, name, p.ChipStack)
		if snap != nil && p.Seat == snap.DealerSeat && snap.DealerSeat > 0 {
			line += " (D)"
		}
		content.WriteString(PlayerInfoStyle.Render(line))
		content.WriteString("\n")

		var detail []string
		if p.CurrentBet > 0 {
			detail = append(detail, fmt.Sprintf("bet $%d", p.CurrentBet))
		}
		if p.HasFolded {
			detail = append(detail, "folded")
		}
		if p.IsDisconnected {
			detail = append(detail, "away")
		}
		if p.LeavingAfterHand {
			detail = append(detail, "leaving")
		}
		cards := formatEntries(p.Cards, f.Winning)
		if snap != nil && len(p.Cards) == 0 {
			cards = formatCards(snap.Revealed[p.UserID], f.Winning)
		}
		if cards != "" {
			detail = append(detail, cards)
		}
		if len(detail) > 0 {
			content.WriteString("     " + InfoStyle.Render(strings.Join(detail, " ")))
			content.WriteString("\n")
		}
	}
	return content.String()
}

func seatLine(seat int, name string, ready, leaving bool) string {
	status := InfoStyle.Render("not ready")
	if ready {
		status = SuccessStyle.Render("ready")
	}
	if leaving {
		status += " " + WarningStyle.Render("leaving")
	}
	return fmt.Sprintf("  %d. %s %s", seat, name, status)
}

// renderTimer draws the countdown for the current actor
func renderTimer(s timer.Status, bar progress.Model, name string) string {
	if s.Actor == "" || (!s.Running && !s.Expired) {
		return ""
	}
	label := fmt.Sprintf("%s %ds", name, s.Remaining)
	if s.Expired {
		label = ErrorStyle.Render(name + " out of time")
	}
	return label + " " + bar.ViewAs(s.Fraction())
}

// renderControls renders the action surface plan
func renderControls(p actions.Plan) string {
	if p.Locked {
		return InfoStyle.Render("Sending action...")
	}
	if p.Kind == actions.SurfaceNone {
		return HandInfoStyle.Render("Waiting...")
	}

	var content strings.Builder
	switch p.Kind {
	case actions.SurfaceCardSelect, actions.SurfaceSeparate:
		chips := make([]string, 0, len(p.Cards))
		for i, c := range p.Cards {
			face := renderCard(c.Card, false)
			if c.Selected {
				face = SelectedStyle.Render(c.Card.String())
			}
			chip := fmt.Sprintf("%d:%s", i+1, face)
			if c.Subset != "" {
				chip += InfoStyle.Render("(" + c.Subset + ")")
			}
			chips = append(chips, chip)
		}
		content.WriteString("Hand: " + strings.Join(chips, " "))
		content.WriteString("\n")
		if len(p.Subsets) > 0 {
			fill := make([]string, 0, len(p.Subsets))
			for _, s := range p.Subsets {
				fill = append(fill, fmt.Sprintf("%s %d/%d", s.Name, s.Filled, s.Count))
			}
			content.WriteString(InfoStyle.Render(strings.Join(fill, "  ")))
			content.WriteString("\n")
		}
		submit := fmt.Sprintf("[submit: %s]", p.SubmitLabel)
		if p.CanSubmit {
			content.WriteString(ActionsStyle.Render(submit))
		} else {
			content.WriteString(InfoStyle.Render(submit))
		}

	case actions.SurfaceDeclare, actions.SurfaceChoose:
		opts := make([]string, 0, len(p.Options))
		for i, o := range p.Options {
			opts = append(opts, fmt.Sprintf("[%d %s]", i+1, o.Display()))
		}
		content.WriteString(ActionsStyle.Render(title(p.Kind) + ": " + strings.Join(opts, " ")))

	case actions.SurfaceBetting:
		buttons := make([]string, 0, len(p.Buttons))
		for i, b := range p.Buttons {
			label := fmt.Sprintf("[%d %s]", i+1, b.Label)
			if b.Sized && p.Bet != nil {
				label = fmt.Sprintf("[%d %s $%d]", i+1, b.Label, p.Bet.Amount)
			}
			buttons = append(buttons, buttonStyle(b.Action.Kind).Render(label))
		}
		content.WriteString(ActionsStyle.Render("Actions: ") + strings.Join(buttons, " "))
		if p.Bet != nil {
			content.WriteString("\n")
			content.WriteString(renderBet(*p.Bet))
		}
	}
	return content.String()
}

func renderBet(b actions.BetPlan) string {
	presets := make([]string, 0, len(b.Presets))
	for i, pr := range b.Presets {
		presets = append(presets, fmt.Sprintf("p%d %s", i+1, pr.Label))
	}
	return InfoStyle.Render(fmt.Sprintf("Amount $%d ($%d-$%d, %.0f%%)  %s", b.Amount, b.Min, b.Max, b.Percent*100, strings.Join(presets, "  ")))
}

func buttonStyle(kind protocol.ActionKind) lipgloss.Style {
	switch kind {
	case protocol.ActionFold:
		return ErrorStyle
	case protocol.ActionBet, protocol.ActionRaise:
		return WarningStyle
	default:
		return SuccessStyle
	}
}

func title(kind actions.SurfaceKind) string {
	switch kind {
	case actions.SurfaceDeclare:
		return "Declare"
	case actions.SurfaceChoose:
		return "Choose"
	}
	return kind.String()
}

// renderOverlay is drawn over the table while the session cannot be used
func renderOverlay(f table.Frame) string {
	switch {
	case f.Closed:
		return OverlayStyle.Render(f.Notice)
	case f.Reconnecting:
		return OverlayStyle.Render("Connection lost. Reconnecting...")
	}
	return ""
}
