package actions

import (
	"github.com/lox/cardtable/internal/card"
	"github.com/lox/cardtable/internal/protocol"
)

// CardChip is one selectable hand card
type CardChip struct {
	Card     card.Card
	Selected bool
	// Subset is the separate subset the card is assigned to
	Subset string
}

// SubsetProgress shows how full one separate subset is
type SubsetProgress struct {
	Name   string
	Count  int
	Filled int
}

// BetPlan is the state of the amount selector
type BetPlan struct {
	Amount  int
	Min     int
	Max     int
	Percent float64
	Presets []Preset
}

// Plan is a value copy of everything needed to draw the controls
type Plan struct {
	Kind    SurfaceKind
	Enabled bool
	Locked  bool

	Cards       []CardChip
	Subsets     []SubsetProgress
	SubmitLabel string
	CanSubmit   bool

	Options []protocol.Option
	Buttons []Button
	Bet     *BetPlan
}

// Plan returns the render plan for the current surface
func (c *Controller) Plan() Plan {
	p := Plan{
		Kind:    c.surface.Kind,
		Enabled: c.Enabled(),
		Locked:  c.gate.Locked(),
	}

	switch {
	case c.selection != nil:
		for i, h := range c.selection.Hand() {
			p.Cards = append(p.Cards, CardChip{Card: h, Selected: c.selection.IsSelected(i)})
		}
		p.SubmitLabel = c.selection.Label()
		p.CanSubmit = c.selection.CanSubmit()
	case c.separation != nil:
		for i, h := range c.separation.Hand() {
			name, ok := c.separation.Assignment(i)
			p.Cards = append(p.Cards, CardChip{Card: h, Selected: ok, Subset: name})
		}
		for _, req := range c.separation.Subsets() {
			p.Subsets = append(p.Subsets, SubsetProgress{
				Name:   req.Name,
				Count:  req.Count,
				Filled: len(c.separation.Members(req.Name)),
			})
		}
		p.SubmitLabel = c.separation.Label()
		p.CanSubmit = c.separation.CanSubmit()
	case c.picker != nil:
		p.Options = append(p.Options, c.picker.Options()...)
	}

	if len(c.buttons) > 0 {
		p.Buttons = append(p.Buttons, c.buttons...)
	}
	if c.bet != nil {
		p.Bet = &BetPlan{
			Amount:  c.bet.Amount(),
			Min:     c.bet.Min(),
			Max:     c.bet.Max(),
			Percent: c.bet.Percent(),
			Presets: c.bet.Presets(),
		}
	}
	return p
}
