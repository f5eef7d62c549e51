package actions

import (
	"fmt"
	"math"

	"github.com/lox/cardtable/internal/protocol"
)

// Preset is a quick-bet shortcut
type Preset struct {
	Label  string
	Amount int
}

// BetControl keeps the slider position and the typed amount in sync for a
// bet or raise, bounded by the action's MinAmount and MaxAmount.
type BetControl struct {
	action protocol.ValidAction
	pot    int
	amount int
}

// NewBetControl seeds the amount at the action's minimum
func NewBetControl(action protocol.ValidAction, pot int) *BetControl {
	return &BetControl{action: action, pot: pot, amount: action.MinAmount}
}

// Action returns the bet or raise being sized
func (b *BetControl) Action() protocol.ValidAction {
	return b.action
}

// Min returns the smallest legal amount
func (b *BetControl) Min() int { return b.action.MinAmount }

// Max returns the largest legal amount
func (b *BetControl) Max() int { return b.action.MaxAmount }

// Amount returns the current amount
func (b *BetControl) Amount() int { return b.amount }

// SetAmount sets the amount from the numeric input, clamped to the legal range
func (b *BetControl) SetAmount(n int) int {
	b.amount = b.clamp(n)
	return b.amount
}

// Percent is the slider position in [0,1]
func (b *BetControl) Percent() float64 {
	span := b.action.MaxAmount - b.action.MinAmount
	if span <= 0 {
		return 0
	}
	return float64(b.amount-b.action.MinAmount) / float64(span)
}

// SetPercent moves the slider and derives the amount from it
func (b *BetControl) SetPercent(p float64) int {
	p = math.Max(0, math.Min(1, p))
	span := b.action.MaxAmount - b.action.MinAmount
	b.amount = b.clamp(b.action.MinAmount + int(math.Round(p*float64(span))))
	return b.amount
}

// Step nudges the slider by a fraction of the range
func (b *BetControl) Step(fraction float64) int {
	return b.SetPercent(b.Percent() + fraction)
}

// Presets returns the quick bets, each clamped to the legal range
func (b *BetControl) Presets() []Preset {
	return []Preset{
		{Label: "Min", Amount: b.clamp(b.action.MinAmount)},
		{Label: "½ Pot", Amount: b.clamp(b.pot / 2)},
		{Label: "Pot", Amount: b.clamp(b.pot)},
		{Label: "All-in", Amount: b.clamp(b.action.MaxAmount)},
	}
}

// ApplyPreset sets the amount from preset i
func (b *BetControl) ApplyPreset(i int) (int, bool) {
	presets := b.Presets()
	if i < 0 || i >= len(presets) {
		return b.amount, false
	}
	b.amount = presets[i].Amount
	return b.amount, true
}

// Request builds the submission at the current amount
func (b *BetControl) Request() protocol.ActionRequest {
	amount := b.amount
	return protocol.ActionRequest{Action: actionName(b.action), Amount: &amount}
}

func (b *BetControl) clamp(n int) int {
	if n < b.action.MinAmount {
		return b.action.MinAmount
	}
	if n > b.action.MaxAmount {
		return b.action.MaxAmount
	}
	return n
}

// Button is one betting button
type Button struct {
	Action protocol.ValidAction
	Label  string
	// Sized buttons take their amount from the bet control
	Sized bool
}

// Buttons returns one button per betting action, in server order
func Buttons(valid []protocol.ValidAction) []Button {
	out := make([]Button, 0, len(valid))
	for _, va := range valid {
		b := Button{Action: va, Label: buttonLabel(va)}
		switch va.Kind {
		case protocol.ActionBet, protocol.ActionRaise:
			b.Sized = va.MaxAmount > va.MinAmount
		}
		out = append(out, b)
	}
	return out
}

func buttonLabel(va protocol.ValidAction) string {
	if va.Label != "" {
		return va.Label
	}
	switch va.Kind {
	case protocol.ActionCall, protocol.ActionBringIn, protocol.ActionComplete:
		if va.MinAmount > 0 {
			return fmt.Sprintf("%s %d", title(va.Kind), va.MinAmount)
		}
	case protocol.ActionBet, protocol.ActionRaise:
		if va.MaxAmount == va.MinAmount && va.MinAmount > 0 {
			return fmt.Sprintf("%s %d", title(va.Kind), va.MinAmount)
		}
	}
	return title(va.Kind)
}

// FixedRequest builds the submission for a button that takes no sizing
func FixedRequest(va protocol.ValidAction) protocol.ActionRequest {
	req := protocol.ActionRequest{Action: actionName(va)}
	switch va.Kind {
	case protocol.ActionCall, protocol.ActionBringIn, protocol.ActionComplete, protocol.ActionBet, protocol.ActionRaise:
		if va.MinAmount > 0 {
			amount := va.MinAmount
			req.Amount = &amount
		}
	}
	return req
}
