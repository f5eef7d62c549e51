package actions

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/cardtable/internal/card"
	"github.com/lox/cardtable/internal/protocol"
	"github.com/lox/cardtable/internal/store"
)

// Controller owns the current input surface and its submission gate. It is
// rebuilt from each view; player input only ever leaves it as an
// ActionRequest, never as a write to the store.
type Controller struct {
	logger *log.Logger

	surface    Surface
	key        string
	generation uint64
	actor      string
	myTurn     bool

	selection  *CardSelection
	separation *Separation
	picker     *OptionPicker
	bet        *BetControl
	buttons    []Button

	gate Gate
}

// NewController creates a controller with no surface
func NewController(logger *log.Logger) *Controller {
	return &Controller{logger: logger.WithPrefix("actions")}
}

// Update rebuilds the surface from a new view. In-progress selections are
// kept when the view offers the same actions on the same hand.
func (c *Controller) Update(view *store.View) {
	if view == nil {
		c.Clear()
		return
	}
	c.generation = view.Generation
	c.actor = view.CurrentActor()
	c.myTurn = view.IsMyTurn
	c.gate.Observe(view.Generation)

	var hand []card.Card
	if me, ok := view.Me(); ok {
		hand = card.Flatten(me.Cards)
	}
	pot := 0
	if view.Snapshot != nil {
		pot = view.Snapshot.Pot
	}

	surface := SelectSurface(view.ValidActions)
	key := surfaceKey(view, surface, hand)
	if key == c.key {
		if c.bet != nil {
			c.bet.pot = pot
		}
		return
	}

	c.surface = surface
	c.key = key
	c.selection, c.separation, c.picker, c.bet, c.buttons = nil, nil, nil, nil, nil

	switch surface.Kind {
	case SurfaceCardSelect:
		c.selection = NewCardSelection(surface.Primary, hand)
	case SurfaceSeparate:
		c.separation = NewSeparation(surface.Primary, hand)
		if len(surface.Primary.Subsets) == 0 {
			c.logger.Warn("Separate action has no subsets")
		}
	case SurfaceDeclare, SurfaceChoose:
		c.picker = NewOptionPicker(surface.Primary)
	case SurfaceBetting:
		c.buttons = Buttons(surface.Betting)
		for _, b := range c.buttons {
			if b.Sized {
				c.bet = NewBetControl(b.Action, pot)
				break
			}
		}
	case SurfaceNone:
	}

	c.logger.Debug("Surface changed", "surface", surface.Kind, "generation", view.Generation)
}

// Clear drops the surface and any selection, e.g. when a new hand starts
func (c *Controller) Clear() {
	*c = Controller{logger: c.logger}
}

func surfaceKey(view *store.View, s Surface, hand []card.Card) string {
	if s.Kind == SurfaceNone {
		return ""
	}
	var b strings.Builder
	hn := 0
	if view.Snapshot != nil {
		hn = view.Snapshot.HandNumber
	}
	fmt.Fprintf(&b, "%d|%s|%s|%s", hn, view.CurrentActor(), s.Kind, strings.Join(card.Codes(hand), ","))
	actions := s.Betting
	if s.Kind != SurfaceBetting {
		actions = []protocol.ValidAction{s.Primary}
	}
	for _, va := range actions {
		fmt.Fprintf(&b, "|%s:%d:%d:%d:%d", va.Kind, va.MinAmount, va.MaxAmount, len(va.Subsets), len(va.Options))
	}
	return b.String()
}

// Surface returns the current surface
func (c *Controller) Surface() Surface { return c.surface }

// Selection returns the card-select surface, if shown
func (c *Controller) Selection() *CardSelection { return c.selection }

// Separation returns the separate surface, if shown
func (c *Controller) Separation() *Separation { return c.separation }

// Picker returns the declare/choose surface, if shown
func (c *Controller) Picker() *OptionPicker { return c.picker }

// Bet returns the bet sizing control, if a sized bet or raise is offered
func (c *Controller) Bet() *BetControl { return c.bet }

// Buttons returns the betting buttons, if shown
func (c *Controller) Buttons() []Button { return c.buttons }

// Locked reports whether a submission is outstanding
func (c *Controller) Locked() bool { return c.gate.Locked() }

// Enabled reports whether the player can interact with the surface
func (c *Controller) Enabled() bool {
	return c.surface.Kind != SurfaceNone && !c.gate.Locked()
}

// Submit locks the gate for req. Callers send req only when err is nil.
func (c *Controller) Submit(req protocol.ActionRequest) (protocol.ActionRequest, error) {
	if c.surface.Kind == SurfaceNone {
		return req, fmt.Errorf("%w: no action available", ErrSelectionInvalid)
	}
	if err := c.gate.Begin(c.generation, c.actor); err != nil {
		return req, err
	}
	c.logger.Debug("Submitting action", "action", req.Action, "generation", c.generation)
	return req, nil
}

// SubmitSelection submits the current card selection or separation
func (c *Controller) SubmitSelection() (protocol.ActionRequest, error) {
	var (
		req protocol.ActionRequest
		err error
	)
	switch {
	case c.selection != nil:
		req, err = c.selection.Request()
	case c.separation != nil:
		req, err = c.separation.Request()
	default:
		return req, fmt.Errorf("%w: no cards to submit", ErrSelectionInvalid)
	}
	if err != nil {
		return req, err
	}
	return c.Submit(req)
}

// SubmitOption submits declare/choose option i
func (c *Controller) SubmitOption(i int) (protocol.ActionRequest, error) {
	if c.picker == nil {
		return protocol.ActionRequest{}, fmt.Errorf("%w: no options offered", ErrSelectionInvalid)
	}
	req, err := c.picker.Request(i)
	if err != nil {
		return req, err
	}
	return c.Submit(req)
}

// SubmitButton submits betting button i, sized from the bet control when it applies
func (c *Controller) SubmitButton(i int) (protocol.ActionRequest, error) {
	if i < 0 || i >= len(c.buttons) {
		return protocol.ActionRequest{}, fmt.Errorf("%w: no button %d", ErrSelectionInvalid, i+1)
	}
	b := c.buttons[i]
	req := FixedRequest(b.Action)
	if b.Sized && c.bet != nil {
		sized := NewBetControl(b.Action, c.bet.pot)
		sized.SetAmount(c.bet.Amount())
		req = sized.Request()
	}
	return c.Submit(req)
}

// Find returns the first offered action of kind
func (c *Controller) Find(kind protocol.ActionKind) (protocol.ValidAction, bool) {
	if c.surface.Kind == SurfaceBetting {
		for _, va := range c.surface.Betting {
			if va.Kind == kind {
				return va, true
			}
		}
		return protocol.ValidAction{}, false
	}
	if c.surface.Primary.Kind == kind {
		return c.surface.Primary, true
	}
	return protocol.ValidAction{}, false
}

// Resolve applies the server's verdict on a submission. It returns the
// rejection message to show, or "" when the action was accepted.
func (c *Controller) Resolve(resp *protocol.ActionResponse, err error, currentActor string) string {
	if err == nil && resp != nil && resp.Success {
		c.gate.Accept()
		return ""
	}

	msg := "action rejected"
	switch {
	case err != nil:
		msg = err.Error()
	case resp != nil && resp.Error != "":
		msg = resp.Error
	}
	if c.gate.Reject(currentActor) {
		c.logger.Info("Action rejected, controls re-enabled", "error", msg)
	} else {
		c.logger.Info("Stale rejection ignored", "error", msg, "actor", currentActor)
	}
	return msg
}
