package table

import (
	"errors"

	"github.com/lox/cardtable/internal/protocol"
	"github.com/lox/cardtable/internal/transport"
)

// The methods below are called from the UI goroutine. Each one runs on the
// event loop and publishes a fresh frame.

// ClickCard toggles hand card i in a card selection, or assigns it during a
// separation.
func (t *Table) ClickCard(i int) {
	t.control(func() {
		switch {
		case t.actions.Selection() != nil:
			t.actions.Selection().Toggle(i)
		case t.actions.Separation() != nil:
			t.actions.Separation().Click(i)
		}
	})
}

// SetBetAmount sets the sized bet, clamped to the offered range
func (t *Table) SetBetAmount(n int) {
	t.control(func() {
		if b := t.actions.Bet(); b != nil {
			b.SetAmount(n)
		}
	})
}

// StepBet moves the bet by a fraction of its range, negative to lower it
func (t *Table) StepBet(fraction float64) {
	t.control(func() {
		if b := t.actions.Bet(); b != nil {
			b.Step(fraction)
		}
	})
}

// ApplyPreset applies bet preset i
func (t *Table) ApplyPreset(i int) {
	t.control(func() {
		if b := t.actions.Bet(); b != nil {
			b.ApplyPreset(i)
		}
	})
}

// SubmitSelection submits the selected or separated cards
func (t *Table) SubmitSelection() {
	t.input(func() { t.submit(t.actions.SubmitSelection) })
}

// SubmitOption submits declare or choose option i
func (t *Table) SubmitOption(i int) {
	t.input(func() {
		t.submit(func() (protocol.ActionRequest, error) { return t.actions.SubmitOption(i) })
	})
}

// SubmitButton submits betting button i
func (t *Table) SubmitButton(i int) {
	t.input(func() {
		t.submit(func() (protocol.ActionRequest, error) { return t.actions.SubmitButton(i) })
	})
}

// SetReady toggles the local player's ready flag
func (t *Table) SetReady(ready bool) {
	t.input(func() {
		if err := t.transport.SetReady(ready); err != nil {
			t.notify("Could not set ready: %v", err)
		}
	})
}

// ToggleReady flips the local player's ready flag
func (t *Table) ToggleReady() {
	t.input(func() {
		ready := !t.session.IsReady(t.localUser())
		if err := t.transport.SetReady(ready); err != nil {
			t.notify("Could not set ready: %v", err)
		}
	})
}

// Leave asks to leave the table. An immediate leave ends the session at
// once; otherwise the seat is released after the current hand.
func (t *Table) Leave(immediate bool) {
	t.input(func() {
		if err := t.transport.LeaveTable(immediate); err != nil {
			t.logger.Warn("Failed to send leave", "error", err)
		}
		if immediate {
			t.end(nil)
			return
		}
		if !t.leaving {
			t.leaving = true
			t.appendLog("You will leave after this hand")
		}
	})
}

// Say sends a chat message
func (t *Table) Say(text string) {
	if text == "" {
		return
	}
	t.input(func() {
		if err := t.transport.SendChat(text); err != nil {
			t.notify("Chat not sent: %v", err)
		}
	})
}

// RefreshState asks the server for a fresh snapshot and ready status. While
// the push channel is down the snapshot is fetched over HTTP instead.
func (t *Table) RefreshState() {
	t.input(func() {
		err := t.transport.RequestGameState()
		switch {
		case errors.Is(err, transport.ErrNotConnected):
			t.fetchState()
			return
		case err != nil:
			t.notify("Refresh failed: %v", err)
			return
		}
		_ = t.transport.RequestReadyStatus()
	})
}

func (t *Table) input(fn func()) {
	t.post(func() {
		fn()
		t.publish()
	})
}

// control is input for the surface itself, ignored while a submission holds
// the controls disabled
func (t *Table) control(fn func()) {
	t.input(func() {
		if t.actions.Locked() {
			t.logger.Debug("Input ignored while controls are locked")
			return
		}
		fn()
	})
}

func (t *Table) localUser() string {
	if view := t.store.Current(); view != nil && view.UserID != "" {
		return view.UserID
	}
	return t.opts.UserID
}

// submit locks the controls and sends the request off the event loop. The
// verdict is applied back on the loop against whoever is acting by then.
func (t *Table) submit(build func() (protocol.ActionRequest, error)) {
	req, err := build()
	if err != nil {
		t.notify("%v", err)
		return
	}

	t.pending++
	ctx := t.ctx
	go func() {
		resp, err := t.transport.SubmitAction(ctx, req)
		t.post(func() {
			t.pending--
			actor := t.store.Current().CurrentActor()
			if msg := t.actions.Resolve(resp, err, actor); msg != "" {
				t.notify("Action rejected: %s", msg)
			}
			t.publish()
		})
	}()
}
