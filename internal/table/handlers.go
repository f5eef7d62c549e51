package table

import (
	"encoding/json"
	"fmt"

	"github.com/lox/cardtable/internal/actions"
	"github.com/lox/cardtable/internal/board"
	"github.com/lox/cardtable/internal/config"
	"github.com/lox/cardtable/internal/protocol"
	"github.com/lox/cardtable/internal/store"
)

func (t *Table) registerHandlers() {
	on := func(msgType protocol.MessageType, fn func(*protocol.Message)) {
		t.transport.AddEventHandler(msgType, func(msg *protocol.Message) {
			t.post(func() {
				fn(msg)
				t.publish()
			})
		})
	}

	on(protocol.MessageTypeGameState, t.handleGameState)
	on(protocol.MessageTypeGameStateUpdate, t.handleGameState)
	on(protocol.MessageTypeHandStarting, t.handleHandStarting)
	on(protocol.MessageTypeHandComplete, t.handleHandComplete)
	on(protocol.MessageTypeReadyStatus, t.handleReadyStatus)
	on(protocol.MessageTypePlayerJoined, t.handlePlayerJoined)
	on(protocol.MessageTypePlayerLeft, t.handlePlayerLeft)
	on(protocol.MessageTypePlayerLeaving, t.handlePlayerLeaving)
	on(protocol.MessageTypeChat, t.handleChat)
	on(protocol.MessageTypeTableClosed, t.handleTableClosed)
	on(protocol.MessageTypeTableLeft, t.handleTableLeft)
	on(protocol.MessageTypeError, t.handleError)

	t.transport.OnConnectionChange(func(connected bool) {
		t.post(func() {
			t.handleConnection(connected)
			t.publish()
		})
	})
}

func (t *Table) handleConnection(connected bool) {
	t.connected = connected
	if connected {
		if t.reconnecting {
			t.appendLog("Reconnected")
		}
		t.everUp = true
		t.reconnecting = false
		return
	}
	if t.everUp && !t.closed {
		t.reconnecting = true
		t.appendLog("Connection lost, reconnecting...")
	}
}

func (t *Table) handleGameState(msg *protocol.Message) {
	snap, err := protocol.ParseSnapshot(msg.Data)
	if err != nil {
		t.logger.Warn("Ignoring malformed snapshot", "error", err)
		return
	}
	t.ingest(snap, msg.Data)
}

// ingest stores a snapshot. raw is the undecoded payload, when there is one,
// so a final snapshot can also be read as a hand result.
func (t *Table) ingest(snap *protocol.Snapshot, raw json.RawMessage) {
	view := t.store.Ingest(snap)

	switch snap.Phase {
	case protocol.PhaseShowdown, protocol.PhaseComplete:
		t.showdown.Expect()
		// Some servers carry the result on the final snapshot as well
		var hc protocol.HandComplete
		if len(raw) > 0 && json.Unmarshal(raw, &hc) == nil && hc.HasResults() {
			if hc.HandNumber == 0 {
				hc.HandNumber = snap.HandNumber
			}
			t.showResults(&hc, view)
		}
	}

	if view.IsMyTurn && len(view.ValidActions) == 0 {
		t.fetchValidActions(view.Generation)
	}
}

func (t *Table) fetchState() {
	ctx := t.ctx
	go func() {
		snap, err := t.transport.FetchState(ctx)
		t.post(func() {
			if err != nil {
				t.notify("Refresh failed: %v", err)
			} else {
				t.ingest(snap, nil)
			}
			t.publish()
		})
	}()
}

// onView is the store subscriber. It runs synchronously for every new view.
func (t *Table) onView(view *store.View) {
	snap := view.Snapshot

	t.actions.Update(view)
	t.session.ApplySnapshot(view)

	if lines := t.showdown.Board(snap.Community, snap.CommunityOrder); len(lines) > 0 {
		t.appendLog(lines...)
	}
	input := board.Input{
		Community: snap.Community,
		Order:     snap.CommunityOrder,
		Layout:    snap.Layout,
	}
	if h, ok := t.showdown.Highlight(); ok {
		input.Winning = h.Set()
	}
	t.board.Render(board.Build(input))

	actor := view.CurrentActor()
	switch {
	case actor == "" || snap.TimeLimit <= 0:
		t.timer.Stop()
	case snap.Phase == protocol.PhaseShowdown || snap.Phase == protocol.PhaseComplete:
		t.timer.Stop()
	default:
		t.timer.Start(snap.TimeLimit, actor)
	}
}

func (t *Table) fetchValidActions(gen uint64) {
	ctx := t.ctx
	go func() {
		valid, err := t.transport.FetchValidActions(ctx)
		t.post(func() {
			if err != nil {
				t.logger.Warn("Failed to fetch valid actions", "error", err)
				return
			}
			if t.store.ApplyValidActions(gen, valid) {
				t.publish()
			}
		})
	}()
}

func (t *Table) handleHandStarting(msg *protocol.Message) {
	var data protocol.HandStartingData
	if err := msg.Decode(&data); err != nil {
		t.logger.Warn("Failed to parse hand starting", "error", err)
	}

	t.showdown.HandStarting()
	t.actions.Clear()
	t.session.HandStarting()
	t.timer.Stop()
	t.board.Highlight(nil)

	t.appendLog("")
	if data.HandNumber > 0 {
		t.appendLog(fmt.Sprintf("=== Hand #%d ===", data.HandNumber))
	} else {
		t.appendLog("=== New hand ===")
	}
}

func (t *Table) handleHandComplete(msg *protocol.Message) {
	var hc protocol.HandComplete
	if err := msg.Decode(&hc); err != nil {
		t.logger.Warn("Failed to parse hand result", "error", err)
		return
	}
	t.showResults(&hc, t.store.Current())
}

func (t *Table) showResults(hc *protocol.HandComplete, view *store.View) {
	lines, shown := t.showdown.HandComplete(hc, view.Username)
	if !shown {
		return
	}
	t.timer.Stop()
	t.appendLog("")
	t.appendLog(lines...)
	if h, ok := t.showdown.Highlight(); ok {
		t.board.Highlight(h.Set())
	}
}

func (t *Table) handleReadyStatus(msg *protocol.Message) {
	var data protocol.ReadyStatusData
	if err := msg.Decode(&data); err != nil {
		t.logger.Warn("Failed to parse ready status", "error", err)
		return
	}
	t.session.ApplyReadyStatus(data)
}

func (t *Table) presence(msg *protocol.Message) (protocol.PresenceData, string, bool) {
	var data protocol.PresenceData
	if err := msg.Decode(&data); err != nil {
		t.logger.Warn("Failed to parse presence event", "type", msg.Type, "error", err)
		return data, "", false
	}
	name := data.Username
	if name == "" {
		name = t.store.Current().Username(data.UserID)
	}
	return data, name, true
}

func (t *Table) handlePlayerJoined(msg *protocol.Message) {
	if data, name, ok := t.presence(msg); ok {
		t.session.PlayerJoined(data)
		t.appendLog(fmt.Sprintf("%s joined the table", name))
	}
}

func (t *Table) handlePlayerLeft(msg *protocol.Message) {
	if data, name, ok := t.presence(msg); ok {
		t.session.PlayerLeft(data)
		t.appendLog(fmt.Sprintf("%s left the table", name))
	}
}

func (t *Table) handlePlayerLeaving(msg *protocol.Message) {
	if data, name, ok := t.presence(msg); ok {
		t.session.PlayerLeaving(data)
		t.appendLog(fmt.Sprintf("%s will leave after this hand", name))
	}
}

func (t *Table) handleChat(msg *protocol.Message) {
	var data protocol.ChatData
	if err := msg.Decode(&data); err != nil {
		t.logger.Warn("Failed to parse chat message", "error", err)
		return
	}
	name := data.Username
	if name == "" {
		name = t.store.Current().Username(data.UserID)
	}
	if name == "" {
		name = "?"
	}
	t.appendLog(fmt.Sprintf("%s: %s", name, data.Message))
}

func (t *Table) handleTableClosed(msg *protocol.Message) {
	var data protocol.TableClosedData
	if err := msg.Decode(&data); err != nil {
		t.logger.Warn("Failed to parse table closed", "error", err)
	}

	if t.closed {
		return
	}
	t.closed = true
	t.reconnecting = false
	t.timer.Stop()

	reason := data.Reason
	if reason == "" {
		reason = "closed by the server"
	}
	t.appendLog(fmt.Sprintf("Table closed: %s", reason))
	t.notify("Table closed: %s. Leaving in %s", reason, t.opts.ClosedRedirectDelay)
	t.logger.Info("Table closed", "reason", reason, "redirect_in", t.opts.ClosedRedirectDelay)

	t.clock.AfterFunc(t.opts.ClosedRedirectDelay, func() {
		t.schedule(func() { t.end(ErrTableClosed) })
	}, "table", "closed")
}

func (t *Table) handleTableLeft(*protocol.Message) {
	t.appendLog("You left the table")
	t.end(nil)
}

func (t *Table) handleError(msg *protocol.Message) {
	var data protocol.ErrorData
	if err := msg.Decode(&data); err != nil || data.Message == "" {
		data.Message = string(msg.Data)
	}
	t.logger.Warn("Server error", "message", data.Message, "code", data.Code)
	t.notify("Error: %s", data.Message)
}

// autoFoldEnabled resolves the configured mode against the snapshot flag
func (t *Table) autoFoldEnabled(view *store.View) bool {
	switch t.opts.AutoFold {
	case config.AutoFoldOn:
		return true
	case config.AutoFoldOff:
		return false
	}
	return view != nil && view.Snapshot != nil &&
		view.Snapshot.AutoFoldOnTimeout != nil && *view.Snapshot.AutoFoldOnTimeout
}

func (t *Table) onTimerExpired(actor string) {
	defer t.publish()

	view := t.store.Current()
	if view == nil || !view.IsMyTurn || actor != view.UserID {
		return
	}
	if !t.autoFoldEnabled(view) {
		t.notify("Time is up")
		return
	}
	if t.actions.Locked() {
		return
	}

	va, ok := t.actions.Find(protocol.ActionFold)
	if !ok {
		if va, ok = t.actions.Find(protocol.ActionCheck); !ok {
			t.logger.Info("Timer expired with nothing to auto-submit")
			return
		}
	}
	t.appendLog(fmt.Sprintf("Time expired, auto-%s", va.Kind))
	t.submit(func() (protocol.ActionRequest, error) {
		return t.actions.Submit(actions.FixedRequest(va))
	})
}
