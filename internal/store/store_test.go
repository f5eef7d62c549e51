package store

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/cardtable/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func parse(t *testing.T, payload string) *protocol.Snapshot {
	t.Helper()
	snap, err := protocol.ParseSnapshot([]byte(payload))
	require.NoError(t, err)
	return snap
}

func TestIngestDerivesView(t *testing.T) {
	s := New("u1", testLogger())

	view := s.Ingest(parse(t, `{
		"phase": "betting",
		"current_player": "u1",
		"players": [
			{"seat": 3, "user_id": "u3", "username": "carol"},
			{"seat": 1, "user_id": "u1", "username": "alice", "hole_cards": ["As", "Kd"]}
		],
		"availableActions": [{"action_type": "fold"}, {"action_type": "call", "min_amount": 10, "max_amount": 10}]
	}`))

	assert.Equal(t, uint64(1), view.Generation)
	assert.True(t, view.IsMyTurn)
	assert.Equal(t, []int{1, 3}, view.Seats)
	assert.Equal(t, "carol", view.Players[3].Username)
	require.Len(t, view.ValidActions, 2)
	assert.Equal(t, protocol.ActionCall, view.ValidActions[1].Kind)

	me, ok := view.Me()
	require.True(t, ok)
	assert.Len(t, me.Cards, 2)
	assert.Equal(t, "carol", view.Username("u3"))
	assert.Equal(t, "u9", view.Username("u9"))
	assert.Same(t, view, s.Current())
}

func TestIngestViewerIDOverridesConfiguredUser(t *testing.T) {
	s := New("configured", testLogger())
	view := s.Ingest(parse(t, `{"viewer_id": "u2", "current_player": "u2"}`))
	assert.Equal(t, "u2", view.UserID)
	assert.True(t, view.IsMyTurn)
}

func TestIngestReplacesWholesale(t *testing.T) {
	s := New("u1", testLogger())
	s.Ingest(parse(t, `{"pot": 100, "players": [{"seat": 1, "user_id": "u1"}, {"seat": 2, "user_id": "u2"}], "valid_actions": ["check"]}`))
	view := s.Ingest(parse(t, `{"players": [{"seat": 2, "user_id": "u2"}]}`))

	assert.Equal(t, uint64(2), view.Generation)
	assert.Equal(t, 0, view.Snapshot.Pot)
	assert.Equal(t, []int{2}, view.Seats)
	assert.Empty(t, view.ValidActions)
	assert.False(t, view.IsMyTurn)
}

func TestFoldedPlayerNeverExposesCards(t *testing.T) {
	s := New("u1", testLogger())
	view := s.Ingest(parse(t, `{
		"players": [
			{"seat": 1, "user_id": "u1", "cards": ["As", "Ad"]},
			{"seat": 2, "user_id": "u2", "has_folded": true, "cards": ["Kc", "Kh"]}
		],
		"revealed_cards": {"u2": ["Kc", "Kh"], "u1": ["As", "Ad"]}
	}`))

	assert.Empty(t, view.Players[2].Cards)
	assert.Empty(t, view.Snapshot.Players[1].Cards)
	assert.NotContains(t, view.Snapshot.Revealed, "u2")
	assert.Len(t, view.Snapshot.Revealed["u1"], 2)
	assert.Len(t, view.Players[1].Cards, 2)
}

func TestIngestNotifiesSubscribersOnce(t *testing.T) {
	s := New("u1", testLogger())
	var seen []uint64
	s.Subscribe(func(v *View) { seen = append(seen, v.Generation) })

	s.Ingest(parse(t, `{}`))
	s.Ingest(parse(t, `{}`))
	assert.Equal(t, []uint64{1, 2}, seen)
}

func TestIngestDegradesGracefully(t *testing.T) {
	s := New("u1", testLogger())
	view := s.Ingest(parse(t, `{"pot": "lots", "players": "nobody", "phase": "betting"}`))
	assert.Equal(t, protocol.PhaseBetting, view.Snapshot.Phase)
	assert.Equal(t, 0, view.Snapshot.Pot)
	assert.Empty(t, view.Seats)

	view = s.Ingest(nil)
	assert.NotNil(t, view.Snapshot)
}

func TestIngestDropsUnknownActions(t *testing.T) {
	s := New("u1", testLogger())
	view := s.Ingest(parse(t, `{"valid_actions": [{"action_type": "teleport"}, {"action_type": "fold"}]}`))
	require.Len(t, view.ValidActions, 1)
	assert.Equal(t, protocol.ActionFold, view.ValidActions[0].Kind)
}

func TestApplyValidActions(t *testing.T) {
	s := New("u1", testLogger())
	first := s.Ingest(parse(t, `{"current_player": "u1"}`))

	fetched := []protocol.ValidAction{{Kind: protocol.ActionCheck, Name: "check"}}
	require.True(t, s.ApplyValidActions(first.Generation, fetched))

	view := s.Current()
	assert.Equal(t, first.Generation+1, view.Generation)
	require.Len(t, view.ValidActions, 1)
	assert.True(t, view.IsMyTurn)

	assert.False(t, s.ApplyValidActions(first.Generation, fetched), "stale generation must be ignored")

	s.Reset()
	assert.Nil(t, s.Current())
	assert.False(t, s.ApplyValidActions(s.Generation(), fetched))
}
