package actions

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/cardtable/internal/protocol"
	"github.com/lox/cardtable/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func ingest(t *testing.T, s *store.Store, payload string) *store.View {
	t.Helper()
	snap, err := protocol.ParseSnapshot([]byte(payload))
	require.NoError(t, err)
	return s.Ingest(snap)
}

const drawTurn = `{
	"hand_number": 4,
	"current_player": "u1",
	"players": [{"seat": 1, "user_id": "u1", "cards": ["As", "Kd", "Qh", "Jc", "Tc"]}],
	"valid_actions": [{"action_type": "draw", "min_amount": 0, "max_amount": 3}]
}`

func TestControllerBuildsCardSelection(t *testing.T) {
	s := store.New("u1", testLogger())
	c := NewController(testLogger())

	c.Update(ingest(t, s, drawTurn))
	require.Equal(t, SurfaceCardSelect, c.Surface().Kind)
	require.NotNil(t, c.Selection())
	assert.Len(t, c.Selection().Hand(), 5)
	assert.True(t, c.Enabled())

	c.Selection().Toggle(0)

	// A poll returning the same state keeps the selection
	c.Update(ingest(t, s, drawTurn))
	assert.Equal(t, 1, c.Selection().Count())

	req, err := c.SubmitSelection()
	require.NoError(t, err)
	assert.Equal(t, []string{"As"}, req.Cards)
	assert.True(t, c.Locked())
	assert.False(t, c.Enabled())

	_, err = c.SubmitSelection()
	assert.ErrorIs(t, err, ErrSubmissionLocked)
}

func TestControllerSuccessKeepsControlsDisabledUntilSnapshot(t *testing.T) {
	s := store.New("u1", testLogger())
	c := NewController(testLogger())
	c.Update(ingest(t, s, `{"current_player": "u1", "pot": 100, "valid_actions": [{"action_type": "fold"}, {"action_type": "bet", "min_amount": 10, "max_amount": 300}]}`))

	require.NotNil(t, c.Bet())
	c.Bet().ApplyPreset(1)
	req, err := c.SubmitButton(1)
	require.NoError(t, err)
	require.NotNil(t, req.Amount)
	assert.Equal(t, 50, *req.Amount)

	assert.Empty(t, c.Resolve(&protocol.ActionResponse{Success: true}, nil, "u1"))
	assert.True(t, c.Locked())

	c.Update(ingest(t, s, `{"current_player": "u2"}`))
	assert.False(t, c.Locked())
	assert.Equal(t, SurfaceNone, c.Surface().Kind)
	assert.False(t, c.Enabled())
}

func TestControllerSuccessAfterSnapshotReenablesNewControls(t *testing.T) {
	s := store.New("u1", testLogger())
	c := NewController(testLogger())
	c.Update(ingest(t, s, `{"hand_number": 2, "current_player": "u1", "valid_actions": ["check", "fold"]}`))

	_, err := c.SubmitButton(0)
	require.NoError(t, err)

	// The server broadcasts the next street before answering the request
	c.Update(ingest(t, s, `{"hand_number": 2, "current_player": "u1", "pot": 40, "valid_actions": ["fold", {"action_type": "call", "min_amount": 20, "max_amount": 20}]}`))
	assert.True(t, c.Locked())

	assert.Empty(t, c.Resolve(&protocol.ActionResponse{Success: true}, nil, "u1"))
	assert.False(t, c.Locked())
	assert.True(t, c.Enabled())
}

func TestControllerRejectionReenablesForCurrentActor(t *testing.T) {
	s := store.New("u1", testLogger())
	c := NewController(testLogger())
	c.Update(ingest(t, s, `{"current_player": "u1", "valid_actions": ["check", "fold"]}`))

	_, err := c.SubmitButton(0)
	require.NoError(t, err)

	msg := c.Resolve(&protocol.ActionResponse{Success: false, Error: "not allowed"}, nil, s.Current().CurrentActor())
	assert.Equal(t, "not allowed", msg)
	assert.False(t, c.Locked())
	assert.True(t, c.Enabled())
}

func TestControllerStaleRejectionDoesNotReenable(t *testing.T) {
	s := store.New("u1", testLogger())
	c := NewController(testLogger())
	c.Update(ingest(t, s, `{"current_player": "u1", "valid_actions": ["check"]}`))

	_, err := c.SubmitButton(0)
	require.NoError(t, err)

	// A newer snapshot moves the turn on before the response arrives
	c.Update(ingest(t, s, `{"current_player": "u2"}`))
	msg := c.Resolve(nil, errors.New("timeout"), s.Current().CurrentActor())
	assert.Equal(t, "timeout", msg)
	assert.True(t, c.Locked())
}

func TestControllerDeclare(t *testing.T) {
	s := store.New("u1", testLogger())
	c := NewController(testLogger())
	c.Update(ingest(t, s, `{"current_player": "u1", "valid_actions": [
		{"action_type": "fold"},
		{"action_type": "declare", "options": ["high", "low", "both"]}
	]}`))

	require.Equal(t, SurfaceDeclare, c.Surface().Kind)
	assert.Nil(t, c.Buttons())

	req, err := c.SubmitOption(1)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"declaration": "low"}, req.DeclarationData)

	_, found := c.Find(protocol.ActionFold)
	assert.False(t, found)
	_, found = c.Find(protocol.ActionDeclare)
	assert.True(t, found)
}

func TestControllerClear(t *testing.T) {
	s := store.New("u1", testLogger())
	c := NewController(testLogger())
	c.Update(ingest(t, s, drawTurn))
	_, err := c.SubmitSelection()
	require.NoError(t, err)

	c.Clear()
	assert.False(t, c.Locked())
	assert.Equal(t, SurfaceNone, c.Surface().Kind)
	assert.Nil(t, c.Selection())

	_, err = c.SubmitButton(0)
	assert.ErrorIs(t, err, ErrSelectionInvalid)
}

func TestControllerPlan(t *testing.T) {
	s := store.New("u1", testLogger())
	c := NewController(testLogger())

	c.Update(ingest(t, s, `{
		"current_player": "u1",
		"players": [{"seat": 1, "user_id": "u1", "cards": ["As", "Kd", "Qh"]}],
		"valid_actions": [{"action_type": "separate", "metadata": {"subsets": [{"name": "high", "count": 2}, {"name": "low", "count": 1}]}}]
	}`))
	c.Separation().Click(1)

	p := c.Plan()
	assert.Equal(t, SurfaceSeparate, p.Kind)
	assert.True(t, p.Enabled)
	require.Len(t, p.Cards, 3)
	assert.Equal(t, "high", p.Cards[1].Subset)
	assert.True(t, p.Cards[1].Selected)
	assert.Equal(t, []SubsetProgress{{Name: "high", Count: 2, Filled: 1}, {Name: "low", Count: 1}}, p.Subsets)
	assert.False(t, p.CanSubmit)

	c.Update(ingest(t, s, `{"current_player": "u1", "pot": 60, "valid_actions": [{"action_type": "call", "min_amount": 20, "max_amount": 20}, {"action_type": "raise", "min_amount": 40, "max_amount": 400}]}`))
	p = c.Plan()
	assert.Equal(t, SurfaceBetting, p.Kind)
	require.Len(t, p.Buttons, 2)
	require.NotNil(t, p.Bet)
	assert.Equal(t, 40, p.Bet.Amount)
	assert.Len(t, p.Bet.Presets, 4)
}
