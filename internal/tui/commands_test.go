package tui

import (
	"fmt"
	"testing"

	"github.com/lox/cardtable/internal/actions"
	"github.com/lox/cardtable/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) ClickCard(i int)          { r.add("card %d", i) }
func (r *recorder) SetBetAmount(n int)       { r.add("amount %d", n) }
func (r *recorder) StepBet(fraction float64) { r.add("step %.1f", fraction) }
func (r *recorder) ApplyPreset(i int)        { r.add("preset %d", i) }
func (r *recorder) SubmitSelection()         { r.add("submit") }
func (r *recorder) SubmitOption(i int)       { r.add("option %d", i) }
func (r *recorder) SubmitButton(i int)       { r.add("button %d", i) }
func (r *recorder) ToggleReady()             { r.add("ready") }
func (r *recorder) Leave(immediate bool)     { r.add("leave %t", immediate) }
func (r *recorder) Say(text string)          { r.add("say %s", text) }
func (r *recorder) RefreshState()            { r.add("refresh") }

func bettingPlan() actions.Plan {
	return actions.Plan{
		Kind:    actions.SurfaceBetting,
		Enabled: true,
		Buttons: []actions.Button{
			{Action: protocol.ValidAction{Kind: protocol.ActionFold}, Label: "Fold"},
			{Action: protocol.ValidAction{Kind: protocol.ActionCall, MinAmount: 10}, Label: "Call 10"},
			{Action: protocol.ValidAction{Kind: protocol.ActionRaise, MinAmount: 20, MaxAmount: 500}, Label: "Raise", Sized: true},
		},
		Bet: &actions.BetPlan{Amount: 40, Min: 20, Max: 500},
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{"", Command{}},
		{"2", Command{Verb: "pick", Numbers: []int{2}}},
		{"1 3 5", Command{Verb: "pick", Numbers: []int{1, 3, 5}}},
		{"raise 40", Command{Verb: "raise", Numbers: []int{40}}},
		{"bet $25", Command{Verb: "bet", Numbers: []int{25}}},
		{"c 1 2", Command{Verb: "c", Numbers: []int{1, 2}}},
		{"/say good luck all", Command{Verb: "say", Text: "good luck all"}},
		{"say hi", Command{Verb: "say", Text: "hi"}},
		{"leave now", Command{Verb: "leave", Text: "now"}},
		{"READY", Command{Verb: "ready"}},
		{"/refresh", Command{Verb: "refresh"}},
		{"pick", Command{Verb: "pick"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCommand(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	_, err := ParseCommand("dance")
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = ParseCommand("raise lots")
	assert.ErrorContains(t, err, "not a number")
}

func TestExecuteBetting(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"1", []string{"button 0"}},
		{"call", []string{"button 1"}},
		{"raise 100", []string{"amount 100", "button 2"}},
		{"raise", []string{"button 2"}},
		{"allin", []string{"amount 500", "button 2"}},
		{"p 2", []string{"preset 1"}},
		{"+", []string{"step 0.1"}},
		{"-", []string{"step -0.1"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rec := &recorder{}
			cmd, err := ParseCommand(tt.input)
			require.NoError(t, err)
			quit, err := Execute(cmd, bettingPlan(), rec)
			require.NoError(t, err)
			assert.False(t, quit)
			assert.Equal(t, tt.want, rec.calls)
		})
	}
}

func TestExecuteUnavailableAction(t *testing.T) {
	rec := &recorder{}
	cmd, err := ParseCommand("check")
	require.NoError(t, err)
	_, err = Execute(cmd, bettingPlan(), rec)
	assert.ErrorContains(t, err, "check is not available")
	assert.Empty(t, rec.calls)
}

func TestExecutePickFollowsSurface(t *testing.T) {
	cmd, err := ParseCommand("2 4")
	require.NoError(t, err)

	rec := &recorder{}
	_, err = Execute(cmd, actions.Plan{Kind: actions.SurfaceCardSelect}, rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"card 1", "card 3"}, rec.calls)

	rec = &recorder{}
	_, err = Execute(cmd, actions.Plan{Kind: actions.SurfaceDeclare}, rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"option 1"}, rec.calls)

	rec = &recorder{}
	_, err = Execute(cmd, actions.Plan{}, rec)
	assert.Error(t, err)
	assert.Empty(t, rec.calls)
}

func TestExecutePickWithoutNumbers(t *testing.T) {
	cmd, err := ParseCommand("/pick")
	require.NoError(t, err)

	for _, plan := range []actions.Plan{bettingPlan(), {Kind: actions.SurfaceDeclare}, {Kind: actions.SurfaceCardSelect}} {
		rec := &recorder{}
		_, err := Execute(cmd, plan, rec)
		assert.ErrorContains(t, err, "usage: pick")
		assert.Empty(t, rec.calls)
	}
}

func TestExecuteSessionCommands(t *testing.T) {
	rec := &recorder{}
	for _, line := range []string{"ready", "leave", "/say hi", "r", "submit"} {
		cmd, err := ParseCommand(line)
		require.NoError(t, err)
		_, err = Execute(cmd, actions.Plan{}, rec)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"ready", "leave false", "say hi", "refresh", "submit"}, rec.calls)

	cmd, err := ParseCommand("quit")
	require.NoError(t, err)
	quit, err := Execute(cmd, actions.Plan{}, rec)
	require.NoError(t, err)
	assert.True(t, quit)
	assert.Equal(t, "leave true", rec.calls[len(rec.calls)-1])
}
