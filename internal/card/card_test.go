package card

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Card
		wantErr  bool
	}{
		{name: "ace of spades", input: "As", expected: Card{Suit: Spades, Rank: Ace}},
		{name: "ten as T", input: "Th", expected: Card{Suit: Hearts, Rank: Ten}},
		{name: "ten as 10", input: "10d", expected: Card{Suit: Diamonds, Rank: Ten}},
		{name: "case insensitive", input: "kC", expected: Card{Suit: Clubs, Rank: King}},
		{name: "suit symbol", input: "Q♥", expected: Card{Suit: Hearts, Rank: Queen}},
		{name: "invalid rank", input: "Xs", wantErr: true},
		{name: "invalid suit", input: "Az", wantErr: true},
		{name: "too short", input: "A", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCard)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCardStrings(t *testing.T) {
	c := MustParse("Td")
	assert.Equal(t, "T♦", c.String())
	assert.Equal(t, "Td", c.Code())
	assert.True(t, c.IsRed())
	assert.False(t, MustParse("2c").IsRed())
	assert.True(t, Card{}.IsZero())
}

func TestCardUnmarshalObject(t *testing.T) {
	var c Card
	require.NoError(t, json.Unmarshal([]byte(`{"rank":"A","suit":"spades"}`), &c))
	assert.Equal(t, MustParse("As"), c)

	require.NoError(t, json.Unmarshal([]byte(`{"rank":13,"suit":"h"}`), &c))
	assert.Equal(t, MustParse("Kh"), c)
}

func TestEntryUnmarshal(t *testing.T) {
	var entries []Entry
	payload := `["As", "**", null, {"hidden": true}, {"subset": "high", "cards": ["Kd", "Qd"]}, {"rank": "2", "suit": "c"}]`
	require.NoError(t, json.Unmarshal([]byte(payload), &entries))
	require.Len(t, entries, 6)

	assert.Equal(t, Known(MustParse("As")), entries[0])
	assert.Equal(t, EntryFaceDown, entries[1].Kind)
	assert.Equal(t, EntryFaceDown, entries[2].Kind)
	assert.Equal(t, EntryFaceDown, entries[3].Kind)
	assert.Equal(t, EntrySubset, entries[4].Kind)
	assert.Equal(t, "high", entries[4].Subset)
	assert.Equal(t, []Card{MustParse("Kd"), MustParse("Qd")}, entries[4].Cards)
	assert.Equal(t, Known(MustParse("2c")), entries[5])

	assert.Equal(t,
		[]Card{MustParse("As"), MustParse("Kd"), MustParse("Qd"), MustParse("2c")},
		Flatten(entries))
}

func TestParseListAndJoin(t *testing.T) {
	cards, err := ParseList("As Kd 2c")
	require.NoError(t, err)
	assert.Equal(t, "[A♠ K♦ 2♣]", Join(cards))
	assert.Equal(t, []string{"As", "Kd", "2c"}, Codes(cards))
	assert.True(t, Contains(cards, MustParse("Kd")))
	assert.False(t, Contains(cards, MustParse("Kh")))

	_, err = ParseList("As Zz")
	assert.Error(t, err)
}
