package board

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/cardtable/internal/card"
	"github.com/lox/cardtable/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func cards(t *testing.T, s string) []card.Card {
	t.Helper()
	cs, err := card.ParseList(s)
	require.NoError(t, err)
	return cs
}

func layout(t *testing.T, s string) protocol.Layout {
	t.Helper()
	var lo protocol.Layout
	require.NoError(t, json.Unmarshal([]byte(s), &lo))
	return lo
}

func kinds(p Plan) []SlotKind {
	var out []SlotKind
	for _, s := range p.Slots() {
		out = append(out, s.Kind)
	}
	return out
}

func TestLinearPadsToExpected(t *testing.T) {
	p := Build(Input{
		Community: map[string][]card.Card{"flop": cards(t, "As Kd")},
		Layout:    layout(t, `{"type": "linear", "expected_cards": 5}`),
	})

	assert.Equal(t, 5, p.SlotCount())
	assert.Equal(t, []SlotKind{SlotCard, SlotCard, SlotEmpty, SlotEmpty, SlotEmpty}, kinds(p))
	assert.Equal(t, cards(t, "As Kd"), p.Dealt())
}

func TestLinearFlattensInOrder(t *testing.T) {
	p := Build(Input{
		Community: map[string][]card.Card{
			"river": cards(t, "2c"),
			"flop":  cards(t, "As Kd Qh"),
			"turn":  cards(t, "Jc"),
		},
		Layout: layout(t, `{"type": "linear", "subsets": ["flop", "turn", "river"], "expected_cards": 3}`),
	})

	assert.Equal(t, 5, p.SlotCount(), "dealt count wins over a smaller expected count")
	assert.Equal(t, cards(t, "As Kd Qh Jc 2c"), p.Dealt())
}

func TestLinearUsesReceivedOrderWithoutLayout(t *testing.T) {
	p := Build(Input{
		Community: map[string][]card.Card{"b": cards(t, "2c"), "a": cards(t, "3c")},
		Order:     []string{"b", "a"},
	})
	assert.Equal(t, cards(t, "2c 3c"), p.Dealt())
	assert.Equal(t, protocol.LayoutLinear, p.Type)
}

func TestNoneHidesBoard(t *testing.T) {
	p := Build(Input{
		Community: map[string][]card.Card{"board": cards(t, "As")},
		Layout:    layout(t, `{"type": "none"}`),
	})
	assert.True(t, p.Hidden)
	assert.Zero(t, p.SlotCount())
}

func TestMultiRowPadsEachRow(t *testing.T) {
	p := Build(Input{
		Community: map[string][]card.Card{
			"board1": cards(t, "As Kd Qh"),
			"board2": cards(t, "2c 3c"),
		},
		Layout: layout(t, `{"type": "multi-row", "rows": [
			{"name": "top", "subsets": ["board1"], "counts": [5]},
			{"name": "bottom", "subsets": ["board2"], "counts": [5]}
		]}`),
	})

	require.Len(t, p.Rows, 2)
	assert.Equal(t, 10, p.SlotCount())
	assert.Len(t, p.Rows[0].Groups[0].Slots, 5)
	assert.Equal(t, SlotEmpty, p.Rows[1].Groups[0].Slots[2].Kind)
	assert.Equal(t, 1, p.Rows[1].Groups[0].Slots[0].Row)
}

func TestUnplacedCards(t *testing.T) {
	p := Build(Input{
		Community: map[string][]card.Card{
			"board1": cards(t, "As Kd Qh"),
			"board3": cards(t, "2c"),
		},
		Layout: layout(t, `{"type": "multi-row", "rows": [{"name": "top", "subsets": ["board1"], "counts": [5]}]}`),
	})

	require.Len(t, p.Unplaced, 1)
	assert.Equal(t, "board3", p.Unplaced[0].Subset)
	assert.Equal(t, card.MustParse("2c"), p.Unplaced[0].Card)

	linear := Build(Input{Community: map[string][]card.Card{"flop": cards(t, "As Kd Qh")}})
	assert.Empty(t, linear.Unplaced)
}

func TestBranchingGroups(t *testing.T) {
	p := Build(Input{
		Community: map[string][]card.Card{
			"flop":   cards(t, "As Kd Qh"),
			"turn_a": cards(t, "2c"),
			"turn_b": cards(t, "3d"),
		},
		Layout: layout(t, `{"type": "branching", "rows": [
			{"subsets": ["flop"], "counts": [3]},
			{"groups": [
				{"name": "a", "subsets": ["turn_a", "river_a"], "counts": [1, 1]},
				{"name": "b", "subsets": ["turn_b", "river_b"], "counts": [1, 1]}
			]}
		]}`),
	})

	require.Len(t, p.Rows, 2)
	require.Len(t, p.Rows[1].Groups, 2)
	assert.Equal(t, 7, p.SlotCount())

	b := p.Rows[1].Groups[1]
	assert.Equal(t, "b", b.Name)
	assert.Equal(t, SlotCard, b.Slots[0].Kind)
	assert.Equal(t, card.MustParse("3d"), b.Slots[0].Card)
	assert.Equal(t, SlotEmpty, b.Slots[1].Kind)
	assert.Equal(t, "river_b", b.Slots[1].Subset)
	assert.Equal(t, 1, b.Slots[1].Group)
}

func TestGridIntersection(t *testing.T) {
	community := map[string][]card.Card{
		"row1": cards(t, "As Kd Qh"),
		"col1": cards(t, "2c As"),
		"col2": cards(t, "Kd"),
		"col3": cards(t, "9s"),
	}
	lo := layout(t, `{"type": "grid", "grid": [
		[["row1", "col1"], ["row1", "col2"], ["row1", "col3"]],
		[null, "col1", {"subsets": ["col1"], "index": 1}]
	]}`)

	p := Build(Input{Community: community, Layout: lo})
	require.Len(t, p.Rows, 2)

	top := p.Rows[0].Groups[0].Slots
	assert.Equal(t, card.MustParse("As"), top[0].Card)
	assert.Equal(t, card.MustParse("Kd"), top[1].Card)
	assert.Equal(t, SlotEmpty, top[2].Kind, "no card in both row1 and col3 yet")

	bottom := p.Rows[1].Groups[0].Slots
	assert.Equal(t, SlotGap, bottom[0].Kind)
	assert.Equal(t, card.MustParse("2c"), bottom[1].Card)
	assert.Equal(t, card.MustParse("As"), bottom[2].Card)
}

func TestIntersection(t *testing.T) {
	community := map[string][]card.Card{
		"a": cards(t, "As Kd Qh"),
		"b": cards(t, "Qh As"),
		"c": cards(t, "As"),
	}
	assert.Equal(t, cards(t, "As Qh"), Intersection(community, []string{"a", "b"}))
	assert.Equal(t, cards(t, "As"), Intersection(community, []string{"a", "b", "c"}))
	assert.Empty(t, Intersection(community, []string{"a", "missing"}))
	assert.Nil(t, Intersection(community, nil))
}

func TestBuildMarksWinningCards(t *testing.T) {
	p := Build(Input{
		Community: map[string][]card.Card{"board": cards(t, "As Kd Qh")},
		Layout:    layout(t, `{"type": "linear", "expected_cards": 5}`),
		Winning:   map[card.Card]bool{card.MustParse("Kd"): true},
	})
	slots := p.Slots()
	assert.False(t, slots[0].Winning)
	assert.True(t, slots[1].Winning)
	assert.False(t, slots[4].Winning)
}
