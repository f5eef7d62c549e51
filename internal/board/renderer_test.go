package board

import (
	"testing"

	"github.com/lox/cardtable/internal/card"
	"github.com/lox/cardtable/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendererPreservesNodesWhenSlotCountUnchanged(t *testing.T) {
	r := NewRenderer(testLogger())
	lo := protocol.Layout{Type: protocol.LayoutLinear, ExpectedCards: 5}

	require.True(t, r.Render(Build(Input{Community: map[string][]card.Card{"board": cards(t, "As Kd Qh")}, Layout: lo})))
	before := append([]*Node(nil), r.Nodes()...)

	rebuilt := r.Render(Build(Input{
		Community: map[string][]card.Card{"board": cards(t, "As Kd Qh Jc")},
		Layout:    lo,
		Winning:   map[card.Card]bool{card.MustParse("Jc"): true},
	}))
	assert.False(t, rebuilt)
	require.Len(t, r.Nodes(), 5)
	for i := range before {
		assert.Same(t, before[i], r.Nodes()[i])
	}
	assert.Equal(t, SlotCard, r.Nodes()[3].Slot.Kind)
	assert.True(t, r.Nodes()[3].Slot.Winning)
	assert.Equal(t, 1, r.Rebuilds())
}

func TestRendererRebuildsOnSlotCountChange(t *testing.T) {
	r := NewRenderer(testLogger())
	r.Render(Build(Input{Community: map[string][]card.Card{"board": cards(t, "As Kd")}}))
	first := r.Nodes()[0]

	rebuilt := r.Render(Build(Input{Community: map[string][]card.Card{"board": cards(t, "As Kd Qh")}}))
	assert.True(t, rebuilt)
	assert.NotSame(t, first, r.Nodes()[0])
	assert.Equal(t, 2, r.Rebuilds())

	assert.True(t, r.Render(Build(Input{Layout: protocol.Layout{Type: protocol.LayoutNone}})))
	assert.Empty(t, r.Nodes())
	assert.True(t, r.Plan().Hidden)
}

func TestRendererSkipsCardsWithoutSlot(t *testing.T) {
	r := NewRenderer(testLogger())
	rebuilt := r.Render(Build(Input{
		Community: map[string][]card.Card{
			"board1": cards(t, "As Kd Qh"),
			"board3": cards(t, "2c"),
		},
		Layout: layout(t, `{"type": "multi-row", "rows": [{"name": "top", "subsets": ["board1"], "counts": [5]}]}`),
	}))

	assert.True(t, rebuilt)
	require.Len(t, r.Nodes(), 5)
	assert.Equal(t, cards(t, "As Kd Qh"), r.Plan().Dealt())

	r.Highlight(map[card.Card]bool{card.MustParse("Kd"): true, card.MustParse("2c"): true})
	assert.False(t, r.Nodes()[0].Slot.Winning)
	assert.True(t, r.Nodes()[1].Slot.Winning)
}

func TestRendererPlanReflectsPatches(t *testing.T) {
	r := NewRenderer(testLogger())
	r.Render(Build(Input{
		Community: map[string][]card.Card{"board": cards(t, "As Kd")},
		Layout:    protocol.Layout{Type: protocol.LayoutLinear, ExpectedCards: 3},
	}))

	r.Highlight(map[card.Card]bool{card.MustParse("Kd"): true})
	p := r.Plan()
	slots := p.Slots()
	require.Len(t, slots, 3)
	assert.True(t, slots[1].Winning)

	// The copy is detached from later patches
	r.Highlight(nil)
	assert.True(t, slots[1].Winning)
	assert.False(t, r.Plan().Slots()[1].Winning)
}
