// Package board turns community-card data and a layout descriptor into a
// render plan of card slots.
package board

import (
	"sort"

	"github.com/lox/cardtable/internal/card"
	"github.com/lox/cardtable/internal/protocol"
)

// SlotKind says what a slot displays
type SlotKind int

const (
	// SlotEmpty is a placeholder for an undealt card
	SlotEmpty SlotKind = iota
	// SlotCard shows a dealt card
	SlotCard
	// SlotGap is an unused grid cell
	SlotGap
)

// Slot is one card position on the board
type Slot struct {
	Kind    SlotKind
	Card    card.Card
	Subset  string
	Index   int
	Winning bool

	Row   int
	Group int
}

// Group is a run of slots drawn side by side
type Group struct {
	Name  string
	Slots []Slot
}

// Row is one horizontal line of the board
type Row struct {
	Name   string
	Groups []Group
}

// Plan is the full board render plan
type Plan struct {
	Type   protocol.LayoutType
	Hidden bool
	Rows   []Row

	// Unplaced holds dealt cards the layout has no slot for
	Unplaced []Slot
}

// SlotCount is the number of slots the plan needs. A change in this number
// is what forces the renderer to rebuild.
func (p Plan) SlotCount() int {
	n := 0
	for _, r := range p.Rows {
		for _, g := range r.Groups {
			n += len(g.Slots)
		}
	}
	return n
}

// Slots returns every slot in row, group, position order
func (p Plan) Slots() []Slot {
	out := make([]Slot, 0, p.SlotCount())
	for _, r := range p.Rows {
		for _, g := range r.Groups {
			out = append(out, g.Slots...)
		}
	}
	return out
}

// Dealt returns the dealt cards in slot order
func (p Plan) Dealt() []card.Card {
	var out []card.Card
	for _, s := range p.Slots() {
		if s.Kind == SlotCard {
			out = append(out, s.Card)
		}
	}
	return out
}

// Input is everything Build needs
type Input struct {
	Community map[string][]card.Card
	// Order is the subset order as received, used when the layout names none
	Order  []string
	Layout protocol.Layout
	// Winning marks cards to highlight
	Winning map[card.Card]bool
}

// Build computes the render plan for one snapshot
func Build(in Input) Plan {
	var p Plan
	switch in.Layout.Type {
	case protocol.LayoutNone:
		return Plan{Type: protocol.LayoutNone, Hidden: true}
	case protocol.LayoutMultiRow, protocol.LayoutBranching:
		if len(in.Layout.Rows) == 0 {
			p = buildLinear(in)
			break
		}
		p = buildRows(in)
	case protocol.LayoutGrid:
		if len(in.Layout.Grid) == 0 {
			p = buildLinear(in)
			break
		}
		p = buildGrid(in)
	default:
		p = buildLinear(in)
	}

	for ri := range p.Rows {
		for gi := range p.Rows[ri].Groups {
			slots := p.Rows[ri].Groups[gi].Slots
			for si := range slots {
				slots[si].Row = ri
				slots[si].Group = gi
				slots[si].Winning = slots[si].Kind == SlotCard && in.Winning[slots[si].Card]
			}
		}
	}
	p.Unplaced = unplaced(in, p)
	return p
}

func unplaced(in Input, p Plan) []Slot {
	placed := make(map[card.Card]bool)
	for _, c := range p.Dealt() {
		placed[c] = true
	}
	var out []Slot
	for _, name := range subsetOrder(in) {
		for i, c := range in.Community[name] {
			if !placed[c] {
				out = append(out, Slot{Kind: SlotCard, Card: c, Subset: name, Index: i})
			}
		}
	}
	return out
}

// subsetOrder lists every subset that has cards: layout order first, then
// the order the server sent, then anything left alphabetically.
func subsetOrder(in Input) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, name := range in.Layout.Subsets {
		add(name)
	}
	for _, name := range in.Order {
		if _, ok := in.Community[name]; ok {
			add(name)
		}
	}
	var rest []string
	for name := range in.Community {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		add(name)
	}
	return out
}

func buildLinear(in Input) Plan {
	var slots []Slot
	for _, name := range subsetOrder(in) {
		for i, c := range in.Community[name] {
			slots = append(slots, Slot{Kind: SlotCard, Card: c, Subset: name, Index: i})
		}
	}
	for i := len(slots); i < in.Layout.ExpectedCards; i++ {
		slots = append(slots, Slot{Kind: SlotEmpty, Index: i})
	}
	return Plan{
		Type: protocol.LayoutLinear,
		Rows: []Row{{Groups: []Group{{Slots: slots}}}},
	}
}

func buildRows(in Input) Plan {
	p := Plan{Type: in.Layout.Type}
	for _, lr := range in.Layout.Rows {
		row := Row{Name: lr.Name}
		groups := lr.Groups
		if len(groups) == 0 {
			groups = []protocol.LayoutGroup{{Name: lr.Name, Subsets: lr.Subsets, Counts: lr.Counts}}
		}
		for _, lg := range groups {
			row.Groups = append(row.Groups, Group{Name: lg.Name, Slots: subsetSlots(in.Community, lg.Subsets, lg.Counts)})
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}

// subsetSlots lays out the named subsets in order, padding each one to its count
func subsetSlots(community map[string][]card.Card, subsets []string, counts []int) []Slot {
	var slots []Slot
	for i, name := range subsets {
		cards := community[name]
		want := len(cards)
		if i < len(counts) && counts[i] > want {
			want = counts[i]
		}
		for j := 0; j < want; j++ {
			if j < len(cards) {
				slots = append(slots, Slot{Kind: SlotCard, Card: cards[j], Subset: name, Index: j})
			} else {
				slots = append(slots, Slot{Kind: SlotEmpty, Subset: name, Index: j})
			}
		}
	}
	return slots
}

func buildGrid(in Input) Plan {
	p := Plan{Type: protocol.LayoutGrid}
	for _, cells := range in.Layout.Grid {
		slots := make([]Slot, 0, len(cells))
		for _, cell := range cells {
			slots = append(slots, gridSlot(in.Community, cell))
		}
		p.Rows = append(p.Rows, Row{Groups: []Group{{Slots: slots}}})
	}
	return p
}

func gridSlot(community map[string][]card.Card, cell *protocol.GridCell) Slot {
	if cell == nil || len(cell.Subsets) == 0 {
		return Slot{Kind: SlotGap}
	}
	if len(cell.Subsets) == 1 {
		name := cell.Subsets[0]
		cards := community[name]
		if cell.Index >= 0 && cell.Index < len(cards) {
			return Slot{Kind: SlotCard, Card: cards[cell.Index], Subset: name, Index: cell.Index}
		}
		return Slot{Kind: SlotEmpty, Subset: name, Index: cell.Index}
	}

	matches := Intersection(community, cell.Subsets)
	if cell.Index >= 0 && cell.Index < len(matches) {
		return Slot{Kind: SlotCard, Card: matches[cell.Index], Subset: cell.Subsets[0], Index: cell.Index}
	}
	return Slot{Kind: SlotEmpty, Subset: cell.Subsets[0], Index: cell.Index}
}

// Intersection returns the cards present in every named subset, in the order
// of the first subset.
func Intersection(community map[string][]card.Card, subsets []string) []card.Card {
	if len(subsets) == 0 {
		return nil
	}
	var out []card.Card
	for _, c := range community[subsets[0]] {
		inAll := true
		for _, other := range subsets[1:] {
			if !card.Contains(community[other], c) {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, c)
		}
	}
	return out
}
