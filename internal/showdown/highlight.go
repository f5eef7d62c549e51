// Package showdown marks winning cards and narrates hand results.
package showdown

import (
	"github.com/lox/cardtable/internal/card"
	"github.com/lox/cardtable/internal/protocol"
)

// Highlight is the set of cards to mark for one winning hand
type Highlight struct {
	PlayerID string
	// Cards is the full winning hand; every highlighted slot holds one of these
	Cards         []card.Card
	HoleUsed      []card.Card
	CommunityUsed []card.Card
}

// Set returns the highlight as a lookup set
func (h Highlight) Set() map[card.Card]bool {
	set := make(map[card.Card]bool, len(h.Cards))
	for _, c := range h.Cards {
		set[c] = true
	}
	return set
}

// ComputeHighlight derives the highlight from the first winning hand. The
// community part is the winning hand minus the hole cards the server says
// were used.
func ComputeHighlight(hc *protocol.HandComplete) (Highlight, bool) {
	if hc == nil || len(hc.WinningHands) == 0 {
		return Highlight{}, false
	}
	w := hc.WinningHands[0]
	h := Highlight{
		PlayerID: w.PlayerID,
		Cards:    w.Cards,
		HoleUsed: w.UsedHoleCards,
	}
	for _, c := range w.Cards {
		if !card.Contains(w.UsedHoleCards, c) {
			h.CommunityUsed = append(h.CommunityUsed, c)
		}
	}
	return h, true
}
