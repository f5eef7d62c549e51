package protocol

import (
	"github.com/lox/cardtable/internal/card"
)

// WinningHand is one winner's five-card hand
type WinningHand struct {
	PlayerID      string      `json:"player_id"`
	Username      string      `json:"username,omitempty"`
	Cards         []card.Card `json:"cards"`
	UsedHoleCards []card.Card `json:"used_hole_cards"`
	Description   string      `json:"hand_description,omitempty"`
}

// UnmarshalJSON accepts field aliases
func (w *WinningHand) UnmarshalJSON(data []byte) error {
	l, err := newLenient(data)
	if err != nil {
		return err
	}
	*w = WinningHand{}
	w.PlayerID = l.str("player_id", "user_id", "winner_id", "playerId")
	w.Username = l.str("username", "name")
	w.Description = l.str("hand_description", "description", "hand_name", "hand_rank")
	var cards, hole []card.Entry
	l.decode(&cards, "cards", "hand", "best_hand")
	l.decode(&hole, "used_hole_cards", "hole_cards_used", "usedHoleCards")
	w.Cards = knownOnly(cards)
	w.UsedHoleCards = knownOnly(hole)
	return nil
}

// Pot is one awarded pot
type Pot struct {
	Name    string   `json:"name,omitempty"`
	Amount  int      `json:"amount"`
	Winners []string `json:"winners"`
	Split   bool     `json:"split"`
}

// UnmarshalJSON accepts field aliases. A pot with several winners is a split
// even if the flag is missing.
func (p *Pot) UnmarshalJSON(data []byte) error {
	l, err := newLenient(data)
	if err != nil {
		return err
	}
	*p = Pot{}
	p.Name = l.str("name", "pot_type", "type")
	p.Amount = l.num("amount", "total")
	if !l.decode(&p.Winners, "winners", "winner_ids") {
		if id := l.str("winner", "winner_id"); id != "" {
			p.Winners = []string{id}
		}
	}
	p.Split = l.flag("split", "is_split") || len(p.Winners) > 1
	return nil
}

// HandComplete is the showdown result for one hand
type HandComplete struct {
	TableID      string                 `json:"table_id,omitempty"`
	HandNumber   int                    `json:"hand_number"`
	WinningHands []WinningHand          `json:"winning_hands"`
	Pots         []Pot                  `json:"pots"`
	Revealed     map[string][]card.Card `json:"revealed_cards,omitempty"`
	Usernames    map[string]string      `json:"usernames,omitempty"`
}

// UnmarshalJSON accepts field aliases
func (h *HandComplete) UnmarshalJSON(data []byte) error {
	l, err := newLenient(data)
	if err != nil {
		return err
	}
	*h = HandComplete{}
	h.TableID = l.str("table_id")
	h.HandNumber = l.num("hand_number", "handNumber")
	l.decode(&h.WinningHands, "winning_hands", "winningHands", "winners")
	l.decode(&h.Pots, "pots", "pot_distribution")
	h.Revealed = l.cardMap("revealed_cards", "revealedCards", "shown_cards")
	l.decode(&h.Usernames, "usernames", "player_names")
	return nil
}

// HasResults reports whether the payload carries anything to display
func (h *HandComplete) HasResults() bool {
	return len(h.WinningHands) > 0 || len(h.Pots) > 0
}
