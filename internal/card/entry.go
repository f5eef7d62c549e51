package card

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// EntryKind distinguishes the items of a player's visible card list
type EntryKind int

const (
	// EntryCard is a card whose face is known to this viewer
	EntryCard EntryKind = iota
	// EntryFaceDown is an opponent's concealed card
	EntryFaceDown
	// EntrySubset is a named group of cards in split-hand variants
	EntrySubset
)

// Entry is one item of a player's visible card list
type Entry struct {
	Kind   EntryKind
	Card   Card
	Subset string
	Cards  []Card
}

// FaceDown returns a concealed-card entry
func FaceDown() Entry {
	return Entry{Kind: EntryFaceDown}
}

// Known returns an entry for a visible card
func Known(c Card) Entry {
	return Entry{Kind: EntryCard, Card: c}
}

// Group returns a named subset entry
func Group(name string, cards ...Card) Entry {
	return Entry{Kind: EntrySubset, Subset: name, Cards: cards}
}

var faceDownTokens = map[string]bool{
	"":     true,
	"**":   true,
	"??":   true,
	"xx":   true,
	"back": true,
}

// IsFaceDownToken reports whether s is one of the concealed-card sentinels
func IsFaceDownToken(s string) bool {
	return faceDownTokens[strings.ToLower(strings.TrimSpace(s))]
}

// UnmarshalJSON decodes any of the entry encodings the server sends
func (e *Entry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*e = FaceDown()
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		if IsFaceDownToken(text) {
			*e = FaceDown()
			return nil
		}
		c, err := Parse(text)
		if err != nil {
			return err
		}
		*e = Known(c)
		return nil
	}

	var obj struct {
		Hidden bool            `json:"hidden"`
		Subset string          `json:"subset"`
		Cards  []Entry         `json:"cards"`
		Rank   json.RawMessage `json:"rank"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: entry %s", ErrInvalidCard, string(data))
	}

	switch {
	case obj.Subset != "":
		cards := make([]Card, 0, len(obj.Cards))
		for _, sub := range obj.Cards {
			if sub.Kind == EntryCard {
				cards = append(cards, sub.Card)
			}
		}
		*e = Group(obj.Subset, cards...)
		return nil
	case obj.Hidden, len(obj.Rank) == 0:
		*e = FaceDown()
		return nil
	}

	var c Card
	if err := c.UnmarshalJSON(data); err != nil {
		return err
	}
	*e = Known(c)
	return nil
}

// MarshalJSON encodes the entry in its canonical wire form
func (e Entry) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case EntryCard:
		return json.Marshal(e.Card.Code())
	case EntrySubset:
		return json.Marshal(struct {
			Subset string `json:"subset"`
			Cards  []Card `json:"cards"`
		}{e.Subset, e.Cards})
	default:
		return json.Marshal("**")
	}
}

// Flatten returns the known cards in entry order, expanding subsets
func Flatten(entries []Entry) []Card {
	var out []Card
	for _, e := range entries {
		switch e.Kind {
		case EntryCard:
			out = append(out, e.Card)
		case EntrySubset:
			out = append(out, e.Cards...)
		}
	}
	return out
}
