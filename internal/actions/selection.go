package actions

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lox/cardtable/internal/card"
	"github.com/lox/cardtable/internal/protocol"
)

var (
	// ErrSelectionInvalid is returned when a selection does not meet the action's bounds
	ErrSelectionInvalid = errors.New("selection does not satisfy the action")
	// ErrSubmissionLocked is returned while a submission is outstanding
	ErrSubmissionLocked = errors.New("submission already in progress")
)

// CardSelection is the multi-select surface for draw, discard, pass and expose.
// MinAmount and MaxAmount bound the number of selected cards.
type CardSelection struct {
	action   protocol.ValidAction
	hand     []card.Card
	selected map[int]bool
}

// NewCardSelection creates an empty selection over the player's hand
func NewCardSelection(action protocol.ValidAction, hand []card.Card) *CardSelection {
	return &CardSelection{
		action:   action,
		hand:     hand,
		selected: make(map[int]bool),
	}
}

// Action returns the action being answered
func (s *CardSelection) Action() protocol.ValidAction {
	return s.action
}

// Hand returns the cards being selected from
func (s *CardSelection) Hand() []card.Card {
	return s.hand
}

// Toggle flips card i in or out of the selection. Adding beyond MaxAmount
// and out of range indexes are no-ops. It reports whether anything changed.
func (s *CardSelection) Toggle(i int) bool {
	if i < 0 || i >= len(s.hand) {
		return false
	}
	if s.selected[i] {
		delete(s.selected, i)
		return true
	}
	if len(s.selected) >= s.action.MaxAmount {
		return false
	}
	s.selected[i] = true
	return true
}

// IsSelected reports whether card i is selected
func (s *CardSelection) IsSelected(i int) bool {
	return s.selected[i]
}

// Count returns the number of selected cards
func (s *CardSelection) Count() int {
	return len(s.selected)
}

// Selected returns the selected indexes in hand order
func (s *CardSelection) Selected() []int {
	out := make([]int, 0, len(s.selected))
	for i := range s.selected {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// CanSubmit reports whether MinAmount <= selected <= MaxAmount
func (s *CardSelection) CanSubmit() bool {
	n := len(s.selected)
	return n >= s.action.MinAmount && n <= s.action.MaxAmount
}

// Label is the submit button text
func (s *CardSelection) Label() string {
	n := len(s.selected)
	if n == 0 && s.action.MinAmount == 0 {
		return "Stand Pat"
	}
	if s.action.Label != "" {
		return fmt.Sprintf("%s (%d)", s.action.Label, n)
	}
	return fmt.Sprintf("%s %d", title(s.action.Kind), n)
}

// Request builds the submission for the current selection
func (s *CardSelection) Request() (protocol.ActionRequest, error) {
	if !s.CanSubmit() {
		return protocol.ActionRequest{}, fmt.Errorf("%w: %d selected, need %d-%d",
			ErrSelectionInvalid, len(s.selected), s.action.MinAmount, s.action.MaxAmount)
	}
	req := protocol.ActionRequest{Action: actionName(s.action), Cards: []string{}}
	for _, i := range s.Selected() {
		req.Cards = append(req.Cards, s.hand[i].Code())
	}
	return req, nil
}
