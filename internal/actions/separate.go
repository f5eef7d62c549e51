package actions

import (
	"fmt"

	"github.com/lox/cardtable/internal/card"
	"github.com/lox/cardtable/internal/protocol"
)

// Separation assigns hand cards to the named subsets of a separate action.
// A click places a card in the first subset that still has room, in the
// order the subsets were declared; clicking an assigned card takes it back.
type Separation struct {
	action   protocol.ValidAction
	hand     []card.Card
	assigned map[int]string
	members  map[string][]int
}

// NewSeparation creates an empty assignment
func NewSeparation(action protocol.ValidAction, hand []card.Card) *Separation {
	return &Separation{
		action:   action,
		hand:     hand,
		assigned: make(map[int]string),
		members:  make(map[string][]int),
	}
}

// Action returns the action being answered
func (s *Separation) Action() protocol.ValidAction {
	return s.action
}

// Hand returns the cards being assigned
func (s *Separation) Hand() []card.Card {
	return s.hand
}

// Subsets returns the subset requirements in declaration order
func (s *Separation) Subsets() []protocol.SubsetRequirement {
	return s.action.Subsets
}

// Click assigns or unassigns card i and returns the subset it now belongs
// to, or "" when it is unassigned or nothing changed.
func (s *Separation) Click(i int) string {
	if i < 0 || i >= len(s.hand) {
		return ""
	}
	if name, ok := s.assigned[i]; ok {
		delete(s.assigned, i)
		s.members[name] = removeIndex(s.members[name], i)
		return ""
	}
	for _, req := range s.action.Subsets {
		if len(s.members[req.Name]) < req.Count {
			s.assigned[i] = req.Name
			s.members[req.Name] = append(s.members[req.Name], i)
			return req.Name
		}
	}
	return ""
}

// Assignment returns the subset card i is assigned to
func (s *Separation) Assignment(i int) (string, bool) {
	name, ok := s.assigned[i]
	return name, ok
}

// Members returns the hand indexes assigned to a subset, in click order
func (s *Separation) Members(name string) []int {
	return s.members[name]
}

// Remaining returns how many more cards a subset needs
func (s *Separation) Remaining(name string) int {
	for _, req := range s.action.Subsets {
		if req.Name == name {
			return req.Count - len(s.members[name])
		}
	}
	return 0
}

// CanSubmit reports whether every subset holds exactly its required count
func (s *Separation) CanSubmit() bool {
	if len(s.action.Subsets) == 0 {
		return false
	}
	for _, req := range s.action.Subsets {
		if len(s.members[req.Name]) != req.Count {
			return false
		}
	}
	return true
}

// Label is the submit button text
func (s *Separation) Label() string {
	if s.action.Label != "" {
		return s.action.Label
	}
	return "Separate"
}

// Cards returns the assigned cards flattened in subset declaration order
func (s *Separation) Cards() []card.Card {
	var out []card.Card
	for _, req := range s.action.Subsets {
		for _, i := range s.members[req.Name] {
			out = append(out, s.hand[i])
		}
	}
	return out
}

// Request builds the submission. Cards are flattened in subset order and
// declaration_data carries the per-subset assignment.
func (s *Separation) Request() (protocol.ActionRequest, error) {
	if !s.CanSubmit() {
		return protocol.ActionRequest{}, fmt.Errorf("%w: every subset must be filled", ErrSelectionInvalid)
	}
	subsets := make(map[string]interface{}, len(s.action.Subsets))
	for _, req := range s.action.Subsets {
		codes := make([]string, 0, req.Count)
		for _, i := range s.members[req.Name] {
			codes = append(codes, s.hand[i].Code())
		}
		subsets[req.Name] = codes
	}
	return protocol.ActionRequest{
		Action:          actionName(s.action),
		Cards:           card.Codes(s.Cards()),
		DeclarationData: map[string]interface{}{"subsets": subsets},
	}, nil
}

func removeIndex(list []int, v int) []int {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
