package protocol

import (
	"encoding/json"
	"strings"
)

// ActionKind is the closed vocabulary of turn actions
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionFold
	ActionCheck
	ActionCall
	ActionBet
	ActionRaise
	ActionBringIn
	ActionComplete
	ActionDraw
	ActionDiscard
	ActionPass
	ActionExpose
	ActionSeparate
	ActionDeclare
	ActionChoose
)

var actionNames = map[ActionKind]string{
	ActionFold:     "fold",
	ActionCheck:    "check",
	ActionCall:     "call",
	ActionBet:      "bet",
	ActionRaise:    "raise",
	ActionBringIn:  "bring_in",
	ActionComplete: "complete",
	ActionDraw:     "draw",
	ActionDiscard:  "discard",
	ActionPass:     "pass",
	ActionExpose:   "expose",
	ActionSeparate: "separate",
	ActionDeclare:  "declare",
	ActionChoose:   "choose",
}

// AllActionKinds lists every known kind in declaration order
var AllActionKinds = []ActionKind{
	ActionFold, ActionCheck, ActionCall, ActionBet, ActionRaise, ActionBringIn, ActionComplete,
	ActionDraw, ActionDiscard, ActionPass, ActionExpose, ActionSeparate, ActionDeclare, ActionChoose,
}

// String returns the wire name of the kind
func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseActionKind maps a wire name to a kind. Unrecognised names return ActionUnknown.
func ParseActionKind(s string) ActionKind {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch norm {
	case "bringin":
		return ActionBringIn
	case "check_call":
		return ActionCall
	}
	for kind, name := range actionNames {
		if name == norm {
			return kind
		}
	}
	return ActionUnknown
}

// IsCardSelection reports whether the kind is answered by picking cards
func (k ActionKind) IsCardSelection() bool {
	switch k {
	case ActionDraw, ActionDiscard, ActionPass, ActionExpose, ActionSeparate:
		return true
	}
	return false
}

// SubsetRequirement names one sub-hand of a separate action and its card count
type SubsetRequirement struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// UnmarshalJSON accepts count aliases
func (s *SubsetRequirement) UnmarshalJSON(data []byte) error {
	l, err := newLenient(data)
	if err != nil {
		return err
	}
	s.Name = l.str("name", "subset", "label")
	s.Count = l.num("count", "required", "size", "cards")
	return nil
}

// Option is one enumerated choice of a declare or choose action
type Option struct {
	Value string `json:"value"`
	Label string `json:"label,omitempty"`
}

// Display returns the label, falling back to the value
func (o Option) Display() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Value
}

// UnmarshalJSON accepts a bare string or an object
func (o *Option) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*o = Option{Value: text}
		return nil
	}
	l, err := newLenient(data)
	if err != nil {
		return err
	}
	o.Value = l.str("value", "id", "name")
	o.Label = l.str("label", "display", "description")
	return nil
}

// ValidAction is one server-asserted legal action for the current actor.
// MinAmount and MaxAmount are bet bounds for betting kinds, card-count bounds
// for card-selection kinds, and a fixed amount for bring_in/complete.
type ValidAction struct {
	Kind      ActionKind          `json:"-"`
	Name      string              `json:"action_type"`
	MinAmount int                 `json:"min_amount"`
	MaxAmount int                 `json:"max_amount"`
	Subsets   []SubsetRequirement `json:"subsets,omitempty"`
	Options   []Option            `json:"options,omitempty"`
	Label     string              `json:"label,omitempty"`
}

// UnmarshalJSON decodes a valid action using any of the field aliases
func (va *ValidAction) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		*va = ValidAction{Name: bare, Kind: ParseActionKind(bare)}
		return nil
	}

	l, err := newLenient(data)
	if err != nil {
		return err
	}

	va.Name = l.str("action_type", "action", "type", "kind")
	va.Kind = ParseActionKind(va.Name)
	va.MinAmount = l.num("min_amount", "minAmount", "min")
	va.MaxAmount = l.num("max_amount", "maxAmount", "max")
	va.Label = l.str("label")

	if !l.decode(&va.Subsets, "subsets", "subset_requirements") {
		if meta, ok := l.metadata(); ok {
			meta.decode(&va.Subsets, "subsets", "subset_requirements")
		}
	}
	if !l.decode(&va.Options, "options", "choices", "declarations") {
		if meta, ok := l.metadata(); ok {
			meta.decode(&va.Options, "options", "choices", "declarations")
		}
	}

	if va.MaxAmount < va.MinAmount {
		va.MaxAmount = va.MinAmount
	}
	return nil
}

// MarshalJSON writes the canonical field names
func (va ValidAction) MarshalJSON() ([]byte, error) {
	type plain ValidAction
	p := plain(va)
	if p.Name == "" {
		p.Name = va.Kind.String()
	}
	return json.Marshal(p)
}

func (l *lenient) metadata() (*lenient, bool) {
	raw, _, ok := l.raw("metadata", "meta")
	if !ok {
		return nil, false
	}
	meta, err := newLenient(raw)
	if err != nil {
		return nil, false
	}
	return meta, true
}

// validActionKeys lists every alias the server has used for the valid action list
var validActionKeys = []string{"valid_actions", "validActions", "available_actions", "availableActions", "actions"}
