package actions

import (
	"fmt"

	"github.com/lox/cardtable/internal/protocol"
)

// defaultDeclarations are offered when a declare action carries no options
var defaultDeclarations = []protocol.Option{
	{Value: "high", Label: "High"},
	{Value: "low", Label: "Low"},
	{Value: "both", Label: "Both"},
}

// OptionPicker is the button row for declare and choose
type OptionPicker struct {
	action  protocol.ValidAction
	options []protocol.Option
}

// NewOptionPicker creates a picker over the action's enumerated options
func NewOptionPicker(action protocol.ValidAction) *OptionPicker {
	options := action.Options
	if len(options) == 0 && action.Kind == protocol.ActionDeclare {
		options = defaultDeclarations
	}
	return &OptionPicker{action: action, options: options}
}

// Action returns the action being answered
func (p *OptionPicker) Action() protocol.ValidAction {
	return p.action
}

// Options returns the choices in server order
func (p *OptionPicker) Options() []protocol.Option {
	return p.options
}

// Request builds the submission for option i
func (p *OptionPicker) Request(i int) (protocol.ActionRequest, error) {
	if i < 0 || i >= len(p.options) {
		return protocol.ActionRequest{}, fmt.Errorf("%w: no option %d", ErrSelectionInvalid, i+1)
	}
	key := "choice"
	if p.action.Kind == protocol.ActionDeclare {
		key = "declaration"
	}
	return protocol.ActionRequest{
		Action:          actionName(p.action),
		DeclarationData: map[string]interface{}{key: p.options[i].Value},
	}, nil
}
