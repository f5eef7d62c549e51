package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/cardtable/internal/actions"
	"github.com/lox/cardtable/internal/protocol"
)

// ErrUnknownCommand is returned for input the action line does not understand
var ErrUnknownCommand = errors.New("unknown command")

// Controls is the part of the table the UI drives
type Controls interface {
	ClickCard(i int)
	SetBetAmount(n int)
	StepBet(fraction float64)
	ApplyPreset(i int)
	SubmitSelection()
	SubmitOption(i int)
	SubmitButton(i int)
	ToggleReady()
	Leave(immediate bool)
	Say(text string)
	RefreshState()
}

// Command is one parsed line from the action input
type Command struct {
	Verb    string
	Numbers []int
	Text    string
}

// betStep is how far "+" and "-" move the bet slider
const betStep = 0.1

// ParseCommand parses an input line. Numbers are kept 1-based as typed.
func ParseCommand(input string) (Command, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Command{}, nil
	}
	if strings.HasPrefix(input, "/say ") || strings.HasPrefix(input, "say ") {
		_, text, _ := strings.Cut(input, " ")
		return Command{Verb: "say", Text: strings.TrimSpace(text)}, nil
	}

	parts := strings.Fields(strings.ToLower(input))
	cmd := Command{Verb: strings.TrimPrefix(parts[0], "/")}

	// A bare list of numbers picks buttons, options or cards
	if n, err := strconv.Atoi(cmd.Verb); err == nil {
		cmd.Verb = "pick"
		parts = append([]string{"pick", strconv.Itoa(n)}, parts[1:]...)
	}

	switch cmd.Verb {
	case "+", "-", "submit", "s", "ready", "refresh", "r", "quit", "q", "leave":
	case "pick", "card", "c", "preset", "p", "amount", "a",
		"fold", "check", "call", "bet", "raise", "allin", "all-in", "bring_in", "bringin", "complete":
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, parts[0])
	}

	for _, arg := range parts[1:] {
		if cmd.Verb == "leave" && arg == "now" {
			cmd.Text = "now"
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(arg, "$"))
		if err != nil {
			return Command{}, fmt.Errorf("%s: %q is not a number", cmd.Verb, arg)
		}
		cmd.Numbers = append(cmd.Numbers, n)
	}
	return cmd, nil
}

// Execute applies cmd to the table given the controls currently on screen.
// It reports whether the program should quit.
func Execute(cmd Command, plan actions.Plan, t Controls) (bool, error) {
	switch cmd.Verb {
	case "":
		return false, nil
	case "quit", "q":
		t.Leave(true)
		return true, nil
	case "leave":
		t.Leave(cmd.Text == "now")
	case "ready":
		t.ToggleReady()
	case "refresh", "r":
		t.RefreshState()
	case "say":
		t.Say(cmd.Text)
	case "+":
		t.StepBet(betStep)
	case "-":
		t.StepBet(-betStep)
	case "submit", "s":
		t.SubmitSelection()
	case "card", "c":
		for _, n := range cmd.Numbers {
			t.ClickCard(n - 1)
		}
	case "preset", "p":
		if len(cmd.Numbers) != 1 {
			return false, errors.New("usage: preset <n>")
		}
		t.ApplyPreset(cmd.Numbers[0] - 1)
	case "amount", "a":
		if len(cmd.Numbers) != 1 {
			return false, errors.New("usage: amount <chips>")
		}
		t.SetBetAmount(cmd.Numbers[0])
	case "pick":
		return false, pick(cmd.Numbers, plan, t)
	case "allin", "all-in":
		return false, allIn(plan, t)
	default:
		return false, named(cmd, plan, t)
	}
	return false, nil
}

// pick interprets bare numbers according to the surface on screen
func pick(numbers []int, plan actions.Plan, t Controls) error {
	if len(numbers) == 0 {
		return errors.New("usage: pick <n> [n...]")
	}
	switch plan.Kind {
	case actions.SurfaceCardSelect, actions.SurfaceSeparate:
		for _, n := range numbers {
			t.ClickCard(n - 1)
		}
	case actions.SurfaceDeclare, actions.SurfaceChoose:
		t.SubmitOption(numbers[0] - 1)
	case actions.SurfaceBetting:
		t.SubmitButton(numbers[0] - 1)
	default:
		return errors.New("nothing to choose right now")
	}
	return nil
}

// named submits the betting button whose action matches the verb, sizing it first
func named(cmd Command, plan actions.Plan, t Controls) error {
	kind := protocol.ParseActionKind(cmd.Verb)
	for i, b := range plan.Buttons {
		if b.Action.Kind != kind {
			continue
		}
		if len(cmd.Numbers) > 0 && b.Sized {
			t.SetBetAmount(cmd.Numbers[0])
		}
		t.SubmitButton(i)
		return nil
	}
	return fmt.Errorf("%s is not available", cmd.Verb)
}

func allIn(plan actions.Plan, t Controls) error {
	if plan.Bet == nil {
		return errors.New("no bet to size")
	}
	for i, b := range plan.Buttons {
		if b.Sized {
			t.SetBetAmount(plan.Bet.Max)
			t.SubmitButton(i)
			return nil
		}
	}
	return errors.New("no bet to size")
}
