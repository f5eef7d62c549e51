package showdown

import (
	"github.com/charmbracelet/log"
	"github.com/lox/cardtable/internal/card"
	"github.com/lox/cardtable/internal/protocol"
)

// State is the coordinator's per-hand state
type State int

const (
	StateIdle State = iota
	StateAwaitingResults
	StateDisplayed
)

func (s State) String() string {
	switch s {
	case StateAwaitingResults:
		return "awaiting_results"
	case StateDisplayed:
		return "displayed"
	default:
		return "idle"
	}
}

// Coordinator shows each hand's result exactly once
type Coordinator struct {
	logger *log.Logger

	state State
	// hand counts hand_starting events; displayedHand is its value when the
	// current result was shown
	hand          uint64
	displayedHand uint64
	// lastHandNumber is the highest server hand number displayed
	lastHandNumber int

	highlight    Highlight
	hasHighlight bool
	board        map[string][]card.Card
}

// NewCoordinator creates an idle coordinator
func NewCoordinator(logger *log.Logger) *Coordinator {
	return &Coordinator{
		logger: logger.WithPrefix("showdown"),
		hand:   1,
	}
}

// State returns the current state
func (c *Coordinator) State() State {
	return c.state
}

// Highlight returns the winning-card highlight for the displayed hand
func (c *Coordinator) Highlight() (Highlight, bool) {
	return c.highlight, c.hasHighlight
}

// HandStarting clears per-hand state
func (c *Coordinator) HandStarting() {
	c.hand++
	c.state = StateIdle
	c.highlight = Highlight{}
	c.hasHighlight = false
	c.board = nil
}

// Board records the community cards from a snapshot and returns any deal
// announcements for cards that are new since the previous snapshot.
func (c *Coordinator) Board(community map[string][]card.Card, order []string) []string {
	lines := DealLines(c.board, community, order)
	c.board = community
	return lines
}

// Expect moves to awaiting_results when a snapshot shows the hand has ended
// but no result has been shown yet.
func (c *Coordinator) Expect() {
	if c.state == StateIdle {
		c.state = StateAwaitingResults
	}
}

// HandComplete processes a result. It returns the narration and true the
// first time results for the current hand are seen, and nothing for
// duplicates or result-less payloads.
func (c *Coordinator) HandComplete(hc *protocol.HandComplete, names Namer) ([]string, bool) {
	if hc == nil {
		return nil, false
	}
	if c.state == StateDisplayed && c.displayedHand == c.hand {
		c.logger.Debug("Ignoring duplicate result", "hand", hc.HandNumber)
		return nil, false
	}
	if hc.HandNumber > 0 && hc.HandNumber <= c.lastHandNumber {
		c.logger.Debug("Ignoring result for an earlier hand", "hand", hc.HandNumber, "last", c.lastHandNumber)
		return nil, false
	}
	if !hc.HasResults() {
		c.state = StateAwaitingResults
		return nil, false
	}

	c.state = StateDisplayed
	c.displayedHand = c.hand
	if hc.HandNumber > c.lastHandNumber {
		c.lastHandNumber = hc.HandNumber
	}
	c.highlight, c.hasHighlight = ComputeHighlight(hc)

	c.logger.Info("Hand complete", "hand", hc.HandNumber, "pots", len(hc.Pots), "winners", len(hc.WinningHands))
	return Narrate(hc, names), true
}
