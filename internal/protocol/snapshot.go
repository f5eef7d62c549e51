package protocol

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/lox/cardtable/internal/card"
)

// Phase is the server-asserted hand phase
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseDealing  Phase = "dealing"
	PhaseBetting  Phase = "betting"
	PhaseDrawing  Phase = "drawing"
	PhaseShowdown Phase = "showdown"
	PhaseComplete Phase = "complete"
)

// DefaultSubset names the board when community cards arrive as a bare list
const DefaultSubset = "board"

// SidePot is one pot beyond the main pot
type SidePot struct {
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligible_players,omitempty"`
}

// Player is one seat's view as sent by the server
type Player struct {
	Seat             int          `json:"seat"`
	UserID           string       `json:"user_id"`
	Username         string       `json:"username"`
	ChipStack        int          `json:"chip_stack"`
	CurrentBet       int          `json:"current_bet"`
	IsActive         bool         `json:"is_active"`
	HasFolded        bool         `json:"has_folded"`
	IsDisconnected   bool         `json:"is_disconnected"`
	Cards            []card.Entry `json:"cards,omitempty"`
	IsReady          *bool        `json:"is_ready,omitempty"`
	LeavingAfterHand bool         `json:"leaving_after_hand"`
}

// UnmarshalJSON decodes a player using any of the field aliases
func (p *Player) UnmarshalJSON(data []byte) error {
	l, err := newLenient(data)
	if err != nil {
		return err
	}
	p.Seat = l.num("seat", "seat_number", "seatNumber", "position")
	p.UserID = l.str("user_id", "userId", "player_id", "id")
	p.Username = l.str("username", "name", "display_name")
	p.ChipStack = l.num("chip_stack", "chips", "stack")
	p.CurrentBet = l.num("current_bet", "bet", "currentBet")
	p.IsActive = l.flag("is_active", "active")
	p.HasFolded = l.flag("has_folded", "is_folded", "folded")
	p.IsDisconnected = l.flag("is_disconnected", "disconnected")
	p.IsReady = l.flagPtr("is_ready", "ready")
	p.LeavingAfterHand = l.flag("leaving_after_hand", "is_leaving")
	l.decode(&p.Cards, "cards", "hole_cards", "holeCards")
	return nil
}

// Snapshot is one server-asserted point-in-time table state.
// Fields absent from the payload keep their zero value.
type Snapshot struct {
	TableID           string
	HandNumber        int
	Phase             Phase
	CurrentPlayer     string
	ViewerID          string
	DealerSeat        int
	SmallBlindSeat    int
	BigBlindSeat      int
	Pot               int
	SidePots          []SidePot
	Community         map[string][]card.Card
	CommunityOrder    []string
	Layout            Layout
	Players           []Player
	ValidActions      []ValidAction
	HasValidActions   bool
	TimeLimit         int
	AutoFoldOnTimeout *bool
	MinPlayers        int
	Revealed          map[string][]card.Card

	// Warnings lists fields that were present but could not be decoded
	Warnings []string
}

// ParseSnapshot decodes a snapshot payload. Only a payload that is not a JSON
// object is an error; every field-level problem degrades to a zero value.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return &s, nil
}

// UnmarshalJSON implements the lenient snapshot decoding
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	l, err := newLenient(data)
	if err != nil {
		return err
	}

	// Some servers wrap the snapshot as {"game_state": {...}}
	if inner, _, ok := l.raw("game_state"); ok && len(inner) > 0 && inner[0] == '{' && !l.has("phase", "players") {
		return s.UnmarshalJSON(inner)
	}

	*s = Snapshot{}
	s.TableID = l.str("table_id", "tableId")
	s.HandNumber = l.num("hand_number", "handNumber", "hand_id")
	s.Phase = Phase(strings.ToLower(l.str("phase", "state", "status")))
	s.CurrentPlayer = l.str("current_player", "current_actor", "current_player_id", "currentPlayer", "acting_player")
	s.ViewerID = l.str("viewer_id", "your_user_id", "current_user_id")
	s.DealerSeat = l.num("dealer_seat", "dealer_position", "button")
	s.SmallBlindSeat = l.num("small_blind_seat", "sb_seat")
	s.BigBlindSeat = l.num("big_blind_seat", "bb_seat")
	s.Pot = l.num("pot", "pot_total", "total_pot")
	s.TimeLimit = l.num("time_limit", "timeLimit", "action_timeout")
	s.AutoFoldOnTimeout = l.flagPtr("auto_fold_on_timeout", "auto_fold")
	s.MinPlayers = l.num("min_players", "minPlayers")
	l.decode(&s.SidePots, "side_pots", "sidePots")
	l.decode(&s.Layout, "layout", "board_layout", "layout_descriptor")

	s.HasValidActions = l.decode(&s.ValidActions, validActionKeys...)
	s.Players = l.players()
	s.Community, s.CommunityOrder = l.community()
	s.Revealed = l.cardMap("revealed_cards", "revealedCards", "shown_cards")

	s.Warnings = l.warnings
	return nil
}

// players decodes either a list or an object keyed by seat number
func (l *lenient) players() []Player {
	raw, key, ok := l.raw("players", "seats")
	if !ok {
		return nil
	}

	var list []Player
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var bySeat map[string]Player
	if err := json.Unmarshal(raw, &bySeat); err != nil {
		l.warnf("field %q: %v", key, err)
		return nil
	}
	out := make([]Player, 0, len(bySeat))
	for seatKey, p := range bySeat {
		if p.Seat == 0 {
			if n, err := strconv.Atoi(seatKey); err == nil {
				p.Seat = n
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seat < out[j].Seat })
	return out
}

// community decodes the board as either a bare list or a subset map,
// dropping undealt (null or face-down) entries.
func (l *lenient) community() (map[string][]card.Card, []string) {
	raw, key, ok := l.raw("community_cards", "communityCards", "board", "community")
	if !ok {
		return map[string][]card.Card{}, nil
	}

	var list []card.Entry
	if err := json.Unmarshal(raw, &list); err == nil {
		return map[string][]card.Card{DefaultSubset: knownOnly(list)}, []string{DefaultSubset}
	}

	var subsets map[string][]card.Entry
	if err := json.Unmarshal(raw, &subsets); err != nil {
		l.warnf("field %q: %v", key, err)
		return map[string][]card.Card{}, nil
	}
	out := make(map[string][]card.Card, len(subsets))
	for name, entries := range subsets {
		out[name] = knownOnly(entries)
	}
	return out, objectKeys(raw)
}

func (l *lenient) cardMap(keys ...string) map[string][]card.Card {
	var raw map[string][]card.Entry
	if !l.decode(&raw, keys...) {
		return nil
	}
	out := make(map[string][]card.Card, len(raw))
	for k, entries := range raw {
		out[k] = knownOnly(entries)
	}
	return out
}

func knownOnly(entries []card.Entry) []card.Card {
	out := make([]card.Card, 0, len(entries))
	for _, e := range entries {
		if e.Kind == card.EntryCard {
			out = append(out, e.Card)
		}
	}
	return out
}
