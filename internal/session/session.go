// Package session tracks pre-hand ready consensus and leave intent for the
// players sharing a table.
package session

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/lox/cardtable/internal/protocol"
	"github.com/lox/cardtable/internal/store"
)

// Seat is one player's lifecycle flags
type Seat struct {
	UserID   string
	Username string
	Seat     int
	Ready    bool
	// Leaving means the player stays seated until the current hand ends
	Leaving bool
}

// Lifecycle holds the ready and leaving flags for every seated player
type Lifecycle struct {
	logger     *log.Logger
	minPlayers int
	seats      map[string]*Seat
	allReady   bool
}

// New creates a lifecycle tracker. minPlayers is used until the server sends one.
func New(minPlayers int, logger *log.Logger) *Lifecycle {
	if minPlayers <= 0 {
		minPlayers = 2
	}
	return &Lifecycle{
		logger:     logger.WithPrefix("session"),
		minPlayers: minPlayers,
		seats:      make(map[string]*Seat),
	}
}

// ApplySnapshot replaces the seat list with the snapshot's players. A ready
// flag sent in the snapshot is taken as is; otherwise the known one is kept.
// Leaving flags are only ever set here.
func (l *Lifecycle) ApplySnapshot(view *store.View) {
	if view == nil || view.Snapshot == nil {
		return
	}
	if view.Snapshot.MinPlayers > 0 {
		l.minPlayers = view.Snapshot.MinPlayers
	}

	next := make(map[string]*Seat, len(view.Seats))
	for _, p := range view.OrderedPlayers() {
		if p.UserID == "" {
			continue
		}
		s := &Seat{UserID: p.UserID, Username: p.Username, Seat: p.Seat}
		if prev, ok := l.seats[p.UserID]; ok {
			s.Ready = prev.Ready
			s.Leaving = prev.Leaving
		}
		if p.IsReady != nil {
			s.Ready = *p.IsReady
		}
		s.Leaving = s.Leaving || p.LeavingAfterHand
		next[p.UserID] = s
	}
	l.seats = next
	l.recompute()
}

// ApplyReadyStatus applies a ready_status_update
func (l *Lifecycle) ApplyReadyStatus(d protocol.ReadyStatusData) {
	if d.MinPlayers > 0 {
		l.minPlayers = d.MinPlayers
	}
	for _, rp := range d.Players {
		if rp.UserID == "" {
			continue
		}
		s, ok := l.seats[rp.UserID]
		if !ok {
			s = &Seat{UserID: rp.UserID}
			l.seats[rp.UserID] = s
		}
		if rp.Username != "" {
			s.Username = rp.Username
		}
		if rp.Seat > 0 {
			s.Seat = rp.Seat
		}
		s.Ready = rp.IsReady
	}
	l.recompute()
	l.allReady = l.allReady || (d.AllReady && len(l.seats) >= l.minPlayers)
}

// PlayerJoined seats a player announced by player_joined
func (l *Lifecycle) PlayerJoined(p protocol.PresenceData) {
	if p.UserID == "" {
		return
	}
	if _, ok := l.seats[p.UserID]; !ok {
		l.seats[p.UserID] = &Seat{UserID: p.UserID, Username: p.Username, Seat: p.Seat}
	}
	l.recompute()
}

// PlayerLeaving marks a player as leaving once the current hand ends
func (l *Lifecycle) PlayerLeaving(p protocol.PresenceData) {
	if s, ok := l.seats[p.UserID]; ok {
		s.Leaving = true
		return
	}
	l.logger.Debug("Leaving notice for unknown player", "user", p.UserID)
}

// PlayerLeft removes a player
func (l *Lifecycle) PlayerLeft(p protocol.PresenceData) {
	delete(l.seats, p.UserID)
	l.recompute()
}

// HandStarting resets ready flags; readiness is only meaningful between hands
func (l *Lifecycle) HandStarting() {
	for _, s := range l.seats {
		s.Ready = false
	}
	l.allReady = false
}

func (l *Lifecycle) recompute() {
	ready := 0
	for _, s := range l.seats {
		if s.Ready {
			ready++
		}
	}
	l.allReady = len(l.seats) >= l.minPlayers && ready == len(l.seats)
}

// IsReady reports a player's ready flag
func (l *Lifecycle) IsReady(userID string) bool {
	s, ok := l.seats[userID]
	return ok && s.Ready
}

// IsLeaving reports whether a player leaves after this hand
func (l *Lifecycle) IsLeaving(userID string) bool {
	s, ok := l.seats[userID]
	return ok && s.Leaving
}

// AllReady reports whether every seated player is ready and there are enough of them
func (l *Lifecycle) AllReady() bool {
	return l.allReady
}

// MinPlayers returns the players needed to start a hand
func (l *Lifecycle) MinPlayers() int {
	return l.minPlayers
}

// Seats returns every tracked player in seat order
func (l *Lifecycle) Seats() []Seat {
	out := make([]Seat, 0, len(l.seats))
	for _, s := range l.seats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seat != out[j].Seat {
			return out[i].Seat < out[j].Seat
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// Hint is the pre-hand status line
func (l *Lifecycle) Hint() string {
	n := len(l.seats)
	switch {
	case n < l.minPlayers:
		need := l.minPlayers - n
		noun := "players"
		if need == 1 {
			noun = "player"
		}
		return fmt.Sprintf("Waiting for %d more %s (%d/%d)", need, noun, n, l.minPlayers)
	case !l.allReady:
		ready := 0
		for _, s := range l.seats {
			if s.Ready {
				ready++
			}
		}
		return fmt.Sprintf("Waiting for players to ready up (%d/%d ready)", ready, n)
	default:
		return "All players ready, starting soon"
	}
}
