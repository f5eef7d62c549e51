// Package store owns the client's view of the table. Each snapshot replaces
// the previous view wholesale; nothing is merged field by field.
package store

import (
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/cardtable/internal/card"
	"github.com/lox/cardtable/internal/protocol"
)

// View is the derived, read-only view model for one snapshot
type View struct {
	// Generation increases by one on every replacement of the view
	Generation uint64

	Snapshot *protocol.Snapshot

	// UserID is the local user, taken from the snapshot's viewer id when present
	UserID       string
	IsMyTurn     bool
	Players      map[int]protocol.Player
	Seats        []int
	ValidActions []protocol.ValidAction
}

// Player returns the player with the given user id
func (v *View) Player(userID string) (protocol.Player, bool) {
	if v == nil || userID == "" {
		return protocol.Player{}, false
	}
	for _, seat := range v.Seats {
		if p := v.Players[seat]; p.UserID == userID {
			return p, true
		}
	}
	return protocol.Player{}, false
}

// Me returns the local player's seat view
func (v *View) Me() (protocol.Player, bool) {
	if v == nil {
		return protocol.Player{}, false
	}
	return v.Player(v.UserID)
}

// Username returns a display name for a user id, falling back to the id
func (v *View) Username(userID string) string {
	if p, ok := v.Player(userID); ok && p.Username != "" {
		return p.Username
	}
	return userID
}

// OrderedPlayers returns players in seat order
func (v *View) OrderedPlayers() []protocol.Player {
	if v == nil {
		return nil
	}
	out := make([]protocol.Player, 0, len(v.Seats))
	for _, seat := range v.Seats {
		out = append(out, v.Players[seat])
	}
	return out
}

// CurrentActor is the user id whose turn it is, if any
func (v *View) CurrentActor() string {
	if v == nil || v.Snapshot == nil {
		return ""
	}
	return v.Snapshot.CurrentPlayer
}

// Subscriber is called synchronously after every view replacement
type Subscriber func(*View)

// Store holds the current view. The table event loop is its only writer.
type Store struct {
	logger *log.Logger
	userID string

	mu          sync.RWMutex
	view        *View
	generation  uint64
	subscribers []Subscriber
}

// New creates an empty store for the given local user
func New(userID string, logger *log.Logger) *Store {
	return &Store{
		logger: logger.WithPrefix("store"),
		userID: userID,
	}
}

// Subscribe registers a subscriber. Subscribers must treat the view as read-only.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Current returns the current view, or nil before the first snapshot
func (s *Store) Current() *View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Generation returns the generation of the current view
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Ingest replaces the view with one derived from snap and notifies subscribers
func (s *Store) Ingest(snap *protocol.Snapshot) *View {
	if snap == nil {
		snap = &protocol.Snapshot{}
	}
	for _, w := range snap.Warnings {
		s.logger.Warn("Snapshot field ignored", "detail", w)
	}

	s.mu.Lock()
	s.generation++
	view := s.derive(snap, s.generation)
	s.view = view
	subs := append([]Subscriber(nil), s.subscribers...)
	s.mu.Unlock()

	s.logger.Debug("Ingested snapshot",
		"generation", view.Generation,
		"hand", snap.HandNumber,
		"phase", snap.Phase,
		"actor", snap.CurrentPlayer,
		"my_turn", view.IsMyTurn,
		"actions", len(view.ValidActions))

	for _, fn := range subs {
		fn(view)
	}
	return view
}

// ApplyValidActions replaces the valid-action list if the view is still at
// generation gen. It reports whether the actions were applied.
func (s *Store) ApplyValidActions(gen uint64, actions []protocol.ValidAction) bool {
	s.mu.Lock()
	if s.view == nil || s.generation != gen {
		s.mu.Unlock()
		s.logger.Debug("Discarding stale valid actions", "for", gen)
		return false
	}
	s.generation++
	next := *s.view
	next.Generation = s.generation
	next.ValidActions = s.normalizeActions(actions)
	s.view = &next
	subs := append([]Subscriber(nil), s.subscribers...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(&next)
	}
	return true
}

// Reset drops the current view, e.g. after leaving the table
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.view = nil
}

func (s *Store) derive(snap *protocol.Snapshot, gen uint64) *View {
	view := &View{
		Generation: gen,
		UserID:     s.userID,
		Players:    make(map[int]protocol.Player, len(snap.Players)),
	}
	if snap.ViewerID != "" {
		view.UserID = snap.ViewerID
	}

	scrubbed := *snap
	scrubbed.Players = make([]protocol.Player, 0, len(snap.Players))
	scrubbed.Revealed = make(map[string][]card.Card, len(snap.Revealed))
	for id, cards := range snap.Revealed {
		scrubbed.Revealed[id] = cards
	}

	for _, p := range snap.Players {
		if p.HasFolded {
			p.Cards = nil
			delete(scrubbed.Revealed, p.UserID)
		}
		if prev, dup := view.Players[p.Seat]; dup {
			s.logger.Warn("Duplicate seat in snapshot", "seat", p.Seat, "kept", p.UserID, "dropped", prev.UserID)
		} else {
			view.Seats = append(view.Seats, p.Seat)
		}
		view.Players[p.Seat] = p
	}
	sort.Ints(view.Seats)
	for _, seat := range view.Seats {
		scrubbed.Players = append(scrubbed.Players, view.Players[seat])
	}

	view.Snapshot = &scrubbed
	view.IsMyTurn = view.UserID != "" && snap.CurrentPlayer == view.UserID
	view.ValidActions = s.normalizeActions(snap.ValidActions)
	scrubbed.ValidActions = view.ValidActions
	return view
}

// normalizeActions drops kinds outside the known vocabulary
func (s *Store) normalizeActions(actions []protocol.ValidAction) []protocol.ValidAction {
	out := make([]protocol.ValidAction, 0, len(actions))
	for _, a := range actions {
		if a.Kind == protocol.ActionUnknown {
			s.logger.Warn("Ignoring unknown action kind", "action", a.Name)
			continue
		}
		if a.MaxAmount < a.MinAmount {
			a.MaxAmount = a.MinAmount
		}
		out = append(out, a)
	}
	return out
}
