// Package timer implements the per-turn countdown shown for the current actor.
package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

var errExpired = errors.New("turn expired")

// Status is a point-in-time view of the countdown
type Status struct {
	Actor     string
	Limit     int
	Remaining int
	Running   bool
	Expired   bool
}

// Fraction is the share of the limit still remaining, for the progress bar
func (s Status) Fraction() float64 {
	if s.Limit <= 0 {
		return 0
	}
	return float64(s.Remaining) / float64(s.Limit)
}

// Options configures a Timer
type Options struct {
	// OnTick is called after every second and whenever the bar should refresh
	OnTick func(Status)
	// OnExpire is called once when the countdown for an actor reaches zero
	OnExpire func(actor string)
}

// Timer counts down in whole seconds for one actor at a time. Starting it
// again for the same actor leaves the countdown alone; a different actor
// cancels and restarts it.
type Timer struct {
	clock  quartz.Clock
	logger *log.Logger
	opts   Options

	mu        sync.Mutex
	actor     string
	limit     int
	remaining int
	running   bool
	expired   bool
	epoch     uint64
	cancel    context.CancelFunc
}

// New creates a stopped timer
func New(clock quartz.Clock, logger *log.Logger, opts Options) *Timer {
	return &Timer{
		clock:  clock,
		logger: logger.WithPrefix("timer"),
		opts:   opts,
	}
}

// Start begins a countdown of limitSeconds for actor. It reports whether a
// new countdown was started.
func (t *Timer) Start(limitSeconds int, actor string) bool {
	t.mu.Lock()
	if actor != "" && actor == t.actor && (t.running || t.expired) {
		status := t.statusLocked()
		t.mu.Unlock()
		t.tick(status)
		return false
	}

	t.stopLocked()
	if limitSeconds <= 0 || actor == "" {
		t.mu.Unlock()
		return false
	}

	t.epoch++
	epoch := t.epoch
	t.actor = actor
	t.limit = limitSeconds
	t.remaining = limitSeconds
	t.running = true

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.clock.TickerFunc(ctx, time.Second, func() error {
		return t.onSecond(epoch)
	}, "timer", "turn")

	status := t.statusLocked()
	t.mu.Unlock()

	t.logger.Debug("Turn timer started", "actor", actor, "limit", limitSeconds)
	t.tick(status)
	return true
}

func (t *Timer) onSecond(epoch uint64) error {
	t.mu.Lock()
	if epoch != t.epoch || !t.running {
		t.mu.Unlock()
		return errExpired
	}
	t.remaining--
	if t.remaining > 0 {
		status := t.statusLocked()
		t.mu.Unlock()
		t.tick(status)
		return nil
	}

	t.remaining = 0
	t.running = false
	t.expired = true
	actor := t.actor
	status := t.statusLocked()
	t.mu.Unlock()

	t.logger.Debug("Turn timer expired", "actor", actor)
	t.tick(status)
	if t.opts.OnExpire != nil {
		t.opts.OnExpire(actor)
	}
	return errExpired
}

// Stop cancels any countdown and forgets the actor. It is safe to call repeatedly.
func (t *Timer) Stop() {
	t.mu.Lock()
	wasRunning := t.running || t.actor != ""
	t.stopLocked()
	status := t.statusLocked()
	t.mu.Unlock()

	if wasRunning {
		t.tick(status)
	}
}

func (t *Timer) stopLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.epoch++
	t.actor = ""
	t.limit = 0
	t.remaining = 0
	t.running = false
	t.expired = false
}

// Status returns the current countdown state
func (t *Timer) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked()
}

// Remaining returns the seconds left for the current actor
func (t *Timer) Remaining() int {
	return t.Status().Remaining
}

func (t *Timer) statusLocked() Status {
	return Status{
		Actor:     t.actor,
		Limit:     t.limit,
		Remaining: t.remaining,
		Running:   t.running,
		Expired:   t.expired,
	}
}

func (t *Timer) tick(s Status) {
	if t.opts.OnTick != nil {
		t.opts.OnTick(s)
	}
}
