// Package table is the per-session context object. It owns one instance of
// every component, runs them on a single event loop, and publishes a Frame
// after each event for the UI to draw.
package table

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/cardtable/internal/actions"
	"github.com/lox/cardtable/internal/board"
	"github.com/lox/cardtable/internal/card"
	"github.com/lox/cardtable/internal/config"
	"github.com/lox/cardtable/internal/protocol"
	"github.com/lox/cardtable/internal/session"
	"github.com/lox/cardtable/internal/showdown"
	"github.com/lox/cardtable/internal/store"
	"github.com/lox/cardtable/internal/timer"
	"github.com/lox/cardtable/internal/transport"
)

// ErrTableClosed is returned by Run when the server closed the table
var ErrTableClosed = errors.New("table closed")

const (
	maxLogLines    = 500
	noticeDuration = 4 * time.Second
)

// Transport is the part of the transport adapter the table uses
type Transport interface {
	AddEventHandler(msgType protocol.MessageType, handler transport.Handler)
	OnConnectionChange(handler transport.ConnectionHandler)
	SubmitAction(ctx context.Context, req protocol.ActionRequest) (*protocol.ActionResponse, error)
	FetchValidActions(ctx context.Context) ([]protocol.ValidAction, error)
	FetchState(ctx context.Context) (*protocol.Snapshot, error)
	RequestGameState() error
	RequestReadyStatus() error
	SetReady(ready bool) error
	LeaveTable(immediate bool) error
	SendChat(text string) error
}

var _ Transport = (*transport.Adapter)(nil)

// Options configures a Table
type Options struct {
	UserID              string
	MinPlayers          int
	AutoFold            string
	ClosedRedirectDelay time.Duration
	Clock               quartz.Clock
}

// Frame is everything the UI needs to draw one refresh
type Frame struct {
	View         *store.View
	Board        board.Plan
	Controls     actions.Plan
	Timer        timer.Status
	Winning      map[card.Card]bool
	Seats        []session.Seat
	Hint         string
	AllReady     bool
	Log          []string
	Notice       string
	Submitting   bool
	Connected    bool
	Reconnecting bool
	Closed       bool
	Leaving      bool
}

// Table wires the components together for one table session
type Table struct {
	opts      Options
	logger    *log.Logger
	clock     quartz.Clock
	transport Transport

	store    *store.Store
	board    *board.Renderer
	actions  *actions.Controller
	showdown *showdown.Coordinator
	timer    *timer.Timer
	session  *session.Lifecycle

	events  chan func()
	stopped chan struct{}
	done    chan struct{}
	endErr  error
	endOnce sync.Once
	ctx     context.Context

	logLines     []string
	notice       string
	noticeID     int
	connected    bool
	everUp       bool
	reconnecting bool
	closed       bool
	leaving      bool
	pending      int

	frameMu   sync.RWMutex
	frame     Frame
	listeners []func(Frame)
}

// New creates a table and registers its handlers on the transport
func New(t Transport, opts Options, logger *log.Logger) *Table {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.AutoFold == "" {
		opts.AutoFold = config.AutoFoldServer
	}

	tbl := &Table{
		opts:      opts,
		logger:    logger.WithPrefix("table"),
		clock:     opts.Clock,
		transport: t,
		store:     store.New(opts.UserID, logger),
		board:     board.NewRenderer(logger),
		actions:   actions.NewController(logger),
		showdown:  showdown.NewCoordinator(logger),
		session:   session.New(opts.MinPlayers, logger),
		events:    make(chan func(), 256),
		stopped:   make(chan struct{}),
		done:      make(chan struct{}),
		ctx:       context.Background(),
	}
	tbl.timer = timer.New(opts.Clock, logger, timer.Options{
		OnTick: func(timer.Status) { tbl.schedule(tbl.publish) },
		OnExpire: func(actor string) {
			tbl.schedule(func() { tbl.onTimerExpired(actor) })
		},
	})
	tbl.store.Subscribe(tbl.onView)
	tbl.registerHandlers()
	return tbl
}

// OnFrame registers a listener called on the event loop after every refresh
func (t *Table) OnFrame(fn func(Frame)) {
	t.frameMu.Lock()
	defer t.frameMu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// Frame returns the most recently published frame
func (t *Table) Frame() Frame {
	t.frameMu.RLock()
	defer t.frameMu.RUnlock()
	return t.frame
}

// Done is closed when the session is over: the table was left, or closed by
// the server and the redirect delay has passed.
func (t *Table) Done() <-chan struct{} {
	return t.done
}

// Run processes events until ctx is cancelled or the session ends
func (t *Table) Run(ctx context.Context) error {
	t.ctx = ctx
	defer close(t.stopped)
	defer t.timer.Stop()

	t.publish()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.done:
			return t.endErr
		case fn := <-t.events:
			fn()
		}
	}
}

// post queues fn on the event loop, preserving order
func (t *Table) post(fn func()) {
	select {
	case t.events <- fn:
	case <-t.stopped:
	}
}

// schedule queues fn without ever blocking the caller. Used from callbacks
// that may run on the event loop itself.
func (t *Table) schedule(fn func()) {
	select {
	case t.events <- fn:
	default:
		go t.post(fn)
	}
}

// do runs fn on the event loop and waits for it
func (t *Table) do(fn func()) {
	ran := make(chan struct{})
	t.post(func() {
		fn()
		close(ran)
	})
	select {
	case <-ran:
	case <-t.stopped:
	}
}

func (t *Table) end(err error) {
	t.endOnce.Do(func() {
		t.endErr = err
		t.timer.Stop()
		close(t.done)
	})
}

func (t *Table) appendLog(lines ...string) {
	t.logLines = append(t.logLines, lines...)
	if over := len(t.logLines) - maxLogLines; over > 0 {
		t.logLines = append([]string(nil), t.logLines[over:]...)
	}
}

func (t *Table) notify(format string, args ...interface{}) {
	t.notice = fmt.Sprintf(format, args...)
	t.noticeID++
	id := t.noticeID
	t.clock.AfterFunc(noticeDuration, func() {
		t.schedule(func() {
			if t.noticeID == id {
				t.notice = ""
				t.publish()
			}
		})
	}, "table", "notice")
}

// publish builds a frame from the current state and hands it to listeners
func (t *Table) publish() {
	view := t.store.Current()
	frame := Frame{
		View:         view,
		Board:        t.board.Plan(),
		Controls:     t.actions.Plan(),
		Timer:        t.timer.Status(),
		Seats:        t.session.Seats(),
		Hint:         t.session.Hint(),
		AllReady:     t.session.AllReady(),
		Log:          append([]string(nil), t.logLines...),
		Notice:       t.notice,
		Submitting:   t.pending > 0,
		Connected:    t.connected,
		Reconnecting: t.reconnecting,
		Closed:       t.closed,
		Leaving:      t.leaving,
	}
	if h, ok := t.showdown.Highlight(); ok {
		frame.Winning = h.Set()
	}

	t.frameMu.Lock()
	t.frame = frame
	listeners := append([]func(Frame)(nil), t.listeners...)
	t.frameMu.Unlock()

	for _, fn := range listeners {
		fn(frame)
	}
}
