package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/cardtable/internal/protocol"
	"golang.org/x/sync/errgroup"
)

// ErrNotConnected is returned when sending while the push channel is down
var ErrNotConnected = errors.New("not connected")

// Handler handles one incoming push-channel message
type Handler func(*protocol.Message)

// ConnectionHandler is told whenever the push channel goes up or down
type ConnectionHandler func(connected bool)

// Options configures an Adapter
type Options struct {
	ServerURL         string
	TableID           string
	UserID            string
	Token             string
	ReconnectDelay    time.Duration
	ReconnectAttempts int // 0 retries forever
	PollInterval      time.Duration
	PingInterval      time.Duration
	RequestTimeout    time.Duration
	Clock             quartz.Clock
	HTTPClient        *http.Client
	Dialer            *websocket.Dialer
}

func (o *Options) applyDefaults() {
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = 2 * time.Second
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 54 * time.Second
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 10 * time.Second
	}
	if o.Clock == nil {
		o.Clock = quartz.NewReal()
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	if o.Dialer == nil {
		o.Dialer = websocket.DefaultDialer
	}
}

// Adapter wraps the push channel and the request/response API for one table
type Adapter struct {
	opts   Options
	logger *log.Logger
	clock  quartz.Clock

	mu                 sync.RWMutex
	conn               *websocket.Conn
	connected          bool
	eventHandlers      map[protocol.MessageType][]Handler
	connectionHandlers []ConnectionHandler

	writeMu sync.Mutex
}

// New creates an adapter. Call Run to open the push channel.
func New(opts Options, logger *log.Logger) *Adapter {
	opts.applyDefaults()
	return &Adapter{
		opts:          opts,
		logger:        logger.WithPrefix("transport"),
		clock:         opts.Clock,
		eventHandlers: make(map[protocol.MessageType][]Handler),
	}
}

// AddEventHandler registers a handler for a message type. Handlers run on the
// read goroutine in receipt order and must not block.
func (a *Adapter) AddEventHandler(msgType protocol.MessageType, handler Handler) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.eventHandlers[msgType] = append(a.eventHandlers[msgType], handler)
}

// OnConnectionChange registers a handler for connect/disconnect transitions
func (a *Adapter) OnConnectionChange(handler ConnectionHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.connectionHandlers = append(a.connectionHandlers, handler)
}

// IsConnected returns whether the push channel is up
func (a *Adapter) IsConnected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.connected
}

// Run keeps the push channel open until ctx is cancelled, redialling after
// disconnects, and polls for fresh state on PollInterval.
func (a *Adapter) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.connectLoop(ctx)
	})

	g.Go(func() error {
		w := a.clock.TickerFunc(ctx, a.opts.PollInterval, func() error {
			if a.IsConnected() {
				if err := a.RequestGameState(); err != nil {
					a.logger.Debug("State poll failed", "error", err)
				}
			}
			return nil
		}, "transport", "poll")
		return ignoreCancel(w.Wait())
	})

	g.Go(func() error {
		w := a.clock.TickerFunc(ctx, a.opts.PingInterval, func() error {
			if a.IsConnected() {
				if err := a.ping(); err != nil {
					a.logger.Debug("Ping failed", "error", err)
				}
			}
			return nil
		}, "transport", "ping")
		return ignoreCancel(w.Wait())
	})

	err := g.Wait()
	a.closeConn()
	return err
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (a *Adapter) connectLoop(ctx context.Context) error {
	failures := 0
	for {
		conn, err := a.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			failures++
			if a.opts.ReconnectAttempts > 0 && failures > a.opts.ReconnectAttempts {
				return fmt.Errorf("giving up after %d attempts: %w", failures, err)
			}
			a.logger.Warn("Connection failed, retrying", "error", err, "attempt", failures, "delay", a.opts.ReconnectDelay)
			if err := a.sleep(ctx, a.opts.ReconnectDelay); err != nil {
				return nil
			}
			continue
		}
		failures = 0

		a.setConn(conn)
		if err := a.subscribe(); err != nil {
			a.logger.Error("Failed to join table room", "error", err)
		}

		a.readLoop(ctx, conn)
		a.closeConn()

		if ctx.Err() != nil {
			return nil
		}
		a.logger.Warn("Disconnected from server, reconnecting", "delay", a.opts.ReconnectDelay)
		if err := a.sleep(ctx, a.opts.ReconnectDelay); err != nil {
			return nil
		}
	}
}

func (a *Adapter) sleep(ctx context.Context, d time.Duration) error {
	timer := a.clock.NewTimer(d, "transport", "reconnect")
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (a *Adapter) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := a.wsURL()
	if err != nil {
		return nil, err
	}

	a.logger.Info("Connecting to server", "url", u)

	header := http.Header{}
	if a.opts.Token != "" {
		header.Set("Authorization", "Bearer "+a.opts.Token)
	}

	conn, _, err := a.opts.Dialer.DialContext(ctx, u, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return conn, nil
}

// subscribe joins the table room and asks for a fresh snapshot. It runs on
// every successful dial so a reconnect resubscribes automatically.
func (a *Adapter) subscribe() error {
	if err := a.Send(protocol.MessageTypeJoinTable, protocol.JoinTableData{
		TableID: a.opts.TableID,
		UserID:  a.opts.UserID,
	}); err != nil {
		return err
	}
	return a.RequestGameState()
}

func (a *Adapter) readLoop(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && ctx.Err() == nil {
				a.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			a.logger.Warn("Dropping malformed message", "error", err)
			continue
		}

		a.logger.Debug("Received message", "type", msg.Type)
		if err := a.dispatch(&msg); err != nil {
			a.logger.Debug("Message not handled", "error", err)
		}
	}
}

func (a *Adapter) dispatch(msg *protocol.Message) error {
	a.mu.RLock()
	handlers := a.eventHandlers[msg.Type]
	a.mu.RUnlock()

	if len(handlers) == 0 {
		return fmt.Errorf("%w: %q", protocol.ErrUnknownMessageType, msg.Type)
	}
	for _, handler := range handlers {
		handler(msg)
	}
	return nil
}

func (a *Adapter) setConn(conn *websocket.Conn) {
	a.mu.Lock()
	a.conn = conn
	a.connected = true
	handlers := append([]ConnectionHandler(nil), a.connectionHandlers...)
	a.mu.Unlock()

	a.logger.Info("Connected to server")
	for _, h := range handlers {
		h(true)
	}
}

func (a *Adapter) closeConn() {
	a.mu.Lock()
	conn := a.conn
	wasConnected := a.connected
	a.conn = nil
	a.connected = false
	handlers := append([]ConnectionHandler(nil), a.connectionHandlers...)
	a.mu.Unlock()

	if conn != nil {
		a.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		a.writeMu.Unlock()
		_ = conn.Close()
	}
	if wasConnected {
		for _, h := range handlers {
			h(false)
		}
	}
}

func (a *Adapter) ping() error {
	a.mu.RLock()
	conn := a.conn
	a.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}

	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second))
}

// Send writes one message on the push channel
func (a *Adapter) Send(msgType protocol.MessageType, data interface{}) error {
	msg, err := protocol.NewMessage(msgType, data)
	if err != nil {
		return err
	}

	a.mu.RLock()
	conn := a.conn
	a.mu.RUnlock()
	if conn == nil {
		return ErrNotConnected
	}

	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write %s: %w", msgType, err)
	}
	return nil
}

// RequestGameState asks the server to push a fresh snapshot
func (a *Adapter) RequestGameState() error {
	return a.Send(protocol.MessageTypeRequestGameState, protocol.TableRequestData{TableID: a.opts.TableID})
}

// RequestReadyStatus asks the server to push the ready consensus
func (a *Adapter) RequestReadyStatus() error {
	return a.Send(protocol.MessageTypeRequestReady, protocol.TableRequestData{TableID: a.opts.TableID})
}

// SetReady sets the local player's pre-hand ready flag
func (a *Adapter) SetReady(ready bool) error {
	return a.Send(protocol.MessageTypeSetReady, protocol.SetReadyData{TableID: a.opts.TableID, Ready: ready})
}

// LeaveTable announces a leave, either now or after the current hand
func (a *Adapter) LeaveTable(immediate bool) error {
	return a.Send(protocol.MessageTypeLeaveTable, protocol.LeaveTableData{TableID: a.opts.TableID, Immediate: immediate})
}

// SendChat posts a chat line to the table
func (a *Adapter) SendChat(text string) error {
	return a.Send(protocol.MessageTypeChat, protocol.ChatData{TableID: a.opts.TableID, Message: text})
}

func (a *Adapter) wsURL() (string, error) {
	u, err := url.Parse(a.opts.ServerURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		u.Scheme = "ws"
	}

	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

func (a *Adapter) httpURL(path string) (*url.URL, error) {
	u, err := url.Parse(a.opts.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	case "http", "https":
	default:
		u.Scheme = "http"
	}

	u.Path = strings.TrimSuffix(strings.TrimSuffix(u.Path, "/ws"), "/") + path
	return u, nil
}
