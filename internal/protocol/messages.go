package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownMessageType is returned when no handler is registered for an event type
var ErrUnknownMessageType = errors.New("unknown message type")

// Message represents a push-channel message between client and server
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// UnmarshalJSON decodes a message, ignoring a timestamp it cannot parse
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type      MessageType     `json:"type"`
		Data      json.RawMessage `json:"data"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Type = raw.Type
	m.Data = raw.Data
	m.Timestamp = time.Time{}
	if len(raw.Timestamp) > 0 {
		if ms, err := parseInt(raw.Timestamp); err == nil && raw.Timestamp[0] != '"' {
			m.Timestamp = time.UnixMilli(int64(ms)).UTC()
		} else {
			_ = json.Unmarshal(raw.Timestamp, &m.Timestamp)
		}
	}
	return nil
}

// MessageType represents the type of a push-channel message
type MessageType string

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Client to server message types
const (
	MessageTypeJoinTable        MessageType = "join_table"
	MessageTypeRequestGameState MessageType = "request_game_state"
	MessageTypeRequestReady     MessageType = "request_ready_status"
	MessageTypeSetReady         MessageType = "set_ready"
	MessageTypeLeaveTable       MessageType = "leave_table"
	MessageTypeChat             MessageType = "chat_message"
)

// Server to client message types
const (
	MessageTypeGameState       MessageType = "game_state"
	MessageTypeGameStateUpdate MessageType = "game_state_update"
	MessageTypeHandStarting    MessageType = "hand_starting"
	MessageTypeHandComplete    MessageType = "hand_complete"
	MessageTypeReadyStatus     MessageType = "ready_status_update"
	MessageTypePlayerJoined    MessageType = "player_joined"
	MessageTypePlayerLeft      MessageType = "player_left"
	MessageTypePlayerLeaving   MessageType = "player_leaving"
	MessageTypeTableClosed     MessageType = "table_closed"
	MessageTypeTableLeft       MessageType = "table_left"
	MessageTypeError           MessageType = "error"
)

// NewMessage creates a new message with the given type and data
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      msgType,
		Data:      jsonData,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the message payload into v. An absent payload leaves v untouched.
func (m *Message) Decode(v interface{}) error {
	if len(m.Data) == 0 || string(m.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("decode %s: %w", m.Type, err)
	}
	return nil
}

// Client to server payloads

// JoinTableData subscribes the connection to a table room
type JoinTableData struct {
	TableID string `json:"table_id"`
	UserID  string `json:"user_id"`
}

// TableRequestData is sent with request_game_state and request_ready_status
type TableRequestData struct {
	TableID string `json:"table_id"`
}

// SetReadyData toggles the local player's pre-hand ready flag
type SetReadyData struct {
	TableID string `json:"table_id"`
	Ready   bool   `json:"ready"`
}

// LeaveTableData announces a leave. Immediate=false means "after this hand".
type LeaveTableData struct {
	TableID   string `json:"table_id"`
	Immediate bool   `json:"immediate"`
}

// ChatData is sent and received as chat_message
type ChatData struct {
	TableID  string `json:"table_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message"`
}

// Server to client payloads

// HandStartingData announces a new hand
type HandStartingData struct {
	TableID    string `json:"table_id"`
	HandNumber int    `json:"hand_number"`
}

// ReadyPlayer is one row of a ready_status_update
type ReadyPlayer struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Seat     int    `json:"seat"`
	IsReady  bool   `json:"is_ready"`
}

// ReadyStatusData is the pre-hand ready consensus
type ReadyStatusData struct {
	TableID    string        `json:"table_id"`
	Players    []ReadyPlayer `json:"players"`
	MinPlayers int           `json:"min_players"`
	AllReady   bool          `json:"all_ready"`
}

// PresenceData is sent with player_joined, player_left and player_leaving
type PresenceData struct {
	TableID  string `json:"table_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Seat     int    `json:"seat"`
}

// TableClosedData is sent when the server closes the table
type TableClosedData struct {
	TableID string `json:"table_id"`
	Reason  string `json:"reason"`
}

// ErrorData carries a free-text error for display
type ErrorData struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Request/response payloads

// ActionRequest submits the player's chosen action
type ActionRequest struct {
	Action          string                 `json:"action"`
	Amount          *int                   `json:"amount,omitempty"`
	Cards           []string               `json:"cards,omitempty"`
	DeclarationData map[string]interface{} `json:"declaration_data,omitempty"`
	RequestID       string                 `json:"request_id,omitempty"`
}

// ActionResponse is the server's verdict on a submitted action
type ActionResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ValidActionsResponse is returned by the valid-actions call
type ValidActionsResponse struct {
	ValidActions []ValidAction
}

// UnmarshalJSON accepts either a bare list or an object using any valid-action alias
func (r *ValidActionsResponse) UnmarshalJSON(data []byte) error {
	var list []ValidAction
	if err := json.Unmarshal(data, &list); err == nil {
		r.ValidActions = list
		return nil
	}
	l, err := newLenient(data)
	if err != nil {
		return err
	}
	l.decode(&r.ValidActions, validActionKeys...)
	return nil
}

// HandHistoryPage is one page of historical hand results
type HandHistoryPage struct {
	Hands   []HandComplete `json:"hands"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Total   int            `json:"total"`
}
