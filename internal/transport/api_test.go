package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/lox/cardtable/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitAction(t *testing.T) {
	fs := newFakeServer(t)

	var got protocol.ActionRequest
	var auth string
	fs.mux.HandleFunc("/api/tables/t1/action", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		decodeBody(t, r, &got)
		_ = json.NewEncoder(w).Encode(protocol.ActionResponse{Success: true})
	})

	a := New(Options{ServerURL: fs.srv.URL, TableID: "t1", Token: "secret"}, testLogger())

	amount := 40
	resp, err := a.SubmitAction(context.Background(), protocol.ActionRequest{Action: "raise", Amount: &amount})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "raise", got.Action)
	require.NotNil(t, got.Amount)
	assert.Equal(t, 40, *got.Amount)
	assert.NotEmpty(t, got.RequestID)
}

func TestSubmitActionRejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"success false", http.StatusOK, `{"success":false,"error":"not your turn"}`, "not your turn"},
		{"4xx with json", http.StatusBadRequest, `{"success":false,"error":"amount too small"}`, "amount too small"},
		{"4xx plain", http.StatusConflict, `stale`, "server returned 409: stale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFakeServer(t)
			fs.mux.HandleFunc("/api/tables/t1/action", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			a := New(Options{ServerURL: fs.srv.URL, TableID: "t1"}, testLogger())
			resp, err := a.SubmitAction(context.Background(), protocol.ActionRequest{Action: "fold"})
			require.NoError(t, err)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantErr, resp.Error)
		})
	}
}

func TestFetchValidActions(t *testing.T) {
	fs := newFakeServer(t)
	fs.mux.HandleFunc("/api/tables/t1/valid-actions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"valid_actions":[{"action_type":"check"},{"action_type":"bet","min_amount":10,"max_amount":200}]}`))
	})

	a := New(Options{ServerURL: fs.srv.URL, TableID: "t1"}, testLogger())
	actions, err := a.FetchValidActions(context.Background())
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, protocol.ActionCheck, actions[0].Kind)
	assert.Equal(t, protocol.ActionBet, actions[1].Kind)
	assert.Equal(t, 200, actions[1].MaxAmount)
}

func TestFetchState(t *testing.T) {
	fs := newFakeServer(t)
	fs.mux.HandleFunc("/api/tables/t1/state", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hand_number":7,"phase":"betting","current_player":"u2","pot":30}`))
	})

	a := New(Options{ServerURL: fs.srv.URL, TableID: "t1"}, testLogger())
	snap, err := a.FetchState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, snap.HandNumber)
	assert.Equal(t, "u2", snap.CurrentPlayer)
	assert.Equal(t, 30, snap.Pot)
}

func TestFetchHandHistory(t *testing.T) {
	fs := newFakeServer(t)
	fs.mux.HandleFunc("/api/tables/t1/hands", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`{"hands":[{"hand_number":11,"winning_hands":[{"player_id":"u1","cards":["As","Ks"]}]}],"page":2,"per_page":5,"total":6}`))
	})

	a := New(Options{ServerURL: fs.srv.URL, TableID: "t1"}, testLogger())
	page, err := a.FetchHandHistory(context.Background(), 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 6, page.Total)
	require.Len(t, page.Hands, 1)
	assert.Equal(t, 11, page.Hands[0].HandNumber)
	assert.True(t, page.Hands[0].HasResults())
}

func TestUnauthorized(t *testing.T) {
	fs := newFakeServer(t)
	fs.mux.HandleFunc("/api/tables/t1/state", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	a := New(Options{ServerURL: fs.srv.URL, TableID: "t1"}, testLogger())
	_, err := a.FetchState(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}
