package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/lox/cardtable/internal/protocol"
)

// ErrUnauthorized is matched by a StatusError carrying 401 or 403
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is returned when the server answers a request with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}
	return nil
}

// SubmitAction posts the player's action. A rejection is reported through the
// response's Success flag; err is only set when no verdict was obtained.
func (a *Adapter) SubmitAction(ctx context.Context, req protocol.ActionRequest) (*protocol.ActionResponse, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	var resp protocol.ActionResponse
	err := a.do(ctx, http.MethodPost, a.tablePath("action"), nil, req, &resp)
	var se *StatusError
	if errors.As(err, &se) {
		// Rejections often arrive as 4xx with a JSON body
		var body protocol.ActionResponse
		if json.Unmarshal([]byte(se.Body), &body) == nil && body.Error != "" {
			return &protocol.ActionResponse{Success: false, Error: body.Error}, nil
		}
		return &protocol.ActionResponse{Success: false, Error: se.Error()}, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchState fetches a full snapshot outside the push channel
func (a *Adapter) FetchState(ctx context.Context) (*protocol.Snapshot, error) {
	var raw json.RawMessage
	if err := a.do(ctx, http.MethodGet, a.tablePath("state"), nil, nil, &raw); err != nil {
		return nil, err
	}
	return protocol.ParseSnapshot(raw)
}

// FetchValidActions fetches the actions currently available to the local player
func (a *Adapter) FetchValidActions(ctx context.Context) ([]protocol.ValidAction, error) {
	var resp protocol.ValidActionsResponse
	if err := a.do(ctx, http.MethodGet, a.tablePath("valid-actions"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ValidActions, nil
}

// FetchHandHistory fetches one page of completed hands for the table
func (a *Adapter) FetchHandHistory(ctx context.Context, page, perPage int) (*protocol.HandHistoryPage, error) {
	query := map[string]string{}
	if page > 0 {
		query["page"] = strconv.Itoa(page)
	}
	if perPage > 0 {
		query["per_page"] = strconv.Itoa(perPage)
	}

	var resp protocol.HandHistoryPage
	if err := a.do(ctx, http.MethodGet, a.tablePath("hands"), query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *Adapter) tablePath(op string) string {
	return "/api/tables/" + a.opts.TableID + "/" + op
}

func (a *Adapter) do(ctx context.Context, method, path string, query map[string]string, body, out interface{}) error {
	u, err := a.httpURL(path)
	if err != nil {
		return err
	}
	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.opts.Token)
	}
	if a.opts.UserID != "" {
		req.Header.Set("X-User-ID", a.opts.UserID)
	}

	a.logger.Debug("API request", "method", method, "path", path)

	resp, err := a.opts.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
