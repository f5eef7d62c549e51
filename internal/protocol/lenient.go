package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// lenient reads named fields out of a JSON object, trying aliases in order and
// defaulting to the zero value when a field is absent or has the wrong shape.
// Shape problems are recorded in warnings instead of failing the whole payload.
type lenient struct {
	fields   map[string]json.RawMessage
	warnings []string
}

func newLenient(data []byte) (*lenient, error) {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("payload is not an object: %w", err)
	}
	return &lenient{fields: fields}, nil
}

func (l *lenient) raw(keys ...string) (json.RawMessage, string, bool) {
	for _, k := range keys {
		v, ok := l.fields[k]
		if !ok {
			continue
		}
		trimmed := bytes.TrimSpace(v)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			continue
		}
		return trimmed, k, true
	}
	return nil, "", false
}

func (l *lenient) has(keys ...string) bool {
	_, _, ok := l.raw(keys...)
	return ok
}

func (l *lenient) warnf(format string, args ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func (l *lenient) str(keys ...string) string {
	v, key, ok := l.raw(keys...)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	// Identifiers are sometimes numeric
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	l.warnf("field %q: expected string, got %s", key, string(v))
	return ""
}

func (l *lenient) num(keys ...string) int {
	v, key, ok := l.raw(keys...)
	if !ok {
		return 0
	}
	n, err := parseInt(v)
	if err != nil {
		l.warnf("field %q: %v", key, err)
		return 0
	}
	return n
}

func (l *lenient) flag(keys ...string) bool {
	b := l.flagPtr(keys...)
	return b != nil && *b
}

func (l *lenient) flagPtr(keys ...string) *bool {
	v, key, ok := l.raw(keys...)
	if !ok {
		return nil
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return &b
	}
	var n int
	if err := json.Unmarshal(v, &n); err == nil {
		b = n != 0
		return &b
	}
	l.warnf("field %q: expected bool, got %s", key, string(v))
	return nil
}

func (l *lenient) decode(dst interface{}, keys ...string) bool {
	v, key, ok := l.raw(keys...)
	if !ok {
		return false
	}
	if err := json.Unmarshal(v, dst); err != nil {
		l.warnf("field %q: %v", key, err)
		return false
	}
	return true
}

func parseInt(v json.RawMessage) (int, error) {
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return 0, fmt.Errorf("expected number, got %s", string(v))
		}
		n = json.Number(strings.TrimSpace(s))
	}
	if i, err := strconv.Atoi(n.String()); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("expected number, got %s", string(v))
	}
	return int(math.Round(f)), nil
}

// objectKeys returns the keys of a JSON object in document order
func objectKeys(data []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
	}
	return keys
}
