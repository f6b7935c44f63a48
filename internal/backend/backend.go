// Package backend is the client side of the hosted row store: a point read of
// one numeric column and a change feed for a table.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNoRows = errors.New("backend: no rows")
	ErrClosed = errors.New("backend: client closed")
)

// Config carries the connection settings for a hosted backend. It is built by
// the caller and handed to a client constructor.
type Config struct {
	URL       string
	PublicKey string
	Schema    string
	Channel   string
}

type Event string

const (
	EventInsert Event = "INSERT"
	EventUpdate Event = "UPDATE"
	EventDelete Event = "DELETE"
)

// Change is one row-change notification. New is nil for deletes.
type Change struct {
	Event  Event                      `json:"event"`
	Schema string                     `json:"schema"`
	Table  string                     `json:"table"`
	New    map[string]json.RawMessage `json:"new,omitempty"`
}

// Decimal returns the named column of the new row. ok is false when the row
// is absent or the column is missing, null, or not numeric.
func (c Change) Decimal(column string) (v decimal.Decimal, ok bool) {
	raw, found := c.New[column]
	if !found {
		return decimal.Decimal{}, false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Decimal{}, false
	}
	if err := v.UnmarshalJSON(raw); err != nil {
		return decimal.Decimal{}, false
	}
	return v, true
}

// ParseChange decodes a JSON notification payload.
func ParseChange(payload []byte) (Change, error) {
	var c Change
	if err := json.Unmarshal(payload, &c); err != nil {
		return Change{}, fmt.Errorf("parse change: %w", err)
	}
	if c.Table == "" {
		return Change{}, errors.New("parse change: missing table")
	}
	return c, nil
}

type Handler func(Change)

type Subscription interface {
	// Close stops delivery. Once it returns the handler is never invoked
	// again. Calling it more than once is a no-op.
	Close() error
}

type Client interface {
	ReadOne(ctx context.Context, table, column string) (decimal.Decimal, error)
	Subscribe(ctx context.Context, table string, h Handler) (Subscription, error)
}
