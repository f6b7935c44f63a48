// Package memory is an in-process backend.Client. Tests use it to script
// reads and notifications; BACKEND_DRIVER=memory runs the service on it.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/netbank-dashboard/internal/backend"
)

type Client struct {
	schema string

	// deliver is held for reading while handlers run and for writing by
	// subscription.Close, so Close waits out an in-flight delivery.
	deliver sync.RWMutex

	mu       sync.Mutex
	rows     map[string]map[string]decimal.Decimal
	readErr  error
	subErr   error
	hold     chan struct{}
	reads    int
	nextID   int
	handlers map[string]map[int]backend.Handler
}

func New(schema string) *Client {
	if schema == "" {
		schema = "public"
	}
	return &Client{
		schema:   schema,
		rows:     map[string]map[string]decimal.Decimal{},
		handlers: map[string]map[int]backend.Handler{},
	}
}

func (c *Client) ReadOne(ctx context.Context, table, column string) (decimal.Decimal, error) {
	c.mu.Lock()
	c.reads++
	hold := c.hold
	c.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return decimal.Decimal{}, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return decimal.Decimal{}, c.readErr
	}
	row, ok := c.rows[table]
	if !ok {
		return decimal.Decimal{}, backend.ErrNoRows
	}
	v, ok := row[column]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("read %s.%s: no such column", table, column)
	}
	return v, nil
}

func (c *Client) Subscribe(ctx context.Context, table string, h backend.Handler) (backend.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subErr != nil {
		return nil, c.subErr
	}
	c.nextID++
	id := c.nextID
	if c.handlers[table] == nil {
		c.handlers[table] = map[int]backend.Handler{}
	}
	c.handlers[table][id] = h
	return &subscription{c: c, table: table, id: id}, nil
}

// Put stores value and notifies subscribers of table.
func (c *Client) Put(table, column string, v decimal.Decimal) {
	c.mu.Lock()
	ev := backend.EventUpdate
	if _, ok := c.rows[table]; !ok {
		ev = backend.EventInsert
		c.rows[table] = map[string]decimal.Decimal{}
	}
	c.rows[table][column] = v
	c.mu.Unlock()

	raw, _ := v.MarshalJSON()
	c.Emit(backend.Change{
		Event:  ev,
		Schema: c.schema,
		Table:  table,
		New:    map[string]json.RawMessage{column: raw},
	})
}

// Seed stores value without notifying anyone.
func (c *Client) Seed(table, column string, v decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rows[table] == nil {
		c.rows[table] = map[string]decimal.Decimal{}
	}
	c.rows[table][column] = v
}

// Emit delivers ch to the current subscribers of ch.Table, synchronously.
// Handlers must not close their own subscription.
func (c *Client) Emit(ch backend.Change) {
	c.deliver.RLock()
	defer c.deliver.RUnlock()

	c.mu.Lock()
	hs := make([]backend.Handler, 0, len(c.handlers[ch.Table]))
	for _, h := range c.handlers[ch.Table] {
		hs = append(hs, h)
	}
	c.mu.Unlock()

	for _, h := range hs {
		h(ch)
	}
}

// EmitPayload parses a raw notification payload and emits it. Malformed
// payloads are dropped, the way the postgres listener drops them.
func (c *Client) EmitPayload(payload []byte) error {
	ch, err := backend.ParseChange(payload)
	if err != nil {
		return err
	}
	c.Emit(ch)
	return nil
}

func (c *Client) FailReads(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readErr = err
}

func (c *Client) FailSubscribe(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subErr = err
}

// HoldReads blocks ReadOne until the returned release func is called.
func (c *Client) HoldReads() (release func()) {
	ch := make(chan struct{})
	c.mu.Lock()
	c.hold = ch
	c.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			if c.hold == ch {
				c.hold = nil
			}
			c.mu.Unlock()
			close(ch)
		})
	}
}

func (c *Client) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func (c *Client) Subscribers(table string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers[table])
}

type subscription struct {
	c     *Client
	table string
	id    int
}

func (s *subscription) Close() error {
	s.c.deliver.Lock()
	defer s.c.deliver.Unlock()
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	delete(s.c.handlers[s.table], s.id)
	return nil
}
