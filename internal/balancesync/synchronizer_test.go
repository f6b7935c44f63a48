package balancesync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/netbank-dashboard/internal/backend"
	"github.com/baharkarakas/netbank-dashboard/internal/backend/memory"
	"github.com/baharkarakas/netbank-dashboard/internal/worker"
)

const (
	table = "accounts"
	field = "balance"
)

func newSync(t *testing.T, c backend.Client) *Synchronizer {
	t.Helper()
	s := New(c, Options{Table: table, Field: field})
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func waitLoad(t *testing.T, s *Synchronizer) {
	t.Helper()
	select {
	case <-s.InitialLoadDone():
	case <-time.After(2 * time.Second):
		t.Fatal("initial load did not finish")
	}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func requireBalance(t *testing.T, s *Synchronizer, want int64) {
	t.Helper()
	got, ok := s.Balance()
	require.True(t, ok, "mirror should be loaded")
	assert.True(t, got.Equal(dec(want)), "mirror = %s, want %d", got, want)
}

func change(payload string) backend.Change {
	ch, err := backend.ParseChange([]byte(payload))
	if err != nil {
		panic(err)
	}
	return ch
}

func TestStart_InitialLoad(t *testing.T) {
	c := memory.New("")
	c.Seed(table, field, dec(85158))
	s := newSync(t, c)

	_, ok := s.Balance()
	assert.False(t, ok, "mirror starts absent")

	require.NoError(t, s.Start(context.Background()))
	waitLoad(t, s)
	requireBalance(t, s, 85158)
	assert.Equal(t, 1, c.Reads())
	assert.Equal(t, 1, c.Subscribers(table))
}

func TestStart_InitialLoadFailureLeavesMirrorAbsent(t *testing.T) {
	c := memory.New("")
	c.FailReads(errors.New("connection refused"))
	s := newSync(t, c)

	require.NoError(t, s.Start(context.Background()))
	waitLoad(t, s)

	_, ok := s.Balance()
	assert.False(t, ok)
	assert.Equal(t, 1, c.Reads(), "no retry")
}

func TestNotification_AfterLoadOverwrites(t *testing.T) {
	c := memory.New("")
	c.Seed(table, field, dec(100))
	s := newSync(t, c)
	require.NoError(t, s.Start(context.Background()))
	waitLoad(t, s)

	c.Put(table, field, dec(200))
	requireBalance(t, s, 200)

	c.Put(table, field, dec(150))
	requireBalance(t, s, 150)
}

func TestNotification_BeforeLoadWins(t *testing.T) {
	c := memory.New("")
	c.Seed(table, field, dec(100))
	release := c.HoldReads()
	s := newSync(t, c)
	require.NoError(t, s.Start(context.Background()))

	c.Emit(change(`{"event":"UPDATE","schema":"public","table":"accounts","new":{"balance":250}}`))
	requireBalance(t, s, 250)

	release()
	waitLoad(t, s)
	requireBalance(t, s, 250)
}

func TestNotification_MissingFieldIgnored(t *testing.T) {
	c := memory.New("")
	c.Seed(table, field, dec(100))
	s := newSync(t, c)
	require.NoError(t, s.Start(context.Background()))
	waitLoad(t, s)

	c.Emit(change(`{"event":"UPDATE","schema":"public","table":"accounts","new":{"id":1}}`))
	c.Emit(change(`{"event":"DELETE","schema":"public","table":"accounts"}`))
	c.Emit(change(`{"event":"UPDATE","schema":"public","table":"accounts","new":{"balance":null}}`))
	requireBalance(t, s, 100)

	assert.Error(t, c.EmitPayload([]byte(`not json`)))
	requireBalance(t, s, 100)
}

func TestNotification_OtherTableIgnored(t *testing.T) {
	c := memory.New("")
	c.Seed(table, field, dec(100))
	s := newSync(t, c)
	require.NoError(t, s.Start(context.Background()))
	waitLoad(t, s)

	c.Put("cards", field, dec(1))
	requireBalance(t, s, 100)
}

func TestStop_NoWritesAfterTeardown(t *testing.T) {
	c := memory.New("")
	c.Seed(table, field, dec(100))
	s := newSync(t, c)
	require.NoError(t, s.Start(context.Background()))
	waitLoad(t, s)

	require.NoError(t, s.Stop())
	assert.Equal(t, 0, c.Subscribers(table))

	// a notification already in flight when Stop ran
	s.apply(change(`{"event":"UPDATE","schema":"public","table":"accounts","new":{"balance":999}}`))
	c.Put(table, field, dec(999))
	requireBalance(t, s, 100)

	require.NoError(t, s.Stop())
}

func TestStop_DuringPendingLoad(t *testing.T) {
	c := memory.New("")
	c.Seed(table, field, dec(100))
	release := c.HoldReads()
	defer release()
	s := newSync(t, c)
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, s.Stop())
	waitLoad(t, s)

	_, ok := s.Balance()
	assert.False(t, ok)
	assert.Equal(t, 0, c.Subscribers(table))
}

func TestStop_BeforeStart(t *testing.T) {
	c := memory.New("")
	c.Seed(table, field, dec(100))
	s := newSync(t, c)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Start(context.Background()))
	waitLoad(t, s)

	_, ok := s.Balance()
	assert.False(t, ok)
	assert.Equal(t, 0, c.Reads())
	assert.Equal(t, 0, c.Subscribers(table))
}

func TestStart_Twice(t *testing.T) {
	c := memory.New("")
	c.Seed(table, field, dec(1))
	s := newSync(t, c)
	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
}

func TestStart_SubscribeFailureStillLoads(t *testing.T) {
	c := memory.New("")
	c.Seed(table, field, dec(42))
	boom := errors.New("realtime unavailable")
	c.FailSubscribe(boom)
	s := newSync(t, c)

	assert.ErrorIs(t, s.Start(context.Background()), boom)
	waitLoad(t, s)
	requireBalance(t, s, 42)
}

func TestStart_OnWorkerPool(t *testing.T) {
	c := memory.New("")
	c.Seed(table, field, dec(7))
	wp := worker.NewPool(1)
	defer wp.Stop()

	s := New(c, Options{Table: table, Field: field, Runner: wp})
	defer s.Stop()
	require.NoError(t, s.Start(context.Background()))
	waitLoad(t, s)
	requireBalance(t, s, 7)
}

func TestWatch(t *testing.T) {
	c := memory.New("")
	c.Seed(table, field, dec(1))
	s := newSync(t, c)
	require.NoError(t, s.Start(context.Background()))
	waitLoad(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := s.Watch(ctx)

	c.Put(table, field, dec(2))
	assert.True(t, (<-w).Equal(dec(2)))

	// a slow reader only sees the newest value
	c.Put(table, field, dec(3))
	c.Put(table, field, dec(4))
	assert.True(t, (<-w).Equal(dec(4)))

	require.NoError(t, s.Stop())
	_, open := <-w
	assert.False(t, open)
}

func TestWatch_ContextCancel(t *testing.T) {
	c := memory.New("")
	s := newSync(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	w := s.Watch(ctx)
	cancel()

	select {
	case _, open := <-w:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("watch channel not closed")
	}
}
