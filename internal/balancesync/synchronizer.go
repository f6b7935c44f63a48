// Package balancesync keeps a local mirror of one numeric column of one
// externally owned row. The mirror is filled by a single initial read and
// then overwritten by every change notification until Stop.
package balancesync

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/baharkarakas/netbank-dashboard/internal/backend"
	"github.com/baharkarakas/netbank-dashboard/internal/metrics"
)

var ErrAlreadyStarted = errors.New("balancesync: already started")

// Runner runs background work. *worker.Pool satisfies it.
type Runner interface {
	Submit(f func()) bool
}

type Options struct {
	Table  string
	Field  string
	Logger *slog.Logger
	Runner Runner
}

type Synchronizer struct {
	client backend.Client
	table  string
	field  string
	log    *slog.Logger
	runner Runner

	loadDone chan struct{}

	mu       sync.Mutex
	value    decimal.Decimal
	loaded   bool
	notified bool
	started  bool
	stopped  bool
	sub      backend.Subscription
	cancel   context.CancelFunc
	watchers map[chan decimal.Decimal]struct{}
}

func New(client backend.Client, opts Options) *Synchronizer {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Synchronizer{
		client:   client,
		table:    opts.Table,
		field:    opts.Field,
		log:      log.With("component", "balancesync", "table", opts.Table, "field", opts.Field),
		runner:   opts.Runner,
		loadDone: make(chan struct{}),
		watchers: map[chan decimal.Decimal]struct{}{},
	}
}

// Start opens the change subscription and schedules the initial read. The
// two run independently: a subscribe error is returned, but the read still
// happens. A failed read leaves the mirror absent for good.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	if s.stopped {
		s.mu.Unlock()
		close(s.loadDone)
		return nil
	}
	lctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	sub, subErr := s.client.Subscribe(ctx, s.table, s.apply)
	if subErr != nil {
		s.log.Error("balance subscription failed", "err", subErr)
	} else {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			_ = sub.Close()
		} else {
			s.sub = sub
			s.mu.Unlock()
		}
	}

	load := func() { s.load(lctx) }
	if s.runner == nil || !s.runner.Submit(load) {
		go load()
	}
	return subErr
}

func (s *Synchronizer) load(ctx context.Context) {
	defer close(s.loadDone)

	v, err := s.client.ReadOne(ctx, s.table, s.field)
	if err != nil {
		if ctx.Err() != nil {
			s.log.Debug("initial balance load cancelled", "err", err)
			return
		}
		metrics.BalanceLoadFailures.Inc()
		s.log.Error("initial balance load failed", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.stopped:
		s.log.Debug("initial balance load resolved after stop")
	case s.notified:
		s.log.Debug("initial balance load superseded by a notification", "value", v.String())
	default:
		s.setLocked(v)
		s.log.Info("balance loaded", "value", v.String())
	}
}

func (s *Synchronizer) apply(ch backend.Change) {
	v, ok := ch.Decimal(s.field)
	if !ok {
		metrics.BalanceNotifications.WithLabelValues("ignored").Inc()
		s.log.Debug("ignoring notification without balance", "event", ch.Event)
		return
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		metrics.BalanceNotifications.WithLabelValues("dropped").Inc()
		return
	}
	s.notified = true
	s.setLocked(v)
	s.mu.Unlock()

	metrics.BalanceNotifications.WithLabelValues("applied").Inc()
	s.log.Debug("balance updated", "event", ch.Event, "value", v.String())
}

// setLocked writes the mirror and fans the value out to watchers. s.mu must
// be held.
func (s *Synchronizer) setLocked(v decimal.Decimal) {
	s.value = v
	s.loaded = true
	metrics.BalanceLoaded.Set(1)

	for w := range s.watchers {
		select {
		case w <- v:
		default:
			// keep only the newest value for a slow reader
			select {
			case <-w:
			default:
			}
			w <- v
		}
	}
}

// Stop closes the subscription and cancels a pending initial read. No mirror
// write happens after Stop returns. Calling it again is a no-op.
func (s *Synchronizer) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	sub, cancel := s.sub, s.cancel
	s.sub = nil
	for w := range s.watchers {
		close(w)
	}
	s.watchers = map[chan decimal.Decimal]struct{}{}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		return sub.Close()
	}
	return nil
}

// Balance returns the mirrored value; ok is false until one has been observed.
func (s *Synchronizer) Balance() (v decimal.Decimal, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.loaded
}

// InitialLoadDone is closed once the initial read has finished, whatever
// its outcome.
func (s *Synchronizer) InitialLoadDone() <-chan struct{} { return s.loadDone }

// Ready reports whether the initial read has finished.
func (s *Synchronizer) Ready() bool {
	select {
	case <-s.loadDone:
		return true
	default:
		return false
	}
}

// Watch streams every subsequent mirror write until ctx ends or the
// synchronizer stops, at which point the channel is closed. A reader that
// falls behind only sees the newest value.
func (s *Synchronizer) Watch(ctx context.Context) <-chan decimal.Decimal {
	ch := make(chan decimal.Decimal, 1)
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		close(ch)
		return ch
	}
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[ch]; ok {
			delete(s.watchers, ch)
			close(ch)
		}
	}()
	return ch
}
