// Package postgres implements backend.Client on a Postgres database: point
// reads over the pool and change notifications over LISTEN/NOTIFY.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/baharkarakas/netbank-dashboard/internal/backend"
)

type Client struct {
	pool    *pgxpool.Pool
	schema  string
	channel string
	log     *slog.Logger
}

func New(pool *pgxpool.Pool, cfg backend.Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	schema := cfg.Schema
	if schema == "" {
		schema = "public"
	}
	return &Client{pool: pool, schema: schema, channel: cfg.Channel, log: log}
}

func (c *Client) ReadOne(ctx context.Context, table, column string) (decimal.Decimal, error) {
	q := fmt.Sprintf(`SELECT %s::text FROM %s LIMIT 1`,
		pgx.Identifier{column}.Sanitize(),
		pgx.Identifier{c.schema, table}.Sanitize(),
	)
	var s *string
	if err := c.pool.QueryRow(ctx, q).Scan(&s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Decimal{}, backend.ErrNoRows
		}
		return decimal.Decimal{}, fmt.Errorf("read %s.%s: %w", table, column, err)
	}
	if s == nil {
		return decimal.Decimal{}, fmt.Errorf("read %s.%s: value is null", table, column)
	}
	return decimal.NewFromString(*s)
}

// Subscribe pins one pool connection, LISTENs on the configured channel and
// delivers changes for table until the subscription is closed or the
// connection fails. A failed listener is not restarted.
func (c *Client) Subscribe(ctx context.Context, table string, h backend.Handler) (backend.Subscription, error) {
	if c.channel == "" {
		return nil, errors.New("subscribe: no notification channel configured")
	}
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscribe: acquire: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{c.channel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("subscribe: listen: %w", err)
	}

	lctx, cancel := context.WithCancel(context.Background())
	s := &subscription{
		conn:   conn,
		cancel: cancel,
		done:   make(chan struct{}),
		log:    c.log.With("channel", c.channel, "table", table),
	}
	go s.run(lctx, c.schema, table, h)
	return s, nil
}

type subscription struct {
	conn   *pgxpool.Conn
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	log    *slog.Logger
}

func (s *subscription) run(ctx context.Context, schema, table string, h backend.Handler) {
	defer close(s.done)
	for {
		n, err := s.conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Error("change listener stopped", "err", err)
			}
			return
		}
		ch, err := backend.ParseChange([]byte(n.Payload))
		if err != nil {
			s.log.Debug("discarding notification", "err", err)
			continue
		}
		if ch.Table != table || (ch.Schema != "" && ch.Schema != schema) {
			continue
		}
		h(ch)
	}
}

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		<-s.done

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, uerr := s.conn.Exec(ctx, "UNLISTEN *"); uerr != nil {
			// don't hand a connection that may still be listening back to the pool
			err = s.conn.Conn().Close(ctx)
		}
		s.conn.Release()
	})
	return err
}
