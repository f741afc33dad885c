package pg

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/core/logger"
)

const insertMessage = `INSERT INTO carousel_messages
	(carousel_id, sequence, consumer, payload, enqueued_at)
	VALUES ($1, $2, $3, $4, $5)`

// Execer is the part of a pool or transaction the consumer needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ Execer = (*pgxpool.Pool)(nil)

// Consumer inserts every carousel message into carousel_messages.
type Consumer struct {
	db      Execer
	logger  *slog.Logger
	onError func(context.Context, error)
}

// Option configures a Consumer.
type Option func(*Consumer)

// WithLogger sets the logger used by the default error handler.
func WithLogger(l *slog.Logger) Option {
	return func(c *Consumer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithErrorHandler replaces the default error handler, which logs.
func WithErrorHandler(fn func(context.Context, error)) Option {
	return func(c *Consumer) {
		c.onError = fn
	}
}

// NewConsumer returns a consumer writing through db.
func NewConsumer(db Execer, opts ...Option) *Consumer {
	c := &Consumer{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.onError == nil {
		c.onError = func(ctx context.Context, err error) {
			c.logger.ErrorContext(ctx, "postgres delivery failed", logger.Error(err))
		}
	}
	return c
}

// Consume implements mp2c.Consumer.
func (c *Consumer) Consume(ctx context.Context, msg mp2c.Message) {
	idx, _ := mp2c.ConsumerIndex(ctx)
	enqueuedAt := mp2c.EnqueuedAt(ctx)
	if enqueuedAt.IsZero() {
		enqueuedAt = time.Now()
	}

	_, err := c.db.Exec(ctx, insertMessage,
		mp2c.CarouselID(ctx),
		int64(mp2c.Sequence(ctx)),
		idx,
		[]byte(msg),
		enqueuedAt,
	)
	if err == nil || IsDuplicateKeyError(err) {
		return
	}
	c.onError(ctx, errors.Join(ErrInsertFailed, err))
}
