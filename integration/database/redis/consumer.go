package redis

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/core/logger"
)

// Client is the part of a Redis client the consumer needs.
type Client interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

var _ Client = (*redis.Client)(nil)

// Consumer publishes carousel messages to a Redis channel or stream.
type Consumer struct {
	client  Client
	channel string
	stream  string
	maxLen  int64
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

// NewConsumer returns a consumer writing to cfg.Stream if set, else cfg.Channel.
func NewConsumer(client Client, cfg Config, opts ...Option) (*Consumer, error) {
	if cfg.Channel == "" && cfg.Stream == "" {
		return nil, ErrNoTarget
	}

	c := &Consumer{
		client:  client,
		channel: cfg.Channel,
		stream:  cfg.Stream,
		maxLen:  cfg.StreamMaxLen,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.onError == nil {
		c.onError = func(ctx context.Context, err error) {
			c.logger.ErrorContext(ctx, "redis delivery failed", logger.Error(err))
		}
	}
	return c, nil
}

// Consume implements mp2c.Consumer.
func (c *Consumer) Consume(ctx context.Context, msg mp2c.Message) {
	var err error
	if c.stream != "" {
		err = c.client.XAdd(ctx, &redis.XAddArgs{
			Stream: c.stream,
			MaxLen: c.maxLen,
			Approx: c.maxLen > 0,
			Values: map[string]any{
				"payload":     []byte(msg),
				"sequence":    mp2c.Sequence(ctx),
				"carousel_id": mp2c.CarouselID(ctx),
			},
		}).Err()
	} else {
		err = c.client.Publish(ctx, c.channel, []byte(msg)).Err()
	}

	if err != nil {
		c.onError(ctx, errors.Join(ErrPublishFailed, err))
	}
}
