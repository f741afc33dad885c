package mongo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/core/logger"
)

// Inserter is the part of a collection the consumer needs.
type Inserter interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
}

var _ Inserter = (*mongo.Collection)(nil)

// Document is the stored form of a delivered message.
type Document struct {
	CarouselID string    `bson:"carousel_id"`
	Sequence   int64     `bson:"sequence"`
	Consumer   int       `bson:"consumer"`
	Payload    []byte    `bson:"payload"`
	EnqueuedAt time.Time `bson:"enqueued_at"`
}

// Consumer inserts every carousel message as a Document.
type Consumer struct {
	coll    Inserter
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

// NewConsumer returns a consumer inserting into coll.
func NewConsumer(coll Inserter, opts ...Option) *Consumer {
	c := &Consumer{
		coll:   coll,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.onError == nil {
		c.onError = func(ctx context.Context, err error) {
			c.logger.ErrorContext(ctx, "mongodb delivery failed", logger.Error(err))
		}
	}
	return c
}

// Consume implements mp2c.Consumer.
func (c *Consumer) Consume(ctx context.Context, msg mp2c.Message) {
	idx, _ := mp2c.ConsumerIndex(ctx)
	doc := Document{
		CarouselID: mp2c.CarouselID(ctx),
		Sequence:   int64(mp2c.Sequence(ctx)),
		Consumer:   idx,
		Payload:    msg,
		EnqueuedAt: mp2c.EnqueuedAt(ctx),
	}

	_, err := c.coll.InsertOne(ctx, doc)
	if err == nil || mongo.IsDuplicateKeyError(err) {
		return
	}
	c.onError(ctx, errors.Join(ErrInsertFailed, err))
}
