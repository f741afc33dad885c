package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/core/logger"
)

// Document is the indexed form of a delivered message.
type Document struct {
	CarouselID string    `json:"carousel_id"`
	Sequence   uint64    `json:"sequence"`
	Consumer   int       `json:"consumer"`
	Payload    string    `json:"payload"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Consumer indexes every carousel message as a Document.
type Consumer struct {
	transport opensearchapi.Transport
	index     string
	logger    *slog.Logger
	onError   func(context.Context, error)
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

// NewConsumer returns a consumer indexing into index through transport,
// usually an *opensearch.Client.
func NewConsumer(transport opensearchapi.Transport, index string, opts ...Option) (*Consumer, error) {
	if index == "" {
		return nil, ErrEmptyIndex
	}

	c := &Consumer{
		transport: transport,
		index:     index,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.onError == nil {
		c.onError = func(ctx context.Context, err error) {
			c.logger.ErrorContext(ctx, "opensearch delivery failed", logger.Error(err))
		}
	}
	return c, nil
}

// Consume implements mp2c.Consumer.
func (c *Consumer) Consume(ctx context.Context, msg mp2c.Message) {
	idx, _ := mp2c.ConsumerIndex(ctx)
	doc := Document{
		CarouselID: mp2c.CarouselID(ctx),
		Sequence:   mp2c.Sequence(ctx),
		Consumer:   idx,
		Payload:    msg.String(),
		EnqueuedAt: mp2c.EnqueuedAt(ctx),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		c.onError(ctx, errors.Join(ErrIndexFailed, err))
		return
	}

	req := opensearchapi.IndexRequest{
		Index:      c.index,
		DocumentID: fmt.Sprintf("%s-%d-%d", doc.CarouselID, doc.Sequence, doc.Consumer),
		Body:       bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, c.transport)
	if err != nil {
		c.onError(ctx, errors.Join(ErrIndexFailed, err))
		return
	}
	defer resp.Body.Close()

	if resp.IsError() {
		c.onError(ctx, errors.Join(ErrIndexFailed, fmt.Errorf("status %s", resp.Status())))
	}
}
