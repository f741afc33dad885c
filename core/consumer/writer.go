package consumer

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/core/logger"
)

// Writer writes every message to an io.Writer followed by a delimiter.
// It is safe to register the same Writer more than once.
type Writer struct {
	mu        sync.Mutex
	w         io.Writer
	delimiter []byte
	onError   func(context.Context, error)
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithDelimiter sets the bytes written after each message. Default is "\n".
func WithDelimiter(d string) WriterOption {
	return func(w *Writer) {
		w.delimiter = []byte(d)
	}
}

// WithWriteErrorHandler sets the function called when a write fails.
// By default write errors are dropped.
func WithWriteErrorHandler(fn func(context.Context, error)) WriterOption {
	return func(w *Writer) {
		if fn != nil {
			w.onError = fn
		}
	}
}

// WithWriteErrorLogger logs write errors through log.
func WithWriteErrorLogger(log *slog.Logger) WriterOption {
	return WithWriteErrorHandler(func(ctx context.Context, err error) {
		log.ErrorContext(ctx, "write failed", logger.Error(err))
	})
}

// NewWriter returns a Writer consumer for w.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	wr := &Writer{
		w:         w,
		delimiter: []byte("\n"),
		onError:   func(context.Context, error) {},
	}
	for _, opt := range opts {
		opt(wr)
	}
	return wr
}

// Consume implements mp2c.Consumer.
func (w *Writer) Consume(ctx context.Context, msg mp2c.Message) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.w.Write(msg); err != nil {
		w.onError(ctx, err)
		return
	}
	if len(w.delimiter) > 0 {
		if _, err := w.w.Write(w.delimiter); err != nil {
			w.onError(ctx, err)
		}
	}
}
