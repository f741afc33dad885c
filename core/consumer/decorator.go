package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/core/logger"
)

// Decorator wraps a Consumer to add additional functionality.
type Decorator func(mp2c.Consumer) mp2c.Consumer

// Decorate applies decorators to c. The first decorator becomes the outermost
// wrapper and sees each message first.
//
// Example:
//
//	c := consumer.Decorate(sink,
//	    consumer.Logging(log),
//	    consumer.Timeout(5*time.Second),
//	)
//
// Execution order: Logging -> Timeout -> sink
func Decorate(c mp2c.Consumer, decorators ...Decorator) mp2c.Consumer {
	for i := len(decorators) - 1; i >= 0; i-- {
		c = decorators[i](c)
	}
	return c
}

// Logging logs the start and completion of every Consume call with its duration.
func Logging(log *slog.Logger) Decorator {
	return func(next mp2c.Consumer) mp2c.Consumer {
		return mp2c.ConsumerFunc(func(ctx context.Context, msg mp2c.Message) {
			start := time.Now()
			idx, _ := mp2c.ConsumerIndex(ctx)
			log.DebugContext(ctx, "consume started",
				logger.ConsumerIndex(idx),
				logger.Sequence(mp2c.Sequence(ctx)),
				logger.PayloadSize(len(msg)))

			next.Consume(ctx, msg)

			log.InfoContext(ctx, "consume completed",
				logger.ConsumerIndex(idx),
				logger.Sequence(mp2c.Sequence(ctx)),
				logger.Elapsed(start))
		})
	}
}

// Timeout gives the wrapped consumer a context that expires after d.
// The consumer is expected to honour cancellation; Timeout never abandons it.
func Timeout(d time.Duration) Decorator {
	return func(next mp2c.Consumer) mp2c.Consumer {
		return mp2c.ConsumerFunc(func(ctx context.Context, msg mp2c.Message) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			next.Consume(ctx, msg)
		})
	}
}

// Filter forwards only the messages keep accepts.
//
// Example:
//
//	nonEmpty := consumer.Filter(func(_ context.Context, m mp2c.Message) bool {
//	    return len(m) > 0
//	})
func Filter(keep func(context.Context, mp2c.Message) bool) Decorator {
	return func(next mp2c.Consumer) mp2c.Consumer {
		return mp2c.ConsumerFunc(func(ctx context.Context, msg mp2c.Message) {
			if keep(ctx, msg) {
				next.Consume(ctx, msg)
			}
		})
	}
}
