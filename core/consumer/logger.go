package consumer

import (
	"context"
	"log/slog"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/core/logger"
)

// Logger returns a consumer that logs every message at level.
func Logger(log *slog.Logger, level slog.Level) mp2c.Consumer {
	return mp2c.ConsumerFunc(func(ctx context.Context, msg mp2c.Message) {
		idx, _ := mp2c.ConsumerIndex(ctx)
		log.Log(ctx, level, "message received",
			logger.ConsumerIndex(idx),
			logger.Sequence(mp2c.Sequence(ctx)),
			slog.String("message", msg.String()))
	})
}
