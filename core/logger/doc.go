// Package logger provides structured logging utilities built on Go's standard slog package.
//
// It offers a small logger factory with environment presets, a handler
// decorator that copies attributes out of the record context, and attribute
// helpers with consistent key names.
//
// # Basic Usage
//
//	log := logger.New(
//		logger.WithDevelopment("mp2c"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	log.Info("carousel started",
//		logger.Component("mp2c"),
//		logger.Count("consumers", 3),
//		logger.Policy("unbounded"),
//	)
//
// # Environment Configurations
//
//	// Development: text format, debug level, stdout
//	devLogger := logger.New(logger.WithDevelopment("myapp"))
//
//	// Production: JSON format, info level, stdout
//	prodLogger := logger.New(logger.WithProduction("myapp"))
//
// # Context-Aware Logging
//
// Extractors run for every record logged through the *Context methods.
// Consumers receive delivery metadata in their context, so a logger built
// with mp2c.LogAttrs stamps every consumer log line with the consumer index
// and message sequence:
//
//	log := logger.New(
//		logger.WithProduction("mp2c"),
//		logger.WithContextExtractors(mp2c.LogAttrs),
//	)
//
//	consumer := mp2c.ConsumerFunc(func(ctx context.Context, msg mp2c.Message) {
//		log.InfoContext(ctx, "received", logger.PayloadSize(len(msg)))
//		// ... delivery.consumer=1 delivery.sequence=42 ...
//	})
//
// # Attribute Helpers
//
// Helpers return an empty slog.Attr for nil or zero inputs where that makes
// sense, and slog drops empty attributes:
//
//	log.Error("sink write failed",
//		logger.Error(err),            // dropped if err == nil
//		logger.ConsumerIndex(2),
//		logger.Sequence(seq),         // dropped if seq == 0
//		logger.Duration(time.Since(start)),
//	)
//
// # Testing with Custom Output
//
//	var buf bytes.Buffer
//	log := logger.New(logger.WithJSONFormatter(), logger.WithOutput(&buf))
//	log.Info("test message", logger.Component("test"))
//	assert.Contains(t, buf.String(), `"component":"test"`)
package logger
