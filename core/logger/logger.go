package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// ContextExtractor pulls an attribute out of a context.
// It returns false when the context carries nothing of interest.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// Option configures a logger built by New.
type Option func(*config)

type config struct {
	level       slog.Leveler
	json        bool
	output      io.Writer
	attrs       []slog.Attr
	extractors  []ContextExtractor
	handlerOpts *slog.HandlerOptions
}

// New creates a slog.Logger. Without options it writes text at info level to stdout.
//
// Example:
//
//	log := logger.New(
//		logger.WithProduction("mp2c"),
//		logger.WithContextExtractors(mp2c.LogAttrs),
//	)
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:  slog.LevelInfo,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ho := cfg.handlerOpts
	if ho == nil {
		ho = &slog.HandlerOptions{}
	}
	if ho.Level == nil {
		ho.Level = cfg.level
	}

	var h slog.Handler
	if cfg.json {
		h = slog.NewJSONHandler(cfg.output, ho)
	} else {
		h = slog.NewTextHandler(cfg.output, ho)
	}
	if len(cfg.attrs) > 0 {
		h = h.WithAttrs(cfg.attrs)
	}
	if len(cfg.extractors) > 0 {
		h = &contextHandler{next: h, extractors: cfg.extractors}
	}
	return slog.New(h)
}

// SetAsDefault installs log as the slog default logger.
func SetAsDefault(log *slog.Logger) {
	slog.SetDefault(log)
}

// WithLevel sets the minimum level.
func WithLevel(level slog.Leveler) Option {
	return func(c *config) {
		if level != nil {
			c.level = level
		}
	}
}

// WithJSONFormatter switches output to JSON.
func WithJSONFormatter() Option {
	return func(c *config) {
		c.json = true
	}
}

// WithTextFormatter switches output to logfmt-style text (the default).
func WithTextFormatter() Option {
	return func(c *config) {
		c.json = false
	}
}

// WithOutput sets the destination writer.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) {
		c.attrs = append(c.attrs, attrs...)
	}
}

// WithHandlerOptions replaces the handler options. A nil Level falls back to WithLevel.
func WithHandlerOptions(opts *slog.HandlerOptions) Option {
	return func(c *config) {
		c.handlerOpts = opts
	}
}

// WithContextExtractors adds extractors run for every record logged with a context.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		for _, e := range extractors {
			if e != nil {
				c.extractors = append(c.extractors, e)
			}
		}
	}
}

// WithContextValue extracts ctx.Value(key) under the attribute name attrKey.
func WithContextValue(attrKey string, key any) Option {
	return WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
		v := ctx.Value(key)
		if v == nil {
			return slog.Attr{}, false
		}
		return slog.Any(attrKey, v), true
	})
}

// WithDevelopment configures text output at debug level.
func WithDevelopment(service string) Option {
	return func(c *config) {
		c.json = false
		c.level = slog.LevelDebug
		c.attrs = append(c.attrs, slog.String("service", service), slog.String("env", "development"))
	}
}

// WithStaging configures JSON output at info level.
func WithStaging(service string) Option {
	return func(c *config) {
		c.json = true
		c.level = slog.LevelInfo
		c.attrs = append(c.attrs, slog.String("service", service), slog.String("env", "staging"))
	}
}

// WithProduction configures JSON output at info level.
func WithProduction(service string) Option {
	return func(c *config) {
		c.json = true
		c.level = slog.LevelInfo
		c.attrs = append(c.attrs, slog.String("service", service), slog.String("env", "production"))
	}
}
