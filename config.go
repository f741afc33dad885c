package mp2c

import (
	"fmt"
	"time"
)

// Config holds carousel settings loadable from the environment.
// Designed for core/config (caarlos0/env struct tags).
type Config struct {
	// ChannelCapacity selects the backpressure policy: 0 is unbounded,
	// a positive value bounds every dispatch channel to that many messages.
	ChannelCapacity  int           `env:"MP2C_CHANNEL_CAPACITY" envDefault:"0"`
	DedicatedThreads bool          `env:"MP2C_DEDICATED_THREADS" envDefault:"false"`
	ContinueOnPanic  bool          `env:"MP2C_CONTINUE_ON_PANIC" envDefault:"false"`
	ShutdownTimeout  time.Duration `env:"MP2C_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// DefaultConfig returns the defaults: unbounded channels, one goroutine per
// consumer, panics terminate the consumer task, 30s shutdown timeout.
func DefaultConfig() Config {
	return Config{
		ChannelCapacity: 0,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Policy returns the backpressure policy selected by ChannelCapacity.
func (c Config) Policy() Policy {
	if c.ChannelCapacity == 0 {
		return Unbounded
	}
	return Bounded(c.ChannelCapacity)
}

// WithConfig applies every setting in cfg.
// Options passed after it override individual settings.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.policy = cfg.Policy()
		o.dedicated = cfg.DedicatedThreads
		o.continueOnPanic = cfg.ContinueOnPanic
		if cfg.ShutdownTimeout > 0 {
			o.shutdownTimeout = cfg.ShutdownTimeout
		}
	}
}

// NewFromConfig is New with cfg applied before opts.
func NewFromConfig(cfg Config, consumers []Consumer, opts ...Option) (*Carousel, error) {
	if cfg.ChannelCapacity < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, cfg.ChannelCapacity)
	}
	return New(consumers, append([]Option{WithConfig(cfg)}, opts...)...)
}
