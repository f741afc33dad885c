package mp2c

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Policy is the backpressure policy applied to every dispatch channel.
//
// Unbounded channels never block Put; memory grows with the gap between the
// producer rate and the slowest consumer. Bounded channels hold at most
// Capacity messages and make Put wait while a channel is full.
type Policy struct {
	bounded  bool
	capacity int
}

// Unbounded is the default policy: Put never suspends.
var Unbounded = Policy{}

// Bounded returns a policy limiting every dispatch channel to capacity messages.
// Capacity must be at least 1; New rejects anything lower with ErrInvalidCapacity.
func Bounded(capacity int) Policy {
	return Policy{bounded: true, capacity: capacity}
}

// IsBounded reports whether Put may suspend on a full channel.
func (p Policy) IsBounded() bool {
	return p.bounded
}

// Capacity returns the per-channel limit, or 0 for an unbounded policy.
func (p Policy) Capacity() int {
	if !p.bounded {
		return 0
	}
	return p.capacity
}

func (p Policy) String() string {
	if !p.bounded {
		return "unbounded"
	}
	return fmt.Sprintf("bounded(%d)", p.capacity)
}

func (p Policy) validate() error {
	if p.bounded && p.capacity < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, p.capacity)
	}
	return nil
}

// Option configures a Carousel.
type Option func(*options)

type options struct {
	policy          Policy
	logger          *slog.Logger
	runner          func(run func())
	dedicated       bool
	continueOnPanic bool
	metrics         *Metrics
	baseCtx         context.Context
	shutdownTimeout time.Duration
}

func defaultOptions() options {
	return options{
		policy: Unbounded,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		runner: func(run func()) {
			go run()
		},
		baseCtx: context.Background(),
	}
}

// WithPolicy sets the backpressure policy. Default is Unbounded.
//
// Example:
//
//	c, err := mp2c.New(consumers, mp2c.WithPolicy(mp2c.Bounded(128)))
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithCapacity is shorthand for WithPolicy: zero selects Unbounded, a positive
// value selects Bounded(n). A negative value makes New fail with ErrInvalidCapacity.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n == 0 {
			o.policy = Unbounded
			return
		}
		o.policy = Bounded(n)
	}
}

// WithLogger configures structured logging for the carousel and its tasks.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTaskRunner sets the executor used to start consumer tasks.
// The runner must return promptly and execute run asynchronously,
// e.g. on an errgroup or a worker pool with at least one free slot per consumer.
func WithTaskRunner(runner func(run func())) Option {
	return func(o *options) {
		if runner != nil {
			o.runner = runner
		}
	}
}

// WithDedicatedThreads locks every consumer task to its own OS thread.
// Useful for consumers that call into thread-affine C libraries.
func WithDedicatedThreads() Option {
	return func(o *options) {
		o.dedicated = true
	}
}

// WithContinueOnPanic keeps a consumer task alive after its consumer panics.
// By default a panic terminates the task and later deliveries to that
// consumer fail with ErrConsumerTerminated.
func WithContinueOnPanic() Option {
	return func(o *options) {
		o.continueOnPanic = true
	}
}

// WithMetrics records carousel activity in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithBaseContext sets the context every consumer context is derived from.
// The carousel never cancels it; consumers that honour cancellation can be
// stopped early by cancelling ctx.
func WithBaseContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.baseCtx = ctx
		}
	}
}

// WithShutdownTimeout bounds how long Shutdown waits for consumer tasks to drain.
// Zero (the default) leaves the deadline to the caller's context.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}
