package mp2c

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/openspock/mp2c/core/logger"
)

// carousel is the routing state shared by every handle.
type carousel struct {
	id     string
	tasks  []*task
	opts   options
	logger *slog.Logger
	seq    atomic.Uint64

	mu      sync.Mutex
	handles int
	shut    bool
}

// Carousel is a handle to a fixed set of consumers.
//
// Every handle is a valid producer entry point and may be used from any
// goroutine. Clone returns another handle to the same consumers. The
// dispatch channels close once every handle has been closed; consumer tasks
// then drain what is already queued and exit.
type Carousel struct {
	c      *carousel
	closed atomic.Bool
}

// New builds a carousel over consumers and starts one consumer task per consumer.
// The consumer set is fixed for the lifetime of the carousel.
//
// An empty consumer set is a caller error: New returns ErrNoConsumers.
// On any error no task is started.
//
// Example:
//
//	c, err := mp2c.New([]mp2c.Consumer{upper, audit},
//	    mp2c.WithPolicy(mp2c.Bounded(64)),
//	    mp2c.WithLogger(log),
//	)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
func New(consumers []Consumer, opts ...Option) (*Carousel, error) {
	if len(consumers) == 0 {
		return nil, ErrNoConsumers
	}
	for i, cons := range consumers {
		if cons == nil {
			return nil, fmt.Errorf("%w at index %d", ErrNilConsumer, i)
		}
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.policy.validate(); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	c := &carousel{
		id:      id,
		tasks:   make([]*task, len(consumers)),
		opts:    o,
		logger:  o.logger.With(logger.Component("mp2c"), logger.CarouselID(id)),
		handles: 1,
	}
	for i, cons := range consumers {
		c.tasks[i] = newTask(i, cons, o.policy.Capacity())
	}
	for _, t := range c.tasks {
		o.runner(func() { t.run(c) })
	}

	c.logger.Info("carousel started",
		logger.Count("consumers", len(consumers)),
		logger.Policy(o.policy.String()))

	return &Carousel{c: c}, nil
}

// Put delivers an independent copy of msg to every consumer.
//
// A consumer that cannot take the message does not stop delivery to the
// others: Put returns a *DeliveryError naming every failed consumer index and
// nil when all consumers received a copy. Under a bounded policy Put waits
// while a channel is full; if ctx ends meanwhile, that consumer and every
// later one are reported with the context error.
//
// The caller may reuse msg as soon as Put returns.
func (h *Carousel) Put(ctx context.Context, msg Message) error {
	if h.closed.Load() {
		return ErrCarouselClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c := h.c
	seq := c.seq.Add(1)
	env := envelope{seq: seq, enqueuedAt: time.Now()}
	c.opts.metrics.put()

	var failures []DeliveryFailure
	for i, t := range c.tasks {
		if err := ctx.Err(); err != nil {
			failures = append(failures, DeliveryFailure{Index: i, Err: err})
			t.failed.Add(1)
			c.opts.metrics.failed(t.label)
			continue
		}

		env.msg = msg.Clone()
		err := t.queue.push(ctx, env)
		if err == nil {
			c.opts.metrics.enqueued(t.label)
			continue
		}

		switch {
		case errors.Is(err, errReaderGone):
			err = ErrConsumerTerminated
		case errors.Is(err, errQueueClosed):
			err = ErrCarouselClosed
		}
		failures = append(failures, DeliveryFailure{Index: i, Err: err})
		t.failed.Add(1)
		c.opts.metrics.failed(t.label)
	}

	if len(failures) == 0 {
		return nil
	}
	if allClosed(failures) {
		// Lost a race with Close on this handle.
		return ErrCarouselClosed
	}

	de := &DeliveryError{Failures: failures}
	c.logger.DebugContext(ctx, "partial delivery",
		logger.Sequence(seq),
		logger.Count("failed", len(failures)),
		logger.Error(de))
	return de
}

func allClosed(failures []DeliveryFailure) bool {
	for _, f := range failures {
		if !errors.Is(f.Err, ErrCarouselClosed) {
			return false
		}
	}
	return true
}

// Clone returns a new handle feeding the same consumers.
// It never starts tasks. Cloning a closed handle returns a closed handle.
func (h *Carousel) Clone() *Carousel {
	c := h.c
	c.mu.Lock()
	defer c.mu.Unlock()

	clone := &Carousel{c: c}
	if h.closed.Load() || c.shut {
		clone.closed.Store(true)
		return clone
	}
	c.handles++
	return clone
}

// Close releases this handle. When the last open handle is closed every
// dispatch channel is closed and consumer tasks exit after draining.
// Closing a handle twice returns ErrCarouselClosed.
func (h *Carousel) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return ErrCarouselClosed
	}

	c := h.c
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handles--
	if c.handles > 0 {
		return nil
	}

	c.shut = true
	for _, t := range c.tasks {
		t.queue.close()
	}
	c.logger.Info("carousel closed, draining consumers",
		logger.Count("pending", c.pending()))
	return nil
}

// Wait blocks until every consumer task has terminated or ctx is done.
// Tasks terminate once all handles are closed and their channels are drained,
// or individually after a consumer panic.
func (h *Carousel) Wait(ctx context.Context) error {
	for _, t := range h.c.tasks {
		select {
		case <-t.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Shutdown closes this handle and waits for the consumer tasks to finish.
// It only returns nil once every other handle has been closed too.
func (h *Carousel) Shutdown(ctx context.Context) error {
	_ = h.Close()

	if d := h.c.opts.shutdownTimeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	if err := h.Wait(ctx); err != nil {
		h.c.logger.Warn("carousel shutdown incomplete",
			logger.Count("pending", h.c.pending()),
			logger.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	h.c.logger.Info("carousel stopped")
	return nil
}

// Len returns the number of consumers.
func (h *Carousel) Len() int {
	return len(h.c.tasks)
}

// ID returns the unique ID of the underlying carousel, shared by all handles.
func (h *Carousel) ID() string {
	return h.c.id
}

// State returns the state of the consumer task at index.
// It panics if index is out of range.
func (h *Carousel) State(index int) State {
	return h.c.tasks[index].State()
}

func (c *carousel) pending() int {
	n := 0
	for _, t := range c.tasks {
		n += t.queue.len()
	}
	return n
}
