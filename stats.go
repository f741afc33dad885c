package mp2c

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ConsumerStats describes one consumer task.
type ConsumerStats struct {
	Index     int
	State     State
	Pending   int    // messages queued but not yet consumed
	Delivered uint64 // messages consumed without panicking
	Failed    uint64 // Put calls that could not enqueue for this consumer
	Panics    uint64
}

// Stats provides observability data for monitoring and debugging.
type Stats struct {
	ID        string
	Handles   int    // open handles
	Closed    bool   // all handles closed, channels draining or drained
	Sequence  uint64 // messages accepted by Put so far
	Consumers []ConsumerStats
}

// Stats returns a snapshot of the carousel state.
func (h *Carousel) Stats() Stats {
	c := h.c
	c.mu.Lock()
	handles, shut := c.handles, c.shut
	c.mu.Unlock()

	st := Stats{
		ID:        c.id,
		Handles:   handles,
		Closed:    shut,
		Sequence:  c.seq.Load(),
		Consumers: make([]ConsumerStats, len(c.tasks)),
	}
	for i, t := range c.tasks {
		st.Consumers[i] = ConsumerStats{
			Index:     t.index,
			State:     t.State(),
			Pending:   t.queue.len(),
			Delivered: t.delivered.Load(),
			Failed:    t.failed.Load(),
			Panics:    t.panics.Load(),
		}
	}
	return st
}

// Healthcheck reports whether the carousel can still deliver to every consumer.
// It returns nil if healthy, or ErrHealthcheckFailed joined with the cause:
// ErrCarouselClosed once all handles are closed, or one ErrConsumerTerminated
// per dead consumer.
func (h *Carousel) Healthcheck(ctx context.Context) error {
	st := h.Stats()
	if st.Closed {
		return errors.Join(ErrHealthcheckFailed, ErrCarouselClosed)
	}

	var errs []error
	for _, cs := range st.Consumers {
		if cs.State == StateTerminated {
			errs = append(errs, fmt.Errorf("consumer %d: %w", cs.Index, ErrConsumerTerminated))
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrHealthcheckFailed}, errs...)...)
	}
	return nil
}

// LogAttrs extracts delivery metadata from a consumer context as a single
// "delivery" group. It matches the context extractor signature of
// core/logger so consumer logs can be stamped automatically.
func LogAttrs(ctx context.Context) (slog.Attr, bool) {
	index, ok := ConsumerIndex(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	attrs := []any{
		slog.Int("consumer", index),
		slog.Uint64("sequence", Sequence(ctx)),
	}
	if id := CarouselID(ctx); id != "" {
		attrs = append(attrs, slog.String("carousel_id", id))
	}
	return slog.Group("delivery", attrs...), true
}
