package mp2c

import (
	"context"
	"time"
)

type consumerIndexCtx struct{}

// WithConsumerIndex attaches a consumer index to the context.
func WithConsumerIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, consumerIndexCtx{}, index)
}

// ConsumerIndex extracts the index of the consumer a message was routed to.
func ConsumerIndex(ctx context.Context) (int, bool) {
	i, ok := ctx.Value(consumerIndexCtx{}).(int)
	return i, ok
}

type sequenceCtx struct{}

// WithSequence attaches a message sequence number to the context.
func WithSequence(ctx context.Context, seq uint64) context.Context {
	return context.WithValue(ctx, sequenceCtx{}, seq)
}

// Sequence extracts the carousel-wide sequence number assigned at Put.
// Returns 0 if not present; assigned numbers start at 1.
func Sequence(ctx context.Context) uint64 {
	if seq, ok := ctx.Value(sequenceCtx{}).(uint64); ok {
		return seq
	}
	return 0
}

type enqueuedAtCtx struct{}

// WithEnqueuedAt attaches the time the message was put on the carousel.
func WithEnqueuedAt(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, enqueuedAtCtx{}, t)
}

// EnqueuedAt extracts the time the message was put on the carousel.
// Returns zero time if not present.
func EnqueuedAt(ctx context.Context) time.Time {
	if t, ok := ctx.Value(enqueuedAtCtx{}).(time.Time); ok {
		return t
	}
	return time.Time{}
}

type carouselIDCtx struct{}

// WithCarouselID attaches the carousel instance ID to the context.
func WithCarouselID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, carouselIDCtx{}, id)
}

// CarouselID extracts the ID of the carousel that delivered the message.
// Returns empty string if not present.
func CarouselID(ctx context.Context) string {
	if id, ok := ctx.Value(carouselIDCtx{}).(string); ok {
		return id
	}
	return ""
}
