package mp2c

import "context"

// Consumer processes messages delivered by a Carousel.
//
// Consume receives exclusive ownership of msg and may keep or modify it.
// It reports nothing back: a consumer that needs error visibility must
// route its failures somewhere itself. The context carries delivery
// metadata (see ConsumerIndex and Sequence); the carousel never cancels it.
type Consumer interface {
	Consume(ctx context.Context, msg Message)
}

// ConsumerFunc adapts an ordinary function to the Consumer interface.
type ConsumerFunc func(ctx context.Context, msg Message)

// Consume calls f(ctx, msg).
func (f ConsumerFunc) Consume(ctx context.Context, msg Message) {
	f(ctx, msg)
}
