// Package mp2c provides a Carousel: an in-process broadcast primitive that
// connects any number of producers to a fixed set of consumers.
//
// Every message put on a carousel reaches every consumer exactly once, as an
// independent copy. Each consumer runs in its own task and sees messages in
// the order they were enqueued for it. A slow or failing consumer never
// stalls or breaks delivery to the others.
//
// # Building a carousel
//
//	upper := mp2c.ConsumerFunc(func(ctx context.Context, msg mp2c.Message) {
//		fmt.Println(strings.ToUpper(msg.String()))
//	})
//	audit := mp2c.ConsumerFunc(func(ctx context.Context, msg mp2c.Message) {
//		log.Printf("audit: %s", msg)
//	})
//
//	c, err := mp2c.New([]mp2c.Consumer{upper, audit})
//	if err != nil {
//		return err
//	}
//	defer c.Shutdown(context.Background())
//
//	if err := c.Put(ctx, mp2c.Message("hello")); err != nil {
//		// *mp2c.DeliveryError lists the consumers that did not get a copy.
//	}
//
// # Producers
//
// A Carousel value is a producer handle. Clone returns another handle feeding
// the same consumers and is safe to hand to another goroutine. Dispatch
// channels close once every handle has been closed; consumer tasks then drain
// what is already queued and exit. Wait and Shutdown block until they have.
//
// # Backpressure
//
// By default dispatch channels are unbounded and Put never waits. With
// WithPolicy(Bounded(n)) each channel holds at most n messages and Put waits
// for room, giving up when its context ends.
//
// # Consumer failures
//
// A consumer that panics is recovered and its task terminates: its queued
// messages are discarded and later Puts report ErrConsumerTerminated for its
// index. WithContinueOnPanic keeps the task running instead.
//
// # Delivery context
//
// Consumers receive a context carrying the consumer index, the message
// sequence number, the enqueue time and the carousel ID:
//
//	func (a *Audit) Consume(ctx context.Context, msg mp2c.Message) {
//		idx, _ := mp2c.ConsumerIndex(ctx)
//		seq := mp2c.Sequence(ctx)
//		...
//	}
//
// # Observability
//
// Stats and Healthcheck report per-consumer state. NewMetrics returns a
// prometheus.Collector that WithMetrics wires into a carousel.
//
// Ready-made consumers live in core/consumer and under integration/.
package mp2c
