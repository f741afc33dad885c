package consumer

import (
	"context"
	"sync"

	"github.com/openspock/mp2c"
)

// Recorder is a consumer that keeps every message it receives in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []mp2c.Message
	changed  chan struct{}
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{changed: make(chan struct{})}
}

// Consume implements mp2c.Consumer.
func (r *Recorder) Consume(_ context.Context, msg mp2c.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, msg)
	close(r.changed)
	r.changed = make(chan struct{})
}

// Messages returns a copy of the recorded messages in arrival order.
func (r *Recorder) Messages() []mp2c.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]mp2c.Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Count returns the number of recorded messages.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

// WaitFor blocks until at least n messages were recorded or ctx is done.
func (r *Recorder) WaitFor(ctx context.Context, n int) error {
	for {
		r.mu.Lock()
		count, changed := len(r.messages), r.changed
		r.mu.Unlock()

		if count >= n {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}
