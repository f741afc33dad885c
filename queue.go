package mp2c

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	errQueueClosed = errors.New("dispatch queue closed")
	errReaderGone  = errors.New("dispatch queue reader dropped")
)

// envelope is one queued delivery: an owned message copy and its metadata.
type envelope struct {
	msg        Message
	seq        uint64
	enqueuedAt time.Time
}

// dispatchQueue is the per-consumer FIFO between producers and one consumer task.
// Many goroutines push, exactly one pops. A capacity of zero means unbounded.
type dispatchQueue struct {
	mu       sync.Mutex
	items    []envelope
	capacity int
	closed   bool // no more writers
	dropped  bool // reader gone, items discarded

	// ready holds at most one wake-up token for the single reader.
	ready chan struct{}
	// space is closed and replaced whenever blocked writers may proceed.
	space chan struct{}
}

func newDispatchQueue(capacity int) *dispatchQueue {
	return &dispatchQueue{
		capacity: capacity,
		ready:    make(chan struct{}, 1),
		space:    make(chan struct{}),
	}
}

// push appends env to the queue. With a bounded queue it waits for room
// until ctx is done.
func (q *dispatchQueue) push(ctx context.Context, env envelope) error {
	for {
		q.mu.Lock()
		if q.dropped {
			q.mu.Unlock()
			return errReaderGone
		}
		if q.closed {
			q.mu.Unlock()
			return errQueueClosed
		}
		if q.capacity == 0 || len(q.items) < q.capacity {
			q.items = append(q.items, env)
			q.mu.Unlock()
			q.signalReader()
			return nil
		}
		wait := q.space
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wait:
		}
	}
}

// pop blocks until an item is available or the queue is closed and empty.
// Items pushed before close are always handed out first.
func (q *dispatchQueue) pop() (envelope, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			env := q.items[0]
			q.items[0] = envelope{}
			q.items = q.items[1:]
			if len(q.items) == 0 {
				// Release the backing array of a drained burst.
				q.items = nil
			}
			q.wakeWriters()
			q.mu.Unlock()
			return env, true
		}
		if q.closed || q.dropped {
			q.mu.Unlock()
			return envelope{}, false
		}
		q.mu.Unlock()

		<-q.ready
	}
}

// close marks the writer side as finished. Pending items stay poppable.
func (q *dispatchQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.space)
	q.space = make(chan struct{})
	q.signalReader()
}

// drop is called by the reader when it stops for good.
// Pending items are discarded and later pushes fail.
func (q *dispatchQueue) drop() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	discarded := len(q.items)
	q.dropped = true
	q.items = nil
	close(q.space)
	q.space = make(chan struct{})
	return discarded
}

func (q *dispatchQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// wakeWriters must be called with mu held.
func (q *dispatchQueue) wakeWriters() {
	if q.capacity == 0 {
		return
	}
	close(q.space)
	q.space = make(chan struct{})
}

func (q *dispatchQueue) signalReader() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
