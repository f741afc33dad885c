package mp2c

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/openspock/mp2c/core/logger"
)

// State is the lifecycle state of a consumer task.
type State int32

const (
	// StateRunning means the task is waiting for or processing a message.
	StateRunning State = iota
	// StateTerminated means the task has exited. It never runs again.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// task drains one dispatch queue into one consumer.
type task struct {
	index    int
	label    string
	consumer Consumer
	queue    *dispatchQueue
	done     chan struct{}

	state     atomic.Int32
	delivered atomic.Uint64
	failed    atomic.Uint64
	panics    atomic.Uint64
}

func newTask(index int, consumer Consumer, capacity int) *task {
	return &task{
		index:    index,
		label:    consumerLabel(index),
		consumer: consumer,
		queue:    newDispatchQueue(capacity),
		done:     make(chan struct{}),
	}
}

func (t *task) State() State {
	return State(t.state.Load())
}

func (t *task) run(c *carousel) {
	defer close(t.done)
	defer t.state.Store(int32(StateTerminated))

	if c.opts.dedicated {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	log := c.logger.With(logger.ConsumerIndex(t.index))
	log.Debug("consumer task started")

	for {
		env, ok := t.queue.pop()
		if !ok {
			log.Debug("consumer task stopped",
				logger.Count("delivered", int(t.delivered.Load())))
			return
		}
		c.opts.metrics.dequeued(t.label)

		if t.invoke(c, log, env) || c.opts.continueOnPanic {
			continue
		}

		discarded := t.queue.drop()
		c.opts.metrics.discarded(t.label, discarded)
		log.Error("consumer task terminated after panic",
			logger.Count("discarded", discarded))
		return
	}
}

// invoke calls the consumer and reports false if it panicked.
func (t *task) invoke(c *carousel, log *slog.Logger, env envelope) (ok bool) {
	ctx := t.deliveryContext(c, env)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			ok = false
			t.panics.Add(1)
			c.opts.metrics.panicked(t.label)
			log.ErrorContext(ctx, "consumer panicked",
				logger.Sequence(env.seq),
				slog.Any("panic", r),
				logger.Stack())
		}
	}()

	t.consumer.Consume(ctx, env.msg)

	t.delivered.Add(1)
	c.opts.metrics.consumed(t.label, time.Since(start))
	return true
}

func (t *task) deliveryContext(c *carousel, env envelope) context.Context {
	ctx := WithCarouselID(c.opts.baseCtx, c.id)
	ctx = WithConsumerIndex(ctx, t.index)
	ctx = WithSequence(ctx, env.seq)
	return WithEnqueuedAt(ctx, env.enqueuedAt)
}
