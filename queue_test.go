package mp2c

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchQueue(t *testing.T) {
	t.Parallel()

	t.Run("fifo and drain after close", func(t *testing.T) {
		t.Parallel()

		q := newDispatchQueue(0)
		ctx := context.Background()
		for i := uint64(1); i <= 3; i++ {
			require.NoError(t, q.push(ctx, envelope{seq: i}))
		}
		q.close()
		assert.ErrorIs(t, q.push(ctx, envelope{seq: 4}), errQueueClosed)

		for i := uint64(1); i <= 3; i++ {
			env, ok := q.pop()
			require.True(t, ok)
			assert.Equal(t, i, env.seq)
		}
		_, ok := q.pop()
		assert.False(t, ok)
	})

	t.Run("pop waits for push", func(t *testing.T) {
		t.Parallel()

		q := newDispatchQueue(0)
		got := make(chan uint64)
		go func() {
			env, _ := q.pop()
			got <- env.seq
		}()

		time.Sleep(10 * time.Millisecond)
		require.NoError(t, q.push(context.Background(), envelope{seq: 42}))

		select {
		case seq := <-got:
			assert.Equal(t, uint64(42), seq)
		case <-time.After(time.Second):
			t.Fatal("pop did not wake up")
		}
	})

	t.Run("pop wakes on close", func(t *testing.T) {
		t.Parallel()

		q := newDispatchQueue(0)
		done := make(chan bool)
		go func() {
			_, ok := q.pop()
			done <- ok
		}()

		time.Sleep(10 * time.Millisecond)
		q.close()

		select {
		case ok := <-done:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("pop did not wake up")
		}
	})

	t.Run("bounded push blocks until pop", func(t *testing.T) {
		t.Parallel()

		q := newDispatchQueue(1)
		ctx := context.Background()
		require.NoError(t, q.push(ctx, envelope{seq: 1}))

		pushed := make(chan error)
		go func() {
			pushed <- q.push(ctx, envelope{seq: 2})
		}()

		select {
		case <-pushed:
			t.Fatal("push on a full queue returned")
		case <-time.After(20 * time.Millisecond):
		}

		_, ok := q.pop()
		require.True(t, ok)
		require.NoError(t, <-pushed)
		assert.Equal(t, 1, q.len())
	})

	t.Run("bounded push honours context", func(t *testing.T) {
		t.Parallel()

		q := newDispatchQueue(1)
		require.NoError(t, q.push(context.Background(), envelope{}))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, q.push(ctx, envelope{}), context.DeadlineExceeded)
		assert.Equal(t, 1, q.len())
	})

	t.Run("close releases blocked writers", func(t *testing.T) {
		t.Parallel()

		q := newDispatchQueue(1)
		require.NoError(t, q.push(context.Background(), envelope{}))

		pushed := make(chan error)
		go func() {
			pushed <- q.push(context.Background(), envelope{})
		}()

		time.Sleep(10 * time.Millisecond)
		q.close()
		assert.ErrorIs(t, <-pushed, errQueueClosed)
	})

	t.Run("drop discards and rejects", func(t *testing.T) {
		t.Parallel()

		q := newDispatchQueue(0)
		ctx := context.Background()
		require.NoError(t, q.push(ctx, envelope{}))
		require.NoError(t, q.push(ctx, envelope{}))

		assert.Equal(t, 2, q.drop())
		assert.Equal(t, 0, q.len())
		assert.ErrorIs(t, q.push(ctx, envelope{}), errReaderGone)

		_, ok := q.pop()
		assert.False(t, ok)

		// close after drop must not panic
		q.close()
	})
}
