package mp2c_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openspock/mp2c"
)

func TestDeliveryContextValues(t *testing.T) {
	t.Parallel()

	t.Run("absent", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		_, ok := mp2c.ConsumerIndex(ctx)
		assert.False(t, ok)
		assert.Zero(t, mp2c.Sequence(ctx))
		assert.True(t, mp2c.EnqueuedAt(ctx).IsZero())
		assert.Empty(t, mp2c.CarouselID(ctx))
	})

	t.Run("present", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		ctx := mp2c.WithConsumerIndex(context.Background(), 0)
		ctx = mp2c.WithSequence(ctx, 9)
		ctx = mp2c.WithEnqueuedAt(ctx, now)
		ctx = mp2c.WithCarouselID(ctx, "abc")

		idx, ok := mp2c.ConsumerIndex(ctx)
		require.True(t, ok)
		assert.Equal(t, 0, idx)
		assert.Equal(t, uint64(9), mp2c.Sequence(ctx))
		assert.Equal(t, now, mp2c.EnqueuedAt(ctx))
		assert.Equal(t, "abc", mp2c.CarouselID(ctx))
	})
}

func TestLogAttrs(t *testing.T) {
	t.Parallel()

	_, ok := mp2c.LogAttrs(context.Background())
	assert.False(t, ok)

	ctx := mp2c.WithCarouselID(mp2c.WithSequence(mp2c.WithConsumerIndex(context.Background(), 3), 5), "id-1")
	attr, ok := mp2c.LogAttrs(ctx)
	require.True(t, ok)
	assert.Equal(t, "delivery", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())

	got := map[string]string{}
	for _, a := range attr.Value.Group() {
		got[a.Key] = a.Value.String()
	}
	assert.Equal(t, map[string]string{"consumer": "3", "sequence": "5", "carousel_id": "id-1"}, got)
}
