package mp2c_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/core/config"
	"github.com/openspock/mp2c/core/consumer"
)

func TestPolicy(t *testing.T) {
	t.Parallel()

	assert.False(t, mp2c.Unbounded.IsBounded())
	assert.Zero(t, mp2c.Unbounded.Capacity())
	assert.Equal(t, "unbounded", mp2c.Unbounded.String())

	p := mp2c.Bounded(8)
	assert.True(t, p.IsBounded())
	assert.Equal(t, 8, p.Capacity())
	assert.Equal(t, "bounded(8)", p.String())
}

func TestConfig(t *testing.T) {
	t.Parallel()

	cfg := mp2c.DefaultConfig()
	assert.Equal(t, mp2c.Unbounded, cfg.Policy())
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)

	cfg.ChannelCapacity = 4
	assert.Equal(t, mp2c.Bounded(4), cfg.Policy())
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("negative capacity", func(t *testing.T) {
		t.Parallel()

		_, err := mp2c.NewFromConfig(mp2c.Config{ChannelCapacity: -1}, []mp2c.Consumer{consumer.NewRecorder()})
		assert.ErrorIs(t, err, mp2c.ErrInvalidCapacity)
	})

	t.Run("bounded", func(t *testing.T) {
		t.Parallel()

		rec := consumer.NewRecorder()
		c, err := mp2c.NewFromConfig(mp2c.Config{ChannelCapacity: 2, ContinueOnPanic: true}, []mp2c.Consumer{rec})
		require.NoError(t, err)

		ctx := context.Background()
		require.NoError(t, c.Put(ctx, mp2c.Message("x")))
		require.NoError(t, c.Shutdown(ctx))
		assert.Equal(t, 1, rec.Count())
	})
}

// Not parallel: t.Setenv.
func TestConfig_FromEnvironment(t *testing.T) {
	t.Setenv("MP2C_CHANNEL_CAPACITY", "16")
	t.Setenv("MP2C_SHUTDOWN_TIMEOUT", "2s")
	config.Reset()
	t.Cleanup(config.Reset)

	var cfg mp2c.Config
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, 16, cfg.ChannelCapacity)
	assert.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.DedicatedThreads)
	assert.Equal(t, mp2c.Bounded(16), cfg.Policy())
}
