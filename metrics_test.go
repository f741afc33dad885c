package mp2c_test

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/core/consumer"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	m := mp2c.NewMetrics(prometheus.Labels{"carousel": "test"})
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(m))

	crashing := mp2c.ConsumerFunc(func(context.Context, mp2c.Message) { panic("boom") })
	c, err := mp2c.New([]mp2c.Consumer{consumer.NewRecorder(), crashing},
		mp2c.WithMetrics(m), mp2c.WithContinueOnPanic())
	require.NoError(t, err)

	ctx := waitCtx(t)
	require.NoError(t, c.Put(ctx, mp2c.Message("a")))
	require.NoError(t, c.Put(ctx, mp2c.Message("b")))
	require.NoError(t, c.Put(ctx, mp2c.Message("c")))
	require.NoError(t, c.Shutdown(ctx))

	err = testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP mp2c_messages_put_total The number of messages submitted with Put.
# TYPE mp2c_messages_put_total counter
mp2c_messages_put_total{carousel="test"} 3
# HELP mp2c_deliveries_total The number of messages consumed.
# TYPE mp2c_deliveries_total counter
mp2c_deliveries_total{carousel="test",consumer="0"} 3
# HELP mp2c_consumer_panics_total The number of recovered consumer panics.
# TYPE mp2c_consumer_panics_total counter
mp2c_consumer_panics_total{carousel="test",consumer="1"} 3
`), "mp2c_messages_put_total", "mp2c_deliveries_total", "mp2c_consumer_panics_total")
	assert.NoError(t, err)

	// puts, deliveries, panics, duration and one pending gauge per consumer.
	assert.Equal(t, 6, testutil.CollectAndCount(m))
}

func TestMetrics_Nil(t *testing.T) {
	t.Parallel()

	c, err := mp2c.New([]mp2c.Consumer{consumer.NewRecorder()}, mp2c.WithMetrics(nil))
	require.NoError(t, err)

	ctx := waitCtx(t)
	require.NoError(t, c.Put(ctx, mp2c.Message("a")))
	require.NoError(t, c.Shutdown(ctx))
}
