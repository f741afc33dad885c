package redis_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/integration/database/redis"
)

type fakeClient struct {
	mu        sync.Mutex
	published map[string][][]byte
	added     []*goredis.XAddArgs
	err       error
}

func newFakeClient() *fakeClient {
	return &fakeClient{published: map[string][][]byte{}}
}

func (f *fakeClient) Publish(_ context.Context, channel string, message any) *goredis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return goredis.NewIntResult(0, f.err)
	}
	f.published[channel] = append(f.published[channel], message.([]byte))
	return goredis.NewIntResult(1, nil)
}

func (f *fakeClient) XAdd(_ context.Context, a *goredis.XAddArgs) *goredis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return goredis.NewStringResult("", f.err)
	}
	f.added = append(f.added, a)
	return goredis.NewStringResult("1-0", nil)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) *goredis.StatusCmd {
	return goredis.NewStatusResult("PONG", p.err)
}

func TestNewConsumer(t *testing.T) {
	t.Parallel()

	_, err := redis.NewConsumer(newFakeClient(), redis.Config{})
	assert.ErrorIs(t, err, redis.ErrNoTarget)
}

func TestConsumer_Publish(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	sink, err := redis.NewConsumer(client, redis.Config{Channel: "events"})
	require.NoError(t, err)

	c, err := mp2c.New([]mp2c.Consumer{sink})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Put(ctx, mp2c.Message("hello")))
	require.NoError(t, c.Put(ctx, mp2c.Message("world")))
	require.NoError(t, c.Shutdown(ctx))

	client.mu.Lock()
	defer client.mu.Unlock()
	assert.Equal(t, [][]byte{[]byte("hello"), []byte("world")}, client.published["events"])
}

func TestConsumer_Stream(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	sink, err := redis.NewConsumer(client, redis.Config{Stream: "carousel", StreamMaxLen: 100})
	require.NoError(t, err)

	ctx := mp2c.WithCarouselID(mp2c.WithSequence(context.Background(), 4), "c-1")
	sink.Consume(ctx, mp2c.Message("payload"))

	require.Len(t, client.added, 1)
	args := client.added[0]
	assert.Equal(t, "carousel", args.Stream)
	assert.Equal(t, int64(100), args.MaxLen)
	assert.True(t, args.Approx)

	values := args.Values.(map[string]any)
	assert.Equal(t, []byte("payload"), values["payload"])
	assert.Equal(t, uint64(4), values["sequence"])
	assert.Equal(t, "c-1", values["carousel_id"])
}

func TestConsumer_ErrorHandler(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.err = errors.New("connection refused")

	var got error
	sink, err := redis.NewConsumer(client, redis.Config{Channel: "events"},
		redis.WithErrorHandler(func(_ context.Context, err error) { got = err }))
	require.NoError(t, err)

	sink.Consume(context.Background(), mp2c.Message("x"))
	assert.ErrorIs(t, got, redis.ErrPublishFailed)
	assert.ErrorContains(t, got, "connection refused")
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	assert.NoError(t, redis.Healthcheck(fakePinger{})(context.Background()))

	err := redis.Healthcheck(fakePinger{err: errors.New("down")})(context.Background())
	assert.ErrorIs(t, err, redis.ErrHealthcheckFailed)
}

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{})
	assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)

	_, err = redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://localhost"})
	assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
}
