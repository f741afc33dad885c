package opensearch_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/integration/database/opensearch"
)

type fakeTransport struct {
	requests []*http.Request
	bodies   [][]byte
	status   int
	err      error
}

func (f *fakeTransport) Perform(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		f.bodies = append(f.bodies, b)
	}
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == 0 {
		status = http.StatusCreated
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(`{}`)),
		Header:     http.Header{},
	}, nil
}

func TestNewConsumer(t *testing.T) {
	t.Parallel()

	_, err := opensearch.NewConsumer(&fakeTransport{}, "")
	assert.ErrorIs(t, err, opensearch.ErrEmptyIndex)
}

func TestConsumer(t *testing.T) {
	t.Parallel()

	t.Run("indexes a document", func(t *testing.T) {
		t.Parallel()

		tr := &fakeTransport{}
		sink, err := opensearch.NewConsumer(tr, "carousel-messages")
		require.NoError(t, err)

		ctx := mp2c.WithConsumerIndex(context.Background(), 2)
		ctx = mp2c.WithSequence(ctx, 5)
		ctx = mp2c.WithCarouselID(ctx, "c-1")
		sink.Consume(ctx, mp2c.Message("searchable"))

		require.Len(t, tr.requests, 1)
		assert.Equal(t, http.MethodPut, tr.requests[0].Method)
		assert.Equal(t, "/carousel-messages/_doc/c-1-5-2", tr.requests[0].URL.Path)

		var doc opensearch.Document
		require.NoError(t, json.Unmarshal(tr.bodies[0], &doc))
		assert.Equal(t, "searchable", doc.Payload)
		assert.Equal(t, uint64(5), doc.Sequence)
		assert.Equal(t, 2, doc.Consumer)
	})

	t.Run("error status", func(t *testing.T) {
		t.Parallel()

		tr := &fakeTransport{status: http.StatusBadRequest}
		var got error
		sink, err := opensearch.NewConsumer(tr, "idx",
			opensearch.WithErrorHandler(func(_ context.Context, err error) { got = err }))
		require.NoError(t, err)

		sink.Consume(context.Background(), mp2c.Message("x"))
		assert.ErrorIs(t, got, opensearch.ErrIndexFailed)
	})

	t.Run("transport error", func(t *testing.T) {
		t.Parallel()

		tr := &fakeTransport{err: errors.New("no route to host")}
		var got error
		sink, err := opensearch.NewConsumer(tr, "idx",
			opensearch.WithErrorHandler(func(_ context.Context, err error) { got = err }))
		require.NoError(t, err)

		sink.Consume(context.Background(), mp2c.Message("x"))
		assert.ErrorIs(t, got, opensearch.ErrIndexFailed)
	})
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	assert.NoError(t, opensearch.Healthcheck(&fakeTransport{status: http.StatusOK})(context.Background()))
	assert.ErrorIs(t,
		opensearch.Healthcheck(&fakeTransport{status: http.StatusServiceUnavailable})(context.Background()),
		opensearch.ErrHealthcheckFailed)
}
