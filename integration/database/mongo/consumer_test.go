package mongo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	driver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/integration/database/mongo"
)

type fakeCollection struct {
	docs []any
	err  error
}

func (f *fakeCollection) InsertOne(_ context.Context, document any, _ ...options.Lister[options.InsertOneOptions]) (*driver.InsertOneResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.docs = append(f.docs, document)
	return &driver.InsertOneResult{InsertedID: len(f.docs)}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context, *readpref.ReadPref) error { return p.err }

func TestConsumer(t *testing.T) {
	t.Parallel()

	t.Run("inserts a document", func(t *testing.T) {
		t.Parallel()

		coll := &fakeCollection{}
		sink := mongo.NewConsumer(coll)

		ctx := mp2c.WithConsumerIndex(context.Background(), 1)
		ctx = mp2c.WithSequence(ctx, 3)
		ctx = mp2c.WithCarouselID(ctx, "c-1")
		sink.Consume(ctx, mp2c.Message("doc"))

		require.Len(t, coll.docs, 1)
		doc := coll.docs[0].(mongo.Document)
		assert.Equal(t, "c-1", doc.CarouselID)
		assert.Equal(t, int64(3), doc.Sequence)
		assert.Equal(t, 1, doc.Consumer)
		assert.Equal(t, []byte("doc"), doc.Payload)
	})

	t.Run("duplicate key is ignored", func(t *testing.T) {
		t.Parallel()

		coll := &fakeCollection{err: driver.WriteException{
			WriteErrors: []driver.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
		}}
		called := false
		sink := mongo.NewConsumer(coll, mongo.WithErrorHandler(func(context.Context, error) { called = true }))
		sink.Consume(context.Background(), mp2c.Message("doc"))
		assert.False(t, called)
	})

	t.Run("reports failures", func(t *testing.T) {
		t.Parallel()

		coll := &fakeCollection{err: errors.New("timeout")}
		var got error
		sink := mongo.NewConsumer(coll, mongo.WithErrorHandler(func(_ context.Context, err error) { got = err }))
		sink.Consume(context.Background(), mp2c.Message("doc"))
		assert.ErrorIs(t, got, mongo.ErrInsertFailed)
	})
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	assert.NoError(t, mongo.Healthcheck(fakePinger{})(context.Background()))
	assert.ErrorIs(t, mongo.Healthcheck(fakePinger{err: errors.New("down")})(context.Background()), mongo.ErrHealthcheckFailed)
}
