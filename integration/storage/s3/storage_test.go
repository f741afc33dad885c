package s3_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/integration/storage/s3"
)

type putCall struct {
	input *s3aws.PutObjectInput
	body  []byte
}

type fakeS3 struct {
	mu      sync.Mutex
	puts    []putCall
	putErr  error
	headErr error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3aws.PutObjectInput, _ ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, putCall{in, body})
	return &s3aws.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3aws.HeadBucketInput, ...func(*s3aws.Options)) (*s3aws.HeadBucketOutput, error) {
	return &s3aws.HeadBucketOutput{}, f.headErr
}

func newConsumer(t *testing.T, client s3.S3Client, opts ...s3.Option) *s3.Consumer {
	t.Helper()
	c, err := s3.New(context.Background(), s3.Config{
		Bucket: "bucket",
		Region: "us-east-1",
		Prefix: "archive",
	}, append([]s3.Option{s3.WithS3Client(client)}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := s3.New(context.Background(), s3.Config{Bucket: "b"})
	assert.ErrorIs(t, err, s3.ErrInvalidConfig)
}

func TestConsumer_PutObject(t *testing.T) {
	t.Parallel()

	client := &fakeS3{}
	sink := newConsumer(t, client)

	c, err := mp2c.New([]mp2c.Consumer{sink})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Put(ctx, mp2c.Message("first")))
	require.NoError(t, c.Put(ctx, mp2c.Message("second")))
	require.NoError(t, c.Shutdown(ctx))

	require.Len(t, client.puts, 2)
	first := client.puts[0]
	assert.Equal(t, "bucket", *first.input.Bucket)
	assert.Equal(t, []byte("first"), first.body)
	assert.Equal(t, int64(5), *first.input.ContentLength)
	assert.Equal(t, "application/octet-stream", *first.input.ContentType)
	assert.Equal(t, "1", first.input.Metadata["sequence"])
	assert.Equal(t, "0", first.input.Metadata["consumer"])
	assert.Equal(t, c.ID(), first.input.Metadata["carousel-id"])

	prefix := "archive/" + c.ID() + "/"
	assert.True(t, strings.HasPrefix(*first.input.Key, prefix+"00000000000000000001-0-"))
	assert.True(t, strings.HasPrefix(*client.puts[1].input.Key, prefix+"00000000000000000002-0-"))
	assert.Less(t, *first.input.Key, *client.puts[1].input.Key)
}

func TestConsumer_Key(t *testing.T) {
	t.Parallel()

	sink := newConsumer(t, &fakeS3{})
	ctx := mp2c.WithSequence(mp2c.WithConsumerIndex(context.Background(), 3), 7)

	k1, k2 := sink.Key(ctx), sink.Key(ctx)
	assert.NotEqual(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "archive/unknown/00000000000000000007-3-"))
}

type apiError struct{ code string }

func (e apiError) Error() string                 { return e.code }
func (e apiError) ErrorCode() string             { return e.code }
func (e apiError) ErrorMessage() string          { return e.code }
func (e apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultServer }

func TestConsumer_ErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"access denied", apiError{"AccessDenied"}, s3.ErrAccessDenied},
		{"slow down", apiError{"SlowDown"}, s3.ErrServiceUnavailable},
		{"missing bucket", apiError{"NoSuchBucket"}, s3.ErrBucketNotFound},
		{"timeout", context.DeadlineExceeded, s3.ErrOperationTimeout},
		{"canceled", context.Canceled, s3.ErrOperationCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got error
			sink := newConsumer(t, &fakeS3{putErr: tt.err},
				s3.WithErrorHandler(func(_ context.Context, err error) { got = err }))
			sink.Consume(context.Background(), mp2c.Message("x"))
			assert.ErrorIs(t, got, tt.want)
		})
	}

	t.Run("unknown error keeps cause", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("socket closed")
		var got error
		sink := newConsumer(t, &fakeS3{putErr: cause},
			s3.WithErrorHandler(func(_ context.Context, err error) { got = err }))
		sink.Consume(context.Background(), mp2c.Message("x"))
		assert.ErrorIs(t, got, cause)
	})
}

func TestConsumer_Healthcheck(t *testing.T) {
	t.Parallel()

	assert.NoError(t, newConsumer(t, &fakeS3{}).Healthcheck()(context.Background()))

	err := newConsumer(t, &fakeS3{headErr: apiError{"NotFound"}}).Healthcheck()(context.Background())
	assert.ErrorIs(t, err, s3.ErrHealthcheckFailed)
	assert.ErrorIs(t, err, s3.ErrBucketNotFound)
}
