package mp2c_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openspock/mp2c"
)

func TestDeliveryError(t *testing.T) {
	t.Parallel()

	err := &mp2c.DeliveryError{Failures: []mp2c.DeliveryFailure{
		{Index: 1, Err: mp2c.ErrConsumerTerminated},
		{Index: 3, Err: context.Canceled},
	}}

	assert.Equal(t,
		"mp2c: partial delivery: consumer 1: mp2c: consumer terminated; consumer 3: context canceled",
		err.Error())
	assert.ErrorIs(t, err, mp2c.ErrConsumerTerminated)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, mp2c.ErrCarouselClosed)

	var f mp2c.DeliveryFailure
	assert.True(t, errors.As(err, &f))
	assert.Equal(t, 1, f.Index)

	wrapped := fmt.Errorf("publish: %w", err)
	assert.Equal(t, []int{1, 3}, mp2c.FailedIndices(wrapped))
	assert.Nil(t, mp2c.FailedIndices(errors.New("other")))
	assert.Nil(t, mp2c.FailedIndices(nil))
}
