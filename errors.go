package mp2c

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoConsumers is returned by New when the consumer set is empty.
	ErrNoConsumers = errors.New("mp2c: no consumers provided")

	// ErrNilConsumer is returned by New when a consumer in the set is nil.
	ErrNilConsumer = errors.New("mp2c: nil consumer")

	// ErrInvalidCapacity is returned by New when the channel capacity is negative.
	ErrInvalidCapacity = errors.New("mp2c: invalid channel capacity")

	// ErrCarouselClosed is returned when a closed handle is used.
	ErrCarouselClosed = errors.New("mp2c: carousel closed")

	// ErrConsumerTerminated is the cause recorded for a consumer whose task has stopped.
	ErrConsumerTerminated = errors.New("mp2c: consumer terminated")

	// ErrHealthcheckFailed is returned by Healthcheck when the carousel is degraded.
	ErrHealthcheckFailed = errors.New("mp2c: healthcheck failed")
)

// DeliveryFailure records that a message could not be handed to one consumer.
type DeliveryFailure struct {
	Index int   // consumer index, as passed to New
	Err   error // cause, e.g. ErrConsumerTerminated or a context error
}

// Error implements the error interface.
func (f DeliveryFailure) Error() string {
	return fmt.Sprintf("consumer %d: %v", f.Index, f.Err)
}

// Unwrap returns the cause.
func (f DeliveryFailure) Unwrap() error {
	return f.Err
}

// DeliveryError aggregates the per-consumer failures of a single Put.
// Delivery to every other consumer went through.
type DeliveryError struct {
	Failures []DeliveryFailure
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return "mp2c: partial delivery: " + strings.Join(parts, "; ")
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (e *DeliveryError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// FailedIndices returns the consumer indices recorded in err, in ascending order.
// It returns nil when err carries no DeliveryError.
func FailedIndices(err error) []int {
	var de *DeliveryError
	if !errors.As(err, &de) {
		return nil
	}
	idx := make([]int, len(de.Failures))
	for i, f := range de.Failures {
		idx[i] = f.Index
	}
	return idx
}
