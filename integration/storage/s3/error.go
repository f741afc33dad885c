package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	ErrInvalidConfig      = errors.New("s3: bucket and region are required")
	ErrOperationTimeout   = errors.New("s3: operation timed out")
	ErrOperationCanceled  = errors.New("s3: operation canceled")
	ErrBucketNotFound     = errors.New("s3: bucket not found")
	ErrAccessDenied       = errors.New("s3: access denied")
	ErrRequestTimeout     = errors.New("s3: request timeout")
	ErrServiceUnavailable = errors.New("s3: service unavailable")
	ErrHealthcheckFailed  = errors.New("s3: healthcheck failed")
)

// classifyS3Error converts S3 errors to domain-specific errors.
func classifyS3Error(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s operation", ErrOperationTimeout, operation)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s operation", ErrOperationCanceled, operation)
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch code {
		case "AccessDenied":
			return fmt.Errorf("%w: %s operation", ErrAccessDenied, operation)
		case "RequestTimeout":
			return fmt.Errorf("%w: %s operation", ErrRequestTimeout, operation)
		case "SlowDown", "ServiceUnavailable":
			return fmt.Errorf("%w: %s operation", ErrServiceUnavailable, operation)
		case "NoSuchBucket", "NotFound":
			return ErrBucketNotFound
		default:
			return fmt.Errorf("%s operation failed (code: %s): %w", operation, code, err)
		}
	}

	return fmt.Errorf("%s operation failed: %w", operation, err)
}
