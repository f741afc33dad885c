package redis

import "errors"

// Domain-specific Redis errors. Use errors.Is() to check error types.
var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
	ErrNoTarget                     = errors.New("redis consumer needs a channel or a stream")
	ErrPublishFailed                = errors.New("redis publish failed")
)
