package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect creates a Redis client and waits until it answers a ping.
// It retries RetryAttempts times with a growing interval and gives up when
// ConnectTimeout or ctx expires.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	client := redis.NewClient(opts)
	attempts := max(cfg.RetryAttempts, 1)
	interval := cfg.RetryInterval

	for attempt := 1; ; attempt++ {
		err = client.Ping(ctx).Err()
		if err == nil {
			return client, nil
		}
		if attempt >= attempts {
			break
		}

		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(interval * time.Duration(attempt)):
		}
	}

	_ = client.Close()
	return nil, errors.Join(ErrRedisNotReady, err)
}

// Pinger is the part of a Redis client Healthcheck needs.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// Healthcheck returns a check that pings client.
func Healthcheck(client Pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
