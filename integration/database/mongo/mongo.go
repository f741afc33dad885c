package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

var (
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongodb")
	ErrHealthcheckFailed      = errors.New("mongodb healthcheck failed")
	ErrInsertFailed           = errors.New("failed to insert carousel message")
)

// Config holds MongoDB connection settings.
type Config struct {
	ConnectionURL   string        `env:"MONGODB_URL,required"`
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1"`
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s"`
	RetryWrites     bool          `env:"MONGODB_RETRY_WRITES" envDefault:"true"`
	RetryReads      bool          `env:"MONGODB_RETRY_READS" envDefault:"true"`
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"`
	Collection      string        `env:"MONGODB_COLLECTION" envDefault:"carousel_messages"`
}

// New connects to MongoDB and waits for a successful ping, retrying
// RetryAttempts times with a growing interval.
func New(ctx context.Context, cfg Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.ConnectionURL).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetRetryWrites(cfg.RetryWrites).
		SetRetryReads(cfg.RetryReads)

	var lastErr error
	attempts := max(cfg.RetryAttempts, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrFailedToConnectToMongo, ctx.Err())
			case <-time.After(cfg.RetryInterval * time.Duration(attempt-1)):
			}
		}

		client, err := mongo.Connect(opts)
		if err != nil {
			lastErr = err
			continue
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			lastErr = err
			continue
		}
		return client, nil
	}

	return nil, errors.Join(ErrFailedToConnectToMongo, lastErr)
}

// NewWithDatabase is New returning the named database.
func NewWithDatabase(ctx context.Context, cfg Config, database string) (*mongo.Database, error) {
	client, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Database(database), nil
}

// Pinger is the part of a client Healthcheck needs.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Healthcheck returns a check that pings the primary.
func Healthcheck(client Pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
