package pg

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/openspock/mp2c/core/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Connect creates a connection pool and waits until it answers a ping,
// retrying RetryAttempts times with a growing interval.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.ConnectionString == "" {
		return nil, ErrEmptyConnectionString
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = cfg.MaxOpenConns
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = cfg.MaxIdleConns
	}
	if cfg.HealthCheckPeriod > 0 {
		poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Join(ErrFailedToOpenDBConnection, err)
	}

	attempts := max(cfg.RetryAttempts, 1)
	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			return pool, nil
		}
		if attempt >= attempts {
			break
		}

		select {
		case <-ctx.Done():
			pool.Close()
			return nil, errors.Join(ErrFailedToOpenDBConnection, ctx.Err())
		case <-time.After(cfg.RetryInterval * time.Duration(attempt)):
		}
	}

	pool.Close()
	return nil, errors.Join(ErrFailedToOpenDBConnection, err)
}

// Migrate applies the embedded migrations that create carousel_messages.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, log *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if cfg.MigrationsTable != "" {
		goose.SetTableName(cfg.MigrationsTable)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	log.InfoContext(ctx, "migrations applied", logger.Count("version", int(version)))
	return nil
}

// Pinger is the part of a pool Healthcheck needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthcheck returns a check that pings the database.
func Healthcheck(db Pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := db.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Migrations returns the embedded migration files.
func Migrations() fs.FS {
	return migrations
}
