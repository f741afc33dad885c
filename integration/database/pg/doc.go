// Package pg stores carousel messages in PostgreSQL.
//
// Connect creates a pgx connection pool with retry logic and verifies it.
// Migrate applies the embedded goose migrations that create the
// carousel_messages table. NewConsumer returns an mp2c.Consumer inserting one
// row per delivered message:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//
//	sink := pg.NewConsumer(pool, pg.WithLogger(log))
//
// Rows are keyed by (carousel_id, sequence, consumer); a duplicate insert is
// treated as already stored.
//
// # Error Handling
//
//	ErrFailedToOpenDBConnection
//	ErrEmptyConnectionString
//	ErrHealthcheckFailed
//	ErrFailedToParseDBConfig
//	ErrFailedToApplyMigrations
//	ErrInsertFailed
//
// IsDuplicateKeyError and IsForeignKeyViolationError classify driver errors.
package pg
