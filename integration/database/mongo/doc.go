// Package mongo stores carousel messages in MongoDB.
//
// New connects with retry logic tuned for MongoDB Atlas cold starts and
// verifies the connection with a ping. NewConsumer inserts one document per
// delivered message into a collection:
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, "events")
//	if err != nil {
//		return err
//	}
//	sink := mongo.NewConsumer(db.Collection(cfg.Collection), mongo.WithLogger(log))
//
// # Configuration
//
//	MONGODB_URL                 (required)
//	MONGODB_CONNECT_TIMEOUT     (default: 10s)
//	MONGODB_MAX_POOL_SIZE       (default: 100)
//	MONGODB_MIN_POOL_SIZE       (default: 1)
//	MONGODB_MAX_CONN_IDLE_TIME  (default: 300s)
//	MONGODB_RETRY_WRITES        (default: true)
//	MONGODB_RETRY_READS         (default: true)
//	MONGODB_RETRY_ATTEMPTS      (default: 3)
//	MONGODB_RETRY_INTERVAL      (default: 5s)
//	MONGODB_COLLECTION          (default: carousel_messages)
//
// # Error Handling
//
//	ErrFailedToConnectToMongo - Returned when all retry attempts are exhausted
//	ErrHealthcheckFailed      - Returned when health check ping fails
//	ErrInsertFailed           - Passed to the consumer error handler
//
// Duplicate key errors are treated as already stored.
package mongo
