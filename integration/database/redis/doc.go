// Package redis publishes carousel messages to Redis.
//
// Connect creates a go-redis client with retry logic and verifies it with a
// ping. NewConsumer turns a client into an mp2c.Consumer that either PUBLISHes
// every message to a channel or XADDs it to a stream, depending on Config:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	sink, err := redis.NewConsumer(client, cfg, redis.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	c, err := mp2c.New([]mp2c.Consumer{sink, other})
//
// Consumers never return errors to the carousel. Failed commands go to the
// handler set with WithErrorHandler, which logs them by default.
//
// Healthcheck returns a ping-based check for core/healthcheck.Readiness.
package redis
