package redis

import "time"

// Config holds Redis connection and delivery settings.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`

	// Channel receives every message via PUBLISH when Stream is empty.
	Channel string `env:"REDIS_CHANNEL" envDefault:"mp2c"`
	// Stream, when set, receives every message via XADD instead.
	Stream       string `env:"REDIS_STREAM"`
	StreamMaxLen int64  `env:"REDIS_STREAM_MAX_LEN" envDefault:"0"`
}
