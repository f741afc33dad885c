package main

import (
	"time"

	"github.com/openspock/mp2c"
)

// Config is the demo configuration, loaded from the environment.
type Config struct {
	AppName     string        `env:"APP_NAME" envDefault:"mp2c"`
	Env         string        `env:"APP_ENV" envDefault:"development"`
	Producers   int           `env:"MP2C_PRODUCERS" envDefault:"3"`
	HTTPAddr    string        `env:"MP2C_HTTP_ADDR"`
	HTTPTimeout time.Duration `env:"MP2C_HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	RedisURL    string        `env:"REDIS_URL"`

	Carousel mp2c.Config
}
