package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilTarget is returned when Load receives a nil pointer.
var ErrNilTarget = errors.New("config: nil target")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> any (a value of that type)
)

// Load parses environment variables into cfg. The first successful load of a
// type is cached and later calls with the same type copy the cached value.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilTarget
	}

	// A missing .env file is not an error.
	dotenvOnce.Do(func() { _ = godotenv.Load() })

	key := reflect.TypeFor[T]()
	if v, ok := cache.Load(key); ok {
		*cfg = v.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}

	actual, _ := cache.LoadOrStore(key, *cfg)
	*cfg = actual.(T)
	return nil
}

// MustLoad is like Load but panics on error.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// Reset drops all cached configurations. Intended for tests.
func Reset() {
	cache.Range(func(k, _ any) bool {
		cache.Delete(k)
		return true
	})
}
