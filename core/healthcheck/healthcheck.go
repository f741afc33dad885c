// Package healthcheck composes dependency checks into liveness and readiness
// probes.
//
// A check is any func(context.Context) error: carousel Healthcheck methods and
// the Healthcheck helpers of the integration packages all fit.
//
//	ready := healthcheck.Readiness(log,
//		carousel.Healthcheck,
//		redis.Healthcheck(client),
//	)
//	http.Handle("/health/live", healthcheck.Handler(healthcheck.Liveness, "ALIVE"))
//	http.Handle("/health/ready", healthcheck.Handler(ready, "READY"))
package healthcheck

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/openspock/mp2c/core/logger"
)

// ErrNotReady is returned by a Readiness check when a dependency failed.
var ErrNotReady = errors.New("healthcheck: not ready")

// Liveness reports that the process is running. It never fails.
func Liveness(context.Context) error {
	return nil
}

// Readiness returns a check running every fn in order. All failures are
// logged and joined with ErrNotReady.
func Readiness(log *slog.Logger, fn ...func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		var errs []error
		for _, f := range fn {
			if err := f(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Error(err))
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return errors.Join(append([]error{ErrNotReady}, errs...)...)
		}
		return nil
	}
}

// Handler serves check over HTTP: 200 with body on success,
// 503 Service Unavailable otherwise.
func Handler(check func(context.Context) error, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := check(r.Context()); err != nil {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(body))
	})
}
