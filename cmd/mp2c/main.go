// Command mp2c reads lines from stdin and broadcasts each one through a
// carousel to an upper-casing stdout writer, a logger and, when REDIS_URL is
// set, a Redis channel.
//
// Several producer handles share the input. The program exits after EOF once
// every consumer has drained, or on SIGINT/SIGTERM.
//
// With MP2C_HTTP_ADDR set it also serves /health/live, /health/ready and
// /metrics.
package main

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/openspock/mp2c"
	"github.com/openspock/mp2c/core/config"
	"github.com/openspock/mp2c/core/consumer"
	"github.com/openspock/mp2c/core/healthcheck"
	"github.com/openspock/mp2c/core/logger"
	"github.com/openspock/mp2c/integration/database/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	config.MustLoad(&cfg)

	log := newLogger(cfg)
	if err := run(ctx, cfg, log); err != nil {
		log.Error("mp2c stopped with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("mp2c stopped")
}

func newLogger(cfg Config) *slog.Logger {
	env := logger.WithDevelopment(cfg.AppName)
	if cfg.Env == "production" {
		env = logger.WithProduction(cfg.AppName)
	}
	// Logs go to stderr; stdout carries the upper-cased messages.
	return logger.New(env,
		logger.WithOutput(os.Stderr),
		logger.WithContextExtractors(mp2c.LogAttrs),
	)
}

func run(ctx context.Context, cfg Config, log *slog.Logger) error {
	metrics := mp2c.NewMetrics(prometheus.Labels{"app": cfg.AppName})
	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics)

	consumers := []mp2c.Consumer{
		consumer.Decorate(
			consumer.NewWriter(os.Stdout, consumer.WithWriteErrorLogger(log)),
			consumer.UpperCaser(language.Und),
		),
		consumer.Logger(log, slog.LevelInfo),
	}
	checks := []func(context.Context) error{}

	if cfg.RedisURL != "" {
		var rcfg redis.Config
		if err := config.Load(&rcfg); err != nil {
			return err
		}
		client, err := redis.Connect(ctx, rcfg)
		if err != nil {
			return err
		}
		defer client.Close()

		sink, err := redis.NewConsumer(client, rcfg, redis.WithLogger(log))
		if err != nil {
			return err
		}
		consumers = append(consumers, consumer.Decorate(sink, consumer.Logging(log)))
		checks = append(checks, redis.Healthcheck(client))
	}

	tasks := new(errgroup.Group)
	c, err := mp2c.NewFromConfig(cfg.Carousel, consumers,
		mp2c.WithLogger(log),
		mp2c.WithMetrics(metrics),
		mp2c.WithTaskRunner(func(run func()) {
			tasks.Go(func() error {
				run()
				return nil
			})
		}),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpErr := make(chan error, 1)
	if cfg.HTTPAddr != "" {
		ready := healthcheck.Readiness(log, append(checks, c.Healthcheck)...)
		go func() {
			httpErr <- serveHTTP(ctx, cfg, log, registry, ready)
		}()
	} else {
		httpErr <- nil
	}

	eg, pctx := errgroup.WithContext(ctx)
	lines := readLines(os.Stdin)
	for range max(cfg.Producers, 1) {
		h := c.Clone()
		eg.Go(func() error {
			defer h.Close()
			return produce(pctx, h, lines, log)
		})
	}

	// Producers hold their own handles; Shutdown releases this one and waits
	// for the consumers to drain.
	produceErr := eg.Wait()
	shutdownErr := c.Shutdown(context.Background())
	_ = tasks.Wait()

	cancel()
	err = errors.Join(shutdownErr, <-httpErr)
	if produceErr != nil && !errors.Is(produceErr, context.Canceled) {
		err = errors.Join(produceErr, err)
	}
	return err
}

func produce(ctx context.Context, h *mp2c.Carousel, lines <-chan string, log *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := h.Put(ctx, mp2c.Message(line)); err != nil {
				log.WarnContext(ctx, "put failed",
					logger.Error(err),
					slog.Any("failed_consumers", mp2c.FailedIndices(err)))
			}
		}
	}
}

// readLines never returns early on cancellation: a blocked stdin read cannot
// be interrupted.
func readLines(f *os.File) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			out <- sc.Text()
		}
	}()
	return out
}

func serveHTTP(ctx context.Context, cfg Config, log *slog.Logger, registry *prometheus.Registry, ready func(context.Context) error) error {
	mux := http.NewServeMux()
	mux.Handle("/health/live", healthcheck.Handler(healthcheck.Liveness, "ALIVE"))
	mux.Handle("/health/ready", healthcheck.Handler(ready, "READY"))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
