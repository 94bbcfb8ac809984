package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/claimdesk/internal/config"
	"github.com/claimdesk/internal/metrics"
	"github.com/claimdesk/internal/processor"
	"github.com/claimdesk/internal/store"
	"github.com/claimdesk/internal/upload"
)

const janitorInterval = time.Minute

type App struct {
	config    *config.Config
	logger    *slog.Logger
	processor processor.Processor
	breaker   *processor.Breaker
	forms     *store.FormStore
	metrics   *metrics.Metrics
}

func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return build(cfg, newLogger(cfg)), nil
}

func build(cfg *config.Config, logger *slog.Logger) *App {
	app := &App{
		config: cfg,
		logger: logger,
	}

	var p processor.Processor = processor.NewClient(cfg.ProcessorURL, cfg.ProcessorTimeout, logger)
	if cfg.Breaker.Enabled {
		app.breaker = processor.NewBreaker(p, processor.BreakerSettings{
			MinRequests:  cfg.Breaker.MinRequests,
			FailureRatio: cfg.Breaker.FailureRatio,
			OpenTimeout:  cfg.Breaker.OpenTimeout,
		})
		p = app.breaker
	}

	app.metrics = metrics.New(func() float64 { return float64(app.forms.Len()) })
	app.processor = processor.Instrument(p, app.metrics)
	app.forms = store.NewFormStore(cfg.SessionTTL, cfg.MaxSessions, func() *upload.Form {
		return upload.NewForm(app.processor)
	})

	return app
}

func (app *App) Start(ctx context.Context) error {
	// Create an errgroup derived from the parent context
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", app.config.Port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: app.config.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	// Start the server in a goroutine
	g.Go(func() error {
		app.logger.Info("starting server",
			"addr", srv.Addr,
			"env", app.config.Env,
			"processor_url", app.config.ProcessorURL,
			"breaker", app.config.Breaker.Enabled,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	// Start shutdown listener
	g.Go(func() error {
		<-gctx.Done()

		app.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	// Expire idle form sessions
	g.Go(func() error {
		app.forms.RunJanitor(gctx, janitorInterval)
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	app.logger.Info("stopped server")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch {
	case cfg.LogLevel != "":
		opts.Level = parseLevel(cfg.LogLevel)
	case cfg.IsDevelopment():
		opts.Level = slog.LevelDebug
	}

	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
