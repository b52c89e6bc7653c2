// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/instascrape/internal/api"
	"github.com/JakeFAU/instascrape/internal/clock/system"
	"github.com/JakeFAU/instascrape/internal/config"
	collyfetcher "github.com/JakeFAU/instascrape/internal/fetcher/colly"
	"github.com/JakeFAU/instascrape/internal/id/uuid"
	"github.com/JakeFAU/instascrape/internal/notify"
	"github.com/JakeFAU/instascrape/internal/poller"
	"github.com/JakeFAU/instascrape/internal/profile"
	"github.com/JakeFAU/instascrape/internal/record"
)

// App holds the services a command needs: the logger, the output writer
// (opened once for the process lifetime) and the poller that owns it.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	writer *record.Writer
	poller *poller.Poller
	server *http.Server
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Poller returns the configured poll loop.
func (a *App) Poller() *poller.Poller {
	return a.poller
}

// Config returns the resolved configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// New creates an App from cfg. Failing to open the output file is the only
// fatal condition and is reported as profile.OutputOpenFailed.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Initializing application services...")

	clock := system.New()
	writer, err := record.Open(cfg.Output, clock)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", cfg.Output, err)
	}
	logger.Info("Appending observations", zap.String("path", cfg.Output))

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.HTTPTimeout(),
	})

	// A nil interface, not a typed nil, keeps the poller's skip check working.
	var notifier profile.Notifier
	if cfg.Webhook != "" {
		notifier = notify.NewWebhook(notify.Config{
			URL:       cfg.Webhook,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.HTTPTimeout(),
		})
		logger.Info("Webhook notifications enabled")
	} else {
		logger.Info("No webhook configured. Notifications are disabled.")
	}

	p := poller.New(
		poller.Config{
			User:     cfg.User,
			URL:      cfg.ProfileURL(),
			Interval: cfg.PollInterval(),
		},
		fetcher,
		writer,
		notifier,
		clock,
		uuid.New(),
		logger.Named("poller"),
	)

	a := &App{
		cfg:    cfg,
		logger: logger,
		writer: writer,
		poller: p,
	}
	if cfg.Metrics.Addr != "" {
		a.server = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           api.NewServer(p, cfg.User, logger.Named("api")).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	logger.Info("Application services initialized successfully.")
	return a, nil
}

// Serve runs the HTTP surface until ctx is done. It returns immediately when
// no metrics address is configured.
func (a *App) Serve(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting metrics server", zap.String("addr", a.server.Addr))
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	return nil
}

// Close flushes and releases the output file and the logger.
func (a *App) Close() {
	a.logger.Info("Shutting down application services...")
	if err := a.writer.Close(); err != nil {
		a.logger.Warn("Error closing output file", zap.Error(err))
	}
	// Syncing stderr fails on some platforms; nothing useful can be done then.
	_ = a.logger.Sync()
}
