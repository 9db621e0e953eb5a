package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jbec2912-cell/csv-filter-tool/internal/config"
	"github.com/jbec2912-cell/csv-filter-tool/internal/core"
	"github.com/jbec2912-cell/csv-filter-tool/internal/core/layouts" // Register built-in layouts
	"github.com/jbec2912-cell/csv-filter-tool/internal/inbox"
	"github.com/jbec2912-cell/csv-filter-tool/internal/logging"
	"github.com/jbec2912-cell/csv-filter-tool/internal/metrics"
	"github.com/jbec2912-cell/csv-filter-tool/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"layout", cfg.Convert.Layout,
		"output_name", cfg.Convert.OutputName,
	)

	if cfg.Convert.LayoutFile != "" {
		n, err := layouts.LoadFile(cfg.Convert.LayoutFile)
		if err != nil {
			slog.Error("failed to load layout file", "error", err)
			os.Exit(1)
		}
		slog.Info("layout file loaded", "path", cfg.Convert.LayoutFile, "layouts", n)
	}
	if _, err := core.Resolve(cfg.Convert.Layout); err != nil {
		slog.Error("invalid CONVERT_LAYOUT", "error", err)
		os.Exit(1)
	}
	slog.Info("layouts registered", "count", core.LayoutCount())

	recorder := metrics.NewRecorder()
	service := core.NewService(cfg.ServiceSettings(),
		core.WithLimiter(core.NewLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)),
		core.WithObserver(recorder),
	)

	server := web.NewServer(service, cfg, web.WithMetrics(recorder.Handler()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inboxDone := startInbox(ctx, cfg, service)

	if err := serve(ctx, server, cfg.Server.ShutdownTimeout, inboxDone); err != nil {
		slog.Error("server stopped", "error", err)
		stop()
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// httpServer is the part of web.Server that serve drives.
type httpServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serve runs srv until ctx is cancelled, then shuts it down. It returns only
// after Shutdown has finished draining conversions and background has been
// closed, or the shutdown timeout has passed.
func serve(ctx context.Context, srv httpServer, timeout time.Duration, background <-chan struct{}) error {
	startErr := make(chan error, 1)
	go func() { startErr <- srv.Start() }()

	select {
	case err := <-startErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("shutdown error", "error", err)
	}

	select {
	case <-background:
	case <-shutdownCtx.Done():
		slog.Warn("background jobs still running at shutdown timeout")
	}

	if serr := <-startErr; serr != nil && !errors.Is(serr, http.ErrServerClosed) {
		return serr
	}
	return err
}

// startInbox runs the inbox sweeper in the background when INBOX_DIR is
// set: on the cron schedule if one is given, otherwise on file events. The
// returned channel is closed once the sweeper has stopped.
func startInbox(ctx context.Context, cfg *config.Config, service *core.Service) <-chan struct{} {
	done := make(chan struct{})
	if cfg.Inbox.Dir == "" {
		close(done)
		return done
	}

	sweeper := &inbox.Sweeper{
		Dir:        cfg.Inbox.Dir,
		OutputName: cfg.Convert.OutputName,
		Convert:    inbox.ServiceConverter(service, cfg.Inbox.OutputDir),
		Debounce:   cfg.Inbox.Debounce,
		Logger:     slog.Default().With("component", "inbox"),
	}

	go func() {
		defer close(done)
		var err error
		if cfg.Inbox.Schedule != "" {
			err = sweeper.Schedule(ctx, cfg.Inbox.Schedule)
		} else {
			err = sweeper.Watch(ctx)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("inbox stopped", "dir", cfg.Inbox.Dir, "error", err)
		}
	}()
	return done
}
