package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/sydlexius/bassline/internal/api"
	"github.com/sydlexius/bassline/internal/config"
	"github.com/sydlexius/bassline/internal/logging"
	"github.com/sydlexius/bassline/internal/runner"
	"github.com/sydlexius/bassline/internal/version"
	"github.com/sydlexius/bassline/internal/watcher"
)

func newServeCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the artist dataset and the discovery trigger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return serve(cmd.Context(), cfg, path)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, configPath string) error {
	logManager, logger := logging.NewManager(cfg.Logging)
	defer logManager.Close() //nolint:errcheck
	slog.SetDefault(logger)

	logger.Info("starting bassline",
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
	)

	a := newApp(cfg, logger)
	meta := a.store.Meta()
	logger.Info("dataset loaded",
		slog.String("path", cfg.Discovery.SnapshotPath),
		slog.Int("artists", meta.ArtistCount),
	)

	go reloadLoggingOnHUP(ctx, configPath, logManager, logger)

	// Pick up snapshots written by `bassline discover` in another process.
	mode, err := watcher.ParseMode(cfg.Discovery.WatchMode)
	if err != nil {
		return err
	}
	reload := func(context.Context) error {
		if err := a.store.Reload(cfg.Discovery.SnapshotPath); err != nil {
			return err
		}
		logger.Info("dataset reloaded", slog.Int("artists", a.store.Meta().ArtistCount))
		return nil
	}
	go watcher.NewService(cfg.Discovery.SnapshotPath, mode, reload, logger).Start(ctx)

	if interval := cfg.Schedule(); interval > 0 {
		go runner.NewScheduler(a.runner, logger).Start(ctx, interval)
	}

	router := api.NewRouter(api.RouterDeps{
		Runner:  a.runner,
		Store:   a.store,
		Catalog: a.deezer,
		Trigger: api.TriggerSettings{
			Secret:        cfg.Trigger.Secret,
			MaxDuration:   cfg.Trigger.MaxDuration,
			RatePerMinute: cfg.Trigger.RatePerMinute,
		},
		Metrics: promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{
			ErrorHandling: promhttp.HTTPErrorOnError,
		}),
		Logger:   logger,
		BasePath: cfg.Server.BasePath,
	})
	if cfg.Trigger.Secret == "" {
		logger.Warn("no trigger secret configured; the discovery endpoint rejects every request")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     router.Handler(ctx),
		ReadTimeout: 15 * time.Second,
		// Triggered runs hold the response open for the whole run.
		WriteTimeout: cfg.Trigger.MaxDuration + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", addr), slog.String("base_path", cfg.Server.BasePath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// reloadLoggingOnHUP re-reads the logging section of the config file on
// SIGHUP and applies it without a restart.
func reloadLoggingOnHUP(ctx context.Context, path string, mgr *logging.Manager, logger *slog.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			cfg, err := config.Load(path)
			if err != nil {
				logger.Error("reloading config", "path", path, "error", err)
				continue
			}
			mgr.Reconfigure(cfg.Logging)
			logger.Info("logging reconfigured", "config", cfg.Logging.String())
		}
	}
}
