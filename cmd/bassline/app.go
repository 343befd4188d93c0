package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sydlexius/bassline/internal/config"
	"github.com/sydlexius/bassline/internal/discovery"
	"github.com/sydlexius/bassline/internal/provider"
	"github.com/sydlexius/bassline/internal/provider/deezer"
	"github.com/sydlexius/bassline/internal/provider/musicbrainz"
	"github.com/sydlexius/bassline/internal/runner"
	"github.com/sydlexius/bassline/internal/snapshot"
)

// app holds the components shared by serve and discover.
type app struct {
	registry *prometheus.Registry
	metrics  *discovery.Metrics
	deezer   *deezer.Adapter
	store    *snapshot.Store
	runner   *runner.Runner
}

func newApp(cfg *config.Config, logger *slog.Logger) *app {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := discovery.NewMetrics(registry)

	limiters := provider.NewRateLimiterMap()

	mb := musicbrainz.New(limiters, logger)
	if cfg.Catalog.MusicBrainzURL != "" {
		mb = musicbrainz.NewWithBaseURL(limiters, logger, cfg.Catalog.MusicBrainzURL)
	}
	mb.SetUserAgent(cfg.Catalog.UserAgent)

	dz := deezer.New(limiters, logger)
	if cfg.Catalog.DeezerURL != "" {
		dz = deezer.NewWithBaseURL(limiters, logger, cfg.Catalog.DeezerURL)
	}
	dz.SetCacheTTL(cfg.Catalog.CacheTTL)

	// An unreadable snapshot is replaced by the next successful run.
	store, err := snapshot.Open(cfg.Discovery.SnapshotPath)
	if err != nil {
		logger.Warn("starting with an empty dataset", "path", cfg.Discovery.SnapshotPath, "error", err)
		store = snapshot.NewStore(nil)
	}

	pipeline := discovery.NewPipeline(mb, dz, cfg.DiscoveryOptions(), logger, metrics)

	return &app{
		registry: registry,
		metrics:  metrics,
		deezer:   dz,
		store:    store,
		runner:   runner.New(pipeline, cfg.Discovery.SnapshotPath, store, metrics, logger),
	}
}
