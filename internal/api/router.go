// Package api serves the discovery snapshot and the run trigger over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sydlexius/bassline/internal/api/middleware"
	"github.com/sydlexius/bassline/internal/discovery"
	"github.com/sydlexius/bassline/internal/provider/deezer"
	"github.com/sydlexius/bassline/internal/snapshot"
)

// Runner starts a discovery run.
type Runner interface {
	Run(ctx context.Context, sink discovery.Sink) (string, *discovery.Result, error)
}

// Catalog is the live Deezer lookup surface used by the read API.
type Catalog interface {
	Artist(ctx context.Context, id int) (*deezer.Artist, error)
	TopTracks(ctx context.Context, id, limit int) ([]deezer.Track, error)
	Albums(ctx context.Context, id, limit int) ([]deezer.Album, error)
	Related(ctx context.Context, id, limit int) ([]deezer.Artist, error)
	SearchArtists(ctx context.Context, q string, limit int) ([]deezer.Artist, error)
	SearchTracks(ctx context.Context, q string, limit int) ([]deezer.Track, error)
}

// TriggerSettings secures and bounds the run trigger.
type TriggerSettings struct {
	Secret        string
	MaxDuration   time.Duration
	RatePerMinute int
}

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	Runner   Runner
	Store    *snapshot.Store
	Catalog  Catalog
	Trigger  TriggerSettings
	Metrics  http.Handler
	Logger   *slog.Logger
	BasePath string
}

// Router sets up all HTTP routes for the application.
type Router struct {
	runner   Runner
	store    *snapshot.Store
	catalog  Catalog
	trigger  TriggerSettings
	metrics  http.Handler
	logger   *slog.Logger
	basePath string
}

// NewRouter creates a new Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	if deps.Trigger.MaxDuration <= 0 {
		deps.Trigger.MaxDuration = 5 * time.Minute
	}
	return &Router{
		runner:   deps.Runner,
		store:    deps.Store,
		catalog:  deps.Catalog,
		trigger:  deps.Trigger,
		metrics:  deps.Metrics,
		logger:   deps.Logger.With(slog.String("component", "api")),
		basePath: deps.BasePath,
	}
}

// Handler returns the fully configured HTTP handler with middleware applied.
// ctx bounds background work owned by the middleware.
func (r *Router) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	bp := r.basePath

	mux.HandleFunc("GET "+bp+"/api/v1/health", r.handleHealth)

	// Snapshot reads
	mux.HandleFunc("GET "+bp+"/api/v1/artists", r.handleListArtists)
	mux.HandleFunc("GET "+bp+"/api/v1/genres", r.handleGenres)
	mux.HandleFunc("GET "+bp+"/api/v1/dataset", r.handleDataset)

	// Live catalog reads
	mux.HandleFunc("GET "+bp+"/api/v1/artists/{id}", r.handleGetArtist)
	mux.HandleFunc("GET "+bp+"/api/v1/search", r.handleSearch)

	// Run trigger: rate limit first, then the secret gate, then the run.
	limiter := middleware.PerMinute(ctx, r.trigger.RatePerMinute)
	trigger := limiter.Middleware(middleware.RequireSecret(r.trigger.Secret)(http.HandlerFunc(r.handleDiscover)))
	mux.Handle("GET "+bp+"/api/v1/cron/discover", trigger)
	mux.Handle("POST "+bp+"/api/v1/cron/discover", trigger)

	if r.metrics != nil {
		mux.Handle("GET "+bp+"/metrics", r.metrics)
	}

	return middleware.Logging(r.logger)(middleware.SecurityHeaders(mux))
}
