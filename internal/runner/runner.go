// Package runner coordinates discovery runs: one at a time across
// processes, each ending in a durable snapshot and a refreshed store.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/sydlexius/bassline/internal/discovery"
	"github.com/sydlexius/bassline/internal/snapshot"
)

// ErrRunInProgress is returned when another run holds the lock.
var ErrRunInProgress = errors.New("discovery run already in progress")

// Pipeline produces a discovery result.
type Pipeline interface {
	Run(ctx context.Context, sink discovery.Sink) (*discovery.Result, error)
}

// Runner executes the pipeline and persists its output.
type Runner struct {
	pipeline Pipeline
	path     string
	store    *snapshot.Store
	metrics  *discovery.Metrics
	logger   *slog.Logger
	lock     *flock.Flock
	running  atomic.Bool
	now      func() time.Time
}

// New creates a runner writing to path. store and metrics may be nil.
func New(pipeline Pipeline, path string, store *snapshot.Store, metrics *discovery.Metrics, logger *slog.Logger) *Runner {
	return &Runner{
		pipeline: pipeline,
		path:     path,
		store:    store,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "runner")),
		lock:     flock.New(LockPath(path)),
		now:      time.Now,
	}
}

// LockPath returns the lock file guarding runs that write path.
func LockPath(path string) string {
	return path + ".lock"
}

// SnapshotPath returns the file this runner writes.
func (r *Runner) SnapshotPath() string {
	return r.path
}

// Run executes one discovery pass. The run id is returned in every case so
// callers can correlate logs. On error no snapshot is written and the store
// keeps its previous contents.
func (r *Runner) Run(ctx context.Context, sink discovery.Sink) (string, *discovery.Result, error) {
	id := uuid.NewString()
	logger := r.logger.With(slog.String("run_id", id))

	if !r.running.CompareAndSwap(false, true) {
		return id, nil, ErrRunInProgress
	}
	defer r.running.Store(false)

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil { //nolint:gosec // G301: data directory
		return id, nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	locked, err := r.lock.TryLock()
	if err != nil {
		return id, nil, fmt.Errorf("acquiring run lock: %w", err)
	}
	if !locked {
		return id, nil, ErrRunInProgress
	}
	defer func() {
		if err := r.lock.Unlock(); err != nil {
			logger.Warn("releasing run lock", "error", err)
		}
	}()

	start := r.now()
	logger.Info("discovery run started", "snapshot", r.path)

	res, err := r.pipeline.Run(ctx, sink)
	if err == nil {
		err = snapshot.Write(r.path, res)
	}
	elapsed := r.now().Sub(start)
	r.metrics.RunFinished(elapsed, res, err)
	if err != nil {
		logger.Error("discovery run failed", "error", err, "duration", elapsed.String())
		return id, nil, err
	}

	if r.store != nil {
		r.store.Replace(res)
	}
	logger.Info("discovery run complete",
		"scanned", res.TotalScanned,
		"matched", res.TotalMatched,
		"duration", elapsed.String(),
	)
	return id, res, nil
}
