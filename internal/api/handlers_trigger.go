package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/sydlexius/bassline/internal/runner"
)

// runLog collects progress lines for the trigger response.
type runLog struct {
	mu     sync.Mutex
	lines  []string
	logger *slog.Logger
}

func (l *runLog) add(line string) {
	l.mu.Lock()
	l.lines = append(l.lines, line)
	l.mu.Unlock()
	l.logger.Info(line)
}

func (l *runLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// handleDiscover runs the discovery pipeline and reports its outcome. The
// secret check happens in middleware before this handler is reached.
// POST|GET /api/v1/cron/discover
func (r *Router) handleDiscover(w http.ResponseWriter, req *http.Request) {
	// A disconnecting caller must not abort a run that is writing the
	// snapshot; the run is bounded by its own deadline instead.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), r.trigger.MaxDuration)
	defer cancel()

	logs := &runLog{logger: r.logger.With(slog.String("source", "trigger"))}
	runID, res, err := r.runner.Run(ctx, logs.add)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, runner.ErrRunInProgress) {
			status = http.StatusConflict
		}
		r.logger.Error("triggered discovery failed", "run_id", runID, "error", err)
		writeJSON(w, status, map[string]any{
			"success": false,
			"runId":   runID,
			"error":   err.Error(),
			"logs":    logs.snapshot(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"runId":        runID,
		"totalScanned": res.TotalScanned,
		"totalMatched": res.TotalMatched,
		"generatedAt":  res.GeneratedAt.UTC().Format(time.RFC3339),
		"logs":         logs.snapshot(),
	})
}
