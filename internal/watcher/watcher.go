// Package watcher reloads the snapshot when another process rewrites it.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Mode selects how the snapshot file is observed.
type Mode string

// Watch modes.
const (
	// ModeWatch uses fsnotify, falling back to polling when the directory
	// does not deliver events (network mounts, some container volumes).
	ModeWatch Mode = "watch"
	ModePoll  Mode = "poll"
	ModeOff   Mode = "off"
)

// ParseMode validates a configured mode. Empty means ModeWatch.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case "":
		return ModeWatch, nil
	case ModeWatch, ModePoll, ModeOff:
		return m, nil
	}
	return "", fmt.Errorf("invalid watch mode %q (want watch, poll or off)", s)
}

// Service watches one file and calls reload after it is created or
// rewritten. Bursts of events are coalesced by the debounce interval.
// Removing the file does not trigger a reload, so the last good data stays
// in memory.
type Service struct {
	path         string
	reload       func(ctx context.Context) error
	logger       *slog.Logger
	mode         Mode
	debounce     time.Duration
	pollInterval time.Duration
	probeTimeout time.Duration
}

// NewService creates a watcher for path.
func NewService(path string, mode Mode, reload func(ctx context.Context) error, logger *slog.Logger) *Service {
	return &Service{
		path:         path,
		reload:       reload,
		logger:       logger.With("component", "snapshot-watcher"),
		mode:         mode,
		debounce:     500 * time.Millisecond,
		pollInterval: 30 * time.Second,
		probeTimeout: 2 * time.Second,
	}
}

// SetDebounce overrides the default debounce interval (for testing).
func (s *Service) SetDebounce(d time.Duration) {
	s.debounce = d
}

// SetPollInterval overrides the default poll interval (for testing).
func (s *Service) SetPollInterval(d time.Duration) {
	s.pollInterval = d
}

// Start blocks until ctx is canceled.
func (s *Service) Start(ctx context.Context) {
	if s.mode == ModeOff {
		return
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: data directory
		s.logger.Error("snapshot directory not accessible", "dir", dir, "error", err)
		return
	}

	var w *fsnotify.Watcher
	if s.mode == ModeWatch {
		w = s.openWatcher(dir)
		if w != nil {
			defer w.Close() //nolint:errcheck
		}
	}

	// When fsnotify is unavailable, use nil channels (never receive) and poll.
	var (
		eventCh <-chan fsnotify.Event
		errCh   <-chan error
		pollCh  <-chan time.Time
	)
	if w != nil {
		eventCh = w.Events
		errCh = w.Errors
	} else {
		pollTicker := time.NewTicker(s.pollInterval)
		defer pollTicker.Stop()
		pollCh = pollTicker.C
	}
	lastMod := modTime(s.path)

	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	defer debounceTimer.Stop()

	s.logger.Info("snapshot watcher starting", "path", s.path, "fsnotify", w != nil)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("snapshot watcher stopping")
			return

		case ev, ok := <-eventCh:
			if !ok {
				return
			}
			if s.relevant(ev) {
				resetTimer(debounceTimer, s.debounce)
			}

		case err, ok := <-errCh:
			if !ok {
				return
			}
			s.logger.Error("fsnotify error", "error", err)

		case <-pollCh:
			if m := modTime(s.path); !m.IsZero() && !m.Equal(lastMod) {
				lastMod = m
				resetTimer(debounceTimer, s.debounce)
			}

		case <-debounceTimer.C:
			lastMod = modTime(s.path)
			if err := s.reload(ctx); err != nil {
				s.logger.Error("snapshot reload failed", "path", s.path, "error", err)
				continue
			}
			s.logger.Info("snapshot reloaded", "path", s.path)
		}
	}
}

func (s *Service) openWatcher(dir string) *fsnotify.Watcher {
	if !ProbeFSNotify(dir, s.probeTimeout) {
		s.logger.Warn("fsnotify not delivering events, polling instead", "dir", dir)
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("fsnotify unavailable, polling instead", "error", err)
		return nil
	}
	// Atomic replacement renames a temp file over the target, so the
	// directory is watched rather than the file itself.
	if err := w.Add(dir); err != nil {
		s.logger.Warn("failed to watch snapshot directory, polling instead", "dir", dir, "error", err)
		_ = w.Close()
		return nil
	}
	return w
}

func (s *Service) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return false
	}
	return filepath.Clean(ev.Name) == filepath.Clean(s.path)
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
