package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"testing"
	"time"

	"github.com/sydlexius/bassline/internal/runner"
)

type triggerResponse struct {
	Success      bool     `json:"success"`
	RunID        string   `json:"runId"`
	TotalScanned int      `json:"totalScanned"`
	TotalMatched int      `json:"totalMatched"`
	GeneratedAt  string   `json:"generatedAt"`
	Error        string   `json:"error"`
	Logs         []string `json:"logs"`
}

func decodeTrigger(t *testing.T, body []byte) triggerResponse {
	t.Helper()
	var resp triggerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decoding %s: %v", body, err)
	}
	return resp
}

func TestDiscover_Unauthorized(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header http.Header
	}{
		{"missing", "/api/v1/cron/discover", nil},
		{"wrong query", "/api/v1/cron/discover?secret=nope", nil},
		{"prefix", "/api/v1/cron/discover?secret=" + testSecret[:4], nil},
		{"wrong bearer", "/api/v1/cron/discover", http.Header{"Authorization": {"Bearer nope"}}},
		{"basic scheme", "/api/v1/cron/discover", http.Header{"Authorization": {"Basic " + testSecret}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.do(t, http.MethodPost, tt.target, tt.header)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
			if got := w.Body.String(); got != "{\"error\":\"unauthorized\"}\n" {
				t.Errorf("body = %q", got)
			}
			if env.runner.count() != 0 || env.catalog.count() != 0 {
				t.Errorf("runs = %d, catalog calls = %d; want no work", env.runner.count(), env.catalog.count())
			}
		})
	}
}

func TestDiscover_Success(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodGet} {
		t.Run(method, func(t *testing.T) {
			env := newTestEnv(t)
			env.runner.lines = []string{"[1/3] Fetching SA artists from MusicBrainz...", "Pipeline complete: 3 unique SA artists"}

			w := env.do(t, method, "/api/v1/cron/discover", http.Header{"Authorization": {"Bearer " + testSecret}})
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			resp := decodeTrigger(t, w.Body.Bytes())
			if !resp.Success || resp.RunID != "run-1" || resp.TotalScanned != 10 || resp.TotalMatched != 3 {
				t.Errorf("response = %+v", resp)
			}
			if resp.GeneratedAt != "2026-03-01T10:00:00Z" {
				t.Errorf("generatedAt = %q", resp.GeneratedAt)
			}
			if !slices.Equal(resp.Logs, env.runner.lines) {
				t.Errorf("logs = %v, want %v", resp.Logs, env.runner.lines)
			}
		})
	}
}

func TestDiscover_QuerySecret(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/v1/cron/discover?secret="+testSecret, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if env.runner.count() != 1 {
		t.Errorf("runs = %d, want 1", env.runner.count())
	}
}

func TestDiscover_RunBoundedByDeadline(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/v1/cron/discover?secret="+testSecret, nil)

	deadline, ok := env.runner.ctx.Deadline()
	if !ok {
		t.Fatal("run context has no deadline")
	}
	if until := time.Until(deadline); until > time.Minute {
		t.Errorf("deadline in %v, want at most 1m", until)
	}
}

func TestDiscover_Failure(t *testing.T) {
	env := newTestEnv(t)
	env.runner.res = nil
	env.runner.err = fmt.Errorf("crawling: %w", errors.New("catalog unreachable"))
	env.runner.lines = []string{"[1/3] Fetching SA artists from MusicBrainz..."}

	w := env.do(t, http.MethodPost, "/api/v1/cron/discover?secret="+testSecret, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	resp := decodeTrigger(t, w.Body.Bytes())
	if resp.Success || resp.RunID != "run-1" || resp.Error != "crawling: catalog unreachable" {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Logs) != 1 {
		t.Errorf("logs = %v, want the captured line", resp.Logs)
	}
}

func TestDiscover_RunInProgress(t *testing.T) {
	env := newTestEnv(t)
	env.runner.res = nil
	env.runner.err = runner.ErrRunInProgress

	w := env.do(t, http.MethodPost, "/api/v1/cron/discover?secret="+testSecret, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestDiscover_EmptySecretDisables(t *testing.T) {
	env := newTestEnv(t)
	r := NewRouter(RouterDeps{
		Runner:  env.runner,
		Store:   env.store,
		Catalog: env.catalog,
		Trigger: TriggerSettings{RatePerMinute: 10},
		Logger:  discardLogger(),
	})
	h := r.Handler(t.Context())

	for _, target := range []string{"/api/v1/cron/discover", "/api/v1/cron/discover?secret="} {
		w := serve(h, http.MethodPost, target)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", target, w.Code)
		}
	}
	if env.runner.count() != 0 {
		t.Errorf("runs = %d, want 0", env.runner.count())
	}
}

func TestDiscover_RateLimited(t *testing.T) {
	env := newTestEnv(t)
	r := NewRouter(RouterDeps{
		Runner:  env.runner,
		Store:   env.store,
		Catalog: env.catalog,
		Trigger: TriggerSettings{Secret: testSecret, RatePerMinute: 2},
		Logger:  discardLogger(),
	})
	h := r.Handler(t.Context())

	var codes []int
	for range 3 {
		codes = append(codes, serve(h, http.MethodPost, "/api/v1/cron/discover?secret=guess").Code)
	}
	want := []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}
	if !slices.Equal(codes, want) {
		t.Errorf("codes = %v, want %v", codes, want)
	}
}
