package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/sydlexius/bassline/internal/discovery"
	"github.com/sydlexius/bassline/internal/provider"
	"github.com/sydlexius/bassline/internal/provider/deezer"
	"github.com/sydlexius/bassline/internal/snapshot"
)

const testSecret = "s3cret-value"

var errCatalog = errors.New("catalog down")

// fakeRunner records calls and replays a canned outcome.
type fakeRunner struct {
	mu    sync.Mutex
	calls int
	lines []string
	res   *discovery.Result
	err   error
	ctx   context.Context
}

func (f *fakeRunner) Run(ctx context.Context, sink discovery.Sink) (string, *discovery.Result, error) {
	f.mu.Lock()
	f.calls++
	f.ctx = ctx
	f.mu.Unlock()
	for _, l := range f.lines {
		sink(l)
	}
	return "run-1", f.res, f.err
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeCatalog serves canned Deezer objects and counts every request.
type fakeCatalog struct {
	mu       sync.Mutex
	calls    int
	artists  map[int]deezer.Artist
	related  []deezer.Artist
	failRel  bool
	failTop  bool
	failFind bool
}

func (f *fakeCatalog) hit() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeCatalog) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeCatalog) Artist(_ context.Context, id int) (*deezer.Artist, error) {
	f.hit()
	a, ok := f.artists[id]
	if !ok {
		return nil, &provider.ErrNotFound{Provider: provider.NameDeezer, ID: strconv.Itoa(id)}
	}
	return &a, nil
}

func (f *fakeCatalog) TopTracks(_ context.Context, id, _ int) ([]deezer.Track, error) {
	f.hit()
	if f.failTop {
		return nil, errCatalog
	}
	return []deezer.Track{{ID: id * 10, Title: "Track"}}, nil
}

func (f *fakeCatalog) Albums(context.Context, int, int) ([]deezer.Album, error) {
	f.hit()
	return nil, nil
}

func (f *fakeCatalog) Related(context.Context, int, int) ([]deezer.Artist, error) {
	f.hit()
	if f.failRel {
		return nil, errCatalog
	}
	return f.related, nil
}

func (f *fakeCatalog) SearchArtists(_ context.Context, q string, _ int) ([]deezer.Artist, error) {
	f.hit()
	if f.failFind {
		return nil, errCatalog
	}
	return []deezer.Artist{{ID: 1, Name: q}}, nil
}

func (f *fakeCatalog) SearchTracks(_ context.Context, q string, _ int) ([]deezer.Track, error) {
	f.hit()
	if f.failFind {
		return nil, errCatalog
	}
	return []deezer.Track{{ID: 2, Title: q}}, nil
}

func sampleResult() *discovery.Result {
	return &discovery.Result{
		GeneratedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		TotalScanned: 10,
		TotalMatched: 3,
		Artists: []discovery.DiscoveredArtist{
			{CatalogID: 1, Name: "Black Coffee", Genre: "House", FanCount: 900},
			{CatalogID: 2, Name: "Kabza De Small", Genre: "Amapiano", FanCount: 800},
			{CatalogID: 3, Name: "DJ Maphorisa", Genre: "Amapiano", FanCount: 700},
		},
	}
}

type testEnv struct {
	handler http.Handler
	runner  *fakeRunner
	catalog *fakeCatalog
	store   *snapshot.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		runner:  &fakeRunner{res: sampleResult()},
		catalog: &fakeCatalog{artists: map[int]deezer.Artist{}},
		store:   snapshot.NewStore(sampleResult()),
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := NewRouter(RouterDeps{
		Runner:  env.runner,
		Store:   env.store,
		Catalog: env.catalog,
		Trigger: TriggerSettings{Secret: testSecret, MaxDuration: time.Minute, RatePerMinute: 100},
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "# metrics\n")
		}),
		Logger: discardLogger(),
	})
	env.handler = r.Handler(ctx)
	return env
}

func (e *testEnv) do(t *testing.T, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func serveReq(target string) *http.Request {
	return httptest.NewRequest(http.MethodGet, target, nil)
}
