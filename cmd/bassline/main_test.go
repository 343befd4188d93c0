package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sydlexius/bassline/internal/discovery"
	"github.com/sydlexius/bassline/internal/snapshot"
)

const browseBody = `{
  "artist-count": 2,
  "artist-offset": 0,
  "artists": [
    {"id": "mb-1", "name": "Test Artist One", "type": "Person"},
    {"id": "mb-2", "name": "Test Character", "type": "Character"}
  ]
}`

const searchBody = `{"data": [
  {"id": 1001, "name": "Test Artist One", "nb_fan": 50000, "nb_album": 3, "picture_medium": "https://img.example/1.jpg"}
], "total": 1}`

type catalogServers struct {
	mb, dz     *httptest.Server
	mbHits     atomic.Int32
	dzSearches atomic.Int32
}

func newCatalogServers(t *testing.T, mbStatus int) *catalogServers {
	t.Helper()
	cs := &catalogServers{}
	cs.mb = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mbHits.Add(1)
		if mbStatus != http.StatusOK {
			w.WriteHeader(mbStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(browseBody))
	}))
	t.Cleanup(cs.mb.Close)

	cs.dz = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search/artist" {
			cs.dzSearches.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	}))
	t.Cleanup(cs.dz.Close)
	return cs
}

func writeConfig(t *testing.T, cs *catalogServers, snapshotPath string) string {
	t.Helper()
	cfg := fmt.Sprintf(`discovery:
  snapshot_path: %s
  page_delay: 0s
  retry_backoff: 1ms
  search_delay: 0s
catalog:
  musicbrainz_url: %s
  deezer_url: %s
logging:
  level: error
`, snapshotPath, cs.mb.URL, cs.dz.URL)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDiscoverCommand_WritesSnapshot(t *testing.T) {
	cs := newCatalogServers(t, http.StatusOK)
	snap := filepath.Join(t.TempDir(), "data", "sa-artists.json")
	cfgPath := writeConfig(t, cs, snap)

	out, err := execute(t, "--config", cfgPath, "discover", "--top", "5")
	if err != nil {
		t.Fatalf("discover: %v\n%s", err, out)
	}

	for _, want := range []string{
		"[1/3] Fetching SA artists from MusicBrainz...",
		"  Filtered to 1 potential performers",
		"Pipeline complete: 1 unique SA artists",
		"Test Artist One",
		"50,000",
		"Other",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if n := cs.dzSearches.Load(); n != 1 {
		t.Errorf("deezer searches = %d, want 1", n)
	}

	res, err := snapshot.Load(snap)
	if err != nil {
		t.Fatalf("loading snapshot: %v", err)
	}
	if len(res.Artists) != 1 || res.Artists[0].CatalogID != 1001 || res.Artists[0].Genre != discovery.GenreOther {
		t.Errorf("snapshot artists = %+v", res.Artists)
	}
}

func TestDiscoverCommand_FailureWritesNothing(t *testing.T) {
	cs := newCatalogServers(t, http.StatusInternalServerError)
	snap := filepath.Join(t.TempDir(), "sa-artists.json")
	cfgPath := writeConfig(t, cs, snap)

	_, err := execute(t, "--config", cfgPath, "discover")
	if err == nil {
		t.Fatal("expected discover to fail")
	}
	if _, statErr := os.Stat(snap); !os.IsNotExist(statErr) {
		t.Errorf("snapshot exists after failed run: %v", statErr)
	}
	if cs.dzSearches.Load() != 0 {
		t.Errorf("deezer searched %d times after crawl failure", cs.dzSearches.Load())
	}
}

func TestDiscoverCommand_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("discovery:\n  page_size: 500\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "--config", path, "discover")
	if err == nil || !strings.Contains(err.Error(), "page_size") {
		t.Errorf("err = %v, want page_size validation error", err)
	}
}

func TestRun_InterruptedDiscover(t *testing.T) {
	cs := newCatalogServers(t, http.StatusOK)
	snap := filepath.Join(t.TempDir(), "sa-artists.json")
	cfgPath := writeConfig(t, cs, snap)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	err := run(ctx, []string{"--config", cfgPath, "discover"}, &out, &errOut)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if strings.Contains(errOut.String(), "error: discovery run") {
		t.Errorf("stderr = %q, want no error line for an interrupt", errOut.String())
	}
	if _, statErr := os.Stat(snap); !os.IsNotExist(statErr) {
		t.Errorf("snapshot exists after interrupted run: %v", statErr)
	}
	if cs.dzSearches.Load() != 0 {
		t.Errorf("deezer searched %d times after interrupt", cs.dzSearches.Load())
	}
}

func TestRun_ReportsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("discovery:\n  page_size: 500\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	if err := run(context.Background(), []string{"--config", path, "discover"}, &out, &errOut); err == nil {
		t.Fatal("expected an error")
	}
	if !strings.HasPrefix(errOut.String(), "error: loading config:") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "bassline ") {
		t.Errorf("output = %q", out)
	}
}

func TestRenderGenreHistogram(t *testing.T) {
	got := renderGenreHistogram([]snapshot.GenreCount{
		{Genre: "Amapiano", Count: 4},
		{Genre: "House", Count: 2},
		{Genre: "Other", Count: 1},
	}, false)

	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != 4 || lines[0] != "Genres" {
		t.Fatalf("histogram = %q", got)
	}
	if want := "  Amapiano " + strings.Repeat("█", histogramWidth) + " 4"; lines[1] != want {
		t.Errorf("line 1 = %q, want %q", lines[1], want)
	}
	if want := "  House    " + strings.Repeat("█", histogramWidth/2) + " 2"; lines[2] != want {
		t.Errorf("line 2 = %q, want %q", lines[2], want)
	}
	if renderGenreHistogram(nil, false) != "" {
		t.Error("empty histogram should render nothing")
	}
}

func TestRenderTopArtistsLimit(t *testing.T) {
	artists := []discovery.DiscoveredArtist{
		{Name: "First", Genre: "House", FanCount: 1_234_567},
		{Name: "Second", Genre: "Amapiano", FanCount: 10},
	}
	got := renderTopArtists(artists, 1, false)
	if !strings.Contains(got, "First") || !strings.Contains(got, "1,234,567") {
		t.Errorf("table = %s", got)
	}
	if strings.Contains(got, "Second") {
		t.Errorf("table exceeds limit:\n%s", got)
	}
}
