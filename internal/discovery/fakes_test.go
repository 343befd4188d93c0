package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/sydlexius/bassline/internal/provider"
)

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBrowser serves a fixed list of records in pages. failures maps an
// offset to the number of times that page should fail before succeeding.
type fakeBrowser struct {
	mu       sync.Mutex
	total    int
	records  []provider.ArtistSearchResult
	failures map[int]int
	offsets  []int
	// retryAfter is reported on every failure when set.
	retryAfter time.Duration
}

func newFakeBrowser(n int) *fakeBrowser {
	b := &fakeBrowser{total: n, failures: map[int]int{}}
	for i := range n {
		b.records = append(b.records, provider.ArtistSearchResult{
			ProviderID: fmt.Sprintf("mbid-%03d", i),
			Name:       fmt.Sprintf("Artist %d", i),
			Type:       "Person",
		})
	}
	return b
}

func (b *fakeBrowser) BrowseArea(_ context.Context, _ string, limit, offset int) (*provider.BrowsePage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offsets = append(b.offsets, offset)
	if b.failures[offset] > 0 {
		b.failures[offset]--
		return nil, &provider.ErrProviderUnavailable{Provider: provider.NameMusicBrainz, Cause: errBoom, RetryAfter: b.retryAfter}
	}
	end := min(offset+limit, len(b.records))
	var page []provider.ArtistSearchResult
	if offset < end {
		page = b.records[offset:end]
	}
	return &provider.BrowsePage{Total: b.total, Offset: offset, Artists: page}, nil
}

func (b *fakeBrowser) requests() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int(nil), b.offsets...)
}

// fakeSearcher returns canned results per query name.
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]provider.ArtistSearchResult
	fail    map[string]bool
	queries []string
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		results: map[string][]provider.ArtistSearchResult{},
		fail:    map[string]bool{},
	}
}

func (s *fakeSearcher) add(query string, id int, name string, fans, albums int) {
	s.results[query] = append(s.results[query], provider.ArtistSearchResult{
		ProviderID: strconv.Itoa(id),
		Name:       name,
		Fans:       fans,
		Albums:     albums,
		Source:     string(provider.NameDeezer),
	})
}

func (s *fakeSearcher) SearchArtist(_ context.Context, name string, _ int) ([]provider.ArtistSearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, name)
	if s.fail[name] {
		return nil, errBoom
	}
	return s.results[name], nil
}

func (s *fakeSearcher) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}
