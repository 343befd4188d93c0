package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/sydlexius/bassline/internal/provider"
)

// AcceptThreshold is the minimum score for a candidate to be accepted.
const AcceptThreshold = 40

// ArtistSearcher searches the secondary catalog by artist name.
type ArtistSearcher interface {
	SearchArtist(ctx context.Context, name string, limit int) ([]provider.ArtistSearchResult, error)
}

// Matcher links source artists to secondary-catalog profiles.
type Matcher struct {
	searcher ArtistSearcher
	limit    int
	delay    time.Duration
	logger   *slog.Logger
	metrics  *Metrics
}

// NewMatcher creates a matcher that asks for limit results per query and
// pauses delay after every query.
func NewMatcher(searcher ArtistSearcher, limit int, delay time.Duration, logger *slog.Logger, metrics *Metrics) *Matcher {
	if limit <= 0 {
		limit = 5
	}
	return &Matcher{
		searcher: searcher,
		limit:    limit,
		delay:    delay,
		logger:   logger.With(slog.String("component", "matcher")),
		metrics:  metrics,
	}
}

// Match searches for src and returns the accepted match, or nil when no
// candidate reaches AcceptThreshold. A non-nil error means the query itself
// failed; callers treat that the same as no match.
func (m *Matcher) Match(ctx context.Context, src SourceArtist) (*DiscoveredArtist, error) {
	results, err := m.searcher.SearchArtist(ctx, src.Name, m.limit)
	_ = sleepContext(ctx, m.delay)
	if err != nil {
		m.metrics.search(outcomeFailed)
		m.logger.Debug("search failed", slog.String("name", src.Name), slog.Any("error", err))
		return nil, fmt.Errorf("searching %q: %w", src.Name, err)
	}

	best, score, ok := BestCandidate(src.Name, toCandidates(results))
	if !ok || !Accepted(score) {
		m.metrics.search(outcomeUnmatched)
		return nil, nil
	}

	m.metrics.search(outcomeMatched)
	return &DiscoveredArtist{
		CatalogID:  best.CatalogID,
		Name:       best.Name,
		SourceID:   src.SourceID,
		SourceName: src.Name,
		Kind:       src.Kind,
		Genre:      Classify(src.Name, best.Name, src.Disambiguation),
		FanCount:   best.FanCount,
		AlbumCount: best.AlbumCount,
		ImageURL:   best.ImageURL,
		MatchScore: score,
	}, nil
}

// Accepted reports whether score clears the acceptance threshold.
func Accepted(score int) bool {
	return score >= AcceptThreshold
}

// BestCandidate returns the highest-scoring candidate. Ties keep the
// earliest candidate, and a zero score never wins.
func BestCandidate(sourceName string, candidates []MatchCandidate) (MatchCandidate, int, bool) {
	var (
		best      MatchCandidate
		bestScore int
		found     bool
	)
	for _, c := range candidates {
		if s := Score(sourceName, c); s > bestScore {
			best, bestScore, found = c, s, true
		}
	}
	return best, bestScore, found
}

// Score rates how likely c is the same artist as sourceName.
func Score(sourceName string, c MatchCandidate) int {
	return nameScore(Normalize(sourceName), Normalize(c.Name)) +
		popularityScore(c.FanCount) +
		depthScore(c.AlbumCount)
}

// nameScore compares two normalized names. Empty names never match.
func nameScore(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	switch {
	case a == b:
		return 50
	case strings.Contains(a, b) || strings.Contains(b, a):
		return 30
	case min(len(a), len(b)) > 3 && firstToken(a) == firstToken(b):
		return 15
	}
	return 0
}

func firstToken(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

func popularityScore(fans int) int {
	switch {
	case fans >= 100_000:
		return 20
	case fans >= 10_000:
		return 15
	case fans >= 1_000:
		return 10
	case fans >= 50:
		return 5
	}
	return 0
}

func depthScore(albums int) int {
	switch {
	case albums >= 5:
		return 10
	case albums >= 1:
		return 5
	}
	return 0
}

// toCandidates converts search results, dropping any without a numeric id.
func toCandidates(results []provider.ArtistSearchResult) []MatchCandidate {
	out := make([]MatchCandidate, 0, len(results))
	for _, r := range results {
		id, err := strconv.Atoi(r.ProviderID)
		if err != nil {
			continue
		}
		out = append(out, MatchCandidate{
			CatalogID:  id,
			Name:       r.Name,
			FanCount:   max(r.Fans, 0),
			AlbumCount: max(r.Albums, 0),
			ImageURL:   r.ImageURL,
		})
	}
	return out
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
