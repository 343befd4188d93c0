package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sydlexius/bassline/internal/provider"
)

// SouthAfricaAreaID is the MusicBrainz area MBID for South Africa.
const SouthAfricaAreaID = "50cc7852-862e-30ae-aa82-385fe7135b7f"

const (
	crawlReportEvery = 200
	matchReportEvery = 100

	// DefaultMaxRecords keeps the matching phase of a default run, paced at
	// the default search delay, to half of a five minute trigger deadline.
	DefaultMaxRecords = 750
)

// namedCatalog is implemented by provider adapters.
type namedCatalog interface {
	Name() provider.ProviderName
}

// displayName labels a catalog in progress lines, falling back when the
// catalog does not name itself.
func displayName(catalog any, fallback provider.ProviderName) string {
	if n, ok := catalog.(namedCatalog); ok {
		return n.Name().DisplayName()
	}
	return fallback.DisplayName()
}

// Options tunes a pipeline run.
type Options struct {
	AreaID       string
	PageSize     int
	PageDelay    time.Duration
	RetryBackoff time.Duration
	SearchLimit  int
	SearchDelay  time.Duration
	// MaxRecords caps how many performers are matched. Zero means no cap.
	MaxRecords int
}

// DefaultOptions returns the settings used against the public catalogs.
func DefaultOptions() Options {
	return Options{
		AreaID:       SouthAfricaAreaID,
		PageSize:     100,
		PageDelay:    1200 * time.Millisecond,
		RetryBackoff: 5 * time.Second,
		SearchLimit:  5,
		SearchDelay:  200 * time.Millisecond,
		MaxRecords:   DefaultMaxRecords,
	}
}

// Pipeline runs crawl, match, rank in sequence.
type Pipeline struct {
	crawler    *Crawler
	matcher    *Matcher
	maxRecords int
	sourceName string
	targetName string
	logger     *slog.Logger
	now        func() time.Time
}

// NewPipeline wires a pipeline from its two catalogs. metrics may be nil.
func NewPipeline(browser AreaBrowser, searcher ArtistSearcher, opts Options, logger *slog.Logger, metrics *Metrics) *Pipeline {
	if opts.AreaID == "" {
		opts.AreaID = SouthAfricaAreaID
	}
	return &Pipeline{
		crawler:    NewCrawler(browser, opts.AreaID, opts.PageSize, opts.PageDelay, opts.RetryBackoff, logger, metrics),
		matcher:    NewMatcher(searcher, opts.SearchLimit, opts.SearchDelay, logger, metrics),
		maxRecords: max(opts.MaxRecords, 0),
		sourceName: displayName(browser, provider.NameMusicBrainz),
		targetName: displayName(searcher, provider.NameDeezer),
		logger:     logger.With(slog.String("component", "pipeline")),
		now:        time.Now,
	}
}

// SetClock replaces the clock used for GeneratedAt.
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
}

// Run executes one full discovery pass and reports progress to sink. It
// returns an error only when the run as a whole cannot produce a result.
func (p *Pipeline) Run(ctx context.Context, sink Sink) (*Result, error) {
	sink.emit("[1/3] Fetching SA artists from " + p.sourceName + "...")

	lastReported := 0
	raw, err := p.crawler.Crawl(ctx, func(fetched, total int) {
		if fetched-lastReported >= crawlReportEvery || fetched >= total {
			sink.emit(fmt.Sprintf("  %s: %d/%d fetched", p.sourceName, fetched, total))
			lastReported = fetched
		}
	})
	if err != nil {
		return nil, fmt.Errorf("crawling source catalog: %w", err)
	}
	if lastReported != len(raw) {
		// Skipped pages keep the count below the total.
		sink.emit(fmt.Sprintf("  %s: %d fetched (some pages skipped)", p.sourceName, len(raw)))
	}

	performers := Performers(raw)
	if p.maxRecords > 0 && len(performers) > p.maxRecords {
		performers = performers[:p.maxRecords]
	}
	sink.emit(fmt.Sprintf("  Filtered to %d potential performers", len(performers)))
	p.logger.Info("crawl complete",
		slog.Int("fetched", len(raw)),
		slog.Int("performers", len(performers)))

	sink.emit("[2/3] Matching to " + p.targetName + "...")
	var (
		matches []DiscoveredArtist
		failed  int
	)
	for i, src := range performers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("matching: %w", err)
		}
		m, err := p.matcher.Match(ctx, src)
		switch {
		case err != nil:
			failed++
		case m != nil:
			matches = append(matches, *m)
		}
		done := i + 1
		if done%matchReportEvery == 0 || done == len(performers) {
			sink.emit(fmt.Sprintf("  %s: %d/%d processed, %d matched", p.targetName, done, len(performers), len(matches)))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("matching: %w", err)
	}
	if failed > 0 {
		p.logger.Warn("some searches failed", slog.Int("failed", failed))
	}

	sink.emit("[3/3] Deduplicating and sorting...")
	ranked := Rank(matches)

	res := &Result{
		GeneratedAt:  p.now().UTC(),
		TotalScanned: len(performers),
		TotalMatched: len(ranked),
		Artists:      ranked,
	}
	sink.emit(fmt.Sprintf("Pipeline complete: %d unique SA artists", len(ranked)))
	return res, nil
}
