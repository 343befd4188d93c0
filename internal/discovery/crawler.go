package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/sydlexius/bassline/internal/provider"
)

// ErrCatalogUnreachable is returned when the first browse page cannot be
// fetched even after a retry, so the size of the catalog is unknown.
var ErrCatalogUnreachable = errors.New("source catalog unreachable")

// maxRetryAfter bounds how long a Retry-After hint can stall the crawl.
const maxRetryAfter = 30 * time.Second

// AreaBrowser pages through the artists of one area in the source catalog.
type AreaBrowser interface {
	BrowseArea(ctx context.Context, areaID string, limit, offset int) (*provider.BrowsePage, error)
}

// CrawlProgress is called after every successful page with the running
// record count and the catalog total.
type CrawlProgress func(fetched, total int)

// Crawler enumerates every artist in an area.
type Crawler struct {
	browser      AreaBrowser
	areaID       string
	pageSize     int
	pageDelay    time.Duration
	retryBackoff time.Duration
	logger       *slog.Logger
	metrics      *Metrics
}

// NewCrawler creates a crawler. A zero or negative pageSize means 100.
func NewCrawler(browser AreaBrowser, areaID string, pageSize int, pageDelay, retryBackoff time.Duration, logger *slog.Logger, metrics *Metrics) *Crawler {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Crawler{
		browser:      browser,
		areaID:       areaID,
		pageSize:     pageSize,
		pageDelay:    pageDelay,
		retryBackoff: retryBackoff,
		logger:       logger.With(slog.String("component", "crawler")),
		metrics:      metrics,
	}
}

// Crawl fetches all pages and returns the records in catalog order. A page
// that fails twice is skipped; the run continues with the next offset.
func (c *Crawler) Crawl(ctx context.Context, progress CrawlProgress) ([]SourceArtist, error) {
	var (
		artists []SourceArtist
		total   = -1
		offset  = 0
	)

	for total < 0 || (offset < total && len(artists) < total) {
		if offset > 0 {
			if err := sleepContext(ctx, c.pageDelay); err != nil {
				return nil, err
			}
		}

		page, err := c.fetchPage(ctx, offset)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if total < 0 {
				return nil, fmt.Errorf("%w: %w", ErrCatalogUnreachable, err)
			}
			c.metrics.page(outcomeSkipped)
			c.logger.Warn("skipping browse page",
				slog.Int("offset", offset),
				slog.Any("error", err))
			offset += c.pageSize
			continue
		}

		if total < 0 {
			total = page.Total
		}
		for _, r := range page.Artists {
			artists = append(artists, toSourceArtist(r))
		}
		if progress != nil {
			progress(len(artists), total)
		}
		offset += c.pageSize
	}

	return artists, nil
}

// fetchPage requests one page, retrying once after the backoff. A catalog
// asking for a longer pause through Retry-After gets it, up to maxRetryAfter.
func (c *Crawler) fetchPage(ctx context.Context, offset int) (*provider.BrowsePage, error) {
	wait := max(c.retryBackoff, time.Millisecond)
	backoff := retry.WithMaxRetries(1, retry.BackoffFunc(func() (time.Duration, bool) {
		return wait, false
	}))

	var (
		page     *provider.BrowsePage
		attempts int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		p, err := c.browser.BrowseArea(ctx, c.areaID, c.pageSize, offset)
		if err != nil {
			wait = retryWait(c.retryBackoff, err)
			c.logger.Debug("browse page failed",
				slog.Int("offset", offset),
				slog.Int("attempt", attempts),
				slog.Duration("retry_in", wait),
				slog.Any("error", err))
			return retry.RetryableError(err)
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if attempts > 1 {
		c.metrics.page(outcomeRetried)
	} else {
		c.metrics.page(outcomeOK)
	}
	return page, nil
}

// retryWait picks the pause before retrying after err.
func retryWait(backoff time.Duration, err error) time.Duration {
	wait := max(backoff, time.Millisecond)
	var unavailable *provider.ErrProviderUnavailable
	if errors.As(err, &unavailable) {
		wait = max(wait, min(unavailable.RetryAfter, maxRetryAfter))
	}
	return wait
}

// Performers drops fictional characters, keeping order.
func Performers(artists []SourceArtist) []SourceArtist {
	out := make([]SourceArtist, 0, len(artists))
	for _, a := range artists {
		if a.Kind.IsPerformer() {
			out = append(out, a)
		}
	}
	return out
}

func toSourceArtist(r provider.ArtistSearchResult) SourceArtist {
	kind := Kind(r.Type)
	if kind == "" {
		kind = KindUnknown
	}
	return SourceArtist{
		SourceID:       r.ProviderID,
		Name:           r.Name,
		Kind:           kind,
		Disambiguation: r.Disambiguation,
		BeginYear:      r.BeginYear,
	}
}
