package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sydlexius/bassline/internal/provider"
	"github.com/sydlexius/bassline/internal/version"
)

const defaultBaseURL = "https://musicbrainz.org/ws/2"

// maxBrowseLimit is the largest page size the browse endpoint accepts.
const maxBrowseLimit = 100

// Adapter is a read-only client for the MusicBrainz web service.
type Adapter struct {
	client    *http.Client
	limiter   *provider.RateLimiterMap
	logger    *slog.Logger
	baseURL   string
	userAgent string
}

// New creates a MusicBrainz adapter with the default base URL.
func New(limiter *provider.RateLimiterMap, logger *slog.Logger) *Adapter {
	return NewWithBaseURL(limiter, logger, defaultBaseURL)
}

// NewWithBaseURL creates a MusicBrainz adapter with a custom base URL (for testing).
func NewWithBaseURL(limiter *provider.RateLimiterMap, logger *slog.Logger, baseURL string) *Adapter {
	return &Adapter{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter:   limiter,
		logger:    logger.With(slog.String("provider", "musicbrainz")),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: DefaultUserAgent(),
	}
}

// SetUserAgent overrides the client identifier sent with every request.
// MusicBrainz rejects anonymous clients, so empty values are ignored.
func (a *Adapter) SetUserAgent(ua string) {
	if ua = strings.TrimSpace(ua); ua != "" {
		a.userAgent = ua
	}
}

// Name returns the provider name.
func (a *Adapter) Name() provider.ProviderName { return provider.NameMusicBrainz }

// BrowseArea fetches one page of artists associated with the given area MBID.
func (a *Adapter) BrowseArea(ctx context.Context, areaID string, limit, offset int) (*provider.BrowsePage, error) {
	if areaID == "" {
		return nil, fmt.Errorf("area id is required")
	}
	if limit <= 0 || limit > maxBrowseLimit {
		limit = maxBrowseLimit
	}
	if offset < 0 {
		offset = 0
	}

	params := url.Values{
		"area":   {areaID},
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
		"fmt":    {"json"},
	}
	reqURL := a.baseURL + "/artist?" + params.Encode()

	body, err := a.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp BrowseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing browse response: %w", err)
	}

	page := &provider.BrowsePage{
		Total:   resp.ArtistCount,
		Offset:  resp.ArtistOffset,
		Artists: make([]provider.ArtistSearchResult, 0, len(resp.Artists)),
	}
	for i := range resp.Artists {
		page.Artists = append(page.Artists, mapArtist(&resp.Artists[i]))
	}

	a.logger.Debug("area browse completed",
		slog.String("area", areaID),
		slog.Int("offset", offset),
		slog.Int("returned", len(page.Artists)),
		slog.Int("total", page.Total))

	return page, nil
}

// doRequest executes an HTTP GET with rate limiting and standard headers.
func (a *Adapter) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if err := a.limiter.Wait(ctx, provider.NameMusicBrainz); err != nil {
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameMusicBrainz,
			Cause:    fmt.Errorf("rate limiter: %w", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "application/json")

	a.logger.Debug("requesting", slog.String("url", reqURL))

	resp, err := a.client.Do(req) //nolint:gosec // URL constructed from trusted base + configured area id
	if err != nil {
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameMusicBrainz,
			Cause:    err,
		}
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &provider.ErrNotFound{
			Provider: provider.NameMusicBrainz,
			ID:       reqURL,
		}
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &provider.ErrProviderUnavailable{
			Provider:   provider.NameMusicBrainz,
			Cause:      fmt.Errorf("HTTP %d", resp.StatusCode),
			RetryAfter: retryAfter(resp.Header.Get("Retry-After")),
		}
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameMusicBrainz,
			Cause:    fmt.Errorf("unexpected HTTP %d", resp.StatusCode),
		}
	}

	return io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
}

// mapArtist converts a MusicBrainz artist to the common result type.
// Artists without a type are reported as "Unknown".
func mapArtist(mb *MBArtist) provider.ArtistSearchResult {
	artistType := mb.Type
	if artistType == "" {
		artistType = "Unknown"
	}
	var beginYear string
	if len(mb.LifeSpan.Begin) >= 4 {
		beginYear = mb.LifeSpan.Begin[:4]
	}
	return provider.ArtistSearchResult{
		ProviderID:     mb.ID,
		Name:           mb.Name,
		SortName:       mb.SortName,
		Type:           artistType,
		Disambiguation: mb.Disambiguation,
		Country:        mb.Country,
		BeginYear:      beginYear,
		Source:         string(provider.NameMusicBrainz),
	}
}

// retryAfter parses a Retry-After header given in seconds, defaulting to 2s.
func retryAfter(h string) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 2 * time.Second
}

// DefaultUserAgent identifies the application to MusicBrainz as their
// usage policy requires.
func DefaultUserAgent() string {
	return fmt.Sprintf("Bassline/%s ( https://bassline.co.za )", version.Version)
}
