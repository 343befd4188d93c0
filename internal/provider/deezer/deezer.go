package deezer

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

	"github.com/patrickmn/go-cache"

	"github.com/sydlexius/bassline/internal/provider"
)

const (
	defaultBaseURL  = "https://api.deezer.com"
	defaultCacheTTL = time.Hour
)

// Adapter is a client for Deezer's public API. No authentication is
// required. SearchArtist always hits the network; the read-through lookups
// used by the HTTP API are cached for the configured TTL.
type Adapter struct {
	client  *http.Client
	limiter *provider.RateLimiterMap
	logger  *slog.Logger
	baseURL string
	cache   *cache.Cache
}

// New creates a Deezer adapter with the default base URL.
func New(limiter *provider.RateLimiterMap, logger *slog.Logger) *Adapter {
	return NewWithBaseURL(limiter, logger, defaultBaseURL)
}

// NewWithBaseURL creates a Deezer adapter with a custom base URL (for testing).
func NewWithBaseURL(limiter *provider.RateLimiterMap, logger *slog.Logger, baseURL string) *Adapter {
	return &Adapter{
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: limiter,
		logger:  logger.With(slog.String("provider", "deezer")),
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   cache.New(defaultCacheTTL, 2*defaultCacheTTL),
	}
}

// SetCacheTTL replaces the lookup cache. A non-positive TTL disables caching.
// Call before the adapter is shared.
func (a *Adapter) SetCacheTTL(ttl time.Duration) {
	if ttl <= 0 {
		a.cache = nil
		return
	}
	a.cache = cache.New(ttl, 2*ttl)
}

// Name returns the provider identifier.
func (a *Adapter) Name() provider.ProviderName { return provider.NameDeezer }

// SearchArtist searches Deezer for artists matching the given name and
// returns at most limit results in Deezer's relevance order.
func (a *Adapter) SearchArtist(ctx context.Context, name string, limit int) ([]provider.ArtistSearchResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}

	var resp listResponse[Artist]
	if err := a.get(ctx, "/search/artist", searchParams(name, limit), &resp); err != nil {
		return nil, err
	}

	results := make([]provider.ArtistSearchResult, 0, len(resp.Data))
	for _, r := range resp.Data {
		results = append(results, provider.ArtistSearchResult{
			ProviderID: strconv.Itoa(r.ID),
			Name:       r.Name,
			Fans:       r.NbFan,
			Albums:     r.NbAlbum,
			ImageURL:   pictureURL(&r),
			Source:     string(provider.NameDeezer),
		})
	}

	a.logger.Debug("artist search completed",
		slog.String("query", name),
		slog.Int("results", len(results)))

	return results, nil
}

// Artist fetches a single artist by Deezer ID.
func (a *Adapter) Artist(ctx context.Context, id int) (*Artist, error) {
	key := "artist:" + strconv.Itoa(id)
	if v, ok := a.cached(key); ok {
		return v.(*Artist), nil
	}

	var result Artist
	if err := a.get(ctx, "/artist/"+strconv.Itoa(id), nil, &result); err != nil {
		return nil, err
	}
	if result.ID == 0 {
		return nil, &provider.ErrNotFound{Provider: provider.NameDeezer, ID: strconv.Itoa(id)}
	}
	a.store(key, &result)
	return &result, nil
}

// TopTracks returns an artist's most popular tracks.
func (a *Adapter) TopTracks(ctx context.Context, id, limit int) ([]Track, error) {
	return cachedList[Track](ctx, a, fmt.Sprintf("/artist/%d/top", id), limitParams(limit, 10))
}

// Albums returns an artist's albums.
func (a *Adapter) Albums(ctx context.Context, id, limit int) ([]Album, error) {
	return cachedList[Album](ctx, a, fmt.Sprintf("/artist/%d/albums", id), limitParams(limit, 20))
}

// Related returns artists Deezer considers similar.
func (a *Adapter) Related(ctx context.Context, id, limit int) ([]Artist, error) {
	return cachedList[Artist](ctx, a, fmt.Sprintf("/artist/%d/related", id), limitParams(limit, 10))
}

// SearchArtists is the cached, full-object variant of SearchArtist used by
// the public search endpoint.
func (a *Adapter) SearchArtists(ctx context.Context, q string, limit int) ([]Artist, error) {
	if strings.TrimSpace(q) == "" {
		return []Artist{}, nil
	}
	return cachedList[Artist](ctx, a, "/search/artist", searchParams(q, limitOr(limit, 25)))
}

// SearchTracks searches tracks by free text.
func (a *Adapter) SearchTracks(ctx context.Context, q string, limit int) ([]Track, error) {
	if strings.TrimSpace(q) == "" {
		return []Track{}, nil
	}
	return cachedList[Track](ctx, a, "/search/track", searchParams(q, limitOr(limit, 25)))
}

func cachedList[T any](ctx context.Context, a *Adapter, path string, params url.Values) ([]T, error) {
	key := path + "?" + params.Encode()
	if v, ok := a.cached(key); ok {
		return v.([]T), nil
	}

	var resp listResponse[T]
	if err := a.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	data := resp.Data
	if data == nil {
		data = []T{}
	}
	a.store(key, data)
	return data, nil
}

func (a *Adapter) cached(key string) (any, bool) {
	if a.cache == nil {
		return nil, false
	}
	return a.cache.Get(key)
}

func (a *Adapter) store(key string, v any) {
	if a.cache != nil {
		a.cache.SetDefault(key, v)
	}
}

// get performs a rate-limited GET and decodes the JSON body into out.
func (a *Adapter) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := a.limiter.Wait(ctx, provider.NameDeezer); err != nil {
		return &provider.ErrProviderUnavailable{
			Provider: provider.NameDeezer,
			Cause:    fmt.Errorf("rate limiter: %w", err),
		}
	}

	reqURL := a.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	body, err := a.doRequest(ctx, reqURL)
	if err != nil {
		return err
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return classifyAPIError(envelope.Error, path)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing %s response: %w", path, err)
	}
	return nil
}

// doRequest executes a GET request and returns the response body.
func (a *Adapter) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req) //nolint:gosec // URL constructed from adapter config and validated inputs
	if err != nil {
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameDeezer,
			Cause:    err,
		}
	}
	defer resp.Body.Close() //nolint:errcheck

	switch resp.StatusCode {
	case http.StatusOK:
		// continue
	case http.StatusNotFound:
		return nil, &provider.ErrNotFound{Provider: provider.NameDeezer, ID: reqURL}
	case http.StatusTooManyRequests:
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameDeezer,
			Cause:    fmt.Errorf("rate limited by server"),
		}
	default:
		return nil, &provider.ErrProviderUnavailable{
			Provider: provider.NameDeezer,
			Cause:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1*1024*1024))
}

// classifyAPIError maps Deezer's in-band errors onto provider errors.
// Code 800 means "no data"; code 4 is the quota error.
func classifyAPIError(e *apiError, path string) error {
	if e.Code == 800 || e.Type == "DataException" {
		return &provider.ErrNotFound{Provider: provider.NameDeezer, ID: path}
	}
	return &provider.ErrProviderUnavailable{
		Provider: provider.NameDeezer,
		Cause:    fmt.Errorf("%s (code %d): %s", e.Type, e.Code, e.Message),
	}
}

// pictureURL prefers the big artist picture, falling back to medium.
func pictureURL(r *Artist) string {
	if r.PictureBig != "" {
		return r.PictureBig
	}
	return r.PictureMedium
}

func searchParams(q string, limit int) url.Values {
	return url.Values{
		"q":     {q},
		"limit": {strconv.Itoa(limitOr(limit, 10))},
	}
}

func limitParams(limit, fallback int) url.Values {
	return url.Values{"limit": {strconv.Itoa(limitOr(limit, fallback))}}
}

func limitOr(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}
