package provider

import (
	"fmt"
	"time"
)

// ProviderName uniquely identifies an external catalog.
type ProviderName string

// Known provider names.
const (
	NameMusicBrainz ProviderName = "musicbrainz"
	NameDeezer      ProviderName = "deezer"
)

// DisplayName returns a human-readable name for the provider.
func (n ProviderName) DisplayName() string {
	switch n {
	case NameMusicBrainz:
		return "MusicBrainz"
	case NameDeezer:
		return "Deezer"
	default:
		return string(n)
	}
}

// ArtistSearchResult is a single artist record returned by a catalog, either
// from a browse page or a text search. Fields a catalog does not report are
// left at their zero value.
type ArtistSearchResult struct {
	ProviderID     string `json:"provider_id"`
	Name           string `json:"name"`
	SortName       string `json:"sort_name,omitempty"`
	Type           string `json:"type,omitempty"`
	Disambiguation string `json:"disambiguation,omitempty"`
	Country        string `json:"country,omitempty"`
	BeginYear      string `json:"begin_year,omitempty"`
	Fans           int    `json:"fans,omitempty"`
	Albums         int    `json:"albums,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
	Source         string `json:"source"`
}

// BrowsePage is one page of a paginated browse. Total is the size of the
// whole result set as reported by the catalog, not the size of this page.
type BrowsePage struct {
	Total   int                  `json:"total"`
	Offset  int                  `json:"offset"`
	Artists []ArtistSearchResult `json:"artists"`
}

// ErrProviderUnavailable indicates a transient failure (rate-limited, timeout, server error).
type ErrProviderUnavailable struct {
	Provider   ProviderName
	Cause      error
	RetryAfter time.Duration
}

func (e *ErrProviderUnavailable) Error() string {
	return fmt.Sprintf("provider %s unavailable: %v", e.Provider, e.Cause)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Cause }

// ErrNotFound indicates the provider has no data for the requested ID.
type ErrNotFound struct {
	Provider ProviderName
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("provider %s: %s not found", e.Provider, e.ID)
}
