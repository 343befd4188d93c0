// Package discovery builds the South African artist dataset: it crawls the
// MusicBrainz area browse, links each artist to a Deezer profile, labels it
// with a genre, and ranks the result by popularity.
package discovery

import "time"

// Kind is the MusicBrainz artist type.
type Kind string

// Known artist kinds. MusicBrainz also reports Orchestra, Choir and Other;
// those are carried through verbatim.
const (
	KindPerson    Kind = "Person"
	KindGroup     Kind = "Group"
	KindCharacter Kind = "Character"
	KindUnknown   Kind = "Unknown"
)

// IsPerformer reports whether an artist of this kind can have recordings.
// Fictional characters are the only excluded kind.
func (k Kind) IsPerformer() bool {
	return k != KindCharacter
}

// SourceArtist is a record from the primary catalog.
type SourceArtist struct {
	SourceID       string
	Name           string
	Kind           Kind
	Disambiguation string
	BeginYear      string
}

// MatchCandidate is one search hit from the secondary catalog.
type MatchCandidate struct {
	CatalogID  int
	Name       string
	FanCount   int
	AlbumCount int
	ImageURL   string
}

// DiscoveredArtist is an accepted match. CatalogID is unique in a Result.
type DiscoveredArtist struct {
	CatalogID  int    `json:"catalogId"`
	Name       string `json:"name"`
	SourceID   string `json:"sourceId"`
	SourceName string `json:"sourceName"`
	Kind       Kind   `json:"kind"`
	Genre      string `json:"genre"`
	FanCount   int    `json:"fanCount"`
	AlbumCount int    `json:"albumCount"`
	ImageURL   string `json:"imageUrl"`
	MatchScore int    `json:"matchScore"`
}

// Result is the persisted snapshot. Artists are ordered by FanCount, highest first.
type Result struct {
	GeneratedAt  time.Time          `json:"generatedAt"`
	TotalScanned int                `json:"totalScanned"`
	TotalMatched int                `json:"totalMatched"`
	Artists      []DiscoveredArtist `json:"artists"`
}

// Empty returns the result used when no snapshot has been generated yet.
func Empty() *Result {
	return &Result{Artists: []DiscoveredArtist{}}
}

// Sink receives human-readable progress lines.
type Sink func(line string)

func (s Sink) emit(line string) {
	if s != nil {
		s(line)
	}
}
