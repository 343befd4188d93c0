package snapshot

import (
	"cmp"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/sydlexius/bassline/internal/discovery"
)

// GenreAll selects every artist regardless of genre.
const GenreAll = "All"

// Meta describes the loaded snapshot.
type Meta struct {
	GeneratedAt  time.Time      `json:"generatedAt"`
	TotalScanned int            `json:"totalScanned"`
	TotalMatched int            `json:"totalMatched"`
	ArtistCount  int            `json:"artistCount"`
	GenreCounts  map[string]int `json:"genreCounts"`
}

// dataset is an immutable view of one snapshot plus its lookup indexes.
type dataset struct {
	res    *discovery.Result
	byID   map[int]int
	counts map[string]int
	genres []string
}

func newDataset(res *discovery.Result) *dataset {
	if res == nil {
		res = discovery.Empty()
	}
	d := &dataset{
		res:    res,
		byID:   make(map[int]int, len(res.Artists)),
		counts: make(map[string]int),
	}
	for i, a := range res.Artists {
		if _, dup := d.byID[a.CatalogID]; !dup {
			d.byID[a.CatalogID] = i
		}
		d.counts[a.Genre]++
	}
	for g := range d.counts {
		d.genres = append(d.genres, g)
	}
	slices.Sort(d.genres)
	return d
}

// Store holds the current snapshot. Readers never block writers; Replace
// swaps the whole dataset at once. The zero value is not usable; call
// NewStore.
type Store struct {
	cur atomic.Pointer[dataset]
}

// NewStore creates a store serving res, or an empty dataset when res is nil.
func NewStore(res *discovery.Result) *Store {
	s := &Store{}
	s.Replace(res)
	return s
}

// Open loads the snapshot at path into a new store.
func Open(path string) (*Store, error) {
	res, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewStore(res), nil
}

// Replace swaps in res as the current snapshot.
func (s *Store) Replace(res *discovery.Result) {
	s.cur.Store(newDataset(res))
}

// Reload re-reads path and swaps it in. On error the current snapshot is kept.
func (s *Store) Reload(path string) error {
	res, err := Load(path)
	if err != nil {
		return fmt.Errorf("reloading snapshot: %w", err)
	}
	s.Replace(res)
	return nil
}

// Result returns the current snapshot. Callers must not modify it.
func (s *Store) Result() *discovery.Result {
	return s.cur.Load().res
}

// Artists returns every artist, most popular first.
func (s *Store) Artists() []discovery.DiscoveredArtist {
	return slices.Clone(s.cur.Load().res.Artists)
}

// IDs returns the catalog ids in snapshot order.
func (s *Store) IDs() []int {
	artists := s.cur.Load().res.Artists
	ids := make([]int, len(artists))
	for i, a := range artists {
		ids[i] = a.CatalogID
	}
	return ids
}

// Artist looks up one artist by catalog id.
func (s *Store) Artist(id int) (discovery.DiscoveredArtist, bool) {
	d := s.cur.Load()
	i, ok := d.byID[id]
	if !ok {
		return discovery.DiscoveredArtist{}, false
	}
	return d.res.Artists[i], true
}

// Genre returns the genre recorded for id, or discovery.GenreOther when the
// artist is not in the snapshot.
func (s *Store) Genre(id int) string {
	if a, ok := s.Artist(id); ok {
		return a.Genre
	}
	return discovery.GenreOther
}

// Contains reports whether id is in the snapshot.
func (s *Store) Contains(id int) bool {
	_, ok := s.cur.Load().byID[id]
	return ok
}

// Top returns at most n of the most popular artists.
func (s *Store) Top(n int) []discovery.DiscoveredArtist {
	artists := s.cur.Load().res.Artists
	n = min(max(n, 0), len(artists))
	return slices.Clone(artists[:n])
}

// ByGenre returns the artists labeled genre, in snapshot order. GenreAll and
// the empty string return everything.
func (s *Store) ByGenre(genre string) []discovery.DiscoveredArtist {
	artists := s.cur.Load().res.Artists
	if genre == "" || genre == GenreAll {
		return slices.Clone(artists)
	}
	out := make([]discovery.DiscoveredArtist, 0)
	for _, a := range artists {
		if a.Genre == genre {
			out = append(out, a)
		}
	}
	return out
}

// Genres lists GenreAll followed by every genre present, sorted by name.
func (s *Store) Genres() []string {
	return append([]string{GenreAll}, s.cur.Load().genres...)
}

// GenreCounts returns genres with their artist counts, largest first, ties
// by name.
func (s *Store) GenreCounts() []GenreCount {
	d := s.cur.Load()
	out := make([]GenreCount, 0, len(d.genres))
	for _, g := range d.genres {
		out = append(out, GenreCount{Genre: g, Count: d.counts[g]})
	}
	slices.SortStableFunc(out, func(a, b GenreCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out
}

// GenreCount is one row of a genre histogram.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// Meta summarizes the current snapshot.
func (s *Store) Meta() Meta {
	d := s.cur.Load()
	counts := make(map[string]int, len(d.counts))
	for g, n := range d.counts {
		counts[g] = n
	}
	return Meta{
		GeneratedAt:  d.res.GeneratedAt,
		TotalScanned: d.res.TotalScanned,
		TotalMatched: d.res.TotalMatched,
		ArtistCount:  len(d.res.Artists),
		GenreCounts:  counts,
	}
}
