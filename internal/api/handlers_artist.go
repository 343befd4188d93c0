package api

import (
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/sydlexius/bassline/internal/discovery"
	"github.com/sydlexius/bassline/internal/provider/deezer"
	"github.com/sydlexius/bassline/internal/snapshot"
)

const (
	defaultListLimit = 50
	topTracksLimit   = 10
	albumsLimit      = 20
	relatedFetch     = 50
	relatedShown     = 6
)

// relatedArtist is a related catalog artist tagged with its listed genre.
type relatedArtist struct {
	deezer.Artist
	Genre string `json:"genre"`
}

// artistDetail is the live catalog view of one artist.
type artistDetail struct {
	deezer.Artist
	Genre     string          `json:"genre"`
	Listed    bool            `json:"listed"`
	TopTracks []deezer.Track  `json:"topTracks"`
	Albums    []deezer.Album  `json:"albums"`
	Related   []relatedArtist `json:"related"`
}

// handleListArtists returns listed artists from the snapshot.
// GET /api/v1/artists?genre=&limit=
func (r *Router) handleListArtists(w http.ResponseWriter, req *http.Request) {
	limit := intQuery(req, "limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}

	artists := r.store.ByGenre(req.URL.Query().Get("genre"))
	total := len(artists)
	if len(artists) > limit {
		artists = artists[:limit]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"artists": artists,
		"total":   total,
		"limit":   limit,
	})
}

// handleGetArtist returns a single artist with tracks, albums and related
// artists, read through the catalog.
// GET /api/v1/artists/{id}
func (r *Router) handleGetArtist(w http.ResponseWriter, req *http.Request) {
	id, err := strconv.Atoi(req.PathValue("id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid artist id")
		return
	}

	var (
		detail  artistDetail
		related []deezer.Artist
	)
	g, ctx := errgroup.WithContext(req.Context())
	g.Go(func() error {
		a, err := r.catalog.Artist(ctx, id)
		if err != nil {
			return err
		}
		detail.Artist = *a
		return nil
	})
	g.Go(func() error {
		tracks, err := r.catalog.TopTracks(ctx, id, topTracksLimit)
		detail.TopTracks = tracks
		return err
	})
	g.Go(func() error {
		albums, err := r.catalog.Albums(ctx, id, albumsLimit)
		detail.Albums = albums
		return err
	})
	g.Go(func() error {
		rel, err := r.catalog.Related(ctx, id, relatedFetch)
		if err != nil {
			r.logger.Debug("related artists unavailable", "artist_id", id, "error", err)
			return nil
		}
		related = rel
		return nil
	})
	if err := g.Wait(); err != nil {
		r.logger.Warn("artist lookup failed", "artist_id", id, "error", err)
		writeError(w, http.StatusNotFound, "artist not found")
		return
	}

	detail.Genre = r.store.Genre(id)
	detail.Listed = r.store.Contains(id)
	if detail.TopTracks == nil {
		detail.TopTracks = []deezer.Track{}
	}
	if detail.Albums == nil {
		detail.Albums = []deezer.Album{}
	}
	detail.Related = listedRelated(r.store, id, related)

	writeJSON(w, http.StatusOK, detail)
}

// listedRelated prefers related artists present in the snapshot. When none
// are listed the catalog's own ordering is used instead.
func listedRelated(store *snapshot.Store, self int, related []deezer.Artist) []relatedArtist {
	out := make([]relatedArtist, 0, relatedShown)
	for _, a := range related {
		if len(out) == relatedShown {
			break
		}
		if a.ID == self || !store.Contains(a.ID) {
			continue
		}
		out = append(out, relatedArtist{Artist: a, Genre: store.Genre(a.ID)})
	}
	if len(out) > 0 {
		return out
	}
	for _, a := range related {
		if len(out) == relatedShown {
			break
		}
		out = append(out, relatedArtist{Artist: a, Genre: discovery.GenreOther})
	}
	return out
}
