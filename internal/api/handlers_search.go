package api

import (
	"net/http"
	"strings"
)

const searchLimit = 25

// handleSearch queries the catalog for artists or tracks. An empty query or a
// failed lookup both answer with an empty list.
// GET /api/v1/search?q=&type=artist|track
func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) {
	q := strings.TrimSpace(req.URL.Query().Get("q"))
	if q == "" {
		writeEmptySearch(w)
		return
	}

	if req.URL.Query().Get("type") == "track" {
		tracks, err := r.catalog.SearchTracks(req.Context(), q, searchLimit)
		if err != nil || len(tracks) == 0 {
			r.logSearchFailure(err)
			writeEmptySearch(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": tracks})
		return
	}

	artists, err := r.catalog.SearchArtists(req.Context(), q, searchLimit)
	if err != nil || len(artists) == 0 {
		r.logSearchFailure(err)
		writeEmptySearch(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": artists})
}

func (r *Router) logSearchFailure(err error) {
	if err != nil {
		r.logger.Warn("catalog search failed", "error", err)
	}
}

func writeEmptySearch(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
}
