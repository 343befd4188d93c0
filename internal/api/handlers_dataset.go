package api

import (
	"net/http"
)

// handleGenres lists the genres present in the snapshot with their counts.
// GET /api/v1/genres
func (r *Router) handleGenres(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"genres": r.store.Genres(),
		"counts": r.store.GenreCounts(),
	})
}

// handleDataset describes the snapshot currently served.
// GET /api/v1/dataset
func (r *Router) handleDataset(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, r.store.Meta())
}
