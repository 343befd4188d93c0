package discovery

import (
	"cmp"
	"slices"
)

// Rank orders matches by fan count, highest first, and keeps only the first
// occurrence of each catalog id. Sorting happens before filtering, so the
// surviving copy of a duplicate is the most popular one. Equal fan counts
// keep their input order. The input is not modified.
func Rank(matches []DiscoveredArtist) []DiscoveredArtist {
	sorted := slices.Clone(matches)
	slices.SortStableFunc(sorted, func(a, b DiscoveredArtist) int {
		return cmp.Compare(b.FanCount, a.FanCount)
	})

	seen := make(map[int]struct{}, len(sorted))
	out := make([]DiscoveredArtist, 0, len(sorted))
	for _, a := range sorted {
		if _, dup := seen[a.CatalogID]; dup {
			continue
		}
		seen[a.CatalogID] = struct{}{}
		out = append(out, a)
	}
	return out
}
