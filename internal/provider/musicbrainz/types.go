package musicbrainz

// MusicBrainz API response types.

// BrowseResponse is the top-level response from the artist browse endpoint
// (/artist?area=...). Counts are reported for the full result set.
type BrowseResponse struct {
	ArtistCount  int        `json:"artist-count"`
	ArtistOffset int        `json:"artist-offset"`
	Artists      []MBArtist `json:"artists"`
}

// MBArtist represents a MusicBrainz artist entity as returned by browse.
type MBArtist struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	SortName       string     `json:"sort-name"`
	Type           string     `json:"type"`
	Disambiguation string     `json:"disambiguation"`
	Country        string     `json:"country"`
	LifeSpan       MBLifeSpan `json:"life-span"`
}

// MBLifeSpan represents the begin/end dates of an artist.
type MBLifeSpan struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
	Ended bool   `json:"ended"`
}
