package deezer

// Artist is a Deezer artist as returned by search and /artist/{id}.
type Artist struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Link          string `json:"link"`
	Picture       string `json:"picture"`
	PictureSmall  string `json:"picture_small"`
	PictureMedium string `json:"picture_medium"`
	PictureBig    string `json:"picture_big"`
	PictureXL     string `json:"picture_xl"`
	NbAlbum       int    `json:"nb_album"`
	NbFan         int    `json:"nb_fan"`
	Tracklist     string `json:"tracklist"`
}

// ArtistRef is the compact artist object embedded in tracks and albums.
type ArtistRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Album is a Deezer album.
type Album struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Cover       string    `json:"cover"`
	CoverSmall  string    `json:"cover_small"`
	CoverMedium string    `json:"cover_medium"`
	CoverBig    string    `json:"cover_big"`
	CoverXL     string    `json:"cover_xl"`
	ReleaseDate string    `json:"release_date"`
	RecordType  string    `json:"record_type"`
	NbTracks    int       `json:"nb_tracks"`
	Artist      ArtistRef `json:"artist"`
}

// AlbumRef is the compact album object embedded in tracks.
type AlbumRef struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Cover       string `json:"cover"`
	CoverMedium string `json:"cover_medium"`
	CoverBig    string `json:"cover_big"`
	CoverXL     string `json:"cover_xl"`
}

// Track is a Deezer track.
type Track struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	TitleShort string    `json:"title_short"`
	Duration   int       `json:"duration"`
	Rank       int       `json:"rank"`
	Preview    string    `json:"preview"`
	Link       string    `json:"link"`
	Artist     ArtistRef `json:"artist"`
	Album      AlbumRef  `json:"album"`
}

// listResponse is the {"data": [...]} envelope used by every list endpoint.
type listResponse[T any] struct {
	Data  []T    `json:"data"`
	Total int    `json:"total"`
	Next  string `json:"next,omitempty"`
}

// apiError is the error object Deezer returns with HTTP 200.
type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// errorEnvelope detects an in-band error on any response.
type errorEnvelope struct {
	Error *apiError `json:"error,omitempty"`
}
