package metadata

// MaxListItems caps every list field in a response.
const MaxListItems = 5

// NamedImage is a similar artist or album with an optional image URL.
type NamedImage struct {
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

// ArtistInfo merges Spotify and Last.fm data for one artist.
type ArtistInfo struct {
	Name           string       `json:"name"`
	Image          *string      `json:"image"`
	Biography      *string      `json:"biography"`
	Tags           []string     `json:"tags"`
	SpotifyID      *string      `json:"spotifyId"`
	Followers      int          `json:"followers"`
	Popularity     int          `json:"popularity"`
	SimilarArtists []NamedImage `json:"similarArtists"`
	TopAlbums      []NamedImage `json:"topAlbums"`
}

// TrackCredits is the Spotify-derived credit sheet for a track.
// Writer and Producer are not exposed by Spotify and stay empty.
type TrackCredits struct {
	Title       string   `json:"title"`
	Artist      string   `json:"artist"`
	Album       string   `json:"album"`
	ReleaseDate string   `json:"releaseDate"`
	Popularity  int      `json:"popularity"`
	Label       string   `json:"label"`
	Copyrights  []string `json:"copyrights"`
	Performers  []string `json:"performers"`
	Writer      string   `json:"writer"`
	Producer    string   `json:"producer"`
}

// MusicBrainzCredits lists producer and composer credits of a recording.
// Writers is never populated.
type MusicBrainzCredits struct {
	Title     string   `json:"title"`
	Artist    string   `json:"artist"`
	Producers []string `json:"producers"`
	Composers []string `json:"composers"`
	Writers   []string `json:"writers"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func capList[T any](list []T) []T {
	if len(list) > MaxListItems {
		return list[:MaxListItems]
	}
	return list
}
