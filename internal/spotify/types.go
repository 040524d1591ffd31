package spotify

// Artist is the subset of a Spotify artist used by the backend.
type Artist struct {
	ID         string
	Name       string
	ImageURL   string // First (largest) image, empty if none
	Genres     []string
	Followers  int
	Popularity int
}

// Track is the subset of a Spotify track used by the backend.
type Track struct {
	ID          string
	Name        string
	Artists     []string
	AlbumID     string
	AlbumName   string
	ReleaseDate string
	Popularity  int
}

// Album carries the label and copyright metadata of a release.
type Album struct {
	ID          string
	Name        string
	ReleaseDate string
	Label       string
	Copyrights  []string
}

// albumResponse is the JSON response for GET /albums/{id}.
type albumResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	Label       string `json:"label"`
	Copyrights  []struct {
		Text string `json:"text"`
		Type string `json:"type"`
	} `json:"copyrights"`
}
