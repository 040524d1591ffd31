package musicbrainz

// ArtistCredit is one entry of a recording's artist-credit list.
type ArtistCredit struct {
	Name string `json:"name"`
}

// Recording is a search hit from the recording endpoint.
type Recording struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
}

// ArtistRef is the artist end of a relationship.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Relation is a relationship attached to a recording lookup.
// Artist is nil for relations that point at works or URLs.
type Relation struct {
	Type   string     `json:"type"`
	Artist *ArtistRef `json:"artist,omitempty"`
}

// RecordingDetails is the recording lookup with relationships included.
type RecordingDetails struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Relations []Relation `json:"relations"`
}

type searchResponse struct {
	Recordings []Recording `json:"recordings"`
}
