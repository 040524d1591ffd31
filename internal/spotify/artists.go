package spotify

import (
	"context"
	"fmt"

	sentry "github.com/getsentry/sentry-go"
	"github.com/zmb3/spotify/v2"
)

// SearchArtist returns the top artist match for name.
// Returns ErrNotFound if the search is empty.
func (c *Client) SearchArtist(ctx context.Context, name string) (artist *Artist, err error) {
	span := sentry.StartSpan(ctx, "spotify.search_artist")
	span.Description = "Search Spotify for an artist"
	span.SetTag("query", name)
	defer func() { finishSpan(span, err) }()

	results, err := c.api.Search(span.Context(), name, spotify.SearchTypeArtist, spotify.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("searching artist: %w", classify(err))
	}

	if results.Artists == nil || len(results.Artists.Artists) == 0 {
		return nil, fmt.Errorf("artist %q: %w", name, ErrNotFound)
	}

	a := convertArtist(results.Artists.Artists[0])
	return &a, nil
}

// convertArtist converts a Spotify FullArtist to Artist.
func convertArtist(full spotify.FullArtist) Artist {
	artist := Artist{
		ID:         full.ID.String(),
		Name:       full.Name,
		Genres:     full.Genres,
		Followers:  int(full.Followers.Count),
		Popularity: int(full.Popularity),
	}
	if artist.Genres == nil {
		artist.Genres = []string{}
	}
	// Spotify orders images largest first.
	if len(full.Images) > 0 {
		artist.ImageURL = full.Images[0].URL
	}
	return artist
}
