package spotify

import (
	"context"
	"fmt"

	sentry "github.com/getsentry/sentry-go"
	"github.com/zmb3/spotify/v2"
)

// SearchTrack returns the top track match for the given artist and title.
// Returns ErrNotFound if the search is empty.
func (c *Client) SearchTrack(ctx context.Context, artist, track string) (result *Track, err error) {
	span := sentry.StartSpan(ctx, "spotify.search_track")
	span.Description = "Search Spotify for a track"
	span.SetTag("artist", artist)
	span.SetTag("track", track)
	defer func() { finishSpan(span, err) }()

	query := fmt.Sprintf("track:%q artist:%q", track, artist)
	results, err := c.api.Search(span.Context(), query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("searching track: %w", classify(err))
	}

	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return nil, fmt.Errorf("track %q by %q: %w", track, artist, ErrNotFound)
	}

	t := convertTrack(results.Tracks.Tracks[0])
	return &t, nil
}

// GetAlbum fetches an album's label, copyrights and release date.
// The album object is decoded directly so the label field is available.
func (c *Client) GetAlbum(ctx context.Context, id string) (album *Album, err error) {
	span := sentry.StartSpan(ctx, "spotify.get_album")
	span.Description = "Get album from Spotify API"
	span.SetTag("album_id", id)
	defer func() { finishSpan(span, err) }()

	var resp albumResponse
	if err := c.getJSON(span.Context(), "albums/"+id, &resp); err != nil {
		return nil, fmt.Errorf("fetching album %s: %w", id, err)
	}

	copyrights := make([]string, 0, len(resp.Copyrights))
	for _, cr := range resp.Copyrights {
		copyrights = append(copyrights, cr.Text)
	}

	return &Album{
		ID:          resp.ID,
		Name:        resp.Name,
		ReleaseDate: resp.ReleaseDate,
		Label:       resp.Label,
		Copyrights:  copyrights,
	}, nil
}

// convertTrack converts a Spotify FullTrack to Track.
func convertTrack(full spotify.FullTrack) Track {
	artists := make([]string, len(full.Artists))
	for i, a := range full.Artists {
		artists[i] = a.Name
	}

	return Track{
		ID:          full.ID.String(),
		Name:        full.Name,
		Artists:     artists,
		AlbumID:     full.Album.ID.String(),
		AlbumName:   full.Album.Name,
		ReleaseDate: full.Album.ReleaseDate,
		Popularity:  int(full.Popularity),
	}
}
