package metadata

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/justestif/audiox-backend/internal/lastfm"
	"github.com/justestif/audiox-backend/internal/spotify"
)

// result holds the outcome of one best-effort sub-call.
type result[T any] struct {
	value T
	err   error
}

func capture[T any](v T, err error) result[T] {
	return result[T]{value: v, err: err}
}

// ArtistInfo merges Spotify and Last.fm data for name. Every upstream is
// best-effort: a failed lookup leaves its fields empty and is logged.
// The only error returned is for a blank name.
func (s *Service) ArtistInfo(ctx context.Context, name string) (*ArtistInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newError(KindBadRequest, "Artist name is required", nil)
	}

	var (
		sp     result[*spotify.Artist]
		info   result[*lastfm.ArtistInfo]
		albums result[[]lastfm.NamedImage]
	)

	// Independent lookups. Each goroutine records its own outcome and
	// returns nil so no sibling is cancelled.
	var g errgroup.Group
	g.Go(func() error {
		sp = capture(s.spotify.SearchArtist(ctx, name))
		return nil
	})
	if s.lastfm.Enabled() {
		g.Go(func() error {
			info = capture(s.lastfm.ArtistInfo(ctx, name))
			return nil
		})
		g.Go(func() error {
			albums = capture(s.lastfm.TopAlbums(ctx, name))
			return nil
		})
	}
	_ = g.Wait()

	artist := &ArtistInfo{
		Name:           name,
		Tags:           []string{},
		SimilarArtists: []NamedImage{},
		TopAlbums:      []NamedImage{},
	}

	s.foldSpotify(artist, sp)
	s.foldLastFM(artist, info, albums)

	s.enrichSimilar(ctx, artist.SimilarArtists)

	return artist, nil
}

func (s *Service) foldSpotify(artist *ArtistInfo, r result[*spotify.Artist]) {
	if r.err != nil {
		s.logger.WithError(r.err).WithField("artist", artist.Name).Warn("spotify artist lookup failed")
		return
	}
	sp := r.value
	artist.Name = sp.Name
	artist.Image = optional(sp.ImageURL)
	artist.SpotifyID = optional(sp.ID)
	artist.Followers = sp.Followers
	artist.Popularity = sp.Popularity
	if len(sp.Genres) > 0 {
		artist.Tags = capList(sp.Genres)
	}
}

func (s *Service) foldLastFM(artist *ArtistInfo, info result[*lastfm.ArtistInfo], albums result[[]lastfm.NamedImage]) {
	if !s.lastfm.Enabled() {
		return
	}

	if info.err != nil {
		s.logger.WithError(info.err).WithField("artist", artist.Name).Warn("last.fm artist info failed")
	} else {
		artist.Biography = optional(info.value.Summary)
		if len(artist.Tags) == 0 {
			artist.Tags = capList(info.value.Tags)
		}
		for _, sim := range capList(info.value.Similar) {
			artist.SimilarArtists = append(artist.SimilarArtists, NamedImage{Name: sim.Name, Image: optional(sim.Image)})
		}
	}

	if albums.err != nil {
		s.logger.WithError(albums.err).WithField("artist", artist.Name).Warn("last.fm top albums failed")
	} else {
		for _, a := range capList(albums.value) {
			artist.TopAlbums = append(artist.TopAlbums, NamedImage{Name: a.Name, Image: optional(a.Image)})
		}
	}
}

// enrichSimilar replaces Last.fm images with Spotify images where Spotify
// has one. Lookups run concurrently; a failed lookup keeps the original.
func (s *Service) enrichSimilar(ctx context.Context, similar []NamedImage) {
	if len(similar) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range similar {
		i := i
		g.Go(func() error {
			a, err := s.spotify.SearchArtist(ctx, similar[i].Name)
			if err != nil {
				s.logger.WithError(err).WithField("artist", similar[i].Name).Debug("similar artist image lookup failed")
				return nil
			}
			if a.ImageURL != "" {
				similar[i].Image = optional(a.ImageURL)
			}
			return nil
		})
	}
	_ = g.Wait()
}
