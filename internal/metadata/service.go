// Package metadata aggregates Spotify, Last.fm and MusicBrainz lookups into
// the response shapes served by the HTTP API.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/justestif/audiox-backend/internal/lastfm"
	"github.com/justestif/audiox-backend/internal/musicbrainz"
	"github.com/justestif/audiox-backend/internal/spotify"
)

// DefaultEnrichConcurrency bounds concurrent Spotify lookups for similar artists.
const DefaultEnrichConcurrency = 5

// SpotifyClient abstracts the Spotify client for testing.
type SpotifyClient interface {
	SearchArtist(ctx context.Context, name string) (*spotify.Artist, error)
	SearchTrack(ctx context.Context, artist, track string) (*spotify.Track, error)
	GetAlbum(ctx context.Context, id string) (*spotify.Album, error)
}

// LastFMClient abstracts the Last.fm client for testing.
type LastFMClient interface {
	Enabled() bool
	ArtistInfo(ctx context.Context, artist string) (*lastfm.ArtistInfo, error)
	TopAlbums(ctx context.Context, artist string) ([]lastfm.NamedImage, error)
	SearchArtists(ctx context.Context, query string) (json.RawMessage, error)
	TrackInfo(ctx context.Context, artist, track string) (json.RawMessage, error)
}

// MusicBrainzClient abstracts the MusicBrainz client for testing.
type MusicBrainzClient interface {
	SearchRecording(ctx context.Context, artist, track string) (*musicbrainz.Recording, error)
	GetRecording(ctx context.Context, id string) (*musicbrainz.RecordingDetails, error)
}

// CreditsCache stores encoded TrackCredits payloads.
type CreditsCache interface {
	Get(ctx context.Context, artist, track string) ([]byte, bool)
	Put(ctx context.Context, artist, track string, payload []byte)
}

// Service answers metadata queries.
type Service struct {
	spotify     SpotifyClient
	lastfm      LastFMClient
	musicbrainz MusicBrainzClient
	credits     CreditsCache
	concurrency int
	logger      log.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithEnrichConcurrency sets the number of concurrent similar-artist lookups.
func WithEnrichConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the logger used for degraded lookups.
func WithLogger(logger log.FieldLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new metadata service.
func NewService(sp SpotifyClient, lf LastFMClient, mb MusicBrainzClient, credits CreditsCache, opts ...Option) *Service {
	s := &Service{
		spotify:     sp,
		lastfm:      lf,
		musicbrainz: mb,
		credits:     credits,
		concurrency: DefaultEnrichConcurrency,
		logger:      log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TrackInfo returns the raw Last.fm track object for artist and track.
func (s *Service) TrackInfo(ctx context.Context, artist, track string) (json.RawMessage, error) {
	artist, track, err := requireArtistTrack(artist, track)
	if err != nil {
		return nil, err
	}
	if !s.lastfm.Enabled() {
		return nil, newError(KindServiceUnavailable, "Last.fm API key not configured", lastfm.ErrMissingAPIKey)
	}

	raw, err := s.lastfm.TrackInfo(ctx, artist, track)
	switch {
	case errors.Is(err, lastfm.ErrNotFound):
		return nil, newError(KindNotFound, "Track not found", err)
	case err != nil:
		return nil, newError(KindInternal, "Failed to fetch track info", err)
	}
	return raw, nil
}

// SearchArtists passes a Last.fm artist search through unchanged.
func (s *Service) SearchArtists(ctx context.Context, query string) (json.RawMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newError(KindBadRequest, "Search query is required", nil)
	}
	if !s.lastfm.Enabled() {
		return nil, newError(KindServiceUnavailable, "Last.fm API key not configured", lastfm.ErrMissingAPIKey)
	}

	raw, err := s.lastfm.SearchArtists(ctx, query)
	if err != nil {
		return nil, newError(KindInternal, "Failed to search artists", err)
	}
	return raw, nil
}

// SpotifyTrackCredits returns the encoded TrackCredits for artist and track,
// served from the credits cache while it is fresh.
func (s *Service) SpotifyTrackCredits(ctx context.Context, artist, track string) (json.RawMessage, error) {
	artist, track, err := requireArtistTrack(artist, track)
	if err != nil {
		return nil, err
	}

	if payload, ok := s.credits.Get(ctx, artist, track); ok {
		return payload, nil
	}

	t, err := s.spotify.SearchTrack(ctx, artist, track)
	if err != nil {
		return nil, spotifyError(err)
	}

	album, err := s.spotify.GetAlbum(ctx, t.AlbumID)
	if err != nil {
		return nil, spotifyError(err)
	}

	credits := buildTrackCredits(t, album)
	payload, err := json.Marshal(credits)
	if err != nil {
		return nil, newError(KindInternal, "Failed to fetch track info from Spotify", err)
	}

	s.credits.Put(ctx, artist, track, payload)
	return payload, nil
}

// MusicBrainzCredits looks up producer and composer credits for a recording.
func (s *Service) MusicBrainzCredits(ctx context.Context, artist, track string) (*MusicBrainzCredits, error) {
	artist, track, err := requireArtistTrack(artist, track)
	if err != nil {
		return nil, err
	}

	rec, err := s.musicbrainz.SearchRecording(ctx, artist, track)
	switch {
	case errors.Is(err, musicbrainz.ErrNotFound):
		return nil, newError(KindNotFound, "Recording not found", err)
	case err != nil:
		return nil, newError(KindInternal, "Failed to fetch credits from MusicBrainz", err)
	}

	details, err := s.musicbrainz.GetRecording(ctx, rec.ID)
	if err != nil {
		return nil, newError(KindInternal, "Failed to fetch credits from MusicBrainz", err)
	}

	return buildMusicBrainzCredits(artist, rec, details), nil
}

func requireArtistTrack(artist, track string) (string, string, error) {
	artist = strings.TrimSpace(artist)
	track = strings.TrimSpace(track)
	if artist == "" || track == "" {
		return "", "", newError(KindBadRequest, "Missing artist or track parameter", nil)
	}
	return artist, track, nil
}

func spotifyError(err error) error {
	switch {
	case errors.Is(err, spotify.ErrNotFound):
		return newError(KindNotFound, "Track not found on Spotify", err)
	case errors.Is(err, spotify.ErrRateLimited):
		return newError(KindRateLimited, "Rate limited by Spotify, please try again later", err)
	default:
		return newError(KindInternal, "Failed to fetch track info from Spotify", err)
	}
}

func buildTrackCredits(t *spotify.Track, album *spotify.Album) TrackCredits {
	performers := t.Artists
	if performers == nil {
		performers = []string{}
	}
	copyrights := album.Copyrights
	if copyrights == nil {
		copyrights = []string{}
	}

	releaseDate := album.ReleaseDate
	if releaseDate == "" {
		releaseDate = t.ReleaseDate
	}
	albumName := album.Name
	if albumName == "" {
		albumName = t.AlbumName
	}

	return TrackCredits{
		Title:       t.Name,
		Artist:      strings.Join(performers, ", "),
		Album:       albumName,
		ReleaseDate: releaseDate,
		Popularity:  t.Popularity,
		Label:       album.Label,
		Copyrights:  copyrights,
		Performers:  performers,
	}
}

func buildMusicBrainzCredits(artist string, rec *musicbrainz.Recording, details *musicbrainz.RecordingDetails) *MusicBrainzCredits {
	credits := &MusicBrainzCredits{
		Title:     rec.Title,
		Artist:    artist,
		Producers: []string{},
		Composers: []string{},
		Writers:   []string{},
	}

	if len(rec.ArtistCredit) > 0 {
		names := make([]string, len(rec.ArtistCredit))
		for i, ac := range rec.ArtistCredit {
			names[i] = ac.Name
		}
		credits.Artist = strings.Join(names, ", ")
	}

	for _, rel := range details.Relations {
		if rel.Artist == nil {
			continue
		}
		switch rel.Type {
		case "producer":
			credits.Producers = append(credits.Producers, rel.Artist.Name)
		case "composer":
			credits.Composers = append(credits.Composers, rel.Artist.Name)
		}
	}
	return credits
}
