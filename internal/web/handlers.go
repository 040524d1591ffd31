package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/justestif/audiox-backend/internal/metadata"
)

// Metadata is the lookup surface the handlers need.
type Metadata interface {
	ArtistInfo(ctx context.Context, name string) (*metadata.ArtistInfo, error)
	SearchArtists(ctx context.Context, query string) (json.RawMessage, error)
	TrackInfo(ctx context.Context, artist, track string) (json.RawMessage, error)
	SpotifyTrackCredits(ctx context.Context, artist, track string) (json.RawMessage, error)
	MusicBrainzCredits(ctx context.Context, artist, track string) (*metadata.MusicBrainzCredits, error)
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	metadata Metadata
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(md Metadata) *Handlers {
	return &Handlers{metadata: md}
}

// Health handles the liveness check (GET /).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Audio X Backend is running"))
}

// Artist handles GET /api/artist/{name}.
func (h *Handlers) Artist(w http.ResponseWriter, r *http.Request) error {
	info, err := h.metadata.ArtistInfo(r.Context(), pathParam(r, "name"))
	if err != nil {
		if metadata.KindOf(err) == metadata.KindInternal {
			return &metadata.Error{
				Kind:    metadata.KindInternal,
				Message: "Failed to fetch artist info",
				Detail:  err.Error(),
				Err:     err,
			}
		}
		return err
	}

	writeJSON(w, r, http.StatusOK, struct {
		Artist *metadata.ArtistInfo `json:"artist"`
	}{Artist: info})
	return nil
}

// SearchArtists handles GET /api/search/artist/{query}.
func (h *Handlers) SearchArtists(w http.ResponseWriter, r *http.Request) error {
	raw, err := h.metadata.SearchArtists(r.Context(), pathParam(r, "query"))
	if err != nil {
		return err
	}
	writeRaw(w, r, http.StatusOK, raw)
	return nil
}

// Track handles GET /api/track?artist=&track=.
func (h *Handlers) Track(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	raw, err := h.metadata.TrackInfo(r.Context(), q.Get("artist"), q.Get("track"))
	if err != nil {
		return err
	}

	writeJSON(w, r, http.StatusOK, struct {
		Track json.RawMessage `json:"track"`
	}{Track: raw})
	return nil
}

// SpotifyTrackInfo handles GET /api/spotify/trackinfo?artist=&track=.
// The payload is written as stored so cached responses are byte-identical.
func (h *Handlers) SpotifyTrackInfo(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	payload, err := h.metadata.SpotifyTrackCredits(r.Context(), q.Get("artist"), q.Get("track"))
	if err != nil {
		return err
	}
	writeRaw(w, r, http.StatusOK, payload)
	return nil
}

// MusicBrainz handles GET /api/musicbrainz?artist=&track=.
func (h *Handlers) MusicBrainz(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	credits, err := h.metadata.MusicBrainzCredits(r.Context(), q.Get("artist"), q.Get("track"))
	if err != nil {
		return err
	}
	writeJSON(w, r, http.StatusOK, credits)
	return nil
}

// pathParam returns an unescaped route parameter. chi matches on the raw
// path only when one is present, so names like "AC%2FDC" arrive escaped;
// otherwise the value is already decoded.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}
