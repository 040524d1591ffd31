package config

import (
	"testing"
	"time"
)

func TestGetPort(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want string
	}{
		{"empty", "", "3000"},
		{"invalid", "abc", "3000"},
		{"zero", "0", "3000"},
		{"too_large", "70000", "3000"},
		{"valid", "8080", "8080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.env)
			if got := getPort(); got != tt.want {
				t.Errorf("getPort() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestGetTrackCacheCapacity(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"empty", "", 1000},
		{"invalid", "foo", 1000},
		{"zero", "0", 1000},
		{"negative", "-5", 1000},
		{"min", "1", 1},
		{"mid", "5000", 5000},
		{"over", "200000", 100000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TRACK_CACHE_CAPACITY", tt.env)
			if got := getTrackCacheCapacity(); got != tt.want {
				t.Errorf("getTrackCacheCapacity() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestGetUpstreamTimeout(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want time.Duration
	}{
		{"empty", "", 10 * time.Second},
		{"invalid", "soon", 10 * time.Second},
		{"zero", "0", 10 * time.Second},
		{"valid", "3", 3 * time.Second},
		{"over", "600", 60 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("UPSTREAM_TIMEOUT_SECONDS", tt.env)
			if got := getUpstreamTimeout(); got != tt.want {
				t.Errorf("getUpstreamTimeout() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LASTFM_API_KEY", "lastfm-key")
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")
	t.Setenv("MUSICBRAINZ_USER_AGENT", "")
	t.Setenv("SENTRY_DSN", "")

	cfg := Load()

	if cfg.Server.Addr() != ":3000" {
		t.Errorf("Server.Addr() = %q, want :3000", cfg.Server.Addr())
	}
	if !cfg.LastFM.Enabled() {
		t.Error("LastFM.Enabled() = false, want true")
	}
	if cfg.Spotify.Enabled() {
		t.Error("Spotify.Enabled() = true with empty secret, want false")
	}
	if cfg.MusicBrainz.UserAgent != defaultMusicBrainzAgent {
		t.Errorf("MusicBrainz.UserAgent = %q, want %q", cfg.MusicBrainz.UserAgent, defaultMusicBrainzAgent)
	}
	if cfg.Sentry.Enabled() {
		t.Error("Sentry.Enabled() = true with empty DSN, want false")
	}
}
