// Package config loads the backend configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"time"
)

const (
	defaultPort               = "3000"
	defaultMusicBrainzAgent   = "AudioX/1.0.0 (https://audio-x.onrender.com)"
	defaultTrackCacheCapacity = 1000
	maxTrackCacheCapacity     = 100000
	defaultUpstreamTimeout    = 10
	maxUpstreamTimeout        = 60
	defaultLogLevel           = "info"
)

// Config holds the full backend configuration.
type Config struct {
	Server      ServerConfig
	Spotify     SpotifyConfig
	LastFM      LastFMConfig
	MusicBrainz MusicBrainzConfig
	Cache       CacheConfig
	Upstream    UpstreamConfig
	Log         LogConfig
	Sentry      SentryConfig
}

type ServerConfig struct {
	Port string
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

// Enabled reports whether client credentials are configured.
func (s SpotifyConfig) Enabled() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

type LastFMConfig struct {
	APIKey string
}

// Enabled reports whether a Last.fm API key is configured.
func (l LastFMConfig) Enabled() bool {
	return l.APIKey != ""
}

type MusicBrainzConfig struct {
	UserAgent string
}

type CacheConfig struct {
	// DatabaseURL switches the track credits cache to PostgreSQL when set.
	DatabaseURL string
	Capacity    int
}

type UpstreamConfig struct {
	Timeout time.Duration
}

type LogConfig struct {
	Level string
}

type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
}

// Enabled reports whether error reporting is configured.
func (s SentryConfig) Enabled() bool {
	return s.DSN != ""
}

// Load reads configuration from the process environment.
// Missing optional values fall back to defaults; nothing here is fatal.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getPort(),
		},
		Spotify: SpotifyConfig{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		},
		LastFM: LastFMConfig{
			APIKey: os.Getenv("LASTFM_API_KEY"),
		},
		MusicBrainz: MusicBrainzConfig{
			UserAgent: getMusicBrainzUserAgent(),
		},
		Cache: CacheConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Capacity:    getTrackCacheCapacity(),
		},
		Upstream: UpstreamConfig{
			Timeout: getUpstreamTimeout(),
		},
		Log: LogConfig{
			Level: getLogLevel(),
		},
		Sentry: SentryConfig{
			DSN:         os.Getenv("SENTRY_DSN"),
			Environment: os.Getenv("SENTRY_ENVIRONMENT"),
			Release:     os.Getenv("RELEASE"),
		},
	}
}

func getPort() string {
	port := os.Getenv("PORT")
	if port == "" {
		return defaultPort
	}
	if p, err := strconv.Atoi(port); err != nil || p <= 0 || p > 65535 {
		return defaultPort
	}
	return port
}

func getMusicBrainzUserAgent() string {
	ua := os.Getenv("MUSICBRAINZ_USER_AGENT")
	if ua == "" {
		return defaultMusicBrainzAgent
	}
	return ua
}

func getTrackCacheCapacity() int {
	capStr := os.Getenv("TRACK_CACHE_CAPACITY")
	if capStr == "" {
		return defaultTrackCacheCapacity
	}
	capacity, err := strconv.Atoi(capStr)
	if err != nil || capacity <= 0 {
		return defaultTrackCacheCapacity
	}
	if capacity > maxTrackCacheCapacity {
		return maxTrackCacheCapacity
	}
	return capacity
}

func getUpstreamTimeout() time.Duration {
	secStr := os.Getenv("UPSTREAM_TIMEOUT_SECONDS")
	if secStr == "" {
		return defaultUpstreamTimeout * time.Second
	}
	sec, err := strconv.Atoi(secStr)
	if err != nil || sec <= 0 {
		return defaultUpstreamTimeout * time.Second
	}
	if sec > maxUpstreamTimeout {
		return maxUpstreamTimeout * time.Second
	}
	return time.Duration(sec) * time.Second
}

func getLogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return defaultLogLevel
	}
	return level
}
