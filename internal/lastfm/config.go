// Package lastfm provides Last.fm API integration for artist and track metadata.
package lastfm

import (
	"errors"
	"time"
)

// ErrMissingAPIKey is returned by every lookup when no API key is configured.
var ErrMissingAPIKey = errors.New("missing LASTFM_API_KEY environment variable")

// Config holds Last.fm API configuration.
type Config struct {
	APIKey  string
	Timeout time.Duration
	BaseURL string // API root; empty means the public endpoint
}
