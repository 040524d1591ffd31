// Package musicbrainz provides a minimal MusicBrainz web service client for
// recording search and recording lookup with relationships.
package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	sentry "github.com/getsentry/sentry-go"
)

const (
	baseURL = "https://musicbrainz.org/ws/2"

	// DefaultUserAgent identifies the application, as MusicBrainz requires.
	DefaultUserAgent = "AudioX/1.0.0 (https://audio-x.onrender.com)"

	recordingIncludes = "artist-credits+releases+work-rels+artist-rels"
)

// ErrNotFound is returned when a search yields no recordings.
var ErrNotFound = errors.New("recording not found on MusicBrainz")

// Client is a MusicBrainz API client.
type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a MusicBrainz client. An empty userAgent falls back to
// DefaultUserAgent.
func NewClient(userAgent string, timeout time.Duration, opts ...Option) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchRecording returns the best recording match for artist and track.
func (c *Client) SearchRecording(ctx context.Context, artist, track string) (*Recording, error) {
	v := url.Values{}
	v.Set("query", fmt.Sprintf("artist:%q AND recording:%q", artist, track))
	v.Set("limit", "1")
	v.Set("fmt", "json")

	var result searchResponse
	if err := c.get(ctx, "/recording/?"+v.Encode(), &result); err != nil {
		return nil, fmt.Errorf("searching recording: %w", err)
	}
	if len(result.Recordings) == 0 {
		return nil, fmt.Errorf("%q by %q: %w", track, artist, ErrNotFound)
	}
	return &result.Recordings[0], nil
}

// GetRecording fetches a recording by MBID with artist and work relations.
func (c *Client) GetRecording(ctx context.Context, id string) (*RecordingDetails, error) {
	v := url.Values{}
	v.Set("inc", recordingIncludes)
	v.Set("fmt", "json")

	var details RecordingDetails
	if err := c.get(ctx, "/recording/"+url.PathEscape(id)+"?"+v.Encode(), &details); err != nil {
		return nil, fmt.Errorf("fetching recording %s: %w", id, err)
	}
	return &details, nil
}

func (c *Client) get(ctx context.Context, path string, dst any) error {
	span := sentry.StartSpan(ctx, "musicbrainz.get")
	span.Description = path
	defer span.Finish()

	req, err := http.NewRequestWithContext(span.Context(), http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.Status = sentry.SpanStatusUnavailable
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		span.Status = sentry.SpanStatusInternalError
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		span.Status = sentry.SpanStatusInternalError
		return fmt.Errorf("decoding response: %w", err)
	}

	span.Status = sentry.SpanStatusOK
	return nil
}
