// Package spotify provides a wrapper around the Spotify Web API.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

const apiBaseURL = "https://api.spotify.com/v1/"

// Sentinel errors.
var (
	// ErrNotFound is returned when a search yields no items.
	ErrNotFound = errors.New("no matching spotify item")

	// ErrRateLimited is returned when Spotify answers with HTTP 429.
	ErrRateLimited = errors.New("spotify rate limit exceeded")
)

// Client wraps the Spotify API client with the lookups the backend needs.
type Client struct {
	api        *spotify.Client
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different Web API root.
// The URL must end with a slash.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// New creates a Spotify client on top of an already-authorized http.Client.
func New(httpClient *http.Client, opts ...Option) *Client {
	c := &Client{
		httpClient: httpClient,
		baseURL:    apiBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = withRateLimit(httpClient)
	c.api = spotify.New(c.httpClient, spotify.WithBaseURL(c.baseURL))
	return c
}

// rateLimitTransport turns HTTP 429 responses into ErrRateLimited.
// Spotify often answers 429 with an empty body, so the status code is
// the only reliable signal.
type rateLimitTransport struct {
	base http.RoundTripper
}

func (t rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		return resp, nil
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
	if retry := resp.Header.Get("Retry-After"); retry != "" {
		return nil, fmt.Errorf("%w (retry after %ss)", ErrRateLimited, retry)
	}
	return nil, ErrRateLimited
}

// withRateLimit returns a shallow copy of hc whose transport reports 429s
// as ErrRateLimited. The caller's client is left untouched.
func withRateLimit(hc *http.Client) *http.Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	wrapped := *hc
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped.Transport = rateLimitTransport{base: base}
	return &wrapped
}

// NewHTTPClient returns an http.Client that attaches a bearer token from
// src to every request. The source is consulted on each request, so
// expiry handling stays with the source.
func NewHTTPClient(src oauth2.TokenSource, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Source: src,
			Base:   http.DefaultTransport,
		},
	}
}

// getJSON performs an authorized GET against a Web API path and decodes the body.
func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("spotify API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// classify maps library errors onto package sentinels. Bodiless 429s are
// already ErrRateLimited by the time they get here.
func classify(err error) error {
	if errors.Is(err, ErrRateLimited) {
		return err
	}
	var apiErr spotify.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
	}
	return err
}

func finishSpan(span *sentry.Span, err error) {
	switch {
	case err == nil:
		span.Status = sentry.SpanStatusOK
	case errors.Is(err, ErrNotFound):
		span.Status = sentry.SpanStatusNotFound
	case errors.Is(err, ErrRateLimited):
		span.Status = sentry.SpanStatusResourceExhausted
	default:
		span.Status = sentry.SpanStatusInternalError
	}
	span.Finish()
}
