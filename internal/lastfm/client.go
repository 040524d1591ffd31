package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	sentry "github.com/getsentry/sentry-go"
)

const (
	baseURL   = "http://ws.audioscrobbler.com/2.0/"
	userAgent = "audiox-backend/1.0"

	// MaxItems caps every list taken from Last.fm.
	MaxItems = 5
)

// Last.fm API error codes.
const (
	errCodeInvalidParams = 6
	errCodeInvalidAPIKey = 10
	errCodeRateLimited   = 29
)

// Sentinel errors.
var (
	// ErrNotFound is returned when Last.fm has no such artist or track.
	ErrNotFound = errors.New("not found on Last.fm")

	// ErrRateLimited is returned when the API rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidAPIKey is returned when the API key is invalid.
	ErrInvalidAPIKey = errors.New("invalid API key")
)

// Client is a Last.fm API client.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Last.fm API client from the provided configuration.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	root := cfg.BaseURL
	if root == "" {
		root = baseURL
	}
	return &Client{
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: root,
	}
}

// Enabled reports whether the client has an API key to call Last.fm with.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// ArtistInfo fetches biography, tags and similar artists via artist.getinfo.
// Tags and similar artists are capped at MaxItems.
func (c *Client) ArtistInfo(ctx context.Context, artist string) (*ArtistInfo, error) {
	params := url.Values{
		"method": {"artist.getinfo"},
		"artist": {artist},
	}

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetching artist info: %w", err)
	}

	var resp artistInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing artist info response: %w", err)
	}
	if resp.Artist == nil {
		return nil, fmt.Errorf("artist %q: %w", artist, ErrNotFound)
	}

	info := &ArtistInfo{
		Name:    resp.Artist.Name,
		Summary: plainText(resp.Artist.Bio.Summary),
		Tags:    []string{},
		Similar: []NamedImage{},
	}

	var tags tagList
	if err := json.Unmarshal(resp.Artist.Tags, &tags); err == nil {
		for _, t := range capped(decodeList[Tag](tags.Tag)) {
			info.Tags = append(info.Tags, t.Name)
		}
	}

	for _, s := range capped(decodeList[namedImageJSON](resp.Artist.Similar.Artist)) {
		info.Similar = append(info.Similar, NamedImage{Name: s.Name, Image: s.Image.Best()})
	}

	return info, nil
}

// TopAlbums fetches the artist's most played albums via artist.gettopalbums.
func (c *Client) TopAlbums(ctx context.Context, artist string) ([]NamedImage, error) {
	params := url.Values{
		"method": {"artist.gettopalbums"},
		"artist": {artist},
		"limit":  {strconv.Itoa(MaxItems)},
	}

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetching top albums: %w", err)
	}

	var resp topAlbumsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing top albums response: %w", err)
	}

	albums := []NamedImage{}
	for _, a := range capped(decodeList[namedImageJSON](resp.TopAlbums.Album)) {
		albums = append(albums, NamedImage{Name: a.Name, Image: a.Image.Best()})
	}
	return albums, nil
}

// SearchArtists runs artist.search and returns the upstream JSON untouched.
func (c *Client) SearchArtists(ctx context.Context, query string) (json.RawMessage, error) {
	params := url.Values{
		"method": {"artist.search"},
		"artist": {query},
		"limit":  {"10"},
	}

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("searching artists: %w", err)
	}
	if !json.Valid(body) {
		return nil, errors.New("parsing artist search response: invalid JSON")
	}
	return json.RawMessage(body), nil
}

// TrackInfo runs track.getInfo and returns the upstream "track" object.
// Returns ErrNotFound if Last.fm has no match.
func (c *Client) TrackInfo(ctx context.Context, artist, track string) (json.RawMessage, error) {
	params := url.Values{
		"method":      {"track.getInfo"},
		"artist":      {artist},
		"track":       {track},
		"autocorrect": {"1"},
	}

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("fetching track info: %w", err)
	}

	var resp trackInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing track info response: %w", err)
	}
	if len(resp.Track) == 0 || string(resp.Track) == "null" {
		return nil, fmt.Errorf("track %q by %q: %w", track, artist, ErrNotFound)
	}
	return resp.Track, nil
}

// doRequest performs a single HTTP GET against the API root.
// No retries: a rate-limit answer is surfaced as ErrRateLimited.
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrMissingAPIKey
	}

	span := sentry.StartSpan(ctx, "lastfm."+params.Get("method"))
	span.Description = "Call Last.fm API"
	defer span.Finish()

	params.Set("api_key", c.apiKey)
	params.Set("format", "json")
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(span.Context(), http.MethodGet, reqURL, nil)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.Status = sentry.SpanStatusUnavailable
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	// Check for API error in response
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		switch apiErr.Error {
		case errCodeInvalidParams:
			span.Status = sentry.SpanStatusNotFound
			return nil, fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
		case errCodeRateLimited:
			span.Status = sentry.SpanStatusResourceExhausted
			return nil, ErrRateLimited
		case errCodeInvalidAPIKey:
			span.Status = sentry.SpanStatusUnauthenticated
			return nil, ErrInvalidAPIKey
		default:
			span.Status = sentry.SpanStatusInternalError
			return nil, fmt.Errorf("API error %d: %s", apiErr.Error, apiErr.Message)
		}
	}

	if resp.StatusCode != http.StatusOK {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	span.Status = sentry.SpanStatusOK
	return body, nil
}

func capped[T any](list []T) []T {
	if len(list) > MaxItems {
		return list[:MaxItems]
	}
	return list
}
