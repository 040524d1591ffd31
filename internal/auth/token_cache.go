// Package auth provides the Spotify client-credentials access token cache.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// expiryMargin is subtracted from the upstream lifetime so a token is
// never handed out in its final minute.
const expiryMargin = 60 * time.Second

var (
	// ErrUpstreamAuth is returned when the credential exchange fails.
	ErrUpstreamAuth = errors.New("spotify token exchange failed")

	// ErrMissingCredentials is returned when SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET is not set.
	ErrMissingCredentials = fmt.Errorf("%w: missing SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET", ErrUpstreamAuth)
)

// AccessToken is a bearer token together with the instant it stops being served.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

func (t *AccessToken) usable(now time.Time) bool {
	return t != nil && t.Value != "" && now.Before(t.ExpiresAt)
}

// TokenCache holds the single client-credentials token for the process.
// A refresh happens at most once per expiry window regardless of how many
// callers observe the expired token.
type TokenCache struct {
	conf       *clientcredentials.Config
	httpClient *http.Client
	now        func() time.Time
	logger     log.FieldLogger

	mu    sync.RWMutex
	token *AccessToken

	refresh singleflight.Group
}

// Option configures a TokenCache.
type Option func(*TokenCache)

// WithTokenURL overrides the Spotify Accounts token endpoint.
func WithTokenURL(url string) Option {
	return func(c *TokenCache) {
		c.conf.TokenURL = url
	}
}

// WithHTTPClient sets the client used for the credential exchange.
func WithHTTPClient(client *http.Client) Option {
	return func(c *TokenCache) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(c *TokenCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.FieldLogger) Option {
	return func(c *TokenCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewTokenCache creates an empty token cache for the given client credentials.
func NewTokenCache(clientID, clientSecret string, opts ...Option) *TokenCache {
	c := &TokenCache{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyauth.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
		logger:     log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a bearer token that is unexpired at the moment of return,
// exchanging credentials only when the cached one is absent or expired.
func (c *TokenCache) Get(ctx context.Context) (string, error) {
	tok, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}
	return tok.Value, nil
}

// Token implements oauth2.TokenSource so the cache can authenticate an
// http.Client through oauth2.Transport.
func (c *TokenCache) Token() (*oauth2.Token, error) {
	tok, err := c.accessToken(context.Background())
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: tok.Value,
		TokenType:   "Bearer",
		Expiry:      tok.ExpiresAt,
	}, nil
}

// Cached returns the current token without refreshing it.
// Returns nil if there is no usable token.
func (c *TokenCache) Cached() *AccessToken {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.token.usable(c.now()) {
		return nil
	}
	tok := *c.token
	return &tok
}

func (c *TokenCache) accessToken(ctx context.Context) (*AccessToken, error) {
	if tok := c.Cached(); tok != nil {
		return tok, nil
	}

	// The shared exchange must not die with whichever caller started it.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := c.refresh.Do("token", func() (any, error) {
		if tok := c.Cached(); tok != nil {
			return tok, nil
		}
		return c.exchange(flightCtx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*AccessToken), nil
}

// exchange performs the client-credentials grant and stores the result.
func (c *TokenCache) exchange(ctx context.Context) (*AccessToken, error) {
	if c.conf.ClientID == "" || c.conf.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.conf.Token(ctx)
	if err != nil {
		c.logger.Errorf("Error getting Spotify token: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrUpstreamAuth, err)
	}

	now := c.now()
	at := &AccessToken{
		Value:     tok.AccessToken,
		ExpiresAt: now.Add(lifetime(tok) - expiryMargin),
	}

	c.mu.Lock()
	c.token = at
	c.mu.Unlock()

	c.logger.Debugf("Refreshed Spotify token, valid until %s", at.ExpiresAt.Format(time.RFC3339))

	stored := *at
	return &stored, nil
}

// lifetime reads the wire "expires_in" value, falling back to Expiry.
func lifetime(tok *oauth2.Token) time.Duration {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	if tok.ExpiresIn > 0 {
		return time.Duration(tok.ExpiresIn) * time.Second
	}
	if !tok.Expiry.IsZero() {
		return time.Until(tok.Expiry)
	}
	return 0
}

var _ oauth2.TokenSource = (*TokenCache)(nil)
