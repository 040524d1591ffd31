package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// tokenServer returns a fake Spotify Accounts endpoint issuing numbered tokens.
func tokenServer(t *testing.T, count *atomic.Int32, delay time.Duration) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := count.Add(1)

		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q, want client_credentials", got)
		}
		if id, secret, ok := r.BasicAuth(); !ok || id != "client-id" || secret != "client-secret" {
			t.Errorf("BasicAuth() = %q, %q, %v", id, secret, ok)
		}

		if delay > 0 {
			time.Sleep(delay)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("token-%d", n),
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
}

func newTestCache(server *httptest.Server, clock *fakeClock) *TokenCache {
	return NewTokenCache("client-id", "client-secret",
		WithTokenURL(server.URL+"/api/token"),
		WithHTTPClient(server.Client()),
		WithClock(clock.Now),
	)
}

func TestTokenCache_ReusesTokenWithinWindow(t *testing.T) {
	var requests atomic.Int32
	server := tokenServer(t, &requests, 0)
	defer server.Close()

	clock := newFakeClock()
	cache := newTestCache(server, clock)

	first, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("first Get() error = %v", err)
	}

	clock.Advance(30 * time.Minute)

	second, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("second Get() error = %v", err)
	}

	if first != second {
		t.Errorf("second Get() = %q, want cached %q", second, first)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("exchange count = %d, want 1", n)
	}
}

func TestTokenCache_RefreshesAfterExpiry(t *testing.T) {
	var requests atomic.Int32
	server := tokenServer(t, &requests, 0)
	defer server.Close()

	clock := newFakeClock()
	cache := newTestCache(server, clock)

	if _, err := cache.Get(context.Background()); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	// expires_in 3600s minus the 60s margin.
	clock.Advance(3540 * time.Second)

	tok, err := cache.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() after expiry error = %v", err)
	}
	if tok != "token-2" {
		t.Errorf("Get() after expiry = %q, want token-2", tok)
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("exchange count = %d, want 2", n)
	}

	cached := cache.Cached()
	if cached == nil {
		t.Fatal("Cached() = nil after refresh")
	}
	wantExpiry := clock.Now().Add(3600*time.Second - 60*time.Second)
	if !cached.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("ExpiresAt = %v, want %v", cached.ExpiresAt, wantExpiry)
	}
}

func TestTokenCache_SingleFlightUnderConcurrency(t *testing.T) {
	var requests atomic.Int32
	server := tokenServer(t, &requests, 50*time.Millisecond)
	defer server.Close()

	cache := newTestCache(server, newFakeClock())

	const callers = 16
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = cache.Get(context.Background())
		}(i)
	}
	wg.Wait()

	for i := range tokens {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if tokens[i] != "token-1" {
			t.Errorf("caller %d token = %q, want token-1", i, tokens[i])
		}
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("exchange count = %d, want 1", n)
	}
}

func TestTokenCache_ExchangeFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_client","error_description":"Invalid client"}`))
	}))
	defer server.Close()

	cache := newTestCache(server, newFakeClock())

	_, err := cache.Get(context.Background())
	if !errors.Is(err, ErrUpstreamAuth) {
		t.Fatalf("Get() error = %v, want ErrUpstreamAuth", err)
	}
	if cache.Cached() != nil {
		t.Error("Cached() should be nil after failed exchange")
	}
}

func TestTokenCache_MissingCredentials(t *testing.T) {
	var requests atomic.Int32
	server := tokenServer(t, &requests, 0)
	defer server.Close()

	cache := NewTokenCache("", "",
		WithTokenURL(server.URL+"/api/token"),
		WithHTTPClient(server.Client()),
	)

	_, err := cache.Get(context.Background())
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("Get() error = %v, want ErrMissingCredentials", err)
	}
	if !errors.Is(err, ErrUpstreamAuth) {
		t.Errorf("Get() error = %v, want it to wrap ErrUpstreamAuth", err)
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("exchange count = %d, want 0", n)
	}
}

func TestTokenCache_TokenSource(t *testing.T) {
	var requests atomic.Int32
	server := tokenServer(t, &requests, 0)
	defer server.Close()

	clock := newFakeClock()
	cache := newTestCache(server, clock)

	tok, err := cache.Token()
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if tok.AccessToken != "token-1" {
		t.Errorf("AccessToken = %q, want token-1", tok.AccessToken)
	}
	if tok.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want Bearer", tok.TokenType)
	}
	if want := clock.Now().Add(3540 * time.Second); !tok.Expiry.Equal(want) {
		t.Errorf("Expiry = %v, want %v", tok.Expiry, want)
	}
}
