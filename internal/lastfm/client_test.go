package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const radioheadInfo = `{
  "artist": {
    "name": "Radiohead",
    "stats": {"listeners": "5000000", "playcount": "900000000"},
    "similar": {"artist": [
      {"name": "Thom Yorke", "image": [{"#text": "http://img/ty-s.png", "size": "small"}, {"#text": "http://img/ty-xl.png", "size": "extralarge"}]},
      {"name": "Portishead", "image": []},
      {"name": "Muse", "image": []},
      {"name": "Blur", "image": []},
      {"name": "Björk", "image": []},
      {"name": "Sigur Rós", "image": []}
    ]},
    "tags": {"tag": [
      {"name": "alternative", "url": "http://last.fm/tag/alternative"},
      {"name": "rock", "url": "http://last.fm/tag/rock"},
      {"name": "electronic", "url": "http://last.fm/tag/electronic"},
      {"name": "british", "url": "http://last.fm/tag/british"},
      {"name": "experimental", "url": "http://last.fm/tag/experimental"},
      {"name": "90s", "url": "http://last.fm/tag/90s"}
    ]},
    "bio": {"summary": "Radiohead are an English rock band. <a href=\"https://www.last.fm/music/Radiohead\">Read more on Last.fm</a>"}
  }
}`

func newTestClient(serverURL string) *Client {
	return NewClient(&Config{APIKey: "test-key", BaseURL: serverURL})
}

func TestArtistInfo(t *testing.T) {
	var gotMethod, gotKey, gotFormat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.URL.Query().Get("method")
		gotKey = r.URL.Query().Get("api_key")
		gotFormat = r.URL.Query().Get("format")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(radioheadInfo))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	info, err := client.ArtistInfo(context.Background(), "Radiohead")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != "artist.getinfo" || gotKey != "test-key" || gotFormat != "json" {
		t.Errorf("query = method %q key %q format %q", gotMethod, gotKey, gotFormat)
	}
	if info.Summary != "Radiohead are an English rock band." {
		t.Errorf("Summary = %q", info.Summary)
	}
	if info.Name != "Radiohead" {
		t.Errorf("Name = %q", info.Name)
	}
	if len(info.Tags) != MaxItems {
		t.Fatalf("got %d tags, want %d", len(info.Tags), MaxItems)
	}
	if info.Tags[0] != "alternative" {
		t.Errorf("Tags[0] = %q", info.Tags[0])
	}
	if len(info.Similar) != MaxItems {
		t.Fatalf("got %d similar, want %d", len(info.Similar), MaxItems)
	}
	if info.Similar[0].Name != "Thom Yorke" || info.Similar[0].Image != "http://img/ty-xl.png" {
		t.Errorf("Similar[0] = %+v", info.Similar[0])
	}
	if info.Similar[1].Image != "" {
		t.Errorf("Similar[1].Image = %q, want empty", info.Similar[1].Image)
	}
}

func TestArtistInfoSingleAndEmptyLists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"artist": {"name": "Solo", "similar": {"artist": {"name": "Other", "image": []}}, "tags": "", "bio": {"summary": ""}}}`))
	}))
	defer server.Close()

	info, err := newTestClient(server.URL).ArtistInfo(context.Background(), "Solo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Tags) != 0 {
		t.Errorf("Tags = %v, want empty", info.Tags)
	}
	if info.Tags == nil {
		t.Error("Tags should be an empty slice, not nil")
	}
	if len(info.Similar) != 1 || info.Similar[0].Name != "Other" {
		t.Errorf("Similar = %+v", info.Similar)
	}
	if info.Summary != "" {
		t.Errorf("Summary = %q, want empty", info.Summary)
	}
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		wantErr error
	}{
		{name: "not found", code: 6, wantErr: ErrNotFound},
		{name: "invalid key", code: 10, wantErr: ErrInvalidAPIKey},
		{name: "rate limited", code: 29, wantErr: ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				json.NewEncoder(w).Encode(apiError{Error: tt.code, Message: "upstream says no"})
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).ArtistInfo(context.Background(), "Nobody")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
			if calls.Load() != 1 {
				t.Errorf("got %d calls, want 1 (no retries)", calls.Load())
			}
		})
	}
}

func TestUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).TopAlbums(context.Background(), "Radiohead")
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestMissingAPIKey(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := NewClient(&Config{BaseURL: server.URL})

	if client.Enabled() {
		t.Error("Enabled() = true without an API key")
	}
	if _, err := client.SearchArtists(context.Background(), "radio"); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("got error %v, want ErrMissingAPIKey", err)
	}
	if calls.Load() != 0 {
		t.Errorf("got %d calls, want 0", calls.Load())
	}
}

func TestTopAlbums(t *testing.T) {
	var gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		w.Write([]byte(`{"topalbums": {"album": [
			{"name": "OK Computer", "image": [{"#text": "http://img/okc-l.png", "size": "large"}]},
			{"name": "Kid A", "image": [{"#text": "", "size": "mega"}, {"#text": "http://img/kida-m.png", "size": "medium"}]}
		]}}`))
	}))
	defer server.Close()

	albums, err := newTestClient(server.URL).TopAlbums(context.Background(), "Radiohead")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != "5" {
		t.Errorf("limit = %q, want 5", gotLimit)
	}
	want := []NamedImage{
		{Name: "OK Computer", Image: "http://img/okc-l.png"},
		{Name: "Kid A", Image: "http://img/kida-m.png"},
	}
	if len(albums) != len(want) {
		t.Fatalf("got %d albums, want %d", len(albums), len(want))
	}
	for i := range want {
		if albums[i] != want[i] {
			t.Errorf("albums[%d] = %+v, want %+v", i, albums[i], want[i])
		}
	}
}

func TestSearchArtists(t *testing.T) {
	const body = `{"results":{"artistmatches":{"artist":[{"name":"Radiohead"}]}}}`
	var gotArtist, gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotArtist = r.URL.Query().Get("artist")
		gotLimit = r.URL.Query().Get("limit")
		w.Write([]byte(body))
	}))
	defer server.Close()

	raw, err := newTestClient(server.URL).SearchArtists(context.Background(), "radio head")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotArtist != "radio head" || gotLimit != "10" {
		t.Errorf("artist = %q limit = %q", gotArtist, gotLimit)
	}
	if string(raw) != body {
		t.Errorf("body = %s, want passthrough", raw)
	}
}

func TestTrackInfo(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  error
	}{
		{
			name:     "found",
			response: `{"track": {"name": "Creep", "artist": {"name": "Radiohead"}}}`,
		},
		{
			name:     "missing track object",
			response: `{}`,
			wantErr:  ErrNotFound,
		},
		{
			name:     "upstream error 6",
			response: `{"error": 6, "message": "Track not found"}`,
			wantErr:  ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("method") != "track.getInfo" {
					t.Errorf("method = %q", r.URL.Query().Get("method"))
				}
				w.Write([]byte(tt.response))
			}))
			defer server.Close()

			raw, err := newTestClient(server.URL).TrackInfo(context.Background(), "Radiohead", "Creep")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var track struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(raw, &track); err != nil || track.Name != "Creep" {
				t.Errorf("track = %s (%v)", raw, err)
			}
		})
	}
}

func TestImagesBest(t *testing.T) {
	tests := []struct {
		name string
		imgs Images
		want string
	}{
		{name: "empty", imgs: nil, want: ""},
		{name: "prefers mega", imgs: Images{{URL: "s", Size: "small"}, {URL: "m", Size: "mega"}, {URL: "xl", Size: "extralarge"}}, want: "m"},
		{name: "skips blank", imgs: Images{{URL: " ", Size: "mega"}, {URL: "l", Size: "large"}}, want: "l"},
		{name: "unknown sizes use last", imgs: Images{{URL: "a", Size: ""}, {URL: "b", Size: ""}}, want: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.imgs.Best(); got != tt.want {
				t.Errorf("Best() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "Plain text.", want: "Plain text."},
		{in: "A <b>bold</b> band. <a href=\"x\">Read more on Last.fm</a>", want: "A bold band."},
		{in: "See <a href=\"x\">their site</a> now", want: "See their site now"},
	}

	for _, tt := range tests {
		if got := plainText(tt.in); got != tt.want {
			t.Errorf("plainText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
