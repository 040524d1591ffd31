package lastfm

import (
	"encoding/json"
	"strings"
)

// Tag represents a Last.fm tag.
type Tag struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Image is a single sized image entry ("#text" holds the URL).
type Image struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

// Images is a Last.fm image list, ordered small to mega.
type Images []Image

// Best returns the largest non-empty image URL, or "" if there is none.
func (imgs Images) Best() string {
	preferred := []string{"mega", "extralarge", "large", "medium", "small"}
	for _, size := range preferred {
		for _, img := range imgs {
			if img.Size == size && strings.TrimSpace(img.URL) != "" {
				return img.URL
			}
		}
	}
	for i := len(imgs) - 1; i >= 0; i-- {
		if strings.TrimSpace(imgs[i].URL) != "" {
			return imgs[i].URL
		}
	}
	return ""
}

// NamedImage is a name with its best Last.fm image.
type NamedImage struct {
	Name  string
	Image string
}

// ArtistInfo is the subset of artist.getinfo used by the backend.
type ArtistInfo struct {
	Name    string
	Summary string // Biography summary as plain text
	Tags    []string
	Similar []NamedImage
}

// artistInfoResponse is the JSON response for artist.getinfo.
type artistInfoResponse struct {
	Artist *struct {
		Name    string `json:"name"`
		Similar struct {
			Artist json.RawMessage `json:"artist"`
		} `json:"similar"`
		Tags json.RawMessage `json:"tags"`
		Bio  struct {
			Summary string `json:"summary"`
		} `json:"bio"`
	} `json:"artist"`
}

// tagList is the object form of the "tags" field; Last.fm sends "" when empty.
type tagList struct {
	Tag json.RawMessage `json:"tag"`
}

type namedImageJSON struct {
	Name  string `json:"name"`
	Image Images `json:"image"`
}

// topAlbumsResponse is the JSON response for artist.gettopalbums.
type topAlbumsResponse struct {
	TopAlbums struct {
		Album json.RawMessage `json:"album"`
	} `json:"topalbums"`
}

// trackInfoResponse is the JSON response for track.getInfo.
type trackInfoResponse struct {
	Track json.RawMessage `json:"track"`
}

// apiError represents a Last.fm API error response.
type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// decodeList decodes a field Last.fm may send as an array, a single
// object, or an empty string. Anything else yields an empty slice.
func decodeList[T any](raw json.RawMessage) []T {
	if len(raw) == 0 {
		return []T{}
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var single T
	if raw[0] == '{' {
		if err := json.Unmarshal(raw, &single); err == nil {
			return []T{single}
		}
	}
	return []T{}
}
