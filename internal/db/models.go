package db

import "time"

// TrackCredit is one cached Spotify track-credits payload.
type TrackCredit struct {
	Key      string
	Payload  []byte // encoded JSON, returned verbatim on a hit
	StoredAt time.Time
}
