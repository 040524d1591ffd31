package credits

import (
	"context"
	"errors"
	"time"

	"github.com/justestif/audiox-backend/internal/db"
)

// PostgresStore persists entries in the track_credits table so the cache
// survives restarts.
type PostgresStore struct {
	repo *db.CreditsRepository
}

// NewPostgresStore creates a Store backed by database.
func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{repo: database.Credits()}
}

// Load implements Store.
func (s *PostgresStore) Load(ctx context.Context, key string) (*Entry, bool, error) {
	row, err := s.repo.Get(ctx, key)
	if errors.Is(err, db.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &Entry{Payload: row.Payload, StoredAt: row.StoredAt}, true, nil
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, key string, entry Entry) error {
	return s.repo.Upsert(ctx, db.TrackCredit{
		Key:      key,
		Payload:  entry.Payload,
		StoredAt: entry.StoredAt,
	})
}

// Prune deletes entries stored more than TTL before now.
func (s *PostgresStore) Prune(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.DeleteStale(ctx, now.Add(-TTL))
}
