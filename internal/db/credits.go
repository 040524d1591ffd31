package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreditsRepository handles cached track credit operations.
type CreditsRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves the cached payload for key. Returns ErrNotFound if absent.
func (r *CreditsRepository) Get(ctx context.Context, key string) (*TrackCredit, error) {
	query := `
		SELECT cache_key, payload, stored_at
		FROM track_credits
		WHERE cache_key = $1
	`
	var c TrackCredit
	err := r.pool.QueryRow(ctx, query, key).Scan(&c.Key, &c.Payload, &c.StoredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying track credits: %w", err)
	}
	return &c, nil
}

// Upsert inserts or replaces the payload stored under c.Key.
func (r *CreditsRepository) Upsert(ctx context.Context, c TrackCredit) error {
	query := `
		INSERT INTO track_credits (cache_key, payload, stored_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cache_key) DO UPDATE SET
			payload = EXCLUDED.payload,
			stored_at = EXCLUDED.stored_at
	`
	if _, err := r.pool.Exec(ctx, query, c.Key, c.Payload, c.StoredAt); err != nil {
		return fmt.Errorf("upserting track credits: %w", err)
	}
	return nil
}

// DeleteStale removes entries stored before olderThan and reports how many went.
func (r *CreditsRepository) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM track_credits WHERE stored_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("deleting stale track credits: %w", err)
	}
	return tag.RowsAffected(), nil
}
