package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RateLimitRepository tracks per-session request counts in a fixed
// one-minute window.
type RateLimitRepository struct {
	db *pgxpool.Pool
}

func NewRateLimitRepository(db *pgxpool.Pool) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// CheckAndIncrement bumps the counter for the current window and
// returns the new count. A new window resets the counter to one.
func (r *RateLimitRepository) CheckAndIncrement(ctx context.Context, sessionID string) (int, error) {
	const query = `
		INSERT INTO rate_limits (session_id, window_start, count)
		VALUES ($1, date_trunc('minute', now()), 1)
		ON CONFLICT (session_id) DO UPDATE
		SET count = CASE
				WHEN rate_limits.window_start = date_trunc('minute', now()) THEN rate_limits.count + 1
				ELSE 1
			END,
			window_start = date_trunc('minute', now())
		RETURNING count`

	var count int
	if err := r.db.QueryRow(ctx, query, sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("increment rate limit: %w", err)
	}
	return count, nil
}

// CleanupStale removes windows older than the given age.
func (r *RateLimitRepository) CleanupStale(ctx context.Context, age time.Duration) error {
	const query = `DELETE FROM rate_limits WHERE window_start < $1`
	if _, err := r.db.Exec(ctx, query, time.Now().Add(-age)); err != nil {
		return fmt.Errorf("cleanup rate limits: %w", err)
	}
	return nil
}
