package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RateLimitRepo struct{ pool *pgxpool.Pool }

func NewRateLimitRepo(pool *pgxpool.Pool) *RateLimitRepo {
	return &RateLimitRepo{pool: pool}
}

// Incr atomically bumps the key's counter, restarting it when its window is over.
func (r *RateLimitRepo) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	const q = `
INSERT INTO rate_limits (key, count, window_start, expires_at)
VALUES ($1, 1, $2, $3)
ON CONFLICT (key) DO UPDATE SET
	count = CASE
		WHEN rate_limits.window_start < $4 THEN 1
		ELSE rate_limits.count + 1
	END,
	window_start = CASE
		WHEN rate_limits.window_start < $4 THEN $2
		ELSE rate_limits.window_start
	END,
	expires_at = $3
RETURNING count`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	now := time.Now()
	var count int64
	err := r.pool.QueryRow(ctx, q, key, now, now.Add(window), now.Add(-window)).Scan(&count)
	return count, err
}
