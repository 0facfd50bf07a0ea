package postgres

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type IdempotencyRepo struct{ pool *pgxpool.Pool }

func NewIdempotencyRepo(pool *pgxpool.Pool) *IdempotencyRepo {
	return &IdempotencyRepo{pool: pool}
}

// Claim records key and reports whether this call was the first to do so.
// An expired claim can be taken again.
func (r *IdempotencyRepo) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	keyHash := fmt.Sprintf("%x", sha256.Sum256([]byte(key)))

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	const q = `
INSERT INTO form_idempotency (key_hash, expires_at)
VALUES ($1, $2)
ON CONFLICT (key_hash) DO UPDATE SET expires_at = EXCLUDED.expires_at
WHERE form_idempotency.expires_at < now()`

	tag, err := r.pool.Exec(ctx, q, keyHash, time.Now().Add(ttl))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
