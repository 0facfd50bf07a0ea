package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS client_storage (
	browser_id TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (browser_id, key)
)`,
	`CREATE TABLE IF NOT EXISTS rate_limits (
	key          TEXT PRIMARY KEY,
	count        INTEGER NOT NULL,
	window_start TIMESTAMPTZ NOT NULL,
	expires_at   TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS form_idempotency (
	key_hash   TEXT PRIMARY KEY,
	expires_at TIMESTAMPTZ NOT NULL
)`,
}

// EnsureSchema creates the tables this service owns when they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// CleanupExpired removes expired rate limit and idempotency rows.
func CleanupExpired(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var total int64
	for _, q := range []string{
		`DELETE FROM rate_limits WHERE expires_at < now()`,
		`DELETE FROM form_idempotency WHERE expires_at < now()`,
	} {
		result, err := pool.Exec(ctx, q)
		if err != nil {
			return total, err
		}
		total += result.RowsAffected()
	}
	return total, nil
}
