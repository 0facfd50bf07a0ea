package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClientStorageRepo struct{ pool *pgxpool.Pool }

func NewClientStorageRepo(pool *pgxpool.Pool) *ClientStorageRepo {
	return &ClientStorageRepo{pool: pool}
}

func (r *ClientStorageRepo) Get(ctx context.Context, browserID, key string) (string, bool, error) {
	const q = `SELECT value FROM client_storage WHERE browser_id=$1 AND key=$2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var v string
	if err := r.pool.QueryRow(ctx, q, browserID, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (r *ClientStorageRepo) Set(ctx context.Context, browserID, key, value string) error {
	const q = `
INSERT INTO client_storage (browser_id, key, value)
VALUES ($1,$2,$3)
ON CONFLICT (browser_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, browserID, key, value)
	return err
}

func (r *ClientStorageRepo) Delete(ctx context.Context, browserID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	const q = `DELETE FROM client_storage WHERE browser_id=$1 AND key = ANY($2)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, browserID, keys)
	return err
}
