package database

import (
	"context"
	"time"

	"github.com/diagnosis/guardiao-web/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, c config.DatabaseConfig) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, err
	}

	cfg.MinConns = int32(c.MinConns)
	cfg.MaxConns = int32(c.MaxConns)
	cfg.MaxConnLifetime = c.MaxLifetime
	cfg.HealthCheckPeriod = 30 * time.Second

	return pgxpool.NewWithConfig(ctx, cfg)
}
