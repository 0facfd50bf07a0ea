package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diagnosis/guardiao-web/pkg/config"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "guardiao:storage:"

// ClientStorageRepo keeps each browser's entries in one redis hash.
type ClientStorageRepo struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewClientStorageRepo(rdb *goredis.Client, ttl time.Duration) *ClientStorageRepo {
	return &ClientStorageRepo{rdb: rdb, ttl: ttl}
}

// Connect parses the redis URL and pings the server.
func Connect(ctx context.Context, c config.RedisConfig) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(c.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if c.Password != "" {
		opts.Password = c.Password
	}
	if c.DB != 0 {
		opts.DB = c.DB
	}
	rdb := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func (r *ClientStorageRepo) Get(ctx context.Context, browserID, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	v, err := r.rdb.HGet(ctx, keyPrefix+browserID, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *ClientStorageRepo) Set(ctx context.Context, browserID, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	hash := keyPrefix + browserID
	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, hash, key, value)
		if r.ttl > 0 {
			pipe.Expire(ctx, hash, r.ttl)
		}
		return nil
	})
	return err
}

func (r *ClientStorageRepo) Delete(ctx context.Context, browserID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.rdb.HDel(ctx, keyPrefix+browserID, keys...).Err()
}
