package redis

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "guardiao:idempotency:"

type IdempotencyRepo struct{ rdb *goredis.Client }

func NewIdempotencyRepo(rdb *goredis.Client) *IdempotencyRepo {
	return &IdempotencyRepo{rdb: rdb}
}

func (r *IdempotencyRepo) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	keyHash := fmt.Sprintf("%x", sha256.Sum256([]byte(key)))

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.rdb.SetNX(ctx, idempotencyPrefix+keyHash, 1, ttl).Result()
}
