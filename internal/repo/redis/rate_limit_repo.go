package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "guardiao:ratelimit:"

type RateLimitRepo struct{ rdb *goredis.Client }

func NewRateLimitRepo(rdb *goredis.Client) *RateLimitRepo {
	return &RateLimitRepo{rdb: rdb}
}

// Incr counts a hit. The window's expiry is set by the same transaction that
// creates the key, so a counter never outlives its window.
func (r *RateLimitRepo) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	k := rateLimitPrefix + key
	var incr *goredis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.SetNX(ctx, k, 0, window)
		incr = pipe.Incr(ctx, k)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
