package memory

import (
	"context"
	"sync"
	"time"
)

type IdempotencyRepo struct {
	mu      sync.Mutex
	claimed map[string]time.Time
	now     func() time.Time
}

func NewIdempotencyRepo() *IdempotencyRepo {
	return &IdempotencyRepo{claimed: make(map[string]time.Time), now: time.Now}
}

// Claim reports whether key was not already claimed within its ttl.
func (r *IdempotencyRepo) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if expires, ok := r.claimed[key]; ok && now.Before(expires) {
		return false, nil
	}
	for k, expires := range r.claimed {
		if !now.Before(expires) {
			delete(r.claimed, k)
		}
	}
	r.claimed[key] = now.Add(ttl)
	return true, nil
}
