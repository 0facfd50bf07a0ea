package memory

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

type RateLimitRepo struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewRateLimitRepo() *RateLimitRepo {
	return &RateLimitRepo{windows: make(map[string]*window), now: time.Now}
}

func (r *RateLimitRepo) Incr(_ context.Context, key string, d time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	w, ok := r.windows[key]
	if !ok || !now.Before(w.resetAt) {
		r.sweep(now)
		w = &window{resetAt: now.Add(d)}
		r.windows[key] = w
	}
	w.count++
	return w.count, nil
}

// sweep drops finished windows. Caller holds r.mu.
func (r *RateLimitRepo) sweep(now time.Time) {
	for k, w := range r.windows {
		if !now.Before(w.resetAt) {
			delete(r.windows, k)
		}
	}
}
