package memory

import (
	"context"
	"sync"
)

// ClientStorageRepo keeps per-browser entries in process memory. Entries are
// lost on restart.
type ClientStorageRepo struct {
	mu      sync.RWMutex
	entries map[string]map[string]string
}

func NewClientStorageRepo() *ClientStorageRepo {
	return &ClientStorageRepo{entries: make(map[string]map[string]string)}
}

func (r *ClientStorageRepo) Get(_ context.Context, browserID, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[browserID][key]
	return v, ok, nil
}

func (r *ClientStorageRepo) Set(_ context.Context, browserID, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket, ok := r.entries[browserID]
	if !ok {
		bucket = make(map[string]string)
		r.entries[browserID] = bucket
	}
	bucket[key] = value
	return nil
}

func (r *ClientStorageRepo) Delete(_ context.Context, browserID string, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket, ok := r.entries[browserID]
	if !ok {
		return nil
	}
	for _, key := range keys {
		delete(bucket, key)
	}
	if len(bucket) == 0 {
		delete(r.entries, browserID)
	}
	return nil
}
