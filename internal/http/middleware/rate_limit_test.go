package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"
)

type countingCounter struct {
	mu   sync.Mutex
	hits map[string]int64
	err  error
}

func (c *countingCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits[key]++
	return c.hits[key], nil
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"remote addr", "192.0.2.1:5555", nil, false, "192.0.2.1"},
		{"forwarded ignored by default", "192.0.2.1:5555", map[string]string{"X-Forwarded-For": "10.0.0.1"}, false, "192.0.2.1"},
		{"real ip ignored by default", "192.0.2.1:5555", map[string]string{"X-Real-IP": "10.0.0.2"}, false, "192.0.2.1"},
		{"forwarded first hop when trusted", "192.0.2.1:5555", map[string]string{"X-Forwarded-For": "10.0.0.1, 172.16.0.1"}, true, "10.0.0.1"},
		{"real ip when trusted", "192.0.2.1:5555", map[string]string{"X-Real-IP": "10.0.0.2"}, true, "10.0.0.2"},
		{"trusted without headers", "192.0.2.1:5555", nil, true, "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/login", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := getClientIP(r, tt.trustProxy); got != tt.want {
				t.Fatalf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestRateLimiter_RotatingForwardedForStillLimited(t *testing.T) {
	counter := &countingCounter{hits: make(map[string]int64)}
	rl := NewRateLimiter(counter, RateLimitConfig{
		Requests: 3,
		Window:   time.Minute,
		KeyFunc:  LoginRateLimitKeyFunc(false),
	})
	passed := 0
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		passed++
	}))

	limited := 0
	for i := 0; i < 10; i++ {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.RemoteAddr = "192.0.2.1:4000"
		r.Header.Set("X-Forwarded-For", "10.0.0."+strconv.Itoa(i))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	if passed != 3 || limited != 7 {
		t.Fatalf("Expected 3 passed and 7 limited, got %d and %d", passed, limited)
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	counter := &countingCounter{err: errors.New("redis down")}
	rl := NewRateLimiter(counter, RateLimitConfig{
		Requests: 1,
		Window:   time.Minute,
		KeyFunc:  LoginRateLimitKeyFunc(false),
	})
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected request through when the counter fails, got %d", w.Code)
		}
	}
}
