package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/diagnosis/guardiao-web/internal/http/response"
	"github.com/diagnosis/guardiao-web/pkg/logger"
)

// Counter counts hits on a key within a fixed window starting at the first hit.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitConfig defines rate limiting parameters
type RateLimitConfig struct {
	Requests int                            // Max requests per window, 0 disables
	Window   time.Duration                  // Time window duration
	KeyFunc  func(r *http.Request) []string // Function to generate rate limit keys
	SkipFunc func(r *http.Request) bool     // Function to skip rate limiting
	Denied   http.Handler                   // Answers limited requests, JSON 429 when nil
}

// RateLimiter provides rate limiting functionality
type RateLimiter struct {
	counter Counter
	config  RateLimitConfig
}

func NewRateLimiter(counter Counter, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		config:  config,
	}
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.config.Requests <= 0 || (rl.config.SkipFunc != nil && rl.config.SkipFunc(r)) {
				next.ServeHTTP(w, r)
				return
			}

			for _, key := range rl.config.KeyFunc(r) {
				if !rl.allow(r.Context(), key) {
					logger.WarnContext(r.Context(), "Rate limit exceeded", "path", r.URL.Path)
					if rl.config.Denied != nil {
						rl.config.Denied.ServeHTTP(w, r)
						return
					}
					response.RateLimit(w, "Too many requests. Try again later.")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// allow fails open when the counter is unavailable.
func (rl *RateLimiter) allow(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// Hash the key so client addresses are not stored
	hashedKey := fmt.Sprintf("%x", sha256.Sum256([]byte(key)))

	count, err := rl.counter.Incr(ctx, hashedKey, rl.config.Window)
	if err != nil {
		logger.WarnContext(ctx, "Rate limit counter unavailable", "error", err)
		return true
	}
	return count <= int64(rl.config.Requests)
}

// LoginRateLimitKeyFunc limits login attempts per client IP. X-Forwarded-For
// and X-Real-IP are only read when trustProxy is set, since any caller can
// send them.
func LoginRateLimitKeyFunc(trustProxy bool) func(r *http.Request) []string {
	return func(r *http.Request) []string {
		if ip := getClientIP(r, trustProxy); ip != "" {
			return []string{"login:ip:" + ip}
		}
		return nil
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if idx := strings.Index(xff, ","); idx != -1 {
				return strings.TrimSpace(xff[:idx])
			}
			return strings.TrimSpace(xff)
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
