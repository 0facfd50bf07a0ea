package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/diagnosis/guardiao-web/internal/domain"
	"github.com/diagnosis/guardiao-web/pkg/logger"
	"github.com/google/uuid"
)

type ctxKey string

const (
	CtxBrowserID ctxKey = "browser_id"
	CtxSession   ctxKey = "session"
)

const browserCookieMaxAge = 365 * 24 * time.Hour

// BrowserCookie makes sure every request carries a browser id. Missing or
// malformed cookies are replaced with a fresh uuid.
func BrowserCookie(name string, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(name); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    id,
					Path:     "/",
					MaxAge:   int(browserCookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), CtxBrowserID, id)
			ctx = context.WithValue(ctx, logger.BrowserIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func BrowserID(r *http.Request) string {
	if v, ok := r.Context().Value(CtxBrowserID).(string); ok {
		return v
	}
	return ""
}

// Restorer is satisfied by the auth service.
type Restorer interface {
	Restore(ctx context.Context, browserID string) *domain.Session
}

// OptionalSession restores the browser's session, if any, into the request
// context. Must run after BrowserCookie.
func OptionalSession(auth Restorer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s := auth.Restore(r.Context(), BrowserID(r)); s != nil {
				r = r.WithContext(context.WithValue(r.Context(), CtxSession, s))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession sends requests without a session to the login page.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Session(r) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func Session(r *http.Request) *domain.Session {
	if v := r.Context().Value(CtxSession); v != nil {
		if s, ok := v.(*domain.Session); ok {
			return s
		}
	}
	return nil
}
