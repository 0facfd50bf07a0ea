package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/diagnosis/guardiao-web/internal/domain"
	"github.com/diagnosis/guardiao-web/internal/http/middleware"
	"github.com/diagnosis/guardiao-web/internal/http/response"
	"github.com/diagnosis/guardiao-web/internal/http/views"
	"github.com/diagnosis/guardiao-web/internal/i18n"
	"github.com/diagnosis/guardiao-web/internal/platform/backend"
	"github.com/diagnosis/guardiao-web/internal/service"
	"github.com/diagnosis/guardiao-web/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// HealthChecker reports whether the API answers.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Handlers struct {
	authService      service.AuthService
	dashboardService service.DashboardService
	backend          HealthChecker
	views            *views.Renderer
	tr               *i18n.Translator
}

func New(
	authService service.AuthService,
	dashboardService service.DashboardService,
	backend HealthChecker,
	renderer *views.Renderer,
	tr *i18n.Translator,
) *Handlers {
	return &Handlers{
		authService:      authService,
		dashboardService: dashboardService,
		backend:          backend,
		views:            renderer,
		tr:               tr,
	}
}

type Options struct {
	CookieName        string
	CookieSecure      bool
	LoginLimit        middleware.RateLimitConfig
	LoginCounter      middleware.Counter // nil disables the login throttle
	TrustProxyHeaders bool               // key the throttle on X-Forwarded-For
}

// Routes wires the pages. Everything but /readyz gets a browser id and its
// restored session; dashboard routes require the session.
func (h *Handlers) Routes(o Options) chi.Router {
	r := chi.NewRouter()
	r.Get("/readyz", h.Ready)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BrowserCookie(o.CookieName, o.CookieSecure))
		r.Use(middleware.OptionalSession(h.authService))

		r.Get("/", h.Root)
		r.Get("/login", h.LoginPage)

		var throttle []func(http.Handler) http.Handler
		if o.LoginCounter != nil {
			limit := o.LoginLimit
			limit.KeyFunc = middleware.LoginRateLimitKeyFunc(o.TrustProxyHeaders)
			limit.Denied = http.HandlerFunc(h.loginThrottled)
			throttle = append(throttle, middleware.NewRateLimiter(o.LoginCounter, limit).Middleware())
		}
		r.With(throttle...).Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Get("/dashboard", h.Dashboard)
			r.Post("/visits", h.CreateVisit)
			r.Get("/visits/{id}", h.VisitDetail)
			r.Post("/visits/{id}/status", h.SetVisitStatus)
			r.Post("/visits/{id}/delete", h.DeleteVisit)
			r.Post("/logout", h.Logout)
		})
	})

	return r
}

// Root sends the browser to whichever view its session selects.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	if middleware.Session(r) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Ready checks that the API answers its health endpoint.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.Health(r.Context()); err != nil {
		logger.WarnContext(r.Context(), "Backend not ready", "error", err)
		response.Unavailable(w, "backend unavailable", err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Helper functions

func (h *Handlers) page(s *domain.Session, errMsg string) views.Page {
	p := views.Page{Lang: h.views.Lang(), Error: errMsg}
	if s != nil {
		user := s.User
		p.User = &user
	}
	return p
}

// apiMessage prefers the API's own detail over the local fallback.
func (h *Handlers) apiMessage(err error, fallbackKey string) string {
	if detail := backend.Detail(err); detail != "" {
		return detail
	}
	return h.tr.T(fallbackKey)
}

func isAPIError(err error) (*backend.APIError, bool) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
