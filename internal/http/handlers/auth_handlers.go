package handlers

import (
	"errors"
	"net/http"

	"github.com/diagnosis/guardiao-web/internal/http/middleware"
	"github.com/diagnosis/guardiao-web/internal/http/views"
	"github.com/diagnosis/guardiao-web/internal/i18n"
	"github.com/diagnosis/guardiao-web/internal/service"
	"github.com/diagnosis/guardiao-web/pkg/logger"
)

// LoginPage renders the login form. A browser that already has a session
// goes straight to the dashboard.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.Session(r) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, "", "")
}

// Login handles the credentials form
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, "", h.tr.T(i18n.LoginRequired))
		return
	}
	email := r.PostForm.Get("email")
	password := r.PostForm.Get("password")

	_, err := h.authService.Login(r.Context(), middleware.BrowserID(r), email, password)
	if err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	if errors.Is(err, service.ErrMissingCredentials) {
		h.renderLogin(w, r, http.StatusBadRequest, email, h.tr.T(i18n.LoginRequired))
		return
	}

	status := http.StatusBadGateway
	if apiErr, ok := isAPIError(err); ok && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		status = http.StatusUnauthorized
	}
	h.renderLogin(w, r, status, email, h.apiMessage(err, i18n.LoginError))
}

// Logout clears the persisted session and the browser's dashboard state.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	browserID := middleware.BrowserID(r)
	if err := h.authService.Logout(r.Context(), browserID, middleware.Session(r)); err != nil {
		logger.ErrorContext(r.Context(), "Failed to clear session", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.dashboardService.Forget(browserID)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handlers) loginThrottled(w http.ResponseWriter, r *http.Request) {
	email := ""
	if err := r.ParseForm(); err == nil {
		email = r.PostForm.Get("email")
	}
	h.renderLogin(w, r, http.StatusTooManyRequests, email, h.tr.T(i18n.LoginTooMany))
}

func (h *Handlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, email, errMsg string) {
	h.views.Render(w, r, status, views.PageLogin, views.LoginPage{
		Page:  h.page(nil, errMsg),
		Email: email,
	})
}
