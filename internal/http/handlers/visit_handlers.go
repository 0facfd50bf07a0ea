package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diagnosis/guardiao-web/internal/domain"
	"github.com/diagnosis/guardiao-web/internal/http/middleware"
	"github.com/diagnosis/guardiao-web/internal/http/views"
	"github.com/diagnosis/guardiao-web/internal/i18n"
	"github.com/diagnosis/guardiao-web/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Dashboard renders the stats and the visit list. ?new=1 opens the
// creation form.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess := middleware.Session(r)
	browserID := middleware.BrowserID(r)

	snap := h.dashboardService.Current(r.Context(), browserID, sess)
	data := views.DashboardPage{
		Page:     h.page(sess, h.dashboardService.TakeFlash(browserID)),
		Visits:   snap.Visits,
		Stats:    snap.Stats,
		FormOpen: r.URL.Query().Get("new") == "1",
	}
	if data.FormOpen {
		data.FormToken = uuid.NewString()
	}
	h.views.Render(w, r, http.StatusOK, views.PageDashboard, data)
}

// CreateVisit handles the creation form. On success the browser is sent back
// to the dashboard, which shows the list read back after the create.
func (h *Handlers) CreateVisit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.Session(r)
	browserID := middleware.BrowserID(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := domain.VisitCreate{
		VisitorName:     r.PostForm.Get("visitor_name"),
		VisitorDocument: r.PostForm.Get("visitor_document"),
		Destination:     r.PostForm.Get("destination"),
		Purpose:         r.PostForm.Get("purpose"),
		Notes:           r.PostForm.Get("notes"),
	}

	snap, err := h.dashboardService.CreateVisit(r.Context(), browserID, sess, in, r.PostForm.Get("form_token"))
	if err == nil || errors.Is(err, service.ErrDuplicateSubmission) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	status := http.StatusBadGateway
	var msg string
	var missing *service.MissingFieldsError
	if errors.As(err, &missing) {
		labels := make([]string, len(missing.Fields))
		for i, f := range missing.Fields {
			labels[i] = h.tr.Field(f)
		}
		status = http.StatusBadRequest
		msg = h.tr.T(i18n.ErrRequiredFields, strings.Join(labels, ", "))
	} else {
		msg = h.apiMessage(err, i18n.ErrCreateVisit)
	}

	h.views.Render(w, r, status, views.PageDashboard, views.DashboardPage{
		Page:      h.page(sess, msg),
		Visits:    snap.Visits,
		Stats:     snap.Stats,
		FormOpen:  true,
		FormToken: uuid.NewString(),
		Form:      in,
	})
}

// SetVisitStatus submits one transition. Failures become a banner on the
// next dashboard render.
func (h *Handlers) SetVisitStatus(w http.ResponseWriter, r *http.Request) {
	sess := middleware.Session(r)
	browserID := middleware.BrowserID(r)
	id := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	status, _ := domain.ParseVisitStatus(r.PostForm.Get("status"))

	if _, err := h.dashboardService.SetVisitStatus(r.Context(), browserID, sess, id, status); err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			h.dashboardService.SetFlash(browserID, h.tr.T(i18n.ErrInvalidStatus))
		} else {
			h.dashboardService.SetFlash(browserID, h.apiMessage(err, i18n.ErrUpdateVisit))
		}
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// DeleteVisit removes a visit from its detail page. A refusal from the API
// becomes the dashboard banner.
func (h *Handlers) DeleteVisit(w http.ResponseWriter, r *http.Request) {
	browserID := middleware.BrowserID(r)
	id := chi.URLParam(r, "id")

	if _, err := h.dashboardService.DeleteVisit(r.Context(), browserID, middleware.Session(r), id); err != nil {
		h.dashboardService.SetFlash(browserID, h.apiMessage(err, i18n.ErrDeleteVisit))
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// VisitDetail shows one visit fetched from the API.
func (h *Handlers) VisitDetail(w http.ResponseWriter, r *http.Request) {
	sess := middleware.Session(r)

	v, err := h.dashboardService.Visit(r.Context(), sess, chi.URLParam(r, "id"))
	if err != nil {
		status, msg := http.StatusBadGateway, h.apiMessage(err, i18n.ErrLoadVisit)
		if apiErr, ok := isAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			status, msg = http.StatusNotFound, h.tr.T(i18n.VisitsNotFound)
		}
		h.views.Render(w, r, status, views.PageVisit, views.VisitPage{Page: h.page(sess, msg)})
		return
	}

	h.views.Render(w, r, http.StatusOK, views.PageVisit, views.VisitPage{
		Page:  h.page(sess, ""),
		Visit: v,
	})
}
