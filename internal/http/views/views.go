// Package views renders the HTML pages from embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/diagnosis/guardiao-web/internal/domain"
	"github.com/diagnosis/guardiao-web/internal/i18n"
	"github.com/diagnosis/guardiao-web/pkg/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	PageLogin     = "login"
	PageDashboard = "dashboard"
	PageVisit     = "visit"
)

// Page carries what the layout needs. Error is shown as a banner.
type Page struct {
	Lang  string
	User  *domain.User
	Error string
}

type LoginPage struct {
	Page
	Email string
}

type DashboardPage struct {
	Page
	Visits    []domain.Visit
	Stats     domain.DashboardStats
	FormOpen  bool
	FormToken string
	Form      domain.VisitCreate
}

type VisitPage struct {
	Page
	Visit *domain.Visit
}

type Renderer struct {
	tr    *i18n.Translator
	pages map[string]*template.Template
}

func New(tr *i18n.Translator) (*Renderer, error) {
	funcs := template.FuncMap{
		"t":        tr.T,
		"status":   tr.Status,
		"action":   tr.Action,
		"field":    tr.Field,
		"datetime": formatTime,
		"lower":    strings.ToLower,
	}

	r := &Renderer{tr: tr, pages: make(map[string]*template.Template)}
	for _, page := range []string{PageLogin, PageDashboard, PageVisit} {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Lang is the document language every page starts from.
func (r *Renderer) Lang() string { return r.tr.Lang() }

// Render executes the page into a buffer first so a template error never
// leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, page string, data interface{}) {
	tmpl, ok := r.pages[page]
	if !ok {
		logger.ErrorContext(req.Context(), "Unknown page", "page", page)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.ErrorContext(req.Context(), "Failed to render page", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02/01/2006 15:04")
}
