package views_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diagnosis/guardiao-web/internal/domain"
	"github.com/diagnosis/guardiao-web/internal/http/views"
	"github.com/diagnosis/guardiao-web/internal/i18n"
)

func newRenderer(t *testing.T, locale string) *views.Renderer {
	t.Helper()
	r, err := views.New(i18n.New(locale))
	if err != nil {
		t.Fatalf("Failed to build renderer: %v", err)
	}
	return r
}

func render(t *testing.T, r *views.Renderer, status int, page string, data interface{}) (*httptest.ResponseRecorder, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Render(rec, req, status, page, data)
	return rec, rec.Body.String()
}

func TestRender_DashboardStatsAndActions(t *testing.T) {
	r := newRenderer(t, "pt-BR")
	user := &domain.User{Name: "Segurança", Role: "Segurança"}

	data := views.DashboardPage{
		Page:  views.Page{Lang: r.Lang(), User: user},
		Stats: domain.DashboardStats{VisitsToday: 5, PendingVisits: 2, VisitorsInside: 1},
		Visits: []domain.Visit{
			{ID: "p1", VisitorName: "Ana", Status: domain.VisitPending},
			{ID: "a1", VisitorName: "Bruno", Status: domain.VisitApproved},
			{ID: "d1", VisitorName: "Carla", Status: domain.VisitDenied},
			{ID: "c1", VisitorName: "Davi", Status: domain.VisitCompleted},
		},
	}
	rec, body := render(t, r, http.StatusOK, views.PageDashboard, data)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("Expected html content type, got %s", ct)
	}

	for _, want := range []string{
		`data-stat="visits_today">5<`,
		`data-stat="pending_visits">2<`,
		`data-stat="visitors_inside">1<`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("Expected %s in body", want)
		}
	}
	if strings.Index(body, "visits_today") > strings.Index(body, "pending_visits") ||
		strings.Index(body, "pending_visits") > strings.Index(body, "visitors_inside") {
		t.Fatal("Expected stat cards in order")
	}

	rows := map[string][]string{
		"p1": {"approve", "deny"},
		"a1": {"complete"},
		"d1": nil,
		"c1": nil,
	}
	for id, want := range rows {
		row := rowFor(t, body, id)
		if got := strings.Count(row, "data-action="); got != len(want) {
			t.Fatalf("Expected %d actions for %s, got %d", len(want), id, got)
		}
		for _, name := range want {
			if !strings.Contains(row, `data-action="`+name+`"`) {
				t.Fatalf("Expected %s action for %s", name, id)
			}
		}
	}

	if !strings.Contains(body, `action="/visits/p1/status"`) || !strings.Contains(body, `value="denied"`) {
		t.Fatal("Expected status forms posting action targets")
	}
	if !strings.Contains(body, "Segurança") || !strings.Contains(body, `action="/logout"`) {
		t.Fatal("Expected operator name and logout form")
	}
	if strings.Contains(body, `data-form="new-visit"`) {
		t.Fatal("Expected creation form closed")
	}
}

func TestRender_DashboardFormKeepsValues(t *testing.T) {
	r := newRenderer(t, "pt-BR")
	data := views.DashboardPage{
		Page:     views.Page{Lang: r.Lang(), User: &domain.User{Name: "A"}, Error: "Erro ao registrar visita"},
		Visits:   []domain.Visit{},
		FormOpen: true,
		Form:     domain.VisitCreate{VisitorName: "Ana <b>", Destination: "Apto 12"},
	}
	_, body := render(t, r, http.StatusBadGateway, views.PageDashboard, data)

	if !strings.Contains(body, `data-form="new-visit"`) {
		t.Fatal("Expected creation form open")
	}
	if !strings.Contains(body, `value="Ana &lt;b&gt;"`) || !strings.Contains(body, `value="Apto 12"`) {
		t.Fatal("Expected typed values kept and escaped")
	}
	if !strings.Contains(body, `role="alert">Erro ao registrar visita<`) {
		t.Fatal("Expected error banner")
	}
	if !strings.Contains(body, "data-empty") {
		t.Fatal("Expected empty list message")
	}
}

func TestRender_LoginPage(t *testing.T) {
	r := newRenderer(t, "en")
	data := views.LoginPage{Page: views.Page{Lang: r.Lang(), Error: "Invalid credentials"}, Email: "admin@guardiao.com"}
	rec, body := render(t, r, http.StatusUnauthorized, views.PageLogin, data)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
	if !strings.Contains(body, `lang="en"`) {
		t.Fatal("Expected english document")
	}
	if !strings.Contains(body, "Invalid credentials") {
		t.Fatal("Expected error shown")
	}
	if !strings.Contains(body, `value="admin@guardiao.com"`) {
		t.Fatal("Expected email kept")
	}
	if !strings.Contains(body, "onsubmit=") || !strings.Contains(body, "disabled=true") {
		t.Fatal("Expected submit button disabled while in flight")
	}
	if strings.Contains(body, `action="/logout"`) {
		t.Fatal("Expected no logout without a user")
	}
}

func TestRender_VisitPage(t *testing.T) {
	r := newRenderer(t, "pt-BR")
	v := &domain.Visit{ID: "v1", VisitorName: "Ana", Notes: "Entrega", Status: domain.VisitApproved, ApprovedBy: "Síndico"}
	_, body := render(t, r, http.StatusOK, views.PageVisit, views.VisitPage{Page: views.Page{Lang: r.Lang(), User: &domain.User{Name: "A"}}, Visit: v})

	for _, want := range []string{"Entrega", "Síndico", "Aprovada", `data-action="complete"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("Expected %q in visit page", want)
		}
	}
}

func TestRender_UnknownPage(t *testing.T) {
	rec, _ := render(t, newRenderer(t, "pt-BR"), http.StatusOK, "missing", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
}

// rowFor returns the table row markup for a visit id.
func rowFor(t *testing.T, body, id string) string {
	t.Helper()
	start := strings.Index(body, `<tr data-visit="`+id+`"`)
	if start < 0 {
		t.Fatalf("Expected row for %s", id)
	}
	end := strings.Index(body[start:], "</tr>")
	return body[start : start+end]
}
