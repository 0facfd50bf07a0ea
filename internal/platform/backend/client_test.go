package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diagnosis/guardiao-web/internal/domain"
	"github.com/diagnosis/guardiao-web/internal/platform/backend"
	"github.com/diagnosis/guardiao-web/pkg/logger"
)

func TestLogin_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Expected no Authorization on login, got %q", got)
		}
		var in domain.LoginRequest
		json.NewDecoder(r.Body).Decode(&in)
		if in.Email != "admin@guardiao.com" || in.Password != "admin123" {
			t.Errorf("Unexpected credentials %+v", in)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-1",
			"token_type":   "bearer",
			"user":         map[string]any{"id": "u1", "name": "Administrador", "role": "Administrador", "email": "admin@guardiao.com"},
		})
	}))
	defer server.Close()

	c := backend.New(server.URL, 0)
	res, err := c.Login(context.Background(), "admin@guardiao.com", "admin123")
	if err != nil {
		t.Fatalf("Expected login to succeed, got %v", err)
	}
	if res.AccessToken != "tok-1" || res.User.Name != "Administrador" || res.User.Role != "Administrador" {
		t.Fatalf("Unexpected login result %+v", res)
	}
}

func TestLogin_RejectedWithDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid credentials"}`))
	}))
	defer server.Close()

	_, err := backend.New(server.URL, 0).Login(context.Background(), "x@y.z", "bad")

	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", apiErr.StatusCode)
	}
	if backend.Detail(err) != "Invalid credentials" {
		t.Fatalf("Expected detail 'Invalid credentials', got %q", backend.Detail(err))
	}
}

func TestErrorDetail_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"validation list", `{"detail":[{"loc":["body","email"],"msg":"field required"}]}`},
		{"no json", `Internal Server Error`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := backend.New(server.URL, 0).Login(context.Background(), "a", "b")
			if err == nil {
				t.Fatal("Expected error")
			}
			if d := backend.Detail(err); d != "" {
				t.Fatalf("Expected empty detail, got %q", d)
			}
		})
	}
}

func TestNetworkError_IsNotAPIError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := backend.New(url, 0).ListVisits(context.Background(), "tok")
	if err == nil {
		t.Fatal("Expected network error")
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("Expected transport error, got APIError %v", apiErr)
	}
}

func TestVisitCalls_SendBearerAndBodies(t *testing.T) {
	var created domain.VisitCreate
	var updated map[string]string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/visits", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`[{"id":"v1","visitor_name":"Ana","status":"approved","entry_time":"2025-01-02T03:04:05"}]`))
		case http.MethodPost:
			json.NewDecoder(r.Body).Decode(&created)
			w.Write([]byte(`{"id":"v2","visitor_name":"Bia","status":"pending","entry_time":"2025-01-02T03:04:05"}`))
		}
	})
	mux.HandleFunc("/api/visits/v1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			json.NewDecoder(r.Body).Decode(&updated)
		}
		w.Write([]byte(`{"id":"v1","status":"completed","entry_time":"2025-01-02T03:04:05","exit_time":"2025-01-02T05:00:00"}`))
	})
	mux.HandleFunc("/api/dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") != "req-9" {
			t.Errorf("Expected forwarded request id, got %q", r.Header.Get("X-Request-ID"))
		}
		w.Write([]byte(`{"visits_today":5,"pending_visits":2,"visitors_inside":1,"recent_visits":[]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := backend.New(server.URL, 0)
	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-9")

	visits, err := c.ListVisits(ctx, "tok")
	if err != nil || len(visits) != 1 || visits[0].Status != domain.VisitApproved {
		t.Fatalf("Unexpected visits %+v, err %v", visits, err)
	}

	stats, err := c.DashboardStats(ctx, "tok")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if *stats != (domain.DashboardStats{VisitsToday: 5, PendingVisits: 2, VisitorsInside: 1}) {
		t.Fatalf("Unexpected stats %+v", stats)
	}

	in := domain.VisitCreate{VisitorName: "Bia", VisitorDocument: "1", Destination: "Casa 2", Purpose: "Obra"}
	if _, err := c.CreateVisit(ctx, "tok", in); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created != in {
		t.Fatalf("Expected create body %+v, got %+v", in, created)
	}

	v, err := c.UpdateVisitStatus(ctx, "tok", "v1", domain.VisitCompleted)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(updated) != 1 || updated["status"] != "completed" {
		t.Fatalf("Expected body with only status, got %v", updated)
	}
	if v.ExitTime == nil {
		t.Fatal("Expected exit time on completed visit")
	}

	got, err := c.GetVisit(ctx, "tok", "v1")
	if err != nil || got.ID != "v1" {
		t.Fatalf("Unexpected visit %+v, err %v", got, err)
	}
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer server.Close()

	if err := backend.New(server.URL, 0).Health(context.Background()); err != nil {
		t.Fatalf("Expected healthy backend, got %v", err)
	}
}

func TestDeleteVisit(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotAuth = r.Method, r.URL.Path, r.Header.Get("Authorization")
		if r.URL.Path == "/api/visits/forbidden" {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"detail":"Acesso negado"}`))
			return
		}
		w.Write([]byte(`{"message":"Visita deletada com sucesso"}`))
	}))
	defer server.Close()

	c := backend.New(server.URL, 0)
	if err := c.DeleteVisit(context.Background(), "tok", "v1"); err != nil {
		t.Fatalf("Expected delete to succeed, got %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/visits/v1" || gotAuth != "Bearer tok" {
		t.Fatalf("Unexpected request %s %s auth=%q", gotMethod, gotPath, gotAuth)
	}

	err := c.DeleteVisit(context.Background(), "tok", "forbidden")
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("Expected 403 APIError, got %v", err)
	}
	if backend.Detail(err) != "Acesso negado" {
		t.Fatalf("Expected API detail, got %q", backend.Detail(err))
	}
}
