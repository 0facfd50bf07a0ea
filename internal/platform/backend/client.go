// Package backend is the client for the GUARDIÃO API. It only consumes the
// API contract; all business rules live on the other side.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/diagnosis/guardiao-web/internal/domain"
	"github.com/diagnosis/guardiao-web/pkg/logger"
	"github.com/diagnosis/guardiao-web/pkg/metrics"
)

// APIError is a non-2xx answer from the API. Detail carries the API's
// "detail" field when it is a plain string.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// Detail extracts the API-supplied detail from err, if any.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

type Client struct {
	baseURL string
	client  *http.Client
}

// New builds a client for the API rooted at baseURL (without the /api
// prefix). A zero timeout keeps the transport defaults.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL + "/api",
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResponse, error) {
	var out domain.LoginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", domain.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, errors.New("login response has no access_token")
	}
	return &out, nil
}

func (c *Client) ListVisits(ctx context.Context, token string) ([]domain.Visit, error) {
	var out []domain.Visit
	if err := c.do(ctx, "list_visits", http.MethodGet, "/visits", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetVisit(ctx context.Context, token, id string) (*domain.Visit, error) {
	var out domain.Visit
	if err := c.do(ctx, "get_visit", http.MethodGet, "/visits/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DashboardStats(ctx context.Context, token string) (*domain.DashboardStats, error) {
	var out domain.DashboardStats
	if err := c.do(ctx, "dashboard_stats", http.MethodGet, "/dashboard/stats", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateVisit(ctx context.Context, token string, in domain.VisitCreate) (*domain.Visit, error) {
	var out domain.Visit
	if err := c.do(ctx, "create_visit", http.MethodPost, "/visits", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateVisitStatus(ctx context.Context, token, id string, status domain.VisitStatus) (*domain.Visit, error) {
	var out domain.Visit
	if err := c.do(ctx, "update_visit", http.MethodPut, "/visits/"+url.PathEscape(id), token, domain.VisitUpdate{Status: status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteVisit removes a visit. The API answers 403 for roles it does not
// allow to delete.
func (c *Client) DeleteVisit(ctx context.Context, token, id string) error {
	return c.do(ctx, "delete_visit", http.MethodDelete, "/visits/"+url.PathEscape(id), token, nil, nil)
}

// Health calls the API's unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/health", "", nil, nil)
}

func (c *Client) do(ctx context.Context, operation, method, path, token string, in, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		var apiErr *APIError
		switch {
		case errors.As(err, &apiErr):
			outcome = fmt.Sprintf("%dxx", apiErr.StatusCode/100)
		case err != nil:
			outcome = "error"
		}
		metrics.BackendRequests.WithLabelValues(operation, outcome).Inc()
		metrics.BackendDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	var bodyReader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// Add request ID for tracing
	if requestID, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		req.Header.Set("X-Request-ID", requestID)
	}

	logger.DebugContext(ctx, "Calling backend", "operation", operation, "method", method, "path", path)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return nil
}

// readDetail pulls "detail" out of an error body. Validation errors carry a
// list there; those yield "" so callers fall back to their own message.
func readDetail(body io.Reader) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&payload); err != nil {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return detail
}
