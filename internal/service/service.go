package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diagnosis/guardiao-web/internal/domain"
	"github.com/diagnosis/guardiao-web/pkg/auth"
	"github.com/diagnosis/guardiao-web/pkg/events"
	"github.com/diagnosis/guardiao-web/pkg/logger"
)

// API is the part of the backend client the services use.
type API interface {
	Login(ctx context.Context, email, password string) (*domain.LoginResponse, error)
	ListVisits(ctx context.Context, token string) ([]domain.Visit, error)
	GetVisit(ctx context.Context, token, id string) (*domain.Visit, error)
	DashboardStats(ctx context.Context, token string) (*domain.DashboardStats, error)
	CreateVisit(ctx context.Context, token string, in domain.VisitCreate) (*domain.Visit, error)
	UpdateVisitStatus(ctx context.Context, token, id string, status domain.VisitStatus) (*domain.Visit, error)
	DeleteVisit(ctx context.Context, token, id string) error
}

// Idempotency remembers form tokens that were already submitted.
type Idempotency interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

const formTokenTTL = 24 * time.Hour

var (
	ErrMissingCredentials  = errors.New("email and password are required")
	ErrInvalidStatus       = errors.New("status is not an allowed transition target")
	ErrDuplicateSubmission = errors.New("form was already submitted")
)

// MissingFieldsError lists required visit fields left blank.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// WithUser tags ctx with the token's subject for logging. Tokens that cannot
// be inspected leave ctx untouched.
func WithUser(ctx context.Context, s *domain.Session) context.Context {
	if s == nil {
		return ctx
	}
	if sub, err := auth.Subject(s.Token); err == nil {
		return context.WithValue(ctx, logger.UserIDKey, sub)
	}
	if s.User.ID != "" {
		return context.WithValue(ctx, logger.UserIDKey, s.User.ID)
	}
	return ctx
}

func publish(ctx context.Context, pub events.Publisher, subject string, data interface{}) {
	if err := pub.Publish(ctx, subject, data); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
