package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diagnosis/guardiao-web/internal/domain"
	"github.com/diagnosis/guardiao-web/internal/session"
	"github.com/diagnosis/guardiao-web/pkg/events"
	"github.com/diagnosis/guardiao-web/pkg/logger"
)

type AuthService interface {
	Restore(ctx context.Context, browserID string) *domain.Session
	Login(ctx context.Context, browserID, email, password string) (*domain.Session, error)
	Logout(ctx context.Context, browserID string, s *domain.Session) error
}

type authService struct {
	api    API
	holder *session.Holder
	events events.Publisher
}

func NewAuthService(api API, holder *session.Holder, pub events.Publisher) AuthService {
	return &authService{api: api, holder: holder, events: pub}
}

func (s *authService) Restore(ctx context.Context, browserID string) *domain.Session {
	return s.holder.Restore(ctx, browserID)
}

// Login makes exactly one API call. Backend rejections come back as
// *backend.APIError so the caller can show the API's detail.
func (s *authService) Login(ctx context.Context, browserID, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		logger.WarnContext(ctx, "Login rejected", "error", err)
		return nil, err
	}

	sess, err := s.holder.Login(ctx, browserID, res.User, res.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	ctx = WithUser(ctx, sess)
	logger.InfoContext(ctx, "Operator logged in", "role", sess.User.Role)
	publish(ctx, s.events, events.SessionStarted, events.SessionEvent{
		BrowserID: browserID,
		UserID:    sess.User.ID,
		Role:      sess.User.Role,
		At:        time.Now().UTC(),
	})
	return sess, nil
}

func (s *authService) Logout(ctx context.Context, browserID string, sess *domain.Session) error {
	if err := s.holder.Logout(ctx, browserID); err != nil {
		return err
	}

	ev := events.SessionEvent{BrowserID: browserID, At: time.Now().UTC()}
	if sess != nil {
		ctx = WithUser(ctx, sess)
		ev.UserID, ev.Role = sess.User.ID, sess.User.Role
	}
	logger.InfoContext(ctx, "Operator logged out")
	publish(ctx, s.events, events.SessionEnded, ev)
	return nil
}
