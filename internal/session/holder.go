// Package session owns the operator's login state: the bearer token and the
// user it belongs to, persisted per browser.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/diagnosis/guardiao-web/internal/domain"
	"github.com/diagnosis/guardiao-web/pkg/logger"
)

// Fixed storage keys for the two persisted entries.
const (
	TokenKey = "guardiao_token"
	UserKey  = "guardiao_user"
)

// ClientStorage is the per-browser key/value store backing the holder.
type ClientStorage interface {
	Get(ctx context.Context, browserID, key string) (string, bool, error)
	Set(ctx context.Context, browserID, key, value string) error
	Delete(ctx context.Context, browserID string, keys ...string) error
}

type Holder struct {
	store ClientStorage
}

func NewHolder(store ClientStorage) *Holder {
	return &Holder{store: store}
}

// Restore returns the persisted session for a browser, or nil when either
// entry is missing or unreadable. Nothing is validated against the API; an
// expired token surfaces on the next API call.
func (h *Holder) Restore(ctx context.Context, browserID string) *domain.Session {
	if browserID == "" {
		return nil
	}

	token, ok, err := h.store.Get(ctx, browserID, TokenKey)
	if err != nil {
		logger.WarnContext(ctx, "Failed to read persisted token", "error", err)
		return nil
	}
	if !ok || token == "" {
		return nil
	}

	raw, ok, err := h.store.Get(ctx, browserID, UserKey)
	if err != nil {
		logger.WarnContext(ctx, "Failed to read persisted user", "error", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		logger.WarnContext(ctx, "Discarding unreadable persisted user", "error", err)
		return nil
	}

	return &domain.Session{Token: token, User: user}
}

// Login persists the token and user and returns the now active session.
func (h *Holder) Login(ctx context.Context, browserID string, user domain.User, token string) (*domain.Session, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}
	if err := h.store.Set(ctx, browserID, TokenKey, token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}
	if err := h.store.Set(ctx, browserID, UserKey, string(raw)); err != nil {
		return nil, fmt.Errorf("failed to persist user: %w", err)
	}
	return &domain.Session{Token: token, User: user}, nil
}

// Logout erases both persisted entries.
func (h *Holder) Logout(ctx context.Context, browserID string) error {
	if err := h.store.Delete(ctx, browserID, TokenKey, UserKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
