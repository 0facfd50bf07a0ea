package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diagnosis/guardiao-web/pkg/logger"
	"github.com/nats-io/nats.go"
)

// Publisher emits operator activity. Publishing is best effort: callers log
// failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("guardiao-web"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn, prefix: prefix}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	full := subject
	if n.prefix != "" {
		full = n.prefix + "." + subject
	}

	logger.DebugContext(ctx, "Publishing event", "subject", full, "data", string(payload))

	return n.conn.Publish(full, payload)
}

func (n *NATSPublisher) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}

// NopPublisher is used when NATS_URL is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}

// Event subjects
const (
	SessionStarted     = "session.started"
	SessionEnded       = "session.ended"
	VisitCreated       = "visit.created"
	VisitStatusChanged = "visit.status_changed"
	VisitDeleted       = "visit.deleted"
)

// Event payloads
type SessionEvent struct {
	BrowserID string    `json:"browser_id"`
	UserID    string    `json:"user_id,omitempty"`
	Role      string    `json:"role,omitempty"`
	At        time.Time `json:"at"`
}

// Visit payloads carry ids only; visitor names and documents stay in the API.
type VisitCreatedEvent struct {
	VisitID    string    `json:"visit_id"`
	OperatorID string    `json:"operator_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type VisitStatusChangedEvent struct {
	VisitID    string    `json:"visit_id"`
	Status     string    `json:"status"`
	OperatorID string    `json:"operator_id"`
	ChangedAt  time.Time `json:"changed_at"`
}

type VisitDeletedEvent struct {
	VisitID    string    `json:"visit_id"`
	OperatorID string    `json:"operator_id"`
	DeletedAt  time.Time `json:"deleted_at"`
}
