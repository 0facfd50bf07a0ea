package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/diagnosis/guardiao-web/internal/domain"
	"github.com/diagnosis/guardiao-web/pkg/events"
	"github.com/diagnosis/guardiao-web/pkg/logger"
	"github.com/diagnosis/guardiao-web/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Snapshot is a read-through copy of the API's visits and stats. It is never
// edited locally; every mutation is followed by a fresh one.
type Snapshot struct {
	Visits   []domain.Visit
	Stats    domain.DashboardStats
	LoadedAt time.Time
}

type DashboardService interface {
	// Current returns the snapshot a mutation just read back, if any,
	// otherwise it loads a new one.
	Current(ctx context.Context, browserID string, s *domain.Session) Snapshot
	Load(ctx context.Context, browserID string, s *domain.Session) Snapshot
	Visit(ctx context.Context, s *domain.Session, id string) (*domain.Visit, error)
	CreateVisit(ctx context.Context, browserID string, s *domain.Session, in domain.VisitCreate, formToken string) (Snapshot, error)
	SetVisitStatus(ctx context.Context, browserID string, s *domain.Session, id string, status domain.VisitStatus) (Snapshot, error)
	DeleteVisit(ctx context.Context, browserID string, s *domain.Session, id string) (Snapshot, error)
	SetFlash(browserID, msg string)
	TakeFlash(browserID string) string
	Forget(browserID string)
}

const defaultMaxBrowsers = 10000

type browserState struct {
	snapshot Snapshot
	fresh    bool
	flash    string
	touched  time.Time
}

type dashboardService struct {
	api         API
	events      events.Publisher
	idempotency Idempotency
	maxBrowsers int

	mu     sync.Mutex
	states map[string]*browserState
}

func NewDashboardService(api API, pub events.Publisher, idem Idempotency) DashboardService {
	return &dashboardService{
		api:         api,
		events:      pub,
		idempotency: idem,
		maxBrowsers: defaultMaxBrowsers,
		states:      make(map[string]*browserState),
	}
}

func (s *dashboardService) Current(ctx context.Context, browserID string, sess *domain.Session) Snapshot {
	s.mu.Lock()
	if st, ok := s.states[browserID]; ok && st.fresh {
		st.fresh = false
		st.touched = time.Now()
		snap := st.snapshot
		s.mu.Unlock()
		return snap
	}
	s.mu.Unlock()
	return s.Load(ctx, browserID, sess)
}

// Load fetches visits and stats concurrently and waits for both. If either
// call fails the pair is discarded and the previous snapshot is returned.
func (s *dashboardService) Load(ctx context.Context, browserID string, sess *domain.Session) Snapshot {
	snap, err := s.fetch(ctx, browserID, sess, false)
	if err != nil {
		return s.previous(browserID)
	}
	return snap
}

// fetch stores the new snapshot only when both calls succeed. fresh marks it
// for the next Current to reuse.
func (s *dashboardService) fetch(ctx context.Context, browserID string, sess *domain.Session, fresh bool) (Snapshot, error) {
	ctx = WithUser(ctx, sess)

	var (
		visits []domain.Visit
		stats  *domain.DashboardStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		visits, err = s.api.ListVisits(gctx, sess.Token)
		if err != nil {
			return fmt.Errorf("list visits: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stats, err = s.api.DashboardStats(gctx, sess.Token)
		if err != nil {
			return fmt.Errorf("dashboard stats: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.ErrorContext(ctx, "Failed to load dashboard", "error", err)
		metrics.DashboardLoads.WithLabelValues("stale").Inc()
		return Snapshot{}, err
	}

	snap := Snapshot{Visits: visits, Stats: *stats, LoadedAt: time.Now()}
	if snap.Visits == nil {
		snap.Visits = []domain.Visit{}
	}
	s.store(browserID, snap, fresh)
	metrics.DashboardLoads.WithLabelValues("fresh").Inc()
	return snap, nil
}

func (s *dashboardService) Visit(ctx context.Context, sess *domain.Session, id string) (*domain.Visit, error) {
	return s.api.GetVisit(WithUser(ctx, sess), sess.Token, id)
}

// CreateVisit submits once and, when the API accepts it, reads the dashboard
// back before returning. A form token seen before yields
// ErrDuplicateSubmission without calling the API.
func (s *dashboardService) CreateVisit(ctx context.Context, browserID string, sess *domain.Session, in domain.VisitCreate, formToken string) (Snapshot, error) {
	ctx = WithUser(ctx, sess)
	if missing := in.MissingFields(); len(missing) > 0 {
		return s.previous(browserID), &MissingFieldsError{Fields: missing}
	}
	in = in.Normalize()

	if formToken != "" {
		first, err := s.idempotency.Claim(ctx, browserID+":"+formToken, formTokenTTL)
		if err != nil {
			logger.WarnContext(ctx, "Idempotency check unavailable", "error", err)
		} else if !first {
			logger.InfoContext(ctx, "Duplicate visit submission ignored")
			return s.previous(browserID), ErrDuplicateSubmission
		}
	}

	created, err := s.api.CreateVisit(ctx, sess.Token, in)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create visit", "error", err)
		return s.previous(browserID), err
	}

	logger.InfoContext(ctx, "Visit created", "visit_id", created.ID)
	publish(ctx, s.events, events.VisitCreated, events.VisitCreatedEvent{
		VisitID:    created.ID,
		OperatorID: sess.User.ID,
		CreatedAt:  time.Now().UTC(),
	})

	return s.readBack(ctx, browserID, sess), nil
}

// SetVisitStatus submits the new status and reads the dashboard back. The
// visit's current status is not checked here; the API has the final word.
func (s *dashboardService) SetVisitStatus(ctx context.Context, browserID string, sess *domain.Session, id string, status domain.VisitStatus) (Snapshot, error) {
	ctx = WithUser(ctx, sess)
	if !domain.IsActionTarget(status) {
		return s.previous(browserID), ErrInvalidStatus
	}

	if _, err := s.api.UpdateVisitStatus(ctx, sess.Token, id, status); err != nil {
		logger.ErrorContext(ctx, "Failed to update visit status", "visit_id", id, "status", status, "error", err)
		return s.previous(browserID), err
	}

	logger.InfoContext(ctx, "Visit status changed", "visit_id", id, "status", status)
	publish(ctx, s.events, events.VisitStatusChanged, events.VisitStatusChangedEvent{
		VisitID:    id,
		Status:     string(status),
		OperatorID: sess.User.ID,
		ChangedAt:  time.Now().UTC(),
	})

	return s.readBack(ctx, browserID, sess), nil
}

// DeleteVisit removes one visit and reads the dashboard back. The API
// decides who may delete; its refusal comes back as the error.
func (s *dashboardService) DeleteVisit(ctx context.Context, browserID string, sess *domain.Session, id string) (Snapshot, error) {
	ctx = WithUser(ctx, sess)
	if err := s.api.DeleteVisit(ctx, sess.Token, id); err != nil {
		logger.ErrorContext(ctx, "Failed to delete visit", "visit_id", id, "error", err)
		return s.previous(browserID), err
	}

	logger.InfoContext(ctx, "Visit deleted", "visit_id", id)
	publish(ctx, s.events, events.VisitDeleted, events.VisitDeletedEvent{
		VisitID:    id,
		OperatorID: sess.User.ID,
		DeletedAt:  time.Now().UTC(),
	})

	return s.readBack(ctx, browserID, sess), nil
}

// readBack loads the dashboard after a mutation. A failed read-back leaves
// nothing to reuse, so the next Current tries the API again.
func (s *dashboardService) readBack(ctx context.Context, browserID string, sess *domain.Session) Snapshot {
	snap, err := s.fetch(ctx, browserID, sess, true)
	if err != nil {
		return s.previous(browserID)
	}
	return snap
}

func (s *dashboardService) SetFlash(browserID, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(browserID).flash = msg
}

func (s *dashboardService) TakeFlash(browserID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[browserID]
	if !ok {
		return ""
	}
	msg := st.flash
	st.flash = ""
	return msg
}

func (s *dashboardService) Forget(browserID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, browserID)
}

func (s *dashboardService) previous(browserID string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[browserID]; ok {
		return st.snapshot
	}
	return Snapshot{Visits: []domain.Visit{}}
}

func (s *dashboardService) store(browserID string, snap Snapshot, fresh bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(browserID)
	st.snapshot = snap
	st.fresh = fresh
}

// state returns the browser's entry, creating it and evicting the least
// recently touched one when full. Caller holds s.mu.
func (s *dashboardService) state(browserID string) *browserState {
	st, ok := s.states[browserID]
	if !ok {
		if len(s.states) >= s.maxBrowsers {
			var oldestID string
			var oldest time.Time
			for id, candidate := range s.states {
				if oldestID == "" || candidate.touched.Before(oldest) {
					oldestID, oldest = id, candidate.touched
				}
			}
			delete(s.states, oldestID)
		}
		st = &browserState{}
		s.states[browserID] = st
	}
	st.touched = time.Now()
	return st
}
