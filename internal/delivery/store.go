// Package delivery holds the delivery slice of a session: the staff member's own
// deliveries, the weekly counts and the staff records an admin created.
package delivery

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/inflight"
	"github.com/jafarshop/storefront/pkg/errors"
)

const (
	MinStars = 1
	MaxStars = 5
)

type Backend interface {
	CreateDeliveryBoy(ctx context.Context, req backend.CreateDeliveryBoyRequest) (*domain.DeliveryBoy, error)
	MyDeliveries(ctx context.Context) ([]domain.Delivery, error)
	WeeklyDeliveries(ctx context.Context) (*domain.WeeklyDeliveries, error)
	RateDelivery(ctx context.Context, rating domain.Rating) error
}

// State is the persistable snapshot of the delivery slice
type State struct {
	Deliveries []domain.Delivery       `json:"deliveries"`
	Weekly     domain.WeeklyDeliveries `json:"weekly"`
	Staff      []domain.DeliveryBoy    `json:"staff"`
	Loading    bool                    `json:"-"`
	Error      string                  `json:"-"`
}

type Store struct {
	backend Backend
	logger  *zap.Logger

	mu         sync.Mutex
	deliveries []domain.Delivery
	mineReq    inflight.Tracker
	weekly     domain.WeeklyDeliveries
	weeklyReq  inflight.Tracker
	staff      []domain.DeliveryBoy
	actionReq  inflight.Tracker
}

func NewStore(b Backend, logger *zap.Logger) *Store {
	return &Store{
		backend:   b,
		logger:    logger,
		mineReq:   inflight.NewTracker("delivery.mine"),
		weeklyReq: inflight.NewTracker("delivery.weekly"),
		actionReq: inflight.NewTracker("delivery.action"),
	}
}

// FetchMine replaces the deliveries assigned to the signed-in staff member
func (s *Store) FetchMine(ctx context.Context) ([]domain.Delivery, error) {
	s.mu.Lock()
	seq := s.mineReq.Begin()
	s.mu.Unlock()

	deliveries, err := s.backend.MyDeliveries(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mineReq.Finish(seq, err) {
		return nil, inflight.ErrSuperseded
	}
	if err != nil {
		s.logger.Warn("Failed to fetch deliveries", zap.Error(err))
		return nil, err
	}

	s.deliveries = deliveries
	return append([]domain.Delivery(nil), s.deliveries...), nil
}

// FetchWeekly replaces the per-day counts of the current week
func (s *Store) FetchWeekly(ctx context.Context) (domain.WeeklyDeliveries, error) {
	s.mu.Lock()
	seq := s.weeklyReq.Begin()
	s.mu.Unlock()

	weekly, err := s.backend.WeeklyDeliveries(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.weeklyReq.Finish(seq, err) {
		return domain.WeeklyDeliveries{}, inflight.ErrSuperseded
	}
	if err != nil {
		return domain.WeeklyDeliveries{}, err
	}

	s.weekly = *weekly
	return s.weekly, nil
}

// CreateDeliveryBoy registers a new staff member
func (s *Store) CreateDeliveryBoy(ctx context.Context, req backend.CreateDeliveryBoyRequest) (*domain.DeliveryBoy, error) {
	if err := validateDeliveryBoy(req); err != nil {
		s.mu.Lock()
		s.actionReq.Fail(err)
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	seq := s.actionReq.Begin()
	s.mu.Unlock()

	boy, err := s.backend.CreateDeliveryBoy(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.actionReq.Finish(seq, err)
	if err != nil {
		s.logger.Warn("Failed to create delivery boy", zap.String("email", req.Email), zap.Error(err))
		return nil, err
	}

	s.staff = append(s.staff, *boy)
	s.logger.Info("Delivery boy created", zap.String("id", boy.ID), zap.String("email", boy.Email))
	return boy, nil
}

// Rate records a customer's 1 to 5 star rating of a delivery
func (s *Store) Rate(ctx context.Context, rating domain.Rating) error {
	if strings.TrimSpace(rating.DeliveryBoyID) == "" {
		return &errors.ErrValidation{Field: "deliveryBoyId", Message: "delivery is required"}
	}
	if rating.Stars < MinStars || rating.Stars > MaxStars {
		return &errors.ErrValidation{Field: "rating", Message: "rating must be between 1 and 5"}
	}

	s.mu.Lock()
	seq := s.actionReq.Begin()
	s.mu.Unlock()

	err := s.backend.RateDelivery(ctx, rating)

	s.mu.Lock()
	s.actionReq.Finish(seq, err)
	s.mu.Unlock()
	return err
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Deliveries: append([]domain.Delivery(nil), s.deliveries...),
		Weekly:     s.weekly,
		Staff:      append([]domain.DeliveryBoy(nil), s.staff...),
		Loading:    s.mineReq.Loading() || s.weeklyReq.Loading() || s.actionReq.Loading(),
	}
	for _, t := range []*inflight.Tracker{&s.actionReq, &s.weeklyReq, &s.mineReq} {
		if msg := t.Err(); msg != "" {
			st.Error = msg
			break
		}
	}
	return st
}

// Restore replaces the slice with a previously persisted snapshot
func (s *Store) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = st.Deliveries
	s.weekly = st.Weekly
	s.staff = st.Staff
}

func validateDeliveryBoy(req backend.CreateDeliveryBoyRequest) error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return &errors.ErrValidation{Field: "name", Message: "name is required"}
	case !strings.Contains(req.Email, "@"):
		return &errors.ErrValidation{Field: "email", Message: "a valid email is required"}
	case strings.TrimSpace(req.Phone) == "":
		return &errors.ErrValidation{Field: "phone", Message: "phone is required"}
	case len(req.Password) < 6:
		return &errors.ErrValidation{Field: "password", Message: "password must be at least 6 characters"}
	}
	return nil
}
