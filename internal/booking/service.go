package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/livefeed/core/logger"
	"github.com/dmitrymomot/livefeed/core/realtime"
	"github.com/dmitrymomot/livefeed/core/validator"
)

// Service implements booking use cases and announces changes to admin
// streams.
type Service struct {
	store       Store
	broadcaster realtime.Broadcaster
	now         func() time.Time
	newID       func() string
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides uuid.NewString.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService creates a Service.
func NewService(store Store, broadcaster realtime.Broadcaster, opts ...Option) *Service {
	s := &Service{
		store:       store,
		broadcaster: broadcaster,
		now:         time.Now,
		newID:       uuid.NewString,
		logger:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates in, stores a pending booking and broadcasts
// EventCreated to authenticated subscribers.
func (s *Service) Create(ctx context.Context, in CreateInput) (Booking, error) {
	in = normalize(in)
	if err := validator.Struct(in); err != nil {
		return Booking{}, err
	}

	now := s.now().UTC()
	b := Booking{
		ID:        s.newID(),
		Name:      in.Name,
		Email:     in.Email,
		Service:   in.Service,
		Note:      in.Note,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, b); err != nil {
		return Booking{}, fmt.Errorf("create booking: %w", err)
	}

	s.logger.InfoContext(ctx, "booking created",
		logger.Component("booking"),
		logger.ID("booking_id", b.ID),
	)
	s.broadcaster.Broadcast(EventCreated, b, realtime.TargetAuth)
	return b, nil
}

// UpdateStatus moves a booking to status and broadcasts EventUpdated to
// authenticated subscribers. Setting the current status again is a no-op
// and broadcasts nothing.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (Booking, error) {
	if !status.Valid() {
		return Booking{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if current.Status == status {
		return current, nil
	}
	if !current.Status.CanTransition(status) {
		return Booking{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, status)
	}

	b, err := s.store.UpdateStatus(ctx, id, current.Status, status, s.now().UTC())
	if err != nil {
		return Booking{}, err
	}

	s.logger.InfoContext(ctx, "booking status changed",
		logger.Component("booking"),
		logger.ID("booking_id", b.ID),
		logger.Key("from", current.Status),
		logger.Key("to", b.Status),
	)
	s.broadcaster.Broadcast(EventUpdated, b, realtime.TargetAuth)
	return b, nil
}

// Get returns one booking.
func (s *Service) Get(ctx context.Context, id string) (Booking, error) {
	return s.store.Get(ctx, id)
}

// List returns bookings newest first. The limit defaults to
// DefaultListLimit and is capped at MaxListLimit.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Booking, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	f.Limit = min(f.Limit, MaxListLimit)
	return s.store.List(ctx, f)
}

func normalize(in CreateInput) CreateInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Service = strings.TrimSpace(in.Service)
	in.Note = strings.TrimSpace(in.Note)
	return in
}
