package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/salonbook/salon-api/internal/api/metrics"
	"github.com/salonbook/salon-api/internal/core/domain"
	"github.com/salonbook/salon-api/internal/core/ports"
)

// ReservationService implements the reservation lifecycle. Any status may be
// set to any other through UpdateStatus.
type ReservationService struct {
	repo   ports.ReservationRepository
	guard  *AvailabilityService
	locker ports.SlotLocker
	events ports.EventPublisher
	logger zerolog.Logger
	now    func() time.Time
}

// NewReservationService wires the service. locker and events may be nil: a nil
// locker leaves the count-then-insert unguarded, a nil publisher drops events.
func NewReservationService(
	repo ports.ReservationRepository,
	guard *AvailabilityService,
	locker ports.SlotLocker,
	events ports.EventPublisher,
	logger zerolog.Logger,
) *ReservationService {
	if locker == nil {
		locker = noopLocker{}
	}
	if events == nil {
		events = discardPublisher{}
	}
	return &ReservationService{
		repo:   repo,
		guard:  guard,
		locker: locker,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *ReservationService) CheckAvailability(ctx context.Context, date, timeLabel string) (domain.Availability, error) {
	return s.guard.CheckAvailability(ctx, date, timeLabel)
}

// Create books a slot. The capacity count and the insert are two separate
// store operations; concurrent creates may overshoot the capacity unless a
// SlotLocker is configured.
func (s *ReservationService) Create(ctx context.Context, in ports.CreateReservationInput) (*domain.Reservation, error) {
	serviceName := strings.TrimSpace(in.ServiceName)
	timeLabel := strings.TrimSpace(in.Time)
	switch {
	case in.UserID == "":
		return nil, domain.ErrUnauthorized
	case serviceName == "":
		return nil, domain.Invalid("serviceName is required")
	case strings.TrimSpace(in.Date) == "":
		return nil, domain.Invalid("date is required")
	case timeLabel == "":
		return nil, domain.Invalid("time is required")
	case in.Price == 0:
		return nil, domain.Invalid("price is required")
	}

	day, err := domain.ParseSlotDate(in.Date)
	if err != nil {
		return nil, err
	}
	method, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	proof := strings.TrimSpace(in.PaymentProof)
	if proof == "" {
		proof = domain.NoPaymentProof
	}

	release, err := s.locker.Lock(ctx, day, timeLabel)
	if err != nil {
		if errors.Is(err, domain.ErrSlotBusy) {
			metrics.SlotRejectionsTotal.WithLabelValues("busy").Inc()
		}
		return nil, err
	}
	defer release()

	availability, err := s.guard.check(ctx, day, timeLabel)
	if err != nil {
		return nil, err
	}
	if !availability.Available {
		metrics.SlotRejectionsTotal.WithLabelValues("full").Inc()
		s.logger.Info().
			Str("user_id", in.UserID).
			Time("date", day).
			Str("time", timeLabel).
			Int64("booked", availability.Booked).
			Msg("slot full")
		return nil, domain.ErrSlotFull
	}

	now := s.now()
	r := &domain.Reservation{
		UserID:        in.UserID,
		ServiceName:   serviceName,
		Date:          day,
		Time:          timeLabel,
		Price:         in.Price,
		HasColor:      in.HasColor,
		PaymentMethod: method,
		PaymentProof:  proof,
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		s.logger.Error().Err(err).Str("user_id", in.UserID).Msg("failed to create reservation")
		return nil, err
	}

	metrics.ReservationsCreatedTotal.WithLabelValues(string(method)).Inc()
	s.logger.Info().
		Str("reservation_id", r.ID).
		Str("user_id", r.UserID).
		Time("date", r.Date).
		Str("time", r.Time).
		Msg("reservation created")
	s.publish(r, in.UserID, domain.ActionCreated)

	return r, nil
}

func (s *ReservationService) ListForUser(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.repo.ListByUser(ctx, userID)
}

// ListAll is meant for administrators; the role gate lives in the transport layer.
func (s *ReservationService) ListAll(ctx context.Context) ([]*domain.ReservationWithOwner, error) {
	return s.repo.ListAll(ctx)
}

// Cancel marks the requester's reservation as cancelled. Cancelling twice is
// not an error.
func (s *ReservationService) Cancel(ctx context.Context, reservationID, requesterID string) (*domain.Reservation, error) {
	r, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if r.UserID != requesterID {
		s.logger.Warn().
			Str("reservation_id", reservationID).
			Str("requester_id", requesterID).
			Msg("cancel refused: not the owner")
		return nil, domain.ErrUnauthorized
	}

	updated, err := s.repo.UpdateStatus(ctx, r.ID, domain.StatusCancelled, s.now())
	if err != nil {
		return nil, err
	}

	metrics.StatusChangesTotal.WithLabelValues(string(domain.StatusCancelled)).Inc()
	s.logger.Info().Str("reservation_id", updated.ID).Msg("reservation cancelled")
	s.publish(updated, requesterID, domain.ActionCancelled)
	return updated, nil
}

// UpdateStatus overwrites the status without checking the current one.
func (s *ReservationService) UpdateStatus(ctx context.Context, reservationID, status, actorID string) (*domain.Reservation, error) {
	next := domain.ReservationStatus(strings.TrimSpace(status))
	if !next.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	updated, err := s.repo.UpdateStatus(ctx, reservationID, next, s.now())
	if err != nil {
		return nil, err
	}

	metrics.StatusChangesTotal.WithLabelValues(string(next)).Inc()
	s.logger.Info().
		Str("reservation_id", updated.ID).
		Str("status", string(next)).
		Str("actor_id", actorID).
		Msg("reservation status updated")
	s.publish(updated, actorID, domain.ActionStatusUpdated)
	return updated, nil
}

func (s *ReservationService) publish(r *domain.Reservation, actorID string, action domain.ReservationAction) {
	s.events.Publish(domain.ReservationEvent{
		ReservationID: r.ID,
		UserID:        r.UserID,
		ActorID:       actorID,
		Action:        action,
		Status:        r.Status,
		OccurredAt:    s.now(),
	})
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, time.Time, string) (func(), error) {
	return func() {}, nil
}

type discardPublisher struct{}

func (discardPublisher) Publish(domain.ReservationEvent) {}
