package ports

import (
	"context"
	"time"

	"github.com/salonbook/salon-api/internal/core/domain"
)

// CreateReservationInput carries everything needed to book a slot. Date is
// the raw calendar date as received from the client.
type CreateReservationInput struct {
	UserID        string
	ServiceName   string
	Date          string
	Time          string
	Price         float64
	HasColor      bool
	PaymentMethod string
	PaymentProof  string
}

// AvailabilityChecker answers whether a slot still has room.
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, date, timeLabel string) (domain.Availability, error)
}

// ReservationService defines the reservation use cases.
type ReservationService interface {
	AvailabilityChecker
	Create(ctx context.Context, input CreateReservationInput) (*domain.Reservation, error)
	ListForUser(ctx context.Context, userID string) ([]*domain.Reservation, error)
	ListAll(ctx context.Context) ([]*domain.ReservationWithOwner, error)
	Cancel(ctx context.Context, reservationID, requesterID string) (*domain.Reservation, error)
	UpdateStatus(ctx context.Context, reservationID, status, actorID string) (*domain.Reservation, error)
}

// SlotLocker serialises bookings of one slot across processes.
type SlotLocker interface {
	// Lock returns a release func, or domain.ErrSlotBusy when another holder owns the slot.
	Lock(ctx context.Context, date time.Time, timeLabel string) (func(), error)
}

// EventPublisher hands reservation events to the audit pipeline without blocking.
type EventPublisher interface {
	Publish(event domain.ReservationEvent)
}
