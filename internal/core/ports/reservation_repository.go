package ports

import (
	"context"
	"time"

	"github.com/salonbook/salon-api/internal/core/domain"
)

// ReservationRepository defines persistence operations for reservations.
type ReservationRepository interface {
	// Create inserts r and sets r.ID.
	Create(ctx context.Context, r *domain.Reservation) error
	// CountInSlot counts reservations on (date, timeLabel) whose status is one of statuses.
	CountInSlot(ctx context.Context, date time.Time, timeLabel string, statuses []domain.ReservationStatus) (int64, error)
	// FindByID returns domain.ErrReservationNotFound for unknown or malformed ids.
	FindByID(ctx context.Context, id string) (*domain.Reservation, error)
	// ListByUser returns the user's reservations, newest date then latest time first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Reservation, error)
	// ListAll returns every reservation with its owner, most recently created first.
	ListAll(ctx context.Context) ([]*domain.ReservationWithOwner, error)
	// UpdateStatus overwrites the status and returns the updated reservation.
	UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus, updatedAt time.Time) (*domain.Reservation, error)
}

// EventRepository persists reservation audit events.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.ReservationEvent) error
}
