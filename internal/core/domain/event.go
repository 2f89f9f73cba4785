package domain

import "time"

// ReservationAction names what happened to a reservation.
type ReservationAction string

const (
	ActionCreated       ReservationAction = "created"
	ActionCancelled     ReservationAction = "cancelled"
	ActionStatusUpdated ReservationAction = "status_updated"
)

// ReservationEvent is an audit record of a reservation change.
type ReservationEvent struct {
	ReservationID string
	UserID        string
	ActorID       string
	Action        ReservationAction
	Status        ReservationStatus
	OccurredAt    time.Time
}
