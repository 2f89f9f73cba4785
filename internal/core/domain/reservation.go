package domain

import (
	"strings"
	"time"
)

// DefaultMaxClientsPerSlot is the number of active reservations a single
// (date, time) slot accepts.
const DefaultMaxClientsPerSlot = 3

// NoPaymentProof is stored when no proof of payment was uploaded.
const NoPaymentProof = "N/A"

// ReservationStatus represents the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusRejected  ReservationStatus = "rejected"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
)

var allStatuses = []ReservationStatus{
	StatusPending,
	StatusConfirmed,
	StatusRejected,
	StatusCancelled,
	StatusCompleted,
}

// IsValid reports whether s is one of the known statuses.
func (s ReservationStatus) IsValid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// HoldsSlot reports whether a reservation in this status counts against the
// capacity of its slot.
func (s ReservationStatus) HoldsSlot() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted:
		return true
	default:
		return false
	}
}

// SlotHoldingStatuses lists the statuses counted by the availability check.
func SlotHoldingStatuses() []ReservationStatus {
	return []ReservationStatus{StatusPending, StatusConfirmed, StatusCompleted}
}

// PaymentMethod is how the client says they paid.
type PaymentMethod string

const (
	PaymentMTN         PaymentMethod = "mtn"
	PaymentMoov        PaymentMethod = "moov"
	PaymentOther       PaymentMethod = "autres"
	PaymentUnspecified PaymentMethod = "non spécifié"
)

// ParsePaymentMethod maps raw input onto a PaymentMethod. Blank input yields
// PaymentUnspecified.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	pm := PaymentMethod(strings.TrimSpace(raw))
	switch pm {
	case "":
		return PaymentUnspecified, nil
	case PaymentMTN, PaymentMoov, PaymentOther, PaymentUnspecified:
		return pm, nil
	default:
		return "", Invalid("paymentMethod must be one of: mtn, moov, autres, non spécifié")
	}
}

var slotDateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// ParseSlotDate parses a calendar date and strips it to UTC midnight so that
// two requests for the same day always compare equal in the store.
func ParseSlotDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, Invalid("date is required")
	}
	for _, layout := range slotDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return SlotDay(t), nil
		}
	}
	return time.Time{}, Invalid("date %q is not a valid date", raw)
}

// SlotDay truncates t to midnight UTC of its calendar day.
func SlotDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Reservation is a booking of one service in one slot.
type Reservation struct {
	ID            string
	UserID        string
	ServiceName   string
	Date          time.Time
	Time          string
	Price         float64
	HasColor      bool
	PaymentMethod PaymentMethod
	PaymentProof  string
	Status        ReservationStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Owner is the subset of a user joined into admin listings.
type Owner struct {
	ID    string
	Name  string
	Email string
}

// ReservationWithOwner is a reservation with its owner populated. Owner is nil
// when the owning user no longer exists.
type ReservationWithOwner struct {
	Reservation
	Owner *Owner
}

// Availability is the result of a slot capacity check.
type Availability struct {
	Available bool
	Booked    int64
	Capacity  int64
}

// Remaining returns the number of free places left in the slot.
func (a Availability) Remaining() int64 {
	if a.Booked >= a.Capacity {
		return 0
	}
	return a.Capacity - a.Booked
}
