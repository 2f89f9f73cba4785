package service

import (
	"context"
	"strings"
	"time"

	"github.com/salonbook/salon-api/internal/api/metrics"
	"github.com/salonbook/salon-api/internal/core/domain"
	"github.com/salonbook/salon-api/internal/core/ports"
)

// AvailabilityService counts the slot-holding reservations of a (date, time)
// slot against its capacity.
type AvailabilityService struct {
	repo     ports.ReservationRepository
	capacity int64
}

func NewAvailabilityService(repo ports.ReservationRepository, capacity int) *AvailabilityService {
	if capacity <= 0 {
		capacity = domain.DefaultMaxClientsPerSlot
	}
	return &AvailabilityService{repo: repo, capacity: int64(capacity)}
}

func (s *AvailabilityService) CheckAvailability(ctx context.Context, date, timeLabel string) (domain.Availability, error) {
	day, err := domain.ParseSlotDate(date)
	if err != nil {
		return domain.Availability{}, err
	}
	timeLabel = strings.TrimSpace(timeLabel)
	if timeLabel == "" {
		return domain.Availability{}, domain.Invalid("time is required")
	}

	a, err := s.check(ctx, day, timeLabel)
	if err != nil {
		return domain.Availability{}, err
	}
	result := "available"
	if !a.Available {
		result = "full"
	}
	metrics.AvailabilityChecksTotal.WithLabelValues(result).Inc()
	return a, nil
}

func (s *AvailabilityService) check(ctx context.Context, day time.Time, timeLabel string) (domain.Availability, error) {
	booked, err := s.repo.CountInSlot(ctx, day, timeLabel, domain.SlotHoldingStatuses())
	if err != nil {
		return domain.Availability{}, err
	}
	return domain.Availability{
		Available: booked < s.capacity,
		Booked:    booked,
		Capacity:  s.capacity,
	}, nil
}
