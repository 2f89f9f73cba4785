package handler

import (
	"github.com/salonbook/salon-api/internal/core/domain"
	"github.com/salonbook/salon-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateInput(req createReservationRequest, userID, proof string) ports.CreateReservationInput {
	return ports.CreateReservationInput{
		UserID:        userID,
		ServiceName:   req.ServiceName,
		Date:          req.Date,
		Time:          req.Time,
		Price:         float64(req.Price),
		HasColor:      bool(req.HasColor),
		PaymentMethod: req.PaymentMethod,
		PaymentProof:  proof,
	}
}

// --- Domain → Response ---

func toReservationResponse(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		ServiceName:   r.ServiceName,
		Date:          r.Date,
		Time:          r.Time,
		Price:         r.Price,
		HasColor:      r.HasColor,
		PaymentMethod: string(r.PaymentMethod),
		PaymentProof:  r.PaymentProof,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toReservationList(list []*domain.Reservation) []reservationResponse {
	out := make([]reservationResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toReservationResponse(r))
	}
	return out
}

func toAdminReservationList(list []*domain.ReservationWithOwner) []adminReservationResponse {
	out := make([]adminReservationResponse, 0, len(list))
	for _, r := range list {
		item := adminReservationResponse{
			ID:            r.ID,
			ServiceName:   r.ServiceName,
			Date:          r.Date,
			Time:          r.Time,
			Price:         r.Price,
			HasColor:      r.HasColor,
			PaymentMethod: string(r.PaymentMethod),
			PaymentProof:  r.PaymentProof,
			Status:        string(r.Status),
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
		}
		if r.Owner != nil {
			item.UserID = &ownerResponse{ID: r.Owner.ID, Name: r.Owner.Name, Email: r.Owner.Email}
		}
		out = append(out, item)
	}
	return out
}

func toAvailabilityResponse(a domain.Availability) availabilityResponse {
	msg := "slot is available"
	if !a.Available {
		msg = "slot is already full"
	}
	return availabilityResponse{
		Available: a.Available,
		Message:   msg,
		Booked:    a.Booked,
		Capacity:  a.Capacity,
		Remaining: a.Remaining(),
	}
}
