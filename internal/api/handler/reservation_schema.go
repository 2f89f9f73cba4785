package handler

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// flexBool accepts a JSON boolean as well as the "true" string multipart
// forms send. Anything else is false.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return b.UnmarshalParam(s)
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		*b = false
		return nil
	}
	*b = flexBool(v)
	return nil
}

// UnmarshalParam satisfies echo.BindUnmarshaler for form fields.
func (b *flexBool) UnmarshalParam(param string) error {
	*b = flexBool(strings.TrimSpace(param) == "true")
	return nil
}

// flexFloat accepts a JSON number or a numeric string. An empty string
// decodes to zero so the required rule reports it.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return f.UnmarshalParam(s)
	}
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*f = 0
		return nil
	}
	*f = flexFloat(*v)
	return nil
}

// UnmarshalParam satisfies echo.BindUnmarshaler for form fields.
func (f *flexFloat) UnmarshalParam(param string) error {
	param = strings.TrimSpace(param)
	if param == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// createReservationRequest binds both JSON and multipart bodies. The optional
// proof file travels in the multipart field "paymentProof".
type createReservationRequest struct {
	ServiceName   string    `json:"serviceName"   form:"serviceName"   validate:"required"`
	Date          string    `json:"date"          form:"date"          validate:"required"`
	Time          string    `json:"time"          form:"time"          validate:"required"`
	Price         flexFloat `json:"price"         form:"price"         validate:"required"`
	HasColor      flexBool  `json:"hasColor"      form:"hasColor"`
	PaymentMethod string    `json:"paymentMethod" form:"paymentMethod"`
}

type checkAvailabilityRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type reservationResponse struct {
	ID            string    `json:"_id"`
	UserID        string    `json:"userId"`
	ServiceName   string    `json:"serviceName"`
	Date          time.Time `json:"date"`
	Time          string    `json:"time"`
	Price         float64   `json:"price"`
	HasColor      bool      `json:"hasColor"`
	PaymentMethod string    `json:"paymentMethod"`
	PaymentProof  string    `json:"paymentProof"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type ownerResponse struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// adminReservationResponse carries the populated owner in place of the raw
// user id; userId is null when the owner no longer exists.
type adminReservationResponse struct {
	ID            string         `json:"_id"`
	UserID        *ownerResponse `json:"userId"`
	ServiceName   string         `json:"serviceName"`
	Date          time.Time      `json:"date"`
	Time          string         `json:"time"`
	Price         float64        `json:"price"`
	HasColor      bool           `json:"hasColor"`
	PaymentMethod string         `json:"paymentMethod"`
	PaymentProof  string         `json:"paymentProof"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type createReservationResponse struct {
	Message string              `json:"message"`
	Booking reservationResponse `json:"booking"`
}

type reservationMessageResponse struct {
	Message     string              `json:"message"`
	Reservation reservationResponse `json:"reservation"`
}

type availabilityResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
	Booked    int64  `json:"booked"`
	Capacity  int64  `json:"capacity"`
	Remaining int64  `json:"remaining"`
}
