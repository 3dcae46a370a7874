package dto

import (
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/validator"
)

type CreateBookingRequest struct {
	RouteID       string `json:"route_id"`
	Seats         int    `json:"seats"`
	PaymentMethod string `json:"payment_method"`
}

func (r *CreateBookingRequest) Validate(v *validator.Validator) {
	v.Check(r.RouteID != "", "route_id", "must be provided")
	if r.RouteID != "" {
		_, err := uuid.Parse(r.RouteID)
		v.Check(err == nil, "route_id", "must be a valid UUID")
	}

	v.Check(r.Seats >= 1, "seats", "must be at least 1")

	v.Check(r.PaymentMethod != "", "payment_method", "must be provided")
	if r.PaymentMethod != "" {
		v.Check(validator.PermittedValue(r.PaymentMethod, "CASH", "OTHER"), "payment_method", "must be one of CASH or OTHER")
	}
}

type UpdateSeatsRequest struct {
	Seats int `json:"seats"`
}

func (r *UpdateSeatsRequest) Validate(v *validator.Validator) {
	v.Check(r.Seats >= 1, "seats", "must be at least 1")
}
