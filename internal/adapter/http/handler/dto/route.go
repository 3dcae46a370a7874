package dto

import (
	"time"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/validator"
)

type CreateRouteRequest struct {
	VehicleID   string    `json:"vehicle_id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartAt    time.Time `json:"depart_at"`
	DurationMin int       `json:"duration_min"`
	SeatsTotal  int       `json:"seats_total"`
	FarePerSeat int64     `json:"fare_per_seat"`
}

func (r *CreateRouteRequest) Validate(v *validator.Validator) {
	if r.VehicleID != "" {
		_, err := uuid.Parse(r.VehicleID)
		v.Check(err == nil, "vehicle_id", "must be a valid UUID")
	}

	v.Check(r.Origin != "", "origin", "must be provided")
	v.Check(len(r.Origin) <= 255, "origin", "must not be more than 255 characters long")
	v.Check(r.Destination != "", "destination", "must be provided")
	v.Check(len(r.Destination) <= 255, "destination", "must not be more than 255 characters long")

	v.Check(!r.DepartAt.IsZero(), "depart_at", "must be provided")
	v.Check(r.DurationMin > 0, "duration_min", "must be positive")

	v.Check(r.SeatsTotal >= 1, "seats_total", "must be at least 1")
	v.Check(r.SeatsTotal <= 50, "seats_total", "must not be more than 50")
	v.Check(r.FarePerSeat > 0, "fare_per_seat", "must be positive")
}

func (r *CreateRouteRequest) ToModel() (*models.Route, error) {
	route := &models.Route{
		Origin:      r.Origin,
		Destination: r.Destination,
		DepartAt:    r.DepartAt,
		DurationMin: r.DurationMin,
		SeatsTotal:  r.SeatsTotal,
		FarePerSeat: r.FarePerSeat,
	}

	if r.VehicleID != "" {
		vehicleUUID, err := uuid.Parse(r.VehicleID)
		if err != nil {
			return nil, err
		}
		route.VehicleID = &vehicleUUID
	}

	return route, nil
}

type SearchRoutesRequest struct {
	Origin      string
	Destination string
	MinSeats    int
}

func (r *SearchRoutesRequest) Validate(v *validator.Validator) {
	v.Check(r.MinSeats >= 0, "min_seats", "must not be negative")
	v.Check(len(r.Origin) <= 255, "origin", "must not be more than 255 characters long")
	v.Check(len(r.Destination) <= 255, "destination", "must not be more than 255 characters long")
}
