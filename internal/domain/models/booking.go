package models

import (
	"time"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

// Booking is a passenger's seat reservation on a route. Seats is mutable
// only while Status is PENDING; the fare fields are recomputed on every
// seat change. BookingRef is generated once and never changes.
type Booking struct {
	ID          uuid.UUID `json:"id"`
	RouteID     uuid.UUID `json:"route_id"`
	PassengerID uuid.UUID `json:"passenger_id"`

	Seats      int   `json:"seats"`
	TotalFare  int64 `json:"total_fare"`
	ServiceFee int64 `json:"service_fee"`
	GrandTotal int64 `json:"grand_total"`

	PaymentMethod types.PaymentMethod `json:"payment_method"`
	PaymentStatus types.PaymentStatus `json:"payment_status"`
	Status        types.BookingStatus `json:"status"`

	BookingRef string    `json:"booking_ref"`
	CreatedAt  time.Time `json:"created_at"`
}

// PassengerBookingView is one entry of the passenger's booking list:
// the booking with its route and the batch-fetched driver/vehicle rows
// stitched in.
type PassengerBookingView struct {
	Booking Booking       `json:"booking"`
	Route   Route         `json:"route"`
	Driver  DriverProfile `json:"driver"`
	Vehicle *Vehicle      `json:"vehicle,omitempty"`
}
