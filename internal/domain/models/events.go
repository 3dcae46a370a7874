package models

import (
	"time"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

// Feed payloads. These cross the broker, so every field is tagged and
// additions must stay backward compatible for already-connected readers.

// BookingRequestedMessage is published to the driver topic when a
// passenger places a booking on one of the driver's routes.
type BookingRequestedMessage struct {
	BookingID   uuid.UUID           `json:"booking_id"`
	BookingRef  string              `json:"booking_ref"`
	RouteID     uuid.UUID           `json:"route_id"`
	PassengerID uuid.UUID           `json:"passenger_id"`
	Seats       int                 `json:"seats"`
	GrandTotal  int64               `json:"grand_total"`
	Status      types.BookingStatus `json:"status"`
	RequestedAt time.Time           `json:"requested_at"`
}

// BookingStatusMessage is published to the passenger topic whenever the
// booking changes state (accepted, cancelled, completed, paid).
type BookingStatusMessage struct {
	BookingID     uuid.UUID           `json:"booking_id"`
	BookingRef    string              `json:"booking_ref"`
	RouteID       uuid.UUID           `json:"route_id"`
	Status        types.BookingStatus `json:"status"`
	PaymentStatus types.PaymentStatus `json:"payment_status"`
	ChangedAt     time.Time           `json:"changed_at"`
}

// TripLocationMessage mirrors the latest position row onto the trip topic
// so watchers get pushes instead of polling.
type TripLocationMessage struct {
	TripID     uuid.UUID `json:"trip_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	SpeedKph   float64   `json:"speed_kph"`
	Heading    *float64  `json:"heading,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
