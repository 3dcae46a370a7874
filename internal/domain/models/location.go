package models

import (
	"time"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

// Location is the single live-position row of a trip. One row per trip:
// every report replaces the previous one, history is never kept, so
// storage stays O(active trips).
type Location struct {
	TripID   uuid.UUID `json:"trip_id"`
	DriverID uuid.UUID `json:"driver_id"`

	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	SpeedKph  float64  `json:"speed_kph"`
	Heading   *float64 `json:"heading,omitempty"`

	RecordedAt time.Time `json:"recorded_at"`
}
