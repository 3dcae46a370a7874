package models

import (
	"time"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

// GeoPoint is an optional coordinate attached to a free-text place name.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Route is a driver-published trip offer. SeatsTotal is fixed at creation;
// SeatsLeft is the only field mutated by booking activity and always stays
// within [0, SeatsTotal]. The counter itself is owned by the database — the
// struct only carries the last value read.
type Route struct {
	ID        uuid.UUID  `json:"id"`
	DriverID  uuid.UUID  `json:"driver_id"`
	VehicleID *uuid.UUID `json:"vehicle_id,omitempty"`

	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	// Optional geocoded points; nil when the place is text-only.
	OriginPoint      *GeoPoint `json:"origin_point,omitempty"`
	DestinationPoint *GeoPoint `json:"destination_point,omitempty"`

	DepartAt    time.Time `json:"depart_at"`
	DurationMin int       `json:"duration_min"`

	SeatsTotal  int   `json:"seats_total"`
	SeatsLeft   int   `json:"seats_left"`
	FarePerSeat int64 `json:"fare_per_seat"` // smallest currency unit per seat

	Status    types.RouteStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// DriverProfile is the read-side projection of a driver joined into
// directory views. Profile CRUD itself lives outside this core.
type DriverProfile struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Phone  string    `json:"phone"`
	Rating float64   `json:"rating"`
}

type Vehicle struct {
	ID       uuid.UUID `json:"id"`
	DriverID uuid.UUID `json:"driver_id"`
	Make     string    `json:"make"`
	Model    string    `json:"model"`
	Plate    string    `json:"plate"`
	Seats    int       `json:"seats"`
}

// RouteCard is one search result: the route plus the joined driver and
// vehicle the passenger sees before booking.
type RouteCard struct {
	Route   Route         `json:"route"`
	Driver  DriverProfile `json:"driver"`
	Vehicle *Vehicle      `json:"vehicle,omitempty"`
}

// RoutePassenger is a booking on a route with the passenger projection
// the driver dashboard shows.
type RoutePassenger struct {
	Booking   Booking       `json:"booking"`
	Passenger DriverProfile `json:"passenger"` // same projection shape: id, name, phone, rating
}

// DriverRouteView is one route on the driver dashboard with its nested
// passenger list.
type DriverRouteView struct {
	Route      Route            `json:"route"`
	Passengers []RoutePassenger `json:"passengers"`
}

// SearchFilter narrows the route directory. Empty strings match everything;
// MinSeats 0 means any availability.
type SearchFilter struct {
	Origin      string
	Destination string
	MinSeats    int
}
