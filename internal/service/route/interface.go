package route

import (
	"context"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

type RouteRepo interface {
	Create(ctx context.Context, route *models.Route) (*models.Route, error)
	Get(ctx context.Context, routeID uuid.UUID) (*models.Route, error)
	Search(ctx context.Context, filter models.SearchFilter) ([]models.RouteCard, error)
	ActiveForDriver(ctx context.Context, driverID uuid.UUID) ([]models.Route, error)
	UpdateStatus(ctx context.Context, routeID uuid.UUID, from, to types.RouteStatus) error
	CancelActive(ctx context.Context, routeID uuid.UUID) error
}

type BookingRepo interface {
	ListByRoute(ctx context.Context, routeID uuid.UUID) ([]models.RoutePassenger, error)
	CancelActive(ctx context.Context, bookingID uuid.UUID) error
}

type LocationRepo interface {
	Delete(ctx context.Context, tripID uuid.UUID) error
}

// Geocoder resolves free-text place names to coordinates. Optional:
// disabled when no API key is configured, and never fatal.
type Geocoder interface {
	Enabled() bool
	Geocode(ctx context.Context, place string) (*models.GeoPoint, error)
}

type Notifier interface {
	PublishBookingStatus(ctx context.Context, passengerID uuid.UUID, msg models.BookingStatusMessage) error
}
