package location

import (
	"context"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

type LocationRepo interface {
	Upsert(ctx context.Context, loc *models.Location) error
	Latest(ctx context.Context, tripID uuid.UUID) (*models.Location, error)
}

type RouteProvider interface {
	Get(ctx context.Context, routeID uuid.UUID) (*models.Route, error)
}

type Notifier interface {
	PublishTripLocation(ctx context.Context, msg models.TripLocationMessage) error
}
