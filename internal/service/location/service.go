package location

import (
	"context"
	"errors"
	"time"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/metrics"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

const serviceName = "location"

// LocationService is the live-position tracker: one row per trip,
// replaced on every report.
type LocationService struct {
	locations LocationRepo
	routes    RouteProvider
	notify    Notifier

	logger logger.Logger
}

func NewLocationService(locations LocationRepo, routes RouteProvider, notify Notifier, log logger.Logger) *LocationService {
	return &LocationService{
		locations: locations,
		routes:    routes,
		notify:    notify,
		logger:    log,
	}
}

// Report upserts the driver's position for an ongoing trip and mirrors
// it onto the trip topic. Only the route's driver may report, and only
// while the route is ONGOING.
func (s *LocationService) Report(ctx context.Context, tripID uuid.UUID, lat, lon, speedKph float64, heading *float64) error {
	ctx = wrap.WithAction(ctx, "report_location")

	user := models.UserFromContext(ctx)
	if user.IsAnonymous() {
		return types.ErrNotAuthenticated
	}

	route, err := s.routes.Get(ctx, tripID)
	if err != nil {
		return err
	}
	if route.DriverID != user.ID {
		return types.ErrNotRouteOwner
	}
	if route.Status != types.RouteOngoing {
		return types.ErrRouteFinalized
	}

	loc := &models.Location{
		TripID:     tripID,
		DriverID:   user.ID,
		Latitude:   lat,
		Longitude:  lon,
		SpeedKph:   speedKph,
		Heading:    heading,
		RecordedAt: time.Now(),
	}

	if err := s.locations.Upsert(ctx, loc); err != nil {
		return wrap.Error(ctx, err)
	}

	metrics.LocationReportsTotal.WithLabelValues(serviceName).Inc()

	msg := models.TripLocationMessage{
		TripID:     loc.TripID,
		Latitude:   loc.Latitude,
		Longitude:  loc.Longitude,
		SpeedKph:   loc.SpeedKph,
		Heading:    loc.Heading,
		RecordedAt: loc.RecordedAt,
	}
	if err := s.notify.PublishTripLocation(ctx, msg); err != nil {
		s.logger.Error(wrap.ErrorCtx(ctx, err), "failed to publish trip location", err)
	}

	return nil
}

// Latest returns the trip's current position, or nil when the driver has
// not reported yet. Absence is an answer, not an error.
func (s *LocationService) Latest(ctx context.Context, tripID uuid.UUID) (*models.Location, error) {
	ctx = wrap.WithAction(ctx, "latest_location")

	loc, err := s.locations.Latest(ctx, tripID)
	if err != nil {
		if errors.Is(err, types.ErrNoLocation) {
			return nil, nil
		}
		return nil, err
	}
	return loc, nil
}
