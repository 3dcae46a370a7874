package route

import (
	"context"
	"errors"
	"time"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/trm"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

// RouteService owns the route lifecycle and the directory reads. The
// trip id equals the route id: starting a route opens its trip for
// location reporting.
type RouteService struct {
	routes    RouteRepo
	bookings  BookingRepo
	locations LocationRepo
	geo       Geocoder
	notify    Notifier

	logger logger.Logger
	trm    trm.TxManager
}

func NewRouteService(routes RouteRepo, bookings BookingRepo, locations LocationRepo, geo Geocoder, notify Notifier, log logger.Logger, trm trm.TxManager) *RouteService {
	return &RouteService{
		routes:    routes,
		bookings:  bookings,
		locations: locations,
		geo:       geo,
		notify:    notify,
		logger:    log,
		trm:       trm,
	}
}

// Create publishes a new route for the calling driver. seats_left starts
// equal to seats_total. Geocoding is best effort: a lookup failure keeps
// the place text-only.
func (s *RouteService) Create(ctx context.Context, route *models.Route) (*models.Route, error) {
	ctx = wrap.WithAction(ctx, "create_route")

	user := models.UserFromContext(ctx)
	if user.IsAnonymous() {
		return nil, types.ErrNotAuthenticated
	}

	route.DriverID = user.ID
	route.Status = types.RouteUpcoming

	if s.geo != nil && s.geo.Enabled() {
		if point, err := s.geo.Geocode(ctx, route.Origin); err != nil {
			s.logger.Warn(ctx, "failed to geocode origin", "place", route.Origin, "error", err.Error())
		} else {
			route.OriginPoint = point
		}
		if point, err := s.geo.Geocode(ctx, route.Destination); err != nil {
			s.logger.Warn(ctx, "failed to geocode destination", "place", route.Destination, "error", err.Error())
		} else {
			route.DestinationPoint = point
		}
	}

	created, err := s.routes.Create(ctx, route)
	if err != nil {
		return nil, wrap.Error(ctx, err)
	}

	return created, nil
}

func (s *RouteService) Get(ctx context.Context, routeID uuid.UUID) (*models.Route, error) {
	ctx = wrap.WithAction(ctx, "get_route")
	return s.routes.Get(ctx, routeID)
}

// Search lists upcoming routes matching the filter, departure ascending.
func (s *RouteService) Search(ctx context.Context, filter models.SearchFilter) ([]models.RouteCard, error) {
	ctx = wrap.WithAction(ctx, "search_routes")
	return s.routes.Search(ctx, filter)
}

// ActiveForDriver builds the driver dashboard: every non-cancelled route
// with its nested passenger list.
func (s *RouteService) ActiveForDriver(ctx context.Context) ([]models.DriverRouteView, error) {
	ctx = wrap.WithAction(ctx, "active_routes_for_driver")

	user := models.UserFromContext(ctx)
	if user.IsAnonymous() {
		return nil, types.ErrNotAuthenticated
	}

	routes, err := s.routes.ActiveForDriver(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	views := make([]models.DriverRouteView, 0, len(routes))
	for _, route := range routes {
		passengers, err := s.bookings.ListByRoute(ctx, route.ID)
		if err != nil {
			return nil, wrap.Error(wrap.WithRouteID(ctx, route.ID.String()), err)
		}
		views = append(views, models.DriverRouteView{Route: route, Passengers: passengers})
	}

	return views, nil
}

// Start moves an upcoming route to ONGOING and opens the trip.
func (s *RouteService) Start(ctx context.Context, routeID uuid.UUID) (*models.Route, error) {
	ctx = wrap.WithAction(ctx, "start_route")
	return s.transition(ctx, routeID, types.RouteUpcoming, types.RouteOngoing)
}

// Complete finishes an ongoing route and drops the trip's position row.
func (s *RouteService) Complete(ctx context.Context, routeID uuid.UUID) (*models.Route, error) {
	ctx = wrap.WithAction(ctx, "complete_route")

	route, err := s.transition(ctx, routeID, types.RouteOngoing, types.RouteCompleted)
	if err != nil {
		return nil, err
	}

	if err := s.locations.Delete(ctx, routeID); err != nil {
		s.logger.Error(wrap.ErrorCtx(ctx, err), "failed to delete trip location", err)
	}

	return route, nil
}

func (s *RouteService) transition(ctx context.Context, routeID uuid.UUID, from, to types.RouteStatus) (*models.Route, error) {
	user := models.UserFromContext(ctx)
	if user.IsAnonymous() {
		return nil, types.ErrNotAuthenticated
	}

	route, err := s.routes.Get(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if route.DriverID != user.ID {
		return nil, types.ErrNotRouteOwner
	}

	if err := s.routes.UpdateStatus(ctx, routeID, from, to); err != nil {
		return nil, err
	}
	route.Status = to

	return route, nil
}

// Cancel irreversibly cancels a route before completion. Active bookings
// on it are cancelled in the same transaction and their passengers
// notified; the seat ledger needs no correction on a dead route.
func (s *RouteService) Cancel(ctx context.Context, routeID uuid.UUID) (*models.Route, error) {
	ctx = wrap.WithAction(ctx, "cancel_route")

	user := models.UserFromContext(ctx)
	if user.IsAnonymous() {
		return nil, types.ErrNotAuthenticated
	}

	var (
		route     *models.Route
		cancelled []models.RoutePassenger
	)

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		var err error
		route, err = s.routes.Get(ctx, routeID)
		if err != nil {
			return err
		}
		if route.DriverID != user.ID {
			return types.ErrNotRouteOwner
		}

		if err := s.routes.CancelActive(ctx, routeID); err != nil {
			return err
		}
		route.Status = types.RouteCancelled

		passengers, err := s.bookings.ListByRoute(ctx, routeID)
		if err != nil {
			return err
		}

		for _, p := range passengers {
			if p.Booking.Status.Terminal() {
				continue
			}
			if err := s.bookings.CancelActive(ctx, p.Booking.ID); err != nil {
				if errors.Is(err, types.ErrBookingFinalized) {
					continue
				}
				return err
			}
			p.Booking.Status = types.BookingCancelled
			cancelled = append(cancelled, p)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.locations.Delete(ctx, routeID); err != nil {
		s.logger.Error(wrap.ErrorCtx(ctx, err), "failed to delete trip location", err)
	}

	now := time.Now()
	for _, p := range cancelled {
		msg := models.BookingStatusMessage{
			BookingID:     p.Booking.ID,
			BookingRef:    p.Booking.BookingRef,
			RouteID:       routeID,
			Status:        p.Booking.Status,
			PaymentStatus: p.Booking.PaymentStatus,
			ChangedAt:     now,
		}
		if err := s.notify.PublishBookingStatus(ctx, p.Booking.PassengerID, msg); err != nil {
			s.logger.Error(wrap.ErrorCtx(ctx, err), "failed to publish booking status", err)
		}
	}

	return route, nil
}
