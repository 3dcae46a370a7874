package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/metrics"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/trm"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

const serviceName = "booking"

// Options are the tunable policy knobs: the fee percentage applied to
// every fare, and how long to wait for a freshly signed-up user's row to
// materialise before giving up.
type Options struct {
	ServiceFeePercent int

	UserRowAttempts int
	UserRowDelay    time.Duration
}

// BookingService is the orchestrator: it sequences the seat ledger, the
// booking state machine, and the change-feed notifications.
type BookingService struct {
	bookings BookingRepo
	routes   RouteRepo
	profiles ProfileRepo
	notify   Notifier

	opts Options

	logger logger.Logger
	trm    trm.TxManager
}

func NewBookingService(bookings BookingRepo, routes RouteRepo, profiles ProfileRepo, notify Notifier, opts Options, log logger.Logger, trm trm.TxManager) *BookingService {
	return &BookingService{
		bookings: bookings,
		routes:   routes,
		profiles: profiles,
		notify:   notify,
		opts:     opts,
		logger:   log,
		trm:      trm,
	}
}

// Create reserves seats and records the booking as one transaction:
// reserve -> create -> notify. The reserve step is the conditional
// decrement, so a capacity conflict simply rolls the transaction back
// with ErrSeatsUnavailable and nothing was written.
func (s *BookingService) Create(ctx context.Context, routeID uuid.UUID, seats int, method types.PaymentMethod) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, "create_booking")

	user := models.UserFromContext(ctx)
	if user.IsAnonymous() {
		return nil, types.ErrNotAuthenticated
	}

	if seats < 1 {
		return nil, fmt.Errorf("seats must be at least 1")
	}

	// Signup materialises the user row through a downstream trigger;
	// a brand-new passenger can outrun it.
	if err := s.waitForUserRow(ctx, user.ID); err != nil {
		return nil, wrap.Error(ctx, err)
	}

	var (
		created *models.Booking
		route   *models.Route
	)

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		var err error
		route, err = s.routes.Get(ctx, routeID)
		if err != nil {
			return wrap.Error(ctx, err)
		}
		if route.Status != types.RouteUpcoming {
			return wrap.Error(ctx, types.ErrRouteNotBookable)
		}

		if err := s.routes.ReserveSeats(ctx, routeID, seats); err != nil {
			if errors.Is(err, types.ErrSeatsUnavailable) {
				metrics.CapacityConflictsTotal.WithLabelValues(serviceName).Inc()
			}
			return wrap.Error(ctx, err)
		}

		ref, err := s.generateBookingRef(ctx)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("could not generate booking ref: %w", err))
		}

		total, fee, grand := fareBreakdown(seats, route.FarePerSeat, s.opts.ServiceFeePercent)

		booking := &models.Booking{
			RouteID:       routeID,
			PassengerID:   user.ID,
			Seats:         seats,
			TotalFare:     total,
			ServiceFee:    fee,
			GrandTotal:    grand,
			PaymentMethod: method,
			PaymentStatus: types.PaymentPending,
			Status:        types.BookingPending,
			BookingRef:    ref,
		}

		created, err = s.bookings.Create(ctx, booking)
		if err != nil {
			return wrap.Error(ctx, fmt.Errorf("could not create booking in repo: %w", err))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking(serviceName, string(created.Status), created.Seats)

	// Notify the driver. The booking is committed; a publish failure only
	// costs the realtime push, readers still see it on the next fetch.
	msg := models.BookingRequestedMessage{
		BookingID:   created.ID,
		BookingRef:  created.BookingRef,
		RouteID:     created.RouteID,
		PassengerID: created.PassengerID,
		Seats:       created.Seats,
		GrandTotal:  created.GrandTotal,
		Status:      created.Status,
		RequestedAt: created.CreatedAt,
	}
	if err := s.notify.PublishBookingRequested(ctx, route.DriverID, msg); err != nil {
		s.logger.Error(wrap.ErrorCtx(ctx, err), "failed to publish booking requested", err)
	}

	return created, nil
}

// Get returns the booking if the caller owns it or owns its route.
func (s *BookingService) Get(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, "get_booking")

	user := models.UserFromContext(ctx)
	if user.IsAnonymous() {
		return nil, types.ErrNotAuthenticated
	}

	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.PassengerID != user.ID {
		route, err := s.routes.Get(ctx, booking.RouteID)
		if err != nil {
			return nil, err
		}
		if route.DriverID != user.ID {
			return nil, types.ErrNotBookingOwner
		}
	}

	return booking, nil
}

// Accept moves a pending booking to ACCEPTED. Driver-only.
func (s *BookingService) Accept(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, "accept_booking")
	return s.driverTransition(ctx, bookingID, types.BookingPending, types.BookingAccepted)
}

// Complete moves an accepted booking to COMPLETED. Driver-only.
func (s *BookingService) Complete(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, "complete_booking")
	return s.driverTransition(ctx, bookingID, types.BookingAccepted, types.BookingCompleted)
}

func (s *BookingService) driverTransition(ctx context.Context, bookingID uuid.UUID, from, to types.BookingStatus) (*models.Booking, error) {
	user := models.UserFromContext(ctx)
	if user.IsAnonymous() {
		return nil, types.ErrNotAuthenticated
	}

	var booking *models.Booking

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.Get(ctx, bookingID)
		if err != nil {
			return err
		}

		route, err := s.routes.Get(ctx, booking.RouteID)
		if err != nil {
			return err
		}
		if route.DriverID != user.ID {
			return types.ErrNotRouteOwner
		}

		if booking.Status.Terminal() {
			return types.ErrBookingFinalized
		}
		if !booking.Status.CanTransition(to) {
			return types.ErrInvalidTransition
		}

		if err := s.bookings.UpdateStatus(ctx, bookingID, from, to); err != nil {
			return wrap.Error(ctx, err)
		}
		booking.Status = to

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking(serviceName, string(booking.Status), 0)
	s.notifyStatus(ctx, booking)
	return booking, nil
}

// Decline rejects a pending booking and hands its seats back to the
// ledger. Driver-only; part of the same transaction, so the restore
// happens exactly once with the status flip.
func (s *BookingService) Decline(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, "decline_booking")

	user := models.UserFromContext(ctx)
	if user.IsAnonymous() {
		return nil, types.ErrNotAuthenticated
	}

	var booking *models.Booking

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.Get(ctx, bookingID)
		if err != nil {
			return err
		}

		route, err := s.routes.Get(ctx, booking.RouteID)
		if err != nil {
			return err
		}
		if route.DriverID != user.ID {
			return types.ErrNotRouteOwner
		}

		if err := s.bookings.UpdateStatus(ctx, bookingID, types.BookingPending, types.BookingCancelled); err != nil {
			if errors.Is(err, types.ErrInvalidTransition) && booking.Status.Terminal() {
				return types.ErrBookingFinalized
			}
			return err
		}
		booking.Status = types.BookingCancelled

		if err := s.routes.RestoreSeats(ctx, booking.RouteID, booking.Seats); err != nil {
			return wrap.Error(ctx, fmt.Errorf("could not restore seats: %w", err))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordBooking(serviceName, string(booking.Status), 0)
	s.notifyStatus(ctx, booking)
	return booking, nil
}

// Cancel cancels an active booking and restores its seats. Allowed for
// the passenger who owns it and for the route's driver. Cancelling an
// already-cancelled booking is a no-op: the guarded update matches zero
// rows, so the seats are never credited twice.
func (s *BookingService) Cancel(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, "cancel_booking")

	user := models.UserFromContext(ctx)
	if user.IsAnonymous() {
		return nil, types.ErrNotAuthenticated
	}

	var (
		booking *models.Booking
		already bool
	)

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.Get(ctx, bookingID)
		if err != nil {
			return err
		}

		if booking.PassengerID != user.ID {
			route, err := s.routes.Get(ctx, booking.RouteID)
			if err != nil {
				return err
			}
			if route.DriverID != user.ID {
				return types.ErrNotBookingOwner
			}
		}

		if err := s.bookings.CancelActive(ctx, bookingID); err != nil {
			if errors.Is(err, types.ErrBookingFinalized) && booking.Status == types.BookingCancelled {
				already = true
				return nil
			}
			return err
		}
		booking.Status = types.BookingCancelled

		if err := s.routes.RestoreSeats(ctx, booking.RouteID, booking.Seats); err != nil {
			return wrap.Error(ctx, fmt.Errorf("could not restore seats: %w", err))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if already {
		return booking, nil
	}

	metrics.RecordBooking(serviceName, string(booking.Status), 0)
	s.notifyStatus(ctx, booking)
	return booking, nil
}

// MarkPaid confirms cash receipt. Driver-only, valid from any
// non-terminal status, no-op when already paid.
func (s *BookingService) MarkPaid(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, "mark_booking_paid")

	user := models.UserFromContext(ctx)
	if user.IsAnonymous() {
		return nil, types.ErrNotAuthenticated
	}

	var (
		booking *models.Booking
		already bool
	)

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.Get(ctx, bookingID)
		if err != nil {
			return err
		}

		route, err := s.routes.Get(ctx, booking.RouteID)
		if err != nil {
			return err
		}
		if route.DriverID != user.ID {
			return types.ErrNotRouteOwner
		}

		if booking.Status.Terminal() {
			return types.ErrBookingFinalized
		}
		if booking.PaymentStatus == types.PaymentPaid {
			already = true
			return nil
		}

		if err := s.bookings.MarkPaid(ctx, bookingID); err != nil {
			return wrap.Error(ctx, err)
		}
		booking.PaymentStatus = types.PaymentPaid

		return nil
	})
	if err != nil {
		return nil, err
	}

	// nothing changed, nothing to announce
	if already {
		return booking, nil
	}

	s.notifyStatus(ctx, booking)
	return booking, nil
}

// UpdateSeats edits the seat count of a still-pending booking. The net
// delta against the current count is what the ledger validates: growing
// from 2 to 3 seats only needs 1 more seat free.
func (s *BookingService) UpdateSeats(ctx context.Context, bookingID uuid.UUID, newSeats int) (*models.Booking, error) {
	ctx = wrap.WithAction(ctx, "update_booking_seats")

	user := models.UserFromContext(ctx)
	if user.IsAnonymous() {
		return nil, types.ErrNotAuthenticated
	}

	if newSeats < 1 {
		return nil, fmt.Errorf("seats must be at least 1")
	}

	var booking *models.Booking

	err := s.trm.Do(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.bookings.Get(ctx, bookingID)
		if err != nil {
			return err
		}

		if booking.PassengerID != user.ID {
			return types.ErrNotBookingOwner
		}
		if booking.Status != types.BookingPending {
			return types.ErrBookingNotPending
		}

		route, err := s.routes.Get(ctx, booking.RouteID)
		if err != nil {
			return err
		}

		if err := s.routes.AdjustSeats(ctx, booking.RouteID, newSeats-booking.Seats); err != nil {
			if errors.Is(err, types.ErrSeatsUnavailable) {
				metrics.CapacityConflictsTotal.WithLabelValues(serviceName).Inc()
			}
			return err
		}

		booking.Seats = newSeats
		booking.TotalFare, booking.ServiceFee, booking.GrandTotal =
			fareBreakdown(newSeats, route.FarePerSeat, s.opts.ServiceFeePercent)

		if err := s.bookings.UpdateSeats(ctx, booking); err != nil {
			return wrap.Error(ctx, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// ListForPassenger returns the caller's bookings with driver and vehicle
// entities stitched in from one batch fetch per entity kind, instead of
// a join per row.
func (s *BookingService) ListForPassenger(ctx context.Context) ([]models.PassengerBookingView, error) {
	ctx = wrap.WithAction(ctx, "list_passenger_bookings")

	user := models.UserFromContext(ctx)
	if user.IsAnonymous() {
		return nil, types.ErrNotAuthenticated
	}

	views, err := s.bookings.ListByPassenger(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return views, nil
	}

	driverIDs := make([]uuid.UUID, 0, len(views))
	vehicleIDs := make([]uuid.UUID, 0, len(views))
	seenDrivers := make(map[uuid.UUID]bool)
	seenVehicles := make(map[uuid.UUID]bool)
	for _, v := range views {
		if !seenDrivers[v.Route.DriverID] {
			seenDrivers[v.Route.DriverID] = true
			driverIDs = append(driverIDs, v.Route.DriverID)
		}
		if v.Route.VehicleID != nil && !seenVehicles[*v.Route.VehicleID] {
			seenVehicles[*v.Route.VehicleID] = true
			vehicleIDs = append(vehicleIDs, *v.Route.VehicleID)
		}
	}

	drivers, err := s.profiles.DriversByIDs(ctx, driverIDs)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.profiles.VehiclesByIDs(ctx, vehicleIDs)
	if err != nil {
		return nil, err
	}

	for i := range views {
		views[i].Driver = drivers[views[i].Route.DriverID]
		if id := views[i].Route.VehicleID; id != nil {
			if v, ok := vehicles[*id]; ok {
				views[i].Vehicle = &v
			}
		}
	}

	return views, nil
}

func (s *BookingService) notifyStatus(ctx context.Context, booking *models.Booking) {
	msg := models.BookingStatusMessage{
		BookingID:     booking.ID,
		BookingRef:    booking.BookingRef,
		RouteID:       booking.RouteID,
		Status:        booking.Status,
		PaymentStatus: booking.PaymentStatus,
		ChangedAt:     time.Now(),
	}
	if err := s.notify.PublishBookingStatus(ctx, booking.PassengerID, msg); err != nil {
		s.logger.Error(wrap.ErrorCtx(ctx, err), "failed to publish booking status", err)
	}
}

// waitForUserRow polls until the caller's user row exists, up to the
// configured attempt budget.
func (s *BookingService) waitForUserRow(ctx context.Context, userID uuid.UUID) error {
	attempts := s.opts.UserRowAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		exists, err := s.profiles.UserExists(ctx, userID)
		if err != nil {
			lastErr = err
		} else if exists {
			return nil
		} else {
			lastErr = types.ErrNotFound
		}

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.opts.UserRowDelay):
		}
	}

	return fmt.Errorf("user row not available: %w", lastErr)
}
