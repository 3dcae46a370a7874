package booking

import (
	"context"
	"time"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

type BookingRepo interface {
	Create(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	CountByDate(ctx context.Context, date time.Time) (int, error)
	Get(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]models.PassengerBookingView, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to types.BookingStatus) error
	CancelActive(ctx context.Context, bookingID uuid.UUID) error
	UpdateSeats(ctx context.Context, booking *models.Booking) error
	MarkPaid(ctx context.Context, bookingID uuid.UUID) error
}

// RouteRepo is the seat ledger plus the route reads the orchestrator
// needs for ownership and bookability checks.
type RouteRepo interface {
	Get(ctx context.Context, routeID uuid.UUID) (*models.Route, error)
	ReserveSeats(ctx context.Context, routeID uuid.UUID, seats int) error
	RestoreSeats(ctx context.Context, routeID uuid.UUID, seats int) error
	AdjustSeats(ctx context.Context, routeID uuid.UUID, delta int) error
}

type ProfileRepo interface {
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	DriversByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.DriverProfile, error)
	VehiclesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Vehicle, error)
}

// Notifier fans booking events out to the change feed. Publish failures
// are logged, never propagated: the write already committed.
type Notifier interface {
	PublishBookingRequested(ctx context.Context, driverID uuid.UUID, msg models.BookingRequestedMessage) error
	PublishBookingStatus(ctx context.Context, passengerID uuid.UUID, msg models.BookingStatusMessage) error
}
