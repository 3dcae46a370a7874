package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/postgres"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

type BookingRepo struct {
	db *pgxpool.Pool
}

func NewBookingRepo(db *pgxpool.Pool) *BookingRepo {
	return &BookingRepo{db: db}
}

const bookingColumns = `
	id, route_id, passenger_id, seats, total_fare, service_fee, grand_total,
	payment_method, payment_status, status, booking_ref, created_at`

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.RouteID, &b.PassengerID, &b.Seats, &b.TotalFare, &b.ServiceFee, &b.GrandTotal,
		&b.PaymentMethod, &b.PaymentStatus, &b.Status, &b.BookingRef, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepo) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	q := TxorDB(ctx, r.db)

	query := `
		INSERT INTO bookings (route_id, passenger_id, seats, total_fare, service_fee, grand_total,
		                      payment_method, payment_status, status, booking_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at;`

	err := q.QueryRow(ctx, query,
		booking.RouteID, booking.PassengerID, booking.Seats,
		booking.TotalFare, booking.ServiceFee, booking.GrandTotal,
		booking.PaymentMethod, booking.PaymentStatus, booking.Status, booking.BookingRef,
	).Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return nil, types.ErrRouteNotFound
		}
		return nil, fmt.Errorf("booking repo: Create: %w", err)
	}

	return booking, nil
}

// CountByDate feeds the daily sequence part of the booking reference.
func (r *BookingRepo) CountByDate(ctx context.Context, date time.Time) (int, error) {
	q := TxorDB(ctx, r.db)

	var count int
	query := "SELECT COUNT(*) FROM bookings WHERE DATE(created_at) = $1;"

	err := q.QueryRow(ctx, query, date.Format("2006-01-02")).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("booking repo: CountByDate: %w", err)
	}
	return count, nil
}

func (r *BookingRepo) Get(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	q := TxorDB(ctx, r.db)

	query := `SELECT` + bookingColumns + ` FROM bookings WHERE id = $1;`

	booking, err := scanBooking(q.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrBookingNotFound
		}
		return nil, fmt.Errorf("booking repo: Get: %w", err)
	}
	return booking, nil
}

// ListByPassenger returns the passenger's bookings with their routes
// joined in, newest first. Driver and vehicle rows are stitched in by
// the service from a batch fetch.
func (r *BookingRepo) ListByPassenger(ctx context.Context, passengerID uuid.UUID) ([]models.PassengerBookingView, error) {
	const op = "BookingRepo.ListByPassenger"
	q := TxorDB(ctx, r.db)

	query := `
		SELECT
			b.id, b.route_id, b.passenger_id, b.seats, b.total_fare, b.service_fee, b.grand_total,
			b.payment_method, b.payment_status, b.status, b.booking_ref, b.created_at,
			r.id, r.driver_id, r.vehicle_id, r.origin, r.destination,
			r.origin_lat, r.origin_lon, r.dest_lat, r.dest_lon,
			r.depart_at, r.duration_min, r.seats_total, r.seats_left, r.fare_per_seat,
			r.status, r.created_at
		FROM bookings b
		INNER JOIN routes r ON b.route_id = r.id
		WHERE b.passenger_id = $1
		ORDER BY b.created_at DESC;`

	rows, err := q.Query(ctx, query, passengerID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var views []models.PassengerBookingView
	for rows.Next() {
		var (
			view                   models.PassengerBookingView
			oLat, oLon, dLat, dLon *float64
		)
		err := rows.Scan(
			&view.Booking.ID, &view.Booking.RouteID, &view.Booking.PassengerID,
			&view.Booking.Seats, &view.Booking.TotalFare, &view.Booking.ServiceFee, &view.Booking.GrandTotal,
			&view.Booking.PaymentMethod, &view.Booking.PaymentStatus, &view.Booking.Status,
			&view.Booking.BookingRef, &view.Booking.CreatedAt,
			&view.Route.ID, &view.Route.DriverID, &view.Route.VehicleID, &view.Route.Origin, &view.Route.Destination,
			&oLat, &oLon, &dLat, &dLon,
			&view.Route.DepartAt, &view.Route.DurationMin, &view.Route.SeatsTotal, &view.Route.SeatsLeft, &view.Route.FarePerSeat,
			&view.Route.Status, &view.Route.CreatedAt,
		)
		if err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
		}
		if oLat != nil && oLon != nil {
			view.Route.OriginPoint = &models.GeoPoint{Latitude: *oLat, Longitude: *oLon}
		}
		if dLat != nil && dLon != nil {
			view.Route.DestinationPoint = &models.GeoPoint{Latitude: *dLat, Longitude: *dLon}
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: rows: %w", op, err))
	}

	return views, nil
}

// ListByRoute returns all bookings on a route with the passenger
// projection joined in, oldest first.
func (r *BookingRepo) ListByRoute(ctx context.Context, routeID uuid.UUID) ([]models.RoutePassenger, error) {
	const op = "BookingRepo.ListByRoute"
	q := TxorDB(ctx, r.db)

	query := `
		SELECT
			b.id, b.route_id, b.passenger_id, b.seats, b.total_fare, b.service_fee, b.grand_total,
			b.payment_method, b.payment_status, b.status, b.booking_ref, b.created_at,
			u.attrs->>'name', u.attrs->>'phone',
			COALESCE((u.attrs->>'rating')::float8, 0)
		FROM bookings b
		INNER JOIN users u ON b.passenger_id = u.id
		WHERE b.route_id = $1
		ORDER BY b.created_at;`

	rows, err := q.Query(ctx, query, routeID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var passengers []models.RoutePassenger
	for rows.Next() {
		var rp models.RoutePassenger
		err := rows.Scan(
			&rp.Booking.ID, &rp.Booking.RouteID, &rp.Booking.PassengerID,
			&rp.Booking.Seats, &rp.Booking.TotalFare, &rp.Booking.ServiceFee, &rp.Booking.GrandTotal,
			&rp.Booking.PaymentMethod, &rp.Booking.PaymentStatus, &rp.Booking.Status,
			&rp.Booking.BookingRef, &rp.Booking.CreatedAt,
			&rp.Passenger.Name, &rp.Passenger.Phone, &rp.Passenger.Rating,
		)
		if err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
		}
		rp.Passenger.ID = rp.Booking.PassengerID
		passengers = append(passengers, rp)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: rows: %w", op, err))
	}

	return passengers, nil
}

// UpdateStatus transitions a booking. The WHERE clause pins the current
// status, so the transition either applies exactly once or the row was
// already moved by someone else and RowsAffected is zero. That zero is
// what keeps seat restoration exactly-once: no matched row, no restore.
func (r *BookingRepo) UpdateStatus(ctx context.Context, bookingID uuid.UUID, from, to types.BookingStatus) error {
	q := TxorDB(ctx, r.db)

	query := `
		UPDATE bookings
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2;`

	cmdTag, err := q.Exec(ctx, query, bookingID, from, to)
	if err != nil {
		return fmt.Errorf("booking repo: UpdateStatus: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrInvalidTransition
	}
	return nil
}

// CancelActive cancels a booking unless it is already terminal. The guard
// matches both PENDING and ACCEPTED rows in one statement; zero rows
// means the booking was already CANCELLED or COMPLETED.
func (r *BookingRepo) CancelActive(ctx context.Context, bookingID uuid.UUID) error {
	q := TxorDB(ctx, r.db)

	query := `
		UPDATE bookings
		SET status = 'CANCELLED', updated_at = now()
		WHERE id = $1 AND status IN ('PENDING', 'ACCEPTED');`

	cmdTag, err := q.Exec(ctx, query, bookingID)
	if err != nil {
		return fmt.Errorf("booking repo: CancelActive: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrBookingFinalized
	}
	return nil
}

// UpdateSeats rewrites the seat count and fares of a still-pending
// booking. The ledger delta is applied separately by the service inside
// the same transaction.
func (r *BookingRepo) UpdateSeats(ctx context.Context, booking *models.Booking) error {
	q := TxorDB(ctx, r.db)

	query := `
		UPDATE bookings
		SET seats = $2, total_fare = $3, service_fee = $4, grand_total = $5, updated_at = now()
		WHERE id = $1 AND status = 'PENDING';`

	cmdTag, err := q.Exec(ctx, query,
		booking.ID, booking.Seats, booking.TotalFare, booking.ServiceFee, booking.GrandTotal,
	)
	if err != nil {
		return fmt.Errorf("booking repo: UpdateSeats: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrBookingNotPending
	}
	return nil
}

// MarkPaid flips payment_status once. Already-paid rows match nothing,
// which makes repeated confirmations harmless.
func (r *BookingRepo) MarkPaid(ctx context.Context, bookingID uuid.UUID) error {
	q := TxorDB(ctx, r.db)

	query := `
		UPDATE bookings
		SET payment_status = 'PAID', updated_at = now()
		WHERE id = $1 AND payment_status = 'PENDING';`

	if _, err := q.Exec(ctx, query, bookingID); err != nil {
		return fmt.Errorf("booking repo: MarkPaid: %w", err)
	}
	return nil
}
