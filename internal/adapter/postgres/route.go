package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/postgres"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

type RouteRepo struct {
	db *pgxpool.Pool
}

func NewRouteRepo(db *pgxpool.Pool) *RouteRepo {
	return &RouteRepo{db: db}
}

const routeColumns = `
	id, driver_id, vehicle_id, origin, destination,
	origin_lat, origin_lon, dest_lat, dest_lon,
	depart_at, duration_min, seats_total, seats_left, fare_per_seat,
	status, created_at`

func scanRoute(row pgx.Row) (*models.Route, error) {
	var (
		route                  models.Route
		oLat, oLon, dLat, dLon *float64
	)
	err := row.Scan(
		&route.ID, &route.DriverID, &route.VehicleID, &route.Origin, &route.Destination,
		&oLat, &oLon, &dLat, &dLon,
		&route.DepartAt, &route.DurationMin, &route.SeatsTotal, &route.SeatsLeft, &route.FarePerSeat,
		&route.Status, &route.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if oLat != nil && oLon != nil {
		route.OriginPoint = &models.GeoPoint{Latitude: *oLat, Longitude: *oLon}
	}
	if dLat != nil && dLon != nil {
		route.DestinationPoint = &models.GeoPoint{Latitude: *dLat, Longitude: *dLon}
	}
	return &route, nil
}

func (r *RouteRepo) Create(ctx context.Context, route *models.Route) (*models.Route, error) {
	q := TxorDB(ctx, r.db)

	query := `
		INSERT INTO routes (driver_id, vehicle_id, origin, destination,
		                    origin_lat, origin_lon, dest_lat, dest_lon,
		                    depart_at, duration_min, seats_total, seats_left, fare_per_seat, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11, $12, $13)
		RETURNING id, created_at;`

	var oLat, oLon, dLat, dLon *float64
	if p := route.OriginPoint; p != nil {
		oLat, oLon = &p.Latitude, &p.Longitude
	}
	if p := route.DestinationPoint; p != nil {
		dLat, dLon = &p.Latitude, &p.Longitude
	}

	err := q.QueryRow(ctx, query,
		route.DriverID, route.VehicleID, route.Origin, route.Destination,
		oLat, oLon, dLat, dLon,
		route.DepartAt, route.DurationMin, route.SeatsTotal, route.FarePerSeat, route.Status,
	).Scan(&route.ID, &route.CreatedAt)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("route repo: Create: %w", err)
	}

	route.SeatsLeft = route.SeatsTotal
	return route, nil
}

func (r *RouteRepo) Get(ctx context.Context, routeID uuid.UUID) (*models.Route, error) {
	q := TxorDB(ctx, r.db)

	query := `SELECT` + routeColumns + ` FROM routes WHERE id = $1;`

	route, err := scanRoute(q.QueryRow(ctx, query, routeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrRouteNotFound
		}
		return nil, fmt.Errorf("route repo: Get: %w", err)
	}
	return route, nil
}

// Search returns UPCOMING routes joined with their driver and vehicle rows,
// newest departure last. Empty filter fields match everything.
func (r *RouteRepo) Search(ctx context.Context, filter models.SearchFilter) ([]models.RouteCard, error) {
	const op = "RouteRepo.Search"
	q := TxorDB(ctx, r.db)

	query := `
		SELECT
			r.id, r.driver_id, r.vehicle_id, r.origin, r.destination,
			r.origin_lat, r.origin_lon, r.dest_lat, r.dest_lon,
			r.depart_at, r.duration_min, r.seats_total, r.seats_left, r.fare_per_seat,
			r.status, r.created_at,
			u.attrs->>'name' AS driver_name, u.attrs->>'phone' AS driver_phone,
			COALESCE((u.attrs->>'rating')::float8, 0) AS driver_rating,
			v.id, v.make, v.model, v.plate, v.seats
		FROM routes r
		INNER JOIN users u ON r.driver_id = u.id
		LEFT JOIN vehicles v ON r.vehicle_id = v.id
		WHERE r.status = 'UPCOMING'
		  AND ($1 = '' OR r.origin ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR r.destination ILIKE '%' || $2 || '%')
		  AND r.seats_left >= $3
		ORDER BY r.depart_at;`

	rows, err := q.Query(ctx, query, filter.Origin, filter.Destination, filter.MinSeats)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var cards []models.RouteCard
	for rows.Next() {
		var (
			card                   models.RouteCard
			oLat, oLon, dLat, dLon *float64
			vehicleID              *uuid.UUID
			vMake, vModel, vPlate  *string
			vSeats                 *int
		)
		err := rows.Scan(
			&card.Route.ID, &card.Route.DriverID, &card.Route.VehicleID, &card.Route.Origin, &card.Route.Destination,
			&oLat, &oLon, &dLat, &dLon,
			&card.Route.DepartAt, &card.Route.DurationMin, &card.Route.SeatsTotal, &card.Route.SeatsLeft, &card.Route.FarePerSeat,
			&card.Route.Status, &card.Route.CreatedAt,
			&card.Driver.Name, &card.Driver.Phone, &card.Driver.Rating,
			&vehicleID, &vMake, &vModel, &vPlate, &vSeats,
		)
		if err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
		}
		if oLat != nil && oLon != nil {
			card.Route.OriginPoint = &models.GeoPoint{Latitude: *oLat, Longitude: *oLon}
		}
		if dLat != nil && dLon != nil {
			card.Route.DestinationPoint = &models.GeoPoint{Latitude: *dLat, Longitude: *dLon}
		}
		card.Driver.ID = card.Route.DriverID
		if vehicleID != nil {
			card.Vehicle = &models.Vehicle{
				ID:       *vehicleID,
				DriverID: card.Route.DriverID,
				Make:     *vMake,
				Model:    *vModel,
				Plate:    *vPlate,
				Seats:    *vSeats,
			}
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: rows: %w", op, err))
	}

	return cards, nil
}

// ActiveForDriver lists the driver's non-cancelled routes for the
// dashboard, soonest departure first.
func (r *RouteRepo) ActiveForDriver(ctx context.Context, driverID uuid.UUID) ([]models.Route, error) {
	const op = "RouteRepo.ActiveForDriver"
	q := TxorDB(ctx, r.db)

	query := `SELECT` + routeColumns + `
		FROM routes
		WHERE driver_id = $1 AND status <> 'CANCELLED'
		ORDER BY depart_at;`

	rows, err := q.Query(ctx, query, driverID)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var routes []models.Route
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
		}
		routes = append(routes, *route)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: rows: %w", op, err))
	}

	return routes, nil
}

// UpdateStatus moves a route along its lifecycle. The WHERE clause only
// matches rows still in `from`, so a second caller racing the same
// transition sees ErrRouteFinalized instead of overwriting a terminal state.
func (r *RouteRepo) UpdateStatus(ctx context.Context, routeID uuid.UUID, from, to types.RouteStatus) error {
	q := TxorDB(ctx, r.db)

	query := `
		UPDATE routes
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2;`

	cmdTag, err := q.Exec(ctx, query, routeID, from, to)
	if err != nil {
		return fmt.Errorf("route repo: UpdateStatus: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrRouteFinalized
	}
	return nil
}

// CancelActive cancels a route unless it already reached a terminal
// state. Zero matched rows means the route was already completed or
// cancelled.
func (r *RouteRepo) CancelActive(ctx context.Context, routeID uuid.UUID) error {
	q := TxorDB(ctx, r.db)

	query := `
		UPDATE routes
		SET status = 'CANCELLED', updated_at = now()
		WHERE id = $1 AND status IN ('UPCOMING', 'ONGOING');`

	cmdTag, err := q.Exec(ctx, query, routeID)
	if err != nil {
		return fmt.Errorf("route repo: CancelActive: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrRouteFinalized
	}
	return nil
}

// ReserveSeats is the ledger decrement. The guard lives in the WHERE
// clause, so check and decrement are one atomic statement: either the row
// still had enough seats and the count drops, or nothing matches and the
// caller gets ErrSeatsUnavailable. Only UPCOMING routes accept reservations.
func (r *RouteRepo) ReserveSeats(ctx context.Context, routeID uuid.UUID, seats int) error {
	q := TxorDB(ctx, r.db)

	query := `
		UPDATE routes
		SET seats_left = seats_left - $2, updated_at = now()
		WHERE id = $1 AND status = 'UPCOMING' AND seats_left >= $2;`

	cmdTag, err := q.Exec(ctx, query, routeID, seats)
	if err != nil {
		if postgres.IsCheckViolation(err) {
			return types.ErrSeatsUnavailable
		}
		return fmt.Errorf("route repo: ReserveSeats: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrSeatsUnavailable
	}
	return nil
}

// RestoreSeats returns seats to the ledger, capped at seats_total so a
// stray double-restore can never push availability past capacity.
func (r *RouteRepo) RestoreSeats(ctx context.Context, routeID uuid.UUID, seats int) error {
	q := TxorDB(ctx, r.db)

	query := `
		UPDATE routes
		SET seats_left = LEAST(seats_left + $2, seats_total), updated_at = now()
		WHERE id = $1;`

	cmdTag, err := q.Exec(ctx, query, routeID, seats)
	if err != nil {
		return fmt.Errorf("route repo: RestoreSeats: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return types.ErrRouteNotFound
	}
	return nil
}

// AdjustSeats applies the net delta of a booking seat edit. A positive
// delta takes more seats (same guard as ReserveSeats), a negative one
// gives them back, zero is a no-op.
func (r *RouteRepo) AdjustSeats(ctx context.Context, routeID uuid.UUID, delta int) error {
	switch {
	case delta > 0:
		return r.ReserveSeats(ctx, routeID, delta)
	case delta < 0:
		return r.RestoreSeats(ctx, routeID, -delta)
	}
	return nil
}
