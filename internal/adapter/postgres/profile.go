package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

// ProfileRepo reads driver and vehicle rows for batch stitching into
// list views. Writes happen in the identity service, not here.
type ProfileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepo(db *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// UserExists reports whether the user row has materialised yet. Signup
// creates it through a downstream trigger, so a freshly registered caller
// may race their own row.
func (r *ProfileRepo) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	q := TxorDB(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1);`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("profile repo: UserExists: %w", err)
	}
	return exists, nil
}

// DriversByIDs fetches the driver projections for a set of ids in one
// round trip, keyed by id. Missing ids are simply absent from the map.
func (r *ProfileRepo) DriversByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.DriverProfile, error) {
	const op = "ProfileRepo.DriversByIDs"

	drivers := make(map[uuid.UUID]models.DriverProfile, len(ids))
	if len(ids) == 0 {
		return drivers, nil
	}

	q := TxorDB(ctx, r.db)
	query := `
		SELECT id, attrs->>'name', attrs->>'phone', COALESCE((attrs->>'rating')::float8, 0)
		FROM users
		WHERE id = ANY($1);`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	for rows.Next() {
		var d models.DriverProfile
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.Rating); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
		}
		drivers[d.ID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: rows: %w", op, err))
	}

	return drivers, nil
}

// VehiclesByIDs fetches vehicle rows for a set of ids, keyed by id.
func (r *ProfileRepo) VehiclesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Vehicle, error) {
	const op = "ProfileRepo.VehiclesByIDs"

	vehicles := make(map[uuid.UUID]models.Vehicle, len(ids))
	if len(ids) == 0 {
		return vehicles, nil
	}

	q := TxorDB(ctx, r.db)
	query := `
		SELECT id, driver_id, make, model, plate, seats
		FROM vehicles
		WHERE id = ANY($1);`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.DriverID, &v.Make, &v.Model, &v.Plate, &v.Seats); err != nil {
			return nil, wrap.Error(ctx, fmt.Errorf("%s: scan: %w", op, err))
		}
		vehicles[v.ID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: rows: %w", op, err))
	}

	return vehicles, nil
}
