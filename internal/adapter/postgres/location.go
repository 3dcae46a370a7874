package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

type LocationRepo struct {
	db *pgxpool.Pool
}

func NewLocationRepo(db *pgxpool.Pool) *LocationRepo {
	return &LocationRepo{db: db}
}

// Upsert replaces the trip's single position row. trip_id is the primary
// key, so the table never grows with report frequency.
func (r *LocationRepo) Upsert(ctx context.Context, loc *models.Location) error {
	q := TxorDB(ctx, r.db)

	query := `
		INSERT INTO trip_locations (trip_id, driver_id, latitude, longitude, speed_kph, heading, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (trip_id) DO UPDATE SET
			driver_id = EXCLUDED.driver_id,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			speed_kph = EXCLUDED.speed_kph,
			heading = EXCLUDED.heading,
			recorded_at = EXCLUDED.recorded_at;`

	_, err := q.Exec(ctx, query,
		loc.TripID, loc.DriverID, loc.Latitude, loc.Longitude, loc.SpeedKph, loc.Heading, loc.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("location repo: Upsert: %w", err)
	}
	return nil
}

func (r *LocationRepo) Latest(ctx context.Context, tripID uuid.UUID) (*models.Location, error) {
	q := TxorDB(ctx, r.db)

	var loc models.Location
	query := `
		SELECT trip_id, driver_id, latitude, longitude, speed_kph, heading, recorded_at
		FROM trip_locations
		WHERE trip_id = $1;`

	err := q.QueryRow(ctx, query, tripID).Scan(
		&loc.TripID, &loc.DriverID, &loc.Latitude, &loc.Longitude, &loc.SpeedKph, &loc.Heading, &loc.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNoLocation
		}
		return nil, fmt.Errorf("location repo: Latest: %w", err)
	}

	return &loc, nil
}

// Delete removes the position row once the trip ends.
func (r *LocationRepo) Delete(ctx context.Context, tripID uuid.UUID) error {
	q := TxorDB(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM trip_locations WHERE trip_id = $1;`, tripID); err != nil {
		return fmt.Errorf("location repo: Delete: %w", err)
	}
	return nil
}
