package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"fleet-tracker/internal/domain/geo"
	"fleet-tracker/internal/domain/vehicle"
	"fleet-tracker/internal/ports"
)

// VehicleRepo persists vehicles using pgx and plain SQL.
type VehicleRepo struct{}

// NewVehicleRepo constructs a new VehicleRepo.
func NewVehicleRepo() ports.VehicleRepository {
	return &VehicleRepo{}
}

const vehicleColumns = `
	id, registration_number, zone_id, status,
	latitude, longitude, current_status, speed,
	trips_completed, trips_allowed, last_update`

// ListActive returns every in-service vehicle ordered by id.
func (repo *VehicleRepo) ListActive(ctx context.Context) ([]vehicle.Vehicle, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `SELECT`+vehicleColumns+`
		FROM vehicles
		WHERE status = $1
		ORDER BY id
	`, vehicle.LifecycleActive.String())
	if err != nil {
		return nil, fmt.Errorf("list active vehicles: %w", err)
	}
	defer rows.Close()

	var out []vehicle.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active vehicles: %w", err)
	}
	return out, nil
}

// GetByID returns one vehicle by id.
func (repo *VehicleRepo) GetByID(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return scanVehicle(tx.QueryRow(ctx, `SELECT`+vehicleColumns+` FROM vehicles WHERE id = $1`, id))
}

// GetForUpdate returns one vehicle and locks its row until the tx ends.
func (repo *VehicleRepo) GetForUpdate(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return scanVehicle(tx.QueryRow(ctx, `SELECT`+vehicleColumns+` FROM vehicles WHERE id = $1 FOR UPDATE`, id))
}

// SaveState writes every mutable column of v.
func (repo *VehicleRepo) SaveState(ctx context.Context, v *vehicle.Vehicle) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	lat, lng := positionArgs(v.Position)
	tag, err := tx.Exec(ctx, `
		UPDATE vehicles
		SET zone_id = $2,
		    status = $3,
		    latitude = $4,
		    longitude = $5,
		    current_status = $6,
		    speed = $7,
		    trips_completed = $8,
		    trips_allowed = $9,
		    last_update = $10,
		    updated_at = now()
		WHERE id = $1
	`,
		v.ID,
		v.ZoneID,
		v.Lifecycle.String(),
		lat, lng,
		v.Status.String(),
		v.SpeedKmh,
		v.TripsCompleted,
		v.TripsAllowed,
		timeArg(v.LastUpdate),
	)
	if err != nil {
		return fmt.Errorf("save vehicle %s: %w", v.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("save vehicle %s: %w", v.ID, vehicle.ErrNotFound)
	}
	return nil
}

// Upsert inserts v or overwrites the existing row with the same id. Used by seeding.
func (repo *VehicleRepo) Upsert(ctx context.Context, v *vehicle.Vehicle) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	lat, lng := positionArgs(v.Position)
	_, err = tx.Exec(ctx, `
		INSERT INTO vehicles (`+vehicleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			registration_number = EXCLUDED.registration_number,
			zone_id = EXCLUDED.zone_id,
			status = EXCLUDED.status,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			current_status = EXCLUDED.current_status,
			speed = EXCLUDED.speed,
			trips_completed = EXCLUDED.trips_completed,
			trips_allowed = EXCLUDED.trips_allowed,
			last_update = EXCLUDED.last_update,
			updated_at = now()
	`,
		v.ID,
		v.RegistrationNumber,
		v.ZoneID,
		v.Lifecycle.String(),
		lat, lng,
		v.Status.String(),
		v.SpeedKmh,
		v.TripsCompleted,
		v.TripsAllowed,
		timeArg(v.LastUpdate),
	)
	if err != nil {
		return fmt.Errorf("upsert vehicle %s: %w", v.ID, err)
	}
	return nil
}

func scanVehicle(row pgx.Row) (*vehicle.Vehicle, error) {
	var (
		out        vehicle.Vehicle
		lifecycle  string
		status     string
		lat, lng   *float64
		lastUpdate *time.Time
	)
	err := row.Scan(
		&out.ID, &out.RegistrationNumber, &out.ZoneID, &lifecycle,
		&lat, &lng, &status, &out.SpeedKmh,
		&out.TripsCompleted, &out.TripsAllowed, &lastUpdate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vehicle.ErrNotFound
		}
		return nil, fmt.Errorf("scan vehicle: %w", err)
	}

	// rows written by other tools may carry any casing; unknown values are
	// left as-is and normalised by the simulation
	if lc, err := vehicle.ParseLifecycle(lifecycle); err == nil {
		out.Lifecycle = lc
	} else {
		out.Lifecycle = vehicle.Lifecycle(lifecycle)
	}
	if st, err := vehicle.ParseStatus(status); err == nil {
		out.Status = st
	} else {
		out.Status = vehicle.Status(status)
	}
	if lat != nil && lng != nil {
		out.Position = &geo.Position{Latitude: *lat, Longitude: *lng}
	}
	if lastUpdate != nil {
		out.LastUpdate = lastUpdate.UTC()
	}
	return &out, nil
}

func positionArgs(p *geo.Position) (lat, lng *float64) {
	if p == nil {
		return nil, nil
	}
	return &p.Latitude, &p.Longitude
}

func timeArg(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
