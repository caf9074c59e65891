package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"fleet-tracker/internal/domain/vehicle"
	"fleet-tracker/internal/ports"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the vehicles table and its indexes when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Seed upserts vehicles in a single transaction.
func Seed(ctx context.Context, uow ports.UnitOfWork, repo ports.VehicleRepository, vehicles []vehicle.Vehicle) error {
	return uow.WithinTx(ctx, func(ctx context.Context) error {
		for i := range vehicles {
			if err := repo.Upsert(ctx, &vehicles[i]); err != nil {
				return err
			}
		}
		return nil
	})
}
