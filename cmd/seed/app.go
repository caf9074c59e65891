package seed

import (
	"context"
	"errors"
	"fmt"

	"fleet-tracker/internal/domain/vehicle"
	"fleet-tracker/internal/general/config"
	"fleet-tracker/internal/general/logger"
	"fleet-tracker/internal/general/postgres"
)

// Run creates the vehicles table when missing and upserts the demo fleet.
func Run(ctx context.Context, configPath string) error {
	log := logger.New("seed")
	ctx = log.WithRequestID(ctx, "seed-001")

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		log.Error(ctx, "config_load_failed", "Failed to load configuration", err, map[string]any{"path": configPath})
		return err
	}
	log = log.SetLevel(cfg.Log.Level)

	if cfg.Store.Driver != config.StoreDriverPostgres {
		err := errors.New("seed requires store.driver: postgres")
		log.Error(ctx, "seed_skipped", "Nothing to seed for a non-persistent store", err, map[string]any{"driver": cfg.Store.Driver})
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err, nil)
		return err
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Error(ctx, "schema_failed", "Failed to create schema", err, nil)
		return err
	}

	fleet := vehicle.DemoFleet()
	if err := postgres.Seed(ctx, postgres.NewUnitOfWork(pool), postgres.NewVehicleRepo(), fleet); err != nil {
		log.Error(ctx, "seed_failed", "Failed to seed vehicles", err, nil)
		return fmt.Errorf("seed vehicles: %w", err)
	}

	log.Info(ctx, "seed_done", fmt.Sprintf("Seeded %d vehicles", len(fleet)), map[string]any{"vehicles": len(fleet)})
	return nil
}
