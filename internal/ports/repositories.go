package ports

import (
	"context"

	"fleet-tracker/internal/domain/vehicle"
)

// UnitOfWork interface is used to manage transactions across multiple repository operations.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// VehicleRepository is the row-level access to the vehicles table.
// Every method must run inside UnitOfWork.WithinTx.
type VehicleRepository interface {
	ListActive(ctx context.Context) ([]vehicle.Vehicle, error)
	GetByID(ctx context.Context, id string) (*vehicle.Vehicle, error)
	GetForUpdate(ctx context.Context, id string) (*vehicle.Vehicle, error)
	SaveState(ctx context.Context, v *vehicle.Vehicle) error
	Upsert(ctx context.Context, v *vehicle.Vehicle) error
}

// VehicleStore is the contract the tracking core consumes. Update is an atomic
// read-modify-write of a single record: concurrent Updates on the same ID are
// serialised and none is lost. Returning vehicle.ErrNotModified from mutate
// skips the write and is not reported as an error.
type VehicleStore interface {
	ListActive(ctx context.Context) ([]vehicle.Vehicle, error)
	Get(ctx context.Context, id string) (vehicle.Vehicle, error)
	Update(ctx context.Context, id string, mutate func(v *vehicle.Vehicle) error) error
}
