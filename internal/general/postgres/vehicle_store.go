package postgres

import (
	"context"
	"errors"
	"fmt"

	"fleet-tracker/internal/domain/vehicle"
	"fleet-tracker/internal/ports"
)

var _ ports.VehicleStore = (*VehicleStore)(nil)

// VehicleStore implements ports.VehicleStore on top of the repository and the
// unit of work. Update locks the row with SELECT ... FOR UPDATE so the scheduler
// and the command consumer never overwrite each other.
type VehicleStore struct {
	uow  ports.UnitOfWork
	repo ports.VehicleRepository
}

func NewVehicleStore(uow ports.UnitOfWork, repo ports.VehicleRepository) *VehicleStore {
	return &VehicleStore{uow: uow, repo: repo}
}

func (s *VehicleStore) ListActive(ctx context.Context) ([]vehicle.Vehicle, error) {
	var out []vehicle.Vehicle
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		list, err := s.repo.ListActive(ctx)
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	return out, err
}

func (s *VehicleStore) Get(ctx context.Context, id string) (vehicle.Vehicle, error) {
	var out vehicle.Vehicle
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		out = *v
		return nil
	})
	if err != nil {
		return vehicle.Vehicle{}, fmt.Errorf("get %s: %w", id, err)
	}
	return out, nil
}

// Update is an atomic read-modify-write of one row. vehicle.ErrNotModified
// from mutate rolls back and is reported as success.
func (s *VehicleStore) Update(ctx context.Context, id string, mutate func(*vehicle.Vehicle) error) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(v); err != nil {
			return err
		}
		v.ID = id
		return s.repo.SaveState(ctx, v)
	})
	if err == nil || errors.Is(err, vehicle.ErrNotModified) {
		return nil
	}
	return fmt.Errorf("update %s: %w", id, err)
}
