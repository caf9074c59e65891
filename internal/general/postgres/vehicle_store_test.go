package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-tracker/internal/domain/vehicle"
)

// fakeUoW records whether the callback's result would commit or roll back.
type fakeUoW struct {
	commits, rollbacks int
}

func (u *fakeUoW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		u.rollbacks++
		return err
	}
	u.commits++
	return nil
}

type fakeRepo struct {
	rows    map[string]vehicle.Vehicle
	locked  []string
	saveErr error
}

func (r *fakeRepo) ListActive(context.Context) ([]vehicle.Vehicle, error) { return nil, nil }

func (r *fakeRepo) GetByID(_ context.Context, id string) (*vehicle.Vehicle, error) {
	v, ok := r.rows[id]
	if !ok {
		return nil, vehicle.ErrNotFound
	}
	return &v, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	r.locked = append(r.locked, id)
	return r.GetByID(ctx, id)
}

func (r *fakeRepo) SaveState(_ context.Context, v *vehicle.Vehicle) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.rows[v.ID] = *v
	return nil
}

func (r *fakeRepo) Upsert(_ context.Context, v *vehicle.Vehicle) error {
	r.rows[v.ID] = *v
	return nil
}

func newFakes() (*fakeUoW, *fakeRepo) {
	return &fakeUoW{}, &fakeRepo{rows: map[string]vehicle.Vehicle{
		"TRK001": {ID: "TRK001", Lifecycle: vehicle.LifecycleActive, Status: vehicle.StatusIdle},
	}}
}

func TestVehicleStore_UpdateLocksAndSaves(t *testing.T) {
	uow, repo := newFakes()
	s := NewVehicleStore(uow, repo)

	err := s.Update(context.Background(), "TRK001", func(v *vehicle.Vehicle) error {
		v.Status = vehicle.StatusMoving
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"TRK001"}, repo.locked)
	assert.Equal(t, vehicle.StatusMoving, repo.rows["TRK001"].Status)
	assert.Equal(t, 1, uow.commits)
}

func TestVehicleStore_UpdateNotModifiedRollsBackQuietly(t *testing.T) {
	uow, repo := newFakes()
	s := NewVehicleStore(uow, repo)

	err := s.Update(context.Background(), "TRK001", func(v *vehicle.Vehicle) error {
		v.Status = vehicle.StatusMoving
		return vehicle.ErrNotModified
	})

	require.NoError(t, err)
	assert.Equal(t, vehicle.StatusIdle, repo.rows["TRK001"].Status)
	assert.Equal(t, 1, uow.rollbacks)
}

func TestVehicleStore_UpdateWrapsErrors(t *testing.T) {
	uow, repo := newFakes()
	s := NewVehicleStore(uow, repo)

	err := s.Update(context.Background(), "missing", func(*vehicle.Vehicle) error { return nil })
	assert.ErrorIs(t, err, vehicle.ErrNotFound)

	repo.saveErr = errors.New("connection reset")
	err = s.Update(context.Background(), "TRK001", func(*vehicle.Vehicle) error { return nil })
	assert.ErrorIs(t, err, repo.saveErr)
	assert.Equal(t, 2, uow.rollbacks)
}

func TestSeed_UpsertsWholeFleet(t *testing.T) {
	uow, repo := newFakes()
	fleet := vehicle.DemoFleet()

	require.NoError(t, Seed(context.Background(), uow, repo, fleet))

	assert.Len(t, repo.rows, len(fleet))
	assert.Equal(t, 1, uow.commits)
}
