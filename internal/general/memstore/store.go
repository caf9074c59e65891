package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"fleet-tracker/internal/domain/vehicle"
	"fleet-tracker/internal/ports"
)

var _ ports.VehicleStore = (*Store)(nil)

type record struct {
	mu sync.Mutex
	v  vehicle.Vehicle
}

// Store keeps vehicles in memory. The map is guarded by one lock and each record
// by its own, so updates to different vehicles never wait on each other.
type Store struct {
	mu      sync.RWMutex
	records map[string]*record
}

// New returns a store holding copies of seed.
func New(seed []vehicle.Vehicle) *Store {
	s := &Store{records: make(map[string]*record, len(seed))}
	for _, v := range seed {
		s.records[v.ID] = &record{v: v.Clone()}
	}
	return s
}

// Put inserts or replaces a vehicle.
func (s *Store) Put(v vehicle.Vehicle) error {
	if v.ID == "" {
		return vehicle.ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[v.ID]; ok {
		rec.mu.Lock()
		rec.v = v.Clone()
		rec.mu.Unlock()
		return nil
	}
	s.records[v.ID] = &record{v: v.Clone()}
	return nil
}

// ListActive returns copies of all in-service vehicles ordered by ID.
func (s *Store) ListActive(ctx context.Context) ([]vehicle.Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	recs := make([]*record, 0, len(s.records))
	for _, rec := range s.records {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	out := make([]vehicle.Vehicle, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		v := rec.v.Clone()
		rec.mu.Unlock()
		if v.InService() {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (vehicle.Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return vehicle.Vehicle{}, err
	}
	rec, ok := s.lookup(id)
	if !ok {
		return vehicle.Vehicle{}, fmt.Errorf("get %s: %w", id, vehicle.ErrNotFound)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.v.Clone(), nil
}

// Update runs mutate on a copy of the record while holding its lock and commits
// the copy when mutate returns nil. vehicle.ErrNotModified discards the copy and
// is not reported as an error.
func (s *Store) Update(ctx context.Context, id string, mutate func(*vehicle.Vehicle) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, ok := s.lookup(id)
	if !ok {
		return fmt.Errorf("update %s: %w", id, vehicle.ErrNotFound)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	next := rec.v.Clone()
	if err := mutate(&next); err != nil {
		if errors.Is(err, vehicle.ErrNotModified) {
			return nil
		}
		return fmt.Errorf("update %s: %w", id, err)
	}
	next.ID = rec.v.ID
	rec.v = next
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) lookup(id string) (*record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}
