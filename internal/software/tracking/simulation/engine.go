package simulation

import (
	"math/rand/v2"
	"sync"
	"time"

	"fleet-tracker/internal/domain/geo"
	"fleet-tracker/internal/domain/vehicle"
)

// Source yields uniform values in [0, 1).
type Source interface {
	Float64() float64
}

// lockedSource makes a *rand.Rand safe for the scheduler and the command
// consumer to share.
type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSource returns a concurrency-safe PCG source. seed 0 picks a random seed.
func NewSource(seed uint64) Source {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &lockedSource{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// Engine binds Step to a zone table and a randomness source.
type Engine struct {
	zones  *geo.ZoneTable
	src    Source
	params Params
}

func NewEngine(zones *geo.ZoneTable, src Source, params Params) *Engine {
	if zones == nil {
		zones = geo.DefaultZones()
	}
	if src == nil {
		src = NewSource(0)
	}
	return &Engine{zones: zones, src: src, params: params}
}

// Advance draws randomness and applies one Step to v inside its zone box.
func (e *Engine) Advance(v vehicle.Vehicle, now time.Time) (vehicle.Vehicle, bool) {
	box := e.zones.Bounds(v.ZoneID)
	return Step(v, box, e.draw(), e.params, now)
}

func (e *Engine) Params() Params { return e.params }

func (e *Engine) draw() Draws {
	return Draws{
		Transition: e.src.Float64(),
		Speed:      e.src.Float64(),
		Heading:    e.src.Float64(),
		Lat:        e.src.Float64(),
		Lng:        e.src.Float64(),
	}
}
