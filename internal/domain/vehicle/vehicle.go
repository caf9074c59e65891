package vehicle

import (
	"errors"
	"strings"
	"time"

	"fleet-tracker/internal/domain/geo"
)

var (
	ErrNotFound         = errors.New("vehicle not found")
	ErrNotModified      = errors.New("vehicle not modified")
	ErrEmptyID          = errors.New("vehicle id cannot be empty")
	ErrNegativeSpeed    = errors.New("speed cannot be negative")
	ErrSpeedWhileStill  = errors.New("speed must be 0 unless the vehicle is moving")
	ErrNegativeTrips    = errors.New("trip counters cannot be negative")
	ErrPositionOutOfBox = errors.New("position lies outside the zone bounding box")
)

// Vehicle is the live-tracking view of a row in the `vehicles` table.
type Vehicle struct {
	ID                 string
	RegistrationNumber string
	ZoneID             string
	Lifecycle          Lifecycle
	Position           *geo.Position // nil until the first simulation tick
	Status             Status
	SpeedKmh           float64
	TripsCompleted     int
	TripsAllowed       int
	LastUpdate         time.Time
}

// InService reports whether the vehicle takes part in the simulation.
func (v *Vehicle) InService() bool {
	return v.Lifecycle.InService()
}

// HasPosition reports whether a position has been assigned.
func (v *Vehicle) HasPosition() bool {
	return v.Position != nil
}

// TripsExhausted reports whether the daily trip allowance is used up.
func (v *Vehicle) TripsExhausted() bool {
	return v.TripsCompleted >= v.TripsAllowed
}

// Clone returns a deep copy; the position pointer is not shared.
func (v Vehicle) Clone() Vehicle {
	if v.Position != nil {
		p := *v.Position
		v.Position = &p
	}
	return v
}

// Validate checks the record invariants. box is the bounding box of the vehicle's zone.
func (v *Vehicle) Validate(box geo.BoundingBox) error {
	if strings.TrimSpace(v.ID) == "" {
		return ErrEmptyID
	}
	if !v.Status.Valid() {
		return ErrInvalidStatus
	}
	if !v.Lifecycle.Valid() {
		return ErrInvalidLifecycle
	}
	if v.SpeedKmh < 0 {
		return ErrNegativeSpeed
	}
	if v.Status != StatusMoving && v.SpeedKmh != 0 {
		return ErrSpeedWhileStill
	}
	if v.TripsCompleted < 0 || v.TripsAllowed < 0 {
		return ErrNegativeTrips
	}
	if v.Position != nil && !box.Contains(*v.Position) {
		return ErrPositionOutOfBox
	}
	return nil
}
