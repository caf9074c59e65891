package vehicle

import (
	"errors"
	"strings"
)

var ErrEmptyPatch = errors.New("patch changes nothing")

// Patch is a partial update requested by an actor outside the simulation,
// e.g. a maintenance workflow clearing a breakdown.
type Patch struct {
	Status        *Status
	Lifecycle     *Lifecycle
	ZoneID        *string
	TripsAllowed  *int
	ClearPosition bool
}

// Validate rejects patches with out-of-range values or no fields set.
func (p Patch) Validate() error {
	if p.Status == nil && p.Lifecycle == nil && p.ZoneID == nil && p.TripsAllowed == nil && !p.ClearPosition {
		return ErrEmptyPatch
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	if p.Lifecycle != nil && !p.Lifecycle.Valid() {
		return ErrInvalidLifecycle
	}
	if p.ZoneID != nil && strings.TrimSpace(*p.ZoneID) == "" {
		return errors.New("zone id cannot be empty")
	}
	if p.TripsAllowed != nil && *p.TripsAllowed < 0 {
		return ErrNegativeTrips
	}
	return nil
}

// Apply mutates v. Any status other than moving forces speed to zero so the
// speed invariant holds after an external edit as well.
func (p Patch) Apply(v *Vehicle) {
	if p.Status != nil {
		v.Status = *p.Status
	}
	if p.Lifecycle != nil {
		v.Lifecycle = *p.Lifecycle
	}
	if p.ZoneID != nil {
		v.ZoneID = strings.TrimSpace(*p.ZoneID)
	}
	if p.TripsAllowed != nil {
		v.TripsAllowed = *p.TripsAllowed
	}
	if p.ClearPosition {
		v.Position = nil
	}
	if v.Status != StatusMoving {
		v.SpeedKmh = 0
	}
}
