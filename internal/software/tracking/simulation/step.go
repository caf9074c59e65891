package simulation

import (
	"time"

	"fleet-tracker/internal/domain/geo"
	"fleet-tracker/internal/domain/vehicle"
)

// Draws are the random inputs of one step, each in [0, 1).
type Draws struct {
	Transition float64 // compared against the status transition probability
	Speed      float64 // fraction of the speed range
	Heading    float64 // fraction of a full turn
	Lat        float64 // placement fraction inside the box
	Lng        float64
}

// Step advances one vehicle by one tick. It is pure: the same inputs always give
// the same output. The bool result is false when the vehicle is left untouched
// (not in service, or broken down) and nothing needs to be written.
func Step(v vehicle.Vehicle, box geo.BoundingBox, d Draws, p Params, now time.Time) (vehicle.Vehicle, bool) {
	if !v.InService() || v.Status.Terminal() {
		return v, false
	}

	next := v.Clone()
	next.LastUpdate = now

	if !next.HasPosition() {
		pos := box.Interpolate(d.Lat, d.Lng)
		next.Position = &pos
		next.Status = vehicle.StatusIdle
		next.SpeedKmh = 0
		return next, true
	}

	pos := box.Clamp(*next.Position)
	next.Position = &pos

	switch next.Status {
	case vehicle.StatusMoving:
		if next.TripsExhausted() {
			next.Status = vehicle.StatusIdle
			next.SpeedKmh = 0
			break
		}
		speed := p.SpeedMinKmh + d.Speed*(p.SpeedMaxKmh-p.SpeedMinKmh)
		distance := speed * p.Tick.Hours()
		moved := box.Clamp(pos.Offset(distance, d.Heading*360))
		next.Position = &moved
		next.SpeedKmh = speed
		if d.Transition < p.PDump {
			next.Status = vehicle.StatusDumping
			next.SpeedKmh = 0
		}

	case vehicle.StatusDumping:
		next.SpeedKmh = 0
		if d.Transition < p.PFinishDump {
			next.Status = vehicle.StatusMoving
			next.TripsCompleted++
		}

	case vehicle.StatusOffline:
		next.SpeedKmh = 0
		if d.Transition < p.POnline {
			next.Status = vehicle.StatusIdle
		}

	default:
		// idle, and anything unrecognised read back from the store
		next.Status = vehicle.StatusIdle
		next.SpeedKmh = 0
		if d.Transition < p.PStart {
			next.Status = vehicle.StatusMoving
		}
	}

	return next, true
}
