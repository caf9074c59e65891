package vehicle

import (
	"errors"
	"strings"
)

// Lifecycle is the fleet-management status of a vehicle (`vehicles.status`).
// Only active vehicles are simulated and broadcast.
type Lifecycle string

const (
	LifecycleActive      Lifecycle = "active"
	LifecycleInactive    Lifecycle = "inactive"
	LifecycleMaintenance Lifecycle = "maintenance"
)

var ErrInvalidLifecycle = errors.New("invalid vehicle lifecycle status")

// ParseLifecycle normalizes (lowercases+trims) and validates a lifecycle string.
func ParseLifecycle(in string) (Lifecycle, error) {
	lc := Lifecycle(strings.ToLower(strings.TrimSpace(in)))
	if lc.Valid() {
		return lc, nil
	}
	return "", ErrInvalidLifecycle
}

func (lc Lifecycle) Valid() bool {
	switch lc {
	case LifecycleActive, LifecycleInactive, LifecycleMaintenance:
		return true
	default:
		return false
	}
}

// InService reports whether the vehicle is eligible for simulation.
func (lc Lifecycle) InService() bool {
	return lc == LifecycleActive
}

func (lc Lifecycle) String() string {
	return string(lc)
}
