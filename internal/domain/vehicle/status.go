package vehicle

import (
	"errors"
	"strings"
)

// Status is the simulated operating state of a vehicle, stored in `vehicles.current_status`.
type Status string

const (
	StatusMoving    Status = "moving"
	StatusIdle      Status = "idle"
	StatusDumping   Status = "dumping"
	StatusOffline   Status = "offline"
	StatusBreakdown Status = "breakdown"
)

var ErrInvalidStatus = errors.New("invalid vehicle status")

// ParseStatus normalizes (lowercases+trims) and validates a status string.
func ParseStatus(in string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Valid reports whether the status is one of the allowed status constants.
func (status Status) Valid() bool {
	switch status {
	case StatusMoving, StatusIdle, StatusDumping, StatusOffline, StatusBreakdown:
		return true
	default:
		return false
	}
}

// Terminal reports whether the simulation leaves the vehicle untouched in this status.
func (status Status) Terminal() bool {
	return status == StatusBreakdown
}

// String returns the string representation of the Status.
func (status Status) String() string {
	return string(status)
}
