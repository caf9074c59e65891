package contracts

import (
	"errors"
	"fmt"
	"strings"

	"fleet-tracker/internal/domain/vehicle"
)

var ErrMalformedCommand = errors.New("malformed vehicle command")

// VehicleCommand is an external edit to a vehicle, consumed from QueueVehicleCommands.
// Exchange: ExchangeVehicleTopic, routing key RouteVehicleCommandPrefix + vehicle_id.
type VehicleCommand struct {
	Type          string  `json:"type"` // always TypeVehicleCommand
	VehicleID     string  `json:"vehicle_id"`
	Status        *string `json:"status,omitempty"`
	Lifecycle     *string `json:"lifecycle,omitempty"`
	ZoneID        *string `json:"zone_id,omitempty"`
	TripsAllowed  *int    `json:"trips_allowed,omitempty"`
	ClearPosition bool    `json:"clear_position,omitempty"`
	Reason        string  `json:"reason,omitempty"`
	Envelope
}

// RouteVehicleCommand returns the routing key for commands addressed to vehicleID.
func RouteVehicleCommand(vehicleID string) string {
	return RouteVehicleCommandPrefix + vehicleID
}

// Patch converts the command into a validated domain patch.
func (c VehicleCommand) Patch() (vehicle.Patch, error) {
	if strings.TrimSpace(c.VehicleID) == "" {
		return vehicle.Patch{}, fmt.Errorf("%w: %v", ErrMalformedCommand, vehicle.ErrEmptyID)
	}

	var p vehicle.Patch
	if c.Status != nil {
		st, err := vehicle.ParseStatus(*c.Status)
		if err != nil {
			return vehicle.Patch{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
		p.Status = &st
	}
	if c.Lifecycle != nil {
		lc, err := vehicle.ParseLifecycle(*c.Lifecycle)
		if err != nil {
			return vehicle.Patch{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
		p.Lifecycle = &lc
	}
	p.ZoneID = c.ZoneID
	p.TripsAllowed = c.TripsAllowed
	p.ClearPosition = c.ClearPosition

	if err := p.Validate(); err != nil {
		return vehicle.Patch{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	return p, nil
}
