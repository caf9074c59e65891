package contracts

import "time"

// VehiclePosition is one row of a position broadcast.
type VehiclePosition struct {
	ID                 string     `json:"id"`
	RegistrationNumber string     `json:"registration_number,omitempty"`
	Latitude           float64    `json:"latitude"`
	Longitude          float64    `json:"longitude"`
	Status             string     `json:"status"`
	Speed              float64    `json:"speed"`
	TripsCompleted     int        `json:"trips_completed"`
	LastUpdate         *time.Time `json:"last_update"`
}

// PositionUpdate is pushed to every dashboard subscriber once per tick and,
// when the broker is enabled, published to ExchangeFleetFanout.
type PositionUpdate struct {
	Type      string            `json:"type"` // always TypeTruckPositions
	Timestamp time.Time         `json:"timestamp"`
	Data      []VehiclePosition `json:"data"`
}

// Empty reports whether there is nothing to broadcast.
func (u PositionUpdate) Empty() bool {
	return len(u.Data) == 0
}
