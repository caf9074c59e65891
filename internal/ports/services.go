package ports

import (
	"context"

	"fleet-tracker/internal/domain/vehicle"
	"fleet-tracker/internal/general/contracts"
)

// FanoutResult summarises one broadcast. Individual failures never surface as errors.
type FanoutResult struct {
	Recipients int `json:"recipients"`
	Delivered  int `json:"delivered"`
	Failed     int `json:"failed"`
}

// Broadcaster fans a pre-encoded message out to every connected subscriber.
type Broadcaster interface {
	Broadcast(ctx context.Context, payload []byte) FanoutResult
	Len() int
}

// Publisher sends a message to a broker exchange.
type Publisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// TickReport describes what one scheduler cycle did.
type TickReport struct {
	Simulated   int
	Skipped     int
	Failed      int
	Broadcast   bool
	Fanout      FanoutResult
	SnapshotLen int
}

// Broker states reported by TrackingService.BrokerStatus.
const (
	BrokerDisabled = "disabled"
	BrokerReady    = "ready"
	BrokerDown     = "down"
)

// TrackingService exposes the boundary of the live-tracking service.
type TrackingService interface {
	// Run blocks until ctx is cancelled, driving simulation and broadcast.
	Run(ctx context.Context) error
	// LiveSnapshot builds the current snapshot on demand.
	LiveSnapshot(ctx context.Context) (contracts.PositionUpdate, error)
	// ApplyPatch applies an external edit atomically.
	ApplyPatch(ctx context.Context, vehicleID string, patch vehicle.Patch) (vehicle.Vehicle, error)
	// Subscribers returns the number of connected subscribers.
	Subscribers() int
	// BrokerStatus reports the RabbitMQ connection state.
	BrokerStatus() string
}
