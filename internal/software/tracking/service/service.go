package service

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"

	"fleet-tracker/internal/domain/geo"
	"fleet-tracker/internal/domain/vehicle"
	"fleet-tracker/internal/general/contracts"
	"fleet-tracker/internal/general/logger"
	"fleet-tracker/internal/ports"
	"fleet-tracker/internal/software/tracking/snapshot"
)

// DeliveryConsumer is the broker side of the vehicle command feed.
type DeliveryConsumer interface {
	Consume(ctx context.Context, queue, consumerTag string, prefetch int, handler func(context.Context, amqp.Delivery) error) error
	Ready() bool
}

// trackingService holds all dependencies required by the tracking service.
type trackingService struct {
	logger    *logger.Logger
	store     ports.VehicleStore
	zones     *geo.ZoneTable
	scheduler *Scheduler
	registry  ports.Broadcaster
	commands  DeliveryConsumer // nil when the broker is disabled
	prefetch  int
	now       func() time.Time
}

// NewTrackingService constructs the service with required dependencies.
func NewTrackingService(
	logger *logger.Logger,
	store ports.VehicleStore,
	zones *geo.ZoneTable,
	scheduler *Scheduler,
	registry ports.Broadcaster,
	commands DeliveryConsumer,
	prefetch int,
) ports.TrackingService {
	if zones == nil {
		zones = geo.DefaultZones()
	}
	return &trackingService{
		logger:    logger,
		store:     store,
		zones:     zones,
		scheduler: scheduler,
		registry:  registry,
		commands:  commands,
		prefetch:  prefetch,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run supervises the scheduler and, when configured, the command consumer.
func (service *trackingService) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return service.scheduler.Run(ctx) })
	if service.commands != nil {
		g.Go(func() error { return service.consumeCommands(ctx) })
	}
	return g.Wait()
}

func (service *trackingService) LiveSnapshot(ctx context.Context) (contracts.PositionUpdate, error) {
	list, err := service.store.ListActive(ctx)
	if err != nil {
		return contracts.PositionUpdate{}, err
	}
	return snapshot.Build(list, service.now()), nil
}

// ApplyPatch validates patch and applies it in one atomic store update. The
// position is clamped to the box of the resulting zone, so a zone change never
// leaves a vehicle outside its box, not even one the simulation skips.
func (service *trackingService) ApplyPatch(ctx context.Context, vehicleID string, patch vehicle.Patch) (vehicle.Vehicle, error) {
	if err := patch.Validate(); err != nil {
		return vehicle.Vehicle{}, err
	}

	var out vehicle.Vehicle
	err := service.store.Update(ctx, vehicleID, func(v *vehicle.Vehicle) error {
		patch.Apply(v)
		if v.Position != nil {
			p := service.zones.Bounds(v.ZoneID).Clamp(*v.Position)
			v.Position = &p
		}
		v.LastUpdate = service.now()
		out = v.Clone()
		return nil
	})
	if err != nil {
		return vehicle.Vehicle{}, err
	}
	return out, nil
}

func (service *trackingService) Subscribers() int {
	return service.registry.Len()
}

// BrokerStatus is "disabled" without RabbitMQ, otherwise "ready" or "down".
func (service *trackingService) BrokerStatus() string {
	switch {
	case service.commands == nil:
		return ports.BrokerDisabled
	case service.commands.Ready():
		return ports.BrokerReady
	default:
		return ports.BrokerDown
	}
}
