package service

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"fleet-tracker/internal/domain/geo"
	"fleet-tracker/internal/domain/vehicle"
	"fleet-tracker/internal/general/contracts"
	"fleet-tracker/internal/general/memstore"
	"fleet-tracker/internal/general/rabbitmq"
	"fleet-tracker/internal/ports"
)

type stubConsumer struct {
	calls chan struct{}
	down  bool
}

func (c *stubConsumer) Ready() bool { return !c.down }

func (c *stubConsumer) Consume(ctx context.Context, queue, _ string, _ int, _ func(context.Context, amqp.Delivery) error) error {
	if queue != contracts.QueueVehicleCommands {
		return errors.New("unexpected queue " + queue)
	}
	select {
	case c.calls <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return nil
}

func newTestService(store ports.VehicleStore, consumer DeliveryConsumer) *trackingService {
	b := &recordingBroadcaster{}
	sched := newTestScheduler(store, b, nil, 10*time.Millisecond, 0)
	return NewTrackingService(testLogger(), store, geo.DefaultZones(), sched, b, consumer, 4).(*trackingService)
}

func TestTrackingService_ApplyPatchClearsBreakdown(t *testing.T) {
	store := memstore.New(vehicle.DemoFleet())
	svc := newTestService(store, nil)

	idle := vehicle.StatusIdle
	v, err := svc.ApplyPatch(context.Background(), "TRK011", vehicle.Patch{Status: &idle})

	require.NoError(t, err)
	assert.Equal(t, vehicle.StatusIdle, v.Status)
	assert.Zero(t, v.SpeedKmh)

	stored, _ := store.Get(context.Background(), "TRK011")
	assert.Equal(t, vehicle.StatusIdle, stored.Status)
	assert.False(t, stored.LastUpdate.IsZero())
}

func TestTrackingService_ZoneChangeKeepsPositionInBox(t *testing.T) {
	zones := geo.DefaultZones()
	broken := vehicle.Vehicle{
		ID: "TRK900", ZoneID: "ZN003", Lifecycle: vehicle.LifecycleActive,
		Position: &geo.Position{Latitude: 18.57, Longitude: 73.93},
		Status:   vehicle.StatusBreakdown, TripsAllowed: 4,
	}
	store := memstore.New([]vehicle.Vehicle{broken})
	b := &recordingBroadcaster{}
	sched := newTestScheduler(store, b, nil, time.Second, 0)
	svc := NewTrackingService(testLogger(), store, zones, sched, b, nil, 4)
	ctx := context.Background()

	zone := "ZN001"
	v, err := svc.ApplyPatch(ctx, "TRK900", vehicle.Patch{ZoneID: &zone})
	require.NoError(t, err)

	box := zones.Bounds("ZN001")
	require.NotNil(t, v.Position)
	assert.True(t, box.Contains(*v.Position), "patched position %v outside %s", *v.Position, box)

	// the simulation leaves a broken-down vehicle alone, so the edit itself must hold
	for range 3 {
		sched.Tick(ctx)
	}
	stored, err := store.Get(ctx, "TRK900")
	require.NoError(t, err)
	assert.Equal(t, vehicle.StatusBreakdown, stored.Status)
	require.NoError(t, stored.Validate(box))

	live, err := svc.LiveSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, live.Data, 1)
	assert.True(t, box.Contains(geo.Position{Latitude: live.Data[0].Latitude, Longitude: live.Data[0].Longitude}))
}

func TestTrackingService_ApplyPatchValidation(t *testing.T) {
	svc := newTestService(memstore.New(vehicle.DemoFleet()), nil)

	_, err := svc.ApplyPatch(context.Background(), "TRK001", vehicle.Patch{})
	assert.ErrorIs(t, err, vehicle.ErrEmptyPatch)

	idle := vehicle.StatusIdle
	_, err = svc.ApplyPatch(context.Background(), "TRK999", vehicle.Patch{Status: &idle})
	assert.ErrorIs(t, err, vehicle.ErrNotFound)
}

func TestTrackingService_HandleCommand(t *testing.T) {
	store := &flakyStore{VehicleStore: memstore.New(vehicle.DemoFleet()), failUpdateID: "TRK002"}
	svc := newTestService(store, nil)
	ctx := context.Background()

	err := svc.HandleCommand(ctx, []byte(`{"vehicle_id":"TRK004","lifecycle":"active"}`))
	require.NoError(t, err)
	v, _ := store.Get(ctx, "TRK004")
	assert.True(t, v.InService())

	err = svc.HandleCommand(ctx, []byte(`{not json`))
	assert.ErrorIs(t, err, contracts.ErrMalformedCommand)
	assert.NotErrorIs(t, err, rabbitmq.ErrRequeue)

	err = svc.HandleCommand(ctx, []byte(`{"vehicle_id":"TRK001","status":"teleporting"}`))
	assert.ErrorIs(t, err, contracts.ErrMalformedCommand)

	err = svc.HandleCommand(ctx, []byte(`{"vehicle_id":"TRK999","status":"idle"}`))
	assert.ErrorIs(t, err, vehicle.ErrNotFound)
	assert.NotErrorIs(t, err, rabbitmq.ErrRequeue)

	err = svc.HandleCommand(ctx, []byte(`{"vehicle_id":"TRK002","status":"offline"}`))
	assert.ErrorIs(t, err, rabbitmq.ErrRequeue)
}

func TestTrackingService_DeliveryRoutingKeyMustMatchVehicle(t *testing.T) {
	store := memstore.New(vehicle.DemoFleet())
	svc := newTestService(store, nil)
	ctx := context.Background()
	body := []byte(`{"vehicle_id":"TRK011","status":"idle"}`)

	err := svc.handleDelivery(ctx, amqp.Delivery{RoutingKey: contracts.RouteVehicleCommand("TRK001"), Body: body})
	assert.ErrorIs(t, err, contracts.ErrMalformedCommand)
	v, _ := store.Get(ctx, "TRK011")
	assert.Equal(t, vehicle.StatusBreakdown, v.Status)

	err = svc.handleDelivery(ctx, amqp.Delivery{RoutingKey: contracts.RouteVehicleCommand("TRK011"), Body: body})
	require.NoError(t, err)
	v, _ = store.Get(ctx, "TRK011")
	assert.Equal(t, vehicle.StatusIdle, v.Status)
}

func TestTrackingService_BrokerStatus(t *testing.T) {
	store := memstore.New(vehicle.DemoFleet())

	assert.Equal(t, ports.BrokerDisabled, newTestService(store, nil).BrokerStatus())
	assert.Equal(t, ports.BrokerReady, newTestService(store, &stubConsumer{}).BrokerStatus())
	assert.Equal(t, ports.BrokerDown, newTestService(store, &stubConsumer{down: true}).BrokerStatus())
}

func TestTrackingService_LiveSnapshot(t *testing.T) {
	svc := newTestService(memstore.New(vehicle.DemoFleet()), nil)

	u, err := svc.LiveSnapshot(context.Background())

	require.NoError(t, err)
	assert.Equal(t, contracts.TypeTruckPositions, u.Type)
	assert.Len(t, u.Data, 11) // TRK010 has no position yet, TRK004 is in maintenance
	assert.Equal(t, 1, svc.Subscribers())
}

func TestTrackingService_RunSupervisesConsumer(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	consumer := &stubConsumer{calls: make(chan struct{}, 1)}
	svc := newTestService(memstore.New(vehicle.DemoFleet()), consumer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case <-consumer.calls:
	case <-time.After(waitFor):
		t.Fatal("consumer was not started")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("service did not stop")
	}
}
