package simulation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-tracker/internal/domain/geo"
	"fleet-tracker/internal/domain/vehicle"
)

func TestEngine_KeepsInvariantsOverManyTicks(t *testing.T) {
	zones := geo.DefaultZones()
	engine := NewEngine(zones, NewSource(42), params)

	zoneIDs := append(zones.IDs(), "ZN999")
	for _, zoneID := range zoneIDs {
		t.Run(zoneID, func(t *testing.T) {
			box := zones.Bounds(zoneID)
			v := vehicle.Vehicle{
				ID:           "TRK-" + zoneID,
				ZoneID:       zoneID,
				Lifecycle:    vehicle.LifecycleActive,
				Status:       vehicle.StatusOffline,
				TripsAllowed: 50,
			}

			now := tickAt
			for i := 0; i < 2000; i++ {
				prevTrips := v.TripsCompleted
				next, changed := engine.Advance(v, now)
				require.True(t, changed)
				require.NoError(t, next.Validate(box), "tick %d", i)
				require.GreaterOrEqual(t, next.TripsCompleted, prevTrips)
				require.Equal(t, now, next.LastUpdate)
				v = next
				now = now.Add(params.Tick)
			}
		})
	}
}

func TestEngine_UnknownZoneUsesDefaultBox(t *testing.T) {
	engine := NewEngine(nil, NewSource(7), params)
	v := vehicle.Vehicle{ID: "TRK900", ZoneID: "nowhere", Lifecycle: vehicle.LifecycleActive, Status: vehicle.StatusIdle}

	next, _ := engine.Advance(v, tickAt)

	require.NotNil(t, next.Position)
	assert.True(t, geo.DefaultZones().Bounds(geo.DefaultZoneID).Contains(*next.Position))
}

func TestNewSource_SeededIsDeterministic(t *testing.T) {
	a, b := NewSource(99), NewSource(99)
	for i := 0; i < 10; i++ {
		x := a.Float64()
		assert.Equal(t, x, b.Float64())
		assert.GreaterOrEqual(t, x, 0.0)
		assert.Less(t, x, 1.0)
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams(time.Second)
	assert.Equal(t, time.Second, p.Tick)
	assert.Equal(t, 0.10, p.PDump)
	assert.Equal(t, 0.30, p.PStart)
	assert.Equal(t, 0.40, p.PFinishDump)
	assert.Equal(t, 0.05, p.POnline)
}
