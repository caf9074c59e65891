package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-tracker/internal/domain/geo"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("  MOVING ")
	require.NoError(t, err)
	assert.Equal(t, StatusMoving, s)

	_, err = ParseStatus("parked")
	require.ErrorIs(t, err, ErrInvalidStatus)

	assert.True(t, StatusBreakdown.Terminal())
	assert.False(t, StatusOffline.Terminal())
}

func TestParseLifecycle(t *testing.T) {
	lc, err := ParseLifecycle("Maintenance")
	require.NoError(t, err)
	assert.Equal(t, LifecycleMaintenance, lc)
	assert.False(t, lc.InService())
	assert.True(t, LifecycleActive.InService())

	_, err = ParseLifecycle("scrapped")
	require.ErrorIs(t, err, ErrInvalidLifecycle)
}

func TestClone_DoesNotSharePosition(t *testing.T) {
	v := Vehicle{ID: "TRK001", Position: &geo.Position{Latitude: 18.5, Longitude: 73.9}}

	cp := v.Clone()
	cp.Position.Latitude = 0

	assert.Equal(t, 18.5, v.Position.Latitude)
}

func TestPatch_ClearsBreakdownAndSpeed(t *testing.T) {
	idle := StatusIdle
	v := Vehicle{ID: "TRK011", Status: StatusMoving, SpeedKmh: 30, Lifecycle: LifecycleActive}

	p := Patch{Status: &idle}
	require.NoError(t, p.Validate())
	p.Apply(&v)

	assert.Equal(t, StatusIdle, v.Status)
	assert.Zero(t, v.SpeedKmh)
}

func TestPatch_ApplyAllFields(t *testing.T) {
	lc := LifecycleInactive
	zone := " ZN002 "
	trips := 7
	v := Vehicle{ID: "TRK002", ZoneID: "ZN003", Position: &geo.Position{Latitude: 18.56, Longitude: 73.92}, Status: StatusIdle}

	p := Patch{Lifecycle: &lc, ZoneID: &zone, TripsAllowed: &trips, ClearPosition: true}
	require.NoError(t, p.Validate())
	p.Apply(&v)

	assert.Equal(t, LifecycleInactive, v.Lifecycle)
	assert.Equal(t, "ZN002", v.ZoneID)
	assert.Equal(t, 7, v.TripsAllowed)
	assert.Nil(t, v.Position)
}

func TestPatch_Validate(t *testing.T) {
	bad := Status("parked")
	blank := "  "
	negative := -1

	require.ErrorIs(t, Patch{}.Validate(), ErrEmptyPatch)
	require.ErrorIs(t, Patch{Status: &bad}.Validate(), ErrInvalidStatus)
	require.Error(t, Patch{ZoneID: &blank}.Validate())
	require.ErrorIs(t, Patch{TripsAllowed: &negative}.Validate(), ErrNegativeTrips)
}

func TestDemoFleet_IsValid(t *testing.T) {
	zones := geo.DefaultZones()
	seen := map[string]bool{}

	for _, v := range DemoFleet() {
		require.NoError(t, v.Validate(zones.Bounds(v.ZoneID)), v.ID)
		assert.False(t, seen[v.ID], "duplicate id %s", v.ID)
		seen[v.ID] = true
	}
	assert.Len(t, seen, 13)
}

func TestValidate_Rejects(t *testing.T) {
	box := geo.MustBoundingBox(18.55, 18.58, 73.91, 73.95)
	base := Vehicle{ID: "TRK001", Lifecycle: LifecycleActive, Status: StatusIdle}

	v := base
	v.SpeedKmh = 5
	require.ErrorIs(t, v.Validate(box), ErrSpeedWhileStill)

	v = base
	v.Position = &geo.Position{Latitude: 18.0, Longitude: 73.92}
	require.ErrorIs(t, v.Validate(box), ErrPositionOutOfBox)

	v = base
	v.ID = " "
	require.ErrorIs(t, v.Validate(box), ErrEmptyID)
}
