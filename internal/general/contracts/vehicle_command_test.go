package contracts

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-tracker/internal/domain/vehicle"
)

func TestVehicleCommand_PatchClearsBreakdown(t *testing.T) {
	raw := []byte(`{"type":"vehicle_command","vehicle_id":"TRK011","status":"IDLE","reason":"repaired"}`)

	var cmd VehicleCommand
	require.NoError(t, json.Unmarshal(raw, &cmd))

	p, err := cmd.Patch()
	require.NoError(t, err)
	require.NotNil(t, p.Status)
	assert.Equal(t, vehicle.StatusIdle, *p.Status)
	assert.Nil(t, p.Lifecycle)
}

func TestVehicleCommand_PatchRejectsMalformed(t *testing.T) {
	bad := "flying"
	cases := map[string]VehicleCommand{
		"missing id":     {Status: &bad},
		"unknown status": {VehicleID: "TRK001", Status: &bad},
		"empty patch":    {VehicleID: "TRK001"},
	}
	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := cmd.Patch()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedCommand))
		})
	}
}

func TestRouteVehicleCommand(t *testing.T) {
	assert.Equal(t, "vehicle.command.TRK001", RouteVehicleCommand("TRK001"))
}
