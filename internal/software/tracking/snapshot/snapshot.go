package snapshot

import (
	"sort"
	"time"

	"fleet-tracker/internal/domain/vehicle"
	"fleet-tracker/internal/general/contracts"
)

// Build turns store records into the broadcast envelope. Only in-service
// vehicles with a known position are included, ordered by ID. The input slice
// is not modified.
func Build(vehicles []vehicle.Vehicle, at time.Time) contracts.PositionUpdate {
	rows := make([]contracts.VehiclePosition, 0, len(vehicles))
	for i := range vehicles {
		v := &vehicles[i]
		if !v.InService() || !v.HasPosition() {
			continue
		}
		rows = append(rows, row(v))
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	return contracts.PositionUpdate{
		Type:      contracts.TypeTruckPositions,
		Timestamp: at.UTC(),
		Data:      rows,
	}
}

func row(v *vehicle.Vehicle) contracts.VehiclePosition {
	r := contracts.VehiclePosition{
		ID:                 v.ID,
		RegistrationNumber: v.RegistrationNumber,
		Latitude:           v.Position.Latitude,
		Longitude:          v.Position.Longitude,
		Status:             v.Status.String(),
		Speed:              v.SpeedKmh,
		TripsCompleted:     v.TripsCompleted,
	}
	if !v.LastUpdate.IsZero() {
		ts := v.LastUpdate.UTC()
		r.LastUpdate = &ts
	}
	return r
}
