package vehicle

import "fleet-tracker/internal/domain/geo"

// DemoFleet returns the reference fleet used to seed a fresh store.
// It covers every simulated status and a vehicle under maintenance.
func DemoFleet() []Vehicle {
	pos := func(lat, lng float64) *geo.Position { return &geo.Position{Latitude: lat, Longitude: lng} }
	return []Vehicle{
		{ID: "TRK001", RegistrationNumber: "MH-12-AB-1234", ZoneID: "ZN003", Lifecycle: LifecycleActive, Position: pos(18.5520, 73.9400), Status: StatusMoving, SpeedKmh: 25, TripsCompleted: 3, TripsAllowed: 5},
		{ID: "TRK002", RegistrationNumber: "MH-12-CD-5678", ZoneID: "ZN003", Lifecycle: LifecycleActive, Position: pos(18.5560, 73.9450), Status: StatusIdle, TripsCompleted: 2, TripsAllowed: 4},
		{ID: "TRK003", RegistrationNumber: "MH-12-EF-9012", ZoneID: "ZN003", Lifecycle: LifecycleActive, Position: pos(18.5620, 73.9150), Status: StatusDumping, TripsCompleted: 4, TripsAllowed: 5},
		{ID: "TRK004", RegistrationNumber: "MH-12-GH-3456", ZoneID: "ZN003", Lifecycle: LifecycleMaintenance, Position: pos(18.5580, 73.9300), Status: StatusOffline, TripsCompleted: 1, TripsAllowed: 3},
		{ID: "TRK005", RegistrationNumber: "MH-12-IJ-7890", ZoneID: "ZN001", Lifecycle: LifecycleActive, Position: pos(18.5890, 73.8150), Status: StatusMoving, SpeedKmh: 30, TripsCompleted: 2, TripsAllowed: 5},
		{ID: "TRK006", RegistrationNumber: "MH-12-KL-1122", ZoneID: "ZN001", Lifecycle: LifecycleActive, Position: pos(18.5650, 73.7950), Status: StatusMoving, SpeedKmh: 22, TripsCompleted: 3, TripsAllowed: 5},
		{ID: "TRK007", RegistrationNumber: "MH-12-MN-3344", ZoneID: "ZN001", Lifecycle: LifecycleActive, Position: pos(18.5880, 73.8200), Status: StatusMoving, SpeedKmh: 18, TripsCompleted: 2, TripsAllowed: 4},
		{ID: "TRK008", RegistrationNumber: "MH-12-OP-5566", ZoneID: "ZN002", Lifecycle: LifecycleActive, Position: pos(18.5010, 73.9350), Status: StatusMoving, SpeedKmh: 35, TripsCompleted: 2, TripsAllowed: 5},
		{ID: "TRK009", RegistrationNumber: "MH-12-QR-7788", ZoneID: "ZN002", Lifecycle: LifecycleActive, Position: pos(18.5050, 73.9400), Status: StatusDumping, TripsCompleted: 3, TripsAllowed: 4},
		{ID: "TRK010", RegistrationNumber: "MH-12-ST-9900", ZoneID: "ZN004", Lifecycle: LifecycleActive, Status: StatusOffline, TripsAllowed: 5},
		{ID: "TRK011", RegistrationNumber: "MH-12-UV-2468", ZoneID: "ZN005", Lifecycle: LifecycleActive, Position: pos(18.5250, 73.8550), Status: StatusBreakdown, TripsCompleted: 1, TripsAllowed: 4},
		{ID: "TRK-SPR-001", RegistrationNumber: "MH-12-SP-1001", ZoneID: "ZN003", Lifecycle: LifecycleActive, Position: pos(18.5550, 73.9350), Status: StatusIdle, TripsAllowed: 5},
		{ID: "TRK-SPR-002", RegistrationNumber: "MH-12-SP-2001", ZoneID: "ZN001", Lifecycle: LifecycleActive, Position: pos(18.5870, 73.8180), Status: StatusIdle, TripsAllowed: 4},
	}
}
