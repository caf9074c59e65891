package contracts

// Exchanges
const (
	ExchangeFleetFanout  = "fleet_fanout"
	ExchangeVehicleTopic = "vehicle_topic"
)

// Queues
const (
	QueueVehicleCommands = "vehicle_commands"
)

// Routing patterns
const (
	RouteVehicleCommandPrefix = "vehicle.command." // {vehicle_id}
)

// Message types
const (
	TypeTruckPositions = "truck_positions"
	TypeVehicleCommand = "vehicle_command"
)
