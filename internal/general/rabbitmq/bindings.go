package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"fleet-tracker/internal/general/contracts"
)

type exchangeDecl struct {
	name string
	kind string
}

type bindingDecl struct {
	queue      string
	exchange   string
	routingKey string
}

var (
	topologyExchanges = []exchangeDecl{
		{contracts.ExchangeFleetFanout, "fanout"},
		{contracts.ExchangeVehicleTopic, "topic"},
	}

	topologyQueues = []string{
		contracts.QueueVehicleCommands,
	}

	topologyBindings = []bindingDecl{
		{contracts.QueueVehicleCommands, contracts.ExchangeVehicleTopic, contracts.RouteVehicleCommandPrefix + "*"},
	}
)

// declareTopology is idempotent and runs on every (re)connect. Snapshot
// consumers bind their own queues to the fanout exchange.
func declareTopology(ch *amqp.Channel) error {
	for _, ex := range topologyExchanges {
		if err := ch.ExchangeDeclare(ex.name, ex.kind, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	for _, q := range topologyQueues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
	}

	for _, b := range topologyBindings {
		if err := ch.QueueBind(b.queue, b.routingKey, b.exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}
