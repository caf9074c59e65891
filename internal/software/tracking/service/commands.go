package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"fleet-tracker/internal/domain/vehicle"
	"fleet-tracker/internal/general/contracts"
	"fleet-tracker/internal/general/metrics"
	"fleet-tracker/internal/general/rabbitmq"
)

const (
	commandConsumerTag = "tracking-service-vehicle-commands"
	resubscribeMin     = time.Second
	resubscribeMax     = 30 * time.Second
)

// consumeCommands keeps a subscription on the command queue until ctx ends,
// resubscribing with backoff whenever the channel is lost.
func (service *trackingService) consumeCommands(ctx context.Context) error {
	backoff := resubscribeMin
	for {
		err := service.commands.Consume(ctx, contracts.QueueVehicleCommands, commandConsumerTag, service.prefetch, service.handleDelivery)
		if ctx.Err() != nil {
			return nil
		}
		service.logger.Error(ctx, "command_consumer_lost", "Vehicle command consumer stopped; resubscribing", err, map[string]any{
			"backoff": backoff.String(),
		})

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, resubscribeMax)
	}
}

func (service *trackingService) handleDelivery(ctx context.Context, d amqp.Delivery) error {
	ctx = service.logger.WithRequestID(ctx, d.CorrelationId)
	return service.handleCommand(ctx, d.RoutingKey, d.Body)
}

// HandleCommand decodes and applies one vehicle command. Malformed commands
// and unknown vehicles return a plain error (dropped); store failures wrap
// rabbitmq.ErrRequeue so the delivery is retried.
func (service *trackingService) HandleCommand(ctx context.Context, body []byte) error {
	return service.handleCommand(ctx, "", body)
}

// handleCommand also checks that a non-empty routingKey addresses the vehicle
// named in the body.
func (service *trackingService) handleCommand(ctx context.Context, routingKey string, body []byte) error {
	var cmd contracts.VehicleCommand
	if err := json.Unmarshal(body, &cmd); err != nil {
		metrics.IncCommand("malformed")
		service.logger.Error(ctx, "vehicle_command_malformed", "Failed to decode vehicle command", err, map[string]any{
			"size": len(body),
		})
		return fmt.Errorf("%w: %v", contracts.ErrMalformedCommand, err)
	}

	ctx = service.logger.WithVehicleID(ctx, cmd.VehicleID)
	if routingKey != "" && routingKey != contracts.RouteVehicleCommand(cmd.VehicleID) {
		err := fmt.Errorf("%w: routing key %q does not address vehicle %q", contracts.ErrMalformedCommand, routingKey, cmd.VehicleID)
		metrics.IncCommand("malformed")
		service.logger.Error(ctx, "vehicle_command_malformed", "Rejected misrouted vehicle command", err, nil)
		return err
	}
	patch, err := cmd.Patch()
	if err != nil {
		metrics.IncCommand("malformed")
		service.logger.Error(ctx, "vehicle_command_malformed", "Rejected vehicle command", err, nil)
		return err
	}

	v, err := service.ApplyPatch(ctx, cmd.VehicleID, patch)
	switch {
	case errors.Is(err, vehicle.ErrNotFound):
		metrics.IncCommand("not_found")
		service.logger.Error(ctx, "vehicle_command_unknown_vehicle", "Vehicle command for unknown vehicle", err, nil)
		return err
	case err != nil:
		metrics.IncCommand(metrics.ResultError)
		service.logger.Warn(ctx, "vehicle_command_requeued", "Failed to apply vehicle command; requeueing", map[string]any{
			"error": err.Error(),
		})
		return fmt.Errorf("%w: %w", rabbitmq.ErrRequeue, err)
	}

	metrics.IncCommand(metrics.ResultOK)
	service.logger.Info(ctx, "vehicle_command_applied", "Vehicle command applied", map[string]any{
		"status":    v.Status.String(),
		"lifecycle": v.Lifecycle.String(),
		"zone_id":   v.ZoneID,
		"reason":    cmd.Reason,
	})
	return nil
}
