package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fleet-tracker/internal/domain/vehicle"
	"fleet-tracker/internal/general/contracts"
	"fleet-tracker/internal/general/logger"
	"fleet-tracker/internal/general/metrics"
	"fleet-tracker/internal/ports"
	"fleet-tracker/internal/software/tracking/simulation"
	"fleet-tracker/internal/software/tracking/snapshot"
)

const (
	stepSimulate  = "simulate"
	stepBroadcast = "broadcast"
)

// Scheduler drives the simulation and the broadcast from a single goroutine.
type Scheduler struct {
	logger      *logger.Logger
	store       ports.VehicleStore
	engine      *simulation.Engine
	broadcaster ports.Broadcaster
	sink        ports.Publisher // nil when the broker is disabled

	simEvery       time.Duration
	broadcastEvery time.Duration
	now            func() time.Time
}

// NewScheduler wires a scheduler. broadcastEvery <= 0 means "same as simEvery".
func NewScheduler(
	log *logger.Logger,
	store ports.VehicleStore,
	engine *simulation.Engine,
	broadcaster ports.Broadcaster,
	sink ports.Publisher,
	simEvery, broadcastEvery time.Duration,
) *Scheduler {
	if broadcastEvery <= 0 {
		broadcastEvery = simEvery
	}
	return &Scheduler{
		logger:         log,
		store:          store,
		engine:         engine,
		broadcaster:    broadcaster,
		sink:           sink,
		simEvery:       simEvery,
		broadcastEvery: broadcastEvery,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Run ticks until ctx is cancelled. The first cycle runs immediately; ticks
// missed while a cycle is still running are dropped. It always returns nil.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info(ctx, "scheduler_started", "Tracking scheduler started", map[string]any{
		"tick":               s.simEvery.String(),
		"broadcast_interval": s.broadcastEvery.String(),
	})
	defer s.logger.Info(context.WithoutCancel(ctx), "scheduler_stopped", "Tracking scheduler stopped", nil)

	s.Tick(ctx)

	if s.simEvery == s.broadcastEvery {
		ticker := time.NewTicker(s.simEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}

	simTicker := time.NewTicker(s.simEvery)
	defer simTicker.Stop()
	bcTicker := time.NewTicker(s.broadcastEvery)
	defer bcTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-simTicker.C:
			s.Simulate(ctx, s.now())
		case <-bcTicker.C:
			s.Broadcast(ctx, s.now())
		}
	}
}

// Tick runs one full cycle: simulate, then broadcast.
func (s *Scheduler) Tick(ctx context.Context) ports.TickReport {
	now := s.now()
	report := s.Simulate(ctx, now)
	if ctx.Err() != nil {
		return report
	}
	bc := s.Broadcast(ctx, now)
	report.Broadcast = bc.Broadcast
	report.Fanout = bc.Fanout
	report.SnapshotLen = bc.SnapshotLen
	return report
}

// Simulate advances every in-service vehicle by one step, one atomic store
// update per vehicle. It stops between vehicles once ctx is cancelled.
func (s *Scheduler) Simulate(ctx context.Context, now time.Time) ports.TickReport {
	start := time.Now()
	var report ports.TickReport

	list, err := s.store.ListActive(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error(ctx, "simulation_tick_failed", "Failed to list vehicles; skipping tick", err, nil)
			metrics.ObserveTick(stepSimulate, metrics.ResultError, time.Since(start))
		}
		return report
	}

	for _, v := range list {
		if ctx.Err() != nil {
			break
		}

		changed := false
		err := s.store.Update(ctx, v.ID, func(cur *vehicle.Vehicle) error {
			next, ok := s.engine.Advance(*cur, now)
			if !ok {
				return vehicle.ErrNotModified
			}
			*cur = next
			changed = true
			return nil
		})

		switch {
		case err != nil && errors.Is(err, context.Canceled):
		case err != nil:
			report.Failed++
			metrics.IncVehicleAdvanced(metrics.ResultError)
			vctx := s.logger.WithVehicleID(ctx, v.ID)
			s.logger.Error(vctx, "vehicle_update_failed", "Failed to advance vehicle", err, nil)
		case changed:
			report.Simulated++
			metrics.IncVehicleAdvanced(metrics.ResultOK)
		default:
			report.Skipped++
			metrics.IncVehicleAdvanced(metrics.ResultSkipped)
		}
	}

	result := metrics.ResultOK
	if report.Failed > 0 {
		result = metrics.ResultError
	}
	metrics.ObserveTick(stepSimulate, result, time.Since(start))

	s.logger.Debug(ctx, "simulation_tick", "Simulation step finished", map[string]any{
		"simulated": report.Simulated,
		"skipped":   report.Skipped,
		"failed":    report.Failed,
	})
	return report
}

// Broadcast builds a snapshot and fans it out. An empty snapshot is not sent.
func (s *Scheduler) Broadcast(ctx context.Context, now time.Time) ports.TickReport {
	start := time.Now()
	var report ports.TickReport

	list, err := s.store.ListActive(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error(ctx, "snapshot_read_failed", "Failed to read vehicles for snapshot", err, nil)
			metrics.ObserveTick(stepBroadcast, metrics.ResultError, time.Since(start))
		}
		return report
	}

	update := snapshot.Build(list, now)
	report.SnapshotLen = len(update.Data)
	metrics.SetSnapshotSize(report.SnapshotLen)
	if update.Empty() {
		metrics.ObserveTick(stepBroadcast, metrics.ResultSkipped, time.Since(start))
		return report
	}

	payload, err := json.Marshal(update)
	if err != nil {
		s.logger.Error(ctx, "snapshot_encode_failed", "Failed to encode snapshot", err, nil)
		metrics.ObserveTick(stepBroadcast, metrics.ResultError, time.Since(start))
		return report
	}

	report.Broadcast = true
	// one fan-out never outlives its period, so a stalled peer cannot hold the loop
	fanCtx, cancel := context.WithTimeout(ctx, s.broadcastEvery)
	report.Fanout = s.broadcaster.Broadcast(fanCtx, payload)
	cancel()
	s.publish(ctx, payload)

	metrics.ObserveTick(stepBroadcast, metrics.ResultOK, time.Since(start))
	s.logger.Debug(ctx, "snapshot_broadcast", "Snapshot broadcast", map[string]any{
		"vehicles":   report.SnapshotLen,
		"recipients": report.Fanout.Recipients,
		"delivered":  report.Fanout.Delivered,
		"failed":     report.Fanout.Failed,
	})
	return report
}

func (s *Scheduler) publish(ctx context.Context, payload []byte) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Publish(contracts.ExchangeFleetFanout, "", payload); err != nil {
		metrics.IncSinkPublish(metrics.ResultError)
		s.logger.Error(ctx, "snapshot_publish_failed", "Failed to publish snapshot to broker", err, nil)
		return
	}
	metrics.IncSinkPublish(metrics.ResultOK)
}
