package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

var (
	ticksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_tracker_ticks_total",
		Help: "Scheduler ticks by step and result.",
	}, []string{"step", "result"}) // step: simulate, broadcast

	tickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fleet_tracker_tick_duration_seconds",
		Help:    "Wall time of one scheduler step.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"step"})

	vehiclesAdvanced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_tracker_vehicles_advanced_total",
		Help: "Per-vehicle simulation outcomes.",
	}, []string{"result"}) // ok, skipped, error

	snapshotSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_tracker_snapshot_vehicles",
		Help: "Vehicles in the most recent broadcast snapshot.",
	})

	deliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_tracker_deliveries_total",
		Help: "Per-subscriber broadcast deliveries by result.",
	}, []string{"result"})

	subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_tracker_subscribers",
		Help: "Currently registered broadcast subscribers.",
	})

	sinkPublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_tracker_sink_publish_total",
		Help: "Snapshot publications to the message broker by result.",
	}, []string{"result"})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleet_tracker_commands_total",
		Help: "Vehicle commands consumed from the broker by result.",
	}, []string{"result"}) // ok, malformed, error
)

// ObserveTick records one scheduler step.
func ObserveTick(step, result string, took time.Duration) {
	ticksTotal.WithLabelValues(step, result).Inc()
	tickDuration.WithLabelValues(step).Observe(took.Seconds())
}

func IncVehicleAdvanced(result string) {
	vehiclesAdvanced.WithLabelValues(result).Inc()
}

func SetSnapshotSize(n int) {
	snapshotSize.Set(float64(n))
}

// AddDeliveries records the outcome of one fan-out.
func AddDeliveries(delivered, failed int) {
	if delivered > 0 {
		deliveriesTotal.WithLabelValues(ResultOK).Add(float64(delivered))
	}
	if failed > 0 {
		deliveriesTotal.WithLabelValues(ResultError).Add(float64(failed))
	}
}

func SetSubscribers(n int) {
	subscribers.Set(float64(n))
}

func IncSinkPublish(result string) {
	sinkPublishTotal.WithLabelValues(result).Inc()
}

func IncCommand(result string) {
	if result == "" {
		result = "unknown"
	}
	commandsTotal.WithLabelValues(result).Inc()
}
