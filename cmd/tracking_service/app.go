package trackingservice

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"fleet-tracker/internal/domain/vehicle"
	"fleet-tracker/internal/general/config"
	"fleet-tracker/internal/general/jwt"
	"fleet-tracker/internal/general/logger"
	"fleet-tracker/internal/general/memstore"
	"fleet-tracker/internal/general/postgres"
	"fleet-tracker/internal/general/rabbitmq"
	"fleet-tracker/internal/general/websocket"
	"fleet-tracker/internal/ports"
	"fleet-tracker/internal/software/tracking/handler"
	"fleet-tracker/internal/software/tracking/service"
	"fleet-tracker/internal/software/tracking/simulation"
)

const (
	tokenTTL        = 2 * time.Hour
	shutdownTimeout = 10 * time.Second
	wsPath          = "/ws"
)

// Run wires the tracking service and blocks until ctx is cancelled.
// tick > 0 overrides simulation.tick from the config file.
func Run(ctx context.Context, configPath string, maxConcurrent int, tick time.Duration) error {
	log := logger.New("tracking-service")
	ctx = log.WithRequestID(ctx, "startup-001")

	// load a config from file
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		log.Error(ctx, "config_load_failed", "Failed to load configuration", err, map[string]any{"path": configPath})
		return err
	}
	log = log.SetLevel(cfg.Log.Level)
	applyTickOverride(cfg, tick)

	zones, err := cfg.ZoneTable()
	if err != nil {
		log.Error(ctx, "zone_table_failed", "Failed to build zone table", err, nil)
		return err
	}

	// set up the vehicle store
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "store_open_failed", "Failed to open vehicle store", err, map[string]any{"driver": cfg.Store.Driver})
		return err
	}
	defer closeStore()

	// optional JWT check at the handshake and on the HTTP API
	var jwtManager *jwt.Manager
	if cfg.JWT.Enabled {
		jwtManager = jwt.NewManager(cfg.JWT.SecretKey, tokenTTL)
	}

	// optional broker: snapshot sink and vehicle command feed
	var (
		sink     ports.Publisher
		commands service.DeliveryConsumer
	)
	if cfg.RabbitMQ.Enabled {
		mq, err := rabbitmq.ConnectRabbitMQ(ctx, cfg, log)
		if err != nil {
			log.Error(ctx, "mq_connection_failed", "Failed to connect to RabbitMQ", err, nil)
			return err
		}
		defer mq.Close()
		sink = rabbitmq.NewSnapshotPublisher(mq)
		commands = mq
	}

	// set up the core
	registry := websocket.NewRegistry(log, cfg.WebSocket.MaxFanout)
	engine := simulation.NewEngine(zones,
		simulation.NewSource(uint64(cfg.Simulation.Seed)),
		simulation.DefaultParams(cfg.Simulation.Tick),
	)
	scheduler := service.NewScheduler(log, store, engine, registry, sink,
		cfg.Simulation.Tick, cfg.Simulation.BroadcastInterval)
	svc := service.NewTrackingService(log, store, zones, scheduler, registry, commands, cfg.RabbitMQ.Prefetch)

	// set up the HTTP handler and its routes
	wsHandler := websocket.NewHandler(registry, log, jwtManager, cfg.WebSocket.AllowedOrigins)
	mux := http.NewServeMux()
	handler.NewTrackingHTTPHandler(svc, log, jwtManager, wsHandler.Connect).RegisterRoutes(mux)

	port := cfg.Services.TrackingServicePort
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           withConcurrencyLimit(maxConcurrent, mux, wsPath),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	log.Info(ctx, "service_started",
		fmt.Sprintf("Tracking service started on port %d", port),
		map[string]any{
			"port":               port,
			"max_concurrent":     maxConcurrent,
			"store":              cfg.Store.Driver,
			"tick":               cfg.Simulation.Tick.String(),
			"broadcast_interval": cfg.Simulation.BroadcastInterval.String(),
			"rabbitmq":           cfg.RabbitMQ.Enabled,
			"auth":               cfg.JWT.Enabled,
		},
	)

	g, gctx := errgroup.WithContext(ctx)

	// simulation, broadcast and command consumer
	g.Go(func() error { return svc.Run(gctx) })

	// HTTP server
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "http_server_error", "HTTP server terminated with error", err, map[string]any{"port": port})
			return err
		}
		return nil
	})

	// graceful shutdown once anything stops or ctx is cancelled
	g.Go(func() error {
		<-gctx.Done()
		registry.CloseAll()
		shCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "http_shutdown_failed", "Failed to gracefully shut down HTTP server", err, nil)
		}
		return nil
	})

	err = g.Wait()
	log.Info(context.WithoutCancel(ctx), "service_stopped", "Tracking service stopped", nil)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// applyTickOverride replaces the simulation tick. The broadcast interval follows
// it unless the file set a different one.
func applyTickOverride(cfg *config.Config, tick time.Duration) {
	if tick <= 0 {
		return
	}
	if cfg.Simulation.BroadcastInterval == cfg.Simulation.Tick {
		cfg.Simulation.BroadcastInterval = tick
	}
	cfg.Simulation.Tick = tick
}

// openStore builds the configured vehicle store and its cleanup func.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (ports.VehicleStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Info(ctx, "store_ready", "Using in-memory vehicle store with the demo fleet", nil)
		return memstore.New(vehicle.DemoFleet()), func() {}, nil

	case config.StoreDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		store := postgres.NewVehicleStore(postgres.NewUnitOfWork(pool), postgres.NewVehicleRepo())
		return store, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// withConcurrencyLimit wraps an http.Handler with a semaphore-based limiter.
// Requests to the exempt paths (long-lived WebSocket upgrades) bypass it.
func withConcurrencyLimit(n int, next http.Handler, exempt ...string) http.Handler {
	if n <= 0 {
		return next
	}
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}
	sem := make(chan struct{}, n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := skip[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}
		select {
		case sem <- struct{}{}: // acquire
			defer func() { <-sem }() // release
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
			// client canceled or server is shutting down
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
}
