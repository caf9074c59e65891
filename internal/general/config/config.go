package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"fleet-tracker/internal/domain/geo"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	DefaultTick = 5 * time.Second
)

type Config struct {
	Database struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port" validate:"min=0,max=65535"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"database"`
	} `yaml:"database"`
	RabbitMQ struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port" validate:"min=0,max=65535"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Prefetch int    `yaml:"prefetch" validate:"min=0"`
	} `yaml:"rabbitmq"`
	Services struct {
		TrackingServicePort int `yaml:"tracking_service" validate:"min=0,max=65535"`
	} `yaml:"services"`
	Simulation struct {
		Tick              time.Duration `yaml:"tick"`
		BroadcastInterval time.Duration `yaml:"broadcast_interval"`
		Seed              int64         `yaml:"seed"`
	} `yaml:"simulation"`
	WebSocket struct {
		MaxFanout      int      `yaml:"max_fanout" validate:"min=0"`
		AllowedOrigins []string `yaml:"allowed_origins"` // empty allows any origin
	} `yaml:"websocket"`
	Store struct {
		Driver string `yaml:"driver" validate:"omitempty,oneof=postgres memory"`
	} `yaml:"store"`
	JWT struct {
		Enabled   bool   `yaml:"enabled"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"jwt"`
	Log struct {
		Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	} `yaml:"log"`
	Zones struct {
		Default string `yaml:"default"`
		Boxes   []Zone `yaml:"boxes" validate:"dive"`
	} `yaml:"zones"`
}

// Zone is one bounding box entry under zones.boxes.
type Zone struct {
	ID     string  `yaml:"id" validate:"required"`
	LatMin float64 `yaml:"lat_min" validate:"gte=-90,lte=90"`
	LatMax float64 `yaml:"lat_max" validate:"gte=-90,lte=90,gtefield=LatMin"`
	LngMin float64 `yaml:"lng_min" validate:"gte=-180,lte=180"`
	LngMax float64 `yaml:"lng_max" validate:"gte=-180,lte=180,gtefield=LngMin"`
}

// LoadFromFile loads config from a YAML file to a Config struct, applies defaults, and validates required fields.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets safe defaults for some fields.
func applyDefaults(cfg *Config) {
	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}

	// RabbitMQ
	if cfg.RabbitMQ.Host == "" {
		cfg.RabbitMQ.Host = "localhost"
	}
	if cfg.RabbitMQ.Port == 0 {
		cfg.RabbitMQ.Port = 5672
	}
	if cfg.RabbitMQ.Prefetch == 0 {
		cfg.RabbitMQ.Prefetch = 8
	}

	// Services
	if cfg.Services.TrackingServicePort == 0 {
		cfg.Services.TrackingServicePort = 3002
	}

	// Simulation
	if cfg.Simulation.Tick == 0 {
		cfg.Simulation.Tick = DefaultTick
	}
	if cfg.Simulation.BroadcastInterval == 0 {
		cfg.Simulation.BroadcastInterval = cfg.Simulation.Tick
	}

	// WebSocket
	if cfg.WebSocket.MaxFanout == 0 {
		cfg.WebSocket.MaxFanout = 64
	}

	// Store
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = StoreDriverPostgres
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	// Zones
	if cfg.Zones.Default == "" {
		cfg.Zones.Default = geo.DefaultZoneID
	}
}

// validate checks cross-field requirements the struct tags cannot express.
func (c *Config) validate() error {
	var problems []string

	// DB is only needed by the postgres store
	if c.Store.Driver == StoreDriverPostgres {
		if c.Database.User == "" {
			problems = append(problems, "database.user is required")
		}
		if c.Database.Password == "" {
			problems = append(problems, "database.password is required")
		}
		if c.Database.Name == "" {
			problems = append(problems, "database.database is required")
		}
	}

	// RabbitMQ
	if c.RabbitMQ.Enabled {
		if c.RabbitMQ.User == "" {
			problems = append(problems, "rabbitmq.user is required")
		}
		if c.RabbitMQ.Password == "" {
			problems = append(problems, "rabbitmq.password is required")
		}
	}

	// Simulation
	if c.Simulation.Tick < 100*time.Millisecond {
		problems = append(problems, "simulation.tick must be at least 100ms")
	}
	if c.Simulation.BroadcastInterval < 100*time.Millisecond {
		problems = append(problems, "simulation.broadcast_interval must be at least 100ms")
	}

	// JWT
	if c.JWT.Enabled && strings.TrimSpace(c.JWT.SecretKey) == "" {
		problems = append(problems, "jwt.secret_key is required when jwt.enabled is true")
	}

	// Zones
	if _, err := c.ZoneTable(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ZoneTable merges the configured boxes over the built-in zones.
func (c *Config) ZoneTable() (*geo.ZoneTable, error) {
	overrides := make(map[string]geo.BoundingBox, len(c.Zones.Boxes))
	for _, z := range c.Zones.Boxes {
		box, err := geo.NewBoundingBox(z.LatMin, z.LatMax, z.LngMin, z.LngMax)
		if err != nil {
			return nil, fmt.Errorf("zones.boxes[%s]: %w", z.ID, err)
		}
		overrides[z.ID] = box
	}
	return geo.DefaultZones().Merge(overrides, c.Zones.Default)
}
