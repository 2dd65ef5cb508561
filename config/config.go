package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ImportCeiling is the hard upper bound on spots accepted by one layout import.
const ImportCeiling = 500

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Parking  ParkingConfig  `yaml:"parking"`
	Events   EventsConfig   `yaml:"events"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
}

// ParkingConfig holds lot defaults and layout import limits.
type ParkingConfig struct {
	DefaultLotID   string `yaml:"default_lot_id"`
	MaxImportSpots int    `yaml:"max_import_spots"`
}

// EventsConfig configures live occupancy event delivery.
type EventsConfig struct {
	WorkerPoolSize int    `yaml:"worker_pool_size"`
	QueueSize      int    `yaml:"queue_size"`
	AMQPURL        string `yaml:"amqp_url"`
	AMQPExchange   string `yaml:"amqp_exchange"`
}

// MonitorConfig configures the periodic occupancy audit.
type MonitorConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
	Lots            []string      `yaml:"lots"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the configuration from the given path, then applies overrides
// from a .env file and the process environment.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("VALET_DB_DRIVER"); ok {
		cfg.Database.Driver = v
	}
	if v, ok := os.LookupEnv("VALET_DB_DSN"); ok {
		cfg.Database.DSN = v
	}
	if v, ok := os.LookupEnv("VALET_SERVER_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		} else {
			log.Printf("Warning: ignoring invalid VALET_SERVER_PORT %q", v)
		}
	}
	if v, ok := os.LookupEnv("VALET_AMQP_URL"); ok {
		cfg.Events.AMQPURL = v
	}
	if v, ok := os.LookupEnv("VALET_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Parking.DefaultLotID == "" {
		cfg.Parking.DefaultLotID = "lot1"
	}
	if cfg.Parking.MaxImportSpots <= 0 || cfg.Parking.MaxImportSpots > ImportCeiling {
		cfg.Parking.MaxImportSpots = ImportCeiling
	}

	if cfg.Events.WorkerPoolSize <= 0 {
		log.Printf("events.worker_pool_size is not set or invalid; defaulting to 1")
		cfg.Events.WorkerPoolSize = 1
	}
	if cfg.Events.QueueSize <= 0 {
		cfg.Events.QueueSize = 64
	}
	if cfg.Events.AMQPExchange == "" {
		cfg.Events.AMQPExchange = "parking"
	}

	if cfg.Monitor.IntervalSeconds <= 0 {
		cfg.Monitor.IntervalSeconds = 300
	}
	cfg.Monitor.Interval = time.Duration(cfg.Monitor.IntervalSeconds) * time.Second
	if len(cfg.Monitor.Lots) == 0 {
		cfg.Monitor.Lots = []string{cfg.Parking.DefaultLotID}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
