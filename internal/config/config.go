package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Log       LogConfig
	Economics EconomicsConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
// In production, set DB_SSLMODE to "require" or "verify-full".
type DBConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        int    `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name        string `envconfig:"DB_NAME" default:"campaign_db"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"` // Use "require" in production
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// URL returns the plain PostgreSQL connection URL, without pool parameters.
// Used by the migration runner, whose driver rejects pgx pool options.
func (c DBConfig) URL() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, sslMode)
}

// DSN returns the pgx connection string, including pool sizing when set.
func (c DBConfig) DSN() string {
	dsn := c.URL()
	if c.MaxConns > 0 {
		dsn += fmt.Sprintf("&pool_max_conns=%d", c.MaxConns)
	}
	if c.MinConns > 0 {
		dsn += fmt.Sprintf("&pool_min_conns=%d", c.MinConns)
	}
	return dsn
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// EconomicsConfig holds the conversion between USD budgets and gems.
type EconomicsConfig struct {
	CentsPerGem int64 `envconfig:"ECON_CENTS_PER_GEM" default:"1"`
}

// SchedulerConfig controls the background sweep that expires drops and
// completes campaigns past their end date.
type SchedulerConfig struct {
	Enabled bool   `envconfig:"SCHEDULER_ENABLED" default:"true"`
	Spec    string `envconfig:"SCHEDULER_SPEC" default:"@every 1m"` // robfig/cron spec
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Economics.CentsPerGem <= 0 {
		return nil, fmt.Errorf("ECON_CENTS_PER_GEM must be positive, got %d", cfg.Economics.CentsPerGem)
	}
	return &cfg, nil
}
