package ecs

import (
	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// SchedulerConfig holds the scheduler settings a host usually wants to control from the
// environment.
type SchedulerConfig struct {
	// Maximum systems of one batch running at once. 0 means GOMAXPROCS.
	Workers int `env:"ECS_WORKERS" envDefault:"0"`

	// Stop a tick after the first batch with a failed system.
	FailFast bool `env:"ECS_FAIL_FAST" envDefault:"false"`

	// Minimum zerolog level for scheduler logs.
	LogLevel string `env:"ECS_LOG_LEVEL" envDefault:"info"`

	// Optional statsd address (host:port). Empty disables metrics.
	StatsdAddress string `env:"ECS_STATSD_ADDRESS"`

	// Tags attached to every metric.
	StatsdTags []string `env:"ECS_STATSD_TAGS" envSeparator:","`
}

// LoadSchedulerConfig loads the scheduler configuration from environment variables.
func LoadSchedulerConfig() (SchedulerConfig, error) {
	cfg := SchedulerConfig{}

	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse scheduler config")
	}

	if err := cfg.validate(); err != nil {
		return cfg, eris.Wrap(err, "failed to validate scheduler config")
	}

	return cfg, nil
}

// validate performs validation on the loaded configuration.
func (cfg *SchedulerConfig) validate() error {
	if cfg.Workers < 0 {
		return eris.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return eris.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (cfg *SchedulerConfig) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// Options converts the configuration into scheduler options. The logger is filtered to the
// configured level.
func (cfg *SchedulerConfig) Options(logger zerolog.Logger) []SchedulerOption {
	return []SchedulerOption{
		WithWorkers(cfg.Workers),
		WithFailFast(cfg.FailFast),
		WithLogger(logger.Level(cfg.Level())),
	}
}
