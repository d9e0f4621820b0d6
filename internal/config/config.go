package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure. It covers the
// resolution engine parameters, the Redis cache connection and the optional
// debug listener. Per-run options (input/output files, filter settings,
// backend selection) are command-line flags, not configuration.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// Expander contains the resolution engine parameters
	Expander struct {
		// Concurrency caps the number of simultaneous in-flight network exchanges
		Concurrency int `env:"EXPANDER_CONCURRENCY" env-default:"200" yaml:"concurrency"`
		// Timeout is the hard wall-clock deadline for one resolution attempt
		Timeout time.Duration `env:"EXPANDER_TIMEOUT" env-default:"10s" yaml:"timeout"`
		// DNSCacheTTL is how long resolved DNS answers are reused; 0 disables DNS caching
		DNSCacheTTL time.Duration `env:"EXPANDER_DNS_CACHE_TTL" env-default:"5m" yaml:"dnsCacheTTL"`
		// UserAgent is sent with every resolution request when non-empty
		UserAgent string `env:"EXPANDER_USER_AGENT" env-default:"" yaml:"userAgent"`
	} `yaml:"expander"`

	// Redis contains the connection parameters for the Redis cache backend
	Redis struct {
		// Host is the Redis server hostname or IP address
		Host string `env:"REDIS_HOST" env-default:"localhost" yaml:"host"`
		// Port is the Redis server port number
		Port int `env:"REDIS_PORT" env-default:"6379" yaml:"port"`
		// DB is the Redis logical database index
		DB int `env:"REDIS_DB" env-default:"0" yaml:"db"`
	} `yaml:"redis"`

	// Debug configures the optional metrics/pprof listener served for the
	// duration of a run
	Debug struct {
		// Addr is the address to listen on; empty disables the listener
		Addr string `env:"DEBUG_ADDR" env-default:"" yaml:"addr"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"DEBUG_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"DEBUG_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
	} `yaml:"debug"`

	// ShutdownTimeout is the maximum duration to wait for the debug listener
	// to drain during shutdown
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s" yaml:"shutdownTimeout"`
}

// Load receives the path for a yaml config file and returns a filled Config
// struct. A missing file is not an error: the tool then runs on environment
// variables and defaults alone.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from environment: %w", err)
		}

		return &cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
