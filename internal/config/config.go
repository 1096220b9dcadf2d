// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/copyleftdev/chemsweep/internal/chemistry"
	"github.com/copyleftdev/chemsweep/internal/logging"
	"github.com/copyleftdev/chemsweep/internal/optimization"
	"github.com/copyleftdev/chemsweep/internal/process"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"10s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Catalog struct {
		// Path to a YAML catalog; empty uses the embedded one.
		Path string `env:"CATALOG_PATH"`
	}
	Sweep struct {
		TemperatureMin  float64 `env:"SWEEP_T_MIN" envDefault:"300"`
		TemperatureMax  float64 `env:"SWEEP_T_MAX" envDefault:"900"`
		TemperatureStep float64 `env:"SWEEP_T_STEP" envDefault:"10"`
		// Include SWEEP_T_MAX itself in the default grid.
		TemperatureInclusive bool    `env:"SWEEP_T_INCLUSIVE" envDefault:"false"`
		HydrogenMin          float64 `env:"SWEEP_H_MIN" envDefault:"1e-8"`
		HydrogenMax          float64 `env:"SWEEP_H_MAX" envDefault:"1e-6"`
		HydrogenPoints       int     `env:"SWEEP_H_POINTS" envDefault:"50"`
		SafePHMin            float64 `env:"PH_SAFE_MIN" envDefault:"6.5"`
		SafePHMax            float64 `env:"PH_SAFE_MAX" envDefault:"8.5"`
		BoilingPoint         float64 `env:"BOILING_POINT" envDefault:"350"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Logging.Level == "" {
		if cfg.Environment == "development" {
			cfg.Logging.Level = "debug"
		} else {
			cfg.Logging.Level = "info"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that env tags cannot express.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("HTTP_REQUEST_TIMEOUT must be positive, got %s", c.HTTP.RequestTimeout)
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive, got %s", c.HTTP.ShutdownTimeout)
	}
	switch c.Logging.Format {
	case logging.FormatJSON, logging.FormatConsole, "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}

	// NewAdvisor repeats these checks; failing here names the variable.
	pc := c.ProcessConfig()
	if err := pc.Temperature.Validate(); err != nil {
		return fmt.Errorf("SWEEP_T_*: %w", err)
	}
	if pc.Temperature.Lo <= 0 {
		return fmt.Errorf("SWEEP_T_MIN must be above 0 K, got %g", pc.Temperature.Lo)
	}
	if err := pc.Hydrogen.Validate(); err != nil {
		return fmt.Errorf("SWEEP_H_*: %w", err)
	}
	if pc.Hydrogen.Lo <= 0 {
		return fmt.Errorf("SWEEP_H_MIN must be positive, got %g", pc.Hydrogen.Lo)
	}
	if pc.SafeWindow.Min > pc.SafeWindow.Max {
		return fmt.Errorf("PH_SAFE_MIN (%g) exceeds PH_SAFE_MAX (%g)", pc.SafeWindow.Min, pc.SafeWindow.Max)
	}
	if pc.BoilingPoint <= 0 {
		return fmt.Errorf("BOILING_POINT must be positive, got %g", pc.BoilingPoint)
	}
	return nil
}

// ProcessConfig returns the advisor defaults described by the environment.
func (c *Config) ProcessConfig() process.Config {
	return process.Config{
		Temperature: optimization.Interval{
			Lo:        c.Sweep.TemperatureMin,
			Hi:        c.Sweep.TemperatureMax,
			Step:      c.Sweep.TemperatureStep,
			ExcludeHi: !c.Sweep.TemperatureInclusive,
		},
		Hydrogen: optimization.Interval{
			Lo:     c.Sweep.HydrogenMin,
			Hi:     c.Sweep.HydrogenMax,
			Points: c.Sweep.HydrogenPoints,
		},
		SafeWindow:   chemistry.SafeWindow{Min: c.Sweep.SafePHMin, Max: c.Sweep.SafePHMax},
		BoilingPoint: c.Sweep.BoilingPoint,
	}
}

// LoggingConfig returns the logger settings.
func (c *Config) LoggingConfig() *logging.Config {
	return &logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
	}
}

// LoadCatalog loads the configured catalog, or the embedded one when no path is set.
func (c *Config) LoadCatalog() (*chemistry.Catalog, error) {
	if c.Catalog.Path == "" {
		return chemistry.DefaultCatalog()
	}
	return chemistry.LoadCatalog(c.Catalog.Path)
}
