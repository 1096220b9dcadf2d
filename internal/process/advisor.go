// Package process turns operating conditions into the figures a process
// dashboard shows, and answers "which condition is best" questions by running
// the shared grid sweep with domain objectives.
package process

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/copyleftdev/chemsweep/internal/chemistry"
	"github.com/copyleftdev/chemsweep/internal/metrics"
	"github.com/copyleftdev/chemsweep/internal/optimization"
	"github.com/copyleftdev/chemsweep/internal/optimization/grid"
)

// ErrInvalidInput is returned when request values are outside their physical domain.
var ErrInvalidInput = errors.New("invalid input")

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Logger is the subset of the service logger the advisor writes to.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...map[string]interface{}) {}

// Config holds the default search grids and thresholds.
type Config struct {
	// Temperature grid in K for the rate, energy, equilibrium and phase sweeps.
	Temperature optimization.Interval
	// Hydrogen grid in mol/L for the pH sweep.
	Hydrogen optimization.Interval
	// SafeWindow is the acceptable pH range.
	SafeWindow chemistry.SafeWindow
	// BoilingPoint of the process stream in K.
	BoilingPoint float64
}

// DefaultConfig mirrors the classic explorer: T in [300, 900) every 10 K and
// 50 [H+] values between 1e-8 and 1e-6 mol/L.
func DefaultConfig() Config {
	return Config{
		Temperature:  optimization.Interval{Lo: 300, Hi: 900, Step: 10, ExcludeHi: true},
		Hydrogen:     optimization.Interval{Lo: 1e-8, Hi: 1e-6, Points: 50},
		SafeWindow:   chemistry.DefaultSafeWindow,
		BoilingPoint: chemistry.DefaultBoilingPoint,
	}
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithOptimizer replaces the grid sweep optimizer.
func WithOptimizer(o optimization.Optimizer) Option {
	return func(a *Advisor) { a.optimizer = o }
}

// WithMetrics records sweeps and evaluations.
func WithMetrics(r *metrics.Recorder) Option {
	return func(a *Advisor) { a.metrics = r }
}

// WithLogger sets the debug logger.
func WithLogger(l Logger) Option {
	return func(a *Advisor) {
		if l != nil {
			a.logger = l
		}
	}
}

// Advisor evaluates operating conditions against a shared, read-only catalog.
// It keeps no per-request state and may be used from many goroutines.
type Advisor struct {
	catalog   *chemistry.Catalog
	cfg       Config
	optimizer optimization.Optimizer
	metrics   *metrics.Recorder
	logger    Logger
}

// NewAdvisor creates an advisor over catalog.
func NewAdvisor(catalog *chemistry.Catalog, cfg Config, opts ...Option) (*Advisor, error) {
	if catalog == nil {
		return nil, errors.New("process: catalog is required")
	}
	if err := cfg.Temperature.Validate(); err != nil {
		return nil, fmt.Errorf("process: temperature grid: %w", err)
	}
	if cfg.Temperature.Lo <= 0 {
		return nil, fmt.Errorf("process: temperature grid must start above 0 K, got %g", cfg.Temperature.Lo)
	}
	if err := cfg.Hydrogen.Validate(); err != nil {
		return nil, fmt.Errorf("process: hydrogen grid: %w", err)
	}
	if cfg.Hydrogen.Lo <= 0 {
		return nil, fmt.Errorf("process: hydrogen grid must start above 0 mol/L, got %g", cfg.Hydrogen.Lo)
	}
	if cfg.SafeWindow.Min > cfg.SafeWindow.Max {
		return nil, fmt.Errorf("process: safe pH window [%g, %g] is empty", cfg.SafeWindow.Min, cfg.SafeWindow.Max)
	}
	if cfg.BoilingPoint <= 0 {
		return nil, fmt.Errorf("process: boiling point must be positive, got %g", cfg.BoilingPoint)
	}

	a := &Advisor{
		catalog:   catalog,
		cfg:       cfg,
		optimizer: grid.NewSweepOptimizer(),
		logger:    nopLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Catalog returns the shared catalog.
func (a *Advisor) Catalog() *chemistry.Catalog {
	return a.catalog
}

// Config returns the advisor defaults.
func (a *Advisor) Config() Config {
	return a.cfg
}

// run executes one sweep and records it.
func (a *Advisor) run(ctx context.Context, target Target, cfg optimization.SweepConfig) (*optimization.Result, error) {
	start := time.Now()
	res, err := a.optimizer.Optimize(ctx, cfg)
	elapsed := time.Since(start)

	a.metrics.ObserveSweep(string(target), res, elapsed, err)
	fields := map[string]interface{}{
		"target":  string(target),
		"mode":    cfg.Mode.String(),
		"lo":      cfg.Interval.Lo,
		"hi":      cfg.Interval.Hi,
		"outcome": metrics.Outcome(err),
		"elapsed": elapsed.String(),
	}
	if res != nil {
		fields["best_x"] = res.Best.X
		fields["best_score"] = res.Best.Score
	}
	a.logger.Debug("Sweep finished", fields)

	if err != nil {
		return nil, fmt.Errorf("%s sweep: %w", target, err)
	}
	return res, nil
}

// temperatureGrid picks the override or the default and checks it is physical.
func (a *Advisor) temperatureGrid(override *optimization.Interval) (optimization.Interval, error) {
	iv := a.cfg.Temperature
	if override != nil {
		iv = *override
	}
	if iv.Lo <= 0 {
		return iv, invalidInput("temperature grid must start above 0 K, got %g", iv.Lo)
	}
	return iv, nil
}

func (a *Advisor) hydrogenGrid(override *optimization.Interval) (optimization.Interval, error) {
	iv := a.cfg.Hydrogen
	if override != nil {
		iv = *override
	}
	if iv.Lo <= 0 {
		return iv, invalidInput("hydrogen ion grid must start above 0 mol/L, got %g", iv.Lo)
	}
	return iv, nil
}
