package process

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/copyleftdev/chemsweep/internal/chemistry"
	"github.com/copyleftdev/chemsweep/internal/optimization"
)

// NoFeasibleMessage is shown when a constrained sweep finds nothing in range.
const NoFeasibleMessage = "no safe/spontaneous condition found in range"

// Conditions are the operating inputs of the process dashboard.
type Conditions struct {
	Temperature          float64 `json:"temperature"`           // K
	Pressure             float64 `json:"pressure"`              // atm
	InitialConcentration float64 `json:"initial_concentration"` // mol/L
	DeltaH               float64 `json:"delta_h"`               // J/mol
	DeltaS               float64 `json:"delta_s"`               // J/(mol·K)
	Hydrogen             float64 `json:"hydrogen"`              // mol/L
	Compound             string  `json:"compound,omitempty"`
	BoilingPoint         float64 `json:"boiling_point,omitempty"`
}

// DefaultConditions are the initial slider positions.
func DefaultConditions() Conditions {
	return Conditions{
		Temperature:          500,
		Pressure:             10,
		InitialConcentration: 1,
		DeltaH:               -80000,
		DeltaS:               -150,
		Hydrogen:             1e-7,
		Compound:             chemistry.DefaultCompound,
	}
}

func (c Conditions) validate() error {
	switch {
	case !isFinite(c.Temperature) || c.Temperature <= 0:
		return invalidInput("temperature must be positive, got %g", c.Temperature)
	case !isFinite(c.InitialConcentration) || c.InitialConcentration <= 0:
		return invalidInput("initial concentration must be positive, got %g", c.InitialConcentration)
	case !isFinite(c.Hydrogen) || c.Hydrogen <= 0:
		return invalidInput("hydrogen ion concentration must be positive, got %g", c.Hydrogen)
	case !isFinite(c.Pressure) || c.Pressure < 0:
		return invalidInput("pressure cannot be negative, got %g", c.Pressure)
	case !isFinite(c.DeltaH) || !isFinite(c.DeltaS):
		return invalidInput("delta_h and delta_s must be finite")
	case !isFinite(c.BoilingPoint) || c.BoilingPoint < 0:
		return invalidInput("boiling point cannot be negative, got %g", c.BoilingPoint)
	}
	return nil
}

// Insight levels.
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Insight is a short trade-off remark for the operator.
type Insight struct {
	Topic   string `json:"topic"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// OptimumReport wraps a sweep so infeasibility is visible instead of defaulted.
type OptimumReport struct {
	Outcome         *SweepOutcome `json:"outcome,omitempty"`
	NoFeasiblePoint bool          `json:"no_feasible_point"`
	Message         string        `json:"message,omitempty"`
}

// Dashboard is everything recomputed when a condition changes.
type Dashboard struct {
	Conditions    Conditions       `json:"conditions"`
	RateConstant  float64          `json:"rate_constant"`
	Concentration chemistry.Series `json:"concentration"`
	DeltaG        float64          `json:"delta_g"`
	Spontaneous   bool             `json:"spontaneous"`
	K             *float64         `json:"equilibrium_constant"` // nil when K overflows
	YieldPercent  float64          `json:"yield_percent"`
	EnergyCost    float64          `json:"energy_cost"`
	PH            float64          `json:"ph"`
	BufferSafe    bool             `json:"buffer_safe"`
	Phase         chemistry.Phase  `json:"phase"`
	Optimum       OptimumReport    `json:"optimum"`
	EnergyOptimum OptimumReport    `json:"energy_optimum"`
	SafePH        OptimumReport    `json:"safe_ph"`
	Insights      []Insight        `json:"insights"`
}

// Concentration curve sampling used by the dashboard.
const (
	seriesDuration = 50.0
	seriesPoints   = 100
)

// Evaluate recomputes the dashboard for c. Zero values of Compound and
// BoilingPoint fall back to the defaults.
func (a *Advisor) Evaluate(ctx context.Context, c Conditions) (*Dashboard, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.Compound == "" {
		c.Compound = chemistry.DefaultCompound
	}
	if c.BoilingPoint == 0 {
		c.BoilingPoint = a.cfg.BoilingPoint
	}
	compound, err := a.catalog.Compound(c.Compound)
	if err != nil {
		return nil, err
	}
	a.metrics.ObserveEvaluation("dashboard")

	d := &Dashboard{Conditions: c}
	d.RateConstant = compound.RateAt(c.Temperature)
	d.Concentration = chemistry.ConcentrationSeries(chemistry.FirstOrder, c.InitialConcentration, d.RateConstant, seriesDuration, seriesPoints)
	d.DeltaG = chemistry.GibbsFreeEnergy(c.DeltaH, c.DeltaS, c.Temperature)
	d.Spontaneous = chemistry.Spontaneous(d.DeltaG)
	k := chemistry.EquilibriumConstant(d.DeltaG, c.Temperature)
	if isFinite(k) {
		d.K = ptr(k)
	}
	d.YieldPercent = chemistry.PercentConversion(k)
	d.EnergyCost = chemistry.EnergyCost(c.DeltaH, d.YieldPercent/100)
	d.PH = chemistry.PH(c.Hydrogen)
	d.BufferSafe = a.cfg.SafeWindow.Contains(d.PH)
	d.Phase = chemistry.ProcessPhase(c.Temperature, c.BoilingPoint)

	thermo := ThermoRequest{DeltaH: c.DeltaH, DeltaS: c.DeltaS}
	if d.Optimum, err = report(a.OptimizeEquilibrium(ctx, thermo)); err != nil {
		return nil, err
	}
	if d.EnergyOptimum, err = report(a.OptimizeEnergy(ctx, thermo)); err != nil {
		return nil, err
	}
	if d.SafePH, err = report(a.OptimizePH(ctx, PHRequest{})); err != nil {
		return nil, err
	}

	d.Insights = insights(d)
	return d, nil
}

// report folds ErrNoFeasiblePoint into the report and passes other errors on.
func report(out *SweepOutcome, err error) (OptimumReport, error) {
	if errors.Is(err, optimization.ErrNoFeasiblePoint) {
		return OptimumReport{NoFeasiblePoint: true, Message: NoFeasibleMessage}, nil
	}
	if err != nil {
		return OptimumReport{}, err
	}
	return OptimumReport{Outcome: out}, nil
}

func insights(d *Dashboard) []Insight {
	var out []Insight

	switch {
	case d.RateConstant > 1e3 && d.EnergyCost > 60000:
		out = append(out, Insight{"speed_vs_energy", LevelWarning, "Fast reaction achieved at the cost of high energy consumption."})
	case d.RateConstant < 1e2:
		out = append(out, Insight{"speed_vs_energy", LevelInfo, "Energy-efficient conditions slow down reaction rates."})
	default:
		out = append(out, Insight{"speed_vs_energy", LevelSuccess, "Balanced reaction speed and energy usage."})
	}

	switch {
	case d.YieldPercent > 80 && !d.BufferSafe:
		out = append(out, Insight{"yield_vs_safety", LevelError, "High yield comes with pH instability and safety concerns."})
	case d.BufferSafe:
		out = append(out, Insight{"yield_vs_safety", LevelSuccess, "pH is within safe operating limits."})
	default:
		out = append(out, Insight{"yield_vs_safety", LevelWarning, "Reduced yield improves process safety."})
	}

	if opt := d.Optimum.Outcome; opt != nil {
		t := d.Conditions.Temperature
		switch {
		case math.Abs(t-opt.BestX) < 30:
			out = append(out, Insight{"optimal_vs_practical", LevelSuccess, "User-selected conditions closely match the theoretical optimum."})
		case t < opt.BestX:
			out = append(out, Insight{"optimal_vs_practical", LevelInfo, "User selected safer, lower-energy operating conditions."})
		default:
			out = append(out, Insight{"optimal_vs_practical", LevelWarning, "User selected aggressive conditions that may strain equipment."})
		}
	} else {
		out = append(out, Insight{"optimal_vs_practical", LevelWarning, NoFeasibleMessage})
	}

	if d.EnergyOptimum.NoFeasiblePoint {
		out = append(out, Insight{"spontaneity", LevelWarning, spontaneityMessage(d.Conditions.DeltaH, d.Conditions.DeltaS)})
	}
	return out
}

// spontaneityMessage explains an infeasible energy sweep using the temperature
// at which ΔG changes sign, when there is a physical one.
func spontaneityMessage(deltaH, deltaS float64) string {
	const base = "The reaction is not spontaneous anywhere in the temperature range."
	tc, ok := chemistry.CrossoverTemperature(deltaH, deltaS)
	if !ok || tc <= 0 {
		return base
	}
	if deltaS > 0 {
		return fmt.Sprintf("%s ΔG turns negative above %.0f K.", base, tc)
	}
	return fmt.Sprintf("%s ΔG turns negative below %.0f K.", base, tc)
}
