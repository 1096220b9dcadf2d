package process

import (
	"context"
	"math"

	"github.com/copyleftdev/chemsweep/internal/chemistry"
	"github.com/copyleftdev/chemsweep/internal/optimization"
)

// Target names one of the sweeps the advisor offers.
type Target string

const (
	TargetRate        Target = "rate"
	TargetEnergy      Target = "energy"
	TargetEquilibrium Target = "equilibrium"
	TargetPH          Target = "ph"
	TargetPhase       Target = "phase"
)

// Targets lists every sweep target.
var Targets = []Target{TargetRate, TargetEnergy, TargetEquilibrium, TargetPH, TargetPhase}

// ParseTarget validates a target name.
func ParseTarget(s string) (Target, bool) {
	for _, t := range Targets {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// SweepOutcome is the answer to one sweep.
type SweepOutcome struct {
	Target     Target                    `json:"target"`
	Variable   string                    `json:"variable"`
	Unit       string                    `json:"unit"`
	Mode       optimization.Mode         `json:"mode"`
	BestX      float64                   `json:"best_x"`
	BestScore  float64                   `json:"best_score"`
	Evaluated  int                       `json:"evaluated"`
	Feasible   int                       `json:"feasible"`
	Resolution float64                   `json:"resolution"` // grid spacing around BestX
	History    []optimization.Evaluation `json:"history,omitempty"`

	// Derived values at the optimum, set by the sweeps they apply to.
	DeltaG *float64        `json:"delta_g,omitempty"`
	Yield  *float64        `json:"yield,omitempty"`
	PH     *float64        `json:"ph,omitempty"`
	Phase  chemistry.Phase `json:"phase,omitempty"`
}

func newOutcome(target Target, variable, unit string, iv optimization.Interval, res *optimization.Result) *SweepOutcome {
	return &SweepOutcome{
		Target:     target,
		Variable:   variable,
		Unit:       unit,
		Mode:       res.Mode,
		BestX:      res.Best.X,
		BestScore:  res.Best.Score,
		Evaluated:  res.Evaluated,
		Feasible:   res.Feasible,
		Resolution: iv.Spacing(),
		History:    res.History,
	}
}

func ptr(v float64) *float64 { return &v }

// RateRequest asks for the temperature giving the fastest reaction.
type RateRequest struct {
	Compound    string                 `json:"compound"`
	Temperature *optimization.Interval `json:"temperature,omitempty"`
	History     bool                   `json:"history,omitempty"`
}

// OptimizeRate maximizes the Arrhenius rate constant of the compound over temperature.
func (a *Advisor) OptimizeRate(ctx context.Context, req RateRequest) (*SweepOutcome, error) {
	name := req.Compound
	if name == "" {
		name = chemistry.DefaultCompound
	}
	compound, err := a.catalog.Compound(name)
	if err != nil {
		return nil, err
	}
	iv, err := a.temperatureGrid(req.Temperature)
	if err != nil {
		return nil, err
	}

	res, err := a.run(ctx, TargetRate, optimization.SweepConfig{
		Objective: func(t float64) (float64, error) {
			return compound.RateAt(t), nil
		},
		Interval:      iv,
		Mode:          optimization.Maximize,
		RecordHistory: req.History,
	})
	if err != nil {
		return nil, err
	}
	return newOutcome(TargetRate, "temperature", "K", iv, res), nil
}

// ThermoRequest carries reaction enthalpy and entropy for the energy and equilibrium sweeps.
type ThermoRequest struct {
	DeltaH      float64                `json:"delta_h"` // J/mol
	DeltaS      float64                `json:"delta_s"` // J/(mol·K)
	Temperature *optimization.Interval `json:"temperature,omitempty"`
	History     bool                   `json:"history,omitempty"`
}

func (r ThermoRequest) validate() error {
	if math.IsNaN(r.DeltaH) || math.IsInf(r.DeltaH, 0) || math.IsNaN(r.DeltaS) || math.IsInf(r.DeltaS, 0) {
		return invalidInput("delta_h and delta_s must be finite")
	}
	return nil
}

// OptimizeEnergy minimizes the energy cost |ΔH|·yield over the temperatures at
// which the reaction is spontaneous. If ΔG ≥ 0 everywhere on the grid the error
// matches optimization.ErrNoFeasiblePoint.
func (a *Advisor) OptimizeEnergy(ctx context.Context, req ThermoRequest) (*SweepOutcome, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	iv, err := a.temperatureGrid(req.Temperature)
	if err != nil {
		return nil, err
	}

	res, err := a.run(ctx, TargetEnergy, optimization.SweepConfig{
		Objective: func(t float64) (float64, error) {
			return chemistry.EnergyCost(req.DeltaH, chemistry.EquilibriumYield(req.DeltaH, req.DeltaS, t)), nil
		},
		Interval: iv,
		Mode:     optimization.Minimize,
		Feasible: func(t float64) (bool, error) {
			return chemistry.Spontaneous(chemistry.GibbsFreeEnergy(req.DeltaH, req.DeltaS, t)), nil
		},
		RecordHistory: req.History,
	})
	if err != nil {
		return nil, err
	}

	out := newOutcome(TargetEnergy, "temperature", "K", iv, res)
	out.DeltaG = ptr(chemistry.GibbsFreeEnergy(req.DeltaH, req.DeltaS, out.BestX))
	out.Yield = ptr(chemistry.EquilibriumYield(req.DeltaH, req.DeltaS, out.BestX))
	return out, nil
}

// OptimizeEquilibrium maximizes the equilibrium yield K/(1+K) over temperature.
func (a *Advisor) OptimizeEquilibrium(ctx context.Context, req ThermoRequest) (*SweepOutcome, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	iv, err := a.temperatureGrid(req.Temperature)
	if err != nil {
		return nil, err
	}

	res, err := a.run(ctx, TargetEquilibrium, optimization.SweepConfig{
		Objective: func(t float64) (float64, error) {
			return chemistry.EquilibriumYield(req.DeltaH, req.DeltaS, t), nil
		},
		Interval:      iv,
		Mode:          optimization.Maximize,
		RecordHistory: req.History,
	})
	if err != nil {
		return nil, err
	}

	out := newOutcome(TargetEquilibrium, "temperature", "K", iv, res)
	out.DeltaG = ptr(chemistry.GibbsFreeEnergy(req.DeltaH, req.DeltaS, out.BestX))
	out.Yield = ptr(out.BestScore)
	return out, nil
}

// PHRequest asks for a hydrogen ion concentration inside the safe window.
type PHRequest struct {
	Hydrogen   *optimization.Interval `json:"hydrogen,omitempty"`
	SafeWindow *chemistry.SafeWindow  `json:"safe_window,omitempty"`
	History    bool                   `json:"history,omitempty"`
}

// OptimizePH searches [H+] for the pH closest to the middle of the safe window,
// considering only concentrations whose pH lies inside it.
func (a *Advisor) OptimizePH(ctx context.Context, req PHRequest) (*SweepOutcome, error) {
	iv, err := a.hydrogenGrid(req.Hydrogen)
	if err != nil {
		return nil, err
	}
	window := a.cfg.SafeWindow
	if req.SafeWindow != nil {
		window = *req.SafeWindow
	}
	if window.Min > window.Max {
		return nil, invalidInput("safe window [%g, %g] is empty", window.Min, window.Max)
	}
	mid := window.Midpoint()

	res, err := a.run(ctx, TargetPH, optimization.SweepConfig{
		Objective: func(h float64) (float64, error) {
			return math.Abs(chemistry.PH(h) - mid), nil
		},
		Interval: iv,
		Mode:     optimization.Minimize,
		Feasible: func(h float64) (bool, error) {
			return window.Contains(chemistry.PH(h)), nil
		},
		RecordHistory: req.History,
	})
	if err != nil {
		return nil, err
	}

	out := newOutcome(TargetPH, "hydrogen_concentration", "mol/L", iv, res)
	out.PH = ptr(chemistry.PH(out.BestX))
	return out, nil
}

// PhaseRequest asks for the temperature nearest the boiling point that keeps the
// stream in the target phase.
type PhaseRequest struct {
	Target       string                 `json:"target"`
	Substance    string                 `json:"substance,omitempty"`
	BoilingPoint float64                `json:"boiling_point,omitempty"`
	Temperature  *optimization.Interval `json:"temperature,omitempty"`
	History      bool                   `json:"history,omitempty"`
}

// OptimizePhase minimizes |T − bp| over the temperatures classified as the
// target phase. The boiling point comes from the named substance, the request,
// or the advisor default, in that order.
func (a *Advisor) OptimizePhase(ctx context.Context, req PhaseRequest) (*SweepOutcome, error) {
	target := chemistry.Liquid
	if req.Target != "" {
		p, ok := chemistry.ParsePhase(req.Target)
		if !ok || p == chemistry.Solid {
			return nil, invalidInput("phase target must be liquid or gas, got %q", req.Target)
		}
		target = p
	}

	bp := a.cfg.BoilingPoint
	switch {
	case req.Substance != "":
		s, err := a.catalog.Substance(req.Substance)
		if err != nil {
			return nil, err
		}
		bp = s.BoilingPoint
	case req.BoilingPoint != 0:
		if req.BoilingPoint < 0 || math.IsNaN(req.BoilingPoint) || math.IsInf(req.BoilingPoint, 0) {
			return nil, invalidInput("boiling point must be positive, got %g", req.BoilingPoint)
		}
		bp = req.BoilingPoint
	}

	iv, err := a.temperatureGrid(req.Temperature)
	if err != nil {
		return nil, err
	}

	res, err := a.run(ctx, TargetPhase, optimization.SweepConfig{
		Objective: func(t float64) (float64, error) {
			return math.Abs(t - bp), nil
		},
		Interval: iv,
		Mode:     optimization.Minimize,
		Feasible: func(t float64) (bool, error) {
			return chemistry.ProcessPhase(t, bp) == target, nil
		},
		RecordHistory: req.History,
	})
	if err != nil {
		return nil, err
	}

	out := newOutcome(TargetPhase, "temperature", "K", iv, res)
	out.Phase = target
	return out, nil
}
