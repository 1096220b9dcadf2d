// Package grid implements an exhaustive parameter sweep over a discretized interval.
package grid

import (
	"context"
	"math"

	"github.com/copyleftdev/chemsweep/internal/optimization"
)

const component = "grid"

// SweepOptimizer evaluates an objective at every point of a grid and keeps the best one.
// It holds no state between calls and is safe for concurrent use.
type SweepOptimizer struct{}

// NewSweepOptimizer creates a new grid sweep optimizer
func NewSweepOptimizer() *SweepOptimizer {
	return &SweepOptimizer{}
}

var _ optimization.Optimizer = (*SweepOptimizer)(nil)

// Optimize runs the sweep described by config.
//
// Points are visited in ascending order and a candidate replaces the incumbent
// only when it is strictly better, so ties resolve to the lowest x. The first
// objective or predicate failure aborts the sweep. If a predicate is set and
// rejects every point, the error matches optimization.ErrNoFeasiblePoint.
func (s *SweepOptimizer) Optimize(ctx context.Context, config optimization.SweepConfig) (*optimization.Result, error) {
	if config.Objective == nil {
		return nil, optimization.NewError("objective function is required").
			WithOperation("optimize").WithComponent(component)
	}
	if config.Mode != optimization.Maximize && config.Mode != optimization.Minimize {
		return nil, optimization.NewErrorf("unsupported mode %v", config.Mode).
			WithOperation("optimize").WithComponent(component)
	}
	if err := config.Interval.Validate(); err != nil {
		if e, ok := optimization.IsOptimizationError(err); ok {
			e.WithComponent(component)
		}
		return nil, err
	}

	xs := config.Interval.Values()
	result := &optimization.Result{Mode: config.Mode}
	if config.RecordHistory {
		result.History = make([]optimization.Evaluation, 0, len(xs))
	}

	found := false
	for i, x := range xs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		feasible := true
		if config.Feasible != nil {
			ok, err := config.Feasible(x)
			if err != nil {
				return nil, optimization.WrapKindError(optimization.ErrObjectiveEvaluation, err, "feasibility predicate failed").
					WithOperation("optimize").WithComponent(component).AtPoint(x)
			}
			feasible = ok
		}

		score, err := config.Objective(x)
		if err != nil {
			return nil, optimization.WrapKindError(optimization.ErrObjectiveEvaluation, err, "objective failed").
				WithOperation("optimize").WithComponent(component).AtPoint(x)
		}
		if math.IsNaN(score) {
			return nil, optimization.NewKindError(optimization.ErrObjectiveEvaluation, "objective returned NaN").
				WithOperation("optimize").WithComponent(component).AtPoint(x)
		}
		result.Evaluated++

		if config.RecordHistory {
			result.History = append(result.History, optimization.Evaluation{
				Index:    i,
				X:        x,
				Score:    score,
				Feasible: feasible,
			})
		}

		if !feasible {
			continue
		}
		result.Feasible++

		if !found || config.Mode.Better(score, result.Best.Score) {
			result.Best = optimization.Solution{X: x, Score: score}
			found = true
		}
	}

	if !found {
		return nil, optimization.NewKindError(optimization.ErrNoFeasiblePoint,
			"no feasible point: predicate rejected all %d grid points in [%g, %g]", len(xs), config.Interval.Lo, config.Interval.Hi).
			WithOperation("optimize").WithComponent(component)
	}

	return result, nil
}

// Optimize is a convenience wrapper for a one-off unconstrained sweep over
// [lo, hi] with the given step.
func Optimize(objective optimization.Objective, lo, hi, step float64, mode optimization.Mode) (optimization.Solution, error) {
	res, err := NewSweepOptimizer().Optimize(context.Background(), optimization.SweepConfig{
		Objective: objective,
		Interval:  optimization.Interval{Lo: lo, Hi: hi, Step: step},
		Mode:      mode,
	})
	if err != nil {
		return optimization.Solution{}, err
	}
	return res.Best, nil
}
