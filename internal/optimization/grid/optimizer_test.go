package grid

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/chemsweep/internal/optimization"
)

const gasConstant = 8.314

func arrhenius(a, ea float64) optimization.Objective {
	return func(t float64) (float64, error) {
		return a * math.Exp(-ea/(gasConstant*t)), nil
	}
}

func TestOptimizeConstantObjectiveReturnsLo(t *testing.T) {
	intervals := []optimization.Interval{
		{Lo: 300, Hi: 900, Step: 10},
		{Lo: -1, Hi: 1, Step: 0.25},
		{Lo: 1e-9, Hi: 1e-2, Step: 1e-4},
		{Lo: 0, Hi: 1, Points: 7},
	}
	for _, mode := range []optimization.Mode{optimization.Maximize, optimization.Minimize} {
		for _, iv := range intervals {
			res, err := NewSweepOptimizer().Optimize(context.Background(), optimization.SweepConfig{
				Objective: func(float64) (float64, error) { return 42, nil },
				Interval:  iv,
				Mode:      mode,
			})
			require.NoError(t, err)
			assert.Equal(t, iv.Lo, res.Best.X, "mode=%v interval=%+v", mode, iv)
			assert.Equal(t, 42.0, res.Best.Score)
			assert.Equal(t, iv.Len(), res.Evaluated)
		}
	}
}

func TestOptimizeResultIsOnTheGrid(t *testing.T) {
	objectives := map[string]optimization.Objective{
		"parabola": func(x float64) (float64, error) { return -(x - 3.14) * (x - 3.14), nil },
		"sine":     func(x float64) (float64, error) { return math.Sin(x), nil },
		"cubic":    func(x float64) (float64, error) { return x*x*x - 4*x, nil },
	}
	intervals := []optimization.Interval{
		{Lo: 0, Hi: 10, Step: 0.7},
		{Lo: -5, Hi: 5, Step: 0.3},
		{Lo: 1, Hi: 2, Step: 0.01},
	}

	for name, obj := range objectives {
		for _, iv := range intervals {
			for _, mode := range []optimization.Mode{optimization.Maximize, optimization.Minimize} {
				res, err := NewSweepOptimizer().Optimize(context.Background(), optimization.SweepConfig{
					Objective: obj, Interval: iv, Mode: mode,
				})
				require.NoError(t, err)

				x := res.Best.X
				assert.GreaterOrEqual(t, x, iv.Lo, name)
				assert.LessOrEqual(t, x, iv.Hi, name)
				k := (x - iv.Lo) / iv.Step
				assert.InDelta(t, math.Round(k), k, 1e-9, "%s: %v is not lo + k*step", name, x)

				want, _ := obj(x)
				assert.Equal(t, want, res.Best.Score, "score must be the objective at best x")
			}
		}
	}
}

func TestOptimizeMonotonicObjectives(t *testing.T) {
	iv := optimization.Interval{Lo: 0, Hi: 10, Step: 0.5}

	res, err := NewSweepOptimizer().Optimize(context.Background(), optimization.SweepConfig{
		Objective: func(x float64) (float64, error) { return 2*x + 1, nil },
		Interval:  iv,
		Mode:      optimization.Maximize,
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Best.X)

	res, err = NewSweepOptimizer().Optimize(context.Background(), optimization.SweepConfig{
		Objective: func(x float64) (float64, error) { return -x, nil },
		Interval:  iv,
		Mode:      optimization.Minimize,
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Best.X)
	assert.Equal(t, -10.0, res.Best.Score)
}

func TestOptimizeArrheniusRate(t *testing.T) {
	const a, ea = 1e7, 80000.0

	t.Run("half-open range", func(t *testing.T) {
		res, err := NewSweepOptimizer().Optimize(context.Background(), optimization.SweepConfig{
			Objective: arrhenius(a, ea),
			Interval:  optimization.Interval{Lo: 300, Hi: 900, Step: 10, ExcludeHi: true},
			Mode:      optimization.Maximize,
		})
		require.NoError(t, err)
		assert.Equal(t, 890.0, res.Best.X)
		assert.InEpsilon(t, a*math.Exp(-ea/(gasConstant*890)), res.Best.Score, 1e-12)
		assert.Equal(t, 60, res.Evaluated)
	})

	t.Run("closed range", func(t *testing.T) {
		x, err := Optimize(arrhenius(a, ea), 300, 900, 10, optimization.Maximize)
		require.NoError(t, err)
		assert.Equal(t, 900.0, x.X)
	})
}

func TestOptimizeTieBreaksToLowestX(t *testing.T) {
	// -2 and 2 score equally under |x|.
	res, err := NewSweepOptimizer().Optimize(context.Background(), optimization.SweepConfig{
		Objective: func(x float64) (float64, error) { return math.Abs(x), nil },
		Interval:  optimization.Interval{Lo: -2, Hi: 2, Step: 1},
		Mode:      optimization.Maximize,
	})
	require.NoError(t, err)
	assert.Equal(t, -2.0, res.Best.X)

	res, err = NewSweepOptimizer().Optimize(context.Background(), optimization.SweepConfig{
		Objective: func(x float64) (float64, error) { return math.Round(x), nil },
		Interval:  optimization.Interval{Lo: 0, Hi: 3, Step: 0.25},
		Mode:      optimization.Minimize,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Best.X)
}

func TestOptimizeFeasibility(t *testing.T) {
	pH := func(h float64) float64 { return -math.Log10(h) }
	safe := func(h float64) (bool, error) {
		p := pH(h)
		return p >= 6.5 && p <= 8.5, nil
	}

	t.Run("no feasible point", func(t *testing.T) {
		res, err := NewSweepOptimizer().Optimize(context.Background(), optimization.SweepConfig{
			Objective: func(h float64) (float64, error) { return pH(h), nil },
			Interval:  optimization.Interval{Lo: 1e-9, Hi: 1e-2, Step: 1e-4},
			Mode:      optimization.Maximize,
			Feasible:  safe,
		})
		require.Error(t, err)
		assert.Nil(t, res)
		assert.True(t, errors.Is(err, optimization.ErrNoFeasiblePoint))
	})

	t.Run("only feasible points compete", func(t *testing.T) {
		res, err := NewSweepOptimizer().Optimize(context.Background(), optimization.SweepConfig{
			Objective:     func(h float64) (float64, error) { return pH(h), nil },
			Interval:      optimization.Interval{Lo: 1e-8, Hi: 1e-6, Points: 50},
			Mode:          optimization.Maximize,
			Feasible:      safe,
			RecordHistory: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 1e-8, res.Best.X)
		assert.InDelta(t, 8.0, res.Best.Score, 1e-9)
		assert.Len(t, res.History, 50)
		assert.Equal(t, 50, res.Evaluated)
		// pH stays within the window up to [H+] = 10^-6.5.
		assert.Equal(t, 16, res.Feasible)

		res, err = NewSweepOptimizer().Optimize(context.Background(), optimization.SweepConfig{
			Objective: func(x float64) (float64, error) { return x, nil },
			Interval:  optimization.Interval{Lo: 0, Hi: 10, Step: 1},
			Mode:      optimization.Maximize,
			Feasible:  func(x float64) (bool, error) { return x <= 6.5, nil },
		})
		require.NoError(t, err)
		assert.Equal(t, 6.0, res.Best.X)
		assert.Equal(t, 7, res.Feasible)
	})
}

func TestOptimizeErrors(t *testing.T) {
	boom := errors.New("boom")
	calls := 0

	tests := []struct {
		name   string
		config optimization.SweepConfig
		kind   error
	}{
		{
			name: "invalid interval",
			config: optimization.SweepConfig{
				Objective: func(float64) (float64, error) { return 0, nil },
				Interval:  optimization.Interval{Lo: 1, Hi: 0, Step: 1},
			},
			kind: optimization.ErrInvalidInterval,
		},
		{
			name: "non-positive step",
			config: optimization.SweepConfig{
				Objective: func(float64) (float64, error) { return 0, nil },
				Interval:  optimization.Interval{Lo: 0, Hi: 1, Step: 0},
			},
			kind: optimization.ErrInvalidInterval,
		},
		{
			name: "objective failure is propagated",
			config: optimization.SweepConfig{
				Objective: func(x float64) (float64, error) {
					calls++
					if x >= 3 {
						return 0, boom
					}
					return x, nil
				},
				Interval: optimization.Interval{Lo: 0, Hi: 10, Step: 1},
			},
			kind: optimization.ErrObjectiveEvaluation,
		},
		{
			name: "predicate failure is propagated",
			config: optimization.SweepConfig{
				Objective: func(x float64) (float64, error) { return x, nil },
				Interval:  optimization.Interval{Lo: 0, Hi: 10, Step: 1},
				Feasible:  func(float64) (bool, error) { return false, boom },
			},
			kind: optimization.ErrObjectiveEvaluation,
		},
		{
			name: "NaN score",
			config: optimization.SweepConfig{
				Objective: func(x float64) (float64, error) { return math.NaN(), nil },
				Interval:  optimization.Interval{Lo: 0, Hi: 10, Step: 1},
			},
			kind: optimization.ErrObjectiveEvaluation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewSweepOptimizer().Optimize(context.Background(), tt.config)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}

	// The sweep stops at the first failing point instead of skipping it.
	assert.Equal(t, 4, calls)

	_, err := NewSweepOptimizer().Optimize(context.Background(), optimization.SweepConfig{
		Interval: optimization.Interval{Lo: 0, Hi: 1, Step: 1},
	})
	assert.Error(t, err)
}

func TestOptimizeObjectiveFailureCarriesPoint(t *testing.T) {
	_, err := Optimize(func(x float64) (float64, error) {
		if x == 2 {
			return 0, errors.New("undefined")
		}
		return x, nil
	}, 0, 5, 1, optimization.Maximize)

	e, ok := optimization.IsOptimizationError(err)
	require.True(t, ok)
	require.NotNil(t, e.X)
	assert.Equal(t, 2.0, *e.X)
	assert.Contains(t, err.Error(), "undefined")
}

func TestOptimizeIsIdempotent(t *testing.T) {
	cfg := optimization.SweepConfig{
		Objective:     func(x float64) (float64, error) { return math.Sin(x) * math.Exp(-x/10), nil },
		Interval:      optimization.Interval{Lo: 0, Hi: 20, Step: 0.1},
		Mode:          optimization.Maximize,
		RecordHistory: true,
	}
	opt := NewSweepOptimizer()

	first, err := opt.Optimize(context.Background(), cfg)
	require.NoError(t, err)
	second, err := opt.Optimize(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOptimizeHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSweepOptimizer().Optimize(ctx, optimization.SweepConfig{
		Objective: func(x float64) (float64, error) { return x, nil },
		Interval:  optimization.Interval{Lo: 0, Hi: 1, Step: 0.1},
	})
	assert.ErrorIs(t, err, context.Canceled)
}
