package optimization

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MaxGridPoints bounds the size of a single sweep.
const MaxGridPoints = 1_000_000

// gridTolerance absorbs round-off in (hi-lo)/step, relative to one step.
const gridTolerance = 1e-9

// Validate checks the interval and returns an ErrInvalidInterval error when it
// cannot be discretized.
func (iv Interval) Validate() error {
	op := "validate_interval"
	if !isFinite(iv.Lo) || !isFinite(iv.Hi) {
		return NewKindError(ErrInvalidInterval, "invalid interval: bounds must be finite, got [%g, %g]", iv.Lo, iv.Hi).WithOperation(op)
	}
	if iv.Lo >= iv.Hi {
		return NewKindError(ErrInvalidInterval, "invalid interval: lo (%g) must be less than hi (%g)", iv.Lo, iv.Hi).WithOperation(op)
	}
	switch {
	case iv.Step != 0 && iv.Points != 0:
		return NewKindError(ErrInvalidInterval, "invalid interval: step and points are mutually exclusive").WithOperation(op)
	case iv.Points != 0:
		if iv.Points < 2 {
			return NewKindError(ErrInvalidInterval, "invalid interval: points must be at least 2, got %d", iv.Points).WithOperation(op)
		}
		if iv.Points > MaxGridPoints {
			return NewKindError(ErrInvalidInterval, "invalid interval: %d points exceeds the limit of %d", iv.Points, MaxGridPoints).WithOperation(op)
		}
	default:
		if !(iv.Step > 0) || math.IsInf(iv.Step, 1) {
			return NewKindError(ErrInvalidInterval, "invalid interval: step must be positive, got %g", iv.Step).WithOperation(op)
		}
		if (iv.Hi-iv.Lo)/iv.Step >= MaxGridPoints {
			return NewKindError(ErrInvalidInterval, "invalid interval: step %g yields more than %d points", iv.Step, MaxGridPoints).WithOperation(op)
		}
	}
	return nil
}

// Spacing returns the distance between consecutive grid points.
func (iv Interval) Spacing() float64 {
	if iv.Points != 0 {
		if iv.ExcludeHi {
			return (iv.Hi - iv.Lo) / float64(iv.Points)
		}
		return (iv.Hi - iv.Lo) / float64(iv.Points-1)
	}
	return iv.Step
}

// Len returns the number of grid points. The interval must be valid.
func (iv Interval) Len() int {
	if iv.Points != 0 {
		return iv.Points
	}
	q := (iv.Hi - iv.Lo) / iv.Step
	n := int(math.Floor(q+gridTolerance*math.Max(1, q))) + 1
	if iv.ExcludeHi && n > 1 && iv.Lo+float64(n-1)*iv.Step >= iv.Hi-gridTolerance*iv.Step {
		n--
	}
	return n
}

// Values materializes the grid in ascending order. The interval must be valid.
// Step grids are built as Lo + k*Step; point-count grids are evenly spaced
// with the last point pinned to Hi.
func (iv Interval) Values() []float64 {
	if iv.Points != 0 {
		if iv.ExcludeHi {
			xs := floats.Span(make([]float64, iv.Points+1), iv.Lo, iv.Hi)
			return xs[:iv.Points]
		}
		return floats.Span(make([]float64, iv.Points), iv.Lo, iv.Hi)
	}

	n := iv.Len()
	xs := make([]float64, n)
	for k := range xs {
		xs[k] = iv.Lo + float64(k)*iv.Step
	}
	// Round-off may push the last point a hair past Hi. Pinning it keeps every
	// grid point inside [Lo, Hi] and lets a closed grid report Hi exactly.
	if xs[n-1] > iv.Hi {
		xs[n-1] = iv.Hi
	}
	return xs
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
