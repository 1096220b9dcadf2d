package optimization

import (
	"context"
	"fmt"
	"strings"
)

// Optimizer defines the interface for univariate search algorithms
type Optimizer interface {
	// Optimize runs the search described by config
	Optimize(ctx context.Context, config SweepConfig) (*Result, error)
}

// Mode selects the comparison direction of a search
type Mode int

const (
	// Maximize selects the highest score
	Maximize Mode = iota
	// Minimize selects the lowest score
	Minimize
)

// String returns the lower-case name of the mode
func (m Mode) String() string {
	switch m {
	case Maximize:
		return "maximize"
	case Minimize:
		return "minimize"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Better reports whether candidate strictly beats incumbent under the mode.
// Equal scores never win, which keeps the first occurrence on ties.
func (m Mode) Better(candidate, incumbent float64) bool {
	if m == Minimize {
		return candidate < incumbent
	}
	return candidate > incumbent
}

// ParseMode converts "max"/"maximize"/"min"/"minimize" to a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "max", "maximize", "":
		return Maximize, nil
	case "min", "minimize":
		return Minimize, nil
	default:
		return Maximize, NewErrorf("unknown mode %q", s).WithOperation("parse_mode")
	}
}

// MarshalText implements encoding.TextMarshaler
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Interval describes the closed (or half-open) search range and its discretization.
// Exactly one of Step or Points must be set.
type Interval struct {
	// Lo is the first candidate
	Lo float64 `json:"lo"`
	// Hi is the upper bound of the range
	Hi float64 `json:"hi"`
	// Step is the grid spacing; points are Lo + k*Step
	Step float64 `json:"step,omitempty"`
	// Points is the number of evenly spaced candidates from Lo to Hi inclusive
	Points int `json:"points,omitempty"`
	// ExcludeHi drops candidates equal to Hi, like range(lo, hi, step)
	ExcludeHi bool `json:"exclude_hi,omitempty"`
}

// Objective maps one input to a score
type Objective func(x float64) (float64, error)

// Predicate reports whether x may be selected as the optimum
type Predicate func(x float64) (bool, error)

// SweepConfig contains everything a single search needs
type SweepConfig struct {
	// Objective function to evaluate at every grid point
	Objective Objective

	// Interval to discretize
	Interval Interval

	// Mode selects maximization or minimization
	Mode Mode

	// Feasible filters candidates; nil accepts every point
	Feasible Predicate

	// RecordHistory keeps every evaluation in the result
	RecordHistory bool
}

// Solution represents a point of the search space with its score
type Solution struct {
	X     float64 `json:"x"`
	Score float64 `json:"score"`
}

// Evaluation represents a single evaluation of the objective function
type Evaluation struct {
	Index    int     `json:"index"`
	X        float64 `json:"x"`
	Score    float64 `json:"score"`
	Feasible bool    `json:"feasible"`
}

// Result contains the outcome of a search
type Result struct {
	Best      Solution     `json:"best"`
	Mode      Mode         `json:"mode"`
	Evaluated int          `json:"evaluated"`
	Feasible  int          `json:"feasible"`
	History   []Evaluation `json:"history,omitempty"`
}
