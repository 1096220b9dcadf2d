// Package chemistry provides the closed-form AP-Chemistry relations used by the
// process advisor, together with the read-only property catalog they draw on.
//
// Every function is pure. Inputs are expected to be physically meaningful
// (positive absolute temperature, positive concentrations); callers validate.
package chemistry

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// GasConstant is R in J/(mol·K).
const GasConstant = 8.314

// ReactionOrder is the order of a single-reactant rate law.
type ReactionOrder int

const (
	ZerothOrder ReactionOrder = 0
	FirstOrder  ReactionOrder = 1
	SecondOrder ReactionOrder = 2
)

// String returns the human readable order name.
func (o ReactionOrder) String() string {
	switch o {
	case ZerothOrder:
		return "zeroth"
	case FirstOrder:
		return "first"
	case SecondOrder:
		return "second"
	default:
		return "unknown"
	}
}

// RateLaw returns the differential rate law for the order.
func (o ReactionOrder) RateLaw() string {
	switch o {
	case ZerothOrder:
		return "rate = k"
	case FirstOrder:
		return "rate = k[A]"
	case SecondOrder:
		return "rate = k[A]^2"
	default:
		return ""
	}
}

// ArrheniusRate returns k = A·exp(−Ea/(R·T)).
func ArrheniusRate(preExponential, activationEnergy, temperature float64) float64 {
	return preExponential * math.Exp(-activationEnergy/(GasConstant*temperature))
}

// Concentration returns [A] after time t under the integrated rate law of the order:
//
//	zeroth: [A] = [A]0 − kt, never below zero
//	first:  [A] = [A]0·e^(−kt)
//	second: 1/[A] = kt + 1/[A]0
func Concentration(order ReactionOrder, initial, k, t float64) float64 {
	switch order {
	case ZerothOrder:
		return math.Max(initial-k*t, 0)
	case SecondOrder:
		return 1 / (k*t + 1/initial)
	default:
		return initial * math.Exp(-k*t)
	}
}

// HalfLife returns t½ for the order: [A]0/(2k), ln2/k or 1/(k[A]0).
func HalfLife(order ReactionOrder, initial, k float64) float64 {
	switch order {
	case ZerothOrder:
		return initial / (2 * k)
	case SecondOrder:
		return 1 / (k * initial)
	default:
		return math.Ln2 / k
	}
}

// Series is a sampled curve.
type Series struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// ConcentrationSeries samples [A](t) on n evenly spaced times in [0, tEnd].
func ConcentrationSeries(order ReactionOrder, initial, k, tEnd float64, n int) Series {
	if n < 2 {
		n = 2
	}
	ts := floats.Span(make([]float64, n), 0, tEnd)
	cs := make([]float64, n)
	for i, t := range ts {
		cs[i] = Concentration(order, initial, k, t)
	}
	return Series{X: ts, Y: cs}
}

// FractionAboveActivation returns the fraction of molecules whose molar kinetic
// energy is at least Ea at temperature T. Translational kinetic energy in three
// dimensions follows a Gamma(3/2, RT) distribution (Maxwell–Boltzmann).
func FractionAboveActivation(activationEnergy, temperature float64) float64 {
	if activationEnergy <= 0 {
		return 1
	}
	dist := distuv.Gamma{Alpha: 1.5, Beta: 1 / (GasConstant * temperature)}
	return dist.Survival(activationEnergy)
}

// AverageKineticEnergy returns (3/2)·R·T in J/mol.
func AverageKineticEnergy(temperature float64) float64 {
	return 1.5 * GasConstant * temperature
}
