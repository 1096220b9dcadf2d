package chemistry

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Beer–Lambert constants used for absorbance readouts.
const (
	MolarAbsorptivity = 100.0 // L/(mol·cm)
	PathLength        = 1.0   // cm
)

// Water autoionization at 298 K.
const waterIonProduct = 1e-14

// SafeWindow is an inclusive pH range considered safe to operate in.
type SafeWindow struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultSafeWindow is the 6.5–8.5 buffer window.
var DefaultSafeWindow = SafeWindow{Min: 6.5, Max: 8.5}

// Contains reports whether pH lies within the window.
func (w SafeWindow) Contains(pH float64) bool {
	return w.Min <= pH && pH <= w.Max
}

// Midpoint returns the centre of the window.
func (w SafeWindow) Midpoint() float64 {
	return (w.Min + w.Max) / 2
}

// PH returns −log10([H+]).
func PH(hydrogen float64) float64 {
	return -math.Log10(hydrogen)
}

// HydrogenConcentration inverts PH.
func HydrogenConcentration(pH float64) float64 {
	return math.Pow(10, -pH)
}

// Absorbance returns A = ε·b·c.
func Absorbance(concentration float64) float64 {
	return MolarAbsorptivity * PathLength * concentration
}

// Titration describes a strong monoprotic acid analyte titrated with a strong base.
type Titration struct {
	AcidMolarity float64 `json:"acid_molarity"`
	AcidVolume   float64 `json:"acid_volume"`
	BaseMolarity float64 `json:"base_molarity"`
}

// EquivalenceVolume returns the titrant volume at which moles base equal moles acid.
func (t Titration) EquivalenceVolume() float64 {
	return t.AcidMolarity * t.AcidVolume / t.BaseMolarity
}

// AnalyteConcentration recovers the acid molarity from the equivalence point (M1V1 = M2V2).
func (t Titration) AnalyteConcentration() float64 {
	return t.BaseMolarity * t.EquivalenceVolume() / t.AcidVolume
}

// PHAt returns the pH after baseVolume litres of titrant have been added.
func (t Titration) PHAt(baseVolume float64) float64 {
	acid := t.AcidMolarity * t.AcidVolume
	base := t.BaseMolarity * baseVolume
	total := t.AcidVolume + baseVolume
	excess := acid - base

	// Within rounding of equivalence the solution is neutral water.
	if math.Abs(excess) <= 1e-12*math.Max(acid, base) {
		return 7
	}
	if excess > 0 {
		return PH(excess / total)
	}
	hydroxide := -excess / total
	return PH(waterIonProduct / hydroxide)
}

// Curve samples pH against titrant volume on n points in [0, maxBaseVolume].
func (t Titration) Curve(maxBaseVolume float64, n int) Series {
	if n < 2 {
		n = 2
	}
	vs := floats.Span(make([]float64, n), 0, maxBaseVolume)
	ps := make([]float64, n)
	for i, v := range vs {
		ps[i] = t.PHAt(v)
	}
	return Series{X: vs, Y: ps}
}

// AbsorbanceCurve samples A = εbc for n concentrations in [0, maxConcentration].
func AbsorbanceCurve(maxConcentration float64, n int) Series {
	if n < 2 {
		n = 2
	}
	cs := floats.Span(make([]float64, n), 0, maxConcentration)
	as := make([]float64, n)
	for i, c := range cs {
		as[i] = Absorbance(c)
	}
	return Series{X: cs, Y: as}
}
