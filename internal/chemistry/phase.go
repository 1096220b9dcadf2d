package chemistry

import (
	"math"
	"strings"
)

// Phase is a state of matter.
type Phase string

const (
	Solid   Phase = "Solid"
	Liquid  Phase = "Liquid"
	Gas     Phase = "Gas"
	Unknown Phase = "Unknown"
)

// ParsePhase accepts the phase names case-insensitively.
func ParsePhase(s string) (Phase, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "solid":
		return Solid, true
	case "liquid":
		return Liquid, true
	case "gas":
		return Gas, true
	}
	return Unknown, false
}

// DefaultBoilingPoint is the process stream boiling point in K.
const DefaultBoilingPoint = 350.0

// ProcessPhase is the two-state process classification: gas above the boiling point.
func ProcessPhase(temperature, boilingPoint float64) Phase {
	if temperature > boilingPoint {
		return Gas
	}
	return Liquid
}

// PredictPhase classifies temperature against a substance's melting and boiling points.
func PredictPhase(s *Substance, temperature float64) Phase {
	if s == nil {
		return Unknown
	}
	switch {
	case temperature < s.MeltingPoint:
		return Solid
	case temperature < s.BoilingPoint:
		return Liquid
	default:
		return Gas
	}
}

// IMF names used by the catalog.
const (
	LondonDispersion = "London Dispersion Forces"
	DipoleDipole     = "Dipole-Dipole"
	HydrogenBonding  = "Hydrogen Bonding"
	IonicForces      = "Ionic Forces"
)

// IMFStrength ranks intermolecular forces from 1 (dispersion) to 4 (ionic); unknown is 0.
func IMFStrength(imf string) int {
	switch imf {
	case LondonDispersion:
		return 1
	case DipoleDipole:
		return 2
	case HydrogenBonding:
		return 3
	case IonicForces:
		return 4
	default:
		return 0
	}
}

// VaporPressure approximates P = P0·e^(k(T − 298)) in kPa.
func VaporPressure(s *Substance, temperature float64) float64 {
	if s == nil {
		return 0
	}
	return s.VaporPressure298 * math.Exp(s.VaporCoefficient*(temperature-298))
}
