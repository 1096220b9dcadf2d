package chemistry

import "math"

// GibbsFreeEnergy returns ΔG = ΔH − TΔS. ΔH in J/mol, ΔS in J/(mol·K).
func GibbsFreeEnergy(deltaH, deltaS, temperature float64) float64 {
	return deltaH - temperature*deltaS
}

// Spontaneous reports whether ΔG < 0.
func Spontaneous(deltaG float64) bool {
	return deltaG < 0
}

// EnergyCost returns |ΔH| scaled by the fraction converted.
func EnergyCost(deltaH, conversion float64) float64 {
	return math.Abs(deltaH) * conversion
}

// CrossoverTemperature returns the temperature at which ΔG changes sign
// (ΔH/ΔS), and false when ΔS is zero.
func CrossoverTemperature(deltaH, deltaS float64) (float64, bool) {
	if deltaS == 0 {
		return 0, false
	}
	return deltaH / deltaS, true
}
