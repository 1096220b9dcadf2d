package chemistry

import "math"

// EquilibriumConstant returns K = exp(−ΔG/(R·T)).
func EquilibriumConstant(deltaG, temperature float64) float64 {
	return math.Exp(-deltaG / (GasConstant * temperature))
}

// YieldFraction returns K/(1+K), the equilibrium conversion of A ⇌ B.
// It stays finite for very large K.
func YieldFraction(k float64) float64 {
	if math.IsInf(k, 1) {
		return 1
	}
	return k / (1 + k)
}

// PercentConversion returns the yield fraction as a percentage.
func PercentConversion(k float64) float64 {
	return YieldFraction(k) * 100
}

// EquilibriumYield chains ΔG, K and K/(1+K) at temperature T.
func EquilibriumYield(deltaH, deltaS, temperature float64) float64 {
	dg := GibbsFreeEnergy(deltaH, deltaS, temperature)
	return YieldFraction(EquilibriumConstant(dg, temperature))
}
