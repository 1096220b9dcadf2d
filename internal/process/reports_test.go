package process

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/chemsweep/internal/chemistry"
)

func intPtr(v int) *int { return &v }

func TestKinetics(t *testing.T) {
	a := testAdvisor(t)

	r, err := a.Kinetics(KineticsRequest{Temperature: 1000, InitialConcentration: 1})
	require.NoError(t, err)
	assert.Equal(t, chemistry.DefaultCompound, r.Compound)
	assert.Equal(t, chemistry.FirstOrder.String(), r.Order)
	k := chemistry.ArrheniusRate(1e7, 80000, 1000)
	assert.InDelta(t, k, r.RateConstant, 1e-9)
	assert.InDelta(t, math.Ln2/k, r.HalfLife, 1e-12)
	assert.Len(t, r.Series.X, 300)
	assert.Equal(t, 50.0, r.Series.X[len(r.Series.X)-1])
	assert.Equal(t, LevelWarning, r.Insight.Level)

	r, err = a.Kinetics(KineticsRequest{
		Compound:             "Generic A",
		Order:                intPtr(0),
		Temperature:          600,
		InitialConcentration: 2,
		Duration:             10,
		Points:               11,
	})
	require.NoError(t, err)
	assert.Equal(t, chemistry.ZerothOrder.String(), r.Order)
	assert.Len(t, r.Series.Y, 11)
	assert.Equal(t, 2.0, r.Series.Y[0])
}

func TestKineticsValidation(t *testing.T) {
	a := testAdvisor(t)

	tests := []struct {
		name string
		req  KineticsRequest
		want error
	}{
		{name: "unsupported order", req: KineticsRequest{Order: intPtr(3), Temperature: 500, InitialConcentration: 1}, want: ErrInvalidInput},
		{name: "zero temperature", req: KineticsRequest{InitialConcentration: 1}, want: ErrInvalidInput},
		{name: "zero concentration", req: KineticsRequest{Temperature: 500}, want: ErrInvalidInput},
		{name: "negative duration", req: KineticsRequest{Temperature: 500, InitialConcentration: 1, Duration: -1}, want: ErrInvalidInput},
		{name: "one point", req: KineticsRequest{Temperature: 500, InitialConcentration: 1, Points: 1}, want: ErrInvalidInput},
		{name: "rate constant underflows", req: KineticsRequest{Temperature: 10, InitialConcentration: 1}, want: ErrInvalidInput},
		{name: "second order underflows", req: KineticsRequest{Order: intPtr(2), Temperature: 10, InitialConcentration: 1}, want: ErrInvalidInput},
		{name: "unknown compound", req: KineticsRequest{Compound: "Unobtainium", Temperature: 500, InitialConcentration: 1}, want: chemistry.ErrUnknownCompound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Kinetics(tt.req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestFractionInsight(t *testing.T) {
	assert.Equal(t, LevelWarning, fractionInsight(0.01).Level)
	assert.Equal(t, LevelInfo, fractionInsight(0.1).Level)
	assert.Equal(t, LevelSuccess, fractionInsight(0.5).Level)
}

func TestTitration(t *testing.T) {
	a := testAdvisor(t)

	r, err := a.Titration(TitrationRequest{AcidMolarity: 1, AcidVolume: 0.05, BaseMolarity: 1, BaseVolume: 0.05})
	require.NoError(t, err)
	assert.Equal(t, 7.0, r.PH)
	assert.InDelta(t, 1e-7, r.Hydrogen, 1e-20)
	assert.True(t, r.BufferSafe)
	assert.InDelta(t, 0.05, r.EquivalenceVolume, 1e-12)
	assert.InDelta(t, 1.0, r.AnalyteConcentration, 1e-12)
	assert.InDelta(t, 100.0, r.Absorbance, 1e-9)
	assert.Len(t, r.Curve.X, 100)
	assert.InDelta(t, 0.1, r.Curve.X[99], 1e-12)
	assert.Len(t, r.AbsorbanceCurve.Y, 100)

	r, err = a.Titration(TitrationRequest{AcidMolarity: 0.1, AcidVolume: 0.025, BaseMolarity: 0.1, Points: 5})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r.PH, 1e-9)
	assert.InDelta(t, 0.1, r.Hydrogen, 1e-12)
	assert.False(t, r.BufferSafe)
	assert.Len(t, r.Curve.Y, 5)

	_, err = a.Titration(TitrationRequest{AcidMolarity: 0, AcidVolume: 0.05, BaseMolarity: 1})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = a.Titration(TitrationRequest{AcidMolarity: 1, AcidVolume: 0.05, BaseMolarity: 1, BaseVolume: -0.01})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestDescribeSubstance(t *testing.T) {
	a := testAdvisor(t)

	r, err := a.DescribeSubstance("H2O", 298)
	require.NoError(t, err)
	assert.Equal(t, chemistry.Liquid, r.Phase)
	assert.Equal(t, "H2O", r.Substance.Name)
	assert.InDelta(t, 1.5*chemistry.GasConstant*298, r.AverageKineticEnergy, 1e-9)
	assert.InDelta(t, 3.17, r.VaporPressure, 1e-9)
	assert.Equal(t, chemistry.IMFStrength(chemistry.HydrogenBonding), r.IMFStrength)

	r, err = a.DescribeSubstance("H2O", 400)
	require.NoError(t, err)
	assert.Equal(t, chemistry.Gas, r.Phase)

	_, err = a.DescribeSubstance("H2O", 0)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = a.DescribeSubstance("Unobtainium", 298)
	assert.True(t, errors.Is(err, chemistry.ErrUnknownSubstance))
}
