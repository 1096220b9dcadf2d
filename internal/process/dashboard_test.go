package process

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/chemsweep/internal/chemistry"
)

func insightByTopic(d *Dashboard, topic string) (Insight, bool) {
	for _, in := range d.Insights {
		if in.Topic == topic {
			return in, true
		}
	}
	return Insight{}, false
}

func TestEvaluateDefaults(t *testing.T) {
	a := testAdvisor(t)

	d, err := a.Evaluate(context.Background(), DefaultConditions())
	require.NoError(t, err)

	assert.InDelta(t, chemistry.ArrheniusRate(1e7, 80000, 500), d.RateConstant, 1e-15)
	assert.Len(t, d.Concentration.X, seriesPoints)
	assert.Equal(t, 1.0, d.Concentration.Y[0])
	assert.InDelta(t, -5000, d.DeltaG, 1e-9)
	assert.True(t, d.Spontaneous)
	require.NotNil(t, d.K)
	assert.InDelta(t, 3.33, *d.K, 0.01)
	assert.InDelta(t, 76.9, d.YieldPercent, 0.1)
	assert.InDelta(t, 80000*d.YieldPercent/100, d.EnergyCost, 1e-6)
	assert.InDelta(t, 7.0, d.PH, 1e-9)
	assert.True(t, d.BufferSafe)
	assert.Equal(t, chemistry.Gas, d.Phase)
	assert.Equal(t, chemistry.DefaultBoilingPoint, d.Conditions.BoilingPoint)

	require.NotNil(t, d.Optimum.Outcome)
	assert.Equal(t, 300.0, d.Optimum.Outcome.BestX)
	require.NotNil(t, d.EnergyOptimum.Outcome)
	assert.Equal(t, 530.0, d.EnergyOptimum.Outcome.BestX)
	require.NotNil(t, d.SafePH.Outcome)
	assert.False(t, d.SafePH.NoFeasiblePoint)

	expected := map[string]string{
		"speed_vs_energy":      LevelInfo,
		"yield_vs_safety":      LevelSuccess,
		"optimal_vs_practical": LevelWarning,
	}
	require.Len(t, d.Insights, len(expected))
	for topic, level := range expected {
		in, ok := insightByTopic(d, topic)
		require.True(t, ok, topic)
		assert.Equal(t, level, in.Level, topic)
	}
}

func TestEvaluateReportsInfeasibleSweeps(t *testing.T) {
	a := testAdvisor(t)

	c := DefaultConditions()
	c.DeltaH = 50000
	c.DeltaS = -100

	d, err := a.Evaluate(context.Background(), c)
	require.NoError(t, err)
	assert.False(t, d.Spontaneous)
	assert.True(t, d.EnergyOptimum.NoFeasiblePoint)
	assert.Nil(t, d.EnergyOptimum.Outcome)
	assert.Equal(t, NoFeasibleMessage, d.EnergyOptimum.Message)
	// The equilibrium sweep has no constraint and still reports a point.
	assert.NotNil(t, d.Optimum.Outcome)

	in, ok := insightByTopic(d, "spontaneity")
	require.True(t, ok)
	assert.Equal(t, LevelWarning, in.Level)
}

func TestEvaluateEquilibriumConstantOverflow(t *testing.T) {
	a := testAdvisor(t)

	c := DefaultConditions()
	c.Temperature = 1

	d, err := a.Evaluate(context.Background(), c)
	require.NoError(t, err)
	assert.Nil(t, d.K)
	assert.Equal(t, 100.0, d.YieldPercent)
	assert.Equal(t, 0.0, d.RateConstant)

	_, err = json.Marshal(d)
	assert.NoError(t, err)
}

func TestSpontaneityMessage(t *testing.T) {
	const base = "The reaction is not spontaneous anywhere in the temperature range."

	tests := []struct {
		name   string
		deltaH float64
		deltaS float64
		want   string
	}{
		{name: "never spontaneous", deltaH: 50000, deltaS: -100, want: base},
		{name: "no entropy change", deltaH: 50000, deltaS: 0, want: base},
		{name: "spontaneous when hotter", deltaH: 100000, deltaS: 100, want: base + " ΔG turns negative above 1000 K."},
		{name: "spontaneous when colder", deltaH: -20000, deltaS: -100, want: base + " ΔG turns negative below 200 K."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, spontaneityMessage(tt.deltaH, tt.deltaS))
		})
	}

	a := testAdvisor(t)
	c := DefaultConditions()
	c.DeltaH = 100000
	c.DeltaS = 100
	d, err := a.Evaluate(context.Background(), c)
	require.NoError(t, err)
	in, ok := insightByTopic(d, "spontaneity")
	require.True(t, ok)
	assert.Contains(t, in.Message, "above 1000 K")
}

func TestEvaluateInsights(t *testing.T) {
	a := testAdvisor(t)

	tests := []struct {
		name  string
		apply func(*Conditions)
		topic string
		level string
	}{
		{
			name:  "high yield with unsafe pH",
			apply: func(c *Conditions) { c.Temperature = 300; c.Hydrogen = 1e-3 },
			topic: "yield_vs_safety",
			level: LevelError,
		},
		{
			name:  "moderate yield with unsafe pH",
			apply: func(c *Conditions) { c.Hydrogen = 1e-3 },
			topic: "yield_vs_safety",
			level: LevelWarning,
		},
		{
			name:  "close to the optimum",
			apply: func(c *Conditions) { c.Temperature = 310 },
			topic: "optimal_vs_practical",
			level: LevelSuccess,
		},
		{
			name:  "fast but costly",
			apply: func(c *Conditions) { c.Temperature = 900; c.Compound = "Generic A"; c.DeltaS = 0 },
			topic: "speed_vs_energy",
			level: LevelWarning,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConditions()
			tt.apply(&c)
			d, err := a.Evaluate(context.Background(), c)
			require.NoError(t, err)
			in, ok := insightByTopic(d, tt.topic)
			require.True(t, ok)
			assert.Equal(t, tt.level, in.Level, in.Message)
		})
	}
}

func TestEvaluateRejectsInvalidConditions(t *testing.T) {
	a := testAdvisor(t)

	tests := []struct {
		name  string
		apply func(*Conditions)
		want  error
	}{
		{name: "zero temperature", apply: func(c *Conditions) { c.Temperature = 0 }, want: ErrInvalidInput},
		{name: "negative hydrogen", apply: func(c *Conditions) { c.Hydrogen = -1 }, want: ErrInvalidInput},
		{name: "zero concentration", apply: func(c *Conditions) { c.InitialConcentration = 0 }, want: ErrInvalidInput},
		{name: "negative pressure", apply: func(c *Conditions) { c.Pressure = -1 }, want: ErrInvalidInput},
		{name: "unknown compound", apply: func(c *Conditions) { c.Compound = "Unobtainium" }, want: chemistry.ErrUnknownCompound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConditions()
			tt.apply(&c)
			_, err := a.Evaluate(context.Background(), c)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}
