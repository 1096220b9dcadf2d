package optimization

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalValidate(t *testing.T) {
	tests := []struct {
		name    string
		iv      Interval
		wantErr bool
	}{
		{name: "valid step", iv: Interval{Lo: 300, Hi: 900, Step: 10}},
		{name: "valid points", iv: Interval{Lo: 1e-8, Hi: 1e-6, Points: 50}},
		{name: "lo equals hi", iv: Interval{Lo: 5, Hi: 5, Step: 1}, wantErr: true},
		{name: "lo above hi", iv: Interval{Lo: 10, Hi: 5, Step: 1}, wantErr: true},
		{name: "zero step", iv: Interval{Lo: 0, Hi: 1}, wantErr: true},
		{name: "negative step", iv: Interval{Lo: 0, Hi: 1, Step: -0.1}, wantErr: true},
		{name: "NaN step", iv: Interval{Lo: 0, Hi: 1, Step: math.NaN()}, wantErr: true},
		{name: "infinite bound", iv: Interval{Lo: 0, Hi: math.Inf(1), Step: 1}, wantErr: true},
		{name: "NaN bound", iv: Interval{Lo: math.NaN(), Hi: 1, Step: 1}, wantErr: true},
		{name: "single point count", iv: Interval{Lo: 0, Hi: 1, Points: 1}, wantErr: true},
		{name: "step and points", iv: Interval{Lo: 0, Hi: 1, Step: 0.1, Points: 5}, wantErr: true},
		{name: "too many points", iv: Interval{Lo: 0, Hi: 1, Step: 1e-9}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.iv.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInterval), "error should match ErrInvalidInterval: %v", err)
		})
	}
}

func TestIntervalLen(t *testing.T) {
	tests := []struct {
		name string
		iv   Interval
		want int
	}{
		{name: "closed temperature grid", iv: Interval{Lo: 300, Hi: 900, Step: 10}, want: 61},
		{name: "half-open temperature grid", iv: Interval{Lo: 300, Hi: 900, Step: 10, ExcludeHi: true}, want: 60},
		{name: "step does not divide range", iv: Interval{Lo: 0, Hi: 1, Step: 0.3}, want: 4},
		{name: "half-open step does not divide range", iv: Interval{Lo: 0, Hi: 1, Step: 0.3, ExcludeHi: true}, want: 4},
		{name: "round-off in division", iv: Interval{Lo: 0, Hi: 0.3, Step: 0.1}, want: 4},
		{name: "step wider than range", iv: Interval{Lo: 0, Hi: 1, Step: 5}, want: 1},
		{name: "point count", iv: Interval{Lo: 1e-8, Hi: 1e-6, Points: 50}, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.iv.Validate())
			assert.Equal(t, tt.want, tt.iv.Len())
			assert.Len(t, tt.iv.Values(), tt.want)
		})
	}
}

func TestIntervalValues(t *testing.T) {
	t.Run("step grid is lo plus multiples of step", func(t *testing.T) {
		iv := Interval{Lo: 300, Hi: 350, Step: 10}
		assertFloat64SlicesEqual(t, iv.Values(), []float64{300, 310, 320, 330, 340, 350}, 0)
	})

	t.Run("last point is pinned to hi", func(t *testing.T) {
		// 0 + 3*0.1 rounds to 0.30000000000000004.
		iv := Interval{Lo: 0, Hi: 0.3, Step: 0.1}
		xs := iv.Values()
		require.Len(t, xs, 4)
		assert.Equal(t, 0.3, xs[3])
	})

	t.Run("point grid spans both ends", func(t *testing.T) {
		iv := Interval{Lo: 0, Hi: 1, Points: 5}
		assertFloat64SlicesEqual(t, iv.Values(), []float64{0, 0.25, 0.5, 0.75, 1}, 1e-15)
		assert.InDelta(t, 0.25, iv.Spacing(), 1e-15)
	})

	t.Run("half-open point grid drops hi", func(t *testing.T) {
		iv := Interval{Lo: 0, Hi: 1, Points: 4, ExcludeHi: true}
		assertFloat64SlicesEqual(t, iv.Values(), []float64{0, 0.25, 0.5, 0.75}, 1e-15)
		assert.InDelta(t, 0.25, iv.Spacing(), 1e-15)
	})
}

func TestModeBetterKeepsFirstOnTies(t *testing.T) {
	assert.True(t, Maximize.Better(2, 1))
	assert.False(t, Maximize.Better(1, 1))
	assert.True(t, Minimize.Better(1, 2))
	assert.False(t, Minimize.Better(1, 1))
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"max": Maximize, "Maximize": Maximize, "": Maximize, "min": Minimize, " minimize ": Minimize} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("sideways")
	assert.Error(t, err)

	var m Mode
	require.NoError(t, m.UnmarshalText([]byte("min")))
	assert.Equal(t, Minimize, m)
	text, err := m.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "minimize", string(text))
}
