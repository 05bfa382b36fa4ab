package carry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyRateCompoundsBackToAnnual(t *testing.T) {
	t.Parallel()

	for _, annual := range []float64{-0.5, -0.001, 0, 0.0001, 0.04, 0.25, 3} {
		daily, err := DailyRate(annual)
		require.NoError(t, err)
		assert.InDelta(t, annual, math.Pow(1+daily, DaysPerYear)-1, 1e-9, "annual %v", annual)
	}
}

func TestDailyRateRejectsMinusHundredPercent(t *testing.T) {
	t.Parallel()

	for _, annual := range []float64{-1, -1.5, math.NaN(), math.Inf(1)} {
		_, err := DailyRate(annual)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidRate), "annual %v: %v", annual, err)

		var cerr *Error
		require.True(t, errors.As(err, &cerr))
		assert.Equal(t, "daily rate", cerr.Op)
	}
}

func TestSimpleReturn(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 4100.0, SimpleReturn(0.04, -0.001, 100000), 1e-9)
	assert.InDelta(t, -4100.0, SimpleReturn(-0.001, 0.04, 100000), 1e-9)
}

func TestDispersion(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0205, Dispersion(0.04, -0.001), 1e-12)
	assert.Equal(t, Dispersion(0.06, 0.002), Dispersion(0.002, 0.06))
	assert.Zero(t, Dispersion(0.03, 0.03))
}

func TestLegacyEstimates(t *testing.T) {
	t.Parallel()

	got := LegacyEstimates([]float64{0.04, 0.05, 0.06}, []float64{-0.001, 0.001}, 100000)
	require.Len(t, got, 2)
	assert.InDelta(t, 4100.0, got[0].Return, 1e-9)
	assert.InDelta(t, 0.0205, got[0].Risk, 1e-12)
	assert.InDelta(t, 4900.0, got[1].Return, 1e-9)
	assert.InDelta(t, 0.0245, got[1].Risk, 1e-12)

	assert.Empty(t, LegacyEstimates(nil, []float64{0.01}, 1))
}
