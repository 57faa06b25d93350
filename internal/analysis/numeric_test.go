package analysis

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeNumeric_QuartilesLinearInterpolation(t *testing.T) {
	s := ComputeNumeric([]float64{4, 1, 3, 2}, 4)

	assert.Equal(t, 4, s.ValidCount)
	assert.InDelta(t, 1.75, s.Q1, 1e-12)
	assert.InDelta(t, 2.5, s.Median, 1e-12)
	assert.InDelta(t, 3.25, s.Q3, 1e-12)
	assert.InDelta(t, 1.5, s.IQR, 1e-12)
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.InDelta(t, 1.25, s.Variance, 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), s.StdDev, 1e-12)
	assert.InDelta(t, math.Sqrt(1.25)/2.5*100, s.CV, 1e-9)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 3.0, s.Range)
	assert.Nil(t, s.Mode, "all values unique")
	require.NotNil(t, s.Skewness)
	assert.InDelta(t, 0, *s.Skewness, 1e-12)
	assert.Empty(t, s.Outliers)
}

func TestComputeNumeric_Outliers(t *testing.T) {
	s := ComputeNumeric([]float64{10, 12, 11, 13, 12, 100}, 6)
	assert.Equal(t, []float64{100}, s.Outliers)
	assert.Equal(t, 1, s.OutlierCount)
	require.NotNil(t, s.Mode)
	assert.Equal(t, 12.0, *s.Mode)
	require.NotNil(t, s.Skewness)
	assert.Greater(t, *s.Skewness, 0.0)

	trimmed := ComputeNumeric([]float64{10, 12, 11, 13, 12}, 5)
	assert.InDelta(t, 11.6, trimmed.Mean, 1e-9)
	assert.Empty(t, trimmed.Outliers)
}

func TestComputeNumeric_Degenerate(t *testing.T) {
	empty := ComputeNumeric(nil, 3)
	assert.Equal(t, 0, empty.ValidCount)
	assert.Equal(t, 3, empty.MissingCount)
	assert.Equal(t, 3, empty.Count)
	assert.Zero(t, empty.Mean)
	assert.Nil(t, empty.Mode)
	assert.NotNil(t, empty.Outliers)

	one := ComputeNumeric([]float64{5}, 1)
	assert.Equal(t, 5.0, one.Median)
	assert.Equal(t, 5.0, one.Q1)
	assert.Zero(t, one.Variance)
	assert.Zero(t, one.StdDev)
	assert.Zero(t, one.CV)
	assert.Nil(t, one.Skewness)

	flat := ComputeNumeric([]float64{0.1, 0.1, 0.1, 0.1}, 4)
	assert.Nil(t, flat.Skewness)
	assert.Equal(t, flat.Median, flat.Q1)
	assert.Equal(t, flat.Median, flat.Q3)

	zeroMean := ComputeNumeric([]float64{-1, 1}, 2)
	assert.Zero(t, zeroMean.Mean)
	assert.Zero(t, zeroMean.CV)
	assert.Equal(t, 1.0, zeroMean.StdDev)

	withJunk := ComputeNumeric([]float64{1, math.NaN(), math.Inf(1), 3}, 4)
	assert.Equal(t, 2, withJunk.ValidCount)
	assert.Equal(t, 2, withJunk.MissingCount)
	assert.Equal(t, 2.0, withJunk.Mean)
}

func TestComputeNumeric_ModePrefersSmallestOnTie(t *testing.T) {
	s := ComputeNumeric([]float64{3, 3, 1, 1, 2}, 5)
	require.NotNil(t, s.Mode)
	assert.Equal(t, 1.0, *s.Mode)
}

func TestComputeNumeric_OrderingProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(60)
		vals := make([]float64, n)
		for i := range vals {
			switch trial % 3 {
			case 0:
				vals[i] = rng.NormFloat64()*10 + 30
			case 1:
				vals[i] = float64(rng.Intn(5))
			default:
				vals[i] = rng.ExpFloat64() * 0.1
			}
		}
		s := ComputeNumeric(vals, n)
		assert.LessOrEqual(t, s.Min, s.Q1)
		assert.LessOrEqual(t, s.Q1, s.Median)
		assert.LessOrEqual(t, s.Median, s.Q3)
		assert.LessOrEqual(t, s.Q3, s.Max)
		assert.GreaterOrEqual(t, s.Variance, 0.0)
		_, err := json.Marshal(s)
		require.NoError(t, err, "stats must never hold NaN or Inf")
	}
}
