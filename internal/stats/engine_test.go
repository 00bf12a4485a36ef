package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeNoHistory(t *testing.T) {
	assert.Nil(t, Compute(nil, 1.0))
	assert.Nil(t, Compute([]float64{}, 1.0))
}

func TestComputeIdenticalOrders(t *testing.T) {
	res := Compute([]float64{7, 7, 7}, 1.0)
	require.NotNil(t, res)

	assert.Equal(t, 7.0, res.MedianGrams)
	assert.Equal(t, 0.0, res.MADGrams)
	// spread floor keeps the band from collapsing to zero width
	assert.Equal(t, 1.0, res.SpreadGrams)
	assert.Equal(t, 9.0, res.UpperNormalGrams)
	assert.False(t, res.LowConfidence)
}

func TestComputeEvenSampleCount(t *testing.T) {
	res := Compute([]float64{7, 14}, 1.0)
	require.NotNil(t, res)

	assert.Equal(t, 10.5, res.MedianGrams)
	assert.Equal(t, 3.5, res.MADGrams)
	assert.Equal(t, 3.5, res.SpreadGrams)
	assert.Equal(t, 17.5, res.UpperNormalGrams)
	assert.True(t, res.LowConfidence)
}

func TestComputeRobustToOutlier(t *testing.T) {
	res := Compute([]float64{10, 10, 10, 10, 500}, 1.0)
	require.NotNil(t, res)

	assert.Equal(t, 10.0, res.MedianGrams)
	assert.Equal(t, 0.0, res.MADGrams)
}

func TestOverTypicalRequiresConfidence(t *testing.T) {
	// two samples: band exists, but confidence is too low to flag anything
	res := Compute([]float64{7, 14}, 1.0)
	require.NotNil(t, res)
	assert.False(t, res.OverTypical(20))
	assert.False(t, res.OverTypical(1e9))

	var none *Result
	assert.False(t, none.OverTypical(20))
}

func TestOverTypicalBand(t *testing.T) {
	res := Compute([]float64{7, 14, 10.5}, 1.0)
	require.NotNil(t, res)
	require.False(t, res.LowConfidence)

	// median 10.5, MAD 3.5, upper normal 17.5
	assert.Equal(t, 17.5, res.UpperNormalGrams)
	assert.True(t, res.OverTypical(20))
	assert.False(t, res.OverTypical(15))
	assert.False(t, res.OverTypical(17.5)) // boundary is not over
}
