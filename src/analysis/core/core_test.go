package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func TestComputeOHLCV(t *testing.T) {
	prices := []float64{100.0, 105.0, 98.0, 102.0}
	volumes := []float64{10, 20, 5, 15}

	result := ComputeOHLCV(prices, volumes)

	assert.Equal(t, 100.0, result.Open)
	assert.Equal(t, 102.0, result.Close)
	assert.Equal(t, 105.0, result.High)
	assert.Equal(t, 98.0, result.Low)
	assert.Equal(t, 50.0, result.Volume)
	assert.InDelta(t, 101.25, result.AvgPrice, 1e-9)
}

func TestComputeOHLCVEmpty(t *testing.T) {
	assert.Equal(t, OHLCV{}, ComputeOHLCV(nil, nil))
}

func TestComputeOHLCVSinglePoint(t *testing.T) {
	result := ComputeOHLCV([]float64{42.0}, []float64{7})

	assert.Equal(t, 42.0, result.Open)
	assert.Equal(t, 42.0, result.Close)
	assert.Equal(t, 42.0, result.High)
	assert.Equal(t, 42.0, result.Low)
	assert.Equal(t, 7.0, result.Volume)
}

// -----------------------------------------------------------------------------

func TestCalculateChangePercent(t *testing.T) {
	assert.InDelta(t, 0.05, CalculateChangePercent(105, 100), 1e-9)
	assert.InDelta(t, -0.10, CalculateChangePercent(90, 100), 1e-9)
	assert.Equal(t, 0.0, CalculateChangePercent(100, 0))
}

func TestCalculateAnomalyRatio(t *testing.T) {
	assert.Equal(t, 2.0, CalculateAnomalyRatio(200, 100))
	assert.Equal(t, 1.0, CalculateAnomalyRatio(0, 0))
	// No baseline yet: the raw quantity is the ratio
	assert.Equal(t, 50.0, CalculateAnomalyRatio(50, 0))
}

// -----------------------------------------------------------------------------

func TestCalculateMeanStd(t *testing.T) {
	mean, std := CalculateMeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-9)
	assert.InDelta(t, 2.0, std, 1e-9)
}

func TestCalculateMeanStdDegenerate(t *testing.T) {
	mean, std := CalculateMeanStd(nil)
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0.0, std)

	mean, std = CalculateMeanStd([]float64{3.5})
	assert.Equal(t, 3.5, mean)
	assert.Equal(t, 0.0, std)
}

func TestCalculateZScore(t *testing.T) {
	assert.InDelta(t, 1.5, CalculateZScore(8, 5, 2), 1e-9)
	assert.Equal(t, 0.0, CalculateZScore(8, 5, 0))
}
