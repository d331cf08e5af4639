package core

import "math"

// -----------------------------------------------------------------------------

// OHLCV is the price/volume digest of one series
type OHLCV struct {
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	AvgPrice float64
}

// -----------------------------------------------------------------------------

// ComputeOHLCV calculates OHLCV and AvgPrice from price/volume arrays.
// Both slices must have the same length
func ComputeOHLCV(prices []float64, volumes []float64) OHLCV {
	if len(prices) == 0 {
		return OHLCV{}
	}

	result := OHLCV{
		Open:  prices[0],
		Close: prices[len(prices)-1],
		High:  -1.0,
		Low:   math.MaxFloat64,
	}

	sumPrice := 0.0
	for i, p := range prices {
		if p > result.High {
			result.High = p
		}
		if p < result.Low {
			result.Low = p
		}
		result.Volume += volumes[i]
		sumPrice += p
	}

	result.AvgPrice = sumPrice / float64(len(prices))
	return result
}

// -----------------------------------------------------------------------------

// CalculateChangePercent calculates fractional change.
func CalculateChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous
}

// -----------------------------------------------------------------------------

// CalculateAnomalyRatio compares a quantity against its running average
func CalculateAnomalyRatio(currentVol, avgVol float64) float64 {
	if avgVol <= 0 {
		if currentVol == 0 {
			return 1.0
		}
		return currentVol
	}
	return currentVol / avgVol
}
