package analysis

import (
	"market-simulator/src/analysis/core"
	"market-simulator/src/models"
)

// -----------------------------------------------------------------------------
// Run summaries turn the raw trade logs of a finished simulation into the
// per-symbol digests returned by the history and completion events.
// -----------------------------------------------------------------------------

// BuildRunResults computes the results of one finished run from its trade
// logs. Symbols that never traded get a zero summary
func BuildRunResults(simulationID string, elapsedSeconds float64, steps int64, trades map[string][]models.MTrade) *models.MSimulationResults {
	results := &models.MSimulationResults{
		SimulationID:    simulationID,
		DurationSeconds: elapsedSeconds,
		Steps:           steps,
		Symbols:         make(map[string]models.MSymbolSummary, len(trades)),
	}

	for symbol, symbolTrades := range trades {
		summary := summarizeSymbol(symbolTrades)
		results.Symbols[symbol] = summary
		results.TotalTrades += summary.Trades
	}

	return results
}

// -----------------------------------------------------------------------------

func summarizeSymbol(trades []models.MTrade) models.MSymbolSummary {
	if len(trades) == 0 {
		return models.MSymbolSummary{}
	}

	prices := make([]float64, len(trades))
	volumes := make([]float64, len(trades))
	var totalQuantity int64

	for i, trade := range trades {
		prices[i] = trade.Price
		volumes[i] = float64(trade.Quantity)
		totalQuantity += trade.Quantity
	}

	ohlcv := core.ComputeOHLCV(prices, volumes)

	return models.MSymbolSummary{
		Open:       ohlcv.Open,
		High:       ohlcv.High,
		Low:        ohlcv.Low,
		Close:      ohlcv.Close,
		ReturnPct:  core.CalculateChangePercent(ohlcv.Close, ohlcv.Open) * 100,
		Volatility: tradeVolatility(prices) * 100,
		Volume:     totalQuantity,
		Trades:     int64(len(trades)),
	}
}

// -----------------------------------------------------------------------------

// tradeVolatility is the standard deviation of trade-to-trade returns
func tradeVolatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns = append(returns, core.CalculateChangePercent(prices[i], prices[i-1]))
	}

	_, std := core.CalculateMeanStd(returns)
	return std
}
