package engine

import (
	"context"
	"time"

	"market-simulator/src/analysis"
	"market-simulator/src/helpers"
	"market-simulator/src/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Simulation run loop. Each run drives the shared market at its own pace,
// concurrent runs interleave on the engine lock.
// -----------------------------------------------------------------------------

// RunSimulation drives the market for the configured duration and blocks
// until it finishes or ctx is cancelled. The returned results carry no run id,
// the caller owns that
func (e *MarketEngine) RunSimulation(ctx context.Context, config *models.MSimulationConfig) (*models.MSimulationResults, error) {
	if config == nil {
		return nil, helpers.NewValidationError("simulation config is required")
	}
	if config.Duration <= 0 {
		return nil, helpers.NewValidationError("duration must be greater than 0")
	}
	if config.TimeStep <= 0 {
		return nil, helpers.NewValidationError("time step must be greater than 0")
	}
	if len(config.Symbols) == 0 {
		return nil, helpers.NewValidationError("at least one symbol is required")
	}

	e.EnsureSymbols(config.Symbols)

	totalSteps := int64(config.Duration / config.TimeStep)
	if totalSteps < 1 {
		totalSteps = 1
	}
	stepInterval := time.Duration(config.TimeStep / e.timeScale * float64(time.Second))

	runTrades := make(map[string][]models.MTrade, len(config.Symbols))
	for _, symbol := range config.Symbols {
		runTrades[symbol] = []models.MTrade{}
	}

	start := time.Now()
	var tradeTotal int64

	for step := int64(0); step < totalSteps; step++ {
		generated := e.step(config.Symbols)
		for symbol, trades := range generated {
			runTrades[symbol] = append(runTrades[symbol], trades...)
			tradeTotal += int64(len(trades))
		}

		select {
		case <-ctx.Done():
			e.logger.Info("Simulation cancelled after %d/%d steps", step+1, totalSteps)
			return nil, ctx.Err()
		case <-time.After(stepInterval):
		}
	}

	elapsed := time.Since(start).Seconds()
	e.logger.Info("Simulation finished: %d steps, %d trades in %.2fs", totalSteps, tradeTotal, elapsed)

	return analysis.BuildRunResults("", elapsed, totalSteps, runTrades), nil
}

// -----------------------------------------------------------------------------

// step advances every requested symbol by one tick and returns the trades it
// generated
func (e *MarketEngine) step(symbols []string) map[string][]models.MTrade {
	e.mu.Lock()
	defer e.mu.Unlock()

	generated := make(map[string][]models.MTrade)
	now := time.Now().UnixMilli()

	for _, symbol := range symbols {
		price, ok := e.prices[symbol]
		if !ok {
			continue
		}

		// Bounded random walk, never below one cent
		delta := (e.rng.Float64() - 0.5) * 2 * e.tickVolatility
		price = price.Mul(decimal.NewFromFloat(1 + delta)).Round(2)
		if price.LessThan(minPrice) {
			price = minPrice
		}
		e.prices[symbol] = price

		count := e.rng.Intn(maxTradesPerStep)
		for i := 0; i < count; i++ {
			trade := models.MTrade{
				BuyOrderID:  uuid.New().String(),
				SellOrderID: uuid.New().String(),
				Price:       price.InexactFloat64(),
				Quantity:    int64(e.rng.Intn(maxTradeQuantity) + 1),
				Timestamp:   now,
			}

			e.tradeLogs[symbol].Append(trade)
			e.volumes[symbol] += trade.Quantity
			e.tradeCounts[symbol]++
			generated[symbol] = append(generated[symbol], trade)
		}
	}

	return generated
}
