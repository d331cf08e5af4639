package interfaces

import (
	"context"
	"market-simulator/src/models"
)

// -----------------------------------------------------------------------------
// IMarketEngine is the contract between the service and a market engine.
// -----------------------------------------------------------------------------

type IMarketEngine interface {

	// Symbols returns the symbols the engine currently simulates
	Symbols() []string

	// -----------------------------------------------------------------------------

	// GetSnapshot returns the current market state of one symbol
	GetSnapshot(symbol string) (*models.MSnapshot, error)

	// -----------------------------------------------------------------------------

	// GetAllSnapshots returns the current market state of every symbol
	GetAllSnapshots() map[string]*models.MSnapshot

	// -----------------------------------------------------------------------------

	// GetTrades returns the full buffered trade log of one symbol,
	// oldest first
	GetTrades(symbol string) ([]models.MTrade, error)

	// -----------------------------------------------------------------------------

	// RunSimulation drives the market for the configured duration and blocks
	// until it finishes or ctx is cancelled, returning the context error in
	// the latter case
	RunSimulation(ctx context.Context, config *models.MSimulationConfig) (*models.MSimulationResults, error)
}

// -----------------------------------------------------------------------------
// IIncrementalTradeFeed is an optional engine capability. Engines that can
// answer "what happened after ts" directly avoid the fetch-all-and-filter
// fallback in the broadcast cycle.
// -----------------------------------------------------------------------------

type IIncrementalTradeFeed interface {

	// GetTradesSince returns trades with timestamps strictly greater than
	// since, oldest first
	GetTradesSince(symbol string, since int64) ([]models.MTrade, error)
}
