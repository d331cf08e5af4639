package interfaces

import "market-simulator/src/models"

// -----------------------------------------------------------------------------
// ITradeJournal defines the contract for persisting the broadcast trade
// stream.
// -----------------------------------------------------------------------------

type ITradeJournal interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveTradesBulk inserts a batch of executed trades.
	SaveTradesBulk(rows []models.MSymbolTrade) error

	// -----------------------------------------------------------------------------

	// RecentTrades returns the newest journaled trades of one symbol,
	// oldest first.
	RecentTrades(symbol string, limit int) ([]models.MTrade, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes rows older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
