package interfaces

import "market-simulator/src/models"

// -----------------------------------------------------------------------------
// IAgentRegistry tracks the trading agents known to the service.
// -----------------------------------------------------------------------------

type IAgentRegistry interface {

	// List returns every registered agent
	List() []models.MAgent

	// -----------------------------------------------------------------------------

	// Get returns one agent by id
	Get(agentID string) (*models.MAgent, error)

	// -----------------------------------------------------------------------------

	// ExecuteAction runs a manual action against one agent
	ExecuteAction(agentID string, action *models.MAgentAction) (*models.MAgentActionResult, error)
}

// -----------------------------------------------------------------------------
// IFactChecker sanity-checks broadcast data and accumulates the counters
// exposed over the API.
// -----------------------------------------------------------------------------

type IFactChecker interface {

	// CheckTrade validates one trade before broadcast
	CheckTrade(symbol string, trade *models.MTrade) bool

	// -----------------------------------------------------------------------------

	// CheckSnapshot validates one market snapshot before broadcast
	CheckSnapshot(snapshot *models.MSnapshot) bool

	// -----------------------------------------------------------------------------

	// CheckResults validates the internal consistency of a finished run
	CheckResults(results *models.MSimulationResults) bool

	// -----------------------------------------------------------------------------

	// RecordCheck counts one validation outcome
	RecordCheck(passed bool)

	// -----------------------------------------------------------------------------

	// Stats returns the running totals
	Stats() models.MFactCheckStats
}
