package interfaces

import "market-simulator/src/models"

// -----------------------------------------------------------------------------
// ISimulationController manages concurrent simulation runs.
// -----------------------------------------------------------------------------

type ISimulationController interface {

	// Start launches a new run and returns its acknowledgment
	Start(config *models.MSimulationConfig) (*models.MSimulationResponse, error)

	// -----------------------------------------------------------------------------

	// Stop cancels one active run
	Stop(simulationID string) error

	// -----------------------------------------------------------------------------

	// Status reports one active run with its elapsed duration
	Status(simulationID string) (*models.MSimulationStatus, error)

	// -----------------------------------------------------------------------------

	// History returns the most recent archived runs, newest last. A
	// non-positive limit falls back to the default of 50
	History(limit int) []models.MHistoryEntry

	// -----------------------------------------------------------------------------

	// ActiveCount returns the number of live runs
	ActiveCount() int

	// -----------------------------------------------------------------------------

	// StopAll cancels every active run and waits for them to archive
	StopAll()
}
