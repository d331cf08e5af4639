package main

import (
	"market-simulator/src/agents"
	"market-simulator/src/broadcast"
	"market-simulator/src/engine"
	"market-simulator/src/interfaces"
	"market-simulator/src/logger"
	"market-simulator/src/models"
	"market-simulator/src/simulation"
	"market-simulator/src/storage"
	"market-simulator/src/validation"
)

// -----------------------------------------------------------------------------

// setupJournal initializes the trade journal based on config. Returns nil when
// journaling is disabled
func setupJournal(config *models.MConfig, appLogger *logger.Logger) (interfaces.ITradeJournal, error) {
	var journal interfaces.ITradeJournal
	var err error

	switch config.Storage.DBType {
	case "postgres":
		pgLogger := logger.NewLogger(config.LogLevel, "PostgresJournal")
		journal, err = storage.NewPostgresJournal(config, pgLogger)
	case "none":
		appLogger.Info("Trade journaling disabled")
		return nil, nil
	default:
		// Default to SQLite
		sqliteLogger := logger.NewLogger(config.LogLevel, "SQLiteJournal")
		journal, err = storage.NewAsyncSQLiteJournal(config, sqliteLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init journal: %v", err)
		return nil, err
	}
	if err := journal.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate journal: %v", err)
		return nil, err
	}

	// Drop rows past the retention window before the stream starts appending
	if err := journal.CleanupOldData(); err != nil {
		appLogger.Warning("Journal cleanup failed: %v", err)
	}

	return journal, nil
}

// -----------------------------------------------------------------------------

// setupEngine initializes the simulated market
func setupEngine(config *models.MConfig) *engine.MarketEngine {
	engineLogger := logger.NewLogger(config.LogLevel, "MarketEngine")
	return engine.NewMarketEngine(config.Engine, engineLogger)
}

// -----------------------------------------------------------------------------

// setupAgents initializes the agent registry and the fact checker
func setupAgents(config *models.MConfig) (*agents.Registry, *validation.FactChecker) {
	registryLogger := logger.NewLogger(config.LogLevel, "AgentRegistry")
	registry := agents.NewRegistry(config.Agents, registryLogger)

	checkerLogger := logger.NewLogger(config.LogLevel, "FactChecker")
	checker := validation.NewFactChecker(checkerLogger)

	return registry, checker
}

// -----------------------------------------------------------------------------

// setupController initializes the simulation lifecycle manager. The event sink
// is attached later, once the server exists
func setupController(config *models.MConfig, market interfaces.IMarketEngine, factChecker interfaces.IFactChecker) *simulation.Controller {
	controllerLogger := logger.NewLogger(config.LogLevel, "SimulationController")
	return simulation.NewController(config.Simulation, market, nil, factChecker, controllerLogger)
}

// -----------------------------------------------------------------------------

// setupBroadcaster initializes the periodic snapshot and trade publisher
func setupBroadcaster(
	config *models.MConfig,
	market interfaces.IMarketEngine,
	sink interfaces.IEventSink,
	journal interfaces.ITradeJournal,
	factChecker interfaces.IFactChecker,
	symbols []string,
) *broadcast.Broadcaster {
	cursors := broadcast.NewCursorTracker(symbols)
	broadcastLogger := logger.NewLogger(config.LogLevel, "Broadcaster")
	return broadcast.NewBroadcaster(config.Broadcast, market, sink, cursors, journal, factChecker, broadcastLogger)
}
