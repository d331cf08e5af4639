package server

import (
	"errors"
	"strconv"
	"time"

	"market-simulator/src/helpers"
	"market-simulator/src/interfaces"
	"market-simulator/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Route Handlers (Matches the original behavior exactly)
// -----------------------------------------------------------------------------

// abortWithError maps domain errors to status codes with a FastAPI-style
// {"detail": ...} body
func (s *APIServer) abortWithError(c *gin.Context, err error) {
	status := 500

	var notFound *helpers.NotFoundError
	var validation *helpers.ValidationError
	if errors.As(err, &notFound) {
		status = 404
	} else if errors.As(err, &validation) {
		status = 400
	}

	c.JSON(status, gin.H{"detail": err.Error()})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getRoot(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "Agentic Market Research API",
		"version": "0.1.0",
		"status":  "running",
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	activeSimulations := 0
	if s.simulations != nil {
		activeSimulations = s.simulations.ActiveCount()
	}

	c.JSON(200, gin.H{
		"status":                "healthy",
		"timestamp":             float64(time.Now().UnixNano()) / 1e9,
		"active_simulations":    activeSimulations,
		"websocket_connections": s.ConnectionCount(),
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getAllMarketData(c *gin.Context) {
	if s.market == nil {
		s.abortWithError(c, helpers.NewEngineUnavailableError())
		return
	}

	c.JSON(200, s.market.GetAllSnapshots())
}

// -----------------------------------------------------------------------------

func (s *APIServer) getMarketData(c *gin.Context) {
	if s.market == nil {
		s.abortWithError(c, helpers.NewEngineUnavailableError())
		return
	}

	symbol := c.Param("symbol")
	snapshot, err := s.market.GetSnapshot(symbol)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(200, snapshot)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getTrades(c *gin.Context) {
	if s.market == nil {
		s.abortWithError(c, helpers.NewEngineUnavailableError())
		return
	}

	symbol := c.Param("symbol")

	lookbackSeconds, err := strconv.Atoi(c.DefaultQuery("lookback_seconds", "3600"))
	if err != nil {
		s.abortWithError(c, helpers.NewValidationError("lookback_seconds must be an integer"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "200"))
	if err != nil {
		s.abortWithError(c, helpers.NewValidationError("limit must be an integer"))
		return
	}

	since := time.Now().UnixMilli() - int64(lookbackSeconds)*1000

	var trades []models.MTrade
	if feed, ok := s.market.(interfaces.IIncrementalTradeFeed); ok {
		trades, err = feed.GetTradesSince(symbol, since)
	} else {
		var all []models.MTrade
		all, err = s.market.GetTrades(symbol)
		for _, t := range all {
			if t.Timestamp > since {
				trades = append(trades, t)
			}
		}
	}
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	// Keep the newest trades when over the limit, a limit of 0 means all
	if limit > 0 && len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}
	if trades == nil {
		trades = []models.MTrade{}
	}

	c.JSON(200, gin.H{"symbol": symbol, "trades": trades})
}

// -----------------------------------------------------------------------------

// getJournal reads back persisted trades. Unlike /api/trades this survives
// restarts, but only when a journal backend is configured
func (s *APIServer) getJournal(c *gin.Context) {
	if s.journal == nil {
		c.JSON(404, gin.H{"detail": "Trade journaling disabled"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "200"))
	if err != nil {
		s.abortWithError(c, helpers.NewValidationError("limit must be an integer"))
		return
	}

	symbol := c.Param("symbol")
	trades, err := s.journal.RecentTrades(symbol, limit)
	if err != nil {
		s.abortWithError(c, helpers.NewDatabaseError("failed to read journal: %v", err))
		return
	}

	c.JSON(200, gin.H{"symbol": symbol, "trades": trades})
}

// -----------------------------------------------------------------------------

func (s *APIServer) startSimulation(c *gin.Context) {
	if s.simulations == nil {
		s.abortWithError(c, helpers.NewEngineUnavailableError())
		return
	}

	var cfg models.MSimulationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		s.abortWithError(c, helpers.NewValidationError("invalid simulation config: %v", err))
		return
	}

	response, err := s.simulations.Start(&cfg)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(200, response)
}

// -----------------------------------------------------------------------------

func (s *APIServer) stopSimulation(c *gin.Context) {
	if s.simulations == nil {
		s.abortWithError(c, helpers.NewEngineUnavailableError())
		return
	}

	simulationID := c.Param("simulation_id")
	if err := s.simulations.Stop(simulationID); err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "Simulation stopped", "simulation_id": simulationID})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSimulationStatus(c *gin.Context) {
	if s.simulations == nil {
		s.abortWithError(c, helpers.NewEngineUnavailableError())
		return
	}

	status, err := s.simulations.Status(c.Param("simulation_id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(200, status)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getSimulationHistory(c *gin.Context) {
	if s.simulations == nil {
		s.abortWithError(c, helpers.NewEngineUnavailableError())
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		s.abortWithError(c, helpers.NewValidationError("limit must be an integer"))
		return
	}

	history := s.simulations.History(limit)
	if history == nil {
		history = []models.MHistoryEntry{}
	}

	c.JSON(200, gin.H{"history": history})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getAgents(c *gin.Context) {
	if s.agents == nil {
		c.JSON(500, gin.H{"detail": "Agent registry not initialized"})
		return
	}

	c.JSON(200, gin.H{"agents": s.agents.List()})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getAgent(c *gin.Context) {
	if s.agents == nil {
		c.JSON(500, gin.H{"detail": "Agent registry not initialized"})
		return
	}

	agent, err := s.agents.Get(c.Param("agent_id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(200, gin.H{"agent": agent})
}

// -----------------------------------------------------------------------------

func (s *APIServer) agentAction(c *gin.Context) {
	if s.agents == nil {
		c.JSON(500, gin.H{"detail": "Agent registry not initialized"})
		return
	}

	var action models.MAgentAction
	if err := c.ShouldBindJSON(&action); err != nil {
		s.abortWithError(c, helpers.NewValidationError("invalid agent action: %v", err))
		return
	}

	result, err := s.agents.ExecuteAction(c.Param("agent_id"), &action)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(200, gin.H{"result": result})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getFactCheckStats(c *gin.Context) {
	if s.factChecker == nil {
		c.JSON(500, gin.H{"detail": "Fact checker not initialized"})
		return
	}

	c.JSON(200, s.factChecker.Stats())
}
