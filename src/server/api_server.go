package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"market-simulator/src/interfaces"
	"market-simulator/src/logger"
	"market-simulator/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer serves the REST control surface and the websocket stream. One
// instance owns the client hub, handlers delegate domain work to the engine,
// the simulation controller and the agent registry.
// -----------------------------------------------------------------------------

type APIServer struct {
	Config     *models.MConfig
	Logger     *logger.Logger
	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket hub state, owned by the hub goroutine
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	connMutex   sync.RWMutex
	connections int

	market      interfaces.IMarketEngine
	simulations interfaces.ISimulationController
	agents      interfaces.IAgentRegistry
	factChecker interfaces.IFactChecker
	journal     interfaces.ITradeJournal
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(
	cfg *models.MConfig,
	log *logger.Logger,
	market interfaces.IMarketEngine,
	simulations interfaces.ISimulationController,
	agents interfaces.IAgentRegistry,
	factChecker interfaces.IFactChecker,
	journal interfaces.ITradeJournal,
) *APIServer {
	// Set Gin mode
	if !strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:  cfg,
		Logger:  log,
		engine:  gin.Default(),
		clients: make(map[*Client]struct{}),
		// Buffered queue so broadcasters never wait on the hub
		broadcast:   make(chan []byte, 256),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		market:      market,
		simulations: simulations,
		agents:      agents,
		factChecker: factChecker,
		journal:     journal,
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup (Matches the original API surface exactly)
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	s.engine.GET("/", s.getRoot)
	s.engine.GET("/health", s.getHealth)

	// Market data endpoints
	s.engine.GET("/api/market-data", s.getAllMarketData)
	s.engine.GET("/api/market-data/:symbol", s.getMarketData)
	s.engine.GET("/api/trades/:symbol", s.getTrades)
	s.engine.GET("/api/journal/:symbol", s.getJournal)

	// Simulation control endpoints
	s.engine.POST("/api/simulation/start", s.startSimulation)
	s.engine.POST("/api/simulation/:simulation_id/stop", s.stopSimulation)
	s.engine.GET("/api/simulation/:simulation_id/status", s.getSimulationStatus)
	s.engine.GET("/api/simulation/history", s.getSimulationHistory)

	// Agent endpoints
	s.engine.GET("/api/agents", s.getAgents)
	s.engine.GET("/api/agents/:agent_id", s.getAgent)
	s.engine.POST("/api/agents/:agent_id/action", s.agentAction)

	// Validation endpoint
	s.engine.GET("/api/fact-check/stats", s.getFactCheckStats)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop refuses new connections, then tears the hub down. Safe to call once
func (s *APIServer) Stop(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	close(s.done)
	return err
}

// -----------------------------------------------------------------------------

// ConnectionCount returns the number of connected websocket clients
func (s *APIServer) ConnectionCount() int {
	s.connMutex.RLock()
	defer s.connMutex.RUnlock()
	return s.connections
}

// -----------------------------------------------------------------------------

func (s *APIServer) setConnectionCount(n int) {
	s.connMutex.Lock()
	s.connections = n
	s.connMutex.Unlock()
}
