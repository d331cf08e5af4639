package agents

import (
	"sync"
	"time"

	"market-simulator/src/helpers"
	"market-simulator/src/logger"
	"market-simulator/src/models"
)

// -----------------------------------------------------------------------------
// Registry tracks the trading agents declared in the configuration and
// acknowledges manual actions against them.
// -----------------------------------------------------------------------------

type Registry struct {
	mu     sync.RWMutex
	agents map[string]*models.MAgent
	order  []string
	logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewRegistry registers every configured agent
func NewRegistry(configs []models.MAgentConfig, log *logger.Logger) *Registry {
	r := &Registry{
		agents: make(map[string]*models.MAgent, len(configs)),
		logger: log,
	}

	now := time.Now().UnixMilli()
	for _, cfg := range configs {
		agentType := cfg.Type
		if agentType == "" {
			agentType = "market_maker"
		}

		r.agents[cfg.ID] = &models.MAgent{
			AgentID:      cfg.ID,
			Name:         cfg.Name,
			Type:         agentType,
			Status:       "idle",
			RegisteredAt: now,
		}
		r.order = append(r.order, cfg.ID)
	}

	log.Info("Registered %d agents", len(r.order))
	return r
}

// -----------------------------------------------------------------------------

// List returns every registered agent in registration order
func (r *Registry) List() []models.MAgent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]models.MAgent, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, *r.agents[id])
	}
	return result
}

// -----------------------------------------------------------------------------

// Get returns one agent by id
func (r *Registry) Get(agentID string) (*models.MAgent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, ok := r.agents[agentID]
	if !ok {
		return nil, helpers.NewNotFoundError("Agent %s not found", agentID)
	}

	copy := *agent
	return &copy, nil
}

// -----------------------------------------------------------------------------

// ExecuteAction acknowledges a manual action against one agent and marks it
// active
func (r *Registry) ExecuteAction(agentID string, action *models.MAgentAction) (*models.MAgentActionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	agent, ok := r.agents[agentID]
	if !ok {
		return nil, helpers.NewNotFoundError("Agent %s not found", agentID)
	}

	actionType := "default"
	if action != nil && action.ActionType != "" {
		actionType = action.ActionType
	}

	agent.Status = "active"
	r.logger.Info("Agent %s executed action %s", agentID, actionType)

	return &models.MAgentActionResult{
		AgentID:    agentID,
		ActionType: actionType,
		Status:     "executed",
		Timestamp:  float64(time.Now().UnixNano()) / 1e9,
	}, nil
}
