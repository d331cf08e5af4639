package models

// MAgent is a registered trading agent
type MAgent struct {
	AgentID      string `json:"agent_id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	RegisteredAt int64  `json:"registered_at"`
}

// MAgentAction is the body of a manual agent action request
type MAgentAction struct {
	ActionType string                 `json:"action_type"`
	Parameters map[string]interface{} `json:"parameters"`
}

// MAgentActionResult acknowledges an executed agent action
type MAgentActionResult struct {
	AgentID    string  `json:"agent_id"`
	ActionType string  `json:"action_type"`
	Status     string  `json:"status"`
	Timestamp  float64 `json:"timestamp"`
}

// MFactCheckStats aggregates the validation counters
type MFactCheckStats struct {
	ChecksPerformed int64   `json:"checks_performed"`
	ChecksPassed    int64   `json:"checks_passed"`
	ChecksFailed    int64   `json:"checks_failed"`
	Accuracy        float64 `json:"accuracy"`
}
