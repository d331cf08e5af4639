package models

// Lifecycle states of a simulation run
const (
	SimulationRunning   = "running"
	SimulationCompleted = "completed"
	SimulationStopped   = "stopped"
	SimulationError     = "error"
)

// MSimulationConfig is the start-request body. Zero fields are filled from
// the configured defaults before validation
type MSimulationConfig struct {
	Duration float64  `json:"duration" yaml:"duration"`
	TimeStep float64  `json:"time_step" yaml:"time_step"`
	Agents   []string `json:"agents" yaml:"agents"`
	Symbols  []string `json:"symbols" yaml:"symbols"`
}

// ApplyDefaults replaces unset fields with the service-wide defaults
func (c *MSimulationConfig) ApplyDefaults(defaults MSimulationDefaults) {
	if c.Duration == 0 {
		c.Duration = defaults.Duration
	}
	if c.TimeStep == 0 {
		c.TimeStep = defaults.TimeStep
	}
	if len(c.Symbols) == 0 {
		c.Symbols = append([]string(nil), defaults.Symbols...)
	}
	if c.Agents == nil {
		c.Agents = []string{}
	}
}

// MSimulationResponse acknowledges a started run. StartTime is unix seconds
type MSimulationResponse struct {
	SimulationID string   `json:"simulation_id"`
	Status       string   `json:"status"`
	StartTime    float64  `json:"start_time"`
	Duration     float64  `json:"duration"`
	Agents       []string `json:"agents"`
}

// MSimulationStatus reports a live run. Duration is the elapsed time in
// seconds, not the configured one
type MSimulationStatus struct {
	SimulationID string            `json:"simulation_id"`
	Status       string            `json:"status"`
	StartTime    float64           `json:"start_time"`
	Duration     float64           `json:"duration"`
	Config       MSimulationConfig `json:"config"`
}

// MHistoryEntry is one archived run, newest entries last
type MHistoryEntry struct {
	SimulationID string              `json:"simulation_id"`
	StartedAt    float64             `json:"started_at"`
	Duration     float64             `json:"duration"`
	Agents       []string            `json:"agents"`
	Results      *MSimulationResults `json:"results"`
	Error        string              `json:"error,omitempty"`
}

// MSimulationResults summarizes a finished run over every simulated symbol
type MSimulationResults struct {
	SimulationID    string                    `json:"simulation_id"`
	DurationSeconds float64                   `json:"duration_seconds"`
	Steps           int64                     `json:"steps"`
	TotalTrades     int64                     `json:"total_trades"`
	Symbols         map[string]MSymbolSummary `json:"symbols"`
}

// MSymbolSummary is the per-symbol digest inside MSimulationResults
type MSymbolSummary struct {
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	ReturnPct  float64 `json:"return_pct"`
	Volatility float64 `json:"volatility"`
	Volume     int64   `json:"volume"`
	Trades     int64   `json:"trades"`
}
