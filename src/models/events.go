package models

// Event types carried over the websocket
const (
	EventConnected           = "connected"
	EventSnapshot            = "snapshot"
	EventTrade               = "trade"
	EventSimulationStarted   = "simulation_started"
	EventSimulationStopped   = "simulation_stopped"
	EventSimulationCompleted = "simulation_completed"
)

// MEvent is the single broadcast envelope. Only the fields relevant to the
// event type are set, the rest stay omitted on the wire
type MEvent struct {
	Type         string              `json:"type"`
	Symbol       string              `json:"symbol,omitempty"`
	Data         *MSnapshot          `json:"data,omitempty"`
	Trade        *MTrade             `json:"trade,omitempty"`
	SimulationID string              `json:"simulation_id,omitempty"`
	Config       *MSimulationConfig  `json:"config,omitempty"`
	Results      *MSimulationResults `json:"results,omitempty"`
	Symbols      []string            `json:"symbols,omitempty"`
	Timestamp    int64               `json:"timestamp,omitempty"`
}

// NewSnapshotEvent wraps one market snapshot for broadcast
func NewSnapshotEvent(symbol string, snapshot *MSnapshot) *MEvent {
	return &MEvent{Type: EventSnapshot, Symbol: symbol, Data: snapshot}
}

// NewTradeEvent wraps one executed trade for broadcast
func NewTradeEvent(symbol string, trade *MTrade) *MEvent {
	return &MEvent{Type: EventTrade, Symbol: symbol, Trade: trade}
}

// NewSimulationStartedEvent announces a new run together with its config
func NewSimulationStartedEvent(simulationID string, config *MSimulationConfig) *MEvent {
	return &MEvent{Type: EventSimulationStarted, SimulationID: simulationID, Config: config}
}

// NewSimulationStoppedEvent announces a manual stop
func NewSimulationStoppedEvent(simulationID string) *MEvent {
	return &MEvent{Type: EventSimulationStopped, SimulationID: simulationID}
}

// NewSimulationCompletedEvent announces a natural completion with results
func NewSimulationCompletedEvent(simulationID string, results *MSimulationResults) *MEvent {
	return &MEvent{Type: EventSimulationCompleted, SimulationID: simulationID, Results: results}
}
