package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

var testDefaults = MSimulationDefaults{
	Duration:     3600.0,
	TimeStep:     1.0,
	Symbols:      []string{"AAPL", "GOOGL"},
	HistoryLimit: 50,
}

func TestApplyDefaultsFillsZeroFields(t *testing.T) {
	config := &MSimulationConfig{}
	config.ApplyDefaults(testDefaults)

	assert.Equal(t, 3600.0, config.Duration)
	assert.Equal(t, 1.0, config.TimeStep)
	assert.Equal(t, []string{"AAPL", "GOOGL"}, config.Symbols)
	require.NotNil(t, config.Agents)
	assert.Empty(t, config.Agents)
}

func TestApplyDefaultsKeepsExplicitFields(t *testing.T) {
	config := &MSimulationConfig{
		Duration: 10.0,
		TimeStep: 0.5,
		Symbols:  []string{"MSFT"},
		Agents:   []string{"agent_1"},
	}
	config.ApplyDefaults(testDefaults)

	assert.Equal(t, 10.0, config.Duration)
	assert.Equal(t, 0.5, config.TimeStep)
	assert.Equal(t, []string{"MSFT"}, config.Symbols)
	assert.Equal(t, []string{"agent_1"}, config.Agents)
}

func TestApplyDefaultsCopiesDefaultSymbols(t *testing.T) {
	config := &MSimulationConfig{}
	config.ApplyDefaults(testDefaults)

	// Mutating the request config must not leak into the shared defaults
	config.Symbols[0] = "changed"
	assert.Equal(t, "AAPL", testDefaults.Symbols[0])
}

// -----------------------------------------------------------------------------

func TestEventEnvelopeOmitsUnsetFields(t *testing.T) {
	data, err := json.Marshal(NewSimulationStoppedEvent("sim_1"))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "simulation_stopped", decoded["type"])
	assert.Equal(t, "sim_1", decoded["simulation_id"])
	assert.NotContains(t, decoded, "data")
	assert.NotContains(t, decoded, "trade")
	assert.NotContains(t, decoded, "results")
	assert.NotContains(t, decoded, "symbol")
}

func TestHistoryEntryOmitsEmptyError(t *testing.T) {
	data, err := json.Marshal(MHistoryEntry{SimulationID: "sim_1"})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.NotContains(t, decoded, "error")
	// Results stays present even when nil, clients key off it
	assert.Contains(t, decoded, "results")
}
