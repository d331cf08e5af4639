package config

import (
	"os"
	"path/filepath"
	"testing"

	"market-simulator/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

const validYAML = `
name: "market-simulator"
host: "0.0.0.0"
port: 8000
grpc_port: 50051
log_level: "info"

engine:
  symbols: ["AAPL", "GOOGL"]
  initial_prices:
    AAPL: 150.0
  tick_volatility: 0.002
  time_scale: 1.0
  calendar_mic: "xnys"

broadcast:
  interval_seconds: 1.0
  max_trades_per_cycle: 50

simulation:
  duration: 3600.0
  time_step: 1.0
  symbols: ["AAPL"]
  history_limit: 50

storage:
  db_type: "sqlite"
  db_path: "test.db"
  retention_days: 30

agents:
  - id: "mm_1"
    name: "Market Maker"
    type: "market_maker"
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// -----------------------------------------------------------------------------

func TestNewConfigLoadsValidFile(t *testing.T) {
	conf, err := NewConfig(writeConfigFile(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "market-simulator", conf.Name)
	assert.Equal(t, 8000, conf.Port)
	assert.Equal(t, 50051, conf.GrpcPort)
	assert.Equal(t, []string{"AAPL", "GOOGL"}, conf.Engine.Symbols)
	assert.Equal(t, 150.0, conf.Engine.InitialPrices["AAPL"])
	assert.Equal(t, 1.0, conf.Broadcast.IntervalSeconds)
	assert.Equal(t, "sqlite", conf.Storage.DBType)
	require.Len(t, conf.Agents, 1)
	assert.Equal(t, "mm_1", conf.Agents[0].ID)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestNewConfigMalformedYAML(t *testing.T) {
	_, err := NewConfig(writeConfigFile(t, "name: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

// -----------------------------------------------------------------------------

func baseConfig() *Config {
	return &Config{MConfig: &models.MConfig{
		Name:     "test",
		Host:     "127.0.0.1",
		Port:     8000,
		GrpcPort: 50051,
		Engine: models.MEngineConfig{
			Symbols:        []string{"AAPL"},
			InitialPrices:  map[string]float64{"AAPL": 100.0},
			TickVolatility: 0.002,
			TimeScale:      1.0,
		},
		Broadcast: models.MBroadcastConfig{IntervalSeconds: 1.0, MaxTradesPerCycle: 50},
		Simulation: models.MSimulationDefaults{
			Duration:     3600.0,
			TimeStep:     1.0,
			Symbols:      []string{"AAPL"},
			HistoryLimit: 50,
		},
		Storage: models.MStorageConfig{DBType: "sqlite", DBPath: "test.db", RetentionDays: 30},
	}}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty name", func(c *Config) { c.Name = "" }, "application name"},
		{"empty host", func(c *Config) { c.Host = "" }, "server host"},
		{"privileged port", func(c *Config) { c.Port = 80 }, "invalid server port"},
		{"grpc port clash", func(c *Config) { c.GrpcPort = c.Port }, "grpc port"},
		{"bad grpc port", func(c *Config) { c.GrpcPort = 100 }, "invalid grpc port"},
		{"no engine symbols", func(c *Config) { c.Engine.Symbols = nil }, "at least one symbol"},
		{"empty engine symbol", func(c *Config) { c.Engine.Symbols = []string{""} }, "cannot be empty"},
		{"non-positive initial price", func(c *Config) { c.Engine.InitialPrices["AAPL"] = 0 }, "initial price"},
		{"negative volatility", func(c *Config) { c.Engine.TickVolatility = -0.1 }, "tick volatility"},
		{"negative time scale", func(c *Config) { c.Engine.TimeScale = -1 }, "time scale"},
		{"zero broadcast interval", func(c *Config) { c.Broadcast.IntervalSeconds = 0 }, "broadcast interval"},
		{"zero max trades", func(c *Config) { c.Broadcast.MaxTradesPerCycle = 0 }, "max trades"},
		{"zero default duration", func(c *Config) { c.Simulation.Duration = 0 }, "duration"},
		{"zero default time step", func(c *Config) { c.Simulation.TimeStep = 0 }, "time step"},
		{"no default symbols", func(c *Config) { c.Simulation.Symbols = nil }, "simulation symbol"},
		{"zero history limit", func(c *Config) { c.Simulation.HistoryLimit = 0 }, "history limit"},
		{"empty db type", func(c *Config) { c.Storage.DBType = "" }, "database type"},
		{"sqlite without path", func(c *Config) { c.Storage.DBPath = "" }, "database path"},
		{"postgres without conn string", func(c *Config) {
			c.Storage.DBType = "postgres"
			c.Storage.DBConnectionString = ""
		}, "connection string"},
		{"negative retention", func(c *Config) { c.Storage.RetentionDays = -1 }, "retention days"},
		{"agent without id", func(c *Config) {
			c.Agents = []models.MAgentConfig{{Name: "x"}}
		}, "must have an id"},
		{"agent without name", func(c *Config) {
			c.Agents = []models.MAgentConfig{{ID: "x"}}
		}, "must have a name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conf := baseConfig()
			tc.mutate(conf)
			err := conf.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidateAcceptsDisabledGrpc(t *testing.T) {
	conf := baseConfig()
	conf.GrpcPort = 0
	assert.NoError(t, conf.Validate())
}

func TestValidateAcceptsNoneStorage(t *testing.T) {
	conf := baseConfig()
	conf.Storage = models.MStorageConfig{DBType: "none"}
	assert.NoError(t, conf.Validate())
}

// -----------------------------------------------------------------------------

func TestSaveRoundTrip(t *testing.T) {
	conf := baseConfig()
	path := filepath.Join(t.TempDir(), "saved.yaml")

	require.NoError(t, conf.Save(path))

	reloaded, err := NewConfig(path)
	require.NoError(t, err)
	assert.Equal(t, conf.Name, reloaded.Name)
	assert.Equal(t, conf.Engine.Symbols, reloaded.Engine.Symbols)
	assert.Equal(t, conf.Storage.DBPath, reloaded.Storage.DBPath)
}
