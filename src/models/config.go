package models

// MConfig is the root service configuration loaded from the YAML file
type MConfig struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GrpcHost string `yaml:"grpc_host"`
	GrpcPort int    `yaml:"grpc_port"`
	LogLevel string `yaml:"log_level"`

	Engine     MEngineConfig       `yaml:"engine"`
	Broadcast  MBroadcastConfig    `yaml:"broadcast"`
	Simulation MSimulationDefaults `yaml:"simulation"`
	Storage    MStorageConfig      `yaml:"storage"`
	Agents     []MAgentConfig      `yaml:"agents"`
}

// MEngineConfig describes the market engine started at boot
type MEngineConfig struct {
	Symbols          []string           `yaml:"symbols"`
	InitialPrices    map[string]float64 `yaml:"initial_prices"`
	TickVolatility   float64            `yaml:"tick_volatility"`
	TimeScale        float64            `yaml:"time_scale"`
	TradeLogCapacity int                `yaml:"trade_log_capacity"`
	CalendarMIC      string             `yaml:"calendar_mic"`
}

// MBroadcastConfig tunes the periodic websocket broadcast cycle
type MBroadcastConfig struct {
	IntervalSeconds   float64 `yaml:"interval_seconds"`
	MaxTradesPerCycle int     `yaml:"max_trades_per_cycle"`
}

// MSimulationDefaults fills the gaps of partial simulation start requests
type MSimulationDefaults struct {
	Duration     float64  `yaml:"duration"`
	TimeStep     float64  `yaml:"time_step"`
	Symbols      []string `yaml:"symbols"`
	HistoryLimit int      `yaml:"history_limit"`
}

// MStorageConfig selects and configures the trade journal backend
type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	RetentionDays      int    `yaml:"retention_days"`
}

// MAgentConfig declares one trading agent registered at boot
type MAgentConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}
