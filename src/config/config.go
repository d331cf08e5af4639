package config

import (
	"fmt"
	"os"

	"market-simulator/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 {
		if c.GrpcPort <= 1024 || c.GrpcPort > 65535 {
			return fmt.Errorf("invalid grpc port number: %d (must be between 1025 and 65535)", c.GrpcPort)
		}
		if c.GrpcPort == c.Port {
			return fmt.Errorf("grpc port and server port cannot both be %d", c.Port)
		}
	}

	// Validate Engine configuration
	if len(c.Engine.Symbols) == 0 {
		return fmt.Errorf("engine must simulate at least one symbol")
	}
	for i, symbol := range c.Engine.Symbols {
		if symbol == "" {
			return fmt.Errorf("engine symbol %d cannot be empty", i)
		}
	}
	for symbol, price := range c.Engine.InitialPrices {
		if price <= 0 {
			return fmt.Errorf("initial price for '%s' must be greater than 0", symbol)
		}
	}
	if c.Engine.TickVolatility < 0 {
		return fmt.Errorf("tick volatility cannot be negative")
	}
	if c.Engine.TimeScale < 0 {
		return fmt.Errorf("time scale cannot be negative")
	}

	// Validate Broadcast configuration
	if c.Broadcast.IntervalSeconds <= 0 {
		return fmt.Errorf("broadcast interval must be greater than 0")
	}
	if c.Broadcast.MaxTradesPerCycle <= 0 {
		return fmt.Errorf("max trades per cycle must be greater than 0")
	}

	// Validate Simulation defaults
	if c.Simulation.Duration <= 0 {
		return fmt.Errorf("default simulation duration must be greater than 0")
	}
	if c.Simulation.TimeStep <= 0 {
		return fmt.Errorf("default simulation time step must be greater than 0")
	}
	if len(c.Simulation.Symbols) == 0 {
		return fmt.Errorf("at least one default simulation symbol must be configured")
	}
	if c.Simulation.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be greater than 0")
	}

	// Validate Storage configuration
	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}
	if c.Storage.RetentionDays < 0 {
		return fmt.Errorf("retention days cannot be negative")
	}

	// Validate Agents configuration
	for i, agent := range c.Agents {
		if agent.ID == "" {
			return fmt.Errorf("agent %d must have an id", i)
		}
		if agent.Name == "" {
			return fmt.Errorf("agent '%s' must have a name", agent.ID)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
