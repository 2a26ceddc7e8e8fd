package config

import (
	"fmt"
	"os"
	"strings"

	"nba-stats-explorer/src/models"
	"nba-stats-explorer/src/utils"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from a YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	return Parse(data)
}

// -----------------------------------------------------------------------------

// Parse builds a Config from YAML bytes, filling defaults before validation
func Parse(data []byte) (*Config, error) {
	modelConfig := Defaults()
	if err := yaml.Unmarshal(data, modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: modelConfig}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Defaults returns the configuration used when a key is absent from the file.
func Defaults() *models.MConfig {
	return &models.MConfig{
		Name:     "nba-stats-explorer",
		Host:     "0.0.0.0",
		Port:     8501,
		LogLevel: "INFO",
		GrpcHost: "127.0.0.1",
		GrpcPort: 0,
		Storage: models.MStorageConfig{
			DBType:    "memory",
			KeyPrefix: "nba-stats-explorer",
		},
		Network: models.MNetworkConfig{
			RequestTimeout: 30,
		},
		Source: models.MSourceConfig{
			Name:               "basketball-reference",
			URLTemplate:        "https://www.basketball-reference.com/leagues/NBA_%d_per_game.html",
			MinSeason:          utils.DefaultMinSeason,
			MaxSeason:          utils.DefaultMaxSeason,
			DefaultSeason:      utils.DefaultMaxSeason,
			RankColumn:         "Rk",
			HeaderMarkerColumn: "Age",
			PlayerColumn:       "Player",
			PositionColumn:     "Pos",
			TeamColumn:         "Tm",
			PassthroughColumns: []string{"Awards"},
			HeaderAliases:      map[string]string{"Team": "Tm"},
			PointsColumn:       "PTS",
			GamesColumn:        "G",
		},
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.MemoryMB < 0 {
		return fmt.Errorf("memory limit cannot be negative")
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d (0 disables the control service)", c.GrpcPort)
	}

	// Storage
	switch c.Storage.DBType {
	case "memory":
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("connection string cannot be empty for postgres")
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("redis address cannot be empty for redis")
		}
	case "":
		return fmt.Errorf("database type cannot be empty")
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}
	if c.Storage.TTLSeconds < 0 {
		return fmt.Errorf("ttl seconds cannot be negative")
	}

	// Network
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}

	// Source
	src := c.Source
	if !strings.Contains(src.URLTemplate, "%d") {
		return fmt.Errorf("source url template must contain %%d for the season")
	}
	if src.MinSeason <= 0 || src.MaxSeason < src.MinSeason {
		return fmt.Errorf("invalid season range %d-%d", src.MinSeason, src.MaxSeason)
	}
	if src.DefaultSeason < src.MinSeason || src.DefaultSeason > src.MaxSeason {
		return fmt.Errorf("default season %d outside range %d-%d", src.DefaultSeason, src.MinSeason, src.MaxSeason)
	}
	for _, col := range []string{src.RankColumn, src.HeaderMarkerColumn, src.PlayerColumn, src.PositionColumn, src.TeamColumn, src.PointsColumn, src.GamesColumn} {
		if col == "" {
			return fmt.Errorf("source column names cannot be empty")
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
