// Package config loads simulator settings from YAML with KILLRATE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds every setting a recompute needs besides the build and reference data.
type Config struct {
	Simulation  SimulationConfig  `yaml:"simulation"`
	Loot        LootConfig        `yaml:"loot"`
	Pets        PetConfig         `yaml:"pets"`
	Consumables ConsumablesConfig `yaml:"consumables"`
	Data        DataConfig        `yaml:"data"`
	Database    DatabaseConfig    `yaml:"database"`
	Feed        FeedConfig        `yaml:"feed"`
}

// SimulationConfig controls the driver.
type SimulationConfig struct {
	// Trials is the number of kills+deaths requested per target.
	Trials int `yaml:"trials" env:"KILLRATE_TRIALS"`

	// TickLimit is the per-trial tick budget; the run stops at Trials*TickLimit ticks.
	TickLimit int `yaml:"tick_limit" env:"KILLRATE_TICK_LIMIT"`

	// Seed fixes the random source. 0 means crypto-seeded.
	Seed int64 `yaml:"seed" env:"KILLRATE_SEED"`

	// HorizonSeconds is the time window for cumulative probabilities.
	// 0 or negative selects the indefinite (per-kill rate) mode.
	HorizonSeconds float64 `yaml:"horizon_seconds" env:"KILLRATE_HORIZON_SECONDS"`
}

// LootConfig holds loot valuation policy.
type LootConfig struct {
	SellBones     bool   `yaml:"sell_bones" env:"KILLRATE_SELL_BONES"`
	ConvertShards bool   `yaml:"convert_shards" env:"KILLRATE_CONVERT_SHARDS"`
	SelectedDrop  string `yaml:"selected_drop" env:"KILLRATE_SELECTED_DROP"`
}

// PetConfig selects the skill whose pet chance is reported.
type PetConfig struct {
	Skill string `yaml:"skill" env:"KILLRATE_PET_SKILL"`
}

// ConsumablesConfig controls amortization.
type ConsumablesConfig struct {
	ApplyRates bool `yaml:"apply_rates" env:"KILLRATE_APPLY_RATES"`

	// RatesFile is a JSON export of seconds-per-unit costs. Optional.
	RatesFile string `yaml:"rates_file" env:"KILLRATE_RATES_FILE"`

	// Profile names the stored cost profile in the database. Optional.
	Profile string `yaml:"profile" env:"KILLRATE_RATES_PROFILE"`
}

// DataConfig points at the reference data and the build snapshot.
type DataConfig struct {
	Dir       string `yaml:"dir" env:"KILLRATE_DATA_DIR"`
	BuildFile string `yaml:"build_file" env:"KILLRATE_BUILD_FILE"`
}

// DatabaseConfig selects the persistence backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver     string `yaml:"driver" env:"KILLRATE_DB_DRIVER"`
	SQLitePath string `yaml:"sqlite_path" env:"KILLRATE_DB_PATH"`

	PostgresHost     string `yaml:"postgres_host" env:"KILLRATE_PG_HOST"`
	PostgresPort     int    `yaml:"postgres_port" env:"KILLRATE_PG_PORT"`
	PostgresUser     string `yaml:"postgres_user" env:"KILLRATE_PG_USER"`
	PostgresPassword string `yaml:"postgres_password" env:"KILLRATE_PG_PASSWORD"`
	PostgresDatabase string `yaml:"postgres_database" env:"KILLRATE_PG_DATABASE"`
	PostgresSSLMode  string `yaml:"postgres_sslmode" env:"KILLRATE_PG_SSLMODE"`
}

// FeedConfig holds WebSocket result-feed settings.
type FeedConfig struct {
	Address string `yaml:"address" env:"KILLRATE_FEED_ADDRESS"`

	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy. "*" allows all origins.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum inbound WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`

	// MaxPerIP and MaxTotal cap concurrent feed connections. 0 means unlimited.
	MaxPerIP int `yaml:"max_per_ip" env:"KILLRATE_FEED_MAX_PER_IP"`
	MaxTotal int `yaml:"max_total" env:"KILLRATE_FEED_MAX_TOTAL"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Trials:         1000,
			TickLimit:      1000,
			HorizonSeconds: 3600,
		},
		Pets: PetConfig{
			Skill: "Attack",
		},
		Data: DataConfig{
			Dir:       "data",
			BuildFile: "data/build.yaml",
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			SQLitePath:      "data/killrate.db",
			PostgresHost:    "localhost",
			PostgresPort:    5432,
			PostgresSSLMode: "disable",
		},
		Feed: FeedConfig{
			Address:        ":4480",
			AllowedOrigins: []string{},
			MaxMessageSize: 64 * 1024,
			MaxPerIP:       5,
			MaxTotal:       100,
		},
	}
}

// LoadConfig loads configuration from a YAML file, then applies environment
// overrides. A missing file yields defaults; a malformed one is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return DefaultConfig(), fmt.Errorf("failed to parse config YAML: %w", err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the driver cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Simulation.Trials <= 0 {
		errs = append(errs, fmt.Errorf("simulation.trials must be positive, got %d", c.Simulation.Trials))
	}
	if c.Simulation.TickLimit <= 0 {
		errs = append(errs, fmt.Errorf("simulation.tick_limit must be positive, got %d", c.Simulation.TickLimit))
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver))
	}
	return errors.Join(errs...)
}

// Indefinite reports whether probabilities use the per-kill rate mode.
func (s SimulationConfig) Indefinite() bool {
	return s.HorizonSeconds <= 0
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
func (c *FeedConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // non-browser client
	}

	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
