package database

import (
	"fmt"
	"time"

	"github.com/lawnchairsociety/killrate/internal/config"
)

// Config selects the store for cost profiles and run history.
type Config struct {
	// Driver is "sqlite" or "postgres".
	Driver string

	SQLitePath string

	Postgres PostgresConfig
}

// PostgresConfig holds PostgreSQL-specific configuration.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns a Config for a SQLite file at sqlitePath.
func DefaultConfig(sqlitePath string) Config {
	return Config{
		Driver:     string(DialectSQLite),
		SQLitePath: sqlitePath,
	}
}

// DefaultPostgresConfig returns PostgresConfig with recommended pool settings.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:            "localhost",
		Port:            5432,
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DSN returns the lib/pq connection string.
func (p PostgresConfig) DSN() string {
	sslmode := p.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, sslmode)
}

// FromSettings builds a connection config from the database section of
// killrate.yaml. Unset postgres fields keep DefaultPostgresConfig values.
func FromSettings(dc config.DatabaseConfig) Config {
	cfg := DefaultConfig(dc.SQLitePath)
	if dc.Driver == "" {
		return cfg
	}
	cfg.Driver = dc.Driver
	if dc.Driver != string(DialectPostgres) {
		return cfg
	}

	pg := DefaultPostgresConfig()
	if dc.PostgresHost != "" {
		pg.Host = dc.PostgresHost
	}
	if dc.PostgresPort > 0 {
		pg.Port = dc.PostgresPort
	}
	if dc.PostgresSSLMode != "" {
		pg.SSLMode = dc.PostgresSSLMode
	}
	pg.User = dc.PostgresUser
	pg.Password = dc.PostgresPassword
	pg.Database = dc.PostgresDatabase
	cfg.Postgres = pg
	return cfg
}
