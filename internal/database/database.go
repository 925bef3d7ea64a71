// Package database persists consumable cost profiles and recompute history
// in SQLite or PostgreSQL.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lawnchairsociety/killrate/internal/logger"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a profile or run does not exist.
var ErrNotFound = errors.New("not found")

// Database wraps the SQL connection and provides persistence operations.
type Database struct {
	db      *sql.DB
	dialect Dialect
	stmts   *statements
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*Database, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig connects using cfg.Driver and runs migrations.
func OpenWithConfig(cfg Config) (*Database, error) {
	dialect, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.Postgres.DSN()
	if _, ok := dialect.(sqliteDialect); ok {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, ok := dialect.(postgresDialect); ok {
		if cfg.Postgres.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		}
		if cfg.Postgres.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		}
		if cfg.Postgres.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	for _, stmt := range dialect.Pragmas() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init %q: %w", stmt, err)
		}
	}

	d := &Database{db: db, dialect: dialect, stmts: &statements{dialect: dialect}}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug("Database opened", "driver", dialect.DriverName())
	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// migrate creates the schema if it doesn't exist.
func (d *Database) migrate() error {
	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS rate_profiles (
			id %s,
			name TEXT UNIQUE NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`, d.dialect.IdentityColumn()),

		`CREATE TABLE IF NOT EXISTS rate_costs (
			profile_id INTEGER NOT NULL REFERENCES rate_profiles(id) ON DELETE CASCADE,
			consumable_id TEXT NOT NULL,
			seconds DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (profile_id, consumable_id)
		)`,

		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP,
			seed BIGINT NOT NULL,
			targets INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			cancelled INTEGER NOT NULL DEFAULT 0
		)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS run_results (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			result_key TEXT NOT NULL,
			success INTEGER NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			kill_time_s DOUBLE PRECISION,
			xp_per_second DOUBLE PRECISION,
			gp_per_second DOUBLE PRECISION,
			factor DOUBLE PRECISION NOT NULL DEFAULT 1,
			payload %s NOT NULL,
			PRIMARY KEY (run_id, result_key)
		)`, d.dialect.PayloadColumn()),

		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// DB returns the underlying sql.DB for advanced operations.
func (d *Database) DB() *sql.DB {
	return d.db
}

// bind rewrites a ? query for the open dialect.
func (d *Database) bind(query string) string {
	return d.stmts.bind(query)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
