package database

import "strings"

type sqliteDialect struct{}

func (sqliteDialect) DriverName() string { return "sqlite" }

func (sqliteDialect) Bind(int) string { return "?" }

// Pragmas turn on cascades from rate_profiles to rate_costs and from runs to
// run_results, and let the feed and the CLI share the file.
func (sqliteDialect) Pragmas() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (sqliteDialect) IdentityColumn() string { return "INTEGER PRIMARY KEY AUTOINCREMENT" }

func (sqliteDialect) PayloadColumn() string { return "TEXT" }

func (sqliteDialect) UniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
