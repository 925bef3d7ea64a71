package database

import "fmt"

// Dialect captures what differs between the SQLite and PostgreSQL stores.
type Dialect interface {
	DriverName() string

	// Bind renders the i-th (1-based) query parameter.
	Bind(i int) string

	// Pragmas run once per pool before migrating.
	Pragmas() []string

	// IdentityColumn declares rate_profiles.id.
	IdentityColumn() string

	// PayloadColumn is the column type holding a serialized result.
	PayloadColumn() string

	// UniqueViolation reports whether err is a duplicate-key failure.
	UniqueViolation(err error) bool
}

// DialectType names a supported driver.
type DialectType string

const (
	DialectSQLite   DialectType = "sqlite"
	DialectPostgres DialectType = "postgres"
)

// dialectFor returns the dialect of driver. The empty driver is SQLite.
func dialectFor(driver string) (Dialect, error) {
	switch DialectType(driver) {
	case DialectSQLite, "":
		return sqliteDialect{}, nil
	case DialectPostgres:
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
