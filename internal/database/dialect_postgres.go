package database

import (
	"errors"
	"strconv"

	"github.com/lib/pq"
)

// uniqueViolation is SQLSTATE 23505.
const uniqueViolation = pq.ErrorCode("23505")

type postgresDialect struct{}

func (postgresDialect) DriverName() string { return "postgres" }

func (postgresDialect) Bind(i int) string { return "$" + strconv.Itoa(i) }

func (postgresDialect) Pragmas() []string { return nil }

func (postgresDialect) IdentityColumn() string { return "BIGSERIAL PRIMARY KEY" }

// PayloadColumn stores results as JSONB so history can be queried in place.
func (postgresDialect) PayloadColumn() string { return "JSONB" }

func (postgresDialect) UniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
