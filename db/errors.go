package db

import (
	"errors"
	"regexp"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned by mutations whose target row does not exist.
// Single-row getters return nil, nil instead.
var ErrNotFound = errors.New("record not found")

const (
	mysqlDupEntry     = 1062
	pgUniqueViolation = "23505"
)

// DupKeyError is a uniqueness violation reported by stores that check
// constraints themselves.
type DupKeyError struct {
	Key string
}

func (e *DupKeyError) Error() string {
	return "duplicate key " + e.Key
}

var mysqlDupKeyPattern = regexp.MustCompile(`for key '([^']+)'`)

// IsDupKeyErr reports whether err is a unique constraint violation from
// either supported database.
func IsDupKeyErr(err error) bool {
	var dupErr *DupKeyError
	if errors.As(err, &dupErr) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDupEntry
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

// GetDupKey returns the name of the violated unique index, or "".
func GetDupKey(err error) string {
	var dupErr *DupKeyError
	if errors.As(err, &dupErr) {
		return dupErr.Key
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if m := mysqlDupKeyPattern.FindStringSubmatch(mysqlErr.Message); m != nil {
			return m[1]
		}
		return ""
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
