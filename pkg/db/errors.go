package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"

	pgUniqueViolation = "23505"
)

// IsUniqueViolation reports whether err is a unique constraint failure from
// either Postgres or SQLite. When targets are given one of them must match:
// Postgres compares the constraint name, SQLite searches its message, which
// names the failing columns ("users.email") rather than the index.
func IsUniqueViolation(err error, targets ...string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return false
		}
		return matchesTarget(targets, func(target string) bool {
			return pgErr.ConstraintName == target
		})
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	return matchesTarget(targets, func(target string) bool {
		return strings.Contains(msg, target)
	})
}

func matchesTarget(targets []string, match func(string) bool) bool {
	constrained := false
	for _, target := range targets {
		if target == "" {
			continue
		}
		constrained = true
		if match(target) {
			return true
		}
	}
	return !constrained
}
