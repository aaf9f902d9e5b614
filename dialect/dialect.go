package dialect

import (
	"context"
	"strings"
)

// Dialect names for external usage.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Normalize maps driver names and their aliases to a dialect name.
// The pgx standard-library driver is registered as "pgx" and speaks the
// postgres dialect; "sqlite3" is accepted as a SQLite alias.
func Normalize(name string) string {
	switch n := strings.ToLower(name); {
	case n == "pgx" || strings.HasPrefix(n, Postgres) || n == "postgresql":
		return Postgres
	case strings.HasPrefix(n, SQLite):
		return SQLite
	case strings.HasPrefix(n, MySQL):
		return MySQL
	default:
		return n
	}
}

// ExecQuerier wraps the 2 database operations.
type ExecQuerier interface {
	// Exec executes a query that does not return records. For example, in SQL, INSERT or UPDATE.
	// It scans the result into the pointer v. For SQL drivers, it is dialect/sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows, typically a SELECT in SQL.
	// It scans the result into the pointer v. For SQL drivers, it is *dialect/sql.Rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for the
// data-access layer.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	// The provided context is used until the transaction is committed or rolled back.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in transaction.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

type nopTx struct {
	Driver
}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

// NopTx returns a Tx with a no-op Commit / Rollback methods wrapping
// the given driver. It is used to run nested operations inside an
// already-open transaction.
func NopTx(d Driver) Tx {
	return nopTx{d}
}
