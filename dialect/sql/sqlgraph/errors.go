package sqlgraph

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/dialect/sql"
	"github.com/syssam/socialgraph/graph"
)

// PostgreSQL SQLSTATE codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgSerialization       = "40001"
	pgDeadlock            = "40P01"
	pgQueryCanceled       = "57014"
	pgLockNotAvailable    = "55P03"
	pgConnectionClass     = "08"
)

// MySQL error numbers.
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
	mysqlLockWaitTimeout        = 1205
	mysqlDeadlock               = 1213
	mysqlTooManyConnections     = 1040
	mysqlConnError              = 2002
	mysqlConnHostError          = 2003
	mysqlServerGone             = 2006
	mysqlServerLost             = 2013
)

// storageError is the driver-independent view of a storage error.
type storageError struct {
	kind       socialgraph.ConstraintKind // empty if not a constraint violation
	infra      socialgraph.InfraKind      // empty if not an infrastructure failure
	constraint string                     // constraint name, if reported
	table      string                     // table, if reported
	columns    []string                   // columns, if reported
}

var (
	mysqlKey     = regexp.MustCompile(`for key '([^']+)'`)
	sqliteUnique = regexp.MustCompile(`UNIQUE constraint failed: ([^(]+)`)
)

// inspect extracts the storage error details from the supported drivers.
func inspect(err error) (storageError, bool) {
	var (
		pqErr     *pq.Error
		pgErr     *pgconn.PgError
		myErr     *mysql.MySQLError
		liteErr   *sqlite.Error
		se        storageError
		sqlState  string
		recognize bool
	)
	switch {
	case errors.As(err, &pqErr):
		sqlState, se.constraint, se.table, recognize = string(pqErr.Code), pqErr.Constraint, pqErr.Table, true
	case errors.As(err, &pgErr):
		sqlState, se.constraint, se.table, recognize = pgErr.Code, pgErr.ConstraintName, pgErr.TableName, true
	case errors.As(err, &myErr):
		recognize = true
		switch myErr.Number {
		case mysqlDuplicateEntry:
			se.kind = socialgraph.UniqueConstraint
			if m := mysqlKey.FindStringSubmatch(myErr.Message); m != nil {
				// MySQL 8 reports the key as "<table>.<key>".
				name := m[1]
				if i := strings.LastIndexByte(name, '.'); i >= 0 {
					se.table, name = name[:i], name[i+1:]
				}
				se.constraint = name
			}
		case mysqlForeignKeyParent, mysqlForeignKeyChild:
			se.kind = socialgraph.ForeignKeyConstraint
		case mysqlCheckConstraintViolate:
			se.kind = socialgraph.CheckConstraint
		case mysqlLockWaitTimeout:
			se.infra = socialgraph.InfraTimeout
		case mysqlDeadlock:
			se.infra = socialgraph.InfraConflict
		case mysqlTooManyConnections, mysqlConnError, mysqlConnHostError, mysqlServerGone, mysqlServerLost:
			se.infra = socialgraph.InfraConnection
		default:
			recognize = false
		}
	case errors.As(err, &liteErr):
		recognize = true
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			se.kind = socialgraph.UniqueConstraint
			if m := sqliteUnique.FindStringSubmatch(liteErr.Error()); m != nil {
				for _, c := range strings.Split(m[1], ",") {
					c = strings.TrimSpace(c)
					if i := strings.LastIndexByte(c, '.'); i >= 0 {
						se.table, c = c[:i], c[i+1:]
					}
					se.columns = append(se.columns, c)
				}
			}
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			se.kind = socialgraph.ForeignKeyConstraint
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			se.kind = socialgraph.CheckConstraint
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_BUSY_SNAPSHOT:
			se.infra = socialgraph.InfraConflict
		default:
			recognize = false
		}
	}
	if sqlState != "" {
		switch {
		case sqlState == pgUniqueViolation:
			se.kind = socialgraph.UniqueConstraint
		case sqlState == pgForeignKeyViolation:
			se.kind = socialgraph.ForeignKeyConstraint
		case sqlState == pgCheckViolation:
			se.kind = socialgraph.CheckConstraint
		case sqlState == pgSerialization, sqlState == pgDeadlock:
			se.infra = socialgraph.InfraConflict
		case sqlState == pgQueryCanceled, sqlState == pgLockNotAvailable:
			se.infra = socialgraph.InfraTimeout
		case strings.HasPrefix(sqlState, pgConnectionClass):
			se.infra = socialgraph.InfraConnection
		default:
			recognize = false
		}
	}
	return se, recognize
}

// Classify maps a storage error to the error taxonomy of the root package.
// Unique violations are resolved against the registry to name the model,
// constraint and fields. Unrecognized errors are returned unchanged.
func Classify(g *graph.Graph, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, sql.ErrTxAcquire):
		return socialgraph.NewInfraError(socialgraph.InfraTxAcquire, err)
	case errors.Is(err, context.DeadlineExceeded):
		return socialgraph.NewInfraError(socialgraph.InfraTimeout, err)
	case errors.Is(err, driver.ErrBadConn):
		return socialgraph.NewInfraError(socialgraph.InfraConnection, err)
	case socialgraph.IsConstraintError(err), socialgraph.IsInfraError(err):
		return err
	}
	se, ok := inspect(err)
	if !ok {
		return err
	}
	if se.infra != "" {
		return socialgraph.NewInfraError(se.infra, err)
	}
	var (
		m   *graph.Model
		idx *graph.Index
	)
	if g != nil {
		switch {
		case se.constraint != "":
			m, idx, ok = g.Constraint(se.constraint)
		case len(se.columns) > 0:
			m, idx, ok = g.UniqueByColumns(se.table, se.columns)
		default:
			ok = false
		}
	}
	if !ok {
		if se.kind == socialgraph.UniqueConstraint {
			return socialgraph.NewUniqueConstraintError("", se.constraint, se.columns, err)
		}
		return socialgraph.NewConstraintErrorFor(se.kind, "", se.constraint, nil, err)
	}
	return socialgraph.NewConstraintErrorFor(se.kind, m.Name, idx.Name, idx.FieldNames(), err)
}

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	if socialgraph.IsConstraintError(err) {
		return true
	}
	se, ok := inspect(err)
	return ok && se.kind != ""
}

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
// e.g. duplicate value in unique index.
func IsUniqueConstraintError(err error) bool {
	if socialgraph.IsUniqueConstraintError(err) {
		return true
	}
	se, ok := inspect(err)
	return ok && se.kind == socialgraph.UniqueConstraint
}

// IsForeignKeyConstraintError reports if the error resulted from a database foreign-key constraint violation.
// e.g. parent row does not exist.
func IsForeignKeyConstraintError(err error) bool {
	if e, ok := socialgraph.AsConstraintError(err); ok {
		return e.Kind == socialgraph.ForeignKeyConstraint
	}
	se, ok := inspect(err)
	return ok && se.kind == socialgraph.ForeignKeyConstraint
}
