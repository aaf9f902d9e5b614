// Package sql provides SQL query building primitives and the database/sql
// based driver.
//
// # Builder Types
//
//   - Builder: low-level SQL string builder with identifier quoting and placeholders
//   - Selector: SELECT query builder with joins, predicates, grouping and pagination
//   - InsertBuilder: multi-row INSERT with RETURNING and conflict skipping
//   - UpdateBuilder: UPDATE with value, NULL and arithmetic assignments
//   - DeleteBuilder: DELETE with WHERE predicates
//
// Sub-queries, joins and predicates are rendered into one Builder, so
// PostgreSQL placeholders ($1, $2, ...) are numbered across the statement.
//
// # Dialect Support
//
//	sql.Dialect(dialect.Postgres).
//	    Select("id", "handle").
//	    From(sql.Table("profiles")).
//	    Where(sql.EQ("type", "ARTIST"))
//
// Identifiers are quoted with double quotes on PostgreSQL and SQLite and
// with backticks on MySQL. Qualified columns ("profiles.handle") are quoted
// part by part.
//
// # Predicates
//
//	sql.EQ("handle", "artist1")          // "handle" = $1
//	sql.In("type", "ARTIST", "GROUP")    // "type" IN ($1, $2)
//	sql.In("type")                       // FALSE
//	sql.IsNull("active_profile_id")      // "active_profile_id" IS NULL
//	sql.HasPrefix("handle", "art")       // LIKE on PostgreSQL/MySQL, GLOB on SQLite
//	sql.ContainsFold("display_name", "x") // ILIKE on PostgreSQL
//
// LIKE patterns are escaped, so user input never acts as a wildcard.
//
// # Ordering
//
// Asc and Desc place NULL values last and first respectively on every
// dialect; OrderNulls sets the placement explicitly.
//
// # Driver
//
// Driver wraps a *sql.DB. BeginTx starts a transaction on a pooled
// connection; AcquireTx bounds the time spent waiting for that connection.
// StatsDriver and DebugDriver wrap a driver with query statistics and
// statement logging.
package sql
