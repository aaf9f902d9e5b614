package schema

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/syssam/socialgraph/dialect"
	"github.com/syssam/socialgraph/dialect/sql"
)

// existingTables lists the tables of the current schema.
func existingTables(ctx context.Context, d string, conn dialect.ExecQuerier) (map[string]bool, error) {
	var query string
	switch dialect.Normalize(d) {
	case dialect.Postgres:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema()"
	case dialect.MySQL:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE()"
	case dialect.SQLite:
		query = "SELECT name FROM sqlite_master WHERE type = 'table'"
	default:
		return nil, fmt.Errorf("schema: unsupported dialect %q", d)
	}
	var rows sql.Rows
	if err := conn.Query(ctx, query, []any{}, &rows); err != nil {
		return nil, fmt.Errorf("schema: list tables: %w", err)
	}
	defer rows.Close()
	names := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names[name] = true
	}
	return names, rows.Err()
}

// Create creates the tables missing from the database, with their indexes
// and foreign keys. Existing tables are left untouched; use migrations to
// evolve them.
func Create(ctx context.Context, drv dialect.Driver, tables []*Table) error {
	d := drv.Dialect()
	tx, err := drv.Tx(ctx)
	if err != nil {
		return err
	}
	rollback := func(err error) error {
		if rerr := tx.Rollback(); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return err
	}
	existing, err := existingTables(ctx, d, tx)
	if err != nil {
		return rollback(err)
	}
	var created []*Table
	for _, t := range tables {
		if !existing[t.Name] {
			created = append(created, t)
		}
	}
	for _, stmt := range DDL(d, created) {
		if err := tx.Exec(ctx, stmt, []any{}, nil); err != nil {
			return rollback(fmt.Errorf("schema: %s: %w", firstLine(stmt), err))
		}
	}
	return tx.Commit()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

var titleRe = regexp.MustCompile(`[^a-z0-9]+`)

// WriteMigration writes the up and down files of a golang-migrate
// migration creating the tables into dir, and returns the path of the up
// file. The version is the UTC timestamp of now.
func WriteMigration(dir, title, d string, tables []*Table, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	title = strings.Trim(titleRe.ReplaceAllString(strings.ToLower(title), "_"), "_")
	if title == "" {
		title = "schema"
	}
	base := filepath.Join(dir, now.UTC().Format("20060102150405")+"_"+title)
	write := func(path string, stmts []string) error {
		var b strings.Builder
		for _, s := range stmts {
			b.WriteString(s)
			b.WriteString(";\n")
		}
		return os.WriteFile(path, []byte(b.String()), 0o644)
	}
	up := base + ".up.sql"
	if err := write(up, DDL(d, tables)); err != nil {
		return "", err
	}
	if err := write(base+".down.sql", DropDDL(d, tables)); err != nil {
		return "", err
	}
	return up, nil
}

// Runner applies migration files with golang-migrate.
type Runner struct {
	m      *migrate.Migrate
	logger *slog.Logger
}

// NewRunner returns a runner applying the migrations of dir to db.
// MySQL connections must enable multiStatements.
func NewRunner(db *stdsql.DB, d, dir string, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		drv database.Driver
		err error
	)
	name := dialect.Normalize(d)
	switch name {
	case dialect.Postgres:
		drv, err = migratepg.WithInstance(db, &migratepg.Config{})
	case dialect.MySQL:
		drv, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case dialect.SQLite:
		drv, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	default:
		return nil, fmt.Errorf("schema: unsupported dialect %q", d)
	}
	if err != nil {
		return nil, fmt.Errorf("schema: migration driver: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(abs), name, drv)
	if err != nil {
		return nil, fmt.Errorf("schema: migrate: %w", err)
	}
	m.Log = migrateLogger{logger}
	return &Runner{m: m, logger: logger}, nil
}

// Up applies all pending migrations.
func (r *Runner) Up() error {
	if err := r.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("schema: migrate up: %w", err)
	}
	r.logger.Info("migrations applied")
	return nil
}

// Down rolls back the given number of migrations.
func (r *Runner) Down(steps int) error {
	if steps < 1 {
		return fmt.Errorf("schema: migrate down: invalid steps %d", steps)
	}
	if err := r.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("schema: migrate down: %w", err)
	}
	r.logger.Info("migrations rolled back", "steps", steps)
	return nil
}

// Version returns the current migration version. A database without
// migrations reports version 0.
func (r *Runner) Version() (uint, bool, error) {
	v, dirty, err := r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Force sets the migration version without running migrations.
func (r *Runner) Force(version int) error {
	r.logger.Warn("forcing migration version", "version", version)
	return r.m.Force(version)
}

// Close releases the migration source and closes the database handle
// passed to NewRunner.
func (r *Runner) Close() error {
	serr, derr := r.m.Close()
	return errors.Join(serr, derr)
}

type migrateLogger struct{ l *slog.Logger }

func (l migrateLogger) Printf(format string, v ...any) {
	l.l.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (migrateLogger) Verbose() bool { return false }
