package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/syssam/socialgraph/dialect"
	"github.com/syssam/socialgraph/dialect/sql"
	"github.com/syssam/socialgraph/schema/field"
)

// DefaultStringSize is the varchar size of string columns without a
// declared size.
const DefaultStringSize = 255

// mysqlTableOptions makes string comparison case-sensitive, matching
// postgres and sqlite.
const mysqlTableOptions = " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"

// columnType returns the SQL type of c on the dialect.
func columnType(d string, c *Column) string {
	if c.ColumnType != "" {
		return c.ColumnType
	}
	switch c.Type {
	case field.TypeBool:
		return "boolean"
	case field.TypeTime:
		switch d {
		case dialect.Postgres:
			return "timestamp with time zone"
		case dialect.MySQL:
			return "datetime(6)"
		}
		return "datetime"
	case field.TypeJSON, field.TypeStrings:
		switch d {
		case dialect.Postgres:
			return "jsonb"
		}
		return "json"
	case field.TypeInt, field.TypeInt64:
		if d == dialect.SQLite {
			return "integer"
		}
		return "bigint"
	case field.TypeFloat64:
		switch d {
		case dialect.Postgres:
			return "double precision"
		case dialect.MySQL:
			return "double"
		}
		return "real"
	case field.TypeEnum:
		if d == dialect.MySQL {
			vs := make([]string, len(c.Enums))
			for i, v := range c.Enums {
				vs[i] = quoteString(v)
			}
			return "enum(" + strings.Join(vs, ", ") + ")"
		}
		if d == dialect.SQLite {
			return "text"
		}
		return "varchar(" + strconv.Itoa(enumSize(c.Enums)) + ")"
	}
	size := c.Size
	switch {
	case d == dialect.SQLite:
		return "text"
	case size == math.MaxInt32 && d == dialect.MySQL:
		return "longtext"
	case size == math.MaxInt32:
		return "text"
	case size == 0:
		size = DefaultStringSize
	}
	return "varchar(" + strconv.Itoa(size) + ")"
}

func enumSize(vs []string) int {
	n := 1
	for _, v := range vs {
		n = max(n, len(v))
	}
	return n
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// literal renders a static default value.
func literal(v any) (string, bool) {
	switch v := v.(type) {
	case bool:
		return strconv.FormatBool(v), true
	case string:
		return quoteString(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	}
	return "", false
}

// ident quotes an identifier on the dialect.
func ident(d, name string) string {
	return sql.Quote(d, name)
}

func identList(d string, cs []*Column) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = ident(d, c.Name)
	}
	return strings.Join(names, ", ")
}

func columnDef(d string, c *Column) string {
	var b strings.Builder
	b.WriteString(ident(d, c.Name))
	b.WriteByte(' ')
	b.WriteString(columnType(d, c))
	if d == dialect.MySQL && c.Type == field.TypeString && c.ColumnType == "" {
		b.WriteString(" COLLATE utf8mb4_bin")
	}
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if lit, ok := literal(c.Default); ok {
		b.WriteString(" DEFAULT ")
		b.WriteString(lit)
	}
	var checks []string
	if c.Type == field.TypeEnum && d != dialect.MySQL && len(c.Enums) > 0 {
		vs := make([]string, len(c.Enums))
		for i, v := range c.Enums {
			vs[i] = quoteString(v)
		}
		checks = append(checks, fmt.Sprintf("%s IN (%s)", ident(d, c.Name), strings.Join(vs, ", ")))
	}
	if c.Check != "" {
		checks = append(checks, c.Check)
	}
	for _, chk := range checks {
		b.WriteString(" CHECK (")
		b.WriteString(chk)
		b.WriteByte(')')
	}
	return b.String()
}

func foreignKeyDef(d string, fk *ForeignKey) string {
	def := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		ident(d, fk.Symbol), identList(d, fk.Columns), ident(d, fk.RefTable.Name), identList(d, fk.RefColumns))
	if fk.OnDelete != "" {
		def += " ON DELETE " + string(fk.OnDelete)
	}
	return def
}

// CreateTable returns the statements creating t. Foreign keys are inlined
// on sqlite and returned by AddForeignKeys on the other dialects, so
// tables may reference each other in any order.
func CreateTable(d string, t *Table) []string {
	d = dialect.Normalize(d)
	defs := make([]string, 0, len(t.Columns)+len(t.Indexes)+1)
	for _, c := range t.Columns {
		defs = append(defs, columnDef(d, c))
	}
	defs = append(defs, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)", ident(d, t.PKName), identList(d, t.PrimaryKey)))
	if d == dialect.MySQL {
		for _, idx := range t.Indexes {
			kind := "INDEX"
			if idx.Unique {
				kind = "UNIQUE INDEX"
			}
			defs = append(defs, fmt.Sprintf("%s %s (%s)", kind, ident(d, idx.Name), identList(d, idx.Columns)))
		}
	}
	if d == dialect.SQLite {
		for _, fk := range t.ForeignKeys {
			defs = append(defs, foreignKeyDef(d, fk))
		}
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", ident(d, t.Name), strings.Join(defs, ",\n  "))
	if d == dialect.MySQL {
		create += mysqlTableOptions
		if t.Comment != "" {
			create += " COMMENT=" + quoteString(t.Comment)
		}
	}
	stmts := []string{create}
	// sqlite has no table comments.
	if d == dialect.Postgres && t.Comment != "" {
		stmts = append(stmts, fmt.Sprintf("COMMENT ON TABLE %s IS %s", ident(d, t.Name), quoteString(t.Comment)))
	}
	if d != dialect.MySQL {
		for _, idx := range t.Indexes {
			kind := "INDEX"
			if idx.Unique {
				kind = "UNIQUE INDEX"
			}
			stmts = append(stmts, fmt.Sprintf("CREATE %s IF NOT EXISTS %s ON %s (%s)", kind, ident(d, idx.Name), ident(d, t.Name), identList(d, idx.Columns)))
		}
	}
	return stmts
}

// AddForeignKeys returns the statements adding the foreign keys of t.
// It returns nothing on sqlite, where they are part of CREATE TABLE.
func AddForeignKeys(d string, t *Table) []string {
	d = dialect.Normalize(d)
	if d == dialect.SQLite {
		return nil
	}
	stmts := make([]string, 0, len(t.ForeignKeys))
	for _, fk := range t.ForeignKeys {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD %s", ident(d, t.Name), foreignKeyDef(d, fk)))
	}
	return stmts
}

// DDL returns the statements creating the tables.
func DDL(d string, tables []*Table) []string {
	var stmts []string
	for _, t := range tables {
		stmts = append(stmts, CreateTable(d, t)...)
	}
	for _, t := range tables {
		stmts = append(stmts, AddForeignKeys(d, t)...)
	}
	return stmts
}

// DropDDL returns the statements dropping the tables, foreign keys first.
func DropDDL(d string, tables []*Table) []string {
	d = dialect.Normalize(d)
	var stmts []string
	if d != dialect.SQLite {
		for _, t := range tables {
			for _, fk := range t.ForeignKeys {
				drop := "CONSTRAINT"
				if d == dialect.MySQL {
					drop = "FOREIGN KEY"
				}
				stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP %s %s", ident(d, t.Name), drop, ident(d, fk.Symbol)))
			}
		}
	}
	for i := len(tables) - 1; i >= 0; i-- {
		stmts = append(stmts, fmt.Sprintf("DROP TABLE IF EXISTS %s", ident(d, tables[i].Name)))
	}
	return stmts
}
