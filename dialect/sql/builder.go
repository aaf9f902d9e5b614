package sql

import (
	"strconv"
	"strings"

	"github.com/syssam/socialgraph/dialect"
)

// Querier wraps the basic Query method that is implemented
// by the different builders in this file.
type Querier interface {
	// Query returns the query representation of the element
	// and its arguments (if any).
	Query() (string, []any)
}

// builder is implemented by every element that renders itself into a
// shared Builder, so placeholders are numbered across sub-queries.
type builder interface {
	build(*Builder)
}

// Builder is the base query builder for the sql dsl.
type Builder struct {
	sb      strings.Builder
	dialect string
	args    []any
	total   int
}

func newBuilder(d string) *Builder {
	return &Builder{dialect: d}
}

// Dialect returns the dialect of the builder.
func (b *Builder) Dialect() string {
	return b.dialect
}

// String returns the accumulated string.
func (b *Builder) String() string {
	return b.sb.String()
}

// Query implements the Querier interface.
func (b *Builder) Query() (string, []any) {
	return b.String(), b.args
}

// WriteString writes the given string as-is.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte writes the given byte.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Pad adds a space to the query.
func (b *Builder) Pad() *Builder {
	return b.WriteByte(' ')
}

// Comma adds a comma to the query.
func (b *Builder) Comma() *Builder {
	return b.WriteString(", ")
}

// Quote quotes the given identifier with the dialect quote character.
// Qualified identifiers ("table.column") are quoted part by part, and
// expressions (containing parentheses or spaces) are returned as-is.
func (b *Builder) Quote(ident string) string {
	return quote(b.dialect, ident)
}

func quote(d, ident string) string {
	if ident == "*" || ident == "" || strings.ContainsAny(ident, "( '\"`") {
		return ident
	}
	q := `"`
	if d == dialect.MySQL {
		q = "`"
	}
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		if p != "*" {
			parts[i] = q + p + q
		}
	}
	return strings.Join(parts, ".")
}

// Quote quotes an identifier on the dialect d.
func Quote(d, ident string) string {
	return quote(dialect.Normalize(d), ident)
}

// Ident writes the quoted identifier.
func (b *Builder) Ident(s string) *Builder {
	return b.WriteString(b.Quote(s))
}

// IdentComma writes the quoted identifiers separated by commas.
func (b *Builder) IdentComma(s ...string) *Builder {
	for i := range s {
		if i > 0 {
			b.Comma()
		}
		b.Ident(s[i])
	}
	return b
}

// Arg appends an input argument to the builder. Queriers are rendered
// in place instead of being bound.
func (b *Builder) Arg(a any) *Builder {
	if q, ok := a.(Querier); ok {
		return b.Join(q)
	}
	b.total++
	b.args = append(b.args, a)
	if b.dialect == dialect.Postgres {
		return b.WriteString("$" + strconv.Itoa(b.total))
	}
	return b.WriteByte('?')
}

// Args appends a list of arguments to the builder separated by commas.
func (b *Builder) Args(a ...any) *Builder {
	for i := range a {
		if i > 0 {
			b.Comma()
		}
		b.Arg(a[i])
	}
	return b
}

// Join renders the given querier into the builder.
func (b *Builder) Join(q Querier) *Builder {
	if bq, ok := q.(builder); ok {
		bq.build(b)
		return b
	}
	query, args := q.Query()
	b.WriteString(query)
	b.args = append(b.args, args...)
	b.total += len(args)
	return b
}

// Wrap gets a callback, and wraps its result with parentheses.
func (b *Builder) Wrap(f func(*Builder)) *Builder {
	b.WriteByte('(')
	f(b)
	return b.WriteByte(')')
}

// exprFunc is a Querier rendered by a function.
type exprFunc func(*Builder)

func (f exprFunc) build(b *Builder) { f(b) }

// Query implements the Querier interface with the default dialect.
func (f exprFunc) Query() (string, []any) {
	b := newBuilder("")
	f(b)
	return b.Query()
}

// ExprFunc returns a Querier rendered by the given function.
func ExprFunc(fn func(*Builder)) Querier {
	return exprFunc(fn)
}

// Expr returns a raw SQL expression. Each '?' in the expression is
// replaced by a dialect placeholder bound to the next argument.
func Expr(expr string, args ...any) Querier {
	return exprFunc(func(b *Builder) {
		i := 0
		for _, r := range expr {
			if r == '?' && i < len(args) {
				b.Arg(args[i])
				i++
				continue
			}
			b.sb.WriteRune(r)
		}
	})
}

// Raw returns a raw SQL string without arguments.
func Raw(s string) Querier {
	return exprFunc(func(b *Builder) { b.WriteString(s) })
}

// Agg returns an aggregate function call over a column, e.g. Agg("MAX", "age").
func Agg(fn, column string) Querier {
	return exprFunc(func(b *Builder) {
		b.WriteString(fn).WriteByte('(').Ident(column).WriteByte(')')
	})
}

// Count returns the COUNT aggregate. An empty column counts rows.
func Count(column string) Querier {
	if column == "" || column == "*" {
		return Raw("COUNT(*)")
	}
	return Agg("COUNT", column)
}

// DialectBuilder prefixes all root builders with the same dialect.
type DialectBuilder struct {
	dialect string
}

// Dialect creates a new DialectBuilder with the given dialect name.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect.Normalize(name)}
}

// Select creates a Selector for the configured dialect.
//
//	Dialect(dialect.Postgres).
//		Select("id", "handle").
//		From(Table("profiles"))
func (d *DialectBuilder) Select(columns ...string) *Selector {
	return Select(columns...).SetDialect(d.dialect)
}

// Insert creates an InsertBuilder for the configured dialect.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	return &InsertBuilder{dialect: d.dialect, table: table}
}

// Update creates an UpdateBuilder for the configured dialect.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	return &UpdateBuilder{dialect: d.dialect, table: table}
}

// Delete creates a DeleteBuilder for the configured dialect.
func (d *DialectBuilder) Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{dialect: d.dialect, table: table}
}

// TableView is a view that returns a table view. Can be a Table, a Selector or a View (WITH statement).
type TableView interface {
	view()
}

// SelectTable is a table selector.
type SelectTable struct {
	name string
	as   string
}

// Table returns a new table selector.
//
//	t1 := Table("follows").As("f")
//	return Select(t1.C("follower_profile_id")).
//		From(t1)
func Table(name string) *SelectTable {
	return &SelectTable{name: name}
}

// As adds the AS clause to the table selector.
func (s *SelectTable) As(alias string) *SelectTable {
	s.as = alias
	return s
}

// C returns a formatted string for the table column.
func (s *SelectTable) C(column string) string {
	return s.ref() + "." + column
}

// Name returns the table name.
func (s *SelectTable) Name() string {
	return s.name
}

func (s *SelectTable) ref() string {
	if s.as != "" {
		return s.as
	}
	return s.name
}

func (s *SelectTable) build(b *Builder) {
	b.Ident(s.name)
	if s.as != "" {
		b.WriteString(" AS ").Ident(s.as)
	}
}

func (*SelectTable) view() {}

type (
	selection struct {
		column string
		expr   Querier
		as     string
	}
	join struct {
		kind  string
		table TableView
		on    *Predicate
	}
	order struct {
		column string
		expr   Querier
	}
)

// Selector is a builder for the `SELECT` statement.
type Selector struct {
	dialect   string
	as        string
	selection []selection
	from      []TableView
	joins     []join
	where     *Predicate
	group     []string
	having    *Predicate
	order     []order
	limit     *int
	offset    *int
	distinct  bool
}

// Select returns a new selector for the `SELECT` statement.
func Select(columns ...string) *Selector {
	return (&Selector{}).Select(columns...)
}

// SetDialect sets the dialect of the selector.
func (s *Selector) SetDialect(d string) *Selector {
	s.dialect = dialect.Normalize(d)
	return s
}

// Dialect returns the dialect of the selector.
func (s *Selector) Dialect() string {
	return s.dialect
}

// Select changes the columns selection of the SELECT statement.
// Empty selection means all columns *.
func (s *Selector) Select(columns ...string) *Selector {
	s.selection = s.selection[:0]
	return s.AppendSelect(columns...)
}

// AppendSelect appends additional columns to the SELECT statement.
func (s *Selector) AppendSelect(columns ...string) *Selector {
	for _, c := range columns {
		s.selection = append(s.selection, selection{column: c})
	}
	return s
}

// AppendSelectAs appends an aliased column to the SELECT statement.
func (s *Selector) AppendSelectAs(column, as string) *Selector {
	s.selection = append(s.selection, selection{column: column, as: as})
	return s
}

// AppendSelectExpr appends additional expressions to the SELECT statement.
func (s *Selector) AppendSelectExpr(exprs ...Querier) *Selector {
	for _, e := range exprs {
		s.selection = append(s.selection, selection{expr: e})
	}
	return s
}

// AppendSelectExprAs appends an aliased expression to the SELECT statement.
func (s *Selector) AppendSelectExprAs(expr Querier, as string) *Selector {
	s.selection = append(s.selection, selection{expr: expr, as: as})
	return s
}

// SelectedColumns returns the plain columns of the selection.
func (s *Selector) SelectedColumns() []string {
	columns := make([]string, 0, len(s.selection))
	for _, c := range s.selection {
		if c.expr == nil {
			columns = append(columns, c.column)
		}
	}
	return columns
}

// From sets the source of `FROM` clause.
func (s *Selector) From(t TableView) *Selector {
	s.from = []TableView{t}
	return s
}

// Distinct adds the DISTINCT keyword to the `SELECT` statement.
func (s *Selector) Distinct() *Selector {
	s.distinct = true
	return s
}

// Join appends a `JOIN` clause to the statement.
func (s *Selector) Join(t TableView) *Selector {
	return s.join("JOIN", t)
}

// LeftJoin appends a `LEFT JOIN` clause to the statement.
func (s *Selector) LeftJoin(t TableView) *Selector {
	return s.join("LEFT JOIN", t)
}

func (s *Selector) join(kind string, t TableView) *Selector {
	s.joins = append(s.joins, join{kind: kind, table: t})
	return s
}

// On sets the `ON` clause of the last `JOIN` operation.
func (s *Selector) On(c1, c2 string) *Selector {
	return s.OnP(ColumnsEQ(c1, c2))
}

// OnP sets or appends the given predicate for the `ON` clause of the last `JOIN` operation.
func (s *Selector) OnP(p *Predicate) *Selector {
	if len(s.joins) > 0 {
		j := &s.joins[len(s.joins)-1]
		j.on = And(j.on, p)
	}
	return s
}

// Where sets or appends the given predicate to the statement.
func (s *Selector) Where(p *Predicate) *Selector {
	s.where = And(s.where, p)
	return s
}

// P returns the predicate of a selector.
func (s *Selector) P() *Predicate {
	return s.where
}

// GroupBy sets the `GROUP BY` clause of the statement.
func (s *Selector) GroupBy(columns ...string) *Selector {
	s.group = append(s.group, columns...)
	return s
}

// Having sets or appends the given predicate to the `HAVING` clause.
func (s *Selector) Having(p *Predicate) *Selector {
	s.having = And(s.having, p)
	return s
}

// OrderBy appends ascending column terms to the `ORDER BY` clause.
func (s *Selector) OrderBy(columns ...string) *Selector {
	for _, c := range columns {
		s.order = append(s.order, order{column: c})
	}
	return s
}

// OrderExpr appends expression terms to the `ORDER BY` clause.
func (s *Selector) OrderExpr(exprs ...Querier) *Selector {
	for _, e := range exprs {
		s.order = append(s.order, order{expr: e})
	}
	return s
}

// ClearOrder removes all terms of the `ORDER BY` clause.
func (s *Selector) ClearOrder() *Selector {
	s.order = nil
	return s
}

// Limit adds the `LIMIT` clause to the `SELECT` statement.
func (s *Selector) Limit(limit int) *Selector {
	s.limit = &limit
	return s
}

// Offset adds the `OFFSET` clause to the `SELECT` statement.
func (s *Selector) Offset(offset int) *Selector {
	s.offset = &offset
	return s
}

// As gives this selection an alias, so it can be used as a table in a FROM clause.
func (s *Selector) As(alias string) *Selector {
	s.as = alias
	return s
}

// C returns a formatted string for a selected column from this statement.
func (s *Selector) C(column string) string {
	if s.as != "" {
		return s.as + "." + column
	}
	if t := s.Table(); t != nil {
		return t.C(column)
	}
	return column
}

// Table returns the selected table.
func (s *Selector) Table() *SelectTable {
	if len(s.from) == 0 {
		return nil
	}
	t, _ := s.from[0].(*SelectTable)
	return t
}

// TableName returns the name of the selected table or alias of the selector.
func (s *Selector) TableName() string {
	if s.as != "" {
		return s.as
	}
	if t := s.Table(); t != nil {
		return t.ref()
	}
	return ""
}

// Clone returns a duplicate of the selector, including all associated steps.
func (s *Selector) Clone() *Selector {
	if s == nil {
		return nil
	}
	c := *s
	c.selection = append([]selection(nil), s.selection...)
	c.from = append([]TableView(nil), s.from...)
	c.joins = append([]join(nil), s.joins...)
	c.group = append([]string(nil), s.group...)
	c.order = append([]order(nil), s.order...)
	return &c
}

// Query returns query representation of a `SELECT` statement.
func (s *Selector) Query() (string, []any) {
	b := newBuilder(s.dialect)
	s.build(b)
	return b.Query()
}

func (s *Selector) view() {}

func (s *Selector) build(b *Builder) {
	if s.as != "" {
		b.WriteByte('(')
	}
	s.buildSelect(b)
	if s.as != "" {
		b.WriteString(") AS ").Ident(s.as)
	}
}

func (s *Selector) buildSelect(b *Builder) {
	b.WriteString("SELECT ")
	if s.distinct {
		b.WriteString("DISTINCT ")
	}
	if len(s.selection) == 0 {
		b.WriteByte('*')
	}
	for i, c := range s.selection {
		if i > 0 {
			b.Comma()
		}
		if c.expr != nil {
			b.Join(c.expr)
		} else {
			b.Ident(c.column)
		}
		if c.as != "" {
			b.WriteString(" AS ").Ident(c.as)
		}
	}
	if len(s.from) > 0 {
		b.WriteString(" FROM ")
		for i, t := range s.from {
			if i > 0 {
				b.Comma()
			}
			t.(builder).build(b)
		}
	}
	for _, j := range s.joins {
		b.Pad().WriteString(j.kind).Pad()
		j.table.(builder).build(b)
		if j.on != nil {
			b.WriteString(" ON ")
			j.on.build(b)
		}
	}
	if s.where != nil {
		b.WriteString(" WHERE ")
		s.where.build(b)
	}
	if len(s.group) > 0 {
		b.WriteString(" GROUP BY ").IdentComma(s.group...)
	}
	if s.having != nil {
		b.WriteString(" HAVING ")
		s.having.build(b)
	}
	if len(s.order) > 0 {
		b.WriteString(" ORDER BY ")
		for i, o := range s.order {
			if i > 0 {
				b.Comma()
			}
			if o.expr != nil {
				b.Join(o.expr)
			} else {
				b.Ident(o.column)
			}
		}
	}
	switch {
	case s.limit != nil:
		b.WriteString(" LIMIT ").WriteString(strconv.Itoa(*s.limit))
	case s.offset != nil && b.dialect == dialect.MySQL:
		b.WriteString(" LIMIT 18446744073709551615")
	case s.offset != nil && b.dialect == dialect.SQLite:
		b.WriteString(" LIMIT -1")
	}
	if s.offset != nil {
		b.WriteString(" OFFSET ").WriteString(strconv.Itoa(*s.offset))
	}
}

// Asc returns an ascending order term.
func Asc(column string) Querier {
	return OrderNulls(column, false, false)
}

// Desc returns a descending order term.
func Desc(column string) Querier {
	return OrderNulls(column, true, true)
}

// OrderNulls returns an order term with explicit placement of NULL values.
// MySQL has no NULLS FIRST/LAST syntax, so the placement is emulated with an
// IS NULL term on that dialect.
func OrderNulls(column string, desc, nullsFirst bool) Querier {
	return exprFunc(func(b *Builder) {
		if b.dialect == dialect.MySQL {
			b.Ident(column)
			if nullsFirst {
				b.WriteString(" IS NOT NULL, ")
			} else {
				b.WriteString(" IS NULL, ")
			}
			b.Ident(column)
			if desc {
				b.WriteString(" DESC")
			}
			return
		}
		b.Ident(column)
		if desc {
			b.WriteString(" DESC")
		}
		if nullsFirst {
			b.WriteString(" NULLS FIRST")
		} else {
			b.WriteString(" NULLS LAST")
		}
	})
}

// InsertBuilder is a builder for `INSERT INTO` statement.
type InsertBuilder struct {
	dialect   string
	table     string
	columns   []string
	defaults  bool
	values    [][]any
	returning []string
	skipDups  bool
}

// Insert creates a builder for the `INSERT INTO` statement.
func Insert(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// Columns sets the columns of the insert statement.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append(i.columns, columns...)
	return i
}

// Values append a value tuple for the insert statement.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append(i.values, values)
	return i
}

// Default sets the default values clause based on the dialect type.
func (i *InsertBuilder) Default() *InsertBuilder {
	i.defaults = true
	return i
}

// Returning adds the `RETURNING` clause to the insert statement.
// It is ignored by MySQL.
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = columns
	return i
}

// OnConflictDoNothing skips rows violating a unique constraint.
// It renders ON CONFLICT DO NOTHING on PostgreSQL and SQLite, and
// INSERT IGNORE on MySQL.
func (i *InsertBuilder) OnConflictDoNothing() *InsertBuilder {
	i.skipDups = true
	return i
}

// Query returns query representation of an `INSERT INTO` statement.
func (i *InsertBuilder) Query() (string, []any) {
	b := newBuilder(i.dialect)
	i.build(b)
	return b.Query()
}

func (i *InsertBuilder) build(b *Builder) {
	b.WriteString("INSERT ")
	if i.skipDups && b.dialect == dialect.MySQL {
		b.WriteString("IGNORE ")
	}
	b.WriteString("INTO ").Ident(i.table).Pad()
	if i.defaults && len(i.columns) == 0 {
		if b.dialect == dialect.MySQL {
			b.WriteString("VALUES ()")
		} else {
			b.WriteString("DEFAULT VALUES")
		}
	} else {
		b.Wrap(func(b *Builder) { b.IdentComma(i.columns...) })
		b.WriteString(" VALUES ")
		for j, v := range i.values {
			if j > 0 {
				b.Comma()
			}
			b.Wrap(func(b *Builder) { b.Args(v...) })
		}
	}
	if i.skipDups && b.dialect != dialect.MySQL {
		b.WriteString(" ON CONFLICT DO NOTHING")
	}
	if len(i.returning) > 0 && b.dialect != dialect.MySQL {
		b.WriteString(" RETURNING ").IdentComma(i.returning...)
	}
}

// UpdateBuilder is a builder for `UPDATE` statement.
type UpdateBuilder struct {
	dialect string
	table   string
	columns []string
	values  []any
	where   *Predicate
}

// Update creates a builder for the `UPDATE` statement.
func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set sets a column to a given value. The value may be a Querier
// expression.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.columns = append(u.columns, column)
	u.values = append(u.values, v)
	return u
}

// SetNull sets a column as null value.
func (u *UpdateBuilder) SetNull(column string) *UpdateBuilder {
	return u.Set(column, Raw("NULL"))
}

// SetOp sets a column to the result of an arithmetic operation on its
// current value, e.g. SetOp("expires_at", "+", 60).
func (u *UpdateBuilder) SetOp(column, op string, v any) *UpdateBuilder {
	return u.Set(column, exprFunc(func(b *Builder) {
		b.Ident(column).Pad().WriteString(op).Pad().Arg(v)
	}))
}

// Where adds a where predicate for update statement.
func (u *UpdateBuilder) Where(p *Predicate) *UpdateBuilder {
	u.where = And(u.where, p)
	return u
}

// Empty reports whether this builder does not contain update changes.
func (u *UpdateBuilder) Empty() bool {
	return len(u.columns) == 0
}

// Query returns query representation of an `UPDATE` statement.
func (u *UpdateBuilder) Query() (string, []any) {
	b := newBuilder(u.dialect)
	u.build(b)
	return b.Query()
}

func (u *UpdateBuilder) build(b *Builder) {
	b.WriteString("UPDATE ").Ident(u.table).WriteString(" SET ")
	for i, c := range u.columns {
		if i > 0 {
			b.Comma()
		}
		b.Ident(c).WriteString(" = ").Arg(u.values[i])
	}
	if u.where != nil {
		b.WriteString(" WHERE ")
		u.where.build(b)
	}
}

// DeleteBuilder is a builder for `DELETE` statement.
type DeleteBuilder struct {
	dialect string
	table   string
	where   *Predicate
}

// Delete creates a builder for the `DELETE` statement.
func Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

// Where appends a where predicate to the `DELETE` statement.
func (d *DeleteBuilder) Where(p *Predicate) *DeleteBuilder {
	d.where = And(d.where, p)
	return d
}

// Query returns query representation of a `DELETE` statement.
func (d *DeleteBuilder) Query() (string, []any) {
	b := newBuilder(d.dialect)
	d.build(b)
	return b.Query()
}

func (d *DeleteBuilder) build(b *Builder) {
	b.WriteString("DELETE FROM ").Ident(d.table)
	if d.where != nil {
		b.WriteString(" WHERE ")
		d.where.build(b)
	}
}
