package sqlgraph

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/dialect"
	"github.com/syssam/socialgraph/dialect/sql"
	"github.com/syssam/socialgraph/graph"
	"github.com/syssam/socialgraph/querylanguage"
)

// Conn is the storage handle the executor runs statements on.
type Conn struct {
	dialect.ExecQuerier
	// Dialect is the SQL dialect of the connection.
	Dialect string
	// Graph resolves constraint names when classifying errors.
	Graph *graph.Graph
	// Tx reports whether the statements run inside a transaction. Relation
	// loads run sequentially on a transaction.
	Tx bool
}

// OrderTerm is one term of an ORDER BY clause.
type OrderTerm struct {
	Field string
	Desc  bool
	// Agg orders by an aggregate of the field (_count, _avg, _sum, _min,
	// _max). It is only valid on group-by queries.
	Agg string
}

// QuerySpec describes a read of one model.
type QuerySpec struct {
	Model     *graph.Model
	Predicate querylanguage.P
	Order     []OrderTerm
	// Cursor holds the values of a unique key. The row it identifies is the
	// first row of the result.
	Cursor map[string]any
	// Limit is the take argument. A negative limit reads backwards from the
	// cursor (or from the end) and returns the rows in query order.
	Limit  *int
	Offset int
	// Distinct keeps the first row of each combination of the fields.
	Distinct []string
	// Select and Omit restrict the returned fields. Select is exclusive
	// with Omit and Include.
	Select []string
	Omit   []string
	// Include loads relations; Counts loads relation counts.
	Include []*IncludeSpec
	Counts  []*CountSpec
	// Path restricts the rows to the ones reached by a traversal.
	Path *Step
}

// IncludeSpec loads the relation Edge. Query scopes the related rows and
// may be nil.
type IncludeSpec struct {
	Edge  string
	Query *QuerySpec
}

// CountSpec loads the number of related rows of a to-many relation.
type CountSpec struct {
	Edge      string
	Predicate querylanguage.P
}

// NewQuerySpec returns a spec reading all rows of m.
func NewQuerySpec(m *graph.Model) *QuerySpec {
	return &QuerySpec{Model: m}
}

// Step is a traversal hop: the rows of Model matching Predicate, restricted
// by the previous hop From, followed along Edge.
type Step struct {
	Model     *graph.Model
	Predicate querylanguage.P
	From      *Step
	Edge      string
}

// NewStep returns a hop from the rows of m matching p along edge.
func NewStep(m *graph.Model, p querylanguage.P, edge string) *Step {
	return &Step{Model: m, Predicate: p, Edge: edge}
}

// Target returns the model the hop leads to.
func (s *Step) Target() (*graph.Model, error) {
	e, ok := s.Model.Edge(s.Edge)
	if !ok {
		return nil, socialgraph.NewValidationError(s.Edge, fmt.Errorf("unknown relation on %s", s.Model.Name))
	}
	return e.Target, nil
}

// predicate restricts the column col of the target rows to the rows
// reached by the hop.
func (s *Step) predicate(d string, col func(string) string, depth int) (*sql.Predicate, error) {
	e, ok := s.Model.Edge(s.Edge)
	if !ok {
		return nil, socialgraph.NewValidationError(s.Edge, fmt.Errorf("unknown relation on %s", s.Model.Name))
	}
	src := sql.Table(s.Model.Table).As("s" + strconv.Itoa(depth))
	sub := sql.Dialect(d).Select().From(src)
	if err := EvalP(s.Model, s.Predicate, sub); err != nil {
		return nil, err
	}
	if s.From != nil {
		p, err := s.From.predicate(d, sub.C, depth+1)
		if err != nil {
			return nil, err
		}
		sub.Where(p)
	}
	if e.Inverse {
		sub.Select(sub.C(e.Field.Column))
		return sql.InQuery(col(e.Target.ID.Column), sub), nil
	}
	sub.Select(sub.C(s.Model.ID.Column))
	return sql.InQuery(col(e.Field.Column), sub), nil
}

// term is a resolved order term.
type term struct {
	f    *graph.Field
	desc bool
}

// plan is a validated QuerySpec.
type plan struct {
	spec   *QuerySpec
	model  *graph.Model
	fetch  []*graph.Field       // selected columns, in model order.
	keep   map[string]bool      // returned fields; nil keeps every fetched field.
	terms  []term               // order terms, including the key tie-breaker.
	cursor map[string]any       // normalized cursor values.
	paged  bool                 // cursor, limit, offset or distinct is set.
	edges  map[string]*graph.Edge
}

func invalid(name, format string, args ...any) error {
	return socialgraph.NewValidationError(name, fmt.Errorf(format, args...))
}

// newPlan validates spec. extra lists fields fetched in addition to the
// requested ones, such as the join key of a relation load.
func newPlan(spec *QuerySpec, extra ...*graph.Field) (*plan, error) {
	m := spec.Model
	if m == nil {
		return nil, invalid("model", "query without a model")
	}
	if len(spec.Select) > 0 && len(spec.Omit) > 0 {
		return nil, invalid("select", "select and omit are exclusive")
	}
	if len(spec.Select) > 0 && (len(spec.Include) > 0 || len(spec.Counts) > 0) {
		return nil, invalid("select", "select and include are exclusive")
	}
	p := &plan{spec: spec, model: m, edges: make(map[string]*graph.Edge)}
	need := make(map[string]bool)
	switch {
	case len(spec.Select) > 0:
		p.keep = make(map[string]bool, len(spec.Select))
		for _, name := range spec.Select {
			if _, ok := m.Field(name); !ok {
				return nil, invalid(name, "unknown field on %s", m.Name)
			}
			p.keep[name], need[name] = true, true
		}
	case len(spec.Omit) > 0:
		omit := make(map[string]bool, len(spec.Omit))
		for _, name := range spec.Omit {
			if _, ok := m.Field(name); !ok {
				return nil, invalid(name, "unknown field on %s", m.Name)
			}
			omit[name] = true
		}
		p.keep = make(map[string]bool, len(m.Fields))
		for _, f := range m.Fields {
			if !omit[f.Name] {
				p.keep[f.Name], need[f.Name] = true, true
			}
		}
	default:
		for _, f := range m.Fields {
			need[f.Name] = true
		}
	}
	for _, f := range m.PrimaryKey {
		need[f.Name] = true
	}
	for _, f := range extra {
		need[f.Name] = true
	}
	for _, inc := range spec.Include {
		e, ok := m.Edge(inc.Edge)
		if !ok {
			return nil, invalid(inc.Edge, "unknown relation on %s", m.Name)
		}
		if e.Inverse {
			need[e.Field.Name] = true
		}
		p.edges[inc.Edge] = e
	}
	for _, c := range spec.Counts {
		e, ok := m.Edge(c.Edge)
		if !ok {
			return nil, invalid(c.Edge, "unknown relation on %s", m.Name)
		}
		if !e.ToMany() {
			return nil, invalid(c.Edge, "relation counts require a to-many relation")
		}
		p.edges[c.Edge] = e
	}
	for _, name := range spec.Distinct {
		f, ok := m.Field(name)
		if !ok {
			return nil, invalid(name, "unknown field on %s", m.Name)
		}
		if f.IsJSON() {
			return nil, invalid(name, "distinct is not supported on %s fields", f.Type)
		}
		need[name] = true
	}
	if spec.Cursor != nil {
		names := make([]string, 0, len(spec.Cursor))
		for name := range spec.Cursor {
			names = append(names, name)
		}
		key, ok := m.UniqueKey(names...)
		if !ok {
			return nil, invalid("cursor", "fields %v are not a unique key of %s", names, m.Name)
		}
		p.cursor = make(map[string]any, len(key))
		for _, f := range key {
			v, err := normalize(f, spec.Cursor[f.Name])
			if err != nil {
				return nil, err
			}
			p.cursor[f.Name] = v
			need[f.Name] = true
		}
	}
	if spec.Offset < 0 {
		return nil, invalid("skip", "must not be negative")
	}
	p.paged = spec.Cursor != nil || spec.Limit != nil || spec.Offset > 0 || len(spec.Distinct) > 0
	for _, o := range spec.Order {
		if o.Agg != "" {
			return nil, invalid(o.Field, "aggregate ordering is only valid in group by")
		}
		f, ok := m.Field(o.Field)
		if !ok {
			return nil, invalid(o.Field, "unknown field on %s", m.Name)
		}
		if !f.Orderable() {
			return nil, invalid(o.Field, "%s fields are not orderable", f.Type)
		}
		p.terms = append(p.terms, term{f: f, desc: o.Desc})
	}
	if len(p.terms) > 0 || p.paged {
		for _, f := range m.PrimaryKey {
			if !slices.ContainsFunc(p.terms, func(t term) bool { return t.f == f }) {
				p.terms = append(p.terms, term{f: f})
			}
		}
	}
	for _, f := range m.Fields {
		if need[f.Name] {
			p.fetch = append(p.fetch, f)
		}
	}
	return p, nil
}

// normalize converts a caller value to the Go type records hold.
func normalize(f *graph.Field, v any) (any, error) {
	enc, err := Encode(f, v)
	if err != nil {
		return nil, err
	}
	return Decode(f, enc)
}

// reverse reports whether the rows are read backwards.
func (p *plan) reverse() bool {
	return p.spec.Limit != nil && *p.spec.Limit < 0
}

// selector returns the SELECT of the plan with its filter and traversal.
func (p *plan) selector(c Conn) (*sql.Selector, error) {
	t := sql.Table(p.model.Table)
	sel := sql.Dialect(c.Dialect).Select().From(t)
	cols := make([]string, len(p.fetch))
	for i, f := range p.fetch {
		cols[i] = t.C(f.Column)
	}
	sel.Select(cols...)
	if err := EvalP(p.model, p.spec.Predicate, sel); err != nil {
		return nil, err
	}
	if s := p.spec.Path; s != nil {
		target, err := s.Target()
		if err != nil {
			return nil, err
		}
		if target != p.model {
			return nil, invalid(s.Edge, "relation leads to %s, not %s", target.Name, p.model.Name)
		}
		pred, err := s.predicate(c.Dialect, sel.C, 1)
		if err != nil {
			return nil, err
		}
		sel.Where(pred)
	}
	return sel, nil
}

// order appends the order terms. Nulls sort last ascending and first
// descending; reverse flips every term.
func (p *plan) order(sel *sql.Selector, reverse bool) {
	for _, t := range p.terms {
		desc := t.desc != reverse
		sel.OrderExpr(sql.OrderNulls(sel.C(t.f.Column), desc, desc))
	}
}

// cursorPredicate selects the rows at or after the cursor row in the
// order of the plan. found is false if the cursor row does not exist.
func (p *plan) cursorPredicate(ctx context.Context, c Conn, sel *sql.Selector, reverse bool) (pred *sql.Predicate, found bool, err error) {
	t := sql.Table(p.model.Table)
	q := sql.Dialect(c.Dialect).Select().From(t)
	fields := make([]*graph.Field, len(p.terms))
	cols := make([]string, len(p.terms))
	for i, tm := range p.terms {
		fields[i], cols[i] = tm.f, t.C(tm.f.Column)
	}
	q.Select(cols...)
	var keys []*sql.Predicate
	for _, f := range p.model.Fields {
		if v, ok := p.cursor[f.Name]; ok {
			enc, err := Encode(f, v)
			if err != nil {
				return nil, false, err
			}
			keys = append(keys, sql.EQ(t.C(f.Column), enc))
		}
	}
	q.Where(sql.And(keys...))
	recs, err := c.records(ctx, q, p.model, fields)
	if err != nil || len(recs) == 0 {
		return nil, false, err
	}
	row := recs[0]
	var (
		or []*sql.Predicate
		eq []*sql.Predicate
	)
	for _, tm := range p.terms {
		col := sel.C(tm.f.Column)
		v := row.Values[tm.f.Name]
		var enc any
		if v != nil {
			if enc, err = Encode(tm.f, v); err != nil {
				return nil, false, err
			}
		}
		var after *sql.Predicate
		switch desc := tm.desc != reverse; {
		case !desc && v == nil:
			// Nulls are last: nothing sorts after a null but other nulls.
		case !desc && tm.f.Nullable():
			after = sql.Or(sql.GT(col, enc), sql.IsNull(col))
		case !desc:
			after = sql.GT(col, enc)
		case v == nil:
			after = sql.NotNull(col)
		default:
			after = sql.LT(col, enc)
		}
		if after != nil {
			or = append(or, sql.And(append(slices.Clone(eq), after)...))
		}
		if v == nil {
			eq = append(eq, sql.IsNull(col))
		} else {
			eq = append(eq, sql.EQ(col, enc))
		}
	}
	or = append(or, sql.And(eq...))
	return sql.Or(or...), true, nil
}

// records runs the query and scans the rows into records of m.
func (c Conn) records(ctx context.Context, q sql.Querier, m *graph.Model, fields []*graph.Field) ([]*Record, error) {
	query, args := q.Query()
	var rows sql.Rows
	if err := c.Query(ctx, query, args, &rows); err != nil {
		return nil, Classify(c.Graph, err)
	}
	recs, err := scanRecords(&rows, m, fields)
	if err != nil {
		return nil, Classify(c.Graph, err)
	}
	return recs, nil
}

// exec runs a statement and returns the number of affected rows.
func (c Conn) exec(ctx context.Context, q sql.Querier) (int64, error) {
	query, args := q.Query()
	var res sql.Result
	if err := c.Exec(ctx, query, args, &res); err != nil {
		return 0, Classify(c.Graph, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, Classify(c.Graph, err)
	}
	return n, nil
}

// QueryNodes runs the query and loads the requested relations.
func QueryNodes(ctx context.Context, c Conn, spec *QuerySpec) ([]*Record, error) {
	p, err := newPlan(spec)
	if err != nil {
		return nil, err
	}
	recs, err := p.query(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := p.load(ctx, c, recs); err != nil {
		return nil, err
	}
	p.strip(recs)
	return recs, nil
}

// QueryPage runs a query fetching one row past size. When that row
// exists, next is the page token of the last row kept. The token is
// taken before unselected fields are dropped, so it works with any
// Select.
func QueryPage(ctx context.Context, c Conn, spec *QuerySpec, size int) (recs []*Record, next string, err error) {
	p, err := newPlan(spec)
	if err != nil {
		return nil, "", err
	}
	if recs, err = p.query(ctx, c); err != nil {
		return nil, "", err
	}
	if len(recs) > size {
		if next, err = EncodeCursor(recs[size-1]); err != nil {
			return nil, "", err
		}
		recs = recs[:size]
	}
	if err := p.load(ctx, c, recs); err != nil {
		return nil, "", err
	}
	p.strip(recs)
	return recs, next, nil
}

// query reads the rows of the plan. Pagination runs in SQL, except with
// distinct, where it runs on the ordered rows in memory.
func (p *plan) query(ctx context.Context, c Conn) ([]*Record, error) {
	sel, err := p.selector(c)
	if err != nil {
		return nil, err
	}
	if len(p.spec.Distinct) > 0 {
		p.order(sel, false)
		recs, err := c.records(ctx, sel, p.model, p.fetch)
		if err != nil {
			return nil, err
		}
		return p.paginate(recs), nil
	}
	reverse := p.reverse()
	if p.cursor != nil {
		pred, found, err := p.cursorPredicate(ctx, c, sel, reverse)
		if err != nil {
			return nil, err
		}
		if !found {
			return []*Record{}, nil
		}
		sel.Where(pred)
	}
	p.order(sel, reverse)
	if p.spec.Offset > 0 {
		sel.Offset(p.spec.Offset)
	}
	if l := p.spec.Limit; l != nil {
		sel.Limit(abs(*l))
	}
	recs, err := c.records(ctx, sel, p.model, p.fetch)
	if err != nil {
		return nil, err
	}
	if reverse {
		slices.Reverse(recs)
	}
	if recs == nil {
		recs = []*Record{}
	}
	return recs, nil
}

// paginate applies cursor, distinct, offset and limit to rows already
// sorted in the order of the plan.
func (p *plan) paginate(recs []*Record) []*Record {
	reverse := p.reverse()
	if reverse {
		recs = slices.Clone(recs)
		slices.Reverse(recs)
	}
	if p.cursor != nil {
		i := slices.IndexFunc(recs, func(r *Record) bool {
			for name, v := range p.cursor {
				if keyOf(r.Values[name]) != keyOf(v) {
					return false
				}
			}
			return true
		})
		if i < 0 {
			return []*Record{}
		}
		recs = recs[i:]
	}
	if len(p.spec.Distinct) > 0 {
		fields := make([]*graph.Field, len(p.spec.Distinct))
		for i, name := range p.spec.Distinct {
			fields[i], _ = p.model.Field(name)
		}
		seen := make(map[string]bool)
		kept := make([]*Record, 0, len(recs))
		for _, r := range recs {
			if k := r.Key(fields...); !seen[k] {
				seen[k] = true
				kept = append(kept, r)
			}
		}
		recs = kept
	}
	recs = recs[min(p.spec.Offset, len(recs)):]
	if l := p.spec.Limit; l != nil && abs(*l) < len(recs) {
		recs = recs[:abs(*l)]
	}
	out := slices.Clone(recs)
	if reverse {
		slices.Reverse(out)
	}
	if out == nil {
		out = []*Record{}
	}
	return out
}

// strip removes the fields fetched for internal use.
func (p *plan) strip(recs []*Record) {
	if p.keep == nil {
		return
	}
	for _, r := range recs {
		for name := range r.Values {
			if !p.keep[name] {
				delete(r.Values, name)
			}
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// CountNodes returns the number of rows the query matches, honoring
// cursor, offset, limit and distinct.
func CountNodes(ctx context.Context, c Conn, spec *QuerySpec) (int, error) {
	if len(spec.Include) > 0 || len(spec.Counts) > 0 {
		return 0, invalid("count", "include is not supported on count")
	}
	count := *spec
	count.Select = nil
	for _, f := range spec.Model.PrimaryKey {
		count.Select = append(count.Select, f.Name)
	}
	count.Omit = nil
	p, err := newPlan(&count)
	if err != nil {
		return 0, err
	}
	if p.paged {
		recs, err := p.query(ctx, c)
		if err != nil {
			return 0, err
		}
		return len(recs), nil
	}
	sel, err := p.selector(c)
	if err != nil {
		return 0, err
	}
	sel.Select().AppendSelectExpr(sql.Count("*"))
	n, err := c.scalar(ctx, sel)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// scalar runs a query returning one integer.
func (c Conn) scalar(ctx context.Context, q sql.Querier) (int64, error) {
	query, args := q.Query()
	var rows sql.Rows
	if err := c.Query(ctx, query, args, &rows); err != nil {
		return 0, Classify(c.Graph, err)
	}
	defer rows.Close()
	var v any
	if rows.Next() {
		if err := rows.Scan(&v); err != nil {
			return 0, Classify(c.Graph, err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, Classify(c.Graph, err)
	}
	if v == nil {
		return 0, nil
	}
	return toInt64(v)
}
