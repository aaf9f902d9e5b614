package sqlgraph

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/syssam/socialgraph/dialect/sql"
	"github.com/syssam/socialgraph/graph"
	"github.com/syssam/socialgraph/querylanguage"
	"github.com/syssam/socialgraph/schema/field"
)

// CountAll is the field name of an aggregation counting rows.
const CountAll = "_all"

// Aggregation is one aggregate of a field, such as {_max, created_at}.
type Aggregation struct {
	Func  string
	Field string
}

// Aggregates holds aggregate results keyed by function and field name,
// e.g. a[_count][_all]. Counts are int; averages are float64 (nil over an
// empty set); other aggregates use the Go type of the field (nil over an
// empty set).
type Aggregates map[string]map[string]any

func (a Aggregates) set(x Aggregation, v any) {
	if a[x.Func] == nil {
		a[x.Func] = make(map[string]any)
	}
	a[x.Func][x.Field] = v
}

// AggregateSpec describes an aggregate over the rows of a query.
type AggregateSpec struct {
	Query        *QuerySpec
	Aggregations []Aggregation
}

// GroupBySpec describes a grouped aggregate.
type GroupBySpec struct {
	Model     *graph.Model
	Predicate querylanguage.P
	By        []string
	Having    querylanguage.P
	// Order terms without Agg must name a field of By.
	Order        []OrderTerm
	Limit        *int
	Offset       int
	Aggregations []Aggregation
}

// Group is one row of a group-by result.
type Group struct {
	Values     map[string]any
	Aggregates Aggregates
}

// resolve validates the aggregations against m.
func resolve(m *graph.Model, aggs []Aggregation) ([]*graph.Field, error) {
	fields := make([]*graph.Field, len(aggs))
	for i, a := range aggs {
		if _, ok := aggregates[a.Func]; !ok {
			return nil, invalid(a.Func, "unknown aggregate")
		}
		if a.Field == CountAll {
			if a.Func != querylanguage.AggCount {
				return nil, invalid(a.Func, "%s applies to count only", CountAll)
			}
			continue
		}
		f, ok := m.Field(a.Field)
		if !ok {
			return nil, invalid(a.Field, "unknown field on %s", m.Name)
		}
		if err := checkAggregate(a.Func, f); err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return fields, nil
}

// aggExpr returns the SQL expression of the aggregation.
func aggExpr(a Aggregation, f *graph.Field, sel *sql.Selector) sql.Querier {
	if f == nil {
		return sql.Count("*")
	}
	return sql.Agg(aggregates[a.Func], sel.C(f.Column))
}

// aggValue converts a scanned aggregate to its result type.
func aggValue(a Aggregation, f *graph.Field, v any) (any, error) {
	if a.Func == querylanguage.AggCount {
		if v == nil {
			return 0, nil
		}
		n, err := toInt64(v)
		return int(n), err
	}
	if v == nil {
		return nil, nil
	}
	switch {
	case a.Func == querylanguage.AggAvg:
		return toFloat64(v)
	case a.Func == querylanguage.AggSum && f.Type == field.TypeFloat64:
		return toFloat64(v)
	case a.Func == querylanguage.AggSum:
		n, err := toInt64(v)
		if f.Type == field.TypeInt {
			return int(n), err
		}
		return n, err
	}
	return Decode(f, v)
}

// AggregateNodes computes the aggregations over the rows the query
// matches. Cursor, offset, limit and distinct select the rows before
// aggregating.
func AggregateNodes(ctx context.Context, c Conn, spec *AggregateSpec) (Aggregates, error) {
	q := spec.Query
	if len(q.Include) > 0 || len(q.Counts) > 0 {
		return nil, invalid("aggregate", "include is not supported on aggregate")
	}
	fields, err := resolve(q.Model, spec.Aggregations)
	if err != nil {
		return nil, err
	}
	rows := *q
	rows.Select, rows.Omit = nil, nil
	for _, f := range fields {
		if f != nil && !slices.Contains(rows.Select, f.Name) {
			rows.Select = append(rows.Select, f.Name)
		}
	}
	if len(rows.Select) == 0 {
		rows.Select = []string{q.Model.PrimaryKey[0].Name}
	}
	p, err := newPlan(&rows)
	if err != nil {
		return nil, err
	}
	res := make(Aggregates)
	if p.paged {
		recs, err := p.query(ctx, c)
		if err != nil {
			return nil, err
		}
		for i, a := range spec.Aggregations {
			res.set(a, aggregateRecords(a, fields[i], recs))
		}
		return res, nil
	}
	sel, err := p.selector(c)
	if err != nil {
		return nil, err
	}
	sel.Select()
	for i, a := range spec.Aggregations {
		sel.AppendSelectExpr(aggExpr(a, fields[i], sel))
	}
	if len(spec.Aggregations) == 0 {
		return res, nil
	}
	query, args := sel.Query()
	var sr sql.Rows
	if err := c.Query(ctx, query, args, &sr); err != nil {
		return nil, Classify(c.Graph, err)
	}
	defer sr.Close()
	vs := make([]any, len(spec.Aggregations))
	ptrs := make([]any, len(vs))
	for i := range vs {
		ptrs[i] = &vs[i]
	}
	if sr.Next() {
		if err := sr.Scan(ptrs...); err != nil {
			return nil, Classify(c.Graph, err)
		}
	}
	if err := sr.Err(); err != nil {
		return nil, Classify(c.Graph, err)
	}
	for i, a := range spec.Aggregations {
		v, err := aggValue(a, fields[i], vs[i])
		if err != nil {
			return nil, err
		}
		res.set(a, v)
	}
	return res, nil
}

// aggregateRecords computes the aggregation over rows read into memory.
func aggregateRecords(a Aggregation, f *graph.Field, recs []*Record) any {
	if f == nil {
		return len(recs)
	}
	var vs []any
	for _, r := range recs {
		if v := r.Values[f.Name]; v != nil {
			vs = append(vs, v)
		}
	}
	switch a.Func {
	case querylanguage.AggCount:
		return len(vs)
	case querylanguage.AggMin, querylanguage.AggMax:
		if len(vs) == 0 {
			return nil
		}
		best := vs[0]
		for _, v := range vs[1:] {
			c := compare(v, best)
			if a.Func == querylanguage.AggMin && c < 0 || a.Func == querylanguage.AggMax && c > 0 {
				best = v
			}
		}
		return best
	}
	if len(vs) == 0 {
		return nil
	}
	var sum float64
	var isum int64
	for _, v := range vs {
		n, _ := toFloat64(v)
		sum += n
		if i, err := toInt64(v); err == nil {
			isum += i
		}
	}
	switch {
	case a.Func == querylanguage.AggAvg:
		return sum / float64(len(vs))
	case f.Type == field.TypeFloat64:
		return sum
	case f.Type == field.TypeInt:
		return int(isum)
	default:
		return isum
	}
}

// compare orders two non-nil values of the same orderable field.
func compare(a, b any) int {
	switch a := a.(type) {
	case int:
		return cmp.Compare(a, b.(int))
	case int64:
		return cmp.Compare(a, b.(int64))
	case float64:
		return cmp.Compare(a, b.(float64))
	case string:
		return cmp.Compare(a, b.(string))
	case time.Time:
		return a.Compare(b.(time.Time))
	case bool:
		switch {
		case a == b.(bool):
			return 0
		case a:
			return 1
		default:
			return -1
		}
	}
	return 0
}

// GroupNodes groups the matching rows by spec.By and computes the
// aggregations per group.
func GroupNodes(ctx context.Context, c Conn, spec *GroupBySpec) ([]*Group, error) {
	m := spec.Model
	if len(spec.By) == 0 {
		return nil, invalid("by", "group by requires at least one field")
	}
	by := make([]*graph.Field, len(spec.By))
	inBy := make(map[string]bool, len(spec.By))
	for i, name := range spec.By {
		f, ok := m.Field(name)
		if !ok {
			return nil, invalid(name, "unknown field on %s", m.Name)
		}
		if f.IsJSON() {
			return nil, invalid(name, "group by is not supported on %s fields", f.Type)
		}
		by[i], inBy[name] = f, true
	}
	fields, err := resolve(m, spec.Aggregations)
	if err != nil {
		return nil, err
	}
	for _, o := range spec.Order {
		if o.Agg == "" && !inBy[o.Field] {
			return nil, invalid(o.Field, "order field must be part of by")
		}
	}
	if err := havingFields(spec.Having, inBy); err != nil {
		return nil, err
	}
	if spec.Offset < 0 {
		return nil, invalid("skip", "must not be negative")
	}
	if spec.Limit != nil && *spec.Limit < 0 {
		return nil, invalid("take", "must not be negative in group by")
	}
	t := sql.Table(m.Table)
	sel := sql.Dialect(c.Dialect).Select().From(t)
	cols := make([]string, len(by))
	for i, f := range by {
		cols[i] = t.C(f.Column)
	}
	sel.Select(cols...).GroupBy(cols...)
	for i, a := range spec.Aggregations {
		sel.AppendSelectExpr(aggExpr(a, fields[i], sel))
	}
	if err := EvalP(m, spec.Predicate, sel); err != nil {
		return nil, err
	}
	if err := EvalHaving(m, spec.Having, sel); err != nil {
		return nil, err
	}
	for _, o := range spec.Order {
		f, ok := m.Field(o.Field)
		if !ok {
			if o.Agg != querylanguage.AggCount || o.Field != CountAll {
				return nil, invalid(o.Field, "unknown field on %s", m.Name)
			}
		}
		if o.Agg == "" {
			sel.OrderExpr(sql.OrderNulls(sel.C(f.Column), o.Desc, o.Desc))
			continue
		}
		a := Aggregation{Func: o.Agg, Field: o.Field}
		if _, ok := aggregates[o.Agg]; !ok {
			return nil, invalid(o.Agg, "unknown aggregate")
		}
		if f != nil {
			if err := checkAggregate(o.Agg, f); err != nil {
				return nil, err
			}
		}
		expr, desc := aggExpr(a, f, sel), o.Desc
		sel.OrderExpr(sql.ExprFunc(func(b *sql.Builder) {
			b.Join(expr)
			if desc {
				b.WriteString(" DESC")
			}
		}))
	}
	for _, f := range by {
		sel.OrderExpr(sql.OrderNulls(sel.C(f.Column), false, false))
	}
	if spec.Offset > 0 {
		sel.Offset(spec.Offset)
	}
	if spec.Limit != nil {
		sel.Limit(*spec.Limit)
	}
	query, args := sel.Query()
	var rows sql.Rows
	if err := c.Query(ctx, query, args, &rows); err != nil {
		return nil, Classify(c.Graph, err)
	}
	defer rows.Close()
	groups := []*Group{}
	for rows.Next() {
		vs := make([]any, len(by)+len(spec.Aggregations))
		ptrs := make([]any, len(vs))
		for i := range vs {
			ptrs[i] = &vs[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, Classify(c.Graph, err)
		}
		g := &Group{Values: make(map[string]any, len(by)), Aggregates: make(Aggregates)}
		for i, f := range by {
			if g.Values[f.Name], err = Decode(f, vs[i]); err != nil {
				return nil, err
			}
		}
		for i, a := range spec.Aggregations {
			v, err := aggValue(a, fields[i], vs[len(by)+i])
			if err != nil {
				return nil, err
			}
			g.Aggregates.set(a, v)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, Classify(c.Graph, err)
	}
	return groups, nil
}

// havingFields checks that the plain field references of a having
// predicate are grouped.
func havingFields(e querylanguage.Expr, by map[string]bool) error {
	switch e := e.(type) {
	case nil:
	case *querylanguage.Field:
		if !by[e.Name] {
			return invalid(e.Name, "having field must be part of by or aggregated")
		}
	case *querylanguage.JSONPath:
		if !by[e.Name] {
			return invalid(e.Name, "having field must be part of by or aggregated")
		}
	case *querylanguage.UnaryExpr:
		return havingFields(e.X, by)
	case *querylanguage.BinaryExpr:
		if err := havingFields(e.X, by); err != nil {
			return err
		}
		return havingFields(e.Y, by)
	case *querylanguage.NaryExpr:
		for _, x := range e.Xs {
			if err := havingFields(x, by); err != nil {
				return err
			}
		}
	case *querylanguage.CallExpr:
		if e.Func == querylanguage.FuncHasEdge {
			return invalid("having", "relation filters are not valid in having")
		}
		for _, x := range e.Args {
			if err := havingFields(x, by); err != nil {
				return err
			}
		}
	}
	return nil
}
