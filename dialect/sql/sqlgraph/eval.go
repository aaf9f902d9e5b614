package sqlgraph

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/dialect/sql"
	"github.com/syssam/socialgraph/dialect/sql/sqljson"
	"github.com/syssam/socialgraph/graph"
	"github.com/syssam/socialgraph/querylanguage"
	"github.com/syssam/socialgraph/schema/field"
)

// EvalP evaluates the p predicate on the model and appends it to the
// selector's WHERE clause. Columns are qualified with the selector's table.
func EvalP(m *graph.Model, p querylanguage.P, s *sql.Selector) error {
	if p == nil {
		return nil
	}
	pred, err := (&state{model: m, sel: s}).evalExpr(p)
	if err != nil {
		return err
	}
	s.Where(pred)
	return nil
}

// EvalHaving is like EvalP, but appends to the HAVING clause and accepts
// aggregate references such as _count(id).
func EvalHaving(m *graph.Model, p querylanguage.P, s *sql.Selector) error {
	if p == nil {
		return nil
	}
	pred, err := (&state{model: m, sel: s, having: true}).evalExpr(p)
	if err != nil {
		return err
	}
	s.Having(pred)
	return nil
}

// state holds the evaluation state of one (sub-)query level.
type state struct {
	model  *graph.Model
	sel    *sql.Selector
	depth  int
	having bool
}

func (s *state) invalid(name, format string, args ...any) error {
	return socialgraph.NewValidationError(name, fmt.Errorf(format, args...))
}

func (s *state) col(f *graph.Field) string {
	return s.sel.C(f.Column)
}

func (s *state) field(name string) (*graph.Field, error) {
	f, ok := s.model.Field(name)
	if !ok {
		return nil, s.invalid(name, "unknown field on %s", s.model.Name)
	}
	return f, nil
}

func (s *state) evalExpr(e querylanguage.Expr) (*sql.Predicate, error) {
	switch e := e.(type) {
	case *querylanguage.UnaryExpr:
		if e.Op != querylanguage.OpNot {
			return nil, fmt.Errorf("sqlgraph: unexpected unary operator %s", e.Op)
		}
		p, err := s.evalExpr(e.X)
		if err != nil {
			return nil, err
		}
		return sql.Not(p), nil
	case *querylanguage.BinaryExpr:
		switch e.Op {
		case querylanguage.OpAnd, querylanguage.OpOr:
			return s.evalNary(e.Op, []querylanguage.Expr{e.X, e.Y})
		}
		return s.evalBinary(e)
	case *querylanguage.NaryExpr:
		return s.evalNary(e.Op, e.Xs)
	case *querylanguage.CallExpr:
		return s.evalCall(e)
	}
	return nil, fmt.Errorf("sqlgraph: unexpected expression %T", e)
}

func (s *state) evalNary(op querylanguage.Op, xs []querylanguage.Expr) (*sql.Predicate, error) {
	ps := make([]*sql.Predicate, 0, len(xs))
	for _, x := range xs {
		p, err := s.evalExpr(x)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	switch op {
	case querylanguage.OpAnd:
		return sql.And(ps...), nil
	case querylanguage.OpOr:
		return sql.Or(ps...), nil
	}
	return nil, fmt.Errorf("sqlgraph: unexpected n-ary operator %s", op)
}

var comparisons = map[querylanguage.Op]string{
	querylanguage.OpEQ:  "=",
	querylanguage.OpNEQ: "<>",
	querylanguage.OpGT:  ">",
	querylanguage.OpGTE: ">=",
	querylanguage.OpLT:  "<",
	querylanguage.OpLTE: "<=",
}

func (s *state) evalBinary(e *querylanguage.BinaryExpr) (*sql.Predicate, error) {
	switch x := e.X.(type) {
	case *querylanguage.Field:
		f, err := s.field(x.Name)
		if err != nil {
			return nil, err
		}
		switch y := e.Y.(type) {
		case *querylanguage.Field:
			g, err := s.field(y.Name)
			if err != nil {
				return nil, err
			}
			op, ok := comparisons[e.Op]
			if !ok {
				return nil, s.invalid(f.Name, "operator %s is not supported between fields", e.Op)
			}
			return sql.ColumnsOp(s.col(f), op, s.col(g)), nil
		case *querylanguage.Value:
			return s.fieldValue(e.Op, f, y.V)
		}
	case *querylanguage.JSONPath:
		f, err := s.field(x.Name)
		if err != nil {
			return nil, err
		}
		y, ok := e.Y.(*querylanguage.Value)
		if !ok {
			return nil, s.invalid(f.Name, "JSON paths compare to values only")
		}
		return s.pathValue(e.Op, f, x.Path, y.V)
	case *querylanguage.Aggregate:
		y, ok := e.Y.(*querylanguage.Value)
		if !ok {
			return nil, s.invalid(x.String(), "aggregates compare to values only")
		}
		return s.aggregateValue(e.Op, x, y.V)
	}
	return nil, fmt.Errorf("sqlgraph: unexpected binary expression %s", e)
}

func (s *state) fieldValue(op querylanguage.Op, f *graph.Field, v any) (*sql.Predicate, error) {
	col := s.col(f)
	if n, ok := socialgraph.IsNullValue(v); ok {
		if f.Type != field.TypeJSON {
			return nil, s.invalid(f.Name, "%s is only valid on JSON fields", n)
		}
		return jsonNull(op, f, col, n, nil)
	}
	if v == nil {
		switch op {
		case querylanguage.OpEQ:
			return sql.IsNull(col), nil
		case querylanguage.OpNEQ:
			return sql.NotNull(col), nil
		}
		return nil, s.invalid(f.Name, "operator %s does not accept null", op)
	}
	switch op {
	case querylanguage.OpIn, querylanguage.OpNotIn:
		if f.IsJSON() {
			return nil, s.invalid(f.Name, "operator %s is not supported on %s fields", op, f.Type)
		}
		vs, ok := v.([]any)
		if !ok {
			return nil, s.invalid(f.Name, "%s expects a list, got %T", op, v)
		}
		args := make([]any, len(vs))
		for i := range vs {
			a, err := Encode(f, vs[i])
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		if op == querylanguage.OpIn {
			return sql.In(col, args...), nil
		}
		return sql.NotIn(col, args...), nil
	}
	sop, ok := comparisons[op]
	if !ok {
		return nil, fmt.Errorf("sqlgraph: unexpected operator %s", op)
	}
	if f.IsJSON() {
		switch op {
		case querylanguage.OpEQ:
			return sqljson.ValueEQ(col, v), nil
		case querylanguage.OpNEQ:
			return sql.Not(sqljson.ValueEQ(col, v)), nil
		}
		return nil, s.invalid(f.Name, "operator %s is not supported on %s fields", op, f.Type)
	}
	if op != querylanguage.OpEQ && op != querylanguage.OpNEQ && !f.Orderable() {
		return nil, s.invalid(f.Name, "operator %s is not supported on %s fields", op, f.Type)
	}
	a, err := Encode(f, v)
	if err != nil {
		return nil, err
	}
	return sql.P(func(b *sql.Builder) {
		b.Ident(col).WriteString(" " + sop + " ").Arg(a)
	}), nil
}

// jsonNull lowers the JSON null sentinels. path is nil for the whole column.
func jsonNull(op querylanguage.Op, f *graph.Field, col string, n socialgraph.NullValue, path []string) (*sql.Predicate, error) {
	var p *sql.Predicate
	switch {
	case n == socialgraph.JsonNull:
		p = sqljson.ValueIsNull(col, path...)
	case n == socialgraph.DbNull && len(path) == 0:
		p = sql.IsNull(col)
	case n == socialgraph.DbNull:
		p = sql.Not(sqljson.HasKey(col, path...))
	case len(path) == 0:
		p = sql.Or(sql.IsNull(col), sqljson.ValueIsNull(col))
	default:
		p = sql.Or(sql.Not(sqljson.HasKey(col, path...)), sqljson.ValueIsNull(col, path...))
	}
	switch op {
	case querylanguage.OpEQ:
		return p, nil
	case querylanguage.OpNEQ:
		if n == socialgraph.JsonNull && len(path) == 0 {
			return sql.Or(sql.IsNull(col), sql.Not(p)), nil
		}
		return sql.Not(p), nil
	}
	return nil, socialgraph.NewValidationError(f.Name, fmt.Errorf("operator %s does not accept %s", op, n))
}

func (s *state) pathValue(op querylanguage.Op, f *graph.Field, path []string, v any) (*sql.Predicate, error) {
	if f.Type != field.TypeJSON {
		return nil, s.invalid(f.Name, "JSON paths require a JSON field")
	}
	if err := sqljson.ValidatePath(path); err != nil {
		return nil, socialgraph.NewValidationError(f.Name, err)
	}
	col := s.col(f)
	if n, ok := socialgraph.IsNullValue(v); ok {
		return jsonNull(op, f, col, n, path)
	}
	switch op {
	case querylanguage.OpEQ:
		return sqljson.ValueEQ(col, v, path...), nil
	case querylanguage.OpNEQ:
		return sql.Not(sqljson.ValueEQ(col, v, path...)), nil
	}
	return nil, s.invalid(f.Name, "operator %s is not supported on JSON paths", op)
}

var aggregates = map[string]string{
	querylanguage.AggCount: "COUNT",
	querylanguage.AggAvg:   "AVG",
	querylanguage.AggSum:   "SUM",
	querylanguage.AggMin:   "MIN",
	querylanguage.AggMax:   "MAX",
}

func (s *state) aggregateValue(op querylanguage.Op, a *querylanguage.Aggregate, v any) (*sql.Predicate, error) {
	if !s.having {
		return nil, s.invalid(a.String(), "aggregates are only valid in having")
	}
	fn, ok := aggregates[a.Func]
	if !ok {
		return nil, s.invalid(a.String(), "unknown aggregate %q", a.Func)
	}
	f, err := s.field(a.Field)
	if err != nil {
		return nil, err
	}
	if err := checkAggregate(a.Func, f); err != nil {
		return nil, err
	}
	sop, ok := comparisons[op]
	if !ok {
		return nil, s.invalid(a.String(), "operator %s is not supported on aggregates", op)
	}
	arg := v
	if a.Func != querylanguage.AggCount && a.Func != querylanguage.AggAvg {
		if arg, err = Encode(f, v); err != nil {
			return nil, err
		}
	}
	col := s.col(f)
	return sql.P(func(b *sql.Builder) {
		b.WriteString(fn).WriteByte('(').Ident(col).WriteString(") " + sop + " ").Arg(arg)
	}), nil
}

// checkAggregate reports whether the aggregate function applies to f.
func checkAggregate(fn string, f *graph.Field) error {
	switch fn {
	case querylanguage.AggAvg, querylanguage.AggSum:
		if !f.Type.Numeric() {
			return socialgraph.NewValidationError(f.Name, fmt.Errorf("%s requires a numeric field", fn))
		}
	case querylanguage.AggMin, querylanguage.AggMax:
		if !f.Orderable() {
			return socialgraph.NewValidationError(f.Name, fmt.Errorf("%s requires an orderable field", fn))
		}
	}
	return nil
}

func (s *state) evalCall(e *querylanguage.CallExpr) (*sql.Predicate, error) {
	if e.Func == querylanguage.FuncHasEdge {
		return s.evalEdge(e)
	}
	if len(e.Args) != 2 {
		return nil, fmt.Errorf("sqlgraph: %s expects 2 arguments, got %d", e.Func, len(e.Args))
	}
	v, ok := e.Args[1].(*querylanguage.Value)
	if !ok {
		return nil, fmt.Errorf("sqlgraph: %s expects a value argument", e.Func)
	}
	switch x := e.Args[0].(type) {
	case *querylanguage.Field:
		f, err := s.field(x.Name)
		if err != nil {
			return nil, err
		}
		if f.Type == field.TypeStrings {
			return s.listCall(e.Func, f, v.V)
		}
		return s.stringCall(e.Func, f, v.V)
	case *querylanguage.JSONPath:
		f, err := s.field(x.Name)
		if err != nil {
			return nil, err
		}
		return s.pathCall(e.Func, f, x.Path, v.V)
	}
	return nil, fmt.Errorf("sqlgraph: unexpected %s argument %T", e.Func, e.Args[0])
}

func (s *state) stringCall(fn querylanguage.Func, f *graph.Field, v any) (*sql.Predicate, error) {
	if !f.Type.Stringer() {
		return nil, s.invalid(f.Name, "%s requires a string field", fn)
	}
	str, ok := v.(string)
	if !ok {
		return nil, s.invalid(f.Name, "%s expects a string, got %T", fn, v)
	}
	col := s.col(f)
	switch fn {
	case querylanguage.FuncEqualFold:
		return sql.EqualFold(col, str), nil
	case querylanguage.FuncContains:
		return sql.Contains(col, str), nil
	case querylanguage.FuncContainsFold:
		return sql.ContainsFold(col, str), nil
	case querylanguage.FuncHasPrefix:
		return sql.HasPrefix(col, str), nil
	case querylanguage.FuncHasPrefixFold:
		return sql.HasPrefixFold(col, str), nil
	case querylanguage.FuncHasSuffix:
		return sql.HasSuffix(col, str), nil
	case querylanguage.FuncHasSuffixFold:
		return sql.HasSuffixFold(col, str), nil
	}
	return nil, s.invalid(f.Name, "%s is not supported on %s fields", fn, f.Type)
}

func (s *state) listCall(fn querylanguage.Func, f *graph.Field, v any) (*sql.Predicate, error) {
	col := s.col(f)
	switch fn {
	case querylanguage.FuncHas:
		if _, ok := v.(string); !ok {
			return nil, s.invalid(f.Name, "%s expects a string, got %T", fn, v)
		}
		return sqljson.ListHas(col, v), nil
	case querylanguage.FuncHasEvery, querylanguage.FuncHasSome:
		vs, ok := v.([]any)
		if !ok {
			return nil, s.invalid(f.Name, "%s expects a list, got %T", fn, v)
		}
		for _, x := range vs {
			if _, ok := x.(string); !ok {
				return nil, s.invalid(f.Name, "%s expects strings, got %T", fn, x)
			}
		}
		if fn == querylanguage.FuncHasEvery {
			if len(vs) == 0 {
				return sql.True(), nil
			}
			return sqljson.ListHasEvery(col, vs), nil
		}
		return sqljson.ListHasSome(col, vs), nil
	case querylanguage.FuncIsEmpty:
		empty, ok := v.(bool)
		if !ok {
			return nil, s.invalid(f.Name, "%s expects a bool, got %T", fn, v)
		}
		return sqljson.ListIsEmpty(col, empty), nil
	}
	return nil, s.invalid(f.Name, "%s is not supported on list fields", fn)
}

func (s *state) pathCall(fn querylanguage.Func, f *graph.Field, path []string, v any) (*sql.Predicate, error) {
	if f.Type != field.TypeJSON {
		return nil, s.invalid(f.Name, "JSON paths require a JSON field")
	}
	if err := sqljson.ValidatePath(path); err != nil {
		return nil, socialgraph.NewValidationError(f.Name, err)
	}
	col := s.col(f)
	if fn == querylanguage.FuncHas {
		return sqljson.ValueContains(col, v, path...), nil
	}
	str, ok := v.(string)
	if !ok {
		return nil, s.invalid(f.Name, "%s expects a string, got %T", fn, v)
	}
	switch fn {
	case querylanguage.FuncContains:
		return sqljson.StringContains(col, str, path...), nil
	case querylanguage.FuncHasPrefix:
		return sqljson.StringHasPrefix(col, str, path...), nil
	case querylanguage.FuncHasSuffix:
		return sqljson.StringHasSuffix(col, str, path...), nil
	}
	return nil, s.invalid(f.Name, "%s is not supported on JSON paths", fn)
}

// evalEdge lowers has_edge. Both directions render a correlated EXISTS,
// except the bare to-one check, which tests the foreign key.
func (s *state) evalEdge(e *querylanguage.CallExpr) (*sql.Predicate, error) {
	if len(e.Args) == 0 {
		return nil, errors.New("sqlgraph: has_edge expects an edge argument")
	}
	name, ok := e.Args[0].(*querylanguage.Edge)
	if !ok {
		return nil, fmt.Errorf("sqlgraph: has_edge expects an edge, got %T", e.Args[0])
	}
	edge, ok := s.model.Edge(name.Name)
	if !ok {
		return nil, s.invalid(name.Name, "unknown relation on %s", s.model.Name)
	}
	preds := e.Args[1:]
	if edge.Inverse && len(preds) == 0 {
		return sql.NotNull(s.col(edge.Field)), nil
	}
	alias := "t" + strconv.Itoa(s.depth+1)
	to := sql.Table(edge.Target.Table).As(alias)
	sub := sql.Select(to.C(edge.Target.PKColumns()[0])).From(to)
	sub.SetDialect(s.sel.Dialect())
	if edge.Inverse {
		sub.Where(sql.ColumnsEQ(to.C(edge.Target.ID.Column), s.col(edge.Field)))
	} else {
		sub.Where(sql.ColumnsEQ(to.C(edge.Field.Column), s.col(s.model.ID)))
	}
	inner := &state{model: edge.Target, sel: sub, depth: s.depth + 1}
	var ps []*sql.Predicate
	for _, x := range preds {
		p, err := inner.evalExpr(x)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	if len(ps) > 0 {
		sub.Where(sql.And(ps...))
	}
	return sql.Exists(sub), nil
}
