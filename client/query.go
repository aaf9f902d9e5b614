package client

import (
	"context"
	"fmt"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
	"github.com/syssam/socialgraph/graph"
	"github.com/syssam/socialgraph/querylanguage"
)

// Read operations, as reported by Query.Operation.
const (
	OpFindUnique        = "findUnique"
	OpFindUniqueOrThrow = "findUniqueOrThrow"
	OpFindFirst         = "findFirst"
	OpFindFirstOrThrow  = "findFirstOrThrow"
	OpFindMany          = "findMany"
	OpCount             = "count"
	OpAggregate         = "aggregate"
	OpGroupBy           = "groupBy"
)

// Query is a pending read of rows of T. R is the result type: *T for the
// unique and first reads, []*T for findMany and int for count. Nothing is
// read before Exec.
type Query[T any, R any] struct {
	cfg    config
	model  *graph.Model
	op     string
	spec   *sqlgraph.QuerySpec
	key    querylanguage.Key
	decode func(*sqlgraph.Record) *T
	exec   func(context.Context, *Query[T, R]) (R, error)
	err    error
}

func newQuery[T, R any](cfg config, m *graph.Model, op string, decode func(*sqlgraph.Record) *T, exec func(context.Context, *Query[T, R]) (R, error)) *Query[T, R] {
	return &Query[T, R]{
		cfg:    cfg,
		model:  m,
		op:     op,
		spec:   sqlgraph.NewQuerySpec(m),
		decode: decode,
		exec:   exec,
	}
}

// Type returns the model name of the query.
func (q *Query[T, R]) Type() string { return q.model.Name }

// Operation returns the read operation of the query.
func (q *Query[T, R]) Operation() string { return q.op }

// Where adds the predicates to the filter of the query.
func (q *Query[T, R]) Where(ps ...querylanguage.P) *Query[T, R] {
	q.WhereP(ps...)
	return q
}

// WhereP adds the predicates to the filter of the query. Interceptors use
// it to scope queries they do not know the type of.
func (q *Query[T, R]) WhereP(ps ...querylanguage.P) {
	where(q.spec, ps)
}

// OrderBy adds ordering terms. Later terms break ties of earlier ones.
func (q *Query[T, R]) OrderBy(o ...querylanguage.Order) *Query[T, R] {
	orderBy(q.spec, o)
	return q
}

// Cursor starts the read at the row identified by the unique key. The
// cursor row is part of the result; Skip(1) skips it.
func (q *Query[T, R]) Cursor(key querylanguage.Key) *Query[T, R] {
	q.spec.Cursor = key
	return q
}

// Take limits the number of rows. A negative take reads backwards from
// the cursor, or from the end, and returns the rows in query order.
func (q *Query[T, R]) Take(n int) *Query[T, R] {
	q.spec.Limit = &n
	return q
}

// Skip skips the first n rows.
func (q *Query[T, R]) Skip(n int) *Query[T, R] {
	q.spec.Offset = n
	return q
}

// Distinct keeps the first row of each combination of the fields, in
// query order.
func (q *Query[T, R]) Distinct(fields ...string) *Query[T, R] {
	q.spec.Distinct = append(q.spec.Distinct, fields...)
	return q
}

// Select restricts the returned fields. It cannot be combined with Omit
// or Include.
func (q *Query[T, R]) Select(fields ...string) *Query[T, R] {
	q.spec.Select = append(q.spec.Select, fields...)
	return q
}

// Omit removes fields from the result.
func (q *Query[T, R]) Omit(fields ...string) *Query[T, R] {
	q.spec.Omit = append(q.spec.Omit, fields...)
	return q
}

// Include loads the relation. The scopes filter, order and page the
// related rows of each parent.
//
//	client.Profile.FindMany().
//		Include(profile.EdgeFollowers, func(s *client.Scope) {
//			s.OrderBy(follow.CreatedAt.Desc()).Take(10)
//		})
func (q *Query[T, R]) Include(edge string, scopes ...func(*Scope)) *Query[T, R] {
	include(q.spec, edge, scopes)
	return q
}

// IncludeCount loads the number of related rows matching ps.
func (q *Query[T, R]) IncludeCount(edge string, ps ...querylanguage.P) *Query[T, R] {
	includeCount(q.spec, edge, ps)
	return q
}

// Exec runs the query.
func (q *Query[T, R]) Exec(ctx context.Context) (R, error) {
	if q.err != nil {
		var zero R
		return zero, q.err
	}
	qr := socialgraph.QuerierFunc(func(ctx context.Context, sq socialgraph.Query) (socialgraph.Value, error) {
		query, ok := sq.(*Query[T, R])
		if !ok {
			return nil, fmt.Errorf("unexpected query type %T", sq)
		}
		v, err := query.exec(ctx, query)
		if err != nil {
			return nil, queryError(query.model.Name, query.op, err)
		}
		return v, nil
	})
	return withInterceptors[R](ctx, q, qr, q.cfg.inters[q.model.Name])
}

func (q *Query[T, R]) execIn(ctx context.Context, cfg config) (any, error) {
	q.cfg = cfg
	return q.Exec(ctx)
}

// keyPredicate returns the filter selecting the row of the unique key.
func (q *Query[T, R]) keyPredicate() querylanguage.P {
	if q.key == nil {
		return nil
	}
	ps := make([]querylanguage.P, 0, len(q.key))
	for name, v := range q.key {
		ps = append(ps, querylanguage.FieldEQ(name, v))
	}
	return querylanguage.All(ps...)
}

// step returns the traversal hop leaving the rows of the query along edge.
func (q *Query[T, R]) step(edge string) *sqlgraph.Step {
	s := sqlgraph.NewStep(q.model, querylanguage.All(q.spec.Predicate, q.keyPredicate()), edge)
	s.From = q.spec.Path
	return s
}

// Traverse returns to restricted to the rows related to the rows of from
// by the edge. The hop runs as a subquery of the read of to.
//
//	profiles := client.Traverse(
//		client.User.FindUnique(user.ByEmail("a@b.c")),
//		user.EdgeActiveProfile,
//		client.Profile.FindMany(),
//	)
func Traverse[T, R, U any](from *Query[T, R], edge string, to *Query[U, []*U]) *Query[U, []*U] {
	switch {
	case from.err != nil:
		to.err = from.err
		return to
	case to.err != nil:
		return to
	}
	s := from.step(edge)
	target, err := s.Target()
	switch {
	case err != nil:
		to.err = err
	case target != to.model:
		to.err = socialgraph.NewValidationError(edge, fmt.Errorf("relation leads to %s, not %s", target.Name, to.model.Name))
	default:
		to.spec.Path = s
	}
	return to
}

// findUnique reads the row identified by the unique key of the query.
func findUnique[T any](must bool) func(context.Context, *Query[T, *T]) (*T, error) {
	return func(ctx context.Context, q *Query[T, *T]) (*T, error) {
		if _, ok := q.model.UniqueKey(q.key.Fields()...); !ok {
			return nil, socialgraph.NewValidationError("where", fmt.Errorf("%v is not a unique key of %s", q.key.Fields(), q.model.Name))
		}
		s := q.spec
		if s.Limit != nil || s.Offset != 0 || s.Cursor != nil || len(s.Order) > 0 || len(s.Distinct) > 0 {
			return nil, socialgraph.NewValidationError("where", fmt.Errorf("%s accepts no take, skip, cursor, orderBy or distinct", q.op))
		}
		spec := *s
		spec.Predicate = querylanguage.All(s.Predicate, q.keyPredicate())
		recs, err := sqlgraph.QueryNodes(ctx, q.cfg.conn(), &spec)
		switch {
		case err != nil:
			return nil, err
		case len(recs) > 0:
			return q.decode(recs[0]), nil
		case must:
			return nil, socialgraph.NewNotFoundErrorWithID(q.model.Name, map[string]any(q.key))
		default:
			return nil, nil
		}
	}
}

// findFirst reads the first row of the query. A negative take reads the
// last one.
func findFirst[T any](must bool) func(context.Context, *Query[T, *T]) (*T, error) {
	return func(ctx context.Context, q *Query[T, *T]) (*T, error) {
		spec := *q.spec
		n := 1
		if spec.Limit != nil && *spec.Limit < 0 {
			n = -1
		}
		spec.Limit = &n
		recs, err := sqlgraph.QueryNodes(ctx, q.cfg.conn(), &spec)
		switch {
		case err != nil:
			return nil, err
		case len(recs) > 0:
			return q.decode(recs[0]), nil
		case must:
			return nil, socialgraph.NewNotFoundError(q.model.Name)
		default:
			return nil, nil
		}
	}
}

func findMany[T any](ctx context.Context, q *Query[T, []*T]) ([]*T, error) {
	recs, err := sqlgraph.QueryNodes(ctx, q.cfg.conn(), q.spec)
	if err != nil {
		return nil, err
	}
	return decodeAll(q.decode, recs), nil
}

func count[T any](ctx context.Context, q *Query[T, int]) (int, error) {
	return sqlgraph.CountNodes(ctx, q.cfg.conn(), q.spec)
}

// Page is one page of a paginated read.
type Page[T any] struct {
	Items []*T
	// Next is the token of the following page, empty on the last page.
	Next string
}

// Paginate reads the page following token, or the first page when token
// is empty. The page size is the take of the query, which must be
// positive; the primary key breaks ordering ties.
func Paginate[T any](ctx context.Context, q *Query[T, []*T], token string) (*Page[T], error) {
	if q.err != nil {
		return nil, q.err
	}
	if q.spec.Limit == nil || *q.spec.Limit <= 0 {
		return nil, socialgraph.NewValidationError("take", fmt.Errorf("pagination requires a positive take"))
	}
	if q.spec.Cursor != nil || q.spec.Offset != 0 {
		return nil, socialgraph.NewValidationError("cursor", fmt.Errorf("pagination sets cursor and skip itself"))
	}
	size := *q.spec.Limit
	spec := *q.spec
	spec.Order = append([]sqlgraph.OrderTerm(nil), q.spec.Order...)
	for _, f := range q.model.PrimaryKey {
		spec.Order = append(spec.Order, sqlgraph.OrderTerm{Field: f.Name})
	}
	if token != "" {
		cursor, err := sqlgraph.DecodeCursor(q.model, token)
		if err != nil {
			return nil, err
		}
		spec.Cursor, spec.Offset = cursor, 1
	}
	limit := size + 1
	spec.Limit = &limit
	var next string
	read := *q
	read.spec = &spec
	read.exec = func(ctx context.Context, q *Query[T, []*T]) ([]*T, error) {
		recs, token, err := sqlgraph.QueryPage(ctx, q.cfg.conn(), q.spec, size)
		if err != nil {
			return nil, err
		}
		next = token
		return decodeAll(q.decode, recs), nil
	}
	items, err := read.Exec(ctx)
	if err != nil {
		return nil, err
	}
	return &Page[T]{Items: items, Next: next}, nil
}

// Scope shapes the related rows of an include.
type Scope struct {
	spec *sqlgraph.QuerySpec
}

// Where filters the related rows.
func (s *Scope) Where(ps ...querylanguage.P) *Scope {
	where(s.spec, ps)
	return s
}

// OrderBy orders the related rows of each parent.
func (s *Scope) OrderBy(o ...querylanguage.Order) *Scope {
	orderBy(s.spec, o)
	return s
}

// Cursor starts the related rows of each parent at the row of the key.
func (s *Scope) Cursor(key querylanguage.Key) *Scope {
	s.spec.Cursor = key
	return s
}

// Take limits the related rows of each parent.
func (s *Scope) Take(n int) *Scope {
	s.spec.Limit = &n
	return s
}

// Skip skips the first n related rows of each parent.
func (s *Scope) Skip(n int) *Scope {
	s.spec.Offset = n
	return s
}

// Distinct keeps the first related row of each combination of fields.
func (s *Scope) Distinct(fields ...string) *Scope {
	s.spec.Distinct = append(s.spec.Distinct, fields...)
	return s
}

// Select restricts the fields of the related rows.
func (s *Scope) Select(fields ...string) *Scope {
	s.spec.Select = append(s.spec.Select, fields...)
	return s
}

// Omit removes fields from the related rows.
func (s *Scope) Omit(fields ...string) *Scope {
	s.spec.Omit = append(s.spec.Omit, fields...)
	return s
}

// Include loads a relation of the related rows.
func (s *Scope) Include(edge string, scopes ...func(*Scope)) *Scope {
	include(s.spec, edge, scopes)
	return s
}

// IncludeCount loads a relation count of the related rows.
func (s *Scope) IncludeCount(edge string, ps ...querylanguage.P) *Scope {
	includeCount(s.spec, edge, ps)
	return s
}

func where(spec *sqlgraph.QuerySpec, ps []querylanguage.P) {
	spec.Predicate = querylanguage.All(append([]querylanguage.P{spec.Predicate}, ps...)...)
}

func orderBy(spec *sqlgraph.QuerySpec, os []querylanguage.Order) {
	for _, o := range os {
		spec.Order = append(spec.Order, sqlgraph.OrderTerm{Field: o.Field, Desc: o.Desc, Agg: o.Agg})
	}
}

func include(spec *sqlgraph.QuerySpec, edge string, scopes []func(*Scope)) {
	inc := &sqlgraph.IncludeSpec{Edge: edge}
	if len(scopes) > 0 {
		s := &Scope{spec: &sqlgraph.QuerySpec{}}
		for _, scope := range scopes {
			scope(s)
		}
		inc.Query = s.spec
	}
	spec.Include = append(spec.Include, inc)
}

func includeCount(spec *sqlgraph.QuerySpec, edge string, ps []querylanguage.P) {
	spec.Counts = append(spec.Counts, &sqlgraph.CountSpec{Edge: edge, Predicate: querylanguage.All(ps...)})
}

// withInterceptors runs the query through the interceptors, outermost
// first.
func withInterceptors[V any](ctx context.Context, q socialgraph.Query, qr socialgraph.Querier, inters []socialgraph.Interceptor) (v V, err error) {
	for i := len(inters) - 1; i >= 0; i-- {
		if inters[i] == nil {
			return v, fmt.Errorf("uninitialized interceptor on %s", q.Type())
		}
		qr = inters[i].Intercept(qr)
	}
	rv, err := qr.Query(ctx, q)
	if err != nil {
		return v, err
	}
	if rv == nil {
		return v, nil
	}
	vt, ok := rv.(V)
	if !ok {
		return v, fmt.Errorf("unexpected type %T returned from %T. expected type: %T", rv, q, v)
	}
	return vt, nil
}
