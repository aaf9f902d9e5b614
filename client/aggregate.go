package client

import (
	"context"
	"fmt"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
	"github.com/syssam/socialgraph/graph"
	"github.com/syssam/socialgraph/querylanguage"
)

// Aggregates holds aggregate results keyed by function and field name.
type Aggregates map[string]map[string]any

// CountAll returns the number of rows.
func (a Aggregates) CountAll() int { return a.Count(sqlgraph.CountAll) }

// Count returns the number of non-null values of the field.
func (a Aggregates) Count(field string) int {
	n, _ := a[querylanguage.AggCount][field].(int)
	return n
}

// Avg returns the average of the field, nil over an empty set.
func (a Aggregates) Avg(field string) *float64 {
	if x, ok := a[querylanguage.AggAvg][field].(float64); ok {
		return &x
	}
	return nil
}

// Sum returns the sum of the field, nil over an empty set.
func (a Aggregates) Sum(field string) any { return a[querylanguage.AggSum][field] }

// Min returns the smallest value of the field, nil over an empty set.
func (a Aggregates) Min(field string) any { return a[querylanguage.AggMin][field] }

// Max returns the largest value of the field, nil over an empty set.
func (a Aggregates) Max(field string) any { return a[querylanguage.AggMax][field] }

// aggregations collects the aggregate terms of AggregateQuery and
// GroupByQuery.
type aggregations []sqlgraph.Aggregation

func (as *aggregations) add(fn string, fields []string) {
	for _, f := range fields {
		*as = append(*as, sqlgraph.Aggregation{Func: fn, Field: f})
	}
}

// AggregateQuery is a pending aggregate over the rows of T.
type AggregateQuery[T any] struct {
	cfg   config
	model *graph.Model
	spec  *sqlgraph.QuerySpec
	aggs  aggregations
}

func newAggregateQuery[T any](cfg config, m *graph.Model) *AggregateQuery[T] {
	return &AggregateQuery[T]{cfg: cfg, model: m, spec: sqlgraph.NewQuerySpec(m)}
}

// Type returns the model name of the query.
func (q *AggregateQuery[T]) Type() string { return q.model.Name }

// Operation returns "aggregate".
func (q *AggregateQuery[T]) Operation() string { return OpAggregate }

// Where filters the aggregated rows.
func (q *AggregateQuery[T]) Where(ps ...querylanguage.P) *AggregateQuery[T] {
	q.WhereP(ps...)
	return q
}

// WhereP adds the predicates to the filter of the query.
func (q *AggregateQuery[T]) WhereP(ps ...querylanguage.P) {
	where(q.spec, ps)
}

// OrderBy orders the rows selected by Cursor, Take and Skip.
func (q *AggregateQuery[T]) OrderBy(o ...querylanguage.Order) *AggregateQuery[T] {
	orderBy(q.spec, o)
	return q
}

// Cursor starts the aggregated rows at the row of the key.
func (q *AggregateQuery[T]) Cursor(key querylanguage.Key) *AggregateQuery[T] {
	q.spec.Cursor = key
	return q
}

// Take aggregates the first n rows only.
func (q *AggregateQuery[T]) Take(n int) *AggregateQuery[T] {
	q.spec.Limit = &n
	return q
}

// Skip skips the first n rows.
func (q *AggregateQuery[T]) Skip(n int) *AggregateQuery[T] {
	q.spec.Offset = n
	return q
}

// CountAll counts the rows.
func (q *AggregateQuery[T]) CountAll() *AggregateQuery[T] {
	q.aggs.add(querylanguage.AggCount, []string{sqlgraph.CountAll})
	return q
}

// Count counts the non-null values of the fields.
func (q *AggregateQuery[T]) Count(fields ...string) *AggregateQuery[T] {
	q.aggs.add(querylanguage.AggCount, fields)
	return q
}

// Avg averages numeric fields.
func (q *AggregateQuery[T]) Avg(fields ...string) *AggregateQuery[T] {
	q.aggs.add(querylanguage.AggAvg, fields)
	return q
}

// Sum sums numeric fields.
func (q *AggregateQuery[T]) Sum(fields ...string) *AggregateQuery[T] {
	q.aggs.add(querylanguage.AggSum, fields)
	return q
}

// Min returns the smallest values of orderable fields.
func (q *AggregateQuery[T]) Min(fields ...string) *AggregateQuery[T] {
	q.aggs.add(querylanguage.AggMin, fields)
	return q
}

// Max returns the largest values of orderable fields.
func (q *AggregateQuery[T]) Max(fields ...string) *AggregateQuery[T] {
	q.aggs.add(querylanguage.AggMax, fields)
	return q
}

// Exec runs the aggregate.
func (q *AggregateQuery[T]) Exec(ctx context.Context) (Aggregates, error) {
	qr := socialgraph.QuerierFunc(func(ctx context.Context, sq socialgraph.Query) (socialgraph.Value, error) {
		query, ok := sq.(*AggregateQuery[T])
		if !ok {
			return nil, fmt.Errorf("unexpected query type %T", sq)
		}
		res, err := sqlgraph.AggregateNodes(ctx, query.cfg.conn(), &sqlgraph.AggregateSpec{
			Query:        query.spec,
			Aggregations: query.aggs,
		})
		if err != nil {
			return nil, queryError(query.model.Name, OpAggregate, err)
		}
		return Aggregates(res), nil
	})
	return withInterceptors[Aggregates](ctx, q, qr, q.cfg.inters[q.model.Name])
}

func (q *AggregateQuery[T]) execIn(ctx context.Context, cfg config) (any, error) {
	q.cfg = cfg
	return q.Exec(ctx)
}

// Group is one group of a group by.
type Group struct {
	// Values holds the by fields of the group.
	Values     map[string]any
	Aggregates Aggregates
}

// GroupByQuery is a pending group by over the rows of T.
type GroupByQuery[T any] struct {
	cfg   config
	model *graph.Model
	spec  *sqlgraph.GroupBySpec
	aggs  aggregations
}

func newGroupByQuery[T any](cfg config, m *graph.Model, by []string) *GroupByQuery[T] {
	return &GroupByQuery[T]{cfg: cfg, model: m, spec: &sqlgraph.GroupBySpec{Model: m, By: by}}
}

// Type returns the model name of the query.
func (q *GroupByQuery[T]) Type() string { return q.model.Name }

// Operation returns "groupBy".
func (q *GroupByQuery[T]) Operation() string { return OpGroupBy }

// Where filters the rows before grouping.
func (q *GroupByQuery[T]) Where(ps ...querylanguage.P) *GroupByQuery[T] {
	q.WhereP(ps...)
	return q
}

// WhereP adds the predicates to the filter of the query.
func (q *GroupByQuery[T]) WhereP(ps ...querylanguage.P) {
	q.spec.Predicate = querylanguage.All(append([]querylanguage.P{q.spec.Predicate}, ps...)...)
}

// Having filters the groups. Plain field references must be part of by;
// aggregates may reference any field.
//
//	Having(querylanguage.Agg(querylanguage.AggCount, "id").GT(1))
func (q *GroupByQuery[T]) Having(ps ...querylanguage.P) *GroupByQuery[T] {
	q.spec.Having = querylanguage.All(append([]querylanguage.P{q.spec.Having}, ps...)...)
	return q
}

// OrderBy orders the groups by by fields or by aggregates.
func (q *GroupByQuery[T]) OrderBy(o ...querylanguage.Order) *GroupByQuery[T] {
	for _, o := range o {
		q.spec.Order = append(q.spec.Order, sqlgraph.OrderTerm{Field: o.Field, Desc: o.Desc, Agg: o.Agg})
	}
	return q
}

// Take limits the number of groups.
func (q *GroupByQuery[T]) Take(n int) *GroupByQuery[T] {
	q.spec.Limit = &n
	return q
}

// Skip skips the first n groups.
func (q *GroupByQuery[T]) Skip(n int) *GroupByQuery[T] {
	q.spec.Offset = n
	return q
}

// CountAll counts the rows of each group.
func (q *GroupByQuery[T]) CountAll() *GroupByQuery[T] {
	q.aggs.add(querylanguage.AggCount, []string{sqlgraph.CountAll})
	return q
}

// Count counts the non-null values of the fields in each group.
func (q *GroupByQuery[T]) Count(fields ...string) *GroupByQuery[T] {
	q.aggs.add(querylanguage.AggCount, fields)
	return q
}

// Avg averages numeric fields in each group.
func (q *GroupByQuery[T]) Avg(fields ...string) *GroupByQuery[T] {
	q.aggs.add(querylanguage.AggAvg, fields)
	return q
}

// Sum sums numeric fields in each group.
func (q *GroupByQuery[T]) Sum(fields ...string) *GroupByQuery[T] {
	q.aggs.add(querylanguage.AggSum, fields)
	return q
}

// Min returns the smallest values in each group.
func (q *GroupByQuery[T]) Min(fields ...string) *GroupByQuery[T] {
	q.aggs.add(querylanguage.AggMin, fields)
	return q
}

// Max returns the largest values in each group.
func (q *GroupByQuery[T]) Max(fields ...string) *GroupByQuery[T] {
	q.aggs.add(querylanguage.AggMax, fields)
	return q
}

// Exec runs the group by.
func (q *GroupByQuery[T]) Exec(ctx context.Context) ([]*Group, error) {
	qr := socialgraph.QuerierFunc(func(ctx context.Context, sq socialgraph.Query) (socialgraph.Value, error) {
		query, ok := sq.(*GroupByQuery[T])
		if !ok {
			return nil, fmt.Errorf("unexpected query type %T", sq)
		}
		spec := *query.spec
		spec.Aggregations = query.aggs
		groups, err := sqlgraph.GroupNodes(ctx, query.cfg.conn(), &spec)
		if err != nil {
			return nil, queryError(query.model.Name, OpGroupBy, err)
		}
		out := make([]*Group, len(groups))
		for i, g := range groups {
			out[i] = &Group{Values: g.Values, Aggregates: Aggregates(g.Aggregates)}
		}
		return out, nil
	})
	return withInterceptors[[]*Group](ctx, q, qr, q.cfg.inters[q.model.Name])
}

func (q *GroupByQuery[T]) execIn(ctx context.Context, cfg config) (any, error) {
	q.cfg = cfg
	return q.Exec(ctx)
}
