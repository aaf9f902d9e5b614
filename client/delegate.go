package client

import (
	"fmt"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
	"github.com/syssam/socialgraph/graph"
	"github.com/syssam/socialgraph/querylanguage"
)

// delegate implements the operations shared by the model clients. T is
// the entity, C and U its create and update inputs.
type delegate[T any, C creator, U updater] struct {
	config
	model  *graph.Model
	decode func(*sqlgraph.Record) *T
}

func newDelegate[T any, C creator, U updater](cfg config, k kind[T, C, U]) *delegate[T, C, U] {
	return &delegate[T, C, U]{config: cfg, model: cfg.graph.MustModel(k.name), decode: k.decode}
}

// Use adds a list of mutation hooks to the hooks stack.
// A call to `Use(f, g, h)` equals to `f(g(h(...)))`.
func (d *delegate[T, C, U]) Use(hooks ...socialgraph.Hook) {
	d.hooks[d.model.Name] = append(d.hooks[d.model.Name], hooks...)
}

// Intercept adds a list of query interceptors to the interceptors stack.
// A call to `Intercept(f, g, h)` equals to `f(g(h(...)))`.
func (d *delegate[T, C, U]) Intercept(inters ...socialgraph.Interceptor) {
	d.inters[d.model.Name] = append(d.inters[d.model.Name], inters...)
}

// Hooks returns the mutation hooks of the model.
func (d *delegate[T, C, U]) Hooks() []socialgraph.Hook {
	return d.hooks[d.model.Name]
}

// Interceptors returns the query interceptors of the model.
func (d *delegate[T, C, U]) Interceptors() []socialgraph.Interceptor {
	return d.inters[d.model.Name]
}

// FindUnique returns a query for the row with the unique key, nil when
// there is none. The key must name exactly the fields of one unique key.
func (d *delegate[T, C, U]) FindUnique(key querylanguage.Key) *Query[T, *T] {
	q := newQuery(d.config, d.model, OpFindUnique, d.decode, findUnique[T](false))
	q.key = key
	return q
}

// FindUniqueOrThrow is like FindUnique but fails with a NotFoundError.
func (d *delegate[T, C, U]) FindUniqueOrThrow(key querylanguage.Key) *Query[T, *T] {
	q := newQuery(d.config, d.model, OpFindUniqueOrThrow, d.decode, findUnique[T](true))
	q.key = key
	return q
}

// FindFirst returns a query for the first matching row, nil when there is
// none.
func (d *delegate[T, C, U]) FindFirst() *Query[T, *T] {
	return newQuery(d.config, d.model, OpFindFirst, d.decode, findFirst[T](false))
}

// FindFirstOrThrow is like FindFirst but fails with a NotFoundError.
func (d *delegate[T, C, U]) FindFirstOrThrow() *Query[T, *T] {
	return newQuery(d.config, d.model, OpFindFirstOrThrow, d.decode, findFirst[T](true))
}

// FindMany returns a query for the matching rows.
func (d *delegate[T, C, U]) FindMany() *Query[T, []*T] {
	return newQuery(d.config, d.model, OpFindMany, d.decode, findMany[T])
}

// Count returns a query counting the matching rows.
func (d *delegate[T, C, U]) Count() *Query[T, int] {
	return newQuery(d.config, d.model, OpCount, d.decode, count[T])
}

// Aggregate returns an aggregate over the matching rows.
func (d *delegate[T, C, U]) Aggregate() *AggregateQuery[T] {
	return newAggregateQuery[T](d.config, d.model)
}

// GroupBy returns a group by of the fields. An empty list fails on Exec.
func (d *delegate[T, C, U]) GroupBy(by ...string) *GroupByQuery[T] {
	return newGroupByQuery[T](d.config, d.model, by)
}

func (d *delegate[T, C, U]) createSpec(data C) *sqlgraph.CreateSpec {
	spec := data.createSpec()
	spec.Model = d.model
	return spec
}

// Create returns a write inserting one row and its nested relations.
func (d *delegate[T, C, U]) Create(data C) *Write[T, *T] {
	m := &mutation{op: socialgraph.OpCreate, model: d.model, creates: []*sqlgraph.CreateSpec{d.createSpec(data)}}
	return newWrite(d.config, m, d.decode, createOne[T])
}

func (d *delegate[T, C, U]) createMutation(data []C) *mutation {
	m := &mutation{op: socialgraph.OpCreateMany, model: d.model}
	for _, c := range data {
		m.creates = append(m.creates, d.createSpec(c))
	}
	return m
}

// CreateMany returns a write inserting the rows and reporting their
// number. Nested relations are not supported.
func (d *delegate[T, C, U]) CreateMany(data ...C) *Write[T, int] {
	return newWrite(d.config, d.createMutation(data), d.decode, createMany[T])
}

// CreateManyAndReturn is like CreateMany but returns the inserted rows.
func (d *delegate[T, C, U]) CreateManyAndReturn(data ...C) *Write[T, []*T] {
	return newWrite(d.config, d.createMutation(data), d.decode, createManyAndReturn[T])
}

// Update returns a write updating the row with the unique key. It fails
// with a NotFoundError when there is no such row.
func (d *delegate[T, C, U]) Update(key querylanguage.Key, data U) *Write[T, *T] {
	m := &mutation{op: socialgraph.OpUpdate, model: d.model, key: key, update: data.updateSpec()}
	return newWrite(d.config, m, d.decode, updateOne[T])
}

// UpdateMany returns a write updating the rows matching Where and
// reporting their number.
func (d *delegate[T, C, U]) UpdateMany(data U) *Write[T, int] {
	m := &mutation{op: socialgraph.OpUpdateMany, model: d.model, update: data.updateSpec()}
	return newWrite(d.config, m, d.decode, updateMany[T])
}

// UpdateManyAndReturn is like UpdateMany but returns the updated rows.
func (d *delegate[T, C, U]) UpdateManyAndReturn(data U) *Write[T, []*T] {
	m := &mutation{op: socialgraph.OpUpdateMany, model: d.model, update: data.updateSpec()}
	return newWrite(d.config, m, d.decode, updateManyAndReturn[T])
}

// Upsert returns a write updating the row with the unique key, or
// creating it from create when there is none.
func (d *delegate[T, C, U]) Upsert(key querylanguage.Key, create C, update U) *Write[T, *T] {
	m := &mutation{
		op:      socialgraph.OpUpsert,
		model:   d.model,
		key:     key,
		creates: []*sqlgraph.CreateSpec{d.createSpec(create)},
		update:  update.updateSpec(),
	}
	w := newWrite(d.config, m, d.decode, upsertOne[T])
	if _, ok := d.model.UniqueKey(key.Fields()...); !ok {
		w.err = socialgraph.NewValidationError("where", fmt.Errorf("%v is not a unique key of %s", key.Fields(), d.model.Name))
	}
	return w
}

// Delete returns a write deleting the row with the unique key and
// returning it. It fails with a NotFoundError when there is no such row.
func (d *delegate[T, C, U]) Delete(key querylanguage.Key) *Write[T, *T] {
	m := &mutation{op: socialgraph.OpDelete, model: d.model, key: key}
	return newWrite(d.config, m, d.decode, deleteOne[T])
}

// DeleteMany returns a write deleting the rows matching Where and
// reporting their number.
func (d *delegate[T, C, U]) DeleteMany() *Write[T, int] {
	m := &mutation{op: socialgraph.OpDeleteMany, model: d.model}
	return newWrite(d.config, m, d.decode, deleteMany[T])
}

// traverse returns the rows of to related to the row with the primary
// key id by the edge.
func traverse[U any](from *graph.Model, id string, edge string, to *Query[U, []*U]) *Query[U, []*U] {
	q := &Query[struct{}, struct{}]{model: from, spec: sqlgraph.NewQuerySpec(from)}
	q.spec.Predicate = querylanguage.FieldEQ(from.ID.Name, id)
	return Traverse(q, edge, to)
}
