package client

import (
	"context"
	"fmt"
	"slices"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
	"github.com/syssam/socialgraph/graph"
	"github.com/syssam/socialgraph/querylanguage"
)

// mutation is the pending write hooks receive.
type mutation struct {
	op    socialgraph.Op
	model *graph.Model
	// creates holds the rows of create operations and the create branch of
	// upserts.
	creates []*sqlgraph.CreateSpec
	update  *sqlgraph.UpdateSpec
	key     querylanguage.Key
	where   querylanguage.P
	limit   *int

	skipDuplicates bool
}

var _ socialgraph.Mutation = (*mutation)(nil)

// Op returns the operation of the mutation.
func (m *mutation) Op() socialgraph.Op { return m.op }

// Type returns the model name.
func (m *mutation) Type() string { return m.model.Name }

// Key returns the unique key of single-row updates, upserts and deletes.
func (m *mutation) Key() querylanguage.Key { return m.key }

// Where returns the filter of the mutation.
func (m *mutation) Where() querylanguage.P { return m.where }

// WhereP narrows the rows written by updates and deletes. Hooks use it to
// scope writes; creates ignore it.
func (m *mutation) WhereP(ps ...querylanguage.P) {
	m.where = querylanguage.All(append([]querylanguage.P{m.where}, ps...)...)
}

// data returns the field maps written by the mutation.
func (m *mutation) data() []map[string]any {
	ds := make([]map[string]any, 0, len(m.creates)+1)
	for _, c := range m.creates {
		ds = append(ds, c.Fields)
	}
	if m.update != nil {
		ds = append(ds, m.update.Fields)
	}
	return ds
}

// Fields returns the names of the fields written by the mutation, in
// model order.
func (m *mutation) Fields() []string {
	var names []string
	for _, f := range m.model.Fields {
		written := slices.ContainsFunc(m.data(), func(d map[string]any) bool {
			_, ok := d[f.Name]
			return ok
		})
		var op bool
		if m.update != nil {
			_, op = m.update.Ops[f.Name]
		}
		if written || op {
			names = append(names, f.Name)
		}
	}
	return names
}

// Field returns the value written to the field. Creates of many rows
// report the value of the first row writing it.
func (m *mutation) Field(name string) (any, bool) {
	for _, d := range m.data() {
		if v, ok := d[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// SetField writes the field on every row of the mutation.
func (m *mutation) SetField(name string, v any) error {
	if m.op.Is(socialgraph.OpDelete | socialgraph.OpDeleteMany) {
		return fmt.Errorf("%s on %s has no fields", m.op, m.model.Name)
	}
	if _, ok := m.model.Field(name); !ok {
		return socialgraph.NewValidationError(name, fmt.Errorf("unknown field on %s", m.model.Name))
	}
	for _, c := range m.creates {
		if c.Fields == nil {
			c.Fields = make(map[string]any)
		}
		c.Fields[name] = v
	}
	if m.update != nil {
		if m.update.Fields == nil {
			m.update.Fields = make(map[string]any)
		}
		m.update.Fields[name] = v
	}
	return nil
}

// Write is a pending write of T. R is the result: *T for single-row
// operations, []*T for the AndReturn variants and int for the counts of
// the many variants. Nothing is written before Exec.
type Write[T any, R any] struct {
	cfg    config
	m      *mutation
	ret    *sqlgraph.QuerySpec
	decode func(*sqlgraph.Record) *T
	exec   func(context.Context, sqlgraph.Conn, *Write[T, R]) (R, error)
	err    error
}

func newWrite[T, R any](cfg config, m *mutation, decode func(*sqlgraph.Record) *T, exec func(context.Context, sqlgraph.Conn, *Write[T, R]) (R, error)) *Write[T, R] {
	return &Write[T, R]{
		cfg:    cfg,
		m:      m,
		ret:    sqlgraph.NewQuerySpec(m.model),
		decode: decode,
		exec:   exec,
	}
}

// Select restricts the fields of the returned rows.
func (w *Write[T, R]) Select(fields ...string) *Write[T, R] {
	w.ret.Select = append(w.ret.Select, fields...)
	return w
}

// Omit removes fields from the returned rows.
func (w *Write[T, R]) Omit(fields ...string) *Write[T, R] {
	w.ret.Omit = append(w.ret.Omit, fields...)
	return w
}

// Include loads a relation of the returned rows.
func (w *Write[T, R]) Include(edge string, scopes ...func(*Scope)) *Write[T, R] {
	include(w.ret, edge, scopes)
	return w
}

// IncludeCount loads a relation count of the returned rows.
func (w *Write[T, R]) IncludeCount(edge string, ps ...querylanguage.P) *Write[T, R] {
	includeCount(w.ret, edge, ps)
	return w
}

// Where adds conditions to the rows written by updates and deletes. On
// single-row operations the row of the key must also match them.
func (w *Write[T, R]) Where(ps ...querylanguage.P) *Write[T, R] {
	w.m.WhereP(ps...)
	return w
}

// Limit bounds the number of rows updateMany and deleteMany write.
func (w *Write[T, R]) Limit(n int) *Write[T, R] {
	w.m.limit = &n
	return w
}

// SkipDuplicates skips the rows of createMany violating a unique key.
func (w *Write[T, R]) SkipDuplicates() *Write[T, R] {
	w.m.skipDuplicates = true
	return w
}

// Exec runs the hooks of the model and the write, in one transaction.
func (w *Write[T, R]) Exec(ctx context.Context) (R, error) {
	var zero R
	if w.err != nil {
		return zero, w.err
	}
	if err := w.check(); err != nil {
		return zero, err
	}
	return withHooks(ctx, w.mutate, w.m, w.cfg.hooks[w.m.model.Name])
}

// execIn runs the write on an open transaction.
func (w *Write[T, R]) execIn(ctx context.Context, cfg config) (any, error) {
	w.cfg = cfg
	return w.Exec(ctx)
}

// check rejects misuse before any statement runs.
func (w *Write[T, R]) check() error {
	switch {
	case len(w.ret.Select) > 0 && len(w.ret.Omit) > 0:
		return socialgraph.NewValidationError("select", fmt.Errorf("select and omit are exclusive"))
	case len(w.ret.Select) > 0 && (len(w.ret.Include) > 0 || len(w.ret.Counts) > 0):
		return socialgraph.NewValidationError("select", fmt.Errorf("select and include are exclusive"))
	case w.m.limit != nil && *w.m.limit < 0:
		return socialgraph.NewValidationError("limit", fmt.Errorf("must not be negative"))
	}
	return nil
}

func (w *Write[T, R]) mutate(ctx context.Context) (R, error) {
	var out R
	err := w.cfg.inTx(ctx, func(c sqlgraph.Conn) error {
		var err error
		out, err = w.exec(ctx, c, w)
		return err
	})
	return out, mutationError(w.m.model.Name, w.m.op.String(), err)
}

// readBack reads the written rows in key order, shaped by the returning
// options of the write.
func (w *Write[T, R]) readBack(ctx context.Context, c sqlgraph.Conn, keys [][]any) ([]*T, error) {
	recs, err := sqlgraph.NodesByKeys(ctx, c, w.ret, keys)
	if err != nil {
		return nil, err
	}
	return decodeAll(w.decode, recs), nil
}

func (w *Write[T, R]) readOne(ctx context.Context, c sqlgraph.Conn, key []any) (*T, error) {
	nodes, err := w.readBack(ctx, c, [][]any{key})
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, socialgraph.NewNotFoundErrorWithID(w.m.model.Name, key)
	}
	return nodes[0], nil
}

// The write operations.

func createOne[T any](ctx context.Context, c sqlgraph.Conn, w *Write[T, *T]) (*T, error) {
	key, err := sqlgraph.CreateNode(ctx, c, w.m.creates[0])
	if err != nil {
		return nil, err
	}
	return w.readOne(ctx, c, key)
}

func createMany[T any](ctx context.Context, c sqlgraph.Conn, w *Write[T, int]) (int, error) {
	n, _, err := sqlgraph.BatchCreate(ctx, c, &sqlgraph.BatchCreateSpec{
		Nodes:          w.m.creates,
		SkipDuplicates: w.m.skipDuplicates,
	})
	return n, err
}

func createManyAndReturn[T any](ctx context.Context, c sqlgraph.Conn, w *Write[T, []*T]) ([]*T, error) {
	_, keys, err := sqlgraph.BatchCreate(ctx, c, &sqlgraph.BatchCreateSpec{
		Nodes:          w.m.creates,
		SkipDuplicates: w.m.skipDuplicates,
		Returning:      true,
	})
	if err != nil {
		return nil, err
	}
	return w.readBack(ctx, c, keys)
}

func (w *Write[T, R]) updateSpec() *sqlgraph.UpdateSpec {
	spec := *w.m.update
	spec.Model, spec.Key, spec.Predicate, spec.Limit = w.m.model, w.m.key, w.m.where, w.m.limit
	return &spec
}

func updateOne[T any](ctx context.Context, c sqlgraph.Conn, w *Write[T, *T]) (*T, error) {
	key, err := sqlgraph.UpdateNode(ctx, c, w.updateSpec())
	if err != nil {
		return nil, err
	}
	return w.readOne(ctx, c, key)
}

func updateMany[T any](ctx context.Context, c sqlgraph.Conn, w *Write[T, int]) (int, error) {
	keys, err := sqlgraph.UpdateNodes(ctx, c, w.updateSpec())
	return len(keys), err
}

func updateManyAndReturn[T any](ctx context.Context, c sqlgraph.Conn, w *Write[T, []*T]) ([]*T, error) {
	keys, err := sqlgraph.UpdateNodes(ctx, c, w.updateSpec())
	if err != nil {
		return nil, err
	}
	return w.readBack(ctx, c, keys)
}

func upsertOne[T any](ctx context.Context, c sqlgraph.Conn, w *Write[T, *T]) (*T, error) {
	key, err := sqlgraph.UpsertNode(ctx, c, &sqlgraph.UpsertSpec{
		Model:  w.m.model,
		Key:    w.m.key,
		Create: w.m.creates[0],
		Update: w.updateSpec(),
	})
	if err != nil {
		return nil, err
	}
	return w.readOne(ctx, c, key)
}

func deleteOne[T any](ctx context.Context, c sqlgraph.Conn, w *Write[T, *T]) (*T, error) {
	rec, err := sqlgraph.DeleteNode(ctx, c, &sqlgraph.DeleteSpec{
		Model:     w.m.model,
		Key:       w.m.key,
		Predicate: w.m.where,
		Return:    w.ret,
	})
	if err != nil {
		return nil, err
	}
	return w.decode(rec), nil
}

func deleteMany[T any](ctx context.Context, c sqlgraph.Conn, w *Write[T, int]) (int, error) {
	return sqlgraph.DeleteNodes(ctx, c, &sqlgraph.DeleteSpec{
		Model:     w.m.model,
		Predicate: w.m.where,
		Limit:     w.m.limit,
	})
}

// withHooks runs exec through the hooks, outermost first. A hook may
// change the mutation before calling the next mutator.
func withHooks[V any](ctx context.Context, exec func(context.Context) (V, error), mu *mutation, hooks []socialgraph.Hook) (value V, err error) {
	if len(hooks) == 0 {
		return exec(ctx)
	}
	var mut socialgraph.Mutator = socialgraph.MutateFunc(func(ctx context.Context, m socialgraph.Mutation) (socialgraph.Value, error) {
		mutationT, ok := m.(*mutation)
		if !ok {
			return nil, fmt.Errorf("unexpected mutation type %T", m)
		}
		// Set the mutation to the builder.
		*mu = *mutationT
		return exec(ctx)
	})
	for i := len(hooks) - 1; i >= 0; i-- {
		if hooks[i] == nil {
			return value, fmt.Errorf("uninitialized hook on %s", mu.Type())
		}
		mut = hooks[i](mut)
	}
	v, err := mut.Mutate(ctx, mu)
	if err != nil {
		return value, err
	}
	nv, ok := v.(V)
	if !ok {
		return value, fmt.Errorf("unexpected node type %T returned from %T", v, mu)
	}
	return nv, nil
}
