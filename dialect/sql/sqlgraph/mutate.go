package sqlgraph

import (
	"context"
	"fmt"
	"slices"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/contrib/dataloader"
	"github.com/syssam/socialgraph/dialect"
	"github.com/syssam/socialgraph/dialect/sql"
	"github.com/syssam/socialgraph/dialect/sqlschema"
	"github.com/syssam/socialgraph/graph"
	"github.com/syssam/socialgraph/querylanguage"
	"github.com/syssam/socialgraph/schema/field"
)

// The mutation functions expect c to run inside a transaction. They
// return the primary keys of the written rows; NodesByKeys reads them back.

// EdgeSpec sets a relation in a create or an update.
type EdgeSpec struct {
	Edge string
	// Connect links existing rows identified by a unique key.
	Connect []map[string]any
	// Create inserts new related rows.
	Create []*CreateSpec
	// Disconnect clears an optional to-one relation. Update only.
	Disconnect bool
}

// CreateSpec describes the insert of one row. Fields missing from Fields
// take their default.
type CreateSpec struct {
	Model  *graph.Model
	Fields map[string]any
	Edges  []*EdgeSpec
}

// BatchCreateSpec describes a multi-row insert.
type BatchCreateSpec struct {
	Nodes []*CreateSpec
	// SkipDuplicates skips rows violating a unique key.
	SkipDuplicates bool
	// Returning reports the keys of the inserted rows.
	Returning bool
}

// Arithmetic operators of FieldOp.
const (
	OpIncrement = "increment"
	OpDecrement = "decrement"
	OpMultiply  = "multiply"
	OpDivide    = "divide"
)

// FieldOp is an atomic update of a numeric field relative to its current
// value.
type FieldOp struct {
	Op    string
	Value any
}

// UpdateSpec describes an update. Key selects one row (UpdateNode);
// Predicate selects the rows (UpdateNodes), or adds conditions to Key.
type UpdateSpec struct {
	Model     *graph.Model
	Key       map[string]any
	Predicate querylanguage.P
	Fields    map[string]any
	Ops       map[string]FieldOp
	Edges     []*EdgeSpec
	// Limit bounds the number of updated rows of UpdateNodes.
	Limit *int
}

// UpsertSpec updates the row identified by Key, or creates it.
type UpsertSpec struct {
	Model  *graph.Model
	Key    map[string]any
	Create *CreateSpec
	Update *UpdateSpec
}

// DeleteSpec describes a delete, selected like UpdateSpec.
type DeleteSpec struct {
	Model     *graph.Model
	Key       map[string]any
	Predicate querylanguage.P
	Limit     *int
	// Return shapes the record DeleteNode returns.
	Return *QuerySpec
}

// CreateNode inserts the row and its nested relations.
func CreateNode(ctx context.Context, c Conn, spec *CreateSpec) ([]any, error) {
	m := spec.Model
	values, err := createValues(ctx, c, spec, true)
	if err != nil {
		return nil, err
	}
	cols, args := make([]string, 0, len(values)), make([]any, 0, len(values))
	for _, f := range m.Fields {
		if v, ok := values[f.Name]; ok {
			cols, args = append(cols, f.Column), append(args, v)
		}
	}
	ins := sql.Dialect(c.Dialect).Insert(m.Table).Columns(cols...).Values(args...)
	if _, err := c.exec(ctx, ins); err != nil {
		return nil, err
	}
	key := make([]any, len(m.PrimaryKey))
	for i, f := range m.PrimaryKey {
		if key[i], err = Decode(f, values[f.Name]); err != nil {
			return nil, err
		}
	}
	for _, es := range spec.Edges {
		e, _ := m.Edge(es.Edge)
		if e.Inverse {
			continue
		}
		if err := setChildren(ctx, c, e, key[0], es); err != nil {
			return nil, err
		}
	}
	return key, nil
}

// createValues validates the fields of spec, applies defaults and resolves
// the foreign keys of to-one relations. The result maps field names to
// encoded values.
func createValues(ctx context.Context, c Conn, spec *CreateSpec, nested bool) (map[string]any, error) {
	m := spec.Model
	for name := range spec.Fields {
		if _, ok := m.Field(name); !ok {
			return nil, invalid(name, "unknown field on %s", m.Name)
		}
	}
	edges := make(map[string]*EdgeSpec, len(spec.Edges))
	for _, es := range spec.Edges {
		e, ok := m.Edge(es.Edge)
		if !ok {
			return nil, invalid(es.Edge, "unknown relation on %s", m.Name)
		}
		if !nested {
			return nil, invalid(es.Edge, "nested relations are not supported in batch creates")
		}
		if es.Disconnect {
			return nil, invalid(es.Edge, "disconnect is only valid in updates")
		}
		edges[e.Name] = es
	}
	values := make(map[string]any, len(m.Fields))
	for _, e := range m.Edges {
		if !e.Inverse {
			continue
		}
		es, checked := edges[e.Name]
		_, unchecked := spec.Fields[e.Field.Name]
		switch {
		case checked && unchecked:
			return nil, invalid(e.Name, "set either %s or the %s relation, not both", e.Field.Name, e.Name)
		case checked:
			id, err := resolveOne(ctx, c, e, es)
			if err != nil {
				return nil, err
			}
			values[e.Field.Name] = id
		case e.Required && !unchecked:
			return nil, invalid(e.Name, "relation is required: set %s or the %s relation", e.Field.Name, e.Name)
		}
	}
	for _, f := range m.Fields {
		if _, ok := values[f.Name]; ok {
			continue
		}
		v, ok := spec.Fields[f.Name]
		if !ok && f.Desc != nil {
			v, ok = f.Desc.DefaultValue()
		}
		if !ok && f.Optional {
			continue
		}
		enc, err := Encode(f, v)
		if err != nil {
			return nil, err
		}
		values[f.Name] = enc
	}
	return values, nil
}

// resolveOne returns the encoded key of the row a to-one relation points
// to, inserting it first when the relation is created.
func resolveOne(ctx context.Context, c Conn, e *graph.Edge, es *EdgeSpec) (any, error) {
	if len(es.Connect)+len(es.Create) != 1 {
		return nil, invalid(e.Name, "to-one relation expects exactly one connect or create")
	}
	var key []any
	if len(es.Connect) == 1 {
		keys, err := lookupKeys(ctx, c, e.Target, es.Connect[0], nil, nil)
		if err != nil {
			return nil, err
		}
		if len(keys) == 0 {
			return nil, socialgraph.NewNotFoundErrorWithID(e.Target.Name, es.Connect[0])
		}
		key = keys[0]
	} else {
		child := es.Create[0]
		if child.Model == nil {
			cp := *child
			cp.Model, child = e.Target, &cp
		}
		var err error
		if key, err = CreateNode(ctx, c, child); err != nil {
			return nil, err
		}
	}
	return Encode(e.Target.ID, key[0])
}

// setChildren points the related rows of a to-many (or owner-side
// to-one) relation at the parent id.
func setChildren(ctx context.Context, c Conn, e *graph.Edge, id any, es *EdgeSpec) error {
	if es.Disconnect {
		return invalid(e.Name, "disconnect is only valid on optional to-one relations")
	}
	if !e.ToMany() && len(es.Connect)+len(es.Create) > 1 {
		return invalid(e.Name, "to-one relation expects at most one connect or create")
	}
	for _, child := range es.Create {
		cp := *child
		if cp.Model == nil {
			cp.Model = e.Target
		}
		if _, ok := cp.Fields[e.Field.Name]; ok || slices.ContainsFunc(cp.Edges, func(x *EdgeSpec) bool { return x.Edge == e.Ref.Name }) {
			return invalid(e.Name, "nested create must not set %s", e.Field.Name)
		}
		fields := make(map[string]any, len(cp.Fields)+1)
		for k, v := range cp.Fields {
			fields[k] = v
		}
		fields[e.Field.Name] = id
		cp.Fields = fields
		if _, err := CreateNode(ctx, c, &cp); err != nil {
			return err
		}
	}
	if len(es.Connect) == 0 {
		return nil
	}
	enc, err := Encode(e.Field, id)
	if err != nil {
		return err
	}
	for _, key := range es.Connect {
		where, err := keyPredicate(e.Target, key, func(col string) string { return col })
		if err != nil {
			return err
		}
		n, err := c.exec(ctx, sql.Dialect(c.Dialect).Update(e.Target.Table).Set(e.Field.Column, enc).Where(where))
		if err != nil {
			return err
		}
		if n == 0 && c.Dialect != dialect.MySQL {
			return socialgraph.NewNotFoundErrorWithID(e.Target.Name, key)
		}
		if n == 0 {
			// MySQL reports changed rows only; tell a missing row from an unchanged one.
			keys, err := lookupKeys(ctx, c, e.Target, key, nil, nil)
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				return socialgraph.NewNotFoundErrorWithID(e.Target.Name, key)
			}
		}
	}
	return nil
}

// keyPredicate returns the predicate selecting the row identified by the
// values of a unique key.
func keyPredicate(m *graph.Model, key map[string]any, col func(string) string) (*sql.Predicate, error) {
	names := make([]string, 0, len(key))
	for name := range key {
		names = append(names, name)
	}
	fields, ok := m.UniqueKey(names...)
	if !ok {
		return nil, invalid("where", "fields %v are not a unique key of %s", names, m.Name)
	}
	ps := make([]*sql.Predicate, len(fields))
	for i, f := range fields {
		enc, err := Encode(f, key[f.Name])
		if err != nil {
			return nil, err
		}
		if enc == nil {
			return nil, invalid(f.Name, "unique key value must not be null")
		}
		ps[i] = sql.EQ(col(f.Column), enc)
	}
	return sql.And(ps...), nil
}

// keysPredicate selects the rows with the given primary keys.
func keysPredicate(m *graph.Model, keys [][]any, col func(string) string) (*sql.Predicate, error) {
	if len(m.PrimaryKey) == 1 {
		args := make([]any, len(keys))
		for i, k := range keys {
			enc, err := Encode(m.PrimaryKey[0], k[0])
			if err != nil {
				return nil, err
			}
			args[i] = enc
		}
		return sql.In(col(m.PrimaryKey[0].Column), args...), nil
	}
	if len(keys) == 0 {
		return sql.False(), nil
	}
	or := make([]*sql.Predicate, len(keys))
	for i, k := range keys {
		enc := make([]any, len(k))
		for j, f := range m.PrimaryKey {
			v, err := Encode(f, k[j])
			if err != nil {
				return nil, err
			}
			enc[j] = v
		}
		or[i] = pkPredicate(m, enc, col)
	}
	return sql.Or(or...), nil
}

// lookupKeys returns the primary keys of the rows matching the unique key
// (if any), the predicate and the limit.
func lookupKeys(ctx context.Context, c Conn, m *graph.Model, key map[string]any, p querylanguage.P, limit *int) ([][]any, error) {
	t := sql.Table(m.Table)
	sel := sql.Dialect(c.Dialect).Select().From(t)
	cols := make([]string, len(m.PrimaryKey))
	for i, f := range m.PrimaryKey {
		cols[i] = t.C(f.Column)
	}
	sel.Select(cols...)
	if key != nil {
		where, err := keyPredicate(m, key, t.C)
		if err != nil {
			return nil, err
		}
		sel.Where(where)
	}
	if err := EvalP(m, p, sel); err != nil {
		return nil, err
	}
	if limit != nil {
		if *limit < 0 {
			return nil, invalid("limit", "must not be negative")
		}
		sel.OrderBy(cols...).Limit(*limit)
	}
	recs, err := c.records(ctx, sel, m, m.PrimaryKey)
	if err != nil {
		return nil, err
	}
	keys := make([][]any, len(recs))
	for i, r := range recs {
		keys[i] = r.PK()
	}
	return keys, nil
}

// BatchCreate inserts the rows with one statement per chunk. It returns
// the keys of the inserted rows, or only their number when the dialect
// cannot report them.
func BatchCreate(ctx context.Context, c Conn, spec *BatchCreateSpec) (int, [][]any, error) {
	if len(spec.Nodes) == 0 {
		return 0, [][]any{}, nil
	}
	m := spec.Nodes[0].Model
	if spec.Returning && spec.SkipDuplicates && c.Dialect == dialect.MySQL {
		return 0, nil, invalid("skip_duplicates", "returning the rows of a create with skipped duplicates is not supported on mysql")
	}
	rows := make([]map[string]any, len(spec.Nodes))
	used := make(map[string]bool)
	for i, n := range spec.Nodes {
		if n.Model != m {
			return 0, nil, invalid("create_many", "rows of different models")
		}
		values, err := createValues(ctx, c, n, false)
		if err != nil {
			return 0, nil, err
		}
		for name := range values {
			used[name] = true
		}
		rows[i] = values
	}
	var fields []*graph.Field
	for _, f := range m.Fields {
		if used[f.Name] {
			fields = append(fields, f)
		}
	}
	var (
		total int
		keys  = [][]any{}
	)
	for _, chunk := range dataloader.Chunk(rows, max(1, 32766/len(fields))) {
		ins := sql.Dialect(c.Dialect).Insert(m.Table)
		for _, f := range fields {
			ins.Columns(f.Column)
		}
		for _, r := range chunk {
			vs := make([]any, len(fields))
			for i, f := range fields {
				vs[i] = r[f.Name]
			}
			ins.Values(vs...)
		}
		if spec.SkipDuplicates {
			ins.OnConflictDoNothing()
		}
		if c.Dialect == dialect.MySQL || !spec.SkipDuplicates {
			n, err := c.exec(ctx, ins)
			if err != nil {
				return 0, nil, err
			}
			total += int(n)
			if spec.Returning {
				for _, r := range chunk {
					k := make([]any, len(m.PrimaryKey))
					for i, f := range m.PrimaryKey {
						if k[i], err = Decode(f, r[f.Name]); err != nil {
							return 0, nil, err
						}
					}
					keys = append(keys, k)
				}
			}
			continue
		}
		ins.Returning(m.PKColumns()...)
		recs, err := c.records(ctx, ins, m, m.PrimaryKey)
		if err != nil {
			return 0, nil, err
		}
		total += len(recs)
		for _, r := range recs {
			keys = append(keys, r.PK())
		}
	}
	if !spec.Returning {
		keys = nil
	}
	return total, keys, nil
}

// UpdateNode updates the row identified by spec.Key.
func UpdateNode(ctx context.Context, c Conn, spec *UpdateSpec) ([]any, error) {
	if spec.Key == nil {
		return nil, invalid("where", "update requires a unique key")
	}
	keys, err := lookupKeys(ctx, c, spec.Model, spec.Key, spec.Predicate, nil)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, socialgraph.NewNotFoundErrorWithID(spec.Model.Name, spec.Key)
	}
	if err := updateRows(ctx, c, spec, keys); err != nil {
		return nil, err
	}
	return keys[0], nil
}

// UpdateNodes updates the rows matching spec.Predicate, at most spec.Limit
// of them.
func UpdateNodes(ctx context.Context, c Conn, spec *UpdateSpec) ([][]any, error) {
	if len(spec.Edges) > 0 {
		return nil, invalid(spec.Edges[0].Edge, "relations are not supported in batch updates")
	}
	keys, err := lookupKeys(ctx, c, spec.Model, spec.Key, spec.Predicate, spec.Limit)
	if err != nil {
		return nil, err
	}
	if err := updateRows(ctx, c, spec, keys); err != nil {
		return nil, err
	}
	return keys, nil
}

var arithmetic = map[string]string{
	OpIncrement: "+",
	OpDecrement: "-",
	OpMultiply:  "*",
	OpDivide:    "/",
}

// updateRows applies the changes of spec to the rows with the given keys.
func updateRows(ctx context.Context, c Conn, spec *UpdateSpec, keys [][]any) error {
	m := spec.Model
	for name := range spec.Fields {
		f, ok := m.Field(name)
		if !ok {
			return invalid(name, "unknown field on %s", m.Name)
		}
		if f.Immutable {
			return invalid(name, "field is immutable")
		}
		if _, ok := spec.Ops[name]; ok {
			return invalid(name, "set and %s are exclusive", spec.Ops[name].Op)
		}
	}
	for name, op := range spec.Ops {
		f, ok := m.Field(name)
		if !ok {
			return invalid(name, "unknown field on %s", m.Name)
		}
		if !f.Type.Numeric() {
			return invalid(name, "%s requires a numeric field", op.Op)
		}
		if _, ok := arithmetic[op.Op]; !ok {
			return invalid(name, "unknown operator %q", op.Op)
		}
		if op.Value == nil {
			return invalid(name, "%s expects a number", op.Op)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	u := sql.Dialect(c.Dialect).Update(m.Table)
	for _, e := range m.Edges {
		es := edgeSpec(spec.Edges, e.Name)
		if es == nil || !e.Inverse {
			continue
		}
		if _, ok := spec.Fields[e.Field.Name]; ok {
			return invalid(e.Name, "set either %s or the %s relation, not both", e.Field.Name, e.Name)
		}
		if es.Disconnect {
			if e.Required || len(es.Connect)+len(es.Create) > 0 {
				return invalid(e.Name, "disconnect is only valid alone on optional relations")
			}
			u.SetNull(e.Field.Column)
			continue
		}
		id, err := resolveOne(ctx, c, e, es)
		if err != nil {
			return err
		}
		u.Set(e.Field.Column, id)
	}
	for _, es := range spec.Edges {
		if _, ok := m.Edge(es.Edge); !ok {
			return invalid(es.Edge, "unknown relation on %s", m.Name)
		}
	}
	for _, f := range m.Fields {
		if v, ok := spec.Fields[f.Name]; ok {
			enc, err := Encode(f, v)
			if err != nil {
				return err
			}
			if enc == nil {
				u.SetNull(f.Column)
			} else {
				u.Set(f.Column, enc)
			}
			continue
		}
		if op, ok := spec.Ops[f.Name]; ok {
			enc, err := Encode(f, op.Value)
			if err != nil {
				return err
			}
			sop := arithmetic[op.Op]
			if sop == "/" && c.Dialect == dialect.MySQL && f.Type != field.TypeFloat64 {
				sop = "DIV"
			}
			u.SetOp(f.Column, sop, enc)
		}
	}
	changed := !u.Empty()
	if changed || len(spec.Edges) > 0 {
		for _, f := range m.Fields {
			if f.Desc == nil || f.Desc.UpdateDefault == nil {
				continue
			}
			if _, ok := spec.Fields[f.Name]; ok {
				continue
			}
			enc, err := Encode(f, f.Desc.UpdateDefault())
			if err != nil {
				return err
			}
			u.Set(f.Column, enc)
		}
	}
	if !u.Empty() {
		for _, chunk := range dataloader.Chunk(keys, BatchSize) {
			where, err := keysPredicate(m, chunk, func(col string) string { return col })
			if err != nil {
				return err
			}
			stmt := *u
			if _, err := c.exec(ctx, stmt.Where(where)); err != nil {
				return err
			}
		}
	}
	for _, es := range spec.Edges {
		e, _ := m.Edge(es.Edge)
		if e.Inverse {
			continue
		}
		for _, k := range keys {
			if err := setChildren(ctx, c, e, k[0], es); err != nil {
				return err
			}
		}
	}
	return nil
}

func edgeSpec(specs []*EdgeSpec, name string) *EdgeSpec {
	for _, es := range specs {
		if es.Edge == name {
			return es
		}
	}
	return nil
}

// UpsertNode updates the row identified by spec.Key if it exists, and
// creates it otherwise.
func UpsertNode(ctx context.Context, c Conn, spec *UpsertSpec) ([]any, error) {
	keys, err := lookupKeys(ctx, c, spec.Model, spec.Key, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		create := *spec.Create
		if create.Model == nil {
			create.Model = spec.Model
		}
		return CreateNode(ctx, c, &create)
	}
	update := UpdateSpec{Model: spec.Model}
	if spec.Update != nil {
		update = *spec.Update
		update.Model, update.Predicate = spec.Model, nil
	}
	if err := updateRows(ctx, c, &update, keys); err != nil {
		return nil, err
	}
	return keys[0], nil
}

// DeleteNode deletes the row identified by spec.Key and returns it as it
// was before the delete.
func DeleteNode(ctx context.Context, c Conn, spec *DeleteSpec) (*Record, error) {
	if spec.Key == nil {
		return nil, invalid("where", "delete requires a unique key")
	}
	keys, err := lookupKeys(ctx, c, spec.Model, spec.Key, spec.Predicate, nil)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, socialgraph.NewNotFoundErrorWithID(spec.Model.Name, spec.Key)
	}
	ret := spec.Return
	if ret == nil {
		ret = NewQuerySpec(spec.Model)
	}
	recs, err := NodesByKeys(ctx, c, ret, keys)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, socialgraph.NewNotFoundErrorWithID(spec.Model.Name, spec.Key)
	}
	if err := deleteRows(ctx, c, spec.Model, keys); err != nil {
		return nil, err
	}
	return recs[0], nil
}

// DeleteNodes deletes the rows matching spec.Predicate, at most spec.Limit
// of them, and returns their number.
func DeleteNodes(ctx context.Context, c Conn, spec *DeleteSpec) (int, error) {
	keys, err := lookupKeys(ctx, c, spec.Model, spec.Key, spec.Predicate, spec.Limit)
	if err != nil {
		return 0, err
	}
	if err := deleteRows(ctx, c, spec.Model, keys); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// deleteRows deletes the rows and applies the delete actions of the
// relations pointing at them, children first. The same actions are
// declared on the foreign keys; applying them here keeps the result
// independent of the storage enforcing them.
func deleteRows(ctx context.Context, c Conn, m *graph.Model, keys [][]any) error {
	if len(keys) == 0 {
		return nil
	}
	for _, e := range m.Edges {
		if e.Inverse {
			continue
		}
		for _, chunk := range dataloader.Chunk(keys, BatchSize) {
			ids := make([]any, len(chunk))
			for i, k := range chunk {
				enc, err := Encode(m.ID, k[0])
				if err != nil {
					return err
				}
				ids[i] = enc
			}
			switch e.OnDelete {
			case sqlschema.Cascade:
				t := sql.Table(e.Target.Table)
				sel := sql.Dialect(c.Dialect).Select().From(t).Where(sql.In(t.C(e.Field.Column), ids...))
				cols := make([]string, len(e.Target.PrimaryKey))
				for i, f := range e.Target.PrimaryKey {
					cols[i] = t.C(f.Column)
				}
				sel.Select(cols...)
				recs, err := c.records(ctx, sel, e.Target, e.Target.PrimaryKey)
				if err != nil {
					return err
				}
				children := make([][]any, len(recs))
				for i, r := range recs {
					children[i] = r.PK()
				}
				if err := deleteRows(ctx, c, e.Target, children); err != nil {
					return fmt.Errorf("sqlgraph: cascade %s.%s: %w", m.Name, e.Name, err)
				}
			case sqlschema.SetNull:
				u := sql.Dialect(c.Dialect).Update(e.Target.Table).SetNull(e.Field.Column).Where(sql.In(e.Field.Column, ids...))
				if _, err := c.exec(ctx, u); err != nil {
					return err
				}
			}
		}
	}
	for _, chunk := range dataloader.Chunk(keys, BatchSize) {
		where, err := keysPredicate(m, chunk, func(col string) string { return col })
		if err != nil {
			return err
		}
		if _, err := c.exec(ctx, sql.Dialect(c.Dialect).Delete(m.Table).Where(where)); err != nil {
			return err
		}
	}
	return nil
}

// NodesByKeys reads the rows with the given primary keys in key order.
func NodesByKeys(ctx context.Context, c Conn, spec *QuerySpec, keys [][]any) ([]*Record, error) {
	if len(keys) == 0 {
		return []*Record{}, nil
	}
	m := spec.Model
	var byKey querylanguage.P
	if len(m.PrimaryKey) == 1 {
		ids := make([]any, len(keys))
		for i, k := range keys {
			ids[i] = k[0]
		}
		byKey = querylanguage.FieldIn(m.PrimaryKey[0].Name, ids...)
	} else {
		or := make([]querylanguage.P, len(keys))
		for i, k := range keys {
			and := make([]querylanguage.P, len(k))
			for j, f := range m.PrimaryKey {
				and[j] = querylanguage.FieldEQ(f.Name, k[j])
			}
			or[i] = querylanguage.All(and...)
		}
		byKey = querylanguage.Any(or...)
	}
	q := *spec
	q.Predicate = querylanguage.All(spec.Predicate, byKey)
	q.Cursor, q.Limit, q.Offset, q.Distinct, q.Order = nil, nil, 0, nil, nil
	p, err := newPlan(&q)
	if err != nil {
		return nil, err
	}
	recs, err := p.query(ctx, c)
	if err != nil {
		return nil, err
	}
	byPK := make(map[string]*Record, len(recs))
	for _, r := range recs {
		byPK[r.Key()] = r
	}
	ordered := make([]*Record, 0, len(recs))
	for _, k := range keys {
		if r, ok := byPK[keyOf(k...)]; ok {
			ordered = append(ordered, r)
			delete(byPK, keyOf(k...))
		}
	}
	if err := p.load(ctx, c, ordered); err != nil {
		return nil, err
	}
	p.strip(ordered)
	return ordered, nil
}
