package client

import (
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
	"github.com/syssam/socialgraph/querylanguage"
)

type (
	// creator is implemented by the create inputs of the models.
	creator interface {
		createSpec() *sqlgraph.CreateSpec
	}

	// updater is implemented by the update inputs of the models.
	updater interface {
		updateSpec() *sqlgraph.UpdateSpec
	}
)

// Opt is the update of an optional field. The zero Opt leaves the field
// unchanged.
type Opt[T any] struct {
	v    T
	set  bool
	null bool
}

// Some sets the field to v.
func Some[T any](v T) Opt[T] { return Opt[T]{v: v, set: true} }

// Null clears the field.
func Null[T any]() Opt[T] { return Opt[T]{set: true, null: true} }

// put writes the field into fields when it was set.
func (o Opt[T]) put(fields map[string]any, name string) {
	switch {
	case !o.set:
	case o.null:
		fields[name] = nil
	default:
		fields[name] = o.v
	}
}

// NumberOp is an atomic update of a numeric field relative to its
// current value.
type NumberOp struct {
	op string
	v  any
}

// Number is the set of numeric Go types of the models.
type Number interface {
	~int | ~int64 | ~float64
}

// Increment adds v to the field.
func Increment[N Number](v N) *NumberOp { return &NumberOp{op: sqlgraph.OpIncrement, v: v} }

// Decrement subtracts v from the field.
func Decrement[N Number](v N) *NumberOp { return &NumberOp{op: sqlgraph.OpDecrement, v: v} }

// Multiply multiplies the field by v.
func Multiply[N Number](v N) *NumberOp { return &NumberOp{op: sqlgraph.OpMultiply, v: v} }

// Divide divides the field by v. Integer fields use integer division.
func Divide[N Number](v N) *NumberOp { return &NumberOp{op: sqlgraph.OpDivide, v: v} }

func (n *NumberOp) put(ops map[string]sqlgraph.FieldOp, name string) {
	if n != nil {
		ops[name] = sqlgraph.FieldOp{Op: n.op, Value: n.v}
	}
}

// One writes a to-one relation: it connects an existing row by one of
// its unique keys, or creates a new one. Setting both, or neither, is an
// error. Disconnect clears an optional relation in updates.
//
// A required relation is set either with its foreign key field or with
// One, never both.
type One[C creator] struct {
	Connect    querylanguage.Key
	Create     *C
	Disconnect bool
}

// ConnectTo returns a One connecting the row with the given key.
func ConnectTo[C creator](key querylanguage.Key) *One[C] {
	return &One[C]{Connect: key}
}

// CreateWith returns a One creating the related row.
func CreateWith[C creator](data C) *One[C] {
	return &One[C]{Create: &data}
}

func (o *One[C]) edge(name string) *sqlgraph.EdgeSpec {
	if o == nil {
		return nil
	}
	es := &sqlgraph.EdgeSpec{Edge: name, Disconnect: o.Disconnect}
	if o.Connect != nil {
		es.Connect = []map[string]any{o.Connect}
	}
	if o.Create != nil {
		es.Create = []*sqlgraph.CreateSpec{(*o.Create).createSpec()}
	}
	return es
}

// Many writes a to-many relation: it points existing rows at the parent
// and creates new related rows. Nested creates must not set the foreign
// key of the parent.
type Many[C creator] struct {
	Connect []querylanguage.Key
	Create  []C
}

func (m *Many[C]) edge(name string) *sqlgraph.EdgeSpec {
	if m == nil {
		return nil
	}
	es := &sqlgraph.EdgeSpec{Edge: name}
	for _, k := range m.Connect {
		es.Connect = append(es.Connect, k)
	}
	for _, c := range m.Create {
		es.Create = append(es.Create, c.createSpec())
	}
	return es
}

// edges drops the relations that were not set.
func edges(es ...*sqlgraph.EdgeSpec) []*sqlgraph.EdgeSpec {
	out := make([]*sqlgraph.EdgeSpec, 0, len(es))
	for _, e := range es {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// putKey writes a foreign key field when it is set. An empty key is left
// to the relation or to validation.
func putKey(fields map[string]any, name, v string) {
	if v != "" {
		fields[name] = v
	}
}

// putPtr writes an optional field when it is set.
func putPtr[T any](fields map[string]any, name string, v *T) {
	if v != nil {
		fields[name] = *v
	}
}

// putJSON writes a JSON field. nil leaves the field out; the DbNull and
// JsonNull sentinels are stored as such.
func putJSON(fields map[string]any, name string, v any) {
	if v != nil {
		fields[name] = v
	}
}
