// Package querylanguage provides a storage-independent filter tree.
//
// Filters built by the client handles are expressed as P values: field and
// JSON-path comparisons, function calls (string matching, list membership,
// relation tests), and logical nodes. The SQL layer lowers a P against a
// model with sqlgraph.EvalP.
//
//	querylanguage.And(
//		querylanguage.FieldEQ("type", "ARTIST"),
//		querylanguage.HasEdgeWith("followers",
//			querylanguage.FieldEQ("follower_profile_id", "p1"),
//		),
//	)
package querylanguage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/syssam/socialgraph"
)

// An Op represents an operator.
type Op int

// Operators.
const (
	OpAnd   Op = iota // logical and.
	OpOr              // logical or.
	OpNot             // logical negation.
	OpEQ              // ==
	OpNEQ             // !=
	OpGT              // >
	OpGTE             // >=
	OpLT              // <
	OpLTE             // <=
	OpIn              // within
	OpNotIn           // without
)

var ops = [...]string{
	OpAnd:   "&&",
	OpOr:    "||",
	OpNot:   "!",
	OpEQ:    "==",
	OpNEQ:   "!=",
	OpGT:    ">",
	OpGTE:   ">=",
	OpLT:    "<",
	OpLTE:   "<=",
	OpIn:    "in",
	OpNotIn: "not in",
}

// String returns the text representation of an operator.
func (o Op) String() string {
	if o >= 0 && int(o) < len(ops) {
		return ops[o]
	}
	return fmt.Sprintf("op(%d)", o)
}

// Func represents a function expression.
type Func string

// Functions.
const (
	FuncEqualFold     Func = "equal_fold"      // equals case-insensitive
	FuncContains      Func = "contains"        // substring
	FuncContainsFold  Func = "contains_fold"   // substring case-insensitive
	FuncHasPrefix     Func = "has_prefix"      // string prefix
	FuncHasPrefixFold Func = "has_prefix_fold" // string prefix case-insensitive
	FuncHasSuffix     Func = "has_suffix"      // string suffix
	FuncHasSuffixFold Func = "has_suffix_fold" // string suffix case-insensitive
	FuncHasEdge       Func = "has_edge"        // edge predicate
	FuncHas           Func = "has"             // list contains a value
	FuncHasEvery      Func = "has_every"       // list contains all values
	FuncHasSome       Func = "has_some"        // list contains any value
	FuncIsEmpty       Func = "is_empty"        // list is empty
)

type (
	// The Expr interface is implemented by all expression nodes.
	Expr interface {
		expr()
		fmt.Stringer
	}

	// P represents a predicate expression that can be negated.
	P interface {
		Expr
		Negate() P
	}

	// UnaryExpr represents a unary expression.
	UnaryExpr struct {
		Op Op
		X  Expr
	}

	// BinaryExpr represents a binary expression.
	BinaryExpr struct {
		Op   Op
		X, Y Expr
	}

	// NaryExpr represents a n-ary expression.
	NaryExpr struct {
		Op Op
		Xs []Expr
	}

	// CallExpr represents a function call with its arguments.
	CallExpr struct {
		Func Func
		Args []Expr
	}

	// Field represents a model field.
	Field struct {
		Name string
	}

	// JSONPath represents a path inside a JSON field.
	JSONPath struct {
		Name string
		Path []string
	}

	// Edge represents a relation of a model.
	Edge struct {
		Name string
	}

	// Value represents an arbitrary value. The JSON null sentinels of the
	// root package are valid values.
	Value struct {
		V any
	}

	// Aggregate represents an aggregate over a field, used in groupBy
	// having clauses, e.g. _count(id).
	Aggregate struct {
		Func  string // _count, _avg, _sum, _min or _max.
		Field string
	}
)

// Aggregate function names.
const (
	AggCount = "_count"
	AggAvg   = "_avg"
	AggSum   = "_sum"
	AggMin   = "_min"
	AggMax   = "_max"
)

// Not returns a new unary expression.
func Not(x P) P {
	return &UnaryExpr{Op: OpNot, X: x}
}

// And returns a composed predicate that represents the logical AND of all.
func And(x, y P, z ...P) P {
	if len(z) == 0 {
		return &BinaryExpr{Op: OpAnd, X: x, Y: y}
	}
	return &NaryExpr{Op: OpAnd, Xs: append([]Expr{x, y}, p2expr(z)...)}
}

// Or returns a composed predicate that represents the logical OR of all.
func Or(x, y P, z ...P) P {
	if len(z) == 0 {
		return &BinaryExpr{Op: OpOr, X: x, Y: y}
	}
	return &NaryExpr{Op: OpOr, Xs: append([]Expr{x, y}, p2expr(z)...)}
}

// All returns the logical AND of ps. Nil predicates are skipped and nil
// is returned when nothing is left.
func All(ps ...P) P {
	return compose(OpAnd, ps)
}

// Any returns the logical OR of ps. Nil predicates are skipped and nil
// is returned when nothing is left.
func Any(ps ...P) P {
	return compose(OpOr, ps)
}

func compose(op Op, ps []P) P {
	list := make([]P, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			list = append(list, p)
		}
	}
	switch len(list) {
	case 0:
		return nil
	case 1:
		return list[0]
	case 2:
		return &BinaryExpr{Op: op, X: list[0], Y: list[1]}
	default:
		return &NaryExpr{Op: op, Xs: p2expr(list)}
	}
}

// F returns a field expression for the given name.
func F(name string) *Field {
	return &Field{Name: name}
}

// EQ returns a predicate to check if the expressions are equal.
func EQ(x, y Expr) P {
	return &BinaryExpr{Op: OpEQ, X: x, Y: y}
}

// FieldEQ returns a predicate to check if a field is equivalent to a given value.
func FieldEQ(name string, v any) P {
	return &BinaryExpr{Op: OpEQ, X: &Field{Name: name}, Y: &Value{V: v}}
}

// NEQ returns a predicate to check if the expressions are not equal.
func NEQ(x, y Expr) P {
	return &BinaryExpr{Op: OpNEQ, X: x, Y: y}
}

// FieldNEQ returns a predicate to check if a field is not equivalent to a given value.
func FieldNEQ(name string, v any) P {
	return &BinaryExpr{Op: OpNEQ, X: &Field{Name: name}, Y: &Value{V: v}}
}

// GT returns a predicate to check if the expression x > than expression y.
func GT(x, y Expr) P {
	return &BinaryExpr{Op: OpGT, X: x, Y: y}
}

// FieldGT returns a predicate to check if a field is > than the given value.
func FieldGT(name string, v any) P {
	return &BinaryExpr{Op: OpGT, X: &Field{Name: name}, Y: &Value{V: v}}
}

// GTE returns a predicate to check if the expression x >= than expression y.
func GTE(x, y Expr) P {
	return &BinaryExpr{Op: OpGTE, X: x, Y: y}
}

// FieldGTE returns a predicate to check if a field is >= than the given value.
func FieldGTE(name string, v any) P {
	return &BinaryExpr{Op: OpGTE, X: &Field{Name: name}, Y: &Value{V: v}}
}

// LT returns a predicate to check if the expression x < than expression y.
func LT(x, y Expr) P {
	return &BinaryExpr{Op: OpLT, X: x, Y: y}
}

// FieldLT returns a predicate to check if a field is < than the given value.
func FieldLT(name string, v any) P {
	return &BinaryExpr{Op: OpLT, X: &Field{Name: name}, Y: &Value{V: v}}
}

// LTE returns a predicate to check if the expression x <= than expression y.
func LTE(x, y Expr) P {
	return &BinaryExpr{Op: OpLTE, X: x, Y: y}
}

// FieldLTE returns a predicate to check if a field is <= than the given value.
func FieldLTE(name string, v any) P {
	return &BinaryExpr{Op: OpLTE, X: &Field{Name: name}, Y: &Value{V: v}}
}

// FieldIn returns a predicate to check if the field value matches any value in the given list.
func FieldIn(name string, vs ...any) P {
	return &BinaryExpr{Op: OpIn, X: &Field{Name: name}, Y: &Value{V: vs}}
}

// FieldNotIn returns a predicate to check if the field value doesn't match any value in the given list.
func FieldNotIn(name string, vs ...any) P {
	return &BinaryExpr{Op: OpNotIn, X: &Field{Name: name}, Y: &Value{V: vs}}
}

// FieldNil returns a predicate to check if a field is nil (null in databases).
func FieldNil(name string) P {
	return &BinaryExpr{Op: OpEQ, X: &Field{Name: name}, Y: &Value{}}
}

// FieldNotNil returns a predicate to check if a field is not nil (not null in databases).
func FieldNotNil(name string) P {
	return &BinaryExpr{Op: OpNEQ, X: &Field{Name: name}, Y: &Value{}}
}

func call(fn Func, name string, v any) P {
	return &CallExpr{Func: fn, Args: []Expr{&Field{Name: name}, &Value{V: v}}}
}

// FieldEqualFold returns a predicate to check if the field is equal to the given string under case-folding.
func FieldEqualFold(name string, v string) P { return call(FuncEqualFold, name, v) }

// FieldContains returns a predicate to check if the field value contains a substr.
func FieldContains(name, substr string) P { return call(FuncContains, name, substr) }

// FieldContainsFold returns a predicate to check if the field value contains a substr under case-folding.
func FieldContainsFold(name, substr string) P { return call(FuncContainsFold, name, substr) }

// FieldHasPrefix returns a predicate to check if the field starts with the given prefix.
func FieldHasPrefix(name, prefix string) P { return call(FuncHasPrefix, name, prefix) }

// FieldHasPrefixFold is the case-insensitive FieldHasPrefix.
func FieldHasPrefixFold(name, prefix string) P { return call(FuncHasPrefixFold, name, prefix) }

// FieldHasSuffix returns a predicate to check if the field ends with the given suffix.
func FieldHasSuffix(name, suffix string) P { return call(FuncHasSuffix, name, suffix) }

// FieldHasSuffixFold is the case-insensitive FieldHasSuffix.
func FieldHasSuffixFold(name, suffix string) P { return call(FuncHasSuffixFold, name, suffix) }

// ListHas returns a predicate to check if a list field contains v.
func ListHas(name string, v any) P { return call(FuncHas, name, v) }

// ListHasEvery returns a predicate to check if a list field contains all of vs.
func ListHasEvery(name string, vs ...any) P { return call(FuncHasEvery, name, list(vs)) }

// ListHasSome returns a predicate to check if a list field contains any of vs.
func ListHasSome(name string, vs ...any) P { return call(FuncHasSome, name, list(vs)) }

func list(vs []any) []any {
	if vs == nil {
		return []any{}
	}
	return vs
}

// ListIsEmpty returns a predicate to check if a list field is (or is not) empty.
func ListIsEmpty(name string, empty bool) P { return call(FuncIsEmpty, name, empty) }

// Path returns an expression addressing a value inside a JSON field.
func Path(name string, path ...string) *JSONPath {
	return &JSONPath{Name: name, Path: path}
}

// PathCall returns a string function call on a JSON path, e.g. has_prefix.
func PathCall(fn Func, x *JSONPath, v any) P {
	return &CallExpr{Func: fn, Args: []Expr{x, &Value{V: v}}}
}

// HasEdge returns a predicate to check if an edge exists (not null in databases).
func HasEdge(name string) P {
	return &CallExpr{Func: FuncHasEdge, Args: []Expr{&Edge{Name: name}}}
}

// HasEdgeWith returns a predicate to check if the "other nodes" that are connected to the
// edge returns true on the provided predicate.
func HasEdgeWith(name string, p ...P) P {
	return &CallExpr{Func: FuncHasEdge, Args: append([]Expr{&Edge{Name: name}}, p2expr(p)...)}
}

// Agg returns an aggregate expression for having clauses.
func Agg(fn, field string) *Aggregate {
	return &Aggregate{Func: fn, Field: field}
}

// Negate negates the predicate.
func (e *BinaryExpr) Negate() P {
	return Not(e)
}

// Negate negates the predicate.
func (e *NaryExpr) Negate() P {
	return Not(e)
}

// Negate negates the predicate.
func (e *CallExpr) Negate() P {
	return Not(e)
}

// Negate negates the predicate.
func (e *UnaryExpr) Negate() P {
	return Not(e)
}

// String returns the text representation of a binary expression.
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("%s %s %s", e.X, e.Op, e.Y)
}

// String returns the text representation of a unary expression.
func (e *UnaryExpr) String() string {
	return fmt.Sprintf("%s(%s)", e.Op, e.X)
}

// String returns the text representation of an n-ary expression.
func (e *NaryExpr) String() string {
	var s strings.Builder
	s.WriteByte('(')
	for i, x := range e.Xs {
		if i > 0 {
			s.WriteString(" " + e.Op.String() + " ")
		}
		s.WriteString(x.String())
	}
	s.WriteByte(')')
	return s.String()
}

// String returns the text representation of a call expression.
func (e *CallExpr) String() string {
	var s strings.Builder
	s.WriteString(string(e.Func))
	s.WriteByte('(')
	for i, x := range e.Args {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(x.String())
	}
	s.WriteByte(')')
	return s.String()
}

// String returns the field name.
func (f *Field) String() string { return f.Name }

// String returns the path as name.a.b.
func (p *JSONPath) String() string {
	if len(p.Path) == 0 {
		return p.Name
	}
	return p.Name + "." + strings.Join(p.Path, ".")
}

// String returns the edge name.
func (e *Edge) String() string { return e.Name }

// String returns the aggregate as _func(field).
func (a *Aggregate) String() string { return a.Func + "(" + a.Field + ")" }

// String returns the text representation of a value.
func (v *Value) String() string {
	if v == nil || v.V == nil {
		return "nil"
	}
	if n, ok := socialgraph.IsNullValue(v.V); ok {
		return n.String()
	}
	buf, err := json.Marshal(v.V)
	if err != nil {
		return fmt.Sprint(v.V)
	}
	return string(buf)
}

func p2expr(ps []P) []Expr {
	expr := make([]Expr, len(ps))
	for i := range ps {
		expr[i] = ps[i]
	}
	return expr
}

func (*Edge) expr()       {}
func (*Field) expr()      {}
func (*JSONPath) expr()   {}
func (*Value) expr()      {}
func (*Aggregate) expr()  {}
func (*CallExpr) expr()   {}
func (*NaryExpr) expr()   {}
func (*UnaryExpr) expr()  {}
func (*BinaryExpr) expr() {}
