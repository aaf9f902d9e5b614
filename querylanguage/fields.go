package querylanguage

import (
	"time"

	"github.com/syssam/socialgraph"
)

// Key selects one row by the values of a unique key of its model: the
// primary key, a unique field or a compound unique index.
//
//	querylanguage.Key{"follower_profile_id": a, "following_profile_id": b}
type Key map[string]any

// Fields returns the field names of the key.
func (k Key) Fields() []string {
	names := make([]string, 0, len(k))
	for name := range k {
		names = append(names, name)
	}
	return names
}

// Order is one term of an ordering. Agg orders groups by an aggregate of
// the field and is only valid in group by.
type Order struct {
	Field string
	Desc  bool
	Agg   string
}

// Asc orders by the field, nulls last.
func Asc(field string) Order { return Order{Field: field} }

// Desc orders by the field in descending order, nulls first.
func Desc(field string) Order { return Order{Field: field, Desc: true} }

// OrderAgg orders groups by an aggregate of the field, e.g. _count(id).
func OrderAgg(fn, field string, desc bool) Order {
	return Order{Field: field, Desc: desc, Agg: fn}
}

func values[T any](vs []T) []any {
	out := make([]any, len(vs))
	for i := range vs {
		out[i] = vs[i]
	}
	return out
}

// StringField is a string field that provides typed predicate methods.
//
//	var Handle = querylanguage.StringField("handle")
//	Handle.HasPrefix("art")
type StringField string

// Name returns the field name.
func (f StringField) Name() string { return string(f) }

// EQ returns a predicate that checks if the field equals v.
func (f StringField) EQ(v string) P { return FieldEQ(string(f), v) }

// NEQ returns a predicate that checks if the field does not equal v.
func (f StringField) NEQ(v string) P { return FieldNEQ(string(f), v) }

// In returns a predicate that checks if the field is one of vs. An empty
// list matches nothing.
func (f StringField) In(vs ...string) P { return FieldIn(string(f), values(vs)...) }

// NotIn returns a predicate that checks if the field is none of vs.
func (f StringField) NotIn(vs ...string) P { return FieldNotIn(string(f), values(vs)...) }

func (f StringField) GT(v string) P  { return FieldGT(string(f), v) }
func (f StringField) GTE(v string) P { return FieldGTE(string(f), v) }
func (f StringField) LT(v string) P  { return FieldLT(string(f), v) }
func (f StringField) LTE(v string) P { return FieldLTE(string(f), v) }

// Contains returns a case-sensitive substring predicate.
func (f StringField) Contains(v string) P { return FieldContains(string(f), v) }

// ContainsFold is the case-insensitive Contains.
func (f StringField) ContainsFold(v string) P { return FieldContainsFold(string(f), v) }

func (f StringField) HasPrefix(v string) P     { return FieldHasPrefix(string(f), v) }
func (f StringField) HasPrefixFold(v string) P { return FieldHasPrefixFold(string(f), v) }
func (f StringField) HasSuffix(v string) P     { return FieldHasSuffix(string(f), v) }
func (f StringField) HasSuffixFold(v string) P { return FieldHasSuffixFold(string(f), v) }

// EqualFold returns a case-insensitive equality predicate.
func (f StringField) EqualFold(v string) P { return FieldEqualFold(string(f), v) }

// IsNil returns a predicate that checks if the field is null.
func (f StringField) IsNil() P { return FieldNil(string(f)) }

// NotNil returns a predicate that checks if the field is not null.
func (f StringField) NotNil() P { return FieldNotNil(string(f)) }

func (f StringField) Asc() Order  { return Asc(string(f)) }
func (f StringField) Desc() Order { return Desc(string(f)) }

// IntField is an integer field.
type IntField string

// Name returns the field name.
func (f IntField) Name() string { return string(f) }

func (f IntField) EQ(v int) P         { return FieldEQ(string(f), v) }
func (f IntField) NEQ(v int) P        { return FieldNEQ(string(f), v) }
func (f IntField) In(vs ...int) P     { return FieldIn(string(f), values(vs)...) }
func (f IntField) NotIn(vs ...int) P  { return FieldNotIn(string(f), values(vs)...) }
func (f IntField) GT(v int) P         { return FieldGT(string(f), v) }
func (f IntField) GTE(v int) P        { return FieldGTE(string(f), v) }
func (f IntField) LT(v int) P         { return FieldLT(string(f), v) }
func (f IntField) LTE(v int) P        { return FieldLTE(string(f), v) }
func (f IntField) IsNil() P           { return FieldNil(string(f)) }
func (f IntField) NotNil() P          { return FieldNotNil(string(f)) }
func (f IntField) Asc() Order         { return Asc(string(f)) }
func (f IntField) Desc() Order        { return Desc(string(f)) }
func (f IntField) Agg(fn string) *Aggregate { return Agg(fn, string(f)) }

// BoolField is a boolean field.
type BoolField string

// Name returns the field name.
func (f BoolField) Name() string { return string(f) }

func (f BoolField) EQ(v bool) P  { return FieldEQ(string(f), v) }
func (f BoolField) NEQ(v bool) P { return FieldNEQ(string(f), v) }
func (f BoolField) Asc() Order   { return Asc(string(f)) }
func (f BoolField) Desc() Order  { return Desc(string(f)) }

// TimeField is a time field. Values are stored with microsecond
// precision in UTC.
type TimeField string

// Name returns the field name.
func (f TimeField) Name() string { return string(f) }

func (f TimeField) EQ(v time.Time) P        { return FieldEQ(string(f), v) }
func (f TimeField) NEQ(v time.Time) P       { return FieldNEQ(string(f), v) }
func (f TimeField) In(vs ...time.Time) P    { return FieldIn(string(f), values(vs)...) }
func (f TimeField) NotIn(vs ...time.Time) P { return FieldNotIn(string(f), values(vs)...) }
func (f TimeField) GT(v time.Time) P        { return FieldGT(string(f), v) }
func (f TimeField) GTE(v time.Time) P       { return FieldGTE(string(f), v) }
func (f TimeField) LT(v time.Time) P        { return FieldLT(string(f), v) }
func (f TimeField) LTE(v time.Time) P       { return FieldLTE(string(f), v) }
func (f TimeField) IsNil() P                { return FieldNil(string(f)) }
func (f TimeField) NotNil() P               { return FieldNotNil(string(f)) }
func (f TimeField) Asc() Order              { return Asc(string(f)) }
func (f TimeField) Desc() Order             { return Desc(string(f)) }

// EnumField is a field holding one of the values of the enum type E.
//
//	var Type = querylanguage.EnumField[profile.Type]("type")
type EnumField[E ~string] string

// Name returns the field name.
func (f EnumField[E]) Name() string { return string(f) }

func (f EnumField[E]) EQ(v E) P        { return FieldEQ(string(f), string(v)) }
func (f EnumField[E]) NEQ(v E) P       { return FieldNEQ(string(f), string(v)) }
func (f EnumField[E]) Asc() Order      { return Asc(string(f)) }
func (f EnumField[E]) Desc() Order     { return Desc(string(f)) }
func (f EnumField[E]) In(vs ...E) P    { return FieldIn(string(f), enums(vs)...) }
func (f EnumField[E]) NotIn(vs ...E) P { return FieldNotIn(string(f), enums(vs)...) }

func enums[E ~string](vs []E) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}

// StringsField is a list of strings stored as a JSON array.
type StringsField string

// Name returns the field name.
func (f StringsField) Name() string { return string(f) }

// Has returns a predicate that checks if the list contains v.
func (f StringsField) Has(v string) P { return ListHas(string(f), v) }

// HasEvery returns a predicate that checks if the list contains all of vs.
func (f StringsField) HasEvery(vs ...string) P { return ListHasEvery(string(f), values(vs)...) }

// HasSome returns a predicate that checks if the list contains any of vs.
func (f StringsField) HasSome(vs ...string) P { return ListHasSome(string(f), values(vs)...) }

// IsEmpty returns a predicate that checks if the list is empty.
func (f StringsField) IsEmpty() P { return ListIsEmpty(string(f), true) }

// NotEmpty returns a predicate that checks if the list has elements.
func (f StringsField) NotEmpty() P { return ListIsEmpty(string(f), false) }

// JSONField is a JSON field. Comparisons distinguish a database NULL from
// a stored JSON null with the socialgraph.DbNull, JsonNull and AnyNull
// sentinels.
type JSONField string

// Name returns the field name.
func (f JSONField) Name() string { return string(f) }

// EQ returns a predicate that checks if the stored document equals v. v
// may be a null sentinel.
func (f JSONField) EQ(v any) P { return FieldEQ(string(f), v) }

// NEQ is the negation of EQ.
func (f JSONField) NEQ(v any) P { return FieldNEQ(string(f), v) }

// IsDbNull matches rows whose column is NULL.
func (f JSONField) IsDbNull() P { return FieldEQ(string(f), socialgraph.DbNull) }

// IsJsonNull matches rows storing the JSON null literal.
func (f JSONField) IsJsonNull() P { return FieldEQ(string(f), socialgraph.JsonNull) }

// IsAnyNull matches both kinds of null.
func (f JSONField) IsAnyNull() P { return FieldEQ(string(f), socialgraph.AnyNull) }

// Path addresses a value inside the document. Numeric elements index
// arrays.
func (f JSONField) Path(path ...string) JSONPathField {
	return JSONPathField{name: string(f), path: path}
}

// JSONPathField is a value inside a JSON field.
type JSONPathField struct {
	name string
	path []string
}

func (f JSONPathField) expr() *JSONPath { return Path(f.name, f.path...) }

// EQ returns a predicate that checks if the value at the path equals v.
// DbNull matches a missing path.
func (f JSONPathField) EQ(v any) P { return EQ(f.expr(), &Value{V: v}) }

// NEQ is the negation of EQ.
func (f JSONPathField) NEQ(v any) P { return NEQ(f.expr(), &Value{V: v}) }

// StringContains matches string values containing s.
func (f JSONPathField) StringContains(s string) P { return PathCall(FuncContains, f.expr(), s) }

// StringHasPrefix matches string values starting with s.
func (f JSONPathField) StringHasPrefix(s string) P { return PathCall(FuncHasPrefix, f.expr(), s) }

// StringHasSuffix matches string values ending with s.
func (f JSONPathField) StringHasSuffix(s string) P { return PathCall(FuncHasSuffix, f.expr(), s) }

// ArrayContains matches array values containing v.
func (f JSONPathField) ArrayContains(v any) P { return PathCall(FuncHas, f.expr(), v) }

// Relation is a relation of a model used in filters.
//
//	profile.Followers.Some(follow.FollowerProfileID.EQ(id))
type Relation string

// Name returns the relation name.
func (r Relation) Name() string { return string(r) }

// Some matches rows with at least one related row satisfying ps.
func (r Relation) Some(ps ...P) P { return HasEdgeWith(string(r), ps...) }

// Every matches rows whose related rows all satisfy the predicates. Rows
// without related rows match.
func (r Relation) Every(p P, ps ...P) P {
	return Not(HasEdgeWith(string(r), Not(All(append([]P{p}, ps...)...))))
}

// None matches rows with no related row satisfying ps.
func (r Relation) None(ps ...P) P { return Not(HasEdgeWith(string(r), ps...)) }

// Is matches rows whose to-one related row satisfies ps.
func (r Relation) Is(ps ...P) P { return HasEdgeWith(string(r), ps...) }

// IsNot matches rows whose to-one related row is absent or does not
// satisfy ps.
func (r Relation) IsNot(ps ...P) P { return Not(HasEdgeWith(string(r), ps...)) }

// Exists matches rows with a related row.
func (r Relation) Exists() P { return HasEdge(string(r)) }

// IsNil matches rows without a related row.
func (r Relation) IsNil() P { return Not(HasEdge(string(r))) }

// Comparisons of an aggregate, used in having filters.

func (a *Aggregate) EQ(v any) P  { return EQ(a, &Value{V: v}) }
func (a *Aggregate) NEQ(v any) P { return NEQ(a, &Value{V: v}) }
func (a *Aggregate) GT(v any) P  { return GT(a, &Value{V: v}) }
func (a *Aggregate) GTE(v any) P { return GTE(a, &Value{V: v}) }
func (a *Aggregate) LT(v any) P  { return LT(a, &Value{V: v}) }
func (a *Aggregate) LTE(v any) P { return LTE(a, &Value{V: v}) }
