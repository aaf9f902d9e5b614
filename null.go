package socialgraph

// NullValue is a sentinel that disambiguates the null states of a JSON field.
//
// A nullable JSON column has three distinct "empty" states: the column is
// SQL NULL (DbNull), the column holds the JSON literal null (JsonNull), or no
// value/predicate was given at all (a Go nil or an absent filter). AnyNull is
// only meaningful in filters and matches both DbNull and JsonNull.
type NullValue struct{ kind string }

// String returns the sentinel name.
func (n NullValue) String() string { return n.kind }

var (
	// DbNull is the SQL NULL state of a JSON column.
	DbNull = NullValue{kind: "DbNull"}
	// JsonNull is the JSON literal null stored in a JSON column.
	JsonNull = NullValue{kind: "JsonNull"}
	// AnyNull matches either DbNull or JsonNull. Filters only.
	AnyNull = NullValue{kind: "AnyNull"}
)

// IsNullValue reports whether v is one of the JSON null sentinels.
func IsNullValue(v any) (NullValue, bool) {
	switch n := v.(type) {
	case NullValue:
		return n, true
	case *NullValue:
		if n != nil {
			return *n, true
		}
	}
	return NullValue{}, false
}
