package field

// A Type represents a field type.
type Type uint8

// List of field types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeTime
	TypeJSON
	TypeEnum
	TypeString
	TypeInt
	TypeInt64
	TypeFloat64
	TypeStrings
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeBool:    "bool",
	TypeTime:    "time.Time",
	TypeJSON:    "json.RawMessage",
	TypeEnum:    "enum",
	TypeString:  "string",
	TypeInt:     "int",
	TypeInt64:   "int64",
	TypeFloat64: "float64",
	TypeStrings: "[]string",
}

// String returns the Go type name of the field type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports if the given type is known.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Numeric reports if the given type is a numeric type. Only numeric
// fields accept avg/sum aggregates and arithmetic updates.
func (t Type) Numeric() bool {
	return t == TypeInt || t == TypeInt64 || t == TypeFloat64
}

// Orderable reports if values of the type have a total order usable in
// ORDER BY, cursors and min/max.
func (t Type) Orderable() bool {
	return t.Valid() && t != TypeJSON && t != TypeStrings
}

// Stringer reports if the type accepts string operators
// (contains, has_prefix, has_suffix and their folded variants).
func (t Type) Stringer() bool {
	return t == TypeString || t == TypeEnum
}

// TypeInfo holds the information regarding field type.
type TypeInfo struct {
	Type Type
}

// String returns the Go type name.
func (t TypeInfo) String() string {
	return t.Type.String()
}
