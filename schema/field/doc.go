// Package field provides fluent builders for defining schema fields.
//
// Each builder returns a Descriptor consumed by the graph package when the
// schema registry is built:
//
//	func (Profile) Fields() []socialgraph.Field {
//	    return []socialgraph.Field{
//	        field.Enum("type").Values("ARTIST", "GROUP", "INSTITUTION", "LABEL"),
//	        field.String("handle").Unique().NotEmpty(),
//	        field.String("display_name"),
//	        field.Text("bio").Optional().Nillable(),
//	        field.JSON("links").Optional(),
//	        field.Strings("instruments"),
//	        field.Bool("verified").Default(false),
//	    }
//	}
//
// # Types
//
// The supported kinds are bool, time, JSON, enum, string, int, int64,
// float64 and ordered string lists. Only int, int64 and float64 are
// numeric: they accept avg/sum aggregates and atomic arithmetic updates.
//
// # Nullability
//
// Optional fields may be omitted on create and are stored in nullable
// columns. Nillable fields are exposed as pointers on entities. An Optional
// JSON field keeps SQL NULL and the JSON literal null apart.
//
// # Defaults
//
// Default takes a static value; DefaultFunc (strings) and Default (time)
// take a function evaluated on every insert. UpdateDefault is evaluated on
// every update that does not set the field explicitly.
package field
