// Package sqlschema provides SQL-specific annotations for schemas.
//
// Model annotations:
//
//	func (Follow) Annotations() []schema.Annotation {
//	    return []schema.Annotation{sqlschema.Table("follows")}
//	}
//
// Field annotations:
//
//	field.String("code").Annotations(sqlschema.Size(10))
//	field.Int("expires_at").Annotations(sqlschema.Check("expires_at >= 0"))
//
// Edge annotations, set on the association (To) side:
//
//	edge.To("sessions", Session.Type).Annotations(sqlschema.OnDelete(sqlschema.Cascade))
//	edge.To("active_for_users", User.Type).Annotations(sqlschema.OnDelete(sqlschema.SetNull))
package sqlschema

import (
	"github.com/syssam/socialgraph/schema"
)

// AnnotationName is the name used for SQL annotations.
const AnnotationName = "sql"

// CascadeAction defines the behavior applied to referencing rows when the
// referenced row is deleted.
type CascadeAction string

const (
	Cascade  CascadeAction = "CASCADE"
	SetNull  CascadeAction = "SET NULL"
	Restrict CascadeAction = "RESTRICT"
	NoAction CascadeAction = "NO ACTION"
)

// Valid reports if the action is one of the known actions.
func (c CascadeAction) Valid() bool {
	switch c {
	case Cascade, SetNull, Restrict, NoAction:
		return true
	}
	return false
}

// Annotation holds SQL-specific settings for models, fields and edges.
//
//	sqlschema.Annotation{Table: "follows"}
//	sqlschema.Annotation{Size: 64, Check: "length(token) > 0"}
type Annotation struct {
	// Table overrides the table name of a model.
	Table string

	// Size overrides the column size (e.g., VARCHAR(Size)).
	Size int64

	// ColumnType sets a custom column type on every dialect.
	ColumnType string

	// Check adds a CHECK constraint to the column.
	Check string

	// OnDelete sets the action applied to rows holding the foreign key.
	OnDelete CascadeAction
}

// Name implements schema.Annotation.
func (a Annotation) Name() string {
	return AnnotationName
}

// Merge implements schema.Merger.
func (a Annotation) Merge(other schema.Annotation) schema.Annotation {
	switch o := other.(type) {
	case Annotation:
		return Merge(a, o)
	case *Annotation:
		if o != nil {
			return Merge(a, *o)
		}
	}
	return a
}

var (
	_ schema.Annotation = (*Annotation)(nil)
	_ schema.Merger     = (*Annotation)(nil)
)

// Table sets the table name of a model.
func Table(name string) Annotation {
	return Annotation{Table: name}
}

// Size sets the column size override.
func Size(size int64) Annotation {
	return Annotation{Size: size}
}

// OnDelete sets the ON DELETE action of an edge.
func OnDelete(action CascadeAction) Annotation {
	return Annotation{OnDelete: action}
}

// ColumnType sets a custom column type.
func ColumnType(typ string) Annotation {
	return Annotation{ColumnType: typ}
}

// Check adds a CHECK constraint expression to a column.
func Check(expr string) Annotation {
	return Annotation{Check: expr}
}

// Merge combines multiple SQL annotations into one.
// Later annotations override earlier ones for the same field.
func Merge(annotations ...Annotation) Annotation {
	result := Annotation{}
	for _, a := range annotations {
		if a.Table != "" {
			result.Table = a.Table
		}
		if a.Size != 0 {
			result.Size = a.Size
		}
		if a.ColumnType != "" {
			result.ColumnType = a.ColumnType
		}
		if a.Check != "" {
			result.Check = a.Check
		}
		if a.OnDelete != "" {
			result.OnDelete = a.OnDelete
		}
	}
	return result
}

// From merges all SQL annotations found in the given list.
func From(annotations []schema.Annotation) Annotation {
	var result Annotation
	for _, ant := range annotations {
		switch a := ant.(type) {
		case Annotation:
			result = Merge(result, a)
		case *Annotation:
			if a != nil {
				result = Merge(result, *a)
			}
		}
	}
	return result
}
