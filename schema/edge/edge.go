package edge

import (
	"reflect"

	"github.com/syssam/socialgraph/schema"
)

// A Descriptor for edge configuration.
type Descriptor struct {
	Name        string              // edge name.
	Type        string              // target model name.
	Field       string              // foreign-key field holding the edge, inverse side only.
	RefName     string              // name of the association this edge references, inverse side only.
	Unique      bool                // to-one edge.
	Inverse     bool                // declared with From.
	Required    bool                // the foreign key must be set on create.
	Immutable   bool                // the edge cannot change after creation.
	Comment     string              // edge comment.
	Annotations []schema.Annotation // edge annotations.
	Err         error
}

// To defines an association edge. The foreign key lives on the target
// model and is declared by the matching From edge:
//
//	edge.To("followers", Follow.Type)
func To(name string, t any) *assocBuilder {
	return &assocBuilder{desc: &Descriptor{
		Name: name,
		Type: typ(t),
	}}
}

// From defines the back-reference of an association edge. The inverse
// side owns the foreign key:
//
//	edge.From("following_profile", Profile.Type).
//		Ref("followers").
//		Field("following_profile_id").
//		Unique().
//		Required()
func From(name string, t any) *inverseBuilder {
	return &inverseBuilder{desc: &Descriptor{
		Name:    name,
		Type:    typ(t),
		Inverse: true,
	}}
}

// assocBuilder is the builder for assoc edges.
type assocBuilder struct {
	desc *Descriptor
}

// Unique sets the edge type to be unique. Basically, it limits the edge to
// be one-to-one instead of one-to-many.
func (b *assocBuilder) Unique() *assocBuilder {
	b.desc.Unique = true
	return b
}

// Immutable indicates that this edge cannot be updated.
func (b *assocBuilder) Immutable() *assocBuilder {
	b.desc.Immutable = true
	return b
}

// Comment used to put annotations on the schema.
func (b *assocBuilder) Comment(c string) *assocBuilder {
	b.desc.Comment = c
	return b
}

// Annotations adds a list of annotations to the edge object to be used by
// the registry and the migration tooling.
//
//	edge.To("sessions", Session.Type).
//		Annotations(sqlschema.OnDelete(sqlschema.Cascade))
func (b *assocBuilder) Annotations(annotations ...schema.Annotation) *assocBuilder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor implements the socialgraph.Edge interface.
func (b *assocBuilder) Descriptor() *Descriptor {
	return b.desc
}

// inverseBuilder is the builder for inverse edges.
type inverseBuilder struct {
	desc *Descriptor
}

// Ref sets the referenced edge of this inverse edge.
func (b *inverseBuilder) Ref(ref string) *inverseBuilder {
	b.desc.RefName = ref
	return b
}

// Field binds the edge to a foreign-key field declared in Fields.
func (b *inverseBuilder) Field(f string) *inverseBuilder {
	b.desc.Field = f
	return b
}

// Unique sets the edge type to be unique. Basically, it limits the edge to
// be many-to-one instead of many-to-many.
func (b *inverseBuilder) Unique() *inverseBuilder {
	b.desc.Unique = true
	return b
}

// Required indicates that this edge is a required field on creation.
func (b *inverseBuilder) Required() *inverseBuilder {
	b.desc.Required = true
	return b
}

// Immutable indicates that this edge cannot be updated.
func (b *inverseBuilder) Immutable() *inverseBuilder {
	b.desc.Immutable = true
	return b
}

// Comment used to put annotations on the schema.
func (b *inverseBuilder) Comment(c string) *inverseBuilder {
	b.desc.Comment = c
	return b
}

// Annotations adds a list of annotations to the edge object.
func (b *inverseBuilder) Annotations(annotations ...schema.Annotation) *inverseBuilder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor implements the socialgraph.Edge interface.
func (b *inverseBuilder) Descriptor() *Descriptor {
	return b.desc
}

// typ returns the model name of a schema value such as Profile{}, or of a
// method expression such as Profile.Type. Anything else, including a
// plain string, has no name and is rejected when the graph is built.
func typ(t any) string {
	rt := reflect.TypeOf(t)
	if rt == nil {
		return ""
	}
	if rt.Kind() == reflect.Func {
		if rt.NumIn() == 0 {
			return ""
		}
		rt = rt.In(0)
	}
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return ""
	}
	return rt.Name()
}
