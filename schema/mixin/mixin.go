// Package mixin provides the base mixin implementation for schemas.
//
// A mixin is a reusable set of fields, edges and indexes that can be
// embedded in several models. Custom mixins embed Schema and override the
// methods they need:
//
//	type Expiring struct {
//	    mixin.Schema
//	}
//
//	func (Expiring) Fields() []socialgraph.Field {
//	    return []socialgraph.Field{
//	        field.Time("expires"),
//	    }
//	}
//
// Ready-to-use mixins (ids, timestamps) live in contrib/mixin.
package mixin

import (
	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/schema"
)

// Schema is the default implementation for the socialgraph.Mixin interface.
// It should be embedded in all custom mixin definitions.
type Schema struct{}

// Fields of the mixin.
func (Schema) Fields() []socialgraph.Field { return nil }

// Edges of the mixin.
func (Schema) Edges() []socialgraph.Edge { return nil }

// Indexes of the mixin.
func (Schema) Indexes() []socialgraph.Index { return nil }

// Annotations of the mixin.
func (Schema) Annotations() []schema.Annotation { return nil }

// schema mixin must implement `Mixin` interface.
var _ socialgraph.Mixin = (*Schema)(nil)

// AnnotateFields wraps a mixin and adds annotations to all its fields.
//
//	mixin.AnnotateFields(Expiring{}, schema.Comment("expiry"))
func AnnotateFields(m socialgraph.Mixin, annotations ...schema.Annotation) socialgraph.Mixin {
	return fieldAnnotator{Mixin: m, annotations: annotations}
}

// AnnotateEdges wraps a mixin and adds annotations to all its edges.
func AnnotateEdges(m socialgraph.Mixin, annotations ...schema.Annotation) socialgraph.Mixin {
	return edgeAnnotator{Mixin: m, annotations: annotations}
}

type fieldAnnotator struct {
	socialgraph.Mixin
	annotations []schema.Annotation
}

func (a fieldAnnotator) Fields() []socialgraph.Field {
	fields := a.Mixin.Fields()
	for i := range fields {
		desc := fields[i].Descriptor()
		desc.Annotations = append(desc.Annotations, a.annotations...)
	}
	return fields
}

type edgeAnnotator struct {
	socialgraph.Mixin
	annotations []schema.Annotation
}

func (a edgeAnnotator) Edges() []socialgraph.Edge {
	edges := a.Mixin.Edges()
	for i := range edges {
		desc := edges[i].Descriptor()
		desc.Annotations = append(desc.Annotations, a.annotations...)
	}
	return edges
}
