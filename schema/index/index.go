// Package index provides the builder for model indexes.
//
// A unique index spanning several fields is a compound-unique key: it is
// enforced by the storage engine and can be used to address a single row in
// findUnique, update, upsert and delete.
//
//	index.Fields("follower_profile_id", "following_profile_id").Unique()
package index

import "github.com/syssam/socialgraph/schema"

// A Descriptor for index configuration.
type Descriptor struct {
	Unique      bool                // unique index.
	Fields      []string            // field names, in key order.
	StorageKey  string              // index name override.
	Annotations []schema.Annotation // index annotations.
}

// Builder for indexes on fields.
type Builder struct {
	desc *Descriptor
}

// Fields creates an index on the given fields.
func Fields(fields ...string) *Builder {
	return &Builder{desc: &Descriptor{Fields: fields}}
}

// Unique sets the index to be a unique index.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// StorageKey sets the storage key of the index. By default, unique indexes
// are named "<table>_<columns>_key" and other indexes "<table>_<columns>_idx".
func (b *Builder) StorageKey(key string) *Builder {
	b.desc.StorageKey = key
	return b
}

// Annotations adds a list of annotations to the index object.
func (b *Builder) Annotations(annotations ...schema.Annotation) *Builder {
	b.desc.Annotations = append(b.desc.Annotations, annotations...)
	return b
}

// Descriptor implements the socialgraph.Index interface.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}
