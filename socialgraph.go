// Package socialgraph is the root package of the social-graph data-access layer.
//
// It holds the schema interfaces implemented by the model definitions in the
// models package, the mutation/query hook adapters used by the client, the
// JSON null sentinels and the error taxonomy shared by every layer.
package socialgraph

import (
	"context"

	"github.com/syssam/socialgraph/schema"
	"github.com/syssam/socialgraph/schema/edge"
	"github.com/syssam/socialgraph/schema/field"
	"github.com/syssam/socialgraph/schema/index"
)

type (
	// Interface is implemented by all schemas. Schemas embed Schema to get
	// the default implementations and override what they need.
	Interface interface {
		// Type is a dummy method used in edge declarations.
		Type()
		Fields() []Field
		Edges() []Edge
		Indexes() []Index
		Mixin() []Mixin
		Annotations() []schema.Annotation
	}

	// A Field is a schema field builder.
	Field interface {
		Descriptor() *field.Descriptor
	}

	// An Edge is a schema edge builder.
	Edge interface {
		Descriptor() *edge.Descriptor
	}

	// An Index is a schema index builder.
	Index interface {
		Descriptor() *index.Descriptor
	}

	// A Mixin is a reusable set of fields, edges and indexes.
	Mixin interface {
		Fields() []Field
		Edges() []Edge
		Indexes() []Index
		Annotations() []schema.Annotation
	}

	// Schema is the default implementation of Interface.
	Schema struct {
		Interface
	}
)

// Fields of the schema.
func (Schema) Fields() []Field { return nil }

// Edges of the schema.
func (Schema) Edges() []Edge { return nil }

// Indexes of the schema.
func (Schema) Indexes() []Index { return nil }

// Mixin of the schema.
func (Schema) Mixin() []Mixin { return nil }

// Annotations of the schema.
func (Schema) Annotations() []schema.Annotation { return nil }

// Op represents the operation of a mutation.
type Op uint

// Mutation operations.
const (
	OpCreate     Op = 1 << iota // create a single node
	OpCreateMany                // bulk insert
	OpUpdate                    // update a single node by key
	OpUpdateMany                // update nodes matching a filter
	OpUpsert                    // update-or-create by key
	OpDelete                    // delete a single node by key
	OpDeleteMany                // delete nodes matching a filter
)

// Is reports whether o matches any of the given operations.
func (o Op) Is(op Op) bool { return o&op != 0 }

var opNames = map[Op]string{
	OpCreate:     "create",
	OpCreateMany: "createMany",
	OpUpdate:     "update",
	OpUpdateMany: "updateMany",
	OpUpsert:     "upsert",
	OpDelete:     "delete",
	OpDeleteMany: "deleteMany",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown"
}

type (
	// Value is the return value of a mutation or query.
	Value any

	// Mutation describes a pending write as seen by hooks.
	Mutation interface {
		// Op returns the operation name.
		Op() Op
		// Type returns the model name, e.g. "User".
		Type() string
		// Fields returns the names of the scalar fields being written.
		Fields() []string
		// Field returns the value of a written field.
		Field(name string) (any, bool)
		// SetField sets the value of a scalar field. It fails on unknown
		// fields and on operations without data, such as deletes.
		SetField(name string, v any) error
	}

	// Mutator is the interface that wraps the Mutate method.
	Mutator interface {
		Mutate(context.Context, Mutation) (Value, error)
	}

	// MutateFunc is an adapter to allow the use of ordinary functions as Mutator.
	MutateFunc func(context.Context, Mutation) (Value, error)

	// Hook defines the "mutation middleware". A function that gets a Mutator
	// and returns a Mutator.
	Hook func(Mutator) Mutator

	// Query describes a pending read as seen by interceptors.
	Query interface {
		// Type returns the model name.
		Type() string
		// Operation returns the read operation, e.g. "findMany".
		Operation() string
	}

	// Querier is the interface that wraps the Query method.
	Querier interface {
		Query(context.Context, Query) (Value, error)
	}

	// QuerierFunc is an adapter to allow the use of ordinary functions as Querier.
	QuerierFunc func(context.Context, Query) (Value, error)

	// Interceptor wraps a Querier.
	Interceptor interface {
		Intercept(Querier) Querier
	}

	// InterceptFunc is an adapter to allow the use of ordinary functions as Interceptor.
	InterceptFunc func(Querier) Querier
)

// Mutate calls f(ctx, m).
func (f MutateFunc) Mutate(ctx context.Context, m Mutation) (Value, error) {
	return f(ctx, m)
}

// Query calls f(ctx, q).
func (f QuerierFunc) Query(ctx context.Context, q Query) (Value, error) {
	return f(ctx, q)
}

// Intercept calls f(next).
func (f InterceptFunc) Intercept(next Querier) Querier {
	return f(next)
}
