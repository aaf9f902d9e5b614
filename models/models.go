// Package models holds the schema definitions of the social graph.
//
// Users sign in through accounts and sessions and act through profiles.
// Profiles are connected by follow, block and mute rows, each holding two
// foreign keys into the profiles table.
package models

import (
	"sync"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/graph"
	"github.com/syssam/socialgraph/schema/field"
)

// Schemas returns every model schema in registration order.
func Schemas() []socialgraph.Interface {
	return []socialgraph.Interface{
		User{},
		Account{},
		Session{},
		VerificationToken{},
		Profile{},
		ProfileMember{},
		Follow{},
		Block{},
		Mute{},
	}
}

var (
	once sync.Once
	g    *graph.Graph
)

// Graph returns the registry built from Schemas. It panics if the schemas
// are malformed.
func Graph() *graph.Graph {
	once.Do(func() {
		g = graph.MustNew(Schemas()...)
	})
	return g
}

// uuid returns a foreign-key field referencing a mixin.ID primary key.
func uuid(name string) socialgraph.Field {
	return field.String(name).MaxLen(36)
}
