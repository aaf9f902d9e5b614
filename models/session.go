package models

import (
	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/contrib/mixin"
	"github.com/syssam/socialgraph/schema/edge"
	"github.com/syssam/socialgraph/schema/field"
	"github.com/syssam/socialgraph/schema/index"
)

// Session holds the schema definition for the Session entity.
type Session struct {
	socialgraph.Schema
}

// Mixin of the Session.
func (Session) Mixin() []socialgraph.Mixin {
	return []socialgraph.Mixin{
		mixin.ID{},
	}
}

// Fields of the Session.
func (Session) Fields() []socialgraph.Field {
	return []socialgraph.Field{
		field.String("session_token").
			Unique().
			NotEmpty().
			Sensitive(),
		uuid("user_id"),
		field.Time("expires"),
	}
}

// Edges of the Session.
func (Session) Edges() []socialgraph.Edge {
	return []socialgraph.Edge{
		edge.From("user", User.Type).
			Ref("sessions").
			Field("user_id").
			Unique().
			Required(),
	}
}

// Indexes of the Session.
func (Session) Indexes() []socialgraph.Index {
	return []socialgraph.Index{
		index.Fields("user_id"),
	}
}
