package models

import (
	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/contrib/mixin"
	"github.com/syssam/socialgraph/dialect/sqlschema"
	"github.com/syssam/socialgraph/schema/edge"
	"github.com/syssam/socialgraph/schema/field"
)

// User holds the schema definition for the User entity.
type User struct {
	socialgraph.Schema
}

// Mixin of the User.
func (User) Mixin() []socialgraph.Mixin {
	return []socialgraph.Mixin{
		mixin.ID{},
		mixin.Time{},
	}
}

// Fields of the User.
func (User) Fields() []socialgraph.Field {
	return []socialgraph.Field{
		field.String("email").
			Unique().
			NotEmpty(),
		field.String("password_hash").
			Optional().
			Nillable().
			Sensitive(),
		field.String("active_profile_id").
			MaxLen(36).
			Optional().
			Nillable(),
	}
}

// Edges of the User.
func (User) Edges() []socialgraph.Edge {
	return []socialgraph.Edge{
		edge.To("memberships", ProfileMember.Type).
			Annotations(sqlschema.OnDelete(sqlschema.Cascade)),
		edge.To("accounts", Account.Type).
			Annotations(sqlschema.OnDelete(sqlschema.Cascade)),
		edge.To("sessions", Session.Type).
			Annotations(sqlschema.OnDelete(sqlschema.Cascade)),
		edge.From("active_profile", Profile.Type).
			Ref("active_for_users").
			Field("active_profile_id").
			Unique(),
	}
}
