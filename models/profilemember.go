package models

import (
	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/contrib/mixin"
	"github.com/syssam/socialgraph/schema/edge"
	"github.com/syssam/socialgraph/schema/field"
	"github.com/syssam/socialgraph/schema/index"
)

// Member roles.
const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleEditor = "EDITOR"
)

// ProfileMember grants a user a role on a profile.
type ProfileMember struct {
	socialgraph.Schema
}

// Mixin of the ProfileMember.
func (ProfileMember) Mixin() []socialgraph.Mixin {
	return []socialgraph.Mixin{
		mixin.ID{},
		mixin.CreateTime{},
	}
}

// Fields of the ProfileMember.
func (ProfileMember) Fields() []socialgraph.Field {
	return []socialgraph.Field{
		uuid("user_id"),
		uuid("profile_id"),
		field.Enum("role").
			Values(RoleOwner, RoleAdmin, RoleEditor),
	}
}

// Edges of the ProfileMember.
func (ProfileMember) Edges() []socialgraph.Edge {
	return []socialgraph.Edge{
		edge.From("user", User.Type).
			Ref("memberships").
			Field("user_id").
			Unique().
			Required(),
		edge.From("profile", Profile.Type).
			Ref("members").
			Field("profile_id").
			Unique().
			Required(),
	}
}

// Indexes of the ProfileMember.
func (ProfileMember) Indexes() []socialgraph.Index {
	return []socialgraph.Index{
		index.Fields("user_id", "profile_id").
			Unique(),
		index.Fields("profile_id"),
	}
}
