package models

import (
	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/contrib/mixin"
	"github.com/syssam/socialgraph/dialect/sqlschema"
	"github.com/syssam/socialgraph/schema/edge"
	"github.com/syssam/socialgraph/schema/field"
	"github.com/syssam/socialgraph/schema/index"
)

// Profile types.
const (
	ProfileTypeArtist      = "ARTIST"
	ProfileTypeGroup       = "GROUP"
	ProfileTypeInstitution = "INSTITUTION"
	ProfileTypeLabel       = "LABEL"
)

// Profile is the public identity users act through.
type Profile struct {
	socialgraph.Schema
}

// Mixin of the Profile.
func (Profile) Mixin() []socialgraph.Mixin {
	return []socialgraph.Mixin{
		mixin.ID{},
		mixin.Time{},
	}
}

// Fields of the Profile.
func (Profile) Fields() []socialgraph.Field {
	return []socialgraph.Field{
		field.Enum("type").
			Values(ProfileTypeArtist, ProfileTypeGroup, ProfileTypeInstitution, ProfileTypeLabel),
		field.String("handle").
			Unique().
			NotEmpty().
			MaxLen(64),
		field.String("display_name"),
		field.Text("bio").
			Optional().
			Nillable(),
		field.String("avatar_url").
			Optional().
			Nillable(),
		field.String("location").
			Optional().
			Nillable(),
		field.JSON("links").
			Optional(),
		field.Strings("instruments"),
		field.Bool("verified").
			Default(false),
		field.Bool("is_private").
			Default(false),
	}
}

// Edges of the Profile. Follow, Block and Mute reference a profile twice,
// so each of them has one association per role.
func (Profile) Edges() []socialgraph.Edge {
	cascade := sqlschema.OnDelete(sqlschema.Cascade)
	return []socialgraph.Edge{
		edge.To("active_for_users", User.Type),
		edge.To("members", ProfileMember.Type).
			Annotations(cascade),
		edge.To("followers", Follow.Type).
			Annotations(cascade),
		edge.To("following", Follow.Type).
			Annotations(cascade),
		edge.To("blocked_by", Block.Type).
			Annotations(cascade),
		edge.To("blocking", Block.Type).
			Annotations(cascade),
		edge.To("muted_by", Mute.Type).
			Annotations(cascade),
		edge.To("muting", Mute.Type).
			Annotations(cascade),
	}
}

// Indexes of the Profile.
func (Profile) Indexes() []socialgraph.Index {
	return []socialgraph.Index{
		index.Fields("type"),
	}
}
