package models

import (
	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/contrib/mixin"
	"github.com/syssam/socialgraph/schema"
	"github.com/syssam/socialgraph/schema/edge"
	"github.com/syssam/socialgraph/schema/index"
)

// Mute holds the schema definition for the Mute entity.
type Mute struct {
	socialgraph.Schema
}

// Annotations of the Mute.
func (Mute) Annotations() []schema.Annotation {
	return []schema.Annotation{
		schema.Comment("profile muting another profile"),
	}
}

// Mixin of the Mute.
func (Mute) Mixin() []socialgraph.Mixin {
	return []socialgraph.Mixin{
		mixin.ID{},
		mixin.CreateTime{},
	}
}

// Fields of the Mute.
func (Mute) Fields() []socialgraph.Field {
	return []socialgraph.Field{
		uuid("muter_profile_id"),
		uuid("muted_profile_id"),
	}
}

// Edges of the Mute.
func (Mute) Edges() []socialgraph.Edge {
	return []socialgraph.Edge{
		edge.From("muter", Profile.Type).
			Ref("muting").
			Field("muter_profile_id").
			Unique().
			Required(),
		edge.From("muted", Profile.Type).
			Ref("muted_by").
			Field("muted_profile_id").
			Unique().
			Required(),
	}
}

// Indexes of the Mute.
func (Mute) Indexes() []socialgraph.Index {
	return []socialgraph.Index{
		index.Fields("muter_profile_id", "muted_profile_id").
			Unique(),
		index.Fields("muted_profile_id"),
	}
}
