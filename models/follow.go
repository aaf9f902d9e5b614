package models

import (
	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/contrib/mixin"
	"github.com/syssam/socialgraph/schema"
	"github.com/syssam/socialgraph/schema/edge"
	"github.com/syssam/socialgraph/schema/index"
)

// Follow is a directed edge from the follower profile to the followed one.
type Follow struct {
	socialgraph.Schema
}

// Annotations of the Follow.
func (Follow) Annotations() []schema.Annotation {
	return []schema.Annotation{
		schema.Comment("directed follow from one profile to another"),
	}
}

// Mixin of the Follow.
func (Follow) Mixin() []socialgraph.Mixin {
	return []socialgraph.Mixin{
		mixin.ID{},
		mixin.CreateTime{},
	}
}

// Fields of the Follow.
func (Follow) Fields() []socialgraph.Field {
	return []socialgraph.Field{
		uuid("follower_profile_id"),
		uuid("following_profile_id"),
	}
}

// Edges of the Follow.
func (Follow) Edges() []socialgraph.Edge {
	return []socialgraph.Edge{
		edge.From("follower_profile", Profile.Type).
			Ref("following").
			Field("follower_profile_id").
			Unique().
			Required(),
		edge.From("following_profile", Profile.Type).
			Ref("followers").
			Field("following_profile_id").
			Unique().
			Required(),
	}
}

// Indexes of the Follow.
func (Follow) Indexes() []socialgraph.Index {
	return []socialgraph.Index{
		index.Fields("follower_profile_id", "following_profile_id").
			Unique(),
		index.Fields("following_profile_id"),
	}
}
