package models

import (
	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/contrib/mixin"
	"github.com/syssam/socialgraph/schema"
	"github.com/syssam/socialgraph/schema/edge"
	"github.com/syssam/socialgraph/schema/index"
)

// Block holds the schema definition for the Block entity.
type Block struct {
	socialgraph.Schema
}

// Annotations of the Block.
func (Block) Annotations() []schema.Annotation {
	return []schema.Annotation{
		schema.Comment("profile blocking another profile"),
	}
}

// Mixin of the Block.
func (Block) Mixin() []socialgraph.Mixin {
	return []socialgraph.Mixin{
		mixin.ID{},
		mixin.CreateTime{},
	}
}

// Fields of the Block.
func (Block) Fields() []socialgraph.Field {
	return []socialgraph.Field{
		uuid("blocker_profile_id"),
		uuid("blocked_profile_id"),
	}
}

// Edges of the Block.
func (Block) Edges() []socialgraph.Edge {
	return []socialgraph.Edge{
		edge.From("blocker", Profile.Type).
			Ref("blocking").
			Field("blocker_profile_id").
			Unique().
			Required(),
		edge.From("blocked", Profile.Type).
			Ref("blocked_by").
			Field("blocked_profile_id").
			Unique().
			Required(),
	}
}

// Indexes of the Block.
func (Block) Indexes() []socialgraph.Index {
	return []socialgraph.Index{
		index.Fields("blocker_profile_id", "blocked_profile_id").
			Unique(),
		index.Fields("blocked_profile_id"),
	}
}
