// Package schema provides the building blocks for declaring the models of
// the data-access layer.
//
// Models are Go types embedding socialgraph.Schema and returning builders
// from the subpackages:
//
//   - [field]: scalar fields (string, text, int, bool, time, enum, JSON, string lists)
//   - [edge]: relations between models
//   - [index]: single and compound indexes, unique or not
//   - [mixin]: reusable field sets
//
// Example:
//
//	type Follow struct{ socialgraph.Schema }
//
//	func (Follow) Fields() []socialgraph.Field {
//	    return []socialgraph.Field{
//	        field.String("follower_profile_id"),
//	        field.String("following_profile_id"),
//	    }
//	}
//
//	func (Follow) Edges() []socialgraph.Edge {
//	    return []socialgraph.Edge{
//	        edge.From("follower_profile", Profile.Type).
//	            Ref("following").Field("follower_profile_id").Unique().Required(),
//	    }
//	}
//
//	func (Follow) Indexes() []socialgraph.Index {
//	    return []socialgraph.Index{
//	        index.Fields("follower_profile_id", "following_profile_id").Unique(),
//	    }
//	}
//
// The graph package turns a set of such models into the immutable registry
// consumed by the query and mutation layers.
package schema
