// Package edge provides fluent builders for defining relations between models.
//
// # Edge Types
//
// There are two edge types:
//
//   - edge.To: the association, declared on the referenced model
//   - edge.From: the back-reference, declared on the model holding the foreign key
//
// Every association is paired with exactly one back-reference, and the
// back-reference binds the foreign-key field:
//
//	// Profile schema
//	edge.To("followers", Follow.Type).
//	    Annotations(sqlschema.OnDelete(sqlschema.Cascade))
//
//	// Follow schema
//	edge.From("following_profile", Profile.Type).
//	    Ref("followers").
//	    Field("following_profile_id").
//	    Unique().
//	    Required()
//
// # Cardinality
//
// A To edge is one-to-many unless marked Unique. A From edge marked Unique
// is many-to-one. Join entities (ProfileMember, Follow, Block, Mute) are
// models of their own, so there are no hidden join tables.
//
// # Self-Referential Relations
//
// A model can reference the same target through several roles. Each role is
// its own edge pair with its own foreign key, so the roles are never
// interchangeable:
//
//	edge.To("followers", Follow.Type)  // Follow.following_profile_id
//	edge.To("following", Follow.Type)  // Follow.follower_profile_id
//
// # Delete Actions
//
// The action applied to rows holding the foreign key when the referenced row
// is deleted is set on the To edge with sqlschema.OnDelete. Available actions
// are Cascade, SetNull, Restrict and NoAction.
package edge
