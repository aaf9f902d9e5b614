// Package follow holds the field and relation handles of the Follow model.
// A follow row points from the follower profile to the followed one.
package follow

import "github.com/syssam/socialgraph/querylanguage"

const (
	// Model is the name of the model.
	Model = "Follow"
	// Table holds the table name of the follow in the database.
	Table = "follows"

	FieldID                 = "id"
	FieldFollowerProfileID  = "follower_profile_id"
	FieldFollowingProfileID = "following_profile_id"
	FieldCreatedAt          = "created_at"

	EdgeFollowerProfile  = "follower_profile"
	EdgeFollowingProfile = "following_profile"
)

var (
	ID                 = querylanguage.StringField(FieldID)
	FollowerProfileID  = querylanguage.StringField(FieldFollowerProfileID)
	FollowingProfileID = querylanguage.StringField(FieldFollowingProfileID)
	CreatedAt          = querylanguage.TimeField(FieldCreatedAt)

	FollowerProfile  = querylanguage.Relation(EdgeFollowerProfile)
	FollowingProfile = querylanguage.Relation(EdgeFollowingProfile)
)

// ByID returns the key of the follow with the id.
func ByID(id string) querylanguage.Key {
	return querylanguage.Key{FieldID: id}
}

// ByFollowerProfileIDFollowingProfileID returns the key of the follow of
// the pair.
func ByFollowerProfileIDFollowingProfileID(follower, following string) querylanguage.Key {
	return querylanguage.Key{FieldFollowerProfileID: follower, FieldFollowingProfileID: following}
}
