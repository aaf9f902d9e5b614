// Package block holds the field and relation handles of the Block model.
package block

import "github.com/syssam/socialgraph/querylanguage"

const (
	// Model is the name of the model.
	Model = "Block"
	// Table holds the table name of the block in the database.
	Table = "blocks"

	FieldID               = "id"
	FieldBlockerProfileID = "blocker_profile_id"
	FieldBlockedProfileID = "blocked_profile_id"
	FieldCreatedAt        = "created_at"

	EdgeBlocker = "blocker"
	EdgeBlocked = "blocked"
)

var (
	ID               = querylanguage.StringField(FieldID)
	BlockerProfileID = querylanguage.StringField(FieldBlockerProfileID)
	BlockedProfileID = querylanguage.StringField(FieldBlockedProfileID)
	CreatedAt        = querylanguage.TimeField(FieldCreatedAt)

	Blocker = querylanguage.Relation(EdgeBlocker)
	Blocked = querylanguage.Relation(EdgeBlocked)
)

// ByID returns the key of the block with the id.
func ByID(id string) querylanguage.Key {
	return querylanguage.Key{FieldID: id}
}

// ByBlockerProfileIDBlockedProfileID returns the key of the block of the
// pair.
func ByBlockerProfileIDBlockedProfileID(blocker, blocked string) querylanguage.Key {
	return querylanguage.Key{FieldBlockerProfileID: blocker, FieldBlockedProfileID: blocked}
}
