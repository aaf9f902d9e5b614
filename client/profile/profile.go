// Package profile holds the field and relation handles of the Profile model.
package profile

import (
	"github.com/syssam/socialgraph/models"
	"github.com/syssam/socialgraph/querylanguage"
)

const (
	// Model is the name of the model.
	Model = "Profile"
	// Table holds the table name of the profile in the database.
	Table = "profiles"

	FieldID          = "id"
	FieldType        = "type"
	FieldHandle      = "handle"
	FieldDisplayName = "display_name"
	FieldBio         = "bio"
	FieldAvatarURL   = "avatar_url"
	FieldLocation    = "location"
	FieldLinks       = "links"
	FieldInstruments = "instruments"
	FieldVerified    = "verified"
	FieldIsPrivate   = "is_private"
	FieldCreatedAt   = "created_at"
	FieldUpdatedAt   = "updated_at"

	EdgeActiveForUsers = "active_for_users"
	EdgeMembers        = "members"
	// EdgeFollowers holds the follows pointing at the profile.
	EdgeFollowers = "followers"
	// EdgeFollowing holds the follows the profile made.
	EdgeFollowing = "following"
	EdgeBlockedBy = "blocked_by"
	EdgeBlocking  = "blocking"
	EdgeMutedBy   = "muted_by"
	EdgeMuting    = "muting"
)

// Type is the kind of a profile.
type Type string

// Type values.
const (
	TypeArtist      Type = models.ProfileTypeArtist
	TypeGroup       Type = models.ProfileTypeGroup
	TypeInstitution Type = models.ProfileTypeInstitution
	TypeLabel       Type = models.ProfileTypeLabel
)

func (t Type) String() string {
	return string(t)
}

// Valid reports whether t is one of the profile types.
func (t Type) Valid() bool {
	switch t {
	case TypeArtist, TypeGroup, TypeInstitution, TypeLabel:
		return true
	}
	return false
}

var (
	ID          = querylanguage.StringField(FieldID)
	// Kind is the handle of the "type" field; Type names the enum.
	Kind        = querylanguage.EnumField[Type](FieldType)
	Handle      = querylanguage.StringField(FieldHandle)
	DisplayName = querylanguage.StringField(FieldDisplayName)
	Bio         = querylanguage.StringField(FieldBio)
	AvatarURL   = querylanguage.StringField(FieldAvatarURL)
	Location    = querylanguage.StringField(FieldLocation)
	Links       = querylanguage.JSONField(FieldLinks)
	Instruments = querylanguage.StringsField(FieldInstruments)
	Verified    = querylanguage.BoolField(FieldVerified)
	IsPrivate   = querylanguage.BoolField(FieldIsPrivate)
	CreatedAt   = querylanguage.TimeField(FieldCreatedAt)
	UpdatedAt   = querylanguage.TimeField(FieldUpdatedAt)

	ActiveForUsers = querylanguage.Relation(EdgeActiveForUsers)
	Members        = querylanguage.Relation(EdgeMembers)
	Followers      = querylanguage.Relation(EdgeFollowers)
	Following      = querylanguage.Relation(EdgeFollowing)
	BlockedBy      = querylanguage.Relation(EdgeBlockedBy)
	Blocking       = querylanguage.Relation(EdgeBlocking)
	MutedBy        = querylanguage.Relation(EdgeMutedBy)
	Muting         = querylanguage.Relation(EdgeMuting)
)

// ByID returns the key of the profile with the id.
func ByID(id string) querylanguage.Key {
	return querylanguage.Key{FieldID: id}
}

// ByHandle returns the key of the profile with the handle.
func ByHandle(handle string) querylanguage.Key {
	return querylanguage.Key{FieldHandle: handle}
}
