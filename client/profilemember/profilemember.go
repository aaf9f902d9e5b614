// Package profilemember holds the field and relation handles of the
// ProfileMember model, the join row between users and the profiles they
// manage.
package profilemember

import (
	"github.com/syssam/socialgraph/models"
	"github.com/syssam/socialgraph/querylanguage"
)

const (
	// Model is the name of the model.
	Model = "ProfileMember"
	// Table holds the table name of the profile member in the database.
	Table = "profile_members"

	FieldID        = "id"
	FieldUserID    = "user_id"
	FieldProfileID = "profile_id"
	FieldRole      = "role"
	FieldCreatedAt = "created_at"

	EdgeUser    = "user"
	EdgeProfile = "profile"
)

// Role is the permission level of a member.
type Role string

// Role values.
const (
	RoleOwner  Role = models.RoleOwner
	RoleAdmin  Role = models.RoleAdmin
	RoleEditor Role = models.RoleEditor
)

func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor:
		return true
	}
	return false
}

var (
	ID         = querylanguage.StringField(FieldID)
	UserID     = querylanguage.StringField(FieldUserID)
	ProfileID  = querylanguage.StringField(FieldProfileID)
	MemberRole = querylanguage.EnumField[Role](FieldRole)
	CreatedAt  = querylanguage.TimeField(FieldCreatedAt)

	User    = querylanguage.Relation(EdgeUser)
	Profile = querylanguage.Relation(EdgeProfile)
)

// ByID returns the key of the membership with the id.
func ByID(id string) querylanguage.Key {
	return querylanguage.Key{FieldID: id}
}

// ByUserIDProfileID returns the key of the membership of the user in the
// profile.
func ByUserIDProfileID(userID, profileID string) querylanguage.Key {
	return querylanguage.Key{FieldUserID: userID, FieldProfileID: profileID}
}
