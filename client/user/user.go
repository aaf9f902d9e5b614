// Package user holds the field and relation handles of the User model.
package user

import "github.com/syssam/socialgraph/querylanguage"

const (
	// Model is the name of the model.
	Model = "User"
	// Table holds the table name of the user in the database.
	Table = "users"

	FieldID              = "id"
	FieldEmail           = "email"
	FieldPasswordHash    = "password_hash"
	FieldActiveProfileID = "active_profile_id"
	FieldCreatedAt       = "created_at"
	FieldUpdatedAt       = "updated_at"

	EdgeMemberships   = "memberships"
	EdgeAccounts      = "accounts"
	EdgeSessions      = "sessions"
	EdgeActiveProfile = "active_profile"
)

// Columns holds all SQL columns for user fields.
var Columns = []string{
	FieldID,
	FieldEmail,
	FieldPasswordHash,
	FieldActiveProfileID,
	FieldCreatedAt,
	FieldUpdatedAt,
}

var (
	ID              = querylanguage.StringField(FieldID)
	Email           = querylanguage.StringField(FieldEmail)
	PasswordHash    = querylanguage.StringField(FieldPasswordHash)
	ActiveProfileID = querylanguage.StringField(FieldActiveProfileID)
	CreatedAt       = querylanguage.TimeField(FieldCreatedAt)
	UpdatedAt       = querylanguage.TimeField(FieldUpdatedAt)

	Memberships   = querylanguage.Relation(EdgeMemberships)
	Accounts      = querylanguage.Relation(EdgeAccounts)
	Sessions      = querylanguage.Relation(EdgeSessions)
	ActiveProfile = querylanguage.Relation(EdgeActiveProfile)
)

// ByID returns the key of the user with the id.
func ByID(id string) querylanguage.Key {
	return querylanguage.Key{FieldID: id}
}

// ByEmail returns the key of the user with the email.
func ByEmail(email string) querylanguage.Key {
	return querylanguage.Key{FieldEmail: email}
}
