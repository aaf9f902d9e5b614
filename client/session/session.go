// Package session holds the field and relation handles of the Session model.
package session

import "github.com/syssam/socialgraph/querylanguage"

const (
	// Model is the name of the model.
	Model = "Session"
	// Table holds the table name of the session in the database.
	Table = "sessions"

	FieldID           = "id"
	FieldSessionToken = "session_token"
	FieldUserID       = "user_id"
	FieldExpires      = "expires"

	EdgeUser = "user"
)

var (
	ID           = querylanguage.StringField(FieldID)
	SessionToken = querylanguage.StringField(FieldSessionToken)
	UserID       = querylanguage.StringField(FieldUserID)
	Expires      = querylanguage.TimeField(FieldExpires)

	User = querylanguage.Relation(EdgeUser)
)

// ByID returns the key of the session with the id.
func ByID(id string) querylanguage.Key {
	return querylanguage.Key{FieldID: id}
}

// BySessionToken returns the key of the session with the token.
func BySessionToken(token string) querylanguage.Key {
	return querylanguage.Key{FieldSessionToken: token}
}
