// Package account holds the field and relation handles of the Account model.
package account

import "github.com/syssam/socialgraph/querylanguage"

const (
	// Model is the name of the model.
	Model = "Account"
	// Table holds the table name of the account in the database.
	Table = "accounts"

	FieldID                = "id"
	FieldUserID            = "user_id"
	FieldType              = "type"
	FieldProvider          = "provider"
	FieldProviderAccountID = "provider_account_id"
	FieldRefreshToken      = "refresh_token"
	FieldAccessToken       = "access_token"
	FieldExpiresAt         = "expires_at"
	FieldTokenType         = "token_type"
	FieldScope             = "scope"
	FieldIDToken           = "id_token"
	FieldSessionState      = "session_state"

	EdgeUser = "user"
)

var (
	ID                = querylanguage.StringField(FieldID)
	UserID            = querylanguage.StringField(FieldUserID)
	Type              = querylanguage.StringField(FieldType)
	Provider          = querylanguage.StringField(FieldProvider)
	ProviderAccountID = querylanguage.StringField(FieldProviderAccountID)
	RefreshToken      = querylanguage.StringField(FieldRefreshToken)
	AccessToken       = querylanguage.StringField(FieldAccessToken)
	// ExpiresAt is in seconds since the Unix epoch.
	ExpiresAt    = querylanguage.IntField(FieldExpiresAt)
	TokenType    = querylanguage.StringField(FieldTokenType)
	Scope        = querylanguage.StringField(FieldScope)
	IDToken      = querylanguage.StringField(FieldIDToken)
	SessionState = querylanguage.StringField(FieldSessionState)

	User = querylanguage.Relation(EdgeUser)
)

// ByID returns the key of the account with the id.
func ByID(id string) querylanguage.Key {
	return querylanguage.Key{FieldID: id}
}

// ByProviderProviderAccountID returns the key of the account linked to
// the provider identity.
func ByProviderProviderAccountID(provider, providerAccountID string) querylanguage.Key {
	return querylanguage.Key{FieldProvider: provider, FieldProviderAccountID: providerAccountID}
}
