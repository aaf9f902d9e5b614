// Package verificationtoken holds the field handles of the
// VerificationToken model. Tokens have no id; they are addressed by the
// (identifier, token) pair.
package verificationtoken

import "github.com/syssam/socialgraph/querylanguage"

const (
	// Model is the name of the model.
	Model = "VerificationToken"
	// Table holds the table name of the verification token in the database.
	Table = "verification_tokens"

	FieldIdentifier = "identifier"
	FieldToken      = "token"
	FieldExpires    = "expires"
)

var (
	Identifier = querylanguage.StringField(FieldIdentifier)
	Token      = querylanguage.StringField(FieldToken)
	Expires    = querylanguage.TimeField(FieldExpires)
)

// ByIdentifierToken returns the key of the token.
func ByIdentifierToken(identifier, token string) querylanguage.Key {
	return querylanguage.Key{FieldIdentifier: identifier, FieldToken: token}
}
