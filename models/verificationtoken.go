package models

import (
	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/schema/field"
	"github.com/syssam/socialgraph/schema/index"
)

// VerificationToken is a one-time sign-in token. It has no id and is
// addressed by its (identifier, token) pair.
type VerificationToken struct {
	socialgraph.Schema
}

// Fields of the VerificationToken.
func (VerificationToken) Fields() []socialgraph.Field {
	return []socialgraph.Field{
		field.String("identifier").
			NotEmpty(),
		field.String("token").
			NotEmpty().
			Sensitive(),
		field.Time("expires"),
	}
}

// Indexes of the VerificationToken.
func (VerificationToken) Indexes() []socialgraph.Index {
	return []socialgraph.Index{
		index.Fields("identifier", "token").
			Unique().
			StorageKey("verification_tokens_pkey"),
	}
}
