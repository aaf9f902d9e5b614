package client

import (
	"time"

	"github.com/syssam/socialgraph/client/verificationtoken"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
)

// VerificationToken is a one-time token of a passwordless login. It is
// identified by the identifier and the token together.
type VerificationToken struct {
	Identifier string    `json:"identifier,omitempty"`
	Token      string    `json:"-"`
	Expires    time.Time `json:"expires,omitempty"`
}

func decodeVerificationToken(r *sqlgraph.Record) *VerificationToken {
	return &VerificationToken{
		Identifier: str(r, verificationtoken.FieldIdentifier),
		Token:      str(r, verificationtoken.FieldToken),
		Expires:    timestamp(r, verificationtoken.FieldExpires),
	}
}

// String implements the fmt.Stringer.
func (v *VerificationToken) String() string {
	return "VerificationToken(identifier=" + v.Identifier + ", token=<sensitive>, expires=" + v.Expires.Format(time.ANSIC) + ")"
}

// VerificationTokenCreateInput is the data of a new verification token.
type VerificationTokenCreateInput struct {
	Identifier string
	Token      string
	Expires    time.Time
}

func (in VerificationTokenCreateInput) createSpec() *sqlgraph.CreateSpec {
	return &sqlgraph.CreateSpec{
		Fields: map[string]any{
			verificationtoken.FieldIdentifier: in.Identifier,
			verificationtoken.FieldToken:      in.Token,
			verificationtoken.FieldExpires:    in.Expires,
		},
	}
}

// VerificationTokenUpdateInput holds the changes of a verification token
// update.
type VerificationTokenUpdateInput struct {
	Expires *time.Time
}

func (in VerificationTokenUpdateInput) updateSpec() *sqlgraph.UpdateSpec {
	fields := make(map[string]any)
	putPtr(fields, verificationtoken.FieldExpires, in.Expires)
	return &sqlgraph.UpdateSpec{Fields: fields}
}

var verificationTokenKind = kind[VerificationToken, VerificationTokenCreateInput, VerificationTokenUpdateInput]{
	name:   verificationtoken.Model,
	decode: decodeVerificationToken,
}

// VerificationTokenClient is a client for the VerificationToken schema.
type VerificationTokenClient struct {
	*delegate[VerificationToken, VerificationTokenCreateInput, VerificationTokenUpdateInput]
}
