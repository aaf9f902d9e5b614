package client

import (
	"fmt"
	"strings"

	"github.com/syssam/socialgraph/client/account"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
)

// Account is an external identity provider link of a user.
type Account struct {
	ID                string `json:"id,omitempty"`
	UserID            string `json:"user_id,omitempty"`
	Type              string `json:"type,omitempty"`
	Provider          string `json:"provider,omitempty"`
	ProviderAccountID string `json:"provider_account_id,omitempty"`
	// The provider tokens are sensitive and never serialized.
	RefreshToken *string `json:"-"`
	AccessToken  *string `json:"-"`
	// ExpiresAt is in seconds since the Unix epoch.
	ExpiresAt    *int    `json:"expires_at,omitempty"`
	TokenType    *string `json:"token_type,omitempty"`
	Scope        *string `json:"scope,omitempty"`
	IDToken      *string `json:"-"`
	SessionState *string `json:"session_state,omitempty"`

	Edges  AccountEdges   `json:"edges"`
	Counts map[string]int `json:"_count,omitempty"`
}

// AccountEdges holds the relations/edges for the Account entity.
type AccountEdges struct {
	// User holds the value of the user edge.
	User *User `json:"user,omitempty"`

	loadedUser bool
}

// UserOrErr returns the User value or an error if the edge
// was not loaded in eager-loading.
func (e AccountEdges) UserOrErr() (*User, error) {
	return loaded(e.User, e.loadedUser, account.EdgeUser)
}

func decodeAccount(r *sqlgraph.Record) *Account {
	a := &Account{
		ID:                str(r, account.FieldID),
		UserID:            str(r, account.FieldUserID),
		Type:              str(r, account.FieldType),
		Provider:          str(r, account.FieldProvider),
		ProviderAccountID: str(r, account.FieldProviderAccountID),
		RefreshToken:      strPtr(r, account.FieldRefreshToken),
		AccessToken:       strPtr(r, account.FieldAccessToken),
		ExpiresAt:         intPtr(r, account.FieldExpiresAt),
		TokenType:         strPtr(r, account.FieldTokenType),
		Scope:             strPtr(r, account.FieldScope),
		IDToken:           strPtr(r, account.FieldIDToken),
		SessionState:      strPtr(r, account.FieldSessionState),
		Counts:            counts(r),
	}
	a.Edges.User, a.Edges.loadedUser = one(r, account.EdgeUser, decodeUser)
	return a
}

// String implements the fmt.Stringer.
func (a *Account) String() string {
	var builder strings.Builder
	builder.WriteString("Account(")
	builder.WriteString(fmt.Sprintf("id=%v, ", a.ID))
	builder.WriteString("user_id=")
	builder.WriteString(a.UserID)
	builder.WriteString(", type=")
	builder.WriteString(a.Type)
	builder.WriteString(", provider=")
	builder.WriteString(a.Provider)
	builder.WriteString(", provider_account_id=")
	builder.WriteString(a.ProviderAccountID)
	builder.WriteString(", refresh_token=<sensitive>, access_token=<sensitive>")
	if v := a.ExpiresAt; v != nil {
		builder.WriteString(fmt.Sprintf(", expires_at=%d", *v))
	}
	if v := a.TokenType; v != nil {
		builder.WriteString(", token_type=")
		builder.WriteString(*v)
	}
	if v := a.Scope; v != nil {
		builder.WriteString(", scope=")
		builder.WriteString(*v)
	}
	builder.WriteString(", id_token=<sensitive>")
	if v := a.SessionState; v != nil {
		builder.WriteString(", session_state=")
		builder.WriteString(*v)
	}
	builder.WriteByte(')')
	return builder.String()
}

// AccountCreateInput is the data of a new account.
type AccountCreateInput struct {
	ID string
	// UserID and User are exclusive.
	UserID            string
	User              *One[UserCreateInput]
	Type              string
	Provider          string
	ProviderAccountID string
	RefreshToken      *string
	AccessToken       *string
	ExpiresAt         *int
	TokenType         *string
	Scope             *string
	IDToken           *string
	SessionState      *string
}

func (in AccountCreateInput) createSpec() *sqlgraph.CreateSpec {
	fields := map[string]any{
		account.FieldType:              in.Type,
		account.FieldProvider:          in.Provider,
		account.FieldProviderAccountID: in.ProviderAccountID,
	}
	putKey(fields, account.FieldID, in.ID)
	putKey(fields, account.FieldUserID, in.UserID)
	putPtr(fields, account.FieldRefreshToken, in.RefreshToken)
	putPtr(fields, account.FieldAccessToken, in.AccessToken)
	putPtr(fields, account.FieldExpiresAt, in.ExpiresAt)
	putPtr(fields, account.FieldTokenType, in.TokenType)
	putPtr(fields, account.FieldScope, in.Scope)
	putPtr(fields, account.FieldIDToken, in.IDToken)
	putPtr(fields, account.FieldSessionState, in.SessionState)
	return &sqlgraph.CreateSpec{
		Fields: fields,
		Edges:  edges(in.User.edge(account.EdgeUser)),
	}
}

// AccountUpdateInput holds the changes of an account update.
type AccountUpdateInput struct {
	UserID            *string
	User              *One[UserCreateInput]
	Type              *string
	Provider          *string
	ProviderAccountID *string
	RefreshToken      Opt[string]
	AccessToken       Opt[string]
	// ExpiresAt and ExpiresAtOp are exclusive.
	ExpiresAt    Opt[int]
	ExpiresAtOp  *NumberOp
	TokenType    Opt[string]
	Scope        Opt[string]
	IDToken      Opt[string]
	SessionState Opt[string]
}

func (in AccountUpdateInput) updateSpec() *sqlgraph.UpdateSpec {
	fields := make(map[string]any)
	putPtr(fields, account.FieldUserID, in.UserID)
	putPtr(fields, account.FieldType, in.Type)
	putPtr(fields, account.FieldProvider, in.Provider)
	putPtr(fields, account.FieldProviderAccountID, in.ProviderAccountID)
	in.RefreshToken.put(fields, account.FieldRefreshToken)
	in.AccessToken.put(fields, account.FieldAccessToken)
	in.ExpiresAt.put(fields, account.FieldExpiresAt)
	in.TokenType.put(fields, account.FieldTokenType)
	in.Scope.put(fields, account.FieldScope)
	in.IDToken.put(fields, account.FieldIDToken)
	in.SessionState.put(fields, account.FieldSessionState)
	ops := make(map[string]sqlgraph.FieldOp)
	in.ExpiresAtOp.put(ops, account.FieldExpiresAt)
	return &sqlgraph.UpdateSpec{
		Fields: fields,
		Ops:    ops,
		Edges:  edges(in.User.edge(account.EdgeUser)),
	}
}

var accountKind = kind[Account, AccountCreateInput, AccountUpdateInput]{name: account.Model, decode: decodeAccount}

// AccountClient is a client for the Account schema.
type AccountClient struct {
	*delegate[Account, AccountCreateInput, AccountUpdateInput]
}

// QueryUser queries the user edge of an Account.
func (c *AccountClient) QueryUser(a *Account) *Query[User, []*User] {
	return traverse(c.model, a.ID, account.EdgeUser, newDelegate(c.config, userKind).FindMany())
}
