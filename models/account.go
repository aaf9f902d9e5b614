package models

import (
	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/contrib/mixin"
	"github.com/syssam/socialgraph/schema/edge"
	"github.com/syssam/socialgraph/schema/field"
	"github.com/syssam/socialgraph/schema/index"
)

// Account is an external identity provider link of a user.
type Account struct {
	socialgraph.Schema
}

// Mixin of the Account.
func (Account) Mixin() []socialgraph.Mixin {
	return []socialgraph.Mixin{
		mixin.ID{},
	}
}

// Fields of the Account.
func (Account) Fields() []socialgraph.Field {
	return []socialgraph.Field{
		uuid("user_id"),
		field.String("type"),
		field.String("provider"),
		field.String("provider_account_id"),
		field.Text("refresh_token").
			Optional().
			Nillable().
			Sensitive(),
		field.Text("access_token").
			Optional().
			Nillable().
			Sensitive(),
		// Seconds since the Unix epoch, as issued by the provider.
		field.Int("expires_at").
			Optional().
			Nillable(),
		field.String("token_type").
			Optional().
			Nillable(),
		field.String("scope").
			Optional().
			Nillable(),
		field.Text("id_token").
			Optional().
			Nillable().
			Sensitive(),
		field.String("session_state").
			Optional().
			Nillable(),
	}
}

// Edges of the Account.
func (Account) Edges() []socialgraph.Edge {
	return []socialgraph.Edge{
		edge.From("user", User.Type).
			Ref("accounts").
			Field("user_id").
			Unique().
			Required(),
	}
}

// Indexes of the Account.
func (Account) Indexes() []socialgraph.Index {
	return []socialgraph.Index{
		index.Fields("provider", "provider_account_id").
			Unique(),
		index.Fields("user_id"),
	}
}
