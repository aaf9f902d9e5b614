package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/contrib/mixin"
	"github.com/syssam/socialgraph/dialect/sqlschema"
	"github.com/syssam/socialgraph/graph"
	"github.com/syssam/socialgraph/models"
	"github.com/syssam/socialgraph/schema/edge"
	"github.com/syssam/socialgraph/schema/field"
	"github.com/syssam/socialgraph/schema/index"
)

func TestTableName(t *testing.T) {
	tests := map[string]string{
		"User":              "users",
		"VerificationToken": "verification_tokens",
		"ProfileMember":     "profile_members",
		"Follow":            "follows",
	}
	for model, table := range tests {
		assert.Equal(t, table, graph.TableName(model), model)
	}
}

func TestModels(t *testing.T) {
	g := models.Graph()
	require.Len(t, g.Models, 9)

	t.Run("PrimaryKeys", func(t *testing.T) {
		u := g.MustModel("User")
		require.NotNil(t, u.ID)
		assert.Equal(t, []string{"id"}, u.PKColumns())
		assert.Equal(t, "users_pkey", u.PKName)

		vt := g.MustModel("VerificationToken")
		assert.Nil(t, vt.ID)
		assert.Equal(t, []string{"identifier", "token"}, vt.PKColumns())
		assert.Equal(t, "verification_tokens_pkey", vt.PKName)
		assert.Empty(t, vt.Indexes)
	})

	t.Run("UniqueKeys", func(t *testing.T) {
		f := g.MustModel("Follow")
		keys := f.UniqueKeys()
		require.Len(t, keys, 2)
		assert.Equal(t, "id", keys[0][0].Name)
		_, ok := f.UniqueKey("following_profile_id", "follower_profile_id")
		assert.True(t, ok)
		_, ok = f.UniqueKey("follower_profile_id")
		assert.False(t, ok)

		a := g.MustModel("Account")
		_, ok = a.UniqueKey("provider", "provider_account_id")
		assert.True(t, ok)
	})

	t.Run("Constraint", func(t *testing.T) {
		m, idx, ok := g.Constraint("users_email_key")
		require.True(t, ok)
		assert.Equal(t, "User", m.Name)
		assert.Equal(t, []string{"email"}, idx.FieldNames())

		m, idx, ok = g.Constraint("profile_members_user_id_profile_id_key")
		require.True(t, ok)
		assert.Equal(t, "ProfileMember", m.Name)
		assert.Equal(t, []string{"user_id", "profile_id"}, idx.FieldNames())

		m, idx, ok = g.Constraint("verification_tokens_pkey")
		require.True(t, ok)
		assert.Equal(t, "VerificationToken", m.Name)
		assert.True(t, idx.Unique)

		_, _, ok = g.Constraint("unknown_key")
		assert.False(t, ok)
	})

	t.Run("UniqueByColumns", func(t *testing.T) {
		m, idx, ok := g.UniqueByColumns("blocks", []string{"blocked_profile_id", "blocker_profile_id"})
		require.True(t, ok)
		assert.Equal(t, "Block", m.Name)
		assert.Equal(t, "blocks_blocker_profile_id_blocked_profile_id_key", idx.Name)

		_, _, ok = g.UniqueByColumns("blocks", []string{"blocked_profile_id"})
		assert.False(t, ok, "plain index is not a unique key")
		_, _, ok = g.UniqueByColumns("nope", []string{"id"})
		assert.False(t, ok)
	})

	t.Run("Edges", func(t *testing.T) {
		p := g.MustModel("Profile")
		followers, ok := p.Edge("followers")
		require.True(t, ok)
		following, ok := p.Edge("following")
		require.True(t, ok)
		assert.Equal(t, graph.O2M, followers.Rel)
		assert.Equal(t, "following_profile_id", followers.Field.Column)
		assert.Equal(t, "follower_profile_id", following.Field.Column)
		assert.Equal(t, "following_profile", followers.Ref.Name)
		assert.Equal(t, sqlschema.Cascade, followers.OnDelete)

		active, ok := p.Edge("active_for_users")
		require.True(t, ok)
		assert.Equal(t, sqlschema.SetNull, active.OnDelete)

		u := g.MustModel("User")
		ap, ok := u.Edge("active_profile")
		require.True(t, ok)
		assert.Equal(t, graph.M2O, ap.Rel)
		assert.True(t, ap.Inverse)
		assert.Same(t, p, ap.Target)
		assert.Same(t, ap, ap.Field.FK)
		assert.True(t, ap.Field.Optional)

		acc, ok := u.Edge("accounts")
		require.True(t, ok)
		assert.Equal(t, sqlschema.Cascade, acc.OnDelete)
		assert.Equal(t, sqlschema.Cascade, acc.Ref.OnDelete)
		assert.True(t, acc.Ref.Required)
	})

	t.Run("Fields", func(t *testing.T) {
		p := g.MustModel("Profile")
		links, ok := p.Field("links")
		require.True(t, ok)
		assert.True(t, links.IsJSON())
		assert.True(t, links.Nullable())
		assert.False(t, links.Orderable())

		typ, ok := p.Field("type")
		require.True(t, ok)
		assert.Equal(t, []string{"ARTIST", "GROUP", "INSTITUTION", "LABEL"}, typ.Enums)

		a := g.MustModel("Account")
		exp, ok := a.Field("expires_at")
		require.True(t, ok)
		assert.True(t, exp.Type.Numeric())
		assert.Equal(t, []string{"id", "user_id", "type", "provider"}, a.Columns()[:4])
	})

	m, ok := g.ModelByTable("mutes")
	require.True(t, ok)
	assert.Equal(t, "Mute", m.Name)
}

type (
	Owner struct{ socialgraph.Schema }
	Pet   struct{ socialgraph.Schema }
	Tag   struct{ socialgraph.Schema }
	Chip  struct{ socialgraph.Schema }
	Stray struct{ socialgraph.Schema }
	Named struct{ socialgraph.Schema }
)

func (Owner) Mixin() []socialgraph.Mixin { return []socialgraph.Mixin{mixin.ID{}} }

func (Owner) Edges() []socialgraph.Edge {
	return []socialgraph.Edge{
		edge.To("pets", Pet.Type),
	}
}

func (Pet) Mixin() []socialgraph.Mixin { return []socialgraph.Mixin{mixin.ID{}} }

func (Pet) Fields() []socialgraph.Field {
	return []socialgraph.Field{
		field.Int("owner_id"),
	}
}

func (Pet) Edges() []socialgraph.Edge {
	return []socialgraph.Edge{
		edge.From("owner", Owner.Type).
			Ref("pets").
			Field("owner_id").
			Unique().
			Required(),
	}
}

func (Tag) Fields() []socialgraph.Field {
	return []socialgraph.Field{
		field.String("name").Optional(),
	}
}

func (Tag) Indexes() []socialgraph.Index {
	return []socialgraph.Index{
		index.Fields("name").Unique(),
	}
}

func (Chip) Fields() []socialgraph.Field {
	return []socialgraph.Field{
		field.String("code"),
		field.String("code"),
	}
}

func (Stray) Mixin() []socialgraph.Mixin { return []socialgraph.Mixin{mixin.ID{}} }

func (Stray) Edges() []socialgraph.Edge {
	return []socialgraph.Edge{
		edge.To("friends", Owner{}),
	}
}

func (Named) Mixin() []socialgraph.Mixin { return []socialgraph.Mixin{mixin.ID{}} }

func (Named) Edges() []socialgraph.Edge {
	return []socialgraph.Edge{
		edge.To("owners", "Owner"),
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name    string
		schemas []socialgraph.Interface
		wantErr string
	}{
		{
			name:    "ForeignKeyTypeMismatch",
			schemas: []socialgraph.Interface{Owner{}, Pet{}},
			wantErr: `field "owner_id" type int does not match Owner.id`,
		},
		{
			name:    "OptionalPrimaryKey",
			schemas: []socialgraph.Interface{Tag{}},
			wantErr: `primary key field "name" cannot be optional`,
		},
		{
			name:    "DuplicateField",
			schemas: []socialgraph.Interface{Chip{}},
			wantErr: `duplicate field "code"`,
		},
		{
			name:    "UnknownTarget",
			schemas: []socialgraph.Interface{Stray{}},
			wantErr: `unknown target model "Owner"`,
		},
		{
			name:    "StringTarget",
			schemas: []socialgraph.Interface{Owner{}, Named{}},
			wantErr: `Named.owners: unknown target model ""`,
		},
		{
			name:    "DuplicateModel",
			schemas: []socialgraph.Interface{models.Session{}, models.Session{}},
			wantErr: `duplicate model "Session"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := graph.New(tt.schemas...)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMustNewPanics(t *testing.T) {
	assert.Panics(t, func() { graph.MustNew(Chip{}) })
	assert.Panics(t, func() { models.Graph().MustModel("Comment") })
}
