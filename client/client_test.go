package client_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/client"
	"github.com/syssam/socialgraph/client/follow"
	"github.com/syssam/socialgraph/client/profile"
	"github.com/syssam/socialgraph/client/profilemember"
	"github.com/syssam/socialgraph/client/user"
	"github.com/syssam/socialgraph/dialect"
	"github.com/syssam/socialgraph/dialect/sql"
	"github.com/syssam/socialgraph/querylanguage"
)

// openClient returns a client on a private in-memory database with the
// tables created.
func openClient(t *testing.T, opts ...client.Option) *client.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&_pragma=foreign_keys(1)", uuid.NewString())
	drv, err := sql.Open(dialect.SQLite, dsn)
	require.NoError(t, err)
	// Each connection to a private memory database opens a new one.
	drv.DB().SetMaxOpenConns(1)
	c := client.NewClient(append(opts, client.Driver(drv))...)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Schema.Create(context.Background()))
	return c
}

func ptr[T any](v T) *T { return &v }

func createProfile(t *testing.T, c *client.Client, handle string) *client.Profile {
	t.Helper()
	p, err := c.Profile.Create(client.ProfileCreateInput{
		Type:        profile.TypeArtist,
		Handle:      handle,
		DisplayName: strings.ToUpper(handle),
	}).Exec(context.Background())
	require.NoError(t, err)
	return p
}

func createUser(t *testing.T, c *client.Client, email string) *client.User {
	t.Helper()
	u, err := c.User.Create(client.UserCreateInput{Email: email}).Exec(context.Background())
	require.NoError(t, err)
	return u
}

func count[T any](t *testing.T, q *client.Query[T, int]) int {
	t.Helper()
	n, err := q.Exec(context.Background())
	require.NoError(t, err)
	return n
}

func TestCreateDefaults(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	before := time.Now().Add(-time.Second)
	p := createProfile(t, c, "nina")

	_, err := uuid.Parse(p.ID)
	assert.NoError(t, err)
	assert.Equal(t, profile.TypeArtist, p.Type)
	assert.Equal(t, "NINA", p.DisplayName)
	assert.Nil(t, p.Bio)
	assert.Nil(t, p.Links)
	assert.Equal(t, []string{}, p.Instruments)
	assert.False(t, p.Verified)
	assert.False(t, p.IsPrivate)
	assert.True(t, p.CreatedAt.After(before))
	assert.Equal(t, time.UTC, p.CreatedAt.Location())

	got, err := c.Profile.FindUniqueOrThrow(profile.ByHandle("nina")).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	tests := []struct {
		name string
		in   client.ProfileCreateInput
	}{
		{"empty handle", client.ProfileCreateInput{Type: profile.TypeArtist, DisplayName: "x"}},
		{"unknown type", client.ProfileCreateInput{Type: "BAND", Handle: "band", DisplayName: "x"}},
		{"long handle", client.ProfileCreateInput{Type: profile.TypeLabel, Handle: strings.Repeat("h", 65), DisplayName: "x"}},
		{"invalid links", client.ProfileCreateInput{Type: profile.TypeLabel, Handle: "links", DisplayName: "x", Links: json.RawMessage(`{`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Profile.Create(tt.in).Exec(ctx)
			require.Error(t, err)
			assert.True(t, socialgraph.IsValidationError(err), err.Error())
		})
	}
	assert.Zero(t, count(t, c.Profile.Count()))
}

func TestFollow(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	fan, artist := createProfile(t, c, "fan"), createProfile(t, c, "artist")
	in := client.FollowCreateInput{FollowerProfileID: fan.ID, FollowingProfileID: artist.ID}

	f, err := c.Follow.Create(in).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, fan.ID, f.FollowerProfileID)
	assert.Equal(t, artist.ID, f.FollowingProfileID)
	assert.False(t, f.CreatedAt.IsZero())

	got, err := c.Profile.FindUnique(profile.ByID(artist.ID)).
		IncludeCount(profile.EdgeFollowers).
		IncludeCount(profile.EdgeFollowing).
		Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Counts[profile.EdgeFollowers])
	assert.Equal(t, 0, got.Counts[profile.EdgeFollowing])

	pair, err := c.Follow.FindUnique(follow.ByFollowerProfileIDFollowingProfileID(fan.ID, artist.ID)).Exec(ctx)
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, f.ID, pair.ID)

	t.Run("duplicate", func(t *testing.T) {
		_, err := c.Follow.Create(in).Exec(ctx)
		require.Error(t, err)
		ce, ok := socialgraph.AsConstraintError(err)
		require.True(t, ok, err.Error())
		assert.Equal(t, socialgraph.UniqueConstraint, ce.Kind)
		assert.Equal(t, follow.Model, ce.Model)
		assert.Equal(t, "follows_follower_profile_id_following_profile_id_key", ce.Constraint)
		assert.ElementsMatch(t, []string{follow.FieldFollowerProfileID, follow.FieldFollowingProfileID}, ce.Fields)
		assert.Equal(t, 1, count(t, c.Follow.Count()))
	})

	t.Run("self follow", func(t *testing.T) {
		_, err := c.Follow.Create(client.FollowCreateInput{FollowerProfileID: fan.ID, FollowingProfileID: fan.ID}).Exec(ctx)
		require.NoError(t, err)
	})

	t.Run("missing profile", func(t *testing.T) {
		_, err := c.Follow.Create(client.FollowCreateInput{FollowerProfileID: fan.ID, FollowingProfileID: uuid.NewString()}).Exec(ctx)
		require.Error(t, err)
		ce, ok := socialgraph.AsConstraintError(err)
		require.True(t, ok, err.Error())
		assert.Equal(t, socialgraph.ForeignKeyConstraint, ce.Kind)
	})

	t.Run("relation required", func(t *testing.T) {
		_, err := c.Follow.Create(client.FollowCreateInput{FollowerProfileID: fan.ID}).Exec(ctx)
		require.Error(t, err)
		assert.True(t, socialgraph.IsValidationError(err))
	})

	t.Run("connect by handle", func(t *testing.T) {
		other := createProfile(t, c, "other")
		f, err := c.Follow.Create(client.FollowCreateInput{
			FollowerProfile:    client.ConnectTo[client.ProfileCreateInput](profile.ByHandle("other")),
			FollowingProfileID: artist.ID,
		}).Include(follow.EdgeFollowerProfile).Exec(ctx)
		require.NoError(t, err)
		assert.Equal(t, other.ID, f.FollowerProfileID)
		follower, err := f.Edges.FollowerProfileOrErr()
		require.NoError(t, err)
		assert.Equal(t, "other", follower.Handle)
	})
}

func TestDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	createUser(t, c, "a@b.c")

	_, err := c.User.Create(client.UserCreateInput{Email: "a@b.c"}).Exec(ctx)
	require.Error(t, err)
	assert.True(t, socialgraph.IsUniqueConstraintError(err))
	ce, ok := socialgraph.AsConstraintError(err)
	require.True(t, ok)
	assert.Equal(t, user.Model, ce.Model)
	assert.Equal(t, "users_email_key", ce.Constraint)
	assert.Equal(t, []string{user.FieldEmail}, ce.Fields)
	assert.Equal(t, 1, count(t, c.User.Count()))
}

func TestDuplicateMembership(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	u, p := createUser(t, c, "owner@b.c"), createProfile(t, c, "band")
	in := client.ProfileMemberCreateInput{UserID: u.ID, ProfileID: p.ID, Role: profilemember.RoleOwner}

	m, err := c.ProfileMember.Create(in).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, profilemember.RoleOwner, m.Role)

	in.Role = profilemember.RoleEditor
	_, err = c.ProfileMember.Create(in).Exec(ctx)
	ce, ok := socialgraph.AsConstraintError(err)
	require.True(t, ok)
	assert.Equal(t, socialgraph.UniqueConstraint, ce.Kind)
	assert.Equal(t, profilemember.Model, ce.Model)
	assert.ElementsMatch(t, []string{profilemember.FieldUserID, profilemember.FieldProfileID}, ce.Fields)
}

func TestNestedCreate(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	u, err := c.User.Create(client.UserCreateInput{
		Email: "nested@b.c",
		ActiveProfile: client.CreateWith(client.ProfileCreateInput{
			Type:        profile.TypeGroup,
			Handle:      "quartet",
			DisplayName: "Quartet",
		}),
		Accounts: &client.Many[client.AccountCreateInput]{Create: []client.AccountCreateInput{
			{Type: "oauth", Provider: "github", ProviderAccountID: "1"},
		}},
		Sessions: &client.Many[client.SessionCreateInput]{Create: []client.SessionCreateInput{
			{SessionToken: "tok", Expires: time.Now().Add(time.Hour)},
		}},
	}).
		Include(user.EdgeActiveProfile).
		Include(user.EdgeAccounts).
		IncludeCount(user.EdgeSessions).
		Exec(ctx)
	require.NoError(t, err)

	active, err := u.Edges.ActiveProfileOrErr()
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "quartet", active.Handle)
	assert.Equal(t, active.ID, *u.ActiveProfileID)
	accounts, err := u.Edges.AccountsOrErr()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, u.ID, accounts[0].UserID)
	assert.Equal(t, 1, u.Counts[user.EdgeSessions])

	_, err = u.Edges.SessionsOrErr()
	assert.True(t, socialgraph.IsNotLoaded(err))
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	p := createProfile(t, c, "solo")
	u, err := c.User.Create(client.UserCreateInput{
		Email: "gone@b.c",
		Accounts: &client.Many[client.AccountCreateInput]{Create: []client.AccountCreateInput{
			{Type: "oauth", Provider: "github", ProviderAccountID: "7"},
			{Type: "oauth", Provider: "google", ProviderAccountID: "7"},
		}},
		Sessions: &client.Many[client.SessionCreateInput]{Create: []client.SessionCreateInput{
			{SessionToken: "s1", Expires: time.Now().Add(time.Hour)},
		}},
		Memberships: &client.Many[client.ProfileMemberCreateInput]{Create: []client.ProfileMemberCreateInput{
			{ProfileID: p.ID, Role: profilemember.RoleOwner},
		}},
	}).Exec(ctx)
	require.NoError(t, err)
	keep := createUser(t, c, "keep@b.c")
	_, err = c.Session.Create(client.SessionCreateInput{SessionToken: "s2", UserID: keep.ID, Expires: time.Now()}).Exec(ctx)
	require.NoError(t, err)

	deleted, err := c.User.Delete(user.ByID(u.ID)).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gone@b.c", deleted.Email)

	assert.Zero(t, count(t, c.Account.Count()))
	assert.Equal(t, 1, count(t, c.Session.Count()))
	assert.Zero(t, count(t, c.ProfileMember.Count()))
	assert.Equal(t, 1, count(t, c.Profile.Count()))

	_, err = c.User.Delete(user.ByID(u.ID)).Exec(ctx)
	assert.True(t, socialgraph.IsNotFound(err))
}

func TestDeleteProfileCascades(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	p, q := createProfile(t, c, "leaving"), createProfile(t, c, "staying")
	u, err := c.User.Create(client.UserCreateInput{Email: "u@b.c", ActiveProfileID: p.ID}).Exec(ctx)
	require.NoError(t, err)
	_, err = c.ProfileMember.Create(client.ProfileMemberCreateInput{UserID: u.ID, ProfileID: p.ID, Role: profilemember.RoleAdmin}).Exec(ctx)
	require.NoError(t, err)
	_, err = c.Follow.CreateMany(
		client.FollowCreateInput{FollowerProfileID: p.ID, FollowingProfileID: q.ID},
		client.FollowCreateInput{FollowerProfileID: q.ID, FollowingProfileID: p.ID},
	).Exec(ctx)
	require.NoError(t, err)
	_, err = c.Block.Create(client.BlockCreateInput{BlockerProfileID: q.ID, BlockedProfileID: p.ID}).Exec(ctx)
	require.NoError(t, err)
	_, err = c.Mute.Create(client.MuteCreateInput{MuterProfileID: p.ID, MutedProfileID: q.ID}).Exec(ctx)
	require.NoError(t, err)

	_, err = c.Profile.Delete(profile.ByID(p.ID)).Exec(ctx)
	require.NoError(t, err)

	assert.Zero(t, count(t, c.Follow.Count()))
	assert.Zero(t, count(t, c.Block.Count()))
	assert.Zero(t, count(t, c.Mute.Count()))
	assert.Zero(t, count(t, c.ProfileMember.Count()))
	got, err := c.User.FindUniqueOrThrow(user.ByID(u.ID)).Exec(ctx)
	require.NoError(t, err)
	assert.Nil(t, got.ActiveProfileID)
}

func TestJSONNulls(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	in := func(handle string, links any) client.ProfileCreateInput {
		return client.ProfileCreateInput{Type: profile.TypeArtist, Handle: handle, DisplayName: handle, Links: links}
	}
	p1, err := c.Profile.Create(in("p1", map[string]string{"site": "https://p1.test"})).Exec(ctx)
	require.NoError(t, err)
	p2, err := c.Profile.Create(in("p2", socialgraph.JsonNull)).Exec(ctx)
	require.NoError(t, err)
	p3, err := c.Profile.Create(in("p3", nil)).Exec(ctx)
	require.NoError(t, err)

	assert.JSONEq(t, `{"site":"https://p1.test"}`, string(p1.Links))
	assert.Equal(t, json.RawMessage("null"), p2.Links)
	assert.Nil(t, p3.Links)

	all := func() *client.Query[client.Profile, []*client.Profile] { return c.Profile.FindMany() }
	tests := []struct {
		name string
		q    *client.Query[client.Profile, []*client.Profile]
		want []string
	}{
		{"db null", all().Where(profile.Links.IsDbNull()), []string{"p3"}},
		{"json null", all().Where(profile.Links.IsJsonNull()), []string{"p2"}},
		{"any null", all().Where(profile.Links.IsAnyNull()), []string{"p2", "p3"}},
		{"not db null", all().Where(querylanguage.Not(profile.Links.IsDbNull())), []string{"p1", "p2"}},
		{"path", all().Where(profile.Links.Path("site").EQ("https://p1.test")), []string{"p1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps, err := tt.q.OrderBy(profile.Handle.Asc()).Exec(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, handles(ps))
		})
	}

	t.Run("clear", func(t *testing.T) {
		got, err := c.Profile.Update(profile.ByID(p1.ID), client.ProfileUpdateInput{Links: socialgraph.DbNull}).Exec(ctx)
		require.NoError(t, err)
		assert.Nil(t, got.Links)
		got, err = c.Profile.Update(profile.ByID(p3.ID), client.ProfileUpdateInput{Links: socialgraph.JsonNull}).Exec(ctx)
		require.NoError(t, err)
		assert.Equal(t, json.RawMessage("null"), got.Links)
	})

	t.Run("any null as value", func(t *testing.T) {
		_, err := c.Profile.Create(in("p4", socialgraph.AnyNull)).Exec(ctx)
		assert.True(t, socialgraph.IsValidationError(err))
	})
}

func TestStrings(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	_, err := c.Profile.CreateMany(
		client.ProfileCreateInput{Type: profile.TypeArtist, Handle: "cellist", DisplayName: "c", Instruments: []string{"cello", "piano"}},
		client.ProfileCreateInput{Type: profile.TypeArtist, Handle: "pianist", DisplayName: "p", Instruments: []string{"piano"}},
		client.ProfileCreateInput{Type: profile.TypeLabel, Handle: "label", DisplayName: "l"},
	).Exec(ctx)
	require.NoError(t, err)

	find := func(t *testing.T, want []string, q *client.Query[client.Profile, []*client.Profile]) {
		t.Helper()
		ps, err := q.OrderBy(profile.Handle.Asc()).Exec(ctx)
		require.NoError(t, err)
		got := make([]string, len(ps))
		for i, p := range ps {
			got[i] = p.Handle
		}
		assert.Equal(t, want, got)
	}
	find(t, []string{"cellist", "pianist"}, c.Profile.FindMany().Where(profile.Instruments.Has("piano")))
	find(t, []string{"cellist"}, c.Profile.FindMany().Where(profile.Instruments.HasEvery("piano", "cello")))
	find(t, []string{"cellist"}, c.Profile.FindMany().Where(profile.Instruments.HasSome("cello", "drums")))
	find(t, []string{"label"}, c.Profile.FindMany().Where(profile.Instruments.IsEmpty()))
	find(t, []string{"cellist", "pianist"}, c.Profile.FindMany().Where(profile.Kind.EQ(profile.TypeArtist)))
}

func TestSecretsAreMasked(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	u, err := c.User.Create(client.UserCreateInput{Email: "s@b.c", PasswordHash: ptr("$2a$hash")}).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, "$2a$hash", *u.PasswordHash)
	assert.NotContains(t, u.String(), "$2a$hash")
	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "$2a$hash")

	a, err := c.Account.Create(client.AccountCreateInput{
		UserID:            u.ID,
		Type:              "oauth",
		Provider:          "github",
		ProviderAccountID: "42",
		AccessToken:       ptr("gho_secret"),
	}).Exec(ctx)
	require.NoError(t, err)
	assert.NotContains(t, a.String(), "gho_secret")

	vt, err := c.VerificationToken.Create(client.VerificationTokenCreateInput{
		Identifier: "s@b.c",
		Token:      "verify-me",
		Expires:    time.Now().Add(time.Hour),
	}).Exec(ctx)
	require.NoError(t, err)
	assert.NotContains(t, vt.String(), "verify-me")
}
