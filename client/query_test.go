package client_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/client"
	"github.com/syssam/socialgraph/client/account"
	"github.com/syssam/socialgraph/client/follow"
	"github.com/syssam/socialgraph/client/profile"
	"github.com/syssam/socialgraph/client/session"
	"github.com/syssam/socialgraph/client/user"
	"github.com/syssam/socialgraph/querylanguage"
)

func handles(ps []*client.Profile) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Handle
	}
	return out
}

func seedProfiles(t *testing.T, c *client.Client, hs ...string) []*client.Profile {
	t.Helper()
	ps := make([]*client.Profile, len(hs))
	for i, h := range hs {
		ps[i] = createProfile(t, c, h)
	}
	return ps
}

func TestFindUnique(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	p := createProfile(t, c, "solo")

	got, err := c.Profile.FindUnique(profile.ByHandle("missing")).Exec(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = c.Profile.FindUniqueOrThrow(profile.ByHandle("missing")).Exec(ctx)
	assert.True(t, socialgraph.IsNotFound(err))

	_, err = c.Profile.FindUnique(querylanguage.Key{profile.FieldDisplayName: "SOLO"}).Exec(ctx)
	assert.True(t, socialgraph.IsValidationError(err))

	got, err = c.Profile.FindUnique(profile.ByID(p.ID)).Where(profile.Verified.EQ(true)).Exec(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "extra conditions apply to the unique row")
}

func TestFindFirst(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	seedProfiles(t, c, "b", "a", "c")

	first, err := c.Profile.FindFirst().OrderBy(profile.Handle.Asc()).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", first.Handle)

	last, err := c.Profile.FindFirst().OrderBy(profile.Handle.Asc()).Take(-1).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", last.Handle)

	none, err := c.Profile.FindFirst().Where(profile.Handle.EQ("z")).Exec(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = c.Profile.FindFirstOrThrow().Where(profile.Handle.EQ("z")).Exec(ctx)
	assert.True(t, socialgraph.IsNotFound(err))
}

func TestFindMany(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	seedProfiles(t, c, "a", "b", "c", "d", "e")
	all := func() *client.Query[client.Profile, []*client.Profile] {
		return c.Profile.FindMany().OrderBy(profile.Handle.Asc())
	}
	tests := []struct {
		name string
		q    *client.Query[client.Profile, []*client.Profile]
		want []string
	}{
		{"all", all(), []string{"a", "b", "c", "d", "e"}},
		{"desc", c.Profile.FindMany().OrderBy(profile.Handle.Desc()), []string{"e", "d", "c", "b", "a"}},
		{"take", all().Take(2), []string{"a", "b"}},
		{"skip", all().Skip(3), []string{"d", "e"}},
		{"negative take", all().Take(-2), []string{"d", "e"}},
		{"cursor", all().Cursor(profile.ByHandle("c")).Take(2), []string{"c", "d"}},
		{"cursor skip", all().Cursor(profile.ByHandle("c")).Skip(1).Take(2), []string{"d", "e"}},
		{"cursor backwards", all().Cursor(profile.ByHandle("c")).Take(-2), []string{"b", "c"}},
		{"in", all().Where(profile.Handle.In("b", "d", "x")), []string{"b", "d"}},
		{"or", all().Where(querylanguage.Or(profile.Handle.EQ("a"), profile.Handle.EQ("e"))), []string{"a", "e"}},
		{"not", all().Where(querylanguage.Not(profile.Handle.LT("d"))), []string{"d", "e"}},
		{"fold", all().Where(profile.DisplayName.EqualFold("c")), []string{"c"}},
		{"prefix", all().Where(profile.DisplayName.HasPrefix("B")), []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps, err := tt.q.Exec(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, handles(ps))
		})
	}

	t.Run("missing cursor", func(t *testing.T) {
		ps, err := all().Cursor(profile.ByHandle("zz")).Exec(ctx)
		require.NoError(t, err)
		assert.Empty(t, ps)
	})

	t.Run("distinct", func(t *testing.T) {
		_, err := c.Profile.Update(profile.ByHandle("b"), client.ProfileUpdateInput{Type: ptr(profile.TypeLabel)}).Exec(ctx)
		require.NoError(t, err)
		ps, err := all().Distinct(profile.FieldType).Exec(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, handles(ps))
	})
}

func TestSelect(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	createProfile(t, c, "sel")

	ps, err := c.Profile.FindMany().Select(profile.FieldHandle).Exec(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "sel", ps[0].Handle)
	assert.Empty(t, ps[0].DisplayName)

	ps, err = c.Profile.FindMany().Omit(profile.FieldDisplayName).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sel", ps[0].Handle)
	assert.Empty(t, ps[0].DisplayName)

	tests := []struct {
		name string
		q    *client.Query[client.Profile, []*client.Profile]
	}{
		{"select and include", c.Profile.FindMany().Select(profile.FieldHandle).Include(profile.EdgeMembers)},
		{"select and count", c.Profile.FindMany().Select(profile.FieldHandle).IncludeCount(profile.EdgeMembers)},
		{"select and omit", c.Profile.FindMany().Select(profile.FieldHandle).Omit(profile.FieldBio)},
		{"unknown field", c.Profile.FindMany().Select("nickname")},
		{"unknown relation", c.Profile.FindMany().Include("fans")},
		{"aggregate order", c.Profile.FindMany().OrderBy(querylanguage.OrderAgg(querylanguage.AggCount, profile.FieldID, false))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.q.Exec(ctx)
			assert.True(t, socialgraph.IsValidationError(err), "%v", err)
		})
	}
}

func TestPaginate(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	seedProfiles(t, c, "a", "b", "c", "d", "e")
	query := func() *client.Query[client.Profile, []*client.Profile] {
		return c.Profile.FindMany().OrderBy(profile.Handle.Asc()).Take(2)
	}

	page, err := client.Paginate(ctx, query(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, handles(page.Items))
	require.NotEmpty(t, page.Next)

	// Rows inserted before the cursor do not shift the following pages.
	createProfile(t, c, "aa")

	page, err = client.Paginate(ctx, query(), page.Next)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, handles(page.Items))

	page, err = client.Paginate(ctx, query(), page.Next)
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, handles(page.Items))
	assert.Empty(t, page.Next)

	t.Run("ties", func(t *testing.T) {
		q := func() *client.Query[client.Profile, []*client.Profile] {
			return c.Profile.FindMany().OrderBy(profile.Verified.Asc()).Take(4)
		}
		seen := map[string]bool{}
		token := ""
		for {
			page, err := client.Paginate(ctx, q(), token)
			require.NoError(t, err)
			for _, p := range page.Items {
				assert.False(t, seen[p.Handle], "duplicate %s", p.Handle)
				seen[p.Handle] = true
			}
			if token = page.Next; token == "" {
				break
			}
		}
		assert.Len(t, seen, 6)
	})

	t.Run("select", func(t *testing.T) {
		q := func() *client.Query[client.Profile, []*client.Profile] {
			return c.Profile.FindMany().OrderBy(profile.Handle.Asc()).Select(profile.FieldHandle).Take(2)
		}
		page, err := client.Paginate(ctx, q(), "")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "aa"}, handles(page.Items))
		assert.Empty(t, page.Items[0].ID)
		require.NotEmpty(t, page.Next)

		page, err = client.Paginate(ctx, q(), page.Next)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c"}, handles(page.Items))
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := client.Paginate(ctx, c.Profile.FindMany(), "")
		assert.True(t, socialgraph.IsValidationError(err))
		_, err = client.Paginate(ctx, query(), "!!")
		assert.True(t, socialgraph.IsValidationError(err))
	})
}

func TestSelfReferentialRelations(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	ps := seedProfiles(t, c, "a", "b", "c")
	a, b, cc := ps[0], ps[1], ps[2]
	_, err := c.Follow.CreateMany(
		client.FollowCreateInput{FollowerProfileID: a.ID, FollowingProfileID: b.ID},
		client.FollowCreateInput{FollowerProfileID: b.ID, FollowingProfileID: cc.ID},
	).Exec(ctx)
	require.NoError(t, err)

	got, err := c.Profile.FindUniqueOrThrow(profile.ByID(b.ID)).
		Include(profile.EdgeFollowing, func(s *client.Scope) {
			s.Include(follow.EdgeFollowingProfile)
		}).
		Include(profile.EdgeFollowers, func(s *client.Scope) {
			s.Include(follow.EdgeFollowerProfile)
		}).
		Exec(ctx)
	require.NoError(t, err)

	following, err := got.Edges.FollowingOrErr()
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "c", following[0].Edges.FollowingProfile.Handle)
	followers, err := got.Edges.FollowersOrErr()
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "a", followers[0].Edges.FollowerProfile.Handle)

	_, err = got.Edges.BlockingOrErr()
	assert.True(t, socialgraph.IsNotLoaded(err))

	filters := []struct {
		name string
		p    querylanguage.P
		want []string
	}{
		{"followed by a", profile.Followers.Some(follow.FollowerProfileID.EQ(a.ID)), []string{"b"}},
		{"follows nobody", profile.Following.None(), []string{"c"}},
		{"has followers", profile.Followers.Exists(), []string{"b", "c"}},
		{"every follow is of c", profile.Following.Every(follow.FollowingProfileID.EQ(cc.ID)), []string{"b", "c"}},
	}
	for _, tt := range filters {
		t.Run(tt.name, func(t *testing.T) {
			ps, err := c.Profile.FindMany().Where(tt.p).OrderBy(profile.Handle.Asc()).Exec(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, handles(ps))
		})
	}

	t.Run("traverse", func(t *testing.T) {
		fs, err := c.Profile.QueryFollowing(a).Exec(ctx)
		require.NoError(t, err)
		require.Len(t, fs, 1)
		assert.Equal(t, b.ID, fs[0].FollowingProfileID)

		// Profiles followed by the profiles a follows.
		ps, err := client.Traverse(
			client.Traverse(c.Profile.FindUnique(profile.ByID(a.ID)), profile.EdgeFollowing, c.Follow.FindMany()),
			follow.EdgeFollowingProfile,
			c.Profile.FindMany(),
		).Exec(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, handles(ps))

		_, err = client.Traverse(c.Profile.FindMany(), profile.EdgeFollowing, c.Profile.FindMany()).Exec(ctx)
		assert.True(t, socialgraph.IsValidationError(err))
	})
}

func TestIncludeScopes(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	ps := seedProfiles(t, c, "star", "f1", "f2", "f3")
	for _, f := range ps[1:] {
		_, err := c.Follow.Create(client.FollowCreateInput{FollowerProfileID: f.ID, FollowingProfileID: ps[0].ID}).Exec(ctx)
		require.NoError(t, err)
	}
	star, err := c.Profile.FindUniqueOrThrow(profile.ByHandle("star")).
		Include(profile.EdgeFollowers, func(s *client.Scope) {
			s.Where(follow.FollowerProfileID.NEQ(ps[1].ID)).
				OrderBy(follow.FollowerProfileID.Asc()).
				Take(1)
		}).
		IncludeCount(profile.EdgeFollowers, follow.FollowerProfileID.NEQ(ps[1].ID)).
		Exec(ctx)
	require.NoError(t, err)
	assert.Len(t, star.Edges.Followers, 1)
	assert.Equal(t, 2, star.Counts[profile.EdgeFollowers])

	// A to-one include of a missing row loads nil.
	u := createUser(t, c, "nobody@b.c")
	got, err := c.User.FindUniqueOrThrow(user.ByID(u.ID)).Include(user.EdgeActiveProfile).Exec(ctx)
	require.NoError(t, err)
	active, err := got.Edges.ActiveProfileOrErr()
	require.NoError(t, err)
	assert.Nil(t, active)
}

func seedAccounts(t *testing.T, c *client.Client) (*client.User, *client.User) {
	t.Helper()
	ctx := context.Background()
	u1, u2 := createUser(t, c, "one@b.c"), createUser(t, c, "two@b.c")
	_, err := c.Account.CreateMany(
		client.AccountCreateInput{UserID: u1.ID, Type: "oauth", Provider: "github", ProviderAccountID: "1", ExpiresAt: ptr(10)},
		client.AccountCreateInput{UserID: u1.ID, Type: "oauth", Provider: "google", ProviderAccountID: "1", ExpiresAt: ptr(20)},
		client.AccountCreateInput{UserID: u2.ID, Type: "oauth", Provider: "github", ProviderAccountID: "2"},
	).Exec(ctx)
	require.NoError(t, err)
	return u1, u2
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	agg := func() *client.AggregateQuery[client.Account] {
		return c.Account.Aggregate().
			CountAll().
			Count(account.FieldExpiresAt).
			Avg(account.FieldExpiresAt).
			Sum(account.FieldExpiresAt).
			Min(account.FieldExpiresAt).
			Max(account.FieldExpiresAt)
	}

	t.Run("empty", func(t *testing.T) {
		res, err := agg().Exec(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, res.CountAll())
		assert.Equal(t, 0, res.Count(account.FieldExpiresAt))
		assert.Nil(t, res.Avg(account.FieldExpiresAt))
		assert.Nil(t, res.Sum(account.FieldExpiresAt))
		assert.Nil(t, res.Min(account.FieldExpiresAt))
		assert.Nil(t, res.Max(account.FieldExpiresAt))
	})

	seedAccounts(t, c)

	t.Run("values", func(t *testing.T) {
		res, err := agg().Exec(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, res.CountAll())
		assert.Equal(t, 2, res.Count(account.FieldExpiresAt))
		require.NotNil(t, res.Avg(account.FieldExpiresAt))
		assert.InDelta(t, 15.0, *res.Avg(account.FieldExpiresAt), 1e-9)
		assert.Equal(t, 30, res.Sum(account.FieldExpiresAt))
		assert.Equal(t, 10, res.Min(account.FieldExpiresAt))
		assert.Equal(t, 20, res.Max(account.FieldExpiresAt))
	})

	t.Run("filtered", func(t *testing.T) {
		res, err := agg().Where(account.Provider.EQ("google")).Exec(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.CountAll())
		assert.Equal(t, 20, res.Max(account.FieldExpiresAt))
	})

	t.Run("avg of a string", func(t *testing.T) {
		_, err := c.Account.Aggregate().Avg(account.FieldProvider).Exec(ctx)
		assert.True(t, socialgraph.IsValidationError(err))
	})
}

func TestGroupBy(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	u1, u2 := seedAccounts(t, c)

	groups, err := c.Account.GroupBy(account.FieldUserID).
		CountAll().
		Max(account.FieldExpiresAt).
		OrderBy(querylanguage.OrderAgg(querylanguage.AggCount, account.FieldID, true)).
		Exec(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, u1.ID, groups[0].Values[account.FieldUserID])
	assert.Equal(t, 2, groups[0].Aggregates.CountAll())
	assert.Equal(t, 20, groups[0].Aggregates.Max(account.FieldExpiresAt))
	assert.Equal(t, u2.ID, groups[1].Values[account.FieldUserID])
	assert.Nil(t, groups[1].Aggregates.Max(account.FieldExpiresAt))

	groups, err = c.Account.GroupBy(account.FieldUserID).
		CountAll().
		Having(querylanguage.Agg(querylanguage.AggCount, account.FieldID).GT(1)).
		Exec(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, u1.ID, groups[0].Values[account.FieldUserID])

	tests := []struct {
		name string
		q    *client.GroupByQuery[client.Account]
	}{
		{"no fields", c.Account.GroupBy().CountAll()},
		{"order outside by", c.Account.GroupBy(account.FieldUserID).OrderBy(account.Provider.Asc())},
		{"having outside by", c.Account.GroupBy(account.FieldUserID).Having(account.Provider.EQ("github"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.q.Exec(ctx)
			assert.True(t, socialgraph.IsValidationError(err), "%v", err)
		})
	}
}

func TestInterceptors(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	createProfile(t, c, "public")
	_, err := c.Profile.Create(client.ProfileCreateInput{
		Type:        profile.TypeArtist,
		Handle:      "hidden",
		DisplayName: "Hidden",
		IsPrivate:   ptr(true),
	}).Exec(ctx)
	require.NoError(t, err)

	var (
		mu  sync.Mutex
		ops []string
	)
	c.Profile.Intercept(socialgraph.InterceptFunc(func(next socialgraph.Querier) socialgraph.Querier {
		return socialgraph.QuerierFunc(func(ctx context.Context, q socialgraph.Query) (socialgraph.Value, error) {
			mu.Lock()
			ops = append(ops, q.Operation())
			mu.Unlock()
			if pq, ok := q.(*client.Query[client.Profile, []*client.Profile]); ok {
				pq.WhereP(profile.IsPrivate.EQ(false))
			}
			return next.Query(ctx, q)
		})
	}))

	ps, err := c.Profile.FindMany().Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"public"}, handles(ps))
	assert.Equal(t, 2, count(t, c.Profile.Count()))
	assert.Equal(t, []string{client.OpFindMany, client.OpCount}, ops)
	assert.Len(t, c.Profile.Interceptors(), 1)
	assert.Empty(t, c.User.Interceptors())
}

func TestTimeFilters(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	u := createUser(t, c, "t@b.c")
	now := time.Now()
	_, err := c.Session.CreateMany(
		client.SessionCreateInput{SessionToken: "old", UserID: u.ID, Expires: now.Add(-time.Hour)},
		client.SessionCreateInput{SessionToken: "new", UserID: u.ID, Expires: now.Add(time.Hour)},
	).Exec(ctx)
	require.NoError(t, err)

	ss, err := c.Session.FindMany().Where(session.Expires.GT(now)).Exec(ctx)
	require.NoError(t, err)
	require.Len(t, ss, 1)
	assert.Equal(t, "new", ss[0].SessionToken)
	assert.False(t, ss[0].Expired(now))
}
