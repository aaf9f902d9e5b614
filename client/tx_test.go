package client_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/client"
	"github.com/syssam/socialgraph/client/account"
	"github.com/syssam/socialgraph/client/profile"
	"github.com/syssam/socialgraph/client/user"
	"github.com/syssam/socialgraph/querylanguage"
)

func profileExists(t *testing.T, c *client.Client, handle string) bool {
	t.Helper()
	p, err := c.Profile.FindUnique(profile.ByHandle(handle)).Exec(context.Background())
	require.NoError(t, err)
	return p != nil
}

func newProfile(handle string) client.ProfileCreateInput {
	return client.ProfileCreateInput{Type: profile.TypeArtist, Handle: handle, DisplayName: handle}
}

func TestHooks(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	var ops []string
	c.Use(func(next socialgraph.Mutator) socialgraph.Mutator {
		return socialgraph.MutateFunc(func(ctx context.Context, m socialgraph.Mutation) (socialgraph.Value, error) {
			ops = append(ops, m.Type()+"."+m.Op().String())
			return next.Mutate(ctx, m)
		})
	})
	c.User.Use(func(next socialgraph.Mutator) socialgraph.Mutator {
		return socialgraph.MutateFunc(func(ctx context.Context, m socialgraph.Mutation) (socialgraph.Value, error) {
			if v, ok := m.Field(user.FieldEmail); ok {
				if err := m.SetField(user.FieldEmail, strings.ToLower(v.(string))); err != nil {
					return nil, err
				}
			}
			return next.Mutate(ctx, m)
		})
	})

	u, err := c.User.Create(client.UserCreateInput{Email: "Mixed@Example.COM"}).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mixed@example.com", u.Email)

	u, err = c.User.Update(user.ByID(u.ID), client.UserUpdateInput{Email: ptr("Other@Example.COM")}).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, "other@example.com", u.Email)

	_, err = c.User.Delete(user.ByID(u.ID)).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"User.create", "User.update", "User.delete"}, ops)

	t.Run("reject", func(t *testing.T) {
		c.Profile.Use(func(next socialgraph.Mutator) socialgraph.Mutator {
			return socialgraph.MutateFunc(func(ctx context.Context, m socialgraph.Mutation) (socialgraph.Value, error) {
				if m.Op().Is(socialgraph.OpDelete | socialgraph.OpDeleteMany) {
					return nil, errors.New("profiles are never deleted")
				}
				return next.Mutate(ctx, m)
			})
		})
		createProfile(t, c, "kept")
		_, err := c.Profile.Delete(profile.ByHandle("kept")).Exec(ctx)
		require.EqualError(t, err, "profiles are never deleted")
		assert.True(t, profileExists(t, c, "kept"))
	})

	t.Run("fields", func(t *testing.T) {
		var fields []string
		c.Account.Use(func(next socialgraph.Mutator) socialgraph.Mutator {
			return socialgraph.MutateFunc(func(ctx context.Context, m socialgraph.Mutation) (socialgraph.Value, error) {
				fields = m.Fields()
				return next.Mutate(ctx, m)
			})
		})
		owner := createUser(t, c, "fields@b.c")
		_, err := c.Account.Create(client.AccountCreateInput{UserID: owner.ID, Type: "oauth", Provider: "github", ProviderAccountID: "f"}).Exec(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{account.FieldUserID, account.FieldType, account.FieldProvider, account.FieldProviderAccountID}, fields)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	p, err := c.Profile.Create(client.ProfileCreateInput{
		Type:        profile.TypeArtist,
		Handle:      "upd",
		DisplayName: "Upd",
		Bio:         ptr("bio"),
	}).Exec(ctx)
	require.NoError(t, err)

	got, err := c.Profile.Update(profile.ByID(p.ID), client.ProfileUpdateInput{
		DisplayName: ptr("Updated"),
		Bio:         client.Null[string](),
		Location:    client.Some("Lisbon"),
		Instruments: []string{"voice"},
	}).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.DisplayName)
	assert.Nil(t, got.Bio)
	require.NotNil(t, got.Location)
	assert.Equal(t, "Lisbon", *got.Location)
	assert.Equal(t, []string{"voice"}, got.Instruments)
	assert.False(t, got.UpdatedAt.Before(p.UpdatedAt))

	t.Run("missing row", func(t *testing.T) {
		_, err := c.Profile.Update(profile.ByHandle("nobody"), client.ProfileUpdateInput{DisplayName: ptr("x")}).Exec(ctx)
		assert.True(t, socialgraph.IsNotFound(err))
	})

	t.Run("guarded", func(t *testing.T) {
		_, err := c.Profile.Update(profile.ByID(p.ID), client.ProfileUpdateInput{Verified: ptr(true)}).
			Where(profile.IsPrivate.EQ(true)).
			Exec(ctx)
		assert.True(t, socialgraph.IsNotFound(err))
	})

	t.Run("unique violation", func(t *testing.T) {
		createProfile(t, c, "taken")
		_, err := c.Profile.Update(profile.ByID(p.ID), client.ProfileUpdateInput{Handle: ptr("taken")}).Exec(ctx)
		ce, ok := socialgraph.AsConstraintError(err)
		require.True(t, ok)
		assert.Equal(t, "profiles_handle_key", ce.Constraint)
	})

	t.Run("many", func(t *testing.T) {
		n, err := c.Profile.UpdateMany(client.ProfileUpdateInput{Verified: ptr(true)}).Where(profile.Handle.EQ("none")).Exec(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		ps, err := c.Profile.UpdateManyAndReturn(client.ProfileUpdateInput{Verified: ptr(true)}).Exec(ctx)
		require.NoError(t, err)
		assert.Len(t, ps, 2)
		for _, p := range ps {
			assert.True(t, p.Verified)
		}
	})
}

func TestNumberOps(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	u := createUser(t, c, "n@b.c")
	a, err := c.Account.Create(client.AccountCreateInput{
		UserID:            u.ID,
		Type:              "oauth",
		Provider:          "github",
		ProviderAccountID: "n",
		ExpiresAt:         ptr(100),
	}).Exec(ctx)
	require.NoError(t, err)

	tests := []struct {
		name string
		op   *client.NumberOp
		want int
	}{
		{"increment", client.Increment(50), 150},
		{"decrement", client.Decrement(30), 120},
		{"multiply", client.Multiply(2), 240},
		{"divide", client.Divide(7), 34},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Account.Update(account.ByID(a.ID), client.AccountUpdateInput{ExpiresAtOp: tt.op}).Exec(ctx)
			require.NoError(t, err)
			require.NotNil(t, got.ExpiresAt)
			assert.Equal(t, tt.want, *got.ExpiresAt)
		})
	}
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	upsert := func(name string) (*client.Profile, error) {
		return c.Profile.Upsert(
			profile.ByHandle("up"),
			newProfile("up"),
			client.ProfileUpdateInput{DisplayName: ptr(name)},
		).Exec(ctx)
	}
	created, err := upsert("first")
	require.NoError(t, err)
	assert.Equal(t, "up", created.DisplayName)

	updated, err := upsert("second")
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "second", updated.DisplayName)
	assert.Equal(t, 1, count(t, c.Profile.Count()))

	_, err = c.Profile.Upsert(querylanguage.Key{profile.FieldDisplayName: "x"}, newProfile("x"), client.ProfileUpdateInput{}).Exec(ctx)
	assert.True(t, socialgraph.IsValidationError(err))
}

func TestCreateMany(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	n, err := c.Profile.CreateMany(newProfile("a"), newProfile("b")).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = c.Profile.CreateMany(newProfile("b"), newProfile("c")).SkipDuplicates().Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = c.Profile.CreateMany(newProfile("d"), newProfile("a")).Exec(ctx)
	assert.True(t, socialgraph.IsUniqueConstraintError(err))
	assert.False(t, profileExists(t, c, "d"), "a failed batch writes nothing")

	ps, err := c.Profile.CreateManyAndReturn(newProfile("e"), newProfile("f")).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "f"}, handles(ps))

	_, err = c.User.CreateMany(client.UserCreateInput{
		Email:         "nested@b.c",
		ActiveProfile: client.CreateWith(newProfile("g")),
	}).Exec(ctx)
	assert.True(t, socialgraph.IsValidationError(err))
}

func TestDeleteMany(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	seedProfiles(t, c, "a", "b", "c")

	n, err := c.Profile.DeleteMany().Where(profile.Handle.EQ("none")).Exec(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = c.Profile.DeleteMany().Where(profile.Handle.In("a", "b")).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, count(t, c.Profile.Count()))

	_, err = c.Profile.DeleteMany().Limit(-1).Exec(ctx)
	assert.True(t, socialgraph.IsValidationError(err))
}

func TestTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		c := openClient(t)
		var committed bool
		err := c.Transaction(ctx, nil, func(tx *client.Tx) error {
			tx.OnCommit(func(next client.Committer) client.Committer {
				return client.CommitFunc(func(ctx context.Context, tx *client.Tx) error {
					committed = true
					return next.Commit(ctx, tx)
				})
			})
			_, err := tx.Profile.Create(newProfile("in-tx")).Exec(tx.Context())
			return err
		})
		require.NoError(t, err)
		assert.True(t, committed)
		assert.True(t, profileExists(t, c, "in-tx"))
	})

	t.Run("error rolls back", func(t *testing.T) {
		c := openClient(t)
		boom := errors.New("boom")
		err := c.Transaction(ctx, nil, func(tx *client.Tx) error {
			if _, err := tx.Profile.Create(newProfile("gone")).Exec(tx.Context()); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.False(t, profileExists(t, c, "gone"))
	})

	t.Run("panic rolls back", func(t *testing.T) {
		c := openClient(t)
		assert.PanicsWithValue(t, "boom", func() {
			_ = c.Transaction(ctx, nil, func(tx *client.Tx) error {
				if _, err := tx.Profile.Create(newProfile("gone")).Exec(tx.Context()); err != nil {
					return err
				}
				panic("boom")
			})
		})
		assert.False(t, profileExists(t, c, "gone"))
	})

	t.Run("timeout", func(t *testing.T) {
		c := openClient(t)
		err := c.Transaction(ctx, &client.TxOptions{Timeout: 50 * time.Millisecond}, func(tx *client.Tx) error {
			if _, err := tx.Profile.Create(newProfile("slow")).Exec(tx.Context()); err != nil {
				return err
			}
			<-tx.Context().Done()
			return nil
		})
		var ie *socialgraph.InfraError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, socialgraph.InfraTxTimeout, ie.Kind)
		assert.False(t, ie.Retryable())
		assert.False(t, profileExists(t, c, "slow"))
	})

	t.Run("acquire", func(t *testing.T) {
		c := openClient(t)
		held, err := c.Tx(ctx)
		require.NoError(t, err)
		err = c.Transaction(ctx, &client.TxOptions{MaxWait: 50 * time.Millisecond}, func(*client.Tx) error {
			return nil
		})
		require.NoError(t, held.Rollback())
		var ie *socialgraph.InfraError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, socialgraph.InfraTxAcquire, ie.Kind)
		assert.True(t, socialgraph.IsRetryable(err))
	})

	t.Run("nested", func(t *testing.T) {
		c := openClient(t)
		err := c.Transaction(ctx, nil, func(tx *client.Tx) error {
			return tx.Client().Transaction(tx.Context(), nil, func(*client.Tx) error { return nil })
		})
		assert.Error(t, err)
	})

	t.Run("manual", func(t *testing.T) {
		c := openClient(t)
		tx, err := c.Tx(ctx)
		require.NoError(t, err)
		var rolledBack bool
		tx.OnRollback(func(next client.Rollbacker) client.Rollbacker {
			return client.RollbackFunc(func(ctx context.Context, tx *client.Tx) error {
				rolledBack = true
				return next.Rollback(ctx, tx)
			})
		})
		_, err = tx.Profile.Create(newProfile("manual")).Exec(ctx)
		require.NoError(t, err)
		n, err := tx.Profile.Count().Exec(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.NoError(t, tx.Rollback())
		assert.True(t, rolledBack)
		assert.False(t, profileExists(t, c, "manual"))
	})
}

func TestBatch(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)

	res, err := c.Batch(ctx,
		c.Profile.Create(newProfile("one")),
		c.Profile.Create(newProfile("two")),
		c.Profile.Count(),
	)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "one", res[0].(*client.Profile).Handle)
	assert.Equal(t, 2, res[2])

	_, err = c.Batch(ctx,
		c.Profile.Create(newProfile("three")),
		c.Profile.Create(newProfile("one")),
	)
	assert.True(t, socialgraph.IsUniqueConstraintError(err))
	assert.False(t, profileExists(t, c, "three"))
}

func TestRaw(t *testing.T) {
	ctx := context.Background()
	c := openClient(t)
	seedProfiles(t, c, "a", "b")

	n, err := c.ExecuteRaw(ctx, `UPDATE "profiles" SET "verified" = ? WHERE "handle" = ?`, true, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := c.QueryRaw(ctx, `SELECT "handle" FROM "profiles" WHERE "verified" = ? ORDER BY "handle"`, true)
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"handle": "a"}}, rows)

	rows, err = c.QueryRaw(ctx, `SELECT "handle" FROM "profiles" WHERE "handle" = ?`, "zz")
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = c.ExecuteRaw(ctx, `UPDATE "profiles" SET "handle" = ? WHERE "handle" = ?`, "a", "b")
	ce, ok := socialgraph.AsConstraintError(err)
	require.True(t, ok)
	assert.Equal(t, profile.Model, ce.Model)

	err = c.Transaction(ctx, nil, func(tx *client.Tx) error {
		_, err := tx.ExecuteRaw(tx.Context(), `DELETE FROM "profiles"`)
		return err
	})
	require.NoError(t, err)
	assert.Zero(t, count(t, c.Profile.Count()))
}

func TestDebug(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := openClient(t, client.Log(logger))

	buf.Reset()
	createProfile(t, c, "quiet")
	assert.NotContains(t, buf.String(), `\"profiles\"`)

	_, err := c.Debug().Profile.FindMany().Exec(ctx)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `FROM \"profiles\"`)
}
