package sql

import (
	"testing"

	"github.com/syssam/socialgraph/dialect"
)

var benchDialects = []string{dialect.SQLite, dialect.MySQL, dialect.Postgres}

func benchDialect(b *testing.B, build func(d *DialectBuilder) Querier) {
	for _, d := range benchDialects {
		b.Run(d, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				build(Dialect(d)).Query()
			}
		})
	}
}

// Profiles followed by a given profile, as lowered from a relation "some"
// filter on Profile.followers.
func BenchmarkRelationSome(b *testing.B) {
	benchDialect(b, func(d *DialectBuilder) Querier {
		profiles := Table("profiles")
		follows := Table("follows")
		sub := d.Select().From(follows)
		sub.Select(sub.C("following_profile_id")).
			Where(And(
				ColumnsEQ(follows.C("following_profile_id"), profiles.C("id")),
				EQ(follows.C("follower_profile_id"), "p1"),
			))
		return d.Select(profiles.C("id"), profiles.C("handle")).
			From(profiles).
			Where(Exists(sub))
	})
}

// A feed query hiding blocked and muted profiles.
func BenchmarkRelationNone(b *testing.B) {
	benchDialect(b, func(d *DialectBuilder) Querier {
		profiles := Table("profiles")
		blocks, mutes := Table("blocks"), Table("mutes")
		blocked := d.Select(blocks.C("id")).From(blocks).
			Where(And(ColumnsEQ(blocks.C("blocked_profile_id"), profiles.C("id")), EQ(blocks.C("blocker_profile_id"), "p1")))
		muted := d.Select(mutes.C("id")).From(mutes).
			Where(And(ColumnsEQ(mutes.C("muted_profile_id"), profiles.C("id")), EQ(mutes.C("muter_profile_id"), "p1")))
		return d.Select(profiles.C("id")).
			From(profiles).
			Where(And(NotExists(blocked), NotExists(muted), EQ(profiles.C("is_private"), false))).
			OrderExpr(Desc(profiles.C("created_at")), Asc(profiles.C("id"))).
			Limit(20)
	})
}

// The second page of profiles ordered by handle, keyed on the cursor row.
func BenchmarkCursorPage(b *testing.B) {
	benchDialect(b, func(d *DialectBuilder) Querier {
		return d.Select("id", "handle", "display_name").
			From(Table("profiles")).
			Where(Or(
				GT("handle", "ariel"),
				And(EQ("handle", "ariel"), GT("id", "p1")),
			)).
			OrderExpr(Asc("handle"), Asc("id")).
			Limit(3)
	})
}

func BenchmarkCreateManySkipDuplicates(b *testing.B) {
	benchDialect(b, func(d *DialectBuilder) Querier {
		ins := d.Insert("follows").Columns("id", "follower_profile_id", "following_profile_id", "created_at")
		for _, v := range [][]any{{"f1", "p1", "p2"}, {"f2", "p1", "p3"}, {"f3", "p2", "p3"}} {
			ins.Values(v[0], v[1], v[2], "2024-01-01 00:00:00")
		}
		return ins.OnConflictDoNothing()
	})
}

func BenchmarkNumberOp(b *testing.B) {
	benchDialect(b, func(d *DialectBuilder) Querier {
		return d.Update("accounts").
			SetOp("expires_at", "+", 3600).
			SetNull("refresh_token").
			Where(And(EQ("provider", "github"), EQ("provider_account_id", "42")))
	})
}

// The rows removed when a profile is deleted.
func BenchmarkCascadeDelete(b *testing.B) {
	benchDialect(b, func(d *DialectBuilder) Querier {
		return d.Delete("follows").
			Where(Or(
				In("follower_profile_id", "p1", "p2"),
				In("following_profile_id", "p1", "p2"),
			))
	})
}

func BenchmarkInsensitiveFilter(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = And(
			ContainsFold("display_name", "ari"),
			HasPrefixFold("handle", "a"),
			EqualFold("type", "artist"),
			NotNull("bio"),
		)
	}
}
