package sql

import (
	"testing"

	"github.com/syssam/socialgraph/dialect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	tests := []struct {
		name      string
		input     Querier
		wantQuery string
		wantArgs  []any
	}{
		{
			name: "postgres/select_where_order_limit",
			input: Dialect(dialect.Postgres).Select("id", "handle").
				From(Table("profiles")).
				Where(EQ("type", "ARTIST")).
				OrderExpr(Asc("created_at"), Asc("id")).
				Limit(2),
			wantQuery: `SELECT "id", "handle" FROM "profiles" WHERE "type" = $1 ORDER BY "created_at" NULLS LAST, "id" NULLS LAST LIMIT 2`,
			wantArgs:  []any{"ARTIST"},
		},
		{
			name: "mysql/select_where_order_limit",
			input: Dialect(dialect.MySQL).Select("id", "handle").
				From(Table("profiles")).
				Where(EQ("type", "ARTIST")).
				OrderExpr(Asc("created_at"), Asc("id")).
				Limit(2),
			wantQuery: "SELECT `id`, `handle` FROM `profiles` WHERE `type` = ? ORDER BY `created_at` IS NULL, `created_at`, `id` IS NULL, `id` LIMIT 2",
			wantArgs:  []any{"ARTIST"},
		},
		{
			name:      "postgres/desc_nulls_first",
			input:     Dialect(dialect.Postgres).Select().From(Table("users")).OrderExpr(Desc("email_verified")),
			wantQuery: `SELECT * FROM "users" ORDER BY "email_verified" DESC NULLS FIRST`,
		},
		{
			name:      "mysql/desc_nulls_first",
			input:     Dialect(dialect.MySQL).Select().From(Table("users")).OrderExpr(Desc("email_verified")),
			wantQuery: "SELECT * FROM `users` ORDER BY `email_verified` IS NOT NULL, `email_verified` DESC",
		},
		{
			name:      "postgres/offset_only",
			input:     Dialect(dialect.Postgres).Select().From(Table("users")).Offset(5),
			wantQuery: `SELECT * FROM "users" OFFSET 5`,
		},
		{
			name:      "mysql/offset_only",
			input:     Dialect(dialect.MySQL).Select().From(Table("users")).Offset(5),
			wantQuery: "SELECT * FROM `users` LIMIT 18446744073709551615 OFFSET 5",
		},
		{
			name:      "sqlite/offset_only",
			input:     Dialect(dialect.SQLite).Select().From(Table("users")).Offset(5),
			wantQuery: `SELECT * FROM "users" LIMIT -1 OFFSET 5`,
		},
		{
			name:      "distinct",
			input:     Dialect(dialect.SQLite).Select("handle").Distinct().From(Table("profiles")),
			wantQuery: `SELECT DISTINCT "handle" FROM "profiles"`,
		},
		{
			name: "postgres/sub_query_placeholders",
			input: Dialect(dialect.Postgres).Select("*").
				From(Table("profiles")).
				Where(And(
					EQ("type", "FAN"),
					InQuery("id", Select("follower_profile_id").From(Table("follows")).Where(EQ("following_profile_id", "p1"))),
				)),
			wantQuery: `SELECT * FROM "profiles" WHERE "type" = $1 AND "id" IN (SELECT "follower_profile_id" FROM "follows" WHERE "following_profile_id" = $2)`,
			wantArgs:  []any{"FAN", "p1"},
		},
		{
			name: "postgres/correlated_exists",
			input: Dialect(dialect.Postgres).Select().
				From(Table("profiles")).
				Where(Exists(Select("id").From(Table("follows")).Where(ColumnsEQ("follows.following_profile_id", "profiles.id")))),
			wantQuery: `SELECT * FROM "profiles" WHERE EXISTS (SELECT "id" FROM "follows" WHERE "follows"."following_profile_id" = "profiles"."id")`,
		},
		{
			name: "join_with_alias",
			input: func() Querier {
				p, f := Table("profiles").As("p"), Table("follows").As("f")
				return Dialect(dialect.Postgres).Select(p.C("id")).
					From(p).
					Join(f).On(p.C("id"), f.C("following_profile_id"))
			}(),
			wantQuery: `SELECT "p"."id" FROM "profiles" AS "p" JOIN "follows" AS "f" ON "p"."id" = "f"."following_profile_id"`,
		},
		{
			name:      "from_sub_select",
			input:     Dialect(dialect.Postgres).Select().From(Select("id").From(Table("users")).As("t")),
			wantQuery: `SELECT * FROM (SELECT "id" FROM "users") AS "t"`,
		},
		{
			name: "postgres/group_by_having",
			input: Dialect(dialect.Postgres).Select("type").
				AppendSelectExprAs(Count(""), "count").
				From(Table("profiles")).
				GroupBy("type").
				Having(ExprP("COUNT(*) > ?", 1)),
			wantQuery: `SELECT "type", COUNT(*) AS "count" FROM "profiles" GROUP BY "type" HAVING COUNT(*) > $1`,
			wantArgs:  []any{1},
		},
		{
			name:      "mysql/aggregate",
			input:     Dialect(dialect.MySQL).Select().AppendSelectExprAs(Agg("MAX", "created_at"), "max").From(Table("follows")),
			wantQuery: "SELECT MAX(`created_at`) AS `max` FROM `follows`",
		},
		{
			name: "postgres/insert_many_returning",
			input: Dialect(dialect.Postgres).Insert("users").
				Columns("id", "email").
				Values("u1", "a@example.com").
				Values("u2", "b@example.com").
				Returning("id"),
			wantQuery: `INSERT INTO "users" ("id", "email") VALUES ($1, $2), ($3, $4) RETURNING "id"`,
			wantArgs:  []any{"u1", "a@example.com", "u2", "b@example.com"},
		},
		{
			name:      "mysql/insert_returning_ignored",
			input:     Dialect(dialect.MySQL).Insert("users").Columns("id").Values("u1").Returning("id"),
			wantQuery: "INSERT INTO `users` (`id`) VALUES (?)",
			wantArgs:  []any{"u1"},
		},
		{
			name:      "mysql/insert_ignore",
			input:     Dialect(dialect.MySQL).Insert("follows").Columns("id").Values("f1").OnConflictDoNothing(),
			wantQuery: "INSERT IGNORE INTO `follows` (`id`) VALUES (?)",
			wantArgs:  []any{"f1"},
		},
		{
			name:      "sqlite/insert_on_conflict_do_nothing",
			input:     Dialect(dialect.SQLite).Insert("follows").Columns("id").Values("f1").OnConflictDoNothing(),
			wantQuery: `INSERT INTO "follows" ("id") VALUES (?) ON CONFLICT DO NOTHING`,
			wantArgs:  []any{"f1"},
		},
		{
			name:      "postgres/insert_default",
			input:     Dialect(dialect.Postgres).Insert("users").Default().Returning("id"),
			wantQuery: `INSERT INTO "users" DEFAULT VALUES RETURNING "id"`,
		},
		{
			name:      "mysql/insert_default",
			input:     Dialect(dialect.MySQL).Insert("users").Default(),
			wantQuery: "INSERT INTO `users` VALUES ()",
		},
		{
			name: "postgres/update_op_and_null",
			input: Dialect(dialect.Postgres).Update("accounts").
				SetOp("expires_at", "+", 3600).
				SetNull("refresh_token").
				Set("scope", "email").
				Where(EQ("id", "a1")),
			wantQuery: `UPDATE "accounts" SET "expires_at" = "expires_at" + $1, "refresh_token" = NULL, "scope" = $2 WHERE "id" = $3`,
			wantArgs:  []any{3600, "email", "a1"},
		},
		{
			name:      "mysql/delete",
			input:     Dialect(dialect.MySQL).Delete("follows").Where(EQ("id", "f1")),
			wantQuery: "DELETE FROM `follows` WHERE `id` = ?",
			wantArgs:  []any{"f1"},
		},
		{
			name:      "postgres/expr_placeholders",
			input:     Dialect(dialect.Postgres).Select().From(Table("t")).Where(ExprP("a = ? AND b = ?", 1, 2)),
			wantQuery: `SELECT * FROM "t" WHERE a = $1 AND b = $2`,
			wantArgs:  []any{1, 2},
		},
		{
			name: "postgres/predicate_args",
			input: Dialect(dialect.Postgres).Select("id").
				From(Table("profiles")).
				Where(P(func(b *Builder) {
					b.Ident("handle").WriteString(" IN (").Args("a", "b", "c").WriteByte(')')
				})),
			wantQuery: `SELECT "id" FROM "profiles" WHERE "handle" IN ($1, $2, $3)`,
			wantArgs:  []any{"a", "b", "c"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := tt.input.Query()
			assert.Equal(t, tt.wantQuery, query)
			if len(tt.wantArgs) == 0 {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestPredicateComposition(t *testing.T) {
	tests := []struct {
		name      string
		input     *Predicate
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "or_wraps_nested_and",
			input:     Or(EQ("a", 1), And(EQ("b", 2), EQ("c", 3))),
			wantQuery: `"a" = ? OR ("b" = ? AND "c" = ?)`,
			wantArgs:  []any{1, 2, 3},
		},
		{
			name:      "and_flattens",
			input:     And(And(EQ("a", 1), EQ("b", 2)), EQ("c", 3)),
			wantQuery: `"a" = ? AND "b" = ? AND "c" = ?`,
			wantArgs:  []any{1, 2, 3},
		},
		{
			name:      "not",
			input:     Not(Or(IsNull("a"), NotNull("b"))),
			wantQuery: `NOT ("a" IS NULL OR "b" IS NOT NULL)`,
		},
		{
			name:      "nil_skipped",
			input:     And(nil, EQ("a", 1), nil),
			wantQuery: `"a" = ?`,
			wantArgs:  []any{1},
		},
		{
			name:      "empty_in",
			input:     In("id"),
			wantQuery: "FALSE",
		},
		{
			name:      "empty_not_in",
			input:     NotIn("id"),
			wantQuery: "TRUE",
		},
		{
			name:      "in",
			input:     In("id", "a", "b"),
			wantQuery: `"id" IN (?, ?)`,
			wantArgs:  []any{"a", "b"},
		},
		{
			name:      "neq",
			input:     NEQ("type", "FAN"),
			wantQuery: `"type" <> ?`,
			wantArgs:  []any{"FAN"},
		},
		{
			name:      "equal_fold",
			input:     EqualFold("email", "A@Example.com"),
			wantQuery: `LOWER("email") = ?`,
			wantArgs:  []any{"a@example.com"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := tt.input.Query()
			assert.Equal(t, tt.wantQuery, query)
			if len(tt.wantArgs) == 0 {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
	assert.Nil(t, And())
	assert.Nil(t, Or(nil, nil))
	assert.Nil(t, Not(nil))
}

func TestStringMatch(t *testing.T) {
	tests := []struct {
		name      string
		dialect   string
		pred      *Predicate
		wantQuery string
		wantArg   string
	}{
		{"postgres/contains", dialect.Postgres, Contains("handle", "a_b"), `"handle" LIKE $1`, `%a\_b%`},
		{"postgres/contains_fold", dialect.Postgres, ContainsFold("handle", "Ab"), `"handle" ILIKE $1`, `%Ab%`},
		{"mysql/contains", dialect.MySQL, Contains("handle", "50%"), "`handle` LIKE ?", `%50\%%`},
		{"mysql/contains_fold", dialect.MySQL, ContainsFold("handle", "A%"), "LOWER(`handle`) LIKE ?", `%a\%%`},
		{"sqlite/has_prefix", dialect.SQLite, HasPrefix("handle", "a*"), `"handle" GLOB ?`, `a[*]*`},
		{"sqlite/has_prefix_fold", dialect.SQLite, HasPrefixFold("handle", "Ar"), `"handle" LIKE ? ESCAPE '\'`, `Ar%`},
		{"sqlite/has_suffix", dialect.SQLite, HasSuffix("handle", "?x"), `"handle" GLOB ?`, `*[?]x`},
		{"postgres/has_suffix_fold", dialect.Postgres, HasSuffixFold("handle", `x\`), `"handle" ILIKE $1`, `%x\\`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := Dialect(tt.dialect).Select().From(Table("profiles")).Where(tt.pred).Query()
			assert.Equal(t, `SELECT * FROM `+quote(tt.dialect, "profiles")+` WHERE `+tt.wantQuery, query)
			require.Len(t, args, 1)
			assert.Equal(t, tt.wantArg, args[0])
		})
	}
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "plain", EscapeLike("plain"))
	assert.Equal(t, `a\%b\_c\\d`, EscapeLike(`a%b_c\d`))
	assert.Equal(t, "plain", EscapeGlob("plain"))
	assert.Equal(t, "[[]a][*][?]", EscapeGlob("[a]*?"))
}

func TestQuote(t *testing.T) {
	tests := []struct {
		dialect, ident, want string
	}{
		{dialect.Postgres, "users", `"users"`},
		{dialect.Postgres, "users.email", `"users"."email"`},
		{dialect.MySQL, "users.email", "`users`.`email`"},
		{dialect.SQLite, "t.*", `"t".*`},
		{dialect.Postgres, "*", "*"},
		{dialect.Postgres, "COUNT(*)", "COUNT(*)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, quote(tt.dialect, tt.ident), tt.ident)
	}
}

func TestSelectorClone(t *testing.T) {
	s := Dialect(dialect.Postgres).Select("id").From(Table("users")).Where(EQ("id", "u1"))
	c := s.Clone().AppendSelect("email").OrderBy("email")

	query, _ := s.Query()
	assert.Equal(t, `SELECT "id" FROM "users" WHERE "id" = $1`, query)
	query, _ = c.Query()
	assert.Equal(t, `SELECT "id", "email" FROM "users" WHERE "id" = $1 ORDER BY "email"`, query)
	assert.Equal(t, []string{"id", "email"}, c.SelectedColumns())
	assert.Equal(t, "users", c.TableName())
	assert.Equal(t, "users.email", c.C("email"))
}

func TestUpdateBuilderEmpty(t *testing.T) {
	u := Dialect(dialect.SQLite).Update("users")
	assert.True(t, u.Empty())
	u.Set("name", "a")
	assert.False(t, u.Empty())
}
