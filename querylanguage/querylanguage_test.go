package querylanguage_test

import (
	"strconv"
	"testing"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/querylanguage"

	"github.com/stretchr/testify/assert"
)

func TestPString(t *testing.T) {
	tests := []struct {
		P querylanguage.P
		S string
	}{
		{
			P: querylanguage.And(
				querylanguage.FieldEQ("handle", "artist1"),
				querylanguage.FieldIn("type", "ARTIST", "LABEL"),
			),
			S: `handle == "artist1" && type in ["ARTIST","LABEL"]`,
		},
		{
			P: querylanguage.Or(
				querylanguage.Not(querylanguage.FieldEQ("handle", "fan1")),
				querylanguage.FieldIn("type", "ARTIST", "LABEL"),
			),
			S: `!(handle == "fan1") || type in ["ARTIST","LABEL"]`,
		},
		{
			P: querylanguage.HasEdgeWith(
				"followers",
				querylanguage.HasEdgeWith(
					"follower_profile",
					querylanguage.Not(querylanguage.FieldEQ("handle", "fan1")),
				),
			),
			S: `has_edge(followers, has_edge(follower_profile, !(handle == "fan1")))`,
		},
		{
			P: querylanguage.And(
				querylanguage.FieldGT("expires_at", 30),
				querylanguage.FieldContains("location", "Berlin"),
			),
			S: `expires_at > 30 && contains(location, "Berlin")`,
		},
		{
			P: querylanguage.Not(querylanguage.FieldLT("score", 32.23)),
			S: `!(score < 32.23)`,
		},
		{
			P: querylanguage.And(
				querylanguage.FieldNil("email_verified"),
				querylanguage.FieldNotNil("name"),
			),
			S: `email_verified == nil && name != nil`,
		},
		{
			P: querylanguage.Or(
				querylanguage.FieldNotIn("id", 1, 2, 3),
				querylanguage.FieldHasSuffix("handle", "_official"),
			),
			S: `id not in [1,2,3] || has_suffix(handle, "_official")`,
		},
		{
			P: querylanguage.EQ(querylanguage.F("created_at"), querylanguage.F("updated_at")).Negate(),
			S: `!(created_at == updated_at)`,
		},
	}
	for i := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			s := tests[i].P.String()
			assert.Equal(t, tests[i].S, s)
		})
	}
}

func TestFieldPredicates(t *testing.T) {
	tests := []struct {
		name string
		P    querylanguage.P
		S    string
	}{
		{
			name: "FieldNEQ",
			P:    querylanguage.FieldNEQ("type", "FAN"),
			S:    `type != "FAN"`,
		},
		{
			name: "FieldGTE",
			P:    querylanguage.FieldGTE("expires_at", 18),
			S:    `expires_at >= 18`,
		},
		{
			name: "FieldLTE",
			P:    querylanguage.FieldLTE("expires_at", 100),
			S:    `expires_at <= 100`,
		},
		{
			name: "FieldContainsFold",
			P:    querylanguage.FieldContainsFold("display_name", "john"),
			S:    `contains_fold(display_name, "john")`,
		},
		{
			name: "FieldEqualFold",
			P:    querylanguage.FieldEqualFold("email", "TEST@EXAMPLE.COM"),
			S:    `equal_fold(email, "TEST@EXAMPLE.COM")`,
		},
		{
			name: "FieldHasPrefix",
			P:    querylanguage.FieldHasPrefix("handle", "dj_"),
			S:    `has_prefix(handle, "dj_")`,
		},
		{
			name: "HasEdge",
			P:    querylanguage.HasEdge("active_profile"),
			S:    `has_edge(active_profile)`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.S, tt.P.String())
		})
	}
}

func TestNaryExpressions(t *testing.T) {
	// Test n-ary And with more than 2 predicates
	p := querylanguage.And(
		querylanguage.FieldEQ("a", 1),
		querylanguage.FieldEQ("b", 2),
		querylanguage.FieldEQ("c", 3),
	)
	assert.Equal(t, `(a == 1 && b == 2 && c == 3)`, p.String())

	// Test n-ary Or with more than 2 predicates
	p = querylanguage.Or(
		querylanguage.FieldEQ("x", 1),
		querylanguage.FieldEQ("y", 2),
		querylanguage.FieldEQ("z", 3),
	)
	assert.Equal(t, `(x == 1 || y == 2 || z == 3)`, p.String())
}

func TestComparisonOperations(t *testing.T) {
	tests := []struct {
		name string
		P    querylanguage.P
		S    string
	}{
		{
			name: "NEQ",
			P:    querylanguage.NEQ(querylanguage.F("a"), querylanguage.F("b")),
			S:    `a != b`,
		},
		{
			name: "GT",
			P:    querylanguage.GT(querylanguage.F("x"), querylanguage.F("y")),
			S:    `x > y`,
		},
		{
			name: "GTE",
			P:    querylanguage.GTE(querylanguage.F("x"), querylanguage.F("y")),
			S:    `x >= y`,
		},
		{
			name: "LT",
			P:    querylanguage.LT(querylanguage.F("x"), querylanguage.F("y")),
			S:    `x < y`,
		},
		{
			name: "LTE",
			P:    querylanguage.LTE(querylanguage.F("x"), querylanguage.F("y")),
			S:    `x <= y`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.S, tt.P.String())
		})
	}
}

func TestNegate(t *testing.T) {
	// Test BinaryExpr.Negate
	p := querylanguage.FieldEQ("name", "test")
	assert.Equal(t, `!(name == "test")`, p.Negate().String())

	// Test UnaryExpr.Negate (double negation)
	p2 := querylanguage.Not(querylanguage.FieldEQ("name", "test"))
	assert.Equal(t, `!(!(name == "test"))`, p2.Negate().String())

	// Test NaryExpr.Negate
	p3 := querylanguage.And(
		querylanguage.FieldEQ("a", 1),
		querylanguage.FieldEQ("b", 2),
		querylanguage.FieldEQ("c", 3),
	)
	assert.Equal(t, `!((a == 1 && b == 2 && c == 3))`, p3.Negate().String())

	// Test CallExpr.Negate
	p4 := querylanguage.HasEdge("active_profile")
	assert.Equal(t, `!(has_edge(active_profile))`, p4.Negate().String())
}

func TestListAndPathPredicates(t *testing.T) {
	tests := []struct {
		name string
		P    querylanguage.P
		S    string
	}{
		{
			name: "ListHas",
			P:    querylanguage.ListHas("instruments", "bass"),
			S:    `has(instruments, "bass")`,
		},
		{
			name: "ListHasEvery",
			P:    querylanguage.ListHasEvery("instruments", "bass", "drums"),
			S:    `has_every(instruments, ["bass","drums"])`,
		},
		{
			name: "ListHasSome",
			P:    querylanguage.ListHasSome("instruments"),
			S:    `has_some(instruments, [])`,
		},
		{
			name: "ListIsEmpty",
			P:    querylanguage.ListIsEmpty("instruments", true),
			S:    `is_empty(instruments, true)`,
		},
		{
			name: "PathEQ",
			P:    querylanguage.EQ(querylanguage.Path("links", "website"), &querylanguage.Value{V: "https://example.com"}),
			S:    `links.website == "https://example.com"`,
		},
		{
			name: "PathCall",
			P:    querylanguage.PathCall(querylanguage.FuncHasPrefix, querylanguage.Path("links", "social", "x"), "@"),
			S:    `has_prefix(links.social.x, "@")`,
		},
		{
			name: "DbNull",
			P:    querylanguage.FieldEQ("links", socialgraph.DbNull),
			S:    `links == DbNull`,
		},
		{
			name: "JsonNull",
			P:    querylanguage.FieldNEQ("links", socialgraph.JsonNull),
			S:    `links != JsonNull`,
		},
		{
			name: "AggregateGT",
			P:    querylanguage.GT(querylanguage.Agg(querylanguage.AggCount, "id"), &querylanguage.Value{V: 1}),
			S:    `_count(id) > 1`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.S, tt.P.String())
		})
	}
}

func TestAllAny(t *testing.T) {
	assert.Nil(t, querylanguage.All())
	assert.Nil(t, querylanguage.Any(nil, nil))

	one := querylanguage.FieldEQ("type", "FAN")
	assert.Same(t, one, querylanguage.All(nil, one))

	p := querylanguage.All(one, nil, querylanguage.FieldEQ("handle", "a"))
	assert.Equal(t, `type == "FAN" && handle == "a"`, p.String())

	p = querylanguage.Any(one, querylanguage.FieldEQ("handle", "a"), querylanguage.FieldEQ("handle", "b"))
	assert.Equal(t, `(type == "FAN" || handle == "a" || handle == "b")`, p.String())
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "not in", querylanguage.OpNotIn.String())
	assert.Equal(t, "op(99)", querylanguage.Op(99).String())
}
