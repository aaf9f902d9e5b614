package sql

import (
	"strings"

	"github.com/syssam/socialgraph/dialect"
)

// Predicate is a where predicate.
type Predicate struct {
	op    string
	fns   []func(*Builder)
	preds []*Predicate
}

// P creates a new predicate rendered by the given callbacks.
//
//	P(func(b *Builder) {
//		b.Ident("handle").WriteString(" = ").Arg("artist1")
//	})
func P(fns ...func(*Builder)) *Predicate {
	return &Predicate{fns: fns}
}

// Append appends a new function to the predicate callbacks.
// The callback list are executed on call to Query.
func (p *Predicate) Append(f func(*Builder)) *Predicate {
	p.fns = append(p.fns, f)
	return p
}

// Query returns query representation of a predicate.
func (p *Predicate) Query() (string, []any) {
	b := newBuilder("")
	p.build(b)
	return b.Query()
}

func (p *Predicate) build(b *Builder) {
	switch p.op {
	case "AND", "OR":
		for i, c := range p.preds {
			if i > 0 {
				b.Pad().WriteString(p.op).Pad()
			}
			if (c.op == "AND" || c.op == "OR") && c.op != p.op {
				b.Wrap(c.build)
			} else {
				c.build(b)
			}
		}
	case "NOT":
		b.WriteString("NOT ")
		b.Wrap(p.preds[0].build)
	default:
		for _, f := range p.fns {
			f(b)
		}
	}
}

func compose(op string, preds []*Predicate) *Predicate {
	list := make([]*Predicate, 0, len(preds))
	for _, p := range preds {
		switch {
		case p == nil:
		case p.op == op:
			list = append(list, p.preds...)
		default:
			list = append(list, p)
		}
	}
	switch len(list) {
	case 0:
		return nil
	case 1:
		return list[0]
	default:
		return &Predicate{op: op, preds: list}
	}
}

// And combines all given predicates with AND between them.
// Nil predicates are skipped.
func And(preds ...*Predicate) *Predicate {
	return compose("AND", preds)
}

// Or combines all given predicates with OR between them.
// Nil predicates are skipped.
func Or(preds ...*Predicate) *Predicate {
	return compose("OR", preds)
}

// Not wraps the given predicate with the not predicate.
func Not(pred *Predicate) *Predicate {
	if pred == nil {
		return nil
	}
	return &Predicate{op: "NOT", preds: []*Predicate{pred}}
}

// ExprP creates a new predicate from the given expression.
// Each '?' is bound to the next argument.
//
//	ExprP("json_array_length(instruments) = ?", 0)
func ExprP(expr string, args ...any) *Predicate {
	q := Expr(expr, args...)
	return P(func(b *Builder) { b.Join(q) })
}

// False returns a predicate that is always false.
func False() *Predicate {
	return P(func(b *Builder) { b.WriteString("FALSE") })
}

// True returns a predicate that is always true.
func True() *Predicate {
	return P(func(b *Builder) { b.WriteString("TRUE") })
}

func op(col, op string, v any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).Pad().WriteString(op).Pad().Arg(v)
	})
}

// EQ returns a "=" predicate.
func EQ(col string, value any) *Predicate {
	return op(col, "=", value)
}

// NEQ returns a "<>" predicate.
func NEQ(col string, value any) *Predicate {
	return op(col, "<>", value)
}

// LT returns a "<" predicate.
func LT(col string, value any) *Predicate {
	return op(col, "<", value)
}

// LTE returns a "<=" predicate.
func LTE(col string, value any) *Predicate {
	return op(col, "<=", value)
}

// GT returns a ">" predicate.
func GT(col string, value any) *Predicate {
	return op(col, ">", value)
}

// GTE returns a ">=" predicate.
func GTE(col string, value any) *Predicate {
	return op(col, ">=", value)
}

// ColumnsEQ appends a "=" predicate between 2 columns.
func ColumnsEQ(col1, col2 string) *Predicate {
	return ColumnsOp(col1, "=", col2)
}

// ColumnsOp appends the given operator between 2 columns.
func ColumnsOp(col1, op, col2 string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col1).Pad().WriteString(op).Pad().Ident(col2)
	})
}

// IsNull returns the `IS NULL` predicate.
func IsNull(col string) *Predicate {
	return P(func(b *Builder) { b.Ident(col).WriteString(" IS NULL") })
}

// NotNull returns the `IS NOT NULL` predicate.
func NotNull(col string) *Predicate {
	return P(func(b *Builder) { b.Ident(col).WriteString(" IS NOT NULL") })
}

// In returns the `IN` predicate. An empty list matches nothing.
func In(col string, args ...any) *Predicate {
	if len(args) == 0 {
		return False()
	}
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" IN ").Wrap(func(b *Builder) { b.Args(args...) })
	})
}

// NotIn returns the `NOT IN` predicate. An empty list matches everything.
func NotIn(col string, args ...any) *Predicate {
	if len(args) == 0 {
		return True()
	}
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" NOT IN ").Wrap(func(b *Builder) { b.Args(args...) })
	})
}

// InQuery returns the `IN` predicate over a sub-query.
func InQuery(col string, q Querier) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" IN ").Wrap(func(b *Builder) { b.Join(q) })
	})
}

// Exists returns the `Exists` predicate.
func Exists(query Querier) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("EXISTS ").Wrap(func(b *Builder) { b.Join(query) })
	})
}

// NotExists returns the `NotExists` predicate.
func NotExists(query Querier) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("NOT EXISTS ").Wrap(func(b *Builder) { b.Join(query) })
	})
}

// Like returns the `LIKE` predicate with a raw pattern.
func Like(col, pattern string) *Predicate {
	return op(col, "LIKE", pattern)
}

// EscapeLike escapes the LIKE wildcards '%', '_' and the escape
// character '\' in the given string.
func EscapeLike(s string) string {
	if !strings.ContainsAny(s, `%_\`) {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// EscapeGlob escapes the GLOB wildcards '*', '?' and '['.
func EscapeGlob(s string) string {
	if !strings.ContainsAny(s, "*?[") {
		return s
	}
	r := strings.NewReplacer("[", "[[]", "*", "[*]", "?", "[?]")
	return r.Replace(s)
}

// match renders a case-sensitive (fold=false) or case-insensitive (fold=true)
// pattern match of s against the column, with optional leading and trailing
// wildcards.
func match(col, s string, lead, trail, fold bool) *Predicate {
	return P(func(b *Builder) {
		switch {
		case b.dialect == dialect.SQLite && !fold:
			// LIKE is case-insensitive on SQLite. GLOB is not.
			b.Ident(col).WriteString(" GLOB ").Arg(wrap(EscapeGlob(s), "*", lead, trail))
		case b.dialect == dialect.SQLite:
			b.Ident(col).WriteString(" LIKE ").Arg(wrap(EscapeLike(s), "%", lead, trail)).WriteString(` ESCAPE '\'`)
		case b.dialect == dialect.Postgres && fold:
			b.Ident(col).WriteString(" ILIKE ").Arg(wrap(EscapeLike(s), "%", lead, trail))
		case fold:
			b.WriteString("LOWER(").Ident(col).WriteString(") LIKE ").Arg(wrap(EscapeLike(strings.ToLower(s)), "%", lead, trail))
		default:
			b.Ident(col).WriteString(" LIKE ").Arg(wrap(EscapeLike(s), "%", lead, trail))
		}
	})
}

func wrap(s, w string, lead, trail bool) string {
	if lead {
		s = w + s
	}
	if trail {
		s += w
	}
	return s
}

// Contains returns a case-sensitive substring predicate.
func Contains(col, sub string) *Predicate {
	return match(col, sub, true, true, false)
}

// ContainsFold returns a case-insensitive substring predicate.
func ContainsFold(col, sub string) *Predicate {
	return match(col, sub, true, true, true)
}

// HasPrefix returns a case-sensitive prefix predicate.
func HasPrefix(col, prefix string) *Predicate {
	return match(col, prefix, false, true, false)
}

// HasPrefixFold returns a case-insensitive prefix predicate.
func HasPrefixFold(col, prefix string) *Predicate {
	return match(col, prefix, false, true, true)
}

// HasSuffix returns a case-sensitive suffix predicate.
func HasSuffix(col, suffix string) *Predicate {
	return match(col, suffix, true, false, false)
}

// HasSuffixFold returns a case-insensitive suffix predicate.
func HasSuffixFold(col, suffix string) *Predicate {
	return match(col, suffix, true, false, true)
}

// EqualFold returns a case-insensitive equality predicate.
func EqualFold(col, s string) *Predicate {
	return P(func(b *Builder) {
		b.WriteString("LOWER(").Ident(col).WriteString(") = ").Arg(strings.ToLower(s))
	})
}
