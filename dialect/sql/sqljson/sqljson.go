// Package sqljson provides predicates over JSON columns for the three
// supported dialects.
//
// A path addresses a value inside the document. Each segment is an object
// key, or an array index when it is all digits:
//
//	sqljson.ValueEQ("links", "https://example.com", "website")
//	sqljson.StringHasPrefix("links", "@", "socials", "0")
//
// Fields declared with field.Strings are stored as JSON arrays, and the
// List predicates operate on them.
package sqljson

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/syssam/socialgraph/dialect"
	"github.com/syssam/socialgraph/dialect/sql"
)

var segment = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidatePath returns an error if a path segment is empty or contains
// characters other than letters, digits and underscores.
func ValidatePath(path []string) error {
	for _, s := range path {
		if !segment.MatchString(s) {
			return fmt.Errorf("sqljson: invalid path segment %q", s)
		}
	}
	return nil
}

func isIndex(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil && s != "" && s[0] != '-' && s[0] != '+'
}

// pgPath renders a text[] literal such as '{socials,0}'.
func pgPath(path []string) string {
	parts := make([]string, len(path))
	for i, s := range path {
		if segment.MatchString(s) {
			parts[i] = s
			continue
		}
		s = strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
		parts[i] = `"` + s + `"`
	}
	return "'{" + strings.ReplaceAll(strings.Join(parts, ","), "'", "''") + "}'"
}

// jsonPath renders a MySQL/SQLite path literal such as '$.socials[0]'.
func jsonPath(path []string) string {
	var b strings.Builder
	b.WriteByte('$')
	for _, s := range path {
		switch {
		case isIndex(s):
			b.WriteString("[" + s + "]")
		case segment.MatchString(s):
			b.WriteString("." + s)
		default:
			b.WriteString(`."` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`)
		}
	}
	return "'" + strings.ReplaceAll(b.String(), "'", "''") + "'"
}

// extract writes the expression selecting the JSON value at path. On
// SQLite the value is converted to its SQL representation.
func extract(b *sql.Builder, column string, path []string) {
	switch b.Dialect() {
	case dialect.Postgres:
		if len(path) == 0 {
			b.Ident(column)
			return
		}
		b.WriteByte('(').Ident(column).WriteString(" #> ").WriteString(pgPath(path)).WriteByte(')')
	case dialect.MySQL:
		if len(path) == 0 {
			b.Ident(column)
			return
		}
		b.WriteString("JSON_EXTRACT(").Ident(column).WriteString(", ").WriteString(jsonPath(path)).WriteByte(')')
	default:
		b.WriteString("json_extract(").Ident(column).WriteString(", ").WriteString(jsonPath(path)).WriteByte(')')
	}
}

// unquote writes the expression selecting the value at path as text.
func unquote(b *sql.Builder, column string, path []string) {
	switch b.Dialect() {
	case dialect.Postgres:
		if len(path) == 0 {
			b.WriteByte('(').Ident(column).WriteString(" #>> '{}')")
			return
		}
		b.WriteByte('(').Ident(column).WriteString(" #>> ").WriteString(pgPath(path)).WriteByte(')')
	case dialect.MySQL:
		b.WriteString("JSON_UNQUOTE(")
		extract(b, column, path)
		b.WriteByte(')')
	default:
		extract(b, column, path)
	}
}

// typeOf writes the expression returning the JSON type name at path.
// The names differ by dialect, see typeName.
func typeOf(b *sql.Builder, column string, path []string) {
	switch b.Dialect() {
	case dialect.Postgres:
		b.WriteString("jsonb_typeof(")
		extract(b, column, path)
		b.WriteByte(')')
	case dialect.MySQL:
		b.WriteString("JSON_TYPE(")
		extract(b, column, path)
		b.WriteByte(')')
	default:
		b.WriteString("json_type(").Ident(column).WriteString(", ").WriteString(jsonPath(path)).WriteByte(')')
	}
}

// typeName returns the dialect names of a JSON kind
// ("null", "string", "number", "boolean", "array", "object").
func typeName(d, kind string) []string {
	switch d {
	case dialect.Postgres:
		return []string{kind}
	case dialect.MySQL:
		switch kind {
		case "number":
			return []string{"INTEGER", "DOUBLE", "DECIMAL", "UNSIGNED INTEGER"}
		default:
			return []string{strings.ToUpper(kind)}
		}
	default:
		switch kind {
		case "string":
			return []string{"text"}
		case "number":
			return []string{"integer", "real"}
		case "boolean":
			return []string{"true", "false"}
		default:
			return []string{kind}
		}
	}
}

func isType(b *sql.Builder, column string, path []string, kind string) {
	names := typeName(b.Dialect(), kind)
	typeOf(b, column, path)
	if len(names) == 1 {
		b.WriteString(" = '" + names[0] + "'")
		return
	}
	b.WriteString(" IN (")
	for i, n := range names {
		if i > 0 {
			b.Comma()
		}
		b.WriteString("'" + n + "'")
	}
	b.WriteByte(')')
}

// ValueIsNull returns a predicate matching the JSON null literal at path.
// SQL NULL columns and missing keys do not match.
func ValueIsNull(column string, path ...string) *sql.Predicate {
	return sql.P(func(b *sql.Builder) {
		if b.Dialect() == dialect.Postgres && len(path) == 0 {
			b.Ident(column).WriteString(" = 'null'::jsonb")
			return
		}
		isType(b, column, path, "null")
	})
}

// HasKey returns a predicate matching documents with a value at path,
// including the JSON null literal.
func HasKey(column string, path ...string) *sql.Predicate {
	return sql.P(func(b *sql.Builder) {
		typeOf(b, column, path)
		b.WriteString(" IS NOT NULL")
	})
}

// ValueEQ returns a predicate matching documents whose value at path is
// equal to the JSON encoding of v. A json.RawMessage is compared as is.
func ValueEQ(column string, v any, path ...string) *sql.Predicate {
	return sql.P(func(b *sql.Builder) {
		raw, err := marshal(v)
		if err != nil {
			b.WriteString("FALSE")
			return
		}
		switch b.Dialect() {
		case dialect.Postgres:
			extract(b, column, path)
			b.WriteString(" = ").Arg(string(raw)).WriteString("::jsonb")
		case dialect.MySQL:
			extract(b, column, path)
			b.WriteString(" = CAST(").Arg(string(raw)).WriteString(" AS JSON)")
		default:
			sqliteEQ(b, column, path, raw)
		}
	})
}

// sqliteEQ compares the SQL value returned by json_extract, which
// unwraps strings, numbers and booleans and minifies objects and arrays.
func sqliteEQ(b *sql.Builder, column string, path []string, raw json.RawMessage) {
	var v any
	d := json.NewDecoder(strings.NewReader(string(raw)))
	d.UseNumber()
	if err := d.Decode(&v); err != nil {
		b.WriteString("FALSE")
		return
	}
	switch v := v.(type) {
	case nil:
		isType(b, column, path, "null")
	case bool:
		typeOf(b, column, path)
		b.WriteString(" = '" + strconv.FormatBool(v) + "'")
	case string:
		b.WriteByte('(')
		isType(b, column, path, "string")
		b.WriteString(" AND ")
		extract(b, column, path)
		b.WriteString(" = ").Arg(v).WriteByte(')')
	case json.Number:
		var n any = v.String()
		if i, err := v.Int64(); err == nil {
			n = i
		} else if f, err := v.Float64(); err == nil {
			n = f
		}
		b.WriteByte('(')
		isType(b, column, path, "number")
		b.WriteString(" AND ")
		extract(b, column, path)
		b.WriteString(" = ").Arg(n).WriteByte(')')
	default:
		extract(b, column, path)
		b.WriteString(" = json(").Arg(string(raw)).WriteByte(')')
	}
}

func marshal(v any) (json.RawMessage, error) {
	switch v := v.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// StringContains returns a predicate matching documents whose value at
// path is a string containing sub.
func StringContains(column, sub string, path ...string) *sql.Predicate {
	return stringMatch(column, sub, path, true, true)
}

// StringHasPrefix returns a predicate matching documents whose value at
// path is a string starting with prefix.
func StringHasPrefix(column, prefix string, path ...string) *sql.Predicate {
	return stringMatch(column, prefix, path, false, true)
}

// StringHasSuffix returns a predicate matching documents whose value at
// path is a string ending with suffix.
func StringHasSuffix(column, suffix string, path ...string) *sql.Predicate {
	return stringMatch(column, suffix, path, true, false)
}

func stringMatch(column, s string, path []string, lead, trail bool) *sql.Predicate {
	return sql.P(func(b *sql.Builder) {
		b.WriteByte('(')
		isType(b, column, path, "string")
		b.WriteString(" AND ")
		unquote(b, column, path)
		if b.Dialect() == dialect.SQLite {
			b.WriteString(" GLOB ").Arg(wrap(sql.EscapeGlob(s), "*", lead, trail))
		} else {
			b.WriteString(" LIKE ").Arg(wrap(sql.EscapeLike(s), "%", lead, trail))
		}
		b.WriteByte(')')
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

// ValueContains returns a predicate matching documents whose value at path
// is an array containing v. If v is a slice, every element must be present.
func ValueContains(column string, v any, path ...string) *sql.Predicate {
	return sql.P(func(b *sql.Builder) {
		elems, err := elements(v)
		if err != nil {
			b.WriteString("FALSE")
			return
		}
		arrayContains(b, column, path, elems)
	})
}

// elements returns the JSON encoding of each element of v, or of v itself
// when it is not an array.
func elements(v any) ([]json.RawMessage, error) {
	raw, err := marshal(v)
	if err != nil {
		return nil, err
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return []json.RawMessage{raw}, nil
	}
	return elems, nil
}

func arrayContains(b *sql.Builder, column string, path []string, elems []json.RawMessage) {
	b.WriteByte('(')
	isType(b, column, path, "array")
	defer b.WriteByte(')')
	if len(elems) == 0 {
		return
	}
	b.WriteString(" AND ")
	switch b.Dialect() {
	case dialect.Postgres:
		arr, _ := json.Marshal(elems)
		extract(b, column, path)
		b.WriteString(" @> ").Arg(string(arr)).WriteString("::jsonb")
	case dialect.MySQL:
		arr, _ := json.Marshal(elems)
		b.WriteString("JSON_CONTAINS(").Ident(column).WriteString(", ").Arg(string(arr))
		if len(path) > 0 {
			b.WriteString(", ").WriteString(jsonPath(path))
		}
		b.WriteByte(')')
	default:
		for i, e := range elems {
			if i > 0 {
				b.WriteString(" AND ")
			}
			b.WriteString("EXISTS (SELECT 1 FROM json_each(").Ident(column).WriteString(", ").WriteString(jsonPath(path)).WriteString(") WHERE ")
			eachEQ(b, e)
			b.WriteByte(')')
		}
	}
}

// eachEQ matches a json_each row against a JSON element.
func eachEQ(b *sql.Builder, e json.RawMessage) {
	var v any
	d := json.NewDecoder(strings.NewReader(string(e)))
	d.UseNumber()
	if err := d.Decode(&v); err != nil {
		b.WriteString("FALSE")
		return
	}
	switch v := v.(type) {
	case nil:
		b.WriteString("json_each.type = 'null'")
	case bool:
		b.WriteString("json_each.type = '" + strconv.FormatBool(v) + "'")
	case string:
		b.WriteString("json_each.type = 'text' AND json_each.value = ").Arg(v)
	case json.Number:
		var n any = v.String()
		if i, err := v.Int64(); err == nil {
			n = i
		} else if f, err := v.Float64(); err == nil {
			n = f
		}
		b.WriteString("json_each.type IN ('integer', 'real') AND json_each.value = ").Arg(n)
	default:
		b.WriteString("json_each.value = json(").Arg(string(e)).WriteByte(')')
	}
}

// ListHas returns a predicate matching string lists containing v.
func ListHas(column string, v any) *sql.Predicate {
	return ListHasEvery(column, []any{v})
}

// ListHasEvery returns a predicate matching string lists containing every
// value of vs. An empty vs matches every row with a non-NULL list.
func ListHasEvery(column string, vs []any) *sql.Predicate {
	if len(vs) == 0 {
		return sql.NotNull(column)
	}
	return sql.P(func(b *sql.Builder) {
		elems := make([]json.RawMessage, 0, len(vs))
		for _, v := range vs {
			raw, err := marshal(v)
			if err != nil {
				b.WriteString("FALSE")
				return
			}
			elems = append(elems, raw)
		}
		switch b.Dialect() {
		case dialect.Postgres:
			arr, _ := json.Marshal(elems)
			b.Ident(column).WriteString(" @> ").Arg(string(arr)).WriteString("::jsonb")
		case dialect.MySQL:
			arr, _ := json.Marshal(elems)
			b.WriteString("JSON_CONTAINS(").Ident(column).WriteString(", ").Arg(string(arr)).WriteByte(')')
		default:
			for i, e := range elems {
				if i > 0 {
					b.WriteString(" AND ")
				}
				b.WriteString("EXISTS (SELECT 1 FROM json_each(").Ident(column).WriteString(") WHERE ")
				eachEQ(b, e)
				b.WriteByte(')')
			}
		}
	})
}

// ListHasSome returns a predicate matching string lists containing at
// least one value of vs. An empty vs matches nothing.
func ListHasSome(column string, vs []any) *sql.Predicate {
	if len(vs) == 0 {
		return sql.False()
	}
	preds := make([]*sql.Predicate, len(vs))
	for i, v := range vs {
		preds[i] = ListHas(column, v)
	}
	return sql.Or(preds...)
}

// ListIsEmpty returns a predicate matching empty (empty=true) or
// non-empty (empty=false) lists.
func ListIsEmpty(column string, empty bool) *sql.Predicate {
	return sql.P(func(b *sql.Builder) {
		switch b.Dialect() {
		case dialect.Postgres:
			b.WriteString("jsonb_array_length(")
		case dialect.MySQL:
			b.WriteString("JSON_LENGTH(")
		default:
			b.WriteString("json_array_length(")
		}
		b.Ident(column).WriteByte(')')
		if empty {
			b.WriteString(" = 0")
		} else {
			b.WriteString(" > 0")
		}
	})
}
