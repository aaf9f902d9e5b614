package sqlgraph

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/dialect/sql"
	"github.com/syssam/socialgraph/graph"
	"github.com/syssam/socialgraph/schema/field"
)

// Record is a row of a model together with its loaded relations.
//
// Values holds the selected fields keyed by field name, using the Go type of
// the field (string, int, int64, float64, bool, time.Time, json.RawMessage,
// []string). A NULL column is stored as a nil value.
type Record struct {
	Model  *graph.Model
	Values map[string]any
	// Edges holds loaded relations: *Record (nil when absent) for to-one
	// edges and []*Record for to-many edges.
	Edges map[string]any
	// Counts holds the loaded relation counts.
	Counts map[string]int
}

// NewRecord returns an empty record of m.
func NewRecord(m *graph.Model) *Record {
	return &Record{Model: m, Values: make(map[string]any)}
}

// Get returns the value of the field.
func (r *Record) Get(name string) any {
	return r.Values[name]
}

// Edge returns the loaded relation. The second result is false when the
// relation was not loaded.
func (r *Record) Edge(name string) (any, bool) {
	v, ok := r.Edges[name]
	return v, ok
}

// SetEdge sets a loaded relation.
func (r *Record) SetEdge(name string, v any) {
	if r.Edges == nil {
		r.Edges = make(map[string]any)
	}
	r.Edges[name] = v
}

// PK returns the primary key values of the record.
func (r *Record) PK() []any {
	vs := make([]any, len(r.Model.PrimaryKey))
	for i, f := range r.Model.PrimaryKey {
		vs[i] = r.Values[f.Name]
	}
	return vs
}

// Key returns a comparable representation of the given fields' values.
func (r *Record) Key(fields ...*graph.Field) string {
	if len(fields) == 0 {
		fields = r.Model.PrimaryKey
	}
	vs := make([]any, len(fields))
	for i, f := range fields {
		vs[i] = r.Values[f.Name]
	}
	return keyOf(vs...)
}

func keyOf(vs ...any) string {
	if len(vs) == 1 {
		if s, ok := vs[0].(string); ok {
			return s
		}
	}
	var b strings.Builder
	for i, v := range vs {
		if i > 0 {
			b.WriteByte(0)
		}
		switch v := v.(type) {
		case nil:
			b.WriteString("\x01null")
		case time.Time:
			b.WriteString(v.UTC().Format(time.RFC3339Nano))
		case json.RawMessage:
			b.Write(v)
		case []string:
			b.WriteString(strings.Join(v, "\x02"))
		default:
			fmt.Fprint(&b, v)
		}
	}
	return b.String()
}

// pkPredicate returns the predicate selecting the record by primary key.
func pkPredicate(m *graph.Model, pk []any, col func(string) string) *sql.Predicate {
	ps := make([]*sql.Predicate, len(m.PrimaryKey))
	for i, f := range m.PrimaryKey {
		ps[i] = sql.EQ(col(f.Column), pk[i])
	}
	return sql.And(ps...)
}

// Encode validates v against the field and converts it to the value bound
// to the statement. A nil v (or DbNull for JSON fields) encodes as NULL and
// is rejected on required fields.
func Encode(f *graph.Field, v any) (any, error) {
	enc, err := encode(f, v)
	if err != nil {
		return nil, socialgraph.NewValidationError(f.Name, err)
	}
	return enc, nil
}

func encode(f *graph.Field, v any) (any, error) {
	if n, ok := socialgraph.IsNullValue(v); ok {
		switch {
		case f.Type != field.TypeJSON:
			return nil, fmt.Errorf("%s is only valid on JSON fields", n)
		case n == socialgraph.JsonNull:
			return "null", nil
		case n == socialgraph.DbNull:
			v = nil
		default:
			return nil, fmt.Errorf("%s is only valid in filters", n)
		}
	}
	if isNil(v) {
		if !f.Optional {
			return nil, errors.New("value is required")
		}
		return nil, nil
	}
	v = deref(v)
	var out any
	switch f.Type {
	case field.TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expect string, got %T", v)
		}
		out = s
	case field.TypeEnum:
		s, ok := enumString(v)
		if !ok {
			return nil, fmt.Errorf("expect enum string, got %T", v)
		}
		if !slices.Contains(f.Enums, s) {
			return nil, fmt.Errorf("%q is not one of %s", s, strings.Join(f.Enums, ", "))
		}
		out = s
	case field.TypeInt, field.TypeInt64:
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		out = n
	case field.TypeFloat64:
		x, err := toFloat64(v)
		if err != nil {
			return nil, err
		}
		out = x
	case field.TypeBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expect bool, got %T", v)
		}
		out = b
	case field.TypeTime:
		t, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("expect time.Time, got %T", v)
		}
		out = NormalizeTime(t)
	case field.TypeJSON:
		raw, err := toJSON(v)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	case field.TypeStrings:
		ss, ok := v.([]string)
		if !ok {
			return nil, fmt.Errorf("expect []string, got %T", v)
		}
		if ss == nil {
			ss = []string{}
		}
		if err := validate(f, ss); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(ss)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	default:
		return nil, fmt.Errorf("unsupported field type %s", f.Type)
	}
	if err := validate(f, out); err != nil {
		return nil, err
	}
	return out, nil
}

func validate(f *graph.Field, v any) error {
	if f.Desc == nil {
		return nil
	}
	for _, fn := range f.Desc.Validators {
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeTime returns t in UTC truncated to microseconds, the precision
// kept by every supported dialect.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func isNil(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case *string:
		return v == nil
	case *int:
		return v == nil
	case *int64:
		return v == nil
	case *float64:
		return v == nil
	case *bool:
		return v == nil
	case *time.Time:
		return v == nil
	case json.RawMessage:
		return v == nil
	}
	return false
}

func deref(v any) any {
	switch v := v.(type) {
	case *string:
		return *v
	case *int:
		return *v
	case *int64:
		return *v
	case *float64:
		return *v
	case *bool:
		return *v
	case *time.Time:
		return *v
	}
	return v
}

func enumString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String(), true
	}
	return "", false
}

func toInt64(v any) (int64, error) {
	switch v := v.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("expect integer, got %v", v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	}
	return 0, fmt.Errorf("expect integer, got %T", v)
}

func toFloat64(v any) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case []byte:
		return strconv.ParseFloat(string(v), 64)
	case string:
		return strconv.ParseFloat(v, 64)
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, fmt.Errorf("expect number, got %T", v)
	}
	return float64(n), nil
}

func toJSON(v any) (json.RawMessage, error) {
	var raw json.RawMessage
	switch v := v.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	if !json.Valid(raw) {
		return nil, errors.New("invalid JSON document")
	}
	return raw, nil
}

// Decode converts a value scanned from the driver to the Go type of the
// field.
func Decode(f *graph.Field, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch f.Type {
	case field.TypeString, field.TypeEnum:
		switch v := v.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		}
	case field.TypeInt:
		n, err := toInt64(v)
		if err != nil {
			return nil, fmt.Errorf("sqlgraph: decode %s: %w", f.Name, err)
		}
		return int(n), nil
	case field.TypeInt64:
		n, err := toInt64(v)
		if err != nil {
			return nil, fmt.Errorf("sqlgraph: decode %s: %w", f.Name, err)
		}
		return n, nil
	case field.TypeFloat64:
		x, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("sqlgraph: decode %s: %w", f.Name, err)
		}
		return x, nil
	case field.TypeBool:
		switch v := v.(type) {
		case bool:
			return v, nil
		case int64:
			return v != 0, nil
		case []byte:
			return strconv.ParseBool(string(v))
		case string:
			return strconv.ParseBool(v)
		}
	case field.TypeTime:
		switch v := v.(type) {
		case time.Time:
			return NormalizeTime(v), nil
		case []byte:
			return parseTime(f, string(v))
		case string:
			return parseTime(f, v)
		}
	case field.TypeJSON:
		switch v := v.(type) {
		case []byte:
			return json.RawMessage(slices.Clone(v)), nil
		case string:
			return json.RawMessage(v), nil
		}
	case field.TypeStrings:
		var raw []byte
		switch v := v.(type) {
		case []byte:
			raw = v
		case string:
			raw = []byte(v)
		default:
			return nil, fmt.Errorf("sqlgraph: decode %s: unexpected %T", f.Name, v)
		}
		ss := []string{}
		if err := json.Unmarshal(raw, &ss); err != nil {
			return nil, fmt.Errorf("sqlgraph: decode %s: %w", f.Name, err)
		}
		if ss == nil {
			ss = []string{}
		}
		return ss, nil
	}
	return nil, fmt.Errorf("sqlgraph: decode %s: unexpected %T for %s", f.Name, v, f.Type)
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
}

func parseTime(f *graph.Field, s string) (time.Time, error) {
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NormalizeTime(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("sqlgraph: decode %s: invalid time %q", f.Name, s)
}

// scanRecords reads all rows into records of m. columns lists the selected
// fields in select order.
func scanRecords(rows *sql.Rows, m *graph.Model, fields []*graph.Field) ([]*Record, error) {
	defer rows.Close()
	var records []*Record
	for rows.Next() {
		dest := make([]any, len(fields))
		ptrs := make([]any, len(fields))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		r := NewRecord(m)
		for i, f := range fields {
			v, err := Decode(f, dest[i])
			if err != nil {
				return nil, err
			}
			r.Values[f.Name] = v
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
