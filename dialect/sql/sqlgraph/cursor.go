package sqlgraph

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/graph"
	"github.com/syssam/socialgraph/schema/field"
)

// token is the wire form of a page token: the model name and the values of
// its primary key fields.
type token struct {
	Model string         `msgpack:"m"`
	Key   map[string]any `msgpack:"k"`
}

// EncodeCursor returns an opaque page token pointing at the record.
func EncodeCursor(r *Record) (string, error) {
	t := token{Model: r.Model.Name, Key: make(map[string]any, len(r.Model.PrimaryKey))}
	for _, f := range r.Model.PrimaryKey {
		v := r.Values[f.Name]
		if v == nil {
			return "", fmt.Errorf("sqlgraph: cursor: primary key %q was not selected", f.Name)
		}
		t.Key[f.Name] = v
	}
	b, err := msgpack.Marshal(&t)
	if err != nil {
		return "", fmt.Errorf("sqlgraph: cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeCursor parses a page token of model m into a cursor usable in
// QuerySpec.Cursor.
func DecodeCursor(m *graph.Model, s string) (map[string]any, error) {
	invalid := func(err error) error {
		return socialgraph.NewValidationError("cursor", err)
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, invalid(err)
	}
	var t token
	if err := msgpack.Unmarshal(b, &t); err != nil {
		return nil, invalid(err)
	}
	if t.Model != m.Name {
		return nil, invalid(fmt.Errorf("token of %s used on %s", t.Model, m.Name))
	}
	cursor := make(map[string]any, len(m.PrimaryKey))
	for _, f := range m.PrimaryKey {
		v, ok := t.Key[f.Name]
		if !ok {
			return nil, invalid(fmt.Errorf("missing key field %q", f.Name))
		}
		if v, err = fromWire(f, v); err != nil {
			return nil, invalid(err)
		}
		cursor[f.Name] = v
	}
	return cursor, nil
}

// fromWire restores the Go type of a key value decoded by msgpack, which
// narrows integers to the smallest fitting type.
func fromWire(f *graph.Field, v any) (any, error) {
	switch f.Type {
	case field.TypeInt:
		n, err := toInt64(v)
		return int(n), err
	case field.TypeInt64:
		return toInt64(v)
	case field.TypeTime:
		t, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("expect time for %q, got %T", f.Name, v)
		}
		return NormalizeTime(t), nil
	case field.TypeJSON:
		if b, ok := v.([]byte); ok {
			return json.RawMessage(b), nil
		}
	}
	return v, nil
}
