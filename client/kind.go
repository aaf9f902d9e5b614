package client

import (
	"encoding/json"
	"time"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
)

// kind binds a model name to the Go type of its rows. C and U are the
// create and update inputs of the model.
type kind[T any, C creator, U updater] struct {
	name   string
	decode func(*sqlgraph.Record) *T
}

// decodeAll decodes a slice of records.
func decodeAll[T any](decode func(*sqlgraph.Record) *T, recs []*sqlgraph.Record) []*T {
	out := make([]*T, len(recs))
	for i, r := range recs {
		out[i] = decode(r)
	}
	return out
}

// Field accessors of decoded records. A field that was not selected, or
// is NULL, decodes to the zero value.

func str(r *sqlgraph.Record, name string) string {
	s, _ := r.Values[name].(string)
	return s
}

func strPtr(r *sqlgraph.Record, name string) *string {
	if s, ok := r.Values[name].(string); ok {
		return &s
	}
	return nil
}

func intPtr(r *sqlgraph.Record, name string) *int {
	if n, ok := r.Values[name].(int); ok {
		return &n
	}
	return nil
}

func boolean(r *sqlgraph.Record, name string) bool {
	b, _ := r.Values[name].(bool)
	return b
}

func timestamp(r *sqlgraph.Record, name string) time.Time {
	t, _ := r.Values[name].(time.Time)
	return t
}

func rawJSON(r *sqlgraph.Record, name string) json.RawMessage {
	m, _ := r.Values[name].(json.RawMessage)
	return m
}

func strs(r *sqlgraph.Record, name string) []string {
	s, _ := r.Values[name].([]string)
	return s
}

// one decodes a loaded to-one relation. The second result is false when
// the relation was not loaded.
func one[T any](r *sqlgraph.Record, name string, decode func(*sqlgraph.Record) *T) (*T, bool) {
	v, ok := r.Edge(name)
	if !ok {
		return nil, false
	}
	rec, _ := v.(*sqlgraph.Record)
	if rec == nil {
		return nil, true
	}
	return decode(rec), true
}

// many decodes a loaded to-many relation.
func many[T any](r *sqlgraph.Record, name string, decode func(*sqlgraph.Record) *T) ([]*T, bool) {
	v, ok := r.Edge(name)
	if !ok {
		return nil, false
	}
	recs, _ := v.([]*sqlgraph.Record)
	return decodeAll(decode, recs), true
}

// loaded returns the loaded relation or a NotLoadedError.
func loaded[T any](v T, ok bool, edge string) (T, error) {
	if !ok {
		var zero T
		return zero, socialgraph.NewNotLoadedError(edge)
	}
	return v, nil
}

// counts copies the loaded relation counts of a record.
func counts(r *sqlgraph.Record) map[string]int {
	if len(r.Counts) == 0 {
		return nil
	}
	out := make(map[string]int, len(r.Counts))
	for k, v := range r.Counts {
		out[k] = v
	}
	return out
}
