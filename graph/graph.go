package graph

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/dialect/sqlschema"
	"github.com/syssam/socialgraph/schema"
	"github.com/syssam/socialgraph/schema/field"
)

type (
	// Graph is the immutable registry of all models.
	Graph struct {
		Models  []*Model
		byName  map[string]*Model
		byTable map[string]*Model
	}

	// Model is a registered model with its storage mapping.
	Model struct {
		Name       string
		Table      string
		Fields     []*Field
		ID         *Field   // single-column primary key, nil for compound keys.
		PrimaryKey []*Field // primary key fields in key order.
		PKName     string   // primary key constraint name.
		Comment    string
		Edges      []*Edge
		Indexes    []*Index
		Schema     socialgraph.Interface

		fields map[string]*Field
		edges  map[string]*Edge
	}

	// Field is a scalar field of a model.
	Field struct {
		Name       string
		Column     string
		Type       field.Type
		Size       int
		Optional   bool
		Nillable   bool
		Unique     bool
		Immutable  bool
		Sensitive  bool
		Enums      []string
		Annotation sqlschema.Annotation
		Desc       *field.Descriptor
		// FK is set when the field holds the foreign key of a to-one edge.
		FK *Edge
	}

	// Edge is a relation between two models.
	Edge struct {
		Name     string
		Owner    *Model
		Target   *Model
		Rel      Rel
		Inverse  bool  // declared with edge.From, the owner holds the foreign key.
		Ref      *Edge // the paired edge on the target model.
		Field    *Field
		Required bool
		OnDelete sqlschema.CascadeAction

		typ, fk, ref string
	}

	// Index is a single or compound index of a model. Unique single fields
	// are registered as unique indexes too.
	Index struct {
		Name   string
		Unique bool
		Fields []*Field
	}
)

// Rel is the cardinality of an edge from the owner's point of view.
type Rel int

// Relation types.
const (
	O2M Rel = iota + 1 // one owner row, many target rows.
	M2O                // many owner rows, one target row.
	O2O                // one to one.
)

func (r Rel) String() string {
	switch r {
	case O2M:
		return "O2M"
	case M2O:
		return "M2O"
	case O2O:
		return "O2O"
	}
	return "Unknown"
}

// ToMany reports whether the edge yields a list of target rows.
func (e *Edge) ToMany() bool { return e.Rel == O2M }

// Columns returns the column names of the index.
func (i *Index) Columns() []string {
	cols := make([]string, len(i.Fields))
	for j, f := range i.Fields {
		cols[j] = f.Column
	}
	return cols
}

// FieldNames returns the field names of the index.
func (i *Index) FieldNames() []string {
	names := make([]string, len(i.Fields))
	for j, f := range i.Fields {
		names[j] = f.Name
	}
	return names
}

// Orderable reports whether the field can be used for sorting and range
// comparisons.
func (f *Field) Orderable() bool { return f.Type.Orderable() }

// Nullable reports whether the column accepts NULL.
func (f *Field) Nullable() bool { return f.Optional }

// IsJSON reports whether the field is stored as JSON (objects or lists).
func (f *Field) IsJSON() bool { return f.Type == field.TypeJSON || f.Type == field.TypeStrings }

// Field returns the model field with the given name.
func (m *Model) Field(name string) (*Field, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// Edge returns the model edge with the given name.
func (m *Model) Edge(name string) (*Edge, bool) {
	e, ok := m.edges[name]
	return e, ok
}

// Columns returns all column names in declaration order.
func (m *Model) Columns() []string {
	cols := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		cols[i] = f.Column
	}
	return cols
}

// PKColumns returns the primary key columns.
func (m *Model) PKColumns() []string {
	cols := make([]string, len(m.PrimaryKey))
	for i, f := range m.PrimaryKey {
		cols[i] = f.Column
	}
	return cols
}

// UniqueKeys returns every key that addresses a single row: the primary
// key first, then unique indexes in declaration order.
func (m *Model) UniqueKeys() [][]*Field {
	keys := [][]*Field{m.PrimaryKey}
	for _, idx := range m.Indexes {
		if idx.Unique && !sameFields(idx.Fields, m.PrimaryKey) {
			keys = append(keys, idx.Fields)
		}
	}
	return keys
}

// UniqueKey returns the unique key covering exactly the given fields,
// in any order.
func (m *Model) UniqueKey(names ...string) ([]*Field, bool) {
	for _, k := range m.UniqueKeys() {
		if len(k) != len(names) {
			continue
		}
		set := make(map[string]bool, len(names))
		for _, n := range names {
			set[n] = true
		}
		ok := true
		for _, f := range k {
			ok = ok && set[f.Name]
		}
		if ok {
			return k, true
		}
	}
	return nil, false
}

// Model returns the model with the given name.
func (g *Graph) Model(name string) (*Model, bool) {
	m, ok := g.byName[name]
	return m, ok
}

// MustModel is like Model but panics if the model does not exist.
func (g *Graph) MustModel(name string) *Model {
	m, ok := g.byName[name]
	if !ok {
		panic(fmt.Sprintf("graph: unknown model %q", name))
	}
	return m
}

// ModelByTable returns the model stored in the given table.
func (g *Graph) ModelByTable(table string) (*Model, bool) {
	m, ok := g.byTable[table]
	return m, ok
}

// Constraint resolves a storage constraint name to its model and index.
// The primary key is reported as a unique index.
func (g *Graph) Constraint(name string) (*Model, *Index, bool) {
	for _, m := range g.Models {
		if m.PKName == name {
			return m, &Index{Name: m.PKName, Unique: true, Fields: m.PrimaryKey}, true
		}
		for _, idx := range m.Indexes {
			if idx.Name == name {
				return m, idx, true
			}
		}
	}
	return nil, nil, false
}

// UniqueByColumns resolves a table and the exact column set of a unique
// key to its model and index.
func (g *Graph) UniqueByColumns(table string, columns []string) (*Model, *Index, bool) {
	m, ok := g.byTable[table]
	if !ok {
		return nil, nil, false
	}
	want := append([]string(nil), columns...)
	sort.Strings(want)
	match := func(fs []*Field) bool {
		if len(fs) != len(want) {
			return false
		}
		got := make([]string, len(fs))
		for i, f := range fs {
			got[i] = f.Column
		}
		sort.Strings(got)
		return strings.Join(got, ",") == strings.Join(want, ",")
	}
	if match(m.PrimaryKey) {
		return m, &Index{Name: m.PKName, Unique: true, Fields: m.PrimaryKey}, true
	}
	for _, idx := range m.Indexes {
		if idx.Unique && match(idx.Fields) {
			return m, idx, true
		}
	}
	return nil, nil, false
}

// TableName returns the default table name of a model name,
// e.g. "VerificationToken" becomes "verification_tokens".
func TableName(model string) string {
	return inflect.Underscore(inflect.Pluralize(model))
}

// New builds and validates the registry from the given schemas.
func New(schemas ...socialgraph.Interface) (*Graph, error) {
	g := &Graph{
		byName:  make(map[string]*Model, len(schemas)),
		byTable: make(map[string]*Model, len(schemas)),
	}
	var errs []error
	for _, s := range schemas {
		m, err := newModel(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, ok := g.byName[m.Name]; ok {
			errs = append(errs, fmt.Errorf("graph: duplicate model %q", m.Name))
			continue
		}
		if o, ok := g.byTable[m.Table]; ok {
			errs = append(errs, fmt.Errorf("graph: models %q and %q share table %q", o.Name, m.Name, m.Table))
			continue
		}
		g.Models = append(g.Models, m)
		g.byName[m.Name] = m
		g.byTable[m.Table] = m
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := g.resolveEdges(); err != nil {
		return nil, err
	}
	return g, nil
}

// MustNew is like New but panics on error.
func MustNew(schemas ...socialgraph.Interface) *Graph {
	g, err := New(schemas...)
	if err != nil {
		panic(err)
	}
	return g
}

func modelName(s socialgraph.Interface) string {
	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func newModel(s socialgraph.Interface) (*Model, error) {
	m := &Model{
		Name:   modelName(s),
		Schema: s,
		fields: make(map[string]*Field),
		edges:  make(map[string]*Edge),
	}
	var (
		fields  []socialgraph.Field
		edges   []socialgraph.Edge
		indexes []socialgraph.Index
		annots  []schema.Annotation
	)
	for _, mx := range s.Mixin() {
		fields = append(fields, mx.Fields()...)
		edges = append(edges, mx.Edges()...)
		indexes = append(indexes, mx.Indexes()...)
		annots = append(annots, mx.Annotations()...)
	}
	fields = append(fields, s.Fields()...)
	edges = append(edges, s.Edges()...)
	indexes = append(indexes, s.Indexes()...)
	annots = append(annots, s.Annotations()...)

	m.Table = TableName(m.Name)
	if a := sqlschema.From(annots); a.Table != "" {
		m.Table = a.Table
	}
	m.Comment = schema.CommentOf(annots)

	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("graph: %s.%s: %w", m.Name, d.Name, d.Err)
		}
		if _, ok := m.fields[d.Name]; ok {
			return nil, fmt.Errorf("graph: %s: duplicate field %q", m.Name, d.Name)
		}
		nf := &Field{
			Name:       d.Name,
			Column:     d.Name,
			Type:       d.Info.Type,
			Size:       d.Size,
			Optional:   d.Optional,
			Nillable:   d.Nillable,
			Unique:     d.Unique,
			Immutable:  d.Immutable,
			Sensitive:  d.Sensitive,
			Enums:      d.EnumValues(),
			Annotation: sqlschema.From(d.Annotations),
			Desc:       d,
		}
		if d.StorageKey != "" {
			nf.Column = d.StorageKey
		}
		m.Fields = append(m.Fields, nf)
		m.fields[nf.Name] = nf
	}

	for _, f := range m.Fields {
		if f.Unique && f.Name != "id" {
			m.Indexes = append(m.Indexes, &Index{
				Name:   fmt.Sprintf("%s_%s_key", m.Table, f.Column),
				Unique: true,
				Fields: []*Field{f},
			})
		}
	}
	for _, idx := range indexes {
		d := idx.Descriptor()
		if len(d.Fields) == 0 {
			return nil, fmt.Errorf("graph: %s: index without fields", m.Name)
		}
		ni := &Index{Unique: d.Unique, Name: d.StorageKey}
		for _, name := range d.Fields {
			f, ok := m.fields[name]
			if !ok {
				return nil, fmt.Errorf("graph: %s: index references unknown field %q", m.Name, name)
			}
			ni.Fields = append(ni.Fields, f)
		}
		if ni.Name == "" {
			suffix := "idx"
			if ni.Unique {
				suffix = "key"
			}
			ni.Name = fmt.Sprintf("%s_%s_%s", m.Table, strings.Join(ni.Columns(), "_"), suffix)
		}
		m.Indexes = append(m.Indexes, ni)
	}

	m.PKName = m.Table + "_pkey"
	if id, ok := m.fields["id"]; ok {
		m.ID = id
		m.PrimaryKey = []*Field{id}
	} else {
		for i, idx := range m.Indexes {
			if !idx.Unique {
				continue
			}
			m.PrimaryKey = idx.Fields
			if idx.Name != "" && strings.HasSuffix(idx.Name, "_pkey") {
				m.PKName = idx.Name
			}
			m.Indexes = append(m.Indexes[:i:i], m.Indexes[i+1:]...)
			break
		}
	}
	if len(m.PrimaryKey) == 0 {
		return nil, fmt.Errorf("graph: %s: no id field or unique index to use as primary key", m.Name)
	}
	for _, f := range m.PrimaryKey {
		if f.Optional {
			return nil, fmt.Errorf("graph: %s: primary key field %q cannot be optional", m.Name, f.Name)
		}
	}

	for _, e := range edges {
		d := e.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("graph: %s.%s: %w", m.Name, d.Name, d.Err)
		}
		if _, ok := m.edges[d.Name]; ok {
			return nil, fmt.Errorf("graph: %s: duplicate edge %q", m.Name, d.Name)
		}
		if _, ok := m.fields[d.Name]; ok {
			return nil, fmt.Errorf("graph: %s: edge %q conflicts with a field", m.Name, d.Name)
		}
		ne := &Edge{
			Name:     d.Name,
			Owner:    m,
			Inverse:  d.Inverse,
			Required: d.Required,
			typ:      d.Type,
			fk:       d.Field,
			ref:      d.RefName,
		}
		switch {
		case d.Inverse && !d.Unique:
			return nil, fmt.Errorf("graph: %s.%s: back-reference edges must be unique", m.Name, d.Name)
		case d.Inverse:
			ne.Rel = M2O
		case d.Unique:
			ne.Rel = O2O
		default:
			ne.Rel = O2M
		}
		if !d.Inverse {
			ne.OnDelete = sqlschema.From(d.Annotations).OnDelete
		}
		m.Edges = append(m.Edges, ne)
		m.edges[ne.Name] = ne
	}
	return m, nil
}

// resolveEdges links every association to its back-reference and binds
// the foreign-key fields.
func (g *Graph) resolveEdges() error {
	var errs []error
	for _, m := range g.Models {
		for _, e := range m.Edges {
			target, ok := g.byName[e.typ]
			if !ok {
				errs = append(errs, fmt.Errorf("graph: %s.%s: unknown target model %q", m.Name, e.Name, e.typ))
				continue
			}
			if target.ID == nil {
				errs = append(errs, fmt.Errorf("graph: %s.%s: target %q has no id field", m.Name, e.Name, target.Name))
				continue
			}
			e.Target = target
			if !e.Inverse {
				continue
			}
			fk, ok := m.fields[e.fk]
			if !ok {
				errs = append(errs, fmt.Errorf("graph: %s.%s: unknown foreign-key field %q", m.Name, e.Name, e.fk))
				continue
			}
			if fk.FK != nil {
				errs = append(errs, fmt.Errorf("graph: %s.%s: field %q already holds edge %q", m.Name, e.Name, fk.Name, fk.FK.Name))
				continue
			}
			if fk.Type != target.ID.Type {
				errs = append(errs, fmt.Errorf("graph: %s.%s: field %q type %s does not match %s.id", m.Name, e.Name, fk.Name, fk.Type, target.Name))
				continue
			}
			if e.Required && fk.Optional {
				errs = append(errs, fmt.Errorf("graph: %s.%s: required edge on optional field %q", m.Name, e.Name, fk.Name))
				continue
			}
			assoc, ok := target.edges[e.ref]
			if !ok || assoc.Inverse {
				errs = append(errs, fmt.Errorf("graph: %s.%s: reference %q is not an association of %s", m.Name, e.Name, e.ref, target.Name))
				continue
			}
			if assoc.Ref != nil {
				errs = append(errs, fmt.Errorf("graph: %s.%s: association %s.%s is already referenced by %s", m.Name, e.Name, target.Name, assoc.Name, assoc.Ref.Name))
				continue
			}
			if assoc.Rel == O2O {
				e.Rel = O2O
			}
			e.Field, assoc.Field = fk, fk
			e.Ref, assoc.Ref = assoc, e
			fk.FK = e
			if assoc.OnDelete == "" {
				assoc.OnDelete = sqlschema.Restrict
				if fk.Optional {
					assoc.OnDelete = sqlschema.SetNull
				}
			}
			if assoc.OnDelete == sqlschema.SetNull && !fk.Optional {
				errs = append(errs, fmt.Errorf("graph: %s.%s: SET NULL on required field %q", target.Name, assoc.Name, fk.Name))
				continue
			}
			e.OnDelete = assoc.OnDelete
		}
	}
	for _, m := range g.Models {
		for _, e := range m.Edges {
			if e.Ref == nil && e.Target != nil && !e.Inverse {
				errs = append(errs, fmt.Errorf("graph: %s.%s: association has no back-reference on %s", m.Name, e.Name, e.Target.Name))
			}
		}
	}
	return errors.Join(errs...)
}

func sameFields(a, b []*Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
