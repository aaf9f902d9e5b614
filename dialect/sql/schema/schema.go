// Package schema renders the storage schema of a graph: tables, indexes
// and foreign keys with their ON DELETE actions, for postgres, mysql and
// sqlite. It creates missing tables on a live database and writes
// golang-migrate migration files.
package schema

import (
	"fmt"

	"github.com/syssam/socialgraph/dialect/sqlschema"
	"github.com/syssam/socialgraph/graph"
	"github.com/syssam/socialgraph/schema/field"
)

type (
	// Table is a table of the storage schema.
	Table struct {
		Name        string
		Columns     []*Column
		PrimaryKey  []*Column
		PKName      string
		Comment     string
		Indexes     []*Index
		ForeignKeys []*ForeignKey
	}

	// Column is a table column.
	Column struct {
		Name     string
		Type     field.Type
		Size     int
		Nullable bool
		Unique   bool
		Enums    []string
		// Default is the static default of the column, if any.
		Default any
		// ColumnType and Check come from sqlschema annotations.
		ColumnType string
		Check      string
	}

	// Index is a table index.
	Index struct {
		Name    string
		Unique  bool
		Columns []*Column
	}

	// ForeignKey references the primary key of another table.
	ForeignKey struct {
		Symbol     string
		Columns    []*Column
		RefTable   *Table
		RefColumns []*Column
		OnDelete   sqlschema.CascadeAction
	}
)

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Tables returns the tables of g in model registration order.
func Tables(g *graph.Graph) ([]*Table, error) {
	tables := make([]*Table, 0, len(g.Models))
	byModel := make(map[*graph.Model]*Table, len(g.Models))
	for _, m := range g.Models {
		t := &Table{Name: m.Table, PKName: m.PKName, Comment: m.Comment}
		for _, f := range m.Fields {
			c := &Column{
				Name:       f.Column,
				Type:       f.Type,
				Size:       f.Size,
				Nullable:   f.Optional,
				Enums:      f.Enums,
				ColumnType: f.Annotation.ColumnType,
				Check:      f.Annotation.Check,
			}
			if f.Annotation.Size > 0 {
				c.Size = int(f.Annotation.Size)
			}
			if f.Desc != nil {
				if _, fn := f.Desc.Default.(func() any); !fn && f.Desc.Default != nil && !f.IsJSON() {
					c.Default = f.Desc.Default
				}
			}
			t.Columns = append(t.Columns, c)
		}
		for _, f := range m.PrimaryKey {
			c, _ := t.Column(f.Column)
			t.PrimaryKey = append(t.PrimaryKey, c)
		}
		for _, idx := range m.Indexes {
			ni := &Index{Name: idx.Name, Unique: idx.Unique}
			for _, f := range idx.Fields {
				c, _ := t.Column(f.Column)
				ni.Columns = append(ni.Columns, c)
			}
			if len(ni.Columns) == 1 && ni.Unique {
				ni.Columns[0].Unique = true
			}
			t.Indexes = append(t.Indexes, ni)
		}
		tables = append(tables, t)
		byModel[m] = t
	}
	for _, m := range g.Models {
		t := byModel[m]
		for _, e := range m.Edges {
			if !e.Inverse {
				continue
			}
			ref := byModel[e.Target]
			if ref == nil {
				return nil, fmt.Errorf("schema: %s.%s: unknown target table", m.Name, e.Name)
			}
			c, _ := t.Column(e.Field.Column)
			rc, _ := ref.Column(e.Target.ID.Column)
			t.ForeignKeys = append(t.ForeignKeys, &ForeignKey{
				Symbol:     fmt.Sprintf("%s_%s_fkey", t.Name, c.Name),
				Columns:    []*Column{c},
				RefTable:   ref,
				RefColumns: []*Column{rc},
				OnDelete:   e.OnDelete,
			})
		}
	}
	if res := ValidateSchema(tables); res.HasErrors() {
		return nil, fmt.Errorf("schema: invalid schema:\n%s", res)
	}
	return tables, nil
}
