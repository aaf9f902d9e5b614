package schema

import (
	"fmt"
	"strings"

	"github.com/syssam/socialgraph/dialect/sqlschema"
)

// ValidationError is a defect of a table definition.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	list := func(title string, errs []*ValidationError) {
		if len(errs) == 0 {
			return
		}
		sb.WriteString(title + ":\n")
		for _, e := range errs {
			sb.WriteString("  - " + e.Error() + "\n")
		}
	}
	list("Errors", r.Errors)
	list("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

func (r *ValidationResult) errorf(table, column, format string, args ...any) {
	r.Errors = append(r.Errors, &ValidationError{Table: table, Column: column, Message: fmt.Sprintf(format, args...)})
}

// ValidateTable validates a single table definition.
func ValidateTable(t *Table) *ValidationResult {
	r := &ValidationResult{}
	if len(t.PrimaryKey) == 0 {
		r.errorf(t.Name, "", "table has no primary key")
	}
	cols := make(map[string]*Column)
	for _, c := range t.Columns {
		if cols[c.Name] != nil {
			r.errorf(t.Name, c.Name, "duplicate column name")
		}
		cols[c.Name] = c
	}
	for _, c := range t.PrimaryKey {
		if c == nil || cols[c.Name] == nil {
			r.errorf(t.Name, "", "primary key references a missing column")
		} else if c.Nullable {
			r.errorf(t.Name, c.Name, "primary key column is nullable")
		}
	}
	names := make(map[string]bool)
	for _, idx := range t.Indexes {
		if names[idx.Name] {
			r.errorf(t.Name, "", "duplicate index name %q", idx.Name)
		}
		names[idx.Name] = true
		for _, c := range idx.Columns {
			if c == nil || cols[c.Name] == nil {
				r.errorf(t.Name, "", "index %q references a missing column", idx.Name)
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		for _, c := range fk.Columns {
			if cols[c.Name] == nil {
				r.errorf(t.Name, c.Name, "foreign key %q references a missing column", fk.Symbol)
				continue
			}
			if fk.OnDelete == sqlschema.SetNull && !c.Nullable {
				r.errorf(t.Name, c.Name, "foreign key %q sets a NOT NULL column to null", fk.Symbol)
			}
		}
		if fk.OnDelete != "" && !fk.OnDelete.Valid() {
			r.errorf(t.Name, "", "foreign key %q has an invalid ON DELETE action %q", fk.Symbol, fk.OnDelete)
		}
	}
	return r
}

// ValidateSchema validates all tables and the references between them.
func ValidateSchema(tables []*Table) *ValidationResult {
	r := &ValidationResult{}
	names := make(map[string]bool)
	for _, t := range tables {
		if names[t.Name] {
			r.errorf(t.Name, "", "duplicate table name")
		}
		names[t.Name] = true
		tr := ValidateTable(t)
		r.Errors = append(r.Errors, tr.Errors...)
		r.Warnings = append(r.Warnings, tr.Warnings...)
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == nil || !names[fk.RefTable.Name] {
				r.errorf(t.Name, "", "foreign key %q references a missing table", fk.Symbol)
			}
		}
		if len(t.Indexes) == 0 && len(t.ForeignKeys) > 0 {
			r.Warnings = append(r.Warnings, &ValidationError{Table: t.Name, Message: "foreign keys without an index"})
		}
	}
	return r
}
