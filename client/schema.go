package client

import (
	"context"

	"github.com/syssam/socialgraph/dialect/sql/schema"
)

// Schema creates the tables of the model registry.
type Schema struct {
	config
}

// Create creates the missing tables with their indexes and foreign keys.
func (s *Schema) Create(ctx context.Context) error {
	tables, err := schema.Tables(s.graph)
	if err != nil {
		return err
	}
	return schema.Create(ctx, s.driver, tables)
}

// DDL returns the statements creating all tables on the dialect of the
// client.
func (s *Schema) DDL() ([]string, error) {
	tables, err := schema.Tables(s.graph)
	if err != nil {
		return nil, err
	}
	return schema.DDL(s.driver.Dialect(), tables), nil
}
