package client

import (
	"context"
	stdsql "database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/syssam/socialgraph/dialect/sql"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
)

// ExecuteRaw runs a statement with positional arguments on the connection
// of the client, or of its transaction, and returns the number of affected
// rows. Placeholders use the syntax of the dialect.
func (c *Client) ExecuteRaw(ctx context.Context, query string, args ...any) (int64, error) {
	return c.config.executeRaw(ctx, query, args)
}

// QueryRaw runs a query and returns its rows as column maps. Values keep
// the types of the database driver.
func (c *Client) QueryRaw(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	return c.config.queryRaw(ctx, query, args)
}

// ExecuteRaw runs a statement in the transaction.
func (tx *Tx) ExecuteRaw(ctx context.Context, query string, args ...any) (int64, error) {
	return tx.config.executeRaw(ctx, query, args)
}

// QueryRaw runs a query in the transaction.
func (tx *Tx) QueryRaw(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	return tx.config.queryRaw(ctx, query, args)
}

func (c config) executeRaw(ctx context.Context, query string, args []any) (int64, error) {
	if args == nil {
		args = []any{}
	}
	var res stdsql.Result
	if err := c.driver.Exec(ctx, query, args, &res); err != nil {
		return 0, queryError("raw", "executeRaw", sqlgraph.Classify(c.graph, err))
	}
	return res.RowsAffected()
}

func (c config) queryRaw(ctx context.Context, query string, args []any) ([]map[string]any, error) {
	if args == nil {
		args = []any{}
	}
	var rows sql.Rows
	if err := c.driver.Query(ctx, query, args, &rows); err != nil {
		return nil, queryError("raw", "queryRaw", sqlgraph.Classify(c.graph, err))
	}
	defer rows.Close()
	out := []map[string]any{}
	for rows.Next() {
		row := make(map[string]any)
		if err := sqlx.MapScan(rows, row); err != nil {
			return nil, err
		}
		for k, v := range row {
			// Text columns scan as bytes on some drivers.
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
