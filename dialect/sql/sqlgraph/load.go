package sqlgraph

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/socialgraph/contrib/dataloader"
	"github.com/syssam/socialgraph/dialect/sql"
	"github.com/syssam/socialgraph/graph"
)

// BatchSize is the maximum number of join keys bound in one relation query.
var BatchSize = 500

// load loads the relations and relation counts of the plan into recs with
// one query per relation (per BatchSize parents). Sibling relations load
// concurrently outside transactions.
func (p *plan) load(ctx context.Context, c Conn, recs []*Record) error {
	n := len(p.spec.Include) + len(p.spec.Counts)
	if n == 0 || len(recs) == 0 {
		return nil
	}
	var (
		edges  = make([][]any, len(p.spec.Include))
		counts = make([][]int, len(p.spec.Counts))
		g, gctx = errgroup.WithContext(ctx)
	)
	if c.Tx {
		g.SetLimit(1)
	}
	for i, inc := range p.spec.Include {
		g.Go(func() (err error) {
			edges[i], err = loadEdge(gctx, c, p.edges[inc.Edge], inc, recs)
			return err
		})
	}
	for i, cs := range p.spec.Counts {
		g.Go(func() (err error) {
			counts[i], err = loadCount(gctx, c, p.edges[cs.Edge], cs, recs)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, inc := range p.spec.Include {
		for j, r := range recs {
			r.SetEdge(inc.Edge, edges[i][j])
		}
	}
	for i, cs := range p.spec.Counts {
		for j, r := range recs {
			if r.Counts == nil {
				r.Counts = make(map[string]int, len(p.spec.Counts))
			}
			r.Counts[cs.Edge] = counts[i][j]
		}
	}
	return nil
}

// loadEdge returns the related rows of every parent: a *Record (nil when
// absent) for to-one relations and a []*Record for to-many relations.
func loadEdge(ctx context.Context, c Conn, e *graph.Edge, inc *IncludeSpec, parents []*Record) ([]any, error) {
	spec := inc.Query
	if spec == nil {
		spec = NewQuerySpec(e.Target)
	}
	if spec.Model == nil {
		cp := *spec
		cp.Model, spec = e.Target, &cp
	}
	if spec.Model != e.Target {
		return nil, invalid(inc.Edge, "relation leads to %s, not %s", e.Target.Name, spec.Model.Name)
	}
	if !e.ToMany() && (spec.Predicate != nil || spec.Cursor != nil || spec.Limit != nil || spec.Offset > 0 || len(spec.Distinct) > 0 || len(spec.Order) > 0) {
		return nil, invalid(inc.Edge, "filtering and pagination are only valid on to-many relations")
	}
	// join is the field of the related rows matched against parent keys.
	var join, parentKey *graph.Field
	if e.Inverse {
		join, parentKey = e.Target.ID, e.Field
	} else {
		join, parentKey = e.Field, e.Owner.ID
	}
	var keys []any
	for _, r := range parents {
		if v := r.Values[parentKey.Name]; v != nil {
			keys = append(keys, v)
		}
	}
	keys = dataloader.Unique(keys)
	p, err := newPlan(spec, join)
	if err != nil {
		return nil, err
	}
	var children []*Record
	for _, chunk := range dataloader.Chunk(keys, BatchSize) {
		sel, err := p.selector(c)
		if err != nil {
			return nil, err
		}
		args := make([]any, len(chunk))
		for i, k := range chunk {
			if args[i], err = Encode(join, k); err != nil {
				return nil, err
			}
		}
		sel.Where(sql.In(sel.C(join.Column), args...))
		p.order(sel, false)
		recs, err := c.records(ctx, sel, p.model, p.fetch)
		if err != nil {
			return nil, err
		}
		children = append(children, recs...)
	}
	groups := dataloader.GroupByKey(children, func(r *Record) string { return keyOf(r.Values[join.Name]) })
	var kept []*Record
	for k, g := range groups {
		if p.paged {
			g = p.paginate(g)
			groups[k] = g
		}
		kept = append(kept, g...)
	}
	if err := p.load(ctx, c, kept); err != nil {
		return nil, err
	}
	p.strip(kept)
	out := make([]any, len(parents))
	for i, r := range parents {
		var g []*Record
		if v := r.Values[parentKey.Name]; v != nil {
			g = groups[keyOf(v)]
		}
		switch {
		case e.ToMany() && g == nil:
			out[i] = []*Record{}
		case e.ToMany():
			out[i] = g
		case len(g) == 0:
			out[i] = (*Record)(nil)
		default:
			out[i] = g[0]
		}
	}
	return out, nil
}

// loadCount returns the number of related rows of every parent.
func loadCount(ctx context.Context, c Conn, e *graph.Edge, cs *CountSpec, parents []*Record) ([]int, error) {
	var keys []any
	for _, r := range parents {
		keys = append(keys, r.Values[e.Owner.ID.Name])
	}
	keys = dataloader.Unique(keys)
	counts := make(map[string]int, len(keys))
	for _, chunk := range dataloader.Chunk(keys, BatchSize) {
		t := sql.Table(e.Target.Table)
		sel := sql.Dialect(c.Dialect).Select().From(t)
		if err := EvalP(e.Target, cs.Predicate, sel); err != nil {
			return nil, err
		}
		args := make([]any, len(chunk))
		for i, k := range chunk {
			var err error
			if args[i], err = Encode(e.Field, k); err != nil {
				return nil, err
			}
		}
		sel.Where(sql.In(t.C(e.Field.Column), args...))
		sel.Select(t.C(e.Field.Column)).AppendSelectExpr(sql.Count("*")).GroupBy(t.C(e.Field.Column))
		query, qargs := sel.Query()
		var rows sql.Rows
		if err := c.Query(ctx, query, qargs, &rows); err != nil {
			return nil, Classify(c.Graph, err)
		}
		if err := scanCounts(&rows, e.Field, counts); err != nil {
			return nil, Classify(c.Graph, err)
		}
	}
	out := make([]int, len(parents))
	for i, r := range parents {
		out[i] = counts[keyOf(r.Values[e.Owner.ID.Name])]
	}
	return out, nil
}

func scanCounts(rows *sql.Rows, f *graph.Field, counts map[string]int) error {
	defer rows.Close()
	for rows.Next() {
		var k, n any
		if err := rows.Scan(&k, &n); err != nil {
			return err
		}
		key, err := Decode(f, k)
		if err != nil {
			return err
		}
		c, err := toInt64(n)
		if err != nil {
			return err
		}
		counts[keyOf(key)] = int(c)
	}
	return rows.Err()
}
