package client

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/dialect"
	"github.com/syssam/socialgraph/dialect/sql"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
)

// Isolation levels of TxOptions.
const (
	ReadUncommitted = stdsql.LevelReadUncommitted
	ReadCommitted   = stdsql.LevelReadCommitted
	RepeatableRead  = stdsql.LevelRepeatableRead
	Serializable    = stdsql.LevelSerializable
)

// TxOptions configures a transaction. Zero durations take the defaults of
// the client.
type TxOptions struct {
	// Isolation is ignored on SQLite, where every transaction is
	// serializable.
	Isolation stdsql.IsolationLevel
	ReadOnly  bool
	// MaxWait bounds the wait for a connection.
	MaxWait time.Duration
	// Timeout bounds the transaction body. A breach rolls it back.
	Timeout time.Duration
}

// merge fills the unset options from the defaults d.
func (o *TxOptions) merge(d TxOptions) TxOptions {
	if o == nil {
		return d
	}
	out := *o
	if out.MaxWait == 0 {
		out.MaxWait = d.MaxWait
	}
	if out.Timeout == 0 {
		out.Timeout = d.Timeout
	}
	return out
}

// begin starts a transaction on the driver, waiting at most o.MaxWait for
// a connection when the driver supports it.
func (c config) begin(ctx context.Context, o TxOptions) (dialect.Tx, error) {
	var (
		tx  dialect.Tx
		err error
	)
	if a, ok := c.driver.(sql.TxAcquirer); ok {
		tx, err = a.AcquireTx(ctx, &sql.TxOptions{Isolation: o.Isolation, ReadOnly: o.ReadOnly}, o.MaxWait)
	} else {
		tx, err = c.driver.Tx(ctx)
	}
	switch {
	case errors.Is(err, sql.ErrTxAcquire):
		return nil, socialgraph.NewInfraError(socialgraph.InfraTxAcquire, err)
	case err != nil:
		return nil, sqlgraph.Classify(c.graph, err)
	}
	return tx, nil
}

// inTx runs fn in the transaction of the config, or in a new one that is
// committed when fn succeeds.
func (c config) inTx(ctx context.Context, fn func(sqlgraph.Conn) error) error {
	if _, ok := c.driver.(*txDriver); ok {
		return fn(c.conn())
	}
	tx, err := c.begin(ctx, c.tx)
	if err != nil {
		return err
	}
	cfg := c
	cfg.driver = &txDriver{drv: c.driver, tx: tx}
	if err := fn(cfg.conn()); err != nil {
		c.log.DebugContext(ctx, "rolling back transaction", "error", err)
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: rolling back transaction: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return sqlgraph.Classify(c.graph, err)
	}
	return nil
}

// Committer is the interface that wraps the Commit method.
type Committer interface {
	Commit(context.Context, *Tx) error
}

// The CommitFunc type is an adapter to allow the use of ordinary
// function as a Committer. If f is a function with the appropriate
// signature, CommitFunc(f) is a Committer that calls f.
type CommitFunc func(context.Context, *Tx) error

// Commit calls f(ctx, tx).
func (f CommitFunc) Commit(ctx context.Context, tx *Tx) error {
	return f(ctx, tx)
}

// CommitHook defines the "commit middleware". A function that gets a Committer
// and returns a Committer.
type CommitHook func(Committer) Committer

// Rollbacker is the interface that wraps the Rollback method.
type Rollbacker interface {
	Rollback(context.Context, *Tx) error
}

// The RollbackFunc type is an adapter to allow the use of ordinary
// function as a Rollbacker.
type RollbackFunc func(context.Context, *Tx) error

// Rollback calls f(ctx, tx).
func (f RollbackFunc) Rollback(ctx context.Context, tx *Tx) error {
	return f(ctx, tx)
}

// RollbackHook defines the "rollback middleware".
type RollbackHook func(Rollbacker) Rollbacker

// Tx is a transactional client. Its delegates run every operation in the
// transaction.
type Tx struct {
	config
	delegates

	// ctx lives for the whole transaction.
	ctx context.Context
	dtx dialect.Tx

	mu         sync.Mutex
	onCommit   []CommitHook
	onRollback []RollbackHook
}

func newTx(ctx context.Context, cfg config, tx dialect.Tx) *Tx {
	cfg.driver = &txDriver{drv: cfg.driver, tx: tx}
	t := &Tx{config: cfg, ctx: ctx, dtx: tx}
	t.delegates.init(t.config)
	return t
}

// Tx returns a new transactional client with the default options of the
// client.
func (c *Client) Tx(ctx context.Context) (*Tx, error) {
	return c.BeginTx(ctx, nil)
}

// BeginTx returns a transactional client with the given options. The
// Timeout option is not applied; bound ctx instead, or use Transaction.
func (c *Client) BeginTx(ctx context.Context, opts *TxOptions) (*Tx, error) {
	if _, ok := c.driver.(*txDriver); ok {
		return nil, errors.New("socialgraph: cannot start a transaction within a transaction")
	}
	tx, err := c.begin(ctx, opts.merge(c.tx))
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return newTx(ctx, c.config, tx), nil
}

// Commit commits the transaction.
func (tx *Tx) Commit() error {
	var fn Committer = CommitFunc(func(context.Context, *Tx) error {
		return tx.dtx.Commit()
	})
	tx.mu.Lock()
	hooks := append([]CommitHook(nil), tx.onCommit...)
	tx.mu.Unlock()
	for i := len(hooks) - 1; i >= 0; i-- {
		fn = hooks[i](fn)
	}
	if err := fn.Commit(tx.ctx, tx); err != nil {
		return sqlgraph.Classify(tx.graph, err)
	}
	return nil
}

// OnCommit adds a hook to call on commit.
func (tx *Tx) OnCommit(f CommitHook) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.onCommit = append(tx.onCommit, f)
}

// Rollback rolls back the transaction.
func (tx *Tx) Rollback() error {
	var fn Rollbacker = RollbackFunc(func(context.Context, *Tx) error {
		return tx.dtx.Rollback()
	})
	tx.mu.Lock()
	hooks := append([]RollbackHook(nil), tx.onRollback...)
	tx.mu.Unlock()
	for i := len(hooks) - 1; i >= 0; i-- {
		fn = hooks[i](fn)
	}
	return fn.Rollback(tx.ctx, tx)
}

// OnRollback adds a hook to call on rollback.
func (tx *Tx) OnRollback(f RollbackHook) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.onRollback = append(tx.onRollback, f)
}

// Context returns the context of the transaction. It is done when the
// body timeout of Transaction expires.
func (tx *Tx) Context() context.Context { return tx.ctx }

// Client returns a Client that binds to current transaction.
func (tx *Tx) Client() *Client {
	c := &Client{config: tx.config}
	c.init()
	return c
}

// Transaction runs fn in a transaction and commits it when fn returns nil.
// The transaction is rolled back when fn fails or panics, or when it runs
// longer than the Timeout option; fn should use tx.Context() for its
// operations. Waiting for a connection longer than MaxWait fails with an
// InfraError of kind tx_acquire.
func (c *Client) Transaction(ctx context.Context, opts *TxOptions, fn func(*Tx) error) (err error) {
	if _, ok := c.driver.(*txDriver); ok {
		return errors.New("socialgraph: cannot start a transaction within a transaction")
	}
	o := opts.merge(c.tx)
	txCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	dtx, err := c.begin(txCtx, o)
	if err != nil {
		return err
	}
	bodyCtx := txCtx
	if o.Timeout > 0 {
		var cancelBody context.CancelFunc
		bodyCtx, cancelBody = context.WithTimeout(txCtx, o.Timeout)
		defer cancelBody()
	}
	tx := newTx(bodyCtx, c.config, dtx)
	timedOut := func() bool {
		return errors.Is(bodyCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	}
	rollback := func(cause error) error {
		c.log.DebugContext(ctx, "rolling back transaction", "error", cause)
		if rerr := dtx.Rollback(); rerr != nil && !errors.Is(rerr, stdsql.ErrTxDone) {
			return fmt.Errorf("%w: rolling back transaction: %v", cause, rerr)
		}
		return cause
	}
	defer func() {
		if v := recover(); v != nil {
			_ = dtx.Rollback()
			panic(v)
		}
	}()
	if err := fn(tx); err != nil {
		if timedOut() {
			err = socialgraph.NewInfraError(socialgraph.InfraTxTimeout, err)
		}
		return rollback(err)
	}
	if timedOut() {
		return rollback(socialgraph.NewInfraError(socialgraph.InfraTxTimeout, fmt.Errorf("transaction exceeded %s", o.Timeout)))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Pending is an operation that has not run yet: a Query, an aggregate, a
// group by or a Write.
type Pending interface {
	execIn(ctx context.Context, cfg config) (any, error)
}

// Batch runs the operations in order in one transaction and returns their
// results. The first failure rolls back all of them.
func (c *Client) Batch(ctx context.Context, ops ...Pending) ([]any, error) {
	results := make([]any, 0, len(ops))
	err := c.Transaction(ctx, nil, func(tx *Tx) error {
		for i, op := range ops {
			res, err := op.execIn(tx.Context(), tx.config)
			if err != nil {
				return fmt.Errorf("batch operation %d: %w", i, err)
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// txDriver wraps the dialect driver to provide transaction capabilities.
type txDriver struct {
	// the driver we started the transaction from.
	drv dialect.Driver
	// tx is the underlying transaction.
	tx dialect.Tx
}

// Exec implements the dialect.Driver interface.
func (tx *txDriver) Exec(ctx context.Context, query string, args, v any) error {
	return tx.tx.Exec(ctx, query, args, v)
}

// Query implements the dialect.Driver interface.
func (tx *txDriver) Query(ctx context.Context, query string, args, v any) error {
	return tx.tx.Query(ctx, query, args, v)
}

// Close is a nop close.
func (*txDriver) Close() error { return nil }

// Dialect returns the dialect of the driver.
func (tx *txDriver) Dialect() string { return tx.drv.Dialect() }

// Tx returns the transaction wrapper (txDriver) to avoid Commit or Rollback calls
// from the internal builders. Should be called only by the internal builders.
func (tx *txDriver) Tx(context.Context) (dialect.Tx, error) { return tx, nil }

// Commit is a nop commit for the internal builders.
// User must call `Tx.Commit` in order to commit the transaction.
func (*txDriver) Commit() error { return nil }

// Rollback is a nop rollback for the internal builders.
// User must call `Tx.Rollback` in order to rollback the transaction.
func (*txDriver) Rollback() error { return nil }

var _ dialect.Driver = (*txDriver)(nil)
