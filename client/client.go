// Package client is the typed data-access layer of the social graph.
//
// A Client holds one delegate per model. Delegate methods return lazy
// handles; nothing reaches the database before Exec.
//
//	client, err := client.Open("postgres", dsn)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//	f, err := client.Follow.Create(client.FollowCreateInput{
//		FollowerProfileID:  fan.ID,
//		FollowingProfileID: artist.ID,
//	}).Exec(ctx)
package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/syssam/socialgraph"
	"github.com/syssam/socialgraph/dialect"
	"github.com/syssam/socialgraph/dialect/sql"
	"github.com/syssam/socialgraph/dialect/sql/sqlgraph"
	"github.com/syssam/socialgraph/graph"
	"github.com/syssam/socialgraph/models"
)

// Client is the client that holds all model delegates.
type Client struct {
	config
	// Schema creates the tables of the registry.
	Schema *Schema
	delegates
}

// delegates holds the model delegates shared by Client and Tx.
type delegates struct {
	User              *UserClient
	Account           *AccountClient
	Session           *SessionClient
	VerificationToken *VerificationTokenClient
	Profile           *ProfileClient
	ProfileMember     *ProfileMemberClient
	Follow            *FollowClient
	Block             *BlockClient
	Mute              *MuteClient
}

func (d *delegates) init(cfg config) {
	d.User = &UserClient{newDelegate(cfg, userKind)}
	d.Account = &AccountClient{newDelegate(cfg, accountKind)}
	d.Session = &SessionClient{newDelegate(cfg, sessionKind)}
	d.VerificationToken = &VerificationTokenClient{newDelegate(cfg, verificationTokenKind)}
	d.Profile = &ProfileClient{newDelegate(cfg, profileKind)}
	d.ProfileMember = &ProfileMemberClient{newDelegate(cfg, profileMemberKind)}
	d.Follow = &FollowClient{newDelegate(cfg, followKind)}
	d.Block = &BlockClient{newDelegate(cfg, blockKind)}
	d.Mute = &MuteClient{newDelegate(cfg, muteKind)}
}

type (
	// Option configures the client.
	Option func(*config)

	// config holds the configuration of the client.
	config struct {
		driver dialect.Driver
		graph  *graph.Graph
		log    *slog.Logger
		debug  bool
		// hooks and inters are keyed by model name and shared by the
		// transactional clients.
		hooks  map[string][]socialgraph.Hook
		inters map[string][]socialgraph.Interceptor
		tx     TxOptions
	}
)

// Default transaction bounds.
const (
	DefaultMaxWait = 2 * time.Second
	DefaultTimeout = 5 * time.Second
)

func (c *config) options(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
	if c.debug {
		c.driver = debugDriver(c.driver, c.log)
	}
}

// Driver sets the driver of the client.
func Driver(driver dialect.Driver) Option {
	return func(c *config) {
		c.driver = driver
	}
}

// Log sets the logger of the client. It receives transaction rollbacks,
// cascading deletes and, in debug mode, every statement.
func Log(logger *slog.Logger) Option {
	return func(c *config) {
		c.log = logger
	}
}

// Debug enables statement logging on the client.
func Debug() Option {
	return func(c *config) {
		c.debug = true
	}
}

// Graph sets the model registry. It defaults to models.Graph.
func Graph(g *graph.Graph) Option {
	return func(c *config) {
		c.graph = g
	}
}

// TxDefaults sets the options of transactions started without options.
func TxDefaults(opts TxOptions) Option {
	return func(c *config) {
		c.tx = opts
	}
}

// debugDriver wraps plain SQL drivers only; a stats driver keeps its own
// logging.
func debugDriver(drv dialect.Driver, logger *slog.Logger) dialect.Driver {
	if d, ok := drv.(*sql.Driver); ok {
		return sql.NewDebugDriver(d, logger)
	}
	return drv
}

// NewClient creates a new client configured with the given options.
func NewClient(opts ...Option) *Client {
	cfg := config{
		graph:  models.Graph(),
		log:    slog.Default(),
		hooks:  make(map[string][]socialgraph.Hook),
		inters: make(map[string][]socialgraph.Interceptor),
		tx:     TxOptions{MaxWait: DefaultMaxWait, Timeout: DefaultTimeout},
	}
	cfg.options(opts...)
	client := &Client{config: cfg}
	client.init()
	return client
}

func (c *Client) init() {
	c.Schema = &Schema{config: c.config}
	c.delegates.init(c.config)
}

// Open opens a database connection and returns the client. The driver
// name is a database/sql driver name: postgres, pgx, mysql or sqlite.
func Open(driverName, dataSourceName string, options ...Option) (*Client, error) {
	switch dialect.Normalize(driverName) {
	case dialect.MySQL, dialect.Postgres, dialect.SQLite:
		drv, err := sql.Open(driverName, dataSourceName)
		if err != nil {
			return nil, err
		}
		return NewClient(append(options, Driver(drv))...), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %q", driverName)
	}
}

// Debug returns a new client logging every statement.
func (c *Client) Debug() *Client {
	if c.debug {
		return c
	}
	cfg := c.config
	cfg.driver = debugDriver(c.driver, c.log)
	cfg.debug = true
	client := &Client{config: cfg}
	client.init()
	return client
}

// Close closes the database connection and prevents new queries from starting.
func (c *Client) Close() error {
	return c.driver.Close()
}

// Use adds the mutation hooks to all the model delegates.
// In order to add hooks to a specific model, use: `client.Profile.Use(...)`.
func (c *Client) Use(hooks ...socialgraph.Hook) {
	for _, m := range c.graph.Models {
		c.hooks[m.Name] = append(c.hooks[m.Name], hooks...)
	}
}

// Intercept adds the query interceptors to all the model delegates.
// In order to add interceptors to a specific model, use: `client.Profile.Intercept(...)`.
func (c *Client) Intercept(inters ...socialgraph.Interceptor) {
	for _, m := range c.graph.Models {
		c.inters[m.Name] = append(c.inters[m.Name], inters...)
	}
}

// conn returns the storage handle of the config.
func (c config) conn() sqlgraph.Conn {
	_, tx := c.driver.(*txDriver)
	return sqlgraph.Conn{ExecQuerier: c.driver, Dialect: c.driver.Dialect(), Graph: c.graph, Tx: tx}
}

// known reports whether err already belongs to the error taxonomy.
func known(err error) bool {
	return socialgraph.IsValidationError(err) ||
		socialgraph.IsNotFound(err) ||
		socialgraph.IsNotSingular(err) ||
		socialgraph.IsConstraintError(err) ||
		socialgraph.IsInfraError(err) ||
		errors.Is(err, context.Canceled)
}

func queryError(model, op string, err error) error {
	if err == nil || known(err) {
		return err
	}
	return socialgraph.NewQueryError(model, op, err)
}

func mutationError(model, op string, err error) error {
	if err == nil || known(err) {
		return err
	}
	return socialgraph.NewMutationError(model, op, err)
}
