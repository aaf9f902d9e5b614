package config

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/syssam/socialgraph/client"
	"github.com/syssam/socialgraph/dialect"
	"github.com/syssam/socialgraph/dialect/sql"

	// Drivers for the supported dialects.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// OpenDriver opens the configured database and applies the pool settings.
func (c Config) OpenDriver() (*sql.Driver, error) {
	drv, err := sql.Open(c.Database.Driver, c.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("config: opening %s database: %w", c.Database.Driver, err)
	}
	db := drv.DB()
	if c.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.Database.MaxIdleConns)
	}
	if c.Database.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(c.Database.ConnMaxLifetime)
	}
	return drv, nil
}

// Open opens the database and returns a client using the transaction
// defaults of c. When statistics are enabled the driver records them,
// logs slow statements and, with a non-nil reg, exports them to
// Prometheus.
func (c Config) Open(logger *slog.Logger, reg prometheus.Registerer, opts ...client.Option) (*client.Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	isolation, err := c.Transaction.IsolationLevel()
	if err != nil {
		return nil, err
	}
	drv, err := c.OpenDriver()
	if err != nil {
		return nil, err
	}
	var d dialect.Driver = drv
	if c.Stats.Enabled {
		sopts := []sql.StatsOption{
			sql.WithSlowThreshold(c.Stats.SlowThreshold),
			sql.WithSlowQueryLog(logger),
		}
		if reg != nil {
			sopts = append(sopts, sql.WithMetrics(sql.NewMetrics(reg)))
		}
		d = sql.NewStatsDriver(drv, sopts...)
	}
	logger.Debug("database opened", "dialect", c.Database.Dialect(), "stats", c.Stats.Enabled)
	return client.NewClient(append([]client.Option{
		client.Driver(d),
		client.Log(logger),
		client.TxDefaults(client.TxOptions{
			Isolation: isolation,
			MaxWait:   c.Transaction.MaxWait,
			Timeout:   c.Transaction.Timeout,
		}),
	}, opts...)...), nil
}
