// Package config loads the runtime configuration of socialgraph: the
// database connection, transaction defaults, logging, query statistics and
// the migrations directory.
//
// Values are resolved in order: defaults, the YAML file, a .env file and
// finally SOCIALGRAPH_* environment variables.
package config

import (
	stdsql "database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/syssam/socialgraph/dialect"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "SOCIALGRAPH"

// Config is the configuration of a socialgraph deployment.
type Config struct {
	Database    Database    `yaml:"database"`
	Transaction Transaction `yaml:"transaction"`
	Log         Log         `yaml:"log"`
	Stats       Stats       `yaml:"stats"`
	Migrations  Migrations  `yaml:"migrations"`
}

// Database configures the connection pool.
type Database struct {
	// Driver is a database/sql driver name: postgres, pgx, mysql or sqlite.
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// Dialect returns the SQL dialect of the driver.
func (d Database) Dialect() string { return dialect.Normalize(d.Driver) }

// Transaction holds the defaults of interactive transactions.
type Transaction struct {
	MaxWait   time.Duration `yaml:"max_wait"`
	Timeout   time.Duration `yaml:"timeout"`
	Isolation string        `yaml:"isolation"`
}

// IsolationLevel parses the configured isolation level. An empty level is
// the driver default.
func (t Transaction) IsolationLevel() (stdsql.IsolationLevel, error) {
	switch strings.ToLower(strings.NewReplacer("_", " ", "-", " ").Replace(t.Isolation)) {
	case "", "default":
		return stdsql.LevelDefault, nil
	case "read uncommitted":
		return stdsql.LevelReadUncommitted, nil
	case "read committed":
		return stdsql.LevelReadCommitted, nil
	case "repeatable read":
		return stdsql.LevelRepeatableRead, nil
	case "serializable":
		return stdsql.LevelSerializable, nil
	default:
		return stdsql.LevelDefault, fmt.Errorf("config: unknown isolation level %q", t.Isolation)
	}
}

// Log configures the logger built by NewLogger.
type Log struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is json or text.
	Format string `yaml:"format"`
}

// Stats configures statement statistics.
type Stats struct {
	Enabled       bool          `yaml:"enabled"`
	SlowThreshold time.Duration `yaml:"slow_threshold"`
}

// Migrations configures the migration files.
type Migrations struct {
	Dir string `yaml:"dir"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Database: Database{
			Driver:       "sqlite",
			DSN:          "file:socialgraph.db?_pragma=foreign_keys(1)",
			MaxOpenConns: 10,
			MaxIdleConns: 2,
		},
		Transaction: Transaction{
			MaxWait: 2 * time.Second,
			Timeout: 5 * time.Second,
		},
		Log: Log{
			Level:  "info",
			Format: "json",
		},
		Stats: Stats{
			SlowThreshold: 100 * time.Millisecond,
		},
		Migrations: Migrations{
			Dir: "migrations",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies the
// environment on top. An empty path skips the file. envFile names a .env
// file to load first; a missing .env file is not an error.
func Load(path, envFile string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config: loading %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes a YAML document over the defaults. The environment is not
// consulted.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, cfg.Validate()
}

func envKey(key string) string {
	return EnvPrefix + "_" + key
}

// applyEnv overrides the fields that have a SOCIALGRAPH_* variable set.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envKey(key)); ok {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(envKey(key)); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s: %w", envKey(key), err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(envKey(key)); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s: %w", envKey(key), err))
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(envKey(key)); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s: %w", envKey(key), err))
				return
			}
			*dst = b
		}
	}
	str("DB_DRIVER", &c.Database.Driver)
	str("DB_DSN", &c.Database.DSN)
	num("DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	num("DB_MAX_IDLE_CONNS", &c.Database.MaxIdleConns)
	dur("DB_CONN_MAX_LIFETIME", &c.Database.ConnMaxLifetime)
	dur("TX_MAX_WAIT", &c.Transaction.MaxWait)
	dur("TX_TIMEOUT", &c.Transaction.Timeout)
	str("TX_ISOLATION", &c.Transaction.Isolation)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	boolean("STATS_ENABLED", &c.Stats.Enabled)
	dur("STATS_SLOW_THRESHOLD", &c.Stats.SlowThreshold)
	str("MIGRATIONS_DIR", &c.Migrations.Dir)
	return errors.Join(errs...)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Database.Dialect() {
	case dialect.Postgres, dialect.MySQL, dialect.SQLite:
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("config: database dsn is required")
	}
	if c.Transaction.MaxWait < 0 || c.Transaction.Timeout < 0 {
		return errors.New("config: transaction durations must not be negative")
	}
	if _, err := c.Transaction.IsolationLevel(); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}
