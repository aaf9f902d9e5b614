package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/syssam/socialgraph/config"
	"github.com/syssam/socialgraph/dialect"
	"github.com/syssam/socialgraph/dialect/sql/schema"
	"github.com/syssam/socialgraph/models"
)

// env holds what every command needs: the resolved configuration and the
// logger built from it.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
}

func load(cmd *cli.Command, out io.Writer) (*env, error) {
	cfg, err := config.Load(cmd.String("config"), cmd.String("env-file"))
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg.Log, cmd.Root().ErrWriter)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, out: out}, nil
}

func tables() ([]*schema.Table, error) {
	ts, err := schema.Tables(models.Graph())
	if err != nil {
		return nil, err
	}
	if r := schema.ValidateSchema(ts); r.HasErrors() {
		return nil, fmt.Errorf("invalid schema:\n%s", r)
	}
	return ts, nil
}

func newApp(out, errOut io.Writer) *cli.Command {
	// action adapts a command body to the configuration loading shared by
	// all commands.
	action := func(fn func(context.Context, *cli.Command, *env) error) cli.ActionFunc {
		return func(ctx context.Context, cmd *cli.Command) error {
			e, err := load(cmd, out)
			if err != nil {
				return err
			}
			return fn(ctx, cmd, e)
		}
	}
	return &cli.Command{
		Name:      "socialgraph",
		Usage:     "manage the social graph database schema",
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration `FILE`",
				Sources: cli.EnvVars(config.EnvPrefix + "_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv `FILE` loaded before the environment",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "ddl",
				Usage: "print the statements creating the tables",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "dialect",
						Usage: "SQL dialect; defaults to the configured database",
					},
				},
				Action: action(ddl),
			},
			{
				Name:  "migrate",
				Usage: "write and apply migration files",
				Commands: []*cli.Command{
					{
						Name:      "gen",
						Usage:     "write a migration creating the tables",
						ArgsUsage: "[title]",
						Action:    action(migrateGen),
					},
					{
						Name:   "up",
						Usage:  "apply all pending migrations",
						Action: action(migrateUp),
					},
					{
						Name:      "down",
						Usage:     "roll back migrations",
						ArgsUsage: "[steps]",
						Action:    action(migrateDown),
					},
					{
						Name:   "version",
						Usage:  "print the current migration version",
						Action: action(migrateVersion),
					},
					{
						Name:      "force",
						Usage:     "set the migration version without running migrations",
						ArgsUsage: "version",
						Action:    action(migrateForce),
					},
				},
			},
		},
	}
}

func ddl(_ context.Context, cmd *cli.Command, e *env) error {
	d := e.cfg.Database.Dialect()
	if v := cmd.String("dialect"); v != "" {
		d = dialect.Normalize(v)
	}
	ts, err := tables()
	if err != nil {
		return err
	}
	for _, stmt := range schema.DDL(d, ts) {
		if _, err := fmt.Fprintf(e.out, "%s;\n", stmt); err != nil {
			return err
		}
	}
	return nil
}

func migrateGen(_ context.Context, cmd *cli.Command, e *env) error {
	ts, err := tables()
	if err != nil {
		return err
	}
	title := cmd.Args().First()
	path, err := schema.WriteMigration(e.cfg.Migrations.Dir, title, e.cfg.Database.Dialect(), ts, time.Now())
	if err != nil {
		return err
	}
	e.logger.Info("migration written", "path", path)
	_, err = fmt.Fprintln(e.out, path)
	return err
}

// withRunner opens the configured database and runs fn with a migration
// runner on it.
func withRunner(e *env, fn func(*schema.Runner) error) error {
	drv, err := e.cfg.OpenDriver()
	if err != nil {
		return err
	}
	r, err := schema.NewRunner(drv.DB(), e.cfg.Database.Driver, e.cfg.Migrations.Dir, e.logger)
	if err != nil {
		drv.Close()
		return err
	}
	defer r.Close()
	return fn(r)
}

func migrateUp(_ context.Context, _ *cli.Command, e *env) error {
	return withRunner(e, (*schema.Runner).Up)
}

func migrateDown(_ context.Context, cmd *cli.Command, e *env) error {
	steps := 1
	if arg := cmd.Args().First(); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid steps %q", arg)
		}
		steps = n
	}
	return withRunner(e, func(r *schema.Runner) error {
		return r.Down(steps)
	})
}

func migrateVersion(_ context.Context, _ *cli.Command, e *env) error {
	return withRunner(e, func(r *schema.Runner) error {
		v, dirty, err := r.Version()
		if err != nil {
			return err
		}
		if dirty {
			_, err = fmt.Fprintf(e.out, "%d (dirty)\n", v)
			return err
		}
		_, err = fmt.Fprintf(e.out, "%d\n", v)
		return err
	})
}

func migrateForce(_ context.Context, cmd *cli.Command, e *env) error {
	v, err := strconv.Atoi(cmd.Args().First())
	if err != nil {
		return fmt.Errorf("invalid version %q", cmd.Args().First())
	}
	return withRunner(e, func(r *schema.Runner) error {
		return r.Force(v)
	})
}
