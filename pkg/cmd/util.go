package cmd

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/config"
	"github.com/pseudomuto/osprey/pkg/database"
	"github.com/pseudomuto/osprey/pkg/ledger"
	"github.com/pseudomuto/osprey/pkg/metrics"
	"github.com/pseudomuto/osprey/pkg/migrator"
	"github.com/urfave/cli/v3"
)

func dirFlag(cfg *config.Config) cli.Flag {
	return &cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"m"},
		Usage:   "directory containing the tagged SQL files",
		Value:   cfg.Dir,
		Config: cli.StringConfig{
			TrimSpace: true,
		},
	}
}

func tagFlag(cfg *config.Config) cli.Flag {
	return &cli.StringFlag{
		Name:    "tag",
		Aliases: []string{"g"},
		Usage:   "the tag to migrate",
		Value:   cfg.Tag,
		Config: cli.StringConfig{
			TrimSpace: true,
		},
	}
}

func metricsFileFlag(cfg *config.Config) cli.Flag {
	return &cli.StringFlag{
		Name:  "metrics-file",
		Usage: "write Prometheus metrics for this run to `FILE`",
		Value: cfg.Metrics.File,
		Config: cli.StringConfig{
			TrimSpace: true,
		},
	}
}

// databaseFlags returns the connection flags shared by every command that
// talks to the database. Defaults come from the configuration; environment
// variables override them and explicit flags override both.
func databaseFlags(cfg *config.Config) []cli.Flag {
	db := cfg.Database

	password := &cli.StringFlag{
		Name:    "password",
		Usage:   "database password",
		Value:   db.Password,
		Sources: cli.EnvVars("POSTGRES_PASSWORD"),
	}
	if db.Password != "" {
		password.DefaultText = "from config"
	}

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "driver",
			Usage:   "database driver (postgres, sqlite, clickhouse)",
			Value:   db.Driver,
			Sources: cli.EnvVars("OSPREY_DRIVER"),
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
		&cli.StringFlag{
			Name:    "dsn",
			Usage:   "full connection string; overrides host, port, user, password and database",
			Value:   db.DSN,
			Sources: cli.EnvVars("OSPREY_DSN"),
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
		&cli.StringFlag{
			Name:    "host",
			Usage:   "database host",
			Value:   db.Host,
			Sources: cli.EnvVars("POSTGRES_HOST"),
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
		&cli.IntFlag{
			Name:  "port",
			Usage: "database port (driver default when unset)",
			Value: db.Port,
		},
		&cli.StringFlag{
			Name:    "user",
			Usage:   "database user",
			Value:   db.User,
			Sources: cli.EnvVars("POSTGRES_USER"),
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
		password,
		&cli.StringFlag{
			Name:    "database",
			Usage:   "database name (file path for sqlite)",
			Value:   db.Name,
			Sources: cli.EnvVars("POSTGRES_DB"),
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
		&cli.StringFlag{
			Name:    "table",
			Aliases: []string{"t"},
			Usage:   "name of the migration table",
			Value:   cfg.Table,
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
		&cli.StringFlag{
			Name:  "cafile",
			Usage: "Certificate authority pem",
			Value: db.CAFile,
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
		&cli.StringFlag{
			Name:  "certfile",
			Usage: "Certificate public key file",
			Value: db.CertFile,
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
		&cli.StringFlag{
			Name:  "keyfile",
			Usage: "Certificate private key file",
			Value: db.KeyFile,
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
		&cli.UintFlag{
			Name:  "connect-retries",
			Usage: "number of times to retry the initial connection",
			Value: uint(db.ConnectRetries),
		},
	}
}

func databaseOptions(cmd *cli.Command, cfg *config.Config) database.Options {
	opts := cfg.DatabaseOptions()
	opts.Driver = database.Driver(cmd.String("driver"))
	opts.DSN = cmd.String("dsn")
	opts.Host = cmd.String("host")
	opts.Port = cmd.Int("port")
	opts.User = cmd.String("user")
	opts.Password = cmd.String("password")
	opts.Name = cmd.String("database")
	opts.TLS = database.TLSOptions{
		CAFile:   cmd.String("cafile"),
		CertFile: cmd.String("certfile"),
		KeyFile:  cmd.String("keyfile"),
	}
	opts.ConnectRetries = uint64(cmd.Uint("connect-retries"))

	return opts
}

// openLedger connects to the database and returns the client along with the
// ledger stored in the --table table. The caller closes the client.
func openLedger(ctx context.Context, cmd *cli.Command, cfg *config.Config) (*database.Client, *ledger.SQL, error) {
	opts := databaseOptions(cmd, cfg)

	client, err := database.Open(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	l, err := ledger.NewSQL(client, client.Driver(), cmd.String("table"))
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	slog.Debug("Opened migration table", "driver", client.Driver(), "table", cmd.String("table"))
	return client, l, nil
}

func loadDir(cmd *cli.Command) (*migrator.Dir, error) {
	dir, err := migrator.Open(cmd.String("dir"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load migrations")
	}

	slog.Info("Loaded migrations", "dir", cmd.String("dir"), "files", len(dir.Files))
	return dir, nil
}

// output returns the writer for command output (as opposed to logs).
func output(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

// recordRun writes metrics for a finished command when --metrics-file is set.
// runErr is the command's result and is returned unchanged unless writing the
// metrics fails on an otherwise successful run.
func recordRun(cmd *cli.Command, rec *metrics.Recorder, start time.Time, runErr error) error {
	path := cmd.String("metrics-file")
	if path == "" {
		return runErr
	}

	rec.ObserveRun(cmd.Name, time.Since(start), runErr)
	if err := rec.WriteFile(path); err != nil {
		if runErr != nil {
			slog.Warn("Failed to write metrics", "err", err)
			return runErr
		}
		return err
	}

	return runErr
}
