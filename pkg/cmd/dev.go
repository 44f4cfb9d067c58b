package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/config"
	"github.com/pseudomuto/osprey/pkg/database"
	"github.com/pseudomuto/osprey/pkg/docker"
	"github.com/pseudomuto/osprey/pkg/executor"
	"github.com/pseudomuto/osprey/pkg/ledger"
	"github.com/pseudomuto/osprey/pkg/sanity"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type devParams struct {
	fx.In

	Config *config.Config
}

// devCmd creates the dev command, which starts a throwaway database in Docker,
// applies the migrations to it and keeps it running until interrupted.
//
// Example usage:
//
//	osprey dev
//	osprey dev --driver clickhouse --image-version 25.7 --tag up
func devCmd(p devParams) *cli.Command {
	driver := p.Config.Database.Driver
	if driver == string(database.SQLite) {
		driver = string(database.Postgres)
	}

	return &cli.Command{
		Name:  "dev",
		Usage: "Start a local database and apply the migrations to it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "driver",
				Usage: "database to run (postgres, clickhouse)",
				Value: driver,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringFlag{
				Name:  "image-version",
				Usage: "image version to run (driver default when unset)",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			tagFlag(p.Config),
			dirFlag(p.Config),
			&cli.StringFlag{
				Name:    "table",
				Aliases: []string{"t"},
				Usage:   "name of the migration table",
				Value:   p.Config.Table,
			},
		},
		Action: runDev,
	}
}

func runDev(ctx context.Context, cmd *cli.Command) error {
	dir, err := loadDir(cmd)
	if err != nil {
		return err
	}

	w := output(cmd)
	container := docker.NewWithOptions(docker.DockerOptions{
		Driver:  database.Driver(cmd.String("driver")),
		Version: cmd.String("image-version"),
	})

	fmt.Fprintf(w, "Starting %s...\n", container.Image())
	if err := container.Start(ctx); err != nil {
		return err
	}
	defer func() {
		// ctx is already cancelled on interrupt.
		if err := container.Stop(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Failed to stop container", "err", err)
		}
	}()

	opts, err := container.ConnectOptions(ctx)
	if err != nil {
		return err
	}

	client, err := database.Open(ctx, opts)
	if err != nil {
		return errors.Wrap(err, "failed to connect to container")
	}
	defer func() { _ = client.Close() }()

	l, err := ledger.NewSQL(client, client.Driver(), cmd.String("table"))
	if err != nil {
		return err
	}

	exec := executor.New(executor.Config{DB: client, Ledger: l})
	report, err := exec.Migrate(ctx, cmd.String("tag"), dir.Files, executor.Options{})
	reportResults(w, report, dir)
	if err != nil {
		return err
	}

	if err := runChecks(ctx, cmd, l, dir, sanity.Options{IgnoreNewFiles: true}); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nDatabase ready: %s\n", database.Redact(opts.DSN))
	fmt.Fprintln(w, "Press Ctrl+C to stop")

	<-ctx.Done()
	fmt.Fprintln(w, "Stopping...")

	return nil
}
