package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/config"
	"github.com/pseudomuto/osprey/pkg/ledger"
	"github.com/pseudomuto/osprey/pkg/metrics"
	"github.com/pseudomuto/osprey/pkg/migrator"
	"github.com/pseudomuto/osprey/pkg/sanity"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type sanityParams struct {
	fx.In

	Config *config.Config
}

// sanityCmd creates the sanity command, which verifies the migration table
// against the SQL files.
//
// Command flags:
//   - --ignore-new-files, -i: do not fail on files that were never migrated
//   - --all: report every problem instead of stopping at the first
//   - --dir, -m: directory containing the SQL files
//   - --metrics-file: write Prometheus metrics for the run
//   - the shared database flags
//
// Example usage:
//
//	# Fail if anything was changed, removed or never migrated
//	osprey sanity
//
//	# Allow files that have not been migrated yet (e.g. in CI before deploy)
//	osprey sanity --ignore-new-files --all
func sanityCmd(p sanityParams) *cli.Command {
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:    "ignore-new-files",
			Aliases: []string{"i"},
			Usage:   "ignore files that have not been migrated with any tag",
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "report every problem instead of stopping at the first",
		},
		dirFlag(p.Config),
		metricsFileFlag(p.Config),
	}

	return &cli.Command{
		Name:  "sanity",
		Usage: "Verify applied migrations against the SQL files",
		Description: `Compare the migration table with the SQL files on disk.

The check fails when a migrated file no longer declares a tag it was migrated
with, when a migrated group's content has changed, when a migrated file no
longer exists, or (unless --ignore-new-files is given) when a file has never
been migrated.`,
		Flags: append(flags, databaseFlags(p.Config)...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runSanity(ctx, cmd, p)
		},
	}
}

func runSanity(ctx context.Context, cmd *cli.Command, p sanityParams) error {
	start := time.Now()
	rec := metrics.New()

	err := checkSanity(ctx, cmd, p.Config, sanity.Options{
		IgnoreNewFiles: cmd.Bool("ignore-new-files"),
		All:            cmd.Bool("all"),
	})
	rec.ObserveSanity(err)

	return recordRun(cmd, rec, start, err)
}

func checkSanity(ctx context.Context, cmd *cli.Command, cfg *config.Config, opts sanity.Options) error {
	dir, err := loadDir(cmd)
	if err != nil {
		return err
	}

	client, l, err := openLedger(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	return runChecks(ctx, cmd, l, dir, opts)
}

func runChecks(ctx context.Context, cmd *cli.Command, l ledger.Ledger, dir *migrator.Dir, opts sanity.Options) error {
	slog.Info("Running sanity check", "files", len(dir.Files), "ignore_new_files", opts.IgnoreNewFiles)

	if err := sanity.Run(ctx, l, dir.Files, opts); err != nil {
		var violations sanity.Violations
		if errors.As(err, &violations) {
			for _, v := range violations {
				fmt.Fprintf(output(cmd), "  ❌ %s\n", v)
			}
		}

		return err
	}

	fmt.Fprintln(output(cmd), "Sanity check passed")
	return nil
}
