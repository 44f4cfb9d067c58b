package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/config"
	"github.com/pseudomuto/osprey/pkg/sanity"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type statusParams struct {
	fx.In

	Config *config.Config
}

// status creates the status command for showing the state of every group.
//
// Example usage:
//
//	osprey status
//	osprey status --driver sqlite --database app.db
func status(p statusParams) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show which groups are applied, pending or changed",
		Description: `Display the state of every file and tag.

Each declared group is reported as applied, pending or changed (applied, but its
content has been edited since). Tags recorded in the migration table that a file
no longer declares are reported as missing-tag, and records for files that no
longer exist as orphaned. Unlike sanity, status never fails on these.`,
		Flags: append([]cli.Flag{dirFlag(p.Config)}, databaseFlags(p.Config)...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runStatus(ctx, cmd, p)
		},
	}
}

func runStatus(ctx context.Context, cmd *cli.Command, p statusParams) error {
	dir, err := loadDir(cmd)
	if err != nil {
		return err
	}

	client, l, err := openLedger(ctx, cmd, p.Config)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := l.EnsureSchema(ctx); err != nil {
		return errors.Wrap(err, "failed to prepare migration table")
	}

	records, err := l.ListAll(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load migrations")
	}

	report := sanity.Status(records, dir.Files)

	w := output(cmd)
	if _, err := report.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write status")
	}

	fmt.Fprintf(w, "\nSummary: %d applied, %d pending, %d changed, %d missing tag, %d orphaned\n",
		report.Count(sanity.StateApplied),
		report.Count(sanity.StatePending),
		report.Count(sanity.StateChanged),
		report.Count(sanity.StateMissingTag),
		report.Count(sanity.StateOrphaned),
	)

	return nil
}
