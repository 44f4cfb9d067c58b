package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pseudomuto/osprey/pkg/config"
	"github.com/pseudomuto/osprey/pkg/executor"
	"github.com/pseudomuto/osprey/pkg/metrics"
	"github.com/pseudomuto/osprey/pkg/migrator"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type migrateParams struct {
	fx.In

	Config *config.Config
}

// migrate creates the migrate command for applying pending groups of a tag.
//
// Command flags:
//   - --tag, -g: the tag to apply (default: up)
//   - --dir, -m: directory containing the SQL files (default: ./migrations/)
//   - --dry-run: list what would be executed without executing it
//   - --metrics-file: write Prometheus metrics for the run
//   - the shared database flags (--driver, --dsn, --host, ...)
//
// Example usage:
//
//	# Apply the "up" groups using POSTGRES_* environment variables
//	osprey migrate
//
//	# Apply seed data to a SQLite database
//	osprey migrate --driver sqlite --database app.db --tag seed
//
//	# Show what would be executed
//	osprey migrate --dry-run
func migrate(p migrateParams) *cli.Command {
	flags := []cli.Flag{
		tagFlag(p.Config),
		dirFlag(p.Config),
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Show what would be executed without applying changes",
		},
		metricsFileFlag(p.Config),
	}

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"apply"},
		Usage:   "Apply pending SQL for a tag",
		Description: `Apply every file's statements for the given tag that have not been applied yet.

Files are processed in lexical order of their names. For each file that declares
the tag and has no record for it in the migration table, each statement is
executed on its own and, once all succeed, a record with the group's content
hash is added to the migration table.

Execution stops at the first failing statement. Statements are not run inside a
transaction, so anything executed before the failure stays applied.`,
		Flags: append(flags, databaseFlags(p.Config)...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runMigrate(ctx, cmd, p)
		},
	}
}

func runMigrate(ctx context.Context, cmd *cli.Command, p migrateParams) error {
	start := time.Now()
	rec := metrics.New()

	report, err := applyTag(ctx, cmd, p.Config, cmd.String("tag"), cmd.Bool("dry-run"))
	rec.ObserveMigration(report)

	return recordRun(cmd, rec, start, err)
}

func applyTag(ctx context.Context, cmd *cli.Command, cfg *config.Config, tag string, dryRun bool) (*executor.Report, error) {
	dir, err := loadDir(cmd)
	if err != nil {
		return nil, err
	}

	client, l, err := openLedger(ctx, cmd, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	slog.Info("Starting migration", "tag", tag, "dry_run", dryRun, "driver", client.Driver())

	exec := executor.New(executor.Config{DB: client, Ledger: l})
	report, err := exec.Migrate(ctx, tag, dir.Files, executor.Options{DryRun: dryRun})

	reportResults(output(cmd), report, dir)
	return report, err
}

func reportResults(w io.Writer, report *executor.Report, dir *migrator.Dir) {
	if report == nil {
		return
	}

	for _, result := range report.Results {
		switch result.Status {
		case executor.StatusSuccess:
			fmt.Fprintf(w, "  ✅ %s (%s) completed in %v (%d/%d statements)\n",
				result.File,
				result.Tag,
				result.ExecutionTime,
				result.StatementsApplied,
				result.TotalStatements,
			)

		case executor.StatusFailed:
			fmt.Fprintf(w, "  ❌ %s (%s) failed after %v (%d/%d statements)\n",
				result.File,
				result.Tag,
				result.ExecutionTime,
				result.StatementsApplied,
				result.TotalStatements,
			)

		case executor.StatusSkipped:
			fmt.Fprintf(w, "  ⏭  %s (%s) already applied\n", result.File, result.Tag)

		case executor.StatusPending:
			fmt.Fprintf(w, "  ▶  %s (%s) %d statements\n", result.File, result.Tag, result.TotalStatements)
			if f, ok := dir.File(result.File); ok {
				g, _ := f.Group(result.Tag)
				for _, stmt := range g.Statements {
					fmt.Fprintf(w, "     %s\n", preview(stmt))
				}
			}
		}
	}

	fmt.Fprintln(w, report)
}

// preview shortens a statement to a single line for display.
func preview(stmt string) string {
	const maxLen = 80

	line := []rune(strings.Join(strings.Fields(stmt), " "))
	if len(line) > maxLen {
		return string(line[:maxLen-3]) + "..."
	}

	return string(line)
}
