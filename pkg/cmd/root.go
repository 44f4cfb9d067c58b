package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pseudomuto/osprey/pkg/config"
	"github.com/pseudomuto/osprey/pkg/logging"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Config     *config.Config
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run registers the osprey CLI application to run when the fx app starts.
// The command runs in the background so that long running commands are not
// bound by fx's start timeout. A failing command is logged and shuts the app
// down with exit code 1.
func Run(p Params) {
	app := NewApp(p.Config, p.Version, p.Commands)
	done := make(chan struct{})

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)

				if err := app.Run(p.Ctx, p.Args); err != nil {
					slog.Error("Error running command", "err", err)
					_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
					return
				}

				_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

// NewApp creates the root osprey command.
//
// Global Flags:
//   - --log-level: debug, info, warn or error (default from config, then info)
//   - --log-format: text or json (default from config, then text)
//
// The Before hook installs the configured slog logger and tags every log line
// with a run_id so that the output of a single invocation can be correlated.
//
// Example usage:
//
//	osprey migrate --tag up
//	osprey --log-level debug sanity --ignore-new-files
func NewApp(cfg *config.Config, version *Version, commands []*cli.Command) *cli.Command {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Root().Writer, "Version:", version.Version)
		fmt.Fprintln(cmd.Root().Writer, "Commit:", version.Commit)
		fmt.Fprintln(cmd.Root().Writer, "Date:", version.Timestamp)
	}

	return &cli.Command{
		Name:  "osprey",
		Usage: "Apply tagged SQL files to a database exactly once",
		Description: `osprey applies version-controlled SQL files to a database, records what has
been applied in a migration table, and detects files that changed after they
were applied.

Each SQL file declares one or more tags with "-- tag: <name>" comments. The
migrate command applies every file's statements for a single tag, and the
sanity command verifies the migration table against the files on disk.`,
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Value:   cfg.Log.Level,
				Sources: cli.EnvVars("OSPREY_LOG_LEVEL"),
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "log format (text, json)",
				Value:   cfg.Log.Format,
				Sources: cli.EnvVars("OSPREY_LOG_FORMAT"),
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := logging.Setup(cmd.String("log-level"), cmd.String("log-format")); err != nil {
				return ctx, err
			}

			slog.SetDefault(slog.Default().With("run_id", uuid.NewString()))
			return ctx, nil
		},
		Commands: commands,
	}
}
