package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/config"
	"github.com/pseudomuto/osprey/pkg/sqlfile"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type inspectParams struct {
	fx.In

	Config *config.Config
}

// inspect creates the inspect command, which parses the SQL files without
// connecting to a database and prints their tags, statements and hashes.
// Naming files as arguments restricts the output to those files.
//
// Example usage:
//
//	osprey inspect
//	osprey inspect 001_users 002_orders
func inspect(p inspectParams) *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Parse the SQL files and print their tags and hashes",
		ArgsUsage: "[FILE...]",
		Flags:     []cli.Flag{dirFlag(p.Config)},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := loadDir(cmd)
			if err != nil {
				return err
			}

			files := dir.Files
			if cmd.Args().Present() {
				files = nil
				for _, name := range cmd.Args().Slice() {
					f, ok := dir.File(sqlfile.Stem(name))
					if !ok {
						return errors.Errorf("migration not found: %s", name)
					}
					files = append(files, f)
				}
			}

			w := output(cmd)
			for i, f := range files {
				if i > 0 {
					fmt.Fprintln(w)
				}

				if _, err := f.WriteTo(w); err != nil {
					return errors.Wrapf(err, "failed to write %s", f.Name)
				}
			}

			return nil
		},
	}
}
