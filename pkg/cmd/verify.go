package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/config"
	"github.com/pseudomuto/osprey/pkg/migrator"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

// ErrSumMismatch is returned by the verify command when the SQL files differ
// from the sum file.
var ErrSumMismatch = errors.New("migrations do not match the sum file; run osprey rehash if the changes are intended")

type verifyParams struct {
	fx.In

	Config *config.Config
}

// verify creates the verify command, which compares the SQL files with the
// recorded sum file without connecting to a database.
//
// Example usage:
//
//	osprey verify
func verify(p verifyParams) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Check the SQL files against the sum file",
		Flags: []cli.Flag{dirFlag(p.Config)},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := loadDir(cmd)
			if err != nil {
				return err
			}

			diff, err := dir.Verify()
			if errors.Is(err, migrator.ErrNoSumFile) {
				return errors.Wrap(err, "run osprey rehash to create it")
			}
			if err != nil {
				return err
			}

			w := output(cmd)
			for _, e := range diff.Added {
				fmt.Fprintf(w, "  + %s\n", e)
			}
			for _, e := range diff.Removed {
				fmt.Fprintf(w, "  - %s\n", e)
			}
			for _, e := range diff.Changed {
				fmt.Fprintf(w, "  ~ %s\n", e)
			}

			if !diff.Empty() {
				return ErrSumMismatch
			}

			fmt.Fprintln(w, "All migrations match the sum file")
			return nil
		},
	}
}
