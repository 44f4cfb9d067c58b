package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/config"
	"github.com/pseudomuto/osprey/pkg/consts"
	"github.com/pseudomuto/osprey/pkg/migrator"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type rehashParams struct {
	fx.In

	Config *config.Config
}

// rehash creates a CLI command for regenerating the sum file.
//
// The command parses every SQL file in the migrations directory and writes
// osprey.sum next to them with one line per file and tag. Committing the sum
// file lets the verify command detect edits without a database.
//
// Example usage:
//
//	osprey rehash
//	osprey rehash --dir db/migrations
func rehash(p rehashParams) *cli.Command {
	return &cli.Command{
		Name:  "rehash",
		Usage: "Regenerate the sum file for all migrations",
		Flags: []cli.Flag{dirFlag(p.Config)},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := loadDir(cmd)
			if err != nil {
				return err
			}

			if err := writeSumFile(cmd.String("dir"), dir); err != nil {
				return err
			}

			fmt.Fprintf(output(cmd), "Successfully rehashed %d migration(s) and updated sum file\n", len(dir.Files))
			return nil
		},
	}
}

func writeSumFile(dirPath string, dir *migrator.Dir) error {
	sumFilePath := filepath.Join(dirPath, consts.SumFileName)
	sumFile, err := os.OpenFile(sumFilePath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, consts.ModeFile)
	if err != nil {
		return errors.Wrapf(err, "failed to create sum file: %s", sumFilePath)
	}
	defer func() { _ = sumFile.Close() }()

	if _, err := dir.Sum().WriteTo(sumFile); err != nil {
		return errors.Wrap(err, "failed to write sum file")
	}

	return nil
}
