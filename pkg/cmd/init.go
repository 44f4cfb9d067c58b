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
	"gopkg.in/yaml.v3"
)

const exampleMigration = `-- Statements end with a semicolon at the end of a line. Each group is applied
-- once per tag and recorded in the migration table.

-- tag: up
CREATE TABLE example (
  id INT PRIMARY KEY
);

-- tag: down
DROP TABLE example;
`

type initParams struct {
	fx.In

	Config *config.Config
}

// initCmd creates the init command, which scaffolds a new osprey project in
// the working directory (or --path). Existing files are left untouched, so
// running it twice is safe.
//
// The following are created when missing:
//   - osprey.yaml with the current configuration
//   - the migrations directory
//   - 0001_init.sql, an example migration (only when the directory has no SQL files)
//   - osprey.sum for the migrations directory
func initCmd(p initParams) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a config file and migrations directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "project directory to initialize",
				Value: ".",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			dirFlag(p.Config),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return initProject(cmd, p.Config)
		},
	}
}

func initProject(cmd *cli.Command, cfg *config.Config) error {
	root := cmd.String("path")
	w := output(cmd)

	migrationsDir := cmd.String("dir")
	if !filepath.IsAbs(migrationsDir) {
		migrationsDir = filepath.Join(root, migrationsDir)
	}

	if err := os.MkdirAll(migrationsDir, consts.ModeDir); err != nil {
		return errors.Wrapf(err, "failed to create directory: %s", migrationsDir)
	}

	configPath := filepath.Join(root, consts.DefaultConfigFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		out := *cfg
		out.Dir = cmd.String("dir")

		data, err := yaml.Marshal(&out)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config")
		}

		if err := os.WriteFile(configPath, data, consts.ModeFile); err != nil {
			return errors.Wrapf(err, "failed to write file: %s", configPath)
		}

		fmt.Fprintf(w, "Created %s\n", configPath)
	}

	dir, err := migrator.Open(migrationsDir)
	if err != nil {
		return errors.Wrap(err, "failed to load migrations")
	}

	if len(dir.Files) == 0 {
		examplePath := filepath.Join(migrationsDir, "0001_init.sql")
		if err := os.WriteFile(examplePath, []byte(exampleMigration), consts.ModeFile); err != nil {
			return errors.Wrapf(err, "failed to write file: %s", examplePath)
		}

		fmt.Fprintf(w, "Created %s\n", examplePath)

		if dir, err = migrator.Open(migrationsDir); err != nil {
			return errors.Wrap(err, "failed to load migrations")
		}
	}

	if _, err := dir.RecordedSum(); errors.Is(err, migrator.ErrNoSumFile) {
		if err := writeSumFile(migrationsDir, dir); err != nil {
			return err
		}

		fmt.Fprintf(w, "Created %s\n", filepath.Join(migrationsDir, consts.SumFileName))
	}

	fmt.Fprintln(w, "Project initialized")
	return nil
}
