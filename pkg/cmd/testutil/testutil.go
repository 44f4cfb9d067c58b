package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/osprey/pkg/config"
	"github.com/pseudomuto/osprey/pkg/consts"
	"github.com/pseudomuto/osprey/pkg/database"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type (
	// ProjectFixture represents a test project: a temp directory holding a
	// migrations directory and a SQLite database file.
	ProjectFixture struct {
		Dir    string
		Config *config.Config
		t      *testing.T
	}

	// MigrationFile represents a test migration
	MigrationFile struct {
		Name string
		SQL  string
	}
)

// TestProject creates an isolated temp directory configured to migrate a
// SQLite database inside it.
func TestProject(t *testing.T) *ProjectFixture {
	t.Helper()

	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Dir = filepath.Join(tmpDir, "migrations")
	cfg.Database.Name = filepath.Join(tmpDir, "osprey.db")

	require.NoError(t, os.MkdirAll(cfg.Dir, consts.ModeDir), "Failed to create migrations directory")

	return &ProjectFixture{Dir: tmpDir, Config: cfg, t: t}
}

// DefaultConfig returns a configuration using SQLite.
func DefaultConfig() *config.Config {
	cfg := config.Default()
	cfg.Database = config.Database{Driver: string(database.SQLite)}
	return cfg
}

// WithMigrations adds migration files to the project
func (p *ProjectFixture) WithMigrations(migrations ...MigrationFile) *ProjectFixture {
	p.t.Helper()

	for _, migration := range migrations {
		filename := migration.Name + ".sql"
		err := os.WriteFile(filepath.Join(p.Config.Dir, filename), []byte(migration.SQL), consts.ModeFile)
		require.NoError(p.t, err, "Failed to write migration file: %s", filename)
	}

	return p
}

// WithFile writes an arbitrary file into the migrations directory.
func (p *ProjectFixture) WithFile(name, content string) *ProjectFixture {
	p.t.Helper()

	err := os.WriteFile(filepath.Join(p.Config.Dir, name), []byte(content), consts.ModeFile)
	require.NoError(p.t, err, "Failed to write file: %s", name)

	return p
}

// RemoveMigration deletes a migration file from the project.
func (p *ProjectFixture) RemoveMigration(name string) *ProjectFixture {
	p.t.Helper()

	require.NoError(p.t, os.Remove(filepath.Join(p.Config.Dir, name+".sql")))
	return p
}

// WriteConfig writes the fixture's config to osprey.yaml in the project dir
// and returns its path.
func (p *ProjectFixture) WriteConfig() string {
	p.t.Helper()

	data, err := yaml.Marshal(p.Config)
	require.NoError(p.t, err, "Failed to marshal config")

	path := filepath.Join(p.Dir, consts.DefaultConfigFile)
	require.NoError(p.t, os.WriteFile(path, data, consts.ModeFile), "Failed to write config")

	return path
}

// MigrationsDir returns the path to the migrations directory
func (p *ProjectFixture) MigrationsDir() string {
	return p.Config.Dir
}

// SumFilePath returns the path of the project's sum file.
func (p *ProjectFixture) SumFilePath() string {
	return filepath.Join(p.Config.Dir, consts.SumFileName)
}

// OpenDB opens the project's SQLite database.
func (p *ProjectFixture) OpenDB() *database.Client {
	p.t.Helper()

	client, err := database.Open(context.Background(), p.Config.DatabaseOptions())
	require.NoError(p.t, err, "Failed to open project database")
	p.t.Cleanup(func() { _ = client.Close() })

	return client
}
