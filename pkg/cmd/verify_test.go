package cmd

import (
	"testing"

	"github.com/pseudomuto/osprey/pkg/cmd/testutil"
	"github.com/pseudomuto/osprey/pkg/migrator"
	"github.com/stretchr/testify/require"
)

func TestVerifyCommand(t *testing.T) {
	fixture := testutil.TestProject(t).WithMigrations(usersMigration, ordersMigration)
	require.NoError(t, testutil.RunCommand(t, rehash(rehashParams{Config: fixture.Config}), nil))

	command := verify(verifyParams{Config: fixture.Config})

	output, err := testutil.RunCommandWithOutput(t, command, nil)
	require.NoError(t, err)
	require.Contains(t, output, "All migrations match the sum file")

	fixture.
		WithMigrations(
			testutil.MigrationFile{Name: "001_users", SQL: "-- tag: up\nCREATE TABLE users (id BIGINT);\n"},
			testutil.MigrationFile{Name: "003_items", SQL: "-- tag: up\nCREATE TABLE items (id INT);\n"},
		)

	output, err = testutil.RunCommandWithOutput(t, command, nil)
	require.ErrorIs(t, err, ErrSumMismatch)
	require.Contains(t, output, "+ 003_items (up)")
	require.Contains(t, output, "- 001_users (down)")
	require.Contains(t, output, "~ 001_users (up)")
}

func TestVerifyCommand_Errors(t *testing.T) {
	t.Run("no sum file", func(t *testing.T) {
		fixture := testutil.TestProject(t).WithMigrations(usersMigration)

		_, err := testutil.RunCommandWithOutput(t, verify(verifyParams{Config: fixture.Config}), nil)
		require.ErrorIs(t, err, migrator.ErrNoSumFile)
	})

	t.Run("tampered sum file", func(t *testing.T) {
		fixture := testutil.TestProject(t).
			WithMigrations(usersMigration).
			WithFile("osprey.sum", "h1:bogus=\n001_users up 0B380FFBD9E17E134B0BEB4DCE5E2D377FCCC97DA404F50F2C1FBDE86C6D53C2\n")

		_, err := testutil.RunCommandWithOutput(t, verify(verifyParams{Config: fixture.Config}), nil)
		require.ErrorIs(t, err, migrator.ErrSumFileTampered)
	})
}
