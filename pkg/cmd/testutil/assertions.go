package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/pseudomuto/osprey/pkg/database"
	"github.com/stretchr/testify/require"
)

// RequireFileExists asserts that a file exists and optionally checks its content
func RequireFileExists(t *testing.T, path string, checks ...func(content string)) {
	t.Helper()

	require.FileExists(t, path, "File should exist: %s", path)

	if len(checks) > 0 {
		content, err := os.ReadFile(path)
		require.NoError(t, err, "Failed to read file: %s", path)

		contentStr := string(content)
		for _, check := range checks {
			check(contentStr)
		}
	}
}

// RequireFileContains returns a check function that verifies file contains text
func RequireFileContains(t *testing.T, expected string) func(string) {
	return func(content string) {
		require.Contains(t, content, expected, "File should contain: %s", expected)
	}
}

// RequireRowCount asserts the number of rows in table.
func RequireRowCount(t *testing.T, db database.DB, table string, expected int) {
	t.Helper()

	rows, err := db.Query(context.Background(), fmt.Sprintf("SELECT count(*) FROM %s", table))
	require.NoError(t, err, "Failed to count rows in %s", table)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next(), "count query returned no rows")

	var count int
	require.NoError(t, rows.Scan(&count))
	require.Equal(t, expected, count, "unexpected row count in %s", table)
}
