package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/executor"
	"github.com/pseudomuto/osprey/pkg/metrics"
	"github.com/pseudomuto/osprey/pkg/sanity"
	"github.com/stretchr/testify/require"
)

func writeAndRead(t *testing.T, r *metrics.Recorder) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "osprey.prom")
	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestObserveMigration(t *testing.T) {
	r := metrics.New()
	r.ObserveMigration(&executor.Report{
		Tag:       "up",
		QuerySets: 2,
		Queries:   5,
		Results: []*executor.ExecutionResult{
			{File: "001_users", Status: executor.StatusSuccess},
			{File: "002_orders", Status: executor.StatusFailed},
		},
	})
	r.ObserveMigration(&executor.Report{Tag: "up", QuerySets: 10, Queries: 10, DryRun: true})
	r.ObserveMigration(nil)

	out := writeAndRead(t, r)
	require.Contains(t, out, `osprey_migrate_query_sets_total{tag="up"} 2`)
	require.Contains(t, out, `osprey_migrate_queries_total{tag="up"} 5`)
	require.Contains(t, out, `osprey_migrate_failures_total{file="002_orders",tag="up"} 1`)
}

func TestObserveSanity(t *testing.T) {
	r := metrics.New()
	r.ObserveSanity(sanity.Violations{
		{Kind: sanity.FileQuerySetChanged, File: "001_users", Tag: "up"},
		{Kind: sanity.FileQuerySetChanged, File: "002_orders", Tag: "up"},
		{Kind: sanity.FileNoExist, File: "000_gone"},
	})
	r.ObserveSanity(errors.Wrap(&sanity.Error{Kind: sanity.FileNotMigrated, File: "003_items"}, "sanity"))
	r.ObserveSanity(errors.New("connection refused"))
	r.ObserveSanity(nil)

	out := writeAndRead(t, r)
	require.Contains(t, out, `osprey_sanity_violations_total{kind="changed"} 2`)
	require.Contains(t, out, `osprey_sanity_violations_total{kind="orphaned"} 1`)
	require.Contains(t, out, `osprey_sanity_violations_total{kind="not-migrated"} 1`)
}

func TestObserveRun(t *testing.T) {
	r := metrics.New()
	r.ObserveRun("migrate", 1500*time.Millisecond, nil)
	r.ObserveRun("sanity", time.Second, errors.New("boom"))

	out := writeAndRead(t, r)
	require.Contains(t, out, `osprey_run_duration_seconds{command="migrate"} 1.5`)
	require.Contains(t, out, `osprey_last_run_success{command="migrate"} 1`)
	require.Contains(t, out, `osprey_last_run_success{command="sanity"} 0`)
	require.Contains(t, out, `osprey_last_run_timestamp_seconds{command="migrate"}`)
}

func TestWriteFileError(t *testing.T) {
	err := metrics.New().WriteFile(filepath.Join(t.TempDir(), "missing", "osprey.prom"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to write metrics file")
}
