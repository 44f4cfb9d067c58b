// Package executor applies pending tagged SQL groups to a database.
//
// # Core Components
//
//   - Executor: applies the groups for one tag and records them in a ledger
//   - Config: the database and ledger the executor works against
//   - Report: per-file ExecutionResults plus the query set and query totals
//
// A group is pending when its file has no ledger record under the tag being
// migrated. Only the file name is compared; a file whose group changed after
// it was applied is not re-run (the sanity package reports that case).
//
// # Usage Example
//
//	dir, err := migrator.Open("./migrations")
//	if err != nil {
//		return err
//	}
//
//	exec := executor.New(executor.Config{DB: client, Ledger: l})
//	report, err := exec.Migrate(ctx, "up", dir.Files, executor.Options{})
//	for _, result := range report.Results {
//		switch result.Status {
//		case executor.StatusSuccess:
//			fmt.Printf("applied %s in %v\n", result.File, result.ExecutionTime)
//		case executor.StatusFailed:
//			fmt.Printf("%s failed: %v\n", result.File, result.Error)
//		case executor.StatusSkipped:
//			fmt.Printf("%s already applied\n", result.File)
//		}
//	}
//	if err != nil {
//		return err
//	}
//
// # Failure Semantics
//
// Statements run individually and outside of any transaction. When one fails
// the run stops immediately: earlier statements of the same group stay
// applied but the group is not recorded, and earlier groups stay recorded.
package executor
