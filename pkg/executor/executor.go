package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/database"
	"github.com/pseudomuto/osprey/pkg/ledger"
	"github.com/pseudomuto/osprey/pkg/sqlfile"
)

type (
	// Executor applies pending tag groups to a database and records them in a
	// ledger.
	//
	// Example usage:
	//
	//	exec := executor.New(executor.Config{
	//		DB:     client,
	//		Ledger: l,
	//	})
	//
	//	report, err := exec.Migrate(ctx, "up", dir.Files, executor.Options{})
	//	if err != nil {
	//		return err
	//	}
	//
	//	fmt.Println(report)
	Executor struct {
		db     database.DB
		ledger ledger.Ledger
	}

	// Config contains configuration options for creating a new Executor.
	Config struct {
		// DB runs the migration statements.
		DB database.DB

		// Ledger records applied groups.
		Ledger ledger.Ledger
	}

	// Options controls a single Migrate call.
	Options struct {
		// DryRun reports the pending groups without executing or recording
		// them. The ledger table is still created when missing.
		DryRun bool
	}

	// ExecutionResult contains the result of applying one file's group.
	ExecutionResult struct {
		// File is the name of the migration file.
		File string

		// Tag is the group that was applied.
		Tag string

		// Status indicates the outcome.
		Status ExecutionStatus

		// Error contains any error that occurred during execution.
		Error error

		// ExecutionTime records how long the group took to execute.
		ExecutionTime time.Duration

		// StatementsApplied is how many statements executed successfully.
		StatementsApplied int

		// TotalStatements is the number of statements in the group.
		TotalStatements int

		// Hash is the content hash recorded in the ledger.
		Hash string
	}

	// ExecutionStatus represents the outcome for one file.
	ExecutionStatus string

	// Report summarizes a Migrate call.
	Report struct {
		// Tag is the tag that was migrated.
		Tag string

		// Results holds one entry per file declaring Tag, in application order.
		// After a failure, files following the failed one are not listed.
		Results []*ExecutionResult

		// QuerySets is the number of groups applied.
		QuerySets int

		// Queries is the number of statements executed across all groups.
		Queries int

		// DryRun is set when nothing was executed.
		DryRun bool
	}
)

const (
	// StatusSuccess indicates the group was executed and recorded.
	StatusSuccess ExecutionStatus = "success"

	// StatusFailed indicates a statement failed or the group could not be
	// recorded.
	StatusFailed ExecutionStatus = "failed"

	// StatusSkipped indicates the group was already applied.
	StatusSkipped ExecutionStatus = "skipped"

	// StatusPending indicates the group would be applied (dry run only).
	StatusPending ExecutionStatus = "pending"
)

// New creates a new executor with the provided configuration.
func New(config Config) *Executor {
	return &Executor{
		db:     config.DB,
		ledger: config.Ledger,
	}
}

// Migrate applies every pending group under tag.
//
// The ledger table is created if needed and the records for tag are loaded.
// Each file that declares tag and has no record for it is applied in the
// order given: its statements run one at a time, each as its own Exec call,
// and once all succeed a record is appended with the group's hash. Files that
// already have a record are skipped, so running twice with the same input
// executes nothing the second time.
//
// The first failure stops the run. Statements already executed are not rolled
// back and earlier files stay recorded. The partial report is returned along
// with the error.
func (e *Executor) Migrate(ctx context.Context, tag string, files []*sqlfile.File, opts Options) (*Report, error) {
	report := &Report{Tag: tag, DryRun: opts.DryRun}

	if err := e.ledger.EnsureSchema(ctx); err != nil {
		return report, errors.Wrap(err, "failed to prepare migration table")
	}

	records, err := e.ledger.ListByTag(ctx, tag)
	if err != nil {
		return report, errors.Wrapf(err, "failed to load migrations for tag: %s", tag)
	}

	applied := ledger.NewRecordSet(records)

	for _, file := range files {
		group, ok := file.Group(tag)
		if !ok {
			continue
		}

		var result *ExecutionResult
		switch {
		case applied.HasFile(file.Name):
			result = skipped(file.Name, group)
		case opts.DryRun:
			result = pending(file.Name, group)
			report.QuerySets++
			report.Queries += len(group.Statements)
		default:
			result = e.apply(ctx, file.Name, group)
			report.Queries += result.StatementsApplied
			if result.Status == StatusSuccess {
				report.QuerySets++
			}
		}

		report.Results = append(report.Results, result)

		if result.Status == StatusFailed {
			return report, result.Error
		}
	}

	return report, nil
}

func (e *Executor) apply(ctx context.Context, fileName string, group *sqlfile.Group) *ExecutionResult {
	start := time.Now()
	result := &ExecutionResult{
		File:            fileName,
		Tag:             group.Tag,
		Status:          StatusSuccess,
		TotalStatements: len(group.Statements),
		Hash:            group.Hash,
	}

	logger := slog.With("file", fileName, "tag", group.Tag)
	logger.Debug("Applying migration", "statements", len(group.Statements))

	for i, stmt := range group.Statements {
		if err := e.db.Exec(ctx, stmt); err != nil {
			result.Status = StatusFailed
			result.Error = errors.Wrapf(err, "failed to execute statement %d of %s (%s)", i+1, fileName, group.Tag)
			result.ExecutionTime = time.Since(start)
			return result
		}

		result.StatementsApplied++
	}

	if err := e.ledger.Append(ctx, fileName, group.Tag, group.Hash); err != nil {
		result.Status = StatusFailed
		result.Error = errors.Wrapf(err, "failed to record migration %s (%s)", fileName, group.Tag)
	}

	result.ExecutionTime = time.Since(start)
	logger.Debug("Applied migration", "duration", result.ExecutionTime)

	return result
}

func skipped(fileName string, group *sqlfile.Group) *ExecutionResult {
	return &ExecutionResult{
		File:            fileName,
		Tag:             group.Tag,
		Status:          StatusSkipped,
		TotalStatements: len(group.Statements),
		Hash:            group.Hash,
	}
}

func pending(fileName string, group *sqlfile.Group) *ExecutionResult {
	return &ExecutionResult{
		File:            fileName,
		Tag:             group.Tag,
		Status:          StatusPending,
		TotalStatements: len(group.Statements),
		Hash:            group.Hash,
	}
}

// Applied returns the results for groups executed by this run.
func (r *Report) Applied() []*ExecutionResult {
	var results []*ExecutionResult
	for _, res := range r.Results {
		if res.Status == StatusSuccess {
			results = append(results, res)
		}
	}

	return results
}

// Failed returns the failed result, if any.
func (r *Report) Failed() (*ExecutionResult, bool) {
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			return res, true
		}
	}

	return nil, false
}

// String returns the run summary.
func (r *Report) String() string {
	if r.DryRun {
		return fmt.Sprintf("Would execute %d query sets with %d total queries", r.QuerySets, r.Queries)
	}

	return fmt.Sprintf("Executed %d query sets with %d total queries", r.QuerySets, r.Queries)
}
