package sanity

import (
	"context"

	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/ledger"
	"github.com/pseudomuto/osprey/pkg/sqlfile"
)

// Options controls a sanity check.
type Options struct {
	// IgnoreNewFiles skips files that have never been migrated instead of
	// reporting them.
	IgnoreNewFiles bool

	// All collects every violation rather than stopping at the first.
	All bool
}

// Run loads the whole ledger and checks it against files. The ledger table
// is created first if it is missing.
//
// With opts.All unset the first inconsistency is returned as an *Error;
// otherwise all of them are returned as Violations.
func Run(ctx context.Context, l ledger.Ledger, files []*sqlfile.File, opts Options) error {
	if err := l.EnsureSchema(ctx); err != nil {
		return errors.Wrap(err, "failed to prepare migration table")
	}

	records, err := l.ListAll(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load migrations")
	}

	if opts.All {
		return CheckAll(records, files, opts.IgnoreNewFiles).Err()
	}

	if v := Check(records, files, opts.IgnoreNewFiles); v != nil {
		return v
	}

	return nil
}

// Check verifies records against files and returns the first inconsistency,
// or nil.
//
// Files are visited in order. For each file, every record with its name is
// checked in sequence order: the file must still declare the record's tag,
// and the group's hash must equal the recorded one. A file with no records
// is reported as not migrated unless ignoreNewFiles is set. Once all files
// pass, any record naming a file that does not exist is reported.
func Check(records []*ledger.Record, files []*sqlfile.File, ignoreNewFiles bool) *Error {
	var found *Error
	walk(records, files, ignoreNewFiles, func(e *Error) bool {
		found = e
		return false
	})

	return found
}

// CheckAll is like Check but returns every inconsistency, in the order Check
// would encounter them.
func CheckAll(records []*ledger.Record, files []*sqlfile.File, ignoreNewFiles bool) Violations {
	var all Violations
	walk(records, files, ignoreNewFiles, func(e *Error) bool {
		all = append(all, e)
		return true
	})

	return all
}

// walk reports each inconsistency to yield until it returns false.
func walk(records []*ledger.Record, files []*sqlfile.File, ignoreNewFiles bool, yield func(*Error) bool) {
	set := ledger.NewRecordSet(records)
	names := make(map[string]bool, len(files))

	for _, f := range files {
		names[f.Name] = true

		fileRecords := set.ForFile(f.Name)
		if len(fileRecords) == 0 {
			if !ignoreNewFiles && !yield(&Error{Kind: FileNotMigrated, File: f.Name}) {
				return
			}
			continue
		}

		for _, r := range fileRecords {
			group, ok := f.Group(r.Tag)
			switch {
			case !ok:
				if !yield(&Error{Kind: FileNoContainTag, File: f.Name, Tag: r.Tag}) {
					return
				}
			case group.Hash != r.ContentHash:
				if !yield(&Error{Kind: FileQuerySetChanged, File: f.Name, Tag: r.Tag}) {
					return
				}
			}
		}
	}

	reported := make(map[string]bool)
	for _, r := range set.Records() {
		if names[r.FileName] || reported[r.FileName] {
			continue
		}

		reported[r.FileName] = true
		if !yield(&Error{Kind: FileNoExist, File: r.FileName}) {
			return
		}
	}
}
