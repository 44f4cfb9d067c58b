package sanity

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pseudomuto/osprey/pkg/ledger"
	"github.com/pseudomuto/osprey/pkg/sqlfile"
)

// State classifies a (file, tag) pair.
type State string

const (
	StateApplied    State = "applied"
	StatePending    State = "pending"
	StateChanged    State = "changed"
	StateMissingTag State = "missing-tag"
	StateOrphaned   State = "orphaned"
)

type (
	// Entry is the state of one (file, tag) pair.
	Entry struct {
		File  string
		Tag   string
		State State

		// Record is the most recent ledger record for the pair, if any.
		Record *ledger.Record
	}

	// Report is the state of every known (file, tag) pair.
	Report struct {
		Entries []*Entry
	}
)

// Status classifies every group declared in files and every record in the
// ledger without failing on inconsistencies.
//
// Entries for each file come first, in file order: its declared tags in
// lexical order (applied, changed or pending), then tags recorded for it that
// it no longer declares. Records for files that do not exist follow, one entry
// per file and tag, in sequence order.
func Status(records []*ledger.Record, files []*sqlfile.File) *Report {
	set := ledger.NewRecordSet(records)
	names := make(map[string]bool, len(files))
	report := &Report{}

	for _, f := range files {
		names[f.Name] = true

		for _, tag := range f.Tags() {
			entry := &Entry{File: f.Name, Tag: tag, State: StatePending}
			if r, ok := set.Find(f.Name, tag); ok {
				entry.Record = r
				entry.State = StateApplied

				if g, _ := f.Group(tag); g.Hash != r.ContentHash {
					entry.State = StateChanged
				}
			}

			report.Entries = append(report.Entries, entry)
		}

		seen := make(map[string]bool)
		for _, r := range set.ForFile(f.Name) {
			if f.HasTag(r.Tag) || seen[r.Tag] {
				continue
			}

			seen[r.Tag] = true
			latest, _ := set.Find(f.Name, r.Tag)
			report.Entries = append(report.Entries, &Entry{
				File:   f.Name,
				Tag:    r.Tag,
				State:  StateMissingTag,
				Record: latest,
			})
		}
	}

	seen := make(map[string]bool)
	for _, r := range set.Records() {
		key := r.FileName + "\x00" + r.Tag
		if names[r.FileName] || seen[key] {
			continue
		}

		seen[key] = true
		latest, _ := set.Find(r.FileName, r.Tag)
		report.Entries = append(report.Entries, &Entry{
			File:   r.FileName,
			Tag:    r.Tag,
			State:  StateOrphaned,
			Record: latest,
		})
	}

	return report
}

// Count returns the number of entries in state.
func (r *Report) Count(state State) int {
	n := 0
	for _, e := range r.Entries {
		if e.State == state {
			n++
		}
	}

	return n
}

// Clean reports whether every entry is applied or pending.
func (r *Report) Clean() bool {
	for _, e := range r.Entries {
		if e.State != StateApplied && e.State != StatePending {
			return false
		}
	}

	return true
}

// WriteTo writes the report as an aligned table. It implements io.WriterTo.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(tw, "FILE\tTAG\tSTATE\tAPPLIED")
	for _, e := range r.Entries {
		applied := "-"
		if e.Record != nil && !e.Record.AppliedAt.IsZero() {
			applied = e.Record.AppliedAt.Format("2006-01-02")
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.File, e.Tag, e.State, applied)
	}

	err := tw.Flush()
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
