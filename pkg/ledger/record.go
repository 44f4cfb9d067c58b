package ledger

import (
	"context"
	"time"
)

type (
	// Ledger is the append-only history of applied statement groups.
	//
	// Implementations must return records in sequence order. Records are never
	// updated or removed once appended.
	Ledger interface {
		// EnsureSchema creates the backing storage if it does not exist yet.
		EnsureSchema(context.Context) error

		// Append records that the group tagged tag in fileName was applied with
		// the given content hash.
		Append(ctx context.Context, fileName, tag, contentHash string) error

		// ListByTag returns every record for tag.
		ListByTag(ctx context.Context, tag string) ([]*Record, error)

		// ListAll returns every record.
		ListAll(context.Context) ([]*Record, error)
	}

	// Record is a single entry in the ledger.
	Record struct {
		// Sequence is the monotonically increasing identifier assigned by the
		// store. It orders records by application time.
		Sequence int64

		// FileName is the migration file's base name without extension.
		FileName string

		// Tag is the tag of the group that was applied.
		Tag string

		// ContentHash is the group's hash at the time it was applied.
		ContentHash string

		// AppliedAt is the date the group was applied.
		AppliedAt time.Time
	}

	// RecordSet indexes records by file name for lookups during planning and
	// verification.
	RecordSet struct {
		records []*Record
		byFile  map[string][]*Record
	}
)

// NewRecordSet builds a RecordSet, preserving the order of records.
func NewRecordSet(records []*Record) *RecordSet {
	byFile := make(map[string][]*Record)
	for _, r := range records {
		byFile[r.FileName] = append(byFile[r.FileName], r)
	}

	return &RecordSet{records: records, byFile: byFile}
}

// Len returns the number of records.
func (s *RecordSet) Len() int {
	return len(s.records)
}

// Records returns all records in sequence order.
func (s *RecordSet) Records() []*Record {
	return s.records
}

// HasFile reports whether any record exists for fileName.
func (s *RecordSet) HasFile(fileName string) bool {
	return len(s.byFile[fileName]) > 0
}

// ForFile returns the records for fileName in sequence order.
func (s *RecordSet) ForFile(fileName string) []*Record {
	return s.byFile[fileName]
}

// Find returns the most recent record for the given file and tag.
func (s *RecordSet) Find(fileName, tag string) (*Record, bool) {
	records := s.byFile[fileName]
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Tag == tag {
			return records[i], true
		}
	}

	return nil, false
}
