package sanity

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies the type of inconsistency between files and the ledger.
type Kind int

const (
	// FileNoContainTag means a file no longer declares a tag it was migrated
	// with.
	FileNoContainTag Kind = iota + 1

	// FileQuerySetChanged means a group's content changed after it was applied.
	FileQuerySetChanged

	// FileNoExist means the ledger references a file that no longer exists.
	FileNoExist

	// FileNotMigrated means a file has never been migrated with any tag.
	FileNotMigrated
)

var (
	ErrFileNoContainTag    = errors.New("file does not contain a migrated tag")
	ErrFileQuerySetChanged = errors.New("file changed since it was migrated")
	ErrFileNoExist         = errors.New("migrated file does not exist")
	ErrFileNotMigrated     = errors.New("file has not been migrated")
)

func (k Kind) String() string {
	switch k {
	case FileNoContainTag:
		return "missing-tag"
	case FileQuerySetChanged:
		return "changed"
	case FileNoExist:
		return "orphaned"
	case FileNotMigrated:
		return "not-migrated"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case FileNoContainTag:
		return ErrFileNoContainTag
	case FileQuerySetChanged:
		return ErrFileQuerySetChanged
	case FileNoExist:
		return ErrFileNoExist
	case FileNotMigrated:
		return ErrFileNotMigrated
	default:
		return nil
	}
}

// Error is a single inconsistency. Tag is empty for FileNoExist and
// FileNotMigrated.
type Error struct {
	Kind Kind
	File string
	Tag  string
}

func (e *Error) Error() string {
	switch e.Kind {
	case FileNoContainTag:
		return fmt.Sprintf("The file %s does not contain the tag %s that was originally migrated", e.File, e.Tag)
	case FileQuerySetChanged:
		return fmt.Sprintf("The file %s has changed since it was last migrated with the tag %s", e.File, e.Tag)
	case FileNoExist:
		return fmt.Sprintf("The file %s does not exist but exists in the migration table", e.File)
	case FileNotMigrated:
		return fmt.Sprintf("The file %s does not exist in the migration table", e.File)
	default:
		return fmt.Sprintf("The file %s failed the sanity check (%s)", e.File, e.Kind)
	}
}

// Unwrap returns the sentinel for the error's Kind, so callers can write
// errors.Is(err, sanity.ErrFileQuerySetChanged).
func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// Violations is every inconsistency found by CheckAll.
type Violations []*Error

func (v Violations) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}

	return fmt.Sprintf("%d sanity violations:\n  %s", len(v), strings.Join(msgs, "\n  "))
}

// Is reports whether any violation matches target.
func (v Violations) Is(target error) bool {
	for _, e := range v {
		if errors.Is(e, target) {
			return true
		}
	}

	return false
}

// Err returns v as an error, or nil when there are no violations.
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}

	return v
}
