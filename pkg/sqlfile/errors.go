package sqlfile

import "fmt"

// Reason identifies why a tagged SQL file could not be parsed.
type Reason int

const (
	// ErrQueryGivenNoTag is raised when a statement is completed before any tag
	// has been declared.
	ErrQueryGivenNoTag Reason = iota + 1

	// ErrTagNameIncompleteQuery is raised when a tag is declared while a
	// statement is still missing its terminator.
	ErrTagNameIncompleteQuery

	// ErrNoQueryForTag is raised when a tag is followed by another tag, or the
	// end of the file, without a completed statement.
	ErrNoQueryForTag

	// ErrCouldNotParseTagName is raised when a tag declaration has no name.
	ErrCouldNotParseTagName

	// ErrCommentInQuery is raised when a comment appears inside an unfinished
	// statement.
	ErrCommentInQuery

	// ErrEOFIncompleteQuery is raised when the file ends inside a statement.
	ErrEOFIncompleteQuery

	// ErrNoQueriesFound is raised for files without any tag or statement.
	ErrNoQueriesFound
)

var reasonMessages = map[Reason]string{
	ErrQueryGivenNoTag:        "Query defined without tag name",
	ErrTagNameIncompleteQuery: "Tag name defined without completing previous query",
	ErrNoQueryForTag:          "No query given for tag",
	ErrCouldNotParseTagName:   "Could not parse tag name",
	ErrCommentInQuery:         "Comment found while defining query",
	ErrEOFIncompleteQuery:     "End of file found: unfinished query",
	ErrNoQueriesFound:         "No queries found",
}

func (r Reason) Error() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}

	return fmt.Sprintf("unknown syntax error (%d)", int(r))
}

// SyntaxError describes where and why parsing stopped.
type SyntaxError struct {
	// File is the name of the file being parsed (without extension).
	File string

	// Line is the 0-based index of the line at which the problem was
	// detected. End-of-file problems report the index of the last line.
	Line int

	// Reason is the underlying grammar violation.
	Reason Reason
}

func (e *SyntaxError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("SQL file contains a syntax error. Line: %d - %s", e.Line, e.Reason)
	}

	return fmt.Sprintf("SQL file %s contains a syntax error. Line: %d - %s", e.File, e.Line, e.Reason)
}

// Unwrap exposes the Reason so callers can use errors.Is against the Err*
// constants.
func (e *SyntaxError) Unwrap() error {
	return e.Reason
}
