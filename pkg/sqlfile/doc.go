// Package sqlfile parses tagged SQL migration files.
//
// A tagged SQL file is plain SQL where groups of statements are introduced by a
// comment line naming a tag. Every statement below a tag declaration belongs to
// that tag until the next declaration:
//
//	-- tag: up
//	CREATE TABLE users (
//	    id SERIAL PRIMARY KEY,
//	    email TEXT NOT NULL
//	);
//	CREATE INDEX users_email ON users (email);
//
//	-- tag: seed
//	INSERT INTO users (email) VALUES ('root@example.com');
//
// # Grammar
//
// The parser is a line-oriented state machine. Each physical line (split on
// "\n") is classified after trimming surrounding whitespace:
//
//   - blank: the trimmed line is empty. Blank lines are ignored, even in the
//     middle of a statement.
//   - comment: the trimmed line starts with "--". Comments between statements
//     are ignored; a comment inside an unfinished statement is an error.
//   - tag declaration: a comment containing "tag:". The tag name is the trimmed
//     text after the first "tag:" and must not be empty.
//   - fragment: any other line. Fragments of the same statement are joined with
//     "\n" using the original, untrimmed line text.
//   - terminator: a fragment whose trimmed text ends with ";". It completes the
//     statement in progress.
//
// A tag must have at least one completed statement before the next tag or the
// end of the file. When a file declares the same tag twice the last group wins.
//
// # Hashing
//
// Each group carries a content hash: the SHA-256 digest of its statements
// concatenated in order without a separator, encoded as uppercase hex. The hash
// is what the migration ledger records and what drift detection compares.
//
// # Errors
//
// Syntax errors are reported as *SyntaxError values carrying the file name, the
// 0-based line index and a Reason. Reasons are comparable with errors.Is:
//
//	_, err := sqlfile.ParseString("create_users", src)
//	if errors.Is(err, sqlfile.ErrNoQueryForTag) {
//		// a tag was declared without any statements
//	}
package sqlfile
