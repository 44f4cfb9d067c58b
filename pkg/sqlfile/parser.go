package sqlfile

import (
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Extension is the file extension of tagged SQL files.
const Extension = ".sql"

type (
	// Group is the ordered list of statements declared under a single tag.
	Group struct {
		// Tag is the name following "tag:" in the declaring comment.
		Tag string

		// Statements holds each complete statement, including its terminating
		// semicolon, exactly as written (multi-line statements keep their
		// original line breaks).
		Statements []string

		// Hash is the uppercase hex SHA-256 of the concatenated statements.
		Hash string
	}

	// File is a parsed tagged SQL file.
	File struct {
		// Name is the file's base name without its extension. Migration records
		// are keyed by this name.
		Name string

		// Groups maps each declared tag to its statements.
		Groups map[string]*Group
	}
)

// Group returns the group declared under tag.
func (f *File) Group(tag string) (*Group, bool) {
	g, ok := f.Groups[tag]
	return g, ok
}

// HasTag reports whether the file declares tag.
func (f *File) HasTag(tag string) bool {
	_, ok := f.Groups[tag]
	return ok
}

// Tags returns the declared tags in lexical order.
func (f *File) Tags() []string {
	tags := make([]string, 0, len(f.Groups))
	for tag := range f.Groups {
		tags = append(tags, tag)
	}

	slices.Sort(tags)
	return tags
}

// Parse reads a tagged SQL file from r. The name is used to identify the file
// in the result and in syntax errors.
//
// Example:
//
//	f, err := os.Open("migrations/001_users.sql")
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//
//	file, err := sqlfile.Parse("001_users", f)
//	if err != nil {
//		return err
//	}
//
//	for _, tag := range file.Tags() {
//		group, _ := file.Group(tag)
//		fmt.Println(tag, len(group.Statements), group.Hash)
//	}
func Parse(name string, r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read SQL file: %s", name)
	}

	return ParseString(name, string(data))
}

// ParseString parses the text of a tagged SQL file.
func ParseString(name, text string) (*File, error) {
	var (
		tag    string
		acc    accumulator
		groups = make(map[string]*Group)
		lines  = strings.Split(text, "\n")
	)

	fail := func(lineNo int, reason Reason) (*File, error) {
		return nil, &SyntaxError{File: name, Line: lineNo, Reason: reason}
	}

	for lineNo, raw := range lines {
		l := newLine(raw)

		switch l.kind() {
		case lineTerminator:
			if tag == "" {
				return fail(lineNo, ErrQueryGivenNoTag)
			}
			acc.finish(l.raw)

		case lineTag:
			if acc.pending() {
				return fail(lineNo, ErrTagNameIncompleteQuery)
			}

			if tag != "" {
				if acc.empty() {
					return fail(lineNo, ErrNoQueryForTag)
				}
				groups[tag] = acc.group(tag)
			}

			next, ok := l.tagName()
			if !ok {
				return fail(lineNo, ErrCouldNotParseTagName)
			}
			tag = next

		case lineComment:
			if acc.pending() {
				return fail(lineNo, ErrCommentInQuery)
			}

		case lineFragment:
			acc.add(l.raw)

		case lineBlank:
		}
	}

	last := len(lines) - 1
	switch {
	case acc.pending():
		return fail(last, ErrEOFIncompleteQuery)
	case tag == "" && acc.empty():
		return fail(last, ErrNoQueriesFound)
	case acc.empty():
		return fail(last, ErrNoQueryForTag)
	}

	groups[tag] = acc.group(tag)
	return &File{Name: name, Groups: groups}, nil
}

// LoadFile reads and parses the tagged SQL file at p within fsys. The file's
// name is its base name with the extension removed.
func LoadFile(fsys fs.FS, p string) (*File, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", p)
	}
	defer func() { _ = f.Close() }()

	return Parse(Stem(p), f)
}

// Stem returns the base name of p without its extension.
func Stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
