package migrator

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
	"github.com/pseudomuto/osprey/pkg/sqlfile"
)

// ErrSumFileTampered is returned by LoadSumFile when the recorded total hash
// does not match the entries that follow it.
var ErrSumFileTampered = errors.New("sum file total hash does not match its entries")

var (
	sumLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Total", Pattern: `h1:[A-Za-z0-9+/]+=*`},
		{Name: "Hash", Pattern: `[0-9A-F]{64}\b`},
		{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
		{Name: "Word", Pattern: `[^\s"]+`},
		{Name: "EOL", Pattern: `\r?\n`},
		{Name: "Whitespace", Pattern: `[ \t]+`},
	})

	sumParser = participle.MustBuild[sumGrammar](
		participle.Lexer(sumLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
	)

	hashLike = regexp.MustCompile(`^[0-9A-F]{64}$`)
)

type (
	sumGrammar struct {
		Total   string      `parser:"EOL* (@Total EOL+)?"`
		Entries []*sumEntry `parser:"@@*"`
	}

	sumEntry struct {
		File string `parser:"@(String | Word)"`
		Tag  string `parser:"@(String | Word)"`
		Hash string `parser:"@Hash EOL*"`
	}

	// SumEntry records the content hash of one tag group in one file.
	SumEntry struct {
		File string
		Tag  string
		Hash string
	}

	// SumFile is the recorded state of a migration directory: one entry per
	// file and tag, plus a total hash covering every entry so that manual edits
	// to the sum file itself are detected.
	SumFile struct {
		entries   []SumEntry
		TotalHash string
	}

	// SumDiff lists the differences between a recorded sum file and the
	// current directory contents.
	SumDiff struct {
		// Added holds entries present now but not recorded.
		Added []SumEntry

		// Removed holds recorded entries that no longer exist.
		Removed []SumEntry

		// Changed holds entries whose hash differs from the recorded one. The
		// current hash is reported.
		Changed []SumEntry
	}
)

// NewSumFile builds a sum file from parsed SQL files. Entries are ordered by
// file (in the order given) and then by tag.
//
// Example:
//
//	dir, err := migrator.Open("./migrations")
//	if err != nil {
//		return err
//	}
//
//	sum := migrator.NewSumFile(dir.Files...)
//	fmt.Println(sum.TotalHash) // h1:base64-encoded-total-hash
func NewSumFile(files ...*sqlfile.File) *SumFile {
	s := &SumFile{}
	for _, f := range files {
		for _, tag := range f.Tags() {
			g, _ := f.Group(tag)
			s.Add(f.Name, tag, g.Hash)
		}
	}

	return s
}

// LoadSumFile reads a sum file in the format produced by WriteTo:
//
//	h1:<base64 total hash>
//	<file> <tag> <hash>
//	...
//
// File names and tags containing whitespace are double-quoted. An empty input
// yields an empty sum file.
func LoadSumFile(r io.Reader) (*SumFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read sum file")
	}

	grammar, err := sumParser.ParseString("", string(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse sum file")
	}

	s := &SumFile{}
	for _, e := range grammar.Entries {
		s.Add(e.File, e.Tag, e.Hash)
	}

	if grammar.Total != s.TotalHash {
		return nil, ErrSumFileTampered
	}

	return s, nil
}

// Add appends an entry and updates the total hash.
func (s *SumFile) Add(file, tag, hash string) {
	s.entries = append(s.entries, SumEntry{File: file, Tag: tag, Hash: hash})
	s.computeTotalHash()
}

// Entries returns a copy of the recorded entries.
func (s *SumFile) Entries() []SumEntry {
	return append([]SumEntry(nil), s.entries...)
}

// Len returns the number of entries.
func (s *SumFile) Len() int {
	return len(s.entries)
}

// Lookup returns the entry for file and tag.
func (s *SumFile) Lookup(file, tag string) (SumEntry, bool) {
	for _, e := range s.entries {
		if e.File == file && e.Tag == tag {
			return e, true
		}
	}

	return SumEntry{}, false
}

// Compare reports how current differs from s. Entries are reported in the
// order they appear in current (for Added and Changed) or s (for Removed).
func (s *SumFile) Compare(current *SumFile) *SumDiff {
	diff := &SumDiff{}

	for _, e := range current.entries {
		recorded, ok := s.Lookup(e.File, e.Tag)
		switch {
		case !ok:
			diff.Added = append(diff.Added, e)
		case recorded.Hash != e.Hash:
			diff.Changed = append(diff.Changed, e)
		}
	}

	for _, e := range s.entries {
		if _, ok := current.Lookup(e.File, e.Tag); !ok {
			diff.Removed = append(diff.Removed, e)
		}
	}

	return diff
}

// WriteTo writes the sum file to w. It implements io.WriterTo.
//
// Example output:
//
//	h1:Wm9vbXpvb216b29tem9vbXpvb216b29tem9vbXo=
//	001_users up 935DBBB0...
//	001_users down 4A5C9E01...
func (s *SumFile) WriteTo(w io.Writer) (int64, error) {
	var total int64

	n, err := fmt.Fprintf(w, "%s\n", s.TotalHash)
	total += int64(n)
	if err != nil {
		return total, err
	}

	for _, e := range s.entries {
		n, err := io.WriteString(w, e.line())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

func (s *SumFile) computeTotalHash() {
	if len(s.entries) == 0 {
		s.TotalHash = ""
		return
	}

	hasher := sha256.New()
	for _, e := range s.entries {
		_, _ = io.WriteString(hasher, e.line())
	}

	s.TotalHash = "h1:" + base64.StdEncoding.EncodeToString(hasher.Sum(nil))
}

// Empty reports whether the diff contains no differences.
func (d *SumDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

func (e SumEntry) line() string {
	return fmt.Sprintf("%s %s %s\n", quoteSumValue(e.File), quoteSumValue(e.Tag), e.Hash)
}

// String returns the entry as "<file> (<tag>)".
func (e SumEntry) String() string {
	return fmt.Sprintf("%s (%s)", e.File, e.Tag)
}

func quoteSumValue(s string) string {
	if s == "" ||
		strings.IndexFunc(s, unicode.IsSpace) >= 0 ||
		strings.ContainsAny(s, "\"\\") ||
		strings.HasPrefix(s, "h1:") ||
		hashLike.MatchString(s) {
		return strconv.Quote(s)
	}

	return s
}
