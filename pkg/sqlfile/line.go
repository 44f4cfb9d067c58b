package sqlfile

import "strings"

const (
	commentPrefix = "--"
	tagMarker     = "tag:"
	terminator    = ";"
)

// lineKind is the grammatical category of a single physical line.
type lineKind int

const (
	lineBlank lineKind = iota
	lineComment
	lineTag
	lineFragment
	lineTerminator
)

func (k lineKind) String() string {
	switch k {
	case lineBlank:
		return "blank"
	case lineComment:
		return "comment"
	case lineTag:
		return "tag"
	case lineFragment:
		return "fragment"
	case lineTerminator:
		return "terminator"
	default:
		return "unknown"
	}
}

// line pairs the raw text of a line with its trimmed form. Classification
// happens on the trimmed text while statements are built from the raw text.
type line struct {
	raw     string
	trimmed string
}

func newLine(raw string) line {
	return line{raw: raw, trimmed: strings.TrimSpace(raw)}
}

func (l line) isBlank() bool {
	return l.trimmed == ""
}

func (l line) isComment() bool {
	return strings.HasPrefix(l.trimmed, commentPrefix)
}

func (l line) isTag() bool {
	return l.isComment() && strings.Contains(l.trimmed, tagMarker)
}

func (l line) isFragment() bool {
	return !l.isBlank() && !l.isComment()
}

func (l line) isTerminator() bool {
	return l.isFragment() && strings.HasSuffix(l.trimmed, terminator)
}

func (l line) kind() lineKind {
	switch {
	case l.isTerminator():
		return lineTerminator
	case l.isTag():
		return lineTag
	case l.isComment():
		return lineComment
	case l.isBlank():
		return lineBlank
	default:
		return lineFragment
	}
}

// tagName returns the declared tag. The boolean is false when nothing but
// whitespace follows the first "tag:".
func (l line) tagName() (string, bool) {
	_, after, found := strings.Cut(l.trimmed, tagMarker)
	if !found {
		return "", false
	}

	name := strings.TrimSpace(after)
	return name, name != ""
}
