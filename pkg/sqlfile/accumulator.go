package sqlfile

import "strings"

// accumulator collects statements for the tag currently being parsed.
type accumulator struct {
	statements []string
	current    strings.Builder
}

// pending reports whether a statement has been started but not terminated.
func (a *accumulator) pending() bool {
	return a.current.Len() > 0
}

// empty reports whether no statement has been completed yet.
func (a *accumulator) empty() bool {
	return len(a.statements) == 0
}

func (a *accumulator) add(fragment string) {
	if a.current.Len() > 0 {
		a.current.WriteByte('\n')
	}
	a.current.WriteString(fragment)
}

func (a *accumulator) finish(fragment string) {
	a.add(fragment)
	a.statements = append(a.statements, a.current.String())
	a.current.Reset()
}

// group hashes the completed statements and hands them off as a Group. The
// accumulator is reset so it can be reused for the next tag.
func (a *accumulator) group(tag string) *Group {
	g := &Group{
		Tag:        tag,
		Statements: a.statements,
		Hash:       Hash(a.statements),
	}

	a.statements = nil
	a.current.Reset()
	return g
}
