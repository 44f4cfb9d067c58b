package sqlfile

import (
	"fmt"
	"io"
)

// WriteTo writes a human readable summary of the file: one line per tag with
// its statement count and hash, followed by each statement indented.
//
// Example output:
//
//	001_users
//	  tag up (2 statements) 3F1A...
//	    CREATE TABLE users (id INT);
//	    CREATE INDEX users_id ON users (id);
func (f *File) WriteTo(w io.Writer) (int64, error) {
	var total int64

	write := func(format string, args ...any) error {
		n, err := fmt.Fprintf(w, format, args...)
		total += int64(n)
		return err
	}

	if err := write("%s\n", f.Name); err != nil {
		return total, err
	}

	for _, tag := range f.Tags() {
		g := f.Groups[tag]
		if err := write("  tag %s (%d statements) %s\n", g.Tag, len(g.Statements), g.Hash); err != nil {
			return total, err
		}

		for _, stmt := range g.Statements {
			if err := write("    %s\n", stmt); err != nil {
				return total, err
			}
		}
	}

	return total, nil
}
