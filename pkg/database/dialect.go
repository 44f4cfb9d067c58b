package database

import "strconv"

// Placeholder returns the bind parameter marker for the n-th (1-based)
// argument of a query sent to d.
func (d Driver) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}

	return "?"
}
