package utils

import (
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// IsValidIdentifier reports whether name is a plain or schema-qualified SQL
// identifier made of letters, digits and underscores.
//
// Examples:
//   - "_migrations" -> true
//   - "public._migrations" -> true
//   - "1table" -> false
//   - "users; DROP TABLE users" -> false
//   - "" -> false
func IsValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// QuoteIdentifier wraps each dot separated part of name in quote, leaving parts
// that are already quoted untouched.
//
// Examples:
//   - ("table", '"') -> "\"table\""
//   - ("database.table", '`') -> "`database`.`table`"
//   - ("`database`.table", '`') -> "`database`.`table`"
//   - ("", '"') -> ""
func QuoteIdentifier(name string, quote byte) string {
	if name == "" {
		return ""
	}

	parts := strings.Split(name, ".")
	for i, part := range parts {
		if isQuoted(part, quote) {
			continue
		}
		parts[i] = string(quote) + part + string(quote)
	}

	return strings.Join(parts, ".")
}

// BacktickIdentifier quotes name for ClickHouse.
func BacktickIdentifier(name string) string {
	return QuoteIdentifier(name, '`')
}

func isQuoted(s string, quote byte) bool {
	return len(s) >= 2 && s[0] == quote && s[len(s)-1] == quote
}
