package utils_test

import (
	"testing"

	"github.com/pseudomuto/osprey/pkg/utils"
	"github.com/stretchr/testify/require"
)

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"_migrations", true},
		{"migrations2", true},
		{"public._migrations", true},
		{"", false},
		{"1table", false},
		{"a.b.c", false},
		{"users; DROP TABLE users", false},
		{"my-table", false},
		{`"quoted"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, utils.IsValidIdentifier(tt.input))
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		quote    byte
		expected string
	}{
		{
			name:     "simple identifier",
			input:    "table",
			quote:    '"',
			expected: `"table"`,
		},
		{
			name:     "qualified identifier",
			input:    "public._migrations",
			quote:    '"',
			expected: `"public"."_migrations"`,
		},
		{
			name:     "already quoted part",
			input:    "`database`.table",
			quote:    '`',
			expected: "`database`.`table`",
		},
		{
			name:     "empty string",
			input:    "",
			quote:    '`',
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, utils.QuoteIdentifier(tt.input, tt.quote))
		})
	}

	require.Equal(t, "`analytics`.`events`", utils.BacktickIdentifier("analytics.events"))
}
