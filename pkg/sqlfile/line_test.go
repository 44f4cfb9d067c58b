package sqlfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineKind(t *testing.T) {
	tests := []struct {
		raw  string
		kind lineKind
	}{
		{"", lineBlank},
		{"   \t", lineBlank},
		{"-- a comment", lineComment},
		{"   -- indented comment", lineComment},
		{"-- comment ending in a semicolon;", lineComment},
		{"-- tag: up", lineTag},
		{"--tag:", lineTag},
		{"SELECT *", lineFragment},
		{"  FROM t -- trailing comment", lineFragment},
		{"SELECT 1;", lineTerminator},
		{"  );  ", lineTerminator},
		{"SELECT 'tag:';", lineTerminator},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			require.Equal(t, tt.kind, newLine(tt.raw).kind(), "got %s", newLine(tt.raw).kind())
		})
	}
}

func TestLineTagName(t *testing.T) {
	name, ok := newLine("  -- tag:  up  ").tagName()
	require.True(t, ok)
	require.Equal(t, "up", name)

	name, ok = newLine("-- tag: one tag: two").tagName()
	require.True(t, ok)
	require.Equal(t, "one tag: two", name)

	_, ok = newLine("-- tag:   ").tagName()
	require.False(t, ok)

	_, ok = newLine("-- no marker").tagName()
	require.False(t, ok)
}

func TestAccumulator(t *testing.T) {
	var acc accumulator
	require.False(t, acc.pending())
	require.True(t, acc.empty())

	acc.add("SELECT *")
	require.True(t, acc.pending())
	require.True(t, acc.empty())

	acc.finish("FROM t;")
	require.False(t, acc.pending())
	require.False(t, acc.empty())

	g := acc.group("up")
	require.Equal(t, "up", g.Tag)
	require.Equal(t, []string{"SELECT *\nFROM t;"}, g.Statements)
	require.Equal(t, Hash(g.Statements), g.Hash)
	require.True(t, acc.empty())
}
