package steps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitStatements(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "line comment between statements",
			input:    "INSERT INTO t VALUES (1);\n-- comment\nDELETE FROM t WHERE id=2;",
			expected: []string{"INSERT INTO t VALUES (1)", "DELETE FROM t WHERE id=2"},
		},
		{
			name:     "missing trailing semicolon",
			input:    "select 1;\nselect 2",
			expected: []string{"select 1", "select 2"},
		},
		{
			name:     "only comments and whitespace",
			input:    "-- header\n\n   ;  \n/* block */;\n  -- another\n;",
			expected: []string{},
		},
		{
			name:     "leading block comments",
			input:    "/* create */ /* twice */\ncreate table t (id int);",
			expected: []string{"create table t (id int)"},
		},
		{
			name:     "multi-line statement keeps inner lines",
			input:    "select a,\n  -- pick b too\n  b\nfrom t;",
			expected: []string{"select a,\n  b\nfrom t"},
		},
		{
			name:     "unterminated block comment is kept",
			input:    "/* open; select 1 */;",
			expected: []string{"/* open", "select 1 */"},
		},
		{
			name:     "block comment then line comment",
			input:    "/* a */ -- b",
			expected: []string{},
		},
		{
			name:     "block and line comment before a statement",
			input:    "/* a */ -- b;\nselect 1;",
			expected: []string{"select 1"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: []string{},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, SplitStatements(c.input))
		})
	}
}

func TestSplitStatementsCount(t *testing.T) {
	// N terminated statements give N entries in order.
	input := ""
	expected := make([]string, 0)
	for i := 0; i < 10; i++ {
		s := "insert into t values (" + string(rune('0'+i)) + ")"
		input += s + ";\n-- note\n"
		expected = append(expected, s)
	}
	assert.Equal(t, expected, SplitStatements(input))
}
