package steps

import (
	"strings"
)

const (
	lineCommentMarker  = "--"
	blockCommentStart  = "/*"
	blockCommentEnd    = "*/"
	statementSeparator = ";"
)

// SplitStatements splits sqlText into individual statements on every semicolon.
// Within each fragment, lines that start with a line comment are removed, as are leading block comments
// that are closed within the fragment. Empty fragments are discarded and the order of the rest is preserved.
// This is not a SQL parser: semicolons inside string literals or block comments are still treated as separators.
func SplitStatements(sqlText string) []string {
	retval := make([]string, 0)
	for _, fragment := range strings.Split(sqlText, statementSeparator) {
		stmt := stripComments(fragment)
		if stmt == "" {
			continue
		}
		retval = append(retval, stmt)
	}
	return retval
}

// stripComments alternates both strips until neither changes s, so a block comment followed by a line comment
// is removed completely.
func stripComments(s string) string {
	s = strings.TrimSpace(s)
	for {
		next := stripLeadingBlockComments(stripCommentLines(s))
		if next == s {
			return s
		}
		s = next
	}
}

// stripCommentLines drops every line of s whose first non-space characters are a line comment marker.
func stripCommentLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), lineCommentMarker) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// stripLeadingBlockComments removes complete /* ... */ comments from the start of s.
// An unterminated block comment is left in place.
func stripLeadingBlockComments(s string) string {
	for strings.HasPrefix(s, blockCommentStart) {
		end := strings.Index(s[len(blockCommentStart):], blockCommentEnd)
		if end < 0 {
			break
		}
		s = strings.TrimSpace(s[len(blockCommentStart)+end+len(blockCommentEnd):])
	}
	return s
}
