// Package sqlutil provides SQL identifier helpers shared by the loader and result writer.
package sqlutil

import (
	"fmt"
	"regexp"
	"strings"
)

// QuoteIdentifier quotes an identifier (table name, column name) with backticks.
// It escapes any existing backticks by doubling them. MySQL and SQLite both
// accept backtick quoting.
// Example: "my_table" -> "`my_table`"
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// validIdentifierRegex allows ASCII alphanumerics, underscore and Hangul syllables.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_가-힣]+$")

// IsValidIdentifier checks that a name only contains characters accepted by
// validIdentifierRegex.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// QuoteIdentifierSafe quotes an identifier after validating it.
// Returns an error if the identifier contains invalid characters.
func QuoteIdentifierSafe(name string) (string, error) {
	if !IsValidIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return QuoteIdentifier(name), nil
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only letters, digits, Hangul and underscores)"
}

var unsafeChars = regexp.MustCompile("[^a-zA-Z0-9_가-힣]")

// SanitizeName replaces every character not allowed in an identifier with
// an underscore. Blank names become "col".
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "col"
	}
	return unsafeChars.ReplaceAllString(name, "_")
}

// SanitizeColumns sanitizes column names and resolves collisions, including
// collisions with reserved names, by appending _2, _3 and so on.
// Matching is case-insensitive as in MySQL.
func SanitizeColumns(columns []string, reserved ...string) []string {
	used := make(map[string]bool, len(columns)+len(reserved))
	for _, r := range reserved {
		used[strings.ToLower(r)] = true
	}

	out := make([]string, len(columns))
	for i, col := range columns {
		base := SanitizeName(col)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[strings.ToLower(name)] = true
		out[i] = name
	}
	return out
}
