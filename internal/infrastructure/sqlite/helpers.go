package sqlite

import "strings"

// modernc.org/sqlite reports constraint violations as plain strings.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
