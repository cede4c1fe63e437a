// Package utils provides small, generic helpers used across layers. Nothing
// in here knows about the domain.
package utils

import "strconv"

// AtoiDefault converts s to an int, returning def when s is empty or not a
// valid integer. Query-string parsing leans on this so malformed pagination
// params degrade to defaults instead of erroring.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
