// Package utils provides small helpers shared across layers, currently the
// query-parameter parsing used by the paginated question listing.
package utils

import "strconv"

// AtoiDefault parses a pagination query parameter ("page", "page_size") into
// an int, falling back to def when the value is empty or not an integer.
// Range clamping is the caller's concern; this only handles parsing.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
