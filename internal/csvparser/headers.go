package csvparser

import (
	"fmt"
	"strings"
)

// NormalizeHeaders cleans a raw header row.
//
// CLEANING OPERATIONS:
//   - Trim surrounding whitespace
//   - Name empty headers Column_N (1-based position)
//   - Suffix repeated names with .1, .2, ... in order of appearance
//
// Rows are keyed by header, so every name must be unique.
func NormalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))

	for i, header := range raw {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}

		name := header
		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s.%d", header, n)
		}

		seen[name] = true
		headers[i] = name
	}

	return headers
}
