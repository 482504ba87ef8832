// Package strings provides the text normalization shared by answer values and
// rule predicates.
package strings

import (
	"strings"
)

// Fold trims whitespace and lowercases s. Answer values and condition values
// are compared in folded form.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DedupeFold folds every element and drops empties and duplicates, keeping
// first-seen order.
//
//	DedupeFold([]string{"  Yes ", "no", "YES", ""})
//	// Returns: []string{"yes", "no"}
func DedupeFold(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		folded := Fold(v)
		if folded == "" {
			continue
		}
		if _, ok := seen[folded]; !ok {
			seen[folded] = struct{}{}
			result = append(result, folded)
		}
	}

	return result
}
