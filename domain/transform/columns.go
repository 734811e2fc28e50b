package transform

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal/errors"
)

var nonIdentifierPattern = regexp.MustCompile(`[^a-z0-9]+`)

// ReconcileColumns converts a raw header row into a sequence of unique,
// normalized column names. Duplicates are suffixed _2, _3, ... in
// left-to-right order of first appearance, so repeated runs on the same sheet
// yield identical names and column identity never depends on iteration order.
// The function is idempotent: reconciling an already-reconciled list returns
// it unchanged.
func ReconcileColumns(header []string) ([]string, error) {
	names := make([]string, 0, len(header))
	used := make(map[string]bool, len(header))

	for _, raw := range header {
		name := NormalizeColumnName(raw)
		if used[name] {
			suffix := 2
			for used[fmt.Sprintf("%s_%d", name, suffix)] {
				suffix++
			}
			name = fmt.Sprintf("%s_%d", name, suffix)
		}
		used[name] = true
		names = append(names, name)
	}

	// The suffixing policy guarantees uniqueness; a residual duplicate is an
	// internal-invariant violation, fatal for the sheet.
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, errors.ColumnCollision(name)
		}
		seen[name] = true
	}
	return names, nil
}

// NormalizeColumnName lowers case, trims whitespace and collapses runs of
// illegal or ambiguous characters into single underscores. Empty header cells
// become "column".
func NormalizeColumnName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = nonIdentifierPattern.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return "column"
	}
	return name
}
