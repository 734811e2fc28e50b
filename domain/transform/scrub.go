package transform

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// tupleArtifactPattern matches stringified tuple remnants such as
// `("Diabetes", 1.23)` left behind by upstream serialization; only the
// embedded measure is kept.
var tupleArtifactPattern = regexp.MustCompile(`^\(\s*['"][^'"]*['"]\s*,\s*(.+?)\s*\)$`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// ScrubMeasure coerces a free-text measure cell into a number. Tuple
// artifacts are unwrapped first; thousands separators, percent signs,
// currency symbols and whitespace are stripped. Separations are counts, so a
// coercion result below zero (minus sign, accounting parentheses) is treated
// as unparseable. Returns nil for unparseable values; the row must still be
// emitted with a null measure.
func ScrubMeasure(raw string) *float64 {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	if m := tupleArtifactPattern.FindStringSubmatch(value); m != nil {
		value = m[1]
	}

	if parsed, ok := parseNumeric(value); ok && parsed >= 0 {
		return &parsed
	}
	return nil
}

// ScrubDimension normalizes a dimension cell for whitespace only: trim plus
// collapse of internal runs. Dimension cells are never numerically coerced.
func ScrubDimension(raw string) string {
	return whitespacePattern.ReplaceAllString(strings.TrimSpace(raw), " ")
}

// parseNumeric applies the deterministic numeric coercion rules
func parseNumeric(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, false
	}

	for _, symbol := range []string{"$", "€", "£", "%"} {
		cleaned = strings.ReplaceAll(cleaned, symbol, "")
	}

	// Thousands separators
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = whitespacePattern.ReplaceAllString(cleaned, "")

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, false
	}
	return value, true
}

// normalizeCell lowers and whitespace-normalizes a cell for token matching
func normalizeCell(raw string) string {
	return strings.ToLower(ScrubDimension(raw))
}
