package transform

import (
	"sort"

	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/domain/sheet"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal/errors"
)

// LocatorConfig controls header-row detection
type LocatorConfig struct {
	// MaxScanRows bounds how deep into the sheet the locator looks
	MaxScanRows int
	// MinTokens is the minimum recognized-token count a row must reach
	MinTokens int
	// Tokens is the recognized-token set (state codes, known header labels)
	Tokens []string
}

// DefaultLocatorConfig returns the token set and thresholds tuned for AIHW
// admitted-patient-care workbooks
func DefaultLocatorConfig() LocatorConfig {
	return LocatorConfig{
		MaxScanRows: 40,
		MinTokens:   2,
		Tokens: []string{
			// Australian state and territory codes, which appear either as
			// per-state column headers or in the State column header row
			"nsw", "vic", "qld", "wa", "sa", "tas", "act", "nt",
			// Known AIHW column labels
			"state", "year", "separations", "principal diagnosis",
			"age group", "sex", "same-day", "category", "icd",
		},
	}
}

// ScoreRows evaluates every row within the scan depth and returns candidates
// ranked by recognized-token count, earliest row first on ties.
func ScoreRows(s sheet.RawSheet, cfg LocatorConfig) []sheet.HeaderCandidate {
	depth := scanDepth(s, cfg)
	candidates := make([]sheet.HeaderCandidate, 0, depth)
	for i := 0; i < depth; i++ {
		matched, nonEmpty := scoreRow(s.Rows[i], cfg.Tokens)
		if matched == 0 {
			continue
		}
		confidence := 0.0
		if nonEmpty > 0 {
			confidence = float64(matched) / float64(nonEmpty)
		}
		candidates = append(candidates, sheet.HeaderCandidate{
			RowIndex:   i,
			TokenCount: matched,
			Confidence: confidence,
		})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].TokenCount != candidates[b].TokenCount {
			return candidates[a].TokenCount > candidates[b].TokenCount
		}
		return candidates[a].RowIndex < candidates[b].RowIndex
	})
	return candidates
}

// LocateHeader returns the index of the highest-scoring row within the scan
// depth, provided its recognized-token count meets the threshold. Equal
// scores resolve to the earliest row index. A sheet with no qualifying row
// fails with a HEADER_NOT_FOUND error rather than guessing row 0.
func LocateHeader(s sheet.RawSheet, cfg LocatorConfig) (int, error) {
	if s.IsEmpty() {
		return 0, errors.HeaderNotFound(s.Name, 0, cfg.MinTokens)
	}

	candidates := ScoreRows(s, cfg)
	if len(candidates) == 0 || candidates[0].TokenCount < cfg.MinTokens {
		return 0, errors.HeaderNotFound(s.Name, scanDepth(s, cfg), cfg.MinTokens)
	}
	return candidates[0].RowIndex, nil
}

// scanDepth bounds row scanning to the configured depth or the sheet length
func scanDepth(s sheet.RawSheet, cfg LocatorConfig) int {
	if cfg.MaxScanRows > len(s.Rows) {
		return len(s.Rows)
	}
	return cfg.MaxScanRows
}

// scoreRow counts cells whose normalized text equals, or begins with, one of
// the recognized tokens. Prefix matching covers verbose labels such as
// "Principal diagnosis (ICD-10-AM 3-character code)".
func scoreRow(row []string, tokens []string) (matched, nonEmpty int) {
	for _, cell := range row {
		normalized := normalizeCell(cell)
		if normalized == "" {
			continue
		}
		nonEmpty++
		for _, token := range tokens {
			if normalized == token || startsWithToken(normalized, token) {
				matched++
				break
			}
		}
	}
	return matched, nonEmpty
}

func startsWithToken(cell, token string) bool {
	// Only multi-word tokens match as prefixes; short codes like "sa" would
	// otherwise swallow unrelated labels
	if len(token) < 4 {
		return false
	}
	return len(cell) > len(token) && cell[:len(token)] == token
}
