package transform

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/domain/admissions"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal/errors"
)

var yearColumnPattern = regexp.MustCompile(`^(19|20)\d{2}$`)

// Layout declares which reconciled columns play fixed roles. Everything not
// claimed here becomes a dynamic dimension, which is what lets new workbook
// vintages flow through without code changes.
type Layout struct {
	YearColumn      string
	StateColumn     string
	DiagnosisColumn string
	CategoryColumn  string
	// MeasureColumns may name several columns; per-year columns melt each
	// original row into one tidy row per measure column.
	MeasureColumns []string
}

// DetectLayout resolves fixed roles by name over a reconciled column list.
// Measure columns are "separations" or literal year columns (wide per-year
// sheets). Fails when no measure column is recognizable, since a sheet
// without a measure cannot produce tidy rows.
func DetectLayout(columns []string) (Layout, error) {
	layout := Layout{}
	for _, col := range columns {
		switch {
		case col == "year":
			layout.YearColumn = col
		case col == "state":
			layout.StateColumn = col
		case layout.DiagnosisColumn == "" && (strings.Contains(col, "diagnosis") || col == "icd3"):
			layout.DiagnosisColumn = col
		case col == "category" || col == "icd_chapter":
			layout.CategoryColumn = col
		case col == "separations" || yearColumnPattern.MatchString(col):
			layout.MeasureColumns = append(layout.MeasureColumns, col)
		}
	}
	if len(layout.MeasureColumns) == 0 {
		return Layout{}, errors.New(errors.CodeInternalError, "no measure column recognized in header")
	}
	return layout, nil
}

// fixed reports whether a column is claimed by a fixed role or measure
func (l Layout) fixed(col string) bool {
	if col == l.YearColumn || col == l.StateColumn || col == l.DiagnosisColumn || col == l.CategoryColumn {
		return true
	}
	for _, m := range l.MeasureColumns {
		if col == m {
			return true
		}
	}
	return false
}

// NormalizeStats counts what the normalizer absorbed or dropped, feeding
// run-level diagnostics.
type NormalizeStats struct {
	RowsEmitted       int
	DroppedFooterRows int
	UnparseableCells  int
}

// Normalize reshapes a scrubbed wide grid into tidy long-form rows: one
// TidyRow per (original row, measure column) pair. Rows whose every dimension
// is empty are dropped as spreadsheet footers or notes. vintageYear supplies
// the year when the sheet carries no year column and the measure column is
// not itself a year.
func Normalize(columns []string, rows [][]string, vintageYear int, layout Layout) ([]admissions.TidyRow, NormalizeStats) {
	stats := NormalizeStats{}
	tidy := make([]admissions.TidyRow, 0, len(rows)*len(layout.MeasureColumns))

	dimensionCols := make([]string, 0, len(columns))
	for _, col := range columns {
		if !layout.fixed(col) {
			dimensionCols = append(dimensionCols, col)
		}
	}

	for _, row := range rows {
		cells := cellsByColumn(columns, row)

		state := normalizeState(cells[layout.StateColumn])
		diagnosis := ScrubDimension(cells[layout.DiagnosisColumn])
		category := ScrubDimension(cells[layout.CategoryColumn])

		dims := make(map[string]string, len(dimensionCols))
		hasDimension := state != "" || diagnosis != "" || category != ""
		for _, col := range dimensionCols {
			value := ScrubDimension(cells[col])
			dims[col] = value
			if value != "" {
				hasDimension = true
			}
		}
		if !hasDimension {
			stats.DroppedFooterRows++
			continue
		}

		if category == "" {
			if layout.DiagnosisColumn != "" {
				category = admissions.ChapterFor(diagnosis)
			} else {
				category = admissions.CategoryOther
			}
		}

		rowYear := vintageYear
		if layout.YearColumn != "" {
			if y, err := strconv.Atoi(ScrubDimension(cells[layout.YearColumn])); err == nil {
				rowYear = y
			}
		}

		for _, measureCol := range layout.MeasureColumns {
			year := rowYear
			if y, err := strconv.Atoi(measureCol); err == nil {
				year = y
			}

			separations := ScrubMeasure(cells[measureCol])
			if separations == nil && strings.TrimSpace(cells[measureCol]) != "" {
				stats.UnparseableCells++
			}

			tidy = append(tidy, admissions.TidyRow{
				Year:               year,
				State:              state,
				Category:           category,
				PrincipalDiagnosis: diagnosis,
				Dimensions:         copyDimensions(dims),
				Separations:        separations,
			})
			stats.RowsEmitted++
		}
	}

	return tidy, stats
}

// cellsByColumn pairs reconciled column names with row cells, tolerating
// ragged rows shorter or longer than the header
func cellsByColumn(columns []string, row []string) map[string]string {
	cells := make(map[string]string, len(columns))
	for i, col := range columns {
		if i < len(row) {
			cells[col] = row[i]
		} else {
			cells[col] = ""
		}
	}
	return cells
}

// normalizeState trims and uppercases short jurisdiction codes; spelled-out
// names keep their casing
func normalizeState(raw string) string {
	state := ScrubDimension(raw)
	if len(state) <= 3 {
		return strings.ToUpper(state)
	}
	return state
}

func copyDimensions(dims map[string]string) map[string]string {
	out := make(map[string]string, len(dims))
	for k, v := range dims {
		out[k] = v
	}
	return out
}
