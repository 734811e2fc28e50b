package admissions

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TidyRow is the canonical unit of record: one (year, state, category,
// dynamic dimensions, measure) observation in long form.
type TidyRow struct {
	Year               int               `json:"year" db:"year"`
	State              string            `json:"state" db:"state"`
	Category           string            `json:"category" db:"category"`
	PrincipalDiagnosis string            `json:"principal_diagnosis,omitempty" db:"principal_diagnosis"`
	Dimensions         map[string]string `json:"dimensions,omitempty"`
	// Separations is nil when the source cell could not be coerced to a
	// number; the row is still emitted and counted in run diagnostics.
	Separations *float64 `json:"separations" db:"separations"`
}

// CleanRow is one aggregated row: the full dimension tuple with summed
// separations. Derived deterministically from tidy rows via group-sum.
type CleanRow struct {
	Year               int               `json:"year" db:"year"`
	State              string            `json:"state" db:"state"`
	Category           string            `json:"category" db:"category"`
	PrincipalDiagnosis string            `json:"principal_diagnosis,omitempty" db:"principal_diagnosis"`
	Dimensions         map[string]string `json:"dimensions,omitempty"`
	Separations        float64           `json:"separations" db:"separations"`
}

// GroupKey returns a deterministic composite key over every dimension field.
// Dynamic dimensions are folded in sorted name order so that key equality is
// exact string equality regardless of map iteration order.
func (r TidyRow) GroupKey() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%s|%s|%s", r.Year, r.State, r.Category, r.PrincipalDiagnosis)
	for _, name := range r.DimensionNames() {
		fmt.Fprintf(&b, "|%s=%s", name, r.Dimensions[name])
	}
	return b.String()
}

// DimensionNames returns the row's dynamic dimension names in sorted order
func (r TidyRow) DimensionNames() []string {
	return sortedDimensionNames(r.Dimensions)
}

func sortedDimensionNames(dims map[string]string) []string {
	names := make([]string, 0, len(dims))
	for name := range dims {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DimensionColumns returns the union of dynamic dimension names across all
// rows, sorted. This is the set of extra text columns the persisted schema
// carries for a given run.
func DimensionColumns(rows []TidyRow) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for name := range row.Dimensions {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SheetSkip records one sheet that was skipped and why
type SheetSkip struct {
	SheetName string `json:"sheet_name"`
	Reason    string `json:"reason"`
}

// RunReport holds run-level diagnostics. Nothing is silently dropped by the
// pipeline without being counted here.
type RunReport struct {
	RunID             uuid.UUID   `json:"run_id"`
	SourceURL         string      `json:"source_url,omitempty"`
	Year              int         `json:"year"`
	StartedAt         time.Time   `json:"started_at"`
	FinishedAt        time.Time   `json:"finished_at"`
	SheetsProcessed   int         `json:"sheets_processed"`
	SheetsSkipped     []SheetSkip `json:"sheets_skipped,omitempty"`
	StagingRows       int         `json:"staging_rows"`
	CleanRows         int         `json:"clean_rows"`
	DroppedFooterRows int         `json:"dropped_footer_rows"`
	UnparseableCells  int         `json:"unparseable_cells"`
}

// NewRunReport creates a report with a fresh run identity
func NewRunReport() *RunReport {
	return &RunReport{
		RunID:     uuid.New(),
		StartedAt: time.Now().UTC(),
	}
}
