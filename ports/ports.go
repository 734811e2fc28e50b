package ports

import (
	"context"

	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/domain/admissions"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/domain/sheet"
)

// Workbook is the raw payload handed over by the source collaborator
type Workbook struct {
	Data []byte
	URL  string
	// Year is the source vintage derived from the URL or configuration
	Year int
}

// SourceFetcher supplies raw workbook bytes. The transformation core never
// performs HTTP or HTML discovery itself.
type SourceFetcher interface {
	Fetch(ctx context.Context) (*Workbook, error)
}

// WorkbookReader parses workbook bytes into untyped per-worksheet grids
type WorkbookReader interface {
	Sheets(data []byte) ([]sheet.RawSheet, error)
}

// AdmissionsStore persists both tiers idempotently: re-running the pipeline
// against the same source snapshot is a no-op with respect to final table
// contents. Each replace is atomic from the pipeline's perspective.
type AdmissionsStore interface {
	ReplaceStaging(ctx context.Context, rows []admissions.TidyRow) error
	ReplaceClean(ctx context.Context, rows []admissions.CleanRow) error
}

// AdmissionsReader serves the dashboard consumer: clean rows when present,
// staging rows otherwise.
type AdmissionsReader interface {
	// QueryAdmissions returns generic rows plus the table they came from
	QueryAdmissions(ctx context.Context) ([]map[string]interface{}, string, error)
}
