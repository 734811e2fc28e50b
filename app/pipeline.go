package app

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/domain/admissions"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/domain/sheet"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/domain/transform"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal/errors"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/ports"
)

// Pipeline runs one full source-snapshot refresh: fetch, transform every
// sheet, aggregate, replace both tables.
type Pipeline struct {
	fetcher ports.SourceFetcher
	reader  ports.WorkbookReader
	store   ports.AdmissionsStore
	locator transform.LocatorConfig
	log     *internal.Logger
}

// NewPipeline wires the pipeline from its collaborators
func NewPipeline(fetcher ports.SourceFetcher, reader ports.WorkbookReader, store ports.AdmissionsStore, locator transform.LocatorConfig, log *internal.Logger) *Pipeline {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Pipeline{
		fetcher: fetcher,
		reader:  reader,
		store:   store,
		locator: locator,
		log:     log,
	}
}

// sheetResult carries one sheet's transformation output back to the
// deterministic combination step
type sheetResult struct {
	rows  []admissions.TidyRow
	stats transform.NormalizeStats
	skip  *admissions.SheetSkip
}

// Run executes the pipeline once. Header-not-found and other sheet-level
// failures skip that sheet and are counted in the report; store-level
// failures abort the whole run without partial commits.
func (p *Pipeline) Run(ctx context.Context) (*admissions.RunReport, error) {
	report := admissions.NewRunReport()

	workbook, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	report.SourceURL = workbook.URL
	report.Year = workbook.Year
	p.log.Info("[Pipeline] run %s: fetched %s (vintage %d, %d bytes)",
		report.RunID, workbook.URL, workbook.Year, len(workbook.Data))

	sheets, err := p.reader.Sheets(workbook.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse workbook from %s", workbook.URL)
	}

	// Each sheet's conversion is a pure function of its input, so sheets fan
	// out safely; results are recombined in sheet order for determinism.
	results := make([]sheetResult, len(sheets))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range sheets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.transformSheet(s, workbook.Year)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tidy []admissions.TidyRow
	for _, result := range results {
		if result.skip != nil {
			report.SheetsSkipped = append(report.SheetsSkipped, *result.skip)
			continue
		}
		report.SheetsProcessed++
		report.DroppedFooterRows += result.stats.DroppedFooterRows
		report.UnparseableCells += result.stats.UnparseableCells
		tidy = append(tidy, result.rows...)
	}
	report.StagingRows = len(tidy)

	clean := transform.Aggregate(tidy)
	report.CleanRows = len(clean)

	if err := p.checkConservation(tidy, clean); err != nil {
		return nil, err
	}

	if err := p.store.ReplaceStaging(ctx, tidy); err != nil {
		return nil, err
	}
	if err := p.store.ReplaceClean(ctx, clean); err != nil {
		return nil, err
	}

	report.FinishedAt = time.Now().UTC()
	p.log.Info("[Pipeline] run %s: %d staging rows, %d clean rows, %d sheets processed, %d skipped, %d unparseable cells",
		report.RunID, report.StagingRows, report.CleanRows,
		report.SheetsProcessed, len(report.SheetsSkipped), report.UnparseableCells)
	return report, nil
}

// transformSheet runs the core header -> columns -> scrub -> normalize chain
// for a single sheet
func (p *Pipeline) transformSheet(s sheet.RawSheet, vintageYear int) sheetResult {
	headerIdx, err := transform.LocateHeader(s, p.locator)
	if err != nil {
		p.log.Warn("[Pipeline] skipping sheet %q: %v", s.Name, err)
		return sheetResult{skip: &admissions.SheetSkip{SheetName: s.Name, Reason: err.Error()}}
	}

	columns, err := transform.ReconcileColumns(s.Rows[headerIdx])
	if err != nil {
		p.log.Error("[Pipeline] aborting sheet %q: %v", s.Name, err)
		return sheetResult{skip: &admissions.SheetSkip{SheetName: s.Name, Reason: err.Error()}}
	}

	layout, err := transform.DetectLayout(columns)
	if err != nil {
		p.log.Warn("[Pipeline] skipping sheet %q: %v", s.Name, err)
		return sheetResult{skip: &admissions.SheetSkip{SheetName: s.Name, Reason: err.Error()}}
	}

	rows, stats := transform.Normalize(columns, s.Rows[headerIdx+1:], vintageYear, layout)
	p.log.Debug("[Pipeline] sheet %q: header at row %d, %d tidy rows, %d footers dropped",
		s.Name, headerIdx, stats.RowsEmitted, stats.DroppedFooterRows)
	return sheetResult{rows: rows, stats: stats}
}

// checkConservation verifies sum(clean) == sum(non-null staging); a mismatch
// means row loss or double counting in the aggregation step.
func (p *Pipeline) checkConservation(tidy []admissions.TidyRow, clean []admissions.CleanRow) error {
	stagingSum := transform.NonNullSum(tidy)

	cleanValues := make([]float64, len(clean))
	for i, row := range clean {
		cleanValues[i] = row.Separations
	}
	cleanSum := floats.Sum(cleanValues)

	if math.Abs(stagingSum-cleanSum) > 1e-6*math.Max(1, math.Abs(stagingSum)) {
		return errors.InternalError("conservation law violated: staging and clean separations totals diverge")
	}
	return nil
}
