package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/domain/admissions"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal/errors"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/ports"
)

const (
	// StagingTable holds tidy rows, one per source record
	StagingTable = "staging_admissions"
	// CleanTable holds aggregated rows, one per unique dimension tuple
	CleanTable = "clean_admissions"

	// insertChunkSize keeps multi-row inserts under the driver parameter limit
	insertChunkSize = 500
)

// fixedColumns are present in both tables ahead of the run's dynamic
// dimension columns
var fixedColumns = []string{"year", "state", "category", "principal_diagnosis"}

// AdmissionsRepository persists and serves both admission tables
type AdmissionsRepository struct {
	db *sqlx.DB
}

// NewAdmissionsRepository creates a new admissions repository
func NewAdmissionsRepository(db *sqlx.DB) *AdmissionsRepository {
	return &AdmissionsRepository{db: db}
}

var (
	_ ports.AdmissionsStore  = (*AdmissionsRepository)(nil)
	_ ports.AdmissionsReader = (*AdmissionsRepository)(nil)
)

// ReplaceStaging atomically replaces the staging table with this run's tidy
// rows. Unparseable measures persist as NULL.
func (r *AdmissionsRepository) ReplaceStaging(ctx context.Context, rows []admissions.TidyRow) error {
	dims := admissions.DimensionColumns(rows)
	records := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		record := []interface{}{row.Year, row.State, row.Category, nullString(row.PrincipalDiagnosis)}
		for _, dim := range dims {
			record = append(record, row.Dimensions[dim])
		}
		record = append(record, nullFloat(row.Separations))
		records = append(records, record)
	}
	return r.replaceTable(ctx, StagingTable, dims, records)
}

// ReplaceClean atomically replaces the clean table with this run's
// aggregated rows
func (r *AdmissionsRepository) ReplaceClean(ctx context.Context, rows []admissions.CleanRow) error {
	dims := cleanDimensionColumns(rows)
	records := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		record := []interface{}{row.Year, row.State, row.Category, nullString(row.PrincipalDiagnosis)}
		for _, dim := range dims {
			record = append(record, row.Dimensions[dim])
		}
		record = append(record, row.Separations)
		records = append(records, record)
	}
	return r.replaceTable(ctx, CleanTable, dims, records)
}

// replaceTable performs the two-phase idempotent replace: build <table>_new,
// bulk-insert, then drop-and-rename inside one transaction so concurrent
// readers never observe a partial table.
func (r *AdmissionsRepository) replaceTable(ctx context.Context, table string, dims []string, records [][]interface{}) error {
	staging := table + "_new"

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.LoadFailure(table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", pq.QuoteIdentifier(staging))); err != nil {
		return errors.LoadFailure(table, err)
	}
	if _, err := tx.ExecContext(ctx, createTableDDL(staging, dims)); err != nil {
		return errors.LoadFailure(table, err)
	}

	columnCount := len(fixedColumns) + len(dims) + 1
	insertPrefix := insertStatementPrefix(staging, dims)
	for start := 0; start < len(records); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(records) {
			end = len(records)
		}
		query, args := buildMultiRowInsert(insertPrefix, columnCount, records[start:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.LoadFailure(table, err)
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", pq.QuoteIdentifier(table))); err != nil {
		return errors.LoadFailure(table, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", pq.QuoteIdentifier(staging), pq.QuoteIdentifier(table))); err != nil {
		return errors.LoadFailure(table, err)
	}

	if err := tx.Commit(); err != nil {
		return errors.LoadFailure(table, err)
	}
	return nil
}

// QueryAdmissions serves the dashboard consumer: clean rows when present,
// staging rows otherwise. Returns the table the rows came from.
func (r *AdmissionsRepository) QueryAdmissions(ctx context.Context) ([]map[string]interface{}, string, error) {
	rows, err := r.queryTable(ctx, CleanTable)
	if err != nil {
		return nil, "", err
	}
	if len(rows) > 0 {
		return rows, CleanTable, nil
	}

	rows, err = r.queryTable(ctx, StagingTable)
	if err != nil {
		return nil, "", err
	}
	return rows, StagingTable, nil
}

// queryTable reads a whole table as generic rows; a missing table reads as
// empty so the fallback contract survives a never-run pipeline
func (r *AdmissionsRepository) queryTable(ctx context.Context, table string) ([]map[string]interface{}, error) {
	result, err := r.db.QueryxContext(ctx, fmt.Sprintf("SELECT * FROM %s", pq.QuoteIdentifier(table)))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "42P01" { // undefined_table
			return nil, nil
		}
		return nil, errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("failed to query %s: %w", table, err))
	}
	defer result.Close()

	var rows []map[string]interface{}
	for result.Next() {
		row := make(map[string]interface{})
		if err := result.MapScan(row); err != nil {
			return nil, errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("failed to scan %s row: %w", table, err))
		}
		rows = append(rows, row)
	}
	return rows, result.Err()
}

// createTableDDL builds the schema for one table: fixed columns, the run's
// dynamic dimension columns as text, then the measure
func createTableDDL(table string, dims []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", pq.QuoteIdentifier(table))
	b.WriteString("\tyear INTEGER,\n")
	b.WriteString("\tstate TEXT,\n")
	b.WriteString("\tcategory TEXT,\n")
	b.WriteString("\tprincipal_diagnosis TEXT,\n")
	for _, dim := range dims {
		fmt.Fprintf(&b, "\t%s TEXT,\n", pq.QuoteIdentifier(dim))
	}
	b.WriteString("\tseparations NUMERIC\n)")
	return b.String()
}

func insertStatementPrefix(table string, dims []string) string {
	columns := make([]string, 0, len(fixedColumns)+len(dims)+1)
	for _, col := range fixedColumns {
		columns = append(columns, pq.QuoteIdentifier(col))
	}
	for _, dim := range dims {
		columns = append(columns, pq.QuoteIdentifier(dim))
	}
	columns = append(columns, pq.QuoteIdentifier("separations"))
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES ", pq.QuoteIdentifier(table), strings.Join(columns, ", "))
}

// buildMultiRowInsert expands a chunk of records into one parameterized
// multi-row VALUES statement
func buildMultiRowInsert(prefix string, columnCount int, records [][]interface{}) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(prefix)

	args := make([]interface{}, 0, len(records)*columnCount)
	placeholder := 1
	for i, record := range records {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := 0; j < columnCount; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", placeholder)
			placeholder++
		}
		b.WriteString(")")
		args = append(args, record...)
	}
	return b.String(), args
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// cleanDimensionColumns mirrors admissions.DimensionColumns for clean rows
func cleanDimensionColumns(rows []admissions.CleanRow) []string {
	tidy := make([]admissions.TidyRow, len(rows))
	for i, row := range rows {
		tidy[i] = admissions.TidyRow{Dimensions: row.Dimensions}
	}
	return admissions.DimensionColumns(tidy)
}
