package excel

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/domain/sheet"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/ports"
)

// Reader parses workbook bytes into untyped per-worksheet grids
type Reader struct{}

// NewReader creates a workbook reader
func NewReader() *Reader {
	return &Reader{}
}

var _ ports.WorkbookReader = (*Reader)(nil)

// Sheets opens the workbook from memory and returns one RawSheet per visible
// worksheet, preserving cell text exactly as excelize renders it. Hidden
// sheets are skipped; AIHW workbooks use them for notes and lookup scaffolding.
func (r *Reader) Sheets(data []byte) ([]sheet.RawSheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var sheets []sheet.RawSheet
	for _, name := range f.GetSheetList() {
		visible, err := f.GetSheetVisible(name)
		if err == nil && !visible {
			continue
		}

		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		sheets = append(sheets, sheet.RawSheet{Name: name, Rows: rows})
	}

	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook contains no visible sheets")
	}
	return sheets, nil
}
