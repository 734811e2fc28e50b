package testkit

import (
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/domain/admissions"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/domain/sheet"
)

// AdmissionsSheet builds a raw sheet shaped like an AIHW reasons-for-care
// table: preamble rows, then a header row at headerRow, then the given data
// rows. Data rows are (state, diagnosis, ageGroup, sex, separations) tuples.
func AdmissionsSheet(name string, headerRow int, data [][]string) sheet.RawSheet {
	rows := make([][]string, 0, headerRow+1+len(data))
	for i := 0; i < headerRow; i++ {
		rows = append(rows, preambleRow(i))
	}
	rows = append(rows, []string{"State", "Principal diagnosis (ICD-10-AM 3-character code)", "Age group", "Sex", "Separations"})
	rows = append(rows, data...)
	return sheet.RawSheet{Name: name, Rows: rows}
}

// preambleRow mimics the title and note rows AIHW places above the header
func preambleRow(i int) []string {
	switch i % 3 {
	case 0:
		return []string{"Admitted patient care: reasons for care"}
	case 1:
		return []string{""}
	default:
		return []string{"Notes: counts are rounded; see footnotes."}
	}
}

// TidyRow builds a tidy row with the standard test dimensions
func TidyRow(year int, state, diagnosis, ageGroup, sex string, separations float64) admissions.TidyRow {
	return admissions.TidyRow{
		Year:               year,
		State:              state,
		Category:           admissions.ChapterFor(diagnosis),
		PrincipalDiagnosis: diagnosis,
		Dimensions: map[string]string{
			"age_group": ageGroup,
			"sex":       sex,
		},
		Separations: &separations,
	}
}

// NullTidyRow builds a tidy row whose measure was unparseable
func NullTidyRow(year int, state, diagnosis, ageGroup, sex string) admissions.TidyRow {
	row := TidyRow(year, state, diagnosis, ageGroup, sex, 0)
	row.Separations = nil
	return row
}
