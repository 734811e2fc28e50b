package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/domain/sheet"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal/errors"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal/testkit"
)

func TestLocateHeaderFindsBuriedHeaderRow(t *testing.T) {
	s := testkit.AdmissionsSheet("Table 1", 3, [][]string{
		{"NSW", "E11", "25-34", "Male", "120"},
	})

	idx, err := LocateHeader(s, DefaultLocatorConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, idx)
}

func TestLocateHeaderIgnoresDataRowsBelowThreshold(t *testing.T) {
	// Data rows score at most one token (the state code) and must not be
	// mistaken for the header
	s := testkit.AdmissionsSheet("Table 1", 0, [][]string{
		{"NSW", "E11", "25-34", "Male", "120"},
		{"VIC", "J45", "35-44", "Female", "98"},
	})

	idx, err := LocateHeader(s, DefaultLocatorConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestLocateHeaderFailsInsteadOfGuessing(t *testing.T) {
	s := sheet.RawSheet{
		Name: "Notes",
		Rows: [][]string{
			{"Data quality statement"},
			{"Counts under 5 are suppressed."},
			{""},
		},
	}

	_, err := LocateHeader(s, DefaultLocatorConfig())
	require.Error(t, err)
	assert.Equal(t, errors.CodeHeaderNotFound, errors.GetCode(err))
}

func TestLocateHeaderRespectsScanDepth(t *testing.T) {
	rows := make([][]string, 0, 45)
	for i := 0; i < 44; i++ {
		rows = append(rows, []string{"preamble"})
	}
	rows = append(rows, []string{"State", "Sex", "Separations"})
	s := sheet.RawSheet{Name: "Deep", Rows: rows}

	cfg := DefaultLocatorConfig()
	_, err := LocateHeader(s, cfg)
	assert.Equal(t, errors.CodeHeaderNotFound, errors.GetCode(err))

	cfg.MaxScanRows = 50
	idx, err := LocateHeader(s, cfg)
	require.NoError(t, err)
	assert.Equal(t, 44, idx)
}

func TestLocateHeaderPrefersHighestScoringRow(t *testing.T) {
	// A sparse label row above the real header can meet the threshold on its
	// own; the full header's higher token count must still win
	s := sheet.RawSheet{
		Name: "Table 2",
		Rows: [][]string{
			{"State", "Year"},
			{""},
			{"State", "Principal diagnosis (ICD-10-AM 3-character code)", "Age group", "Sex", "Separations"},
			{"NSW", "E11", "25-34", "Male", "120"},
		},
	}

	idx, err := LocateHeader(s, DefaultLocatorConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestLocateHeaderEarliestRowWinsOnTies(t *testing.T) {
	header := []string{"State", "Sex", "Separations"}
	s := sheet.RawSheet{
		Name: "Twice",
		Rows: [][]string{{""}, header, header},
	}

	idx, err := LocateHeader(s, DefaultLocatorConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestScoreRowsRanksByTokenCountThenRowIndex(t *testing.T) {
	s := sheet.RawSheet{
		Name: "Ranked",
		Rows: [][]string{
			{"NSW"},
			{"State", "Sex"},
			{"State", "Sex", "Separations", "Age group"},
		},
	}

	candidates := ScoreRows(s, DefaultLocatorConfig())
	require.Len(t, candidates, 3)
	assert.Equal(t, 2, candidates[0].RowIndex)
	assert.Equal(t, 4, candidates[0].TokenCount)
	assert.Equal(t, 1, candidates[1].RowIndex)
	assert.Equal(t, 0, candidates[2].RowIndex)
	assert.InDelta(t, 1.0, candidates[0].Confidence, 1e-9)
}

func TestLocateHeaderEmptySheet(t *testing.T) {
	_, err := LocateHeader(sheet.RawSheet{Name: "Empty"}, DefaultLocatorConfig())
	assert.Equal(t, errors.CodeHeaderNotFound, errors.GetCode(err))
}
