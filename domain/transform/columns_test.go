package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileColumnsNormalizes(t *testing.T) {
	columns, err := ReconcileColumns([]string{
		" State ",
		"Principal diagnosis (ICD-10-AM 3-character code)",
		"Age group",
		"Same-day",
		"Separations",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"state",
		"principal_diagnosis_icd_10_am_3_character_code",
		"age_group",
		"same_day",
		"separations",
	}, columns)
}

func TestReconcileColumnsSuffixesDuplicatesLeftToRight(t *testing.T) {
	columns, err := ReconcileColumns([]string{"State", "state ", "STATE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"state", "state_2", "state_3"}, columns)
}

func TestReconcileColumnsFirstOccurrenceUnsuffixed(t *testing.T) {
	columns, err := ReconcileColumns([]string{"Sex", "Sex"})
	require.NoError(t, err)
	assert.Equal(t, "sex", columns[0])
	assert.Equal(t, "sex_2", columns[1])
}

func TestReconcileColumnsAvoidsExistingSuffixCollisions(t *testing.T) {
	// Left-to-right suffixing: the duplicate "x" claims "x_2" first, so the
	// genuine "x_2" column is itself re-suffixed
	columns, err := ReconcileColumns([]string{"x", "x", "x_2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "x_2", "x_2_2"}, columns)
}

func TestReconcileColumnsIdempotent(t *testing.T) {
	once, err := ReconcileColumns([]string{"State", "Age group", "Age group", "Separations", ""})
	require.NoError(t, err)

	twice, err := ReconcileColumns(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestReconcileColumnsEmptyCells(t *testing.T) {
	columns, err := ReconcileColumns([]string{"", "  ", "State"})
	require.NoError(t, err)
	assert.Equal(t, []string{"column", "column_2", "state"}, columns)
}

func TestNormalizeColumnName(t *testing.T) {
	assert.Equal(t, "age_group", NormalizeColumnName("  Age   Group  "))
	assert.Equal(t, "icd_chapter", NormalizeColumnName("ICD chapter"))
	assert.Equal(t, "column", NormalizeColumnName("---"))
}
