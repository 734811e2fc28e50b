package admissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupKeyIndependentOfMapOrder(t *testing.T) {
	a := TidyRow{
		Year: 2023, State: "NSW", Category: "Other", PrincipalDiagnosis: "E11",
		Dimensions: map[string]string{"sex": "Male", "age_group": "25-34"},
	}
	b := TidyRow{
		Year: 2023, State: "NSW", Category: "Other", PrincipalDiagnosis: "E11",
		Dimensions: map[string]string{"age_group": "25-34", "sex": "Male"},
	}

	assert.Equal(t, a.GroupKey(), b.GroupKey())
	assert.Equal(t, "2023|NSW|Other|E11|age_group=25-34|sex=Male", a.GroupKey())
}

func TestDimensionNamesSorted(t *testing.T) {
	row := TidyRow{Dimensions: map[string]string{"sex": "Male", "age_group": "25-34", "same_day": "Yes"}}
	assert.Equal(t, []string{"age_group", "same_day", "sex"}, row.DimensionNames())
}

func TestDimensionColumnsUnion(t *testing.T) {
	rows := []TidyRow{
		{Dimensions: map[string]string{"sex": "Male"}},
		{Dimensions: map[string]string{"age_group": "25-34"}},
	}
	assert.Equal(t, []string{"age_group", "sex"}, DimensionColumns(rows))
}
