package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func row(year int, state, category string, separations float64) map[string]interface{} {
	return map[string]interface{}{
		"year":        int64(year),
		"state":       state,
		"category":    category,
		"separations": separations,
	}
}

func TestGenerateTopStateAndCategory(t *testing.T) {
	md := Generate([]map[string]interface{}{
		row(2023, "NSW", "J: Respiratory system", 300),
		row(2023, "VIC", "J: Respiratory system", 100),
		row(2023, "NSW", "E: Endocrine & metabolic", 50),
	})

	assert.Contains(t, md, "**NSW**")
	assert.Contains(t, md, "J: Respiratory system")
}

func TestGenerateYearTrend(t *testing.T) {
	md := Generate([]map[string]interface{}{
		row(2021, "NSW", "Other", 100),
		row(2022, "NSW", "Other", 150),
		row(2023, "NSW", "Other", 200),
	})

	assert.Contains(t, md, "increased 100.0%")
	assert.Contains(t, md, "from 2021 to 2023")
}

func TestGenerateDecreasingTrend(t *testing.T) {
	md := Generate([]map[string]interface{}{
		row(2022, "NSW", "Other", 200),
		row(2023, "NSW", "Other", 150),
	})

	assert.Contains(t, md, "decreased 25.0%")
}

func TestGenerateEmptyInput(t *testing.T) {
	assert.Empty(t, Generate(nil))
}

func TestGenerateHandlesDriverNumericTypes(t *testing.T) {
	// NUMERIC columns arrive from the driver as []byte
	md := Generate([]map[string]interface{}{
		{
			"year":        []byte("2023"),
			"state":       "QLD",
			"category":    "Other",
			"separations": []byte("1234.5"),
		},
	})
	assert.Contains(t, md, "**QLD**")
	assert.Contains(t, md, "1,234")
}
