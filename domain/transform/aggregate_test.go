package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/domain/admissions"
	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/internal/testkit"
)

func TestAggregateGroupSum(t *testing.T) {
	tidy := []admissions.TidyRow{
		testkit.TidyRow(2023, "NSW", "E11", "25-34", "Male", 120),
		testkit.TidyRow(2023, "NSW", "E11", "25-34", "Male", 130),
		testkit.TidyRow(2023, "VIC", "E11", "25-34", "Male", 250),
	}

	clean := Aggregate(tidy)
	require.Len(t, clean, 2)
	assert.Equal(t, "NSW", clean[0].State)
	assert.InDelta(t, 250, clean[0].Separations, 1e-9)
	assert.Equal(t, "VIC", clean[1].State)
	assert.InDelta(t, 250, clean[1].Separations, 1e-9)
}

func TestAggregateConservationLaw(t *testing.T) {
	tidy := []admissions.TidyRow{
		testkit.TidyRow(2023, "NSW", "E11", "25-34", "Male", 120),
		testkit.TidyRow(2023, "NSW", "J45", "25-34", "Male", 80),
		testkit.TidyRow(2022, "QLD", "E11", "65+", "Female", 41.5),
		testkit.NullTidyRow(2023, "VIC", "E11", "25-34", "Male"),
	}

	clean := Aggregate(tidy)

	var cleanSum float64
	for _, row := range clean {
		cleanSum += row.Separations
	}
	assert.InDelta(t, NonNullSum(tidy), cleanSum, 1e-9)
	assert.InDelta(t, 241.5, cleanSum, 1e-9)
}

func TestAggregateNullMeasureStillEstablishesGroup(t *testing.T) {
	clean := Aggregate([]admissions.TidyRow{
		testkit.NullTidyRow(2023, "VIC", "E11", "25-34", "Male"),
	})
	require.Len(t, clean, 1)
	assert.Zero(t, clean[0].Separations)
}

func TestAggregateEmptyInputYieldsEmptyOutput(t *testing.T) {
	clean := Aggregate(nil)
	assert.Empty(t, clean)

	clean = Aggregate([]admissions.TidyRow{})
	assert.Empty(t, clean)
}

func TestAggregateSeparatesDistinctDimensionTuples(t *testing.T) {
	tidy := []admissions.TidyRow{
		testkit.TidyRow(2023, "NSW", "E11", "25-34", "Male", 10),
		testkit.TidyRow(2023, "NSW", "E11", "25-34", "Female", 20),
		testkit.TidyRow(2022, "NSW", "E11", "25-34", "Male", 30),
	}

	clean := Aggregate(tidy)
	assert.Len(t, clean, 3)
}

func TestAggregateDeterministicOrder(t *testing.T) {
	tidy := []admissions.TidyRow{
		testkit.TidyRow(2023, "VIC", "E11", "25-34", "Male", 1),
		testkit.TidyRow(2023, "NSW", "E11", "25-34", "Male", 1),
	}

	first := Aggregate(tidy)
	second := Aggregate(tidy)
	assert.Equal(t, first, second)
	assert.Equal(t, "NSW", first[0].State)
}
