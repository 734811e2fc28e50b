package transform

import (
	"sort"

	"github.com/justinminlee/healthcare-AIHW-ETL-pipeline/domain/admissions"
)

// Aggregate group-reduces tidy rows by the full dimension tuple and sums the
// measure. Grouping key equality is exact string equality after upstream
// normalization; no fuzzy matching. Null measures contribute nothing to the
// sum but still establish their group, so
// sum(clean) == sum(non-null staging) holds for every run. An empty input
// yields an empty output, never an error; the dashboard consumer relies on
// an empty clean table to trigger its staging fallback.
func Aggregate(rows []admissions.TidyRow) []admissions.CleanRow {
	groups := make(map[string]*admissions.CleanRow)
	order := make([]string, 0)

	for _, row := range rows {
		key := row.GroupKey()
		group, ok := groups[key]
		if !ok {
			group = &admissions.CleanRow{
				Year:               row.Year,
				State:              row.State,
				Category:           row.Category,
				PrincipalDiagnosis: row.PrincipalDiagnosis,
				Dimensions:         row.Dimensions,
			}
			groups[key] = group
			order = append(order, key)
		}
		if row.Separations != nil {
			group.Separations += *row.Separations
		}
	}

	sort.Strings(order)
	clean := make([]admissions.CleanRow, 0, len(groups))
	for _, key := range order {
		clean = append(clean, *groups[key])
	}
	return clean
}

// NonNullSum totals the non-null measures of a staging set; the conservation
// law checked after aggregation compares this against the clean-side total.
func NonNullSum(rows []admissions.TidyRow) float64 {
	var sum float64
	for _, row := range rows {
		if row.Separations != nil {
			sum += *row.Separations
		}
	}
	return sum
}
