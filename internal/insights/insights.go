package insights

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Generate produces markdown insight lines over admission rows as served by
// the store (clean rows, or staging rows under the fallback). Returns an
// empty string when there is nothing to say.
func Generate(rows []map[string]interface{}) string {
	if len(rows) == 0 {
		return ""
	}

	var lines []string

	if state, total, ok := topGroup(rows, "state"); ok {
		lines = append(lines, fmt.Sprintf("- **%s** shows the highest separations in the current view (~%s).", state, formatCount(total)))
	}
	if category, total, ok := topGroup(rows, "category"); ok {
		lines = append(lines, fmt.Sprintf("- Leading category: **%s** (~%s).", category, formatCount(total)))
	}
	if trend := yearTrend(rows); trend != "" {
		lines = append(lines, trend)
	}

	return strings.Join(lines, "\n")
}

// topGroup sums separations per value of the given dimension and returns the
// largest group
func topGroup(rows []map[string]interface{}, dimension string) (string, float64, bool) {
	byValue := make(map[string]stats.Float64Data)
	for _, row := range rows {
		value, ok := row[dimension].(string)
		if !ok || value == "" {
			continue
		}
		if sep, ok := toFloat(row["separations"]); ok {
			byValue[value] = append(byValue[value], sep)
		}
	}
	if len(byValue) == 0 {
		return "", 0, false
	}

	values := make([]string, 0, len(byValue))
	for value := range byValue {
		values = append(values, value)
	}
	sort.Strings(values)

	top, topTotal := "", 0.0
	for _, value := range values {
		total, err := stats.Sum(byValue[value])
		if err != nil {
			continue
		}
		if top == "" || total > topTotal {
			top, topTotal = value, total
		}
	}
	return top, topTotal, top != ""
}

// yearTrend describes how separations moved across years; a linear fit
// supplies the direction when more than two years are present
func yearTrend(rows []map[string]interface{}) string {
	byYear := make(map[int]float64)
	for _, row := range rows {
		year, ok := toInt(row["year"])
		if !ok {
			continue
		}
		if sep, ok := toFloat(row["separations"]); ok {
			byYear[year] += sep
		}
	}
	if len(byYear) < 2 {
		return ""
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	first, last := byYear[years[0]], byYear[years[len(years)-1]]
	if first == 0 {
		return ""
	}
	pct := (last - first) / first * 100

	direction := "increased"
	if len(years) > 2 {
		xs := make([]float64, len(years))
		ys := make([]float64, len(years))
		for i, year := range years {
			xs[i] = float64(year)
			ys[i] = byYear[year]
		}
		_, slope := stat.LinearRegression(xs, ys, nil, false)
		if slope < 0 {
			direction = "decreased"
		}
	} else if pct < 0 {
		direction = "decreased"
	}

	if pct < 0 {
		pct = -pct
	}
	return fmt.Sprintf("- Overall separations have **%s %.1f%%** from %d to %d.", direction, pct, years[0], years[len(years)-1])
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int64:
		return int(v), true
	case int:
		return v, true
	case float64:
		return int(v), true
	case []byte:
		i, err := strconv.Atoi(string(v))
		return i, err == nil
	case string:
		i, err := strconv.Atoi(v)
		return i, err == nil
	default:
		return 0, false
	}
}

func formatCount(total float64) string {
	n := int64(total)
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
