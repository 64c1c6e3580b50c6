// Package analysis derives the tables behind the dashboard charts.
// Nothing here draws; every function returns plain data, is total over empty
// input, and breaks ties by name so output is stable.
package analysis

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// MonthLayout formats month keys.
const MonthLayout = "2006-01"

// CategoryCount is a label with its number of occurrences.
type CategoryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MonthlyValue is a single point of a monthly series.
type MonthlyValue struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// Series is a named monthly series.
type Series struct {
	Name   string         `json:"name"`
	Points []MonthlyValue `json:"points"`
}

// Heatmap is a dense matrix indexed by Rows then Columns.
type Heatmap struct {
	Rows    []string    `json:"rows"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

func monthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// countBy tallies labels and sorts by count descending, then label.
func countBy(labels []string) []CategoryCount {
	counts := make(map[string]int)
	for _, l := range labels {
		counts[l]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for l, n := range counts {
		out = append(out, CategoryCount{Label: l, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

func indexOf(keys []string) map[string]int {
	idx := make(map[string]int, len(keys))
	for i, k := range keys {
		idx[k] = i
	}
	return idx
}

func mean(values []float64) float64 {
	m, err := stats.Mean(stats.Float64Data(values))
	if err != nil {
		return 0
	}
	return m
}

func total(values []float64) float64 {
	s, err := stats.Sum(stats.Float64Data(values))
	if err != nil {
		return 0
	}
	return s
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
