package analysis

import (
	"github.com/montanaflynn/stats"

	"github.com/MayuriEngAust/RCM/internal/models"
)

// MaxTrendAssetTypes caps the number of series in the MTBF trend chart.
const MaxTrendAssetTypes = 5

// FailureTrend is the monthly failure count with its least-squares line over
// the month index.
type FailureTrend struct {
	Points    []MonthlyValue `json:"points"`
	Slope     float64        `json:"slope"`
	Intercept float64        `json:"intercept"`
}

// MonthlyFailureTrend counts failures per month and fits a linear trend.
func MonthlyFailureTrend(failures []models.Failure) FailureTrend {
	counts := make(map[string]int)
	for _, f := range failures {
		counts[monthKey(f.FailureDate)]++
	}

	trend := FailureTrend{Points: []MonthlyValue{}}
	series := make(stats.Series, 0, len(counts))
	for i, m := range sortedKeys(counts) {
		v := float64(counts[m])
		trend.Points = append(trend.Points, MonthlyValue{Month: m, Value: v})
		series = append(series, stats.Coordinate{X: float64(i), Y: v})
	}

	switch len(series) {
	case 0:
	case 1:
		trend.Intercept = series[0].Y
	default:
		fitted, err := stats.LinearRegression(series)
		if err == nil {
			trend.Intercept = fitted[0].Y
			trend.Slope = fitted[1].Y - fitted[0].Y
		}
	}
	return trend
}

// MonthlyMTTR is the mean downtime of failures in each month.
func MonthlyMTTR(failures []models.Failure) []MonthlyValue {
	byMonth := make(map[string][]float64)
	for _, f := range failures {
		m := monthKey(f.FailureDate)
		byMonth[m] = append(byMonth[m], f.DowntimeHours)
	}
	out := []MonthlyValue{}
	for _, m := range sortedKeys(byMonth) {
		out = append(out, MonthlyValue{Month: m, Value: mean(byMonth[m])})
	}
	return out
}

// MTBFTrendByAssetType approximates monthly MTBF for the first few asset types
// as 30 days divided by the month's failure count. The first month of each
// type has no preceding interval and is left out.
func MTBFTrendByAssetType(failures []models.Failure, assets []models.Asset) []Series {
	idx := assetIndex(assets)

	var types []string
	seen := make(map[string]bool)
	for _, a := range assets {
		if !seen[a.AssetType] {
			seen[a.AssetType] = true
			types = append(types, a.AssetType)
		}
	}
	if len(types) > MaxTrendAssetTypes {
		types = types[:MaxTrendAssetTypes]
	}

	perType := make(map[string]map[string]int)
	for _, f := range failures {
		a, ok := idx[f.AssetID]
		if !ok {
			continue
		}
		if perType[a.AssetType] == nil {
			perType[a.AssetType] = make(map[string]int)
		}
		perType[a.AssetType][monthKey(f.FailureDate)]++
	}

	out := []Series{}
	for _, typ := range types {
		months := sortedKeys(perType[typ])
		if len(months) < 2 {
			continue
		}
		s := Series{Name: typ}
		for _, m := range months[1:] {
			s.Points = append(s.Points, MonthlyValue{Month: m, Value: 30 / float64(perType[typ][m])})
		}
		out = append(out, s)
	}
	return out
}

// CostBreakdown holds monthly spend per cost type, indexed [month][type].
type CostBreakdown struct {
	Months []string    `json:"months"`
	Types  []string    `json:"types"`
	Values [][]float64 `json:"values"`
}

// MonthlyCostByType sums maintenance spend per month and cost type.
func MonthlyCostByType(costs []models.MaintenanceCost) CostBreakdown {
	sums := make(map[string]map[string]float64)
	types := make(map[string]struct{})
	for _, c := range costs {
		m := monthKey(c.Date)
		if sums[m] == nil {
			sums[m] = make(map[string]float64)
		}
		sums[m][string(c.CostType)] += c.Amount
		types[string(c.CostType)] = struct{}{}
	}

	cb := CostBreakdown{Months: sortedKeys(sums), Types: sortedKeys(types)}
	cb.Values = newMatrix(len(cb.Months), len(cb.Types))
	col := indexOf(cb.Types)
	for i, m := range cb.Months {
		for typ, v := range sums[m] {
			cb.Values[i][col[typ]] = v
		}
	}
	return cb
}
