package analysis

import (
	"sort"
	"time"

	"github.com/MayuriEngAust/RCM/internal/models"
)

// DefaultRecentLimit bounds the recent failure and timeline tables.
const DefaultRecentLimit = 20

// ParetoEntry is one bar of the failure mode Pareto chart.
type ParetoEntry struct {
	Label         string  `json:"label"`
	Count         int     `json:"count"`
	CumulativePct float64 `json:"cumulative_pct"`
}

// FailurePareto ranks failure modes by frequency with the running share of all failures.
func FailurePareto(failures []models.Failure) []ParetoEntry {
	modes := make([]string, len(failures))
	for i, f := range failures {
		modes[i] = f.FailureMode
	}
	counts := countBy(modes)

	out := make([]ParetoEntry, len(counts))
	running := 0
	for i, c := range counts {
		running += c.Count
		out[i] = ParetoEntry{Label: c.Label, Count: c.Count, CumulativePct: percent(running, len(failures))}
	}
	return out
}

// SeverityDistribution counts failures per severity.
func SeverityDistribution(failures []models.Failure) []CategoryCount {
	labels := make([]string, len(failures))
	for i, f := range failures {
		labels[i] = string(f.Severity)
	}
	return countBy(labels)
}

// FailuresByAssetType counts failures per asset type. Failures of unknown assets are skipped.
func FailuresByAssetType(failures []models.Failure, assets []models.Asset) []CategoryCount {
	idx := assetIndex(assets)
	var labels []string
	for _, f := range failures {
		if a, ok := idx[f.AssetID]; ok {
			labels = append(labels, a.AssetType)
		}
	}
	return countBy(labels)
}

// LocationMonthHeatmap counts failures per asset location and month.
func LocationMonthHeatmap(failures []models.Failure, assets []models.Asset) Heatmap {
	idx := assetIndex(assets)
	cells := make(map[string]map[string]int)
	months := make(map[string]struct{})
	for _, f := range failures {
		a, ok := idx[f.AssetID]
		if !ok {
			continue
		}
		m := monthKey(f.FailureDate)
		months[m] = struct{}{}
		if cells[a.Location] == nil {
			cells[a.Location] = make(map[string]int)
		}
		cells[a.Location][m]++
	}

	hm := Heatmap{Rows: sortedKeys(cells), Columns: sortedKeys(months)}
	hm.Values = newMatrix(len(hm.Rows), len(hm.Columns))
	col := indexOf(hm.Columns)
	for i, loc := range hm.Rows {
		for m, n := range cells[loc] {
			hm.Values[i][col[m]] = float64(n)
		}
	}
	return hm
}

// AssetFailureHeatmap is the mean number of failures per asset for each
// location and asset type. Assets without failures count as zero.
func AssetFailureHeatmap(assets []models.Asset, failures []models.Failure) Heatmap {
	perAsset := make(map[string]int)
	for _, f := range failures {
		perAsset[f.AssetID]++
	}

	type cell struct{ sum, n int }
	cells := make(map[string]map[string]*cell)
	types := make(map[string]struct{})
	for _, a := range assets {
		types[a.AssetType] = struct{}{}
		if cells[a.Location] == nil {
			cells[a.Location] = make(map[string]*cell)
		}
		c := cells[a.Location][a.AssetType]
		if c == nil {
			c = &cell{}
			cells[a.Location][a.AssetType] = c
		}
		c.sum += perAsset[a.AssetID]
		c.n++
	}

	hm := Heatmap{Rows: sortedKeys(cells), Columns: sortedKeys(types)}
	hm.Values = newMatrix(len(hm.Rows), len(hm.Columns))
	col := indexOf(hm.Columns)
	for i, loc := range hm.Rows {
		for typ, c := range cells[loc] {
			hm.Values[i][col[typ]] = float64(c.sum) / float64(c.n)
		}
	}
	return hm
}

// FailureDetail is a failure joined with its asset for tabular display.
type FailureDetail struct {
	FailureID        string           `json:"failure_id"`
	AssetID          string           `json:"asset_id"`
	AssetName        string           `json:"asset_name"`
	AssetType        string           `json:"asset_type"`
	FailureDate      time.Time        `json:"failure_date"`
	FailureMode      string           `json:"failure_mode"`
	Severity         models.Severity  `json:"severity"`
	DowntimeHours    float64          `json:"downtime_hours"`
	RepairCost       float64          `json:"repair_cost"`
	RootCause        string           `json:"root_cause"`
	CorrectiveAction string           `json:"corrective_action"`
	RCAStatus        models.RCAStatus `json:"rca_status"`
}

// RecentFailures returns the newest failures of known assets, at most limit.
func RecentFailures(failures []models.Failure, assets []models.Asset, limit int) []FailureDetail {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	out := joinFailures(failures, assets, func(models.Failure) bool { return true })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// joinFailures inner-joins failures with assets, newest first.
func joinFailures(failures []models.Failure, assets []models.Asset, keep func(models.Failure) bool) []FailureDetail {
	idx := assetIndex(assets)
	out := []FailureDetail{}
	for _, f := range failures {
		a, ok := idx[f.AssetID]
		if !ok || !keep(f) {
			continue
		}
		out = append(out, FailureDetail{
			FailureID:        f.FailureID,
			AssetID:          f.AssetID,
			AssetName:        a.AssetName,
			AssetType:        a.AssetType,
			FailureDate:      f.FailureDate,
			FailureMode:      f.FailureMode,
			Severity:         f.Severity,
			DowntimeHours:    f.DowntimeHours,
			RepairCost:       f.RepairCost,
			RootCause:        f.RootCause,
			CorrectiveAction: f.CorrectiveAction,
			RCAStatus:        f.RCAStatus,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].FailureDate.Equal(out[j].FailureDate) {
			return out[i].FailureDate.After(out[j].FailureDate)
		}
		return out[i].FailureID < out[j].FailureID
	})
	return out
}

func assetIndex(assets []models.Asset) map[string]models.Asset {
	return models.Dataset{Assets: assets}.AssetIndex()
}
