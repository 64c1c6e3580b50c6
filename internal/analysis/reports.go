package analysis

import (
	"sort"

	"github.com/MayuriEngAust/RCM/internal/models"
)

// AssetOverviewRow is one line of the asset overview report.
type AssetOverviewRow struct {
	AssetID              string                   `json:"asset_id"`
	AssetName            string                   `json:"asset_name"`
	AssetType            string                   `json:"asset_type"`
	Location             string                   `json:"location"`
	CriticalityLevel     models.CriticalityLevel  `json:"criticality_level"`
	OperationalStatus    models.OperationalStatus `json:"operational_status"`
	TotalFailures        int                      `json:"total_failures"`
	TotalDowntime        float64                  `json:"total_downtime"`
	TotalRepairCost      float64                  `json:"total_repair_cost"`
	TotalMaintenanceCost float64                  `json:"total_maintenance_cost"`
}

// AssetOverview totals failures and spend per asset, in asset order.
func AssetOverview(data models.Dataset) []AssetOverviewRow {
	downtime := make(map[string][]float64)
	repair := make(map[string][]float64)
	spend := make(map[string][]float64)
	for _, f := range data.Failures {
		downtime[f.AssetID] = append(downtime[f.AssetID], f.DowntimeHours)
		repair[f.AssetID] = append(repair[f.AssetID], f.RepairCost)
	}
	for _, c := range data.MaintenanceCosts {
		spend[c.AssetID] = append(spend[c.AssetID], c.Amount)
	}

	out := make([]AssetOverviewRow, 0, len(data.Assets))
	for _, a := range data.Assets {
		out = append(out, AssetOverviewRow{
			AssetID:              a.AssetID,
			AssetName:            a.AssetName,
			AssetType:            a.AssetType,
			Location:             a.Location,
			CriticalityLevel:     a.CriticalityLevel,
			OperationalStatus:    a.OperationalStatus,
			TotalFailures:        len(downtime[a.AssetID]),
			TotalDowntime:        total(downtime[a.AssetID]),
			TotalRepairCost:      total(repair[a.AssetID]),
			TotalMaintenanceCost: total(spend[a.AssetID]),
		})
	}
	return out
}

// FailureReport is the full failure analysis export, newest first.
func FailureReport(data models.Dataset) []FailureDetail {
	return joinFailures(data.Failures, data.Assets, func(models.Failure) bool { return true })
}

// SummaryRow is one line of the general summary report.
type SummaryRow struct {
	Category string  `json:"category"`
	Metric   string  `json:"metric"`
	Value    float64 `json:"value"`
}

// GeneralSummary reports headline counts and totals per record type.
func GeneralSummary(data models.Dataset) []SummaryRow {
	active := 0
	for _, a := range data.Assets {
		if a.IsActive() {
			active++
		}
	}
	var downtime, repair []float64
	for _, f := range data.Failures {
		downtime = append(downtime, f.DowntimeHours)
		repair = append(repair, f.RepairCost)
	}
	completed := 0
	for _, w := range data.WorkOrders {
		if w.IsCompleted() {
			completed++
		}
	}

	return []SummaryRow{
		{Category: "Assets", Metric: "Total Assets", Value: float64(len(data.Assets))},
		{Category: "Assets", Metric: "Active Assets", Value: float64(active)},
		{Category: "Failures", Metric: "Total Failures", Value: float64(len(data.Failures))},
		{Category: "Failures", Metric: "Total Downtime Hours", Value: total(downtime)},
		{Category: "Failures", Metric: "Total Repair Cost", Value: total(repair)},
		{Category: "Work Orders", Metric: "Total Work Orders", Value: float64(len(data.WorkOrders))},
		{Category: "Work Orders", Metric: "Completed Work Orders", Value: float64(completed)},
	}
}

// TopAssetsByFailures returns the overview rows with the most failures.
func TopAssetsByFailures(rows []AssetOverviewRow, n int) []AssetOverviewRow {
	out := make([]AssetOverviewRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalFailures > out[j].TotalFailures })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
