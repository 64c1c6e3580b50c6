package kpi

import (
	"time"

	"github.com/MayuriEngAust/RCM/internal/models"
)

// KPIs is the flat result consumed by the dashboard.
type KPIs struct {
	MTBF                    float64                             `json:"mtbf"`
	MTBFChange              float64                             `json:"mtbf_change"`
	MTTR                    float64                             `json:"mttr"`
	MTTRChange              float64                             `json:"mttr_change"`
	OEE                     float64                             `json:"oee"`
	OEEChange               float64                             `json:"oee_change"`
	TotalCost               float64                             `json:"total_cost"`
	CostChange              float64                             `json:"cost_change"`
	Utilization             float64                             `json:"utilization"`
	ActiveAssets            int                                 `json:"active_assets"`
	TotalAssets             int                                 `json:"total_assets"`
	FailureRate             float64                             `json:"failure_rate"`
	TotalFailures           int                                 `json:"total_failures"`
	CriticalityDistribution map[models.CriticalityLevel]float64 `json:"criticality_distribution"`
}

// CalculateAll computes every KPI for an already filtered dataset.
func (c *Calculator) CalculateAll(data models.Dataset, now time.Time) KPIs {
	mtbf := c.MTBF(data.Failures, data.Assets, now)
	mttr := c.MTTR(data.Failures, now)
	oee := c.OEE(data.Assets, data.Failures, now)
	cost := c.MaintenanceCost(data.MaintenanceCosts, now)
	util := c.AssetUtilization(data.Assets)
	rate := c.FailureRate(data.Failures, c.opts.FailureRatePeriodDays, now)

	return KPIs{
		MTBF:                    mtbf.MTBF,
		MTBFChange:              mtbf.MTBFChange,
		MTTR:                    mttr.MTTR,
		MTTRChange:              mttr.MTTRChange,
		OEE:                     oee.OEE,
		OEEChange:               oee.OEEChange,
		TotalCost:               cost.TotalCost,
		CostChange:              cost.CostChange,
		Utilization:             util.Utilization,
		ActiveAssets:            util.ActiveAssets,
		TotalAssets:             util.TotalAssets,
		FailureRate:             rate.FailureRate,
		TotalFailures:           rate.TotalFailures,
		CriticalityDistribution: c.CriticalityDistribution(data.Assets),
	}
}

// Availability is uptime as a percentage of total time, 0 when total is 0.
func Availability(uptimeHours, totalHours float64) float64 {
	return safePercent(uptimeHours, totalHours)
}

// Reliability compares achieved MTBF with a target, capped at 100 percent.
func Reliability(mtbf, targetMTBF float64) float64 {
	r := safePercent(mtbf, targetMTBF)
	if r > 100 {
		return 100
	}
	return r
}
