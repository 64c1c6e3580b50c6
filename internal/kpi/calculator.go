// Package kpi computes the reliability and maintenance KPIs shown on the dashboard.
//
// Every function is total: empty or degenerate input yields the documented
// zero value and nothing panics or returns an error. The reference time is
// always passed in explicitly.
package kpi

import (
	"sort"
	"time"

	"github.com/MayuriEngAust/RCM/internal/models"
)

// Calculator computes KPIs with a fixed set of options.
type Calculator struct {
	opts Options
}

// NewCalculator creates a calculator, filling unset options with defaults.
func NewCalculator(opts Options) *Calculator {
	return &Calculator{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (c *Calculator) Options() Options {
	return c.opts
}

// MTBFResult is mean time between failures in days and its trend.
type MTBFResult struct {
	MTBF       float64 `json:"mtbf"`
	MTBFChange float64 `json:"mtbf_change"`
}

// MTBF pools the gaps between consecutive failures of each asset and averages them.
// The asset set is accepted for future per-asset weighting and is not used yet.
// MTBFChange is the percent decrease in failure count from the previous window.
func (c *Calculator) MTBF(failures []models.Failure, assets []models.Asset, now time.Time) MTBFResult {
	if len(failures) == 0 {
		return MTBFResult{}
	}

	byAsset := make(map[string][]time.Time)
	var ids []string
	for _, f := range failures {
		if _, seen := byAsset[f.AssetID]; !seen {
			ids = append(ids, f.AssetID)
		}
		byAsset[f.AssetID] = append(byAsset[f.AssetID], f.FailureDate)
	}

	// Fixed asset order keeps the float sum reproducible.
	var gaps []float64
	for _, id := range ids {
		dates := byAsset[id]
		if len(dates) < 2 {
			continue
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		for i := 1; i < len(dates); i++ {
			gaps = append(gaps, dates[i].Sub(dates[i-1]).Hours()/24)
		}
	}

	cur, prev := c.splitFailures(failures, now)
	change := 0.0
	if len(cur) > 0 && len(prev) > 0 {
		change = decreaseChange(float64(len(prev)), float64(len(cur)))
	}

	return MTBFResult{MTBF: mean(gaps), MTBFChange: change}
}

// MTTRResult is mean time to repair in hours and its trend.
type MTTRResult struct {
	MTTR       float64 `json:"mttr"`
	MTTRChange float64 `json:"mttr_change"`
}

// MTTR averages downtime over all failures. The change compares mean downtime
// of the previous and current windows, positive when repairs got faster.
func (c *Calculator) MTTR(failures []models.Failure, now time.Time) MTTRResult {
	if len(failures) == 0 {
		return MTTRResult{}
	}

	cur, prev := c.splitFailures(failures, now)
	change := 0.0
	if len(cur) > 0 && len(prev) > 0 {
		change = decreaseChange(mean(downtimes(prev)), mean(downtimes(cur)))
	}

	return MTTRResult{MTTR: mean(downtimes(failures)), MTTRChange: change}
}

// OEEResult is overall equipment effectiveness in percent.
type OEEResult struct {
	OEE          float64 `json:"oee"`
	OEEChange    float64 `json:"oee_change"`
	Availability float64 `json:"availability"`
}

// OEE derives availability from downtime of the current window over the active
// fleet and multiplies it by the configured quality and performance rates.
// OEEChange compares against the same computation on the previous window and is
// 0 when either window has no failures.
func (c *Calculator) OEE(assets []models.Asset, failures []models.Failure, now time.Time) OEEResult {
	active := countActive(assets)
	if active == 0 {
		return OEEResult{}
	}

	possible := float64(active) * float64(c.opts.TrendWindowDays) * 24
	cur, prev := c.splitFailures(failures, now)

	availability := c.availability(possible, sum(downtimes(cur)))
	oee := c.oee(availability)

	change := 0.0
	if len(cur) > 0 && len(prev) > 0 {
		change = increaseChange(c.oee(c.availability(possible, sum(downtimes(prev)))), oee)
	}

	return OEEResult{OEE: oee, OEEChange: change, Availability: availability * 100}
}

func (c *Calculator) availability(possible, downtime float64) float64 {
	a := (possible - downtime) / possible
	if a < 0 || !finite(a) {
		return 0
	}
	return a
}

func (c *Calculator) oee(availability float64) float64 {
	return availability * c.opts.QualityRate * c.opts.PerformanceRate * 100
}

// CostResult summarises maintenance spend.
type CostResult struct {
	TotalCost     float64 `json:"total_cost"`
	CostChange    float64 `json:"cost_change"`
	CurrentCosts  float64 `json:"current_costs"`
	PreviousCosts float64 `json:"previous_costs"`
}

// MaintenanceCost totals all costs and compares the current calendar month
// (from its first day onward) with the previous calendar month.
func (c *Calculator) MaintenanceCost(costs []models.MaintenanceCost, now time.Time) CostResult {
	if len(costs) == 0 {
		return CostResult{}
	}

	thisMonth := monthStart(now)
	current := window{start: thisMonth}
	previous := window{start: thisMonth.AddDate(0, -1, 0), end: thisMonth}

	var all, cur, prev []float64
	for _, cost := range costs {
		all = append(all, cost.Amount)
		switch {
		case current.contains(cost.Date):
			cur = append(cur, cost.Amount)
		case previous.contains(cost.Date):
			prev = append(prev, cost.Amount)
		}
	}

	res := CostResult{
		TotalCost:     sum(all),
		CurrentCosts:  sum(cur),
		PreviousCosts: sum(prev),
	}
	if res.PreviousCosts > 0 {
		res.CostChange = increaseChange(res.PreviousCosts, res.CurrentCosts)
	}
	return res
}

// UtilizationResult is the share of assets in service.
type UtilizationResult struct {
	Utilization  float64 `json:"utilization"`
	ActiveAssets int     `json:"active_assets"`
	TotalAssets  int     `json:"total_assets"`
}

// AssetUtilization returns the percentage of assets with an Active status.
func (c *Calculator) AssetUtilization(assets []models.Asset) UtilizationResult {
	total := len(assets)
	if total == 0 {
		return UtilizationResult{}
	}
	active := countActive(assets)
	return UtilizationResult{
		Utilization:  float64(active) / float64(total) * 100,
		ActiveAssets: active,
		TotalAssets:  total,
	}
}

// FailureRateResult is failures per day over a look-back period.
type FailureRateResult struct {
	FailureRate   float64 `json:"failure_rate"`
	TotalFailures int     `json:"total_failures"`
}

// FailureRate counts failures within periodDays of now and divides by the period.
func (c *Calculator) FailureRate(failures []models.Failure, periodDays int, now time.Time) FailureRateResult {
	if periodDays <= 0 || len(failures) == 0 {
		return FailureRateResult{}
	}
	recent := window{start: now.Add(-time.Duration(periodDays) * day)}
	count := 0
	for _, f := range failures {
		if recent.contains(f.FailureDate) {
			count++
		}
	}
	return FailureRateResult{
		FailureRate:   float64(count) / float64(periodDays),
		TotalFailures: count,
	}
}

// CriticalityDistribution returns the percentage of assets per criticality level.
// The map is empty, never nil, for an empty asset set.
func (c *Calculator) CriticalityDistribution(assets []models.Asset) map[models.CriticalityLevel]float64 {
	dist := make(map[models.CriticalityLevel]float64)
	if len(assets) == 0 {
		return dist
	}
	counts := make(map[models.CriticalityLevel]int)
	for _, a := range assets {
		counts[a.CriticalityLevel]++
	}
	for level, n := range counts {
		dist[level] = float64(n) / float64(len(assets)) * 100
	}
	return dist
}

// splitFailures partitions failures into the current and previous trend windows.
func (c *Calculator) splitFailures(failures []models.Failure, now time.Time) (cur, prev []models.Failure) {
	current, previous := trendWindows(now, c.opts.TrendWindowDays)
	for _, f := range failures {
		switch {
		case current.contains(f.FailureDate):
			cur = append(cur, f)
		case previous.contains(f.FailureDate):
			prev = append(prev, f)
		}
	}
	return cur, prev
}

func downtimes(failures []models.Failure) []float64 {
	out := make([]float64, len(failures))
	for i, f := range failures {
		out[i] = f.DowntimeHours
	}
	return out
}

func countActive(assets []models.Asset) int {
	n := 0
	for _, a := range assets {
		if a.IsActive() {
			n++
		}
	}
	return n
}
