package analysis

import (
	"sort"
	"time"

	"github.com/MayuriEngAust/RCM/internal/models"
)

// DefaultActionLimit bounds the corrective action table.
const DefaultActionLimit = 10

// RCASummary counts investigations by status.
type RCASummary struct {
	Open              int     `json:"open"`
	InProgress        int     `json:"in_progress"`
	Completed         int     `json:"completed"`
	AvgResolutionDays float64 `json:"avg_resolution_days"`
}

// SummarizeRCA counts RCA statuses and averages resolution time of completed ones.
func SummarizeRCA(failures []models.Failure) RCASummary {
	var s RCASummary
	var days []float64
	for _, f := range failures {
		switch f.RCAStatus {
		case models.RCAOpen:
			s.Open++
		case models.RCAInProgress:
			s.InProgress++
		case models.RCACompleted:
			s.Completed++
			if f.RCAResolutionDays != nil {
				days = append(days, *f.RCAResolutionDays)
			}
		}
	}
	s.AvgResolutionDays = mean(days)
	return s
}

// StatusPivot counts RCA statuses per asset type, indexed [type][status].
type StatusPivot struct {
	AssetTypes []string    `json:"asset_types"`
	Statuses   []string    `json:"statuses"`
	Counts     [][]float64 `json:"counts"`
}

var rcaStatuses = []string{string(models.RCAOpen), string(models.RCAInProgress), string(models.RCACompleted)}

// RCAStatusByAssetType pivots RCA status counts by asset type. Unknown assets are skipped.
func RCAStatusByAssetType(failures []models.Failure, assets []models.Asset) StatusPivot {
	idx := assetIndex(assets)
	counts := make(map[string]map[string]int)
	for _, f := range failures {
		a, ok := idx[f.AssetID]
		if !ok {
			continue
		}
		if counts[a.AssetType] == nil {
			counts[a.AssetType] = make(map[string]int)
		}
		counts[a.AssetType][string(f.RCAStatus)]++
	}

	p := StatusPivot{AssetTypes: sortedKeys(counts), Statuses: rcaStatuses}
	p.Counts = newMatrix(len(p.AssetTypes), len(p.Statuses))
	col := indexOf(p.Statuses)
	for i, typ := range p.AssetTypes {
		for status, n := range counts[typ] {
			if j, ok := col[status]; ok {
				p.Counts[i][j] = float64(n)
			}
		}
	}
	return p
}

// RootCauseDistribution counts failures per identified root cause.
func RootCauseDistribution(failures []models.Failure) []CategoryCount {
	var labels []string
	for _, f := range failures {
		if f.RootCause != "" {
			labels = append(labels, f.RootCause)
		}
	}
	return countBy(labels)
}

// ActionEffectiveness rates a corrective action by how often the failure it
// addressed did not come back.
type ActionEffectiveness struct {
	Action           string  `json:"action"`
	Count            int     `json:"count"`
	EffectivenessPct float64 `json:"effectiveness_pct"`
}

// CorrectiveActions ranks actions of completed RCAs by use. A use counts as
// effective when the same asset has no later failure with the same mode.
func CorrectiveActions(failures []models.Failure, limit int) []ActionEffectiveness {
	if limit <= 0 {
		limit = DefaultActionLimit
	}

	type key struct{ asset, mode string }
	latest := make(map[key]time.Time)
	for _, f := range failures {
		k := key{f.AssetID, f.FailureMode}
		if last, ok := latest[k]; !ok || f.FailureDate.After(last) {
			latest[k] = f.FailureDate
		}
	}

	type tally struct{ uses, effective int }
	tallies := make(map[string]*tally)
	for _, f := range failures {
		if f.RCAStatus != models.RCACompleted || f.CorrectiveAction == "" {
			continue
		}
		t := tallies[f.CorrectiveAction]
		if t == nil {
			t = &tally{}
			tallies[f.CorrectiveAction] = t
		}
		t.uses++
		if !latest[key{f.AssetID, f.FailureMode}].After(f.FailureDate) {
			t.effective++
		}
	}

	out := make([]ActionEffectiveness, 0, len(tallies))
	for action, t := range tallies {
		out = append(out, ActionEffectiveness{
			Action:           action,
			Count:            t.uses,
			EffectivenessPct: percent(t.effective, t.uses),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Action < out[j].Action
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ActiveInvestigations lists failures whose RCA is open or in progress, newest first.
func ActiveInvestigations(failures []models.Failure, assets []models.Asset) []FailureDetail {
	return joinFailures(failures, assets, models.Failure.IsOpenInvestigation)
}
