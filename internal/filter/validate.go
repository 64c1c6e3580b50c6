package filter

import (
	"fmt"

	"github.com/MayuriEngAust/RCM/internal/models"
)

// ValidationResult reports problems found in a dataset. Errors make it invalid;
// warnings are tolerated by the KPI engine.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (r *ValidationResult) errorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks required fields and cross references.
func Validate(data models.Dataset) ValidationResult {
	res := ValidationResult{Errors: []string{}, Warnings: []string{}}
	ids := make(map[string]bool, len(data.Assets))

	missing := 0
	for _, a := range data.Assets {
		ids[a.AssetID] = true
		if a.AssetID == "" || a.AssetName == "" || a.AssetType == "" || a.CriticalityLevel == "" {
			missing++
		}
	}
	if missing > 0 {
		res.errorf("Assets missing required fields (AssetID, AssetName, AssetType, CriticalityLevel): %d records", missing)
	}

	missing, orphans, rcaMismatch := 0, 0, 0
	for _, f := range data.Failures {
		if f.FailureID == "" || f.AssetID == "" || f.FailureDate.IsZero() || f.FailureMode == "" {
			missing++
		}
		if f.AssetID != "" && !ids[f.AssetID] {
			orphans++
		}
		if (f.RCAStatus == models.RCACompleted) != (f.RCAResolutionDays != nil) {
			rcaMismatch++
		}
	}
	if missing > 0 {
		res.errorf("Failures missing required fields (FailureID, AssetID, FailureDate, FailureMode): %d records", missing)
	}
	if orphans > 0 {
		res.warnf("Failures reference non-existent assets: %d records", orphans)
	}
	if rcaMismatch > 0 {
		res.warnf("Failures with RCA resolution days inconsistent with RCA status: %d records", rcaMismatch)
	}

	missing, orphans = 0, 0
	for _, w := range data.WorkOrders {
		if w.WorkOrderID == "" || w.AssetID == "" || w.MaintenanceType == "" || w.Status == "" {
			missing++
		}
		if w.AssetID != "" && !ids[w.AssetID] {
			orphans++
		}
	}
	if missing > 0 {
		res.errorf("Work orders missing required fields (WorkOrderID, AssetID, MaintenanceType, Status): %d records", missing)
	}
	if orphans > 0 {
		res.warnf("Work orders reference non-existent assets: %d records", orphans)
	}

	missing, orphans = 0, 0
	negative := 0
	for _, c := range data.MaintenanceCosts {
		if c.CostID == "" || c.AssetID == "" || c.Date.IsZero() {
			missing++
		}
		if c.AssetID != "" && !ids[c.AssetID] {
			orphans++
		}
		if c.Amount < 0 {
			negative++
		}
	}
	if missing > 0 {
		res.errorf("Maintenance costs missing required fields (CostID, AssetID, Date): %d records", missing)
	}
	if orphans > 0 {
		res.warnf("Maintenance costs reference non-existent assets: %d records", orphans)
	}
	if negative > 0 {
		res.warnf("Maintenance costs with negative amounts: %d records", negative)
	}

	res.Valid = len(res.Errors) == 0
	return res
}
