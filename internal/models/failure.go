package models

import (
	"time"
)

// Severity of a failure event. Uses the same tiers as CriticalityLevel.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// RCAStatus tracks the root cause analysis attached to a failure.
type RCAStatus string

const (
	RCAOpen       RCAStatus = "Open"
	RCAInProgress RCAStatus = "In Progress"
	RCACompleted  RCAStatus = "Completed"
)

// Failure is a recorded breakdown of an asset together with its RCA record.
type Failure struct {
	FailureID          string    `bson:"_id" json:"FailureID"`
	AssetID            string    `bson:"asset_id" json:"AssetID"`
	FailureDate        time.Time `bson:"failure_date" json:"FailureDate"`
	FailureMode        string    `bson:"failure_mode" json:"FailureMode"`
	FailureDescription string    `bson:"failure_description" json:"FailureDescription"`
	Severity           Severity  `bson:"severity" json:"Severity"`
	DowntimeHours      float64   `bson:"downtime_hours" json:"DowntimeHours"`
	RepairCost         float64   `bson:"repair_cost" json:"RepairCost"`
	RootCause          string    `bson:"root_cause" json:"RootCause"`
	CorrectiveAction   string    `bson:"corrective_action" json:"CorrectiveAction"`
	RCAStatus          RCAStatus `bson:"rca_status" json:"RCAStatus"`
	// Set only when RCAStatus is Completed.
	RCAResolutionDays *float64 `bson:"rca_resolution_days,omitempty" json:"RCAResolutionDays,omitempty"`
}

// IsOpenInvestigation reports whether the RCA is still being worked.
func (f Failure) IsOpenInvestigation() bool {
	return f.RCAStatus == RCAOpen || f.RCAStatus == RCAInProgress
}
