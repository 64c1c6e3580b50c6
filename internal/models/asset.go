package models

import (
	"time"
)

// CriticalityLevel ranks how important an asset is to operations.
type CriticalityLevel string

const (
	CriticalityCritical CriticalityLevel = "Critical"
	CriticalityHigh     CriticalityLevel = "High"
	CriticalityMedium   CriticalityLevel = "Medium"
	CriticalityLow      CriticalityLevel = "Low"
)

// CriticalityLevels lists the levels from most to least important.
var CriticalityLevels = []CriticalityLevel{CriticalityCritical, CriticalityHigh, CriticalityMedium, CriticalityLow}

// OperationalStatus is the running state of an asset.
type OperationalStatus string

const (
	StatusActive      OperationalStatus = "Active"
	StatusInactive    OperationalStatus = "Inactive"
	StatusMaintenance OperationalStatus = "Maintenance"
)

// Asset represents a piece of maintained equipment.
type Asset struct {
	AssetID           string            `bson:"_id" json:"AssetID"`
	AssetName         string            `bson:"asset_name" json:"AssetName"`
	AssetType         string            `bson:"asset_type" json:"AssetType"` // "Pump", "Motor", "Compressor", ...
	AssetModel        string            `bson:"asset_model" json:"AssetModel"`
	Manufacturer      string            `bson:"manufacturer" json:"Manufacturer"`
	SerialNumber      string            `bson:"serial_number" json:"SerialNumber"`
	InstallationDate  time.Time         `bson:"installation_date" json:"InstallationDate"`
	Location          string            `bson:"location" json:"Location"`
	CriticalityLevel  CriticalityLevel  `bson:"criticality_level" json:"CriticalityLevel"`
	OperationalStatus OperationalStatus `bson:"operational_status" json:"OperationalStatus"`
	ReplacementCost   float64           `bson:"replacement_cost" json:"ReplacementCost"`
	MaintenanceGroup  string            `bson:"maintenance_group" json:"MaintenanceGroup"`
}

// IsActive reports whether the asset is currently in service.
func (a Asset) IsActive() bool {
	return a.OperationalStatus == StatusActive
}
