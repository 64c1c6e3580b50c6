package models

import (
	"time"
)

// CostType is the category a maintenance expense is booked under.
type CostType string

const (
	CostLabor     CostType = "Labor"
	CostParts     CostType = "Parts"
	CostExternal  CostType = "External"
	CostEquipment CostType = "Equipment"
)

// MaintenanceCost is a single booked maintenance expense.
type MaintenanceCost struct {
	CostID      string    `bson:"_id" json:"CostID"`
	AssetID     string    `bson:"asset_id" json:"AssetID"`
	Date        time.Time `bson:"date" json:"Date"`
	CostType    CostType  `bson:"cost_type" json:"CostType"`
	Amount      float64   `bson:"amount" json:"Amount"` // in USD
	Description string    `bson:"description" json:"Description"`
	WorkOrderID *string   `bson:"work_order_id,omitempty" json:"WorkOrderID,omitempty"`
}
