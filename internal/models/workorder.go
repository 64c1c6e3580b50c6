package models

import (
	"time"
)

// MaintenanceType classifies the intent of a work order.
type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "Preventive"
	MaintenanceCorrective MaintenanceType = "Corrective"
	MaintenancePredictive MaintenanceType = "Predictive"
	MaintenanceEmergency  MaintenanceType = "Emergency"
)

// WorkOrderStatus is the lifecycle state of a work order.
type WorkOrderStatus string

const (
	WorkOrderScheduled  WorkOrderStatus = "Scheduled"
	WorkOrderInProgress WorkOrderStatus = "In Progress"
	WorkOrderCompleted  WorkOrderStatus = "Completed"
	WorkOrderCancelled  WorkOrderStatus = "Cancelled"
)

// WorkOrder represents a planned or executed maintenance job.
type WorkOrder struct {
	WorkOrderID        string          `bson:"_id" json:"WorkOrderID"`
	AssetID            string          `bson:"asset_id" json:"AssetID"`
	MaintenanceType    MaintenanceType `bson:"maintenance_type" json:"MaintenanceType"`
	Description        string          `bson:"description" json:"Description"`
	Status             WorkOrderStatus `bson:"status" json:"Status"`
	Priority           string          `bson:"priority" json:"Priority"` // "Critical", "High", "Medium", "Low"
	ScheduledDate      time.Time       `bson:"scheduled_date" json:"ScheduledDate"`
	StartDate          *time.Time      `bson:"start_date,omitempty" json:"StartDate,omitempty"`
	CompletionDate     *time.Time      `bson:"completion_date,omitempty" json:"CompletionDate,omitempty"`
	EstimatedDuration  float64         `bson:"estimated_duration" json:"EstimatedDuration"` // hours
	ActualDuration     *float64        `bson:"actual_duration,omitempty" json:"ActualDuration,omitempty"`
	TotalCost          float64         `bson:"total_cost" json:"TotalCost"`
	AssignedTechnician string          `bson:"assigned_technician" json:"AssignedTechnician"`
}

// IsCompleted reports whether the work order has a completion date.
func (w WorkOrder) IsCompleted() bool {
	return w.CompletionDate != nil
}

// IsLate reports whether a completed work order finished after its scheduled date.
func (w WorkOrder) IsLate() bool {
	return w.CompletionDate != nil && w.CompletionDate.After(w.ScheduledDate)
}

// IsOpen reports whether work is still outstanding.
func (w WorkOrder) IsOpen() bool {
	return w.Status == WorkOrderScheduled || w.Status == WorkOrderInProgress
}
