package analysis

import (
	"sort"
	"time"

	"github.com/MayuriEngAust/RCM/internal/models"
)

// TimelineWindowDays is how far back the maintenance timeline reaches.
const TimelineWindowDays = 30

// Compliance summarises on-time completion of work orders.
type Compliance struct {
	Completed     int     `json:"completed"`
	OnTime        int     `json:"on_time"`
	Late          int     `json:"late"`
	CompliancePct float64 `json:"compliance_pct"`
}

// ScheduleCompliance is the share of completed work orders finished on or
// before their scheduled date.
func ScheduleCompliance(workOrders []models.WorkOrder) Compliance {
	var c Compliance
	for _, w := range workOrders {
		if !w.IsCompleted() {
			continue
		}
		c.Completed++
		if w.IsLate() {
			c.Late++
		} else {
			c.OnTime++
		}
	}
	c.CompliancePct = percent(c.OnTime, c.Completed)
	return c
}

// MaintenanceTypeDistribution counts work orders per maintenance type.
func MaintenanceTypeDistribution(workOrders []models.WorkOrder) []CategoryCount {
	labels := make([]string, len(workOrders))
	for i, w := range workOrders {
		labels[i] = string(w.MaintenanceType)
	}
	return countBy(labels)
}

// UpcomingWorkOrder is a scheduled job joined with its asset.
type UpcomingWorkOrder struct {
	WorkOrderID        string                 `json:"work_order_id"`
	AssetID            string                 `json:"asset_id"`
	AssetName          string                 `json:"asset_name"`
	MaintenanceType    models.MaintenanceType `json:"maintenance_type"`
	Priority           string                 `json:"priority"`
	ScheduledDate      time.Time              `json:"scheduled_date"`
	EstimatedDuration  float64                `json:"estimated_duration"`
	AssignedTechnician string                 `json:"assigned_technician"`
}

// UpcomingWorkOrders lists scheduled work from now on, soonest first.
// Work orders of unknown assets keep an empty name.
func UpcomingWorkOrders(workOrders []models.WorkOrder, assets []models.Asset, now time.Time) []UpcomingWorkOrder {
	idx := assetIndex(assets)
	out := []UpcomingWorkOrder{}
	for _, w := range workOrders {
		if w.Status != models.WorkOrderScheduled || w.ScheduledDate.Before(now) {
			continue
		}
		out = append(out, UpcomingWorkOrder{
			WorkOrderID:        w.WorkOrderID,
			AssetID:            w.AssetID,
			AssetName:          idx[w.AssetID].AssetName,
			MaintenanceType:    w.MaintenanceType,
			Priority:           w.Priority,
			ScheduledDate:      w.ScheduledDate,
			EstimatedDuration:  w.EstimatedDuration,
			AssignedTechnician: w.AssignedTechnician,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate)
		}
		return out[i].WorkOrderID < out[j].WorkOrderID
	})
	return out
}

// TimelineBar is one row of the maintenance Gantt chart.
type TimelineBar struct {
	WorkOrderID     string                 `json:"work_order_id"`
	AssetID         string                 `json:"asset_id"`
	MaintenanceType models.MaintenanceType `json:"maintenance_type"`
	Status          models.WorkOrderStatus `json:"status"`
	Start           time.Time              `json:"start"`
	End             time.Time              `json:"end"`
}

// MaintenanceTimeline returns bars for work scheduled in the last
// TimelineWindowDays, in input order, at most limit. A bar starts at the actual
// start when known and ends at completion, or after the estimated duration.
func MaintenanceTimeline(workOrders []models.WorkOrder, now time.Time, limit int) []TimelineBar {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	cutoff := now.AddDate(0, 0, -TimelineWindowDays)
	out := []TimelineBar{}
	for _, w := range workOrders {
		if len(out) == limit {
			break
		}
		if w.ScheduledDate.Before(cutoff) {
			continue
		}
		start := w.ScheduledDate
		if w.StartDate != nil {
			start = *w.StartDate
		}
		end := start.Add(time.Duration(w.EstimatedDuration * float64(time.Hour)))
		if w.CompletionDate != nil {
			end = *w.CompletionDate
		}
		out = append(out, TimelineBar{
			WorkOrderID:     w.WorkOrderID,
			AssetID:         w.AssetID,
			MaintenanceType: w.MaintenanceType,
			Status:          w.Status,
			Start:           start,
			End:             end,
		})
	}
	return out
}
