// Package generator produces a reproducible synthetic maintenance dataset.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/MayuriEngAust/RCM/internal/models"
)

const hour = time.Hour

var (
	assetTypes    = []string{"Pump", "Motor", "Compressor", "Valve", "Heat Exchanger", "Tank"}
	locations     = []string{"Plant A", "Plant B", "Plant C", "Warehouse", "Office Building"}
	manufacturers = []string{"ABB", "Siemens", "Schneider", "Emerson", "Honeywell"}
	failureModes  = []string{
		"Mechanical Wear", "Electrical Failure", "Corrosion", "Vibration",
		"Overheating", "Seal Failure", "Bearing Failure", "Control System Error",
	}
	rootCauses = []string{
		"Inadequate Lubrication", "Design Deficiency", "Installation Error",
		"Operating Error", "Maintenance Error", "Environmental Factors",
		"Material Defect", "Age/Wear",
	}
	maintenanceTypes = []models.MaintenanceType{
		models.MaintenancePreventive, models.MaintenanceCorrective,
		models.MaintenancePredictive, models.MaintenanceEmergency,
	}
	severities = []models.Severity{models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow}
	rcaStates  = []models.RCAStatus{models.RCAOpen, models.RCAInProgress, models.RCACompleted}
	costTypes  = []models.CostType{models.CostLabor, models.CostParts, models.CostExternal, models.CostEquipment}
	priorities = []string{"Critical", "High", "Medium", "Low"}
)

// Config sets how many records of each kind to generate.
type Config struct {
	Assets     int `json:"assets"`
	WorkOrders int `json:"work_orders"`
	Failures   int `json:"failures"`
	Costs      int `json:"costs"`
}

// DefaultConfig matches the size of the demo dashboard dataset.
func DefaultConfig() Config {
	return Config{Assets: 100, WorkOrders: 500, Failures: 300, Costs: 800}
}

// Generator owns its random source, so two generators with the same seed and
// reference time produce identical datasets.
type Generator struct {
	rng *rand.Rand
	now time.Time
}

// New creates a generator. Dates are laid out relative to now.
func New(seed int64, now time.Time) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed)), now: now}
}

// GenerateAll builds assets first and then records that reference them.
func (g *Generator) GenerateAll(cfg Config) models.Dataset {
	assets := g.GenerateAssets(cfg.Assets)
	workOrders := g.GenerateWorkOrders(assets, cfg.WorkOrders)
	failures := g.GenerateFailures(assets, cfg.Failures)
	costs := g.GenerateMaintenanceCosts(assets, workOrders, cfg.Costs)
	return models.Dataset{
		Assets:           assets,
		Failures:         failures,
		WorkOrders:       workOrders,
		MaintenanceCosts: costs,
	}
}

// GenerateAssets creates count assets weighted towards medium criticality.
func (g *Generator) GenerateAssets(count int) []models.Asset {
	out := make([]models.Asset, 0, max(count, 0))
	for i := 1; i <= count; i++ {
		assetType := pick(g.rng, assetTypes)
		location := pick(g.rng, locations)
		criticality := models.CriticalityLevels[g.weighted([]float64{0.1, 0.3, 0.4, 0.2})]
		status := []models.OperationalStatus{models.StatusActive, models.StatusInactive, models.StatusMaintenance}[g.weighted([]float64{0.85, 0.10, 0.05})]

		out = append(out, models.Asset{
			AssetID:           fmt.Sprintf("AST-%04d", i),
			AssetName:         fmt.Sprintf("%s-%03d", assetType, i),
			AssetType:         assetType,
			AssetModel:        fmt.Sprintf("Model-%d", g.intRange(100, 999)),
			Manufacturer:      pick(g.rng, manufacturers),
			SerialNumber:      fmt.Sprintf("SN%d", g.intRange(100000, 999999)),
			InstallationDate:  g.now.AddDate(0, 0, -g.intRange(30, 3650)),
			Location:          location,
			CriticalityLevel:  criticality,
			OperationalStatus: status,
			ReplacementCost:   g.uniform(5000, 500000),
			MaintenanceGroup:  fmt.Sprintf("MG-%d", g.intRange(1, 10)),
		})
	}
	return out
}

// GenerateWorkOrders schedules work between a year ago and three months ahead.
// Older work is completed; the rest is scheduled or in progress.
func (g *Generator) GenerateWorkOrders(assets []models.Asset, count int) []models.WorkOrder {
	if len(assets) == 0 {
		return []models.WorkOrder{}
	}
	out := make([]models.WorkOrder, 0, max(count, 0))
	for i := 1; i <= count; i++ {
		asset := pick(g.rng, assets)
		mtype := pick(g.rng, maintenanceTypes)
		scheduled := g.now.AddDate(0, 0, -g.intRange(-90, 365))

		wo := models.WorkOrder{
			WorkOrderID:        fmt.Sprintf("WO-%06d", i),
			AssetID:            asset.AssetID,
			MaintenanceType:    mtype,
			Description:        fmt.Sprintf("%s maintenance for %s", mtype, asset.AssetID),
			Priority:           pick(g.rng, priorities),
			ScheduledDate:      scheduled,
			EstimatedDuration:  g.uniform(2, 16),
			TotalCost:          g.uniform(500, 15000),
			AssignedTechnician: fmt.Sprintf("Tech-%d", g.intRange(1, 20)),
		}

		if scheduled.Before(g.now.AddDate(0, 0, -g.intRange(0, 30))) {
			start := scheduled.Add(time.Duration(g.intRange(0, 48)) * hour)
			duration := g.uniform(1, 24)
			done := start.Add(time.Duration(duration * float64(hour)))
			wo.Status = models.WorkOrderCompleted
			wo.StartDate = &start
			wo.CompletionDate = &done
			wo.ActualDuration = &duration
		} else {
			wo.Status = pick(g.rng, []models.WorkOrderStatus{models.WorkOrderScheduled, models.WorkOrderInProgress})
		}
		out = append(out, wo)
	}
	return out
}

// GenerateFailures spreads failures over the last two years. More critical
// assets fail more severely, and severity drives downtime.
func (g *Generator) GenerateFailures(assets []models.Asset, count int) []models.Failure {
	if len(assets) == 0 {
		return []models.Failure{}
	}
	out := make([]models.Failure, 0, max(count, 0))
	for i := 1; i <= count; i++ {
		asset := pick(g.rng, assets)
		severity := severities[g.weighted(severityWeights(asset.CriticalityLevel))]
		status := pick(g.rng, rcaStates)

		f := models.Failure{
			FailureID:          fmt.Sprintf("FAIL-%06d", i),
			AssetID:            asset.AssetID,
			FailureDate:        g.now.AddDate(0, 0, -g.intRange(1, 730)),
			FailureMode:        pick(g.rng, failureModes),
			FailureDescription: "Equipment failure - " + pick(g.rng, failureModes),
			Severity:           severity,
			DowntimeHours:      g.downtime(severity),
			RepairCost:         g.uniform(1000, 50000),
			RootCause:          pick(g.rng, rootCauses),
			CorrectiveAction:   "Corrective action for " + pick(g.rng, rootCauses),
			RCAStatus:          status,
		}
		if status == models.RCACompleted {
			days := g.uniform(5, 60)
			f.RCAResolutionDays = &days
		}
		out = append(out, f)
	}
	return out
}

// GenerateMaintenanceCosts books costs over the last two years. About 70% are
// linked to a work order of the same asset when one exists.
func (g *Generator) GenerateMaintenanceCosts(assets []models.Asset, workOrders []models.WorkOrder, count int) []models.MaintenanceCost {
	if len(assets) == 0 {
		return []models.MaintenanceCost{}
	}
	byAsset := make(map[string][]string)
	for _, w := range workOrders {
		byAsset[w.AssetID] = append(byAsset[w.AssetID], w.WorkOrderID)
	}

	out := make([]models.MaintenanceCost, 0, max(count, 0))
	for i := 1; i <= count; i++ {
		asset := pick(g.rng, assets)
		date := g.now.AddDate(0, 0, -g.intRange(1, 730))
		ctype := pick(g.rng, costTypes)

		c := models.MaintenanceCost{
			CostID:      fmt.Sprintf("COST-%06d", i),
			AssetID:     asset.AssetID,
			Date:        date,
			CostType:    ctype,
			Description: fmt.Sprintf("%s cost for %s", ctype, asset.AssetID),
		}
		if g.rng.Float64() < 0.7 {
			if ids := byAsset[asset.AssetID]; len(ids) > 0 {
				id := pick(g.rng, ids)
				c.WorkOrderID = &id
			}
		}
		c.Amount = g.costAmount(ctype)
		out = append(out, c)
	}
	return out
}

func severityWeights(level models.CriticalityLevel) []float64 {
	switch level {
	case models.CriticalityCritical:
		return []float64{0.4, 0.3, 0.2, 0.1}
	case models.CriticalityHigh:
		return []float64{0.2, 0.4, 0.3, 0.1}
	default:
		return []float64{0.1, 0.2, 0.4, 0.3}
	}
}

func (g *Generator) downtime(s models.Severity) float64 {
	switch s {
	case models.SeverityCritical:
		return g.uniform(24, 168)
	case models.SeverityHigh:
		return g.uniform(8, 48)
	case models.SeverityMedium:
		return g.uniform(2, 16)
	default:
		return g.uniform(0.5, 8)
	}
}

func (g *Generator) costAmount(t models.CostType) float64 {
	switch t {
	case models.CostLabor:
		return g.uniform(200, 2000)
	case models.CostParts:
		return g.uniform(100, 10000)
	case models.CostExternal:
		return g.uniform(500, 20000)
	default:
		return g.uniform(1000, 50000)
	}
}

// weighted returns an index drawn according to weights summing to 1.
func (g *Generator) weighted(weights []float64) int {
	r := g.rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}

// intRange returns an integer in [lo, hi].
func (g *Generator) intRange(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}
