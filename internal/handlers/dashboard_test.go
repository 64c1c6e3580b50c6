package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayuriEngAust/RCM/internal/analysis"
	"github.com/MayuriEngAust/RCM/internal/generator"
	"github.com/MayuriEngAust/RCM/internal/kpi"
	"github.com/MayuriEngAust/RCM/internal/metrics"
	"github.com/MayuriEngAust/RCM/internal/models"
	"github.com/MayuriEngAust/RCM/internal/store"
)

var refNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 8, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func fixtureDataset() models.Dataset {
	return models.Dataset{
		Assets: []models.Asset{
			{AssetID: "AST-0001", AssetName: "Feed Pump", AssetType: "Pump", Location: "Plant A",
				CriticalityLevel: models.CriticalityCritical, OperationalStatus: models.StatusActive},
			{AssetID: "AST-0002", AssetName: "Conveyor Motor", AssetType: "Motor", Location: "Plant B",
				CriticalityLevel: models.CriticalityLow, OperationalStatus: models.StatusActive},
		},
		Failures: []models.Failure{
			{FailureID: "FAIL-000001", AssetID: "AST-0001", FailureDate: day(time.May, 1), FailureMode: "Seal Leak",
				Severity: models.SeverityHigh, DowntimeHours: 4, RCAStatus: models.RCAOpen},
			{FailureID: "FAIL-000002", AssetID: "AST-0001", FailureDate: day(time.May, 21), FailureMode: "Seal Leak",
				Severity: models.SeverityMedium, DowntimeHours: 6, RCAStatus: models.RCAInProgress},
			{FailureID: "FAIL-000003", AssetID: "AST-0001", FailureDate: day(time.June, 5), FailureMode: "Bearing Wear",
				Severity: models.SeverityCritical, DowntimeHours: 8, RCAStatus: models.RCACompleted,
				RootCause: "Lubrication", CorrectiveAction: "Regrease schedule", RCAResolutionDays: ptr(3.0)},
			{FailureID: "FAIL-000004", AssetID: "AST-0002", FailureDate: day(time.June, 1), FailureMode: "Overheating",
				Severity: models.SeverityLow, DowntimeHours: 2, RCAStatus: models.RCAOpen},
		},
		WorkOrders: []models.WorkOrder{
			{WorkOrderID: "WO-000001", AssetID: "AST-0001", MaintenanceType: models.MaintenancePreventive,
				Status: models.WorkOrderCompleted, ScheduledDate: day(time.June, 8), CompletionDate: ptr(day(time.June, 10))},
			{WorkOrderID: "WO-000002", AssetID: "AST-0002", MaintenanceType: models.MaintenanceCorrective,
				Status: models.WorkOrderScheduled, ScheduledDate: day(time.June, 20), Priority: "High"},
		},
		MaintenanceCosts: []models.MaintenanceCost{
			{CostID: "COST-000001", AssetID: "AST-0001", Date: day(time.June, 3), CostType: models.CostParts, Amount: 1200},
		},
	}
}

func newDashboard(t *testing.T, data models.Dataset) (*DashboardHandler, *store.Store) {
	t.Helper()
	st := store.New()
	st.Replace(data, store.SourceFile, refNow)
	h := NewDashboardHandler(DashboardConfig{
		Store:      st,
		Calculator: kpi.NewCalculator(kpi.DefaultOptions()),
		Generator:  generator.Config{Assets: 10, WorkOrders: 20, Failures: 15, Costs: 20},
		Metrics:    metrics.New(),
		Now:        func() time.Time { return refNow },
	})
	return h, st
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestDashboard_KPIs(t *testing.T) {
	h, _ := newDashboard(t, fixtureDataset())

	w := get(t, h.KPIs(), "/api/kpis")
	require.Equal(t, http.StatusOK, w.Code)
	var all kpi.KPIs
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Equal(t, 3, all.TotalFailures, "only failures in the last 30 days count")
	assert.Equal(t, 2, all.TotalAssets)

	w = get(t, h.KPIs(), "/api/kpis?asset_type=Pump")
	require.Equal(t, http.StatusOK, w.Code)
	var pumps kpi.KPIs
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pumps))
	assert.Equal(t, 2, pumps.TotalFailures)
	assert.Equal(t, 1, pumps.TotalAssets)
	assert.InDelta(t, 6.0, pumps.MTTR, 1e-9)
}

func TestDashboard_DateFilter(t *testing.T) {
	h, _ := newDashboard(t, fixtureDataset())

	w := get(t, h.FailurePareto(), "/api/failures/pareto?from=2024-06-01&to=2024-06-05")
	require.Equal(t, http.StatusOK, w.Code)
	var pareto []analysis.ParetoEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pareto))

	total := 0
	for _, e := range pareto {
		total += e.Count
	}
	assert.Equal(t, 2, total, "date-only to is inclusive through the end of the day")
}

func TestDashboard_DefaultRangeExcludesLaterRecords(t *testing.T) {
	data := fixtureDataset()
	data.Failures = append(data.Failures, models.Failure{
		FailureID: "FAIL-000005", AssetID: "AST-0002", FailureDate: day(time.June, 14),
		FailureMode: "Overheating", Severity: models.SeverityLow, RCAStatus: models.RCAOpen,
	})
	h, _ := newDashboard(t, data)

	w := get(t, h.RecentFailures(), "/api/failures/recent")
	require.Equal(t, http.StatusOK, w.Code)
	var recent []analysis.FailureDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recent))
	require.Len(t, recent, 4)
	assert.Equal(t, "FAIL-000003", recent[0].FailureID)
}

func TestDashboard_BadRequests(t *testing.T) {
	h, _ := newDashboard(t, fixtureDataset())

	tests := []struct {
		name    string
		handler http.Handler
		target  string
	}{
		{"bad from", h.KPIs(), "/api/kpis?from=yesterday"},
		{"bad to", h.KPIs(), "/api/kpis?to=2024-13-01"},
		{"inverted range", h.KPIs(), "/api/kpis?from=2024-06-10&to=2024-06-01"},
		{"bad limit", h.RecentFailures(), "/api/failures/recent?limit=zero"},
		{"limit too large", h.CorrectiveActions(), "/api/rca/actions?limit=100000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, get(t, tt.handler, tt.target).Code)
		})
	}

	w := httptest.NewRecorder()
	h.KPIs().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/kpis", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestDashboard_UpcomingIgnoresDateRange(t *testing.T) {
	h, _ := newDashboard(t, fixtureDataset())

	w := get(t, h.UpcomingWorkOrders(), "/api/schedule/upcoming?from=2024-01-01&to=2024-01-31")
	require.Equal(t, http.StatusOK, w.Code)
	var upcoming []analysis.UpcomingWorkOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upcoming))
	require.Len(t, upcoming, 1)
	assert.Equal(t, "WO-000002", upcoming[0].WorkOrderID)
}

func TestDashboard_Filters(t *testing.T) {
	h, _ := newDashboard(t, fixtureDataset())

	w := get(t, http.HandlerFunc(h.Filters), "/api/filters")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		AssetTypes  []string   `json:"asset_types"`
		Locations   []string   `json:"locations"`
		DefaultFrom *time.Time `json:"default_from"`
		DefaultTo   *time.Time `json:"default_to"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Pump", "Motor"}, resp.AssetTypes)
	require.NotNil(t, resp.DefaultTo)
	assert.True(t, resp.DefaultTo.Equal(day(time.June, 10)))
	assert.True(t, resp.DefaultFrom.Equal(day(time.June, 10).AddDate(0, 0, -365)))
}

func TestDashboard_DataEndpoints(t *testing.T) {
	h, _ := newDashboard(t, fixtureDataset())

	w := get(t, http.HandlerFunc(h.DataInfo), "/api/data/info")
	require.Equal(t, http.StatusOK, w.Code)
	var info store.Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, store.SourceFile, info.Source)
	assert.Equal(t, 4, info.Counts.Failures)

	w = get(t, http.HandlerFunc(h.DataValidation), "/api/data/validation")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":true`)
}

type recordingWriter struct {
	got models.Dataset
	err error
}

func (w *recordingWriter) ReplaceDataset(_ context.Context, ds models.Dataset) error {
	w.got = ds
	return w.err
}

func TestDashboard_Regenerate(t *testing.T) {
	h, st := newDashboard(t, fixtureDataset())
	writer := &recordingWriter{}
	h.records = writer

	w := httptest.NewRecorder()
	h.Regenerate(w, httptest.NewRequest(http.MethodPost, "/api/data/regenerate?seed=7", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp RegenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.Seed)
	assert.True(t, resp.Persisted)
	assert.False(t, resp.Published)
	assert.Equal(t, store.SourceGenerator, st.Info().Source)
	assert.Equal(t, models.DatasetCounts{Assets: 10, WorkOrders: 20, Failures: 15, MaintenanceCosts: 20}, st.Info().Counts)
	assert.Equal(t, st.Dataset(), writer.got)

	want := generator.New(7, refNow).GenerateAll(generator.Config{Assets: 10, WorkOrders: 20, Failures: 15, Costs: 20})
	assert.Equal(t, want, st.Dataset(), "same seed and clock give the same dataset")
}

func TestDashboard_RegenerateErrors(t *testing.T) {
	h, st := newDashboard(t, fixtureDataset())

	w := httptest.NewRecorder()
	h.Regenerate(w, httptest.NewRequest(http.MethodPost, "/api/data/regenerate?seed=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, store.SourceFile, st.Info().Source)

	w = httptest.NewRecorder()
	h.Regenerate(w, httptest.NewRequest(http.MethodGet, "/api/data/regenerate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	h.records = &recordingWriter{err: errors.New("mongo down")}
	w = httptest.NewRecorder()
	h.Regenerate(w, httptest.NewRequest(http.MethodPost, "/api/data/regenerate?seed=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp RegenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Persisted)
	assert.Len(t, resp.Errors, 1)
	assert.Equal(t, store.SourceGenerator, st.Info().Source, "swap survives a persistence failure")
}
