package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/MayuriEngAust/RCM/internal/analysis"
	"github.com/MayuriEngAust/RCM/internal/broker"
	"github.com/MayuriEngAust/RCM/internal/filter"
	"github.com/MayuriEngAust/RCM/internal/generator"
	"github.com/MayuriEngAust/RCM/internal/kpi"
	"github.com/MayuriEngAust/RCM/internal/metrics"
	"github.com/MayuriEngAust/RCM/internal/middleware"
	"github.com/MayuriEngAust/RCM/internal/models"
	"github.com/MayuriEngAust/RCM/internal/store"
)

const (
	defaultListLimit = 20
	maxListLimit     = 1000
	publishTimeout   = 10 * time.Second
)

// DatasetWriter persists a regenerated dataset.
type DatasetWriter interface {
	ReplaceDataset(ctx context.Context, ds models.Dataset) error
}

// DashboardConfig wires the dashboard handler. Records, Publisher and Metrics are optional.
type DashboardConfig struct {
	Store      *store.Store
	Calculator *kpi.Calculator
	Generator  generator.Config
	Records    DatasetWriter
	Publisher  broker.Publisher
	Topic      string
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

// DashboardHandler serves the analytics endpoints over the current dataset.
type DashboardHandler struct {
	store     *store.Store
	calc      *kpi.Calculator
	genCfg    generator.Config
	records   DatasetWriter
	publisher broker.Publisher
	topic     string
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(cfg DashboardConfig) *DashboardHandler {
	h := &DashboardHandler{
		store:     cfg.Store,
		calc:      cfg.Calculator,
		genCfg:    cfg.Generator,
		records:   cfg.Records,
		publisher: cfg.Publisher,
		topic:     cfg.Topic,
		metrics:   cfg.Metrics,
		now:       cfg.Now,
	}
	if h.calc == nil {
		h.calc = kpi.NewCalculator(kpi.DefaultOptions())
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.topic == "" {
		h.topic = broker.DefaultTopic
	}
	return h
}

// view filters the current dataset by the request's criteria and encodes compute's result.
func (h *DashboardHandler) view(name string, compute func(data models.Dataset, r *http.Request, now time.Time) (interface{}, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		data := h.store.Dataset()
		criteria, err := parseCriteria(r, data)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		result, err := compute(filter.Apply(data, criteria), r, h.now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.metrics.KPIComputed(name)
		writeJSON(w, http.StatusOK, result)
	}
}

// parseCriteria reads the filter query parameters. Without from/to the default
// one-year range ending at the latest completion applies.
func parseCriteria(r *http.Request, data models.Dataset) (filter.Criteria, error) {
	q := r.URL.Query()
	c := filter.Criteria{
		AssetType:   q.Get("asset_type"),
		Location:    q.Get("location"),
		Criticality: q.Get("criticality"),
	}

	var err error
	if c.From, err = filter.ParseDate(q.Get("from"), false); err != nil {
		return filter.Criteria{}, err
	}
	if c.To, err = filter.ParseDate(q.Get("to"), true); err != nil {
		return filter.Criteria{}, err
	}
	if !c.HasDateRange() {
		if from, to, ok := filter.DefaultRange(data); ok {
			c.From, c.To = from, to
		}
	}
	if !c.From.IsZero() && !c.To.IsZero() && c.From.After(c.To) {
		return filter.Criteria{}, errors.New("from must not be after to")
	}
	return c, nil
}

func parseLimit(r *http.Request, def int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 || n > maxListLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxListLimit)
	}
	return n, nil
}

// Health reports liveness and whether a dataset is loaded.
func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	info := h.store.Info()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"dataset_loaded": !info.LoadedAt.IsZero(),
		"source":         info.Source,
	})
}

// Filters returns the picker values and the default date range.
func (h *DashboardHandler) Filters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data := h.store.Dataset()
	resp := struct {
		filter.FilterOptions
		DefaultFrom *time.Time `json:"default_from,omitempty"`
		DefaultTo   *time.Time `json:"default_to,omitempty"`
	}{FilterOptions: filter.Options(data)}
	if from, to, ok := filter.DefaultRange(data); ok {
		resp.DefaultFrom, resp.DefaultTo = &from, &to
	}
	writeJSON(w, http.StatusOK, resp)
}

// KPIs returns the headline KPI block.
func (h *DashboardHandler) KPIs() http.HandlerFunc {
	return h.view("kpis", func(d models.Dataset, _ *http.Request, now time.Time) (interface{}, error) {
		return h.calc.CalculateAll(d, now), nil
	})
}

// FailurePareto returns failure modes ranked by count with cumulative share.
func (h *DashboardHandler) FailurePareto() http.HandlerFunc {
	return h.view("failure_pareto", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.FailurePareto(d.Failures), nil
	})
}

func (h *DashboardHandler) SeverityDistribution() http.HandlerFunc {
	return h.view("failure_severity", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.SeverityDistribution(d.Failures), nil
	})
}

func (h *DashboardHandler) FailuresByAssetType() http.HandlerFunc {
	return h.view("failures_by_asset_type", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.FailuresByAssetType(d.Failures, d.Assets), nil
	})
}

func (h *DashboardHandler) LocationHeatmap() http.HandlerFunc {
	return h.view("failure_heatmap", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.LocationMonthHeatmap(d.Failures, d.Assets), nil
	})
}

func (h *DashboardHandler) AssetHeatmap() http.HandlerFunc {
	return h.view("asset_heatmap", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.AssetFailureHeatmap(d.Assets, d.Failures), nil
	})
}

// RecentFailures honours ?limit=N.
func (h *DashboardHandler) RecentFailures() http.HandlerFunc {
	return h.view("recent_failures", func(d models.Dataset, r *http.Request, _ time.Time) (interface{}, error) {
		limit, err := parseLimit(r, analysis.DefaultRecentLimit)
		if err != nil {
			return nil, err
		}
		return analysis.RecentFailures(d.Failures, d.Assets, limit), nil
	})
}

func (h *DashboardHandler) FailureTrend() http.HandlerFunc {
	return h.view("failure_trend", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.MonthlyFailureTrend(d.Failures), nil
	})
}

func (h *DashboardHandler) MTBFTrend() http.HandlerFunc {
	return h.view("mtbf_trend", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.MTBFTrendByAssetType(d.Failures, d.Assets), nil
	})
}

func (h *DashboardHandler) MTTRTrend() http.HandlerFunc {
	return h.view("mttr_trend", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.MonthlyMTTR(d.Failures), nil
	})
}

func (h *DashboardHandler) CostTrend() http.HandlerFunc {
	return h.view("cost_trend", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.MonthlyCostByType(d.MaintenanceCosts), nil
	})
}

func (h *DashboardHandler) ScheduleCompliance() http.HandlerFunc {
	return h.view("schedule_compliance", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.ScheduleCompliance(d.WorkOrders), nil
	})
}

func (h *DashboardHandler) MaintenanceTypes() http.HandlerFunc {
	return h.view("maintenance_types", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.MaintenanceTypeDistribution(d.WorkOrders), nil
	})
}

// UpcomingWorkOrders lists open work orders. Upcoming work is not bounded by the
// date filter, so only the asset criteria apply here.
func (h *DashboardHandler) UpcomingWorkOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		data := h.store.Dataset()
		criteria, err := parseCriteria(r, data)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		criteria.From, criteria.To = time.Time{}, time.Time{}
		d := filter.Apply(data, criteria)
		h.metrics.KPIComputed("upcoming_work_orders")
		writeJSON(w, http.StatusOK, analysis.UpcomingWorkOrders(d.WorkOrders, d.Assets, h.now()))
	}
}

func (h *DashboardHandler) MaintenanceTimeline() http.HandlerFunc {
	return h.view("maintenance_timeline", func(d models.Dataset, r *http.Request, now time.Time) (interface{}, error) {
		limit, err := parseLimit(r, defaultListLimit)
		if err != nil {
			return nil, err
		}
		return analysis.MaintenanceTimeline(d.WorkOrders, now, limit), nil
	})
}

func (h *DashboardHandler) RCASummary() http.HandlerFunc {
	return h.view("rca_summary", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.SummarizeRCA(d.Failures), nil
	})
}

func (h *DashboardHandler) RCAStatus() http.HandlerFunc {
	return h.view("rca_status", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.RCAStatusByAssetType(d.Failures, d.Assets), nil
	})
}

func (h *DashboardHandler) RootCauses() http.HandlerFunc {
	return h.view("root_causes", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.RootCauseDistribution(d.Failures), nil
	})
}

func (h *DashboardHandler) CorrectiveActions() http.HandlerFunc {
	return h.view("corrective_actions", func(d models.Dataset, r *http.Request, _ time.Time) (interface{}, error) {
		limit, err := parseLimit(r, analysis.DefaultActionLimit)
		if err != nil {
			return nil, err
		}
		return analysis.CorrectiveActions(d.Failures, limit), nil
	})
}

func (h *DashboardHandler) Investigations() http.HandlerFunc {
	return h.view("investigations", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.ActiveInvestigations(d.Failures, d.Assets), nil
	})
}

// OverviewReport is the per-asset export table.
func (h *DashboardHandler) OverviewReport() http.HandlerFunc {
	return h.view("report_overview", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.AssetOverview(d), nil
	})
}

func (h *DashboardHandler) FailureReport() http.HandlerFunc {
	return h.view("report_failures", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.FailureReport(d), nil
	})
}

func (h *DashboardHandler) SummaryReport() http.HandlerFunc {
	return h.view("report_summary", func(d models.Dataset, _ *http.Request, _ time.Time) (interface{}, error) {
		return analysis.GeneralSummary(d), nil
	})
}

// TopAssets ranks assets by failure count, ?limit=N (default 10).
func (h *DashboardHandler) TopAssets() http.HandlerFunc {
	return h.view("report_top_assets", func(d models.Dataset, r *http.Request, _ time.Time) (interface{}, error) {
		limit, err := parseLimit(r, 10)
		if err != nil {
			return nil, err
		}
		return analysis.TopAssetsByFailures(analysis.AssetOverview(d), limit), nil
	})
}

// DataInfo describes the loaded dataset.
func (h *DashboardHandler) DataInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Info())
}

// DataValidation runs the record checks over the whole, unfiltered dataset.
func (h *DashboardHandler) DataValidation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, filter.Validate(h.store.Dataset()))
}

// RegenerateResponse reports what a regeneration did.
type RegenerateResponse struct {
	Seed      int64                   `json:"seed"`
	Info      store.Info              `json:"info"`
	Persisted bool                    `json:"persisted"`
	Published bool                    `json:"published"`
	Errors    []string                `json:"errors,omitempty"`
	Result    filter.ValidationResult `json:"validation"`
}

// Regenerate builds a fresh synthetic dataset (?seed=N, default derived from
// the clock), installs it, and persists and publishes it when configured.
// Persistence and publish failures are reported but do not undo the swap.
func (h *DashboardHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := h.now()
	seed := now.UnixNano()
	if v := r.URL.Query().Get("seed"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "seed must be an integer", http.StatusBadRequest)
			return
		}
		seed = parsed
	}

	data := generator.New(seed, now).GenerateAll(h.genCfg)
	validation := filter.Validate(data)
	if !validation.Valid {
		log.WithField("errors", validation.Errors).Error("Generated dataset failed validation")
		http.Error(w, "Generated dataset failed validation", http.StatusInternalServerError)
		return
	}

	h.store.Replace(data, store.SourceGenerator, now)
	h.metrics.DatasetLoaded(string(store.SourceGenerator), data.Counts())

	resp := RegenerateResponse{Seed: seed, Info: h.store.Info(), Result: validation}
	if h.records != nil {
		if err := h.records.ReplaceDataset(r.Context(), data); err != nil {
			log.WithError(err).Error("Failed to persist regenerated dataset")
			resp.Errors = append(resp.Errors, "persist: "+err.Error())
		} else {
			resp.Persisted = true
		}
	}
	if h.publisher != nil {
		env := broker.Envelope{PublishedAt: now, Origin: string(store.SourceGenerator), Dataset: data}
		if err := broker.PublishDataset(h.publisher, h.topic, env, publishTimeout); err != nil {
			log.WithError(err).Error("Failed to publish regenerated dataset")
			resp.Errors = append(resp.Errors, "publish: "+err.Error())
		} else {
			resp.Published = true
		}
	}

	fields := log.Fields{"seed": seed, "persisted": resp.Persisted, "published": resp.Published}
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		fields["user"] = claims.Username
	}
	log.WithFields(fields).Info("Dataset regenerated")
	writeJSON(w, http.StatusOK, resp)
}
