package handlers

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/MayuriEngAust/RCM/internal/auth"
	"github.com/MayuriEngAust/RCM/internal/db"
	"github.com/MayuriEngAust/RCM/internal/metrics"
	"github.com/MayuriEngAust/RCM/internal/middleware"
	"github.com/MayuriEngAust/RCM/internal/models"
)

// RouterConfig collects what NewRouter needs. Users may be nil, in which case
// the /api/auth routes answer 503. Tokens are still checked unless AuthDisabled
// is set, which mounts every dashboard route without authentication.
type RouterConfig struct {
	Dashboard    *DashboardHandler
	AuthService  *auth.Service
	Users        db.UserCollection
	Metrics      *metrics.Metrics
	RateLimiter  *middleware.RateLimiter
	CORSOrigins  []string
	AuthDisabled bool
}

// NewRouter builds the full HTTP handler with its middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	authMW := middleware.NewAuthMiddleware(cfg.AuthService)
	d := cfg.Dashboard

	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.RequestLogger, cfg.Metrics.Middleware, cfg.RateLimiter.Middleware)
	if cfg.AuthDisabled {
		log.Warn("Authentication disabled: dashboard routes are open to every client")
	} else {
		r.Use(authMW.Authenticate)
	}

	r.HandleFunc("/health", d.Health).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	authRoutes := r.PathPrefix("/api/auth").Subrouter()
	if cfg.Users != nil {
		ah := NewAuthHandler(cfg.AuthService, cfg.Users)
		authRoutes.HandleFunc("/login", ah.Login).Methods(http.MethodPost)
		authRoutes.HandleFunc("/register", ah.Register).Methods(http.MethodPost)
		authRoutes.HandleFunc("/profile", ah.GetProfile).Methods(http.MethodGet)
		authRoutes.HandleFunc("/profile", ah.UpdateProfile).Methods(http.MethodPut)
		authRoutes.HandleFunc("/change-password", ah.ChangePassword).Methods(http.MethodPost)
	} else {
		authRoutes.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "User store not configured", http.StatusServiceUnavailable)
		})
	}

	api := r.PathPrefix("/api").Subrouter()
	guard := func(action string, h http.Handler) http.Handler {
		if cfg.AuthDisabled {
			return h
		}
		return authMW.RequirePermission(action)(h)
	}
	get := func(path, action string, h http.Handler) {
		api.Handle(path, guard(action, h)).Methods(http.MethodGet)
	}

	get("/filters", models.ActionViewKPIs, http.HandlerFunc(d.Filters))
	get("/kpis", models.ActionViewKPIs, d.KPIs())

	get("/failures/pareto", models.ActionViewFailures, d.FailurePareto())
	get("/failures/severity", models.ActionViewFailures, d.SeverityDistribution())
	get("/failures/by-asset-type", models.ActionViewFailures, d.FailuresByAssetType())
	get("/failures/heatmap", models.ActionViewFailures, d.LocationHeatmap())
	get("/failures/asset-heatmap", models.ActionViewFailures, d.AssetHeatmap())
	get("/failures/recent", models.ActionViewFailures, d.RecentFailures())

	get("/trends/failures", models.ActionViewKPIs, d.FailureTrend())
	get("/trends/mtbf", models.ActionViewKPIs, d.MTBFTrend())
	get("/trends/mttr", models.ActionViewKPIs, d.MTTRTrend())
	get("/trends/costs", models.ActionViewKPIs, d.CostTrend())

	get("/schedule/compliance", models.ActionViewSchedule, d.ScheduleCompliance())
	get("/schedule/types", models.ActionViewSchedule, d.MaintenanceTypes())
	get("/schedule/upcoming", models.ActionViewSchedule, d.UpcomingWorkOrders())
	get("/schedule/timeline", models.ActionViewSchedule, d.MaintenanceTimeline())

	get("/rca/summary", models.ActionViewRCA, d.RCASummary())
	get("/rca/status", models.ActionViewRCA, d.RCAStatus())
	get("/rca/root-causes", models.ActionViewRCA, d.RootCauses())
	get("/rca/actions", models.ActionViewRCA, d.CorrectiveActions())
	get("/rca/investigations", models.ActionViewRCA, d.Investigations())

	get("/reports/overview", models.ActionViewReports, d.OverviewReport())
	get("/reports/failures", models.ActionViewReports, d.FailureReport())
	get("/reports/summary", models.ActionViewReports, d.SummaryReport())
	get("/reports/top-assets", models.ActionViewReports, d.TopAssets())

	get("/data/info", models.ActionViewKPIs, http.HandlerFunc(d.DataInfo))
	get("/data/validation", models.ActionViewKPIs, http.HandlerFunc(d.DataValidation))
	api.Handle("/data/regenerate", guard(models.ActionRegenerateData, http.HandlerFunc(d.Regenerate))).Methods(http.MethodPost)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(log.StandardLogger()),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(cors(r))
}
