package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayuriEngAust/RCM/internal/config"
	"github.com/MayuriEngAust/RCM/internal/generator"
	"github.com/MayuriEngAust/RCM/internal/kpi"
	"github.com/MayuriEngAust/RCM/internal/models"
	"github.com/MayuriEngAust/RCM/internal/store"
)

var refNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return refNow }

func testConfig(source store.Source) config.Config {
	return config.Config{
		DataSource:            source,
		GeneratorSeed:         42,
		Generator:             generator.Config{Assets: 10, WorkOrders: 20, Failures: 15, Costs: 25},
		MQTTTopic:             "rcm/test",
		QualityRate:           0.95,
		PerformanceRate:       0.90,
		TrendWindowDays:       30,
		FailureRatePeriodDays: 365,
	}
}

func TestNewServer_GeneratorSource(t *testing.T) {
	t.Setenv("JWT_SECRET", "server-test-secret")

	srv, err := newServer(context.Background(), testConfig(store.SourceGenerator), fixedNow)
	require.NoError(t, err)
	defer srv.Close()

	info := srv.store.Info()
	assert.Equal(t, store.SourceGenerator, info.Source)
	assert.Equal(t, refNow, info.LoadedAt)
	assert.Equal(t, models.DatasetCounts{Assets: 10, Failures: 15, WorkOrders: 20, MaintenanceCosts: 25}, info.Counts)

	want := generator.New(42, refNow).GenerateAll(generator.Config{Assets: 10, WorkOrders: 20, Failures: 15, Costs: 25})
	assert.Equal(t, want, srv.store.Dataset())
}

func TestNewServer_WithoutUserStoreServesDashboard(t *testing.T) {
	srv, err := newServer(context.Background(), testConfig(store.SourceGenerator), fixedNow)
	require.NoError(t, err)
	defer srv.Close()

	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, true, health["dataset_loaded"])
	assert.Equal(t, "generator", health["source"])

	for _, route := range []string{"/api/kpis", "/api/failures/pareto", "/api/reports/overview"} {
		rec = httptest.NewRecorder()
		srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, route, nil))
		assert.Equal(t, http.StatusOK, rec.Code, route)
	}

	var kpis kpi.KPIs
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/kpis", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kpis))
	assert.Equal(t, 10, kpis.TotalAssets)
}

func TestNewServer_AdminWithoutUserStoreIsIgnored(t *testing.T) {
	cfg := testConfig(store.SourceGenerator)
	cfg.AdminUsername, cfg.AdminPassword = "rcm-admin", "change-me-please"

	srv, err := newServer(context.Background(), cfg, fixedNow)
	require.NoError(t, err)
	defer srv.Close()
	assert.Nil(t, srv.mongo)
}

func TestNewServer_AuthRoutesUnavailableWithoutMongo(t *testing.T) {
	srv, err := newServer(context.Background(), testConfig(store.SourceGenerator), fixedNow)
	require.NoError(t, err)
	defer srv.Close()

	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewServer_SourceWithoutBackend(t *testing.T) {
	for _, source := range []store.Source{store.SourceMongo, store.SourceMQTT} {
		t.Run(string(source), func(t *testing.T) {
			_, err := newServer(context.Background(), testConfig(source), fixedNow)
			assert.Error(t, err)
		})
	}
}

func TestNewServer_BadJWTExpiry(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "soon")

	_, err := newServer(context.Background(), testConfig(store.SourceGenerator), fixedNow)
	assert.Error(t, err)
}
