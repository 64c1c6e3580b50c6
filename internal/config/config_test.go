package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayuriEngAust/RCM/internal/generator"
	"github.com/MayuriEngAust/RCM/internal/kpi"
	"github.com/MayuriEngAust/RCM/internal/store"
)

var configKeys = []string{
	"PORT", "MONGO_URI", "MONGO_DB", "DATA_SOURCE", "GENERATOR_SEED",
	"GENERATOR_ASSETS", "GENERATOR_WORK_ORDERS", "GENERATOR_FAILURES", "GENERATOR_COSTS",
	"MQTT_BROKER", "MQTT_TOPIC", "MQTT_CLIENT_ID", "OEE_QUALITY_RATE", "OEE_PERFORMANCE_RATE",
	"KPI_TREND_WINDOW_DAYS", "FAILURE_RATE_PERIOD_DAYS", "RATE_LIMIT_REQUESTS",
	"RATE_LIMIT_WINDOW_SECONDS", "TRUST_PROXY_HEADERS", "LOG_LEVEL", "LOG_FORMAT",
	"ADMIN_USERNAME", "ADMIN_EMAIL", "ADMIN_PASSWORD",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "rcm", cfg.MongoDB)
	assert.Equal(t, store.SourceGenerator, cfg.DataSource)
	assert.Equal(t, int64(42), cfg.GeneratorSeed)
	assert.Equal(t, generator.DefaultConfig(), cfg.GeneratorConfig())
	assert.Equal(t, "rcm/dataset", cfg.MQTTTopic)
	assert.Equal(t, 120, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.False(t, cfg.TrustProxyHeaders)
	assert.Empty(t, cfg.AdminUsername)
	assert.Equal(t, kpi.DefaultOptions(), cfg.KPIOptions())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_SOURCE", "MQTT")
	t.Setenv("MQTT_BROKER", "tcp://localhost:1883")
	t.Setenv("GENERATOR_SEED", "7")
	t.Setenv("GENERATOR_ASSETS", "10")
	t.Setenv("OEE_QUALITY_RATE", "0.99")
	t.Setenv("KPI_TREND_WINDOW_DAYS", "14")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "5")
	t.Setenv("TRUST_PROXY_HEADERS", "true")
	t.Setenv("ADMIN_USERNAME", "rcm-admin")
	t.Setenv("ADMIN_PASSWORD", "change-me-please")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, store.SourceMQTT, cfg.DataSource)
	assert.Equal(t, int64(7), cfg.GeneratorSeed)
	assert.Equal(t, 10, cfg.GeneratorConfig().Assets)
	assert.Equal(t, 500, cfg.GeneratorConfig().WorkOrders)
	assert.Equal(t, 5*time.Second, cfg.RateLimitWindow)
	assert.True(t, cfg.TrustProxyHeaders)
	assert.Equal(t, "rcm-admin", cfg.AdminUsername)
	assert.Equal(t, "change-me-please", cfg.AdminPassword)

	opts := cfg.KPIOptions()
	assert.Equal(t, 0.99, opts.QualityRate)
	assert.Equal(t, kpi.DefaultPerformanceRate, opts.PerformanceRate)
	assert.Equal(t, 14, opts.TrendWindowDays)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad seed", map[string]string{"GENERATOR_SEED": "abc"}},
		{"bad rate", map[string]string{"OEE_QUALITY_RATE": "high"}},
		{"unknown source", map[string]string{"DATA_SOURCE": "csv"}},
		{"mongo without uri", map[string]string{"DATA_SOURCE": "mongo"}},
		{"mqtt without broker", map[string]string{"DATA_SOURCE": "mqtt"}},
		{"bad proxy flag", map[string]string{"TRUST_PROXY_HEADERS": "sometimes"}},
		{"admin without password", map[string]string{"ADMIN_USERNAME": "rcm-admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("MONGO_DB")
	t.Cleanup(func() { os.Unsetenv("MONGO_DB") })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("MONGO_DB=plant\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "plant", cfg.MongoDB)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.GetLevel())
	defer log.SetFormatter(log.StandardLogger().Formatter)

	Config{LogLevel: "debug", LogFormat: "json"}.ConfigureLogging()
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	Config{LogLevel: "nonsense"}.ConfigureLogging()
	assert.Equal(t, log.InfoLevel, log.GetLevel())
}
