// Package config reads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/MayuriEngAust/RCM/internal/broker"
	"github.com/MayuriEngAust/RCM/internal/generator"
	"github.com/MayuriEngAust/RCM/internal/kpi"
	"github.com/MayuriEngAust/RCM/internal/store"
)

// Config holds everything the server and CLIs read from the environment.
type Config struct {
	Port string

	MongoURI string
	MongoDB  string

	DataSource    store.Source
	GeneratorSeed int64
	Generator     generator.Config

	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string

	QualityRate           float64
	PerformanceRate       float64
	TrendWindowDays       int
	FailureRatePeriodDays int

	RateLimitRequests int
	RateLimitWindow   time.Duration
	TrustProxyHeaders bool

	// AdminUsername, AdminEmail and AdminPassword seed the first admin account
	// when a user store is configured.
	AdminUsername string
	AdminEmail    string
	AdminPassword string

	LogLevel  string
	LogFormat string
}

// Load reads an optional .env file and then the environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() (Config, error) {
	gen := generator.DefaultConfig()
	cfg := Config{
		Port:         getenv("PORT", "8080"),
		MongoURI:     os.Getenv("MONGO_URI"),
		MongoDB:      getenv("MONGO_DB", "rcm"),
		DataSource:   store.Source(strings.ToLower(getenv("DATA_SOURCE", string(store.SourceGenerator)))),
		MQTTBroker:   os.Getenv("MQTT_BROKER"),
		MQTTTopic:    getenv("MQTT_TOPIC", broker.DefaultTopic),
		MQTTClientID: getenv("MQTT_CLIENT_ID", "rcm-server"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		LogFormat:    getenv("LOG_FORMAT", "text"),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	var err error
	if cfg.GeneratorSeed, err = int64Env("GENERATOR_SEED", 42); err != nil {
		return Config{}, err
	}
	if cfg.Generator.Assets, err = intEnv("GENERATOR_ASSETS", gen.Assets); err != nil {
		return Config{}, err
	}
	if cfg.Generator.WorkOrders, err = intEnv("GENERATOR_WORK_ORDERS", gen.WorkOrders); err != nil {
		return Config{}, err
	}
	if cfg.Generator.Failures, err = intEnv("GENERATOR_FAILURES", gen.Failures); err != nil {
		return Config{}, err
	}
	if cfg.Generator.Costs, err = intEnv("GENERATOR_COSTS", gen.Costs); err != nil {
		return Config{}, err
	}
	if cfg.QualityRate, err = floatEnv("OEE_QUALITY_RATE", kpi.DefaultQualityRate); err != nil {
		return Config{}, err
	}
	if cfg.PerformanceRate, err = floatEnv("OEE_PERFORMANCE_RATE", kpi.DefaultPerformanceRate); err != nil {
		return Config{}, err
	}
	if cfg.TrendWindowDays, err = intEnv("KPI_TREND_WINDOW_DAYS", kpi.DefaultTrendWindowDays); err != nil {
		return Config{}, err
	}
	if cfg.FailureRatePeriodDays, err = intEnv("FAILURE_RATE_PERIOD_DAYS", kpi.DefaultFailureRatePeriodDays); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitRequests, err = intEnv("RATE_LIMIT_REQUESTS", 120); err != nil {
		return Config{}, err
	}
	windowSeconds, err := intEnv("RATE_LIMIT_WINDOW_SECONDS", 60)
	if err != nil {
		return Config{}, err
	}
	cfg.RateLimitWindow = time.Duration(windowSeconds) * time.Second
	if cfg.TrustProxyHeaders, err = boolEnv("TRUST_PROXY_HEADERS", false); err != nil {
		return Config{}, err
	}
	if (cfg.AdminUsername == "") != (cfg.AdminPassword == "") {
		return Config{}, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}

	switch cfg.DataSource {
	case store.SourceGenerator, store.SourceMongo, store.SourceMQTT:
	default:
		return Config{}, fmt.Errorf("invalid DATA_SOURCE %q", cfg.DataSource)
	}
	if cfg.DataSource == store.SourceMongo && cfg.MongoURI == "" {
		return Config{}, errors.New("DATA_SOURCE=mongo requires MONGO_URI")
	}
	if cfg.DataSource == store.SourceMQTT && cfg.MQTTBroker == "" {
		return Config{}, errors.New("DATA_SOURCE=mqtt requires MQTT_BROKER")
	}
	return cfg, nil
}

// KPIOptions returns the KPI engine settings.
func (c Config) KPIOptions() kpi.Options {
	return kpi.Options{
		TrendWindowDays:       c.TrendWindowDays,
		FailureRatePeriodDays: c.FailureRatePeriodDays,
		QualityRate:           c.QualityRate,
		PerformanceRate:       c.PerformanceRate,
	}
}

// GeneratorConfig returns the synthetic dataset sizes.
func (c Config) GeneratorConfig() generator.Config {
	return c.Generator
}

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the standard logrus logger.
func (c Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func int64Env(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}
