// Command main serves the RCM dashboard API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/MayuriEngAust/RCM/internal/auth"
	"github.com/MayuriEngAust/RCM/internal/broker"
	"github.com/MayuriEngAust/RCM/internal/config"
	"github.com/MayuriEngAust/RCM/internal/db"
	"github.com/MayuriEngAust/RCM/internal/generator"
	"github.com/MayuriEngAust/RCM/internal/handlers"
	"github.com/MayuriEngAust/RCM/internal/kpi"
	"github.com/MayuriEngAust/RCM/internal/metrics"
	"github.com/MayuriEngAust/RCM/internal/middleware"
	"github.com/MayuriEngAust/RCM/internal/models"
	"github.com/MayuriEngAust/RCM/internal/store"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// server holds the wired application and the connections it must close.
type server struct {
	handler http.Handler
	store   *store.Store
	mongo   *mongo.Client
	mqtt    mqtt.Client
}

func (s *server) Close() {
	if s.mqtt != nil {
		s.mqtt.Disconnect(250)
	}
	if s.mongo != nil {
		if err := s.mongo.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("MongoDB disconnect failed")
		}
	}
}

// newServer connects the configured backends, loads the first dataset and builds the router.
func newServer(ctx context.Context, cfg config.Config, now func() time.Time) (*server, error) {
	srv := &server{store: store.New()}
	m := metrics.New()

	authService, err := auth.NewService()
	if err != nil {
		return nil, err
	}

	var records *db.RecordStore
	var users db.UserCollection
	if cfg.MongoURI != "" {
		client, err := db.ConnectMongo(cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		srv.mongo = client
		database := client.Database(cfg.MongoDB)
		records = db.NewRecordStore(database)

		userColl := &db.MongoUserCollection{Collection: database.Collection(db.UsersCollection)}
		if err := userColl.EnsureIndexes(ctx); err != nil {
			log.WithError(err).Warn("Could not create user indexes")
		}
		users = userColl
		log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")

		if cfg.AdminUsername != "" {
			err := handlers.NewAuthHandler(authService, users).EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
			if err != nil {
				srv.Close()
				return nil, fmt.Errorf("bootstrap admin: %w", err)
			}
		}
	} else if cfg.AdminUsername != "" {
		log.Warn("ADMIN_USERNAME ignored: no MONGO_URI user store configured")
	}

	if cfg.MQTTBroker != "" {
		client, err := broker.Connect(cfg.MQTTBroker, cfg.MQTTClientID, startupTimeout)
		if err != nil {
			srv.Close()
			return nil, err
		}
		srv.mqtt = client
		log.WithField("broker", cfg.MQTTBroker).Info("Connected to MQTT broker")
	}

	if err := srv.loadDataset(ctx, cfg, records, m, now); err != nil {
		srv.Close()
		return nil, err
	}

	dashCfg := handlers.DashboardConfig{
		Store:      srv.store,
		Calculator: kpi.NewCalculator(cfg.KPIOptions()),
		Generator:  cfg.GeneratorConfig(),
		Topic:      cfg.MQTTTopic,
		Metrics:    m,
		Now:        now,
	}
	if records != nil {
		dashCfg.Records = records
	}
	if srv.mqtt != nil {
		dashCfg.Publisher = srv.mqtt
	}

	// Without a user store nobody could obtain a token, so the dashboard is served openly.
	srv.handler = handlers.NewRouter(handlers.RouterConfig{
		Dashboard:    handlers.NewDashboardHandler(dashCfg),
		AuthService:  authService,
		Users:        users,
		Metrics:      m,
		RateLimiter:  middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow).TrustProxyHeaders(cfg.TrustProxyHeaders),
		AuthDisabled: users == nil,
	})
	return srv, nil
}

// loadDataset installs the first dataset from the configured source. An empty
// MongoDB is seeded from the generator; the MQTT source fills in when the
// retained dataset message arrives.
func (s *server) loadDataset(ctx context.Context, cfg config.Config, records *db.RecordStore, m *metrics.Metrics, now func() time.Time) error {
	install := func(src store.Source) func(models.Dataset) {
		return func(ds models.Dataset) {
			s.store.Replace(ds, src, now())
			m.DatasetLoaded(string(src), ds.Counts())
		}
	}

	switch cfg.DataSource {
	case store.SourceMongo:
		if records == nil {
			return errors.New("mongo data source without a MongoDB connection")
		}
		loadCtx, cancel := context.WithTimeout(ctx, startupTimeout)
		defer cancel()
		ds, err := records.LoadDataset(loadCtx)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		if ds.IsEmpty() {
			ds = generator.New(cfg.GeneratorSeed, now()).GenerateAll(cfg.GeneratorConfig())
			if err := records.ReplaceDataset(loadCtx, ds); err != nil {
				return fmt.Errorf("seed dataset: %w", err)
			}
			log.WithField("seed", cfg.GeneratorSeed).Info("Seeded empty MongoDB with a generated dataset")
		}
		install(store.SourceMongo)(ds)

	case store.SourceMQTT:
		if s.mqtt == nil {
			return errors.New("mqtt data source without a broker connection")
		}
		onDataset := install(store.SourceMQTT)
		err := broker.SubscribeDatasets(s.mqtt, cfg.MQTTTopic, startupTimeout, func(env broker.Envelope) {
			onDataset(env.Dataset)
		})
		if err != nil {
			return err
		}

	default:
		install(store.SourceGenerator)(generator.New(cfg.GeneratorSeed, now()).GenerateAll(cfg.GeneratorConfig()))
	}

	info := s.store.Info()
	log.WithFields(log.Fields{
		"source":   cfg.DataSource,
		"assets":   info.Counts.Assets,
		"failures": info.Counts.Failures,
	}).Info("Dataset ready")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(ctx, cfg, time.Now)
	if err != nil {
		log.WithError(err).Fatal("Failed to start")
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{"port": cfg.Port, "source": cfg.DataSource}).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
