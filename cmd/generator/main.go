// Command generator produces a seeded synthetic maintenance dataset and ships it
// to a file, MongoDB and/or the MQTT dataset topic.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/MayuriEngAust/RCM/internal/broker"
	"github.com/MayuriEngAust/RCM/internal/config"
	"github.com/MayuriEngAust/RCM/internal/db"
	"github.com/MayuriEngAust/RCM/internal/filter"
	"github.com/MayuriEngAust/RCM/internal/generator"
	"github.com/MayuriEngAust/RCM/internal/models"
	"github.com/MayuriEngAust/RCM/internal/store"
)

const sinkTimeout = 30 * time.Second

// options is what one run needs after flags and environment are merged.
type options struct {
	Seed     int64
	Now      time.Time
	Sizes    generator.Config
	Out      string
	MongoURI string
	MongoDB  string
	Broker   string
	Topic    string
	ClientID string
}

// sinks receive the generated dataset. Nil sinks are skipped.
type sinks struct {
	mongo func(ctx context.Context, ds models.Dataset) error
	mqtt  func(env broker.Envelope) error
}

var errNoSink = errors.New("nothing to do: set --out, MONGO_URI or MQTT_BROKER")

func run(ctx context.Context, opts options, s sinks) (models.Dataset, error) {
	if opts.Out == "" && s.mongo == nil && s.mqtt == nil {
		return models.Dataset{}, errNoSink
	}

	ds := generator.New(opts.Seed, opts.Now).GenerateAll(opts.Sizes)
	result := filter.Validate(ds)
	if !result.Valid {
		return models.Dataset{}, fmt.Errorf("generated dataset is invalid: %v", result.Errors)
	}
	for _, w := range result.Warnings {
		log.Warn(w)
	}

	counts := ds.Counts()
	log.WithFields(log.Fields{
		"seed":              opts.Seed,
		"assets":            counts.Assets,
		"failures":          counts.Failures,
		"work_orders":       counts.WorkOrders,
		"maintenance_costs": counts.MaintenanceCosts,
	}).Info("Generated dataset")

	if opts.Out != "" {
		if err := store.WriteDataset(opts.Out, ds); err != nil {
			return ds, err
		}
		log.WithField("path", opts.Out).Info("Wrote dataset file")
	}
	if s.mongo != nil {
		ctx, cancel := context.WithTimeout(ctx, sinkTimeout)
		defer cancel()
		if err := s.mongo(ctx, ds); err != nil {
			return ds, fmt.Errorf("store dataset in mongo: %w", err)
		}
		log.WithField("database", opts.MongoDB).Info("Stored dataset in MongoDB")
	}
	if s.mqtt != nil {
		env := broker.Envelope{PublishedAt: opts.Now, Origin: string(store.SourceGenerator), Dataset: ds}
		if err := s.mqtt(env); err != nil {
			return ds, err
		}
	}
	return ds, nil
}

// connectSinks opens the MongoDB and MQTT connections named in opts.
// The returned cleanup closes whatever was opened.
func connectSinks(opts options) (sinks, func(), error) {
	var s sinks
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if opts.MongoURI != "" {
		client, err := db.ConnectMongo(opts.MongoURI)
		if err != nil {
			return sinks{}, cleanup, err
		}
		closers = append(closers, func() { _ = client.Disconnect(context.Background()) })
		records := db.NewRecordStore(client.Database(opts.MongoDB))
		s.mongo = records.ReplaceDataset
	}

	if opts.Broker != "" {
		client, err := broker.Connect(opts.Broker, opts.ClientID, sinkTimeout)
		if err != nil {
			cleanup()
			return sinks{}, func() {}, err
		}
		closers = append(closers, func() { client.Disconnect(250) })
		s.mqtt = func(env broker.Envelope) error {
			return broker.PublishDataset(client, opts.Topic, env, sinkTimeout)
		}
	}
	return s, cleanup, nil
}

func newRootCmd() *cobra.Command {
	var (
		opts   options
		nowStr string
	)

	cmd := &cobra.Command{
		Use:          "generator",
		Short:        "Generate a synthetic RCM dataset",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.ConfigureLogging()

			if !cmd.Flags().Changed("seed") {
				opts.Seed = cfg.GeneratorSeed
			}
			sizes := cfg.GeneratorConfig()
			keep := func(flag string, dst *int, def int) {
				if !cmd.Flags().Changed(flag) {
					*dst = def
				}
			}
			keep("assets", &opts.Sizes.Assets, sizes.Assets)
			keep("work-orders", &opts.Sizes.WorkOrders, sizes.WorkOrders)
			keep("failures", &opts.Sizes.Failures, sizes.Failures)
			keep("costs", &opts.Sizes.Costs, sizes.Costs)
			opts.MongoURI, opts.MongoDB = cfg.MongoURI, cfg.MongoDB
			opts.Broker, opts.Topic = cfg.MQTTBroker, cfg.MQTTTopic
			opts.ClientID = "rcm-generator"

			opts.Now = time.Now()
			if nowStr != "" {
				if opts.Now, err = filter.ParseDate(nowStr, false); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, cleanup, err := connectSinks(opts)
			defer cleanup()
			if err != nil {
				return err
			}
			_, err = run(cmd.Context(), opts, s)
			return err
		},
	}

	f := cmd.Flags()
	f.Int64Var(&opts.Seed, "seed", 42, "random seed (default from GENERATOR_SEED)")
	f.IntVar(&opts.Sizes.Assets, "assets", 0, "number of assets (default from GENERATOR_ASSETS)")
	f.IntVar(&opts.Sizes.WorkOrders, "work-orders", 0, "number of work orders")
	f.IntVar(&opts.Sizes.Failures, "failures", 0, "number of failures")
	f.IntVar(&opts.Sizes.Costs, "costs", 0, "number of maintenance cost records")
	f.StringVarP(&opts.Out, "out", "o", "", `write the dataset as JSON to this file ("-" for stdout)`)
	f.StringVar(&nowStr, "now", "", "reference time, RFC3339 or YYYY-MM-DD (default: current time)")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
