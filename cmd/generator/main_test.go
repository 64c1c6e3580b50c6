package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayuriEngAust/RCM/internal/broker"
	"github.com/MayuriEngAust/RCM/internal/generator"
	"github.com/MayuriEngAust/RCM/internal/models"
	"github.com/MayuriEngAust/RCM/internal/store"
)

var refNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func smallOptions() options {
	return options{
		Seed:  9,
		Now:   refNow,
		Sizes: generator.Config{Assets: 8, WorkOrders: 30, Failures: 20, Costs: 25},
		Topic: broker.DefaultTopic,
	}
}

func TestRun_WritesFile(t *testing.T) {
	opts := smallOptions()
	opts.Out = filepath.Join(t.TempDir(), "dataset.json")

	ds, err := run(context.Background(), opts, sinks{})
	require.NoError(t, err)

	onDisk, err := store.ReadDataset(opts.Out)
	require.NoError(t, err)
	assert.Equal(t, ds, onDisk)
	assert.Equal(t, models.DatasetCounts{Assets: 8, WorkOrders: 30, Failures: 20, MaintenanceCosts: 25}, onDisk.Counts())
}

func TestRun_Sinks(t *testing.T) {
	var stored models.Dataset
	var published broker.Envelope
	s := sinks{
		mongo: func(_ context.Context, ds models.Dataset) error { stored = ds; return nil },
		mqtt:  func(env broker.Envelope) error { published = env; return nil },
	}

	ds, err := run(context.Background(), smallOptions(), s)
	require.NoError(t, err)
	assert.Equal(t, ds, stored)
	assert.Equal(t, ds, published.Dataset)
	assert.Equal(t, "generator", published.Origin)
	assert.True(t, published.PublishedAt.Equal(refNow))
}

func TestRun_Deterministic(t *testing.T) {
	var first, second models.Dataset
	_, err := run(context.Background(), smallOptions(), sinks{mongo: func(_ context.Context, ds models.Dataset) error { first = ds; return nil }})
	require.NoError(t, err)
	_, err = run(context.Background(), smallOptions(), sinks{mongo: func(_ context.Context, ds models.Dataset) error { second = ds; return nil }})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRun_Errors(t *testing.T) {
	_, err := run(context.Background(), smallOptions(), sinks{})
	assert.ErrorIs(t, err, errNoSink)

	boom := errors.New("insert failed")
	_, err = run(context.Background(), smallOptions(), sinks{mongo: func(context.Context, models.Dataset) error { return boom }})
	assert.ErrorIs(t, err, boom)
}

func TestRootCmd_OutFlag(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("MQTT_BROKER", "")
	t.Setenv("DATA_SOURCE", "")
	out := filepath.Join(t.TempDir(), "cli.json")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--seed", "3", "--assets", "5", "--work-orders", "10", "--failures", "6", "--costs", "7",
		"--now", "2024-06-15", "--out", out})
	require.NoError(t, cmd.Execute())

	ds, err := store.ReadDataset(out)
	require.NoError(t, err)
	assert.Equal(t, generator.New(3, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)).GenerateAll(generator.Config{Assets: 5, WorkOrders: 10, Failures: 6, Costs: 7}), ds)
}
