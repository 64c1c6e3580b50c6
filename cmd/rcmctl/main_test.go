package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayuriEngAust/RCM/internal/config"
	"github.com/MayuriEngAust/RCM/internal/filter"
	"github.com/MayuriEngAust/RCM/internal/generator"
	"github.com/MayuriEngAust/RCM/internal/kpi"
	"github.com/MayuriEngAust/RCM/internal/models"
	"github.com/MayuriEngAust/RCM/internal/render"
	"github.com/MayuriEngAust/RCM/internal/store"
)

var refNow = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeDataset(t *testing.T, ds models.Dataset) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, store.WriteDataset(path, ds))
	return path
}

func TestReport_FromFileMatchesDirectComputation(t *testing.T) {
	ds := generator.New(5, refNow).GenerateAll(generator.Config{Assets: 12, WorkOrders: 30, Failures: 25, Costs: 20})
	path := writeDataset(t, ds)

	out, err := execute(t, "report", "--in", path, "--now", "2024-06-15", "--asset-type", "Pump", "--format", "json")
	require.NoError(t, err)

	cfg, err := config.Load()
	require.NoError(t, err)
	c := filter.Criteria{AssetType: "Pump", Location: filter.All, Criticality: filter.All}
	c.From, c.To, _ = filter.DefaultRange(ds)

	var want bytes.Buffer
	report := render.NewReport(ds, c, kpi.NewCalculator(cfg.KPIOptions()), refNow, "file", 10)
	require.NoError(t, render.JSON(&want, report))
	assert.JSONEq(t, want.String(), out)
}

func TestReport_GeneratedIsDeterministic(t *testing.T) {
	args := []string{"report", "--seed", "11", "--now", "2024-06-15", "--format", "yaml", "--top", "3"}

	first, err := execute(t, args...)
	require.NoError(t, err)
	second, err := execute(t, args...)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "source: generator")
	assert.Contains(t, first, "top_assets:")
}

func TestReport_Table(t *testing.T) {
	out, err := execute(t, "report", "--seed", "3", "--now", "2024-06-15")
	require.NoError(t, err)
	assert.Contains(t, out, "MTBF")
}

func TestReport_BadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"report", "--seed", "1", "--format", "xml"}},
		{"bad date", []string{"report", "--seed", "1", "--from", "15/06/2024"}},
		{"reversed range", []string{"report", "--seed", "1", "--from", "2024-06-01", "--to", "2024-01-01"}},
		{"missing file", []string{"report", "--in", filepath.Join(t.TempDir(), "nope.json")}},
		{"bad now", []string{"report", "--now", "yesterday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestValidate_Valid(t *testing.T) {
	out, err := execute(t, "validate", "--seed", "9", "--now", "2024-06-15")
	require.NoError(t, err)
	assert.Contains(t, out, "dataset is valid")
}

func TestValidate_InvalidFileFails(t *testing.T) {
	path := writeDataset(t, models.Dataset{
		Assets: []models.Asset{{AssetID: "AST-0001"}},
	})

	out, err := execute(t, "validate", "--in", path)
	assert.ErrorIs(t, err, errInvalidDataset)
	assert.Contains(t, out, "dataset is invalid")
	assert.Contains(t, out, "error: Assets missing required fields")
}
