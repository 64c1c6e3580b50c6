package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayuriEngAust/RCM/internal/models"
)

func TestDatasetFile(t *testing.T) {
	done := time.Date(2024, 5, 2, 16, 0, 0, 0, time.UTC)
	days := 4.5
	ds := models.Dataset{
		Assets: []models.Asset{{AssetID: "AST-0001", AssetName: "Pump 1", CriticalityLevel: models.CriticalityHigh}},
		Failures: []models.Failure{{FailureID: "FAIL-000001", AssetID: "AST-0001", FailureDate: done,
			RCAStatus: models.RCACompleted, RCAResolutionDays: &days}},
		WorkOrders: []models.WorkOrder{{WorkOrderID: "WO-000001", AssetID: "AST-0001", CompletionDate: &done}},
	}

	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, WriteDataset(path, ds))

	got, err := ReadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, ds, got)
}

func TestReadDataset_Errors(t *testing.T) {
	_, err := ReadDataset(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("[1,2"), 0o600))
	_, err = ReadDataset(bad)
	assert.Error(t, err)
}
