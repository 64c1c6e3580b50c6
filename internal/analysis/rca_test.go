package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayuriEngAust/RCM/internal/models"
)

func TestSummarizeRCA(t *testing.T) {
	got := SummarizeRCA(failures)
	assert.Equal(t, RCASummary{Open: 2, InProgress: 1, Completed: 2, AvgResolutionDays: 15}, got)
	assert.Equal(t, RCASummary{}, SummarizeRCA(nil))
}

func TestRCAStatusByAssetType(t *testing.T) {
	p := RCAStatusByAssetType(failures, assets)
	assert.Equal(t, []string{"Motor", "Pump"}, p.AssetTypes)
	assert.Equal(t, []string{"Open", "In Progress", "Completed"}, p.Statuses)
	assert.Equal(t, [][]float64{{1, 1, 0}, {0, 0, 2}}, p.Counts)
}

func TestRootCauseDistribution(t *testing.T) {
	got := RootCauseDistribution(failures)
	assert.Equal(t, []CategoryCount{{"Wear", 2}, {"Design", 1}}, got)
}

func TestCorrectiveActions(t *testing.T) {
	got := CorrectiveActions(failures, 0)
	require.Len(t, got, 1)
	// The January seal replacement was followed by another seal failure in February.
	assert.Equal(t, ActionEffectiveness{Action: "Replace seal", Count: 2, EffectivenessPct: 50}, got[0])

	var many []models.Failure
	for _, a := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		many = append(many, models.Failure{AssetID: a, CorrectiveAction: a, RCAStatus: models.RCACompleted})
	}
	top := CorrectiveActions(many, 0)
	assert.Len(t, top, DefaultActionLimit)
	assert.Equal(t, "a", top[0].Action)
	assert.Equal(t, 100.0, top[0].EffectivenessPct)
}

func TestActiveInvestigations(t *testing.T) {
	got := ActiveInvestigations(failures, assets)
	require.Len(t, got, 2)
	assert.Equal(t, "F4", got[0].FailureID)
	assert.Equal(t, "F3", got[1].FailureID)
}
