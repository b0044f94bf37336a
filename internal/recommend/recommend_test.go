package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urben88/MindFlex/internal/generator"
	"github.com/urben88/MindFlex/internal/model"
)

func TestRankByPlaysThenRecency(t *testing.T) {
	stats := map[model.ActivityID]model.ActivityStats{
		model.NBack:    {Plays: 3, LastPlayed: 10},
		model.Stroop:   {Plays: 1, LastPlayed: 50},
		model.Sequence: {Plays: 1, LastPlayed: 20},
		model.Snapshot: {Plays: 0},
	}
	acts := []model.ActivityID{model.NBack, model.Stroop, model.Sequence, model.Snapshot}
	assert.Equal(t, []model.ActivityID{model.Snapshot, model.Sequence, model.Stroop, model.NBack}, Rank(stats, acts))

	next, err := Next(stats, acts)
	require.NoError(t, err)
	assert.Equal(t, model.Snapshot, next)
}

func TestRankIsStableOnTies(t *testing.T) {
	stats := map[model.ActivityID]model.ActivityStats{}
	for i := 0; i < 20; i++ {
		assert.Equal(t, model.Activities, Rank(stats, model.Activities))
	}
	// Rank must not reorder its input.
	acts := []model.ActivityID{model.Stroop, model.NBack}
	_ = Rank(map[model.ActivityID]model.ActivityStats{model.Stroop: {Plays: 4}}, acts)
	assert.Equal(t, []model.ActivityID{model.Stroop, model.NBack}, acts)
}

func TestNextEmpty(t *testing.T) {
	_, err := Next(nil, nil)
	assert.ErrorIs(t, err, ErrNoActivities)
}

func TestPick(t *testing.T) {
	g := generator.NewWithSeed(9)
	_, ok := Pick[string](g, nil)
	assert.False(t, ok)

	seen := map[string]bool{}
	items := []string{"ex1", "ex2", "ex3"}
	for i := 0; i < 200; i++ {
		v, ok := Pick(g, items)
		require.True(t, ok)
		seen[v] = true
	}
	assert.Len(t, seen, 3)
}
