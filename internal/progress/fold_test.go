package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urben88/MindFlex/internal/model"
)

func result(id model.ActivityID, score int, accuracy float64, ts int64) model.Result {
	return model.Result{
		ActivityID:      id,
		Score:           score,
		Accuracy:        accuracy,
		MaxLevel:        1,
		DurationSeconds: 30,
		Timestamp:       ts,
		Difficulty:      model.TierEasy,
	}
}

func TestFoldRunningMean(t *testing.T) {
	snap := model.DefaultProgress()
	var err error
	for i, acc := range []float64{1.0, 0.5, 0.8} {
		snap, err = Fold(snap, result(model.Stroop, 100, acc, int64(i+1)))
		require.NoError(t, err)
	}
	st := snap.Stats[model.Stroop]
	assert.Equal(t, 3, st.Plays)
	assert.InDelta(t, 0.7667, st.AvgAccuracy, 1e-4)
	assert.Equal(t, int64(3), st.LastPlayed)
}

func TestFoldMeanIgnoresHistoryCap(t *testing.T) {
	snap := model.DefaultProgress()
	sum := 0.0
	n := 137
	for i := 0; i < n; i++ {
		acc := float64(i%10) / 9
		sum += acc
		var err error
		snap, err = Fold(snap, result(model.NBack, i, acc, int64(i)))
		require.NoError(t, err)

		st := snap.Stats[model.NBack]
		if st.AvgAccuracy < 0 || st.AvgAccuracy > 1 {
			t.Fatalf("expected avg in [0,1], got %v", st.AvgAccuracy)
		}
	}
	assert.Len(t, snap.History, model.HistoryLimit)
	assert.InDelta(t, sum/float64(n), snap.Stats[model.NBack].AvgAccuracy, 1e-9)
}

func TestFoldHighScoreAndHistoryOrder(t *testing.T) {
	snap := model.DefaultProgress()
	scores := []int{120, 80, 300, 10, 299, 301, 0}
	best := 0
	for i, score := range scores {
		var err error
		snap, err = Fold(snap, result(model.Sequence, score, 1, int64(100+i)))
		require.NoError(t, err)
		high := snap.Stats[model.Sequence].HighScore
		if high < best {
			t.Fatalf("expected high score to never decrease, got %d after %d", high, best)
		}
		best = high
	}
	assert.Equal(t, 301, best)
	for i := 1; i < len(snap.History); i++ {
		assert.Greater(t, snap.History[i-1].Timestamp, snap.History[i].Timestamp)
	}
}

func TestFoldDoesNotMutateInput(t *testing.T) {
	snap := model.DefaultProgress()
	_, err := Fold(snap, result(model.Stroop, 10, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Stats[model.Stroop].Plays)
	assert.Empty(t, snap.History)
}

func TestFoldRejectsInvariantViolations(t *testing.T) {
	snap := model.DefaultProgress()
	_, err := Fold(snap, result("chess", 10, 1, 1))
	assert.ErrorIs(t, err, model.ErrUnknownActivity)

	_, err = Fold(snap, result(model.Stroop, -1, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidResult)

	_, err = Fold(snap, result(model.Stroop, 1, 1.5, 1))
	assert.ErrorIs(t, err, ErrInvalidResult)

	bad := result(model.Stroop, 1, 1, 1)
	bad.MaxLevel = 0
	_, err = Fold(snap, bad)
	assert.ErrorIs(t, err, ErrInvalidResult)
}

func TestAdvanceStreak(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 2, d, 21, 30, 0, 0, time.Local) }
	snap := model.DefaultProgress()

	snap, changed := AdvanceStreak(snap, day(26))
	assert.True(t, changed)
	assert.Equal(t, 1, snap.DailyStreak)
	assert.Equal(t, "2026-02-26", snap.LastVisitDate)

	snap, changed = AdvanceStreak(snap, day(26))
	assert.False(t, changed)
	assert.Equal(t, 1, snap.DailyStreak)

	snap, _ = AdvanceStreak(snap, day(27))
	snap, _ = AdvanceStreak(snap, day(28))
	assert.Equal(t, 3, snap.DailyStreak)

	// Across the month boundary.
	snap, _ = AdvanceStreak(snap, time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local))
	assert.Equal(t, 4, snap.DailyStreak)

	snap, _ = AdvanceStreak(snap, time.Date(2026, 3, 3, 8, 0, 0, 0, time.Local))
	assert.Equal(t, 1, snap.DailyStreak)
	assert.Equal(t, "2026-03-03", snap.LastVisitDate)
}
