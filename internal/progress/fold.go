// Package progress folds session results into durable per-activity
// statistics, streaks and a bounded history.
package progress

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/urben88/MindFlex/internal/model"
)

// ErrInvalidResult reports a result that would corrupt aggregated stats.
var ErrInvalidResult = errors.New("invalid result")

// ValidateResult checks the invariants a result must hold before folding.
func ValidateResult(r model.Result) error {
	switch {
	case !r.ActivityID.Known():
		return fmt.Errorf("%w: %q", model.ErrUnknownActivity, r.ActivityID)
	case r.Score < 0:
		return fmt.Errorf("%w: negative score %d", ErrInvalidResult, r.Score)
	case math.IsNaN(r.Accuracy) || r.Accuracy < 0 || r.Accuracy > 1:
		return fmt.Errorf("%w: accuracy %v outside [0,1]", ErrInvalidResult, r.Accuracy)
	case r.MaxLevel < 1:
		return fmt.Errorf("%w: max level %d", ErrInvalidResult, r.MaxLevel)
	case math.IsNaN(r.DurationSeconds) || r.DurationSeconds < 0:
		return fmt.Errorf("%w: duration %v", ErrInvalidResult, r.DurationSeconds)
	case r.Timestamp < 0:
		return fmt.Errorf("%w: timestamp %d", ErrInvalidResult, r.Timestamp)
	}
	return nil
}

// Fold returns snap with r applied: plays, running mean accuracy, high
// score, last played and a newest-first history capped at HistoryLimit.
// The running mean never depends on the history, which evicts old entries.
func Fold(snap model.Progress, r model.Result) (model.Progress, error) {
	if err := ValidateResult(r); err != nil {
		return snap, err
	}
	out := snap.Clone()
	st := out.Stats[r.ActivityID]
	plays := st.Plays + 1
	st.AvgAccuracy = clamp01((st.AvgAccuracy*float64(st.Plays) + r.Accuracy) / float64(plays))
	st.Plays = plays
	st.HighScore = max(st.HighScore, r.Score)
	st.LastPlayed = r.Timestamp
	out.Stats[r.ActivityID] = st

	history := make([]model.Result, 0, min(len(out.History)+1, model.HistoryLimit))
	history = append(history, r)
	for _, h := range out.History {
		if len(history) == model.HistoryLimit {
			break
		}
		history = append(history, h)
	}
	out.History = history
	return out, nil
}

// AdvanceStreak applies one visit on today's calendar date. Same day is a
// no-op, the day after the last visit extends the streak, anything else
// restarts it at 1. It reports whether the snapshot changed.
func AdvanceStreak(snap model.Progress, today time.Time) (model.Progress, bool) {
	date := today.Format(model.DateLayout)
	if snap.LastVisitDate == date {
		return snap, false
	}
	out := snap.Clone()
	if snap.LastVisitDate == today.AddDate(0, 0, -1).Format(model.DateLayout) {
		out.DailyStreak++
	} else {
		out.DailyStreak = 1
	}
	out.LastVisitDate = date
	return out, true
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
