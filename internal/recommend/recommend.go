// Package recommend suggests what to play next.
package recommend

import (
	"errors"
	"sort"

	"github.com/urben88/MindFlex/internal/model"
)

// ErrNoActivities is returned when there is nothing to rank.
var ErrNoActivities = errors.New("no activities to rank")

// Rank orders activities by fewest plays, then oldest last play. Ties keep
// the order of activities, so the ranking is reproducible.
func Rank(stats map[model.ActivityID]model.ActivityStats, activities []model.ActivityID) []model.ActivityID {
	ranked := make([]model.ActivityID, len(activities))
	copy(ranked, activities)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := stats[ranked[i]], stats[ranked[j]]
		if si.Plays != sj.Plays {
			return si.Plays < sj.Plays
		}
		return si.LastPlayed < sj.LastPlayed
	})
	return ranked
}

// Next returns the top-ranked activity.
func Next(stats map[model.ActivityID]model.ActivityStats, activities []model.ActivityID) (model.ActivityID, error) {
	if len(activities) == 0 {
		return "", ErrNoActivities
	}
	return Rank(stats, activities)[0], nil
}

// Intner draws uniform integers.
type Intner interface {
	Intn(n int) int
}

// Pick returns a uniformly random element of items.
func Pick[T any](rnd Intner, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[rnd.Intn(len(items))], true
}
