package stats

import (
	"sort"

	"github.com/urben88/MindFlex/internal/model"
)

// WeakestActivities selects the played activities with the lowest average
// accuracy. top <= 0 returns all of them.
func WeakestActivities(stats map[model.ActivityID]model.ActivityStats, top int) []model.ActivityID {
	candidates := played(stats)
	sort.SliceStable(candidates, func(i, j int) bool {
		return stats[candidates[i]].AvgAccuracy < stats[candidates[j]].AvgAccuracy
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	return candidates[:top]
}
