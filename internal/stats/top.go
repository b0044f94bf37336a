package stats

import (
	"sort"

	"github.com/urben88/MindFlex/internal/model"
)

// MostPlayed returns up to n played activities, most plays first. Ties keep
// catalog order.
func MostPlayed(stats map[model.ActivityID]model.ActivityStats, n int) []model.ActivityID {
	if n <= 0 {
		return nil
	}
	ids := played(stats)
	sort.SliceStable(ids, func(i, j int) bool {
		return stats[ids[i]].Plays > stats[ids[j]].Plays
	})
	if n > len(ids) {
		n = len(ids)
	}
	return ids[:n]
}

func played(stats map[model.ActivityID]model.ActivityStats) []model.ActivityID {
	var ids []model.ActivityID
	for _, id := range model.Activities {
		if stats[id].Plays > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
