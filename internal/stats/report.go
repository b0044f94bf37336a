package stats

import (
	"context"
	"fmt"

	"github.com/urben88/MindFlex/internal/model"
	"github.com/urben88/MindFlex/internal/store"
)

// Curve is the score history of one activity.
type Curve struct {
	Activity model.ActivityID
	Count    int
	Min      float64
	Max      float64
	Smoothed []float64
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Progress model.Progress
	Results  []model.Result
	Curves   []Curve
}

// BuildReport loads the result log and prepares curves smoothed over window results.
func BuildReport(ctx context.Context, st *store.Store, p model.Progress, f store.ResultFilter, window int) (Report, error) {
	results, err := st.ListResults(ctx, f)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list results: %w", err)
	}
	return Report{
		Progress: p,
		Results:  results,
		Curves:   BuildCurves(results, window),
	}, nil
}

// BuildCurves groups results by activity in catalog order. Results must
// be oldest first.
func BuildCurves(results []model.Result, window int) []Curve {
	scores := map[model.ActivityID][]float64{}
	for _, r := range results {
		scores[r.ActivityID] = append(scores[r.ActivityID], float64(r.Score))
	}
	var curves []Curve
	for _, id := range model.Activities {
		values := scores[id]
		if len(values) == 0 {
			continue
		}
		c := Curve{Activity: id, Count: len(values), Min: values[0], Max: values[0]}
		for _, v := range values {
			c.Min = min(c.Min, v)
			c.Max = max(c.Max, v)
		}
		c.Smoothed = MovingAverage(values, window)
		curves = append(curves, c)
	}
	return curves
}
