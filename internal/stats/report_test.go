package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urben88/MindFlex/internal/model"
	"github.com/urben88/MindFlex/internal/progress"
	"github.com/urben88/MindFlex/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "mindflex.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	p := model.DefaultProgress()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)
	for i, score := range []int{100, 300, 200} {
		r := model.Result{
			SessionID:       "s" + string(rune('a'+i)),
			ActivityID:      model.Stroop,
			Score:           score,
			Accuracy:        0.5,
			MaxLevel:        1,
			DurationSeconds: 30,
			Timestamp:       base.Add(time.Duration(i) * time.Hour).UnixMilli(),
			Difficulty:      model.TierEasy,
		}
		p, err = progress.Fold(p, r)
		if err != nil {
			t.Fatalf("fold: %v", err)
		}
		data, err := progress.Encode(p)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if err := st.SaveProgress(ctx, data, &r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, p, store.ResultFilter{Last: 2}, 2)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}
	if report.Results[0].Score != 300 || report.Results[1].Score != 200 {
		t.Fatalf("unexpected results: %+v", report.Results)
	}
	if len(report.Curves) != 1 {
		t.Fatalf("expected one curve, got %d", len(report.Curves))
	}
	c := report.Curves[0]
	if c.Min != 200 || c.Max != 300 || c.Smoothed[1] != 250 {
		t.Fatalf("unexpected curve: %+v", c)
	}

	var buf bytes.Buffer
	if err := RenderCurves(&buf, report.Curves, 60); err != nil {
		t.Fatalf("render curves: %v", err)
	}
	if !strings.Contains(buf.String(), "Stroop") || !strings.Contains(buf.String(), "200..300 (n=2)") {
		t.Fatalf("unexpected curves output:\n%s", buf.String())
	}
}

func TestRenderSummary(t *testing.T) {
	p := model.DefaultProgress()
	p.DailyStreak = 4
	p.LastVisitDate = "2026-03-01"
	p.Stats[model.MemoryMatch] = model.ActivityStats{Plays: 2, HighScore: 420, AvgAccuracy: 0.625, LastPlayed: time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local).UnixMilli()}

	var buf bytes.Buffer
	if err := RenderSummary(&buf, p); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Daily streak: 4 (last visit 2026-03-01)", "62.5%", "2026-03-01", "Needs work: Pairs", "Favourites: Pairs"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistory(&buf, nil, 10); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No games played yet." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestMovingAverageAndSparkline(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("moving average = %v, want %v", got, want)
		}
	}
	if s := Sparkline([]float64{0, 5, 10}); s != " +@" {
		t.Fatalf("sparkline = %q", s)
	}
	if s := Sparkline([]float64{3, 3}); s != "++" {
		t.Fatalf("flat sparkline = %q", s)
	}
	if r := Resample([]float64{1, 3, 5, 7}, 2); len(r) != 2 || r[0] != 2 || r[1] != 6 {
		t.Fatalf("resample = %v", r)
	}
}
