// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/urben88/MindFlex/internal/model"
)

const (
	sparkChars          = " .:-=+*#%@"
	terminalWidthBackup = 80
	curveLabelWidth     = 16
	minCurveWidth       = 10
	neverPlayed         = "-"
)

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Resample squeezes values into at most width points by averaging buckets.
func Resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return append([]float64(nil), values...)
	}
	out := make([]float64, width)
	for i := range out {
		lo := i * len(values) / width
		hi := (i + 1) * len(values) / width
		var sum float64
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// TerminalWidth reports the width of stdout, or a fallback when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderSummary prints the streak and the per-activity table.
func RenderSummary(w io.Writer, p model.Progress) error {
	if _, err := fmt.Fprintf(w, "Daily streak: %d", p.DailyStreak); err != nil {
		return err
	}
	if p.LastVisitDate != "" {
		if _, err := fmt.Fprintf(w, " (last visit %s)", p.LastVisitDate); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	headers := []string{"Activity", "Plays", "High Score", "Avg Accuracy", "Last Played"}
	rows := make([][]string, 0, len(model.Activities))
	for _, id := range model.Activities {
		s := p.Stats[id]
		last, acc := neverPlayed, neverPlayed
		if s.Plays > 0 {
			last = time.UnixMilli(s.LastPlayed).Local().Format(model.DateLayout)
			acc = fmt.Sprintf("%.1f%%", s.AvgAccuracy*100)
		}
		rows = append(rows, []string{
			model.Info(id).Title,
			fmt.Sprintf("%d", s.Plays),
			fmt.Sprintf("%d", s.HighScore),
			acc,
			last,
		})
	}
	if err := writeLines(w, formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true})); err != nil {
		return err
	}
	if weak := WeakestActivities(p.Stats, 2); len(weak) > 0 {
		if _, err := fmt.Fprintf(w, "\nNeeds work: %s\n", titles(weak)); err != nil {
			return err
		}
	}
	if top := MostPlayed(p.Stats, 3); len(top) > 0 {
		if _, err := fmt.Fprintf(w, "Favourites: %s\n", titles(top)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderHistory prints the most recent n results, newest first.
func RenderHistory(w io.Writer, history []model.Result, n int) error {
	if len(history) == 0 {
		_, err := fmt.Fprintln(w, "No games played yet.")
		return err
	}
	if n > 0 && len(history) > n {
		history = history[:n]
	}
	if _, err := fmt.Fprintln(w, "Recent games"); err != nil {
		return err
	}
	headers := []string{"When", "Activity", "Tier", "Score", "Accuracy", "Level", "Time"}
	rows := make([][]string, 0, len(history))
	for _, r := range history {
		rows = append(rows, []string{
			r.Time().Local().Format("2006-01-02 15:04"),
			model.Info(r.ActivityID).Title,
			string(r.Difficulty),
			fmt.Sprintf("%d", r.Score),
			fmt.Sprintf("%.0f%%", r.Accuracy*100),
			fmt.Sprintf("%d", r.MaxLevel),
			(time.Duration(r.DurationSeconds*float64(time.Second))).Round(time.Second).String(),
		})
	}
	if err := writeLines(w, formatTable(headers, rows, map[int]bool{3: true, 4: true, 5: true, 6: true})); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurves prints one sparkline per curve fitted to totalWidth columns.
func RenderCurves(w io.Writer, curves []Curve, totalWidth int) error {
	if len(curves) == 0 {
		_, err := fmt.Fprintln(w, "No results logged yet.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Score curves (moving average)"); err != nil {
		return err
	}
	if totalWidth <= 0 {
		totalWidth = terminalWidthBackup
	}
	for _, c := range curves {
		label := padCell(truncate(model.Info(c.Activity).Title, curveLabelWidth), curveLabelWidth, false)
		tail := fmt.Sprintf(" %d..%d (n=%d)", int(math.Round(c.Min)), int(math.Round(c.Max)), c.Count)
		width := max(totalWidth-curveLabelWidth-displayWidth(tail)-3, minCurveWidth)
		line := Sparkline(Resample(c.Smoothed, width))
		if _, err := fmt.Fprintf(w, "%s │%s│%s\n", label, line, tail); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func titles(ids []model.ActivityID) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = model.Info(id).Title
	}
	return strings.Join(out, ", ")
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
