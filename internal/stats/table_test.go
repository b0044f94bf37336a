package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Activity", "Plays", "High"}
	rows := [][]string{
		{"Stroop", "12", "1500"},
		{"Visual N-Back", "3", "90"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Activity       Plays  High" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Stroop            12  1500" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Visual N-Back      3    90" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Icon", "N"}, [][]string{{"x", "1"}, {"日本", "2"}}, map[int]bool{1: true})
	if lines[1] != "x     1" {
		t.Fatalf("unexpected narrow row: %q", lines[1])
	}
	if lines[2] != "日本  2" {
		t.Fatalf("unexpected wide row: %q", lines[2])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Visual Sequence", 8); got != "Visua..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("Pairs", 8); got != "Pairs" {
		t.Fatalf("truncate = %q", got)
	}
}
