package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/urben88/MindFlex/internal/engine"
)

const hiddenCard = "··"

var cardFaces = []string{"♠", "♣", "♥", "♦", "★", "☀", "☂", "♪", "✈", "☘", "☯", "♞", "☾", "✿", "⚑", "☎", "✂", "⌘"}

var palette = map[string]lipgloss.Color{
	"red":    lipgloss.Color("#FF4D4F"),
	"blue":   lipgloss.Color("#1890FF"),
	"green":  lipgloss.Color("#52C41A"),
	"yellow": lipgloss.Color("#FADB14"),
	"purple": lipgloss.Color("#9254DE"),
}

func colored(name, text string) string {
	return lipgloss.NewStyle().Foreground(palette[name]).Bold(true).Render(text)
}

// renderGame draws the per-activity body of a view. Spoken stimuli are
// hidden when a speaker reads them aloud.
func renderGame(v engine.View, width int, spoken bool) string {
	var body string
	switch d := v.Detail.(type) {
	case engine.NBackView:
		body = renderNBack(d, spoken)
	case engine.RecallView:
		body = renderRecall(d, v.Phase, spoken)
	case engine.StroopView:
		body = renderStroop(d)
	case engine.MemoryView:
		body = renderMemory(d)
	case engine.SnapshotView:
		body = renderSnapshot(d)
	case engine.PegView:
		body = renderPeg(d)
	case engine.StoryView:
		body = renderStory(d, width)
	}
	if mark := feedbackMark(v); mark != "" {
		body += "\n\n" + mark
	}
	return body
}

func feedbackMark(v engine.View) string {
	if v.Phase != engine.PhaseFeedback {
		return ""
	}
	switch v.Feedback {
	case engine.FeedbackCorrect:
		return correctStyle.Render("Correct")
	case engine.FeedbackWrong:
		return wrongStyle.Render("Wrong")
	}
	return ""
}

func renderNBack(d engine.NBackView, spoken bool) string {
	info := mutedStyle.Render(fmt.Sprintf("%d-back  ·  turn %d/%d", d.N, d.Turn, d.Turns))
	if d.Answered {
		info += "  " + valueStyle.Render("answered")
	}
	if d.Letter != "" || (d.Spoken && d.Symbol < 0) {
		letter := d.Letter
		switch {
		case letter == "":
			letter = " "
		case spoken:
			letter = "♪"
		}
		return info + "\n\n" + cardStyle.Render(valueStyle.Render(" "+letter+" "))
	}
	rows := make([]string, 3)
	for r := 0; r < 3; r++ {
		cells := make([]string, 3)
		for c := 0; c < 3; c++ {
			cell := mutedStyle.Render("·")
			if d.Symbol == r*3+c {
				cell = titleStyle.Render("■")
			}
			cells[c] = cardStyle.Render(cell)
		}
		rows[r] = lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	return info + "\n\n" + lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderRecall(d engine.RecallView, phase engine.Phase, spoken bool) string {
	if phase == engine.PhasePresenting {
		shown := " "
		switch {
		case d.Digit < 0:
		case d.Spoken && spoken:
			shown = "♪"
		default:
			shown = fmt.Sprintf("%d", d.Digit)
		}
		return mutedStyle.Render(fmt.Sprintf("Memorize %d digits", d.Length)) + "\n\n" +
			cardStyle.Render(valueStyle.Render(" "+shown+" "))
	}
	slots := make([]string, d.Length)
	for i := range slots {
		slots[i] = "_"
		if i < len(d.Input) {
			slots[i] = fmt.Sprintf("%d", d.Input[i])
		}
	}
	out := mutedStyle.Render("Repeat the sequence") + "\n\n" + valueStyle.Render(strings.Join(slots, " "))
	if len(d.Target) > 0 {
		target := make([]string, len(d.Target))
		for i, t := range d.Target {
			target[i] = fmt.Sprintf("%d", t)
		}
		out += "\n" + mutedStyle.Render(strings.Join(target, " "))
	}
	return out
}

func renderStroop(d engine.StroopView) string {
	word := strings.ToUpper(engine.StroopColors[d.Word])
	ink := engine.StroopColors[d.Ink]
	options := make([]string, len(engine.StroopColors))
	for i, c := range engine.StroopColors {
		options[i] = fmt.Sprintf("%d %s", i+1, colored(c, c))
	}
	return mutedStyle.Render(fmt.Sprintf("%ds left  ·  name the ink color", d.TimeLeft)) + "\n\n" +
		cardStyle.Render(colored(ink, "  "+word+"  ")) + "\n\n" +
		strings.Join(options, "   ")
}

func renderMemory(d engine.MemoryView) string {
	cols := memoryColumns(len(d.Cards))
	var rows []string
	for start := 0; start < len(d.Cards); start += cols {
		end := min(start+cols, len(d.Cards))
		cells := make([]string, 0, cols)
		for i := start; i < end; i++ {
			cells = append(cells, renderCard(i, d.Cards[i], d.Preview))
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	info := mutedStyle.Render(fmt.Sprintf("Pairs %d/%d  ·  moves %d", d.Matched, d.Pairs, d.Moves))
	if d.Preview {
		info = mutedStyle.Render("Memorize the cards")
	}
	return info + "\n\n" + strings.Join(rows, "\n")
}

func memoryColumns(n int) int {
	switch {
	case n <= 12:
		return 4
	case n <= 20:
		return 5
	default:
		return 6
	}
}

func renderCard(i int, c engine.MemoryCard, preview bool) string {
	label := string(cardKeys[i])
	face := hiddenCard
	if c.Up || c.Matched || preview {
		face = " " + cardFaces[c.Face%len(cardFaces)]
	}
	text := fmt.Sprintf("[%s %s]", label, face)
	switch {
	case c.Matched:
		return correctStyle.Render(text)
	case c.Up:
		return valueStyle.Render(text)
	}
	return mutedStyle.Render(text)
}

func renderSnapshot(d engine.SnapshotView) string {
	if len(d.Scene) > 0 {
		grid := make([]string, engine.SnapshotCells)
		for i := range grid {
			grid[i] = mutedStyle.Render(fmt.Sprintf("%-9s", "·"))
		}
		for _, it := range d.Scene {
			name := engine.SnapshotIcons[it.Icon]
			grid[it.Cell] = colored(engine.SnapshotColors[it.Color], fmt.Sprintf("%-9s", name))
		}
		rows := make([]string, 0, 4)
		for r := 0; r < engine.SnapshotCells; r += 4 {
			rows = append(rows, strings.Join(grid[r:r+4], " "))
		}
		return mutedStyle.Render("Memorize the scene") + "\n\n" + strings.Join(rows, "\n")
	}
	if d.Prompt == "" {
		return ""
	}
	options := make([]string, len(d.Options))
	for i, o := range d.Options {
		label := ""
		if d.Kind == engine.AskColor {
			name := engine.SnapshotColors[o]
			label = colored(name, name)
		} else {
			label = engine.SnapshotIcons[o]
		}
		line := fmt.Sprintf("%d  %s", i+1, label)
		if d.Revealed && i == d.Answer {
			line += "  " + correctStyle.Render("<")
		}
		options[i] = line
	}
	return valueStyle.Render(d.Prompt) + "\n\n" + strings.Join(options, "\n")
}

func renderPeg(d engine.PegView) string {
	numbers := make([]string, 2)
	for i, n := range d.Numbers {
		text := fmt.Sprintf("%d", n)
		if d.Wrong[i] {
			numbers[i] = cardStyle.Render(wrongStyle.Render(text))
		} else {
			numbers[i] = cardStyle.Render(valueStyle.Render(text))
		}
	}
	info := "Encode both numbers as peg words"
	if d.Timed {
		info += fmt.Sprintf("  ·  %ds left", d.TimeLeft)
	}
	out := mutedStyle.Render(info) + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, numbers[0], " ", numbers[1])
	if d.Revealed {
		out += "\n" + mutedStyle.Render(fmt.Sprintf("Expected digits: %d and %d", d.Numbers[0], d.Numbers[1]))
	}
	return out
}

func renderStory(d engine.StoryView, width int) string {
	if d.Loading {
		return mutedStyle.Render("Preparing a story...")
	}
	textWidth := min(70, max(20, width-8))
	if d.Question == "" {
		return mutedStyle.Render("Listen carefully") + "\n\n" + wrapWords(d.Text, textWidth)
	}
	lines := []string{valueStyle.Render(wrapWords(d.Question, textWidth)), ""}
	for i, o := range d.Options {
		line := fmt.Sprintf("%d  %s", i+1, o)
		switch {
		case i == d.Answer:
			line = correctStyle.Render(line)
		case i == d.Chosen && d.Answer >= 0:
			line = wrongStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
