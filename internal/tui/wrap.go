package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapWords breaks text into lines no wider than width display columns.
// Runs of whitespace collapse to one space; a word wider than the line is
// split mid-word.
func wrapWords(text string, width int) string {
	words := strings.Fields(text)
	if width <= 0 {
		return strings.Join(words, " ")
	}
	var out strings.Builder
	lineWidth := 0
	for _, word := range words {
		for _, part := range splitWide(word, width) {
			w := runewidth.StringWidth(part)
			switch {
			case lineWidth == 0:
			case lineWidth+1+w > width:
				out.WriteRune('\n')
				lineWidth = 0
			default:
				out.WriteRune(' ')
				lineWidth++
			}
			out.WriteString(part)
			lineWidth += w
		}
	}
	return out.String()
}

func splitWide(word string, width int) []string {
	if runewidth.StringWidth(word) <= width {
		return []string{word}
	}
	var parts []string
	var cur strings.Builder
	curWidth := 0
	for _, r := range word {
		rw := runewidth.RuneWidth(r)
		if curWidth+rw > width && curWidth > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curWidth = 0
		}
		cur.WriteRune(r)
		curWidth += rw
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}
