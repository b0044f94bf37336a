package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/urben88/MindFlex/internal/engine"
	"github.com/urben88/MindFlex/internal/model"
)

// cardKeys labels memory cards in grid order.
const cardKeys = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJ"

// stroopKeys name the ink colors by initial, in engine.StroopColors order.
var stroopKeys = map[string]int{"r": 0, "b": 1, "g": 2, "y": 3}

func canFinish(id model.ActivityID) bool {
	return id == model.Sequence || id == model.EchoSequence
}

// keyInput translates a key press into an engine input for the activity.
// Peg practice reads whole words and is handled separately.
func keyInput(id model.ActivityID, msg tea.KeyMsg, v engine.View) (engine.Input, bool) {
	key := msg.String()
	switch id {
	case model.NBack, model.AudioNBack:
		if msg.Type == tea.KeySpace || key == "m" || key == " " {
			return engine.Match(), true
		}
	case model.Sequence, model.EchoSequence:
		if msg.Type == tea.KeyBackspace || msg.Type == tea.KeyDelete {
			return engine.Delete(), true
		}
		if d, ok := digit(key); ok {
			return engine.Digit(d), true
		}
	case model.Stroop:
		if i, ok := stroopKeys[key]; ok {
			return engine.Choice(i), true
		}
		if d, ok := digit(key); ok && d >= 1 {
			return engine.Choice(d - 1), true
		}
	case model.MemoryMatch:
		if len(key) == 1 {
			for i := 0; i < len(cardKeys); i++ {
				if cardKeys[i] == key[0] {
					return engine.Card(i), true
				}
			}
		}
	case model.Snapshot:
		if d, ok := digit(key); ok && d >= 1 {
			return engine.Choice(d - 1), true
		}
	case model.StoryListener:
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace {
			if d, ok := v.Detail.(engine.StoryView); ok && d.Question == "" {
				return engine.Continue(), true
			}
			return engine.Input{}, false
		}
		if d, ok := digit(key); ok && d >= 1 {
			return engine.Choice(d - 1), true
		}
	}
	return engine.Input{}, false
}

func digit(key string) (int, bool) {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return 0, false
	}
	return int(key[0] - '0'), true
}

func controls(id model.ActivityID) string {
	switch id {
	case model.NBack, model.AudioNBack:
		return "space: match  esc: quit"
	case model.Sequence, model.EchoSequence:
		return "0-9: digit  backspace: delete  enter: end game  esc: quit"
	case model.Stroop:
		return "r/b/g/y or 1-4: ink color  esc: quit"
	case model.MemoryMatch:
		return "letter: flip card  esc: quit"
	case model.Snapshot:
		return "1-4: answer  esc: quit"
	case model.PegPractice:
		return "type two words, enter: check  esc: quit"
	case model.StoryListener:
		return "enter: skip narration  1-4: answer  esc: quit"
	}
	return "esc: quit"
}
