package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/urben88/MindFlex/internal/engine"
	"github.com/urben88/MindFlex/internal/generator"
	"github.com/urben88/MindFlex/internal/model"
)

func TestRenderMemoryHidesFaces(t *testing.T) {
	v := engine.View{Phase: engine.PhaseAwaitingInput, Detail: engine.MemoryView{
		Cards: []engine.MemoryCard{{Face: 0}, {Face: 0, Up: true}, {Face: 1, Matched: true}, {Face: 1, Matched: true}},
		Pairs: 2, Matched: 1, Moves: 3,
	}}
	out := renderGame(v, 80, false)
	if !strings.Contains(out, "[a "+hiddenCard+"]") {
		t.Fatalf("expected face-down card a: %s", out)
	}
	if !strings.Contains(out, "[b  "+cardFaces[0]+"]") {
		t.Fatalf("expected face-up card b: %s", out)
	}
	if !strings.Contains(out, "Pairs 1/2") {
		t.Fatalf("expected pair count: %s", out)
	}
}

func TestRenderSnapshotPhases(t *testing.T) {
	scene := engine.View{Phase: engine.PhasePresenting, Detail: engine.SnapshotView{
		Scene: []generator.SceneItem{{Icon: 3, Color: 0, Cell: 5}},
	}}
	if out := renderGame(scene, 80, false); !strings.Contains(out, "star") {
		t.Fatalf("expected scene icon: %s", out)
	}
	ask := engine.View{Phase: engine.PhaseFeedback, Feedback: engine.FeedbackCorrect, Detail: engine.SnapshotView{
		Kind: engine.AskPresence, Prompt: "Which one was there?", Options: []int{1, 3}, Answer: 1, Revealed: true,
	}}
	out := renderGame(ask, 80, false)
	for _, want := range []string{"Which one was there?", "1  circle", "2  star", "Correct"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q: %s", want, out)
		}
	}
}

func TestRenderAudioHidesLetterWhenSpoken(t *testing.T) {
	v := engine.View{Phase: engine.PhasePresenting, Detail: engine.NBackView{N: 1, Turn: 2, Turns: 10, Symbol: 4, Letter: "E", Spoken: true}}
	if out := renderGame(v, 80, true); strings.Contains(out, " E ") {
		t.Fatalf("spoken letter should be hidden: %s", out)
	}
	if out := renderGame(v, 80, false); !strings.Contains(out, " E ") {
		t.Fatalf("letter should be shown without a speaker: %s", out)
	}
}

func TestRenderStoryQuestion(t *testing.T) {
	v := engine.View{Phase: engine.PhaseAwaitingInput, Detail: engine.StoryView{
		Text: "Maria walked Rayo.", Question: "Who is Rayo?", Options: []string{"A dog", "A cat"}, Answer: -1, Chosen: -1,
	}}
	out := renderGame(v, 80, false)
	if strings.Contains(out, "Maria walked") || !strings.Contains(out, "2  A cat") {
		t.Fatalf("unexpected story view: %s", out)
	}
}

func TestKeyInputMapping(t *testing.T) {
	in, ok := keyInput(model.MemoryMatch, key("c"), engine.View{})
	if !ok || !sameInput(in, engine.Card(2)) {
		t.Fatalf("expected card 2, got %+v", in)
	}
	in, ok = keyInput(model.Stroop, key("g"), engine.View{})
	if !ok || !sameInput(in, engine.Choice(2)) {
		t.Fatalf("expected choice 2, got %+v", in)
	}
	in, ok = keyInput(model.Sequence, tea.KeyMsg{Type: tea.KeyBackspace}, engine.View{})
	if !ok || !sameInput(in, engine.Delete()) {
		t.Fatalf("expected delete, got %+v", in)
	}
	asking := engine.View{Detail: engine.StoryView{Question: "Who?"}}
	if _, ok := keyInput(model.StoryListener, tea.KeyMsg{Type: tea.KeyEnter}, asking); ok {
		t.Fatalf("enter must not skip while a question is shown")
	}
	if _, ok := keyInput(model.Snapshot, key("0"), engine.View{}); ok {
		t.Fatalf("0 is not an answer key")
	}
}

func sameInput(a, b engine.Input) bool {
	return a.Kind == b.Kind && a.Value == b.Value
}
