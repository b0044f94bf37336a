package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/urben88/MindFlex/internal/difficulty"
	"github.com/urben88/MindFlex/internal/engine"
	"github.com/urben88/MindFlex/internal/generator"
	"github.com/urben88/MindFlex/internal/model"
	"github.com/urben88/MindFlex/internal/progress"
)

type fixture struct {
	clock   *engine.ManualClock
	backend *progress.MemoryBackend
	store   *progress.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	backend := &progress.MemoryBackend{}
	st := progress.New(backend, progress.WithClock(func() time.Time { return start }))
	st.Load(context.Background())
	return &fixture{clock: engine.NewManualClock(start), backend: backend, store: st}
}

func (f *fixture) model(t *testing.T, id model.ActivityID, b difficulty.Bundle) *Model {
	t.Helper()
	m, err := NewModel(Options{
		Activity:  id,
		Tier:      model.TierEasy,
		Bundle:    b,
		Progress:  f.store,
		Rand:      generator.NewWithSeed(7),
		Scheduler: f.clock,
		Logger:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	m.Init()
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// settle delivers the emitted result and runs the record command.
func settle(t *testing.T, m *Model) {
	t.Helper()
	var r model.Result
	select {
	case r = <-m.results:
	default:
		t.Fatalf("expected a result")
	}
	_, cmd := m.Update(resultMsg{result: r})
	if m.state != stateSaving {
		t.Fatalf("expected saving state, got %v", m.state)
	}
	m.Update(cmd())
}

func TestNewModelRequiresStore(t *testing.T) {
	if _, err := NewModel(Options{Activity: model.Stroop, Bundle: difficulty.StroopParams{TimeLimitSec: 1, Multiplier: 1}}); err == nil {
		t.Fatalf("expected error without a progress store")
	}
}

func TestNewModelRejectsBadBundle(t *testing.T) {
	f := newFixture(t)
	_, err := NewModel(Options{Activity: model.Stroop, Bundle: difficulty.MemoryParams{PairCount: 4, Multiplier: 1}, Progress: f.store})
	if err == nil {
		t.Fatalf("expected bundle mismatch")
	}
}

func TestStroopSessionIsRecorded(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, model.Stroop, difficulty.StroopParams{TimeLimitSec: 1, Multiplier: 1})

	if !strings.Contains(m.View(), "name the ink color") {
		t.Fatalf("expected stroop prompt in view")
	}
	m.Update(key("r"))
	m.Update(key("2"))
	f.clock.Advance(time.Second)
	settle(t, m)

	if m.state != stateSummary {
		t.Fatalf("expected summary, got %v", m.state)
	}
	if got := m.progress.Stats[model.Stroop].Plays; got != 1 {
		t.Fatalf("expected 1 play, got %d", got)
	}
	if len(f.backend.Results()) != 1 {
		t.Fatalf("expected result appended to backend")
	}
	if !strings.Contains(m.View(), "Session complete") {
		t.Fatalf("expected summary view")
	}
	if m.feedback == "" {
		t.Fatalf("expected local feedback")
	}
}

func TestSaveFailureShowsWarning(t *testing.T) {
	f := newFixture(t)
	f.backend.FailWrites = true
	m := f.model(t, model.Stroop, difficulty.StroopParams{TimeLimitSec: 1, Multiplier: 1})
	f.clock.Advance(time.Second)
	settle(t, m)

	if !strings.Contains(m.warning, "could not be saved") {
		t.Fatalf("expected save warning, got %q", m.warning)
	}
	if got := f.store.Snapshot().Stats[model.Stroop].Plays; got != 0 {
		t.Fatalf("failed save must not change progress, got %d plays", got)
	}
}

func TestEscapeCancelsWithoutResult(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, model.Stroop, difficulty.StroopParams{TimeLimitSec: 5, Multiplier: 1})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if !m.eng.Finished() {
		t.Fatalf("expected engine to be closed")
	}
	f.clock.Advance(10 * time.Second)
	select {
	case <-m.results:
		t.Fatalf("cancelled session must not emit a result")
	default:
	}
}

func TestEscapeAfterFinishSavesResult(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, model.Stroop, difficulty.StroopParams{TimeLimitSec: 1, Multiplier: 1})
	f.clock.Advance(time.Second)
	if !m.eng.Finished() {
		t.Fatalf("expected engine to finish")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateSaving || cmd == nil {
		t.Fatalf("expected the finished session to be saved, state %v", m.state)
	}
	_, cmd = m.Update(cmd())
	if cmd == nil {
		t.Fatalf("expected quit after saving")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
	if got := f.store.Snapshot().Stats[model.Stroop].Plays; got != 1 {
		t.Fatalf("expected 1 play, got %d", got)
	}

	// The queued result is the same session and must not be saved twice.
	m.Update(resultMsg{result: <-m.results})
	if got := len(f.backend.Results()); got != 1 {
		t.Fatalf("expected one stored result, got %d", got)
	}
}

func TestLifecycleLoggedOnce(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	m, err := NewModel(Options{
		Activity:  model.Stroop,
		Tier:      model.TierEasy,
		Bundle:    difficulty.StroopParams{TimeLimitSec: 5, Multiplier: 1},
		Progress:  f.store,
		Rand:      generator.NewWithSeed(7),
		Scheduler: f.clock,
		Logger:    zerolog.New(&buf),
	})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	m.Init()
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	out := buf.String()
	for _, msg := range []string{"session started", "session cancelled"} {
		if got := strings.Count(out, msg); got != 1 {
			t.Fatalf("expected %q logged once, got %d:\n%s", msg, got, out)
		}
	}
}

func TestSequenceEnterFinishes(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, model.Sequence, difficulty.SequenceParams{StartLength: 3, DisplayMs: 500, Multiplier: 1})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	settle(t, m)
	if m.result.ActivityID != model.Sequence {
		t.Fatalf("unexpected result activity %q", m.result.ActivityID)
	}
}

func TestReplayMountsFreshEngine(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, model.Stroop, difficulty.StroopParams{TimeLimitSec: 1, Multiplier: 1})
	first := m.eng.ID()
	f.clock.Advance(time.Second)
	settle(t, m)

	m.Update(key("r"))
	if m.state != statePlaying {
		t.Fatalf("expected playing state after replay")
	}
	if m.eng.ID() == first {
		t.Fatalf("expected a new session id")
	}
}

func TestPegRequiresTwoWords(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, model.PegPractice, difficulty.PegParams{MaxNumber: 99, Rounds: 1, Multiplier: 1})
	m.words.SetValue("only")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.flash != "enter exactly two words" {
		t.Fatalf("unexpected flash %q", m.flash)
	}
}

func TestHeaderShowsScoreAndRounds(t *testing.T) {
	f := newFixture(t)
	m := f.model(t, model.NBack, difficulty.NBackParams{N: 2, IntervalMs: 1000, TotalTurns: 10, Multiplier: 1})
	header := m.renderHeader()
	for _, want := range []string{"Score 0", "Round 1/10", "Level 2"} {
		if !strings.Contains(header, want) {
			t.Fatalf("header missing %q: %s", want, header)
		}
	}
}
