package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urben88/MindFlex/internal/difficulty"
	"github.com/urben88/MindFlex/internal/generator"
	"github.com/urben88/MindFlex/internal/model"
)

func TestStroopRunsForTimeLimit(t *testing.T) {
	h := newHarness()
	p := difficulty.StroopParams{TimeLimitSec: 3, ConflictProbability: 1, Multiplier: 2}
	eng, err := New(model.Stroop, model.TierHard, p, h.options())
	require.NoError(t, err)
	e := eng.(*stroop)
	require.NoError(t, e.Start())

	d := e.View().Detail.(StroopView)
	assert.NotEqual(t, d.Word, d.Ink)
	require.NoError(t, e.Submit(Choice(d.Ink)))
	d = e.View().Detail.(StroopView)
	require.NoError(t, e.Submit(Choice(d.Word)))
	assert.Equal(t, 100, e.View().Score)
	assert.ErrorIs(t, e.Submit(Choice(7)), ErrInvalidInput)

	h.clock.Advance(2 * time.Second)
	assert.Equal(t, 1, e.View().Detail.(StroopView).TimeLeft)
	assert.False(t, e.Finished())
	h.clock.Advance(time.Second)

	results := h.emitted()
	require.Len(t, results, 1)
	assert.Equal(t, 100, results[0].Score)
	assert.Equal(t, 0.5, results[0].Accuracy)
	assert.InDelta(t, 3.0, results[0].DurationSeconds, 1e-9)
	assert.ErrorIs(t, e.Finish(), ErrFinished)
}

func TestStroopCannotEndEarly(t *testing.T) {
	h := newHarness()
	eng, err := New(model.Stroop, model.TierEasy, difficulty.StroopParams{TimeLimitSec: 3, Multiplier: 1}, h.options())
	require.NoError(t, err)
	require.NoError(t, eng.Start())
	assert.ErrorIs(t, eng.Finish(), ErrCannotFinish)
}

// pairsOf returns card indexes grouped by face.
func pairsOf(e *memory) map[int][]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := map[int][]int{}
	for i, c := range e.cards {
		out[c.Face] = append(out[c.Face], i)
	}
	return out
}

func TestMemoryPreviewSkippedWhenZero(t *testing.T) {
	h := newHarness()
	eng, err := New(model.MemoryMatch, model.TierHard, difficulty.MemoryParams{PairCount: 3, PreviewMs: 0, Multiplier: 1}, h.options())
	require.NoError(t, err)
	require.NoError(t, eng.Start())
	assert.Equal(t, PhaseAwaitingInput, eng.View().Phase)
	assert.False(t, eng.View().Detail.(MemoryView).Preview)
	assert.Equal(t, 0, h.clock.Pending())
}

func TestMemoryPreviewBlocksInput(t *testing.T) {
	h := newHarness()
	eng, err := New(model.MemoryMatch, model.TierEasy, difficulty.MemoryParams{PairCount: 3, PreviewMs: 2000, Multiplier: 1}, h.options())
	require.NoError(t, err)
	require.NoError(t, eng.Start())
	assert.True(t, eng.View().Detail.(MemoryView).Preview)
	assert.ErrorIs(t, eng.Submit(Card(0)), ErrNotAccepting)
	h.clock.Advance(2 * time.Second)
	assert.NoError(t, eng.Submit(Card(0)))
}

func TestMemoryFullGame(t *testing.T) {
	h := newHarness()
	p := difficulty.MemoryParams{PairCount: 3, PreviewMs: 0, Multiplier: 1}
	eng, err := New(model.MemoryMatch, model.TierEasy, p, h.options())
	require.NoError(t, err)
	e := eng.(*memory)
	require.NoError(t, e.Start())
	pairs := pairsOf(e)

	require.NoError(t, e.Submit(Card(pairs[0][0])))
	require.NoError(t, e.Submit(Card(pairs[0][1])))
	assert.Equal(t, 100, e.View().Score)

	// One mismatch: cards lock, then flip back.
	require.NoError(t, e.Submit(Card(pairs[1][0])))
	require.NoError(t, e.Submit(Card(pairs[2][0])))
	assert.Equal(t, 90, e.View().Score)
	assert.Equal(t, PhaseFeedback, e.View().Phase)
	assert.ErrorIs(t, e.Submit(Card(pairs[1][1])), ErrNotAccepting)
	h.clock.Advance(memoryHold)
	assert.False(t, e.View().Detail.(MemoryView).Cards[pairs[1][0]].Up)

	for _, face := range []int{1, 2} {
		require.NoError(t, e.Submit(Card(pairs[face][0])))
		require.NoError(t, e.Submit(Card(pairs[face][1])))
	}
	assert.Empty(t, h.emitted())
	h.clock.Advance(memoryHold)

	results := h.emitted()
	require.Len(t, results, 1)
	assert.Equal(t, 290, results[0].Score)
	assert.Equal(t, 0.75, results[0].Accuracy)
	assert.Equal(t, 1, results[0].MaxLevel)
}

func TestSnapshotRounds(t *testing.T) {
	h := newHarness()
	p := difficulty.SnapshotParams{ItemsCount: 4, MemorizeMs: 1000, Rounds: 3, Multiplier: 1.5}
	eng, err := New(model.Snapshot, model.TierMedium, p, h.options())
	require.NoError(t, err)
	e := eng.(*snapshot)
	require.NoError(t, e.Start())

	for round := 1; round <= 3; round++ {
		v := e.View()
		require.Equal(t, PhasePresenting, v.Phase)
		assert.Len(t, v.Detail.(SnapshotView).Scene, 4)
		h.clock.Advance(time.Second)

		v = e.View()
		require.Equal(t, PhaseAwaitingInput, v.Phase)
		d := v.Detail.(SnapshotView)
		assert.Empty(t, d.Scene)
		require.NotEmpty(t, d.Options)
		e.mu.Lock()
		answer := e.answer
		e.mu.Unlock()
		pick := -1
		for i, o := range d.Options {
			if (o == answer) == (round != 2) {
				pick = i
				break
			}
		}
		require.GreaterOrEqual(t, pick, 0)
		require.NoError(t, e.Submit(Choice(pick)))
		h.clock.Advance(snapshotHold)
	}

	results := h.emitted()
	require.Len(t, results, 1)
	assert.Equal(t, 300, results[0].Score)
	assert.InDelta(t, 2.0/3.0, results[0].Accuracy, 1e-9)
}

func TestSnapshotColorOptionsAreShuffled(t *testing.T) {
	h := newHarness()
	p := difficulty.SnapshotParams{ItemsCount: 4, MemorizeMs: 0, Rounds: 1, Multiplier: 1}
	eng, err := New(model.Snapshot, model.TierCustom, p, h.options())
	require.NoError(t, err)
	e := eng.(*snapshot)

	// Every icon appears once, so only color questions can be asked.
	scene := make([]generator.SceneItem, len(SnapshotIcons))
	for i := range scene {
		scene[i] = generator.SceneItem{Icon: i, Color: i % len(SnapshotColors), Cell: i}
	}
	positions := map[int]bool{}
	e.mu.Lock()
	for i := 0; i < 50; i++ {
		e.scene = scene
		e.ask()
		require.Equal(t, AskColor, e.kind)
		require.Len(t, e.options, 4)
		seen := map[int]bool{}
		for pos, c := range e.options {
			assert.False(t, seen[c], "duplicate option %d", c)
			seen[c] = true
			if c == e.answer {
				positions[pos] = true
			}
		}
		require.True(t, seen[e.answer])
	}
	e.mu.Unlock()
	assert.Greater(t, len(positions), 1)
}

func TestSnapshotZeroMemorizeAsksImmediately(t *testing.T) {
	h := newHarness()
	p := difficulty.SnapshotParams{ItemsCount: 4, MemorizeMs: 0, Rounds: 1, Multiplier: 1}
	eng, err := New(model.Snapshot, model.TierCustom, p, h.options())
	require.NoError(t, err)
	require.NoError(t, eng.Start())
	assert.Equal(t, PhaseAwaitingInput, eng.View().Phase)
}

func TestPegDecode(t *testing.T) {
	cases := map[string]string{
		"taza":  "16",
		"mesa":  "36",
		"ñu":    "2",
		"chino": "82",
		"llave": "59",
		"perro": "90",
		"Árbol": "095",
		"hoja":  "8",
		"":      "",
	}
	for word, want := range cases {
		assert.Equal(t, want, PegDecode(word), word)
	}
}

func TestPegRounds(t *testing.T) {
	h := newHarness()
	p := difficulty.PegParams{MaxNumber: 50, Rounds: 2, RoundTimeSec: 0, Multiplier: 1.5}
	eng, err := New(model.PegPractice, model.TierMedium, p, h.options())
	require.NoError(t, err)
	e := eng.(*peg)
	require.NoError(t, e.Start())

	e.mu.Lock()
	e.numbers = [2]int{16, 36}
	e.mu.Unlock()
	assert.ErrorIs(t, e.Submit(Words("taza")), ErrInvalidInput)
	require.NoError(t, e.Submit(Words("taza", "mesa")))
	assert.Equal(t, 150, e.View().Score)
	assert.Equal(t, 2, e.View().Round)

	e.mu.Lock()
	e.numbers = [2]int{16, 36}
	e.mu.Unlock()
	require.NoError(t, e.Submit(Words("taza", "casa")))
	d := e.View().Detail.(PegView)
	assert.True(t, d.Revealed)
	assert.Equal(t, [2]bool{false, true}, d.Wrong)
	h.clock.Advance(pegHold)

	results := h.emitted()
	require.Len(t, results, 1)
	assert.Equal(t, 150, results[0].Score)
	assert.Equal(t, 0.5, results[0].Accuracy)
}

func TestPegRoundTimeout(t *testing.T) {
	h := newHarness()
	p := difficulty.PegParams{MaxNumber: 20, Rounds: 2, RoundTimeSec: 2, Multiplier: 1}
	eng, err := New(model.PegPractice, model.TierHard, p, h.options())
	require.NoError(t, err)
	require.NoError(t, eng.Start())

	h.clock.Advance(2 * time.Second)
	assert.True(t, eng.View().Detail.(PegView).Revealed)
	assert.Equal(t, PhaseFeedback, eng.View().Phase)
	h.clock.Advance(pegHold)
	assert.Equal(t, 2, eng.View().Round)
	assert.Equal(t, 2, eng.View().Detail.(PegView).TimeLeft)
}

var testStory = model.Story{
	Text:         "A clockmaker fixed a tower clock and at noon it released soap bubbles.",
	Question:     "What came out of the clock?",
	Options:      []string{"Bells", "Soap bubbles", "Birds", "Smoke"},
	CorrectIndex: 1,
}

type fixedStories struct{ story model.Story }

func (f fixedStories) Story(context.Context, model.Tier, difficulty.StoryParams) (model.Story, bool) {
	return f.story, false
}

type blockingStories struct{ seen chan error }

func (b blockingStories) Story(ctx context.Context, _ model.Tier, _ difficulty.StoryParams) (model.Story, bool) {
	<-ctx.Done()
	b.seen <- ctx.Err()
	return testStory, true
}

func TestStoryListener(t *testing.T) {
	h := newHarness()
	opts := h.options()
	opts.Stories = fixedStories{story: testStory}
	p := difficulty.StoryParams{StoryLengthWords: 40, Complexity: difficulty.ComplexitySimple, Multiplier: 1.5}
	eng, err := New(model.StoryListener, model.TierMedium, p, opts)
	require.NoError(t, err)
	require.NoError(t, eng.Start())

	require.Eventually(t, func() bool {
		return !eng.View().Detail.(StoryView).Loading
	}, time.Second, time.Millisecond)
	assert.Equal(t, PhasePresenting, eng.View().Phase)
	assert.ErrorIs(t, eng.Submit(Choice(1)), ErrNotAccepting)

	h.clock.Advance(narration(testStory.Text))
	require.Equal(t, PhaseAwaitingInput, eng.View().Phase)
	require.NoError(t, eng.Submit(Choice(1)))
	h.clock.Advance(storyHold)

	results := h.emitted()
	require.Len(t, results, 1)
	assert.Equal(t, 150, results[0].Score)
	assert.Equal(t, 1.0, results[0].Accuracy)
}

func TestStoryListenerSkipNarrationAndWrongAnswer(t *testing.T) {
	h := newHarness()
	opts := h.options()
	opts.Stories = fixedStories{story: testStory}
	p := difficulty.StoryParams{StoryLengthWords: 40, Complexity: difficulty.ComplexitySimple, Multiplier: 1}
	eng, err := New(model.StoryListener, model.TierEasy, p, opts)
	require.NoError(t, err)
	require.NoError(t, eng.Start())
	require.Eventually(t, func() bool {
		return !eng.View().Detail.(StoryView).Loading
	}, time.Second, time.Millisecond)

	require.NoError(t, eng.Submit(Continue()))
	require.Equal(t, PhaseAwaitingInput, eng.View().Phase)
	require.NoError(t, eng.Submit(Choice(3)))
	h.clock.Advance(storyHold)

	results := h.emitted()
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Score)
	assert.Equal(t, 0.0, results[0].Accuracy)
}

func TestStoryListenerCancelStopsFetch(t *testing.T) {
	h := newHarness()
	opts := h.options()
	src := blockingStories{seen: make(chan error, 1)}
	opts.Stories = src
	p := difficulty.StoryParams{StoryLengthWords: 40, Complexity: difficulty.ComplexitySimple, Multiplier: 1}
	eng, err := New(model.StoryListener, model.TierEasy, p, opts)
	require.NoError(t, err)
	require.NoError(t, eng.Start())

	eng.Cancel()
	select {
	case err := <-src.seen:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("expected the fetch to observe cancellation")
	}
	h.clock.Advance(time.Minute)
	assert.True(t, eng.View().Detail.(StoryView).Loading)
	assert.Empty(t, h.emitted())
	assert.Equal(t, 0, h.clock.Pending())
}
