package content

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urben88/MindFlex/internal/difficulty"
	"github.com/urben88/MindFlex/internal/generator"
	"github.com/urben88/MindFlex/internal/model"
)

type fakeProvider struct {
	mu       sync.Mutex
	calls    int
	content  ExerciseContent
	story    model.Story
	feedback string
	err      error
	block    bool
}

func (f *fakeProvider) enter(ctx context.Context) error {
	f.mu.Lock()
	f.calls++
	block, err := f.block, f.err
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (f *fakeProvider) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeProvider) ExerciseContent(ctx context.Context, _ Exercise) (ExerciseContent, error) {
	return f.content, f.enter(ctx)
}

func (f *fakeProvider) Story(ctx context.Context, _ model.Tier, _ difficulty.StoryParams) (model.Story, error) {
	return f.story, f.enter(ctx)
}

func (f *fakeProvider) Feedback(ctx context.Context, _ string, _ int, _ float64) (string, error) {
	return f.feedback, f.enter(ctx)
}

var remoteStory = model.Story{
	Text:         "A fox crossed the frozen lake at dawn.",
	Question:     "When did the fox cross?",
	Options:      []string{"At dawn", "At noon", "At dusk", "At midnight"},
	CorrectIndex: 0,
}

func storyParams() difficulty.StoryParams {
	return difficulty.StoryParams{StoryLengthWords: 40, Complexity: difficulty.ComplexitySimple, Multiplier: 1}
}

func TestCatalogIsConsistent(t *testing.T) {
	exs := Exercises()
	require.Len(t, exs, 12)
	for _, ex := range exs {
		_, ok := fallbackContent[ex.Type]
		assert.True(t, ok, "no fallback for %s", ex.Type)
	}
	require.Len(t, Guides(), 4)
	for _, g := range Guides() {
		for _, id := range g.Activities {
			assert.True(t, id.Known(), "guide %s names %s", g.ID, id)
		}
		for _, id := range g.Exercises {
			_, err := ExerciseByID(id)
			assert.NoError(t, err)
		}
	}
	_, err := ExerciseByID("ex99")
	assert.ErrorIs(t, err, ErrUnknownExercise)
	_, err = GuideByID("nope")
	assert.ErrorIs(t, err, ErrUnknownExercise)
}

func TestLocalFallbacks(t *testing.T) {
	l := NewLocal(nil)
	assert.Equal(t, "Basic memory palace", l.Content("unknown").Instruction)
	assert.Equal(t, MechanicInput, l.Content(TypeAssociation).Mechanic)
	assert.Equal(t, fallbackStories[0].Question, l.PickStory().Question)
	assert.Equal(t, "Well done! Accuracy: 83%.", l.Praise(0.834))

	seeded := NewLocal(generator.NewWithSeed(7))
	for i := 0; i < 10; i++ {
		assert.True(t, seeded.PickStory().Playable())
	}
}

func TestOfflineAdapterUsesLocal(t *testing.T) {
	a := NewAdapter(nil)
	assert.False(t, a.Available())
	ex, _ := ExerciseByID("ex2")
	c, generated := a.ExerciseContent(context.Background(), ex)
	assert.False(t, generated)
	assert.Equal(t, "Creative linking", c.Instruction)

	s, generated := a.Story(context.Background(), model.TierEasy, storyParams())
	assert.False(t, generated)
	assert.True(t, s.Playable())
	assert.Equal(t, "Well done! Accuracy: 50%.", a.Feedback(context.Background(), "Stroop", 10, 0.5))
}

func TestAdapterMemoizesSuccess(t *testing.T) {
	f := &fakeProvider{content: ExerciseContent{Instruction: "Go", Steps: []string{"one"}}, story: remoteStory}
	a := NewAdapter(f)
	ex, _ := ExerciseByID("ex1")

	for i := 0; i < 3; i++ {
		c, generated := a.ExerciseContent(context.Background(), ex)
		assert.True(t, generated)
		assert.Equal(t, "Go", c.Instruction)
	}
	for i := 0; i < 2; i++ {
		s, generated := a.Story(context.Background(), model.TierMedium, storyParams())
		assert.True(t, generated)
		assert.Equal(t, remoteStory.Question, s.Question)
	}
	assert.Equal(t, 2, f.count())
}

func TestAdapterFallsBackOnceOnError(t *testing.T) {
	f := &fakeProvider{err: errors.New("boom")}
	a := NewAdapter(f)
	ex, _ := ExerciseByID("ex7")

	c, generated := a.ExerciseContent(context.Background(), ex)
	assert.False(t, generated)
	assert.Equal(t, "Hear it, see it", c.Instruction)
	assert.Equal(t, 1, f.count())

	_, generated = a.Story(context.Background(), model.TierHard, storyParams())
	assert.False(t, generated)
	assert.Equal(t, 2, f.count())
	assert.Equal(t, "Keep going!", a.Feedback(context.Background(), "Memory", 100, 1))
}

func TestAdapterRejectsUnusableContent(t *testing.T) {
	f := &fakeProvider{story: model.Story{Text: "x", Question: "y", Options: []string{"a"}}}
	a := NewAdapter(f)
	s, generated := a.Story(context.Background(), model.TierEasy, storyParams())
	assert.False(t, generated)
	assert.Equal(t, fallbackStories[0].Text, s.Text)

	ex, _ := ExerciseByID("ex3")
	_, generated = a.ExerciseContent(context.Background(), ex)
	assert.False(t, generated)
}

func TestAdapterTimesOut(t *testing.T) {
	f := &fakeProvider{block: true}
	a := NewAdapter(f, WithTimeout(20*time.Millisecond))

	start := time.Now()
	s, generated := a.Story(context.Background(), model.TierEasy, storyParams())
	assert.False(t, generated)
	assert.True(t, s.Playable())
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "Keep going!", a.Feedback(context.Background(), "Snapshot", 0, 0))
}

func TestAdapterHonoursCancel(t *testing.T) {
	f := &fakeProvider{block: true}
	a := NewAdapter(f)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, generated := a.Story(ctx, model.TierEasy, storyParams())
	assert.False(t, generated)
}

func TestFeedbackFromProvider(t *testing.T) {
	a := NewAdapter(&fakeProvider{feedback: "Nice rhythm."})
	assert.Equal(t, "Nice rhythm.", a.Feedback(context.Background(), "N-Back", 300, 0.9))
	a = NewAdapter(&fakeProvider{})
	assert.Equal(t, "Good job!", a.Feedback(context.Background(), "N-Back", 300, 0.9))
}

type scriptedChat struct {
	reply string
	err   error
	user  string
}

func (c *scriptedChat) Complete(_ context.Context, _, user string) (string, error) {
	c.user = user
	return c.reply, c.err
}

func TestOpenAIDecodesReplies(t *testing.T) {
	chat := &scriptedChat{reply: "```json\n{\"text\":\"t\",\"question\":\"q\",\"options\":[\"a\",\"b\"],\"correctIndex\":1}\n```"}
	o := &OpenAI{chat: chat}
	p := storyParams()
	p.Complexity = difficulty.ComplexityInference
	s, err := o.Story(context.Background(), model.TierHard, p)
	require.NoError(t, err)
	assert.Equal(t, 1, s.CorrectIndex)
	assert.Contains(t, chat.user, "inference")

	chat.reply = `{"instruction":"i","steps":["s"],"items":[],"example":"e","mechanic":"flip"}`
	ex, _ := ExerciseByID("ex6")
	c, err := o.ExerciseContent(context.Background(), ex)
	require.NoError(t, err)
	assert.Equal(t, MechanicFlip, c.Mechanic)

	chat.reply = "not json"
	_, err = o.ExerciseContent(context.Background(), ex)
	assert.Error(t, err)

	chat.reply = "  Slow down a little.\n"
	text, err := o.Feedback(context.Background(), "Stroop", 10, 0.4)
	require.NoError(t, err)
	assert.Equal(t, "Slow down a little.", text)
}

func TestNewOpenAINeedsKey(t *testing.T) {
	_, err := NewOpenAI("", "")
	assert.ErrorIs(t, err, ErrUnavailable)
	o, err := NewOpenAI("sk-test", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, o.chat.(*openaiChat).model)
}
