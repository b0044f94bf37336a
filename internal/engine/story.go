package engine

import (
	"strings"
	"time"

	"github.com/urben88/MindFlex/internal/difficulty"
	"github.com/urben88/MindFlex/internal/model"
)

const (
	storyBase         = 100
	storyHold         = 1500 * time.Millisecond
	storyWordsPerMin  = 150
	storyMinNarration = 3 * time.Second
)

// StoryView is the story-listener part of a View. Text is set once the
// story has arrived.
type StoryView struct {
	Loading   bool
	Generated bool
	Text      string
	Question  string
	Options   []string
	Answer    int
	Chosen    int
}

// story plays one listening item. A correct answer scores round(100*mult)
// with accuracy 1; a wrong one scores 0 with accuracy 0.
type story struct {
	*session
	p         difficulty.StoryParams
	loading   bool
	generated bool
	item      model.Story
	chosen    int
}

func newStory(s *session, p difficulty.StoryParams) *story {
	return &story{session: s, p: p, chosen: -1}
}

func (e *story) Start() error {
	e.mu.Lock()
	if err := e.begin(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.phase = PhasePresenting
	e.loading = true
	var (
		item      model.Story
		generated bool
	)
	deliver := e.deferred(func() {
		e.item = item
		e.generated = generated
		e.narrate()
	})
	ctx, src, tier, p := e.ctx, e.opts.Stories, e.tier, e.p
	e.mu.Unlock()

	go func() {
		item, generated = src.Story(ctx, tier, p)
		deliver()
	}()
	e.flush()
	return nil
}

// narrate runs once the story is in hand. Callers hold mu.
func (e *story) narrate() {
	e.loading = false
	e.speak(e.item.Text, 1)
	e.after(narration(e.item.Text), e.ask)
}

func (e *story) ask() {
	e.phase = PhaseAwaitingInput
}

func (e *story) Submit(in Input) error {
	e.mu.Lock()
	if in.Kind == InputContinue && e.started && !e.closed && e.phase == PhasePresenting && !e.loading {
		e.disarm()
		e.ask()
		e.mu.Unlock()
		e.flush()
		return nil
	}
	if err := e.accepting(); err != nil {
		e.mu.Unlock()
		return err
	}
	if in.Kind != InputChoice {
		e.mu.Unlock()
		return ErrUnsupportedInput
	}
	if in.Value < 0 || in.Value >= len(e.item.Options) {
		e.mu.Unlock()
		return ErrInvalidInput
	}
	e.chosen = in.Value
	accuracy := 0.0
	if in.Value == e.item.CorrectIndex {
		e.award(storyBase)
		accuracy = 1
	} else {
		e.feedback = FeedbackWrong
	}
	e.phase = PhaseFeedback
	e.after(storyHold, func() { e.finish(accuracy, 1) })
	e.mu.Unlock()
	e.flush()
	return nil
}

func (e *story) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.baseView()
	v.Round = 1
	v.Rounds = 1
	v.Level = 1
	d := StoryView{Loading: e.loading, Generated: e.generated, Answer: -1, Chosen: e.chosen}
	if !e.loading && e.started {
		d.Text = e.item.Text
	}
	if e.phase == PhaseAwaitingInput || e.phase == PhaseFeedback {
		d.Question = e.item.Question
		d.Options = append([]string(nil), e.item.Options...)
	}
	if e.phase == PhaseFeedback {
		d.Answer = e.item.CorrectIndex
	}
	v.Detail = d
	return v
}

func narration(text string) time.Duration {
	words := len(strings.Fields(text))
	d := time.Duration(words) * time.Minute / storyWordsPerMin
	return max(d, storyMinNarration)
}
