package engine

import (
	"time"

	"github.com/urben88/MindFlex/internal/difficulty"
)

// StroopColors are the word and ink colors.
var StroopColors = []string{"red", "blue", "green", "yellow"}

const stroopBase = 100

// StroopView is the Stroop part of a View.
type StroopView struct {
	Word     int
	Ink      int
	TimeLeft int
	Trials   int
}

// stroop runs for a fixed time. Each choice names the ink color of the
// current word; accuracy is hits/(hits+misses).
type stroop struct {
	*session
	p        difficulty.StroopParams
	word     int
	ink      int
	timeLeft int
	trials   int
}

func newStroop(s *session, p difficulty.StroopParams) *stroop {
	return &stroop{session: s, p: p}
}

func (e *stroop) Start() error {
	e.mu.Lock()
	if err := e.begin(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.timeLeft = e.p.TimeLimitSec
	e.phase = PhaseAwaitingInput
	e.next()
	e.after(time.Second, e.tick)
	e.mu.Unlock()
	e.flush()
	return nil
}

func (e *stroop) next() {
	e.word, e.ink = e.opts.Rand.StroopTrial(len(StroopColors), e.p.ConflictProbability)
	e.trials++
}

func (e *stroop) tick() {
	e.timeLeft--
	if e.timeLeft <= 0 {
		e.finish(Ratio(e.hits, e.hits+e.misses), 1)
		return
	}
	e.after(time.Second, e.tick)
}

func (e *stroop) Submit(in Input) error {
	e.mu.Lock()
	if err := e.accepting(); err != nil {
		e.mu.Unlock()
		return err
	}
	if in.Kind != InputChoice {
		e.mu.Unlock()
		return ErrUnsupportedInput
	}
	if in.Value < 0 || in.Value >= len(StroopColors) {
		e.mu.Unlock()
		return ErrInvalidInput
	}
	if in.Value == e.ink {
		e.award(stroopBase)
	} else {
		e.penalize(stroopBase)
	}
	e.next()
	e.mu.Unlock()
	e.flush()
	return nil
}

func (e *stroop) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.baseView()
	v.Round = e.trials
	v.Level = 1
	v.Detail = StroopView{Word: e.word, Ink: e.ink, TimeLeft: e.timeLeft, Trials: e.trials}
	return v
}
