package engine

import (
	"strconv"
	"time"

	"github.com/urben88/MindFlex/internal/difficulty"
)

const (
	recallGap         = 200 * time.Millisecond
	recallSuccessHold = 1000 * time.Millisecond
	recallFailureHold = 1500 * time.Millisecond
)

type recallVariant struct {
	base   float64
	leadIn time.Duration
	spoken bool
}

var (
	visualRecall = recallVariant{base: 100, leadIn: 500 * time.Millisecond}
	echoRecall   = recallVariant{base: 120, leadIn: 800 * time.Millisecond, spoken: true}
)

// RecallView is the sequence-recall part of a View. Showing is the index of
// the digit being presented, or -1. Spoken digits are meant to be heard.
type RecallView struct {
	Length  int
	Showing int
	Digit   int
	Spoken  bool
	Input   []int
	Target  []int
}

// recall escalates until the first failure. Each round reveals level digits;
// a correct recall scores round(level*base*mult) and raises level by one.
// Accuracy is correct rounds over attempted rounds.
type recall struct {
	*session
	v         recallVariant
	start     int
	step      time.Duration
	rate      float64
	level     int
	seq       []int
	showing   int
	input     []int
	attempted int
	correct   int
}

func newVisualRecall(s *session, p difficulty.SequenceParams) *recall {
	return &recall{session: s, v: visualRecall, start: p.StartLength, step: ms(p.DisplayMs), rate: 1, showing: -1}
}

func newEchoRecall(s *session, p difficulty.EchoParams) *recall {
	step := time.Duration(float64(time.Second) / p.SpeechRate)
	return &recall{session: s, v: echoRecall, start: p.StartLength, step: step, rate: p.SpeechRate, showing: -1}
}

func (e *recall) Start() error {
	e.mu.Lock()
	if err := e.begin(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.level = e.start
	e.round()
	e.mu.Unlock()
	e.flush()
	return nil
}

func (e *recall) round() {
	e.seq = e.opts.Rand.Digits(e.level)
	e.input = e.input[:0]
	e.showing = -1
	e.phase = PhasePresenting
	e.feedback = FeedbackNone
	e.after(e.v.leadIn, func() { e.reveal(0) })
}

func (e *recall) reveal(i int) {
	if i >= len(e.seq) {
		e.showing = -1
		e.phase = PhaseAwaitingInput
		return
	}
	e.showing = i
	if e.v.spoken {
		e.speak(strconv.Itoa(e.seq[i]), e.rate)
	}
	e.after(e.step, func() {
		e.showing = -1
		e.after(recallGap, func() { e.reveal(i + 1) })
	})
}

func (e *recall) Submit(in Input) error {
	e.mu.Lock()
	if err := e.accepting(); err != nil {
		e.mu.Unlock()
		return err
	}
	switch in.Kind {
	case InputDigit:
		if in.Value < 0 || in.Value > 9 {
			e.mu.Unlock()
			return ErrInvalidInput
		}
		e.input = append(e.input, in.Value)
		if len(e.input) == len(e.seq) {
			e.evaluate()
		}
	case InputDelete:
		if len(e.input) > 0 {
			e.input = e.input[:len(e.input)-1]
		}
	default:
		e.mu.Unlock()
		return ErrUnsupportedInput
	}
	e.mu.Unlock()
	e.flush()
	return nil
}

func (e *recall) evaluate() {
	e.attempted++
	e.phase = PhaseFeedback
	for i := range e.seq {
		if e.input[i] != e.seq[i] {
			e.feedback = FeedbackWrong
			e.after(recallFailureHold, func() {
				e.finish(Ratio(e.correct, e.attempted), e.level)
			})
			return
		}
	}
	e.correct++
	e.score += Points(float64(e.level)*e.v.base, e.mult)
	e.feedback = FeedbackCorrect
	e.level++
	e.after(recallSuccessHold, e.round)
}

// Finish ends the run at the current depth.
func (e *recall) Finish() error {
	e.mu.Lock()
	switch {
	case !e.started:
		e.mu.Unlock()
		return ErrNotStarted
	case e.closed:
		e.mu.Unlock()
		return ErrFinished
	}
	e.finish(Ratio(e.correct, e.attempted), e.level)
	e.mu.Unlock()
	e.flush()
	return nil
}

func (e *recall) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.baseView()
	v.Level = e.level
	v.Round = e.attempted + 1
	d := RecallView{
		Length:  len(e.seq),
		Showing: e.showing,
		Digit:   -1,
		Spoken:  e.v.spoken,
		Input:   append([]int(nil), e.input...),
	}
	if e.showing >= 0 {
		d.Digit = e.seq[e.showing]
	}
	if e.phase == PhaseFeedback || e.phase == PhaseFinished {
		d.Target = append([]int(nil), e.seq...)
	}
	v.Detail = d
	return v
}
