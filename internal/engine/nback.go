package engine

import (
	"time"

	"github.com/urben88/MindFlex/internal/difficulty"
)

// AudioLetters is the spoken alphabet of audio N-back.
var AudioLetters = []string{"A", "B", "C", "D", "E", "H", "J", "K", "L", "M", "O", "P", "R", "S", "T"}

// NBackCells is the number of grid positions in visual N-back.
const NBackCells = 9

type nbackVariant struct {
	alphabet int
	repeat   float64
	base     float64
	spoken   bool
}

var (
	visualNBack = nbackVariant{alphabet: NBackCells, repeat: 0.3, base: 100}
	audioNBack  = nbackVariant{alphabet: len(AudioLetters), repeat: 0.35, base: 150, spoken: true}
)

// visibleShare is the part of each interval during which the stimulus shows.
const visibleShare = 0.7

// NBackView is the N-back part of a View. Symbol is -1 while hidden.
type NBackView struct {
	N        int
	Turn     int
	Turns    int
	Symbol   int
	Letter   string
	Spoken   bool
	Answered bool
}

// nback runs a fixed number of turns. A match press on a real match scores,
// on any other turn it is a miss with a penalty. Accuracy is
// hits/(hits+misses); unanswered turns count as neither.
type nback struct {
	*session
	p       difficulty.NBackParams
	v       nbackVariant
	seq     []int
	turn    int
	visible bool
	answer  bool
}

func newNBack(s *session, p difficulty.NBackParams, v nbackVariant) *nback {
	return &nback{session: s, p: p, v: v}
}

func (e *nback) Start() error {
	e.mu.Lock()
	if err := e.begin(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.seq = e.opts.Rand.NBack(e.p.N, e.p.TotalTurns, e.v.alphabet, e.v.repeat)
	e.show(0)
	e.mu.Unlock()
	e.flush()
	return nil
}

func (e *nback) show(turn int) {
	e.turn = turn
	if turn >= len(e.seq) {
		e.finish(Ratio(e.hits, e.hits+e.misses), e.p.N)
		return
	}
	e.phase = PhaseAwaitingInput
	e.visible = true
	e.answer = false
	e.feedback = FeedbackNone
	if e.v.spoken {
		e.speak(AudioLetters[e.seq[turn]], 1)
	}
	interval := ms(e.p.IntervalMs)
	shown := time.Duration(float64(interval) * visibleShare)
	e.after(shown, func() {
		e.visible = false
		e.after(interval-shown, func() { e.show(turn + 1) })
	})
}

func (e *nback) Submit(in Input) error {
	e.mu.Lock()
	if err := e.accepting(); err != nil {
		e.mu.Unlock()
		return err
	}
	if in.Kind != InputMatch {
		e.mu.Unlock()
		return ErrUnsupportedInput
	}
	if e.answer {
		e.mu.Unlock()
		return ErrNotAccepting
	}
	if e.turn < e.p.N {
		// Nothing to compare against yet.
		e.mu.Unlock()
		return nil
	}
	e.answer = true
	if e.seq[e.turn] == e.seq[e.turn-e.p.N] {
		e.award(e.v.base)
	} else {
		e.penalize(e.v.base)
	}
	e.mu.Unlock()
	e.flush()
	return nil
}

func (e *nback) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.baseView()
	v.Round = min(e.turn+1, e.p.TotalTurns)
	v.Rounds = e.p.TotalTurns
	v.Level = e.p.N
	d := NBackView{N: e.p.N, Turn: v.Round, Turns: e.p.TotalTurns, Symbol: -1, Spoken: e.v.spoken, Answered: e.answer}
	if e.started && e.visible && e.turn < len(e.seq) {
		d.Symbol = e.seq[e.turn]
		if e.v.spoken {
			d.Letter = AudioLetters[d.Symbol]
		}
	}
	v.Detail = d
	return v
}
