package engine

import (
	"time"

	"github.com/urben88/MindFlex/internal/difficulty"
)

const (
	memoryBase         = 100
	memoryMismatchBase = 20
	memoryHold         = time.Second
)

// MemoryCard is one card of the deck.
type MemoryCard struct {
	Face    int
	Up      bool
	Matched bool
}

// MemoryView is the card-matching part of a View. Face values are only
// meaningful for cards that are up, matched or previewed.
type MemoryView struct {
	Cards   []MemoryCard
	Pairs   int
	Matched int
	Moves   int
	Preview bool
}

// memory ends when every pair is found. A mismatch deducts 10×mult and
// flips both cards back after a short hold. Accuracy is pairs/moves.
type memory struct {
	*session
	p       difficulty.MemoryParams
	cards   []MemoryCard
	open    []int
	moves   int
	matched int
}

func newMemory(s *session, p difficulty.MemoryParams) *memory {
	return &memory{session: s, p: p}
}

func (e *memory) Start() error {
	e.mu.Lock()
	if err := e.begin(); err != nil {
		e.mu.Unlock()
		return err
	}
	deck := e.opts.Rand.Deck(e.p.PairCount)
	e.cards = make([]MemoryCard, len(deck))
	for i, face := range deck {
		e.cards[i] = MemoryCard{Face: face}
	}
	if e.p.PreviewMs > 0 {
		e.phase = PhasePresenting
		e.after(ms(e.p.PreviewMs), func() { e.phase = PhaseAwaitingInput })
	} else {
		e.phase = PhaseAwaitingInput
	}
	e.mu.Unlock()
	e.flush()
	return nil
}

func (e *memory) Submit(in Input) error {
	e.mu.Lock()
	if err := e.accepting(); err != nil {
		e.mu.Unlock()
		return err
	}
	if in.Kind != InputCard {
		e.mu.Unlock()
		return ErrUnsupportedInput
	}
	if in.Value < 0 || in.Value >= len(e.cards) {
		e.mu.Unlock()
		return ErrInvalidInput
	}
	card := &e.cards[in.Value]
	if card.Up || card.Matched {
		e.mu.Unlock()
		return nil
	}
	card.Up = true
	e.open = append(e.open, in.Value)
	e.feedback = FeedbackNone
	if len(e.open) == 2 {
		e.pair()
	}
	e.mu.Unlock()
	e.flush()
	return nil
}

func (e *memory) pair() {
	e.moves++
	a, b := e.open[0], e.open[1]
	e.open = e.open[:0]
	if e.cards[a].Face == e.cards[b].Face {
		e.cards[a].Matched = true
		e.cards[b].Matched = true
		e.matched++
		e.award(memoryBase)
		if e.matched == e.p.PairCount {
			e.phase = PhaseFeedback
			e.after(memoryHold, func() {
				e.finish(Ratio(e.p.PairCount, e.moves), 1)
			})
		}
		return
	}
	e.penalize(memoryMismatchBase)
	e.phase = PhaseFeedback
	e.after(memoryHold, func() {
		e.cards[a].Up = false
		e.cards[b].Up = false
		e.feedback = FeedbackNone
		e.phase = PhaseAwaitingInput
	})
}

func (e *memory) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.baseView()
	v.Level = 1
	v.Round = e.moves
	v.Detail = MemoryView{
		Cards:   append([]MemoryCard(nil), e.cards...),
		Pairs:   e.p.PairCount,
		Matched: e.matched,
		Moves:   e.moves,
		Preview: e.phase == PhasePresenting,
	}
	return v
}
