package engine

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/urben88/MindFlex/internal/difficulty"
)

const (
	pegBase = 100
	pegHold = 2500 * time.Millisecond
)

var pegDigraphs = strings.NewReplacer("ch", "8", "ll", "5", "rr", "0")

var pegLetters = map[rune]byte{
	't': '1', 'd': '1',
	'n': '2',
	'm': '3',
	'c': '4', 'k': '4', 'q': '4',
	'l': '5',
	's': '6', 'z': '6',
	'f': '7',
	'g': '8', 'j': '8',
	'v': '9', 'b': '9', 'p': '9',
	'r': '0',
}

// PegDecode converts a word to the digits it encodes in the Spanish
// phonetic peg system. Vowels and unmapped letters are silent.
func PegDecode(word string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), word)
	if err != nil {
		folded = word
	}
	s := pegDigraphs.Replace(strings.ToLower(folded))
	var b strings.Builder
	for _, r := range s {
		if d, ok := pegLetters[r]; ok {
			b.WriteByte(d)
			continue
		}
		if r == '8' || r == '5' || r == '0' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PegView is the peg-practice part of a View.
type PegView struct {
	Numbers  [2]int
	TimeLeft int
	Timed    bool
	Wrong    [2]bool
	Revealed bool
}

// peg runs fixed rounds of two numbers each. Both words must decode to
// their numbers; anything else, including a round timeout, reveals the
// answer and moves on. Accuracy is correct rounds over rounds.
type peg struct {
	*session
	p        difficulty.PegParams
	round    int
	correct  int
	numbers  [2]int
	timeLeft int
	wrong    [2]bool
	revealed bool
}

func newPeg(s *session, p difficulty.PegParams) *peg {
	return &peg{session: s, p: p}
}

func (e *peg) Start() error {
	e.mu.Lock()
	if err := e.begin(); err != nil {
		e.mu.Unlock()
		return err
	}
	e.next()
	e.mu.Unlock()
	e.flush()
	return nil
}

func (e *peg) next() {
	e.round++
	e.numbers = [2]int{e.opts.Rand.Between(e.p.MaxNumber), e.opts.Rand.Between(e.p.MaxNumber)}
	e.wrong = [2]bool{}
	e.revealed = false
	e.feedback = FeedbackNone
	e.phase = PhaseAwaitingInput
	if e.p.RoundTimeSec > 0 {
		e.timeLeft = e.p.RoundTimeSec
		e.after(time.Second, e.tick)
	}
}

func (e *peg) tick() {
	e.timeLeft--
	if e.timeLeft <= 0 {
		e.wrong = [2]bool{true, true}
		e.reveal()
		return
	}
	e.after(time.Second, e.tick)
}

func (e *peg) reveal() {
	e.revealed = true
	e.feedback = FeedbackWrong
	e.phase = PhaseFeedback
	e.after(pegHold, e.advance)
}

func (e *peg) advance() {
	if e.round >= e.p.Rounds {
		e.finish(Ratio(e.correct, e.p.Rounds), 1)
		return
	}
	e.next()
}

func (e *peg) Submit(in Input) error {
	e.mu.Lock()
	if err := e.accepting(); err != nil {
		e.mu.Unlock()
		return err
	}
	if in.Kind != InputWords {
		e.mu.Unlock()
		return ErrUnsupportedInput
	}
	if len(in.Words) != 2 {
		e.mu.Unlock()
		return ErrInvalidInput
	}
	for i, w := range in.Words {
		e.wrong[i] = PegDecode(w) != strconv.Itoa(e.numbers[i])
	}
	if !e.wrong[0] && !e.wrong[1] {
		e.award(pegBase)
		e.correct++
		e.advance()
	} else {
		e.reveal()
	}
	e.mu.Unlock()
	e.flush()
	return nil
}

func (e *peg) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.baseView()
	v.Round = e.round
	v.Rounds = e.p.Rounds
	v.Level = 1
	v.Detail = PegView{
		Numbers:  e.numbers,
		TimeLeft: e.timeLeft,
		Timed:    e.p.RoundTimeSec > 0,
		Wrong:    e.wrong,
		Revealed: e.revealed,
	}
	return v
}
