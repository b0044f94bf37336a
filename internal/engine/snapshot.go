package engine

import (
	"fmt"
	"time"

	"github.com/urben88/MindFlex/internal/difficulty"
	"github.com/urben88/MindFlex/internal/generator"
)

// Scene vocabulary.
var (
	SnapshotIcons  = []string{"triangle", "circle", "square", "star", "heart", "cloud", "sun", "moon", "bolt", "smile"}
	SnapshotColors = []string{"red", "blue", "green", "yellow", "purple"}
)

// SnapshotCells is the number of grid positions a scene can use.
const SnapshotCells = 16

const (
	snapshotBase = 100
	snapshotHold = 1500 * time.Millisecond
)

// QuestionKind selects what a snapshot question asks about.
type QuestionKind int

// Question kinds.
const (
	AskPresence QuestionKind = iota
	AskColor
)

// SnapshotView is the scene-recall part of a View. Scene is only set while
// memorizing. Options index SnapshotIcons for presence questions and
// SnapshotColors for color questions.
type SnapshotView struct {
	Scene    []generator.SceneItem
	Kind     QuestionKind
	Prompt   string
	Options  []int
	Answer   int
	Revealed bool
}

// snapshot runs fixed rounds of memorize-then-ask. Wrong answers only cost
// the round. Accuracy is correct rounds over rounds.
type snapshot struct {
	*session
	p       difficulty.SnapshotParams
	round   int
	correct int
	scene   []generator.SceneItem
	kind    QuestionKind
	prompt  string
	options []int
	answer  int
}

func newSnapshot(s *session, p difficulty.SnapshotParams) *snapshot {
	return &snapshot{session: s, p: p}
}

func (e *snapshot) Start() error {
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

func (e *snapshot) next() {
	e.round++
	e.feedback = FeedbackNone
	e.scene = e.opts.Rand.Scene(e.p.ItemsCount, len(SnapshotIcons), len(SnapshotColors), SnapshotCells)
	if e.p.MemorizeMs == 0 {
		e.ask()
		return
	}
	e.phase = PhasePresenting
	e.after(ms(e.p.MemorizeMs), e.ask)
}

func (e *snapshot) ask() {
	e.phase = PhaseAwaitingInput
	rnd := e.opts.Rand
	unique := uniqueIcons(e.scene)
	absent := absentIcons(e.scene)
	if len(unique) > 0 && (len(absent) == 0 || rnd.Intn(2) == 1) {
		item := unique[rnd.Intn(len(unique))]
		e.kind = AskColor
		e.prompt = fmt.Sprintf("What color was the %s?", SnapshotIcons[item.Icon])
		others := make([]int, 0, len(SnapshotColors)-1)
		for c := range SnapshotColors {
			if c != item.Color {
				others = append(others, c)
			}
		}
		rnd.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
		e.options = append([]int{item.Color}, others[:min(3, len(others))]...)
		rnd.Shuffle(len(e.options), func(i, j int) { e.options[i], e.options[j] = e.options[j], e.options[i] })
		e.answer = item.Color
		return
	}
	target := e.scene[rnd.Intn(len(e.scene))].Icon
	rnd.Shuffle(len(absent), func(i, j int) { absent[i], absent[j] = absent[j], absent[i] })
	if len(absent) > 3 {
		absent = absent[:3]
	}
	e.kind = AskPresence
	e.prompt = "Which of these objects was in the scene?"
	e.options = append([]int{target}, absent...)
	rnd.Shuffle(len(e.options), func(i, j int) { e.options[i], e.options[j] = e.options[j], e.options[i] })
	e.answer = target
}

func (e *snapshot) Submit(in Input) error {
	e.mu.Lock()
	if err := e.accepting(); err != nil {
		e.mu.Unlock()
		return err
	}
	if in.Kind != InputChoice {
		e.mu.Unlock()
		return ErrUnsupportedInput
	}
	if in.Value < 0 || in.Value >= len(e.options) {
		e.mu.Unlock()
		return ErrInvalidInput
	}
	if e.options[in.Value] == e.answer {
		e.award(snapshotBase)
		e.correct++
	} else {
		e.feedback = FeedbackWrong
	}
	e.phase = PhaseFeedback
	e.after(snapshotHold, func() {
		if e.round >= e.p.Rounds {
			e.finish(Ratio(e.correct, e.p.Rounds), 1)
			return
		}
		e.next()
	})
	e.mu.Unlock()
	e.flush()
	return nil
}

func (e *snapshot) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.baseView()
	v.Round = e.round
	v.Rounds = e.p.Rounds
	v.Level = 1
	d := SnapshotView{Kind: e.kind, Answer: -1}
	switch e.phase {
	case PhasePresenting:
		d.Scene = append([]generator.SceneItem(nil), e.scene...)
	case PhaseAwaitingInput, PhaseFeedback:
		d.Prompt = e.prompt
		d.Options = append([]int(nil), e.options...)
		if e.phase == PhaseFeedback {
			d.Answer = e.answer
			d.Revealed = true
		}
	}
	v.Detail = d
	return v
}

func uniqueIcons(scene []generator.SceneItem) []generator.SceneItem {
	counts := map[int]int{}
	for _, it := range scene {
		counts[it.Icon]++
	}
	var out []generator.SceneItem
	for _, it := range scene {
		if counts[it.Icon] == 1 {
			out = append(out, it)
		}
	}
	return out
}

func absentIcons(scene []generator.SceneItem) []int {
	present := map[int]bool{}
	for _, it := range scene {
		present[it.Icon] = true
	}
	var out []int
	for icon := range SnapshotIcons {
		if !present[icon] {
			out = append(out, icon)
		}
	}
	return out
}
