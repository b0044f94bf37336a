package content

import (
	"errors"
	"fmt"

	"github.com/urben88/MindFlex/internal/model"
)

// ErrUnknownExercise reports an exercise or guide id that is not in the catalog.
var ErrUnknownExercise = errors.New("unknown exercise")

// ExerciseType groups mnemonic exercises by the technique they train.
type ExerciseType string

const (
	TypeVisualization ExerciseType = "visualization"
	TypeAssociation   ExerciseType = "association"
	TypeObservation   ExerciseType = "observation"
	TypeAuditory      ExerciseType = "auditory"
	TypeEncoding      ExerciseType = "encoding"
)

// Exercise is a guided mnemonic exercise template.
type Exercise struct {
	ID          string
	Title       string
	Type        ExerciseType
	Level       string
	Description string
	Benefits    string
}

var exercises = []Exercise{
	{"ex1", "Memory Palace", TypeVisualization, "hard", "Build a mental space.", "Improves spatial memory and the recall of long lists."},
	{"ex2", "Absurd Association", TypeAssociation, "medium", "Link unrelated concepts.", "Encourages creativity and strengthens new neural connections."},
	{"ex3", "Active Observation", TypeObservation, "easy", "Notice the details around you.", "Trains mindful attention and short-term visual memory."},
	{"ex4", "Remembering Names", TypeAssociation, "medium", "A technique for faces.", "Practical social value and stronger associative memory."},
	{"ex5", "Shopping List", TypeAssociation, "easy", "A chain of objects.", "A basic mnemonic technique for everyday use."},
	{"ex6", "Mental Photo", TypeObservation, "easy", "Capture a mental image.", "Improves iconic (immediate visual) memory."},
	{"ex7", "Listen and Visualize", TypeAuditory, "medium", "Vividly picture what you hear.", "Connects the auditory and visual cortices for deeper encoding."},
	{"ex8", "Auditory Loci", TypeEncoding, "hard", "Place heard words in locations.", "An advanced dual-coding technique for speeches or instructions."},
	{"ex9", "Instant Story", TypeEncoding, "medium", "Build a narrative from random words.", "Improves verbal fluency and working memory."},
	{"ex10", "Auditory Chunking", TypeAuditory, "easy", "Group the numbers you hear.", "A core strategy for holding more digits at once."},
	{"ex11", "Intentional Listening", TypeAuditory, "medium", "Pick out specific information.", "Trains selective attention in noisy environments."},
	{"ex12", "Delayed Recall", TypeEncoding, "hard", "Remember after a pause.", "Strengthens long-term memory consolidation."},
}

// Exercises returns the exercise catalog in display order.
func Exercises() []Exercise {
	return append([]Exercise(nil), exercises...)
}

// ExerciseByID looks up a catalog exercise.
func ExerciseByID(id string) (Exercise, error) {
	for _, ex := range exercises {
		if ex.ID == id {
			return ex, nil
		}
	}
	return Exercise{}, fmt.Errorf("%w: %q", ErrUnknownExercise, id)
}

// Guide is a themed training pack that points at games and exercises.
type Guide struct {
	ID         string
	Title      string
	Question   string
	Summary    string
	Science    string
	Activities []model.ActivityID
	Exercises  []string
}

var guides = []Guide{
	{
		ID:         "focus",
		Title:      "Steel Attention",
		Question:   "Do you get distracted easily?",
		Summary:    "A program that strengthens inhibitory control and your ability to stay focused in noisy settings.",
		Science:    "Distraction is often a failure of inhibition. These exercises train the brain to ignore what is irrelevant.",
		Activities: []model.ActivityID{model.Stroop, model.AudioNBack},
		Exercises:  []string{"ex9", "ex3"},
	},
	{
		ID:         "short-term",
		Title:      "Working Memory",
		Question:   "Do you forget what you were about to do?",
		Summary:    "Exercises that widen your mental RAM so you can hold more variables in mind at the same time.",
		Science:    "Working memory is the mind's workbench. Like a muscle, it expands under progressive load.",
		Activities: []model.ActivityID{model.NBack, model.Sequence},
		Exercises:  []string{"ex5", "ex10"},
	},
	{
		ID:         "listening",
		Title:      "Deep Listening",
		Question:   "Do people talk to you and nothing sticks?",
		Summary:    "Sharply improves how you process and store spoken information in real time.",
		Science:    "Often it is not bad memory but bad encoding. These games force you to process audio actively.",
		Activities: []model.ActivityID{model.StoryListener, model.EchoSequence},
		Exercises:  []string{"ex7", "ex11"},
	},
	{
		ID:         "names",
		Title:      "Faces and Names",
		Question:   "Do you forget what they are called?",
		Summary:    "Visual and verbal association techniques that anchor identities in long-term memory.",
		Science:    "Remembering names means tying abstract information (the name) to visual information (the face). Creative association is the key.",
		Activities: []model.ActivityID{model.MemoryMatch, model.Snapshot},
		Exercises:  []string{"ex4", "ex2"},
	},
}

// Guides returns the guide packs.
func Guides() []Guide {
	return append([]Guide(nil), guides...)
}

// GuideByID looks up a guide pack.
func GuideByID(id string) (Guide, error) {
	for _, g := range guides {
		if g.ID == id {
			return g, nil
		}
	}
	return Guide{}, fmt.Errorf("%w: guide %q", ErrUnknownExercise, id)
}
