package content

import (
	"context"
	"fmt"
	"math"

	"github.com/urben88/MindFlex/internal/difficulty"
	"github.com/urben88/MindFlex/internal/generator"
	"github.com/urben88/MindFlex/internal/model"
)

// Feedback texts used when no provider answers.
const (
	errorFeedback = "Keep going!"
	emptyFeedback = "Good job!"
)

var fallbackContent = map[ExerciseType]ExerciseContent{
	TypeVisualization: {
		Instruction: "Basic memory palace",
		Steps:       []string{"Picture the front door of your home.", "Place a giant object there.", "Step inside and place another one."},
		Items:       []string{"Pink elephant", "Clock"},
		Example:     "Imagine the elephant blocking the door.",
		Mechanic:    MechanicTimer,
	},
	TypeAssociation: {
		Instruction: "Creative linking",
		Steps:       []string{"Read the words.", "Build a mental image that joins them.", "Make it absurd."},
		Items:       []string{"Banana", "Car"},
		Example:     "A car rolling on banana wheels.",
		Mechanic:    MechanicInput,
	},
	TypeObservation: {
		Instruction: "Look, close, describe",
		Steps:       []string{"Look around the room for thirty seconds.", "Close your eyes.", "List every object you can recall with its colour."},
		Items:       []string{"Window", "Lamp", "Book", "Mug"},
		Example:     "A green mug on the left of the desk, under the lamp.",
		Mechanic:    MechanicFlip,
	},
	TypeAuditory: {
		Instruction: "Hear it, see it",
		Steps:       []string{"Listen to the list once.", "Turn each word into a vivid picture.", "Repeat the list in order."},
		Items:       []string{"River", "Violin", "Candle", "Horse"},
		Example:     "A violin floating down a river, lit by a candle on a horse's back.",
		Mechanic:    MechanicAudioList,
	},
	TypeEncoding: {
		Instruction: "Chain into a story",
		Steps:       []string{"Read the words.", "Weave them into one short story.", "Wait a minute, then retell it."},
		Items:       []string{"Key", "Cloud", "Bicycle", "Lemon"},
		Example:     "A key fell from a cloud onto a bicycle loaded with lemons.",
		Mechanic:    MechanicInput,
	},
}

var fallbackStories = []model.Story{
	{
		Text:         "In a small coastal town, an old clockmaker named Elias repaired a tower clock that had not worked for fifty years. When it struck twelve, instead of bells, soap bubbles poured out and covered the whole square. The children laughed while the adults remembered that time does not always have to be serious.",
		Question:     "What came out of the clock when it struck twelve?",
		Options:      []string{"Golden bells", "Soap bubbles", "Mechanical birds", "Black smoke"},
		CorrectIndex: 1,
	},
	{
		Text:         "Maria trained every morning for the marathon. One day she found an abandoned dog that started running with her. She named him Rayo. In the final race Maria did not take first place, but she crossed the finish line with Rayo at her side and got more applause than the winner.",
		Question:     "What was Maria's main achievement according to the story?",
		Options:      []string{"Winning first place", "Finding a treasure", "Crossing the finish line with her dog", "Breaking a world record"},
		CorrectIndex: 2,
	},
}

// Local answers every request from static content.
type Local struct {
	rnd *generator.Generator
}

// NewLocal returns a local provider. A nil generator always picks the first
// fallback story.
func NewLocal(rnd *generator.Generator) *Local {
	return &Local{rnd: rnd}
}

// Content returns the fallback body for an exercise type. Unknown types get
// the visualization body.
func (l *Local) Content(t ExerciseType) ExerciseContent {
	c, ok := fallbackContent[t]
	if !ok {
		c = fallbackContent[TypeVisualization]
	}
	c.Steps = append([]string(nil), c.Steps...)
	c.Items = append([]string(nil), c.Items...)
	return c
}

// PickStory returns one of the fallback stories.
func (l *Local) PickStory() model.Story {
	i := 0
	if l.rnd != nil {
		i = l.rnd.Intn(len(fallbackStories))
	}
	s := fallbackStories[i]
	s.Options = append([]string(nil), s.Options...)
	return s
}

// Praise is the feedback line shown when no provider is configured.
func (l *Local) Praise(accuracy float64) string {
	return fmt.Sprintf("Well done! Accuracy: %d%%.", int(math.Round(accuracy*100)))
}

func (l *Local) ExerciseContent(_ context.Context, ex Exercise) (ExerciseContent, error) {
	return l.Content(ex.Type), nil
}

func (l *Local) Story(context.Context, model.Tier, difficulty.StoryParams) (model.Story, error) {
	return l.PickStory(), nil
}

func (l *Local) Feedback(_ context.Context, _ string, _ int, accuracy float64) (string, error) {
	return l.Praise(accuracy), nil
}
