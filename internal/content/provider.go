// Package content supplies generated text for exercises, the story listener
// and end-of-game feedback. A remote provider is optional; every request
// has a deterministic local answer when it is missing, slow or broken.
package content

import (
	"context"
	"errors"

	"github.com/urben88/MindFlex/internal/difficulty"
	"github.com/urben88/MindFlex/internal/model"
)

// ErrUnavailable reports that no remote provider is configured.
var ErrUnavailable = errors.New("content provider unavailable")

// Mechanic is the interaction an exercise asks for.
type Mechanic string

const (
	MechanicTimer     Mechanic = "timer"
	MechanicInput     Mechanic = "input"
	MechanicFlip      Mechanic = "flip"
	MechanicAudioList Mechanic = "audio_list"
)

// ExerciseContent is the structured body of a guided exercise.
type ExerciseContent struct {
	Instruction string   `json:"instruction"`
	Steps       []string `json:"steps"`
	Items       []string `json:"items"`
	Example     string   `json:"example"`
	Mechanic    Mechanic `json:"mechanic"`
}

func (c ExerciseContent) usable() bool {
	return c.Instruction != "" && len(c.Steps) > 0
}

// Provider generates content. Implementations must honour ctx.
type Provider interface {
	ExerciseContent(ctx context.Context, ex Exercise) (ExerciseContent, error)
	Story(ctx context.Context, tier model.Tier, p difficulty.StoryParams) (model.Story, error)
	Feedback(ctx context.Context, activity string, score int, accuracy float64) (string, error)
}
