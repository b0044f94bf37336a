// Package engine runs game sessions as timer-driven state machines that end
// in a single model.Result.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/urben88/MindFlex/internal/difficulty"
	"github.com/urben88/MindFlex/internal/generator"
	"github.com/urben88/MindFlex/internal/model"
)

// Input contract errors.
var (
	ErrNotStarted       = errors.New("session not started")
	ErrAlreadyStarted   = errors.New("session already started")
	ErrFinished         = errors.New("session finished")
	ErrNotAccepting     = errors.New("session is not accepting input")
	ErrUnsupportedInput = errors.New("input not supported by this game")
	ErrInvalidInput     = errors.New("input value out of range")
	ErrCannotFinish     = errors.New("game cannot be ended early")
)

// Phase is the state of a session.
type Phase string

// Session phases.
const (
	PhaseIdle          Phase = "idle"
	PhasePresenting    Phase = "presenting"
	PhaseAwaitingInput Phase = "awaiting-input"
	PhaseFeedback      Phase = "feedback"
	PhaseFinished      Phase = "finished"
)

// Feedback marks the outcome of the latest evaluated response.
type Feedback int

// Feedback values.
const (
	FeedbackNone Feedback = iota
	FeedbackCorrect
	FeedbackWrong
)

// InputKind selects the kind of user action.
type InputKind int

// Input kinds.
const (
	InputMatch InputKind = iota + 1
	InputDigit
	InputDelete
	InputChoice
	InputCard
	InputWords
	InputContinue
)

// Input is one discrete user action.
type Input struct {
	Kind  InputKind
	Value int
	Words []string
}

// Match reports a perceived N-back match.
func Match() Input { return Input{Kind: InputMatch} }

// Digit enters one recalled digit.
func Digit(d int) Input { return Input{Kind: InputDigit, Value: d} }

// Delete removes the last entered digit.
func Delete() Input { return Input{Kind: InputDelete} }

// Choice selects a multiple-choice option by index.
func Choice(i int) Input { return Input{Kind: InputChoice, Value: i} }

// Card flips the card at index i.
func Card(i int) Input { return Input{Kind: InputCard, Value: i} }

// Words submits free-text answers.
func Words(words ...string) Input { return Input{Kind: InputWords, Words: words} }

// Continue skips ahead where a game allows it.
func Continue() Input { return Input{Kind: InputContinue} }

// Engine is one running game session.
type Engine interface {
	ID() string
	Activity() model.ActivityID
	// Start generates stimuli and leaves Idle.
	Start() error
	// Submit evaluates one user action.
	Submit(in Input) error
	// Finish ends an open-ended session early and emits its Result.
	Finish() error
	// Cancel abandons the session. No Result is emitted.
	Cancel()
	// Finished reports that the session is done, completed or cancelled.
	Finished() bool
	Result() (model.Result, bool)
	View() View
}

// Speaker reads text aloud. Implementations must return when ctx is done.
type Speaker interface {
	Speak(ctx context.Context, text string, rate float64) error
}

// StorySource supplies story-listener content. It must always return a
// playable story within a bounded time; generated reports whether it came
// from the remote provider.
type StorySource interface {
	Story(ctx context.Context, tier model.Tier, p difficulty.StoryParams) (story model.Story, generated bool)
}

// Options wires the collaborators of a session.
type Options struct {
	Scheduler Scheduler
	Rand      *generator.Generator
	Speaker   Speaker
	Stories   StorySource
	Logger    zerolog.Logger
	// OnUpdate runs after every state change, outside the session lock.
	OnUpdate func()
	// OnResult runs exactly once when the session finishes.
	OnResult func(model.Result)
	NewID    func() string
}

// New validates the bundle and builds the engine for id.
func New(id model.ActivityID, tier model.Tier, b difficulty.Bundle, opts Options) (Engine, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: missing bundle for %s", difficulty.ErrInvalidBundle, id)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = WallClock()
	}
	if opts.Rand == nil {
		opts.Rand = generator.New()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	s := newSession(id, tier, b.ScoreMultiplier(), opts)

	mismatch := fmt.Errorf("%w: %T cannot drive %s", difficulty.ErrInvalidBundle, b, id)
	switch id {
	case model.NBack, model.AudioNBack:
		p, ok := b.(difficulty.NBackParams)
		if !ok {
			return nil, mismatch
		}
		variant := visualNBack
		if id == model.AudioNBack {
			variant = audioNBack
		}
		return newNBack(s, p, variant), nil
	case model.Sequence:
		p, ok := b.(difficulty.SequenceParams)
		if !ok {
			return nil, mismatch
		}
		return newVisualRecall(s, p), nil
	case model.EchoSequence:
		p, ok := b.(difficulty.EchoParams)
		if !ok {
			return nil, mismatch
		}
		return newEchoRecall(s, p), nil
	case model.Stroop:
		p, ok := b.(difficulty.StroopParams)
		if !ok {
			return nil, mismatch
		}
		return newStroop(s, p), nil
	case model.MemoryMatch:
		p, ok := b.(difficulty.MemoryParams)
		if !ok {
			return nil, mismatch
		}
		return newMemory(s, p), nil
	case model.Snapshot:
		p, ok := b.(difficulty.SnapshotParams)
		if !ok {
			return nil, mismatch
		}
		return newSnapshot(s, p), nil
	case model.PegPractice:
		p, ok := b.(difficulty.PegParams)
		if !ok {
			return nil, mismatch
		}
		return newPeg(s, p), nil
	case model.StoryListener:
		p, ok := b.(difficulty.StoryParams)
		if !ok {
			return nil, mismatch
		}
		if opts.Stories == nil {
			return nil, fmt.Errorf("%w: %s needs a story source", difficulty.ErrInvalidBundle, id)
		}
		return newStory(s, p), nil
	}
	return nil, fmt.Errorf("%w: %q", model.ErrUnknownActivity, id)
}
