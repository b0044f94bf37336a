// Package difficulty maps activities and tiers to session parameter bundles.
package difficulty

import (
	"errors"
	"fmt"
)

// ErrInvalidBundle reports a parameter bundle that cannot drive a session.
var ErrInvalidBundle = errors.New("invalid parameter bundle")

// Bundle is the difficulty-dependent configuration of one session.
type Bundle interface {
	ScoreMultiplier() float64
	Validate() error
}

// NBackParams configures the visual and audio N-back games.
type NBackParams struct {
	N          int     `toml:"n"`
	IntervalMs int     `toml:"interval-ms"`
	TotalTurns int     `toml:"total-turns"`
	Multiplier float64 `toml:"multiplier"`
}

// SequenceParams configures visual sequence recall.
type SequenceParams struct {
	StartLength int     `toml:"start-length"`
	DisplayMs   int     `toml:"display-ms"`
	Multiplier  float64 `toml:"multiplier"`
}

// EchoParams configures spoken sequence recall.
type EchoParams struct {
	StartLength int     `toml:"start-length"`
	SpeechRate  float64 `toml:"speech-rate"`
	Multiplier  float64 `toml:"multiplier"`
}

// StroopParams configures the Stroop game.
type StroopParams struct {
	TimeLimitSec        int     `toml:"time-limit-sec"`
	ConflictProbability float64 `toml:"conflict-probability"`
	Multiplier          float64 `toml:"multiplier"`
}

// MemoryParams configures card matching. PreviewMs 0 skips the preview.
type MemoryParams struct {
	PairCount  int     `toml:"pair-count"`
	PreviewMs  int     `toml:"preview-ms"`
	Multiplier float64 `toml:"multiplier"`
}

// SnapshotParams configures scene recall.
type SnapshotParams struct {
	ItemsCount int     `toml:"items-count"`
	MemorizeMs int     `toml:"memorize-ms"`
	Rounds     int     `toml:"rounds"`
	Multiplier float64 `toml:"multiplier"`
}

// PegParams configures peg practice. RoundTimeSec 0 leaves rounds untimed.
type PegParams struct {
	MaxNumber    int     `toml:"max-number"`
	Rounds       int     `toml:"rounds"`
	RoundTimeSec int     `toml:"round-time-sec"`
	Multiplier   float64 `toml:"multiplier"`
}

// Complexity selects the kind of story question.
type Complexity string

// Story question complexities.
const (
	ComplexitySimple    Complexity = "simple"
	ComplexityInference Complexity = "inference"
)

// StoryParams configures the story listener.
type StoryParams struct {
	StoryLengthWords int        `toml:"story-length-words"`
	Complexity       Complexity `toml:"complexity"`
	Multiplier       float64    `toml:"multiplier"`
}

// MemoryFaces is the number of distinct card faces available.
const MemoryFaces = 18

func (p NBackParams) ScoreMultiplier() float64    { return p.Multiplier }
func (p SequenceParams) ScoreMultiplier() float64 { return p.Multiplier }
func (p EchoParams) ScoreMultiplier() float64     { return p.Multiplier }
func (p StroopParams) ScoreMultiplier() float64   { return p.Multiplier }
func (p MemoryParams) ScoreMultiplier() float64   { return p.Multiplier }
func (p SnapshotParams) ScoreMultiplier() float64 { return p.Multiplier }
func (p PegParams) ScoreMultiplier() float64      { return p.Multiplier }
func (p StoryParams) ScoreMultiplier() float64    { return p.Multiplier }

func (p NBackParams) Validate() error {
	return check(
		positive("n", p.N),
		positive("interval-ms", p.IntervalMs),
		positive("total-turns", p.TotalTurns),
		multiplier(p.Multiplier),
	)
}

func (p SequenceParams) Validate() error {
	return check(
		positive("start-length", p.StartLength),
		positive("display-ms", p.DisplayMs),
		multiplier(p.Multiplier),
	)
}

func (p EchoParams) Validate() error {
	var rate error
	if !(p.SpeechRate > 0) {
		rate = fmt.Errorf("speech-rate must be > 0, got %v", p.SpeechRate)
	}
	return check(
		positive("start-length", p.StartLength),
		rate,
		multiplier(p.Multiplier),
	)
}

func (p StroopParams) Validate() error {
	return check(
		positive("time-limit-sec", p.TimeLimitSec),
		probability("conflict-probability", p.ConflictProbability),
		multiplier(p.Multiplier),
	)
}

func (p MemoryParams) Validate() error {
	var faces error
	if p.PairCount > MemoryFaces {
		faces = fmt.Errorf("pair-count must be <= %d, got %d", MemoryFaces, p.PairCount)
	}
	return check(
		positive("pair-count", p.PairCount),
		faces,
		nonNegative("preview-ms", p.PreviewMs),
		multiplier(p.Multiplier),
	)
}

func (p SnapshotParams) Validate() error {
	return check(
		positive("items-count", p.ItemsCount),
		nonNegative("memorize-ms", p.MemorizeMs),
		positive("rounds", p.Rounds),
		multiplier(p.Multiplier),
	)
}

func (p PegParams) Validate() error {
	return check(
		positive("max-number", p.MaxNumber),
		positive("rounds", p.Rounds),
		nonNegative("round-time-sec", p.RoundTimeSec),
		multiplier(p.Multiplier),
	)
}

func (p StoryParams) Validate() error {
	var complexity error
	if p.Complexity != ComplexitySimple && p.Complexity != ComplexityInference {
		complexity = fmt.Errorf("complexity must be simple or inference, got %q", p.Complexity)
	}
	return check(
		positive("story-length-words", p.StoryLengthWords),
		complexity,
		multiplier(p.Multiplier),
	)
}

func check(errs ...error) error {
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBundle, err)
	}
	return nil
}

func positive(name string, v int) error {
	if v <= 0 {
		return fmt.Errorf("%s must be > 0, got %d", name, v)
	}
	return nil
}

func nonNegative(name string, v int) error {
	if v < 0 {
		return fmt.Errorf("%s must be >= 0, got %d", name, v)
	}
	return nil
}

func probability(name string, v float64) error {
	if !(v >= 0 && v <= 1) {
		return fmt.Errorf("%s must be in [0,1], got %v", name, v)
	}
	return nil
}

func multiplier(v float64) error {
	if !(v > 0) {
		return fmt.Errorf("multiplier must be > 0, got %v", v)
	}
	return nil
}
