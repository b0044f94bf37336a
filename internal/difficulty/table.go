package difficulty

import (
	"fmt"

	"github.com/urben88/MindFlex/internal/model"
)

// Custom holds user-chosen bundles for the custom tier, keyed by activity.
type Custom struct {
	NBack         *NBackParams    `toml:"nback"`
	AudioNBack    *NBackParams    `toml:"audio-nback"`
	PegPractice   *PegParams      `toml:"peg-practice"`
	Sequence      *SequenceParams `toml:"sequence"`
	EchoSequence  *EchoParams     `toml:"echo-sequence"`
	MemoryMatch   *MemoryParams   `toml:"memory"`
	Stroop        *StroopParams   `toml:"stroop"`
	Snapshot      *SnapshotParams `toml:"snapshot"`
	StoryListener *StoryParams    `toml:"story-listener"`
}

type tiers [3]Bundle

var table = map[model.ActivityID]tiers{
	model.NBack: {
		NBackParams{N: 1, IntervalMs: 2500, TotalTurns: 15, Multiplier: 1},
		NBackParams{N: 2, IntervalMs: 2000, TotalTurns: 20, Multiplier: 1.5},
		NBackParams{N: 3, IntervalMs: 1500, TotalTurns: 25, Multiplier: 2.5},
	},
	model.AudioNBack: {
		NBackParams{N: 1, IntervalMs: 3000, TotalTurns: 15, Multiplier: 1.2},
		NBackParams{N: 2, IntervalMs: 2500, TotalTurns: 20, Multiplier: 1.8},
		NBackParams{N: 3, IntervalMs: 2000, TotalTurns: 25, Multiplier: 3.0},
	},
	model.PegPractice: {
		PegParams{MaxNumber: 20, Rounds: 5, RoundTimeSec: 0, Multiplier: 1},
		PegParams{MaxNumber: 50, Rounds: 10, RoundTimeSec: 20, Multiplier: 1.5},
		PegParams{MaxNumber: 100, Rounds: 15, RoundTimeSec: 12, Multiplier: 2.5},
	},
	model.Sequence: {
		SequenceParams{StartLength: 3, DisplayMs: 1200, Multiplier: 1},
		SequenceParams{StartLength: 4, DisplayMs: 1000, Multiplier: 1.5},
		SequenceParams{StartLength: 5, DisplayMs: 800, Multiplier: 2},
	},
	model.EchoSequence: {
		EchoParams{StartLength: 3, SpeechRate: 0.8, Multiplier: 1.2},
		EchoParams{StartLength: 4, SpeechRate: 1.0, Multiplier: 1.7},
		EchoParams{StartLength: 5, SpeechRate: 1.3, Multiplier: 2.5},
	},
	model.MemoryMatch: {
		MemoryParams{PairCount: 6, PreviewMs: 3000, Multiplier: 1},
		MemoryParams{PairCount: 10, PreviewMs: 1500, Multiplier: 1.5},
		MemoryParams{PairCount: 15, PreviewMs: 0, Multiplier: 2},
	},
	model.Stroop: {
		StroopParams{TimeLimitSec: 45, ConflictProbability: 0.3, Multiplier: 1},
		StroopParams{TimeLimitSec: 30, ConflictProbability: 0.5, Multiplier: 1.5},
		StroopParams{TimeLimitSec: 20, ConflictProbability: 0.8, Multiplier: 2},
	},
	model.Snapshot: {
		SnapshotParams{ItemsCount: 4, MemorizeMs: 5000, Rounds: 5, Multiplier: 1},
		SnapshotParams{ItemsCount: 7, MemorizeMs: 4000, Rounds: 7, Multiplier: 1.5},
		SnapshotParams{ItemsCount: 12, MemorizeMs: 3000, Rounds: 10, Multiplier: 2},
	},
	model.StoryListener: {
		StoryParams{StoryLengthWords: 40, Complexity: ComplexitySimple, Multiplier: 1},
		StoryParams{StoryLengthWords: 80, Complexity: ComplexitySimple, Multiplier: 1.5},
		StoryParams{StoryLengthWords: 120, Complexity: ComplexityInference, Multiplier: 2},
	},
}

// Lookup returns the validated bundle for an activity and tier. The custom
// tier reads from custom, which may be nil for the table tiers.
func Lookup(id model.ActivityID, tier model.Tier, custom *Custom) (Bundle, error) {
	row, ok := table[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownActivity, id)
	}
	var b Bundle
	switch tier {
	case model.TierEasy:
		b = row[0]
	case model.TierMedium:
		b = row[1]
	case model.TierHard:
		b = row[2]
	case model.TierCustom:
		b = custom.bundle(id)
		if b == nil {
			return nil, fmt.Errorf("%w: no custom bundle configured for %s", ErrInvalidBundle, id)
		}
	default:
		return nil, fmt.Errorf("%w: unknown tier %q", ErrInvalidBundle, tier)
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%s/%s: %w", id, tier, err)
	}
	return b, nil
}

// ApplyMultiplier scales a bundle's score multiplier by factor. Factors <= 0 are ignored.
func ApplyMultiplier(b Bundle, factor float64) Bundle {
	if !(factor > 0) || factor == 1 {
		return b
	}
	switch p := b.(type) {
	case NBackParams:
		p.Multiplier *= factor
		return p
	case SequenceParams:
		p.Multiplier *= factor
		return p
	case EchoParams:
		p.Multiplier *= factor
		return p
	case StroopParams:
		p.Multiplier *= factor
		return p
	case MemoryParams:
		p.Multiplier *= factor
		return p
	case SnapshotParams:
		p.Multiplier *= factor
		return p
	case PegParams:
		p.Multiplier *= factor
		return p
	case StoryParams:
		p.Multiplier *= factor
		return p
	}
	return b
}

func (c *Custom) bundle(id model.ActivityID) Bundle {
	if c == nil {
		return nil
	}
	switch id {
	case model.NBack:
		return deref(c.NBack)
	case model.AudioNBack:
		return deref(c.AudioNBack)
	case model.PegPractice:
		return deref(c.PegPractice)
	case model.Sequence:
		return deref(c.Sequence)
	case model.EchoSequence:
		return deref(c.EchoSequence)
	case model.MemoryMatch:
		return deref(c.MemoryMatch)
	case model.Stroop:
		return deref(c.Stroop)
	case model.Snapshot:
		return deref(c.Snapshot)
	case model.StoryListener:
		return deref(c.StoryListener)
	}
	return nil
}

func deref[T Bundle](p *T) Bundle {
	if p == nil {
		return nil
	}
	return *p
}
