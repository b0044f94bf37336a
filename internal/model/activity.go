package model

import "fmt"

// ActivityID identifies a game.
type ActivityID string

// Known activities.
const (
	NBack         ActivityID = "nback"
	AudioNBack    ActivityID = "audio-nback"
	PegPractice   ActivityID = "peg-practice"
	Sequence      ActivityID = "sequence"
	EchoSequence  ActivityID = "echo-sequence"
	MemoryMatch   ActivityID = "memory"
	Stroop        ActivityID = "stroop"
	Snapshot      ActivityID = "snapshot"
	StoryListener ActivityID = "story-listener"
)

// Activities lists every known activity in catalog order.
var Activities = []ActivityID{
	NBack,
	AudioNBack,
	PegPractice,
	Sequence,
	EchoSequence,
	MemoryMatch,
	Stroop,
	Snapshot,
	StoryListener,
}

// Known reports whether id is in the catalog.
func (id ActivityID) Known() bool {
	for _, a := range Activities {
		if a == id {
			return true
		}
	}
	return false
}

// ParseActivity validates an activity id.
func ParseActivity(s string) (ActivityID, error) {
	id := ActivityID(s)
	if !id.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownActivity, s)
	}
	return id, nil
}

// ActivityInfo describes an activity for menus and summaries.
type ActivityInfo struct {
	ID          ActivityID
	Title       string
	Description string
	Science     string
}

var activityInfo = map[ActivityID]ActivityInfo{
	NBack: {
		ID: NBack, Title: "Visual N-Back",
		Description: "Does the square match the one N steps back?",
		Science:     "Working-memory updating: hold and refresh a moving window of positions.",
	},
	AudioNBack: {
		ID: AudioNBack, Title: "Audio N-Back",
		Description: "Spot repeated spoken letters N steps back.",
		Science:     "Phonological loop training with continuous updating.",
	},
	PegPractice: {
		ID: PegPractice, Title: "Peg Practice",
		Description: "Turn numbers into words with the phonetic peg code.",
		Science:     "Recoding abstract digits into concrete images improves recall.",
	},
	Sequence: {
		ID: Sequence, Title: "Visual Sequence",
		Description: "Memorize the order of the digits.",
		Science:     "Digit span grows with practice at the edge of capacity.",
	},
	EchoSequence: {
		ID: EchoSequence, Title: "Verbal Echo",
		Description: "Repeat the digit sequence you heard.",
		Science:     "Auditory span training for spoken instructions and numbers.",
	},
	MemoryMatch: {
		ID: MemoryMatch, Title: "Pairs",
		Description: "Find the matching cards.",
		Science:     "Visuospatial memory: binding identity to location.",
	},
	Stroop: {
		ID: Stroop, Title: "Stroop",
		Description: "Ignore the word, name the ink.",
		Science:     "Inhibitory control against an automatic reading response.",
	},
	Snapshot: {
		ID: Snapshot, Title: "Snapshot",
		Description: "Recall details of a fleeting scene.",
		Science:     "Iconic memory and attention to detail.",
	},
	StoryListener: {
		ID: StoryListener, Title: "Story Listener",
		Description: "Understand and remember a short story.",
		Science:     "Encoding connected speech into a situation model.",
	},
}

// Info returns catalog details for id. Unknown ids get a title equal to the id.
func Info(id ActivityID) ActivityInfo {
	if info, ok := activityInfo[id]; ok {
		return info
	}
	return ActivityInfo{ID: id, Title: string(id)}
}
