// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"time"
)

// HistoryLimit caps the number of results kept in a snapshot history.
const HistoryLimit = 50

// DateLayout is the calendar date format used for streak tracking.
const DateLayout = "2006-01-02"

// ErrUnknownActivity reports an activity id outside the catalog.
var ErrUnknownActivity = errors.New("unknown activity")

// Tier selects a difficulty parameter bundle.
type Tier string

// Difficulty tiers.
const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
	TierCustom Tier = "custom"
)

// Tiers lists the tiers in presentation order.
var Tiers = []Tier{TierEasy, TierMedium, TierHard, TierCustom}

// ParseTier validates a tier name.
func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q (want easy, medium, hard or custom)", s)
}

// Result summarizes one completed session. It is never mutated after emission.
type Result struct {
	SessionID       string     `json:"sessionId,omitempty"`
	ActivityID      ActivityID `json:"activityId"`
	Score           int        `json:"score"`
	Accuracy        float64    `json:"accuracy"`
	MaxLevel        int        `json:"maxLevel"`
	DurationSeconds float64    `json:"durationSeconds"`
	Timestamp       int64      `json:"timestamp"`
	Difficulty      Tier       `json:"difficultyTier"`
}

// Time returns the emission time of the result.
func (r Result) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// ActivityStats aggregates every result recorded for one activity.
type ActivityStats struct {
	Plays       int     `json:"playsCount"`
	HighScore   int     `json:"highScore"`
	AvgAccuracy float64 `json:"avgAccuracy"`
	LastPlayed  int64   `json:"lastPlayedTimestamp"`
}

// Settings holds user preferences.
type Settings struct {
	SoundEnabled         bool    `json:"soundEnabled"`
	DarkMode             bool    `json:"darkMode"`
	DifficultyMultiplier float64 `json:"difficultyMultiplier"`
}

// DefaultSettings returns the first-run preferences.
func DefaultSettings() Settings {
	return Settings{SoundEnabled: true, DarkMode: false, DifficultyMultiplier: 1}
}

// Progress is the complete persisted progress state.
type Progress struct {
	DailyStreak   int                          `json:"dailyStreak"`
	LastVisitDate string                       `json:"lastVisitDate"`
	Stats         map[ActivityID]ActivityStats `json:"statsByActivity"`
	History       []Result                     `json:"history"`
	Settings      Settings                     `json:"settings"`
}

// DefaultProgress returns the all-zero state with an entry for every known activity.
func DefaultProgress() Progress {
	stats := make(map[ActivityID]ActivityStats, len(Activities))
	for _, id := range Activities {
		stats[id] = ActivityStats{}
	}
	return Progress{
		Stats:    stats,
		History:  []Result{},
		Settings: DefaultSettings(),
	}
}

// Clone returns a deep copy.
func (s Progress) Clone() Progress {
	out := s
	out.Stats = make(map[ActivityID]ActivityStats, len(s.Stats))
	for id, st := range s.Stats {
		out.Stats[id] = st
	}
	out.History = append([]Result{}, s.History...)
	return out
}

// Story is one listening-comprehension item.
type Story struct {
	Text         string   `json:"text"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// Playable reports whether the story can be asked as a question.
func (s Story) Playable() bool {
	return s.Text != "" && s.Question != "" && len(s.Options) >= 2 &&
		s.CorrectIndex >= 0 && s.CorrectIndex < len(s.Options)
}
