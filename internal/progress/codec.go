package progress

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/urben88/MindFlex/internal/model"
)

// SchemaVersion is the version written into every persisted snapshot.
const SchemaVersion = 1

type envelope struct {
	Version int `json:"version"`
	model.Progress
}

// stored mirrors the persisted shape with optional fields so that
// partially written snapshots can be merged over defaults.
type stored struct {
	Version       int                               `json:"version"`
	DailyStreak   *int                              `json:"dailyStreak"`
	LastVisitDate *string                           `json:"lastVisitDate"`
	Stats         map[model.ActivityID]*storedStats `json:"statsByActivity"`
	History       []model.Result                    `json:"history"`
	Settings      *storedSettings                   `json:"settings"`
}

type storedStats struct {
	Plays       *int     `json:"playsCount"`
	HighScore   *int     `json:"highScore"`
	AvgAccuracy *float64 `json:"avgAccuracy"`
	LastPlayed  *int64   `json:"lastPlayedTimestamp"`
}

type storedSettings struct {
	SoundEnabled         *bool    `json:"soundEnabled"`
	DarkMode             *bool    `json:"darkMode"`
	DifficultyMultiplier *float64 `json:"difficultyMultiplier"`
}

// Encode serializes a snapshot with the current schema version.
func Encode(snap model.Progress) ([]byte, error) {
	data, err := json.Marshal(envelope{Version: SchemaVersion, Progress: snap})
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a persisted snapshot and merges it over the defaults field
// by field. Records without a version are read as version 1.
func Decode(data []byte) (model.Progress, error) {
	var rec stored
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.DefaultProgress(), fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if rec.Version > SchemaVersion {
		return model.DefaultProgress(), fmt.Errorf("unsupported snapshot version %d", rec.Version)
	}

	snap := model.DefaultProgress()
	if rec.DailyStreak != nil && *rec.DailyStreak >= 0 {
		snap.DailyStreak = *rec.DailyStreak
	}
	if rec.LastVisitDate != nil {
		snap.LastVisitDate = *rec.LastVisitDate
	}
	for id, st := range rec.Stats {
		if st == nil {
			continue
		}
		snap.Stats[id] = st.merge(snap.Stats[id])
	}
	for _, r := range rec.History {
		if len(snap.History) == model.HistoryLimit {
			break
		}
		if r.Score < 0 || r.Accuracy < 0 || r.Accuracy > 1 {
			continue
		}
		snap.History = append(snap.History, r)
	}
	if rec.Settings != nil {
		snap.Settings = rec.Settings.merge(snap.Settings)
	}
	return snap, nil
}

func (s *storedStats) merge(base model.ActivityStats) model.ActivityStats {
	if s.Plays != nil && *s.Plays >= 0 {
		base.Plays = *s.Plays
	}
	if s.HighScore != nil && *s.HighScore >= 0 {
		base.HighScore = *s.HighScore
	}
	if s.AvgAccuracy != nil {
		base.AvgAccuracy = clamp01(*s.AvgAccuracy)
	}
	if s.LastPlayed != nil && *s.LastPlayed >= 0 {
		base.LastPlayed = *s.LastPlayed
	}
	return base
}

func (s *storedSettings) merge(base model.Settings) model.Settings {
	if s.SoundEnabled != nil {
		base.SoundEnabled = *s.SoundEnabled
	}
	if s.DarkMode != nil {
		base.DarkMode = *s.DarkMode
	}
	if s.DifficultyMultiplier != nil && *s.DifficultyMultiplier > 0 {
		base.DifficultyMultiplier = *s.DifficultyMultiplier
	}
	return base
}
