package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/urben88/MindFlex/internal/model"
)

// Backend is durable storage for the single snapshot record.
type Backend interface {
	// LoadProgress returns the stored record, or nil when none exists.
	LoadProgress(ctx context.Context) ([]byte, error)
	// SaveProgress replaces the record. When appended is non-nil it is
	// logged in the same write.
	SaveProgress(ctx context.Context, data []byte, appended *model.Result) error
	// EraseProgress removes the record and the result log together.
	EraseProgress(ctx context.Context) error
}

// Store owns the in-memory snapshot and writes every mutation through to
// its Backend. Calls are serialized.
type Store struct {
	mu      sync.Mutex
	backend Backend
	snap    model.Progress
	now     func() time.Time
	log     zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the source of the local date used for streaks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger for storage warnings.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New returns a Store with the default snapshot. Call Load to read the
// persisted state.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		snap:    model.DefaultProgress(),
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted snapshot. Missing or unreadable data yields the
// defaults; read failures are logged, never returned.
func (s *Store) Load(ctx context.Context) model.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = model.DefaultProgress()
	data, err := s.backend.LoadProgress(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to read progress, using defaults")
		return s.snap.Clone()
	}
	if data == nil {
		return s.snap.Clone()
	}
	snap, err := Decode(data)
	if err != nil {
		s.log.Warn().Err(err).Msg("stored progress is corrupt, using defaults")
		return s.snap.Clone()
	}
	s.snap = snap
	return s.snap.Clone()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() model.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// LastResult returns the most recent result in history.
func (s *Store) LastResult() (model.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snap.History) == 0 {
		return model.Result{}, false
	}
	return s.snap.History[0], true
}

// RecordResult folds r into the snapshot and persists it before returning.
// On any error the in-memory state is left as it was.
func (s *Store) RecordResult(ctx context.Context, r model.Result) (model.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Fold(s.snap, r)
	if err != nil {
		s.log.Error().Err(err).
			Str("activity", string(r.ActivityID)).
			Int("score", r.Score).
			Msg("rejected result")
		return s.snap.Clone(), err
	}
	if err := s.persist(ctx, next, &r); err != nil {
		return s.snap.Clone(), err
	}
	s.snap = next
	return s.snap.Clone(), nil
}

// UpdateStreak records today's visit. It persists only when the snapshot
// changed.
func (s *Store) UpdateStreak(ctx context.Context) (model.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, changed := AdvanceStreak(s.snap, s.now())
	if !changed {
		return s.snap.Clone(), nil
	}
	if err := s.persist(ctx, next, nil); err != nil {
		return s.snap.Clone(), err
	}
	s.snap = next
	return s.snap.Clone(), nil
}

// ResetAll erases durable storage and returns the default snapshot.
func (s *Store) ResetAll(ctx context.Context) (model.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.EraseProgress(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to erase progress")
		return s.snap.Clone(), fmt.Errorf("failed to reset progress: %w", err)
	}
	s.snap = model.DefaultProgress()
	return s.snap.Clone(), nil
}

func (s *Store) persist(ctx context.Context, snap model.Progress, appended *model.Result) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := s.backend.SaveProgress(ctx, data, appended); err != nil {
		s.log.Warn().Err(err).Msg("failed to save progress")
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// MemoryBackend keeps the record in memory. It serves tests and runs where
// the database cannot be opened.
type MemoryBackend struct {
	mu      sync.Mutex
	data    []byte
	results []model.Result
	// FailWrites makes every write fail with ErrWriteFailed.
	FailWrites bool
}

// ErrWriteFailed is returned by a MemoryBackend with FailWrites set.
var ErrWriteFailed = errors.New("write failed")

var _ Backend = (*MemoryBackend)(nil)

// LoadProgress returns a copy of the stored record.
func (m *MemoryBackend) LoadProgress(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

// SaveProgress replaces the stored record.
func (m *MemoryBackend) SaveProgress(_ context.Context, data []byte, appended *model.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return ErrWriteFailed
	}
	m.data = append([]byte(nil), data...)
	if appended != nil {
		m.results = append(m.results, *appended)
	}
	return nil
}

// EraseProgress drops the record and the result log.
func (m *MemoryBackend) EraseProgress(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return ErrWriteFailed
	}
	m.data = nil
	m.results = nil
	return nil
}

// Results returns the logged results, oldest first.
func (m *MemoryBackend) Results() []model.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Result(nil), m.results...)
}
