package engine

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/urben88/MindFlex/internal/model"
)

// View is a read-only picture of a session for rendering. Detail holds the
// game-specific part (NBackView, RecallView, ...).
type View struct {
	SessionID string
	Activity  model.ActivityID
	Phase     Phase
	Score     int
	Feedback  Feedback
	Round     int
	Rounds    int
	Level     int
	Detail    any
}

// session is the state and timeline shared by every game. All fields are
// guarded by mu; timer callbacks re-enter through after and deferred.
type session struct {
	mu       sync.Mutex
	id       string
	activity model.ActivityID
	tier     model.Tier
	mult     float64
	opts     Options

	phase     Phase
	score     int
	hits      int
	misses    int
	feedback  Feedback
	started   bool
	startedAt time.Time
	closed    bool

	timer Timer
	gen   uint64

	result  *model.Result
	emitted bool

	ctx    context.Context
	cancel context.CancelFunc
}

func newSession(id model.ActivityID, tier model.Tier, mult float64, opts Options) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		id:       opts.NewID(),
		activity: id,
		tier:     tier,
		mult:     mult,
		opts:     opts,
		phase:    PhaseIdle,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ID returns the session id carried by the Result.
func (s *session) ID() string { return s.id }

// Activity returns the game this session plays.
func (s *session) Activity() model.ActivityID { return s.activity }

// Finished reports whether the session no longer accepts input, either
// because it completed or because it was cancelled. Only a completed
// session has a Result.
func (s *session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == PhaseFinished || s.closed
}

// Result returns the emitted result, if any.
func (s *session) Result() (model.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return model.Result{}, false
	}
	return *s.result, true
}

// Finish is refused by fixed-length games.
func (s *session) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseFinished {
		return ErrFinished
	}
	return ErrCannotFinish
}

// Cancel abandons the session, stopping its timer and in-flight requests.
func (s *session) Cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.close()
	s.mu.Unlock()
	s.opts.Logger.Info().Str("session", s.id).Str("activity", string(s.activity)).Msg("session cancelled")
	s.flush()
}

// begin moves an idle session into play. Callers hold mu.
func (s *session) begin() error {
	if s.closed {
		return ErrFinished
	}
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true
	s.startedAt = s.opts.Scheduler.Now()
	s.opts.Logger.Info().
		Str("session", s.id).
		Str("activity", string(s.activity)).
		Str("difficulty", string(s.tier)).
		Msg("session started")
	return nil
}

// accepting checks that input may be evaluated now. Callers hold mu.
func (s *session) accepting() error {
	switch {
	case !s.started:
		return ErrNotStarted
	case s.phase == PhaseFinished || s.closed:
		return ErrFinished
	case s.phase != PhaseAwaitingInput:
		return ErrNotAccepting
	}
	return nil
}

// after replaces the active timer with fn due in d. Callers hold mu.
func (s *session) after(d time.Duration, fn func()) {
	s.disarm()
	if s.closed {
		return
	}
	s.timer = s.opts.Scheduler.AfterFunc(d, s.deferred(fn))
}

// disarm stops the active timer and invalidates pending callbacks. Callers
// hold mu.
func (s *session) disarm() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// deferred wraps fn so it only runs while the current timeline is still
// live. Callers hold mu.
func (s *session) deferred(fn func()) func() {
	gen := s.gen
	return func() {
		s.mu.Lock()
		if s.closed || s.gen != gen {
			s.mu.Unlock()
			return
		}
		fn()
		s.mu.Unlock()
		s.flush()
	}
}

// close stops the timeline. Callers hold mu.
func (s *session) close() {
	s.closed = true
	s.disarm()
	s.cancel()
}

// finish builds the Result and closes the session. Callers hold mu.
func (s *session) finish(accuracy float64, maxLevel int) {
	if s.phase == PhaseFinished {
		return
	}
	now := s.opts.Scheduler.Now()
	if maxLevel < 1 {
		maxLevel = 1
	}
	s.phase = PhaseFinished
	s.result = &model.Result{
		SessionID:       s.id,
		ActivityID:      s.activity,
		Score:           s.score,
		Accuracy:        clamp01(accuracy),
		MaxLevel:        maxLevel,
		DurationSeconds: math.Max(0, now.Sub(s.startedAt).Seconds()),
		Timestamp:       now.UnixMilli(),
		Difficulty:      s.tier,
	}
	s.close()
}

// flush publishes state changes and the result outside the lock.
func (s *session) flush() {
	s.mu.Lock()
	var res *model.Result
	if s.result != nil && !s.emitted {
		s.emitted = true
		r := *s.result
		res = &r
	}
	s.mu.Unlock()
	if res != nil {
		s.opts.Logger.Info().
			Str("session", res.SessionID).
			Str("activity", string(res.ActivityID)).
			Int("score", res.Score).
			Float64("accuracy", res.Accuracy).
			Int("max_level", res.MaxLevel).
			Msg("session finished")
	}
	if s.opts.OnUpdate != nil {
		s.opts.OnUpdate()
	}
	if res != nil && s.opts.OnResult != nil {
		s.opts.OnResult(*res)
	}
}

// award adds round(base*mult) and counts a hit. Callers hold mu.
func (s *session) award(base float64) int {
	pts := Points(base, s.mult)
	s.score += pts
	s.hits++
	s.feedback = FeedbackCorrect
	return pts
}

// penalize deducts round(base*mult/2), never below zero, and counts a miss.
// Callers hold mu.
func (s *session) penalize(base float64) {
	s.score = max(0, s.score-Penalty(base, s.mult))
	s.misses++
	s.feedback = FeedbackWrong
}

// speak narrates text in the background for the life of the session.
// Callers hold mu.
func (s *session) speak(text string, rate float64) {
	sp := s.opts.Speaker
	if sp == nil {
		return
	}
	ctx := s.ctx
	id := s.id
	log := s.opts.Logger
	go func() {
		if err := sp.Speak(ctx, text, rate); err != nil && ctx.Err() == nil {
			log.Debug().Err(err).Str("session", id).Msg("speech failed")
		}
	}()
}

func (s *session) baseView() View {
	return View{
		SessionID: s.id,
		Activity:  s.activity,
		Phase:     s.phase,
		Score:     s.score,
		Feedback:  s.feedback,
	}
}

// Points is the score for a correct response.
func Points(base, mult float64) int {
	return int(math.Round(base * mult))
}

// Penalty is the deduction for an active wrong response.
func Penalty(base, mult float64) int {
	return int(math.Round(base * mult / 2))
}

// Ratio returns num/den, or 0 when den is 0.
func Ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
