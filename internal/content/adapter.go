package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/urben88/MindFlex/internal/difficulty"
	"github.com/urben88/MindFlex/internal/model"
)

const (
	// DefaultTimeout bounds every remote request.
	DefaultTimeout   = 5 * time.Second
	defaultCacheSize = 64
)

var errUnusable = errors.New("unusable content")

// Adapter fronts an optional remote Provider. Each request makes at most one
// remote attempt, bounded by the timeout; on any failure it answers from the
// local provider. Successful exercise and story content is memoized and
// concurrent identical requests share one remote call.
type Adapter struct {
	remote  Provider
	local   *Local
	timeout time.Duration
	log     zerolog.Logger

	group     singleflight.Group
	exercises *lru.Cache[string, ExerciseContent]
	stories   *lru.Cache[string, model.Story]
}

// Option customizes an Adapter.
type Option func(*Adapter)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger used for fallback warnings.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Adapter) { a.log = log }
}

// WithLocal replaces the default local provider.
func WithLocal(l *Local) Option {
	return func(a *Adapter) {
		if l != nil {
			a.local = l
		}
	}
}

// NewAdapter wraps remote, which may be nil to run fully offline.
func NewAdapter(remote Provider, opts ...Option) *Adapter {
	a := &Adapter{
		remote:  remote,
		local:   NewLocal(nil),
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	// lru.New only fails for a non-positive size.
	a.exercises, _ = lru.New[string, ExerciseContent](defaultCacheSize)
	a.stories, _ = lru.New[string, model.Story](defaultCacheSize)
	return a
}

// Available reports whether a remote provider is configured.
func (a *Adapter) Available() bool {
	return a.remote != nil
}

// ExerciseContent returns the body for ex. generated is false when the local
// fallback answered.
func (a *Adapter) ExerciseContent(ctx context.Context, ex Exercise) (c ExerciseContent, generated bool) {
	if c, ok := a.exercises.Get(ex.ID); ok {
		return c, true
	}
	if a.remote == nil {
		return a.local.Content(ex.Type), false
	}
	c, err := remoteCall(ctx, a, "exercise:"+ex.ID, func(ctx context.Context) (ExerciseContent, error) {
		c, err := a.remote.ExerciseContent(ctx, ex)
		if err == nil && !c.usable() {
			err = errUnusable
		}
		return c, err
	})
	if err != nil {
		a.log.Warn().Err(err).Str("exercise", ex.ID).Msg("using fallback exercise content")
		return a.local.Content(ex.Type), false
	}
	a.exercises.Add(ex.ID, c)
	return c, true
}

// Story returns a playable story for the tier. It satisfies the story source
// the story-listener engine expects.
func (a *Adapter) Story(ctx context.Context, tier model.Tier, p difficulty.StoryParams) (model.Story, bool) {
	key := fmt.Sprintf("story:%s:%d:%s", tier, p.StoryLengthWords, p.Complexity)
	if s, ok := a.stories.Get(key); ok {
		return s, true
	}
	if a.remote == nil {
		return a.local.PickStory(), false
	}
	s, err := remoteCall(ctx, a, key, func(ctx context.Context) (model.Story, error) {
		s, err := a.remote.Story(ctx, tier, p)
		if err == nil && !s.Playable() {
			err = errUnusable
		}
		return s, err
	})
	if err != nil {
		a.log.Warn().Err(err).Str("tier", string(tier)).Msg("using fallback story")
		return a.local.PickStory(), false
	}
	a.stories.Add(key, s)
	return s, true
}

// Feedback returns a short end-of-game line. Without a provider it reports
// the accuracy; a failed remote call yields a generic encouragement.
func (a *Adapter) Feedback(ctx context.Context, activity string, score int, accuracy float64) string {
	if a.remote == nil {
		return a.local.Praise(accuracy)
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	text, err := a.remote.Feedback(ctx, activity, score, accuracy)
	if err != nil {
		a.log.Warn().Err(err).Str("activity", activity).Msg("feedback unavailable")
		return errorFeedback
	}
	if text == "" {
		return emptyFeedback
	}
	return text
}

// remoteCall runs call once for key, shared among concurrent callers and
// cut off at the adapter timeout or when ctx is done.
func remoteCall[T any](ctx context.Context, a *Adapter, key string, call func(context.Context) (T, error)) (T, error) {
	var zero T
	ch := a.group.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		return call(ctx)
	})
	timer := time.NewTimer(a.timeout)
	defer timer.Stop()
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-timer.C:
		return zero, context.DeadlineExceeded
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
