// Package generator builds lazy pipelines of synthetic benchmark messages.
//
// A pipeline is a base generator producing envelopes with Gaussian payload
// sizes, optionally wrapped by decorators that annotate payloads with a
// capture time or pace the rate at which envelopes can be pulled. Every
// stage implements Generator and is consumed one envelope at a time by a
// single goroutine.
package generator

import (
	"context"
	"iter"
	"math/rand"
	"time"

	"msg-generator/internal/domain/models"
)

// Generator is a single-pass, pull-based sequence of envelopes. Next returns
// false once the sequence is exhausted or ctx is done; it keeps returning
// false afterwards.
type Generator interface {
	Next(ctx context.Context) (models.Envelope, bool)
}

// Sleeper pauses for d and reports whether the pause completed before ctx
// was done.
type Sleeper func(ctx context.Context, d time.Duration) bool

// Option customizes the randomness, clock and sleeping of a pipeline.
type Option func(*options)

type options struct {
	rng   *rand.Rand
	now   func() time.Time
	sleep Sleeper
}

// WithRand sets the random source. A *rand.Rand is not safe for concurrent
// use, so each pipeline should own one. Without it every pipeline gets its
// own randomly seeded source.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithSleeper replaces the context aware time.Sleep used by rate limiters.
func WithSleeper(sleep Sleeper) Option {
	return func(o *options) {
		o.sleep = sleep
	}
}

func newOptions(opts ...Option) options {
	o := options{
		now:   time.Now,
		sleep: SleepContext,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		// package level source: concurrency safe and randomly seeded
		o.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return o
}

// list turns resolved options back into Options so that every stage of one
// pipeline shares the same rng, clock and sleeper.
func (o options) list() []Option {
	return []Option{WithRand(o.rng), WithClock(o.now), WithSleeper(o.sleep)}
}

// SleepContext sleeps for d unless ctx is done first. Non-positive durations
// return immediately.
func SleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Seq adapts g for use with range.
func Seq(ctx context.Context, g Generator) iter.Seq[models.Envelope] {
	return func(yield func(models.Envelope) bool) {
		for {
			env, ok := g.Next(ctx)
			if !ok || !yield(env) {
				return
			}
		}
	}
}

// Collect drains g into a slice. It never returns for an unbounded generator
// unless ctx is cancelled.
func Collect(ctx context.Context, g Generator) []models.Envelope {
	var out []models.Envelope
	for env := range Seq(ctx, g) {
		out = append(out, env)
	}
	return out
}
